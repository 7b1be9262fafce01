package model

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// BidOffset はオークション終了の何秒前に入札するかを表します
// Gixen が受け付ける値は 3, 6, 8, 10, 15 のいずれかです
type BidOffset int

const (
	BidOffsetUnspecified BidOffset = 0 // 未指定（サーバー側のデフォルトを使う）
	BidOffset3           BidOffset = 3
	BidOffset6           BidOffset = 6
	BidOffset8           BidOffset = 8
	BidOffset10          BidOffset = 10
	BidOffset15          BidOffset = 15

	// DefaultBidOffset はサーバー側のデフォルト値です
	DefaultBidOffset = BidOffset6
)

// Valid は Gixen が受け付ける値かどうかを返します
func (o BidOffset) Valid() bool {
	switch o {
	case BidOffset3, BidOffset6, BidOffset8, BidOffset10, BidOffset15:
		return true
	default:
		return false
	}
}

// SnipeOptions はスナイプのメタデータです
// ゼロ値の項目はリクエストに含めず、サーバー側のデフォルトに任せます
type SnipeOptions struct {
	SnipeGroup      int       `validate:"min=0,max=10"`
	BidOffset       BidOffset `validate:"omitempty,oneof=3 6 8 10 15"`
	BidOffsetMirror BidOffset `validate:"omitempty,oneof=3 6 8 10 15"`
	Quantity        int       `validate:"min=0"` // 廃止済み。送っても効果はない
}

// SnipeRequest はスナイプ登録の入力です
type SnipeRequest struct {
	ItemID  string `validate:"required,number"`
	MaxBid  string `validate:"required"`
	Options SnipeOptions
}

// SnipeRecord はスナイプ一覧の1行を表すドメインモデルです
// 行内の位置（1〜9）で意味が決まっている項目は名前付きフィールドに、
// それ以降の未知の項目は Extra に位置付きで保持します
type SnipeRecord struct {
	ItemID     string // 1: オークションID
	EndTime    string // 2: 終了日時（UNIX秒）
	MaxBid     string // 3: 最高入札額
	Status     string // 4: ステータスコード（1文字）
	StatusText string // 5: ステータスの説明
	Title      string // 6: 商品タイトル（生の値）
	SnipeGroup string // 7: スナイプグループ
	Quantity   string // 8: 数量
	BidOffset  string // 9: 入札オフセット（秒）

	// TitleText と StatusPlain は Title / StatusText からHTMLを取り除いたプレーンテキストです
	TitleText   string
	StatusPlain string

	// Extra は 10 番目以降の項目です。行内の順序を保ちます
	Extra []ExtraField

	// Mirror はミラーサーバーから取得した行なら true です
	Mirror bool
}

// ExtraField は名前の付いていない位置の項目です
type ExtraField struct {
	Index int
	Value string
}

// Field は元の行における位置 index の値を返します
// 0 番目（HTMLの断片）は保持していないため常に false です
func (r *SnipeRecord) Field(index int) (string, bool) {
	switch index {
	case 1:
		return r.ItemID, true
	case 2:
		return r.EndTime, true
	case 3:
		return r.MaxBid, true
	case 4:
		return r.Status, true
	case 5:
		return r.StatusText, true
	case 6:
		return r.Title, true
	case 7:
		return r.SnipeGroup, true
	case 8:
		return r.Quantity, true
	case 9:
		return r.BidOffset, true
	}
	for _, f := range r.Extra {
		if f.Index == index {
			return f.Value, true
		}
	}
	return "", false
}

// EndsAt は EndTime を time.Time に変換します。数値でなければ false を返します
func (r *SnipeRecord) EndsAt() (time.Time, bool) {
	sec, err := strconv.ParseInt(r.EndTime, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(sec, 0).UTC(), true
}

// MaxBidAmount は MaxBid を10進数として返します
func (r *SnipeRecord) MaxBidAmount() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(r.MaxBid)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid max bid %q: %w", r.MaxBid, err)
	}
	return d, nil
}

// Server はスナイプ一覧の取得先です
type Server int32

const (
	ServerAll    Server = 0 // メインとミラーの両方
	ServerMain   Server = 1
	ServerMirror Server = 2
)

// ParseServer は "all" / "main" / "mirror" を Server に変換します
func ParseServer(s string) (Server, error) {
	switch s {
	case "", "all":
		return ServerAll, nil
	case "main":
		return ServerMain, nil
	case "mirror":
		return ServerMirror, nil
	default:
		return ServerAll, fmt.Errorf("unknown server %q", s)
	}
}

func (s Server) String() string {
	switch s {
	case ServerMain:
		return "main"
	case ServerMirror:
		return "mirror"
	default:
		return "all"
	}
}
