package gixen

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"jo3qma.com/gixen/internal/domain/model"
)

// 確認メッセージのキーワード
const (
	keywordAdded   = "ADDED"
	keywordDeleted = "DELETED"
	keywordPurged  = "COMPLETEDPURGED"
)

// fieldDelimiter は一覧の行を項目に区切るトークンです
const fieldDelimiter = "|#!#|"

// minListingFields は一覧の行として扱う最小の項目数です（先頭のHTML断片 + オークションID）
const minListingFields = 2

var errorLine = regexp.MustCompile(`(?m)^ERROR \(([0-9]+)\): (.*)$`)

// checkError はレスポンス本文がエラー行を含んでいれば ServiceError を返します
// どの操作でも最初にこれを確認します
func checkError(body string) error {
	m := errorLine.FindStringSubmatch(body)
	if m == nil {
		return nil
	}
	code, err := strconv.Atoi(m[1])
	if err != nil {
		// 桁あふれするほど長いコードは想定外だが、メッセージは失わない
		code = -1
	}
	return &model.ServiceError{
		Code:    code,
		Message: strings.TrimRight(m[2], "\r"),
	}
}

// confirmed は本文に確認キーワードが含まれるかを返します
// 含まれない場合もエラーにはせず false とします
func confirmed(body, keyword string) bool {
	return strings.Contains(body, keyword)
}

// parseListing はスナイプ一覧の本文を行ごとに SnipeRecord に変換します
// 区切りを含まない行（"OK MAIN LISTED" など）や項目の足りない行は読み飛ばします
func parseListing(body string, mirror bool) []*model.SnipeRecord {
	var records []*model.SnipeRecord
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || !strings.Contains(line, fieldDelimiter) {
			continue
		}
		rec := parseRow(strings.Split(line, fieldDelimiter))
		if rec == nil {
			continue
		}
		rec.Mirror = mirror
		records = append(records, rec)
	}
	return records
}

// parseRow は区切られた項目を位置に従ってレコードに割り当てます
// 0 番目はHTMLの断片なので捨てます
func parseRow(fields []string) *model.SnipeRecord {
	if len(fields) < minListingFields {
		return nil
	}
	rec := &model.SnipeRecord{}
	for i, v := range fields {
		switch i {
		case 0:
		case 1:
			rec.ItemID = v
		case 2:
			rec.EndTime = v
		case 3:
			rec.MaxBid = v
		case 4:
			rec.Status = v
		case 5:
			rec.StatusText = v
		case 6:
			rec.Title = v
		case 7:
			rec.SnipeGroup = v
		case 8:
			rec.Quantity = v
		case 9:
			rec.BidOffset = v
		default:
			rec.Extra = append(rec.Extra, model.ExtraField{Index: i, Value: v})
		}
	}
	if strings.TrimSpace(rec.ItemID) == "" {
		return nil
	}
	rec.TitleText = plainText(rec.Title)
	rec.StatusPlain = plainText(rec.StatusText)
	return rec
}

// plainText はHTMLの断片からテキストだけを取り出します
// タグや実体参照を含まない場合はそのまま返します
func plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}
