package repository

import (
	"context"

	"jo3qma.com/gixen/internal/domain/model"
)

// SnipeRepository はスナイプの登録・削除・一覧取得の方法を抽象化します。
// 実装が Gixen のAPIなのか別のサービスなのかはドメイン層は知りません。
type SnipeRepository interface {
	// Snipe はスナイプを登録します。確認メッセージがなければ false を返します
	Snipe(ctx context.Context, itemID, maxBid string, opts model.SnipeOptions) (bool, error)
	// Unsnipe はスナイプを削除します
	Unsnipe(ctx context.Context, itemID string) (bool, error)
	// MainSnipes はメインサーバーのスナイプ一覧を取得します
	MainSnipes(ctx context.Context) ([]*model.SnipeRecord, error)
	// MirrorSnipes はミラーサーバーのスナイプ一覧を取得します
	MirrorSnipes(ctx context.Context) ([]*model.SnipeRecord, error)
	// Snipes はメイン、ミラーの順に両方の一覧を取得します
	Snipes(ctx context.Context) ([]*model.SnipeRecord, error)
	// Purge は終了済みのスナイプを一覧から削除します
	Purge(ctx context.Context) (bool, error)
}
