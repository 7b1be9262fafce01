package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"jo3qma.com/gixen/internal/domain/model"
	"jo3qma.com/gixen/internal/domain/repository"
)

// ErrInvalidRequest は入力のバリデーションに失敗したことを表します
var ErrInvalidRequest = errors.New("invalid request")

// SnipeUsecase はスナイプ関連のビジネスロジックを担当します
// 入力の検証を行い、スナイプの操作はリポジトリに委譲します
type SnipeUsecase struct {
	repo     repository.SnipeRepository
	validate *validator.Validate
}

// NewSnipeUsecase は新しいSnipeUsecaseインスタンスを作成します
func NewSnipeUsecase(repo repository.SnipeRepository) *SnipeUsecase {
	return &SnipeUsecase{
		repo:     repo,
		validate: validator.New(),
	}
}

// PlaceSnipe はスナイプを登録します
// 入札額は小数点以下2桁までの正の金額であることを確認し、2桁に揃えて送信します
// 丸めは行わないので、送信される額が指定した上限を超えることはありません
func (u *SnipeUsecase) PlaceSnipe(ctx context.Context, req model.SnipeRequest) (bool, error) {
	if err := u.validate.Struct(req); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	bid, err := decimal.NewFromString(req.MaxBid)
	if err != nil {
		return false, fmt.Errorf("%w: max bid %q is not a number", ErrInvalidRequest, req.MaxBid)
	}
	if !bid.Equal(bid.Truncate(2)) {
		return false, fmt.Errorf("%w: max bid %q has more than two decimal places", ErrInvalidRequest, req.MaxBid)
	}
	if !bid.IsPositive() {
		return false, fmt.Errorf("%w: max bid must be positive", ErrInvalidRequest)
	}
	return u.repo.Snipe(ctx, req.ItemID, bid.StringFixed(2), req.Options)
}

// RemoveSnipe は指定されたオークションIDのスナイプを削除します
func (u *SnipeUsecase) RemoveSnipe(ctx context.Context, itemID string) (bool, error) {
	if err := u.validate.Var(itemID, "required,number"); err != nil {
		return false, fmt.Errorf("%w: item id %q", ErrInvalidRequest, itemID)
	}
	return u.repo.Unsnipe(ctx, itemID)
}

// ListSnipes は指定されたサーバーのスナイプ一覧を取得します
func (u *SnipeUsecase) ListSnipes(ctx context.Context, server model.Server) ([]*model.SnipeRecord, error) {
	switch server {
	case model.ServerAll:
		return u.repo.Snipes(ctx)
	case model.ServerMain:
		return u.repo.MainSnipes(ctx)
	case model.ServerMirror:
		return u.repo.MirrorSnipes(ctx)
	default:
		return nil, fmt.Errorf("%w: unknown server %d", ErrInvalidRequest, server)
	}
}

// PurgeCompleted は終了済みのスナイプを一覧から削除します
func (u *SnipeUsecase) PurgeCompleted(ctx context.Context) (bool, error) {
	return u.repo.Purge(ctx)
}
