package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"go.uber.org/zap"
	"jo3qma.com/gixen/internal/domain/model"
	"jo3qma.com/gixen/internal/usecase"
)

// サービス名とプロシージャ
const (
	SnipeServiceName = "gixen.v1.SnipeService"

	PlaceSnipeProcedure     = "/" + SnipeServiceName + "/PlaceSnipe"
	RemoveSnipeProcedure    = "/" + SnipeServiceName + "/RemoveSnipe"
	ListSnipesProcedure     = "/" + SnipeServiceName + "/ListSnipes"
	PurgeCompletedProcedure = "/" + SnipeServiceName + "/PurgeCompleted"
)

// SnipeService はハンドラーが必要とするユースケースの操作です
type SnipeService interface {
	PlaceSnipe(ctx context.Context, req model.SnipeRequest) (bool, error)
	RemoveSnipe(ctx context.Context, itemID string) (bool, error)
	ListSnipes(ctx context.Context, server model.Server) ([]*model.SnipeRecord, error)
	PurgeCompleted(ctx context.Context) (bool, error)
}

var _ SnipeService = (*usecase.SnipeUsecase)(nil)

// PlaceSnipeRequest はスナイプ登録のリクエストです
type PlaceSnipeRequest struct {
	ItemID          string `json:"itemId"`
	MaxBid          string `json:"maxBid"`
	SnipeGroup      int    `json:"snipeGroup,omitempty"`
	BidOffset       int    `json:"bidOffset,omitempty"`
	BidOffsetMirror int    `json:"bidOffsetMirror,omitempty"`
}

type PlaceSnipeResponse struct {
	Added bool `json:"added"`
}

type RemoveSnipeRequest struct {
	ItemID string `json:"itemId"`
}

type RemoveSnipeResponse struct {
	Deleted bool `json:"deleted"`
}

// ListSnipesRequest の Server は "all"（省略時）/ "main" / "mirror" です
type ListSnipesRequest struct {
	Server string `json:"server,omitempty"`
}

type ListSnipesResponse struct {
	Snipes []Snipe `json:"snipes"`
}

type PurgeCompletedRequest struct{}

type PurgeCompletedResponse struct {
	Purged bool `json:"purged"`
}

// Snipe は一覧の1行をレスポンス用に変換したものです
type Snipe struct {
	ItemID      string       `json:"itemId"`
	EndTime     string       `json:"endTime"`
	EndsAt      *time.Time   `json:"endsAt,omitempty"`
	MaxBid      string       `json:"maxBid"`
	Status      string       `json:"status"`
	StatusText  string       `json:"statusText"`
	StatusPlain string       `json:"statusPlain"`
	Title       string       `json:"title"`
	TitleText   string       `json:"titleText"`
	SnipeGroup  string       `json:"snipeGroup"`
	Quantity    string       `json:"quantity"`
	BidOffset   string       `json:"bidOffset"`
	Extra       []ExtraField `json:"extra,omitempty"`
	Mirror      bool         `json:"mirror"`
}

type ExtraField struct {
	Index int    `json:"index"`
	Value string `json:"value"`
}

// SnipeHandler はConnectのハンドラー実装です
// プロトコル層（JSON）とドメイン層（usecase）を橋渡しします
type SnipeHandler struct {
	svc    SnipeService
	logger *zap.Logger
}

// NewSnipeHandler は新しいSnipeHandlerインスタンスを作成します
func NewSnipeHandler(svc SnipeService, logger *zap.Logger) *SnipeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnipeHandler{
		svc:    svc,
		logger: logger,
	}
}

// NewSnipeServiceHandler は SnipeHandler の各メソッドをルーティングする http.Handler と、
// それをマウントするパスを返します
func NewSnipeServiceHandler(h *SnipeHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(PlaceSnipeProcedure, connect.NewUnaryHandler(PlaceSnipeProcedure, h.PlaceSnipe, opts...))
	mux.Handle(RemoveSnipeProcedure, connect.NewUnaryHandler(RemoveSnipeProcedure, h.RemoveSnipe, opts...))
	mux.Handle(ListSnipesProcedure, connect.NewUnaryHandler(ListSnipesProcedure, h.ListSnipes, opts...))
	mux.Handle(PurgeCompletedProcedure, connect.NewUnaryHandler(PurgeCompletedProcedure, h.PurgeCompleted, opts...))
	return "/" + SnipeServiceName + "/", mux
}

// PlaceSnipe はスナイプを登録するRPCハンドラーです
func (h *SnipeHandler) PlaceSnipe(
	ctx context.Context,
	req *connect.Request[PlaceSnipeRequest],
) (*connect.Response[PlaceSnipeResponse], error) {
	in := model.SnipeRequest{
		ItemID: req.Msg.ItemID,
		MaxBid: req.Msg.MaxBid,
		Options: model.SnipeOptions{
			SnipeGroup:      req.Msg.SnipeGroup,
			BidOffset:       model.BidOffset(req.Msg.BidOffset),
			BidOffsetMirror: model.BidOffset(req.Msg.BidOffsetMirror),
		},
	}
	added, err := h.svc.PlaceSnipe(ctx, in)
	if err != nil {
		return nil, h.toConnectError(PlaceSnipeProcedure, err)
	}
	return connect.NewResponse(&PlaceSnipeResponse{Added: added}), nil
}

// RemoveSnipe はスナイプを削除するRPCハンドラーです
func (h *SnipeHandler) RemoveSnipe(
	ctx context.Context,
	req *connect.Request[RemoveSnipeRequest],
) (*connect.Response[RemoveSnipeResponse], error) {
	deleted, err := h.svc.RemoveSnipe(ctx, req.Msg.ItemID)
	if err != nil {
		return nil, h.toConnectError(RemoveSnipeProcedure, err)
	}
	return connect.NewResponse(&RemoveSnipeResponse{Deleted: deleted}), nil
}

// ListSnipes はスナイプ一覧を取得するRPCハンドラーです
func (h *SnipeHandler) ListSnipes(
	ctx context.Context,
	req *connect.Request[ListSnipesRequest],
) (*connect.Response[ListSnipesResponse], error) {
	server, err := model.ParseServer(req.Msg.Server)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	records, err := h.svc.ListSnipes(ctx, server)
	if err != nil {
		return nil, h.toConnectError(ListSnipesProcedure, err)
	}

	// ドメインモデルをレスポンスに変換
	resp := &ListSnipesResponse{Snipes: make([]Snipe, 0, len(records))}
	for _, r := range records {
		resp.Snipes = append(resp.Snipes, toSnipe(r))
	}
	return connect.NewResponse(resp), nil
}

// PurgeCompleted は終了済みのスナイプを削除するRPCハンドラーです
func (h *SnipeHandler) PurgeCompleted(
	ctx context.Context,
	req *connect.Request[PurgeCompletedRequest],
) (*connect.Response[PurgeCompletedResponse], error) {
	purged, err := h.svc.PurgeCompleted(ctx)
	if err != nil {
		return nil, h.toConnectError(PurgeCompletedProcedure, err)
	}
	return connect.NewResponse(&PurgeCompletedResponse{Purged: purged}), nil
}

func toSnipe(r *model.SnipeRecord) Snipe {
	s := Snipe{
		ItemID:      r.ItemID,
		EndTime:     r.EndTime,
		MaxBid:      r.MaxBid,
		Status:      r.Status,
		StatusText:  r.StatusText,
		StatusPlain: r.StatusPlain,
		Title:       r.Title,
		TitleText:   r.TitleText,
		SnipeGroup:  r.SnipeGroup,
		Quantity:    r.Quantity,
		BidOffset:   r.BidOffset,
		Mirror:      r.Mirror,
	}
	if t, ok := r.EndsAt(); ok {
		s.EndsAt = &t
	}
	for _, f := range r.Extra {
		s.Extra = append(s.Extra, ExtraField{Index: f.Index, Value: f.Value})
	}
	return s
}

// toConnectError はドメインのエラーをConnectのエラーコードに対応付けます
func (h *SnipeHandler) toConnectError(procedure string, err error) error {
	code := connect.CodeInternal

	var serviceErr *model.ServiceError
	var transportErr *model.TransportError
	switch {
	case errors.Is(err, usecase.ErrInvalidRequest):
		code = connect.CodeInvalidArgument
	case errors.As(err, &serviceErr):
		if serviceErr.Code == model.CodeLoginFailed {
			code = connect.CodeUnauthenticated
		} else {
			code = connect.CodeFailedPrecondition
		}
	case errors.As(err, &transportErr):
		code = connect.CodeUnavailable
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	}

	h.logger.Warn("rpc failed",
		zap.String("procedure", procedure),
		zap.String("code", code.String()),
		zap.Error(err),
	)
	return connect.NewError(code, err)
}
