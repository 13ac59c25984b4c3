package repository

import (
	"context"

	"iaction/internal/domain/model"
)

type OrderListFilter struct {
	Page   int
	Limit  int
	Status string
}

type OrderRepository interface {
	//注文コードが重複したらErrConflict
	Create(ctx context.Context, order model.Order) (model.Order, error)

	//見つからないときはfound=false（エラーではない）
	FindByID(ctx context.Context, orderID string) (model.Order, bool, error)
	FindByCode(ctx context.Context, code string) (model.Order, bool, error)

	//管理用の無条件更新
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error

	//現在のstatusがfromのときだけtoにする。更新できなければfalse
	TransitionStatus(ctx context.Context, orderID string, from, to model.OrderStatus) (bool, error)

	List(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)
}
