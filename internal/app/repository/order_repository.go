package repository

import (
	"context"
	"slices"

	"github.com/ikkim/maison-backend/internal/app/model"
	"github.com/ikkim/maison-backend/pkg/logger"
)

type OrderRepository interface {
	// Create prepends order so the newest order comes first.
	Create(ctx context.Context, order model.Order) error
	FindAll() []model.Order
	FindByID(id string) (*model.Order, error)
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error)
}

type orderRepository struct {
	orders *Collection[model.Order]
}

func NewOrderRepository(state *State) OrderRepository {
	return &orderRepository{orders: state.Orders}
}

func (r *orderRepository) Create(ctx context.Context, order model.Order) error {
	logger.Debug("Creating order", map[string]interface{}{
		"order_id": order.ID,
		"total":    order.Total,
		"lines":    len(order.Items),
	})

	return r.orders.Mutate(ctx, func(items []model.Order) ([]model.Order, error) {
		return append([]model.Order{order}, items...), nil
	})
}

func (r *orderRepository) FindAll() []model.Order {
	return r.orders.All()
}

func (r *orderRepository) FindByID(id string) (*model.Order, error) {
	o, ok := r.orders.Find(func(o model.Order) bool { return o.ID == id })
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	logger.Debug("Updating order status", map[string]interface{}{
		"order_id": id,
		"status":   status,
	})

	var updated model.Order
	err := r.orders.Mutate(ctx, func(items []model.Order) ([]model.Order, error) {
		i := slices.IndexFunc(items, func(o model.Order) bool { return o.ID == id })
		if i < 0 {
			return nil, ErrNotFound
		}
		items[i].Status = status
		updated = items[i]
		return items, nil
	})
	if err != nil && updated.ID == "" {
		return nil, err
	}
	return &updated, err
}
