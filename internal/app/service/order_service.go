package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/ikkim/maison-backend/internal/app/model"
	"github.com/ikkim/maison-backend/internal/app/repository"
	"github.com/ikkim/maison-backend/pkg/logger"
	"github.com/ikkim/maison-backend/pkg/payment/checkout"
	"github.com/xuri/excelize/v2"
)

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrEmptyCart             = errors.New("cart is empty")
	ErrInvalidCustomer       = errors.New("customer name, valid email and address are required")
	ErrPaymentNotCompleted   = errors.New("payment not completed")
	ErrPaymentAmountMismatch = errors.New("paid amount does not match order total")
	ErrPaymentAlreadyUsed    = errors.New("payment reference already used for an order")
	ErrInvalidOrderStatus    = errors.New("invalid order status")
)

// PaymentVerifier confirms a payment taken by the checkout widget.
type PaymentVerifier interface {
	Verify(ctx context.Context, reference string) (*checkout.Transaction, error)
}

type OrderService interface {
	// PlaceOrder records order and decrements catalog stock for each line.
	// The two writes are not atomic; a failed stock write leaves the order
	// recorded.
	PlaceOrder(ctx context.Context, order model.Order) error
	// Checkout verifies the payment, places an order from the shopper's cart
	// and clears the cart. On any failure before placement the cart is left
	// intact.
	Checkout(ctx context.Context, shopperID string, req model.CheckoutRequest) (*model.Order, error)
	ListOrders(ctx context.Context) []model.Order
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error)
	ExportOrders(ctx context.Context, w io.Writer) error
}

type orderService struct {
	mu          sync.Mutex
	lastIDMilli int64

	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
	payments    PaymentVerifier
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	payments PaymentVerifier,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		payments:    payments,
	}
}

func (s *orderService) PlaceOrder(ctx context.Context, order model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.placeOrderLocked(ctx, order)
}

func (s *orderService) placeOrderLocked(ctx context.Context, order model.Order) error {
	logger.Info("Placing order", map[string]interface{}{
		"order_id": order.ID,
		"total":    order.Total,
		"lines":    len(order.Items),
	})

	var persistErr error
	if err := s.orderRepo.Create(ctx, order); err != nil {
		if !errors.Is(err, repository.ErrPersistFailed) {
			logger.Error("Failed to record order", err, map[string]interface{}{
				"order_id": order.ID,
			})
			return err
		}
		persistErr = err
	}

	quantities := make(map[string]int, len(order.Items))
	for _, item := range order.Items {
		quantities[item.ID] += item.Quantity
	}
	if err := s.productRepo.DecrementStock(ctx, quantities); err != nil {
		if errors.Is(err, repository.ErrPersistFailed) {
			return err
		}
		logger.Error("Order recorded but stock update failed", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return err
	}

	logger.Info("Order placed successfully", map[string]interface{}{
		"order_id": order.ID,
	})
	return persistErr
}

// nextOrderID derives the ID from the clock, bumping it when two orders land
// in the same millisecond. Callers hold s.mu.
func (s *orderService) nextOrderID(now time.Time) string {
	ms := now.UnixMilli()
	if ms <= s.lastIDMilli {
		ms = s.lastIDMilli + 1
	}
	s.lastIDMilli = ms
	return fmt.Sprintf("ORD-%d", ms)
}

func validateCustomer(c model.Customer) error {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Address) == "" {
		return ErrInvalidCustomer
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return ErrInvalidCustomer
	}
	return nil
}

func (s *orderService) Checkout(ctx context.Context, shopperID string, req model.CheckoutRequest) (*model.Order, error) {
	logger.Info("Starting checkout", map[string]interface{}{
		"shopper_id": shopperID,
		"reference":  req.PaymentReference,
	})

	if err := validateCustomer(req.Customer); err != nil {
		return nil, err
	}

	items, err := s.cartRepo.FindByShopper(ctx, shopperID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		logger.Warn("Checkout with empty cart", map[string]interface{}{
			"shopper_id": shopperID,
		})
		return nil, ErrEmptyCart
	}
	total := model.CartTotal(items)

	tx, err := s.payments.Verify(ctx, req.PaymentReference)
	if err != nil {
		logger.Warn("Payment verification failed; cart left intact", map[string]interface{}{
			"shopper_id": shopperID,
			"reference":  req.PaymentReference,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("%w: %w", ErrPaymentNotCompleted, err)
	}
	if !tx.Successful() {
		logger.Warn("Payment not successful; cart left intact", map[string]interface{}{
			"shopper_id": shopperID,
			"reference":  req.PaymentReference,
			"status":     tx.Status,
		})
		return nil, ErrPaymentNotCompleted
	}
	if tx.Amount != total*checkout.SubunitFactor {
		logger.Warn("Paid amount does not match cart total", map[string]interface{}{
			"shopper_id": shopperID,
			"reference":  req.PaymentReference,
			"paid":       tx.Amount,
			"total":      total,
		})
		return nil, ErrPaymentAmountMismatch
	}

	s.mu.Lock()
	for _, o := range s.orderRepo.FindAll() {
		if o.PaymentReference != "" && o.PaymentReference == req.PaymentReference {
			s.mu.Unlock()
			return nil, ErrPaymentAlreadyUsed
		}
	}

	now := time.Now().UTC()
	order := model.Order{
		ID:               s.nextOrderID(now),
		Items:            items,
		Total:            total,
		Customer:         req.Customer,
		Date:             now,
		Status:           model.OrderStatusPending,
		PaymentReference: req.PaymentReference,
	}
	placeErr := s.placeOrderLocked(ctx, order)
	s.mu.Unlock()

	if placeErr != nil && !errors.Is(placeErr, repository.ErrPersistFailed) {
		return nil, placeErr
	}

	// Only what was ordered leaves the cart; lines added during payment stay.
	err = s.cartRepo.Update(ctx, shopperID, func(current []model.CartItem) ([]model.CartItem, error) {
		return withoutOrdered(current, order.Items), nil
	})
	if err != nil {
		logger.Error("Failed to clear ordered lines from cart", err, map[string]interface{}{
			"shopper_id": shopperID,
			"order_id":   order.ID,
		})
		if placeErr == nil {
			placeErr = err
		}
	}

	logger.Info("Checkout completed", map[string]interface{}{
		"shopper_id": shopperID,
		"order_id":   order.ID,
		"total":      total,
	})
	return &order, placeErr
}

// withoutOrdered subtracts the ordered quantities from the matching lines of
// current and drops lines that reach zero.
func withoutOrdered(current, ordered []model.CartItem) []model.CartItem {
	taken := make(map[model.LineKey]int, len(ordered))
	for _, item := range ordered {
		taken[item.Key()] += item.Quantity
	}
	kept := make([]model.CartItem, 0, len(current))
	for _, item := range current {
		if q, ok := taken[item.Key()]; ok {
			item.Quantity -= q
			if item.Quantity <= 0 {
				continue
			}
		}
		kept = append(kept, item)
	}
	return kept
}

func (s *orderService) ListOrders(ctx context.Context) []model.Order {
	return s.orderRepo.FindAll()
}

func (s *orderService) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	switch status {
	case model.OrderStatusPending, model.OrderStatusShipped, model.OrderStatusDelivered:
	default:
		return nil, ErrInvalidOrderStatus
	}

	order, err := s.orderRepo.UpdateStatus(ctx, id, status)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

var orderExportHeader = []interface{}{
	"Order ID", "Date", "Status", "Customer", "Email", "Phone", "Address", "City", "Postal Code", "Items", "Quantity", "Total", "Payment Reference",
}

func (s *orderService) ExportOrders(ctx context.Context, w io.Writer) error {
	orders := s.orderRepo.FindAll()

	logger.Info("Exporting orders", map[string]interface{}{
		"count": len(orders),
	})

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Orders"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &orderExportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, o := range orders {
		names := make([]string, 0, len(o.Items))
		for _, item := range o.Items {
			name := item.Name
			if variant := strings.Trim(item.SelectedColor+" / "+item.SelectedSize, " /"); variant != "" {
				name += " (" + variant + ")"
			}
			names = append(names, fmt.Sprintf("%s x%d", name, item.Quantity))
		}

		row := []interface{}{
			o.ID,
			o.Date.Format(time.RFC3339),
			string(o.Status),
			o.Customer.Name,
			o.Customer.Email,
			o.Customer.Phone,
			o.Customer.Address,
			o.Customer.City,
			o.Customer.PostalCode,
			strings.Join(names, ", "),
			model.CartQuantity(o.Items),
			o.Total,
			o.PaymentReference,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write order %s: %w", o.ID, err)
		}
	}

	if err := f.Write(w); err != nil {
		logger.Error("Failed to write order export", err, nil)
		return err
	}
	return nil
}
