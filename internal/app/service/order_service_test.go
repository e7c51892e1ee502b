package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ikkim/maison-backend/internal/app/model"
	"github.com/ikkim/maison-backend/internal/app/repository"
	"github.com/ikkim/maison-backend/pkg/payment/checkout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func setupOrderServiceTest(t *testing.T) (OrderService, CartService, *fakePayments, *testDeps) {
	deps := setupServiceTest(t)
	payments := &fakePayments{tx: paidTx(0)}
	orderService := NewOrderService(deps.orders, deps.products, deps.carts, payments)
	cartService := NewCartService(deps.carts, deps.products)
	return orderService, cartService, payments, deps
}

func validCustomer() model.Customer {
	return model.Customer{
		Name:       "Ada Obi",
		Email:      "ada@example.com",
		Phone:      "+2348000000000",
		Address:    "12 Marina Road",
		City:       "Lagos",
		PostalCode: "101001",
	}
}

func orderOf(id string, items ...model.CartItem) model.Order {
	return model.Order{
		ID:     id,
		Items:  items,
		Total:  model.CartTotal(items),
		Date:   time.Now().UTC(),
		Status: model.OrderStatusPending,
	}
}

func line(deps *testDeps, t *testing.T, productID string, qty int) model.CartItem {
	p, err := deps.products.FindByID(productID)
	require.NoError(t, err)
	return model.CartItem{Product: *p, Quantity: qty}
}

func TestOrderService_PlaceOrder_StockFlooredAtZero(t *testing.T) {
	orderService, _, _, deps := setupOrderServiceTest(t)
	ctx := context.Background()

	require.NoError(t, orderService.PlaceOrder(ctx, orderOf("ORD-1", line(deps, t, "P2", 7))))

	p2, err := deps.products.FindByID("P2")
	require.NoError(t, err)
	assert.Equal(t, 0, p2.Stock)
}

func TestOrderService_PlaceOrder_DecrementsStock(t *testing.T) {
	orderService, _, _, deps := setupOrderServiceTest(t)
	ctx := context.Background()

	tests := []struct {
		stock, qty, want int
	}{
		{stock: 10, qty: 3, want: 7},
		{stock: 3, qty: 3, want: 0},
		{stock: 0, qty: 2, want: 0},
		{stock: 1, qty: 100, want: 0},
	}

	for i, tt := range tests {
		p, _ := deps.products.FindByID("P1")
		p.Stock = tt.stock
		require.NoError(t, deps.products.Update(ctx, *p))

		require.NoError(t, orderService.PlaceOrder(ctx, orderOf("ORD-"+string(rune('A'+i)), model.CartItem{Product: *p, Quantity: tt.qty})))

		after, _ := deps.products.FindByID("P1")
		assert.Equal(t, tt.want, after.Stock)
	}
}

func TestOrderService_PlaceOrder_MostRecentFirst(t *testing.T) {
	orderService, _, _, deps := setupOrderServiceTest(t)
	ctx := context.Background()

	require.NoError(t, orderService.PlaceOrder(ctx, orderOf("A", line(deps, t, "P1", 1))))
	require.NoError(t, orderService.PlaceOrder(ctx, orderOf("B", line(deps, t, "P1", 1))))
	require.NoError(t, orderService.PlaceOrder(ctx, orderOf("C", line(deps, t, "P1", 1))))

	orders := orderService.ListOrders(ctx)
	require.Len(t, orders, 3)
	assert.Equal(t, []string{"C", "B", "A"}, []string{orders[0].ID, orders[1].ID, orders[2].ID})
}

// failingStockRepo records nothing and fails every stock update.
type failingStockRepo struct {
	repository.ProductRepository
}

func (failingStockRepo) DecrementStock(context.Context, map[string]int) error {
	return errors.New("catalog unavailable")
}

func TestOrderService_PlaceOrder_NoRollbackWhenStockFails(t *testing.T) {
	deps := setupServiceTest(t)
	orderService := NewOrderService(deps.orders, failingStockRepo{deps.products}, deps.carts, &fakePayments{tx: paidTx(0)})
	ctx := context.Background()

	err := orderService.PlaceOrder(ctx, orderOf("ORD-1", line(deps, t, "P1", 1)))
	assert.Error(t, err)

	// The order half of the step is kept
	_, err = orderService.GetOrder(ctx, "ORD-1")
	assert.NoError(t, err)
}

func TestOrderService_Checkout_Success(t *testing.T) {
	orderService, cartService, payments, deps := setupOrderServiceTest(t)
	ctx := context.Background()

	cartService.AddToCart(ctx, "s1", "P1", 2, "Black", "M")
	cartService.AddToCart(ctx, "s1", "P2", 1, "", "")
	payments.tx = paidTx(4500)

	order, err := orderService.Checkout(ctx, "s1", model.CheckoutRequest{Customer: validCustomer(), PaymentReference: "ref-1"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(order.ID, "ORD-"))
	assert.Equal(t, int64(4500), order.Total)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, "ref-1", order.PaymentReference)
	assert.Len(t, order.Items, 2)

	cart, _ := cartService.GetCart(ctx, "s1")
	assert.Empty(t, cart.Items)

	p1, _ := deps.products.FindByID("P1")
	p2, _ := deps.products.FindByID("P2")
	assert.Equal(t, 8, p1.Stock)
	assert.Equal(t, 4, p2.Stock)

	stored, err := orderService.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Total, stored.Total)
}

func TestOrderService_Checkout_KeepsLinesAddedDuringPayment(t *testing.T) {
	orderService, cartService, payments, _ := setupOrderServiceTest(t)
	ctx := context.Background()

	cartService.AddToCart(ctx, "s1", "P1", 2, "Black", "M")
	payments.tx = paidTx(2000)
	payments.onVerify = func() {
		cartService.AddToCart(ctx, "s1", "P2", 1, "", "")
		cartService.AddToCart(ctx, "s1", "P1", 1, "Black", "M")
	}

	order, err := orderService.Checkout(ctx, "s1", model.CheckoutRequest{Customer: validCustomer(), PaymentReference: "ref-late"})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, int64(2000), order.Total)

	cart, err := cartService.GetCart(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	quantities := map[string]int{}
	for _, item := range cart.Items {
		quantities[item.Product.ID] = item.Quantity
	}
	assert.Equal(t, map[string]int{"P1": 1, "P2": 1}, quantities)
}

func TestWithoutOrdered(t *testing.T) {
	dress := model.CartItem{Product: model.Product{ID: "P1"}, SelectedColor: "Black", SelectedSize: "S", Quantity: 3}
	other := dress
	other.SelectedSize = "M"
	other.Quantity = 1
	ordered := dress
	ordered.Quantity = 2

	kept := withoutOrdered([]model.CartItem{dress, other}, []model.CartItem{ordered, other})
	require.Len(t, kept, 1)
	assert.Equal(t, "S", kept[0].SelectedSize)
	assert.Equal(t, 1, kept[0].Quantity)
}

func TestOrderService_Checkout_PaymentFailureLeavesCart(t *testing.T) {
	tests := []struct {
		name string
		tx   *checkout.Transaction
		err  error
	}{
		{name: "widget closed", err: checkout.ErrTransactionNotFound},
		{name: "abandoned", tx: &checkout.Transaction{Status: "abandoned", Amount: 100000}},
		{name: "gateway down", err: checkout.ErrNetworkError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderService, cartService, payments, deps := setupOrderServiceTest(t)
			ctx := context.Background()

			cartService.AddToCart(ctx, "s1", "P1", 1, "", "")
			payments.tx, payments.err = tt.tx, tt.err

			_, err := orderService.Checkout(ctx, "s1", model.CheckoutRequest{Customer: validCustomer(), PaymentReference: "ref"})
			assert.ErrorIs(t, err, ErrPaymentNotCompleted)

			cart, _ := cartService.GetCart(ctx, "s1")
			assert.Len(t, cart.Items, 1)
			assert.Empty(t, orderService.ListOrders(ctx))
			p1, _ := deps.products.FindByID("P1")
			assert.Equal(t, 10, p1.Stock)
		})
	}
}

func TestOrderService_Checkout_EmptyCart(t *testing.T) {
	orderService, _, payments, _ := setupOrderServiceTest(t)

	_, err := orderService.Checkout(context.Background(), "s1", model.CheckoutRequest{Customer: validCustomer(), PaymentReference: "ref"})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, payments.calls)
}

func TestOrderService_Checkout_InvalidCustomer(t *testing.T) {
	orderService, cartService, _, _ := setupOrderServiceTest(t)
	ctx := context.Background()
	cartService.AddToCart(ctx, "s1", "P1", 1, "", "")

	customer := validCustomer()
	customer.Email = "not-an-email"
	_, err := orderService.Checkout(ctx, "s1", model.CheckoutRequest{Customer: customer, PaymentReference: "ref"})
	assert.ErrorIs(t, err, ErrInvalidCustomer)
}

func TestOrderService_Checkout_AmountMismatch(t *testing.T) {
	orderService, cartService, payments, _ := setupOrderServiceTest(t)
	ctx := context.Background()

	cartService.AddToCart(ctx, "s1", "P1", 2, "", "")
	payments.tx = paidTx(1000)

	_, err := orderService.Checkout(ctx, "s1", model.CheckoutRequest{Customer: validCustomer(), PaymentReference: "ref"})
	assert.ErrorIs(t, err, ErrPaymentAmountMismatch)

	cart, _ := cartService.GetCart(ctx, "s1")
	assert.Len(t, cart.Items, 1)
}

func TestOrderService_Checkout_ReferenceUsedOnce(t *testing.T) {
	orderService, cartService, payments, _ := setupOrderServiceTest(t)
	ctx := context.Background()
	payments.tx = paidTx(1000)

	cartService.AddToCart(ctx, "s1", "P1", 1, "", "")
	_, err := orderService.Checkout(ctx, "s1", model.CheckoutRequest{Customer: validCustomer(), PaymentReference: "ref-1"})
	require.NoError(t, err)

	cartService.AddToCart(ctx, "s1", "P1", 1, "", "")
	_, err = orderService.Checkout(ctx, "s1", model.CheckoutRequest{Customer: validCustomer(), PaymentReference: "ref-1"})
	assert.ErrorIs(t, err, ErrPaymentAlreadyUsed)
	assert.Len(t, orderService.ListOrders(ctx), 1)
}

func TestOrderService_Checkout_UniqueIDs(t *testing.T) {
	orderService, cartService, payments, _ := setupOrderServiceTest(t)
	ctx := context.Background()
	payments.tx = paidTx(1000)

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		cartService.AddToCart(ctx, "s1", "P1", 1, "", "")
		order, err := orderService.Checkout(ctx, "s1", model.CheckoutRequest{Customer: validCustomer(), PaymentReference: "ref-" + string(rune('a'+i))})
		require.NoError(t, err)
		assert.False(t, seen[order.ID])
		seen[order.ID] = true
	}
}

func TestOrderService_Checkout_PersistFailureStillPlacesOrder(t *testing.T) {
	orderService, cartService, payments, deps := setupOrderServiceTest(t)
	ctx := context.Background()
	payments.tx = paidTx(1000)

	cartService.AddToCart(ctx, "s1", "P1", 1, "", "")
	deps.store.failing.Store(true)

	order, err := orderService.Checkout(ctx, "s1", model.CheckoutRequest{Customer: validCustomer(), PaymentReference: "ref"})
	assert.ErrorIs(t, err, repository.ErrPersistFailed)
	require.NotNil(t, order)
	assert.Len(t, orderService.ListOrders(ctx), 1)
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	orderService, _, _, deps := setupOrderServiceTest(t)
	ctx := context.Background()
	require.NoError(t, orderService.PlaceOrder(ctx, orderOf("ORD-1", line(deps, t, "P1", 1))))

	order, err := orderService.UpdateOrderStatus(ctx, "ORD-1", model.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, order.Status)

	_, err = orderService.UpdateOrderStatus(ctx, "ORD-1", "Lost")
	assert.ErrorIs(t, err, ErrInvalidOrderStatus)

	_, err = orderService.UpdateOrderStatus(ctx, "ORD-404", model.OrderStatusDelivered)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_ExportOrders(t *testing.T) {
	orderService, _, _, deps := setupOrderServiceTest(t)
	ctx := context.Background()

	item := line(deps, t, "P1", 2)
	item.SelectedColor = "Black"
	order := orderOf("ORD-1", item)
	order.Customer = validCustomer()
	require.NoError(t, orderService.PlaceOrder(ctx, order))

	var buf bytes.Buffer
	require.NoError(t, orderService.ExportOrders(ctx, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Order ID", rows[0][0])
	assert.Equal(t, "ORD-1", rows[1][0])
	assert.Equal(t, "Ada Obi", rows[1][3])
	assert.Equal(t, "Silk Slip Dress (Black) x2", rows[1][9])
	assert.Equal(t, "2000", rows[1][11])
}
