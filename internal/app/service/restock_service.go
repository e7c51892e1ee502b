package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/maison-backend/internal/app/model"
	"github.com/ikkim/maison-backend/internal/app/repository"
	"github.com/ikkim/maison-backend/pkg/logger"
)

var (
	ErrInvalidEmail           = errors.New("invalid email address")
	ErrProductInStock         = errors.New("product is in stock")
	ErrRestockRequestNotFound = errors.New("restock request not found")
)

type RestockService interface {
	// Register adds email to the waitlist of an out-of-stock product. A
	// repeated registration returns the existing request.
	Register(ctx context.Context, productID, email string) (*model.RestockRequest, error)
	List(ctx context.Context) []model.RestockRequest
	Remove(ctx context.Context, id string) error
	// NotifyAvailable emails every waiting customer whose product is back in
	// stock and drops their requests. It returns the number notified.
	NotifyAvailable(ctx context.Context) (int, error)
}

type restockService struct {
	requests    *repository.Collection[model.RestockRequest]
	productRepo repository.ProductRepository
	emails      EmailSender
}

func NewRestockService(
	requests *repository.Collection[model.RestockRequest],
	productRepo repository.ProductRepository,
	emails EmailSender,
) RestockService {
	return &restockService{
		requests:    requests,
		productRepo: productRepo,
		emails:      emails,
	}
}

func (s *restockService) Register(ctx context.Context, productID, email string) (*model.RestockRequest, error) {
	logger.Info("Registering restock request", map[string]interface{}{
		"product_id": productID,
	})

	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return nil, ErrInvalidEmail
	}
	email = strings.ToLower(addr.Address)

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if product.InStock() {
		return nil, ErrProductInStock
	}

	var result model.RestockRequest
	err = s.requests.Mutate(ctx, func(items []model.RestockRequest) ([]model.RestockRequest, error) {
		for _, r := range items {
			if r.ProductID == productID && r.CustomerEmail == email {
				result = r
				return items, nil
			}
		}
		result = model.RestockRequest{
			ID:            uuid.NewString(),
			ProductID:     productID,
			CustomerEmail: email,
			Date:          time.Now().UTC(),
		}
		return append(items, result), nil
	})
	if err != nil && !errors.Is(err, repository.ErrPersistFailed) {
		return nil, err
	}
	return &result, err
}

func (s *restockService) List(ctx context.Context) []model.RestockRequest {
	return s.requests.All()
}

func (s *restockService) Remove(ctx context.Context, id string) error {
	logger.Info("Removing restock request", map[string]interface{}{
		"request_id": id,
	})

	return s.requests.Mutate(ctx, func(items []model.RestockRequest) ([]model.RestockRequest, error) {
		i := slices.IndexFunc(items, func(r model.RestockRequest) bool { return r.ID == id })
		if i < 0 {
			return nil, ErrRestockRequestNotFound
		}
		return slices.Delete(items, i, i+1), nil
	})
}

func (s *restockService) NotifyAvailable(ctx context.Context) (int, error) {
	var due []model.RestockRequest
	products := make(map[string]*model.Product)
	for _, r := range s.requests.All() {
		p, err := s.productRepo.FindByID(r.ProductID)
		if err != nil || !p.InStock() {
			continue
		}
		products[r.ProductID] = p
		due = append(due, r)
	}
	if len(due) == 0 {
		return 0, nil
	}

	notified := make(map[string]bool, len(due))
	var sendErr error
	for _, r := range due {
		p := products[r.ProductID]
		draft := model.EmailDraft{
			Subject: fmt.Sprintf("%s is back in stock", p.Name),
			Body: fmt.Sprintf("Good news: %s by %s is available again. Only %d left, so don't wait too long.",
				p.Name, p.Brand, p.Stock),
		}
		if _, err := s.emails.SendEmail(ctx, r.CustomerEmail, draft, model.EmailKindRestock); err != nil && !errors.Is(err, repository.ErrPersistFailed) {
			logger.Error("Failed to send restock email", err, map[string]interface{}{
				"request_id": r.ID,
			})
			sendErr = err
			continue
		}
		notified[r.ID] = true
	}

	err := s.requests.Mutate(ctx, func(items []model.RestockRequest) ([]model.RestockRequest, error) {
		return slices.DeleteFunc(items, func(r model.RestockRequest) bool { return notified[r.ID] }), nil
	})

	logger.Info("Restock notifications sent", map[string]interface{}{
		"notified": len(notified),
		"due":      len(due),
	})
	if sendErr != nil {
		return len(notified), sendErr
	}
	return len(notified), err
}
