package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/maison-backend/internal/app/model"
	"github.com/ikkim/maison-backend/internal/app/repository"
	"github.com/ikkim/maison-backend/pkg/logger"
)

var (
	ErrDraftUnavailable   = errors.New("email draft unavailable")
	ErrDescriptionFailed  = errors.New("product description unavailable")
	ErrInstructionMissing = errors.New("instruction is required")
	ErrEmailIncomplete    = errors.New("email subject and body are required")
)

// EmailSender records outgoing customer emails.
type EmailSender interface {
	SendEmail(ctx context.Context, to string, draft model.EmailDraft, kind model.EmailKind) (*model.SentEmail, error)
}

type ConciergeService interface {
	EmailSender
	// DraftEmail asks the text model for a customer email. Failures are
	// reported as ErrDraftUnavailable.
	DraftEmail(ctx context.Context, req model.DraftRequest) (*model.EmailDraft, error)
	ListSentEmails(ctx context.Context) []model.SentEmail
	DescribeProduct(ctx context.Context, product model.Product) (string, error)
}

type conciergeService struct {
	ai         AIService
	sentEmails *repository.Collection[model.SentEmail]
	orderRepo  repository.OrderRepository
}

func NewConciergeService(ai AIService, sentEmails *repository.Collection[model.SentEmail], orderRepo repository.OrderRepository) ConciergeService {
	return &conciergeService{
		ai:         ai,
		sentEmails: sentEmails,
		orderRepo:  orderRepo,
	}
}

const draftSystemPrompt = "You are the client concierge of a luxury fashion house. " +
	"Write warm, concise and polished emails to customers. " +
	"Never invent order details, prices or dates that are not given."

var emailDraftSchema = &JSONSchema{
	Name: "email_draft",
	Schema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"subject": map[string]interface{}{"type": "string"},
			"body":    map[string]interface{}{"type": "string"},
		},
		"required":             []string{"subject", "body"},
		"additionalProperties": false,
	},
}

func (s *conciergeService) DraftEmail(ctx context.Context, req model.DraftRequest) (*model.EmailDraft, error) {
	if strings.TrimSpace(req.Instruction) == "" {
		return nil, ErrInstructionMissing
	}

	logger.Info("Drafting concierge email", map[string]interface{}{
		"order_id": req.OrderID,
	})

	var prompt strings.Builder
	prompt.WriteString("Instruction: " + req.Instruction + "\n")
	if req.CustomerName != "" {
		prompt.WriteString("Customer name: " + req.CustomerName + "\n")
	}
	if req.OrderID != "" {
		if order, err := s.orderRepo.FindByID(req.OrderID); err == nil {
			fmt.Fprintf(&prompt, "Order %s placed %s, status %s, total %d, %d item(s).\n",
				order.ID, order.Date.Format("2 January 2006"), order.Status, order.Total, model.CartQuantity(order.Items))
		}
	}

	content, err := s.ai.Complete(ctx, draftSystemPrompt, prompt.String(), emailDraftSchema)
	if err != nil {
		logger.Error("Email draft generation failed", err, map[string]interface{}{
			"order_id": req.OrderID,
		})
		return nil, fmt.Errorf("%w: %w", ErrDraftUnavailable, err)
	}

	var draft model.EmailDraft
	if err := json.Unmarshal([]byte(content), &draft); err != nil || draft.Subject == "" || draft.Body == "" {
		logger.Warn("Email draft is not usable", map[string]interface{}{
			"order_id": req.OrderID,
			"length":   len(content),
		})
		return nil, ErrDraftUnavailable
	}
	return &draft, nil
}

func (s *conciergeService) SendEmail(ctx context.Context, to string, draft model.EmailDraft, kind model.EmailKind) (*model.SentEmail, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(to))
	if err != nil {
		return nil, ErrInvalidEmail
	}
	if strings.TrimSpace(draft.Subject) == "" || strings.TrimSpace(draft.Body) == "" {
		return nil, ErrEmailIncomplete
	}
	if kind == "" {
		kind = model.EmailKindConcierge
	}

	email := model.SentEmail{
		ID:      uuid.NewString(),
		To:      addr.Address,
		Subject: draft.Subject,
		Body:    draft.Body,
		Kind:    kind,
		SentAt:  time.Now().UTC(),
	}

	err = s.sentEmails.Mutate(ctx, func(items []model.SentEmail) ([]model.SentEmail, error) {
		return append([]model.SentEmail{email}, items...), nil
	})
	if err != nil && !errors.Is(err, repository.ErrPersistFailed) {
		return nil, err
	}

	logger.Info("Email sent", map[string]interface{}{
		"email_id": email.ID,
		"kind":     kind,
	})
	return &email, err
}

func (s *conciergeService) ListSentEmails(ctx context.Context) []model.SentEmail {
	return s.sentEmails.All()
}

const describeSystemPrompt = "You write product copy for a luxury fashion boutique. " +
	"Reply with a single elegant paragraph of at most 80 words and nothing else."

func (s *conciergeService) DescribeProduct(ctx context.Context, product model.Product) (string, error) {
	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Product: %s by %s\nCategory: %s\n", product.Name, product.Brand, product.Category)
	if len(product.Composition) > 0 {
		prompt.WriteString("Composition: " + strings.Join(product.Composition, ", ") + "\n")
	}
	if len(product.Features) > 0 {
		prompt.WriteString("Features: " + strings.Join(product.Features, ", ") + "\n")
	}
	if len(product.Colors) > 0 {
		names := make([]string, len(product.Colors))
		for i, c := range product.Colors {
			names[i] = c.Name
		}
		prompt.WriteString("Colors: " + strings.Join(names, ", ") + "\n")
	}

	text, err := s.ai.Complete(ctx, describeSystemPrompt, prompt.String(), nil)
	if err != nil {
		logger.Error("Product description generation failed", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return "", ErrDescriptionFailed
	}
	text = strings.TrimSpace(text)
	if text == "" {
		logger.Warn("Model returned an empty product description", map[string]interface{}{
			"product_id": product.ID,
		})
		return "", ErrDescriptionFailed
	}
	return text, nil
}
