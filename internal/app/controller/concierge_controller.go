package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/maison-backend/internal/app/model"
	"github.com/ikkim/maison-backend/internal/app/service"
	"github.com/ikkim/maison-backend/internal/middleware"
)

type ConciergeController struct {
	conciergeService service.ConciergeService
}

func NewConciergeController(conciergeService service.ConciergeService) *ConciergeController {
	return &ConciergeController{
		conciergeService: conciergeService,
	}
}

type SendEmailRequest struct {
	To      string          `json:"to" binding:"required"`
	Subject string          `json:"subject"`
	Body    string          `json:"body"`
	Kind    model.EmailKind `json:"kind"`
}

// DraftEmail asks the concierge to write a customer email
// POST /api/v1/admin/concierge/draft
func (ctrl *ConciergeController) DraftEmail(c *gin.Context) {
	var req model.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	draft, err := ctrl.conciergeService.DraftEmail(c.Request.Context(), req)
	if err != nil {
		fail(c, "Failed to draft email", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"draft": draft,
	})
}

// SendEmail records an email as sent
// POST /api/v1/admin/concierge/send
func (ctrl *ConciergeController) SendEmail(c *gin.Context) {
	var req SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	draft := model.EmailDraft{Subject: req.Subject, Body: req.Body}
	sent, err := ctrl.conciergeService.SendEmail(c.Request.Context(), req.To, draft, req.Kind)
	if failed(c, "Failed to send email", err) {
		return
	}

	middleware.GetLoggerFromContext(c).Info("Concierge email sent", map[string]interface{}{
		"email_id": sent.ID,
		"kind":     sent.Kind,
	})

	c.JSON(http.StatusCreated, withWarning(gin.H{
		"email": sent,
	}, err))
}

// History lists sent emails, newest first
// GET /api/v1/admin/concierge/emails
func (ctrl *ConciergeController) History(c *gin.Context) {
	emails := ctrl.conciergeService.ListSentEmails(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"emails": emails,
	})
}
