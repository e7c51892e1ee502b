package errors

import (
	"errors"
	"net/http"

	"github.com/ikkim/maison-backend/internal/app/model"
	"github.com/ikkim/maison-backend/internal/app/repository"
	"github.com/ikkim/maison-backend/internal/app/service"
	"github.com/ikkim/maison-backend/internal/storage"
	"github.com/ikkim/maison-backend/internal/websocket"
	"github.com/ikkim/maison-backend/pkg/util"
)

// ErrorInfo is what a failure looks like to the client.
type ErrorInfo struct {
	Status  int
	Code    string
	Message string
}

type rule struct {
	target error
	info   ErrorInfo
}

// Checked in order; the first rule whose target matches wins.
var rules = []rule{
	{util.ErrExpiredToken, ErrorInfo{http.StatusUnauthorized, AuthTokenExpired, "Your session has expired"}},
	{util.ErrInvalidToken, ErrorInfo{http.StatusUnauthorized, AuthTokenInvalid, "Invalid token"}},
	{service.ErrInvalidPasscode, ErrorInfo{http.StatusUnauthorized, AuthInvalidCredentials, "Incorrect passcode"}},

	{service.ErrProductNotFound, ErrorInfo{http.StatusNotFound, ProductNotFound, "Product not found"}},
	{service.ErrProductIDTaken, ErrorInfo{http.StatusConflict, ResourceAlreadyExists, "A product with this ID already exists"}},
	{service.ErrProductIDChanged, ErrorInfo{http.StatusBadRequest, ValidationInvalidID, "Product ID cannot be changed"}},
	{model.ErrProductNameRequired, ErrorInfo{http.StatusBadRequest, ValidationRequired, "Product name is required"}},
	{model.ErrProductImageRequired, ErrorInfo{http.StatusBadRequest, ValidationRequired, "Add at least one product image"}},
	{model.ErrProductInvalidPrice, ErrorInfo{http.StatusBadRequest, ValidationInvalidRange, "Price must not be negative"}},
	{model.ErrProductInvalidStock, ErrorInfo{http.StatusBadRequest, ValidationInvalidRange, "Stock must not be negative"}},
	{model.ErrProductInvalidType, ErrorInfo{http.StatusBadRequest, ValidationInvalidFormat, "Unknown product category"}},

	{service.ErrInvalidQuantity, ErrorInfo{http.StatusBadRequest, ValidationInvalidRange, "Quantity must be at least 1"}},
	{service.ErrCartItemNotFound, ErrorInfo{http.StatusNotFound, CartLineNotFound, "Item is not in your bag"}},
	{service.ErrEmptyCart, ErrorInfo{http.StatusBadRequest, CartEmpty, "Your bag is empty"}},

	{service.ErrInvalidCustomer, ErrorInfo{http.StatusBadRequest, ValidationInvalidInput, "Name, a valid email and an address are required"}},
	{service.ErrPaymentAmountMismatch, ErrorInfo{http.StatusPaymentRequired, PaymentAmountInvalid, "The payment amount does not match your order"}},
	{service.ErrPaymentAlreadyUsed, ErrorInfo{http.StatusConflict, PaymentAlreadyUsed, "This payment was already used for an order"}},
	{service.ErrPaymentNotCompleted, ErrorInfo{http.StatusPaymentRequired, PaymentNotCompleted, "Payment was not completed. Your bag is unchanged"}},
	{service.ErrOrderNotFound, ErrorInfo{http.StatusNotFound, OrderNotFound, "Order not found"}},
	{service.ErrInvalidOrderStatus, ErrorInfo{http.StatusBadRequest, ValidationInvalidFormat, "Unknown order status"}},

	{service.ErrInvalidEmail, ErrorInfo{http.StatusBadRequest, ValidationInvalidFormat, "Please enter a valid email address"}},
	{service.ErrProductInStock, ErrorInfo{http.StatusConflict, ProductInStock, "This product is already available"}},
	{service.ErrRestockRequestNotFound, ErrorInfo{http.StatusNotFound, ResourceNotFound, "Restock request not found"}},

	{service.ErrPageNotFound, ErrorInfo{http.StatusNotFound, PageNotFound, "Page not found"}},
	{service.ErrInvalidSlug, ErrorInfo{http.StatusBadRequest, ValidationInvalidFormat, "Slugs use lowercase letters, digits and dashes"}},
	{service.ErrPageTitleEmpty, ErrorInfo{http.StatusBadRequest, ValidationRequired, "Page title is required"}},
	{service.ErrInvalidLayout, ErrorInfo{http.StatusBadRequest, ValidationInvalidInput, "Every section needs a title and a tag"}},

	{service.ErrInstructionMissing, ErrorInfo{http.StatusBadRequest, ValidationRequired, "Tell the concierge what to write"}},
	{service.ErrEmailIncomplete, ErrorInfo{http.StatusBadRequest, ValidationRequired, "Subject and body are required"}},
	{service.ErrDraftUnavailable, ErrorInfo{http.StatusBadGateway, ConciergeDraftUnavailable, "The concierge could not draft this email. Please try again"}},
	{service.ErrDescriptionFailed, ErrorInfo{http.StatusBadGateway, InternalExternalAPI, "The description could not be generated"}},
	{service.ErrAINotConfigured, ErrorInfo{http.StatusServiceUnavailable, InternalConfigError, "The concierge is not configured"}},
	{websocket.ErrInvalidChannels, ErrorInfo{http.StatusBadRequest, ValidationInvalidRange, "Audio must have between 1 and 8 channels"}},
	{websocket.ErrTooManySessions, ErrorInfo{http.StatusServiceUnavailable, VoiceSessionLimit, "The voice concierge is busy. Please try again shortly"}},

	{storage.ErrUnsupportedContentType, ErrorInfo{http.StatusBadRequest, UploadInvalidFileType, "Only JPEG, PNG and WEBP images are allowed"}},
	{storage.ErrFileTooLarge, ErrorInfo{http.StatusBadRequest, UploadFileTooLarge, "Images must be 10 MB or smaller"}},
	{storage.ErrPresignFailed, ErrorInfo{http.StatusBadGateway, UploadFailed, "Image uploads are unavailable right now"}},

	{repository.ErrNotFound, ErrorInfo{http.StatusNotFound, ResourceNotFound, "Not found"}},
}

// ParseError maps a service error to a status, a code and a message safe to
// show. Unknown errors become a generic 500.
func ParseError(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{http.StatusInternalServerError, InternalServerError, "Something went wrong"}
	}
	for _, r := range rules {
		if errors.Is(err, r.target) {
			return r.info
		}
	}
	if errors.Is(err, repository.ErrPersistFailed) {
		return ErrorInfo{http.StatusInternalServerError, InternalStorageError, "Your change could not be saved"}
	}
	return ErrorInfo{http.StatusInternalServerError, InternalServerError, "Something went wrong. Please try again shortly"}
}

// PersistWarning is the text attached to a successful response whose change
// lives in memory only.
const PersistWarning = "Your change was applied but could not be saved. It may be lost on restart"

// IsPersistFailure reports whether err only says the change was not saved.
func IsPersistFailure(err error) bool {
	return errors.Is(err, repository.ErrPersistFailed)
}
