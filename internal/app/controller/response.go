package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apperrors "github.com/ikkim/maison-backend/internal/errors"
	"github.com/ikkim/maison-backend/internal/middleware"
)

// fail logs err at a level matching its status and writes the error response.
func fail(c *gin.Context, msg string, err error) {
	log := middleware.GetLoggerFromContext(c)
	info := apperrors.ParseError(err)
	if info.Status >= http.StatusInternalServerError {
		log.Error(msg, err, map[string]interface{}{
			"code": info.Code,
		})
	} else {
		log.Warn(msg, map[string]interface{}{
			"code":  info.Code,
			"error": err.Error(),
		})
	}
	apperrors.RespondWithError(c, info.Status, info.Code, info.Message)
}

// failed handles err unless it only reports an unsaved change, in which case
// the caller still responds with success.
func failed(c *gin.Context, msg string, err error) bool {
	if err == nil || apperrors.IsPersistFailure(err) {
		return false
	}
	fail(c, msg, err)
	return true
}

// withWarning tells the client the change was applied but not saved.
func withWarning(body gin.H, err error) gin.H {
	if apperrors.IsPersistFailure(err) {
		body["warning"] = apperrors.PersistWarning
	}
	return body
}

// badRequest reports binding failures, listing the offending fields when the
// validator produced them.
func badRequest(c *gin.Context, err error) {
	middleware.GetLoggerFromContext(c).Warn("Invalid request data", map[string]interface{}{
		"error": err.Error(),
	})

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describeRule(fe)
	}
	apperrors.RespondWithValidationError(c, fields)
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "email":
		return "must be an email address"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return "is invalid"
	}
}
