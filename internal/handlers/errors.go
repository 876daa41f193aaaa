package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/referral_ledger/internal/apperrors"
	"github.com/SscSPs/referral_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// errorKind is what a client learns about a failure: a status, a symbolic code and a fixed message.
type errorKind struct {
	status  int
	code    string
	message string
}

// classify maps an error to its kind. Order matters: the specific validation errors wrap ErrValidation.
func classify(err error) errorKind {
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, apperrors.ErrAccountInactive):
		return errorKind{http.StatusForbidden, "ACCOUNT_INACTIVE", "Account may not transact"}
	case errors.Is(err, apperrors.ErrInvalidLevel):
		return errorKind{http.StatusBadRequest, "INVALID_LEVEL", "Invalid level"}
	case errors.Is(err, apperrors.ErrInvalidAmount):
		return errorKind{http.StatusBadRequest, "INVALID_AMOUNT", "Invalid amount"}
	case errors.Is(err, apperrors.ErrValidation):
		return errorKind{http.StatusBadRequest, "VALIDATION_FAILED", "Invalid request"}
	case errors.Is(err, apperrors.ErrNotFound):
		return errorKind{http.StatusNotFound, "NOT_FOUND", "Resource not found"}
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		return errorKind{http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS", "Insufficient funds"}
	case errors.Is(err, apperrors.ErrAlreadyProcessed):
		return errorKind{http.StatusConflict, "ALREADY_PROCESSED", "Transaction already processed"}
	case errors.Is(err, apperrors.ErrDuplicate):
		return errorKind{http.StatusConflict, "DUPLICATE", "Resource already exists"}
	case errors.Is(err, apperrors.ErrConcurrencyConflict):
		return errorKind{http.StatusConflict, "CONCURRENCY_CONFLICT", "Concurrent update, retry the request"}
	case errors.Is(err, context.DeadlineExceeded):
		return errorKind{status: http.StatusServiceUnavailable, code: "TIMEOUT"}
	case errors.As(err, &appErr) && appErr.Code >= 400 && appErr.Code < 500:
		return errorKind{appErr.Code, "REQUEST_FAILED", appErr.Message}
	case errors.As(err, &appErr) && appErr.Code >= 500 && appErr.Code < 600:
		return errorKind{status: appErr.Code, code: "STORAGE_FAILURE"}
	default:
		return errorKind{status: http.StatusInternalServerError, code: "INTERNAL"}
	}
}

// respondError writes err as JSON. The body carries only the error's kind; the cause goes to the log.
// Server errors use the handler's fallback message.
func respondError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	kind := classify(err)

	if kind.status >= http.StatusInternalServerError {
		logger.Error(fallback, slog.String("error", err.Error()), slog.Int("status", kind.status))
		if kind.status == http.StatusServiceUnavailable {
			c.Header("Retry-After", "1")
		}
		c.JSON(kind.status, gin.H{"error": fallback, "code": kind.code})
		return
	}

	logger.Warn(fallback, slog.String("error", err.Error()), slog.Int("status", kind.status))
	if kind.code == "CONCURRENCY_CONFLICT" {
		c.Header("Retry-After", "1")
	}
	c.JSON(kind.status, gin.H{"error": kind.message, "code": kind.code})
}

// bindError reports a request that failed binding or validation.
func bindError(c *gin.Context, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
}

// requireUserID reads the authenticated principal or answers 401.
func requireUserID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}
