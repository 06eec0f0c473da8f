package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hostfolio/payout/internal/delivery"
	expenseservice "github.com/hostfolio/payout/internal/expense/service"
	listingdomain "github.com/hostfolio/payout/internal/listing/domain"
	obscontext "github.com/hostfolio/payout/internal/observability/context"
	"github.com/hostfolio/payout/internal/period"
	reservationdomain "github.com/hostfolio/payout/internal/reservation/domain"
	statementdomain "github.com/hostfolio/payout/internal/statement/domain"
	"github.com/hostfolio/payout/internal/statement/engine"
)

// apiError is the error envelope returned by every handler.
type apiError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

func writeError(c *gin.Context, status int, code, message string, details map[string]any) {
	c.AbortWithStatusJSON(status, gin.H{"error": apiError{
		Code:      code,
		Message:   message,
		RequestID: obscontext.RequestIDFromGin(c),
		Details:   details,
	}})
}

func invalidRequestError(c *gin.Context, err error) {
	writeError(c, http.StatusBadRequest, "invalid_request", err.Error(), nil)
}

func newValidationError(c *gin.Context, field, code, message string) {
	writeError(c, http.StatusBadRequest, code, message, map[string]any{"field": field})
}

// abortWithError translates domain errors into HTTP responses.
func abortWithError(c *gin.Context, err error) {
	var (
		invalidDate     *period.InvalidDateError
		invalidWindow   *period.InvalidWindowError
		invalidType     *engine.InvalidCalculationTypeError
		invalidSchedule *engine.InvalidFeeScheduleError
		missingProfile  *engine.MissingProfileError
		commissionRange *listingdomain.CommissionRangeError
		stayDates       *reservationdomain.StayDatesError
		blocked         *delivery.BlockedDeliveryError
	)

	switch {
	case errors.As(err, &invalidDate),
		errors.As(err, &invalidWindow),
		errors.As(err, &invalidType),
		errors.As(err, &invalidSchedule):
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error(), nil)

	case errors.Is(err, statementdomain.ErrInvalidPropertySet),
		errors.Is(err, statementdomain.ErrInvalidStatementID),
		errors.Is(err, expenseservice.ErrEmptyBatch),
		errors.Is(err, expenseservice.ErrInvalidOwnerID),
		errors.Is(err, delivery.ErrMissingRecipient):
		writeError(c, http.StatusBadRequest, err.Error(), err.Error(), nil)

	case errors.Is(err, statementdomain.ErrStatementNotFound):
		writeError(c, http.StatusNotFound, "statement_not_found", err.Error(), nil)

	case errors.As(err, &missingProfile):
		writeError(c, http.StatusUnprocessableEntity, "missing_listing_profile", err.Error(), map[string]any{
			"property_id": missingProfile.PropertyID,
		})

	case errors.As(err, &commissionRange), errors.As(err, &stayDates):
		writeError(c, http.StatusUnprocessableEntity, "invalid_source_data", err.Error(), nil)

	case errors.As(err, &blocked):
		writeError(c, http.StatusConflict, "delivery_blocked", err.Error(), map[string]any{
			"reason":       blocked.Reason,
			"owner_payout": blocked.OwnerPayout,
		})

	default:
		writeError(c, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
