// Package respond writes JSON bodies and maps domain errors to HTTP statuses.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/freightdesk/internal/balance"
	"github.com/MrJamesThe3rd/freightdesk/internal/booking"
	"github.com/MrJamesThe3rd/freightdesk/internal/database"
	"github.com/MrJamesThe3rd/freightdesk/internal/deal"
	"github.com/MrJamesThe3rd/freightdesk/internal/document"
	"github.com/MrJamesThe3rd/freightdesk/internal/importer/statement"
	"github.com/MrJamesThe3rd/freightdesk/internal/invoice"
	"github.com/MrJamesThe3rd/freightdesk/internal/matching"
	"github.com/MrJamesThe3rd/freightdesk/internal/party"
	"github.com/MrJamesThe3rd/freightdesk/internal/payment"
)

// Error codes returned in the code field of error bodies.
const (
	CodeBadRequest       = "bad_request"
	CodeValidation       = "validation_failed"
	CodeUnauthorized     = "unauthorized"
	CodeForbidden        = "forbidden"
	CodeNotFound         = "not_found"
	CodeConflict         = "conflict"
	CodeUnprocessable    = "unprocessable"
	CodeExternalFailure  = "external_service_failure"
	CodeDuplicateRequest = "duplicate_request"
	CodeInternal         = "internal_error"
)

type ErrorBody struct {
	Code      string        `json:"code"`
	Message   string        `json:"message"`
	Retryable bool          `json:"retryable"`
	Details   []FieldDetail `json:"details,omitempty"`
}

type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// Money formats an amount with two decimals.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func MoneyPtr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}

	return new(d.StringFixed(2))
}

func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if body == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

func Fail(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, ErrorBody{Code: code, Message: message})
}

func BadRequest(w http.ResponseWriter, message string) {
	Fail(w, http.StatusBadRequest, CodeBadRequest, message)
}

// Decode reads a JSON body into v and runs its validate tags. On failure the
// 400 response has already been written and false is returned.
func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return false
	}

	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			BadRequest(w, err.Error())
			return false
		}

		details := make([]FieldDetail, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldDetail{Field: fe.Field(), Message: fieldMessage(fe)})
		}

		JSON(w, http.StatusBadRequest, ErrorBody{
			Code:    CodeValidation,
			Message: "request validation failed",
			Details: details,
		})

		return false
	}

	return true
}

// DateRange parses the optional start_date and end_date query parameters as
// YYYY-MM-DD. On a malformed value the 400 response has already been written
// and ok is false.
func DateRange(w http.ResponseWriter, r *http.Request) (start, end *time.Time, ok bool) {
	q := r.URL.Query()

	for param, dst := range map[string]**time.Time{"start_date": &start, "end_date": &end} {
		s := q.Get(param)
		if s == "" {
			continue
		}

		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			BadRequest(w, "invalid "+param+": want YYYY-MM-DD")
			return nil, nil, false
		}

		*dst = &t
	}

	return start, end, true
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gt", "gte", "min":
		return "must be at least " + fe.Param()
	default:
		return "is invalid"
	}
}

type mapping struct {
	status    int
	code      string
	retryable bool
}

func classify(err error) mapping {
	switch {
	case errors.Is(err, booking.ErrNotFound),
		errors.Is(err, invoice.ErrNotFound),
		errors.Is(err, payment.ErrNotFound),
		errors.Is(err, deal.ErrNotFound),
		errors.Is(err, party.ErrNotFound),
		errors.Is(err, balance.ErrNotFound):
		return mapping{http.StatusNotFound, CodeNotFound, false}

	case errors.Is(err, booking.ErrInvalidTransition),
		errors.Is(err, booking.ErrNoOpTransition),
		errors.Is(err, payment.ErrDuplicatePayment):
		return mapping{http.StatusConflict, CodeConflict, false}

	case errors.Is(err, payment.ErrInvalidAmount),
		errors.Is(err, payment.ErrInvalidMethod),
		errors.Is(err, payment.ErrContractorMismatch),
		errors.Is(err, payment.ErrCustomerMismatch),
		errors.Is(err, database.ErrUnknownReference),
		database.IsForeignKeyViolation(err),
		errors.Is(err, payment.ErrNoPayments),
		errors.Is(err, deal.ErrMissingBooking),
		errors.Is(err, deal.ErrNotBillable),
		errors.Is(err, booking.ErrInvalidStatus),
		errors.Is(err, booking.ErrInvalidBooking),
		errors.Is(err, invoice.ErrInvalidType),
		errors.Is(err, invoice.ErrInvalidDirection),
		errors.Is(err, party.ErrNameRequired),
		errors.Is(err, matching.ErrEmptyPattern),
		errors.Is(err, statement.ErrUnknownFormat):
		return mapping{http.StatusUnprocessableEntity, CodeUnprocessable, false}

	case errors.Is(err, document.ErrRenderFailed):
		return mapping{http.StatusBadGateway, CodeExternalFailure, true}
	}

	return mapping{http.StatusInternalServerError, CodeInternal, true}
}

// Error writes the mapped status for err. Unknown errors are logged and
// reported without their message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	m := classify(err)

	message := err.Error()
	if m.status == http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)

		message = "internal error"
	}

	JSON(w, m.status, ErrorBody{Code: m.code, Message: message, Retryable: m.retryable})
}
