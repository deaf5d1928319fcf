package payment

import (
	"time"

	errors "github.com/debtflow/collections/internal"
	"github.com/debtflow/collections/internal/core/common/validation"
	"github.com/debtflow/collections/internal/schedule"
)

const dateLayout = "2006-01-02"

// IntakeRequest creates the initial pending record(s) from manual entry or
// import. For specific_dates, Dates carries the explicit occurrence set; for
// card payments either CardID or raw card data must be supplied.
type IntakeRequest struct {
	DebtorID      string   `json:"debtor_id"`
	CollectorID   string   `json:"collector_id"`
	AmountCents   int64    `json:"amount_cents"`
	Method        string   `json:"method"`
	Frequency     string   `json:"frequency"`
	ScheduledDate string   `json:"scheduled_date,omitempty"`
	Dates         []string `json:"dates,omitempty"`
	CardID        *string  `json:"card_id,omitempty"`
	CardNumber    string   `json:"card_number,omitempty"`
	CardExpiry    string   `json:"card_expiry,omitempty"`
}

func (r *IntakeRequest) Validate() error {
	if appErr := validation.ValidatePaymentAmount(r.AmountCents); appErr != nil {
		return appErr
	}

	validator := validation.NewValidator()

	validator.Field("debtor_id", r.DebtorID).Required()
	validator.Field("collector_id", r.CollectorID).Required()
	validator.Field("method", r.Method).Required().
		OneOf([]string{MethodACH, MethodCard, MethodCheck}, errors.ErrCodeInvalidMethod)
	validator.Field("frequency", r.Frequency).Required().
		OneOf([]string{
			string(schedule.FrequencyOneTime),
			string(schedule.FrequencyWeekly),
			string(schedule.FrequencyBiWeekly),
			string(schedule.FrequencyMonthly),
			string(schedule.FrequencySpecificDates),
		}, errors.ErrCodeInvalidFrequency)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}

	if schedule.Frequency(r.Frequency) == schedule.FrequencySpecificDates && len(r.Dates) == 0 {
		return errors.NewValidationError("dates are required for specific_dates frequency", errors.ErrCodeInvalidDate)
	}

	return nil
}

func (r *IntakeRequest) ParsedScheduledDate() (time.Time, *errors.AppError) {
	if r.ScheduledDate == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(dateLayout, r.ScheduledDate)
	if err != nil {
		return time.Time{}, errors.NewValidationError("scheduled_date must be YYYY-MM-DD", errors.ErrCodeInvalidDate)
	}
	return d, nil
}

func (r *IntakeRequest) ParsedDates() ([]time.Time, *errors.AppError) {
	dates := make([]time.Time, 0, len(r.Dates))
	for _, raw := range r.Dates {
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, errors.NewValidationError("dates must be YYYY-MM-DD", errors.ErrCodeInvalidDate)
		}
		dates = append(dates, d)
	}
	return dates, nil
}

type ReverseRequest struct {
	Reason string `json:"reason"`
}

func (r *ReverseRequest) Validate() error {
	validator := validation.NewValidator()
	validator.Field("reason", r.Reason).Required().MaxLength(500)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// BatchOutcome reports one record's result inside a bulk operation; a bad
// record never fails the whole batch.
type BatchOutcome struct {
	PaymentID string `json:"payment_id"`
	Applied   bool   `json:"applied"`
	Error     string `json:"error,omitempty"`
}

type BatchPostResult struct {
	PostedCount int            `json:"posted_count"`
	Outcomes    []BatchOutcome `json:"outcomes"`
}

type ReverseResult struct {
	Payment          *Payment       `json:"payment"`
	CanceledCount    int            `json:"canceled_count"`
	CascadedOutcomes []BatchOutcome `json:"cascaded_outcomes,omitempty"`
}
