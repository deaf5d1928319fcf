package remittance

import (
	"log/slog"
	"net/http"
	"time"

	errors "github.com/debtflow/collections/internal"
	"github.com/debtflow/collections/internal/transport"
)

const dateLayout = "2006-01-02"

type ServiceAPI interface {
	Summarize(groupBy string, from, to time.Time) (*Summary, error)
}

type Handler struct {
	transport.BaseHandler
	RemittanceService ServiceAPI
	Logger            *slog.Logger
}

func NewHandler(remittanceService ServiceAPI, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler:       transport.BaseHandler{Logger: logger},
		RemittanceService: remittanceService,
		Logger:            logger,
	}
}

// Summary handles GET /api/v1/remittance/summary?group_by=client&from=...&to=...
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	groupBy := r.URL.Query().Get("group_by")
	if groupBy == "" {
		groupBy = GroupByClient
	}

	from, err := parseDateParam(r.URL.Query().Get("from"))
	if err != nil {
		h.HandleError(w, errors.NewValidationError("from must be YYYY-MM-DD", errors.ErrCodeInvalidDate))
		return
	}
	to, err := parseDateParam(r.URL.Query().Get("to"))
	if err != nil {
		h.HandleError(w, errors.NewValidationError("to must be YYYY-MM-DD", errors.ErrCodeInvalidDate))
		return
	}
	if to.IsZero() {
		to = time.Now().UTC()
	}

	summary, svcErr := h.RemittanceService.Summarize(groupBy, from, to)
	if svcErr != nil {
		h.HandleServiceError(w, svcErr)
		return
	}

	h.WriteJSON(w, http.StatusOK, summary)
}

func parseDateParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, raw)
}
