package card

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	errors "github.com/debtflow/collections/internal"
	cardDatamodel "github.com/debtflow/collections/internal/core/datamodel/card"
	"github.com/debtflow/collections/internal/transport"
)

type ServiceAPI interface {
	CreateStoredCard(debtorID, rawNumber, expiry string) (*cardDatamodel.StoredCard, error)
	GetStoredCard(id string) (*cardDatamodel.StoredCard, error)
	ListDebtorCards(debtorID string) ([]*cardDatamodel.StoredCard, error)
}

type Handler struct {
	transport.BaseHandler
	CardService ServiceAPI
	Logger      *slog.Logger
}

func NewHandler(cardService ServiceAPI, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.BaseHandler{Logger: logger},
		CardService: cardService,
		Logger:      logger,
	}
}

// IdentifyCard handles POST /api/v1/cards/identify
func (h *Handler) IdentifyCard(w http.ResponseWriter, r *http.Request) {
	var req IdentifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("IdentifyCard: failed to parse request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	if err := req.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	identity, err := Identify(req.CardNumber)
	if err != nil {
		if idErr, ok := err.(*IdentificationError); ok {
			h.HandleError(w, idErr.AppError())
			return
		}
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, IdentifyResponse{
		Brand:     identity.Brand,
		CardType:  identity.CardType,
		IsValid:   identity.IsValid,
		Category:  identity.Category,
		Formatted: FormatGrouped(req.CardNumber),
	})
}

// CreateStoredCard handles POST /api/v1/debtors/{id}/cards
func (h *Handler) CreateStoredCard(w http.ResponseWriter, r *http.Request) {
	debtorID := chi.URLParam(r, "id")
	if debtorID == "" {
		h.HandleError(w, errors.NewValidationError("debtor id is required", errors.ErrCodeValidationFailed))
		return
	}

	var req CreateStoredCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("CreateStoredCard: failed to parse request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	if err := req.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	stored, err := h.CardService.CreateStoredCard(debtorID, req.CardNumber, req.Expiry)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, toStoredCardResponse(stored))
}

// ListDebtorCards handles GET /api/v1/debtors/{id}/cards
func (h *Handler) ListDebtorCards(w http.ResponseWriter, r *http.Request) {
	debtorID := chi.URLParam(r, "id")
	if debtorID == "" {
		h.HandleError(w, errors.NewValidationError("debtor id is required", errors.ErrCodeValidationFailed))
		return
	}

	cards, err := h.CardService.ListDebtorCards(debtorID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp := make([]StoredCardResponse, 0, len(cards))
	for _, c := range cards {
		resp = append(resp, toStoredCardResponse(c))
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func toStoredCardResponse(c *cardDatamodel.StoredCard) StoredCardResponse {
	return StoredCardResponse{
		ID:          c.ID,
		DebtorID:    c.DebtorID,
		Brand:       c.Brand,
		Last4:       c.Last4,
		ExpiryMonth: c.ExpiryMonth,
		ExpiryYear:  c.ExpiryYear,
	}
}
