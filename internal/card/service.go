package card

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	errors "github.com/debtflow/collections/internal"
	cardDatamodel "github.com/debtflow/collections/internal/core/datamodel/card"
)

// RepositoryAPI is the persistence surface the card service needs.
type RepositoryAPI interface {
	Create(c *cardDatamodel.StoredCard) error
	GetByID(id string) (*cardDatamodel.StoredCard, error)
	GetByDebtorID(debtorID string) ([]*cardDatamodel.StoredCard, error)
}

type CardService struct {
	repository RepositoryAPI
	logger     *slog.Logger
}

func NewCardService(repository RepositoryAPI, logger *slog.Logger) *CardService {
	return &CardService{
		repository: repository,
		logger:     logger,
	}
}

// ParseExpiry parses an MM/YY expiry with two non-empty components. Years are
// anchored to the 2000s, matching how the intake forms capture them.
func ParseExpiry(expiry string) (month, year int, appErr *errors.AppError) {
	parts := strings.Split(strings.TrimSpace(expiry), "/")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return 0, 0, errors.NewValidationError("expiry must be in MM/YY format", errors.ErrCodeInvalidExpiry)
	}

	m, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || m < 1 || m > 12 {
		return 0, 0, errors.NewValidationError("expiry month must be between 01 and 12", errors.ErrCodeInvalidExpiry)
	}

	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || y < 0 || y > 99 {
		return 0, 0, errors.NewValidationError("expiry year must be two digits", errors.ErrCodeInvalidExpiry)
	}

	return m, 2000 + y, nil
}

// CreateStoredCard identifies the raw number, keeps brand plus last4, and
// drops the PAN. Identification failures map straight to validation errors.
func (s *CardService) CreateStoredCard(debtorID, rawNumber, expiry string) (*cardDatamodel.StoredCard, error) {
	identity, err := Identify(rawNumber)
	if err != nil {
		if idErr, ok := err.(*IdentificationError); ok {
			return nil, idErr.AppError()
		}
		return nil, err
	}
	if !identity.IsValid {
		return nil, errors.NewValidationError("card number is incomplete", errors.ErrCodeInvalidCardInput)
	}

	month, year, appErr := ParseExpiry(expiry)
	if appErr != nil {
		return nil, appErr
	}

	digits := digitsOnly(rawNumber)
	stored := &cardDatamodel.StoredCard{
		ID:          uuid.New().String(),
		DebtorID:    debtorID,
		Brand:       identity.Brand,
		Last4:       digits[len(digits)-4:],
		ExpiryMonth: month,
		ExpiryYear:  year,
	}

	if err := s.repository.Create(stored); err != nil {
		s.logger.Error("failed to create stored card", "error", err, "debtor_id", debtorID)
		return nil, errors.NewInternalError("failed to store card", err)
	}

	s.logger.Info("stored card created",
		"card_id", stored.ID,
		"debtor_id", debtorID,
		"brand", stored.Brand,
		"last4", stored.Last4)

	return stored, nil
}

func (s *CardService) GetStoredCard(id string) (*cardDatamodel.StoredCard, error) {
	stored, err := s.repository.GetByID(id)
	if err != nil {
		return nil, errors.ErrCardNotFound
	}
	return stored, nil
}

func (s *CardService) ListDebtorCards(debtorID string) ([]*cardDatamodel.StoredCard, error) {
	return s.repository.GetByDebtorID(debtorID)
}
