package card

import (
	"fmt"
	"strings"

	errors "github.com/debtflow/collections/internal"
)

const (
	BrandVisa       = "Visa"
	BrandMastercard = "Mastercard"
	BrandAmex       = "American Express"
	BrandDiscover   = "Discover"
	BrandDiners     = "Diners Club"
	BrandJCB        = "JCB"

	CategoryPremium  = "premium"
	CategoryStandard = "standard"
)

// CardIdentity is the result of a successful identification. IsValid is only
// true once the number is long enough for a full length+checksum verdict;
// shorter inputs still surface the brand for live-typing feedback.
type CardIdentity struct {
	Brand    string `json:"brand"`
	CardType string `json:"card_type"`
	IsValid  bool   `json:"is_valid"`
	Category string `json:"category"`
}

// IdentificationError carries whatever partial brand metadata was determined
// before the failure, so the UI can keep showing brand feedback.
type IdentificationError struct {
	Code     errors.ErrorCode
	Brand    string
	CardType string
}

func (e *IdentificationError) Error() string {
	switch e.Code {
	case errors.ErrCodeCardTooShort:
		return "card number too short to identify"
	case errors.ErrCodeUnknownBin:
		return "card number does not match any known issuer"
	case errors.ErrCodeInvalidCardLength:
		return fmt.Sprintf("card number length is not valid for %s", e.Brand)
	case errors.ErrCodeChecksumFailed:
		return "card number failed checksum verification"
	default:
		return "card identification failed"
	}
}

func (e *IdentificationError) AppError() *errors.AppError {
	appErr := errors.NewValidationError(e.Error(), e.Code)
	if e.Brand != "" {
		appErr = appErr.WithDetails(map[string]string{
			"brand":     e.Brand,
			"card_type": e.CardType,
		})
	}
	return appErr
}

// brandRule matches a cleaned number whose leading digits fall in the
// inclusive range [low, high]. Rules are ordered most-specific prefix first
// so a longer prefix always wins over a shorter one.
type brandRule struct {
	low, high    string
	validLengths []int
	brand        string
	cardType     string
}

var brandRules = []brandRule{
	{"2221", "2720", []int{16}, BrandMastercard, "mastercard"},
	{"3528", "3528", []int{16}, BrandJCB, "jcb"},
	{"3589", "3589", []int{16}, BrandJCB, "jcb"},
	{"6011", "6011", []int{16, 19}, BrandDiscover, "discover"},
	{"300", "305", []int{14}, BrandDiners, "diners"},
	{"644", "649", []int{16, 19}, BrandDiscover, "discover"},
	{"34", "34", []int{15}, BrandAmex, "amex"},
	{"36", "36", []int{14}, BrandDiners, "diners"},
	{"37", "37", []int{15}, BrandAmex, "amex"},
	{"38", "38", []int{14}, BrandDiners, "diners"},
	{"51", "55", []int{16}, BrandMastercard, "mastercard"},
	{"65", "65", []int{16, 19}, BrandDiscover, "discover"},
	{"4", "4", []int{13, 16, 19}, BrandVisa, "visa"},
}

// Identify classifies a raw card number into brand/type and validates it
// structurally. Pure and deterministic; the PAN never leaves this function.
func Identify(raw string) (*CardIdentity, error) {
	digits := digitsOnly(raw)
	if len(digits) < 6 {
		return nil, &IdentificationError{Code: errors.ErrCodeCardTooShort}
	}

	rule := matchRule(digits)
	if rule == nil {
		return nil, &IdentificationError{Code: errors.ErrCodeUnknownBin}
	}

	lengthOK := containsInt(rule.validLengths, len(digits))
	if !lengthOK && len(digits) >= 13 {
		return nil, &IdentificationError{
			Code:     errors.ErrCodeInvalidCardLength,
			Brand:    rule.brand,
			CardType: rule.cardType,
		}
	}

	if len(digits) >= 13 && !luhnValid(digits) {
		return nil, &IdentificationError{
			Code:     errors.ErrCodeChecksumFailed,
			Brand:    rule.brand,
			CardType: rule.cardType,
		}
	}

	category := CategoryStandard
	if rule.brand == BrandAmex {
		category = CategoryPremium
	}

	return &CardIdentity{
		Brand:    rule.brand,
		CardType: rule.cardType,
		IsValid:  len(digits) >= 13,
		Category: category,
	}, nil
}

// ClassifyBrandOnly returns the brand for live-typing feedback, or an empty
// string when nothing matches yet.
func ClassifyBrandOnly(raw string) string {
	digits := digitsOnly(raw)
	if digits == "" {
		return ""
	}
	if rule := matchRule(digits); rule != nil {
		return rule.brand
	}
	return ""
}

// FormatGrouped groups digits for display: 4-4-4-4, except Amex which uses
// the embossed 4-6-5 layout.
func FormatGrouped(raw string) string {
	digits := digitsOnly(raw)
	if digits == "" {
		return ""
	}

	groups := []int{4, 4, 4, 4, 4}
	if rule := matchRule(digits); rule != nil && rule.brand == BrandAmex {
		groups = []int{4, 6, 5}
	}

	var parts []string
	rest := digits
	for _, size := range groups {
		if rest == "" {
			break
		}
		if len(rest) <= size {
			parts = append(parts, rest)
			rest = ""
			break
		}
		parts = append(parts, rest[:size])
		rest = rest[size:]
	}
	if rest != "" {
		parts = append(parts, rest)
	}
	return strings.Join(parts, " ")
}

func matchRule(digits string) *brandRule {
	for i := range brandRules {
		rule := &brandRules[i]
		width := len(rule.low)
		if len(digits) < width {
			continue
		}
		prefix := digits[:width]
		if prefix >= rule.low && prefix <= rule.high {
			return rule
		}
	}
	return nil
}

// luhnValid runs the mod-10 checksum: double every second digit from the
// right, subtract 9 when doubling exceeds 9, sum must divide by 10.
func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func digitsOnly(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
