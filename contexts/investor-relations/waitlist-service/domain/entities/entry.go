package entities

import (
	"strings"
	"time"

	domainerrors "tokeniza/contexts/investor-relations/waitlist-service/domain/errors"
)

type WaitlistStatus string

const (
	WaitlistStatusPending      WaitlistStatus = "pending"
	WaitlistStatusContacted    WaitlistStatus = "contacted"
	WaitlistStatusConverted    WaitlistStatus = "converted"
	WaitlistStatusUnsubscribed WaitlistStatus = "unsubscribed"
)

type InvestmentRange string

const (
	InvestmentRangeUnder10K    InvestmentRange = "under_10k"
	InvestmentRange10K50K      InvestmentRange = "10k_50k"
	InvestmentRange50K100K     InvestmentRange = "50k_100k"
	InvestmentRange100K500K    InvestmentRange = "100k_500k"
	InvestmentRangeOver500K    InvestmentRange = "over_500k"
	InvestmentRangeUndisclosed InvestmentRange = ""
)

// ParseInvestmentRange validates an optional investment range value.
func ParseInvestmentRange(value string) (InvestmentRange, error) {
	switch InvestmentRange(value) {
	case InvestmentRangeUndisclosed,
		InvestmentRangeUnder10K,
		InvestmentRange10K50K,
		InvestmentRange50K100K,
		InvestmentRange100K500K,
		InvestmentRangeOver500K:
		return InvestmentRange(value), nil
	default:
		return "", domainerrors.ErrInvalidWaitlistRequest
	}
}

// Entry is one investor on the launch waitlist. Email is the natural key;
// joining twice with the same email is rejected.
type Entry struct {
	EntryID         string
	Email           string
	Name            string
	InterestAreas   []string
	InvestmentRange InvestmentRange
	Status          WaitlistStatus
	CreatedAt       time.Time
	ContactedAt     time.Time
	UpdatedAt       time.Time
}

func NewEntry(
	entryID string,
	email string,
	name string,
	interestAreas []string,
	investmentRange InvestmentRange,
	now time.Time,
) (Entry, error) {
	email = NormalizeEmail(email)
	if entryID == "" || !IsValidEmail(email) {
		return Entry{}, domainerrors.ErrInvalidWaitlistRequest
	}
	return Entry{
		EntryID:         entryID,
		Email:           email,
		Name:            strings.TrimSpace(name),
		InterestAreas:   interestAreas,
		InvestmentRange: investmentRange,
		Status:          WaitlistStatusPending,
		CreatedAt:       now.UTC(),
		UpdatedAt:       now.UTC(),
	}, nil
}

// MarkContacted records the first outreach to a pending entry.
func (e *Entry) MarkContacted(now time.Time) error {
	if e.Status != WaitlistStatusPending {
		return domainerrors.ErrInvalidStatusChange
	}
	e.Status = WaitlistStatusContacted
	e.ContactedAt = now.UTC()
	e.UpdatedAt = now.UTC()
	return nil
}

// MarkConverted records that a contacted investor signed up.
func (e *Entry) MarkConverted(now time.Time) error {
	if e.Status != WaitlistStatusContacted {
		return domainerrors.ErrInvalidStatusChange
	}
	e.Status = WaitlistStatusConverted
	e.UpdatedAt = now.UTC()
	return nil
}

// Unsubscribe removes the entry from further outreach. Allowed from any
// non-terminal state.
func (e *Entry) Unsubscribe(now time.Time) error {
	if e.Status == WaitlistStatusConverted || e.Status == WaitlistStatusUnsubscribed {
		return domainerrors.ErrInvalidStatusChange
	}
	e.Status = WaitlistStatusUnsubscribed
	e.UpdatedAt = now.UTC()
	return nil
}

// NormalizeEmail lowercases and trims an email address for comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail applies a minimal shape check: one @ with a dotted domain.
func IsValidEmail(email string) bool {
	if len(email) < 6 {
		return false
	}
	at := strings.Index(email, "@")
	if at <= 0 || at != strings.LastIndex(email, "@") {
		return false
	}
	domain := email[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
