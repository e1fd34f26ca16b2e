package security

import (
	"context"
	"time"

	"tradelink/internal/core/apperror"
)

// PostingPolicy defines rules for document posting dates.
// A distributor closing its books for a month locks that period.
type PostingPolicy interface {
	// CanPost checks if a document can be posted with given date
	CanPost(ctx context.Context, docDate time.Time) error

	// GetClosedPeriod returns the date until which the period is closed
	GetClosedPeriod(ctx context.Context) time.Time
}

// StrictPolicy forbids any postings into a closed period.
type StrictPolicy struct {
	closedUntil time.Time
}

// NewStrictPolicy creates a policy that forbids postings before closedUntil.
func NewStrictPolicy(closedUntil time.Time) *StrictPolicy {
	return &StrictPolicy{closedUntil: closedUntil}
}

func (p *StrictPolicy) CanPost(ctx context.Context, docDate time.Time) error {
	if docDate.Before(p.closedUntil) {
		return apperror.NewPeriodClosed(p.closedUntil.Format("2006-01"))
	}
	return nil
}

func (p *StrictPolicy) GetClosedPeriod(ctx context.Context) time.Time {
	return p.closedUntil
}

// OpenPolicy allows all postings (for development/testing).
type OpenPolicy struct{}

func (OpenPolicy) CanPost(ctx context.Context, docDate time.Time) error { return nil }
func (OpenPolicy) GetClosedPeriod(ctx context.Context) time.Time        { return time.Time{} }
