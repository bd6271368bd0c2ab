// Package negotiation holds the brand-response state machine rules and
// the deterministic counter-offer suggestions shown on the brand-facing
// deal page.
package negotiation

import (
	"errors"
	"time"

	"github.com/pratyushraj/noticebazaar/internal/common"
)

const (
	// Budget bump applied when the brand's offer is under the
	// creator's benchmark rate
	budgetMultiplier = 1.2

	// Barter offers valued under this get an "ask for another unit"
	// suggestion
	LowBarterValue = 1000.0

	// Minimum lead time before the deadline; anything closer (or
	// unset) gets pushed out to now + this
	MinLeadTime = 10 * 24 * time.Hour

	maxDeliverables = 2

	UsageRightsNote = "Clarify usage rights: specify platforms, duration and whether paid amplification is included before accepting."
)

var (
	ErrBadBudget      = errors.New("Please provide a valid counter budget")
	ErrNoDeliverables = errors.New("Please provide at least one deliverable")
)

// Suggestions are computed from the live deal and returned to the
// caller; they are never applied silently.
type Suggestions struct {
	Budget       float64  `json:"budget,omitempty"`
	Deliverables []string `json:"deliverables,omitempty"`
	Timeline     int64    `json:"timeline,omitempty"` // unix
	Notes        []string `json:"notes,omitempty"`
}

// Suggest derives counter-offer suggestions. Pure in the deal: the same
// deal yields the same suggestions (the timeline suggestion is relative
// to the passed-in clock so tests can pin it).
func Suggest(d *common.Deal, now time.Time) *Suggestions {
	sg := &Suggestions{}

	if d.IsPaid() && d.BenchmarkRate > 0 && d.Budget < d.BenchmarkRate {
		sg.Budget = d.Budget * budgetMultiplier
	}

	if d.IsBarter() && d.BarterValue > 0 && d.BarterValue < LowBarterValue {
		sg.Notes = append(sg.Notes, "Product value is on the lower side; consider requesting an additional unit to balance the collaboration.")
	}

	if len(d.Deliverables) > maxDeliverables {
		sg.Deliverables = d.Deliverables[:len(d.Deliverables)-1]
	}

	if d.Deadline == 0 || time.Unix(d.Deadline, 0).Sub(now) < MinLeadTime {
		sg.Timeline = now.Add(MinLeadTime).Unix()
	}

	sg.Notes = append(sg.Notes, UsageRightsNote)
	return sg
}

// SettledMessage renders the friendly explanation shown when a stale or
// duplicate link lands on a deal whose brand response is already
// terminal. Stale links are expected traffic, not errors.
func SettledMessage(d *common.Deal) string {
	switch d.BrandResponse {
	case common.ResponseAccepted:
		return "This deal has already been accepted. Nothing more to do here - the contract is on its way."
	case common.ResponseDeclined:
		return "This deal has already been declined."
	case common.ResponseCountered:
		return "A counter offer has already been sent for this deal. The creator will follow up over email."
	}
	return ""
}

// ValidateCounter rejects a malformed counter before any state is
// touched.
func ValidateCounter(budget float64, deliverables []string) error {
	if budget <= 0 {
		return ErrBadBudget
	}
	if len(deliverables) == 0 {
		return ErrNoDeliverables
	}
	for _, dl := range deliverables {
		if dl == "" {
			return ErrNoDeliverables
		}
	}
	return nil
}
