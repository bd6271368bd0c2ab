package contract

import (
	"strconv"
	"strings"
	"time"

	"github.com/pratyushraj/noticebazaar/internal/common"
)

// Defaults baked into every generated agreement; the dash does not let
// parties edit these yet.
const (
	paymentMethod         = "Bank transfer / UPI"
	paymentTimelineDays   = 15
	usageDurationMonths   = 6
	terminationNoticeDays = 7
	jurisdiction          = "Courts of Mumbai, Maharashtra"

	// Barter clauses
	dispatchWindowDays = 7
)

// Schema is the normalized contract document model; rendering is a pure
// function of it.
type Schema struct {
	DealId      string
	CreatorName string
	BrandName   string

	CollabType   string
	Deliverables []string

	Amount            float64
	BarterValue       float64
	BarterDescription string

	Payment     PaymentBlock
	Usage       UsageBlock
	Exclusivity ExclusivityBlock

	TerminationNoticeDays int
	Jurisdiction          string

	// Creator-protective clauses injected for barter deals
	AdditionalTerms []string

	Delivery *DeliverySummary

	GeneratedAt int64
}

type PaymentBlock struct {
	Method       string
	TimelineDays int
}

type UsageBlock struct {
	Type           string
	Platforms      []string
	DurationMonths int
	PaidAds        bool
	Whitelisting   bool
}

type ExclusivityBlock struct {
	Enabled        bool
	Category       string
	DurationMonths int
}

type DeliverySummary struct {
	Name    string
	Phone   string // masked, first two and last two digits only
	Address string
}

// BuildSchema maps a deal into the contract schema. Pure; the only
// clock read is the GeneratedAt stamp.
func BuildSchema(d *common.Deal, now time.Time) *Schema {
	s := &Schema{
		DealId:       d.Id,
		CreatorName:  d.CreatorName,
		BrandName:    d.BrandName,
		CollabType:   d.CollabType,
		Deliverables: d.Deliverables,

		Amount:            d.Budget,
		BarterValue:       d.BarterValue,
		BarterDescription: d.BarterDescription,

		Payment: PaymentBlock{
			Method:       paymentMethod,
			TimelineDays: paymentTimelineDays,
		},
		Usage: UsageBlock{
			Type:           "Organic social",
			Platforms:      []string{"Instagram"},
			DurationMonths: usageDurationMonths,
		},
		Exclusivity: ExclusivityBlock{},

		TerminationNoticeDays: terminationNoticeDays,
		Jurisdiction:          jurisdiction,

		GeneratedAt: now.Unix(),
	}

	if d.IsBarter() {
		s.AdditionalTerms = barterTerms(d.BrandName)
		if d.Delivery != nil {
			s.Delivery = &DeliverySummary{
				Name:    d.Delivery.Name,
				Phone:   MaskPhone(d.Delivery.Phone),
				Address: d.Delivery.Address,
			}
		}
	}

	return s
}

// The fixed creator-protective clauses every barter agreement carries.
func barterTerms(brand string) []string {
	return []string{
		brand + " must dispatch the product within " + strconv.Itoa(dispatchWindowDays) + " days of contract execution, with a tracking number shared with the creator.",
		"The creator may reject products that arrive damaged or materially different from what was agreed, without affecting their rights under this agreement.",
		"The content delivery timeline starts only once the creator confirms receipt of the product in acceptable condition.",
		"Non-delivery of the product voids " + brand + "'s rights under this collaboration.",
		"If no product is received, the creator has no content obligation whatsoever.",
	}
}

// MaskPhone keeps the first two and last two digits and stars the rest,
// so the shareable document never exposes a full contact number.
func MaskPhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	if len(digits) < 5 {
		return strings.Repeat("*", len(digits))
	}
	return digits[:2] + strings.Repeat("*", len(digits)-4) + digits[len(digits)-2:]
}
