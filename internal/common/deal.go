package common

// This deal represents a single brand <-> creator collaboration and
// carries its full lifecycle state. Do NOT collapse the three status
// axes into one enum; the dash needs them independently.
type Deal struct {
	Id string `json:"id"`

	CreatorId    string `json:"creatorId"`
	CreatorName  string `json:"creatorName,omitempty"`
	CreatorEmail string `json:"creatorEmail,omitempty"`

	// The brand has no account; email is where action links go.
	BrandName  string `json:"brandName"`
	BrandEmail string `json:"brandEmail"`
	BrandPhone string `json:"brandPhone,omitempty"`

	CollabType string `json:"collabType"` // paid | barter | hybrid

	Deliverables []string `json:"deliverables,omitempty"`

	Budget            float64 `json:"budget,omitempty"`
	BarterValue       float64 `json:"barterValue,omitempty"`
	BarterDescription string  `json:"barterDescription,omitempty"`

	// Creator's benchmark rate at intake, used for counter suggestions
	BenchmarkRate float64 `json:"benchmarkRate,omitempty"`

	Deadline int64 `json:"deadline,omitempty"` // unix, 0 = unset

	// Lifecycle axes
	Status          string `json:"status"`
	BrandResponse   string `json:"brandResponseStatus"`
	ExecutionStatus string `json:"dealExecutionStatus"`

	DeclineReason string        `json:"declineReason,omitempty"`
	Counter       *CounterOffer `json:"counter,omitempty"`

	// The brand-side action links minted at intake; kept on the deal
	// so reminders can re-send or rotate them. Never exposed through
	// the token-gated summary.
	BrandLinks *TokenSet `json:"brandLinks,omitempty"`

	ContractFileURL   string `json:"contractFileUrl,omitempty"`
	SignedContractURL string `json:"signedContractUrl,omitempty"`

	BrandSignature   *Signature `json:"brandSignature,omitempty"`
	CreatorSignature *Signature `json:"creatorSignature,omitempty"`

	Delivery *DeliveryDetails `json:"delivery,omitempty"`

	Created  int64 `json:"created,omitempty"`
	Accepted int64 `json:"accepted,omitempty"` // set once on accepted_verified
	Declined int64 `json:"declined,omitempty"`
	Signed   int64 `json:"signed,omitempty"` // set when BOTH roles have signed
}

// Status values (coarse phase)
const (
	StatusNegotiation      = "negotiation"
	StatusSent             = "sent"
	StatusAwaitingShipment = "awaiting_product_shipment" // barter only
	StatusPaymentPending   = "payment_pending"
	StatusCompleted        = "completed"
)

// BrandResponse values. AcceptedVerified is write-once; nothing may
// overwrite it afterwards.
const (
	ResponsePending   = "pending"
	ResponseAccepted  = "accepted_verified"
	ResponseDeclined  = "declined"
	ResponseCountered = "countered"
)

// ExecutionStatus values
const (
	ExecutionUnsigned = "unsigned"
	ExecutionSigned   = "signed"
)

// CollabType values
const (
	CollabPaid   = "paid"
	CollabBarter = "barter"
	CollabHybrid = "hybrid"
)

// TokenSet is the accept/decline/counter link trio emailed to a brand.
type TokenSet struct {
	Accept  string `json:"accept"`
	Decline string `json:"decline"`
	Counter string `json:"counter"`
}

type CounterOffer struct {
	Budget       float64  `json:"budget,omitempty"`
	Deliverables []string `json:"deliverables,omitempty"`
	Timeline     int64    `json:"timeline,omitempty"` // unix
	Notes        string   `json:"notes,omitempty"`
	Created      int64    `json:"created,omitempty"`
}

type DeliveryDetails struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes,omitempty"`
	Created int64  `json:"created,omitempty"`
}

// ResponseSettled reports whether the brand negotiation has reached a
// terminal answer; stale links against a settled deal short circuit.
func (d *Deal) ResponseSettled() bool {
	switch d.BrandResponse {
	case ResponseAccepted, ResponseDeclined, ResponseCountered:
		return true
	}
	return false
}

func (d *Deal) IsBarter() bool {
	return d.CollabType == CollabBarter
}

// IsPaid covers any deal with a monetary component.
func (d *Deal) IsPaid() bool {
	return d.CollabType == CollabPaid || d.CollabType == CollabHybrid
}

func (d *Deal) SignatureFor(role string) *Signature {
	switch role {
	case RoleBrand:
		return d.BrandSignature
	case RoleCreator:
		return d.CreatorSignature
	}
	return nil
}

func (d *Deal) SetSignature(role string, sig *Signature) {
	switch role {
	case RoleBrand:
		d.BrandSignature = sig
	case RoleCreator:
		d.CreatorSignature = sig
	}
}

// BothSigned gates flipping ExecutionStatus; a single role signing does
// not execute the deal.
func (d *Deal) BothSigned() bool {
	return d.BrandSignature != nil && d.BrandSignature.Signed &&
		d.CreatorSignature != nil && d.CreatorSignature.Signed
}

// SignerEmail returns the address a signing OTP for the given role must
// go to. The caller never gets to pick the address.
func (d *Deal) SignerEmail(role string) string {
	if role == RoleBrand {
		return d.BrandEmail
	}
	return d.CreatorEmail
}
