package common

const (
	RoleBrand   = "brand"
	RoleCreator = "creator"
)

// Signature is the per-role signing sub-record. It is created at OTP
// verification time (Signed=false) and finalized exactly once by the
// sign handler; a signed record is never overwritten.
type Signature struct {
	Role   string `json:"role"`
	Signed bool   `json:"signed"`

	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`

	// Snapshot of the contract the party actually signed
	ContractURL string `json:"contractUrl,omitempty"`

	IP     string `json:"ip,omitempty"`
	Device string `json:"device,omitempty"` // raw user agent

	// Provenance copied from the OTP challenge that authorized this
	// signature; the sign handler checks OtpVerified, not the code.
	OtpVerified   bool  `json:"otpVerified"`
	OtpVerifiedAt int64 `json:"otpVerifiedAt,omitempty"`

	SignedAt int64 `json:"signedAt,omitempty"`
}
