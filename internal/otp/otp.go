// Package otp issues and checks the 6-digit codes that gate contract
// signing. A challenge is bound to (signing token, email); verifying it
// never signs anything by itself, it only flips the otp_verified flag
// the sign handler checks later.
package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/boltdb/bolt"
	"github.com/google/uuid"
	"github.com/pratyushraj/noticebazaar/misc"
)

const (
	// Codes die quickly; the link token carries the long-lived grant.
	ChallengeAge = 10 * time.Minute

	// Minimum gap between sends for the same token
	ResendCooldown = 30 * time.Second
)

var (
	ErrInvalidOtp = errors.New("Invalid or expired verification code")
	ErrCooldown   = errors.New("Please wait a moment before requesting another code")
)

// Challenge is keyed by the signing token string, so reissuing a code
// overwrites (and thereby invalidates) the previous one.
type Challenge struct {
	Id     string `json:"id"`
	Token  string `json:"token"`
	DealId string `json:"dealId"`
	Email  string `json:"email"`

	Code string `json:"code"`

	IssuedAt int64 `json:"issuedAt"`
	Expires  int64 `json:"expires"`
	Consumed bool  `json:"consumed,omitempty"`
}

func (ch *Challenge) Expired(now time.Time) bool {
	return ch.Expires <= now.Unix()
}

type Verifier struct {
	bucket string
}

func NewVerifier(bucket string) *Verifier {
	return &Verifier{bucket: bucket}
}

// IssueTx creates a fresh challenge for the given signing token. The
// previous challenge, if any, is replaced. Returns ErrCooldown when
// called again within the resend window.
func (v *Verifier) IssueTx(tx *bolt.Tx, token, dealId, email string) (*Challenge, error) {
	now := time.Now()

	var prev Challenge
	if misc.GetTxJson(tx, v.bucket, token, &prev) == nil && prev.Id != "" {
		if !prev.Consumed && now.Unix()-prev.IssuedAt < int64(ResendCooldown/time.Second) {
			return nil, ErrCooldown
		}
	}

	ch := &Challenge{
		Id:       uuid.NewString(),
		Token:    token,
		DealId:   dealId,
		Email:    email,
		Code:     genCode(),
		IssuedAt: now.Unix(),
		Expires:  now.Add(ChallengeAge).Unix(),
	}
	if err := misc.PutTxJson(tx, v.bucket, token, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// VerifyTx burns the challenge on success. Mismatch, expiry and replay
// all collapse into ErrInvalidOtp; the caller gets no oracle beyond
// valid / not valid.
func (v *Verifier) VerifyTx(tx *bolt.Tx, token, code string) (*Challenge, error) {
	var ch Challenge
	if misc.GetTxJson(tx, v.bucket, token, &ch) != nil || ch.Id == "" {
		return nil, ErrInvalidOtp
	}
	if ch.Consumed || ch.Expired(time.Now()) || ch.Code != code {
		return nil, ErrInvalidOtp
	}

	ch.Consumed = true
	ch.Code = "" // the code is done; only the verified flag survives
	if err := misc.PutTxJson(tx, v.bucket, token, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func genCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		panic("otp: crypto/rand failed: " + err.Error())
	}
	return fmt.Sprintf("%06d", n.Int64())
}
