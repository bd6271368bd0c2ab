// Package tokens mints and resolves the single-action bearer tokens
// that gate every unauthenticated deal operation. A token is a
// capability: it encodes one deal and one permitted action, nothing
// else, and possession is the only credential.
package tokens

import (
	"encoding/hex"
	"errors"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pratyushraj/noticebazaar/misc"
)

const (
	// 24 random bytes + 8 bytes of unixnano, hex encoded
	tokenLen = 24

	// How long the brand-side negotiation links stay live
	NegotiationAge = 14 * 24 * time.Hour
	// Signing links are shorter lived
	SigningAge = 7 * 24 * time.Hour
)

// The single action a token authorizes; fixed at mint time.
const (
	ActAccept       = "accept"
	ActDecline      = "decline"
	ActCounter      = "counter"
	ActSignBrand    = "sign-as-brand"
	ActSignCreator  = "sign-as-creator"
	ActViewContract = "view-contract"
)

var (
	ErrNotFound  = errors.New("Invalid or unknown link")
	ErrBadAction = errors.New("This link cannot perform the requested action")
)

type Token struct {
	DealId string `json:"dealId"`
	Action string `json:"action"`

	Expires int64 `json:"expires,omitempty"` // unix, 0 = never

	// Set by Consume; a consumed token short circuits to the settled
	// outcome instead of re-applying its action.
	Consumed   bool  `json:"consumed,omitempty"`
	ConsumedAt int64 `json:"consumedAt,omitempty"`

	Created int64 `json:"created,omitempty"`
}

func (t *Token) Expired(now time.Time) bool {
	return t.Expires != 0 && t.Expires <= now.Unix()
}

type Service struct {
	bucket string
}

func NewService(bucket string) *Service {
	return &Service{bucket: bucket}
}

// MintTx writes a fresh token for the given deal/action and returns the
// token string. expires of 0 means the token never expires (used for
// view-contract links, which only grant read access).
func (s *Service) MintTx(tx *bolt.Tx, dealId, action string, expires int64) (string, error) {
	tok := hex.EncodeToString(misc.CreateToken(tokenLen))
	t := &Token{
		DealId:  dealId,
		Action:  action,
		Expires: expires,
		Created: time.Now().Unix(),
	}
	if err := misc.PutTxJson(tx, s.bucket, tok, t); err != nil {
		return "", err
	}
	return tok, nil
}

// ResolveTx looks a token up. Unknown tokens fail with ErrNotFound;
// time-expired ones resolve fine with Expired=true so the caller can
// render a specific "link expired" message.
func (s *Service) ResolveTx(tx *bolt.Tx, tok string) (*Token, error) {
	var t Token
	if misc.GetTxJson(tx, s.bucket, tok, &t) != nil || t.DealId == "" {
		return nil, ErrNotFound
	}
	return &t, nil
}

// ConsumeTx marks a single-use token spent. Consuming twice is a no-op;
// the stored ConsumedAt of the first call is preserved.
func (s *Service) ConsumeTx(tx *bolt.Tx, tok string) error {
	var t Token
	if misc.GetTxJson(tx, s.bucket, tok, &t) != nil || t.DealId == "" {
		return ErrNotFound
	}
	if t.Consumed {
		return nil
	}
	t.Consumed = true
	t.ConsumedAt = time.Now().Unix()
	return misc.PutTxJson(tx, s.bucket, tok, &t)
}

// Mint is the non-tx convenience used by intake flows minting several
// links at once.
func (s *Service) Mint(db *bolt.DB, dealId, action string, expires int64) (tok string, err error) {
	err = db.Update(func(tx *bolt.Tx) error {
		tok, err = s.MintTx(tx, dealId, action, expires)
		return err
	})
	return
}

func (s *Service) Resolve(db *bolt.DB, tok string) (t *Token, err error) {
	err = db.View(func(tx *bolt.Tx) error {
		t, err = s.ResolveTx(tx, tok)
		return nil
	})
	if t == nil && err == nil {
		err = ErrNotFound
	}
	return
}
