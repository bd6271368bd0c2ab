// Package audit is the append-only side channel recording every state
// changing event on a deal. It is written for humans; the state machine
// never reads it back, and a failed write must never fail the caller.
package audit

import (
	"bytes"
	"encoding/json"
	"log"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pratyushraj/noticebazaar/misc"
)

// EventKind is closed; add new kinds here, not ad hoc strings.
const (
	BrandAccepted           = "BRAND_ACCEPTED"
	BrandDeclined           = "BRAND_DECLINED"
	BrandCountered          = "BRAND_COUNTERED"
	SignedAsCreator         = "SIGNED_AS_CREATOR"
	SignedAsBrand           = "SIGNED_AS_BRAND"
	SignedContractUploaded  = "SIGNED_CONTRACT_UPLOADED"
	ContractGenerated       = "CONTRACT_GENERATED"
	DeliveryDetailsReceived = "DELIVERY_DETAILS_SUBMITTED"
	OtpSent                 = "OTP_SENT"
	OtpVerified             = "OTP_VERIFIED"
	ReminderSent            = "REMINDER_SENT"
	MessageShared           = "MESSAGE_SHARED"
)

// SystemActor is used when no human triggered the event.
const SystemActor = "system"

type Entry struct {
	Id     string `json:"id"`
	DealId string `json:"dealId"`
	Actor  string `json:"actor"`
	Kind   string `json:"kind"`

	Meta map[string]interface{} `json:"meta,omitempty"`

	TS int64 `json:"ts"`
}

type Log struct {
	bucket string
}

func NewLog(bucket string) *Log {
	return &Log{bucket: bucket}
}

// Record appends an entry, fire and forget. Failures are logged and
// swallowed so a dead audit bucket can never block a transition.
func (l *Log) Record(db *bolt.DB, dealId, actor, kind string, meta map[string]interface{}) {
	err := db.Update(func(tx *bolt.Tx) error {
		return l.RecordTx(tx, dealId, actor, kind, meta)
	})
	if err != nil {
		log.Println("audit write failed:", dealId, kind, err)
	}
}

// RecordTx appends within the caller's transaction. Keys are
// dealId:paddedSeq so entries scan in insertion order per deal.
func (l *Log) RecordTx(tx *bolt.Tx, dealId, actor, kind string, meta map[string]interface{}) error {
	seq, err := misc.GetNextIndex(tx, l.bucket)
	if err != nil {
		return err
	}
	e := &Entry{
		Id:     seq,
		DealId: dealId,
		Actor:  actor,
		Kind:   kind,
		Meta:   meta,
		TS:     time.Now().Unix(),
	}
	return misc.PutTxJson(tx, l.bucket, dealId+":"+pad(seq), e)
}

// ForDeal returns the entries for one deal in insertion order.
func (l *Log) ForDeal(db *bolt.DB, dealId string) (out []*Entry, err error) {
	prefix := []byte(dealId + ":")
	err = db.View(func(tx *bolt.Tx) error {
		c := misc.GetBucket(tx, l.bucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var e Entry
			if json.Unmarshal(v, &e) == nil {
				out = append(out, &e)
			}
		}
		return nil
	})
	return
}

const padWidth = 19

func pad(seq string) string {
	if len(seq) >= padWidth {
		return seq
	}
	buf := make([]byte, padWidth)
	n := padWidth - len(seq)
	for i := 0; i < n; i++ {
		buf[i] = '0'
	}
	copy(buf[n:], seq)
	return string(buf)
}
