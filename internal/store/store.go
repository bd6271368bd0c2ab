// Package store is the typed record-store adapter over bolt. Bolt
// serializes Update transactions, so two near-simultaneous requests for
// the same deal cannot both win as long as every mutation re-reads and
// re-checks inside its transaction; UpdateDealIf packages that
// read-check-mutate sequence for callers that need nothing else in the
// transaction.
package store

import (
	"encoding/json"
	"errors"

	"github.com/boltdb/bolt"
	"github.com/pratyushraj/noticebazaar/internal/common"
	"github.com/pratyushraj/noticebazaar/misc"
)

var ErrDealNotFound = errors.New("Deal not found")

type Store struct {
	db     *bolt.DB
	bucket string
}

func New(db *bolt.DB, bucket string) *Store {
	return &Store{db: db, bucket: bucket}
}

func (s *Store) DB() *bolt.DB { return s.db }

func (s *Store) GetDealTx(tx *bolt.Tx, id string) (*common.Deal, error) {
	var d common.Deal
	if misc.GetTxJson(tx, s.bucket, id, &d) != nil || d.Id == "" {
		return nil, ErrDealNotFound
	}
	return &d, nil
}

func (s *Store) GetDeal(id string) (d *common.Deal, err error) {
	s.db.View(func(tx *bolt.Tx) error {
		d, err = s.GetDealTx(tx, id)
		return nil
	})
	return
}

func (s *Store) PutDealTx(tx *bolt.Tx, d *common.Deal) error {
	if d.Id == "" {
		return misc.ErrMissingId
	}
	return misc.PutTxJson(tx, s.bucket, d.Id, d)
}

func (s *Store) InsertDeal(d *common.Deal) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return s.PutDealTx(tx, d)
	})
}

// DeleteDealTx removes a deal record outright. The lifecycle never
// deletes; this exists for operator cleanup of mis-entered deals.
func (s *Store) DeleteDealTx(tx *bolt.Tx, id string) error {
	return misc.DelBucketBytes(tx, s.bucket, id)
}

// ForEachDeal scans every deal; the callback returning false stops the
// scan. Used by dashboard-style filters, not by the state machine.
func (s *Store) ForEachDeal(fn func(d *common.Deal) bool) error {
	err := s.db.View(func(tx *bolt.Tx) error {
		return misc.GetBucket(tx, s.bucket).ForEach(func(k, v []byte) error {
			var d common.Deal
			if jsonOK(v, &d) && d.Id != "" && !fn(&d) {
				return errStop
			}
			return nil
		})
	})
	if err == errStop {
		err = nil
	}
	return err
}

var errStop = errors.New("stop")

// UpdateDealIf is the conditional-update primitive: it re-reads the
// deal inside a write transaction, runs check against the current
// state, and only applies mutate when the check holds. check errors
// pass through untouched so callers can distinguish their own
// idempotent and conflict outcomes.
func (s *Store) UpdateDealIf(id string, check func(d *common.Deal) error, mutate func(d *common.Deal) error) (*common.Deal, error) {
	var out *common.Deal
	err := s.db.Update(func(tx *bolt.Tx) error {
		d, err := s.GetDealTx(tx, id)
		if err != nil {
			return err
		}
		if err = check(d); err != nil {
			out = d
			return err
		}
		if err = mutate(d); err != nil {
			return err
		}
		out = d
		return s.PutDealTx(tx, d)
	})
	return out, err
}

// UpdateDealIfTx is UpdateDealIf for callers already holding a write
// transaction (token consumption + deal mutation commit together).
func (s *Store) UpdateDealIfTx(tx *bolt.Tx, id string, check func(d *common.Deal) error, mutate func(d *common.Deal) error) (*common.Deal, error) {
	d, err := s.GetDealTx(tx, id)
	if err != nil {
		return nil, err
	}
	if err = check(d); err != nil {
		return d, err
	}
	if err = mutate(d); err != nil {
		return d, err
	}
	return d, s.PutDealTx(tx, d)
}

func jsonOK(v []byte, out interface{}) bool {
	return len(v) > 0 && json.Unmarshal(v, out) == nil
}
