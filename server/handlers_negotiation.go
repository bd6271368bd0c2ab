package server

import (
	"time"

	"github.com/boltdb/bolt"
	"github.com/gin-gonic/gin"

	"github.com/pratyushraj/noticebazaar/internal/audit"
	"github.com/pratyushraj/noticebazaar/internal/common"
	"github.com/pratyushraj/noticebazaar/internal/metrics"
	"github.com/pratyushraj/noticebazaar/internal/negotiation"
	"github.com/pratyushraj/noticebazaar/internal/tokens"
	"github.com/pratyushraj/noticebazaar/misc"
)

///////// Brand-side negotiation (token gated) /////////

type dealDetails struct {
	Deal          *dealSummary             `json:"deal"`
	Suggestions   *negotiation.Suggestions `json:"suggestions,omitempty"`
	StatusMessage string                   `json:"statusMessage,omitempty"`
}

// getDealByToken renders the brand-facing deal page: terms, computed
// counter suggestions, and a friendly note when the link is already
// settled. Settled and stale links are expected traffic, never errors.
func getDealByToken(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var out *dealDetails
		err := s.Deals.DB().View(func(tx *bolt.Tx) error {
			t, err := s.Tokens.ResolveTx(tx, c.Param("token"))
			if err != nil {
				misc.AbortWithErr(c, 404, tokens.ErrNotFound)
				return nil
			}
			switch t.Action {
			case tokens.ActAccept, tokens.ActDecline, tokens.ActCounter:
			default:
				// view and sign tokens have their own endpoints
				misc.AbortWithErr(c, 403, tokens.ErrBadAction)
				return nil
			}
			if t.Expired(time.Now()) {
				misc.AbortWithErr(c, 410, ErrExpiredLink)
				return nil
			}

			d, err := s.Deals.GetDealTx(tx, t.DealId)
			if err != nil {
				misc.AbortWithErr(c, 404, err)
				return nil
			}

			out = &dealDetails{Deal: summarize(d)}
			if d.ResponseSettled() || t.Consumed {
				out.StatusMessage = negotiation.SettledMessage(d)
			} else {
				out.Suggestions = negotiation.Suggest(d, time.Now())
			}
			return nil
		})
		if err != nil {
			c.JSON(500, misc.StatusErr(err.Error()))
			return
		}
		if out != nil {
			c.JSON(200, out)
		}
	}
}

// confirmDeal is the accept path. Accept is the durable fact; contract
// generation is a retryable side effect that runs after the commit and
// can never fail the accept.
func confirmDeal(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			fresh bool
			deal  *common.Deal
		)
		err := s.Deals.DB().Update(func(tx *bolt.Tx) error {
			t, code, err := s.resolveAction(tx, c.Param("token"), tokens.ActAccept)
			if err != nil {
				misc.AbortWithErr(c, code, err)
				return nil
			}

			d, err := s.Deals.GetDealTx(tx, t.DealId)
			if err != nil {
				misc.AbortWithErr(c, 404, err)
				return nil
			}
			deal = d

			if d.ResponseSettled() {
				// idempotent short circuit: the settled outcome is
				// returned, nothing is re-applied
				return s.Tokens.ConsumeTx(tx, c.Param("token"))
			}

			d.BrandResponse = common.ResponseAccepted
			d.Status = common.StatusSent
			d.Accepted = time.Now().Unix()
			fresh = true

			if err = s.Tokens.ConsumeTx(tx, c.Param("token")); err != nil {
				return err
			}
			return s.Deals.PutDealTx(tx, d)
		})
		if err != nil {
			c.JSON(500, misc.StatusErr(err.Error()))
			return
		}
		if deal == nil { // aborted above
			return
		}

		if !fresh {
			c.JSON(200, gin.H{"status": "success", "msg": negotiation.SettledMessage(deal)})
			return
		}

		metrics.DealsAccepted.Inc()
		s.Audit.Record(s.Deals.DB(), deal.Id, deal.BrandName, audit.BrandAccepted, map[string]interface{}{
			"brandEmail": deal.BrandEmail,
		})

		// Barter deals generate the contract only once delivery
		// details land; everything else kicks off right away.
		if !deal.IsBarter() {
			go func(id string) {
				if _, err := s.generateContract(id); err != nil {
					s.Alert("Contract generation failed for "+id, err)
				}
			}(deal.Id)
		}

		c.JSON(200, gin.H{"status": "success", "msg": "Deal accepted! The agreement is being prepared."})
	}
}

type declineReq struct {
	Reason string `json:"reason,omitempty"`
}

func declineDeal(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req declineReq
		misc.BindJSON(c, &req) // body is optional here

		var (
			fresh bool
			deal  *common.Deal
		)
		err := s.Deals.DB().Update(func(tx *bolt.Tx) error {
			t, code, err := s.resolveAction(tx, c.Param("token"), tokens.ActDecline)
			if err != nil {
				misc.AbortWithErr(c, code, err)
				return nil
			}

			d, err := s.Deals.GetDealTx(tx, t.DealId)
			if err != nil {
				misc.AbortWithErr(c, 404, err)
				return nil
			}
			deal = d

			if d.ResponseSettled() {
				return s.Tokens.ConsumeTx(tx, c.Param("token"))
			}

			d.BrandResponse = common.ResponseDeclined
			d.DeclineReason = req.Reason
			d.Declined = time.Now().Unix()
			fresh = true

			if err = s.Tokens.ConsumeTx(tx, c.Param("token")); err != nil {
				return err
			}
			return s.Deals.PutDealTx(tx, d)
		})
		if err != nil {
			c.JSON(500, misc.StatusErr(err.Error()))
			return
		}
		if deal == nil {
			return
		}

		if !fresh {
			c.JSON(200, gin.H{"status": "success", "msg": negotiation.SettledMessage(deal)})
			return
		}

		metrics.DealsDeclined.Inc()
		s.Audit.Record(s.Deals.DB(), deal.Id, deal.BrandName, audit.BrandDeclined, map[string]interface{}{
			"reason": req.Reason,
		})
		s.notifyDeclined(deal)

		c.JSON(200, gin.H{"status": "success", "msg": "The creator has been notified."})
	}
}

type counterReq struct {
	Budget       float64  `json:"budget"`
	Deliverables []string `json:"deliverables"`
	Timeline     int64    `json:"timeline,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

func counterDeal(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req counterReq
		if err := misc.BindJSON(c, &req); err != nil {
			c.JSON(400, misc.StatusErr("Error unmarshalling request body:"+err.Error()))
			return
		}

		// validate before any state is touched
		if err := negotiation.ValidateCounter(req.Budget, req.Deliverables); err != nil {
			misc.AbortWithErr(c, 400, err)
			return
		}

		var (
			fresh bool
			deal  *common.Deal
		)
		err := s.Deals.DB().Update(func(tx *bolt.Tx) error {
			t, code, err := s.resolveAction(tx, c.Param("token"), tokens.ActCounter)
			if err != nil {
				misc.AbortWithErr(c, code, err)
				return nil
			}

			d, err := s.Deals.GetDealTx(tx, t.DealId)
			if err != nil {
				misc.AbortWithErr(c, 404, err)
				return nil
			}
			deal = d

			if d.ResponseSettled() {
				return s.Tokens.ConsumeTx(tx, c.Param("token"))
			}

			d.BrandResponse = common.ResponseCountered
			d.Counter = &common.CounterOffer{
				Budget:       req.Budget,
				Deliverables: req.Deliverables,
				Timeline:     req.Timeline,
				Notes:        req.Notes,
				Created:      time.Now().Unix(),
			}
			fresh = true

			if err = s.Tokens.ConsumeTx(tx, c.Param("token")); err != nil {
				return err
			}
			return s.Deals.PutDealTx(tx, d)
		})
		if err != nil {
			c.JSON(500, misc.StatusErr(err.Error()))
			return
		}
		if deal == nil {
			return
		}

		if !fresh {
			c.JSON(200, gin.H{"status": "success", "msg": negotiation.SettledMessage(deal)})
			return
		}

		metrics.DealsCountered.Inc()
		s.Audit.Record(s.Deals.DB(), deal.Id, deal.BrandName, audit.BrandCountered, map[string]interface{}{
			"budget":       req.Budget,
			"deliverables": req.Deliverables,
		})
		s.notifyCounterReceived(deal)

		c.JSON(200, gin.H{"status": "success", "msg": "Counter offer sent. The creator will follow up over email."})
	}
}
