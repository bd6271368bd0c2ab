package server

import (
	"errors"
	"time"

	"github.com/boltdb/bolt"
	"github.com/gin-gonic/gin"

	"github.com/pratyushraj/noticebazaar/internal/audit"
	"github.com/pratyushraj/noticebazaar/internal/common"
	"github.com/pratyushraj/noticebazaar/internal/metrics"
	"github.com/pratyushraj/noticebazaar/internal/otp"
	"github.com/pratyushraj/noticebazaar/misc"
)

var (
	ErrOtpRequired    = errors.New("Please verify your email with the one-time code before signing")
	ErrAlreadySigned  = errors.New("This party has already signed the agreement")
	ErrSignerDetails  = errors.New("Please provide the signer's full name and email")
	ErrBadRole        = errors.New("Unknown signing role")
	ErrNoSignedUpload = errors.New("Please provide the signed document")
)

///////// Signing (token gated, OTP verified) /////////

// sendOtp issues the 6-digit code to the address bound to the signing
// token. The caller never supplies the destination; that would let a
// link holder redirect verification.
func sendOtp(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			ch   *otp.Challenge
			deal *common.Deal
			name string
		)
		err := s.Deals.DB().Update(func(tx *bolt.Tx) error {
			t, role, code, err := s.resolveSigning(tx, c.Param("token"))
			if err != nil {
				misc.AbortWithErr(c, code, err)
				return nil
			}

			d, err := s.Deals.GetDealTx(tx, t.DealId)
			if err != nil {
				misc.AbortWithErr(c, 404, err)
				return nil
			}
			if d.ContractFileURL == "" {
				misc.AbortWithErr(c, 409, ErrContractPending)
				return nil
			}

			if role == common.RoleBrand {
				name = d.BrandName
			} else {
				name = d.CreatorName
			}

			ch, err = s.Otp.IssueTx(tx, c.Param("token"), d.Id, d.SignerEmail(role))
			if err == otp.ErrCooldown {
				misc.AbortWithErr(c, 429, err)
				return nil
			}
			if err != nil {
				return err
			}
			deal = d
			return nil
		})
		if err != nil {
			c.JSON(500, misc.StatusErr(err.Error()))
			return
		}
		if ch == nil { // aborted above
			return
		}

		s.notifyOtp(deal, ch, name)
		s.Audit.Record(s.Deals.DB(), deal.Id, name, audit.OtpSent, map[string]interface{}{
			"email": maskEmail(ch.Email),
		})

		c.JSON(200, gin.H{"status": "success", "msg": "Verification code sent to " + maskEmail(ch.Email)})
	}
}

type verifyOtpReq struct {
	Code string `json:"code"`
}

// verifyOtp burns the challenge and flips otp_verified on the signing
// context. It signs nothing by itself.
func verifyOtp(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req verifyOtpReq
		if err := misc.BindJSON(c, &req); err != nil || req.Code == "" {
			misc.AbortWithErr(c, 400, otp.ErrInvalidOtp)
			return
		}

		var dealId string
		err := s.Deals.DB().Update(func(tx *bolt.Tx) error {
			t, role, code, err := s.resolveSigning(tx, c.Param("token"))
			if err != nil {
				misc.AbortWithErr(c, code, err)
				return nil
			}

			if _, err = s.Otp.VerifyTx(tx, c.Param("token"), req.Code); err != nil {
				misc.AbortWithErr(c, 400, err)
				return nil
			}

			d, err := s.Deals.GetDealTx(tx, t.DealId)
			if err != nil {
				misc.AbortWithErr(c, 404, err)
				return nil
			}

			sig := d.SignatureFor(role)
			if sig != nil && sig.Signed {
				misc.AbortWithErr(c, 409, ErrAlreadySigned)
				return nil
			}
			if sig == nil {
				sig = &common.Signature{Role: role}
			}
			sig.OtpVerified = true
			sig.OtpVerifiedAt = time.Now().Unix()
			d.SetSignature(role, sig)

			dealId = d.Id
			return s.Deals.PutDealTx(tx, d)
		})
		if err != nil {
			c.JSON(500, misc.StatusErr(err.Error()))
			return
		}
		if dealId == "" {
			return
		}

		s.Audit.Record(s.Deals.DB(), dealId, audit.SystemActor, audit.OtpVerified, nil)
		c.JSON(200, gin.H{"status": "success", "msg": "Email verified. You can now execute the agreement."})
	}
}

type signReq struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone,omitempty"`
	Device string `json:"device,omitempty"`
}

// signDeal executes one party's signature. Unlike the negotiation
// endpoints, a repeat here is a hard Conflict: a signature is a legal
// artifact and must never look re-created.
func signDeal(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signReq
		if err := misc.BindJSON(c, &req); err != nil {
			c.JSON(400, misc.StatusErr("Error unmarshalling request body:"+err.Error()))
			return
		}
		if req.Name == "" || req.Email == "" {
			misc.AbortWithErr(c, 400, ErrSignerDetails)
			return
		}

		device := req.Device
		if device == "" {
			device = c.Request.UserAgent()
		}

		var (
			deal *common.Deal
			out  *common.Signature
			role string
		)
		err := s.Deals.DB().Update(func(tx *bolt.Tx) error {
			t, r, code, err := s.resolveSigning(tx, c.Param("token"))
			if err != nil {
				misc.AbortWithErr(c, code, err)
				return nil
			}
			role = r

			d, err := s.Deals.GetDealTx(tx, t.DealId)
			if err != nil {
				misc.AbortWithErr(c, 404, err)
				return nil
			}

			if d.BrandResponse != common.ResponseAccepted {
				misc.AbortWithErr(c, 409, ErrNotAccepted)
				return nil
			}
			if d.ContractFileURL == "" {
				misc.AbortWithErr(c, 409, ErrContractPending)
				return nil
			}

			sig := d.SignatureFor(role)
			if sig != nil && sig.Signed {
				misc.AbortWithErr(c, 409, ErrAlreadySigned)
				return nil
			}
			if sig == nil || !sig.OtpVerified {
				misc.AbortWithErr(c, 403, ErrOtpRequired)
				return nil
			}

			sig.Name = req.Name
			sig.Email = misc.TrimEmail(req.Email)
			sig.Phone = req.Phone
			sig.ContractURL = d.ContractFileURL
			sig.IP = c.ClientIP()
			sig.Device = device
			sig.Signed = true
			sig.SignedAt = time.Now().Unix()
			d.SetSignature(role, sig)

			if d.BothSigned() {
				d.ExecutionStatus = common.ExecutionSigned
				d.Signed = sig.SignedAt
				if d.IsBarter() {
					d.Status = common.StatusAwaitingShipment
				} else {
					d.Status = common.StatusPaymentPending
				}
			}

			if err = s.Tokens.ConsumeTx(tx, c.Param("token")); err != nil {
				return err
			}

			deal, out = d, sig
			return s.Deals.PutDealTx(tx, d)
		})
		if err != nil {
			c.JSON(500, misc.StatusErr(err.Error()))
			return
		}
		if out == nil {
			return
		}

		metrics.SignaturesExecuted.Inc()
		kind := audit.SignedAsBrand
		if role == common.RoleCreator {
			kind = audit.SignedAsCreator
		}
		s.Audit.Record(s.Deals.DB(), deal.Id, out.Name, kind, map[string]interface{}{
			"ip":     out.IP,
			"device": out.Device,
		})

		c.JSON(200, out)
	}
}

///////// Session gated signature lookup /////////

// getSignature is the one core read that is session gated instead of
// token gated; dashboards use it and must be a participant or admin.
func getSignature(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.Param("role")
		if role != common.RoleBrand && role != common.RoleCreator {
			misc.AbortWithErr(c, 400, ErrBadRole)
			return
		}

		d, err := s.Deals.GetDeal(c.Param("dealId"))
		if err != nil {
			misc.AbortWithErr(c, 404, err)
			return
		}
		if !canAccessDeal(currentUser(c), d) {
			misc.AbortWithErr(c, 403, ErrForbidden)
			return
		}

		c.JSON(200, gin.H{"signature": d.SignatureFor(role)})
	}
}
