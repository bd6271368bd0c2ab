package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/boltdb/bolt"
	"github.com/gin-gonic/gin"

	"github.com/pratyushraj/noticebazaar/internal/audit"
	"github.com/pratyushraj/noticebazaar/internal/common"
	"github.com/pratyushraj/noticebazaar/internal/tokens"
	"github.com/pratyushraj/noticebazaar/misc"
)

var (
	ErrNoBrand        = errors.New("Please provide the brand's name and email")
	ErrNoDeliverables = errors.New("Please provide at least one deliverable")
	ErrBadCollabType  = errors.New("Please provide a valid collaboration type (paid, barter or hybrid)")
	ErrBadBudget      = errors.New("Please provide a valid budget")
	ErrBadBarter      = errors.New("Please provide the barter product and its value")
	ErrNotBarter      = errors.New("Delivery details only apply to barter deals")
	ErrBadPhone       = errors.New("Please provide a valid phone number")
	ErrBadAddress     = errors.New("Please provide the delivery name and address")
	ErrDealSettled    = errors.New("This deal is no longer awaiting a brand response")
)

///////// Deals (session gated) /////////

type dealUpload struct {
	CreatorId    string `json:"creatorId,omitempty"` // admin only; creators are bound to their key
	CreatorName  string `json:"creatorName"`
	CreatorEmail string `json:"creatorEmail"`

	BrandName  string `json:"brandName"`
	BrandEmail string `json:"brandEmail"`
	BrandPhone string `json:"brandPhone,omitempty"`

	CollabType   string   `json:"collabType"`
	Deliverables []string `json:"deliverables"`

	Budget            float64 `json:"budget,omitempty"`
	BarterValue       float64 `json:"barterValue,omitempty"`
	BarterDescription string  `json:"barterDescription,omitempty"`

	BenchmarkRate float64 `json:"benchmarkRate,omitempty"`
	Deadline      int64   `json:"deadline,omitempty"`
}

func (up *dealUpload) validate() error {
	if up.BrandName == "" || up.BrandEmail == "" {
		return ErrNoBrand
	}
	if len(up.Deliverables) == 0 {
		return ErrNoDeliverables
	}
	switch up.CollabType {
	case common.CollabPaid:
		if up.Budget <= 0 {
			return ErrBadBudget
		}
	case common.CollabBarter:
		if up.BarterValue <= 0 || up.BarterDescription == "" {
			return ErrBadBarter
		}
	case common.CollabHybrid:
		if up.Budget <= 0 {
			return ErrBadBudget
		}
		if up.BarterValue <= 0 || up.BarterDescription == "" {
			return ErrBadBarter
		}
	default:
		return ErrBadCollabType
	}
	return nil
}

// createDeal is the intake path: a creator logging a brand proposal (or
// entering one manually). It creates the pending deal, mints the brand
// action link trio and emails it out.
func createDeal(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var up dealUpload
		if err := misc.BindJSON(c, &up); err != nil {
			c.JSON(400, misc.StatusErr("Error unmarshalling request body:"+err.Error()))
			return
		}
		if err := up.validate(); err != nil {
			misc.AbortWithErr(c, 400, err)
			return
		}

		creatorId := currentUser(c)
		if creatorId == adminId && up.CreatorId != "" {
			creatorId = up.CreatorId
		}

		now := time.Now()
		d := &common.Deal{
			Id:           misc.PseudoUUID(),
			CreatorId:    creatorId,
			CreatorName:  up.CreatorName,
			CreatorEmail: misc.TrimEmail(up.CreatorEmail),

			BrandName:  up.BrandName,
			BrandEmail: misc.TrimEmail(up.BrandEmail),
			BrandPhone: up.BrandPhone,

			CollabType:   up.CollabType,
			Deliverables: up.Deliverables,

			Budget:            up.Budget,
			BarterValue:       up.BarterValue,
			BarterDescription: up.BarterDescription,

			BenchmarkRate: up.BenchmarkRate,
			Deadline:      up.Deadline,

			Status:          common.StatusNegotiation,
			BrandResponse:   common.ResponsePending,
			ExecutionStatus: common.ExecutionUnsigned,

			Created: now.Unix(),
		}

		err := s.Deals.DB().Update(func(tx *bolt.Tx) error {
			links, err := s.mintBrandLinks(tx, d.Id, now)
			if err != nil {
				return err
			}
			d.BrandLinks = links
			return s.Deals.PutDealTx(tx, d)
		})
		if err != nil {
			c.JSON(500, misc.StatusErr(err.Error()))
			return
		}

		s.notifyBrandProposal(d, d.BrandLinks, false)

		c.JSON(200, gin.H{"status": "success", "id": d.Id, "links": d.BrandLinks})
	}
}

func (s *Server) mintBrandLinks(tx *bolt.Tx, dealId string, now time.Time) (*common.TokenSet, error) {
	exp := now.Add(tokens.NegotiationAge).Unix()
	var (
		links common.TokenSet
		err   error
	)
	if links.Accept, err = s.Tokens.MintTx(tx, dealId, tokens.ActAccept, exp); err != nil {
		return nil, err
	}
	if links.Decline, err = s.Tokens.MintTx(tx, dealId, tokens.ActDecline, exp); err != nil {
		return nil, err
	}
	if links.Counter, err = s.Tokens.MintTx(tx, dealId, tokens.ActCounter, exp); err != nil {
		return nil, err
	}
	return &links, nil
}

// getDeals lists the caller's deals, newest first; admins see everyone's.
// An optional ?status= narrows by lifecycle phase.
func getDeals(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			uid    = currentUser(c)
			status = c.Query("status")
			out    = []*common.Deal{}
		)
		err := s.Deals.ForEachDeal(func(d *common.Deal) bool {
			if canAccessDeal(uid, d) && (status == "" || d.Status == status) {
				out = append(out, d)
			}
			return true
		})
		if err != nil {
			c.JSON(500, misc.StatusErr(err.Error()))
			return
		}

		sort.Slice(out, func(i, j int) bool { return out[i].Created > out[j].Created })
		c.JSON(200, out)
	}
}

func getDealById(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := s.Deals.GetDeal(c.Param("dealId"))
		if err != nil {
			misc.AbortWithErr(c, 404, err)
			return
		}
		if !canAccessDeal(currentUser(c), d) {
			misc.AbortWithErr(c, 403, ErrForbidden)
			return
		}
		c.JSON(200, d)
	}
}

// deleteDeal is admin-only cleanup for mis-entered deals; nothing in
// the deal lifecycle deletes.
func deleteDeal(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) != adminId {
			misc.AbortWithErr(c, 403, ErrForbidden)
			return
		}

		id := c.Param("dealId")
		err := s.Deals.DB().Update(func(tx *bolt.Tx) error {
			if _, err := s.Deals.GetDealTx(tx, id); err != nil {
				misc.AbortWithErr(c, 404, err)
				return nil
			}
			return s.Deals.DeleteDealTx(tx, id)
		})
		if err != nil {
			c.JSON(500, misc.StatusErr(err.Error()))
			return
		}
		if !c.IsAborted() {
			c.JSON(200, misc.StatusOK(id))
		}
	}
}

func getAuditTrail(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := s.Deals.GetDeal(c.Param("dealId"))
		if err != nil {
			misc.AbortWithErr(c, 404, err)
			return
		}
		if !canAccessDeal(currentUser(c), d) {
			misc.AbortWithErr(c, 403, ErrForbidden)
			return
		}

		entries, err := s.Audit.ForDeal(s.Deals.DB(), d.Id)
		if err != nil {
			c.JSON(500, misc.StatusErr(err.Error()))
			return
		}
		c.JSON(200, entries)
	}
}

type deliveryReq struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes,omitempty"`
}

// submitDeliveryDetails is the barter gate before contract generation.
// The details commit first; a generation failure comes back as a
// partial success, retryable from the deal page.
func submitDeliveryDetails(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req deliveryReq
		if err := misc.BindJSON(c, &req); err != nil {
			c.JSON(400, misc.StatusErr("Error unmarshalling request body:"+err.Error()))
			return
		}
		if req.Name == "" || req.Address == "" {
			misc.AbortWithErr(c, 400, ErrBadAddress)
			return
		}
		if ln := len(digitsOnly(req.Phone)); ln < 10 || ln > 15 {
			misc.AbortWithErr(c, 400, ErrBadPhone)
			return
		}

		var deal *common.Deal
		err := s.Deals.DB().Update(func(tx *bolt.Tx) error {
			d, err := s.Deals.GetDealTx(tx, c.Param("dealId"))
			if err != nil {
				misc.AbortWithErr(c, 404, err)
				return nil
			}
			if !canAccessDeal(currentUser(c), d) {
				misc.AbortWithErr(c, 403, ErrForbidden)
				return nil
			}
			if !d.IsBarter() {
				misc.AbortWithErr(c, 400, ErrNotBarter)
				return nil
			}
			if d.BrandResponse != common.ResponseAccepted {
				misc.AbortWithErr(c, 409, ErrNotAccepted)
				return nil
			}

			d.Delivery = &common.DeliveryDetails{
				Name:    req.Name,
				Phone:   req.Phone,
				Address: req.Address,
				Notes:   req.Notes,
				Created: time.Now().Unix(),
			}
			deal = d
			return s.Deals.PutDealTx(tx, d)
		})
		if err != nil {
			c.JSON(500, misc.StatusErr(err.Error()))
			return
		}
		if deal == nil {
			return
		}

		s.Audit.Record(s.Deals.DB(), deal.Id, currentUser(c), audit.DeliveryDetailsReceived, nil)

		if deal.ContractFileURL != "" {
			c.JSON(200, gin.H{"status": "success", "msg": "Delivery details updated."})
			return
		}

		links, genErr := s.generateContract(deal.Id)
		if genErr != nil {
			s.Alert("Contract generation failed for "+deal.Id, genErr)
			c.JSON(202, gin.H{
				"status": "partial",
				"msg":    "Delivery details saved, but contract generation failed. Retry from the deal page.",
			})
			return
		}

		c.JSON(200, gin.H{"status": "success", "msg": "Delivery details saved. The agreement is ready.", "links": links})
	}
}

// sendReminder re-sends the brand links for a still-pending deal,
// rotating any that expired or got consumed along the way.
func sendReminder(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var deal *common.Deal
		err := s.Deals.DB().Update(func(tx *bolt.Tx) error {
			d, err := s.Deals.GetDealTx(tx, c.Param("dealId"))
			if err != nil {
				misc.AbortWithErr(c, 404, err)
				return nil
			}
			if !canAccessDeal(currentUser(c), d) {
				misc.AbortWithErr(c, 403, ErrForbidden)
				return nil
			}
			if d.ResponseSettled() {
				misc.AbortWithErr(c, 409, ErrDealSettled)
				return nil
			}

			if d.BrandLinks == nil || s.linksStale(tx, d.BrandLinks) {
				// a stale link in a reminder email is worse than no
				// reminder; rotate the whole set
				links, err := s.mintBrandLinks(tx, d.Id, time.Now())
				if err != nil {
					return err
				}
				d.BrandLinks = links
				if err = s.Deals.PutDealTx(tx, d); err != nil {
					return err
				}
			}
			deal = d
			return nil
		})
		if err != nil {
			c.JSON(500, misc.StatusErr(err.Error()))
			return
		}
		if deal == nil {
			return
		}

		s.notifyBrandProposal(deal, deal.BrandLinks, true)
		s.Audit.Record(s.Deals.DB(), deal.Id, currentUser(c), audit.ReminderSent, nil)

		c.JSON(200, gin.H{"status": "success", "msg": "Reminder sent to " + deal.BrandEmail})
	}
}

func (s *Server) linksStale(tx *bolt.Tx, links *common.TokenSet) bool {
	now := time.Now()
	for _, tok := range [...]string{links.Accept, links.Decline, links.Counter} {
		t, err := s.Tokens.ResolveTx(tx, tok)
		if err != nil || t.Consumed || t.Expired(now) {
			return true
		}
	}
	return false
}

type shareReq struct {
	Channel string `json:"channel"`
	Note    string `json:"note,omitempty"`
}

// shareDeal just logs that the creator pushed the deal somewhere; the
// actual share happens client side.
func shareDeal(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req shareReq
		misc.BindJSON(c, &req)

		d, err := s.Deals.GetDeal(c.Param("dealId"))
		if err != nil {
			misc.AbortWithErr(c, 404, err)
			return
		}
		if !canAccessDeal(currentUser(c), d) {
			misc.AbortWithErr(c, 403, ErrForbidden)
			return
		}

		s.Audit.Record(s.Deals.DB(), d.Id, currentUser(c), audit.MessageShared, map[string]interface{}{
			"channel": req.Channel,
			"note":    req.Note,
		})
		c.JSON(200, misc.StatusOK(d.Id))
	}
}

type signedUploadReq struct {
	FileName string `json:"fileName"`
	Data     string `json:"data"` // base64
}

// uploadSignedContract is the wet-signature variant: a human-signed PDF
// uploaded by the deal's own creator. No OTP; trust is anchored to the
// authenticated uploader. Requires the deal to be accepted already and
// flips execution to signed directly.
func uploadSignedContract(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signedUploadReq
		if err := misc.BindJSON(c, &req); err != nil {
			c.JSON(400, misc.StatusErr("Error unmarshalling request body:"+err.Error()))
			return
		}
		if req.FileName == "" || req.Data == "" {
			misc.AbortWithErr(c, 400, ErrNoSignedUpload)
			return
		}
		data, err := base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			misc.AbortWithErr(c, 400, ErrNoSignedUpload)
			return
		}

		d, err := s.Deals.GetDeal(c.Param("dealId"))
		if err != nil {
			misc.AbortWithErr(c, 404, err)
			return
		}
		uid := currentUser(c)
		if !canAccessDeal(uid, d) {
			misc.AbortWithErr(c, 403, ErrForbidden)
			return
		}
		if d.BrandResponse != common.ResponseAccepted {
			misc.AbortWithErr(c, 409, ErrNotAccepted)
			return
		}
		if d.ExecutionStatus == common.ExecutionSigned {
			misc.AbortWithErr(c, 409, ErrAlreadySigned)
			return
		}

		path := fmt.Sprintf("signed/%s/%d_%s", d.Id, time.Now().Unix(), req.FileName)
		url, err := s.Storage.Upload(path, data, "application/pdf")
		if err != nil {
			c.JSON(502, misc.StatusErr("Upload failed: "+err.Error()))
			return
		}

		deal, err := s.Deals.UpdateDealIf(d.Id,
			func(cur *common.Deal) error {
				if cur.ExecutionStatus == common.ExecutionSigned {
					return ErrAlreadySigned
				}
				return nil
			},
			func(cur *common.Deal) error {
				cur.SignedContractURL = url
				cur.ExecutionStatus = common.ExecutionSigned
				cur.Signed = time.Now().Unix()
				if cur.IsBarter() {
					cur.Status = common.StatusAwaitingShipment
				} else {
					cur.Status = common.StatusPaymentPending
				}
				return nil
			})
		if err == ErrAlreadySigned {
			misc.AbortWithErr(c, 409, err)
			return
		}
		if err != nil {
			c.JSON(500, misc.StatusErr(err.Error()))
			return
		}

		s.Audit.Record(s.Deals.DB(), deal.Id, uid, audit.SignedContractUploaded, map[string]interface{}{
			"url": url,
		})

		c.JSON(200, gin.H{"status": "success", "url": url})
	}
}
