package server

import (
	"errors"
	"time"

	"github.com/boltdb/bolt"
	"github.com/gin-gonic/gin"

	"github.com/pratyushraj/noticebazaar/internal/audit"
	"github.com/pratyushraj/noticebazaar/internal/common"
	"github.com/pratyushraj/noticebazaar/internal/contract"
	"github.com/pratyushraj/noticebazaar/internal/metrics"
	"github.com/pratyushraj/noticebazaar/internal/tokens"
	"github.com/pratyushraj/noticebazaar/misc"
)

var (
	ErrNotAccepted      = errors.New("Contract can only be generated once the deal is accepted")
	ErrDeliveryRequired = errors.New("Delivery details are required before the contract can be generated")
	ErrContractExists   = errors.New("Contract has already been generated")
	ErrContractPending  = errors.New("The agreement has not been generated yet")
)

type contractLinks struct {
	View        string `json:"view"`
	SignBrand   string `json:"signBrand"`
	SignCreator string `json:"signCreator"`
}

// generateContract runs the full pipeline: schema -> document -> upload
// -> persist URL + mint the view/sign tokens in one transaction. The
// deal state transition that triggered it has already committed; a
// failure here leaves no partial URL behind and is retried by
// re-triggering, never by unwinding the accept.
func (s *Server) generateContract(dealId string) (*contractLinks, error) {
	d, err := s.Deals.GetDeal(dealId)
	if err != nil {
		return nil, err
	}

	if d.BrandResponse != common.ResponseAccepted {
		return nil, ErrNotAccepted
	}
	if d.IsBarter() && d.Delivery == nil {
		return nil, ErrDeliveryRequired
	}
	// Normal flow generates once; landing here with a URL already set
	// means a duplicate trigger, not a recovery.
	if d.ContractFileURL != "" {
		return nil, ErrContractExists
	}

	schema := contract.BuildSchema(d, time.Now())
	doc, err := contract.Generate(schema, s.Pdf)
	if err != nil {
		metrics.ContractFailures.Inc()
		return nil, err
	}

	url, err := s.Storage.Upload(contract.StoragePath(d.Id, doc.FileName), doc.Bytes, "application/pdf")
	if err != nil {
		metrics.ContractFailures.Inc()
		return nil, err
	}

	var links contractLinks
	err = s.Deals.DB().Update(func(tx *bolt.Tx) error {
		_, err := s.Deals.UpdateDealIfTx(tx, dealId,
			func(cur *common.Deal) error {
				if cur.ContractFileURL != "" {
					// lost a race against a concurrent trigger; theirs landed
					return ErrContractExists
				}
				return nil
			},
			func(cur *common.Deal) error {
				cur.ContractFileURL = url

				signExpiry := time.Now().Add(tokens.SigningAge).Unix()
				var err error
				if links.View, err = s.Tokens.MintTx(tx, dealId, tokens.ActViewContract, 0); err != nil {
					return err
				}
				if links.SignBrand, err = s.Tokens.MintTx(tx, dealId, tokens.ActSignBrand, signExpiry); err != nil {
					return err
				}
				links.SignCreator, err = s.Tokens.MintTx(tx, dealId, tokens.ActSignCreator, signExpiry)
				return err
			})
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.ContractsGenerated.Inc()
	s.Audit.Record(s.Deals.DB(), dealId, audit.SystemActor, audit.ContractGenerated, map[string]interface{}{
		"url": url,
	})

	d.ContractFileURL = url
	s.notifyContractReady(d, links.View, links.SignBrand, links.SignCreator)

	return &links, nil
}

// regenerateContract is the operator recovery path after a failed
// pipeline run. It refuses to clobber an existing document.
func regenerateContract(s *Server) gin.HandlerFunc {
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

		links, err := s.generateContract(d.Id)
		switch err {
		case nil:
		case ErrContractExists, ErrNotAccepted, ErrDeliveryRequired:
			// deal-state refusals, not pipeline failures
			misc.AbortWithErr(c, 409, err)
			return
		default:
			c.JSON(502, misc.StatusErr("Contract generation failed: "+err.Error()))
			return
		}
		c.JSON(200, gin.H{"status": "success", "links": links})
	}
}

// getContractByToken serves the long-lived read-only contract link.
func getContractByToken(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := s.Deals.DB().View(func(tx *bolt.Tx) error {
			t, code, err := s.resolveAction(tx, c.Param("token"), tokens.ActViewContract)
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
				misc.AbortWithErr(c, 404, ErrContractPending)
				return nil
			}

			c.JSON(200, gin.H{
				"url":             d.ContractFileURL,
				"signedUrl":       d.SignedContractURL,
				"brandName":       d.BrandName,
				"creatorName":     d.CreatorName,
				"executionStatus": d.ExecutionStatus,
				"brandSigned":     d.BrandSignature != nil && d.BrandSignature.Signed,
				"creatorSigned":   d.CreatorSignature != nil && d.CreatorSignature.Signed,
			})
			return nil
		})
		if err != nil {
			c.JSON(500, misc.StatusErr(err.Error()))
		}
	}
}
