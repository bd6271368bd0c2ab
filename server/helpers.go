package server

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/boltdb/bolt"
	"github.com/gin-gonic/gin"

	"github.com/pratyushraj/noticebazaar/internal/common"
	"github.com/pratyushraj/noticebazaar/internal/tokens"
	"github.com/pratyushraj/noticebazaar/misc"
)

const apiKeyHeader = `x-apikey`

const adminId = "admin"

var (
	ErrUnauthorized = errors.New("Please provide a valid api key")
	ErrForbidden    = errors.New("You do not have access to this deal")
	ErrExpiredLink  = errors.New("This link has expired. Please request a fresh one.")
)

func (s *Server) apiKeyAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := s.Cfg.CreatorForKey(c.GetHeader(apiKeyHeader))
		if uid == "" {
			misc.AbortWithErr(c, 401, ErrUnauthorized)
			return
		}
		c.Set("uid", uid)
	}
}

func currentUser(c *gin.Context) string {
	uid, _ := c.Get("uid")
	id, _ := uid.(string)
	return id
}

func canAccessDeal(uid string, d *common.Deal) bool {
	return uid == adminId || (uid != "" && uid == d.CreatorId)
}

// resolveAction loads a token and checks it against the action the
// endpoint needs. NotFound, wrong-action and expired each surface
// differently so the dash can render a specific message.
func (s *Server) resolveAction(tx *bolt.Tx, tok, action string) (*tokens.Token, int, error) {
	t, err := s.Tokens.ResolveTx(tx, tok)
	if err != nil {
		return nil, 404, tokens.ErrNotFound
	}
	if t.Action != action {
		return nil, 403, tokens.ErrBadAction
	}
	if t.Expired(time.Now()) {
		return nil, 410, ErrExpiredLink
	}
	return t, 200, nil
}

// resolveSigning accepts either signing action and returns the role.
func (s *Server) resolveSigning(tx *bolt.Tx, tok string) (*tokens.Token, string, int, error) {
	t, err := s.Tokens.ResolveTx(tx, tok)
	if err != nil {
		return nil, "", 404, tokens.ErrNotFound
	}
	var role string
	switch t.Action {
	case tokens.ActSignBrand:
		role = common.RoleBrand
	case tokens.ActSignCreator:
		role = common.RoleCreator
	default:
		return nil, "", 403, tokens.ErrBadAction
	}
	if t.Expired(time.Now()) {
		return nil, "", 410, ErrExpiredLink
	}
	return t, role, 200, nil
}

// Alert is for failures an operator should see; it never reaches the
// end user.
func (s *Server) Alert(msg string, err error) {
	log.Println("ALERT:", msg, err)
	if s.Cfg.Sandbox || s.Cfg.AdminEmail == "" || s.Cfg.MailClient() == nil {
		return
	}
	body := msg
	if err != nil {
		body += ": " + err.Error()
	}
	if _, mailErr := s.Cfg.MailClient().SendMessage(body, "NoticeBazaar alert", s.Cfg.AdminEmail, "Ops", []string{"alert"}); mailErr != nil {
		log.Println("Failed to mail alert:", mailErr)
	}
}

// dealSummary is the shape shown to the token holder; internals like
// the stored action links and signature provenance stay off the wire.
type dealSummary struct {
	Id          string `json:"id"`
	CreatorName string `json:"creatorName,omitempty"`
	BrandName   string `json:"brandName,omitempty"`

	CollabType   string   `json:"collabType"`
	Deliverables []string `json:"deliverables,omitempty"`

	Budget            float64 `json:"budget,omitempty"`
	BarterValue       float64 `json:"barterValue,omitempty"`
	BarterDescription string  `json:"barterDescription,omitempty"`

	Deadline int64 `json:"deadline,omitempty"`

	Status          string `json:"status"`
	BrandResponse   string `json:"brandResponseStatus"`
	ExecutionStatus string `json:"dealExecutionStatus"`
}

func summarize(d *common.Deal) *dealSummary {
	return &dealSummary{
		Id:                d.Id,
		CreatorName:       d.CreatorName,
		BrandName:         d.BrandName,
		CollabType:        d.CollabType,
		Deliverables:      d.Deliverables,
		Budget:            d.Budget,
		BarterValue:       d.BarterValue,
		BarterDescription: d.BarterDescription,
		Deadline:          d.Deadline,
		Status:            d.Status,
		BrandResponse:     d.BrandResponse,
		ExecutionStatus:   d.ExecutionStatus,
	}
}

// maskEmail hides most of the local part for on-page hints like "code
// sent to pr****@gmail.com".
func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return email
	}
	keep := 2
	if at <= keep { // short locals still get at least one star
		keep = at - 1
	}
	return email[:keep] + strings.Repeat("*", at-keep) + email[at:]
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
