package server

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pratyushraj/noticebazaar/internal/common"
	"github.com/pratyushraj/noticebazaar/internal/otp"
	"github.com/pratyushraj/noticebazaar/internal/templates"
)

// All outbound mail is best effort: a bounced email must never undo a
// committed state transition, so failures only Alert.

func (s *Server) negotiationLink(tok string) string {
	return s.Cfg.DashURL + "/respond/" + tok
}

func (s *Server) signLink(tok string) string {
	return s.Cfg.DashURL + "/sign/" + tok
}

func (s *Server) contractLink(tok string) string {
	return s.Cfg.DashURL + "/contract/" + tok
}

func (s *Server) sendMail(html, subject, to, toName, tag string) {
	if s.Cfg.Sandbox || s.Cfg.ReplyMailClient() == nil {
		return
	}
	resp, err := s.Cfg.ReplyMailClient().SendMessage(html, subject, to, toName, []string{tag})
	if err != nil || len(resp) != 1 || resp[0].RejectReason != "" {
		s.Alert("Failed to mail "+to+" ("+tag+")", err)
	}
}

func (s *Server) notifyBrandProposal(d *common.Deal, links *common.TokenSet, reminder bool) {
	tmpl, subject, tag := templates.BrandProposalEmail, fmt.Sprintf("%s would like to collaborate!", d.CreatorName), "brand proposal"
	if reminder {
		tmpl, subject, tag = templates.ReminderEmail, fmt.Sprintf("Reminder: %s is waiting on your response", d.CreatorName), "brand reminder"
	}
	email := tmpl.Render(map[string]interface{}{
		"BrandName":   d.BrandName,
		"CreatorName": d.CreatorName,
		"AcceptURL":   s.negotiationLink(links.Accept),
		"CounterURL":  s.negotiationLink(links.Counter),
		"DeclineURL":  s.negotiationLink(links.Decline),
	})
	s.sendMail(email, subject, d.BrandEmail, d.BrandName, tag)
}

func (s *Server) notifyCounterReceived(d *common.Deal) {
	if d.Counter == nil {
		return
	}
	email := templates.BrandCounterNotifyEmail.Render(map[string]interface{}{
		"CreatorName":  d.CreatorName,
		"BrandName":    d.BrandName,
		"Budget":       strconv.FormatFloat(d.Counter.Budget, 'f', -1, 64),
		"Deliverables": strings.Join(d.Counter.Deliverables, ", "),
		"Notes":        d.Counter.Notes,
	})
	s.sendMail(email, d.BrandName+" sent a counter offer", d.CreatorEmail, d.CreatorName, "counter received")
}

func (s *Server) notifyDeclined(d *common.Deal) {
	email := templates.DeclineNotifyEmail.Render(map[string]interface{}{
		"CreatorName": d.CreatorName,
		"BrandName":   d.BrandName,
		"Reason":      d.DeclineReason,
	})
	s.sendMail(email, d.BrandName+" declined the collaboration", d.CreatorEmail, d.CreatorName, "deal declined")
}

// notifyContractReady goes to both parties with their own signing link.
func (s *Server) notifyContractReady(d *common.Deal, viewTok, brandSignTok, creatorSignTok string) {
	data := map[string]interface{}{
		"BrandName":   d.BrandName,
		"CreatorName": d.CreatorName,
		"ContractURL": s.contractLink(viewTok),
	}

	data["Name"], data["SignURL"] = d.BrandName, s.signLink(brandSignTok)
	s.sendMail(templates.ContractReadyEmail.Render(data), "Your collaboration agreement is ready to sign", d.BrandEmail, d.BrandName, "contract ready")

	data["Name"], data["SignURL"] = d.CreatorName, s.signLink(creatorSignTok)
	s.sendMail(templates.ContractReadyEmail.Render(data), "Your collaboration agreement is ready to sign", d.CreatorEmail, d.CreatorName, "contract ready")
}

func (s *Server) notifyOtp(d *common.Deal, ch *otp.Challenge, toName string) {
	email := templates.OtpEmail.Render(map[string]interface{}{
		"Name":        toName,
		"BrandName":   d.BrandName,
		"CreatorName": d.CreatorName,
		"Code":        ch.Code,
	})
	s.sendMail(email, "Your signing verification code", ch.Email, toName, "signing otp")
}
