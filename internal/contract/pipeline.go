package contract

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pratyushraj/noticebazaar/internal/templates"
	"github.com/pratyushraj/noticebazaar/platforms/pdf"
)

type Document struct {
	Bytes    []byte
	FileName string
}

// Generate renders the schema into the final document bytes. Same
// schema, same visible content; the GeneratedAt stamp is the only
// moving part.
func Generate(s *Schema, r pdf.Renderer) (*Document, error) {
	html := templates.ContractDoc.Render(renderMap(s))
	name := fmt.Sprintf("contract_%s_%d.pdf", s.DealId, s.GeneratedAt)

	data, err := r.Convert(html, name)
	if err != nil {
		return nil, err
	}
	return &Document{Bytes: data, FileName: name}, nil
}

// StoragePath includes the generation timestamp so a retried pipeline
// run never collides with a half-landed earlier attempt.
func StoragePath(dealId, fileName string) string {
	return "contracts/" + dealId + "/" + fileName
}

func renderMap(s *Schema) map[string]interface{} {
	m := map[string]interface{}{
		"DealId":        s.DealId,
		"GeneratedDate": time.Unix(s.GeneratedAt, 0).UTC().Format("02 Jan 2006"),
		"BrandName":     s.BrandName,
		"CreatorName":   s.CreatorName,
		"CollabType":    s.CollabType,
		"Deliverables":  s.Deliverables,

		"HasAmount":           s.Amount > 0,
		"Amount":              strconv.FormatFloat(s.Amount, 'f', -1, 64),
		"PaymentMethod":       s.Payment.Method,
		"PaymentTimelineDays": s.Payment.TimelineDays,

		"HasBarter":         s.BarterValue > 0 || s.BarterDescription != "",
		"BarterValue":       strconv.FormatFloat(s.BarterValue, 'f', -1, 64),
		"BarterDescription": s.BarterDescription,

		"UsageType":           s.Usage.Type,
		"UsagePlatforms":      strings.Join(s.Usage.Platforms, ", "),
		"UsageDurationMonths": s.Usage.DurationMonths,
		"PaidAds":             yesNo(s.Usage.PaidAds),
		"Whitelisting":        yesNo(s.Usage.Whitelisting),

		"ExclusivityEnabled":        s.Exclusivity.Enabled,
		"ExclusivityCategory":       s.Exclusivity.Category,
		"ExclusivityDurationMonths": s.Exclusivity.DurationMonths,

		"HasAdditionalTerms": len(s.AdditionalTerms) > 0,
		"AdditionalTerms":    s.AdditionalTerms,

		"HasDelivery": s.Delivery != nil,

		"TerminationNoticeDays": s.TerminationNoticeDays,
		"Jurisdiction":          s.Jurisdiction,
	}

	if s.Delivery != nil {
		m["DeliveryName"] = s.Delivery.Name
		m["DeliveryPhone"] = s.Delivery.Phone
		m["DeliveryAddress"] = s.Delivery.Address
	}

	return m
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
