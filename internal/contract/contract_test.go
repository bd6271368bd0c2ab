package contract

import (
	"strings"
	"testing"
	"time"

	"github.com/pratyushraj/noticebazaar/internal/common"
	"github.com/pratyushraj/noticebazaar/platforms/pdf"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func barterDeal() *common.Deal {
	return &common.Deal{
		Id:                "d1",
		CreatorName:       "Asha",
		BrandName:         "GlowCo",
		CollabType:        common.CollabBarter,
		Deliverables:      []string{"1 reel", "2 stories"},
		BarterValue:       2500,
		BarterDescription: "Skincare hamper",
		Delivery: &common.DeliveryDetails{
			Name:    "Asha K",
			Phone:   "9876543210",
			Address: "14 MG Road, Bengaluru",
		},
	}
}

func TestBarterClauseInjection(t *testing.T) {
	s := BuildSchema(barterDeal(), now)

	if len(s.AdditionalTerms) == 0 {
		t.Fatal("expected barter protective clauses")
	}
	for _, want := range []string{
		"dispatch the product within 7 days",
		"damaged or materially different",
		"confirms receipt",
		"voids",
		"no content obligation",
	} {
		var found bool
		for _, term := range s.AdditionalTerms {
			if strings.Contains(term, want) {
				found = true
			}
		}
		if !found {
			t.Fatalf("missing clause containing %q in %v", want, s.AdditionalTerms)
		}
	}
}

func TestPaidDealHasNoBarterClauses(t *testing.T) {
	d := &common.Deal{
		Id:           "d2",
		CollabType:   common.CollabPaid,
		Budget:       10000,
		Deliverables: []string{"1 reel"},
	}
	if s := BuildSchema(d, now); len(s.AdditionalTerms) != 0 || s.Delivery != nil {
		t.Fatalf("paid deal should carry no barter terms: %+v", s)
	}
}

func TestDeliveryPhoneMasked(t *testing.T) {
	s := BuildSchema(barterDeal(), now)
	if s.Delivery == nil {
		t.Fatal("expected delivery summary")
	}
	if s.Delivery.Phone != "98******10" {
		t.Fatalf("expected 98******10, got %q", s.Delivery.Phone)
	}
}

func TestMaskPhone(t *testing.T) {
	for _, tc := range []struct{ in, want string }{
		{"9876543210", "98******10"},
		{"+91 98765 43210", "91********10"},
		{"12345", "12*45"},
		{"123", "***"},
		{"", ""},
	} {
		if got := MaskPhone(tc.in); got != tc.want {
			t.Fatalf("MaskPhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	s := BuildSchema(barterDeal(), now)

	a, err := Generate(s, pdf.Static{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(s, pdf.Static{})
	if err != nil {
		t.Fatal(err)
	}

	if string(a.Bytes) != string(b.Bytes) {
		t.Fatal("same schema rendered different documents")
	}
	if a.FileName != b.FileName {
		t.Fatalf("file names differ: %s vs %s", a.FileName, b.FileName)
	}
}

func TestGeneratedDocumentContent(t *testing.T) {
	s := BuildSchema(barterDeal(), now)
	doc, err := Generate(s, pdf.Static{})
	if err != nil {
		t.Fatal(err)
	}

	html := string(doc.Bytes)
	for _, want := range []string{"GlowCo", "Asha", "Skincare hamper", "98******10", "1 reel"} {
		if !strings.Contains(html, want) {
			t.Fatalf("document missing %q", want)
		}
	}
	if strings.Contains(html, "9876543210") {
		t.Fatal("unmasked phone leaked into document")
	}
}

func TestStoragePath(t *testing.T) {
	if p := StoragePath("d1", "contract_d1_1.pdf"); p != "contracts/d1/contract_d1_1.pdf" {
		t.Fatalf("unexpected path %q", p)
	}
}
