package server

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/boltdb/bolt"
	"github.com/gin-gonic/gin"

	"github.com/pratyushraj/noticebazaar/config"
	"github.com/pratyushraj/noticebazaar/internal/common"
	"github.com/pratyushraj/noticebazaar/internal/otp"
	"github.com/pratyushraj/noticebazaar/internal/tokens"
	"github.com/pratyushraj/noticebazaar/misc"
)

type M map[string]interface{}

const (
	adminKey   = "nb-admin-key"
	ashaKey    = "nb-creator-asha"
	rohanKey   = "nb-creator-rohan"
	ashaId     = "creator-asha"
	brandEmail = "brand@glowco.fake"
)

var (
	printResp = flag.Bool("pr", os.Getenv("PR") != "", "print responses")

	cfg *config.Config
	ts  *httptest.Server
	srv *Server
)

func init() {
	log.SetFlags(log.Lshortfile | log.Ltime)

	// testing parses flags before running tests; parsing here would
	// reject the -test.* flags it registers later.
	panicIf(os.Chdir("..")) // relative paths in config
}

func TestMain(m *testing.M) {
	var (
		code int = 1
		err  error
	)
	defer func() { os.Exit(code) }()

	cfg, err = config.New("./config/config.json")
	panicIf(err)

	cfg.Sandbox = true // always set it to true just in case

	cfg.DBPath, err = os.MkdirTemp("", "nb-srv")
	panicIf(err)
	defer os.RemoveAll(cfg.DBPath)
	cfg.DBPath += "/"
	cfg.Storage.LocalDir = filepath.Join(cfg.DBPath, "files")

	// disable all the gin spam
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	srv, err = New(cfg, r)
	panicIf(err)
	defer srv.Close()

	ts = httptest.NewServer(r)
	defer ts.Close()

	code = m.Run()
}

func panicIf(err error) {
	if err != nil {
		log.Panic(err)
	}
}

// testRequest is a single call against the live test server. ExpBody
// entries are checked against the decoded response by key.
type testRequest struct {
	Method  string
	Path    string
	ApiKey  string
	Body    interface{}
	ExpCode int
	ExpBody M
}

func (tr *testRequest) Run(t *testing.T) M {
	t.Helper()

	var body *bytes.Reader
	if tr.Body != nil {
		b, err := json.Marshal(tr.Body)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(tr.Method, ts.URL+"/api/v1"+tr.Path, body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if tr.ApiKey != "" {
		req.Header.Set(apiKeyHeader, tr.ApiKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out M
	dec := json.NewDecoder(resp.Body)
	dec.Decode(&out) // some error paths return no body

	if *printResp {
		t.Logf("%s %s -> %d %v", tr.Method, tr.Path, resp.StatusCode, out)
	}

	if resp.StatusCode != tr.ExpCode {
		t.Fatalf("%s %s: expected status %d, got %d (%v)", tr.Method, tr.Path, tr.ExpCode, resp.StatusCode, out)
	}
	for k, want := range tr.ExpBody {
		if got := out[k]; fmt.Sprint(got) != fmt.Sprint(want) {
			t.Fatalf("%s %s: expected %s=%v, got %v", tr.Method, tr.Path, k, want, got)
		}
	}
	return out
}

///////// fixtures /////////

func paidUpload() M {
	return M{
		"creatorName":   "Asha",
		"creatorEmail":  "asha@noticebazaar.fake",
		"brandName":     "GlowCo",
		"brandEmail":    brandEmail,
		"collabType":    "paid",
		"deliverables":  []string{"1 reel", "2 stories"},
		"budget":        5000,
		"benchmarkRate": 8000,
		"deadline":      time.Now().Add(30 * 24 * time.Hour).Unix(),
	}
}

func barterUpload() M {
	up := paidUpload()
	up["collabType"] = "barter"
	delete(up, "budget")
	up["barterValue"] = 2500
	up["barterDescription"] = "Skincare hamper"
	return up
}

// createDeal posts the upload as admin and returns the deal id and the
// brand link trio.
func createTestDeal(t *testing.T, up M) (string, *common.TokenSet) {
	t.Helper()

	out := (&testRequest{"POST", "/deal", adminKey, up, 200, M{"status": "success"}}).Run(t)
	id, _ := out["id"].(string)
	if id == "" {
		t.Fatalf("no deal id in %v", out)
	}

	links, _ := out["links"].(map[string]interface{})
	set := &common.TokenSet{}
	if links != nil {
		set.Accept, _ = links["accept"].(string)
		set.Decline, _ = links["decline"].(string)
		set.Counter, _ = links["counter"].(string)
	}
	if set.Accept == "" || set.Decline == "" || set.Counter == "" {
		t.Fatalf("incomplete link trio in %v", out)
	}
	return id, set
}

func getDeal(t *testing.T, id string) *common.Deal {
	t.Helper()
	d, err := srv.Deals.GetDeal(id)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

// waitContract polls until the async pipeline lands the contract URL.
func waitContract(t *testing.T, dealId string) *common.Deal {
	t.Helper()
	for i := 0; i < 50; i++ {
		if d := getDeal(t, dealId); d.ContractFileURL != "" {
			return d
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("contract never generated for " + dealId)
	return nil
}

// dealTokens scans the token bucket for a deal's tokens by action.
func dealTokens(t *testing.T, dealId string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	err := srv.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(cfg.Bucket.Token)).ForEach(func(k, v []byte) error {
			var tok tokens.Token
			if json.Unmarshal(v, &tok) == nil && tok.DealId == dealId {
				out[tok.Action] = string(k)
			}
			return nil
		})
	})
	if err != nil {
		t.Fatal(err)
	}
	return out
}

// otpCode reads the live challenge code for a signing token; in sandbox
// mode no email goes out, so tests pull it straight from the store.
func otpCode(t *testing.T, signTok string) string {
	t.Helper()
	var ch otp.Challenge
	err := srv.db.View(func(tx *bolt.Tx) error {
		return misc.GetTxJson(tx, cfg.Bucket.Otp, signTok, &ch)
	})
	if err != nil || ch.Code == "" {
		t.Fatalf("no challenge for token %s: %v", signTok, err)
	}
	return ch.Code
}

func auditKinds(t *testing.T, dealId string) []string {
	t.Helper()
	entries, err := srv.Audit.ForDeal(srv.Deals.DB(), dealId)
	if err != nil {
		t.Fatal(err)
	}
	kinds := make([]string, 0, len(entries))
	for _, e := range entries {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func countKind(kinds []string, kind string) (n int) {
	for _, k := range kinds {
		if k == kind {
			n++
		}
	}
	return
}

// signVia walks one role through the whole OTP + sign dance.
func signVia(t *testing.T, signTok, name, email string) M {
	t.Helper()
	(&testRequest{"POST", "/sign/" + signTok + "/sendOtp", "", nil, 200, M{"status": "success"}}).Run(t)
	(&testRequest{"POST", "/sign/" + signTok + "/verifyOtp", "", M{"code": otpCode(t, signTok)}, 200, M{"status": "success"}}).Run(t)
	return (&testRequest{"POST", "/sign/" + signTok, "", M{"name": name, "email": email}, 200, nil}).Run(t)
}

// listDeals fetches /deals, which returns a bare array.
func listDeals(t *testing.T, apiKey, query string) []*common.Deal {
	t.Helper()

	req, err := http.NewRequest("GET", ts.URL+"/api/v1/deals"+query, nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set(apiKeyHeader, apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("GET /deals: status %d", resp.StatusCode)
	}

	var out []*common.Deal
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out
}
