package storage

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestUploadRetriesTransient(t *testing.T) {
	var hits int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 3 {
			w.WriteHeader(500)
			return
		}
		if r.Header.Get("x-upsert") != "false" {
			t.Error("upsert must stay disabled")
		}
		w.WriteHeader(200)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "key", "contracts")
	url, err := c.Upload("deal1/doc.pdf", []byte("pdf"), "application/pdf")
	if err != nil {
		t.Fatal(err)
	}
	if hits != 3 {
		t.Fatalf("expected 2 retries after the first failure, got %d calls", hits)
	}
	if url != c.PublicURL("deal1/doc.pdf") {
		t.Fatalf("unexpected url %s", url)
	}
}

func TestUploadGivesUp(t *testing.T) {
	var hits int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(503)
	}))
	defer ts.Close()

	if _, err := NewClient(ts.URL, "key", "contracts").Upload("p", nil, "application/pdf"); err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if hits != 3 {
		t.Fatalf("expected 3 calls total, got %d", hits)
	}
}

func TestUploadConflictNoRetry(t *testing.T) {
	var hits int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(409)
	}))
	defer ts.Close()

	if _, err := NewClient(ts.URL, "key", "contracts").Upload("p", nil, "application/pdf"); err != ErrExists {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if hits != 1 {
		t.Fatalf("a conflict is final, got %d calls", hits)
	}
}

func TestLocalNoOverwrite(t *testing.T) {
	dir, err := os.MkdirTemp("", "nb-storage")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	l := Local{Dir: dir, BaseURL: "http://localhost/files"}
	url, err := l.Upload("deal1/doc.pdf", []byte("one"), "application/pdf")
	if err != nil {
		t.Fatal(err)
	}
	if url != "http://localhost/files/deal1/doc.pdf" {
		t.Fatalf("unexpected url %s", url)
	}

	if _, err = l.Upload("deal1/doc.pdf", []byte("two"), "application/pdf"); err != ErrExists {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "deal1", "doc.pdf"))
	if err != nil || string(b) != "one" {
		t.Fatalf("original object was touched: %q, %v", b, err)
	}
}
