package storage

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	requestTimeout = 30 * time.Second
	uploadRetries  = 2
	retryBackoff   = 250 * time.Millisecond
)

var httpClient = &http.Client{Timeout: requestTimeout}

// Paths are never overwritten; a retried upload reuses a fresh
// timestamped path instead.
var ErrExists = errors.New("Object already exists")

// Uploader stores a document and returns its public URL.
type Uploader interface {
	Upload(path string, data []byte, contentType string) (string, error)
}

// Client talks to an object storage REST endpoint.
type Client struct {
	endpoint string
	key      string
	bucket   string
}

func NewClient(endpoint, key, bucket string) *Client {
	return &Client{endpoint: endpoint, key: key, bucket: bucket}
}

// Upload stores the document. x-upsert:false means a retry can never
// clobber an existing object, so transport errors and 5xx responses are
// safe to retry a couple of times.
func (c *Client) Upload(path string, data []byte, contentType string) (string, error) {
	var lastErr error
	for i := 0; i <= uploadRetries; i++ {
		if i > 0 {
			time.Sleep(time.Duration(i) * retryBackoff)
		}
		retry, err := c.upload(path, data, contentType)
		if err == nil {
			return c.PublicURL(path), nil
		}
		if !retry {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

func (c *Client) upload(path string, data []byte, contentType string) (retry bool, err error) {
	req, err := http.NewRequest("POST", c.endpoint+"/object/"+c.bucket+"/"+path, bytes.NewReader(data))
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", contentType)
	// fail loudly instead of clobbering
	req.Header.Set("x-upsert", "false")

	resp, err := httpClient.Do(req)
	if err != nil {
		return true, err
	}
	resp.Body.Close()

	switch {
	case resp.StatusCode == 409:
		return false, ErrExists
	case resp.StatusCode >= 500:
		return true, errors.New("Upload failed with status " + strconv.Itoa(resp.StatusCode))
	case resp.StatusCode >= 300:
		return false, errors.New("Upload failed with status " + strconv.Itoa(resp.StatusCode))
	}
	return false, nil
}

func (c *Client) PublicURL(path string) string {
	return c.endpoint + "/object/public/" + c.bucket + "/" + path
}

// Local writes under a directory instead of hitting the vendor; used in
// sandbox mode and tests. O_EXCL keeps the non-overwriting contract.
type Local struct {
	Dir     string
	BaseURL string
}

func (l Local) Upload(path string, data []byte, contentType string) (string, error) {
	full := filepath.Join(l.Dir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", err
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return "", ErrExists
		}
		return "", err
	}
	defer f.Close()

	if _, err = f.Write(data); err != nil {
		return "", err
	}
	return l.BaseURL + "/" + path, nil
}
