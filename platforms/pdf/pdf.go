package pdf

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	requestTimeout = 30 * time.Second
	convertRetries = 2
	retryBackoff   = 250 * time.Millisecond
)

var httpClient = &http.Client{Timeout: requestTimeout}

var (
	ErrHTML = errors.New("Invalid HTML")
)

// Renderer turns a rendered contract HTML document into the bytes that
// get stored and signed. Pure from the caller's perspective.
type Renderer interface {
	Convert(html, docName string) ([]byte, error)
}

// Client hits a pdflayer-style convert endpoint.
type Client struct {
	endpoint string
	key      string
}

func NewClient(endpoint, key string) *Client {
	return &Client{endpoint: endpoint, key: key}
}

// Convert is idempotent on the vendor side, so transport errors and
// 5xx responses get a couple of retries with backoff.
func (c *Client) Convert(html, docName string) ([]byte, error) {
	if html == "" {
		return nil, ErrHTML
	}

	form := url.Values{}
	form.Add("document_html", html)
	form.Add("document_name", docName)

	endpoint := c.endpoint + "?access_key=" + c.key + "&force=1&page_width=684&page_height=864"

	var lastErr error
	for i := 0; i <= convertRetries; i++ {
		if i > 0 {
			time.Sleep(time.Duration(i) * retryBackoff)
		}

		req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		b, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		switch {
		case resp.StatusCode >= 500:
			lastErr = errors.New("Convert failed with status " + strconv.Itoa(resp.StatusCode))
			continue
		case resp.StatusCode >= 300:
			return nil, errors.New("Convert failed with status " + strconv.Itoa(resp.StatusCode))
		case err != nil:
			lastErr = err
			continue
		}
		return b, nil
	}
	return nil, lastErr
}

// Static skips the vendor and returns the HTML bytes as the document;
// used in sandbox mode and tests.
type Static struct{}

func (Static) Convert(html, docName string) ([]byte, error) {
	if html == "" {
		return nil, ErrHTML
	}
	return []byte(html), nil
}
