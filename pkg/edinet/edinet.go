// Package edinet implements a rate-limited client for the EDINET v2
// disclosure API plus the filing classification rules used to pick
// securities reports out of a day's disclosures.
package edinet

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/edinex/edinex/internal/utils"
)

const (
	DefaultBaseURL = "https://api.edinet-fsa.go.jp/api/v2"

	// DefaultRateLimit is the minimum spacing between consecutive requests
	// on one client instance. The API documentation asks for ~1 req/sec.
	DefaultRateLimit = time.Second
)

// Client talks to the EDINET API. All requests on one instance are spaced
// at least RateLimit apart, uniformly and regardless of outcome.
type Client struct {
	BaseURL   string
	RateLimit time.Duration

	apiKey string
	http   *retryablehttp.Client

	mu      sync.Mutex
	lastReq time.Time
}

func NewClient(apiKey string) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = log.New(io.Discard, "", 0)
	retryClient.RetryMax = 3

	return &Client{
		BaseURL:   DefaultBaseURL,
		RateLimit: DefaultRateLimit,
		apiKey:    apiKey,
		http:      retryClient,
	}
}

// throttle blocks until at least RateLimit has passed since the previous
// request on this client.
func (c *Client) throttle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if wait := c.RateLimit - time.Since(c.lastReq); wait > 0 {
		time.Sleep(wait)
	}
	c.lastReq = time.Now()
}

func (c *Client) get(ctx context.Context, op, rawURL string, params url.Values) ([]byte, int, error) {
	c.throttle()

	params.Set("Subscription-Key", c.apiKey)
	fullURL := rawURL + "?" + params.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, 0, &TransportError{Op: op, URL: rawURL, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, &TransportError{Op: op, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &TransportError{Op: op, URL: rawURL, Err: err}
	}
	return body, resp.StatusCode, nil
}

// ListFilings returns every filing disclosed on the given calendar date.
// A date with no disclosures yields an empty slice, not an error.
func (c *Client) ListFilings(ctx context.Context, day time.Time, docType int) ([]Filing, error) {
	listURL := c.BaseURL + "/documents.json"
	params := url.Values{}
	params.Set("date", day.Format("2006-01-02"))
	params.Set("type", strconv.Itoa(docType))

	body, status, err := c.get(ctx, "list", listURL, params)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &TransportError{Op: "list", URL: listURL, Status: status}
	}

	results := gjson.GetBytes(body, "results")
	if !results.Exists() {
		utils.Log.Debugf("%s: no filings disclosed", day.Format("2006-01-02"))
		return nil, nil
	}

	var filings []Filing
	results.ForEach(func(_, v gjson.Result) bool {
		filings = append(filings, filingFromJSON(v))
		return true
	})
	utils.Log.Debugf("%s: %d filings", day.Format("2006-01-02"), len(filings))
	return filings, nil
}

// DownloadArchive fetches the raw bytes of one filing in the given format.
// A failing HTTP status is a TransportError; a 200 with an empty body or a
// JSON error envelope (the API reports logical failures that way) is a
// DownloadError.
func (c *Client) DownloadArchive(ctx context.Context, docID string, format int) ([]byte, error) {
	docURL := c.BaseURL + "/documents/" + docID
	params := url.Values{}
	params.Set("type", strconv.Itoa(format))

	body, status, err := c.get(ctx, "download", docURL, params)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &TransportError{Op: "download", URL: docURL, Status: status}
	}
	if len(body) == 0 {
		return nil, &DownloadError{DocID: docID, Reason: "empty response body"}
	}
	if body[0] == '{' {
		if s := gjson.GetBytes(body, "metadata.status").String(); s != "" && s != "200" {
			return nil, &DownloadError{DocID: docID, Reason: "server reported status " + s}
		}
	}
	return body, nil
}
