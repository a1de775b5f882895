package auctions

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"binflip/internal/application/port"
)

// Client fetches auction pages from the market endpoint. Transient failures
// (network errors, 5xx, 429) are retried with backoff by the underlying resty
// client; whatever survives the retries comes back as a page-level error.
type Client struct {
	baseURL string
	http    *resty.Client
}

func NewClient(baseURL string, timeout time.Duration, retries int) *Client {
	c := resty.New().
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() >= 500 || r.StatusCode() == 429
		})
	return &Client{baseURL: baseURL, http: c}
}

func (c *Client) FetchPage(ctx context.Context, page int) (*port.AuctionPage, error) {
	var out port.AuctionPage
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		SetResult(&out).
		Get(c.baseURL)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("market api error: %d %s", resp.StatusCode(), resp.Status())
	}
	return &out, nil
}

var _ port.PageSource = (*Client)(nil)
