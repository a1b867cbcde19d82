// Package chainweb adapts the REST and server-sent event interfaces of a
// chainweb node to the ingestion model.
package chainweb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
	"github.com/goodnatureofminers/chainweb-indexer/pkg/safe"
	"go.uber.org/ratelimit"
)

const (
	blockHeaderObjectEncoding = "application/json;blockheader-encoding=object"
	eventStreamType           = "text/event-stream"

	defaultBranchLimit = 100
)

// StatusError is returned when the node answers with a non-success status.
type StatusError struct {
	Operation string
	Code      int
	Body      string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: node returned %d: %s", e.Operation, e.Code, e.Body)
}

// ClientConfig configures the REST client of a node.
type ClientConfig struct {
	NodeURL           string
	Network           model.Network
	Timeout           time.Duration
	RequestsPerSecond int
	BranchLimit       int
}

// Client issues instrumented, rate limited calls to a chainweb node.
type Client struct {
	rest        *resty.Client
	stream      *resty.Client
	limiter     ratelimit.Limiter
	metrics     Metrics
	branchLimit int
}

// NewClient builds a Client for the node service API of cfg.Network.
func NewClient(cfg ClientConfig, metrics Metrics) (*Client, error) {
	if cfg.NodeURL == "" {
		return nil, errors.New("node url is required")
	}
	if cfg.Network == "" {
		return nil, errors.New("network is required")
	}
	if metrics == nil {
		return nil, errors.New("node client metrics is required")
	}
	base := strings.TrimRight(cfg.NodeURL, "/") + "/chainweb/0.0/" + string(cfg.Network)

	limiter := ratelimit.NewUnlimited()
	if cfg.RequestsPerSecond > 0 {
		limiter = ratelimit.New(cfg.RequestsPerSecond)
	}
	branchLimit := cfg.BranchLimit
	if branchLimit <= 0 {
		branchLimit = defaultBranchLimit
	}

	return &Client{
		rest:        resty.New().SetBaseURL(base).SetTimeout(cfg.Timeout),
		stream:      resty.New().SetBaseURL(base),
		limiter:     limiter,
		metrics:     metrics,
		branchLimit: branchLimit,
	}, nil
}

func (c *Client) call(ctx context.Context, operation string, send func(*resty.Request) (*resty.Response, error), out any) (err error) {
	started := time.Now()
	defer func() {
		c.metrics.Observe(operation, err, started)
	}()

	c.limiter.Take()
	resp, err := send(c.rest.R().SetContext(ctx))
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	if resp.IsError() {
		return &StatusError{Operation: operation, Code: resp.StatusCode(), Body: strings.TrimSpace(resp.String())}
	}
	if out == nil {
		return nil
	}
	if err = json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s: decode response: %w", operation, err)
	}
	return nil
}

// cut returns the current heads of every chain.
func (c *Client) cut(ctx context.Context) (*cutInfo, error) {
	var out cutInfo
	err := c.call(ctx, "cut", func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/cut")
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// headerBranch returns the headers in [from, to] on the branch ending at upper,
// following pagination, in ascending height order.
func (c *Client) headerBranch(ctx context.Context, chain model.ChainID, upper string, from, to int64) ([]wireHeader, error) {
	minHeight, err := safe.Uint64(from)
	if err != nil {
		return nil, fmt.Errorf("min height: %w", err)
	}
	maxHeight, err := safe.Uint64(to)
	if err != nil {
		return nil, fmt.Errorf("max height: %w", err)
	}

	var headers []wireHeader
	next := ""
	for {
		var page headerPage
		err := c.call(ctx, "header_branch", func(r *resty.Request) (*resty.Response, error) {
			r.SetHeader("Accept", blockHeaderObjectEncoding).
				SetQueryParam("minheight", strconv.FormatUint(minHeight, 10)).
				SetQueryParam("maxheight", strconv.FormatUint(maxHeight, 10)).
				SetQueryParam("limit", strconv.Itoa(c.branchLimit)).
				SetBody(branchBounds{Lower: []string{}, Upper: []string{upper}})
			if next != "" {
				r.SetQueryParam("next", next)
			}
			return r.Post(fmt.Sprintf("/chain/%d/header/branch", chain))
		}, &page)
		if err != nil {
			return nil, err
		}
		headers = append(headers, page.Items...)
		if page.Next == "" || len(page.Items) == 0 {
			break
		}
		next = page.Next
	}

	sortHeaders(headers)
	return headers, nil
}

// payloadsWithOutputs returns payloads keyed by payload hash.
func (c *Client) payloadsWithOutputs(ctx context.Context, chain model.ChainID, payloadHashes []string) (map[string]payloadWithOutputs, error) {
	if len(payloadHashes) == 0 {
		return map[string]payloadWithOutputs{}, nil
	}
	var items []payloadWithOutputs
	err := c.call(ctx, "payload_outputs", func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(payloadHashes).Post(fmt.Sprintf("/chain/%d/payload/outputs/batch", chain))
	}, &items)
	if err != nil {
		return nil, err
	}
	out := make(map[string]payloadWithOutputs, len(items))
	for _, p := range items {
		out[p.PayloadHash] = p
	}
	return out, nil
}

// headerUpdates streams BlockHeader events until the stream ends, fn fails or
// ctx is done.
func (c *Client) headerUpdates(ctx context.Context, fn func(headerEvent) error) error {
	started := time.Now()
	resp, err := c.stream.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeader("Accept", eventStreamType).
		Get("/header/updates")
	if err == nil && resp.IsError() {
		err = &StatusError{Operation: "header_updates", Code: resp.StatusCode()}
		_ = resp.RawBody().Close()
	}
	c.metrics.Observe("header_updates", err, started)
	if err != nil {
		return fmt.Errorf("header updates: %w", err)
	}

	body := resp.RawBody()
	defer func() {
		_ = body.Close()
	}()

	err = readEvents(body, func(ev event) error {
		if ev.Name != "BlockHeader" {
			return nil
		}
		var he headerEvent
		if err := json.Unmarshal([]byte(ev.Data), &he); err != nil {
			return fmt.Errorf("decode header event: %w", err)
		}
		return fn(he)
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
