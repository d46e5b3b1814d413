package bokadirekt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/teemow/haircut-mcp/internal/logging"
)

const (
	// DefaultBaseURL is the public BokaDirekt site.
	DefaultBaseURL = "https://www.bokadirekt.se"

	// DefaultTimeout bounds a single availability request.
	DefaultTimeout = 30 * time.Second

	availabilityPath = "/api/availability"

	// maxErrorBody caps how much of an error response is drained for logging.
	maxErrorBody = 4 << 10
)

// Client reads availability from the BokaDirekt API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	log        logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (scheme and host, no trailing path).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient uses the given http.Client as-is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the request timeout of the default http.Client.
// Zero disables the timeout. Ignored when WithHTTPClient is used.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a new availability client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout:   c.timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if c.log == nil {
		c.log = logging.DefaultLogger()
	}
	return c
}

// AvailabilityURL returns the endpoint URL for q.
func (c *Client) AvailabilityURL(q Query) string {
	segments := []string{
		url.PathEscape(q.ServiceID),
		url.PathEscape(q.SalonID),
		strconv.FormatInt(q.WindowStart, 10),
		url.PathEscape(q.StaffID),
		strconv.FormatInt(q.WindowEnd, 10),
	}
	return c.baseURL + availabilityPath + "/" + strings.Join(segments, "/") + "?reborn=true"
}

// FetchAvailability performs one GET against the availability endpoint and
// decodes the slot list.
func (c *Client) FetchAvailability(ctx context.Context, q Query) (*Availability, error) {
	endpoint := c.AvailabilityURL(q)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("bokadirekt: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug("requesting availability", "url", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bokadirekt: failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.Debug("availability request rejected",
			logging.KeyStatusCode, resp.StatusCode,
			"body", string(body))
		return nil, &RequestError{StatusCode: resp.StatusCode, URL: endpoint}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("bokadirekt: failed to read response body: %w", err)
	}

	avail, err := DecodeAvailability(body)
	if err != nil {
		return nil, err
	}

	c.log.Debug("availability decoded", logging.KeySlots, avail.Len())
	return avail, nil
}

// DecodeAvailability parses an availability response body.
//
// Policy: a body that is not JSON is a ParseError. A body without a
// "fromErp" field, with a falsy "fromErp" (null, false, 0 or ""), or that is
// valid JSON but not an object yields an empty Availability. A "fromErp" that is not an array, or
// an element that does not decode as a Slot or lacks employeePrices or its
// price, is a ParseError.
func DecodeAvailability(body []byte) (*Availability, error) {
	if !json.Valid(body) {
		return nil, &ParseError{Err: errors.New("response body is not valid JSON")}
	}

	avail := &Availability{
		Slots: []Slot{},
		Raw:   []json.RawMessage{},
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		// Valid JSON that is not an object carries no fromErp field.
		return avail, nil
	}

	field, ok := envelope["fromErp"]
	if !ok || isFalsy(field) {
		return avail, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(field, &items); err != nil {
		return nil, &ParseError{Err: fmt.Errorf("fromErp is not an array: %w", err)}
	}

	for i, item := range items {
		var slot Slot
		if err := json.Unmarshal(item, &slot); err != nil {
			return nil, &ParseError{Err: fmt.Errorf("slot %d: %w", i, err)}
		}
		if slot.EmployeePrices == nil {
			return nil, &ParseError{Err: fmt.Errorf("slot %d: missing employeePrices", i)}
		}
		if slot.EmployeePrices.Price == nil {
			return nil, &ParseError{Err: fmt.Errorf("slot %d: missing employeePrices.price", i)}
		}
		avail.Slots = append(avail.Slots, slot)
		avail.Raw = append(avail.Raw, item)
	}

	return avail, nil
}

func isFalsy(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch v := v.(type) {
	case nil:
		return true
	case bool:
		return !v
	case float64:
		return v == 0
	case string:
		return v == ""
	}
	return false
}
