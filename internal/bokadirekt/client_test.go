package bokadirekt

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testQuery = Query{
	ServiceID:   "svc",
	SalonID:     "salon",
	StaffID:     "5",
	WindowStart: 1753056000000,
	WindowEnd:   1753048800000,
}

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *http.Request) {
	t.Helper()
	var captured http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = *r
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func TestClient_AvailabilityURL(t *testing.T) {
	c := NewClient(WithBaseURL("https://example.test/"))

	assert.Equal(t,
		"https://example.test/api/availability/svc/salon/1753056000000/5/1753048800000?reborn=true",
		c.AvailabilityURL(testQuery))
}

func TestClient_AvailabilityURL_EmptyIdentifiers(t *testing.T) {
	c := NewClient(WithBaseURL("https://example.test"))

	got := c.AvailabilityURL(Query{WindowStart: 1, WindowEnd: 2})
	assert.Equal(t, "https://example.test/api/availability///1//2?reborn=true", got)
}

func TestClient_FetchAvailability_Success(t *testing.T) {
	body := `{"fromErp":[
		{"start":1753088400000,"duration":30,"employeeId":5,"employeePrices":{"price":300,"priceLabel":"300 kr"},"extra":"kept"},
		{"start":1753092000000,"duration":45,"employeeId":7,"employeePrices":{"price":450,"priceLabel":"450 kr"}}
	]}`
	srv, req := newTestServer(t, http.StatusOK, body)

	c := NewClient(WithBaseURL(srv.URL))
	avail, err := c.FetchAvailability(context.Background(), testQuery)
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/availability/svc/salon/1753056000000/5/1753048800000", req.URL.Path)
	assert.Equal(t, "true", req.URL.Query().Get("reborn"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))

	require.Equal(t, 2, avail.Len())
	assert.Equal(t, Slot{
		Start:          1753088400000,
		Duration:       30,
		EmployeeID:     5,
		EmployeePrices: &EmployeePrices{Price: price(300), PriceLabel: "300 kr"},
	}, avail.Slots[0])
	assert.Equal(t, int64(7), avail.Slots[1].EmployeeID)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(avail.Raw[0], &raw))
	assert.Equal(t, "kept", raw["extra"])
}

func TestClient_FetchAvailability_StatusError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusInternalServerError, `{"error":"boom"}`)

	c := NewClient(WithBaseURL(srv.URL))
	avail, err := c.FetchAvailability(context.Background(), testQuery)
	require.Error(t, err)
	assert.Nil(t, avail)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, 500, reqErr.StatusCode)
	assert.Contains(t, err.Error(), "500")
}

func TestClient_FetchAvailability_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusNotFound, ``)

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.FetchAvailability(context.Background(), testQuery)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
}

func TestClient_FetchAvailability_InvalidJSON(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `<html>maintenance</html>`)

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.FetchAvailability(context.Background(), testQuery)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestClient_FetchAvailability_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(WithBaseURL(url))
	_, err := c.FetchAvailability(context.Background(), testQuery)
	require.Error(t, err)

	var reqErr *RequestError
	var parseErr *ParseError
	assert.False(t, errors.As(err, &reqErr))
	assert.False(t, errors.As(err, &parseErr))
}

func TestClient_FetchAvailability_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.FetchAvailability(ctx, testQuery)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_WithHTTPClient(t *testing.T) {
	hc := &http.Client{Timeout: time.Second}
	c := NewClient(WithHTTPClient(hc), WithTimeout(time.Hour))
	assert.Same(t, hc, c.httpClient)
}

func TestDecodeAvailability(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantSlots int
		wantErr   bool
	}{
		{name: "missing fromErp", body: `{"other":[]}`, wantSlots: 0},
		{name: "null fromErp", body: `{"fromErp":null}`, wantSlots: 0},
		{name: "empty fromErp", body: `{"fromErp":[]}`, wantSlots: 0},
		{name: "false fromErp", body: `{"fromErp":false}`, wantSlots: 0},
		{name: "zero fromErp", body: `{"fromErp":0}`, wantSlots: 0},
		{name: "empty string fromErp", body: `{"fromErp":""}`, wantSlots: 0},
		{name: "true fromErp", body: `{"fromErp":true}`, wantErr: true},
		{name: "string fromErp", body: `{"fromErp":"slots"}`, wantErr: true},
		{name: "json null body", body: `null`, wantSlots: 0},
		{name: "json array body", body: `[1,2,3]`, wantSlots: 0},
		{name: "one slot", body: `{"fromErp":[{"start":1,"duration":30,"employeeId":5,"employeePrices":{"price":1,"priceLabel":"1 kr"}}]}`, wantSlots: 1},
		{name: "empty body", body: ``, wantErr: true},
		{name: "truncated json", body: `{"fromErp":[`, wantErr: true},
		{name: "fromErp not array", body: `{"fromErp":{"start":1}}`, wantErr: true},
		{name: "slot with string start", body: `{"fromErp":[{"start":"soon","duration":30,"employeeId":5,"employeePrices":{"price":1,"priceLabel":"1 kr"}}]}`, wantErr: true},
		{name: "slot without prices", body: `{"fromErp":[{"start":1,"duration":30,"employeeId":5}]}`, wantErr: true},
		{name: "slot without price", body: `{"fromErp":[{"start":1,"duration":30,"employeeId":5,"employeePrices":{"priceLabel":"1 kr"}}]}`, wantErr: true},
		{name: "slot with null price", body: `{"fromErp":[{"start":1,"duration":30,"employeeId":5,"employeePrices":{"price":null,"priceLabel":"1 kr"}}]}`, wantErr: true},
		{name: "null slot", body: `{"fromErp":[null]}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			avail, err := DecodeAvailability([]byte(tt.body))
			if tt.wantErr {
				var parseErr *ParseError
				require.ErrorAs(t, err, &parseErr)
				assert.Nil(t, avail)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSlots, avail.Len())
			assert.Len(t, avail.Raw, tt.wantSlots)
			assert.NotNil(t, avail.Slots)
		})
	}
}

func TestParseError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := &ParseError{Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "inner")
}

func price(v float64) *float64 {
	return &v
}

func TestEmployeePrices_Amount(t *testing.T) {
	var nilPrices *EmployeePrices
	assert.Zero(t, nilPrices.Amount())
	assert.Zero(t, (&EmployeePrices{PriceLabel: "1 kr"}).Amount())
	assert.Equal(t, 450.0, (&EmployeePrices{Price: price(450)}).Amount())
}

func TestAvailability_LenNil(t *testing.T) {
	var a *Availability
	assert.Equal(t, 0, a.Len())
}
