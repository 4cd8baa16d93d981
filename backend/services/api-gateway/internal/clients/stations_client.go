package clients

import (
	"context"
	"net/http"
)

// Caller carries the parts of an inbound request that stations-service needs.
type Caller struct {
	Authorization string
	ContentType   string
}

func (c Caller) headers() map[string]string {
	return map[string]string{
		"Authorization": c.Authorization,
		"Content-Type":  c.ContentType,
	}
}

// StationsClient forwards station search, status reports and calculator calls.
type StationsClient struct {
	base *BaseClient
}

// NewStationsClient returns client.
func NewStationsClient(baseURL string, httpClient HTTPDoer) *StationsClient {
	return &StationsClient{base: NewBaseClient(baseURL, httpClient)}
}

// Search forwards a station search query string.
func (c *StationsClient) Search(ctx context.Context, rawQuery string, caller Caller) (int, []byte, error) {
	return c.base.Do(ctx, Request{Method: http.MethodGet, Path: "/stations", RawQuery: rawQuery, Headers: caller.headers()})
}

// SubmitStatus forwards a status report.
func (c *StationsClient) SubmitStatus(ctx context.Context, body []byte, caller Caller) (int, []byte, error) {
	return c.base.Do(ctx, Request{Method: http.MethodPost, Path: "/stations/status", Body: body, Headers: caller.headers()})
}

// StatusHistory forwards a status history query string.
func (c *StationsClient) StatusHistory(ctx context.Context, rawQuery string, caller Caller) (int, []byte, error) {
	return c.base.Do(ctx, Request{Method: http.MethodGet, Path: "/stations/status/history", RawQuery: rawQuery, Headers: caller.headers()})
}

// Get forwards a read-only catalogue call such as /api/years.
func (c *StationsClient) Get(ctx context.Context, path, rawQuery string, caller Caller) (int, []byte, error) {
	return c.base.Do(ctx, Request{Method: http.MethodGet, Path: path, RawQuery: rawQuery, Headers: caller.headers()})
}

// Post forwards a calculator submission.
func (c *StationsClient) Post(ctx context.Context, path string, body []byte, caller Caller) (int, []byte, error) {
	return c.base.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body, Headers: caller.headers()})
}
