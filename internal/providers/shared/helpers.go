package shared

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/janekbaraniewski/usagebridge/internal/core"
	"github.com/janekbaraniewski/usagebridge/internal/parsers"
)

const maxErrorBody = 200

// NewHTTPClient returns a client with the given timeout. A non-positive
// timeout leaves the transport to decide.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		return &http.Client{}
	}
	return &http.Client{Timeout: timeout}
}

// BearerClient wraps base so every request carries "Authorization: Bearer token".
func BearerClient(base *http.Client, token string) *http.Client {
	if base == nil {
		base = http.DefaultClient
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	client.Timeout = base.Timeout
	return client
}

type Request struct {
	Op      string // names the call in errors, e.g. "loadCodeAssist"
	Method  string
	URL     string
	Body    any // JSON-encoded when non-nil
	Headers map[string]string
}

// DoJSON performs req once and returns the body of a 2xx response.
// Every failure is a *core.FetchError.
func DoJSON(ctx context.Context, client *http.Client, req Request) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &core.FetchError{Op: req.Op, Err: fmt.Errorf("marshal request: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, &core.FetchError{Op: req.Op, Err: fmt.Errorf("creating request: %w", err)}
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, &core.FetchError{Op: req.Op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &core.FetchError{Op: req.Op, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading body: %w", err)}
	}
	log.Printf("[http] %s %s -> %d (%d bytes) headers=%v", method, req.Op, resp.StatusCode, len(respBody), parsers.RedactHeaders(resp.Header))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &core.FetchError{
			Op:         req.Op,
			StatusCode: resp.StatusCode,
			Body:       core.TruncateBody(respBody, maxErrorBody),
		}
	}
	return respBody, nil
}
