package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/shipsecai/studio-mcp-gateway/internal/apperror"
	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
)

// httpClient is the shared low-level transport every backing-service HTTP
// client in this package is built from. It injects the caller's tenant id
// and, where present, their original bearer token on every outbound call,
// and maps transport/HTTP failures onto the apperror taxonomy so the
// dispatcher never has to distinguish "service down" from
// "service rejected the request" by hand.
type httpClient struct {
	baseURL string
	client  *http.Client
	service string // human label used in ServiceUnavailable/error messages
}

// newHTTPClient builds a pooled, timeout-bounded client for one backing
// service, mirroring the connection-pooling defaults used elsewhere in the
// corpus for outbound service clients.
func newHTTPClient(baseURL, service string, timeout time.Duration) *httpClient {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &httpClient{
		baseURL: baseURL,
		service: service,
		client:  &http.Client{Timeout: timeout, Transport: transport},
	}
}

// do issues an HTTP request against path with an optional JSON body,
// decoding a successful response into out (if non-nil). It stamps
// X-Tenant-Id from auth and forwards the original bearer token when one was
// retained for pass-through.
func (c *httpClient) do(ctx context.Context, auth *gwauth.AuthContext, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return apperror.Internal("encode request body", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperror.Internal("build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if auth != nil {
		req.Header.Set("X-Tenant-Id", auth.TenantID)
		req.Header.Set("X-Principal-Id", auth.PrincipalID)
		if tok := auth.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return apperror.ServiceUnavailable(c.service)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperror.Internal(fmt.Sprintf("read %s response", c.service), err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperror.NotFound(c.service, path)
	case resp.StatusCode == http.StatusForbidden:
		return apperror.Forbidden(fmt.Sprintf("%s denied the request", c.service))
	case resp.StatusCode >= 400:
		return apperror.Internal(fmt.Sprintf("%s returned %d: %s", c.service, resp.StatusCode, string(data)), nil)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperror.Internal(fmt.Sprintf("decode %s response", c.service), err)
	}
	return nil
}

// rawListEnvelope captures the two response shapes a listing endpoint may
// use, so normalizeList can present the dispatcher a single shape
// regardless of which one the backing service actually returned.
type rawListEnvelope struct {
	Items     json.RawMessage `json:"items"`
	Artifacts json.RawMessage `json:"artifacts"`
}

// normalizeList decodes a listing response that may be a bare JSON array or
// an object wrapping the array under "items" or "artifacts", into dst (a
// pointer to a slice).
func normalizeList(data []byte, dst any) error {
	trimmed := bytesTrimLeadingSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(data, dst)
	}
	var env rawListEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	switch {
	case len(env.Items) > 0:
		return json.Unmarshal(env.Items, dst)
	case len(env.Artifacts) > 0:
		return json.Unmarshal(env.Artifacts, dst)
	default:
		return json.Unmarshal(data, dst)
	}
}

func bytesTrimLeadingSpace(b []byte) []byte {
	i := 0
	for i < len(b) && (b[i] == ' ' || b[i] == '\t' || b[i] == '\n' || b[i] == '\r') {
		i++
	}
	return b[i:]
}

// normalizeMimeType returns whichever of mimeType/contentType is non-empty,
// preferring mimeType.
func normalizeMimeType(mimeType, contentType string) string {
	if mimeType != "" {
		return mimeType
	}
	return contentType
}
