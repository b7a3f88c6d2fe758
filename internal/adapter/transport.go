package adapter

import (
	"io"
	"net/http"
	"time"
)

// maxErrorBody caps how much of a failed response is kept.
const maxErrorBody = 64 << 10

// statusTransport turns non-2xx responses into *RequestError carrying the
// raw body. SDKs never see the failed response.
type statusTransport struct {
	provider string
	base     http.RoundTripper
}

func (t *statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, &RequestError{
		Provider:   t.provider,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}

// newHostedHTTPClient returns an http.Client for an SDK-backed provider.
func newHostedHTTPClient(provider string, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &statusTransport{provider: provider, base: http.DefaultTransport},
	}
}
