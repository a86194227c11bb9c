package ports

import "net/http"

// HTTPClient is what the HTTP sync trigger sends requests through.
// *http.Client satisfies it; tests substitute a RoundTripper-backed client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
