package httputil

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds each station call so a stuck station cannot block a
// fetch cycle beyond retries × timeout × backoff.
const DefaultTimeout = 25 * time.Second

// NewClient returns an HTTP client with standard timeout configuration.
func NewClient() *http.Client {
	return &http.Client{
		Timeout: DefaultTimeout,
	}
}
