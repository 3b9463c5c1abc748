package httpclient

import (
	"io"
	"net"
	"net/http"
	"sync"
	"time"
)

const (
	// MaxErrorBodyBytes caps how much of a failed response is drained so the
	// connection can be reused.
	MaxErrorBodyBytes = 64 * 1024
	// Transport tuning. There is no overall Client.Timeout; a run is bounded
	// through its context.
	DialTimeout           = 30 * time.Second
	MaxIdleConns          = 20
	MaxIdleConnsPerHost   = 4
	IdleConnTimeout       = 90 * time.Second
	TLSHandshakeTimeout   = 15 * time.Second
	ExpectContinueTimeout = 1 * time.Second
)

var (
	defaultClient     *http.Client
	defaultClientOnce sync.Once
	overrideClient    *http.Client
)

// NewStreamingClient returns an http.Client suited to reading responses that
// arrive incrementally and may take minutes to finish.
func NewStreamingClient() *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          MaxIdleConns,
		MaxIdleConnsPerHost:   MaxIdleConnsPerHost,
		IdleConnTimeout:       IdleConnTimeout,
		TLSHandshakeTimeout:   TLSHandshakeTimeout,
		ExpectContinueTimeout: ExpectContinueTimeout,
		DisableCompression:    true,
	}
	return &http.Client{Transport: transport}
}

// GetDefaultClient returns the shared streaming client.
func GetDefaultClient() *http.Client {
	if overrideClient != nil {
		return overrideClient
	}
	defaultClientOnce.Do(func() {
		defaultClient = NewStreamingClient()
	})
	return defaultClient
}

// SetDefaultClientForTesting overrides the singleton client for tests.
// It returns a restore function to reset the previous client.
func SetDefaultClientForTesting(client *http.Client) func() {
	prevOverride := overrideClient
	overrideClient = client
	return func() {
		overrideClient = prevOverride
	}
}

// DrainAndClose discards a bounded amount of body and closes it.
func DrainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(body, MaxErrorBodyBytes))
	_ = body.Close()
}
