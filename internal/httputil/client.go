// Package httputil provides HTTP client construction and transport error
// classification shared by the API client and the upload executor.
package httputil

import (
	nethttp "net/http"
	"time"
)

// NewClient creates the base HTTP client for all Practica calls.
// Proxy settings come from the environment (HTTP_PROXY, HTTPS_PROXY,
// NO_PROXY). The client has no overall timeout; every operation bounds
// itself with a context.
func NewClient() *nethttp.Client {
	tr := &nethttp.Transport{
		Proxy:                 nethttp.ProxyFromEnvironment,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &nethttp.Client{
		Transport: tr,
		Timeout:   0,
	}
}
