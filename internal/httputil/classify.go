package httputil

import (
	"context"
	"errors"
	"strings"
)

// ErrorKind buckets transport failures for user-facing messages.
type ErrorKind int

const (
	// KindCancelled indicates the caller abandoned the request.
	KindCancelled ErrorKind = iota
	// KindTimeout indicates the per-operation deadline elapsed.
	KindTimeout
	// KindNetwork indicates connection-level failures.
	KindNetwork
	// KindAuth indicates the platform rejected the bearer token.
	KindAuth
	// KindServer indicates a 5xx or throttling response.
	KindServer
	// KindOther is everything else.
	KindOther
)

// Classify buckets an error from a Practica HTTP call.
// String matching mirrors what the transport actually produces; wrapped
// sentinel errors are checked first.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindOther
	}

	if errors.Is(err, context.Canceled) {
		return KindCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	errStr := strings.ToLower(err.Error())

	if strings.Contains(errStr, "context canceled") {
		return KindCancelled
	}
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") {
		return KindTimeout
	}
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "eof") {
		return KindNetwork
	}
	if strings.Contains(errStr, "401") ||
		strings.Contains(errStr, "403") ||
		strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "forbidden") {
		return KindAuth
	}
	if strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504") ||
		strings.Contains(errStr, "throttl") {
		return KindServer
	}

	return KindOther
}

// Humanize turns a transport error into the per-file message shown to the
// user. The original error text rides along for everything that isn't a
// recognizable bucket.
func Humanize(err error) string {
	if err == nil {
		return ""
	}

	switch Classify(err) {
	case KindCancelled:
		return "Upload cancelled"
	case KindTimeout:
		return "Request timed out"
	case KindNetwork:
		return "Network error: " + err.Error()
	case KindAuth:
		return "Not authorized: check your API token"
	case KindServer:
		return "Server error: " + err.Error()
	default:
		return err.Error()
	}
}
