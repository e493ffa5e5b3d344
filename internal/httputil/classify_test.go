package httputil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"cancelled sentinel", context.Canceled, KindCancelled},
		{"deadline sentinel", context.DeadlineExceeded, KindTimeout},
		{"wrapped cancel", fmt.Errorf("request failed: %w", context.Canceled), KindCancelled},
		{"tls timeout", errors.New("net/http: TLS handshake timeout"), KindTimeout},
		{"refused", errors.New("dial tcp 10.0.0.1:443: connection refused"), KindNetwork},
		{"dns", errors.New("dial tcp: lookup app.practica.tax: no such host"), KindNetwork},
		{"auth", errors.New("practica api: status 401: invalid token"), KindAuth},
		{"throttle", errors.New("practica api: status 429: slow down"), KindServer},
		{"bad gateway", errors.New("practica api: status 502: upstream"), KindServer},
		{"other", errors.New("something odd"), KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestHumanize(t *testing.T) {
	if got := Humanize(context.Canceled); got != "Upload cancelled" {
		t.Errorf("Humanize(Canceled) = %q", got)
	}
	if got := Humanize(context.DeadlineExceeded); got != "Request timed out" {
		t.Errorf("Humanize(DeadlineExceeded) = %q", got)
	}

	got := Humanize(errors.New("dial tcp: connection refused"))
	if !strings.HasPrefix(got, "Network error: ") {
		t.Errorf("Humanize(network) = %q, want Network error prefix", got)
	}

	if got := Humanize(nil); got != "" {
		t.Errorf("Humanize(nil) = %q, want empty", got)
	}
}
