package uploader

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/practica/practica-link/internal/models"
)

type fakeSource struct {
	name string
}

func (f *fakeSource) Name() string        { return f.name }
func (f *fakeSource) Size() int64         { return 4 }
func (f *fakeSource) ContentType() string { return "application/pdf" }
func (f *fakeSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("data")), nil
}

type fakeAPI struct {
	uploadErr    error
	submitErr    error
	gotFolder    string
	gotRequest   string
	blockUntil   <-chan struct{}
	reportBytes  int64
	lastDeadline bool
}

func (a *fakeAPI) UploadDocument(ctx context.Context, src models.FileSource, destFolderID string, progress func(int64)) error {
	a.gotFolder = destFolderID
	_, a.lastDeadline = ctx.Deadline()
	if progress != nil && a.reportBytes > 0 {
		progress(a.reportBytes)
	}
	if a.blockUntil != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-a.blockUntil:
		}
	}
	return a.uploadErr
}

func (a *fakeAPI) SubmitRequestFile(ctx context.Context, requestID string, src models.FileSource, progress func(int64)) error {
	a.gotRequest = requestID
	return a.submitErr
}

func TestUploadSuccess(t *testing.T) {
	api := &fakeAPI{}
	e := NewExecutor(api, time.Minute, nil)

	out := e.Upload(context.Background(), &fakeSource{name: "a.pdf"}, "42")
	if !out.OK {
		t.Fatalf("expected success, got %q", out.Message)
	}
	if out.Message != "File uploaded successfully" {
		t.Errorf("unexpected message: %q", out.Message)
	}
	if api.gotFolder != "42" {
		t.Errorf("expected folder 42, got %s", api.gotFolder)
	}
	if !api.lastDeadline {
		t.Error("expected a per-transfer deadline on the context")
	}
}

func TestUploadNormalizesFailures(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{errors.New("dial tcp: connection refused"), "Network error: dial tcp: connection refused"},
		{context.Canceled, "Upload cancelled"},
		{errors.New("practica api: status 401: unauthorized"), "Not authorized: check your API token"},
		{errors.New("practica api: status 500: internal error"), "Server error: practica api: status 500: internal error"},
	}

	for _, tt := range tests {
		api := &fakeAPI{uploadErr: tt.err}
		e := NewExecutor(api, time.Minute, nil)

		out := e.Upload(context.Background(), &fakeSource{name: "a.pdf"}, "1")
		if out.OK {
			t.Errorf("%v: expected failure outcome", tt.err)
		}
		if out.Message != tt.want {
			t.Errorf("%v: expected %q, got %q", tt.err, tt.want, out.Message)
		}
	}
}

func TestUploadTimesOut(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	api := &fakeAPI{blockUntil: block}
	e := NewExecutor(api, 20*time.Millisecond, nil)

	out := e.Upload(context.Background(), &fakeSource{name: "slow.pdf"}, "1")
	if out.OK {
		t.Fatal("expected timeout failure")
	}
	if out.Message != "Request timed out" {
		t.Errorf("unexpected message: %q", out.Message)
	}
}

func TestUploadReportsProgress(t *testing.T) {
	api := &fakeAPI{reportBytes: 128}
	e := NewExecutor(api, time.Minute, nil)

	var gotName string
	var gotBytes int64
	e.Progress = func(src models.FileSource, written int64) {
		gotName = src.Name()
		gotBytes = written
	}

	e.Upload(context.Background(), &fakeSource{name: "a.pdf"}, "1")
	if gotName != "a.pdf" || gotBytes != 128 {
		t.Errorf("unexpected progress callback: %s %d", gotName, gotBytes)
	}
}

func TestRequestExecutorSubmitsToRequest(t *testing.T) {
	api := &fakeAPI{}
	e := NewRequestExecutor(api, "req-7", time.Minute, nil)

	out := e.Upload(context.Background(), &fakeSource{name: "a.pdf"}, "ignored-folder")
	if !out.OK {
		t.Fatalf("expected success, got %q", out.Message)
	}
	if api.gotRequest != "req-7" {
		t.Errorf("expected request req-7, got %s", api.gotRequest)
	}
	if api.gotFolder != "" {
		t.Errorf("folder upload path must not be used, got folder %s", api.gotFolder)
	}
}

func TestRequestExecutorNormalizesFailure(t *testing.T) {
	api := &fakeAPI{submitErr: errors.New("read tcp: connection reset by peer")}
	e := NewRequestExecutor(api, "req-7", time.Minute, nil)

	out := e.Upload(context.Background(), &fakeSource{name: "a.pdf"}, "")
	if out.OK {
		t.Fatal("expected failure outcome")
	}
	if out.Message != "Network error: read tcp: connection reset by peer" {
		t.Errorf("unexpected message: %q", out.Message)
	}
}
