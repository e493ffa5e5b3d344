// Package uploader turns the API client into the session's transfer
// executor: one file at a time, a deadline per transfer, and failures
// normalized into outcome messages instead of Go errors.
package uploader

import (
	"context"
	"time"

	"github.com/practica/practica-link/internal/httputil"
	"github.com/practica/practica-link/internal/logging"
	"github.com/practica/practica-link/internal/models"
)

// DocumentAPI is the slice of the platform client the executor needs.
type DocumentAPI interface {
	UploadDocument(ctx context.Context, src models.FileSource, destFolderID string, progress func(written int64)) error
	SubmitRequestFile(ctx context.Context, requestID string, src models.FileSource, progress func(written int64)) error
}

// DefaultTimeout bounds a single transfer when no configured timeout is
// supplied.
const DefaultTimeout = 120 * time.Second

// Executor uploads files into destination folders. Upload never returns a
// Go error; every failure is normalized into the outcome message.
type Executor struct {
	api     DocumentAPI
	timeout time.Duration
	log     *logging.Logger

	// Progress, when set, is called with byte counts as a transfer
	// streams. It receives the file source so callers can key progress
	// bars per file.
	Progress func(src models.FileSource, written int64)
}

// NewExecutor creates an executor with the given per-transfer timeout.
// A non-positive timeout falls back to DefaultTimeout.
func NewExecutor(api DocumentAPI, timeout time.Duration, log *logging.Logger) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logging.NewDefaultLogger()
	}
	return &Executor{api: api, timeout: timeout, log: log}
}

// Upload transfers one file into folderID. The batch context is wrapped
// with the per-transfer timeout so one stalled file cannot hang the batch.
func (e *Executor) Upload(ctx context.Context, src models.FileSource, folderID string) models.UploadOutcome {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	err := e.api.UploadDocument(ctx, src, folderID, e.progressFor(src))
	if err != nil {
		e.log.Debug().
			Str("file", src.Name()).
			Str("folder", folderID).
			Err(err).
			Msg("upload failed")
		return models.UploadOutcome{OK: false, Message: httputil.Humanize(err)}
	}

	e.log.Debug().
		Str("file", src.Name()).
		Str("folder", folderID).
		Dur("elapsed", time.Since(start)).
		Msg("upload complete")
	return models.UploadOutcome{OK: true, Message: "File uploaded successfully"}
}

func (e *Executor) progressFor(src models.FileSource) func(int64) {
	if e.Progress == nil {
		return nil
	}
	return func(written int64) { e.Progress(src, written) }
}

// RequestExecutor submits files against a document request instead of a
// folder. The request carries its own destination, so the folder id passed
// by the session is ignored.
type RequestExecutor struct {
	api       DocumentAPI
	requestID string
	timeout   time.Duration
	log       *logging.Logger

	Progress func(src models.FileSource, written int64)
}

// NewRequestExecutor creates an executor bound to one document request.
func NewRequestExecutor(api DocumentAPI, requestID string, timeout time.Duration, log *logging.Logger) *RequestExecutor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logging.NewDefaultLogger()
	}
	return &RequestExecutor{api: api, requestID: requestID, timeout: timeout, log: log}
}

// Upload submits one file to the bound document request.
func (e *RequestExecutor) Upload(ctx context.Context, src models.FileSource, _ string) models.UploadOutcome {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var progress func(int64)
	if e.Progress != nil {
		progress = func(written int64) { e.Progress(src, written) }
	}

	if err := e.api.SubmitRequestFile(ctx, e.requestID, src, progress); err != nil {
		e.log.Debug().
			Str("file", src.Name()).
			Str("request", e.requestID).
			Err(err).
			Msg("request submission failed")
		return models.UploadOutcome{OK: false, Message: httputil.Humanize(err)}
	}
	return models.UploadOutcome{OK: true, Message: "File uploaded successfully"}
}
