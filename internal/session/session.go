// Package session implements the multi-file upload workflow: gathering
// files, assigning destination folders, validating, and running the batch
// upload with partial-failure handling.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/practica/practica-link/internal/events"
	"github.com/practica/practica-link/internal/logging"
	"github.com/practica/practica-link/internal/models"
)

// Step is the workflow step the session is in.
type Step string

const (
	StepSelecting   Step = "selecting"
	StepConfiguring Step = "configuring"
)

// Status is the upload status of one file record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

// ErrorCategory tags what a validation error is about, so callers can
// clear or inspect errors without matching on message text.
type ErrorCategory string

const (
	// CategoryDestination marks a missing or invalid destination folder.
	CategoryDestination ErrorCategory = "destination"
)

// ValidationError is one validation failure on a file record.
type ValidationError struct {
	Category ErrorCategory
	Message  string
}

// Sentinel errors returned by session operations.
var (
	ErrNoFiles          = errors.New("no files selected")
	ErrIndexOutOfRange  = errors.New("file index out of range")
	ErrValidationFailed = errors.New("validation failed")
	ErrUploadsFailed    = errors.New("some uploads failed")
	ErrSessionClosed    = errors.New("session is closed")
)

// Executor performs a single file transfer. Implementations never return a
// Go error; the outcome carries success and a human-readable message.
type Executor interface {
	Upload(ctx context.Context, src models.FileSource, folderID string) models.UploadOutcome
}

// PreviewFunc allocates a preview resource for a newly added file. The
// session owns the returned closer and releases it when the record is
// removed or the session ends.
type PreviewFunc func(models.FileSource) io.Closer

// FileRecord tracks one file through the workflow. Values returned by
// Records are snapshots; mutating them does not affect the session.
type FileRecord struct {
	ID                  string
	Source              models.FileSource
	DestinationFolderID string
	DestinationPath     string
	ValidationErrors    []ValidationError
	Status              Status
	Message             string

	preview io.Closer
}

func (r *FileRecord) clone() FileRecord {
	c := *r
	c.preview = nil
	c.ValidationErrors = append([]ValidationError(nil), r.ValidationErrors...)
	return c
}

// Session is the upload workflow aggregate. All methods are safe for
// concurrent use; the mutex is released around network transfers.
type Session struct {
	// OnUploadSuccess runs after a batch where every file landed.
	OnUploadSuccess func()
	// OnError runs once per failed record, with a snapshot of the record.
	OnError func(FileRecord)
	// OnCancel runs when the user abandons the flow before completion.
	OnCancel func()

	mu       sync.Mutex
	id       string
	step     Step
	records  []*FileRecord
	selected int
	banner   string
	closed   bool

	bus       *events.EventBus
	log       *logging.Logger
	previewFn PreviewFunc
}

// Option configures a session.
type Option func(*Session)

// WithPreview sets the preview allocator applied to each added file.
func WithPreview(fn PreviewFunc) Option {
	return func(s *Session) { s.previewFn = fn }
}

// NewSession creates a session in the selecting step. bus may be nil when
// no component listens for session events.
func NewSession(bus *events.EventBus, log *logging.Logger, opts ...Option) *Session {
	if log == nil {
		log = logging.NewDefaultLogger()
	}
	s := &Session{
		id:   uuid.New().String(),
		step: StepSelecting,
		bus:  bus,
		log:  log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Step returns the current workflow step.
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Records returns snapshot copies of all file records, in order.
func (s *Session) Records() []FileRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]FileRecord, len(s.records))
	for i, r := range s.records {
		out[i] = r.clone()
	}
	return out
}

// SelectedIndex returns the index of the currently selected file, or -1
// when the session holds no files.
func (s *Session) SelectedIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) == 0 {
		return -1
	}
	return s.selected
}

// ErrorBanner returns the aggregate error message from the last upload
// batch, or the empty string.
func (s *Session) ErrorBanner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.banner
}

// AddFiles appends file records for the given sources. Duplicate names are
// allowed; each addition gets its own record and preview.
func (s *Session) AddFiles(sources ...models.FileSource) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	for _, src := range sources {
		rec := &FileRecord{
			ID:     uuid.New().String(),
			Source: src,
			Status: StatusPending,
		}
		if s.previewFn != nil {
			rec.preview = s.previewFn(src)
		}
		s.records = append(s.records, rec)
	}
	s.publish(events.FilesChangedEvent{
		BaseEvent: s.base(events.EventFilesChanged),
		SessionID: s.id,
		FileCount: len(s.records),
	})
}

// RemoveFile drops the record at index and releases its preview. The
// selected index is clamped so it always points at a remaining file, or
// resets to 0 when the list empties.
func (s *Session) RemoveFile(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.records) {
		return ErrIndexOutOfRange
	}

	s.releaseRecord(s.records[index])
	s.records = append(s.records[:index], s.records[index+1:]...)

	if s.selected >= len(s.records) {
		s.selected = len(s.records) - 1
	}
	if s.selected < 0 {
		s.selected = 0
	}

	s.publish(events.FilesChangedEvent{
		BaseEvent: s.base(events.EventFilesChanged),
		SessionID: s.id,
		FileCount: len(s.records),
	})
	return nil
}

// SelectFile marks the record at index as the active one.
func (s *Session) SelectFile(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.records) {
		return ErrIndexOutOfRange
	}
	s.selected = index
	return nil
}

// BeginConfigure moves the session to the configuring step. It requires at
// least one file.
func (s *Session) BeginConfigure() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) == 0 {
		return ErrNoFiles
	}
	s.step = StepConfiguring
	s.publish(events.SessionStepEvent{
		BaseEvent: s.base(events.EventSessionStep),
		SessionID: s.id,
		Step:      string(StepConfiguring),
	})
	return nil
}

// ReturnToSelection moves back to the selecting step. Destinations and
// statuses already assigned are kept.
func (s *Session) ReturnToSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.step = StepSelecting
	s.publish(events.SessionStepEvent{
		BaseEvent: s.base(events.EventSessionStep),
		SessionID: s.id,
		Step:      string(StepSelecting),
	})
}

// AssignDestination sets the destination folder for the record at index
// and clears any destination validation errors it carried.
func (s *Session) AssignDestination(index int, folderID, folderPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.records) {
		return ErrIndexOutOfRange
	}

	rec := s.records[index]
	rec.DestinationFolderID = folderID
	rec.DestinationPath = folderPath

	kept := rec.ValidationErrors[:0]
	for _, ve := range rec.ValidationErrors {
		if ve.Category != CategoryDestination {
			kept = append(kept, ve)
		}
	}
	rec.ValidationErrors = kept
	return nil
}

// Validate runs a full validation pass over every record, recording
// per-record errors and returning the aggregate list. A record missing a
// destination gets a destination-category error; records that already
// uploaded successfully are not checked.
func (s *Session) Validate() []ValidationError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validateLocked()
}

func (s *Session) validateLocked() []ValidationError {
	var all []ValidationError
	missing := 0
	for _, rec := range s.records {
		rec.ValidationErrors = nil
		if rec.Status == StatusSuccess {
			continue
		}
		if rec.DestinationFolderID == "" {
			ve := ValidationError{
				Category: CategoryDestination,
				Message:  "Please select a folder",
			}
			rec.ValidationErrors = append(rec.ValidationErrors, ve)
			all = append(all, ve)
			missing++
		}
	}
	if missing > 0 {
		s.banner = fmt.Sprintf("%d file(s) are missing a destination folder", missing)
	}
	return all
}

// UploadAll uploads every pending record in order, one at a time. Records
// that already succeeded are skipped. A failed upload marks its record and
// moves on; it never aborts the batch. Cancelling ctx stops before the
// next transfer and leaves the remaining records pending.
func (s *Session) UploadAll(ctx context.Context, exec Executor) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if len(s.records) == 0 {
		s.mu.Unlock()
		return ErrNoFiles
	}
	if verrs := s.validateLocked(); len(verrs) > 0 {
		banner := s.banner
		s.mu.Unlock()
		s.publish(events.ValidationFailedEvent{
			BaseEvent: s.base(events.EventValidationFailed),
			SessionID: s.id,
			Message:   banner,
		})
		return fmt.Errorf("%w: %s", ErrValidationFailed, banner)
	}
	s.banner = ""
	total := len(s.records)
	s.mu.Unlock()

	failed := 0
	succeeded := 0
	cancelled := false

	for i := 0; i < total; i++ {
		if ctx.Err() != nil {
			cancelled = true
			break
		}

		s.mu.Lock()
		if i >= len(s.records) {
			s.mu.Unlock()
			break
		}
		rec := s.records[i]
		if rec.Status == StatusSuccess {
			succeeded++
			s.mu.Unlock()
			continue
		}
		rec.Status = StatusUploading
		rec.Message = ""
		src := rec.Source
		folderID := rec.DestinationFolderID
		s.mu.Unlock()

		s.publishRecordStatus(rec)

		outcome := exec.Upload(ctx, src, folderID)

		s.mu.Lock()
		if outcome.OK {
			rec.Status = StatusSuccess
			rec.Message = outcome.Message
			succeeded++
		} else {
			rec.Status = StatusError
			rec.Message = outcome.Message
			failed++
		}
		snapshot := rec.clone()
		s.mu.Unlock()

		s.publishRecordStatus(rec)
		if !outcome.OK && s.OnError != nil {
			s.OnError(snapshot)
		}
	}

	s.publish(events.SessionCompleteEvent{
		BaseEvent: s.base(events.EventSessionComplete),
		SessionID: s.id,
		Succeeded: succeeded,
		Failed:    failed,
	})

	if cancelled {
		s.publish(events.SessionCancelledEvent{
			BaseEvent: s.base(events.EventSessionCancelled),
			SessionID: s.id,
		})
		if s.OnCancel != nil {
			s.OnCancel()
		}
		return ctx.Err()
	}

	if failed > 0 {
		s.mu.Lock()
		s.banner = fmt.Sprintf("%d file(s) encountered errors during upload.", failed)
		s.mu.Unlock()
		return fmt.Errorf("%w: %d of %d", ErrUploadsFailed, failed, total)
	}

	s.publish(events.DocumentsRefreshedEvent{
		BaseEvent: s.base(events.EventDocumentsRefreshed),
		FolderIDs: s.destinationFolders(),
	})
	if s.OnUploadSuccess != nil {
		s.OnUploadSuccess()
	}
	s.teardown()
	return nil
}

// Retry resets every failed record back to pending and runs the batch
// again. Records that already succeeded stay untouched and are skipped by
// the new pass.
func (s *Session) Retry(ctx context.Context, exec Executor) error {
	s.mu.Lock()
	for _, rec := range s.records {
		if rec.Status == StatusError {
			rec.Status = StatusPending
			rec.Message = ""
		}
	}
	s.banner = ""
	s.mu.Unlock()

	return s.UploadAll(ctx, exec)
}

// Cancel abandons the workflow, releasing all previews.
func (s *Session) Cancel() {
	s.publish(events.SessionCancelledEvent{
		BaseEvent: s.base(events.EventSessionCancelled),
		SessionID: s.id,
	})
	if s.OnCancel != nil {
		s.OnCancel()
	}
	s.teardown()
}

// Close releases session resources. It is idempotent.
func (s *Session) Close() {
	s.teardown()
}

func (s *Session) teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for _, rec := range s.records {
		s.releaseRecord(rec)
	}
}

func (s *Session) releaseRecord(rec *FileRecord) {
	if rec.preview == nil {
		return
	}
	if err := rec.preview.Close(); err != nil {
		s.log.Debug().Str("file", rec.Source.Name()).Err(err).Msg("closing preview")
	}
	rec.preview = nil
}

func (s *Session) destinationFolders() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool)
	var ids []string
	for _, rec := range s.records {
		if rec.DestinationFolderID != "" && !seen[rec.DestinationFolderID] {
			seen[rec.DestinationFolderID] = true
			ids = append(ids, rec.DestinationFolderID)
		}
	}
	return ids
}

func (s *Session) publishRecordStatus(rec *FileRecord) {
	s.mu.Lock()
	ev := events.RecordStatusEvent{
		BaseEvent: s.base(events.EventRecordStatus),
		SessionID: s.id,
		RecordID:  rec.ID,
		FileName:  rec.Source.Name(),
		Status:    string(rec.Status),
		Message:   rec.Message,
	}
	s.mu.Unlock()
	s.publish(ev)
}

func (s *Session) publish(ev events.Event) {
	if s.bus != nil {
		s.bus.Publish(ev)
	}
}

func (s *Session) base(t events.EventType) events.BaseEvent {
	return events.BaseEvent{EventType: t, Time: time.Now()}
}
