// Package preview derives display previews from candidate upload files.
// Derivation never mutates upload state and never fails outward: anything
// that cannot be previewed becomes a generic file card.
package preview

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/practica/practica-link/internal/logging"
	"github.com/practica/practica-link/internal/models"
)

// Kind is the preview representation chosen for a file.
type Kind string

const (
	KindPDF         Kind = "pdf"
	KindImage       Kind = "image"
	KindSpreadsheet Kind = "spreadsheet"
	KindGeneric     Kind = "generic"
)

// Display caps for spreadsheet grids.
const (
	MaxGridRows = 100
	MaxGridCols = 10
)

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".webp": true, ".tif": true, ".tiff": true,
	".svg": true, ".heic": true,
}

var spreadsheetExtensions = map[string]bool{
	".xlsx": true, ".xls": true, ".csv": true,
}

// DetectKind picks the preview representation for a file.
// Priority order, first match wins: PDF, image, spreadsheet, generic.
func DetectKind(name, contentType string) Kind {
	ext := strings.ToLower(filepath.Ext(name))
	ct := strings.ToLower(contentType)

	if ct == "application/pdf" || ext == ".pdf" {
		return KindPDF
	}
	if strings.HasPrefix(ct, "image/") || imageExtensions[ext] {
		return KindImage
	}
	if spreadsheetExtensions[ext] {
		return KindSpreadsheet
	}
	return KindGeneric
}

// Grid is the capped row-major cell grid for a spreadsheet preview.
type Grid struct {
	SheetName string
	Rows      [][]string
	// TotalRows is the true row count of the sheet, not the capped view.
	TotalRows int
	Truncated bool
}

// Preview is the derived display representation of one file.
type Preview struct {
	Kind        Kind
	FileName    string
	ContentType string
	SizeBytes   int64
	// Grid is set only for KindSpreadsheet.
	Grid *Grid
	// Downloadable marks the generic card's direct-download affordance.
	Downloadable bool
}

// Handle owns a derived preview for the lifetime of its file record.
// Close releases the preview resources; it is idempotent.
type Handle struct {
	mu      sync.Mutex
	preview *Preview
	closed  bool
}

// Preview returns the derived preview, or nil after Close.
func (h *Handle) Preview() *Preview {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.preview
}

// Closed reports whether the handle has been released.
func (h *Handle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.preview = nil
	h.closed = true
	return nil
}

// Service derives previews.
type Service struct {
	log *logging.Logger
}

// NewService creates a preview service.
func NewService(log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefaultLogger()
	}
	return &Service{log: log}
}

// Derive builds a preview handle for a file. It does not fail: spreadsheet
// parse errors and unreadable sources degrade to the generic card, logged
// but never surfaced to the caller.
func (s *Service) Derive(src models.FileSource) *Handle {
	p := &Preview{
		Kind:        DetectKind(src.Name(), src.ContentType()),
		FileName:    src.Name(),
		ContentType: src.ContentType(),
		SizeBytes:   src.Size(),
	}

	if p.Kind == KindSpreadsheet {
		grid, err := parseSpreadsheet(src)
		if err != nil {
			s.log.Debug().
				Str("file", src.Name()).
				Err(err).
				Msg("spreadsheet preview failed, falling back to generic card")
			p.Kind = KindGeneric
		} else {
			p.Grid = grid
		}
	}

	if p.Kind == KindGeneric {
		p.Downloadable = true
	}

	return &Handle{preview: p}
}
