// Package progress renders upload progress bars for the CLI. On a
// terminal it draws mpb bars; otherwise it degrades to plain line output
// so piped runs stay readable.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"

	"github.com/practica/practica-link/internal/models"
)

// UploadUI manages the progress bars for one upload batch.
type UploadUI struct {
	progress   *mpb.Progress
	isTerminal bool
	totalFiles int
	started    int32
	completed  int32
}

// FileBar is the progress bar for a single file transfer.
type FileBar struct {
	bar       *mpb.Bar
	ui        *UploadUI
	index     int
	name      string
	destPath  string
	size      int64
	written   int64
	startTime time.Time
	lastTick  time.Time
}

// NewUploadUI creates a progress UI for a batch of totalFiles uploads.
func NewUploadUI(totalFiles int) *UploadUI {
	isTerminal := term.IsTerminal(int(os.Stderr.Fd()))

	var p *mpb.Progress
	if isTerminal {
		p = mpb.New(
			mpb.WithOutput(os.Stderr),
			mpb.WithRefreshRate(300*time.Millisecond),
			mpb.WithWidth(80),
		)
	} else {
		p = mpb.New(mpb.WithOutput(io.Discard))
	}

	return &UploadUI{
		progress:   p,
		isTerminal: isTerminal,
		totalFiles: totalFiles,
	}
}

// AddFileBar starts a bar for one file going to destPath.
func (u *UploadUI) AddFileBar(name, destPath string, size int64) *FileBar {
	index := int(atomic.AddInt32(&u.started, 1))

	fb := &FileBar{
		ui:        u,
		index:     index,
		name:      name,
		destPath:  destPath,
		size:      size,
		startTime: time.Now(),
		lastTick:  time.Now(),
	}

	if u.isTerminal {
		fb.bar = u.progress.New(size,
			mpb.BarStyle().
				Lbound("[").
				Filler("█").
				Tip("█").
				Padding("░").
				Rbound("]"),
			mpb.PrependDecorators(
				decor.Name(fmt.Sprintf("[%d/%d] %s (%.1f MiB) → %s",
					index, u.totalFiles, name,
					models.SizeMB(size), destPath), decor.WCSyncSpace),
			),
			mpb.AppendDecorators(
				decor.CountersKibiByte("% .1f / % .1f", decor.WCSyncSpace),
				decor.Name("  "),
				decor.Percentage(decor.WCSyncSpace),
				decor.Name("  "),
				decor.EwmaSpeed(decor.SizeB1024(0), "% .1f", 30, decor.WCSyncSpace),
			),
			mpb.BarRemoveOnComplete(),
		)
	} else {
		fmt.Fprintf(os.Stderr, "Uploading [%d/%d]: %s (%.1f MiB) → %s\n",
			index, u.totalFiles, name, models.SizeMB(size), destPath)
	}

	return fb
}

// Update advances the bar to the cumulative number of bytes written.
// Updates are throttled so the EWMA speed stays smooth.
func (f *FileBar) Update(written int64) {
	if f.bar == nil {
		f.written = written
		return
	}

	now := time.Now()
	elapsed := now.Sub(f.lastTick)
	if elapsed < 300*time.Millisecond {
		return
	}

	delta := written - f.written
	if delta < 0 {
		delta = 0
	}
	f.bar.EwmaIncrBy(int(delta), elapsed)
	f.written = written
	f.lastTick = now
}

// Complete finishes the bar and prints a one-line result. On failure the
// bar stays visible so the user sees which file stalled.
func (f *FileBar) Complete(message string, ok bool) {
	elapsed := time.Since(f.startTime)

	var msg string
	if ok {
		if f.bar != nil {
			f.bar.SetCurrent(f.size)
			f.bar.SetTotal(f.size, true)
		}
		msg = fmt.Sprintf("✓ %s → %s (%.1f MiB, %s)\n",
			f.name, f.destPath, models.SizeMB(f.size), elapsed.Round(time.Second))
	} else {
		if f.bar != nil {
			f.bar.Abort(false)
		}
		msg = fmt.Sprintf("✗ %s → %s: %s\n", f.name, f.destPath, message)
	}

	if f.ui.isTerminal {
		f.ui.progress.Write([]byte(msg))
	} else {
		fmt.Fprint(os.Stderr, msg)
	}

	atomic.AddInt32(&f.ui.completed, 1)
}

// Wait blocks until every bar has finished rendering.
func (u *UploadUI) Wait() {
	if u.progress != nil {
		u.progress.Wait()
	}
}

// LogWriter returns a writer that prints above active progress bars.
func (u *UploadUI) LogWriter() io.Writer {
	if u.isTerminal && u.progress != nil {
		return u.progress
	}
	return os.Stderr
}

// IsTerminal reports whether bars are actually rendered.
func (u *UploadUI) IsTerminal() bool {
	return u.isTerminal
}
