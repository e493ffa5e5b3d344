package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/practica/practica-link/internal/events"
	"github.com/practica/practica-link/internal/folders"
	"github.com/practica/practica-link/internal/models"
	"github.com/practica/practica-link/internal/progress"
	"github.com/practica/practica-link/internal/session"
	"github.com/practica/practica-link/internal/uploader"
)

func newUploadCmd() *cobra.Command {
	var folderID string

	cmd := &cobra.Command{
		Use:   "upload [files...]",
		Short: "Upload documents to a Practica folder",
		Long: `Upload one or more local files into a folder on the Practica platform.

With --folder the files go straight to that folder id. Without it, an
interactive folder picker opens first. Failed files do not stop the
batch; after a partial failure you can retry just the failed files.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(GetContext(), args, folderID)
		},
	}

	cmd.Flags().StringVarP(&folderID, "folder", "f", "", "Destination folder id (skips the interactive picker)")
	return cmd
}

func runUpload(ctx context.Context, paths []string, folderID string) error {
	client, cfg, err := newAPIClient()
	if err != nil {
		return err
	}
	log := GetLogger()

	sources := make([]models.FileSource, 0, len(paths))
	for _, path := range paths {
		src, err := models.NewLocalFile(path)
		if err != nil {
			return fmt.Errorf("cannot upload %s: %w", path, err)
		}
		sources = append(sources, src)
	}

	bus := events.NewEventBus(0)
	defer bus.Close()

	sess := session.NewSession(bus, log)
	defer sess.Close()
	sess.AddFiles(sources...)

	browser := folders.NewBrowser(client, log)
	destPath := folderID
	if folderID == "" {
		folderID, destPath, err = promptDestination(ctx, browser)
		if err != nil {
			return err
		}
	} else if err := browser.LoadRoots(ctx); err == nil {
		// Best-effort breadcrumb; the raw id still works when the
		// folder sits deeper than the loaded tree.
		if path, err := browser.Path(folderID); err == nil {
			destPath = path
		}
	}

	for i := range sources {
		if err := sess.AssignDestination(i, folderID, destPath); err != nil {
			return err
		}
	}
	if err := sess.BeginConfigure(); err != nil {
		return err
	}

	exec := uploader.NewExecutor(client, cfg.UploadTimeout(), log)
	ui := progress.NewUploadUI(len(sources))
	uiExec := &uiExecutor{
		exec:      exec,
		ui:        ui,
		destPaths: map[string]string{folderID: destPath},
	}

	err = sess.UploadAll(ctx, uiExec)
	ui.Wait()

	for errors.Is(err, session.ErrUploadsFailed) {
		printFailures(sess)
		if !confirmRetry() {
			break
		}
		retryUI := progress.NewUploadUI(countFailed(sess))
		uiExec.ui = retryUI
		err = sess.Retry(ctx, uiExec)
		retryUI.Wait()
	}

	if err != nil {
		return err
	}
	fmt.Printf("Uploaded %d file(s) to %s\n", len(sources), destPath)
	return nil
}

// uiExecutor decorates the transfer executor with a progress bar per
// file. Uploads run one at a time, so the progress callback swap is safe.
type uiExecutor struct {
	exec *uploader.Executor
	ui   *progress.UploadUI

	destPaths map[string]string
}

func (w *uiExecutor) Upload(ctx context.Context, src models.FileSource, folderID string) models.UploadOutcome {
	dest := folderID
	if p, ok := w.destPaths[folderID]; ok {
		dest = p
	}

	bar := w.ui.AddFileBar(src.Name(), dest, src.Size())
	w.exec.Progress = func(_ models.FileSource, written int64) {
		bar.Update(written)
	}

	outcome := w.exec.Upload(ctx, src, folderID)
	bar.Complete(outcome.Message, outcome.OK)
	return outcome
}

func printFailures(sess *session.Session) {
	fmt.Fprintln(os.Stderr, sess.ErrorBanner())
	for _, rec := range sess.Records() {
		if rec.Status == session.StatusError {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", rec.Source.Name(), rec.Message)
		}
	}
}

func countFailed(sess *session.Session) int {
	n := 0
	for _, rec := range sess.Records() {
		if rec.Status == session.StatusError {
			n++
		}
	}
	return n
}

func confirmRetry() bool {
	fmt.Fprint(os.Stderr, "Retry failed uploads? [y/N]: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}
