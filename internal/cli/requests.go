package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/practica/practica-link/internal/models"
	"github.com/practica/practica-link/internal/progress"
	"github.com/practica/practica-link/internal/session"
	"github.com/practica/practica-link/internal/uploader"
)

func newRequestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Work with pending document requests",
	}

	cmd.AddCommand(newRequestsListCmd())
	cmd.AddCommand(newRequestsSubmitCmd())
	return cmd
}

func newRequestsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List document requests from your accountant",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newAPIClient()
			if err != nil {
				return err
			}

			requests, err := client.ListDocumentRequests(GetContext())
			if err != nil {
				return err
			}
			if len(requests) == 0 {
				fmt.Println("No document requests.")
				return nil
			}

			fmt.Printf("%-12s %-10s %s\n", "ID", "STATUS", "TITLE")
			for _, r := range requests {
				fmt.Printf("%-12s %-10s %s\n", r.ID, r.Status, r.Title)
			}
			return nil
		},
	}
}

func newRequestsSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit [request-id] [files...]",
		Short: "Submit files against a document request",
		Long: `Upload one or more files in response to a document request. The
request determines where the files land, so no folder is chosen.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := newAPIClient()
			if err != nil {
				return err
			}
			log := GetLogger()
			requestID := args[0]

			sources := make([]models.FileSource, 0, len(args)-1)
			for _, path := range args[1:] {
				src, err := models.NewLocalFile(path)
				if err != nil {
					return fmt.Errorf("cannot submit %s: %w", path, err)
				}
				sources = append(sources, src)
			}

			sess := session.NewSession(nil, log)
			defer sess.Close()
			sess.AddFiles(sources...)

			// The request is the destination; mark every record with it
			// so validation passes without a folder pick.
			dest := "request:" + requestID
			for i := range sources {
				if err := sess.AssignDestination(i, dest, "request "+requestID); err != nil {
					return err
				}
			}
			if err := sess.BeginConfigure(); err != nil {
				return err
			}

			exec := uploader.NewRequestExecutor(client, requestID, cfg.UploadTimeout(), log)
			ui := progress.NewUploadUI(len(sources))

			err = sess.UploadAll(GetContext(), &requestUIExecutor{exec: exec, ui: ui})
			ui.Wait()
			if err != nil {
				printFailures(sess)
				return err
			}

			fmt.Printf("Submitted %d file(s) to request %s\n", len(sources), requestID)
			return nil
		},
	}
}

// requestUIExecutor mirrors uiExecutor for request submissions.
type requestUIExecutor struct {
	exec *uploader.RequestExecutor
	ui   *progress.UploadUI
}

func (w *requestUIExecutor) Upload(ctx context.Context, src models.FileSource, folderID string) models.UploadOutcome {
	bar := w.ui.AddFileBar(src.Name(), "request", src.Size())
	w.exec.Progress = func(_ models.FileSource, written int64) {
		bar.Update(written)
	}

	outcome := w.exec.Upload(ctx, src, folderID)
	bar.Complete(outcome.Message, outcome.OK)
	return outcome
}
