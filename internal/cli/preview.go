package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/practica/practica-link/internal/models"
	"github.com/practica/practica-link/internal/preview"
)

func newPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview [file]",
		Short: "Show how a file will be previewed before uploading",
		Long: `Inspect a local file the way the platform will present it. PDFs and
images are identified by type; spreadsheets print the first rows of the
first sheet; anything else shows a generic summary.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := models.NewLocalFile(args[0])
			if err != nil {
				return err
			}

			handle := preview.NewService(GetLogger()).Derive(src)
			defer handle.Close()

			printPreview(handle.Preview())
			return nil
		},
	}
}

func printPreview(p *preview.Preview) {
	fmt.Printf("%s  (%s, %.1f MiB)\n", p.FileName, p.ContentType, models.SizeMB(p.SizeBytes))

	switch p.Kind {
	case preview.KindPDF:
		fmt.Println("Preview: PDF document")
	case preview.KindImage:
		fmt.Println("Preview: image")
	case preview.KindSpreadsheet:
		printGrid(p.Grid)
	default:
		fmt.Println("Preview: not available, file will be offered for download")
	}
}

func printGrid(g *preview.Grid) {
	fmt.Printf("Preview: spreadsheet, sheet %q\n\n", g.SheetName)
	for _, row := range g.Rows {
		fmt.Println(strings.Join(row, "\t"))
	}
	if g.Truncated {
		fmt.Printf("\n(showing first %d of %d rows)\n", len(g.Rows), g.TotalRows)
	}
}
