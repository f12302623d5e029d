package cli

import (
	"github.com/spf13/cobra"

	"docstage/internal/adapter/fs"
)

var (
	parseMethod        string
	parseLoadingMethod string
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a PDF or Markdown file into sections",
	Long: `Upload a file and parse it into typed sections. PDFs support all_text,
by_pages, by_titles and text_and_tables; Markdown supports all_text,
by_sections and text_and_tables.

Examples:
  docstage parse report.pdf --method by_titles --loading-method pdfplumber
  docstage parse guide.md --method by_sections`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseMethod, "method", "m", "", "parsing option (default from config)")
	parseCmd.Flags().StringVarP(&parseLoadingMethod, "loading-method", "l", "", "how the service reads the file first")
}

func runParse(cmd *cobra.Command, args []string) error {
	upload, err := fs.ReadUpload(args[0])
	if err != nil {
		return err
	}

	wb, err := newWorkbench()
	if err != nil {
		return err
	}
	c := wb.Parse

	if err := c.SelectDocument(upload); err != nil {
		return err
	}
	if parseMethod != "" {
		if err := c.SelectMethod(parseMethod); err != nil {
			return err
		}
	}
	if parseLoadingMethod != "" {
		if err := c.SelectLoadingMethod(parseLoadingMethod); err != nil {
			return err
		}
	}
	ctx := requestContext(cmd)
	err = withSpinner(cmd.ErrOrStderr(), "Parsing "+args[0], func() error {
		return c.Submit(ctx)
	})
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), c.Snapshot().Result, cfg.Output.PreviewChars)
}
