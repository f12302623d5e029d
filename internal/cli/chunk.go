package cli

import (
	"github.com/spf13/cobra"
)

var (
	chunkMethod string
	chunkParams []string
)

var chunkCmd = &cobra.Command{
	Use:   "chunk <loaded-document>",
	Short: "Chunk a loaded document",
	Long: `Chunk a document previously produced by "docstage load". The document is
named by its artifact name as "docstage docs list loaded" shows it; "report"
and "report.json" select the same loaded document.

Separator parameters take a preset value or any custom string, or the
explicit form name.preset=custom plus name.custom=<value>. Use \n for line
breaks and | between sentence separator alternatives.

Examples:
  docstage chunk report --method fixed_size -p chunk_size=500 -p chunk_overlap=50
  docstage chunk report --method by_paragraphs -p 'paragraph_separator=\n---\n'
  docstage chunk report --method by_sentences -p 'sentence_separators=.|!|?'`,
	Args: cobra.ExactArgs(1),
	RunE: runChunk,
}

func init() {
	rootCmd.AddCommand(chunkCmd)
	chunkCmd.Flags().StringVarP(&chunkMethod, "method", "m", "", "chunking method (default from config)")
	chunkCmd.Flags().StringArrayVarP(&chunkParams, "param", "p", nil, "method parameter name=value (repeatable)")
}

func runChunk(cmd *cobra.Command, args []string) error {
	params, err := parseParams(chunkParams)
	if err != nil {
		return err
	}

	wb, err := newWorkbench()
	if err != nil {
		return err
	}
	c := wb.Chunk

	if err := c.SelectDocument(args[0]); err != nil {
		return err
	}
	if chunkMethod != "" {
		if err := c.SelectMethod(chunkMethod); err != nil {
			return err
		}
	}
	if len(params) > 0 {
		if err := c.SetParams(params); err != nil {
			return err
		}
	}
	ctx := requestContext(cmd)
	err = withSpinner(cmd.ErrOrStderr(), "Chunking "+args[0], func() error {
		return c.Submit(ctx)
	})
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), c.Snapshot().Result, cfg.Output.PreviewChars)
}
