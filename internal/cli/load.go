package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docstage/internal/adapter/fs"
	"docstage/internal/domain"
	"docstage/internal/usecase"
)

var (
	loadMethod   string
	loadParams   []string
	loadExcludes []string
)

var loadCmd = &cobra.Command{
	Use:   "load <file|dir|glob>...",
	Short: "Load files into page maps",
	Long: `Upload files to the processing service and load them into page maps.
Directories and doublestar patterns are expanded; files no loading method
accepts are skipped. The method defaults to the configured PDF method for PDFs
and to the only method of every other file type.

Examples:
  docstage load report.pdf
  docstage load report.pdf --method unstructured --param strategy=hi_res
  docstage load "docs/**/*.md" --exclude "**/drafts/**"
  docstage load notes.txt --param preserve_newlines=false`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().StringVarP(&loadMethod, "method", "m", "", "loading method")
	loadCmd.Flags().StringArrayVarP(&loadParams, "param", "p", nil, "method parameter name=value (repeatable)")
	loadCmd.Flags().StringArrayVar(&loadExcludes, "exclude", nil, "doublestar pattern of files to skip (repeatable)")
}

func runLoad(cmd *cobra.Command, args []string) error {
	params, err := parseParams(loadParams)
	if err != nil {
		return err
	}

	files, err := fs.NewResolver(loadExcludes).Resolve(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no loadable files matched %v", args)
	}

	wb, err := newWorkbench()
	if err != nil {
		return err
	}
	ctx := requestContext(cmd)
	out := cmd.OutOrStdout()

	if len(files) == 1 {
		err := withSpinner(cmd.ErrOrStderr(), "Loading "+files[0].Path, func() error {
			return loadOne(ctx, wb.Load, files[0].Path, params)
		})
		if err != nil {
			return err
		}
		return printResult(out, wb.Load.Snapshot().Result, cfg.Output.PreviewChars)
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Loading[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)

	var failures []string
	for _, f := range files {
		bar.Describe(fmt.Sprintf("[cyan]Loading[reset] %s", domain.ArtifactName(f.Path)))
		if err := loadOne(ctx, wb.Load, f.Path, params); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", f.Path, err))
		}
		_ = bar.Add(1)
	}

	if err := printSummaries(out, domain.KindLoaded, wb.Load.Snapshot().Documents); err != nil {
		return err
	}
	if len(failures) > 0 {
		fmt.Fprintf(out, "\n%s\n", red("Failed:"))
		for _, f := range failures {
			fmt.Fprintf(out, "  - %s\n", f)
		}
		return fmt.Errorf("%d of %d files failed to load", len(failures), len(files))
	}
	return nil
}

func loadOne(ctx context.Context, c *usecase.LoadController, path string, params map[string]string) error {
	upload, err := fs.ReadUpload(path)
	if err != nil {
		return err
	}
	if err := c.SelectDocument(upload); err != nil {
		return err
	}
	if loadMethod != "" {
		if err := c.SelectMethod(loadMethod); err != nil {
			return err
		}
	}
	if len(params) > 0 {
		if err := c.SetParams(params); err != nil {
			return err
		}
	}
	return c.Submit(ctx)
}
