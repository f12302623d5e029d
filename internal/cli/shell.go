package cli

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/spf13/cobra"

	"docstage/internal/adapter/fs"
	"docstage/internal/strategy"
	"docstage/internal/usecase"
)

//go:embed templates/*.txt
var shellTemplates embed.FS

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Work on the three stages interactively",
	Long: `Start an interactive session holding one controller per stage. Results,
selections and parameters of a stage survive switching to another stage.

Example:
  docstage shell
  load> select report.pdf
  load> submit
  load> stage chunk
  chunk> select report
  chunk> set chunk_size=500
  chunk> submit`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

type shell struct {
	cmd     *cobra.Command
	out     io.Writer
	wb      *usecase.Workbench
	current strategy.Stage
	help    *template.Template
}

func runShell(cmd *cobra.Command, args []string) error {
	wb, err := newWorkbench()
	if err != nil {
		return err
	}
	help, err := template.New("shell_help.txt").
		Funcs(template.FuncMap{"join": joinStrings}).
		ParseFS(shellTemplates, "templates/shell_help.txt")
	if err != nil {
		return fmt.Errorf("failed to parse help template: %w", err)
	}

	sh := &shell{cmd: cmd, out: cmd.OutOrStdout(), wb: wb, current: strategy.StageLoad, help: help}
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(sh.out, cyan(string(sh.current)+"> "))
		if !scanner.Scan() {
			fmt.Fprintln(sh.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		if err := sh.exec(line); err != nil {
			fmt.Fprintln(sh.out, red("error: ")+err.Error())
		}
	}
}

func (sh *shell) controller() usecase.Controller {
	return sh.wb.Controller(sh.current)
}

func (sh *shell) exec(line string) error {
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	ctx := requestContext(sh.cmd)

	switch name {
	case "help":
		return sh.printHelp()
	case "stage":
		stage, err := strategy.ParseStage(rest)
		if err != nil {
			return err
		}
		sh.current = stage
		printSnapshot(sh.out, sh.controller().Snapshot())
		return nil
	case "select":
		if rest == "" {
			return fmt.Errorf("select needs a file or document name")
		}
		return sh.selectInput(rest)
	case "method":
		return sh.controller().SelectMethod(rest)
	case "set":
		params, err := parseParams(strings.Fields(rest))
		if err != nil {
			return err
		}
		return sh.controller().SetParams(params)
	case "loading":
		if sh.current != strategy.StageParse {
			return fmt.Errorf("loading applies to the parse stage only")
		}
		return sh.wb.Parse.SelectLoadingMethod(rest)
	case "show":
		printSnapshot(sh.out, sh.controller().Snapshot())
		return nil
	case "submit":
		c := sh.controller()
		err := withSpinner(sh.cmd.ErrOrStderr(), "Submitting "+string(sh.current), func() error {
			return c.Submit(ctx)
		})
		if err != nil {
			if usecase.IsStale(err) {
				return nil
			}
			printSnapshot(sh.out, c.Snapshot())
			return err
		}
		return printResult(sh.out, c.Snapshot().Result, cfg.Output.PreviewChars)
	case "list":
		c := sh.controller()
		if err := c.Refresh(ctx); err != nil {
			return err
		}
		return printSummaries(sh.out, sh.current.Output(), c.Snapshot().Documents)
	case "view":
		c := sh.controller()
		if err := c.View(ctx, rest); err != nil {
			return err
		}
		return printResult(sh.out, c.Snapshot().Result, cfg.Output.PreviewChars)
	case "delete":
		c := sh.controller()
		if err := c.Delete(ctx, rest); err != nil {
			return err
		}
		return printSummaries(sh.out, sh.current.Output(), c.Snapshot().Documents)
	}
	return fmt.Errorf("unknown command %q, try help", name)
}

func (sh *shell) selectInput(arg string) error {
	switch sh.current {
	case strategy.StageChunk:
		return sh.wb.Chunk.SelectDocument(arg)
	case strategy.StageLoad:
		upload, err := fs.ReadUpload(arg)
		if err != nil {
			return err
		}
		if err := sh.wb.Load.SelectDocument(upload); err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "%s %s\n", faint("methods:"), strings.Join(sh.wb.Load.Candidates(), ", "))
		return nil
	default:
		upload, err := fs.ReadUpload(arg)
		if err != nil {
			return err
		}
		return sh.wb.Parse.SelectDocument(upload)
	}
}

func (sh *shell) printHelp() error {
	stages := make([]string, 0, len(strategy.Stages))
	for _, s := range strategy.Stages {
		stages = append(stages, string(s))
	}
	return sh.help.Execute(sh.out, map[string]any{
		"Stage":   sh.current,
		"Stages":  stages,
		"Methods": strategy.Methods(sh.current),
	})
}

func joinStrings(items []string, sep string) string {
	return strings.Join(items, sep)
}
