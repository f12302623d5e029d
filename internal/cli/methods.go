package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"docstage/internal/strategy"
)

var methodsCmd = &cobra.Command{
	Use:   "methods [stage [method]]",
	Short: "Show stages, methods and their parameters",
	Long: `Show the methods of every stage, or the parameters of one method with
their defaults and ranges. Values outside a range are clamped when a request
is sent.

Examples:
  docstage methods
  docstage methods chunk
  docstage methods chunk semantic`,
	Args: cobra.MaximumNArgs(2),
	RunE: runMethods,
}

func init() {
	rootCmd.AddCommand(methodsCmd)
}

func runMethods(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	stages := strategy.Stages
	if len(args) > 0 {
		stage, err := strategy.ParseStage(args[0])
		if err != nil {
			return err
		}
		stages = []strategy.Stage{stage}
	}

	if len(args) == 2 {
		schema, err := strategy.SchemaFor(stages[0], args[1])
		if err != nil {
			return err
		}
		if jsonOutput() {
			return printJSON(out, strategy.MustNew(stages[0], args[1]).Values())
		}
		printSchema(out, schema)
		return nil
	}

	for _, stage := range stages {
		fmt.Fprintln(out, bold(string(stage)))
		for _, m := range strategy.Methods(stage) {
			schema, _ := strategy.SchemaFor(stage, m)
			names := make([]string, 0, len(schema.Params))
			for _, p := range schema.Params {
				names = append(names, p.Name)
			}
			fmt.Fprintf(out, "  %-16s %s\n", green(m), faint(strings.Join(names, ", ")))
		}
	}
	return nil
}

func printSchema(w io.Writer, s strategy.Schema) {
	fmt.Fprintf(w, "%s %s\n", bold(string(s.Stage)), green(s.Method))
	if len(s.Params) == 0 {
		fmt.Fprintln(w, faint("  no parameters"))
		return
	}
	for _, p := range s.Params {
		fmt.Fprintf(w, "  %-22s %-20s default=%s", cyan(p.Name), p.Kind, displayValue(defaultValue(p.Default)))
		if p.HasRange {
			fmt.Fprintf(w, " range=[%g, %g]", p.Min, p.Max)
		}
		if len(p.Choices) > 0 {
			fmt.Fprintf(w, " choices=%s", strings.Join(p.Choices, "|"))
		}
		fmt.Fprintf(w, "\n  %-22s %s\n", "", faint(p.Help))
	}
	if s.Stage == strategy.StageChunk {
		printPresets(w, s)
	}
}

func defaultValue(v any) any {
	switch d := v.(type) {
	case strategy.ParagraphSeparator:
		return map[string]any{"preset": d.Preset, "custom": d.Custom}
	case strategy.SentenceSeparators:
		return map[string]any{"preset": d.Preset, "custom": d.Custom}
	}
	return v
}

func printPresets(w io.Writer, s strategy.Schema) {
	if _, ok := s.Param("paragraph_separator"); ok {
		fmt.Fprintln(w, bold("paragraph separator presets"))
		for _, p := range strategy.ParagraphPresets {
			fmt.Fprintf(w, "  %-32s %q\n", p.Label, p.Value)
		}
	}
	if _, ok := s.Param("sentence_separators"); ok {
		fmt.Fprintln(w, bold("sentence separator presets"))
		for _, p := range strategy.SentencePresets {
			fmt.Fprintf(w, "  %-48s %q\n", p.Label, p.Value)
		}
	}
}
