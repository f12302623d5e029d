package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/tidwall/pretty"

	"docstage/internal/domain"
	"docstage/internal/preview"
	"docstage/internal/usecase"
)

var (
	bold    = color.New(color.Bold).SprintFunc()
	faint   = color.New(color.Faint).SprintFunc()
	cyan    = color.New(color.FgCyan).SprintFunc()
	green   = color.New(color.FgGreen).SprintFunc()
	yellow  = color.New(color.FgYellow).SprintFunc()
	red     = color.New(color.FgRed, color.Bold).SprintFunc()
	magenta = color.New(color.FgMagenta).SprintFunc()
)

func jsonOutput() bool {
	return cfg != nil && cfg.Output.Format == "json"
}

// printJSON writes v indented, colored when the terminal supports it.
func printJSON(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	out := pretty.Pretty(raw)
	if !color.NoColor {
		out = pretty.Color(out, pretty.TerminalStyle)
	}
	_, err = w.Write(out)
	return err
}

// printResult shows a stage result. Bodies are cut to limit runes unless
// limit is zero or negative.
func printResult(w io.Writer, r *domain.ProcessingResult, limit int) error {
	p := preview.Render(r)
	if jsonOutput() {
		return printJSON(w, p)
	}
	printPreview(w, p, limit)
	return nil
}

func printPreview(w io.Writer, p preview.Preview, limit int) {
	for _, f := range p.Header {
		value := f.Value
		if value == preview.NotAvailable {
			value = faint(value)
		}
		fmt.Fprintf(w, "%-16s %s\n", bold(f.Name+":"), value)
	}
	fmt.Fprintln(w)

	if p.Empty {
		fmt.Fprintln(w, yellow(p.Message))
		return
	}
	for _, row := range p.Rows {
		title := ""
		if row.Title != "" {
			title = " " + bold(row.Title)
		}
		fmt.Fprintf(w, "%s%s\n", cyan("["+row.Label+"]"), title)
		meta := make([]string, 0, len(row.Meta))
		for _, m := range row.Meta {
			meta = append(meta, m.Name+"="+m.Value)
		}
		fmt.Fprintln(w, faint(strings.Join(meta, "  ")))
		fmt.Fprintln(w, truncate(row.Body, limit))
		fmt.Fprintln(w)
	}
}

func printSummaries(w io.Writer, kind domain.Kind, docs []domain.DocumentSummary) error {
	if jsonOutput() {
		return printJSON(w, docs)
	}
	if len(docs) == 0 {
		fmt.Fprintf(w, "No %s documents.\n", kind)
		return nil
	}
	fmt.Fprintf(w, "%s (%d)\n", bold(string(kind)+" documents"), len(docs))
	for _, d := range docs {
		md := d.Metadata
		method := md.LoadingMethod
		switch kind {
		case domain.KindChunked:
			method = firstNonEmpty(md.ChunkingMethod, md.LoadingMethod)
		case domain.KindParsed:
			method = md.ParsingMethod
		}
		fmt.Fprintf(w, "  %-28s %-14s pages=%s chunks=%s %s\n",
			green(d.Name), magenta(orNA(method)), optInt(md.TotalPages), optInt(md.TotalChunks), faint(md.Timestamp))
	}
	return nil
}

func printSnapshot(w io.Writer, s usecase.Snapshot) {
	state := s.State.String()
	switch s.State {
	case usecase.Ready:
		state = green(state)
	case usecase.Failed:
		state = red(state)
	case usecase.Submitting:
		state = yellow(state)
	}
	fmt.Fprintf(w, "%s %s  document=%s  method=%s\n",
		bold("["+string(s.Stage)+"]"), state, orNA(s.Document), orNA(s.Config.Method()))

	if !s.Config.IsZero() {
		for _, p := range s.Config.Schema().Params {
			fmt.Fprintf(w, "  %-22s %v\n", p.Name, displayValue(s.Config.Values()[p.Name]))
		}
	}
	if s.Error != "" {
		fmt.Fprintln(w, red("error: ")+s.Error)
	}
	if s.Notice != "" {
		fmt.Fprintln(w, yellow("notice: ")+s.Notice)
	}
}

// displayValue quotes separator values so whitespace stays visible.
func displayValue(v any) string {
	if m, ok := v.(map[string]any); ok {
		return fmt.Sprintf("preset=%q custom=%q", m["preset"], m["custom"])
	}
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprint(v)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + faint("…")
}

func optInt(v *int) string {
	if v == nil {
		return preview.NotAvailable
	}
	return fmt.Sprint(*v)
}

func orNA(s string) string {
	if s == "" {
		return preview.NotAvailable
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
