package devserver

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"docstage/internal/adapter/chunker"
	"docstage/internal/strategy"
)

// pageBreak separates pages in the text of uploaded PDFs. The reference
// server does not decode PDF streams; uploads are treated as extracted text.
const pageBreak = "\f"

type textOptions struct {
	Encoding         string `json:"encoding"`
	PreserveNewlines *bool  `json:"preserve_newlines"`
}

type csvOptions struct {
	Delimiter    string `json:"delimiter"`
	HasHeader    any    `json:"hasHeader"`
	SourceColumn string `json:"sourceColumn"`
}

type unstructuredOptions struct {
	MaxCharacters int `json:"maxCharacters"`
	Overlap       int `json:"overlap"`
}

// loadForm is the method specific part of a load or parse request.
type loadForm struct {
	method          string
	textConfig      string
	csvConfig       string
	chunkingOptions string
}

// extracted is the outcome of running a loading method over an upload.
type extracted struct {
	pages      []chunker.Page
	totalPages int
}

func extract(data []byte, form loadForm) (extracted, error) {
	text := strings.ToValidUTF8(string(data), "�")

	switch form.method {
	case strategy.LoadText:
		opts := textOptions{}
		if form.textConfig != "" {
			if err := json.Unmarshal([]byte(form.textConfig), &opts); err != nil {
				return extracted{}, fmt.Errorf("invalid text_config: %w", err)
			}
		}
		if opts.PreserveNewlines != nil && !*opts.PreserveNewlines {
			text = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(text)
		}
		return extracted{pages: []chunker.Page{{Number: 1, Text: text}}, totalPages: 1}, nil

	case strategy.LoadMarkdown:
		return extracted{pages: []chunker.Page{{Number: 1, Text: text}}, totalPages: 1}, nil

	case strategy.LoadCSV:
		opts := csvOptions{}
		if form.csvConfig != "" {
			if err := json.Unmarshal([]byte(form.csvConfig), &opts); err != nil {
				return extracted{}, fmt.Errorf("invalid csv_config: %w", err)
			}
		}
		rows, err := csvRows(text, opts)
		if err != nil {
			return extracted{}, err
		}
		pages := make([]chunker.Page, 0, len(rows))
		for _, row := range rows {
			pages = append(pages, chunker.Page{Number: 1, Text: row})
		}
		return extracted{pages: pages, totalPages: 1}, nil

	case strategy.LoadPyMuPDF, strategy.LoadPyPDF, strategy.LoadPDFPlumber:
		return pdfPages(text), nil

	case strategy.LoadUnstructured:
		opts := unstructuredOptions{MaxCharacters: 4000, Overlap: 200}
		if form.chunkingOptions != "" {
			if err := json.Unmarshal([]byte(form.chunkingOptions), &opts); err != nil {
				return extracted{}, fmt.Errorf("invalid chunking_options: %w", err)
			}
		}
		if opts.MaxCharacters <= 0 || opts.Overlap < 0 || opts.Overlap >= opts.MaxCharacters {
			return extracted{}, fmt.Errorf("invalid chunking_options: overlap %d must be smaller than maxCharacters %d",
				opts.Overlap, opts.MaxCharacters)
		}
		ex := pdfPages(text)
		splitter := chunker.RecursiveSplitter{
			ChunkSize:    opts.MaxCharacters,
			ChunkOverlap: opts.Overlap,
			Separators:   []string{"\n\n", "\n", " ", ""},
		}
		var elements []chunker.Page
		for _, p := range ex.pages {
			for _, part := range splitter.Split(p.Text) {
				elements = append(elements, chunker.Page{Number: p.Number, Text: part})
			}
		}
		ex.pages = elements
		return ex, nil
	}
	return extracted{}, fmt.Errorf("unsupported loading method: %s", form.method)
}

// pdfPages numbers pages by position and skips the empty ones.
func pdfPages(text string) extracted {
	raw := strings.Split(text, pageBreak)
	var pages []chunker.Page
	for i, p := range raw {
		if strings.TrimSpace(p) == "" {
			continue
		}
		pages = append(pages, chunker.Page{Number: i + 1, Text: strings.TrimSpace(p)})
	}
	return extracted{pages: pages, totalPages: len(raw)}
}

// csvRows turns every data row into one "column: value" block. An empty
// delimiter or header setting means detect it from the first line.
func csvRows(text string, opts csvOptions) ([]string, error) {
	firstLine := text
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		firstLine = text[:i]
	}

	delimiter := opts.Delimiter
	if delimiter == "" {
		delimiter = sniffDelimiter(firstLine)
	}
	if delimiter == `\t` {
		delimiter = "\t"
	}
	runes := []rune(delimiter)
	if len(runes) != 1 {
		return nil, fmt.Errorf("delimiter must be a single character, got %q", delimiter)
	}

	r := csv.NewReader(bytes.NewBufferString(text))
	r.Comma = runes[0]
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, nil
	}

	hasHeader, set := headerSetting(opts.HasHeader)
	if !set {
		hasHeader = looksLikeHeader(records)
	}

	var header []string
	if hasHeader {
		header, records = records[0], records[1:]
	}

	source := -1
	for i, h := range header {
		if opts.SourceColumn != "" && h == opts.SourceColumn {
			source = i
		}
	}

	rows := make([]string, 0, len(records))
	for _, rec := range records {
		if source >= 0 && source < len(rec) {
			rows = append(rows, rec[source])
			continue
		}
		lines := make([]string, 0, len(rec))
		for i, v := range rec {
			if i < len(header) {
				lines = append(lines, header[i]+": "+v)
			} else {
				lines = append(lines, v)
			}
		}
		rows = append(rows, strings.Join(lines, "\n"))
	}
	return rows, nil
}

func sniffDelimiter(line string) string {
	best, bestCount := ",", 0
	for _, d := range []string{",", ";", "\t", "|"} {
		if n := strings.Count(line, d); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func headerSetting(v any) (value, set bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(t) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

// looksLikeHeader assumes a header when the first row has no numeric field
// while the second row has one.
func looksLikeHeader(records [][]string) bool {
	if len(records) < 2 {
		return false
	}
	numeric := func(row []string) bool {
		for _, f := range row {
			if _, err := fmt.Sscanf(strings.TrimSpace(f), "%g", new(float64)); err == nil {
				return true
			}
		}
		return false
	}
	return !numeric(records[0]) && numeric(records[1])
}
