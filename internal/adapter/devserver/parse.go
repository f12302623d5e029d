package devserver

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"docstage/internal/adapter/chunker"
	"docstage/internal/domain"
	"docstage/internal/strategy"
)

var headingPattern = regexp.MustCompile(`^\s*(#{1,6})[\s\x{3000}]+(.+)$`)

// maxTitleLength bounds the lines by_titles treats as headings.
const maxTitleLength = 60

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	up, err := readUpload(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	option := r.FormValue("parsing_option")
	fileType := strategy.FileType(up.filename)
	if ft := r.FormValue("file_type"); ft != "" && ft != fileType {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("file_type %s does not match %s", ft, up.filename))
		return
	}

	methods, err := strategy.ParseMethodsForFile(up.filename)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !contains(methods, option) {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("unsupported parsing option %q for %s", option, fileType))
		return
	}
	if up.form.method == "" {
		up.form.method = strategy.LoadMarkdown
		if fileType == "pdf" {
			up.form.method = strategy.LoadPyMuPDF
		}
	}
	if !strategy.SupportsLoadMethod(up.filename, up.form.method) {
		s.respondError(w, http.StatusBadRequest,
			fmt.Sprintf("loading method %s cannot load %s", up.form.method, up.filename))
		return
	}

	ex, err := extract(up.data, up.form)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc := parsedDoc{Metadata: parsedMeta{
		Filename:      up.filename,
		FileType:      fileType,
		ParsingMethod: option,
		Timestamp:     s.timestamp(),
	}}
	if fileType == "pdf" {
		doc.Content = parsePDF(option, ex.pages)
		doc.Metadata.TotalPages = domain.IntPtr(ex.totalPages)
	} else {
		doc.Content = parseMarkdown(option, joinPages(ex.pages))
		doc.Metadata.TotalSections = domain.IntPtr(len(doc.Content))
	}

	name := domain.ArtifactName(up.filename)
	if err := s.save(domain.KindParsed, name, doc); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.log.Info("document parsed",
		zap.String("document", name),
		zap.String("option", option),
		zap.Int("items", len(doc.Content)))
	s.respondJSON(w, http.StatusOK, map[string]any{"parsed_content": doc})
}

func parsePDF(option string, pages []chunker.Page) []parsedItem {
	items := []parsedItem{}
	switch option {
	case strategy.ParseAllText:
		for _, p := range pages {
			items = append(items, parsedItem{Type: "Text", Content: p.Text, Page: p.Number})
		}
	case strategy.ParseByPages:
		for _, p := range pages {
			items = append(items, parsedItem{Type: "Page", Content: p.Text, Page: p.Number})
		}
	case strategy.ParseByTitles:
		return byTitles(pages)
	case strategy.ParseTextAndTables:
		for _, p := range pages {
			kind := "text"
			if strings.ContainsAny(p.Text, "|\t") {
				kind = "table"
			}
			items = append(items, parsedItem{Type: kind, Content: p.Text, Page: p.Number})
		}
	}
	return items
}

// byTitles starts a new section at every short all-caps line.
func byTitles(pages []chunker.Page) []parsedItem {
	items := []parsedItem{}
	var current *parsedItem
	var body []string

	flush := func() {
		if current != nil {
			current.Content = strings.TrimSpace(strings.Join(body, "\n"))
			items = append(items, *current)
		}
		body = nil
	}

	for _, p := range pages {
		for _, line := range strings.Split(p.Text, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if isTitle(line) {
				flush()
				current = &parsedItem{Type: "section", Title: line, Page: p.Number}
				continue
			}
			if current == nil {
				current = &parsedItem{Type: "section", Title: "Introduction", Page: p.Number}
			}
			body = append(body, line)
		}
	}
	flush()
	return items
}

func isTitle(line string) bool {
	if len([]rune(line)) >= maxTitleLength {
		return false
	}
	hasLetter := false
	for _, r := range line {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

func parseMarkdown(option, text string) []parsedItem {
	switch option {
	case strategy.ParseAllText:
		return []parsedItem{{Type: "Text", Content: text, Section: "all"}}
	case strategy.ParseBySections:
		return bySections(text)
	case strategy.ParseTextAndTables:
		return markdownTables(text)
	}
	return []parsedItem{}
}

type heading struct {
	level int
	title string
}

func parseHeading(line string) (heading, bool) {
	m := headingPattern.FindStringSubmatch(line)
	if m == nil {
		return heading{}, false
	}
	return heading{level: len(m[1]), title: strings.TrimSpace(m[2])}, true
}

// bySections emits one item per heading with the text up to the next one.
// Text before the first heading becomes a level 0 preamble.
func bySections(text string) []parsedItem {
	items := []parsedItem{}
	current := parsedItem{Type: "section", Title: "Preamble"}
	var body []string

	flush := func() {
		current.Content = strings.TrimSpace(strings.Join(body, "\n"))
		if current.Content != "" || current.Level > 0 {
			items = append(items, current)
		}
		body = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if h, ok := parseHeading(line); ok {
			flush()
			current = parsedItem{Type: "section", Title: h.title, Level: h.level, Section: h.title}
			continue
		}
		body = append(body, line)
	}
	flush()
	return items
}

// markdownTables separates pipe tables from prose, tagging both with the
// heading they appear under.
func markdownTables(text string) []parsedItem {
	items := []parsedItem{}
	section := ""
	var block []string
	inTable := false

	flush := func() {
		content := strings.TrimSpace(strings.Join(block, "\n"))
		if content != "" {
			kind := "text"
			if inTable {
				kind = "table"
			}
			items = append(items, parsedItem{Type: kind, Content: content, Section: section})
		}
		block = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if h, ok := parseHeading(line); ok {
			flush()
			section = h.title
			continue
		}
		isRow := strings.HasPrefix(strings.TrimSpace(line), "|")
		if isRow != inTable {
			flush()
			inTable = isRow
		}
		block = append(block, line)
	}
	flush()
	return items
}

func joinPages(pages []chunker.Page) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n")
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
