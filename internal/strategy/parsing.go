package strategy

import (
	"fmt"
	"path/filepath"
	"strings"

	"docstage/internal/domain"
)

// Parsing options.
const (
	ParseAllText       = "all_text"
	ParseByPages       = "by_pages"
	ParseByTitles      = "by_titles"
	ParseTextAndTables = "text_and_tables"
	ParseBySections    = "by_sections"
)

func init() {
	for _, m := range []string{ParseAllText, ParseByPages, ParseByTitles, ParseTextAndTables, ParseBySections} {
		register(StageParse, m, nil, named(m))
	}
}

var parseCandidates = map[string][]string{
	"pdf": {ParseAllText, ParseByPages, ParseByTitles, ParseTextAndTables},
	"md":  {ParseAllText, ParseBySections, ParseTextAndTables},
}

// FileType maps a file name onto the file_type field of a parse request.
func FileType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "pdf"
	case ".md", ".markdown":
		return "md"
	}
	return ""
}

// ParseMethodsForFile returns the parsing options applicable to a file.
func ParseMethodsForFile(name string) ([]string, error) {
	candidates, ok := parseCandidates[FileType(name)]
	if !ok {
		return nil, fmt.Errorf("%w: no parsing option for %q", domain.ErrUnsupportedMethod, filepath.Base(name))
	}
	out := make([]string, len(candidates))
	copy(out, candidates)
	return out, nil
}
