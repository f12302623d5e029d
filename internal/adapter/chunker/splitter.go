package chunker

import (
	"strings"
	"unicode/utf8"
)

// RecursiveSplitter splits text on the first separator that occurs in it,
// merges the pieces back up to ChunkSize characters with ChunkOverlap
// characters of overlap, and recurses with the remaining separators into
// pieces that are still too long. Lengths are counted in runes.
type RecursiveSplitter struct {
	ChunkSize     int
	ChunkOverlap  int
	Separators    []string
	KeepSeparator bool
}

func (s RecursiveSplitter) Split(text string) []string {
	return s.split(text, s.Separators)
}

func (s RecursiveSplitter) split(text string, separators []string) []string {
	separator := ""
	if len(separators) > 0 {
		separator = separators[len(separators)-1]
	}
	var rest []string
	for i, sep := range separators {
		if sep == "" {
			separator = ""
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			rest = separators[i+1:]
			break
		}
	}

	mergeSep := separator
	if s.KeepSeparator {
		mergeSep = ""
	}

	var final, good []string
	for _, piece := range splitOn(text, separator, s.KeepSeparator) {
		if utf8.RuneCountInString(piece) < s.ChunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good, mergeSep)...)
			good = nil
		}
		if len(rest) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.split(piece, rest)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good, mergeSep)...)
	}
	return final
}

func (s RecursiveSplitter) merge(splits []string, sep string) []string {
	sepLen := utf8.RuneCountInString(sep)
	joinCost := func(current []string) int {
		if len(current) > 0 {
			return sepLen
		}
		return 0
	}

	var docs, current []string
	total := 0
	for _, d := range splits {
		l := utf8.RuneCountInString(d)
		if total+l+joinCost(current) > s.ChunkSize && len(current) > 0 {
			if doc := strings.TrimSpace(strings.Join(current, sep)); doc != "" {
				docs = append(docs, doc)
			}
			for len(current) > 0 && (total > s.ChunkOverlap || (total+l+joinCost(current) > s.ChunkSize && total > 0)) {
				drop := utf8.RuneCountInString(current[0])
				if len(current) > 1 {
					drop += sepLen
				}
				total -= drop
				current = current[1:]
			}
		}
		current = append(current, d)
		total += l
		if len(current) > 1 {
			total += sepLen
		}
	}
	if doc := strings.TrimSpace(strings.Join(current, sep)); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

func splitOn(text, sep string, keep bool) []string {
	var parts []string
	switch {
	case sep == "":
		for _, r := range text {
			parts = append(parts, string(r))
		}
		return parts
	case keep:
		parts = strings.SplitAfter(text, sep)
	default:
		parts = strings.Split(text, sep)
	}

	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
