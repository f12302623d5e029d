package chunker

import (
	"fmt"
	"strconv"
	"strings"

	"docstage/internal/adapter/analyzer"
	"docstage/internal/domain"
	"docstage/internal/strategy"
)

// Page is one page of a loaded document.
type Page struct {
	Number int
	Text   string
}

// Piece is one chunk before ids are assigned.
type Piece struct {
	Content    string
	PageNumber int
	PageRange  string
	WordCount  int
}

// Options holds the resolved parameters of a chunk request. Fields a method
// does not use are ignored.
type Options struct {
	ChunkSize           int      `json:"chunk_size"`
	ChunkOverlap        int      `json:"chunk_overlap"`
	MinChunkSize        int      `json:"min_chunk_size"`
	MaxChunkSize        int      `json:"max_chunk_size"`
	MaxPageWords        int      `json:"max_page_words"`
	MinPageWords        int      `json:"min_page_words"`
	MergeEmptyPages     bool     `json:"merge_empty_pages"`
	MergeShortPages     bool     `json:"merge_short_pages"`
	ParagraphSeparator  string   `json:"paragraph_separator"`
	SentenceSeparators  []string `json:"sentence_separators"`
	KeepSeparator       bool     `json:"keep_separator"`
	SimilarityThreshold float64  `json:"similarity_threshold"`
}

// DefaultSentenceSeparators is used when a request sends none.
var DefaultSentenceSeparators = []string{"。", "！", "？", "\n", ".", "!", "?", " "}

func DefaultOptions() Options {
	return Options{
		ChunkSize:           1000,
		ChunkOverlap:        200,
		MinChunkSize:        1,
		MaxChunkSize:        5000,
		MaxPageWords:        2000,
		MinPageWords:        50,
		ParagraphSeparator:  "\n\n",
		SentenceSeparators:  append([]string(nil), DefaultSentenceSeparators...),
		SimilarityThreshold: 0.7,
	}
}

// Chunker runs the chunking methods over a page map.
type Chunker struct {
	tokenizer *analyzer.Tokenizer
}

func New(tokenizer *analyzer.Tokenizer) *Chunker {
	return &Chunker{tokenizer: tokenizer}
}

func (c *Chunker) Chunk(method string, pages []Page, opts Options) ([]Piece, error) {
	if len(opts.SentenceSeparators) == 0 {
		opts.SentenceSeparators = DefaultSentenceSeparators
	}
	if opts.ParagraphSeparator == "" && (method == strategy.ChunkByParagraphs || method == strategy.ChunkHybrid) {
		return nil, fmt.Errorf("paragraph_separator must not be empty")
	}
	usesSplitter := method == strategy.ChunkFixedSize || method == strategy.ChunkBySentences ||
		method == strategy.ChunkSemantic || method == strategy.ChunkHybrid
	if usesSplitter && opts.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk_size must be positive, got %d", opts.ChunkSize)
	}
	if usesSplitter && opts.ChunkOverlap > opts.ChunkSize {
		return nil, fmt.Errorf("got a larger chunk overlap (%d) than chunk size (%d), should be smaller",
			opts.ChunkOverlap, opts.ChunkSize)
	}

	switch method {
	case strategy.ChunkByPages:
		return c.byPages(pages, opts), nil
	case strategy.ChunkFixedSize, strategy.ChunkBySentences:
		return c.splitPages(pages, opts), nil
	case strategy.ChunkByParagraphs:
		return c.byParagraphs(pages, opts), nil
	case strategy.ChunkSemantic:
		return c.semantic(pages, opts), nil
	case strategy.ChunkHybrid:
		return c.hybrid(pages, opts), nil
	}
	return nil, fmt.Errorf("%w: chunking method %q", domain.ErrUnsupportedMethod, method)
}

func piece(content string, page int) Piece {
	return Piece{
		Content:    content,
		PageNumber: page,
		PageRange:  strconv.Itoa(page),
		WordCount:  analyzer.WordCount(content),
	}
}

// byPages emits one chunk per page. Pages above MaxPageWords are cut into
// word windows; with MergeShortPages, pages under MinPageWords join the
// previous chunk.
func (c *Chunker) byPages(pages []Page, opts Options) []Piece {
	var out []Piece
	current := -1

	for _, p := range pages {
		text := strings.TrimSpace(p.Text)
		words := strings.Fields(text)

		if text == "" && !opts.MergeEmptyPages {
			continue
		}

		if opts.MergeShortPages && current >= 0 && len(words) < opts.MinPageWords {
			prev := &out[current]
			prev.Content += "\n" + text
			prev.WordCount += len(words)
			prev.PageRange = fmt.Sprintf("%s-%d", prev.PageRange, p.Number)
			continue
		}

		if opts.MaxPageWords > 0 && len(words) > opts.MaxPageWords {
			for i := 0; i < len(words); i += opts.MaxPageWords {
				end := i + opts.MaxPageWords
				if end > len(words) {
					end = len(words)
				}
				part := piece(strings.Join(words[i:end], " "), p.Number)
				part.PageRange = fmt.Sprintf("%d-%d", p.Number, p.Number)
				out = append(out, part)
			}
			continue
		}

		out = append(out, piece(text, p.Number))
		current = len(out) - 1
	}
	return out
}

func (c *Chunker) splitter(opts Options) RecursiveSplitter {
	return RecursiveSplitter{
		ChunkSize:     opts.ChunkSize,
		ChunkOverlap:  opts.ChunkOverlap,
		Separators:    opts.SentenceSeparators,
		KeepSeparator: opts.KeepSeparator,
	}
}

func (c *Chunker) splitPages(pages []Page, opts Options) []Piece {
	var out []Piece
	s := c.splitter(opts)
	for _, p := range pages {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		for _, part := range s.Split(p.Text) {
			if runeLen(strings.TrimSpace(part)) < opts.MinChunkSize {
				continue
			}
			out = append(out, piece(part, p.Number))
		}
	}
	return out
}

func paragraphs(text, sep string) []string {
	var out []string
	for _, para := range strings.Split(text, sep) {
		if para = strings.TrimSpace(para); para != "" {
			out = append(out, para)
		}
	}
	return out
}

func (c *Chunker) byParagraphs(pages []Page, opts Options) []Piece {
	var out []Piece
	for _, p := range pages {
		for _, para := range paragraphs(p.Text, opts.ParagraphSeparator) {
			if runeLen(para) < opts.MinChunkSize {
				continue
			}
			out = append(out, piece(para, p.Number))
		}
	}
	return out
}

// mergeSimilar joins adjacent sentences while their similarity reaches the
// threshold and the merged word count stays within maxWords.
func (c *Chunker) mergeSimilar(sentences []string, page int, opts Options, maxWords int) []Piece {
	if len(sentences) == 0 {
		return nil
	}

	var out []Piece
	emit := func(group []string) {
		text := strings.Join(group, " ")
		if runeLen(strings.TrimSpace(text)) >= opts.MinChunkSize {
			out = append(out, piece(text, page))
		}
	}

	group := []string{sentences[0]}
	length := analyzer.WordCount(sentences[0])
	for i := 1; i < len(sentences); i++ {
		sim := c.tokenizer.Similarity(sentences[i-1], sentences[i])
		n := analyzer.WordCount(sentences[i])
		if sim >= opts.SimilarityThreshold && length+n <= maxWords {
			group = append(group, sentences[i])
			length += n
			continue
		}
		emit(group)
		group = []string{sentences[i]}
		length = n
	}
	emit(group)
	return out
}

func (c *Chunker) semantic(pages []Page, opts Options) []Piece {
	var out []Piece
	s := c.splitter(opts)
	for _, p := range pages {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		out = append(out, c.mergeSimilar(s.Split(p.Text), p.Number, opts, opts.MaxChunkSize)...)
	}
	return out
}

// hybrid keeps paragraphs that fit MaxChunkSize characters and splits the
// others semantically.
func (c *Chunker) hybrid(pages []Page, opts Options) []Piece {
	var out []Piece
	s := c.splitter(opts)
	for _, p := range pages {
		for _, para := range paragraphs(p.Text, opts.ParagraphSeparator) {
			if runeLen(para) <= opts.MaxChunkSize {
				if runeLen(para) < opts.MinChunkSize {
					continue
				}
				out = append(out, piece(para, p.Number))
				continue
			}
			out = append(out, c.mergeSimilar(s.Split(para), p.Number, opts, opts.MaxChunkSize)...)
		}
	}
	return out
}

func runeLen(s string) int {
	return len([]rune(s))
}
