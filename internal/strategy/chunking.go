package strategy

// Chunking methods.
const (
	ChunkByPages      = "by_pages"
	ChunkFixedSize    = "fixed_size"
	ChunkByParagraphs = "by_paragraphs"
	ChunkBySentences  = "by_sentences"
	ChunkSemantic     = "semantic"
	ChunkHybrid       = "hybrid"
)

// Variant is the parameter record of one method.
type Variant interface {
	Method() string
}

type ByPages struct {
	MinChunkSize    int  `mapstructure:"min_chunk_size" json:"min_chunk_size"`
	MaxPageWords    int  `mapstructure:"max_page_words" json:"max_page_words"`
	MinPageWords    int  `mapstructure:"min_page_words" json:"min_page_words"`
	MergeEmptyPages bool `mapstructure:"merge_empty_pages" json:"merge_empty_pages"`
	MergeShortPages bool `mapstructure:"merge_short_pages" json:"merge_short_pages"`
}

func (*ByPages) Method() string { return ChunkByPages }

type FixedSize struct {
	ChunkSize    int `mapstructure:"chunk_size" json:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap" json:"chunk_overlap"`
}

func (*FixedSize) Method() string { return ChunkFixedSize }

type ByParagraphs struct {
	MinChunkSize       int                `mapstructure:"min_chunk_size" json:"min_chunk_size"`
	ParagraphSeparator ParagraphSeparator `mapstructure:"paragraph_separator" json:"paragraph_separator"`
}

func (*ByParagraphs) Method() string { return ChunkByParagraphs }

type BySentences struct {
	ChunkSize          int                `mapstructure:"chunk_size" json:"chunk_size"`
	ChunkOverlap       int                `mapstructure:"chunk_overlap" json:"chunk_overlap"`
	SentenceSeparators SentenceSeparators `mapstructure:"sentence_separators" json:"sentence_separators"`
	KeepSeparator      bool               `mapstructure:"keep_separator" json:"keep_separator"`
}

func (*BySentences) Method() string { return ChunkBySentences }

type Semantic struct {
	ChunkSize           int                `mapstructure:"chunk_size" json:"chunk_size"`
	ChunkOverlap        int                `mapstructure:"chunk_overlap" json:"chunk_overlap"`
	SentenceSeparators  SentenceSeparators `mapstructure:"sentence_separators" json:"sentence_separators"`
	KeepSeparator       bool               `mapstructure:"keep_separator" json:"keep_separator"`
	SimilarityThreshold float64            `mapstructure:"similarity_threshold" json:"similarity_threshold"`
	MinChunkSize        int                `mapstructure:"min_chunk_size" json:"min_chunk_size"`
	MaxChunkSize        int                `mapstructure:"max_chunk_size" json:"max_chunk_size"`
}

func (*Semantic) Method() string { return ChunkSemantic }

type Hybrid struct {
	MaxChunkSize        int                `mapstructure:"max_chunk_size" json:"max_chunk_size"`
	MinChunkSize        int                `mapstructure:"min_chunk_size" json:"min_chunk_size"`
	ParagraphSeparator  ParagraphSeparator `mapstructure:"paragraph_separator" json:"paragraph_separator"`
	SentenceSeparators  SentenceSeparators `mapstructure:"sentence_separators" json:"sentence_separators"`
	ChunkSize           int                `mapstructure:"chunk_size" json:"chunk_size"`
	ChunkOverlap        int                `mapstructure:"chunk_overlap" json:"chunk_overlap"`
	KeepSeparator       bool               `mapstructure:"keep_separator" json:"keep_separator"`
	SimilarityThreshold float64            `mapstructure:"similarity_threshold" json:"similarity_threshold"`
}

func (*Hybrid) Method() string { return ChunkHybrid }

// Shared parameter declarations. Methods reuse the same spec for a name so a
// value carried across a method switch always has the same type and range.
var (
	pChunkSize     = intParam("chunk_size", 1000, 50, 10000, "target characters per chunk")
	pChunkOverlap  = intParam("chunk_overlap", 200, 0, 2000, "characters shared by neighbouring chunks")
	pMinChunkSize  = intParam("min_chunk_size", 1, 1, 10000, "chunks shorter than this are dropped")
	pMaxChunkSize  = intParam("max_chunk_size", 5000, 100, 20000, "upper bound for merged chunks")
	pMaxPageWords  = intParam("max_page_words", 2000, 100, 20000, "pages above this word count are split")
	pMinPageWords  = intParam("min_page_words", 50, 0, 5000, "pages below this word count count as short")
	pKeepSeparator = boolParam("keep_separator", false, "keep the separator at the end of each piece")
	pThreshold     = floatParam("similarity_threshold", 0.7, 0, 1, "similarity needed to merge adjacent sentences")
	pParagraphSep  = ParamSpec{
		Name:    "paragraph_separator",
		Kind:    ParamParagraphSeparator,
		Default: ParagraphSeparator{Preset: DefaultParagraphPreset},
		Help:    "paragraph boundary (preset or custom, used verbatim)",
	}
	pSentenceSeps = ParamSpec{
		Name:    "sentence_separators",
		Kind:    ParamSentenceSeparators,
		Default: SentenceSeparators{Preset: DefaultSentencePreset},
		Help:    "sentence boundaries (preset or custom, alternatives split on '|')",
	}
)

func init() {
	register(StageChunk, ChunkByPages, []ParamSpec{
		pMinChunkSize,
		pMaxPageWords,
		pMinPageWords,
		boolParam("merge_empty_pages", false, "keep empty pages instead of skipping them"),
		boolParam("merge_short_pages", false, "merge short pages into the previous chunk"),
	}, func() Variant { return &ByPages{} })

	register(StageChunk, ChunkFixedSize, []ParamSpec{
		pChunkSize,
		pChunkOverlap,
	}, func() Variant { return &FixedSize{} })

	register(StageChunk, ChunkByParagraphs, []ParamSpec{
		pMinChunkSize,
		pParagraphSep,
	}, func() Variant { return &ByParagraphs{} })

	register(StageChunk, ChunkBySentences, []ParamSpec{
		pChunkSize,
		pChunkOverlap,
		pSentenceSeps,
		pKeepSeparator,
	}, func() Variant { return &BySentences{} })

	register(StageChunk, ChunkSemantic, []ParamSpec{
		pChunkSize,
		pChunkOverlap,
		pSentenceSeps,
		pKeepSeparator,
		pThreshold,
		pMinChunkSize,
		pMaxChunkSize,
	}, func() Variant { return &Semantic{} })

	register(StageChunk, ChunkHybrid, []ParamSpec{
		pMaxChunkSize,
		pMinChunkSize,
		pParagraphSep,
		pSentenceSeps,
		pChunkSize,
		pChunkOverlap,
		pKeepSeparator,
		pThreshold,
	}, func() Variant { return &Hybrid{} })
}
