package strategy

import (
	"fmt"
	"path/filepath"
	"strings"

	"docstage/internal/domain"
)

// Loading methods.
const (
	LoadText         = "text"
	LoadPyMuPDF      = "pymupdf"
	LoadPyPDF        = "pypdf"
	LoadPDFPlumber   = "pdfplumber"
	LoadUnstructured = "unstructured"
	LoadCSV          = "csv"
	LoadMarkdown     = "md"
)

type TextLoad struct {
	Encoding           string `mapstructure:"encoding" json:"encoding"`
	PreserveNewlines   bool   `mapstructure:"preserve_newlines" json:"preserve_newlines"`
	AutoDetectEncoding bool   `mapstructure:"auto_detect_encoding" json:"auto_detect_encoding"`
}

func (*TextLoad) Method() string { return LoadText }

// UnstructuredLoad is the only PDF method with tunables.
type UnstructuredLoad struct {
	Strategy          string `mapstructure:"strategy" json:"strategy"`
	ChunkingStrategy  string `mapstructure:"chunking_strategy" json:"chunking_strategy"`
	MaxCharacters     int    `mapstructure:"max_characters" json:"max_characters"`
	Overlap           int    `mapstructure:"overlap" json:"overlap"`
	PDFImageProcessor string `mapstructure:"pdf_image_processor" json:"pdf_image_processor"`
	Languages         string `mapstructure:"languages" json:"languages"`
	IncludePageBreaks bool   `mapstructure:"include_page_breaks" json:"include_page_breaks"`
	IncludeMetadata   bool   `mapstructure:"include_metadata" json:"include_metadata"`
}

func (*UnstructuredLoad) Method() string { return LoadUnstructured }

type CSVLoad struct {
	AutoDetectDelimiter bool   `mapstructure:"auto_detect_delimiter" json:"auto_detect_delimiter"`
	Delimiter           string `mapstructure:"delimiter" json:"delimiter"`
	AutoDetectHeader    bool   `mapstructure:"auto_detect_header" json:"auto_detect_header"`
	HasHeader           bool   `mapstructure:"has_header" json:"has_header"`
	SourceColumn        string `mapstructure:"source_column" json:"source_column"`
	Encoding            string `mapstructure:"encoding" json:"encoding"`
}

func (*CSVLoad) Method() string { return LoadCSV }

// Named is a method without parameters.
type Named struct {
	Name string `mapstructure:"-" json:"-"`
}

func (n *Named) Method() string { return n.Name }

func named(name string) func() Variant {
	return func() Variant { return &Named{Name: name} }
}

func init() {
	register(StageLoad, LoadPyMuPDF, nil, named(LoadPyMuPDF))
	register(StageLoad, LoadPyPDF, nil, named(LoadPyPDF))
	register(StageLoad, LoadPDFPlumber, nil, named(LoadPDFPlumber))
	register(StageLoad, LoadUnstructured, []ParamSpec{
		choiceParam("strategy", "fast", []string{"fast", "hi_res", "ocr_only"}, "partitioning strategy"),
		choiceParam("chunking_strategy", "basic", []string{"basic", "by_title"}, "how elements are grouped"),
		intParam("max_characters", 4000, 100, 20000, "maximum characters per element group"),
		intParam("overlap", 200, 0, 2000, "characters shared by neighbouring groups"),
		choiceParam("pdf_image_processor", "default", []string{"default", "yolox", "detectron2_onnx"}, "layout model for hi_res"),
		{Name: "languages", Kind: ParamList, Default: "eng", Help: "OCR languages, comma separated"},
		boolParam("include_page_breaks", false, "emit page break elements"),
		boolParam("include_metadata", true, "attach element metadata"),
	}, func() Variant { return &UnstructuredLoad{} })
	register(StageLoad, LoadText, []ParamSpec{
		stringParam("encoding", "utf-8", "text encoding"),
		boolParam("preserve_newlines", true, "keep line breaks in the loaded text"),
		boolParam("auto_detect_encoding", false, "let the service detect the encoding"),
	}, func() Variant { return &TextLoad{} })
	register(StageLoad, LoadCSV, []ParamSpec{
		boolParam("auto_detect_delimiter", true, "let the service detect the delimiter"),
		stringParam("delimiter", ",", "field delimiter when not auto-detected"),
		boolParam("auto_detect_header", true, "let the service detect a header row"),
		boolParam("has_header", true, "first row is a header when not auto-detected"),
		stringParam("source_column", "", "column used as the row source (optional)"),
		stringParam("encoding", "utf-8", "file encoding"),
	}, func() Variant { return &CSVLoad{} })
	register(StageLoad, LoadMarkdown, nil, named(LoadMarkdown))
}

var loadCandidates = map[string][]string{
	".pdf": {LoadPyMuPDF, LoadPyPDF, LoadPDFPlumber, LoadUnstructured},
	".txt": {LoadText},
	".log": {LoadText},
	".out": {LoadText},
	".err": {LoadText},
	".csv": {LoadCSV},
	".md":  {LoadMarkdown},
}

// LoadMethodsForFile returns the loading methods applicable to a file. fixed
// reports a single candidate, which callers present read-only.
func LoadMethodsForFile(name string) (methods []string, fixed bool, err error) {
	ext := strings.ToLower(filepath.Ext(name))
	candidates, ok := loadCandidates[ext]
	if !ok {
		return nil, false, fmt.Errorf("%w: no loading method for file type %q", domain.ErrUnsupportedMethod, ext)
	}
	methods = make([]string, len(candidates))
	copy(methods, candidates)
	return methods, len(methods) == 1, nil
}

// SupportsLoadMethod reports whether method may load the named file.
func SupportsLoadMethod(name, method string) bool {
	methods, _, err := LoadMethodsForFile(name)
	if err != nil {
		return false
	}
	for _, m := range methods {
		if m == method {
			return true
		}
	}
	return false
}
