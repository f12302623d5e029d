package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"docstage/internal/adapter/analyzer"
	"docstage/internal/adapter/chunker"
	"docstage/internal/strategy"
)

func main() {
	file := flag.String("file", "", "Text file to chunk (form feeds separate pages)")
	size := flag.Int("size", 1000, "chunk_size for the size based methods")
	overlap := flag.Int("overlap", 200, "chunk_overlap for the size based methods")
	threshold := flag.Float64("threshold", 0.7, "similarity_threshold for semantic and hybrid")
	flag.Parse()

	if *file == "" {
		fmt.Println("Usage: go run cmd/benchmark/main.go -file report.txt [-size 500 -overlap 50]")
		fmt.Println("\nCompares every chunking method on one document:")
		fmt.Println("  1. Chunk count and word distribution")
		fmt.Println("  2. Time spent chunking")
		os.Exit(1)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	var pages []chunker.Page
	for i, text := range strings.Split(string(data), "\f") {
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, chunker.Page{Number: i + 1, Text: text})
	}
	if len(pages) == 0 {
		fmt.Fprintln(os.Stderr, "Document has no text")
		os.Exit(1)
	}

	opts := chunker.DefaultOptions()
	opts.ChunkSize = *size
	opts.ChunkOverlap = *overlap
	opts.SimilarityThreshold = *threshold

	c := chunker.New(analyzer.NewTokenizer())

	fmt.Println("CHUNKING BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Document: %s (%d pages, %d words)\n", *file, len(pages), totalWords(pages))
	fmt.Printf("chunk_size=%d chunk_overlap=%d similarity_threshold=%.2f\n\n", *size, *overlap, *threshold)
	fmt.Printf("%-16s %8s %8s %8s %8s %12s\n", "method", "chunks", "avg", "min", "max", "time")
	fmt.Println(strings.Repeat("-", 70))

	for _, method := range strategy.Methods(strategy.StageChunk) {
		start := time.Now()
		pieces, err := c.Chunk(method, pages, opts)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-16s error: %v\n", method, err)
			continue
		}

		st := measure(pieces)
		fmt.Printf("%-16s %8d %8.1f %8d %8d %12s\n", method, len(pieces), st.avg, st.min, st.max, elapsed.Round(time.Microsecond))
	}
	fmt.Println(strings.Repeat("=", 70))
}

type stats struct {
	avg      float64
	min, max int
}

func measure(pieces []chunker.Piece) stats {
	if len(pieces) == 0 {
		return stats{}
	}
	s := stats{min: pieces[0].WordCount}
	total := 0
	for _, p := range pieces {
		total += p.WordCount
		if p.WordCount < s.min {
			s.min = p.WordCount
		}
		if p.WordCount > s.max {
			s.max = p.WordCount
		}
	}
	s.avg = float64(total) / float64(len(pieces))
	return s
}

func totalWords(pages []chunker.Page) int {
	n := 0
	for _, p := range pages {
		n += analyzer.WordCount(p.Text)
	}
	return n
}
