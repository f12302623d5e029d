package strategy

import (
	"fmt"
	"strings"

	"docstage/internal/domain"
)

// Stage is one transformation of the pipeline.
type Stage string

const (
	StageLoad  Stage = "load"
	StageChunk Stage = "chunk"
	StageParse Stage = "parse"
)

// Stages lists the pipeline in execution order.
var Stages = []Stage{StageLoad, StageChunk, StageParse}

func ParseStage(s string) (Stage, error) {
	switch Stage(strings.ToLower(strings.TrimSpace(s))) {
	case StageLoad:
		return StageLoad, nil
	case StageChunk:
		return StageChunk, nil
	case StageParse:
		return StageParse, nil
	}
	return "", fmt.Errorf("unknown stage %q (want load, chunk or parse)", s)
}

// Output is the artifact kind a stage produces.
func (s Stage) Output() domain.Kind {
	switch s {
	case StageLoad:
		return domain.KindLoaded
	case StageChunk:
		return domain.KindChunked
	case StageParse:
		return domain.KindParsed
	}
	return ""
}

// Input is the artifact kind a stage consumes.
func (s Stage) Input() domain.Kind {
	if s == StageChunk {
		return domain.KindLoaded
	}
	return domain.KindRaw
}
