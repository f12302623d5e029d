package usecase

import (
	"go.uber.org/zap"

	"docstage/internal/port"
	"docstage/internal/strategy"
)

// Workbench holds the three stage controllers of a session. The stages share
// the processor and the registry view but nothing else.
type Workbench struct {
	Load     *LoadController
	Chunk    *ChunkController
	Parse    *ParseController
	Registry *RegistryView
}

func NewWorkbench(processor port.Processor, registry port.Registry, d Defaults, log *zap.Logger) (*Workbench, error) {
	if log == nil {
		log = zap.NewNop()
	}
	view := NewRegistryView(registry, log)

	chunk, err := NewChunkController(processor, view, d, log)
	if err != nil {
		return nil, err
	}
	return &Workbench{
		Load:     NewLoadController(processor, view, d, log),
		Chunk:    chunk,
		Parse:    NewParseController(processor, view, d, log),
		Registry: view,
	}, nil
}

// Controller returns the controller of stage.
func (w *Workbench) Controller(stage strategy.Stage) Controller {
	switch stage {
	case strategy.StageLoad:
		return w.Load
	case strategy.StageChunk:
		return w.Chunk
	case strategy.StageParse:
		return w.Parse
	}
	return nil
}
