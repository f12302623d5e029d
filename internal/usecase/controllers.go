package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"docstage/internal/domain"
	"docstage/internal/port"
	"docstage/internal/strategy"
)

// Defaults seeds the controllers from configuration.
type Defaults struct {
	// PDFMethod is preferred when a PDF is selected for loading or parsing.
	PDFMethod string
	// LoadParams are applied to every loading method that declares them.
	LoadParams  map[string]string
	ChunkMethod string
	ChunkParams map[string]string
	ParseMethod string
}

// LoadController turns an uploaded file into a loaded artifact.
type LoadController struct {
	*stageCore
	processor port.Processor
	defaults  Defaults

	file       port.Upload
	candidates []string
}

func NewLoadController(processor port.Processor, registry *RegistryView, d Defaults, log *zap.Logger) *LoadController {
	c := &LoadController{
		stageCore: newStageCore(strategy.StageLoad, strategy.Config{}, registry, log),
		processor: processor,
		defaults:  d,
	}
	c.methodAllowed = func(method string) error {
		if c.file.Name != "" && !strategy.SupportsLoadMethod(c.file.Name, method) {
			return fmt.Errorf("%w: %s cannot load %s", domain.ErrUnsupportedMethod, method, c.file.Name)
		}
		return nil
	}
	c.onClear = func() {
		c.file = port.Upload{}
		c.candidates = nil
	}
	return c
}

// SelectDocument picks the file to load. The current method is kept when it
// can load the file; otherwise the preferred method for the file type is
// selected.
func (c *LoadController) SelectDocument(file port.Upload) error {
	methods, _, err := strategy.LoadMethodsForFile(file.Name)
	if err != nil {
		return err
	}

	c.mu.Lock()
	current := c.config
	c.mu.Unlock()

	cfg := current
	if current.IsZero() || !contains(methods, current.Method()) {
		method := methods[0]
		if contains(methods, c.defaults.PDFMethod) {
			method = c.defaults.PDFMethod
		}
		if current.IsZero() {
			cfg, err = strategy.New(strategy.StageLoad, method)
		} else {
			cfg, err = current.Switch(method)
		}
		if err != nil {
			return err
		}
		cfg = applyKnown(cfg, c.defaults.LoadParams, c.log)
	}

	c.selectInput(file.Name, func() {
		c.file = file
		c.candidates = methods
		c.config = cfg
	})
	return nil
}

// Candidates lists the loading methods for the selected file. A single
// candidate is fixed by the file type.
func (c *LoadController) Candidates() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.candidates...)
}

func (c *LoadController) Submit(ctx context.Context) error {
	var req port.LoadRequest
	token, err := c.begin(func(cfg strategy.Config) bool {
		req = port.LoadRequest{File: c.file, Config: cfg}
		return c.file.Name != ""
	})
	if err != nil {
		return err
	}
	result, err := c.processor.Load(ctx, req)
	return c.finish(ctx, token, result, err)
}

// ChunkController chunks a loaded artifact.
type ChunkController struct {
	*stageCore
	processor port.Processor
}

func NewChunkController(processor port.Processor, registry *RegistryView, d Defaults, log *zap.Logger) (*ChunkController, error) {
	cfg := strategy.Config{}
	if d.ChunkMethod != "" {
		var err error
		if cfg, err = strategy.New(strategy.StageChunk, d.ChunkMethod); err != nil {
			return nil, err
		}
		if len(d.ChunkParams) > 0 {
			if cfg, err = cfg.Set(d.ChunkParams); err != nil {
				return nil, fmt.Errorf("chunk defaults: %w", err)
			}
		}
	}
	return &ChunkController{
		stageCore: newStageCore(strategy.StageChunk, cfg, registry, log),
		processor: processor,
	}, nil
}

// SelectDocument picks a loaded artifact by its registry name; "report" and
// "report.json" both select "report.json".
func (c *ChunkController) SelectDocument(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty document name", domain.ErrMissingSelection)
	}
	c.selectInput(domain.ArtifactID(name), nil)
	return nil
}

// LoadedDocuments refreshes and returns the artifacts that can be chunked.
func (c *ChunkController) LoadedDocuments(ctx context.Context) ([]domain.DocumentSummary, error) {
	return c.registry.Refresh(ctx, c.stage.Input())
}

func (c *ChunkController) Submit(ctx context.Context) error {
	var req port.ChunkRequest
	token, err := c.begin(func(cfg strategy.Config) bool {
		req = port.ChunkRequest{DocID: c.document, Config: cfg}
		return c.document != ""
	})
	if err != nil {
		return err
	}
	result, err := c.processor.Chunk(ctx, req)
	return c.finish(ctx, token, result, err)
}

// ParseController parses an uploaded file with an explicit loading method.
type ParseController struct {
	*stageCore
	processor port.Processor
	defaults  Defaults

	file          port.Upload
	loadingMethod string
}

func NewParseController(processor port.Processor, registry *RegistryView, d Defaults, log *zap.Logger) *ParseController {
	c := &ParseController{
		stageCore: newStageCore(strategy.StageParse, strategy.Config{}, registry, log),
		processor: processor,
		defaults:  d,
	}
	c.methodAllowed = func(method string) error {
		if c.file.Name == "" {
			return nil
		}
		methods, err := strategy.ParseMethodsForFile(c.file.Name)
		if err != nil {
			return err
		}
		if !contains(methods, method) {
			return fmt.Errorf("%w: %s cannot parse %s", domain.ErrUnsupportedMethod, method, c.file.Name)
		}
		return nil
	}
	c.onClear = func() {
		c.file = port.Upload{}
		c.loadingMethod = ""
	}
	return c
}

func (c *ParseController) SelectDocument(file port.Upload) error {
	options, err := strategy.ParseMethodsForFile(file.Name)
	if err != nil {
		return err
	}
	loaders, _, err := strategy.LoadMethodsForFile(file.Name)
	if err != nil {
		return err
	}

	c.mu.Lock()
	current := c.config
	loading := c.loadingMethod
	c.mu.Unlock()

	cfg := current
	if current.IsZero() || !contains(options, current.Method()) {
		option := options[0]
		if contains(options, c.defaults.ParseMethod) {
			option = c.defaults.ParseMethod
		}
		if cfg, err = strategy.New(strategy.StageParse, option); err != nil {
			return err
		}
	}
	if !contains(loaders, loading) {
		loading = loaders[0]
		if contains(loaders, c.defaults.PDFMethod) {
			loading = c.defaults.PDFMethod
		}
	}

	c.selectInput(file.Name, func() {
		c.file = file
		c.config = cfg
		c.loadingMethod = loading
	})
	return nil
}

// SelectLoadingMethod picks how the service reads the file before parsing.
func (c *ParseController) SelectLoadingMethod(method string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.file.Name != "" && !strategy.SupportsLoadMethod(c.file.Name, method) {
		return fmt.Errorf("%w: %s cannot load %s", domain.ErrUnsupportedMethod, method, c.file.Name)
	}
	c.loadingMethod = method
	return nil
}

func (c *ParseController) LoadingMethod() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadingMethod
}

func (c *ParseController) Submit(ctx context.Context) error {
	var req port.ParseRequest
	token, err := c.begin(func(cfg strategy.Config) bool {
		req = port.ParseRequest{
			File:          c.file,
			LoadingMethod: c.loadingMethod,
			Config:        cfg,
			FileType:      strategy.FileType(c.file.Name),
		}
		return c.file.Name != "" && c.loadingMethod != ""
	})
	if err != nil {
		return err
	}
	result, err := c.processor.Parse(ctx, req)
	return c.finish(ctx, token, result, err)
}

// applyKnown sets the assignments the method declares and skips the rest.
func applyKnown(cfg strategy.Config, params map[string]string, log *zap.Logger) strategy.Config {
	known := map[string]string{}
	schema := cfg.Schema()
	for k, v := range params {
		name, _, _ := strings.Cut(k, ".")
		if _, ok := schema.Param(name); ok {
			known[k] = v
		}
	}
	if len(known) == 0 {
		return cfg
	}
	next, err := cfg.Set(known)
	if err != nil {
		log.Warn("ignoring load defaults", zap.String("method", cfg.Method()), zap.Error(err))
		return cfg
	}
	return next
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
