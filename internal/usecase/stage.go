package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"docstage/internal/domain"
	"docstage/internal/strategy"
)

// State is the lifecycle position of a stage controller.
type State int

const (
	Idle State = iota
	Configured
	Submitting
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Configured:
		return "configured"
	case Submitting:
		return "submitting"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Snapshot is a copy of a controller's observable state.
type Snapshot struct {
	Stage    strategy.Stage
	State    State
	Document string
	Config   strategy.Config
	Result   *domain.ProcessingResult
	// Displayed names the artifact the result belongs to.
	Displayed string
	// Error holds the failure message verbatim while State is Failed.
	Error string
	// Notice is a blocking message from a failed delete or refresh.
	Notice    string
	Documents []domain.DocumentSummary
}

// Controller is the part of a stage controller that does not depend on what
// the stage takes as input.
type Controller interface {
	Stage() strategy.Stage
	SelectMethod(method string) error
	SetParams(assignments map[string]string) error
	Submit(ctx context.Context) error
	View(ctx context.Context, name string) error
	Delete(ctx context.Context, name string) error
	Refresh(ctx context.Context) error
	Snapshot() Snapshot
	CanSubmit() bool
}

// stageCore holds the state machine shared by the three controllers. Every
// transition that starts a request or replaces the input advances seq; a
// response is applied only if seq has not moved since its request started.
type stageCore struct {
	stage    strategy.Stage
	registry *RegistryView
	log      *zap.Logger

	mu        sync.Mutex
	state     State
	document  string
	config    strategy.Config
	result    *domain.ProcessingResult
	displayed string
	errMsg    string
	notice    string
	seq       uint64

	// methodAllowed validates a method against the current document.
	methodAllowed func(method string) error
	// onClear drops controller specific input; it runs under mu.
	onClear func()
}

func newStageCore(stage strategy.Stage, cfg strategy.Config, registry *RegistryView, log *zap.Logger) *stageCore {
	if log == nil {
		log = zap.NewNop()
	}
	return &stageCore{
		stage:    stage,
		registry: registry,
		log:      log.With(zap.String("stage", string(stage))),
		config:   cfg,
	}
}

func (c *stageCore) Stage() strategy.Stage {
	return c.stage
}

// SelectMethod switches the active method, carrying shared parameter values.
// The state does not change.
func (c *stageCore) SelectMethod(method string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.methodAllowed != nil {
		if err := c.methodAllowed(method); err != nil {
			return err
		}
	}
	var next strategy.Config
	var err error
	if c.config.IsZero() {
		next, err = strategy.New(c.stage, method)
	} else {
		next, err = c.config.Switch(method)
	}
	if err != nil {
		return err
	}
	c.config = next
	return nil
}

func (c *stageCore) SetParams(assignments map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.config.IsZero() {
		return fmt.Errorf("%w: select a %s method first", domain.ErrMissingSelection, c.stage)
	}
	next, err := c.config.Set(assignments)
	if err != nil {
		return err
	}
	c.config = next
	return nil
}

func (c *stageCore) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Stage:     c.stage,
		State:     c.state,
		Document:  c.document,
		Config:    c.config,
		Result:    c.result,
		Displayed: c.displayed,
		Error:     c.errMsg,
		Notice:    c.notice,
		Documents: c.registry.Last(c.stage.Output()),
	}
}

func (c *stageCore) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != Submitting && c.document != "" && !c.config.IsZero()
}

// Refresh re-fetches the list of artifacts this stage produces.
func (c *stageCore) Refresh(ctx context.Context) error {
	_, err := c.registry.Refresh(ctx, c.stage.Output())
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.notice = err.Error()
		return err
	}
	c.notice = ""
	return nil
}

// selectInput replaces the input document. Any result on display and any
// response still in flight are discarded.
func (c *stageCore) selectInput(document string, apply func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.document = document
	c.result = nil
	c.displayed = ""
	c.errMsg = ""
	c.state = Configured
	if apply != nil {
		apply()
	}
}

// begin validates the selection and moves to Submitting. prepare runs under
// the lock with the clamped config; it builds the request and reports whether
// the stage input is complete.
func (c *stageCore) begin(prepare func(cfg strategy.Config) bool) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Submitting {
		return 0, domain.ErrSubmitInFlight
	}
	if c.config.IsZero() || !prepare(c.config.Clamp()) {
		return 0, fmt.Errorf("%w: %s needs a document and a method", domain.ErrMissingSelection, c.stage)
	}

	c.seq++
	c.state = Submitting
	c.errMsg = ""
	c.notice = ""
	return c.seq, nil
}

// finish applies the outcome of the request started with token.
func (c *stageCore) finish(ctx context.Context, token uint64, result *domain.ProcessingResult, err error) error {
	c.mu.Lock()
	if token != c.seq {
		c.mu.Unlock()
		c.log.Debug("dropping stale response", zap.Uint64("token", token))
		return domain.ErrStaleResponse
	}
	if err != nil {
		c.state = Failed
		c.errMsg = err.Error()
		c.mu.Unlock()
		c.log.Warn("stage request failed", zap.Error(err))
		return err
	}
	if verr := result.Verify(); verr != nil {
		c.log.Warn("result violates segment invariants", zap.Error(verr))
	}
	c.result = result
	c.displayed = result.Name
	c.state = Ready
	c.mu.Unlock()

	if rerr := c.Refresh(ctx); rerr != nil {
		c.log.Warn("registry refresh after submit failed", zap.Error(rerr))
	}
	return nil
}

// View shows a stored artifact without processing anything.
func (c *stageCore) View(ctx context.Context, name string) error {
	c.mu.Lock()
	c.seq++
	token := c.seq
	c.mu.Unlock()

	doc, err := c.registry.Detail(ctx, name, c.stage.Output())

	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.seq {
		return domain.ErrStaleResponse
	}
	if err != nil {
		c.state = Failed
		c.errMsg = err.Error()
		return err
	}
	c.result = doc.Result
	c.displayed = name
	c.errMsg = ""
	c.state = Ready
	return nil
}

// Delete removes an artifact of this stage's output kind. Deleting the
// artifact on display clears the result and the selection.
func (c *stageCore) Delete(ctx context.Context, name string) error {
	if err := c.registry.Delete(ctx, name, c.stage.Output()); err != nil {
		c.mu.Lock()
		c.notice = fmt.Sprintf("delete %s failed: %v", name, err)
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.notice = ""
	if c.displayed != "" && domain.ArtifactKey(c.displayed) == domain.ArtifactKey(name) {
		c.seq++
		c.result = nil
		c.displayed = ""
		c.document = ""
		c.errMsg = ""
		c.state = Idle
		if c.onClear != nil {
			c.onClear()
		}
	}
	return nil
}

// IsStale reports whether err only means a newer transition superseded the call.
func IsStale(err error) bool {
	return errors.Is(err, domain.ErrStaleResponse)
}
