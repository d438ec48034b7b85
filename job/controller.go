package job

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"thought_leadership_workflow/generator"
	"thought_leadership_workflow/publisher"
	"thought_leadership_workflow/scraper"
)

// PostGenerator is a platform agent.
type PostGenerator interface {
	Name() string
	Generate(ctx context.Context, req generator.Request) ([]string, error)
}

// Assessor reviews the combined output of both agents.
type Assessor interface {
	Name() string
	Assess(ctx context.Context, review generator.Review) (string, error)
}

// Logger is the minimal logging surface used by the controller.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Deps are the collaborators a controller drives. Example sources are
// optional; a nil source behaves like one that found nothing.
type Deps struct {
	LinkedIn         PostGenerator
	X                PostGenerator
	Validator        Assessor
	LinkedInExamples scraper.Source
	XExamples        scraper.Source
	Store            publisher.Store
}

// Option customizes a controller.
type Option func(*Controller)

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithBounds overrides the accepted post-count range.
func WithBounds(b Bounds) Option {
	return func(c *Controller) {
		if b.Min > 0 && b.Max >= b.Min {
			c.bounds = b
		}
	}
}

// WithBaseContext sets the parent context of every run.
func WithBaseContext(ctx context.Context) Option {
	return func(c *Controller) {
		if ctx != nil {
			c.base = ctx
		}
	}
}

// Controller owns the single job slot. Submit and Status never block on a
// running job; the job itself runs on its own goroutine.
type Controller struct {
	deps   Deps
	logger Logger
	clock  func() time.Time
	bounds Bounds
	base   context.Context

	mu      sync.RWMutex
	current *record
}

func New(deps Deps, opts ...Option) (*Controller, error) {
	if deps.LinkedIn == nil || deps.X == nil {
		return nil, errors.New("job controller: both platform agents are required")
	}
	if deps.Validator == nil {
		return nil, errors.New("job controller: validator is required")
	}
	if deps.Store == nil {
		return nil, errors.New("job controller: artifact store is required")
	}
	c := &Controller{
		deps:   deps,
		logger: nopLogger{},
		clock:  time.Now,
		bounds: DefaultBounds,
		base:   context.Background(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Bounds returns the accepted post-count range.
func (c *Controller) Bounds() Bounds { return c.bounds }

// Submit accepts spec when no job is active and starts it in the background.
func (c *Controller) Submit(spec Spec) (*Run, error) {
	c.mu.Lock()
	if c.current != nil && c.current.state.Active() {
		c.mu.Unlock()
		return nil, ErrJobInProgress
	}
	if err := spec.Validate(c.bounds); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	now := c.now()
	rec := &record{
		runID:     uuid.NewString(),
		spec:      spec.clone(),
		state:     StateRunning,
		progress:  "queued",
		createdAt: now,
		updatedAt: now,
	}
	c.current = rec
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(c.base)
	run := newRun(rec.runID, cancel)
	c.logger.Printf("[JOB %s] accepted: %d posts per platform", rec.runID, rec.spec.NumPosts)
	go c.execute(ctx, rec, run)
	return run, nil
}

// Status returns a consistent snapshot of the job slot.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return Status{State: StateIdle, Progress: "waiting for a job"}
	}
	return c.current.snapshot()
}

func (c *Controller) execute(ctx context.Context, rec *record, run *Run) {
	defer run.finish()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Printf("[JOB %s] worker panicked: %v", rec.runID, r)
			c.update(rec, func(r2 *record) {
				r2.state = StateFailed
				r2.progress = "internal error"
				r2.err = fmt.Sprintf("job worker panicked: %v", r)
				r2.result = nil
				r2.completedAt = r2.updatedAt
			})
		}
	}()
	spec := rec.spec
	id := rec.runID

	c.progress(rec, "scraping LinkedIn examples")
	liOut := c.fetch(ctx, id, "linkedin", c.deps.LinkedInExamples, scraper.Query{URLs: spec.LinkedInSeeds})
	c.progress(rec, "scraping X examples")
	xOut := c.fetch(ctx, id, "x", c.deps.XExamples, scraper.Query{URLs: spec.XSeeds, SearchTerms: spec.XSearchTerms, Handles: spec.XHandles})

	liExamples := scraper.FormatExamples("LinkedIn", liOut.Examples)
	xExamples := scraper.FormatExamples("X", xOut.Examples)

	c.progress(rec, "generating LinkedIn and X content in parallel")
	li, x := c.dispatch(ctx, spec, liExamples, xExamples)

	failures := map[string]string{}
	if li.err != nil {
		failures["linkedin"] = li.err.Error()
		c.logger.Printf("[JOB %s] linkedin generation failed: %v", id, li.err)
	}
	if x.err != nil {
		failures["x"] = x.err.Error()
		c.logger.Printf("[JOB %s] x generation failed: %v", id, x.err)
	}

	if li.err != nil && x.err != nil {
		gerr := &GenerationError{LinkedIn: li.err, X: x.err}
		c.update(rec, func(r *record) {
			r.state = StateFailed
			r.progress = "generation failed"
			r.err = gerr.Error()
			r.platformErrors = failures
			r.completedAt = r.updatedAt
		})
		c.logger.Printf("[JOB %s] failed: %v", id, gerr)
		return
	}

	c.update(rec, func(r *record) {
		r.state = StateValidating
		r.progress = "validating generated content"
		r.platformErrors = failures
	})

	review := generator.Review{
		Context:  spec.Context,
		Examples: append(append([]string(nil), liExamples...), xExamples...),
		LinkedIn: li.posts,
		X:        x.posts,
	}
	if li.err != nil {
		review.LinkedInErr = li.err.Error()
	}
	if x.err != nil {
		review.XErr = x.err.Error()
	}
	assessment, aerr := c.assess(ctx, review)
	if aerr != nil {
		c.logger.Printf("[JOB %s] validation unavailable: %v", id, aerr)
	}

	c.progress(rec, "compiling results")
	completedAt := c.now()
	compiled := publisher.Compile(publisher.CompileInput{
		RunID:          id,
		Context:        spec.Context,
		RequestedPosts: spec.NumPosts,
		LinkedIn:       li.posts,
		LinkedInErr:    li.err,
		X:              x.posts,
		XErr:           x.err,
		Assessment:     assessment,
		AssessmentErr:  aerr,
		Agents:         c.agentsUsed(li, x, aerr),
		StartedAt:      rec.createdAt,
		CompletedAt:    completedAt,
	})

	stamp, perr := c.persist(ctx, compiled, completedAt)
	if perr != nil {
		c.logger.Printf("[JOB %s] persistence failed: %v", id, perr)
	} else {
		c.logger.Printf("[JOB %s] artifact saved as %s", id, publisher.FileName(stamp))
	}

	c.update(rec, func(r *record) {
		r.state = StateDone
		r.progress = "complete"
		r.result = &compiled
		r.artifact = stamp
		if perr != nil {
			r.persistenceErr = perr.Error()
		}
		r.completedAt = completedAt
	})
	c.logger.Printf("[JOB %s] done: %d LinkedIn + %d X posts", id, len(li.posts), len(x.posts))
}

func (c *Controller) persist(ctx context.Context, compiled publisher.CompiledOutput, completedAt time.Time) (stamp string, err error) {
	defer func() {
		if r := recover(); r != nil {
			stamp, err = "", fmt.Errorf("persisting output panicked: %v", r)
		}
	}()
	return c.deps.Store.Save(ctx, publisher.Artifact{
		CompletedAt: completedAt,
		Body:        []byte(publisher.Render(compiled)),
	})
}

func (c *Controller) fetch(ctx context.Context, id, platform string, src scraper.Source, q scraper.Query) (out scraper.Outcome) {
	if src == nil {
		return scraper.Empty()
	}
	defer func() {
		if r := recover(); r != nil {
			out = scraper.Failed(fmt.Errorf("%s scraper panicked: %v", platform, r))
		}
		switch out.Kind {
		case scraper.OutcomeFailed:
			c.logger.Printf("[JOB %s] %s examples unavailable, continuing without: %v", id, platform, out.Err)
		case scraper.OutcomeExamples:
			c.logger.Printf("[JOB %s] %s examples: %d", id, platform, len(out.Examples))
		}
	}()
	out = src.Fetch(ctx, q)
	if out.Kind == scraper.OutcomeFailed {
		out.Examples = nil
	}
	return out
}

func (c *Controller) assess(ctx context.Context, review generator.Review) (summary string, err error) {
	defer func() {
		if r := recover(); r != nil {
			summary, err = "", fmt.Errorf("validator panicked: %v", r)
		}
	}()
	return c.deps.Validator.Assess(ctx, review)
}

func (c *Controller) agentsUsed(li, x platformResult, aerr error) []string {
	var agents []string
	if li.err == nil {
		agents = append(agents, c.deps.LinkedIn.Name())
	}
	if x.err == nil {
		agents = append(agents, c.deps.X.Name())
	}
	if aerr == nil {
		agents = append(agents, c.deps.Validator.Name())
	}
	return agents
}

func (c *Controller) progress(rec *record, msg string) {
	c.update(rec, func(r *record) { r.progress = msg })
}

// update mutates rec under the slot lock. Only the goroutine executing rec
// calls it, and rec stays current until it is terminal.
func (c *Controller) update(rec *record, fn func(*record)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec.updatedAt = c.now()
	fn(rec)
}

func (c *Controller) now() time.Time {
	return c.clock().UTC()
}
