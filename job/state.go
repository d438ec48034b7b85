package job

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"thought_leadership_workflow/publisher"
)

// State is the phase of the current job.
type State string

const (
	StateIdle       State = "idle"
	StateRunning    State = "running"
	StateValidating State = "validating"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Active reports whether a job in this state holds the slot.
func (s State) Active() bool {
	return s == StateRunning || s == StateValidating
}

// Terminal reports whether the job has finished.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

var (
	// ErrInvalidSpec rejects a submission before any state change.
	ErrInvalidSpec = errors.New("invalid job spec")
	// ErrJobInProgress rejects a submission while another job is active.
	ErrJobInProgress = errors.New("a job is already in progress")
)

// GenerationError reports that every platform agent failed.
type GenerationError struct {
	LinkedIn error
	X        error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("all platform generations failed: linkedin: %v; x: %v", e.LinkedIn, e.X)
}

func (e *GenerationError) Unwrap() []error {
	return []error{e.LinkedIn, e.X}
}

// Bounds limits the requested post count per platform.
type Bounds struct {
	Min int
	Max int
}

var DefaultBounds = Bounds{Min: 1, Max: 5}

// Spec is a job submission. It is copied on acceptance.
type Spec struct {
	Context       string   `json:"context"`
	NumPosts      int      `json:"num_posts"`
	LinkedInSeeds []string `json:"linkedin_urls,omitempty"`
	XSeeds        []string `json:"x_urls,omitempty"`
	XSearchTerms  []string `json:"x_search_terms,omitempty"`
	XHandles      []string `json:"x_handles,omitempty"`
}

// Validate requires a non-blank context and a post count within b.
func (s Spec) Validate(b Bounds) error {
	if strings.TrimSpace(s.Context) == "" {
		return fmt.Errorf("%w: context must not be empty", ErrInvalidSpec)
	}
	if s.NumPosts < b.Min || s.NumPosts > b.Max {
		return fmt.Errorf("%w: num_posts must be between %d and %d, got %d", ErrInvalidSpec, b.Min, b.Max, s.NumPosts)
	}
	return nil
}

func (s Spec) clone() Spec {
	s.Context = strings.TrimSpace(s.Context)
	s.LinkedInSeeds = append([]string(nil), s.LinkedInSeeds...)
	s.XSeeds = append([]string(nil), s.XSeeds...)
	s.XSearchTerms = append([]string(nil), s.XSearchTerms...)
	s.XHandles = append([]string(nil), s.XHandles...)
	return s
}

// Status is a point-in-time copy of the job slot. Result is set only once
// the job is done; Error only once it failed.
type Status struct {
	RunID            string                    `json:"run_id,omitempty"`
	State            State                     `json:"state"`
	Progress         string                    `json:"progress"`
	Result           *publisher.CompiledOutput `json:"result,omitempty"`
	Error            string                    `json:"error,omitempty"`
	PlatformErrors   map[string]string         `json:"platform_errors,omitempty"`
	ArtifactName     string                    `json:"artifact_name,omitempty"`
	PersistenceError string                    `json:"persistence_error,omitempty"`
	CreatedAt        time.Time                 `json:"created_at"`
	UpdatedAt        time.Time                 `json:"updated_at"`
	CompletedAt      time.Time                 `json:"completed_at"`
}

// record is the controller-owned mutable job. Guarded by Controller.mu.
type record struct {
	runID          string
	spec           Spec
	state          State
	progress       string
	result         *publisher.CompiledOutput
	err            string
	platformErrors map[string]string
	artifact       string
	persistenceErr string
	createdAt      time.Time
	updatedAt      time.Time
	completedAt    time.Time
}

func (r *record) snapshot() Status {
	s := Status{
		RunID:            r.runID,
		State:            r.state,
		Progress:         r.progress,
		Error:            r.err,
		ArtifactName:     r.artifact,
		PersistenceError: r.persistenceErr,
		CreatedAt:        r.createdAt,
		UpdatedAt:        r.updatedAt,
		CompletedAt:      r.completedAt,
	}
	if r.result != nil {
		clone := r.result.Clone()
		s.Result = &clone
	}
	if len(r.platformErrors) > 0 {
		s.PlatformErrors = make(map[string]string, len(r.platformErrors))
		for k, v := range r.platformErrors {
			s.PlatformErrors[k] = v
		}
	}
	return s
}
