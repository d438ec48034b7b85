package publisher

import (
	"fmt"
	"strings"
	"time"
)

const contextPreviewLimit = 100

// PlatformSection is the ordered output of one platform agent.
type PlatformSection struct {
	Platform string   `json:"platform"`
	Posts    []string `json:"posts"`
	Error    string   `json:"error,omitempty"`
}

// Metadata describes the run that produced a compiled output.
type Metadata struct {
	RunID          string    `json:"run_id"`
	Context        string    `json:"context"`
	RequestedPosts int       `json:"requested_posts"`
	LinkedInCount  int       `json:"linkedin_count"`
	XCount         int       `json:"x_count"`
	Agents         []string  `json:"agents"`
	StartedAt      time.Time `json:"started_at"`
	CompletedAt    time.Time `json:"completed_at"`
}

// CompiledOutput is the final merged result of a job. LinkedIn always
// precedes X.
type CompiledOutput struct {
	LinkedIn            PlatformSection `json:"linkedin"`
	X                   PlatformSection `json:"x"`
	Assessment          string          `json:"assessment"`
	ValidationAvailable bool            `json:"validation_available"`
	Metadata            Metadata        `json:"metadata"`
}

// CompileInput gathers everything the compiler merges.
type CompileInput struct {
	RunID          string
	Context        string
	RequestedPosts int
	LinkedIn       []string
	LinkedInErr    error
	X              []string
	XErr           error
	Assessment     string
	AssessmentErr  error
	Agents         []string
	StartedAt      time.Time
	CompletedAt    time.Time
}

// Compile merges both platform results and the assessment. The result does
// not share slices with the input.
func Compile(in CompileInput) CompiledOutput {
	out := CompiledOutput{
		LinkedIn: section("LinkedIn", in.LinkedIn, in.LinkedInErr),
		X:        section("X", in.X, in.XErr),
		Metadata: Metadata{
			RunID:          in.RunID,
			Context:        preview(in.Context, contextPreviewLimit),
			RequestedPosts: in.RequestedPosts,
			LinkedInCount:  len(in.LinkedIn),
			XCount:         len(in.X),
			Agents:         append([]string(nil), in.Agents...),
			StartedAt:      in.StartedAt,
			CompletedAt:    in.CompletedAt,
		},
	}
	if in.AssessmentErr != nil {
		out.Assessment = fmt.Sprintf("Validation unavailable: %v", in.AssessmentErr)
	} else {
		out.Assessment = in.Assessment
		out.ValidationAvailable = true
	}
	return out
}

// Clone returns a deep copy.
func (c CompiledOutput) Clone() CompiledOutput {
	c.LinkedIn.Posts = append([]string(nil), c.LinkedIn.Posts...)
	c.X.Posts = append([]string(nil), c.X.Posts...)
	c.Metadata.Agents = append([]string(nil), c.Metadata.Agents...)
	return c
}

func section(platform string, posts []string, err error) PlatformSection {
	s := PlatformSection{Platform: platform, Posts: append([]string{}, posts...)}
	if err != nil {
		s.Error = err.Error()
	}
	return s
}

func preview(s string, limit int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
