package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Validator annotates generated output with a quality assessment. It never
// rejects output.
type Validator struct {
	llm  LLMClient
	role Role
}

func NewValidator(llm LLMClient, role Role) (*Validator, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	return &Validator{llm: llm, role: role}, nil
}

// Name returns the role name, used in run metadata.
func (v *Validator) Name() string { return v.role.Name }

// Assess runs one review call over the combined output.
func (v *Validator) Assess(ctx context.Context, review Review) (string, error) {
	raw, err := v.llm.Complete(ctx, BuildValidationPrompt(v.role, review))
	if err != nil {
		return "", fmt.Errorf("validation: %w", err)
	}
	summary := strings.TrimSpace(raw)
	if summary == "" {
		return "", fmt.Errorf("validation: %w", ErrEmptyResponse)
	}
	return summary, nil
}
