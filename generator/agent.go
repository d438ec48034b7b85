package generator

import (
	"context"
	"errors"
	"fmt"
)

// Agent 负责为其角色对应的单一平台生成帖子。
type Agent struct {
	llm  LLMClient
	role Role
}

func NewAgent(llm LLMClient, role Role) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if role.Platform == "" {
		return nil, errors.New("agent role must target a platform")
	}
	return &Agent{llm: llm, role: role}, nil
}

// Name returns the role name, used in run metadata.
func (a *Agent) Name() string { return a.role.Name }

// Platform returns the platform this agent writes for.
func (a *Agent) Platform() Platform { return a.role.Platform }

// Generate 通过一次补全调用生成至多 req.Count 条帖子。
func (a *Agent) Generate(ctx context.Context, req Request) ([]string, error) {
	if req.Count <= 0 {
		return nil, fmt.Errorf("%s: post count must be positive", a.role.Platform)
	}
	raw, err := a.llm.Complete(ctx, BuildPostsPrompt(a.role, req))
	if err != nil {
		return nil, fmt.Errorf("%s generation: %w", a.role.Platform, err)
	}
	posts, err := ParsePosts(raw, req.Count)
	if err != nil {
		return nil, fmt.Errorf("%s generation: %w", a.role.Platform, err)
	}
	return posts, nil
}
