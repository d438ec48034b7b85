package job

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"thought_leadership_workflow/generator"
)

type platformResult struct {
	posts []string
	err   error
}

// dispatch runs both platform agents concurrently and waits for both. Tasks
// never return an error to the group, so one failure cannot cut the other
// short.
func (c *Controller) dispatch(ctx context.Context, spec Spec, liExamples, xExamples []string) (li, x platformResult) {
	var g errgroup.Group
	g.Go(func() error {
		li = generate(ctx, "linkedin", c.deps.LinkedIn, generator.Request{
			Context:  spec.Context,
			Examples: liExamples,
			Count:    spec.NumPosts,
		})
		return nil
	})
	g.Go(func() error {
		x = generate(ctx, "x", c.deps.X, generator.Request{
			Context:  spec.Context,
			Examples: xExamples,
			Count:    spec.NumPosts,
		})
		return nil
	})
	_ = g.Wait()
	return li, x
}

func generate(ctx context.Context, platform string, agent PostGenerator, req generator.Request) (res platformResult) {
	defer func() {
		if r := recover(); r != nil {
			res = platformResult{err: fmt.Errorf("%s agent panicked: %v", platform, r)}
		}
	}()
	posts, err := agent.Generate(ctx, req)
	if err != nil {
		return platformResult{err: err}
	}
	if len(posts) == 0 {
		return platformResult{err: fmt.Errorf("%s agent returned no posts", platform)}
	}
	if len(posts) > req.Count {
		posts = posts[:req.Count]
	}
	return platformResult{posts: append([]string(nil), posts...)}
}
