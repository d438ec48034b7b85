package generator

import (
	"errors"
	"regexp"
	"strings"
)

// ErrEmptyResponse is returned when the model produced no text at all.
var ErrEmptyResponse = errors.New("model returned empty response")

var (
	separatorRe  = regexp.MustCompile(`^\s*(?:-{3,}|\*{3,}|_{3,})\s*$`)
	postHeaderRe = regexp.MustCompile(`(?i)^\s*(?:#{1,6}\s*)?\**\s*post\s*#?\s*\d+\s*\**\s*[:.)-]?\s*\**\s*`)
)

// ParsePosts 将模型输出拆分为独立帖子。最多返回 limit 条（limit <= 0 表示不限），
// 不足时不会补造。
func ParsePosts(raw string, limit int) ([]string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	blocks := splitBlocks(text)

	// 模型给帖子编号时，没有标题的块视为开场白或结束语。
	headed := false
	for _, b := range blocks {
		if b.headed {
			headed = true
			break
		}
	}

	posts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if headed && !b.headed {
			continue
		}
		if p := strings.TrimSpace(b.body); p != "" {
			posts = append(posts, p)
		}
	}
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

type block struct {
	body   string
	headed bool
}

func splitBlocks(text string) []block {
	var (
		out     []block
		cur     []string
		curHead bool
	)
	flush := func() {
		body := strings.TrimSpace(strings.Join(cur, "\n"))
		if body != "" || curHead {
			out = append(out, block{body: body, headed: curHead})
		}
		cur = nil
		curHead = false
	}

	for _, line := range strings.Split(text, "\n") {
		if separatorRe.MatchString(line) {
			flush()
			continue
		}
		if loc := postHeaderRe.FindStringIndex(line); loc != nil {
			if len(cur) > 0 && strings.TrimSpace(strings.Join(cur, "")) != "" || curHead {
				flush()
			}
			curHead = true
			rest := strings.TrimSpace(line[loc[1]:])
			if rest != "" {
				cur = append(cur, rest)
			}
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return out
}
