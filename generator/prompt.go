package generator

import (
	"fmt"
	"strings"
)

// Prompt 表示发送给 LLM 的消息集合。
type Prompt struct {
	System string
	User   string
}

const (
	postSeparator = "---"
	noExamples    = "(no example posts available)"
)

// BuildPostsPrompt 生成平台 agent 的单次生成提示词。
func BuildPostsPrompt(role Role, req Request) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Generate %d unique %s posts based on the following.\n\n", req.Count, role.Platform))

	sb.WriteString("CONTEXT:\n")
	sb.WriteString(strings.TrimSpace(req.Context))
	sb.WriteString("\n\n")

	sb.WriteString("EXAMPLE POSTS (for style reference):\n")
	sb.WriteString(joinExamples(req.Examples, role.FallbackExample))
	sb.WriteString("\n\n")

	sb.WriteString("REQUIREMENTS:\n")
	sb.WriteString(fmt.Sprintf("- Create exactly %d distinct posts\n", req.Count))
	for _, r := range role.Requirements {
		sb.WriteString(fmt.Sprintf("- %s\n", r))
	}
	sb.WriteString("- Follow the style and tone of the example posts\n")
	sb.WriteString("- Each post must be self-contained\n\n")

	sb.WriteString("Format every post exactly like this and output nothing else:\n")
	sb.WriteString(postSeparator + "\nPost [number]\n[post content]\n" + postSeparator + "\n")

	return Prompt{
		System: role.System,
		User:   sb.String(),
	}
}

// BuildValidationPrompt 生成针对合并输出的评审提示词。
func BuildValidationPrompt(role Role, review Review) Prompt {
	var sb strings.Builder
	sb.WriteString("Review the following generated posts.\n\n")

	sb.WriteString("ORIGINAL CONTEXT:\n")
	sb.WriteString(strings.TrimSpace(review.Context))
	sb.WriteString("\n\n")

	sb.WriteString("EXAMPLE POSTS:\n")
	sb.WriteString(joinExamples(review.Examples, ""))
	sb.WriteString("\n\n")

	writePlatformBlock(&sb, PlatformLinkedIn, review.LinkedIn, review.LinkedInErr)
	writePlatformBlock(&sb, PlatformX, review.X, review.XErr)

	sb.WriteString("VALIDATION CRITERIA:\n")
	sb.WriteString("1. Do all posts align with the provided context?\n")
	sb.WriteString("2. Do posts match the style and tone of the example posts?\n")
	sb.WriteString("3. Are there any duplicate or very similar posts?\n")
	sb.WriteString("4. Are LinkedIn posts 150-300 words?\n")
	sb.WriteString("5. Are X posts under 280 characters?\n")
	sb.WriteString("6. Is the message consistent between LinkedIn and X?\n")
	sb.WriteString("7. Is the content valuable and engaging?\n\n")
	sb.WriteString("Give a brief validation summary and state whether the posts meet the quality bar. ")
	sb.WriteString("If any post needs improvement, name it and say why.")

	return Prompt{
		System: role.System,
		User:   sb.String(),
	}
}

func writePlatformBlock(sb *strings.Builder, platform Platform, posts []string, failure string) {
	sb.WriteString(fmt.Sprintf("%s POSTS GENERATED:\n", strings.ToUpper(string(platform))))
	if len(posts) == 0 {
		reason := failure
		if reason == "" {
			reason = "no posts returned"
		}
		sb.WriteString(fmt.Sprintf("(not generated: %s)\n\n", reason))
		return
	}
	for i, p := range posts {
		sb.WriteString(fmt.Sprintf("%s\nPost %d\n%s\n", postSeparator, i+1, p))
	}
	sb.WriteString(postSeparator + "\n\n")
}

func joinExamples(examples []string, fallback string) string {
	var kept []string
	for _, e := range examples {
		if e = strings.TrimSpace(e); e != "" {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		if fallback != "" {
			return fallback
		}
		return noExamples
	}
	return strings.Join(kept, "\n\n"+postSeparator+"\n\n")
}
