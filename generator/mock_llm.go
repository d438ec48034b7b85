package generator

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var requestedCountRe = regexp.MustCompile(`Generate (\d+) unique (\S+) posts`)

// MockLLM 一个离线占位实现，不调用外部模型：生成类提示返回编号帖子，
// 其余提示返回一段简短的评审文本。
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	match := requestedCountRe.FindStringSubmatch(prompt.User)
	if match == nil {
		return "Mock validation: posts were not reviewed by a real model.", nil
	}
	n, _ := strconv.Atoi(match[1])
	platform := match[2]

	var sb strings.Builder
	for i := 1; i <= n; i++ {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("Post %d\n", i))
		sb.WriteString(fmt.Sprintf("Placeholder %s post %d generated offline. #mock\n", platform, i))
	}
	sb.WriteString("---\n")
	return sb.String(), nil
}
