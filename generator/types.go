package generator

// Platform identifies a social network a role writes for.
type Platform string

const (
	PlatformLinkedIn Platform = "LinkedIn"
	PlatformX        Platform = "X"
)

// Role 是 agent 固定的行为配置。
type Role struct {
	Name     string
	Platform Platform
	System   string
	// Requirements are appended to every generation request.
	Requirements []string
	// 未抓取到示例时作为风格参考。
	FallbackExample string
}

// Request 描述单一平台的一批帖子。
type Request struct {
	Context  string
	Examples []string
	Count    int
}

// Review is the input of a validation pass. A nil post slice with a
// non-empty *Err means the platform was not generated.
type Review struct {
	Context     string
	Examples    []string
	LinkedIn    []string
	X           []string
	LinkedInErr string
	XErr        string
}
