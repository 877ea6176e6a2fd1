package resolver

import "regexp"

// Supported platform identifiers, as reported by the parse service.
const (
	PlatformDouyin      = "douyin"
	PlatformKuaishou    = "kuaishou"
	PlatformXiaohongshu = "xiaohongshu"
)

// platformPatterns is checked in order; the first match wins.
var platformPatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{PlatformDouyin, regexp.MustCompile(`(v\.douyin\.com|douyin\.com)`)},
	{PlatformKuaishou, regexp.MustCompile(`(kuaishou\.com|gifshow\.com)`)},
	{PlatformXiaohongshu, regexp.MustCompile(`(xiaohongshu\.com|xhslink\.com)`)},
}

// Platform guesses the platform a share link belongs to from its host.
// It returns "" for links the service does not support.
func Platform(link string) string {
	for _, p := range platformPatterns {
		if p.pattern.MatchString(link) {
			return p.name
		}
	}
	return ""
}
