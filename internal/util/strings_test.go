package util

import (
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func TestTruncateANSI(t *testing.T) {
	redStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	boldStyle := lipgloss.NewStyle().Bold(true)

	tests := []struct {
		name     string
		input    string
		maxWidth int
		check    func(t *testing.T, result string)
	}{
		{
			name:     "short string unchanged",
			input:    "hello",
			maxWidth: 10,
			check: func(t *testing.T, result string) {
				if result != "hello" {
					t.Errorf("expected 'hello', got %q", result)
				}
			},
		},
		{
			name:     "long string truncated with ellipsis",
			input:    "https://v.douyin.com/abcdef",
			maxWidth: 10,
			check: func(t *testing.T, result string) {
				if result != "https:/..." {
					t.Errorf("expected 'https:/...', got %q", result)
				}
			},
		},
		{
			name:     "very small maxWidth returns ellipsis",
			input:    "hello",
			maxWidth: 3,
			check: func(t *testing.T, result string) {
				if result != "..." {
					t.Errorf("expected '...', got %q", result)
				}
			},
		},
		{
			name:     "styled string preserves style when not truncated",
			input:    redStyle.Render("hi"),
			maxWidth: 10,
			check: func(t *testing.T, result string) {
				if result != redStyle.Render("hi") {
					t.Errorf("styled string was modified when it shouldn't be")
				}
			},
		},
		{
			name:     "styled string truncated respects width",
			input:    redStyle.Render("hello world"),
			maxWidth: 8,
			check: func(t *testing.T, result string) {
				if width := lipgloss.Width(result); width > 8 {
					t.Errorf("result width %d exceeds maxWidth 8", width)
				}
			},
		},
		{
			name:     "bold styled string truncated",
			input:    boldStyle.Render("hello world"),
			maxWidth: 8,
			check: func(t *testing.T, result string) {
				if width := lipgloss.Width(result); width > 8 {
					t.Errorf("result width %d exceeds maxWidth 8", width)
				}
			},
		},
		{
			name:     "wide characters counted by visual width",
			input:    "抖音视频分享链接测试",
			maxWidth: 8,
			check: func(t *testing.T, result string) {
				if width := lipgloss.Width(result); width > 8 {
					t.Errorf("result width %d exceeds maxWidth 8", width)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TruncateANSI(tt.input, tt.maxWidth)
			tt.check(t, result)
		})
	}
}

func TestTruncateMiddle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		expected string
	}{
		{"short link unchanged", "https://a.test", 20, "https://a.test"},
		{"exact width unchanged", "https://a.test", 14, "https://a.test"},
		{"keeps both ends", "https://v.douyin.com/abcdefgh", 15, "https:...cdefgh"},
		{"odd budget favours head", "https://v.douyin.com/abcdefgh", 16, "https:/...cdefgh"},
		{"tiny width", "https://a.test", 3, "..."},
		{"empty string", "", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateMiddle(tt.input, tt.maxWidth)
			if got != tt.expected {
				t.Errorf("TruncateMiddle(%q, %d) = %q, want %q", tt.input, tt.maxWidth, got, tt.expected)
			}
			if tt.maxWidth > 3 && lipgloss.Width(got) > tt.maxWidth {
				t.Errorf("width %d exceeds %d", lipgloss.Width(got), tt.maxWidth)
			}
		})
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		input    string
		width    int
		expected string
	}{
		{"ab", 4, "ab  "},
		{"abcd", 4, "abcd"},
		{"abcdef", 4, "abcdef"},
		{"", 2, "  "},
	}

	for _, tt := range tests {
		if got := PadRight(tt.input, tt.width); got != tt.expected {
			t.Errorf("PadRight(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.expected)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{0, "-"},
		{-time.Second, "-"},
		{850 * time.Millisecond, "850ms"},
		{4200 * time.Millisecond, "4.2s"},
		{59 * time.Second, "59.0s"},
		{3*time.Minute + 5*time.Second, "3m05s"},
		{61*time.Minute + 400*time.Millisecond, "61m00s"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatDuration(tt.d); got != tt.expected {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.expected)
			}
		})
	}
}
