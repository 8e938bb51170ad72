package ui

import "testing"

func TestTruncateMiddle(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"  padded  ", 10, "padded"},
		{"abcdefghij", 0, "abcdefghij"},
		{"abcdefghij", 3, "abc"},
		{"abcdefghij", 5, "ab…ij"},
		{"/home/user/.local/state/hitcard/log.jsonl", 16, "/home/us…g.jsonl"},
	}
	for _, tt := range tests {
		if got := truncateMiddle(tt.in, tt.limit); got != tt.want {
			t.Errorf("truncateMiddle(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}
