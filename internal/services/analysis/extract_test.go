package analysis

import "testing"

func TestExtractJSON(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "json fence",
			content: "```json\n{\"difficulty\": \"Easy\"}\n```",
			want:    `{"difficulty": "Easy"}`,
		},
		{
			name:    "plain fence",
			content: "```\n{\"difficulty\": \"Easy\"}\n```",
			want:    `{"difficulty": "Easy"}`,
		},
		{
			name:    "fence with surrounding prose",
			content: "Here you go:\n```json\n{\"a\":1}\n```\nHope that helps!",
			want:    `{"a":1}`,
		},
		{
			name:    "raw json",
			content: `{"difficulty": "Easy"}`,
			want:    `{"difficulty": "Easy"}`,
		},
		{
			name:    "raw json with whitespace",
			content: "  \n{\"a\":1}\n  ",
			want:    `{"a":1}`,
		},
		{
			name:    "empty",
			content: "",
			want:    "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractJSON(tc.content); got != tc.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tc.content, got, tc.want)
			}
		})
	}
}
