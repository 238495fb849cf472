package ai

import (
	"errors"
	"testing"
)

type testPayload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestUnmarshalFlexible(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  testPayload
	}{
		{
			name:  "standard json",
			input: `{"name": "test", "count": 3}`,
			want:  testPayload{Name: "test", Count: 3},
		},
		{
			name:  "double encoded",
			input: `"{\"name\": \"test\", \"count\": 3}"`,
			want:  testPayload{Name: "test", Count: 3},
		},
		{
			name:  "malformed but repairable",
			input: `{name: "test", count: 3}`,
			want:  testPayload{Name: "test", Count: 3},
		},
		{
			name:  "fenced json",
			input: "```json\n{\"name\": \"test\", \"count\": 3}\n```",
			want:  testPayload{Name: "test", Count: 3},
		},
		{
			name:  "duplicate leading brace",
			input: `{{"name": "test", "count": 3}`,
			want:  testPayload{Name: "test", Count: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got testPayload
			if err := UnmarshalFlexible(tt.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("UnmarshalFlexible() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestUnmarshalFlexible_Unrepairable(t *testing.T) {
	var got testPayload
	err := UnmarshalFlexible("this is not json at all {", &got)
	if err == nil {
		t.Fatal("expected error for unrepairable input")
	}
	if !errors.Is(err, ErrUnparsable) {
		t.Errorf("unrepairable input must be marked ErrUnparsable, got %v", err)
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "sql fence with language tag",
			input: "```sql\nSELECT 1\n```",
			want:  "SELECT 1",
		},
		{
			name:  "fence without language tag",
			input: "```\nSELECT 1\n```",
			want:  "SELECT 1",
		},
		{
			name:  "no fence",
			input: "SELECT 1",
			want:  "SELECT 1",
		},
		{
			name:  "surrounding whitespace",
			input: "\n  ```sql\nSELECT a FROM t\n```  \n",
			want:  "SELECT a FROM t",
		},
		{
			name:  "single line fence",
			input: "```SELECT 1```",
			want:  "SELECT 1",
		},
		{
			name:  "multi line statement",
			input: "```sql\nSELECT a\nFROM t\nWHERE a > 1\n```",
			want:  "SELECT a\nFROM t\nWHERE a > 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFence(tt.input); got != tt.want {
				t.Errorf("StripCodeFence() = %q, want %q", got, tt.want)
			}
		})
	}
}
