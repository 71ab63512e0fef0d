package prompts

import (
	"strings"
	"testing"
	"time"
)

func TestFormatProbability(t *testing.T) {
	t.Parallel()

	tests := []struct {
		p    float64
		want string
	}{
		{0.6789, "67.89%"},
		{0.5, "50.0%"},
		{0.123456, "12.35%"},
		{0.01, "1.0%"},
		{1, "100.0%"},
		{0.999, "99.9%"},
	}

	for _, tt := range tests {
		if got := FormatProbability(tt.p); got != tt.want {
			t.Errorf("FormatProbability(%v) = %q, want %q", tt.p, got, tt.want)
		}
	}
}

func TestWrap(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("word ", 40)
	got := Wrap("Title\n" + long)

	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if lines[0] != "Title" {
		t.Errorf("first line = %q, want Title", lines[0])
	}
	if len(lines) < 3 {
		t.Fatalf("expected the long paragraph to wrap, got %d lines", len(lines))
	}
	for _, l := range lines {
		if len(l) > WrapWidth {
			t.Errorf("line longer than %d: %q", WrapWidth, l)
		}
	}
	if !strings.HasSuffix(got, "\n") {
		t.Error("wrapped text should end with a newline")
	}
}

func TestBetSystemPromptMentionsTagsAndCeiling(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	p := BetSystemPrompt(Character("gpt-4"), now, 50)

	for _, want := range []string{"<YES>amount</YES>", "<NO>amount</NO>", "<ABSTAIN/>", "between 1 and 50", "2024-03-01 12:00", "GPT-4"} {
		if !strings.Contains(p, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}

func TestBetUserPrompt(t *testing.T) {
	t.Parallel()

	p := BetUserPrompt("Will it rain?", "Resolves YES if it rains.", "67.89%", 1200)
	for _, want := range []string{"Question: Will it rain?", "Description: Resolves YES if it rains.", "Current probability: 67.89%", "M$1200"} {
		if !strings.Contains(p, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
}

func TestCharacterFallback(t *testing.T) {
	t.Parallel()

	if got := Character("llama-3"); !strings.Contains(got, "llama-3") {
		t.Errorf("fallback character should name the model, got %q", got)
	}
	if Character("gpt-3.5-turbo") == Character("gpt-4") {
		t.Error("gpt-3.5 and gpt-4 should have distinct characters")
	}
}

func TestDisclaimerNamesModel(t *testing.T) {
	t.Parallel()

	d := Disclaimer("gpt-4", "my reasoning <NO>20</NO>")
	if !strings.Contains(d, "gpt-4") || !strings.HasSuffix(d, "my reasoning <NO>20</NO>") {
		t.Errorf("unexpected disclaimer: %q", d)
	}
}
