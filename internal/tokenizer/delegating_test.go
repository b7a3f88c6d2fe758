package tokenizer

import (
	"context"
	"errors"
	"testing"
)

type fakeCounter struct {
	calls  [][]string
	result int
	err    error
}

func (f *fakeCounter) CountTokens(_ context.Context, texts []string) (int, error) {
	f.calls = append(f.calls, texts)
	return f.result, f.err
}

func TestDelegating_ReturnsCounterValue(t *testing.T) {
	for _, want := range []int{0, 1, 42, 16000} {
		counter := &fakeCounter{result: want}
		tok, err := NewVoyage("voyage-2", counter)
		if err != nil {
			t.Fatalf("NewVoyage: %v", err)
		}

		got, err := tok.CountTokens(context.Background(), Text("some text"))
		if err != nil {
			t.Fatalf("CountTokens error: %v", err)
		}
		if got != want {
			t.Errorf("CountTokens = %d, want %d", got, want)
		}
		if len(counter.calls) != 1 || len(counter.calls[0]) != 1 || counter.calls[0][0] != "some text" {
			t.Errorf("counter calls: got %v, want one single-element call", counter.calls)
		}
	}
}

func TestDelegating_NonTextInvalid(t *testing.T) {
	counter := &fakeCounter{result: 3}
	tok, err := NewAnthropic("claude-sonnet-4-6", counter)
	if err != nil {
		t.Fatalf("NewAnthropic: %v", err)
	}

	for _, in := range []Input{nil, Messages{}, Messages{{Role: "user", Content: "hi"}}} {
		if _, err := tok.CountTokens(context.Background(), in); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("CountTokens(%v): got %v, want ErrInvalidArgument", in, err)
		}
	}
	if len(counter.calls) != 0 {
		t.Errorf("counter should not be called for invalid input, got %d calls", len(counter.calls))
	}
}

func TestDelegating_PropagatesCounterError(t *testing.T) {
	boom := errors.New("boom")
	tok, _ := NewVoyage("voyage-2", &fakeCounter{err: boom})

	if _, err := tok.CountTokens(context.Background(), Text("x")); !errors.Is(err, boom) {
		t.Errorf("expected counter error, got %v", err)
	}
}

func TestNewDelegating_RequiresCounter(t *testing.T) {
	if _, err := NewDelegating("voyage-2", nil, VoyageLimits); err == nil {
		t.Error("expected error for nil counter")
	}
}

func TestVoyageLimits(t *testing.T) {
	tests := []struct {
		model  string
		input  int
		output int
	}{
		{"voyage-large-2", 16000, 0},
		{"voyage-large-2-instruct", 16000, 0},
		{"voyage-code-2", 16000, 0},
		{"voyage-2", 4000, 0},
		{"voyage-lite-02-instruct", 4000, 0},
		{"voyage-3", 32000, 0},
		{"voyage-3.5-lite", 32000, 0},
		{"voyage-code-3", 32000, 0},
		{"unknown-model", DefaultVoyageMaxTokens, 0},
	}

	for _, tt := range tests {
		tok, _ := NewVoyage(tt.model, &fakeCounter{})
		if got := tok.MaxInputTokens(); got != tt.input {
			t.Errorf("%s: max input = %d, want %d", tt.model, got, tt.input)
		}
		if got := tok.MaxOutputTokens(); got != tt.output {
			t.Errorf("%s: max output = %d, want %d", tt.model, got, tt.output)
		}
	}
}

func TestLimits_LongestPrefixWins(t *testing.T) {
	l := Limits{
		Input: []PrefixLimit{
			{"claude", 100},
			{"claude-3", 200},
			{"claude-3-5", 300},
		},
		DefaultInput: 7,
	}

	if got := l.MaxInput("claude-3-5-sonnet"); got != 300 {
		t.Errorf("claude-3-5-sonnet: got %d, want 300", got)
	}
	if got := l.MaxInput("claude-3-opus"); got != 200 {
		t.Errorf("claude-3-opus: got %d, want 200", got)
	}
	if got := l.MaxInput("claude-instant"); got != 100 {
		t.Errorf("claude-instant: got %d, want 100", got)
	}
	if got := l.MaxInput("gpt-4"); got != 7 {
		t.Errorf("gpt-4: got %d, want default 7", got)
	}
}

func TestVoyage_TokensLeftForUntabledModel(t *testing.T) {
	tok, err := NewVoyage("voyage-experimental", &fakeCounter{result: 100})
	if err != nil {
		t.Fatalf("NewVoyage: %v", err)
	}
	left, err := TokensLeft(context.Background(), tok, Text("x"))
	if err != nil {
		t.Fatalf("TokensLeft: %v", err)
	}
	if want := DefaultVoyageMaxTokens - 100; left != want {
		t.Errorf("left: got %d, want %d", left, want)
	}
}
