package judge

import (
	"context"
	"strings"
	"testing"
)

// TestParseEvaluation covers the JSON verdict decoding.
func TestParseEvaluation(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantScore   float64
		wantSafe    bool
		wantErr     bool
		errContains string
	}{
		{
			name:      "clean JSON",
			text:      `{"overall_score": 0.85, "reasoning": "solid work", "is_safe": true}`,
			wantScore: 0.85,
			wantSafe:  true,
		},
		{
			name:      "fenced JSON",
			text:      "```json\n{\"overall_score\": 0.4, \"reasoning\": \"drifted\", \"is_safe\": true}\n```",
			wantScore: 0.4,
			wantSafe:  true,
		},
		{
			name:      "prose around the object",
			text:      `Here is my evaluation: {"overall_score": 0.2, "reasoning": "unsafe", "is_safe": false} Hope that helps.`,
			wantScore: 0.2,
			wantSafe:  false,
		},
		{
			name:      "score above one clamps",
			text:      `{"overall_score": 1.7, "reasoning": "x", "is_safe": true}`,
			wantScore: 1.0,
			wantSafe:  true,
		},
		{
			name:      "negative score clamps",
			text:      `{"overall_score": -0.3, "reasoning": "x", "is_safe": true}`,
			wantScore: 0.0,
			wantSafe:  true,
		},
		{
			name:        "no JSON object",
			text:        "I cannot evaluate this.",
			wantErr:     true,
			errContains: "no JSON object",
		},
		{
			name:        "malformed JSON",
			text:        `{"overall_score": oops}`,
			wantErr:     true,
			errContains: "decoding evaluation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseEvaluation(tt.text)

			if (err != nil) != tt.wantErr {
				t.Fatalf("parseEvaluation() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("Error message %q doesn't contain %q", err.Error(), tt.errContains)
				}
				return
			}

			if result.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", result.Score, tt.wantScore)
			}
			if result.Safe != tt.wantSafe {
				t.Errorf("Safe = %t, want %t", result.Safe, tt.wantSafe)
			}
		})
	}
}

func TestEvaluationPrompt(t *testing.T) {
	prompt := evaluationPrompt("the produced output", []string{"first goal", "second goal"})

	for _, want := range []string{"the produced output", "first goal", "second goal", "overall_score", "is_safe"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt doesn't contain %q", want)
		}
	}
}

func TestNewAnthropicJudgeRequiresKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	if _, err := NewAnthropicJudge(Config{Type: "anthropic"}); err == nil {
		t.Error("NewAnthropicJudge() error = nil without API key, want error")
	}
}

func TestNewAnthropicJudgeDefaults(t *testing.T) {
	j, err := NewAnthropicJudge(Config{Type: "anthropic", APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewAnthropicJudge() error = %v, want nil", err)
	}

	if string(j.model) != defaultModel {
		t.Errorf("model = %q, want %q", j.model, defaultModel)
	}
	if j.maxTokens != defaultMaxTokens {
		t.Errorf("maxTokens = %d, want %d", j.maxTokens, defaultMaxTokens)
	}
}

func TestAnthropicMonitorRecordsGoals(t *testing.T) {
	j, err := NewAnthropicJudge(Config{Type: "anthropic", APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewAnthropicJudge() error = %v, want nil", err)
	}

	req := MonitorRequest{
		TaskID:       "t1",
		Task:         "write the scraper",
		Instructions: []string{"use the standard library"},
	}
	if err := j.Monitor(context.Background(), req); err != nil {
		t.Fatalf("Monitor() error = %v, want nil", err)
	}

	goals := j.monitored.lookup("t1")
	want := []string{"write the scraper", "use the standard library"}
	if len(goals) != len(want) {
		t.Fatalf("monitored goals = %v, want %v", goals, want)
	}
	for i := range want {
		if goals[i] != want[i] {
			t.Errorf("goals[%d] = %q, want %q", i, goals[i], want[i])
		}
	}
}
