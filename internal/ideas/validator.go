// Package ideas scores project ideas against simple risk heuristics before
// they are submitted as goals. The check is advisory: a low score produces
// findings to read, never a rejection.
package ideas

import (
	"fmt"
	"strings"
)

// RiskLevel classifies the severity of a finding.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
)

func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "Low"
	case RiskMedium:
		return "Medium"
	case RiskHigh:
		return "High"
	}
	return "Unknown"
}

// Finding categories.
const (
	CategoryMarket      = "Market Viability"
	CategoryFeasibility = "Technical Feasibility"
	CategoryResources   = "Resource Mismatch"
)

// Idea is a project idea submitted for validation.
type Idea struct {
	Description    string
	RequiredSkills []string
	RequiredAPIs   []string
	EstimatedHours int
	MarketNiche    string
}

// Finding is one issue the validator raised about an idea.
type Finding struct {
	Category   string
	Risk       RiskLevel
	Message    string
	Suggestion string
}

// Report is the outcome of validating one idea. Score runs from 0.0
// (maximal risk) to 1.0 (no findings).
type Report struct {
	Idea     Idea
	Score    float64
	Summary  string
	Findings []Finding
}

// Validator checks ideas against keyword heuristics. The keyword lists are
// fixed; a finding means "look closer", not "provably bad".
type Validator struct {
	saturatedMarkets []string
	complexKeywords  []string
	availableSkills  []string
}

// NewValidator creates a validator with the built-in heuristics.
func NewValidator() *Validator {
	return &Validator{
		saturatedMarkets: []string{"social media", "photo sharing", "food delivery"},
		complexKeywords:  []string{"real-time multiplayer", "blockchain", "new programming language"},
		availableSkills:  []string{"python", "javascript", "web development", "api integration"},
	}
}

// Validate runs every heuristic against the idea and produces a report.
func (v *Validator) Validate(idea Idea) *Report {
	var findings []Finding
	findings = append(findings, v.checkMarketViability(idea)...)
	findings = append(findings, v.checkTechnicalFeasibility(idea)...)
	findings = append(findings, v.checkResourceMismatch(idea)...)

	score := scoreFindings(findings)
	return &Report{
		Idea:     idea,
		Score:    score,
		Summary:  summarize(score),
		Findings: findings,
	}
}

// checkMarketViability flags ideas aimed at markets known to be saturated.
func (v *Validator) checkMarketViability(idea Idea) []Finding {
	var findings []Finding
	desc := strings.ToLower(idea.Description)
	niche := strings.ToLower(idea.MarketNiche)
	for _, market := range v.saturatedMarkets {
		if strings.Contains(niche, market) || strings.Contains(desc, market) {
			findings = append(findings, Finding{
				Category:   CategoryMarket,
				Risk:       RiskHigh,
				Message:    fmt.Sprintf("The market for %q is highly saturated", market),
				Suggestion: "Focus on a narrow niche within this market to stand out",
			})
		}
	}
	return findings
}

// checkTechnicalFeasibility flags keywords that signal deep technical work.
func (v *Validator) checkTechnicalFeasibility(idea Idea) []Finding {
	var findings []Finding
	desc := strings.ToLower(idea.Description)
	for _, keyword := range v.complexKeywords {
		if strings.Contains(desc, keyword) {
			findings = append(findings, Finding{
				Category:   CategoryFeasibility,
				Risk:       RiskHigh,
				Message:    fmt.Sprintf("The project involves %q, which carries high technical complexity", keyword),
				Suggestion: "Write a detailed technical plan and confirm the expertise exists before starting",
			})
		}
	}
	return findings
}

// checkResourceMismatch flags skills the pool lacks and oversized estimates.
func (v *Validator) checkResourceMismatch(idea Idea) []Finding {
	var findings []Finding

	var missing []string
	for _, skill := range idea.RequiredSkills {
		found := false
		for _, available := range v.availableSkills {
			if strings.ToLower(skill) == available {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, skill)
		}
	}
	if len(missing) > 0 {
		findings = append(findings, Finding{
			Category:   CategoryResources,
			Risk:       RiskMedium,
			Message:    fmt.Sprintf("The project needs skills not available in the pool: %s", strings.Join(missing, ", ")),
			Suggestion: "Plan time for learning them or bring in a collaborator who has them",
		})
	}

	if idea.EstimatedHours > 100 {
		findings = append(findings, Finding{
			Category:   CategoryResources,
			Risk:       RiskMedium,
			Message:    fmt.Sprintf("The estimate of %d hours is high for a short-term project", idea.EstimatedHours),
			Suggestion: "Scope the project down to a smaller first version",
		})
	}

	return findings
}

// scoreFindings converts findings to a score: each High finding costs 0.3,
// each Medium 0.15, floored at zero.
func scoreFindings(findings []Finding) float64 {
	score := 1.0
	for _, f := range findings {
		switch f.Risk {
		case RiskHigh:
			score -= 0.3
		case RiskMedium:
			score -= 0.15
		}
	}
	if score < 0 {
		return 0
	}
	return score
}

func summarize(score float64) string {
	switch {
	case score >= 0.8:
		return "This idea looks highly viable with low risk."
	case score >= 0.5:
		return "This idea is promising but carries moderate risks."
	default:
		return "This idea has significant risks that need addressing first."
	}
}
