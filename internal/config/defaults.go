package config

// DefaultConfig returns the default configuration: a small worker pool, the
// standard policy parameters, and the built-in decomposition template.
func DefaultConfig() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			IntervalSeconds:  2,
			ConcurrencyLimit: 4,
		},
		Policy: PolicyConfig{
			SearchDepth: 2,
			Weights: WeightsConfig{
				Quality:         70,
				Progress:        30,
				ErrorPenalty:    200,
				ResourcePenalty: 40,
			},
			LearningRate: 0.01,
		},
		Judge: JudgeConfig{
			Type:      "heuristic",
			Model:     "claude-3-opus-20240229",
			MaxTokens: 1024,
		},
		Worker: WorkerConfig{
			TimeoutSeconds: 300,
		},
		Agents: map[string]AgentConfig{
			"worker-1": {
				Name:         "Coder",
				Capabilities: []string{"python", "file_io", "test_execution", "general"},
			},
			"worker-2": {
				Name:         "Analyst",
				Capabilities: []string{"text_analysis", "general"},
			},
		},
		Templates: map[string]TemplateConfig{
			// Operators and tests rely on the exact keywords and graph shape:
			// the scraper task first, tests and report both depending on it.
			"scrape_script": {
				Keywords: []string{"scrape", "script"},
				Tasks: []TemplateTaskConfig{
					{
						Name:         "Write Scraper Code",
						Description:  "Write a Python script that scrapes the data described in the goal.",
						Capabilities: []string{"python", "file_io"},
					},
					{
						Name:         "Write Unit Tests",
						Description:  "Write unit tests covering the scraper script.",
						Capabilities: []string{"python", "test_execution"},
						DependsOn:    []int{0},
					},
					{
						Name:         "Generate Report",
						Description:  "Summarize the scraped data in a short report.",
						Capabilities: []string{"text_analysis"},
						DependsOn:    []int{0},
					},
				},
			},
		},
	}
}
