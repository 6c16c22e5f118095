package llm

import (
	"os"
	"strconv"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskInterview TaskType = "interview"
	TaskDraft     TaskType = "draft"
	TaskSynthesis TaskType = "synthesis"
	TaskOutline   TaskType = "outline"
	TaskEditorial TaskType = "editorial"
	TaskFocusChat TaskType = "focus_chat"
	TaskApplyEdit TaskType = "apply_edit"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// Config holds all configuration for the LLM subsystem.
type Config struct {
	Endpoint   string
	APIKey     string
	Model      string
	TimeoutMs  int
	MaxRetries int
	LogCalls   bool
	Tasks      map[TaskType]TaskConfig
}

// DefaultConfig returns a Config with sensible defaults. The endpoint
// speaks the OpenAI chat completions protocol, which local gateways
// also expose.
func DefaultConfig() Config {
	return Config{
		Endpoint:   "http://localhost:11434/v1",
		Model:      "qwen2.5:14b",
		TimeoutMs:  60000,
		MaxRetries: 1,
		LogCalls:   false,
		Tasks: map[TaskType]TaskConfig{
			TaskInterview: {Temperature: 0.7, MaxTokens: 1024, TimeoutMs: 30000},
			TaskDraft:     {Temperature: 0.9, MaxTokens: 4096, TimeoutMs: 120000},
			TaskSynthesis: {Temperature: 0.8, MaxTokens: 4096, TimeoutMs: 120000},
			TaskOutline:   {Temperature: 0.4, MaxTokens: 1024, TimeoutMs: 30000},
			TaskEditorial: {Temperature: 0.5, MaxTokens: 2048, TimeoutMs: 60000},
			TaskFocusChat: {Temperature: 0.6, MaxTokens: 2048, TimeoutMs: 60000},
			TaskApplyEdit: {Temperature: 0.3, MaxTokens: 4096, TimeoutMs: 60000},
		},
	}
}

// LoadConfig reads LLM configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("INKWELL_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("INKWELL_LLM_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("INKWELL_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("INKWELL_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("INKWELL_LLM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("INKWELL_LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}

	applyTaskTimeoutEnv(&cfg, TaskInterview, "INKWELL_LLM_INTERVIEW_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskDraft, "INKWELL_LLM_DRAFT_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskSynthesis, "INKWELL_LLM_SYNTHESIS_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskOutline, "INKWELL_LLM_OUTLINE_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskEditorial, "INKWELL_LLM_EDITORIAL_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskFocusChat, "INKWELL_LLM_FOCUS_CHAT_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskApplyEdit, "INKWELL_LLM_APPLY_EDIT_TIMEOUT_MS")

	return cfg
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c Config) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

func applyTaskTimeoutEnv(cfg *Config, task TaskType, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	tc := cfg.Tasks[task]
	tc.TimeoutMs = n
	cfg.Tasks[task] = tc
}
