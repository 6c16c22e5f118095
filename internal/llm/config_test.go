package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:11434/v1", cfg.Endpoint)
	assert.Equal(t, 1, cfg.MaxRetries)
	assert.Contains(t, cfg.Tasks, TaskInterview)
	assert.Contains(t, cfg.Tasks, TaskDraft)
	assert.Contains(t, cfg.Tasks, TaskSynthesis)
	assert.Contains(t, cfg.Tasks, TaskOutline)
	assert.Contains(t, cfg.Tasks, TaskEditorial)
	assert.Contains(t, cfg.Tasks, TaskFocusChat)
	assert.Contains(t, cfg.Tasks, TaskApplyEdit)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("INKWELL_LLM_ENDPOINT", "http://example.com/v1")
	t.Setenv("INKWELL_LLM_MODEL", "custom-model")
	t.Setenv("INKWELL_LLM_TIMEOUT_MS", "5000")
	t.Setenv("INKWELL_LLM_MAX_RETRIES", "3")
	t.Setenv("INKWELL_LLM_DRAFT_TIMEOUT_MS", "90000")

	cfg := LoadConfig()
	assert.Equal(t, "http://example.com/v1", cfg.Endpoint)
	assert.Equal(t, "custom-model", cfg.Model)
	assert.Equal(t, 5000, cfg.TimeoutMs)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 90000, cfg.Tasks[TaskDraft].TimeoutMs)
}

func TestLoadConfig_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("INKWELL_LLM_TIMEOUT_MS", "not-a-number")
	t.Setenv("INKWELL_LLM_MAX_RETRIES", "-5")

	cfg := LoadConfig()
	assert.Equal(t, DefaultConfig().TimeoutMs, cfg.TimeoutMs)
	assert.Equal(t, DefaultConfig().MaxRetries, cfg.MaxRetries)
}

func TestTaskTimeout(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 120000, cfg.TaskTimeout(TaskDraft))
	// Unknown task falls back to the global timeout.
	assert.Equal(t, cfg.TimeoutMs, cfg.TaskTimeout(TaskType("unknown")))
}
