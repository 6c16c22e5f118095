package llm

import (
	"fmt"
	"io"
	"time"
)

// CallEvent records metadata about a single LLM invocation.
type CallEvent struct {
	Task      TaskType
	Model     string
	LatencyMs int64
	Streamed  bool
	Success   bool
	ErrorCode string
}

// Observer receives events about LLM calls for logging and metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes LLM call events to an io.Writer.
type LogObserver struct {
	w io.Writer
}

// NewLogObserver creates an Observer that logs events to w.
func NewLogObserver(w io.Writer) *LogObserver {
	return &LogObserver{w: w}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	ts := time.Now().UTC().Format(time.RFC3339)
	status := "ok"
	if !event.Success {
		status = "err:" + event.ErrorCode
	}
	mode := "complete"
	if event.Streamed {
		mode = "stream"
	}
	fmt.Fprintf(o.w, "[%s] llm_call task=%s model=%s mode=%s latency_ms=%d status=%s\n",
		ts, event.Task, event.Model, mode, event.LatencyMs, status)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}
