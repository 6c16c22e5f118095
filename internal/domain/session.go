package domain

import "time"

// OutlineNode is one structural building block of a piece.
type OutlineNode struct {
	ID          string `json:"id"`
	NodeType    string `json:"node_type"`
	Description string `json:"description"`
}

// Session tracks one writing task from selection through focus editing.
// The orchestrator owns the live in-memory copy; the row is the durable
// copy used for resume.
type Session struct {
	ID                 string
	UserID             string
	TaskType           TaskType
	Topic              string
	Status             SessionStatus
	StyleID            string // empty when no writing style was chosen
	InterviewSummary   string
	KeyMaterial        []string
	Outline            []OutlineNode
	SelectedDraftIndex int // -1 until the user enters focus mode
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
