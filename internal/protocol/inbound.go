// Package protocol defines the typed messages exchanged over the
// session channel. Every message carries a "type" discriminator.
package protocol

import "github.com/samefarrar/inkwell/internal/domain"

// Client message type discriminators.
const (
	TypeTaskSelect          = "task.select"
	TypeInterviewAnswer     = "interview.answer"
	TypeOutlineConfirm      = "outline.confirm"
	TypeOutlineSkip         = "outline.skip"
	TypeDraftHighlight      = "draft.highlight"
	TypeHighlightUpdate     = "highlight.update"
	TypeHighlightRemove     = "highlight.remove"
	TypeDraftEdit           = "draft.edit"
	TypeDraftSynthesize     = "draft.synthesize"
	TypeSessionResume       = "session.resume"
	TypeSessionCancel       = "session.cancel"
	TypeFocusEnter          = "focus.enter"
	TypeFocusExit           = "focus.exit"
	TypeFocusChat           = "focus.chat"
	TypeFocusFeedback       = "focus.feedback"
	TypeFocusApproveComment = "focus.approve_comment"
)

// ClientMessage is any inbound message from the client.
type ClientMessage interface {
	clientMessage()
}

type TaskSelect struct {
	Type     string `json:"type"`
	TaskType string `json:"task_type"`
	Topic    string `json:"topic"`
	StyleID  string `json:"style_id,omitempty"`
}

type InterviewAnswer struct {
	Type   string `json:"type"`
	Answer string `json:"answer"`
}

type OutlineConfirm struct {
	Type  string               `json:"type"`
	Nodes []domain.OutlineNode `json:"nodes"`
}

type OutlineSkip struct {
	Type string `json:"type"`
}

type DraftHighlight struct {
	Type       string `json:"type"`
	DraftIndex int    `json:"draft_index"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Sentiment  string `json:"sentiment"`
	Label      string `json:"label,omitempty"`
	Note       string `json:"note,omitempty"`
}

type HighlightUpdate struct {
	Type           string `json:"type"`
	DraftIndex     int    `json:"draft_index"`
	HighlightIndex int    `json:"highlight_index"`
	Label          string `json:"label"`
}

type HighlightRemove struct {
	Type           string `json:"type"`
	DraftIndex     int    `json:"draft_index"`
	HighlightIndex int    `json:"highlight_index"`
}

type DraftEdit struct {
	Type       string `json:"type"`
	DraftIndex int    `json:"draft_index"`
	Content    string `json:"content"`
}

type DraftSynthesize struct {
	Type string `json:"type"`
}

type SessionResume struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

type SessionCancel struct {
	Type string `json:"type"`
}

type FocusEnter struct {
	Type       string `json:"type"`
	DraftIndex int    `json:"draft_index"`
}

type FocusExit struct {
	Type string `json:"type"`
}

type FocusChat struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type FocusFeedback struct {
	Type         string `json:"type"`
	ID           string `json:"id"`
	Action       string `json:"action"`
	FeedbackType string `json:"feedback_type"`
}

type FocusApproveComment struct {
	Type           string `json:"type"`
	ID             string `json:"id"`
	CurrentContent string `json:"current_content"`
}

func (TaskSelect) clientMessage()          {}
func (InterviewAnswer) clientMessage()     {}
func (OutlineConfirm) clientMessage()      {}
func (OutlineSkip) clientMessage()         {}
func (DraftHighlight) clientMessage()      {}
func (HighlightUpdate) clientMessage()     {}
func (HighlightRemove) clientMessage()     {}
func (DraftEdit) clientMessage()           {}
func (SessionResume) clientMessage()       {}
func (SessionCancel) clientMessage()       {}
func (DraftSynthesize) clientMessage()     {}
func (FocusEnter) clientMessage()          {}
func (FocusExit) clientMessage()           {}
func (FocusChat) clientMessage()           {}
func (FocusFeedback) clientMessage()       {}
func (FocusApproveComment) clientMessage() {}
