package protocol

import "github.com/samefarrar/inkwell/internal/domain"

// Server message type discriminators.
const (
	TypeStatus            = "status"
	TypeError             = "error"
	TypeThought           = "thought"
	TypeInterviewQuestion = "interview.question"
	TypeSearchResult      = "search.result"
	TypeReadyToDraft      = "ready_to_draft"
	TypeOutlineNodes      = "outline.nodes"
	TypeDraftStart        = "draft.start"
	TypeDraftChunk        = "draft.chunk"
	TypeDraftComplete     = "draft.complete"
	TypeFocusSuggestion   = "focus.suggestion"
	TypeFocusComment      = "focus.comment"
	TypeFocusChatResponse = "focus.chat_response"
	TypeFocusEdit         = "focus.edit"
)

// ServerMessage is any outbound message to the client.
type ServerMessage interface {
	serverMessage()
}

// SendFunc delivers one outbound message to the client. Implementations
// must be safe for use from concurrent generation tasks.
type SendFunc func(msg ServerMessage) error

type Status struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewStatus(message string) Status {
	return Status{Type: TypeStatus, Message: message}
}

type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewError(message string) Error {
	return Error{Type: TypeError, Message: message}
}

type Thought struct {
	Type       string   `json:"type"`
	Assessment string   `json:"assessment"`
	Missing    []string `json:"missing"`
	Sufficient bool     `json:"sufficient"`
}

func NewThought(assessment string, missing []string, sufficient bool) Thought {
	if missing == nil {
		missing = []string{}
	}
	return Thought{Type: TypeThought, Assessment: assessment, Missing: missing, Sufficient: sufficient}
}

type InterviewQuestion struct {
	Type     string `json:"type"`
	Question string `json:"question"`
	Context  string `json:"context"`
}

func NewInterviewQuestion(question, context string) InterviewQuestion {
	return InterviewQuestion{Type: TypeInterviewQuestion, Question: question, Context: context}
}

type SearchResult struct {
	Type    string `json:"type"`
	Query   string `json:"query"`
	Summary string `json:"summary"`
}

func NewSearchResult(query, summary string) SearchResult {
	return SearchResult{Type: TypeSearchResult, Query: query, Summary: summary}
}

type ReadyToDraft struct {
	Type        string   `json:"type"`
	Summary     string   `json:"summary"`
	KeyMaterial []string `json:"key_material"`
}

func NewReadyToDraft(summary string, keyMaterial []string) ReadyToDraft {
	if keyMaterial == nil {
		keyMaterial = []string{}
	}
	return ReadyToDraft{Type: TypeReadyToDraft, Summary: summary, KeyMaterial: keyMaterial}
}

type OutlineNodes struct {
	Type  string               `json:"type"`
	Nodes []domain.OutlineNode `json:"nodes"`
}

func NewOutlineNodes(nodes []domain.OutlineNode) OutlineNodes {
	if nodes == nil {
		nodes = []domain.OutlineNode{}
	}
	return OutlineNodes{Type: TypeOutlineNodes, Nodes: nodes}
}

type DraftStart struct {
	Type       string `json:"type"`
	DraftIndex int    `json:"draft_index"`
	Title      string `json:"title"`
	Angle      string `json:"angle"`
}

func NewDraftStart(draftIndex int, title, angle string) DraftStart {
	return DraftStart{Type: TypeDraftStart, DraftIndex: draftIndex, Title: title, Angle: angle}
}

type DraftChunk struct {
	Type       string `json:"type"`
	DraftIndex int    `json:"draft_index"`
	Content    string `json:"content"`
	Done       bool   `json:"done"`
}

func NewDraftChunk(draftIndex int, content string, done bool) DraftChunk {
	return DraftChunk{Type: TypeDraftChunk, DraftIndex: draftIndex, Content: content, Done: done}
}

type DraftComplete struct {
	Type       string `json:"type"`
	DraftIndex int    `json:"draft_index"`
	WordCount  int    `json:"word_count"`
}

func NewDraftComplete(draftIndex, wordCount int) DraftComplete {
	return DraftComplete{Type: TypeDraftComplete, DraftIndex: draftIndex, WordCount: wordCount}
}

type FocusSuggestion struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	Quote       string `json:"quote"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Replacement string `json:"replacement"`
	Explanation string `json:"explanation"`
	RuleID      string `json:"rule_id"`
}

type FocusComment struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Quote   string `json:"quote"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Comment string `json:"comment"`
	Done    bool   `json:"done"`
}

type FocusChatResponse struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Done    bool   `json:"done"`
}

func NewFocusChatResponse(content string, done bool) FocusChatResponse {
	return FocusChatResponse{Type: TypeFocusChatResponse, Content: content, Done: done}
}

type FocusEdit struct {
	Type      string `json:"type"`
	CommentID string `json:"comment_id"`
	OldText   string `json:"old_text"`
	NewText   string `json:"new_text"`
}

func NewFocusEdit(commentID, oldText, newText string) FocusEdit {
	return FocusEdit{Type: TypeFocusEdit, CommentID: commentID, OldText: oldText, NewText: newText}
}

func (Status) serverMessage()            {}
func (Error) serverMessage()             {}
func (Thought) serverMessage()           {}
func (InterviewQuestion) serverMessage() {}
func (SearchResult) serverMessage()      {}
func (ReadyToDraft) serverMessage()      {}
func (OutlineNodes) serverMessage()      {}
func (DraftStart) serverMessage()        {}
func (DraftChunk) serverMessage()        {}
func (DraftComplete) serverMessage()     {}
func (FocusSuggestion) serverMessage()   {}
func (FocusComment) serverMessage()      {}
func (FocusChatResponse) serverMessage() {}
func (FocusEdit) serverMessage()         {}
