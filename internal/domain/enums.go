package domain

// TaskType identifies the kind of piece being written.
type TaskType string

const (
	TaskEssay       TaskType = "essay"
	TaskReview      TaskType = "review"
	TaskNewsletter  TaskType = "newsletter"
	TaskLandingPage TaskType = "landing_page"
	TaskBlogPost    TaskType = "blog_post"
)

// ValidTaskType reports whether t is one of the known task types.
func ValidTaskType(t TaskType) bool {
	switch t {
	case TaskEssay, TaskReview, TaskNewsletter, TaskLandingPage, TaskBlogPost:
		return true
	default:
		return false
	}
}

// SessionStatus mirrors the orchestrator state machine.
type SessionStatus string

const (
	StatusIdle         SessionStatus = "idle"
	StatusInterview    SessionStatus = "interview"
	StatusOutline      SessionStatus = "outline"
	StatusDrafting     SessionStatus = "drafting"
	StatusHighlighting SessionStatus = "highlighting"
	StatusFocused      SessionStatus = "focused"
)

// Sentiment tags a highlight as liked or flagged.
type Sentiment string

const (
	SentimentLike Sentiment = "like"
	SentimentFlag Sentiment = "flag"
)

// FeedbackAction is the user's decision on a suggestion or comment.
type FeedbackAction string

const (
	ActionAccept  FeedbackAction = "accept"
	ActionReject  FeedbackAction = "reject"
	ActionDismiss FeedbackAction = "dismiss"
)

// FeedbackKind distinguishes style-engine suggestions from editorial comments.
type FeedbackKind string

const (
	KindSuggestion FeedbackKind = "suggestion"
	KindComment    FeedbackKind = "comment"
)

// Interview message roles as stored for session replay.
const (
	RoleUser         = "user"
	RoleAssistant    = "ai"
	RoleThought      = "thought"
	RoleSearch       = "search"
	RoleReadyToDraft = "ready_to_draft"
)
