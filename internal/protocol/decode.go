package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samefarrar/inkwell/internal/domain"
)

var (
	// ErrInvalidJSON indicates the payload was not a JSON object.
	ErrInvalidJSON = errors.New("invalid json")

	// ErrUnknownType indicates an unrecognized type discriminator.
	ErrUnknownType = errors.New("unknown message type")
)

// ValidationError reports schema problems on a recognized message type.
// The client-facing error message names only the problem count.
type ValidationError struct {
	MessageType string
	Problems    []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: validation failed with %d error(s)", e.MessageType, len(e.Problems))
}

// Decode parses one inbound payload into its typed message, validating
// required fields. Transport code converts the returned error into an
// outbound error event without closing the connection.
func Decode(data []byte) (ClientMessage, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	switch head.Type {
	case TypeTaskSelect:
		var m TaskSelect
		if err := unmarshalInto(data, &m); err != nil {
			return nil, err
		}
		var problems []string
		if !domain.ValidTaskType(domain.TaskType(m.TaskType)) {
			problems = append(problems, "task_type must be a known task type")
		}
		if m.Topic == "" {
			problems = append(problems, "topic is required")
		}
		return m, validate(head.Type, problems)

	case TypeInterviewAnswer:
		var m InterviewAnswer
		if err := unmarshalInto(data, &m); err != nil {
			return nil, err
		}
		var problems []string
		if m.Answer == "" {
			problems = append(problems, "answer is required")
		}
		return m, validate(head.Type, problems)

	case TypeOutlineConfirm:
		var m OutlineConfirm
		if err := unmarshalInto(data, &m); err != nil {
			return nil, err
		}
		return m, nil

	case TypeOutlineSkip:
		var m OutlineSkip
		if err := unmarshalInto(data, &m); err != nil {
			return nil, err
		}
		return m, nil

	case TypeDraftHighlight:
		var m DraftHighlight
		if err := unmarshalInto(data, &m); err != nil {
			return nil, err
		}
		var problems []string
		if m.DraftIndex < 0 {
			problems = append(problems, "draft_index must be non-negative")
		}
		if m.Start < 0 {
			problems = append(problems, "start must be non-negative")
		}
		if m.End < m.Start {
			problems = append(problems, "end must not precede start")
		}
		if s := domain.Sentiment(m.Sentiment); s != domain.SentimentLike && s != domain.SentimentFlag {
			problems = append(problems, "sentiment must be like or flag")
		}
		return m, validate(head.Type, problems)

	case TypeHighlightUpdate:
		var m HighlightUpdate
		if err := unmarshalInto(data, &m); err != nil {
			return nil, err
		}
		var problems []string
		if m.HighlightIndex < 0 {
			problems = append(problems, "highlight_index must be non-negative")
		}
		if m.Label == "" {
			problems = append(problems, "label is required")
		}
		return m, validate(head.Type, problems)

	case TypeHighlightRemove:
		var m HighlightRemove
		if err := unmarshalInto(data, &m); err != nil {
			return nil, err
		}
		var problems []string
		if m.HighlightIndex < 0 {
			problems = append(problems, "highlight_index must be non-negative")
		}
		return m, validate(head.Type, problems)

	case TypeDraftEdit:
		var m DraftEdit
		if err := unmarshalInto(data, &m); err != nil {
			return nil, err
		}
		var problems []string
		if m.DraftIndex < 0 {
			problems = append(problems, "draft_index must be non-negative")
		}
		return m, validate(head.Type, problems)

	case TypeDraftSynthesize:
		var m DraftSynthesize
		if err := unmarshalInto(data, &m); err != nil {
			return nil, err
		}
		return m, nil

	case TypeSessionResume:
		var m SessionResume
		if err := unmarshalInto(data, &m); err != nil {
			return nil, err
		}
		var problems []string
		if m.SessionID == "" {
			problems = append(problems, "session_id is required")
		}
		return m, validate(head.Type, problems)

	case TypeSessionCancel:
		var m SessionCancel
		if err := unmarshalInto(data, &m); err != nil {
			return nil, err
		}
		return m, nil

	case TypeFocusEnter:
		var m FocusEnter
		if err := unmarshalInto(data, &m); err != nil {
			return nil, err
		}
		var problems []string
		if m.DraftIndex < 0 {
			problems = append(problems, "draft_index must be non-negative")
		}
		return m, validate(head.Type, problems)

	case TypeFocusExit:
		var m FocusExit
		if err := unmarshalInto(data, &m); err != nil {
			return nil, err
		}
		return m, nil

	case TypeFocusChat:
		var m FocusChat
		if err := unmarshalInto(data, &m); err != nil {
			return nil, err
		}
		var problems []string
		if m.Message == "" {
			problems = append(problems, "message is required")
		}
		return m, validate(head.Type, problems)

	case TypeFocusFeedback:
		var m FocusFeedback
		if err := unmarshalInto(data, &m); err != nil {
			return nil, err
		}
		var problems []string
		switch domain.FeedbackAction(m.Action) {
		case domain.ActionAccept, domain.ActionReject, domain.ActionDismiss:
		default:
			problems = append(problems, "action must be accept, reject or dismiss")
		}
		switch domain.FeedbackKind(m.FeedbackType) {
		case domain.KindSuggestion, domain.KindComment:
		default:
			problems = append(problems, "feedback_type must be suggestion or comment")
		}
		if m.ID == "" {
			problems = append(problems, "id is required")
		}
		return m, validate(head.Type, problems)

	case TypeFocusApproveComment:
		var m FocusApproveComment
		if err := unmarshalInto(data, &m); err != nil {
			return nil, err
		}
		var problems []string
		if m.ID == "" {
			problems = append(problems, "id is required")
		}
		return m, validate(head.Type, problems)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, head.Type)
	}
}

func unmarshalInto(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return nil
}

func validate(messageType string, problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{MessageType: messageType, Problems: problems}
}
