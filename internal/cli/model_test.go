package cli

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samefarrar/inkwell/internal/domain"
	"github.com/samefarrar/inkwell/internal/protocol"
)

// fakeWire records outbound messages and never delivers events; tests
// inject eventMsg values directly instead of executing read commands.
type fakeWire struct {
	sent    []any
	sendErr error
}

func (w *fakeWire) Send(v any) error {
	w.sent = append(w.sent, v)
	return w.sendErr
}

func (w *fakeWire) ReadEvent() (ServerEvent, error) {
	return ServerEvent{}, fmt.Errorf("no events queued")
}

// chatModel returns a model already past the task form.
func chatModel(wire *fakeWire) Model {
	m := NewModel(wire)
	m.phase = phaseChat
	m.input.Focus()
	return m
}

func typeAndEnter(t *testing.T, m Model, text string) Model {
	t.Helper()
	m.input.SetValue(text)
	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next, ok := model.(Model)
	require.True(t, ok)
	return next
}

func TestNewModel_StartsOnTaskForm(t *testing.T) {
	m := NewModel(&fakeWire{})
	assert.Equal(t, phaseForm, m.phase)
	assert.NotNil(t, m.form)
}

func TestSubmit_RoutesPlainTextToInterviewAnswer(t *testing.T) {
	wire := &fakeWire{}
	m := chatModel(wire)

	m = typeAndEnter(t, m, "It should feel personal.")

	require.Len(t, wire.sent, 1)
	answer, ok := wire.sent[0].(protocol.InterviewAnswer)
	require.True(t, ok)
	assert.Equal(t, protocol.TypeInterviewAnswer, answer.Type)
	assert.Equal(t, "It should feel personal.", answer.Answer)
}

func TestSubmit_RoutesPlainTextToFocusChatWhenFocused(t *testing.T) {
	wire := &fakeWire{}
	m := chatModel(wire)
	m.focused = true

	m = typeAndEnter(t, m, "tighten the second paragraph")

	require.Len(t, wire.sent, 1)
	chat, ok := wire.sent[0].(protocol.FocusChat)
	require.True(t, ok)
	assert.Equal(t, "tighten the second paragraph", chat.Message)
}

func TestSubmit_EmptyInputSendsNothing(t *testing.T) {
	wire := &fakeWire{}
	m := chatModel(wire)
	typeAndEnter(t, m, "   ")
	assert.Empty(t, wire.sent)
}

func TestCommand_Highlight(t *testing.T) {
	wire := &fakeWire{}
	m := chatModel(wire)

	m = typeAndEnter(t, m, "/highlight 1 4 20 like intro")

	require.Len(t, wire.sent, 1)
	hl, ok := wire.sent[0].(protocol.DraftHighlight)
	require.True(t, ok)
	assert.Equal(t, 1, hl.DraftIndex)
	assert.Equal(t, 4, hl.Start)
	assert.Equal(t, 20, hl.End)
	assert.Equal(t, "like", hl.Sentiment)
	assert.Equal(t, "intro", hl.Label)
}

func TestCommand_HighlightRejectsBadArgs(t *testing.T) {
	wire := &fakeWire{}
	m := chatModel(wire)

	m = typeAndEnter(t, m, "/highlight 0 four ten like")
	assert.Empty(t, wire.sent)

	m = typeAndEnter(t, m, "/highlight 0")
	assert.Empty(t, wire.sent)
}

func TestCommand_Synthesize(t *testing.T) {
	wire := &fakeWire{}
	m := chatModel(wire)

	typeAndEnter(t, m, "/synthesize")

	require.Len(t, wire.sent, 1)
	_, ok := wire.sent[0].(protocol.DraftSynthesize)
	assert.True(t, ok)
}

func TestCommand_FocusEnterAndExit(t *testing.T) {
	wire := &fakeWire{}
	m := chatModel(wire)

	m = typeAndEnter(t, m, "/focus 2")
	require.Len(t, wire.sent, 1)
	enter, ok := wire.sent[0].(protocol.FocusEnter)
	require.True(t, ok)
	assert.Equal(t, 2, enter.DraftIndex)
	assert.True(t, m.focused)
	assert.Equal(t, 2, m.focusedDraft)

	m = typeAndEnter(t, m, "/exit")
	require.Len(t, wire.sent, 2)
	_, ok = wire.sent[1].(protocol.FocusExit)
	assert.True(t, ok)
	assert.False(t, m.focused)
}

func TestCommand_OutlineConfirmCarriesPendingNodes(t *testing.T) {
	wire := &fakeWire{}
	m := chatModel(wire)

	nodes := []domain.OutlineNode{
		{ID: "n1", NodeType: "hook", Description: "Open on the morning rush"},
		{ID: "n2", NodeType: "argument", Description: "Third places matter"},
	}
	model, _ := m.Update(eventMsg{ev: ServerEvent{Type: protocol.TypeOutlineNodes, Nodes: nodes}})
	m = model.(Model)
	require.Len(t, m.pendingOutline, 2)

	m = typeAndEnter(t, m, "/outline")

	require.Len(t, wire.sent, 1)
	confirm, ok := wire.sent[0].(protocol.OutlineConfirm)
	require.True(t, ok)
	assert.Equal(t, nodes, confirm.Nodes)
	assert.Nil(t, m.pendingOutline)
}

func TestCommand_OutlineSkip(t *testing.T) {
	wire := &fakeWire{}
	m := chatModel(wire)

	typeAndEnter(t, m, "/outline skip")

	require.Len(t, wire.sent, 1)
	_, ok := wire.sent[0].(protocol.OutlineSkip)
	assert.True(t, ok)
}

func TestCommand_UnknownShowsHintWithoutSending(t *testing.T) {
	wire := &fakeWire{}
	m := chatModel(wire)

	m = typeAndEnter(t, m, "/frobnicate")

	assert.Empty(t, wire.sent)
	assert.Contains(t, m.lines[len(m.lines)-1], "unknown command")
}

func TestEvents_DraftChunksAccumulatePerSlot(t *testing.T) {
	m := chatModel(&fakeWire{})

	feed := func(ev ServerEvent) {
		model, _ := m.Update(eventMsg{ev: ev})
		m = model.(Model)
	}
	feed(ServerEvent{Type: protocol.TypeDraftStart, DraftIndex: 0, Title: "Morning Rush", Angle: "narrative"})
	feed(ServerEvent{Type: protocol.TypeDraftChunk, DraftIndex: 0, Content: "The line "})
	feed(ServerEvent{Type: protocol.TypeDraftChunk, DraftIndex: 0, Content: "out the door."})
	feed(ServerEvent{Type: protocol.TypeDraftChunk, DraftIndex: 1, Content: "Another take."})

	assert.Equal(t, "The line out the door.", m.drafts[0].String())
	assert.Equal(t, "Another take.", m.drafts[1].String())
	assert.Equal(t, "Morning Rush", m.draftTitles[0])
}

func TestEvents_InterviewQuestionRendered(t *testing.T) {
	m := chatModel(&fakeWire{})

	model, _ := m.Update(eventMsg{ev: ServerEvent{
		Type: protocol.TypeInterviewQuestion, Question: "Who is this for?",
	}})
	m = model.(Model)

	require.NotEmpty(t, m.lines)
	assert.Contains(t, m.lines[len(m.lines)-1], "Who is this for?")
}

func TestConnClosed_RecordsError(t *testing.T) {
	m := chatModel(&fakeWire{})

	model, cmd := m.Update(connClosedMsg{err: fmt.Errorf("gone")})
	m = model.(Model)

	assert.Nil(t, cmd)
	require.Error(t, m.err)
	assert.Contains(t, m.lines[len(m.lines)-1], "Connection closed")
}

func TestCtrlC_Quits(t *testing.T) {
	m := chatModel(&fakeWire{})

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = model.(Model)

	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
