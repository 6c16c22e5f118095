package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/samefarrar/inkwell/internal/domain"
	"github.com/samefarrar/inkwell/internal/protocol"
)

const draftSlots = 3

type phase int

const (
	phaseForm phase = iota
	phaseChat
)

// wire abstracts the websocket client so the model can be driven in
// tests.
type wire interface {
	Send(v any) error
	ReadEvent() (ServerEvent, error)
}

type eventMsg struct{ ev ServerEvent }

type connClosedMsg struct{ err error }

// Model is the root bubbletea model for the chat client.
type Model struct {
	conn wire

	phase    phase
	form     *huh.Form
	taskType string
	topic    string

	vp      viewport.Model
	input   textinput.Model
	lines        []string
	focused      bool
	focusedDraft int

	drafts      [draftSlots]strings.Builder
	draftTitles [draftSlots]string

	pendingOutline []domain.OutlineNode

	width    int
	height   int
	quitting bool
	err      error
}

// NewModel creates the client model over an open connection.
func NewModel(conn wire) Model {
	input := textinput.New()
	input.Placeholder = "Answer, chat, or /command"
	input.CharLimit = 4000

	return Model{
		conn:  conn,
		phase: phaseForm,
		form:  newTaskForm(),
		input: input,
		vp:    viewport.New(0, 0),
	}
}

func newTaskForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("task_type").
				Title("What are you writing?").
				Options(
					huh.NewOption("Essay", string(domain.TaskEssay)),
					huh.NewOption("Blog post", string(domain.TaskBlogPost)),
					huh.NewOption("Newsletter", string(domain.TaskNewsletter)),
					huh.NewOption("Review", string(domain.TaskReview)),
					huh.NewOption("Landing page", string(domain.TaskLandingPage)),
				),
			huh.NewInput().
				Key("topic").
				Title("What's it about?").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("topic is required")
					}
					return nil
				}),
		),
	)
}

// waitForEvent blocks on the next server event as a bubbletea command.
func waitForEvent(conn wire) tea.Cmd {
	return func() tea.Msg {
		ev, err := conn.ReadEvent()
		if err != nil {
			return connClosedMsg{err: err}
		}
		return eventMsg{ev: ev}
	}
}

func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.vp.Width = msg.Width
		m.vp.Height = max(msg.Height-4, 3)
		m.input.Width = max(msg.Width-4, 20)
		m.refreshViewport()

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		if m.phase == phaseChat {
			return m.handleChatKey(msg)
		}

	case eventMsg:
		m.appendEvent(msg.ev)
		return m, waitForEvent(m.conn)

	case connClosedMsg:
		m.err = msg.err
		m.appendLine(errorStyle.Render("Connection closed."))
		return m, nil
	}

	if m.phase == phaseForm {
		return m.updateForm(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	formModel, cmd := m.form.Update(msg)
	if f, ok := formModel.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.taskType = m.form.GetString("task_type")
	m.topic = m.form.GetString("topic")
	m.phase = phaseChat
	m.input.Focus()
	m.appendLine(titleStyle.Render(fmt.Sprintf("Writing a %s about %q", m.taskType, m.topic)))

	if err := m.conn.Send(protocol.TaskSelect{
		Type:     protocol.TypeTaskSelect,
		TaskType: m.taskType,
		Topic:    m.topic,
	}); err != nil {
		m.err = err
		return m, tea.Quit
	}
	return m, tea.Batch(cmd, waitForEvent(m.conn), textinput.Blink)
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		text := strings.TrimSpace(m.input.Value())
		m.input.SetValue("")
		if text == "" {
			return m, nil
		}
		return m.submit(text)
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit routes one line of input: slash commands drive the workflow,
// anything else is an interview answer or focus chat message.
func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	m.appendLine(userStyle.Render("you ") + text)

	if strings.HasPrefix(text, "/") {
		return m.runCommand(text)
	}

	var msg any
	if m.focused {
		msg = protocol.FocusChat{Type: protocol.TypeFocusChat, Message: text}
	} else {
		msg = protocol.InterviewAnswer{Type: protocol.TypeInterviewAnswer, Answer: text}
	}
	if err := m.conn.Send(msg); err != nil {
		m.appendLine(errorStyle.Render("send failed: " + err.Error()))
	}
	return m, nil
}

func (m Model) runCommand(text string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(text)
	var out any

	switch fields[0] {
	case "/quit":
		m.quitting = true
		return m, tea.Quit

	case "/outline":
		if len(fields) == 2 && fields[1] == "skip" {
			out = protocol.OutlineSkip{Type: protocol.TypeOutlineSkip}
		} else {
			out = protocol.OutlineConfirm{Type: protocol.TypeOutlineConfirm, Nodes: m.pendingOutline}
		}
		m.pendingOutline = nil

	case "/highlight":
		// /highlight <draft> <start> <end> <like|flag> [label]
		if len(fields) < 5 {
			m.appendLine(dimStyle.Render("usage: /highlight <draft> <start> <end> <like|flag> [label]"))
			return m, nil
		}
		draft, err1 := strconv.Atoi(fields[1])
		start, err2 := strconv.Atoi(fields[2])
		end, err3 := strconv.Atoi(fields[3])
		if err1 != nil || err2 != nil || err3 != nil {
			m.appendLine(dimStyle.Render("highlight positions must be numbers"))
			return m, nil
		}
		hl := protocol.DraftHighlight{
			Type: protocol.TypeDraftHighlight, DraftIndex: draft,
			Start: start, End: end, Sentiment: fields[4],
		}
		if len(fields) > 5 {
			hl.Label = fields[5]
		}
		out = hl

	case "/label":
		// /label <draft> <highlight> <label>
		if len(fields) < 4 {
			m.appendLine(dimStyle.Render("usage: /label <draft> <highlight> <label>"))
			return m, nil
		}
		draft, err1 := strconv.Atoi(fields[1])
		idx, err2 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil {
			m.appendLine(dimStyle.Render("draft and highlight must be numbers"))
			return m, nil
		}
		out = protocol.HighlightUpdate{
			Type: protocol.TypeHighlightUpdate, DraftIndex: draft,
			HighlightIndex: idx, Label: strings.Join(fields[3:], " "),
		}

	case "/remove":
		if len(fields) != 3 {
			m.appendLine(dimStyle.Render("usage: /remove <draft> <highlight>"))
			return m, nil
		}
		draft, err1 := strconv.Atoi(fields[1])
		idx, err2 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil {
			m.appendLine(dimStyle.Render("draft and highlight must be numbers"))
			return m, nil
		}
		out = protocol.HighlightRemove{
			Type: protocol.TypeHighlightRemove, DraftIndex: draft, HighlightIndex: idx,
		}

	case "/synthesize":
		out = protocol.DraftSynthesize{Type: protocol.TypeDraftSynthesize}

	case "/resume":
		if len(fields) != 2 {
			m.appendLine(dimStyle.Render("usage: /resume <session-id>"))
			return m, nil
		}
		out = protocol.SessionResume{Type: protocol.TypeSessionResume, SessionID: fields[1]}

	case "/focus":
		if len(fields) != 2 {
			m.appendLine(dimStyle.Render("usage: /focus <draft>"))
			return m, nil
		}
		draft, err := strconv.Atoi(fields[1])
		if err != nil {
			m.appendLine(dimStyle.Render("draft must be a number"))
			return m, nil
		}
		m.focused = true
		m.focusedDraft = draft
		out = protocol.FocusEnter{Type: protocol.TypeFocusEnter, DraftIndex: draft}

	case "/exit":
		m.focused = false
		out = protocol.FocusExit{Type: protocol.TypeFocusExit}

	case "/accept", "/reject", "/dismiss":
		if len(fields) != 2 {
			m.appendLine(dimStyle.Render("usage: " + fields[0] + " <id>"))
			return m, nil
		}
		out = protocol.FocusFeedback{
			Type: protocol.TypeFocusFeedback, ID: fields[1],
			Action:       strings.TrimPrefix(fields[0], "/"),
			FeedbackType: string(domain.KindSuggestion),
		}

	case "/approve":
		if len(fields) != 2 {
			m.appendLine(dimStyle.Render("usage: /approve <comment-id>"))
			return m, nil
		}
		content := ""
		if m.focusedDraft >= 0 && m.focusedDraft < draftSlots {
			content = m.drafts[m.focusedDraft].String()
		}
		out = protocol.FocusApproveComment{
			Type: protocol.TypeFocusApproveComment, ID: fields[1],
			CurrentContent: content,
		}

	case "/draft":
		if len(fields) != 2 {
			m.appendLine(dimStyle.Render("usage: /draft <n>"))
			return m, nil
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 0 || n >= draftSlots {
			m.appendLine(dimStyle.Render("draft must be 0, 1, or 2"))
			return m, nil
		}
		m.appendLine(titleStyle.Render(m.draftTitles[n]))
		m.appendLine(m.drafts[n].String())
		return m, nil

	case "/cancel":
		m.focused = false
		out = protocol.SessionCancel{Type: protocol.TypeSessionCancel}

	default:
		m.appendLine(dimStyle.Render("unknown command " + fields[0]))
		return m, nil
	}

	if err := m.conn.Send(out); err != nil {
		m.appendLine(errorStyle.Render("send failed: " + err.Error()))
	}
	return m, nil
}

// appendEvent renders one server event into the transcript.
func (m *Model) appendEvent(ev ServerEvent) {
	switch ev.Type {
	case protocol.TypeStatus:
		m.appendLine(dimStyle.Render(ev.Message))

	case protocol.TypeError:
		m.appendLine(errorStyle.Render("error: " + ev.Message))

	case protocol.TypeThought:
		m.appendLine(thoughtStyle.Render("✻ " + ev.Assessment))

	case protocol.TypeInterviewQuestion:
		m.appendLine(questionStyle.Render("? " + ev.Question))

	case protocol.TypeSearchResult:
		m.appendLine(dimStyle.Render("searched: " + ev.Query))

	case protocol.TypeReadyToDraft:
		m.appendLine(titleStyle.Render("Ready to draft: " + ev.Summary))

	case protocol.TypeOutlineNodes:
		m.pendingOutline = ev.Nodes
		m.appendLine(titleStyle.Render("Proposed outline:"))
		for i, n := range ev.Nodes {
			m.appendLine(fmt.Sprintf("  %d. [%s] %s", i+1, n.NodeType, n.Description))
		}
		m.appendLine(dimStyle.Render("/outline to confirm, /outline skip to go straight to drafts"))

	case protocol.TypeDraftStart:
		if ev.DraftIndex >= 0 && ev.DraftIndex < draftSlots {
			m.drafts[ev.DraftIndex].Reset()
			m.draftTitles[ev.DraftIndex] = ev.Title
		}
		m.appendLine(dimStyle.Render(fmt.Sprintf("draft %d (%s) writing...", ev.DraftIndex, ev.Angle)))

	case protocol.TypeDraftChunk:
		if ev.DraftIndex >= 0 && ev.DraftIndex < draftSlots {
			m.drafts[ev.DraftIndex].WriteString(ev.Content)
		}

	case protocol.TypeDraftComplete:
		m.appendLine(titleStyle.Render(fmt.Sprintf("draft %d done, %d words. /draft %d to read it",
			ev.DraftIndex, ev.WordCount, ev.DraftIndex)))

	case protocol.TypeFocusSuggestion:
		m.appendLine(suggestionStyle.Render(fmt.Sprintf("[%s] %q → %q (%s)",
			ev.ID, ev.Quote, ev.Replacement, ev.Explanation)))

	case protocol.TypeFocusComment:
		if ev.Comment != "" {
			m.appendLine(commentStyle.Render(fmt.Sprintf("[%s] %s", ev.ID, ev.Comment)))
		}
		if ev.Done {
			m.appendLine(dimStyle.Render("editorial pass complete"))
		}

	case protocol.TypeFocusChatResponse:
		m.appendLine(questionStyle.Render(ev.Content))

	case protocol.TypeFocusEdit:
		m.appendLine(titleStyle.Render(fmt.Sprintf("edit: %q → %q", ev.OldText, ev.NewText)))
	}
}

func (m *Model) appendLine(line string) {
	m.lines = append(m.lines, line)
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	m.vp.SetContent(strings.Join(m.lines, "\n"))
	m.vp.GotoBottom()
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.phase == phaseForm {
		return m.form.View()
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("inkwell") + "\n")
	b.WriteString(m.vp.View() + "\n")
	b.WriteString(m.input.View())
	return b.String()
}
