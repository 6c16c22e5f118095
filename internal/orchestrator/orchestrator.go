// Package orchestrator owns the session state machine. It routes
// inbound client messages by current state, delegates to the interview,
// drafting, and focus components, and keeps the persistent store in
// step with its in-memory mirror of the live session.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/samefarrar/inkwell/internal/domain"
	"github.com/samefarrar/inkwell/internal/drafting"
	"github.com/samefarrar/inkwell/internal/focus"
	"github.com/samefarrar/inkwell/internal/interview"
	"github.com/samefarrar/inkwell/internal/learning"
	"github.com/samefarrar/inkwell/internal/llm"
	"github.com/samefarrar/inkwell/internal/protocol"
	"github.com/samefarrar/inkwell/internal/repository"
	"github.com/samefarrar/inkwell/internal/search"
)

// Deps bundles everything an Orchestrator needs. All fields are
// required except Searcher and Logger.
type Deps struct {
	Client     llm.Client
	Searcher   search.Provider
	Logger     *slog.Logger
	Sessions   repository.SessionRepo
	Drafts     repository.DraftRepo
	Highlights repository.HighlightRepo
	Messages   repository.MessageRepo
	Feedback   repository.FeedbackRepo
	Prefs      repository.PreferenceRepo
	Styles     repository.StyleRepo
}

// Orchestrator drives one connection's writing session.
type Orchestrator struct {
	deps      Deps
	send      protocol.SendFunc
	logger    *slog.Logger
	userID    string
	distiller *learning.Distiller

	state      domain.SessionStatus
	session    *domain.Session
	drafts     []*domain.Draft
	highlights []*domain.Highlight
	round      int

	// Transcript ordering is never reused, even when a write fails.
	msgOrdering int

	interviewer  *interview.Agent
	focusHandler *focus.Handler

	cancelMu   sync.Mutex
	cancels    map[int]context.CancelFunc
	nextCancel int
}

// New creates an Orchestrator for one authenticated connection.
func New(deps Deps, userID string, send protocol.SendFunc) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Searcher == nil {
		deps.Searcher = search.Disabled{}
	}
	return &Orchestrator{
		deps:      deps,
		send:      send,
		logger:    logger,
		userID:    userID,
		distiller: learning.NewDistiller(deps.Feedback, deps.Prefs, logger),
		state:     domain.StatusIdle,
		cancels:   make(map[int]context.CancelFunc),
	}
}

// State exposes the current machine state.
func (o *Orchestrator) State() domain.SessionStatus { return o.state }

// HandleMessage dispatches one inbound client message.
func (o *Orchestrator) HandleMessage(ctx context.Context, msg protocol.ClientMessage) error {
	switch m := msg.(type) {
	case protocol.TaskSelect:
		return o.handleTaskSelect(ctx, m)
	case protocol.InterviewAnswer:
		return o.handleInterviewAnswer(ctx, m)
	case protocol.OutlineConfirm:
		return o.handleOutlineConfirm(ctx, m)
	case protocol.OutlineSkip:
		return o.handleOutlineSkip(ctx)
	case protocol.DraftHighlight:
		return o.handleHighlight(ctx, m)
	case protocol.HighlightUpdate:
		return o.handleHighlightUpdate(ctx, m)
	case protocol.HighlightRemove:
		return o.handleHighlightRemove(ctx, m)
	case protocol.DraftEdit:
		return o.handleDraftEdit(ctx, m)
	case protocol.DraftSynthesize:
		return o.handleSynthesize(ctx)
	case protocol.SessionResume:
		return o.handleResume(ctx, m)
	case protocol.SessionCancel:
		return o.handleCancel(ctx)
	case protocol.FocusEnter:
		return o.handleFocusEnter(ctx, m)
	case protocol.FocusExit:
		return o.handleFocusExit(ctx)
	case protocol.FocusChat:
		return o.handleFocusChat(ctx, m)
	case protocol.FocusFeedback:
		return o.handleFocusFeedback(ctx, m)
	case protocol.FocusApproveComment:
		return o.handleFocusApproveComment(ctx, m)
	default:
		return o.send(protocol.NewError("Unsupported message"))
	}
}

// requireState sends an error event and reports false when the current
// state is not one of the allowed states.
func (o *Orchestrator) requireState(allowed ...domain.SessionStatus) (bool, error) {
	for _, s := range allowed {
		if o.state == s {
			return true, nil
		}
	}
	return false, o.send(protocol.NewError(fmt.Sprintf("Not in %s state", allowed[0])))
}

// trackContext derives a cancellable context registered with the
// session so session.cancel can tear down in-flight work.
func (o *Orchestrator) trackContext(ctx context.Context) (context.Context, func()) {
	tctx, cancel := context.WithCancel(ctx)
	o.cancelMu.Lock()
	id := o.nextCancel
	o.nextCancel++
	o.cancels[id] = cancel
	o.cancelMu.Unlock()
	return tctx, func() {
		cancel()
		o.cancelMu.Lock()
		delete(o.cancels, id)
		o.cancelMu.Unlock()
	}
}

func (o *Orchestrator) cancelInFlight() int {
	o.cancelMu.Lock()
	defer o.cancelMu.Unlock()
	n := len(o.cancels)
	for id, cancel := range o.cancels {
		cancel()
		delete(o.cancels, id)
	}
	return n
}

func (o *Orchestrator) handleTaskSelect(ctx context.Context, msg protocol.TaskSelect) error {
	if ok, err := o.requireState(domain.StatusIdle); !ok {
		return err
	}
	taskType := domain.TaskType(msg.TaskType)
	if !domain.ValidTaskType(taskType) {
		return o.send(protocol.NewError(fmt.Sprintf("Unknown task type %q", msg.TaskType)))
	}
	o.logger.Info("task selected", "task_type", msg.TaskType, "topic", msg.Topic)

	now := time.Now().UTC()
	session := &domain.Session{
		ID:                 shortuuid.New(),
		UserID:             o.userID,
		TaskType:           taskType,
		Topic:              msg.Topic,
		Status:             domain.StatusInterview,
		StyleID:            msg.StyleID,
		SelectedDraftIndex: -1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := o.deps.Sessions.Create(ctx, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	if msg.StyleID != "" {
		if err := o.deps.Prefs.Set(ctx, o.userID, learning.LastStyleKey(), msg.StyleID); err != nil {
			o.logger.Warn("persist last style failed", "error", err)
		}
	}

	o.session = session
	o.drafts = nil
	o.highlights = nil
	o.round = 0
	o.msgOrdering = 0
	o.state = domain.StatusInterview
	o.interviewer = interview.NewAgent(o.deps.Client, o.deps.Searcher, o.send, o.recordInterviewMessage, o.logger)

	if err := o.send(protocol.NewStatus(fmt.Sprintf("Starting interview for your %s...", taskType))); err != nil {
		return err
	}

	tctx, release := o.trackContext(ctx)
	defer release()
	outcome, err := o.interviewer.Start(tctx, taskType, msg.Topic, o.loadStyleContext(ctx))
	if err != nil {
		return err
	}
	if outcome.Ready {
		return o.interviewComplete(ctx, outcome)
	}
	return nil
}

func (o *Orchestrator) handleInterviewAnswer(ctx context.Context, msg protocol.InterviewAnswer) error {
	if ok, err := o.requireState(domain.StatusInterview); !ok {
		return err
	}
	if o.interviewer == nil {
		return o.send(protocol.NewError("No active interview"))
	}

	o.recordInterviewMessage(domain.RoleUser, msg.Answer, "")

	tctx, release := o.trackContext(ctx)
	defer release()
	outcome, err := o.interviewer.ProcessAnswer(tctx, msg.Answer)
	if err != nil {
		return err
	}
	if outcome.Ready {
		return o.interviewComplete(ctx, outcome)
	}
	return nil
}

// recordInterviewMessage persists one transcript entry. The ordering
// counter advances even when the write fails so replay order never
// collides.
func (o *Orchestrator) recordInterviewMessage(role, content, detailJSON string) {
	if o.session == nil {
		return
	}
	ordering := o.msgOrdering
	o.msgOrdering++

	m := &domain.InterviewMessage{
		ID:        shortuuid.New(),
		SessionID: o.session.ID,
		Role:      role,
		Content:   content,
		Ordering:  ordering,
		CreatedAt: time.Now().UTC(),
	}
	switch role {
	case domain.RoleThought:
		m.ThoughtJSON = detailJSON
	case domain.RoleSearch:
		m.SearchJSON = detailJSON
	case domain.RoleReadyToDraft:
		m.ReadyJSON = detailJSON
	}
	if err := o.deps.Messages.Create(context.Background(), m); err != nil {
		o.logger.Error("persist interview message failed", "ordering", ordering, "error", err)
	}
}

func (o *Orchestrator) interviewComplete(ctx context.Context, outcome *interview.Outcome) error {
	o.session.InterviewSummary = outcome.Summary
	o.session.KeyMaterial = outcome.KeyMaterial
	o.state = domain.StatusOutline
	if err := o.deps.Sessions.UpdateStatus(ctx, o.session.ID, domain.StatusOutline); err != nil {
		o.logger.Warn("persist status failed", "error", err)
	}

	if err := o.send(protocol.NewStatus("Building your outline...")); err != nil {
		return err
	}

	tctx, release := o.trackContext(ctx)
	defer release()
	gen := drafting.NewOutlineGenerator(o.deps.Client, o.logger)
	nodes := gen.Generate(tctx, o.draftParams(ctx))
	return o.send(protocol.NewOutlineNodes(nodes))
}

func (o *Orchestrator) handleOutlineConfirm(ctx context.Context, msg protocol.OutlineConfirm) error {
	if ok, err := o.requireState(domain.StatusOutline); !ok {
		return err
	}
	o.session.Outline = msg.Nodes
	return o.startDrafting(ctx)
}

func (o *Orchestrator) handleOutlineSkip(ctx context.Context) error {
	if ok, err := o.requireState(domain.StatusOutline); !ok {
		return err
	}
	o.session.Outline = nil
	return o.startDrafting(ctx)
}

func (o *Orchestrator) startDrafting(ctx context.Context) error {
	o.state = domain.StatusDrafting
	o.session.Status = domain.StatusDrafting
	if err := o.deps.Sessions.UpdateMaterial(ctx, o.session); err != nil {
		o.logger.Warn("persist session material failed", "error", err)
	}

	if err := o.send(protocol.NewStatus("Developing your drafts...")); err != nil {
		return err
	}

	tctx, release := o.trackContext(ctx)
	defer release()
	gen := drafting.NewGenerator(o.deps.Client, o.send, o.logger)
	results := gen.Generate(tctx, o.draftParams(ctx))
	if tctx.Err() != nil {
		return nil
	}
	return o.finishRound(ctx, results)
}

// finishRound persists one round's drafts and moves to highlighting.
func (o *Orchestrator) finishRound(ctx context.Context, results []drafting.Result) error {
	drafts := make([]*domain.Draft, len(results))
	for i, r := range results {
		d := &domain.Draft{
			ID:         shortuuid.New(),
			SessionID:  o.session.ID,
			Round:      o.round,
			DraftIndex: i,
			Title:      r.Title,
			Angle:      r.Angle,
			Content:    r.Content,
			WordCount:  r.WordCount,
			CreatedAt:  time.Now().UTC(),
		}
		if err := o.deps.Drafts.Upsert(ctx, d); err != nil {
			o.logger.Error("persist draft failed", "draft_index", i, "error", err)
		}
		drafts[i] = d
	}
	o.drafts = drafts
	o.state = domain.StatusHighlighting
	if err := o.deps.Sessions.UpdateStatus(ctx, o.session.ID, domain.StatusHighlighting); err != nil {
		o.logger.Warn("persist status failed", "error", err)
	}
	return nil
}

func (o *Orchestrator) handleHighlight(ctx context.Context, msg protocol.DraftHighlight) error {
	if ok, err := o.requireState(domain.StatusHighlighting); !ok {
		return err
	}
	if msg.DraftIndex < 0 || msg.DraftIndex >= len(o.drafts) {
		return o.send(protocol.NewError("Invalid draft index"))
	}
	content := o.drafts[msg.DraftIndex].Content
	if msg.Start < 0 || msg.Start > msg.End || msg.End > len(content) {
		return o.send(protocol.NewError("Highlight range out of bounds"))
	}

	h := &domain.Highlight{
		ID:         shortuuid.New(),
		SessionID:  o.session.ID,
		DraftIndex: msg.DraftIndex,
		Start:      msg.Start,
		End:        msg.End,
		Text:       content[msg.Start:msg.End],
		Sentiment:  domain.Sentiment(msg.Sentiment),
		Label:      msg.Label,
		Note:       msg.Note,
		CreatedAt:  time.Now().UTC(),
	}
	o.highlights = append(o.highlights, h)
	if err := o.deps.Highlights.Create(ctx, h); err != nil {
		return fmt.Errorf("persist highlight: %w", err)
	}
	return nil
}

// highlightAt resolves a per-draft positional index against the
// in-memory highlight list.
func (o *Orchestrator) highlightAt(draftIndex, highlightIndex int) (*domain.Highlight, int) {
	n := 0
	for i, h := range o.highlights {
		if h.DraftIndex != draftIndex {
			continue
		}
		if n == highlightIndex {
			return h, i
		}
		n++
	}
	return nil, -1
}

func (o *Orchestrator) handleHighlightUpdate(ctx context.Context, msg protocol.HighlightUpdate) error {
	if ok, err := o.requireState(domain.StatusHighlighting); !ok {
		return err
	}
	h, _ := o.highlightAt(msg.DraftIndex, msg.HighlightIndex)
	if h == nil {
		return o.send(protocol.NewError("Highlight not found"))
	}
	h.Label = msg.Label
	if err := o.deps.Highlights.Update(ctx, h); err != nil {
		return fmt.Errorf("update highlight: %w", err)
	}
	return nil
}

func (o *Orchestrator) handleHighlightRemove(ctx context.Context, msg protocol.HighlightRemove) error {
	if ok, err := o.requireState(domain.StatusHighlighting); !ok {
		return err
	}
	h, pos := o.highlightAt(msg.DraftIndex, msg.HighlightIndex)
	if h == nil {
		return o.send(protocol.NewError("Highlight not found"))
	}
	o.highlights = append(o.highlights[:pos], o.highlights[pos+1:]...)
	if err := o.deps.Highlights.Delete(ctx, h.ID); err != nil {
		return fmt.Errorf("remove highlight: %w", err)
	}
	return nil
}

func (o *Orchestrator) handleDraftEdit(ctx context.Context, msg protocol.DraftEdit) error {
	if ok, err := o.requireState(domain.StatusHighlighting); !ok {
		return err
	}
	if msg.DraftIndex < 0 || msg.DraftIndex >= len(o.drafts) {
		return o.send(protocol.NewError("Invalid draft index"))
	}
	d := o.drafts[msg.DraftIndex]
	d.Content = msg.Content
	d.WordCount = domain.CountWords(msg.Content)
	if err := o.deps.Drafts.Upsert(ctx, d); err != nil {
		return fmt.Errorf("persist draft edit: %w", err)
	}
	return nil
}

func (o *Orchestrator) handleSynthesize(ctx context.Context) error {
	if ok, err := o.requireState(domain.StatusHighlighting); !ok {
		return err
	}
	if len(o.highlights) == 0 {
		return o.send(protocol.NewError("Add some highlights before synthesizing"))
	}

	o.state = domain.StatusDrafting
	o.round++
	if err := o.send(protocol.NewStatus(fmt.Sprintf("Synthesizing round %d...", o.round))); err != nil {
		return err
	}

	priorDrafts := o.drafts
	priorHighlights := o.highlights

	tctx, release := o.trackContext(ctx)
	defer release()
	syn := drafting.NewSynthesizer(o.deps.Client, o.send, o.logger)
	results := syn.Synthesize(tctx, o.draftParams(ctx), o.round, priorDrafts, priorHighlights)
	if tctx.Err() != nil {
		return nil
	}

	// Highlights are round-scoped feedback; the new round starts clean.
	o.highlights = nil
	if err := o.deps.Highlights.DeleteBySession(ctx, o.session.ID); err != nil {
		o.logger.Warn("clear highlights failed", "error", err)
	}
	return o.finishRound(ctx, results)
}

func (o *Orchestrator) handleResume(ctx context.Context, msg protocol.SessionResume) error {
	session, err := o.deps.Sessions.GetByID(ctx, msg.SessionID)
	if err != nil || session.UserID != o.userID {
		return o.send(protocol.NewError("Session not found"))
	}

	maxRound, err := o.deps.Drafts.MaxRound(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	if maxRound < 0 {
		maxRound = 0
	}
	drafts, err := o.deps.Drafts.ListByRound(ctx, session.ID, maxRound)
	if err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	highlights, err := o.deps.Highlights.ListBySession(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	ordering, err := o.deps.Messages.NextOrdering(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("resume: %w", err)
	}

	o.session = session
	o.drafts = drafts
	o.highlights = highlights
	o.round = maxRound
	o.msgOrdering = ordering
	o.interviewer = nil
	o.focusHandler = nil
	o.state = domain.StatusHighlighting
	if err := o.deps.Sessions.UpdateStatus(ctx, session.ID, domain.StatusHighlighting); err != nil {
		o.logger.Warn("persist status failed", "error", err)
	}

	o.logger.Info("session resumed",
		"session_id", session.ID,
		"drafts", len(drafts),
		"highlights", len(highlights),
		"round", maxRound)
	return o.send(protocol.NewStatus("Session resumed."))
}

func (o *Orchestrator) handleCancel(ctx context.Context) error {
	aborted := o.cancelInFlight()
	if o.focusHandler != nil {
		o.focusHandler.Cancel()
		o.focusHandler = nil
	}
	o.interviewer = nil
	o.state = domain.StatusIdle
	if o.session != nil {
		if err := o.deps.Sessions.UpdateStatus(ctx, o.session.ID, domain.StatusIdle); err != nil {
			o.logger.Warn("persist status failed", "error", err)
		}
	}
	o.logger.Info("session cancelled", "tasks_aborted", aborted)
	return o.send(protocol.NewStatus("Session cancelled."))
}

func (o *Orchestrator) handleFocusEnter(ctx context.Context, msg protocol.FocusEnter) error {
	if ok, err := o.requireState(domain.StatusHighlighting, domain.StatusFocused); !ok {
		return err
	}
	if msg.DraftIndex < 0 || msg.DraftIndex >= len(o.drafts) {
		return o.send(protocol.NewError("Invalid draft index"))
	}

	// Switching drafts tears down the previous handler.
	if o.focusHandler != nil {
		o.focusHandler.Cancel()
	}

	if err := o.deps.Sessions.UpdateSelectedDraft(ctx, o.session.ID, msg.DraftIndex); err != nil {
		o.logger.Warn("persist selected draft failed", "error", err)
	}

	prefContext := o.distiller.PrefContext(ctx, o.userID, o.session.StyleID)

	o.state = domain.StatusFocused
	if err := o.deps.Sessions.UpdateStatus(ctx, o.session.ID, domain.StatusFocused); err != nil {
		o.logger.Warn("persist status failed", "error", err)
	}
	o.focusHandler = focus.NewHandler(o.deps.Client, o.deps.Searcher, o.send, o.deps.Feedback, o.logger,
		o.session.ID, o.session.InterviewSummary, o.session.KeyMaterial, prefContext)

	tctx, release := o.trackContext(ctx)
	defer release()
	return o.focusHandler.Enter(tctx, msg.DraftIndex, o.drafts[msg.DraftIndex].Content)
}

func (o *Orchestrator) handleFocusExit(ctx context.Context) error {
	if ok, err := o.requireState(domain.StatusFocused); !ok {
		return err
	}
	if o.focusHandler != nil {
		o.focusHandler.Cancel()
		o.focusHandler = nil
	}
	o.state = domain.StatusHighlighting
	if err := o.deps.Sessions.UpdateStatus(ctx, o.session.ID, domain.StatusHighlighting); err != nil {
		o.logger.Warn("persist status failed", "error", err)
	}

	// Best-effort learning pass; its failure is never observed here.
	if o.session.StyleID != "" {
		userID, styleID, sessionID := o.userID, o.session.StyleID, o.session.ID
		go o.distiller.DistillSession(context.Background(), userID, styleID, sessionID)
	}
	return nil
}

func (o *Orchestrator) handleFocusChat(ctx context.Context, msg protocol.FocusChat) error {
	if o.state != domain.StatusFocused || o.focusHandler == nil {
		return o.send(protocol.NewError("Not in focus mode"))
	}
	tctx, release := o.trackContext(ctx)
	defer release()
	return o.focusHandler.Chat(tctx, msg.Message)
}

func (o *Orchestrator) handleFocusFeedback(ctx context.Context, msg protocol.FocusFeedback) error {
	if o.state != domain.StatusFocused || o.focusHandler == nil {
		return nil
	}
	return o.focusHandler.Feedback(ctx, msg)
}

func (o *Orchestrator) handleFocusApproveComment(ctx context.Context, msg protocol.FocusApproveComment) error {
	if o.state != domain.StatusFocused || o.focusHandler == nil {
		return nil
	}
	tctx, release := o.trackContext(ctx)
	defer release()
	return o.focusHandler.ApproveComment(tctx, msg.ID, msg.CurrentContent)
}

func (o *Orchestrator) draftParams(ctx context.Context) drafting.Params {
	return drafting.Params{
		TaskType:         o.session.TaskType,
		Topic:            o.session.Topic,
		InterviewSummary: o.session.InterviewSummary,
		KeyMaterial:      o.session.KeyMaterial,
		StyleContext:     o.loadStyleContext(ctx),
		Outline:          o.session.Outline,
	}
}

// loadStyleContext renders the selected writing style and its samples
// as a prompt block. Empty when no style is selected or nothing is
// stored for it.
func (o *Orchestrator) loadStyleContext(ctx context.Context) string {
	if o.session == nil || o.session.StyleID == "" {
		return ""
	}
	style, err := o.deps.Styles.GetByID(ctx, o.session.StyleID)
	if err != nil {
		o.logger.Warn("load style failed", "style_id", o.session.StyleID, "error", err)
		return ""
	}
	samples, err := o.deps.Styles.ListSamples(ctx, style.ID)
	if err != nil {
		o.logger.Warn("load style samples failed", "style_id", style.ID, "error", err)
		samples = nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "WRITING STYLE: %s", style.Name)
	if style.Tone != "" {
		fmt.Fprintf(&b, " (tone: %s)", style.Tone)
	}
	b.WriteString("\n")
	if style.Description != "" {
		b.WriteString(style.Description + "\n")
	}
	if len(samples) > 0 {
		b.WriteString("\nSAMPLES OF THE WRITER'S VOICE:\n")
		for _, s := range samples {
			fmt.Fprintf(&b, "\n--- %s ---\n%s\n", s.Title, s.Content)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
