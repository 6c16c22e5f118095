// Package server exposes the REST API and the websocket endpoint the
// writing workflow runs over.
package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/lithammer/shortuuid/v4"

	"github.com/samefarrar/inkwell/internal/config"
	"github.com/samefarrar/inkwell/internal/domain"
	"github.com/samefarrar/inkwell/internal/llm"
	"github.com/samefarrar/inkwell/internal/repository"
	"github.com/samefarrar/inkwell/internal/search"
)

const sessionListLimit = 50

// Server wires the HTTP surface to the repositories and the model
// gateway.
type Server struct {
	cfg      config.Server
	logger   *slog.Logger
	auth     *Authenticator
	client   llm.Client
	searcher search.Provider

	users      repository.UserRepo
	sessions   repository.SessionRepo
	drafts     repository.DraftRepo
	highlights repository.HighlightRepo
	messages   repository.MessageRepo
	feedback   repository.FeedbackRepo
	prefs      repository.PreferenceRepo
	styles     repository.StyleRepo

	echo *echo.Echo
}

// New builds a Server over an open database handle.
func New(cfg config.Server, db *sql.DB, client llm.Client, searcher search.Provider, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	users := repository.NewSQLiteUserRepo(db)
	s := &Server{
		cfg:        cfg,
		logger:     logger,
		auth:       NewAuthenticator(users, cfg.JWTSecret),
		client:     client,
		searcher:   searcher,
		users:      users,
		sessions:   repository.NewSQLiteSessionRepo(db),
		drafts:     repository.NewSQLiteDraftRepo(db),
		highlights: repository.NewSQLiteHighlightRepo(db),
		messages:   repository.NewSQLiteMessageRepo(db),
		feedback:   repository.NewSQLiteFeedbackRepo(db),
		prefs:      repository.NewSQLitePreferenceRepo(db),
		styles:     repository.NewSQLiteStyleRepo(db),
	}
	s.echo = s.buildRoutes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.echo }

// ListenAndServe runs the server on the configured address.
func (s *Server) ListenAndServe() error {
	s.logger.Info("server listening", "addr", s.cfg.Addr)
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) buildRoutes() *echo.Echo {
	e := echo.New()

	e.GET("/healthz", func(c *echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	auth := e.Group("/api/auth")
	auth.POST("/register", s.handleRegister)
	auth.POST("/login", s.handleLogin)
	auth.POST("/logout", s.handleLogout)
	auth.GET("/me", s.handleMe)

	sessions := e.Group("/api/sessions")
	sessions.GET("", s.handleListSessions)
	sessions.GET("/latest", s.handleLatestSession)
	sessions.GET("/:id", s.handleSessionDetail)

	styles := e.Group("/api/styles")
	styles.GET("", s.handleListStyles)
	styles.POST("", s.handleCreateStyle)
	styles.GET("/:id", s.handleGetStyle)
	styles.POST("/:id/samples", s.handleAddSample)

	e.GET("/ws", s.handleWebSocket)
	return e
}

// requireAuth resolves the user from the request or fails with 401.
func (s *Server) requireAuth(c *echo.Context) (*domain.User, error) {
	user, err := s.auth.Authenticate(c.Request().Context(), c.Request())
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return user, nil
}

// ── Auth ────────────────────────────────────────────────────────────

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Plan  string `json:"plan"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, Plan: string(u.Plan)}
}

func (s *Server) handleRegister(c *echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil || req.Email == "" || len(req.Password) < 8 {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password (min 8 chars) required")
	}
	ctx := c.Request().Context()

	email := domain.NormalizeEmail(req.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "email already registered")
	}

	hashed, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	user := &domain.User{
		ID:             shortuuid.New(),
		Email:          email,
		Name:           req.Name,
		HashedPassword: hashed,
		Plan:           domain.PlanFree,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	token, err := s.auth.CreateToken(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	http.SetCookie(c.Response(), authCookie(token, int(tokenLifetime.Seconds())))
	return c.JSON(http.StatusCreated, map[string]any{"token": token, "user": toUserResponse(user)})
}

func (s *Server) handleLogin(c *echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password required")
	}
	ctx := c.Request().Context()

	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(req.Email))
	if err != nil {
		s.auth.verifyDummy(req.Password)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if !s.auth.VerifyPassword(req.Password, user.HashedPassword) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	token, err := s.auth.CreateToken(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	http.SetCookie(c.Response(), authCookie(token, int(tokenLifetime.Seconds())))
	return c.JSON(http.StatusOK, map[string]any{"token": token, "user": toUserResponse(user)})
}

func (s *Server) handleLogout(c *echo.Context) error {
	http.SetCookie(c.Response(), authCookie("", -1))
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// ── Sessions ────────────────────────────────────────────────────────

type sessionSummary struct {
	ID        string `json:"id"`
	TaskType  string `json:"task_type"`
	Topic     string `json:"topic"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	MaxRound  int    `json:"max_round"`
}

func (s *Server) handleListSessions(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	sessions, err := s.sessions.ListByUser(ctx, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if len(sessions) > sessionListLimit {
		sessions = sessions[:sessionListLimit]
	}

	resp := make([]sessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		maxRound, err := s.drafts.MaxRound(ctx, sess.ID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if maxRound < 0 {
			maxRound = 0
		}
		resp = append(resp, sessionSummary{
			ID:        sess.ID,
			TaskType:  string(sess.TaskType),
			Topic:     sess.Topic,
			Status:    string(sess.Status),
			CreatedAt: sess.CreatedAt.Format(time.RFC3339),
			MaxRound:  maxRound,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

type draftResponse struct {
	Title      string `json:"title"`
	Angle      string `json:"angle"`
	Content    string `json:"content"`
	WordCount  int    `json:"word_count"`
	DraftIndex int    `json:"draft_index"`
}

type highlightResponse struct {
	DraftIndex int    `json:"draft_index"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Text       string `json:"text"`
	Sentiment  string `json:"sentiment"`
	Label      string `json:"label"`
	Note       string `json:"note"`
}

func toHighlightResponses(highlights []*domain.Highlight) []highlightResponse {
	out := make([]highlightResponse, 0, len(highlights))
	for _, h := range highlights {
		out = append(out, highlightResponse{
			DraftIndex: h.DraftIndex,
			Start:      h.Start,
			End:        h.End,
			Text:       h.Text,
			Sentiment:  string(h.Sentiment),
			Label:      h.Label,
			Note:       h.Note,
		})
	}
	return out
}

// handleLatestSession returns the newest session that has drafts, with
// its latest round hydrated. Clients use it to offer resume on load.
func (s *Server) handleLatestSession(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	sessions, err := s.sessions.ListByUser(ctx, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	for _, sess := range sessions {
		maxRound, err := s.drafts.MaxRound(ctx, sess.ID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if maxRound < 0 {
			continue
		}
		drafts, err := s.drafts.ListByRound(ctx, sess.ID, maxRound)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		highlights, err := s.highlights.ListBySession(ctx, sess.ID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		draftsOut := make([]draftResponse, 0, len(drafts))
		for _, d := range drafts {
			draftsOut = append(draftsOut, draftResponse{
				Title: d.Title, Angle: d.Angle, Content: d.Content,
				WordCount: d.WordCount, DraftIndex: d.DraftIndex,
			})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"found":           true,
			"session_id":      sess.ID,
			"task_type":       string(sess.TaskType),
			"topic":           sess.Topic,
			"synthesis_round": maxRound,
			"drafts":          draftsOut,
			"highlights":      toHighlightResponses(highlights),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"found": false})
}

type interviewMessageResponse struct {
	Role        string `json:"role"`
	Content     string `json:"content"`
	ThoughtJSON string `json:"thought_json,omitempty"`
	SearchJSON  string `json:"search_json,omitempty"`
	ReadyJSON   string `json:"ready_json,omitempty"`
	Ordering    int    `json:"ordering"`
}

func (s *Server) handleSessionDetail(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	sess, err := s.sessions.GetByID(ctx, c.Param("id"))
	if err != nil || sess.UserID != user.ID {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}

	msgs, err := s.messages.ListBySession(ctx, sess.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	msgsOut := make([]interviewMessageResponse, 0, len(msgs))
	for _, m := range msgs {
		msgsOut = append(msgsOut, interviewMessageResponse{
			Role:        m.Role,
			Content:     m.Content,
			ThoughtJSON: m.ThoughtJSON,
			SearchJSON:  m.SearchJSON,
			ReadyJSON:   m.ReadyJSON,
			Ordering:    m.Ordering,
		})
	}

	maxRound, err := s.drafts.MaxRound(ctx, sess.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	rounds := map[int][]draftResponse{}
	for round := 0; round <= maxRound; round++ {
		drafts, err := s.drafts.ListByRound(ctx, sess.ID, round)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		for _, d := range drafts {
			rounds[round] = append(rounds[round], draftResponse{
				Title: d.Title, Angle: d.Angle, Content: d.Content,
				WordCount: d.WordCount, DraftIndex: d.DraftIndex,
			})
		}
	}

	highlights, err := s.highlights.ListBySession(ctx, sess.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"found":              true,
		"session_id":         sess.ID,
		"task_type":          string(sess.TaskType),
		"topic":              sess.Topic,
		"status":             string(sess.Status),
		"created_at":         sess.CreatedAt.Format(time.RFC3339),
		"interview_messages": msgsOut,
		"rounds":             rounds,
		"highlights":         toHighlightResponses(highlights),
	})
}

// ── Styles ──────────────────────────────────────────────────────────

type styleCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Tone        string `json:"tone"`
}

type styleResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Tone        string `json:"tone"`
}

type sampleCreateRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (s *Server) handleListStyles(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	styles, err := s.styles.ListByUser(c.Request().Context(), user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]styleResponse, 0, len(styles))
	for _, st := range styles {
		resp = append(resp, styleResponse{ID: st.ID, Name: st.Name, Description: st.Description, Tone: st.Tone})
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCreateStyle(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	var req styleCreateRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name required")
	}

	now := time.Now().UTC()
	style := &domain.WritingStyle{
		ID:          shortuuid.New(),
		UserID:      user.ID,
		Name:        req.Name,
		Description: req.Description,
		Tone:        req.Tone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.styles.Create(c.Request().Context(), style); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, styleResponse{
		ID: style.ID, Name: style.Name, Description: style.Description, Tone: style.Tone,
	})
}

// userStyle loads a style and verifies ownership.
func (s *Server) userStyle(c *echo.Context, user *domain.User) (*domain.WritingStyle, error) {
	style, err := s.styles.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil || style.UserID != user.ID {
		return nil, echo.NewHTTPError(http.StatusNotFound, "style not found")
	}
	return style, nil
}

func (s *Server) handleGetStyle(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	style, err := s.userStyle(c, user)
	if err != nil {
		return err
	}
	samples, err := s.styles.ListSamples(c.Request().Context(), style.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	samplesOut := make([]map[string]any, 0, len(samples))
	for _, sample := range samples {
		samplesOut = append(samplesOut, map[string]any{
			"id":         sample.ID,
			"title":      sample.Title,
			"word_count": sample.WordCount,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"id":          style.ID,
		"name":        style.Name,
		"description": style.Description,
		"tone":        style.Tone,
		"samples":     samplesOut,
	})
}

func (s *Server) handleAddSample(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	style, err := s.userStyle(c, user)
	if err != nil {
		return err
	}
	var req sampleCreateRequest
	if err := c.Bind(&req); err != nil || req.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "content required")
	}

	sample := &domain.StyleSample{
		ID:        shortuuid.New(),
		StyleID:   style.ID,
		Title:     req.Title,
		Content:   req.Content,
		WordCount: domain.CountWords(req.Content),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.styles.AddSample(c.Request().Context(), sample); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"id":         sample.ID,
		"title":      sample.Title,
		"word_count": sample.WordCount,
	})
}
