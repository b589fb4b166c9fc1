package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"carewise/internal/accessibility"
	"carewise/internal/content"
	"carewise/internal/metrics"
	"carewise/internal/models"
	"carewise/internal/quiz"
	"carewise/internal/security"
	"carewise/internal/service"
	"carewise/internal/session"
	"carewise/internal/speech"
	"carewise/internal/vault"
	"carewise/internal/web"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Options wires the server's collaborators. Library, Bank, Records,
// Renderer, Visitors, Tokens, CSRF and RateLimiter are required.
type Options struct {
	Library     *content.Library
	Bank        *quiz.Bank
	Rules       quiz.Rules
	Records     *service.RecordSync
	Reports     *service.ReportService
	Email       *service.EmailService
	Ledger      *vault.Ledger
	Settings    *accessibility.Store
	Synthesizer *speech.Synthesizer
	Recognizer  *speech.Recognizer
	Avatar      *speech.Avatar
	Renderer    *web.Renderer
	Visitors    session.Store[*Visitor]
	Tokens      *security.VisitorTokens
	CSRF        *security.CSRFGenerator
	RateLimiter *security.RateLimiter
	Metrics     *metrics.Metrics
	Startup     *Startup
	Logger      *zap.Logger

	StaticDir       string
	AudioDir        string
	GameTick        time.Duration
	AnnouncementTTL time.Duration

	// BaseContext bounds background work started on a visitor's behalf.
	BaseContext context.Context
}

// Server serves every CareWise page and JSON endpoint.
type Server struct {
	library     *content.Library
	bank        *quiz.Bank
	rules       quiz.Rules
	records     *service.RecordSync
	reports     *service.ReportService
	email       *service.EmailService
	ledger      *vault.Ledger
	settings    *accessibility.Store
	synthesizer *speech.Synthesizer
	recognizer  *speech.Recognizer
	avatar      *speech.Avatar
	renderer    *web.Renderer
	csrf        *security.CSRFGenerator
	metrics     *metrics.Metrics
	startup     *Startup
	logger      *zap.Logger
	middleware  *Middleware

	staticDir       string
	audioDir        string
	gameTick        time.Duration
	announcementTTL time.Duration
	baseCtx         context.Context

	visitors  session.Store[*Visitor]
	visitorMu sync.Mutex
}

// NewServer validates opts and returns a server.
func NewServer(opts Options) (*Server, error) {
	switch {
	case opts.Library == nil, opts.Bank == nil:
		return nil, errors.New("content library and question bank are required")
	case opts.Records == nil:
		return nil, errors.New("record sync is required")
	case opts.Renderer == nil:
		return nil, errors.New("renderer is required")
	case opts.Visitors == nil:
		return nil, errors.New("visitor store is required")
	case opts.Tokens == nil, opts.CSRF == nil, opts.RateLimiter == nil:
		return nil, errors.New("visitor tokens, csrf generator and rate limiter are required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Reports == nil {
		opts.Reports = service.NewReportService()
	}
	if opts.Ledger == nil {
		opts.Ledger = vault.NewLedger()
	}
	if opts.Settings == nil {
		opts.Settings = accessibility.NewStore(logger)
	}
	if opts.Recognizer == nil {
		opts.Recognizer = speech.NewRecognizer("", "", 0, nil)
	}
	if opts.Avatar == nil {
		opts.Avatar = speech.NewAvatar("", "", 0, nil, logger)
	}
	if opts.Startup == nil {
		opts.Startup = NewStartup()
	}
	if opts.BaseContext == nil {
		opts.BaseContext = context.Background()
	}

	s := &Server{
		library:         opts.Library,
		bank:            opts.Bank,
		rules:           opts.Rules,
		records:         opts.Records,
		reports:         opts.Reports,
		email:           opts.Email,
		ledger:          opts.Ledger,
		settings:        opts.Settings,
		synthesizer:     opts.Synthesizer,
		recognizer:      opts.Recognizer,
		avatar:          opts.Avatar,
		renderer:        opts.Renderer,
		csrf:            opts.CSRF,
		metrics:         opts.Metrics,
		startup:         opts.Startup,
		logger:          logger,
		staticDir:       opts.StaticDir,
		audioDir:        opts.AudioDir,
		gameTick:        opts.GameTick,
		announcementTTL: opts.AnnouncementTTL,
		baseCtx:         opts.BaseContext,
		visitors:        opts.Visitors,
	}
	s.middleware = NewMiddleware(opts.Tokens, opts.CSRF, opts.RateLimiter, s.loadVisitor, logger, opts.Metrics)
	return s, nil
}

func (s *Server) activeGames() prometheus.Gauge {
	if s.metrics == nil {
		return nil
	}
	return s.metrics.ActiveGames
}

// Routes returns the application's handler, wrapped in request logging.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	m := s.middleware

	page := func(h http.HandlerFunc) http.HandlerFunc { return m.Visitor(h) }
	form := func(h http.HandlerFunc) http.HandlerFunc { return m.Visitor(m.CSRFProtect(h)) }
	limited := func(h http.HandlerFunc) http.HandlerFunc { return m.RateLimit(m.Visitor(m.CSRFProtect(h))) }

	// Static files
	mux.Handle("GET /static/", http.StripPrefix("/static/", web.StaticHandler(web.StaticFS(s.staticDir))))
	if s.audioDir != "" {
		mux.Handle("GET /audio/", http.StripPrefix("/audio/", http.FileServer(http.Dir(s.audioDir))))
	}

	mux.HandleFunc("GET /healthz", s.Health)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	mux.HandleFunc("GET /{$}", page(s.Home))

	mux.HandleFunc("GET /ask-ai", page(s.ShowAskAI))
	mux.HandleFunc("POST /ask-ai", limited(s.AskAI))

	mux.HandleFunc("GET /medicine", page(s.ShowMedicine))
	mux.HandleFunc("POST /medicine", form(s.AskMedicine))

	mux.HandleFunc("GET /health-form", page(s.ShowHealthForm))
	mux.HandleFunc("POST /health-form", form(s.SubmitHealthForm))
	mux.HandleFunc("GET /health-form/report.pdf", page(s.DownloadReport))
	mux.HandleFunc("POST /health-form/email", limited(s.EmailReport))

	mux.HandleFunc("GET /mental-health", page(s.ShowMentalHealth))
	mux.HandleFunc("POST /mental-health", form(s.SubmitMood))

	mux.HandleFunc("GET /awareness", page(s.ShowAwareness))
	mux.HandleFunc("GET /awareness/{id}", page(s.ShowLesson))
	mux.HandleFunc("POST /awareness/{id}/quiz/start", form(s.StartLessonQuiz))
	mux.HandleFunc("POST /awareness/{id}/quiz/answer", form(s.AnswerLessonQuiz))

	mux.HandleFunc("GET /location", page(s.ShowLocation))
	mux.HandleFunc("POST /location", form(s.SetLocation))

	mux.HandleFunc("GET /settings", page(s.ShowSettings))
	mux.HandleFunc("POST /settings", form(s.SaveSettings))
	mux.HandleFunc("POST /settings/reset", form(s.ResetSettings))
	mux.HandleFunc("GET /api/accessibility", page(s.GetAccessibility))
	mux.HandleFunc("POST /api/accessibility", form(s.PatchAccessibility))
	mux.HandleFunc("GET /api/announcements", page(s.Announcements))

	mux.HandleFunc("GET /health-quest", page(s.ShowHealthQuest))
	mux.HandleFunc("POST /health-quest/start", form(s.StartQuest))
	mux.HandleFunc("POST /health-quest/category", form(s.ChangeQuestCategory))
	mux.HandleFunc("POST /health-quest/answer", form(s.AnswerQuest))
	mux.HandleFunc("POST /health-quest/next", form(s.NextQuestion))
	mux.HandleFunc("POST /health-quest/reset", form(s.ResetQuest))

	mux.HandleFunc("GET /sunshine-hero", page(s.ShowGame))
	mux.HandleFunc("GET /api/game/state", page(s.GameState))
	mux.HandleFunc("POST /api/game/start", form(s.StartGame))
	mux.HandleFunc("POST /api/game/pause", form(s.PauseGame))
	mux.HandleFunc("POST /api/game/move", form(s.MoveGame))
	mux.HandleFunc("POST /api/game/reset", form(s.ResetGame))

	mux.HandleFunc("POST /api/speech", limited(s.Speak))
	mux.HandleFunc("POST /api/speech/reset", form(s.ResetSpeech))
	mux.HandleFunc("POST /api/transcribe", limited(s.Transcribe))

	mux.HandleFunc("GET /carechain-vault", page(s.ShowVault))
	mux.HandleFunc("POST /carechain-vault/generate", limited(s.GenerateRecord))
	mux.HandleFunc("POST /carechain-vault/verify", form(s.VerifyRecord))
	mux.HandleFunc("POST /carechain-vault/unlock", form(s.UnlockService))

	return m.Logging(mux)
}

// Page is the data every template receives.
type Page struct {
	Title         string
	Nav           string
	CSRFToken     string
	Settings      models.AccessibilitySettings
	Presentation  accessibility.Presentation
	Announcements []string
	Error         string
	Data          any
}

// render executes a page template with the visitor's presentation settings
// and pending announcements.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name, title, nav string, data any, errMsg string) {
	v := VisitorFromContext(r.Context())
	settings, _ := s.settings.Load(r)

	p := Page{
		Title:        title,
		Nav:          nav,
		Settings:     settings,
		Presentation: accessibility.Present(settings),
		Error:        errMsg,
		Data:         data,
	}
	if v != nil {
		token, err := s.csrf.GenerateToken(v.ID)
		if err != nil {
			respondWithError(w, s.logger, http.StatusInternalServerError, ErrInternalServerError, "Error generating CSRF token", err)
			return
		}
		p.CSRFToken = token
		p.Announcements = v.Announcer.Drain()
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, name, p); err != nil {
		respondWithError(w, s.logger, http.StatusInternalServerError, ErrInternalServerError, "Error rendering "+name+" template", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, name, title, nav string, data any) {
	s.render(w, r, http.StatusOK, name, title, nav, data, "")
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}
