package httpserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/FinBoard/finboard-gateway/internal/auth"
	"github.com/FinBoard/finboard-gateway/internal/config"
	"github.com/FinBoard/finboard-gateway/internal/currency"
	"github.com/FinBoard/finboard-gateway/internal/events"
	"github.com/FinBoard/finboard-gateway/internal/metrics"
	"github.com/FinBoard/finboard-gateway/internal/upload"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Server wires the gateway's HTTP surface: auth proxying, the dashboard
// snapshot, uploads, currency conversion and the websocket event stream.
type Server struct {
	log      *zap.Logger
	bus      *events.Bus
	conv     *currency.Converter
	provider *auth.Provider
	sessions *auth.Sessions
	store    *upload.Store
	rec      *metrics.Recorder
	r        *chi.Mux

	mu        sync.RWMutex
	cfg       *config.Config
	preferred currency.Code
}

type Deps struct {
	Bus      *events.Bus
	Conv     *currency.Converter
	Provider *auth.Provider
	Sessions *auth.Sessions
	Store    *upload.Store
	Recorder *metrics.Recorder
}

func New(cfg *config.Config, log *zap.Logger, d Deps) *Server {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	s := &Server{
		log:       log,
		bus:       d.Bus,
		conv:      d.Conv,
		provider:  d.Provider,
		sessions:  d.Sessions,
		store:     d.Store,
		rec:       d.Recorder,
		r:         r,
		cfg:       cfg,
		preferred: currency.USD,
	}
	s.routes()
	return s
}

func (s *Server) Router() http.Handler { return s.r }

func (s *Server) Reload(cfg *config.Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func (s *Server) routes() {
	s.r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.r.Method(http.MethodGet, "/metrics", s.rec.Handler())

	s.r.Post("/v1/auth/signup", s.handleSignUp)
	s.r.Post("/v1/auth/signin", s.handleSignIn)
	s.r.Post("/v1/auth/verify", s.handleVerify)

	s.r.Get("/v1/dashboard", s.auth(s.handleDashboard))
	s.r.Post("/v1/uploads", s.auth(s.handleUpload))
	s.r.Get("/v1/currency/convert", s.auth(s.handleConvert))
	s.r.Put("/v1/currency/preference", s.auth(s.handlePreference))

	s.r.Get("/v1/events", s.handleEvents)
}

// auth requires a valid gateway session token on the Authorization header.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := r.Header.Get("Authorization")
		if tok == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		if len(tok) > 7 && tok[:7] == "Bearer " {
			tok = tok[7:]
		}
		sub, err := s.sessions.Verify(tok)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		r.Header.Set("X-Subject", sub)
		next(w, r)
	}
}

// handleEvents bridges the in-process bus to a websocket client. A bus
// handler pushes into a buffered per-connection channel and drops when it
// is full, so a slow client never blocks Emit.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	s.rec.WSClientConnected()

	ch := make(chan events.Event, 64)
	var unsubs []func()
	for _, topic := range []events.Topic{
		events.TopicCurrencyChanged,
		events.TopicUploadCompleted,
		events.TopicSessionStarted,
	} {
		unsubs = append(unsubs, s.bus.Subscribe(topic, func(ev events.Event) {
			select {
			case ch <- ev:
			default:
			}
		}))
	}

	// ch is never closed; handlers may still fire from an in-flight
	// emission snapshot after unsubscribe, and a send must stay safe.
	done := make(chan struct{})
	go func() {
		defer func() {
			for _, u := range unsubs {
				u()
			}
			s.rec.WSClientDisconnected()
			_ = conn.Close()
		}()
		for {
			select {
			case ev := <-ch:
				if err := conn.WriteJSON(ev); err != nil {
					s.log.Debug("ws write error", zap.Error(err))
					return
				}
			case <-done:
				return
			}
		}
	}()

	// Minimal reader to notice client-side close.
	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			close(done)
			return
		}
	}
}
