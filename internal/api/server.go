// Package api exposes the mint session over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"mvcm/internal/domain"
	"mvcm/internal/mint"
	"mvcm/internal/network"
	"mvcm/internal/notify"
	"mvcm/internal/observability"
	"mvcm/internal/storage"
)

// MintSession is the part of mint.Session the API drives.
type MintSession interface {
	SetIdentifier(ctx context.Context, id string) error
	Clear()
	Refresh(ctx context.Context) error
	State() mint.State
	Mint(ctx context.Context) (*domain.MintRecord, error)
}

// Networks reads and switches the selected cluster.
type Networks interface {
	Network(ctx context.Context) (network.Network, network.Endpoints, error)
	SwitchNetwork(ctx context.Context, n network.Network) error
}

// Wallet is the connected signer as seen by the API.
type Wallet interface {
	Connected() bool
	Address() string
	PublicKey() (common.PublicKey, error)
	Disconnect(ctx context.Context) error
}

// Feed lists recent notifications.
type Feed interface {
	Recent(limit int) []notify.Notification
}

// Options for creating Server.
type Options struct {
	Session  MintSession
	Networks Networks
	Wallet   Wallet
	Feed     Feed

	// History is optional; without it /history answers 404.
	History storage.MintRecordStore

	// CORSOrigins allows browser frontends; empty disables CORS headers.
	CORSOrigins []string

	// MintTimeout bounds POST /mint. Zero means DefaultMintTimeout.
	MintTimeout time.Duration
	Logger      *zap.Logger
}

// DefaultMintTimeout bounds a mint request, confirmation included.
const DefaultMintTimeout = 2 * time.Minute

// Server serves the HTTP API.
type Server struct {
	session     MintSession
	networks    Networks
	wallet      Wallet
	feed        Feed
	history     storage.MintRecordStore
	mintTimeout time.Duration
	logger      *zap.Logger

	router chi.Router
}

// New creates a Server and its routes.
func New(opts Options) *Server {
	s := &Server{
		session:     opts.Session,
		networks:    opts.Networks,
		wallet:      opts.Wallet,
		feed:        opts.Feed,
		history:     opts.History,
		mintTimeout: opts.MintTimeout,
		logger:      opts.Logger,
	}
	if s.mintTimeout <= 0 {
		s.mintTimeout = DefaultMintTimeout
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.router = s.routes(opts.CORSOrigins)
	return s
}

func (s *Server) routes(origins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	if len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", observability.Handler())

	r.Route("/network", func(r chi.Router) {
		r.Get("/", s.handleGetNetwork)
		r.Put("/", s.handleSetNetwork)
	})
	r.Route("/wallet", func(r chi.Router) {
		r.Get("/", s.handleGetWallet)
		r.Post("/disconnect", s.handleDisconnect)
	})
	r.Route("/candy-machine", func(r chi.Router) {
		r.Put("/", s.handleSetCandyMachine)
		r.Delete("/", s.handleClearCandyMachine)
	})
	r.Get("/status", s.handleStatus)
	r.Post("/mint", s.handleMint)
	r.Get("/notifications", s.handleNotifications)
	r.Route("/history", func(r chi.Router) {
		r.Get("/", s.handleListHistory)
		r.Get("/{id}", s.handleGetHistory)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
