package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/vango-dev/usershell/pkg/api"
)

// MaxAvatarSize bounds avatar uploads.
const MaxAvatarSize = 5 << 20

// account is one stored user.
type account struct {
	info         api.UserInfo
	passwordHash []byte
	created      int
}

// avatar is an uploaded image.
type avatar struct {
	contentType string
	data        []byte
}

// failure is a queued forced error response.
type failure struct {
	status  int
	message string
}

// Server is the mock backend.
type Server struct {
	logger   *zap.Logger
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	cost     int

	mu       sync.Mutex
	accounts map[string]*account
	tokens   map[string]string
	avatars  map[string]avatar
	hits     map[string]int
	failures map[string][]failure
	seq      int
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBcryptCost sets the password hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Server) {
		s.cost = cost
	}
}

// New creates an empty backend.
func New(opts ...Option) *Server {
	s := &Server{
		logger:   zap.NewNop(),
		registry: prometheus.NewRegistry(),
		cost:     bcrypt.DefaultCost,
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
		avatars:  make(map[string]avatar),
		hits:     make(map[string]int),
		failures: make(map[string][]failure),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.requests = promauto.With(s.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "usershell",
		Subsystem: "mockapi",
		Name:      "requests_total",
		Help:      "Total number of requests served by the mock backend",
	}, []string{"route", "code"})

	return s
}

// AddUser stores a user and returns a bearer token for it. An empty ID is
// replaced with a random one.
func (s *Server) AddUser(info api.UserInfo, password string) (api.UserInfo, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return api.UserInfo{}, "", err
	}
	if info.ID == "" {
		info.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[info.ID]; exists {
		return api.UserInfo{}, "", errors.New("mockapi: duplicate user id " + info.ID)
	}
	s.seq++
	s.accounts[info.ID] = &account{info: info.Clone(), passwordHash: hash, created: s.seq}

	token := uuid.NewString()
	s.tokens[token] = info.ID
	return info, token, nil
}

// SeedDemo adds a demo admin plus a few users and returns the admin token.
func (s *Server) SeedDemo() (string, error) {
	_, token, err := s.AddUser(api.UserInfo{
		ID:       "1",
		Username: "admin",
		Email:    "admin@example.com",
		Role:     "admin",
	}, "admin123")
	if err != nil {
		return "", err
	}

	for _, u := range []api.UserInfo{
		{ID: "2", Username: "alice", Email: "alice@example.com", Role: "user"},
		{ID: "3", Username: "bob", Email: "bob@example.com", Role: "user"},
		{ID: "4", Username: "carol", Email: "carol@example.com", Role: "editor"},
	} {
		if _, _, err := s.AddUser(u, "password"); err != nil {
			return "", err
		}
	}
	return token, nil
}

// FailNext makes the next request to route answer with status.
// route is a chi pattern such as "/user/info".
func (s *Server) FailNext(route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], failure{status: status, message: message})
}

// Hits returns how many requests reached route.
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// User returns the stored record for id.
func (s *Server) User(id string) (api.UserInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return api.UserInfo{}, false
	}
	return a.info.Clone(), true
}

// Registry returns the registry served on /metrics.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Get("/static/avatars/{name}", s.serveAvatar)

	r.Route("/user", func(r chi.Router) {
		r.Use(s.countRoute)
		r.Use(s.injectFailures)
		r.Use(s.authenticate)

		r.Get("/info", s.getInfo)
		r.Put("/info", s.putInfo)
		r.Post("/avatar", s.postAvatar)
		r.Post("/change-password", s.changePassword)
		r.Get("/list", s.listUsers)
		r.Get("/{id}", s.getUser)
		r.Delete("/{id}", s.deleteUser)
	})

	return r
}

// Run serves the API on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// sortedAccounts returns accounts in creation order. Caller must hold mu.
func (s *Server) sortedAccounts() []*account {
	out := make([]*account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].created < out[j].created })
	return out
}

// writeJSON writes v with status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes {"message": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
