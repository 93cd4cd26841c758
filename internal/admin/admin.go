// Package admin exposes a small HTTP surface for operating the bot:
// a health check, a dump of the registered command definitions and a
// manual sync trigger.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"slashtree/internal/logger"
	"slashtree/pkg/appcmd"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Server serves the admin routes over a gorilla/mux router.
type Server struct {
	tree         *appcmd.Tree
	syncer       *appcmd.Syncer
	appID        string
	serviceToken string
	logger       *zap.Logger

	srv *http.Server
}

// Config wires the server's collaborators.
type Config struct {
	Tree         *appcmd.Tree
	Syncer       *appcmd.Syncer
	AppID        string
	Addr         string
	ServiceToken string
	Logger       *zap.Logger
}

// NewServer builds the admin server. It does not start listening.
func NewServer(cfg Config) *Server {
	server := &Server{
		tree:         cfg.Tree,
		syncer:       cfg.Syncer,
		appID:        cfg.AppID,
		serviceToken: cfg.ServiceToken,
		logger:       cfg.Logger,
	}

	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/status", server.getStatus).Methods("GET")
	router.HandleFunc("/commands", server.getCommands).Methods("GET")
	router.HandleFunc("/sync", server.postSync).Methods("POST")
	router.Use(server.authMiddleware)

	server.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return server
}

// Start listens until Shutdown is called. It returns nil on clean shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting admin listener", zap.String("addr", s.srv.Addr))

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown drains in-flight requests and closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// authMiddleware verifies the Service-Token header on every route except
// the status check.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/status" {
			next.ServeHTTP(w, r)
			return
		}

		token := r.Header.Get("Service-Token")
		switch {
		case token == "":
			s.respondError(w, http.StatusUnauthorized, "a Service-Token header must be set")
		case token != s.serviceToken:
			s.respondError(w, http.StatusUnauthorized, "invalid Service-Token header")
		default:
			next.ServeHTTP(w, r)
		}
	})
}

type statusResponse struct {
	Message string `json:"message"`
}

type commandsResponse struct {
	Global []*json.RawMessage            `json:"global"`
	Guilds map[string][]*json.RawMessage `json:"guilds"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) getStatus(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, statusResponse{Message: "service is available"})
}

func (s *Server) getCommands(w http.ResponseWriter, _ *http.Request) {
	resp := commandsResponse{Guilds: make(map[string][]*json.RawMessage)}

	global, err := marshalDefs(s.tree.GlobalCommands())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp.Global = global

	for _, guildID := range s.tree.GuildIDs() {
		defs, err := marshalDefs(s.tree.GuildCommands(guildID))
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.Guilds[guildID] = defs
	}

	s.respond(w, http.StatusOK, resp)
}

func (s *Server) postSync(w http.ResponseWriter, r *http.Request) {
	if err := s.syncer.SyncAll(r.Context(), s.appID, s.tree); err != nil {
		s.logger.Error("manual sync failed", zap.Error(err), logger.ApplicationID(s.appID))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respond(w, http.StatusOK, statusResponse{Message: "commands synchronized"})
}

func marshalDefs(cmds []*appcmd.Command) ([]*json.RawMessage, error) {
	defs := make([]*json.RawMessage, 0, len(cmds))
	for _, cmd := range cmds {
		raw, err := json.Marshal(cmd.Build())
		if err != nil {
			return nil, err
		}

		msg := json.RawMessage(raw)
		defs = append(defs, &msg)
	}

	return defs, nil
}

func (s *Server) respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to write admin response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respond(w, status, errorResponse{Error: message})
}
