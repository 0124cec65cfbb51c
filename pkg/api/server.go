package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pegwheel/pegwheel/pkg/api/handlers"
	"github.com/pegwheel/pegwheel/pkg/api/middleware"
	authproviders "github.com/pegwheel/pegwheel/pkg/auth/providers"
	"github.com/pegwheel/pegwheel/pkg/log"
	gamesync "github.com/pegwheel/pegwheel/pkg/sync"
)

type APIServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port             int
	TLS              *TLSConfig
	IdentityProvider authproviders.IdentityProvider
	OwnerUID         string
	Manager          *gamesync.Manager
}

// NewAPIServer creates the http.Server exposing the engine to its UI
// collaborator.
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	identityMiddleware := middleware.NewIdentityMiddleware(opts.IdentityProvider, opts.OwnerUID)

	router := mux.NewRouter()
	router.Use(identityMiddleware)

	router.HandleFunc("/game", handlers.HandleGetGame(opts.Manager)).Methods(http.MethodGet)
	router.HandleFunc("/game/watch", handlers.HandleWatchGame(opts.Manager)).Methods(http.MethodGet)
	router.HandleFunc("/game/select", handlers.HandleSelectPeg(opts.Manager)).Methods(http.MethodPost)
	router.HandleFunc("/game/move", handlers.HandleMovePeg(opts.Manager)).Methods(http.MethodPost)
	router.HandleFunc("/game/players", handlers.HandleAddPlayer(opts.Manager)).Methods(http.MethodPost)
	router.HandleFunc("/game/players", handlers.HandleRemovePlayer(opts.Manager)).Methods(http.MethodDelete)
	router.HandleFunc("/game/reset", handlers.HandleResetGame(opts.Manager)).Methods(http.MethodPost)

	router.HandleFunc("/games", handlers.HandleListGames(opts.Manager)).Methods(http.MethodGet)
	router.HandleFunc("/games", handlers.HandleCreateGame(opts.Manager)).Methods(http.MethodPost)
	router.HandleFunc("/games/{gameID}/join", handlers.HandleJoinGame(opts.Manager)).Methods(http.MethodPost)
	router.HandleFunc("/games/leave", handlers.HandleLeaveGame(opts.Manager)).Methods(http.MethodPost)

	return &APIServer{
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", opts.Port),
			Handler: router,
		},
		tls: opts.TLS,
	}
}

// Start starts the API server and blocks until the context is done or
// the listener fails.
func (s *APIServer) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		if err := s.server.Shutdown(context.Background()); err != nil {
			log.Error("API server shutdown error: %v", err)
		}
	}()

	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}

	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return
		}
		log.Error("API server error: %v", err)
	}
}
