package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pegwheel/pegwheel/pkg/api"
	"github.com/pegwheel/pegwheel/pkg/auth"
	authproviders "github.com/pegwheel/pegwheel/pkg/auth/providers"
	"github.com/pegwheel/pegwheel/pkg/game"
	"github.com/pegwheel/pegwheel/pkg/game/constants"
	"github.com/pegwheel/pegwheel/pkg/log"
	"github.com/pegwheel/pegwheel/pkg/repositories"
	"github.com/pegwheel/pegwheel/pkg/store"
	gamesync "github.com/pegwheel/pegwheel/pkg/sync"
	"github.com/pegwheel/pegwheel/pkg/version"
)

func main() {
	httpPort := flag.Int("http-port", 8080, "HTTP port to listen on")
	logLevel := flag.String("log-level", "info", "Log level")
	sqlitePath := flag.String("sqlite-path", "pegwheel.db", "Path to the SQLite database")
	migrationsPath := flag.String("migrations", "migrations/sqlite", "Path to the SQLite migrations directory")
	playerName := flag.String("player-name", "Player", "Display name bound to created and joined games")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting pegwheel version %s", version.Get())
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var repository repositories.Repository
	if connStr := os.Getenv("DATABASE_URL"); connStr != "" {
		repository, err = repositories.NewPostgresRepository(ctx, connStr)
		if err != nil {
			panic(fmt.Sprintf("Failed to create postgres repository: %v", err))
		}
	} else {
		repository, err = repositories.NewSQLiteRepository(ctx, *sqlitePath, *migrationsPath)
		if err != nil {
			panic(fmt.Sprintf("Failed to create sqlite repository: %v", err))
		}
	}
	defer repository.Close(ctx)

	var documentStore store.DocumentStore
	var identityProvider authproviders.IdentityProvider
	identity := authproviders.Identity{UID: "local", DisplayName: *playerName}

	if databaseURL := os.Getenv("FIREBASE_DATABASE_URL"); databaseURL != "" {
		app, err := auth.NewFirebaseApp(ctx, os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
		if err != nil {
			panic(fmt.Sprintf("Failed to create firebase app: %v", err))
		}

		documentStore, err = store.NewFirebaseStore(ctx, store.NewFirebaseStoreOptions{
			App:         app,
			DatabaseURL: databaseURL,
		})
		if err != nil {
			panic(fmt.Sprintf("Failed to create firebase store: %v", err))
		}

		firebaseProvider, err := authproviders.NewFirebaseIdentityProvider(ctx, app)
		if err != nil {
			panic(fmt.Sprintf("Failed to create firebase identity provider: %v", err))
		}
		identityProvider = firebaseProvider

		if idToken := os.Getenv("FIREBASE_ID_TOKEN"); idToken != "" {
			verified, err := firebaseProvider.VerifyToken(ctx, idToken)
			if err != nil {
				panic(fmt.Sprintf("Failed to verify FIREBASE_ID_TOKEN: %v", err))
			}
			identity = *verified
			if *playerName != "" {
				identity.DisplayName = *playerName
			}
		}
	} else {
		log.Warn("FIREBASE_DATABASE_URL not set, running offline with an in-memory store")
		documentStore = store.NewMemoryStore()
	}

	if identityProvider == nil {
		identityProvider = authproviders.NewStaticIdentityProvider(identity.UID, identity.DisplayName)
	}

	session := game.NewSession(constants.DefaultPlayers)
	manager := gamesync.NewManager(gamesync.NewManagerOptions{
		Store:      documentStore,
		Repository: repository,
		Identity:   identity,
		Session:    session,
	})
	manager.Start(ctx)
	defer manager.Close()

	apiServer := api.NewAPIServer(api.NewAPIServerOptions{
		Port:             *httpPort,
		IdentityProvider: identityProvider,
		OwnerUID:         identity.UID,
		Manager:          manager,
	})
	apiServer.Start(ctx)
}
