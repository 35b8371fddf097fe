// Governing: SPEC-0001 REQ "CLI Entrypoint", REQ "Go HTTP Server", ADR-0004
package main

import (
	"context"
	"log"
	"net/http"

	"github.com/linkdeck/linkdeck/internal/auth"
	"github.com/linkdeck/linkdeck/internal/authz"
	"github.com/linkdeck/linkdeck/internal/config"
	"github.com/linkdeck/linkdeck/internal/db"
	"github.com/linkdeck/linkdeck/internal/handler"
	"github.com/linkdeck/linkdeck/internal/store"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(database, cfg.DB.Driver); err != nil {
				return err
			}

			sessionManager := auth.NewSessionManager(database, cfg.DB.Driver, cfg.SessionLifetime, !cfg.InsecureCookies)

			oidcProvider, err := auth.NewProvider(context.Background(), cfg)
			if err != nil {
				return err
			}

			userStore := store.NewUserStore(database)
			workspaceStore := store.NewWorkspaceStore(database)
			membershipStore := store.NewMembershipStore(database)
			linkStore := store.NewLinkStore(database)
			tagStore := store.NewTagStore(database)
			tokenStore := auth.NewSQLTokenStore(database)

			guard := authz.NewGuard(membershipStore, linkStore)

			authHandlers := auth.NewHandlers(oidcProvider, sessionManager, userStore, workspaceStore, !cfg.InsecureCookies)
			authMiddleware := auth.NewMiddleware(sessionManager, userStore)

			router := handler.NewRouter(handler.Deps{
				SessionManager:  sessionManager,
				AuthHandlers:    authHandlers,
				AuthMiddleware:  authMiddleware,
				Guard:           guard,
				WorkspaceStore:  workspaceStore,
				MembershipStore: membershipStore,
				LinkStore:       linkStore,
				TagStore:        tagStore,
				UserStore:       userStore,
				TokenStore:      tokenStore,
			})

			log.Printf("listening on %s", cfg.HTTP.Addr)
			return http.ListenAndServe(cfg.HTTP.Addr, router)
		},
	}
}
