package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/KromaEnergia/api-crm/internal/auth"
	"github.com/KromaEnergia/api-crm/internal/cache"
	"github.com/KromaEnergia/api-crm/internal/httpclient"
	"github.com/KromaEnergia/api-crm/internal/interacao"
	"github.com/KromaEnergia/api-crm/internal/metrics"
	"github.com/KromaEnergia/api-crm/internal/router"
	dbutil "github.com/KromaEnergia/api-crm/internal/utils/db"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	var migrar bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Sobe a API HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, log, db, err := carregar(ctx)
			if err != nil {
				return err
			}
			defer log.Sync()

			if migrar {
				if err := dbutil.Migrate(db); err != nil {
					return err
				}
			}

			deps := router.Deps{
				Config:  cfg,
				DB:      db,
				Logger:  log,
				Metrics: metrics.NewCollector(),
				HTTP:    httpclient.NewDefaultClient(cfg.Integrations.Timeout),
			}

			// Sem Redis, cache e pub/sub ficam no processo
			if cfg.Redis.Address != "" {
				rdb := redis.NewClient(&redis.Options{
					Addr:     cfg.Redis.Address,
					Password: cfg.Redis.Password,
					DB:       cfg.Redis.DB,
				})
				defer rdb.Close()
				if err := rdb.Ping(ctx).Err(); err != nil {
					return err
				}
				deps.Cache = cache.NewRedisCache(rdb, "crm:")
				deps.Hub = interacao.NewRedisHub(rdb, log)
			} else {
				deps.Cache = cache.NewMemoryCache(cfg.Integrations.CNPJCacheTTL)
				deps.Hub = interacao.NewMemoryHub()
			}

			switch cfg.Auth.Provider {
			case "cognito":
				v, err := auth.NewCognitoVerifier(cfg.Auth, func(err error) {
					log.Warnw("falha ao renovar JWKS do Cognito", "error", err)
				})
				if err != nil {
					return err
				}
				defer v.Close()
				deps.Verifier = v
			default:
				m, err := auth.NewManagerFromConfig(cfg.Auth)
				if err != nil {
					return err
				}
				deps.Verifier = m
				deps.Manager = m
			}

			srv := &http.Server{
				Addr:              cfg.Server.Address,
				Handler:           router.New(deps),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				log.Infow("servidor iniciado", "address", cfg.Server.Address, "auth", cfg.Auth.Provider)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
				close(errc)
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			log.Infow("encerrando servidor")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().BoolVar(&migrar, "migrate", false, "Roda o AutoMigrate antes de subir")
	return cmd
}
