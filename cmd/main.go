package main

import (
	"context"
	"fmt"
	"os"

	"github.com/KromaEnergia/api-crm/internal/config"
	"github.com/KromaEnergia/api-crm/internal/logger"
	"github.com/KromaEnergia/api-crm/internal/usuario"
	dbutil "github.com/KromaEnergia/api-crm/internal/utils/db"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	root := &cobra.Command{
		Use:           "api-crm",
		Short:         "API do CRM multi-tenant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), criarAdminCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Erro:", err)
		os.Exit(1)
	}
}

// carregar lê a config, cria o logger e abre o banco
func carregar(ctx context.Context) (*config.Configuration, *logger.Logger, *gorm.DB, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("logger: %w", err)
	}
	db, err := dbutil.ConnectDataBase(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Cria ou atualiza as tabelas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, log, db, err := carregar(cmd.Context())
			if err != nil {
				return err
			}
			defer log.Sync()
			if err := dbutil.Migrate(db); err != nil {
				return fmt.Errorf("erro no AutoMigrate: %w", err)
			}
			log.Infow("migração concluída")
			return nil
		},
	}
}

func criarAdminCmd() *cobra.Command {
	var tenant, nome, email, senha string
	cmd := &cobra.Command{
		Use:   "criar-admin",
		Short: "Cria o primeiro administrador de um tenant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, log, db, err := carregar(cmd.Context())
			if err != nil {
				return err
			}
			defer log.Sync()

			u, temporaria, err := usuario.Cadastrar(db, usuario.NewRepository(), tenant, usuario.CreateUsuarioRequest{
				Nome:    nome,
				Email:   email,
				Senha:   senha,
				IsAdmin: true,
			})
			if err != nil {
				return err
			}
			log.Infow("administrador criado", "tenant", tenant, "usuario", u.ID)
			if temporaria != "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Senha temporária:", temporaria)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&tenant, "tenant", "", "ID do tenant")
	f.StringVar(&nome, "nome", "", "Nome do administrador")
	f.StringVar(&email, "email", "", "E-mail de login")
	f.StringVar(&senha, "senha", "", "Senha (vazia gera uma temporária)")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("nome")
	return cmd
}
