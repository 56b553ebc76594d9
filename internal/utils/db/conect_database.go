package db

import (
	"context"
	"fmt"

	"github.com/KromaEnergia/api-crm/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDataBase abre a conexão gorm com o Postgres. Sem usuário/senha na config,
// as credenciais vêm do Secrets Manager (cfg.SecretID).
func ConnectDataBase(ctx context.Context, cfg config.PostgresConfig) (*gorm.DB, error) {
	username, password := cfg.User, cfg.Password
	if username == "" || password == "" {
		var err error
		username, password, err = retrieveCredentials(ctx, cfg.SecretID)
		if err != nil {
			return nil, fmt.Errorf("credenciais do banco: %w", err)
		}
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d", cfg.Host, username, password, cfg.DBName, cfg.Port)
	if cfg.SSLMode != "" {
		dsn += " sslmode=" + cfg.SSLMode
	}

	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao conectar no banco: %w", err)
	}
	return database, nil
}
