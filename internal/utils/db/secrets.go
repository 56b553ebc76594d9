package db

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// secretGetter é o subconjunto do cliente do Secrets Manager usado aqui
type secretGetter interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

func retrieveCredentials(ctx context.Context, secretID string) (string, string, error) {
	if secretID == "" {
		return "", "", errors.New("postgres.user/password ou postgres.secret_id devem ser informados")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return "", "", err
	}
	return fetchCredentials(ctx, secretsmanager.NewFromConfig(awsCfg), secretID)
}

func fetchCredentials(ctx context.Context, client secretGetter, secretID string) (string, string, error) {
	result, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(secretID),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return "", "", err
	}
	if result.SecretString == nil {
		return "", "", errors.New("segredo sem SecretString")
	}

	var secret Credentials
	if err := json.Unmarshal([]byte(*result.SecretString), &secret); err != nil {
		return "", "", err
	}
	return secret.Username, secret.Password, nil
}
