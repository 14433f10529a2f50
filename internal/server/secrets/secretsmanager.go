package secrets

import (
	"context"
	"fmt"

	"github.com/avicente/cardholder/internal/common"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsManagerAPI is the slice of the Secrets Manager client this package
// uses, extracted so tests can fake it.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Manager fetches the bundle from AWS Secrets Manager.
type Manager struct {
	client     SecretsManagerAPI
	secretName string
}

func NewManager(client SecretsManagerAPI, secretName string) *Manager {
	return &Manager{client: client, secretName: secretName}
}

func (m *Manager) Fetch(ctx context.Context) (*Bundle, error) {
	out, err := m.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(m.secretName),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: reading secret: %v", common.ErrorDependency, err)
	}
	if out.SecretString == nil {
		return nil, fmt.Errorf("%w: secret has no string payload", common.ErrorDependency)
	}
	return parseBundle([]byte(*out.SecretString))
}
