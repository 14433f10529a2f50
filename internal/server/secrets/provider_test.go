package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/avicente/cardholder/internal/common"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecretsClient struct {
	payload *string
	err     error
	calls   int
}

func (f *fakeSecretsClient) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: f.payload}, nil
}

func TestManager_Fetch_NumericCost(t *testing.T) {
	t.Parallel()

	client := &fakeSecretsClient{payload: aws.String(`{"BCRYPT_SALT":10,"JWT_SECRET":"k1"}`)}
	m := NewManager(client, "users-secret")

	b, err := m.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "10", b.HashCost)
	assert.Equal(t, "k1", b.SigningKey)
}

func TestManager_Fetch_StringCost(t *testing.T) {
	t.Parallel()

	client := &fakeSecretsClient{payload: aws.String(`{"BCRYPT_SALT":"$2a$06$abcdefghijklmnopqrstuv","JWT_SECRET":"k1"}`)}
	m := NewManager(client, "users-secret")

	b, err := m.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "$2a$06$abcdefghijklmnopqrstuv", b.HashCost)
}

func TestManager_Fetch_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		client *fakeSecretsClient
	}{
		{"service unreachable", &fakeSecretsClient{err: errors.New("timeout")}},
		{"no string payload", &fakeSecretsClient{}},
		{"malformed json", &fakeSecretsClient{payload: aws.String(`{"BCRYPT_SALT":`)}},
		{"unexpected salt type", &fakeSecretsClient{payload: aws.String(`{"BCRYPT_SALT":[1]}`)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewManager(tc.client, "users-secret")
			_, err := m.Fetch(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrorDependency))
		})
	}
}

func TestCached_FetchesOnce(t *testing.T) {
	t.Parallel()

	client := &fakeSecretsClient{payload: aws.String(`{"BCRYPT_SALT":4,"JWT_SECRET":"k1"}`)}
	c := NewCached(NewManager(client, "users-secret"))

	for i := 0; i < 3; i++ {
		b, err := c.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "k1", b.SigningKey)
	}
	assert.Equal(t, 1, client.calls)
}

func TestCached_DoesNotCacheFailures(t *testing.T) {
	t.Parallel()

	client := &fakeSecretsClient{err: errors.New("down")}
	c := NewCached(NewManager(client, "users-secret"))

	_, err := c.Fetch(context.Background())
	require.Error(t, err)

	client.err = nil
	client.payload = aws.String(`{"BCRYPT_SALT":4,"JWT_SECRET":"k1"}`)

	b, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "k1", b.SigningKey)
	assert.Equal(t, 2, client.calls)
}

func TestCached_Reset(t *testing.T) {
	t.Parallel()

	client := &fakeSecretsClient{payload: aws.String(`{"BCRYPT_SALT":4,"JWT_SECRET":"k1"}`)}
	c := NewCached(NewManager(client, "users-secret"))

	_, err := c.Fetch(context.Background())
	require.NoError(t, err)

	c.Reset()

	_, err = c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, client.calls)
}
