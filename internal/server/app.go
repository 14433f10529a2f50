// Package server wires the application together: it builds the AWS clients,
// selects the profile storage backend, assembles the user service, and runs
// the HTTP server with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/avicente/cardholder/internal/logging"
	"github.com/avicente/cardholder/internal/server/blob"
	"github.com/avicente/cardholder/internal/server/config"
	"github.com/avicente/cardholder/internal/server/httpapi"
	"github.com/avicente/cardholder/internal/server/publish"
	"github.com/avicente/cardholder/internal/server/repositories/profiles"
	"github.com/avicente/cardholder/internal/server/secrets"
	"github.com/avicente/cardholder/internal/server/services"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	userService *services.UserService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	store, err := newProfileStore(ctx, cfg, awsCfg)
	if err != nil {
		return nil, err
	}

	blobs := blob.NewS3Store(newS3Client(cfg, awsCfg), cfg.AvatarsBucket, cfg.AWSRegion, cfg.S3BaseEndpoint)
	publisher := publish.NewSQSPublisher(sqs.NewFromConfig(awsCfg), cfg.CardRequestQueueURL, cfg.NotificationsQueueURL, logger)
	sp := secrets.NewCached(secrets.NewManager(secretsmanager.NewFromConfig(awsCfg), cfg.SecretName))

	us := services.NewUserService(store, blobs, publisher, sp, cfg, logger)

	return &App{config: cfg, logger: logger, userService: us}, nil
}

// newS3Client targets an S3-compatible backend (e.g. MinIO) when a base
// endpoint is configured; static credentials are used only when provided.
func newS3Client(cfg *config.Config, awsCfg aws.Config) *s3.Client {
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
		if cfg.S3RootUser != "" {
			o.Credentials = credentials.NewStaticCredentialsProvider(cfg.S3RootUser, cfg.S3RootPassword, "")
		}
	})
}

func newProfileStore(ctx context.Context, cfg *config.Config, awsCfg aws.Config) (profiles.Repository, error) {
	switch cfg.StorageDriver {
	case config.StorageDynamo:
		return profiles.NewDynamoRepository(dynamodb.NewFromConfig(awsCfg), cfg.ProfileTable), nil
	case config.StoragePostgres:
		db, err := sql.Open("pgx", cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		if err := profiles.RunMigrations(ctx, db); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		return profiles.NewPostgresRepository(db), nil
	case config.StorageMemory:
		return profiles.NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	h := httpapi.NewHandler(app.userService, app.logger, app.config.DebugErrors)
	s := httpapi.NewServer(app.config.EndpointAddr, httpapi.NewRouter(h), app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

}
