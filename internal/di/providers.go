package di

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/go-chi/chi/v5"
	"github.com/google/wire"
	supabase "github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	"worldloom-backend/interfaces/http/rest"
	"worldloom-backend/interfaces/http/rest/handlers"
	"worldloom-backend/internal/config"
	"worldloom-backend/internal/messaging"
	"worldloom-backend/internal/messaging/eventbridge"
	"worldloom-backend/internal/observability"
	"worldloom-backend/internal/repository"
	"worldloom-backend/internal/repository/ddb"
	"worldloom-backend/internal/service/browse"
	"worldloom-backend/internal/service/diagnostics"
	"worldloom-backend/internal/service/element"
	"worldloom-backend/internal/service/project"
	"worldloom-backend/internal/service/relationship"
	"worldloom-backend/internal/service/search"
	"worldloom-backend/internal/service/transfer"
	"worldloom-backend/pkg/auth"
	appErrors "worldloom-backend/pkg/errors"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// ProviderSet is the full application wiring consumed by the injector
var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideErrorHandler,
	ProvideDynamoDBClient,
	ProvideProjectRepository,
	ProvideElementRepository,
	ProvideRelationshipRepository,
	ProvideTemplateRepository,
	ProvideRecentSearchStore,
	ProvideEventBus,
	ProvideJWTValidator,
	ProvideMetrics,
	ProvideTracerProvider,
	ProvideDiagnosticsService,
	project.NewService,
	element.NewService,
	relationship.NewService,
	browse.NewService,
	search.NewService,
	search.NewSearcher,
	ProvideSearchHistory,
	transfer.NewService,
	ProvideHandlers,
	ProvideRouter,
	ProvideContainer,
)

// ProvideLogger builds the zap logger for the configured environment
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	zapCfg := zap.NewProductionConfig()
	if err := zapCfg.Level.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
	}
	return zapCfg.Build()
}

// ProvideErrorHandler builds the shared HTTP error renderer
func ProvideErrorHandler(logger *zap.Logger) *appErrors.ErrorHandler {
	return appErrors.NewErrorHandler(logger)
}

// ProvideDynamoDBClient builds the DynamoDB client
func ProvideDynamoDBClient(ctx context.Context, cfg *config.Config) (*dynamodb.Client, error) {
	return ddb.NewClient(ctx, cfg.Database.Region)
}

// ProvideProjectRepository builds the project repository
func ProvideProjectRepository(client *dynamodb.Client, cfg *config.Config, logger *zap.Logger) repository.ProjectRepository {
	return ddb.NewProjectRepository(client, cfg.Database.TableName, logger)
}

// ProvideElementRepository builds the element repository
func ProvideElementRepository(client *dynamodb.Client, cfg *config.Config, logger *zap.Logger) repository.ElementRepository {
	return ddb.NewElementRepository(client, cfg.Database.TableName, logger)
}

// ProvideRelationshipRepository builds the relationship repository
func ProvideRelationshipRepository(client *dynamodb.Client, cfg *config.Config, logger *zap.Logger) repository.RelationshipRepository {
	return ddb.NewRelationshipRepository(client, cfg.Database.TableName, logger)
}

// ProvideTemplateRepository builds the template repository
func ProvideTemplateRepository(client *dynamodb.Client, cfg *config.Config, logger *zap.Logger) repository.TemplateRepository {
	return ddb.NewTemplateRepository(client, cfg.Database.TableName, logger)
}

// ProvideRecentSearchStore builds the recent-search store
func ProvideRecentSearchStore(client *dynamodb.Client, cfg *config.Config) repository.RecentSearchStore {
	return ddb.NewRecentSearchStore(client, cfg.Database.TableName, 0)
}

// ProvideEventBus builds the EventBridge publisher, or a no-op bus when
// event publishing is disabled. Either way the bus is wrapped with metric
// counting so entity counters work in every mode.
func ProvideEventBus(ctx context.Context, cfg *config.Config, metrics *observability.Collector, logger *zap.Logger) (messaging.EventBus, error) {
	if !cfg.Events.Enabled {
		return observability.NewMeteredBus(messaging.NewNoopBus(), metrics), nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	publisher := eventbridge.NewPublisher(awseventbridge.NewFromConfig(awsCfg), cfg.Events.EventBusName, logger)
	return observability.NewMeteredBus(publisher, metrics), nil
}

// ProvideJWTValidator builds the token validator. Nil when auth is
// disabled; the router then injects a static local identity.
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	if !cfg.Security.EnableAuth {
		return nil, nil
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     cfg.Security.JWTSecret,
		Issuer:        cfg.Security.JWTIssuer,
	})
}

// ProvideMetrics builds the Prometheus collector
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector("worldloom")
}

// ProvideTracerProvider initializes tracing. Nil when disabled.
func ProvideTracerProvider(ctx context.Context, cfg *config.Config) (*observability.TracerProvider, error) {
	return observability.InitTracing(ctx, cfg.Tracing, cfg.Environment)
}

// ProvideSearchHistory builds the recent-search history
func ProvideSearchHistory(store repository.RecentSearchStore, cfg *config.Config) *search.History {
	return search.NewHistory(store, cfg.Search.RecentHistorySize)
}

// ProvideDiagnosticsService builds the Supabase probe runner. Nil when no
// Supabase project is configured.
func ProvideDiagnosticsService(cfg *config.Config, logger *zap.Logger) (*diagnostics.Service, error) {
	if cfg.Supabase.URL == "" || cfg.Supabase.AnonKey == "" {
		return nil, nil
	}
	client, err := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.AnonKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Supabase client: %w", err)
	}
	return diagnostics.NewService(client, cfg.Supabase.ProbeTable, logger), nil
}

// ProvideHandlers assembles every endpoint handler
func ProvideHandlers(
	projectSvc *project.Service,
	elementSvc *element.Service,
	relationshipSvc *relationship.Service,
	browseSvc *browse.Service,
	searcher *search.Searcher,
	history *search.History,
	transferSvc *transfer.Service,
	diagnosticsSvc *diagnostics.Service,
	client *dynamodb.Client,
	cfg *config.Config,
	errorHandler *appErrors.ErrorHandler,
	logger *zap.Logger,
) rest.Handlers {
	checks := map[string]handlers.ReadinessCheck{
		"dynamodb": func(ctx context.Context) error {
			_, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
				TableName: &cfg.Database.TableName,
			})
			return err
		},
	}

	return rest.Handlers{
		Projects:      handlers.NewProjectHandler(projectSvc, errorHandler, logger),
		Elements:      handlers.NewElementHandler(elementSvc, browseSvc, errorHandler, logger),
		Relationships: handlers.NewRelationshipHandler(relationshipSvc, errorHandler, logger),
		Search:        handlers.NewSearchHandler(searcher, history, errorHandler, logger),
		Transfer:      handlers.NewTransferHandler(transferSvc, errorHandler, logger),
		Diagnostics:   handlers.NewDiagnosticsHandler(diagnosticsSvc, errorHandler, logger),
		Health:        handlers.NewHealthHandler(Version, checks),
	}
}

// ProvideRouter assembles the HTTP router
func ProvideRouter(
	cfg *config.Config,
	h rest.Handlers,
	validator *auth.JWTValidator,
	metrics *observability.Collector,
	logger *zap.Logger,
) chi.Router {
	return rest.NewRouter(cfg, h, validator, metrics, logger)
}

// ProvideContainer assembles the final container
func ProvideContainer(
	cfg *config.Config,
	logger *zap.Logger,
	router chi.Router,
	tracerProvider *observability.TracerProvider,
) *Container {
	return &Container{
		Config:         cfg,
		Logger:         logger,
		Router:         router,
		tracerProvider: tracerProvider,
	}
}
