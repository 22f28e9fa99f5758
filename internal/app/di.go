// Package app provides the dependency injection container for assembling
// the auth, profile and chat services. Components are created lazily on
// first access and shared between the service wirings.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/talkbase/talkbase/internal/bus"
	chatRegistry "github.com/talkbase/talkbase/internal/chat/registry"
	chatUsecase "github.com/talkbase/talkbase/internal/chat/usecase"
	"github.com/talkbase/talkbase/internal/config"
	"github.com/talkbase/talkbase/internal/database"
	"github.com/talkbase/talkbase/internal/http"
	"github.com/talkbase/talkbase/internal/metrics"
	"github.com/talkbase/talkbase/internal/mongodb"
	outboxUsecase "github.com/talkbase/talkbase/internal/outbox/usecase"
	profileUsecase "github.com/talkbase/talkbase/internal/profile/usecase"
	profileWorker "github.com/talkbase/talkbase/internal/profile/worker"
	"github.com/talkbase/talkbase/internal/token"
	userUsecase "github.com/talkbase/talkbase/internal/user/usecase"
)

// mongoConnectTimeout bounds the initial connection and ping to MongoDB.
const mongoConnectTimeout = 10 * time.Second

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger      *slog.Logger
	db          *sql.DB
	mongoClient *mongo.Client
	mongoDB     *mongo.Database

	// Managers
	txManager database.TxManager

	// Shared services
	authority        *token.Authority
	publisher        bus.Publisher
	subscriber       bus.Subscriber
	memoryBus        *bus.MemoryBus
	metricsProvider  *metrics.Provider
	businessMetrics  metrics.BusinessMetrics
	websocketMetrics metrics.WebsocketMetrics

	// Repositories
	userRepo    userUsecase.UserRepository
	outboxRepo  outboxUsecase.OutboxEventRepository
	profileRepo profileUsecase.ProfileRepository
	chatRepo    chatUsecase.ChatRepository
	messageRepo chatUsecase.MessageRepository

	// Use Cases
	userUseCase    userUsecase.UseCase
	outboxUseCase  outboxUsecase.UseCase
	profileUseCase profileUsecase.UseCase
	chatUseCase    chatUsecase.UseCase

	// Servers and Workers
	registry           *chatRegistry.Registry
	provisioningWorker *profileWorker.ProvisioningWorker
	authServer         *http.Server
	profileServer      *http.Server
	chatServer         *http.Server
	metricsServer      *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                     sync.Mutex
	loggerInit             sync.Once
	dbInit                 sync.Once
	mongoInit              sync.Once
	txManagerInit          sync.Once
	authorityInit          sync.Once
	publisherInit          sync.Once
	subscriberInit         sync.Once
	memoryBusInit          sync.Once
	metricsProviderInit    sync.Once
	businessMetricsInit    sync.Once
	websocketMetricsInit   sync.Once
	userRepoInit           sync.Once
	outboxRepoInit         sync.Once
	profileRepoInit        sync.Once
	chatRepoInit           sync.Once
	messageRepoInit        sync.Once
	userUseCaseInit        sync.Once
	outboxUseCaseInit      sync.Once
	profileUseCaseInit     sync.Once
	chatUseCaseInit        sync.Once
	registryInit           sync.Once
	provisioningWorkerInit sync.Once
	authServerInit         sync.Once
	profileServerInit      sync.Once
	chatServerInit         sync.Once
	metricsServerInit      sync.Once
	initErrors             map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the relational database connection used by the auth and
// profile services.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// Mongo returns the MongoDB database used by the chat service.
func (c *Container) Mongo() (*mongo.Database, error) {
	var err error
	c.mongoInit.Do(func() {
		c.mongoClient, c.mongoDB, err = c.initMongo()
		if err != nil {
			c.initErrors["mongo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["mongo"]; exists {
		return nil, storedErr
	}
	return c.mongoDB, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// Authority returns the token authority shared by all services. Issued
// tokens validate on any service configured with the same secret.
func (c *Container) Authority() (*token.Authority, error) {
	var err error
	c.authorityInit.Do(func() {
		c.authority, err = token.NewAuthority(
			c.config.JWTSecret,
			c.config.JWTAlgorithm,
			c.config.JWTExpiration,
		)
		if err != nil {
			c.initErrors["authority"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authority"]; exists {
		return nil, storedErr
	}
	return c.authority, nil
}

// Publisher returns the event bus publisher for the user lifecycle topic.
func (c *Container) Publisher() (bus.Publisher, error) {
	var err error
	c.publisherInit.Do(func() {
		c.publisher, err = c.initPublisher()
		if err != nil {
			c.initErrors["publisher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["publisher"]; exists {
		return nil, storedErr
	}
	return c.publisher, nil
}

// Subscriber returns the event bus subscriber for the user lifecycle topic.
func (c *Container) Subscriber() (bus.Subscriber, error) {
	var err error
	c.subscriberInit.Do(func() {
		c.subscriber, err = c.initSubscriber()
		if err != nil {
			c.initErrors["subscriber"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["subscriber"]; exists {
		return nil, storedErr
	}
	return c.subscriber, nil
}

// MetricsProvider returns the metrics provider instance.
// Returns nil if metrics are disabled in configuration.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. A no-op recorder
// is returned when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// WebsocketMetrics returns the websocket metrics recorder. A no-op recorder
// is returned when metrics are disabled.
func (c *Container) WebsocketMetrics() (metrics.WebsocketMetrics, error) {
	var err error
	c.websocketMetricsInit.Do(func() {
		c.websocketMetrics, err = c.initWebsocketMetrics()
		if err != nil {
			c.initErrors["websocketMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["websocketMetrics"]; exists {
		return nil, storedErr
	}
	return c.websocketMetrics, nil
}

// MetricsServer returns the metrics HTTP server instance.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	for name, server := range map[string]*http.Server{
		"auth server":    c.authServer,
		"profile server": c.profileServer,
		"chat server":    c.chatServer,
	} {
		if server != nil {
			if err := server.Shutdown(ctx); err != nil {
				shutdownErrors = append(shutdownErrors, fmt.Errorf("%s shutdown: %w", name, err))
			}
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.subscriber != nil {
		if err := c.subscriber.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("subscriber close: %w", err))
		}
	}

	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("publisher close: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if c.mongoClient != nil {
		if err := c.mongoClient.Disconnect(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("mongodb disconnect: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initMongo creates the MongoDB connection used by the chat service.
func (c *Container) initMongo() (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      c.config.MongoURI,
		Database: c.config.MongoDatabase,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	return client, db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initBusinessMetrics creates the business metrics recorder.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}
	return metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

// initWebsocketMetrics creates the websocket metrics recorder.
func (c *Container) initWebsocketMetrics() (metrics.WebsocketMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for websocket metrics: %w", err)
	}
	if provider == nil {
		return metrics.NewNoOpWebsocketMetrics(), nil
	}
	return metrics.NewWebsocketMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

// initMetricsServer creates the metrics HTTP server.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}

	return http.NewMetricsServer(
		c.config.ServerHost,
		c.config.MetricsPort,
		c.Logger(),
		provider,
	), nil
}

// initPublisher creates the event bus publisher based on the bus driver.
func (c *Container) initPublisher() (bus.Publisher, error) {
	switch c.config.BusDriver {
	case "memory":
		return c.memoryBusInstance(), nil
	case "kafka":
		return bus.NewKafkaPublisher(c.kafkaConfig(), c.Logger()), nil
	default:
		return nil, fmt.Errorf("unsupported bus driver: %s", c.config.BusDriver)
	}
}

// initSubscriber creates the event bus subscriber based on the bus driver.
func (c *Container) initSubscriber() (bus.Subscriber, error) {
	switch c.config.BusDriver {
	case "memory":
		return c.memoryBusInstance(), nil
	case "kafka":
		return bus.NewKafkaSubscriber(c.kafkaConfig(), c.Logger()), nil
	default:
		return nil, fmt.Errorf("unsupported bus driver: %s", c.config.BusDriver)
	}
}

// memoryBusInstance returns the process-wide in-memory bus so publisher and
// subscriber share one queue.
func (c *Container) memoryBusInstance() *bus.MemoryBus {
	c.memoryBusInit.Do(func() {
		c.memoryBus = bus.NewMemoryBus()
	})
	return c.memoryBus
}

// kafkaConfig builds the bus configuration from the application configuration.
func (c *Container) kafkaConfig() bus.KafkaConfig {
	brokers := strings.Split(c.config.KafkaBrokers, ",")
	for i := range brokers {
		brokers[i] = strings.TrimSpace(brokers[i])
	}

	return bus.KafkaConfig{
		Brokers:    brokers,
		Topic:      c.config.KafkaTopic,
		GroupID:    c.config.KafkaGroupID,
		MinBackoff: c.config.WorkerBackoffMin,
		MaxBackoff: c.config.WorkerBackoffMax,
	}
}

// serverMiddleware builds the middleware chain shared by the service HTTP
// servers. Nil entries are skipped by the server option.
func (c *Container) serverMiddleware() ([]gin.HandlerFunc, error) {
	logger := c.Logger()

	middlewares := []gin.HandlerFunc{
		http.CORSMiddleware(c.config.CORSEnabled, c.config.CORSAllowOrigins, logger),
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http middleware: %w", err)
	}
	if provider != nil {
		middlewares = append(middlewares, metrics.HTTPMetricsMiddleware(
			provider.MeterProvider(),
			c.config.MetricsNamespace,
		))
	}

	return middlewares, nil
}
