package app

import (
	"fmt"

	"github.com/talkbase/talkbase/internal/http"
	outboxRepository "github.com/talkbase/talkbase/internal/outbox/repository"
	outboxUsecase "github.com/talkbase/talkbase/internal/outbox/usecase"
	"github.com/talkbase/talkbase/internal/token"
	userHTTP "github.com/talkbase/talkbase/internal/user/http"
	userRepository "github.com/talkbase/talkbase/internal/user/repository"
	userUsecase "github.com/talkbase/talkbase/internal/user/usecase"
)

// UserRepository returns the user repository based on the database driver.
func (c *Container) UserRepository() (userUsecase.UserRepository, error) {
	var err error
	c.userRepoInit.Do(func() {
		c.userRepo, err = c.initUserRepository()
		if err != nil {
			c.initErrors["userRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userRepo"]; exists {
		return nil, storedErr
	}
	return c.userRepo, nil
}

// OutboxRepository returns the outbox event repository based on the database driver.
func (c *Container) OutboxRepository() (outboxUsecase.OutboxEventRepository, error) {
	var err error
	c.outboxRepoInit.Do(func() {
		c.outboxRepo, err = c.initOutboxRepository()
		if err != nil {
			c.initErrors["outboxRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxRepo"]; exists {
		return nil, storedErr
	}
	return c.outboxRepo, nil
}

// UserUseCase returns the user use case instance.
func (c *Container) UserUseCase() (userUsecase.UseCase, error) {
	var err error
	c.userUseCaseInit.Do(func() {
		c.userUseCase, err = c.initUserUseCase()
		if err != nil {
			c.initErrors["userUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userUseCase"]; exists {
		return nil, storedErr
	}
	return c.userUseCase, nil
}

// OutboxUseCase returns the outbox relay use case instance.
func (c *Container) OutboxUseCase() (outboxUsecase.UseCase, error) {
	var err error
	c.outboxUseCaseInit.Do(func() {
		c.outboxUseCase, err = c.initOutboxUseCase()
		if err != nil {
			c.initErrors["outboxUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxUseCase"]; exists {
		return nil, storedErr
	}
	return c.outboxUseCase, nil
}

// AuthServer returns the auth service HTTP server with its routes registered.
func (c *Container) AuthServer() (*http.Server, error) {
	var err error
	c.authServerInit.Do(func() {
		c.authServer, err = c.initAuthServer()
		if err != nil {
			c.initErrors["authServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authServer"]; exists {
		return nil, storedErr
	}
	return c.authServer, nil
}

// initUserRepository creates the user repository instance.
func (c *Container) initUserRepository() (userUsecase.UserRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for user repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return userRepository.NewMySQLUserRepository(db), nil
	case "postgres":
		return userRepository.NewPostgreSQLUserRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initOutboxRepository creates the outbox event repository instance.
func (c *Container) initOutboxRepository() (outboxUsecase.OutboxEventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for outbox repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return outboxRepository.NewMySQLOutboxEventRepository(db), nil
	case "postgres":
		return outboxRepository.NewPostgreSQLOutboxEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initUserUseCase creates the user use case with all its dependencies.
func (c *Container) initUserUseCase() (userUsecase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for user use case: %w", err)
	}

	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for user use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for user use case: %w", err)
	}

	publisher, err := c.Publisher()
	if err != nil {
		return nil, fmt.Errorf("failed to get publisher for user use case: %w", err)
	}

	authority, err := c.Authority()
	if err != nil {
		return nil, fmt.Errorf("failed to get token authority for user use case: %w", err)
	}

	useCase, err := userUsecase.NewUserUseCase(
		txManager,
		userRepo,
		outboxRepo,
		publisher,
		authority,
		c.Logger(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for user use case: %w", err)
	}

	return userUsecase.NewUserUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initOutboxUseCase creates the outbox relay use case with all its dependencies.
func (c *Container) initOutboxUseCase() (outboxUsecase.UseCase, error) {
	logger := c.Logger()

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for outbox use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for outbox use case: %w", err)
	}

	publisher, err := c.Publisher()
	if err != nil {
		return nil, fmt.Errorf("failed to get publisher for outbox use case: %w", err)
	}

	useCaseConfig := outboxUsecase.Config{
		Interval:   c.config.OutboxInterval,
		BatchSize:  c.config.OutboxBatchSize,
		MaxRetries: c.config.OutboxMaxRetries,
	}

	eventProcessor := outboxUsecase.NewBusEventProcessor(publisher, logger)
	return outboxUsecase.NewOutboxUseCase(useCaseConfig, txManager, outboxRepo, eventProcessor, logger), nil
}

// initAuthServer creates the auth service HTTP server with all its routes.
func (c *Container) initAuthServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for auth server: %w", err)
	}

	userUseCase, err := c.UserUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get user use case for auth server: %w", err)
	}

	authority, err := c.Authority()
	if err != nil {
		return nil, fmt.Errorf("failed to get token authority for auth server: %w", err)
	}

	middlewares, err := c.serverMiddleware()
	if err != nil {
		return nil, err
	}

	server := http.NewServer(
		c.config.ServerHost,
		c.config.ServerPort,
		logger,
		http.WithDatabase(db),
		http.WithMiddleware(middlewares...),
	)

	handler := userHTTP.NewUserHandler(userUseCase, logger)

	v1 := server.Router().Group("/v1")
	v1.POST("/users", handler.RegisterHandler)

	login := v1.Group("")
	if c.config.RateLimitLoginEnabled {
		login.Use(userHTTP.LoginRateLimitMiddleware(userHTTP.RateLimitConfig{
			RequestsPerSecond: c.config.RateLimitLoginRequestsPerSec,
			Burst:             c.config.RateLimitLoginBurst,
		}, logger))
	}
	login.POST("/login", handler.LoginHandler)

	authenticated := v1.Group("")
	authenticated.Use(token.AuthenticationMiddleware(authority, logger))
	authenticated.GET("/users", handler.ListHandler)
	authenticated.GET("/users/:id", handler.GetHandler)

	return server, nil
}
