package app

import (
	"fmt"

	"github.com/talkbase/talkbase/internal/http"
	profileHTTP "github.com/talkbase/talkbase/internal/profile/http"
	profileRepository "github.com/talkbase/talkbase/internal/profile/repository"
	profileUsecase "github.com/talkbase/talkbase/internal/profile/usecase"
	profileWorker "github.com/talkbase/talkbase/internal/profile/worker"
	"github.com/talkbase/talkbase/internal/token"
)

// ProfileRepository returns the profile repository based on the database driver.
func (c *Container) ProfileRepository() (profileUsecase.ProfileRepository, error) {
	var err error
	c.profileRepoInit.Do(func() {
		c.profileRepo, err = c.initProfileRepository()
		if err != nil {
			c.initErrors["profileRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["profileRepo"]; exists {
		return nil, storedErr
	}
	return c.profileRepo, nil
}

// ProfileUseCase returns the profile use case instance.
func (c *Container) ProfileUseCase() (profileUsecase.UseCase, error) {
	var err error
	c.profileUseCaseInit.Do(func() {
		c.profileUseCase, err = c.initProfileUseCase()
		if err != nil {
			c.initErrors["profileUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["profileUseCase"]; exists {
		return nil, storedErr
	}
	return c.profileUseCase, nil
}

// ProvisioningWorker returns the worker that consumes user lifecycle events
// and provisions profiles.
func (c *Container) ProvisioningWorker() (*profileWorker.ProvisioningWorker, error) {
	var err error
	c.provisioningWorkerInit.Do(func() {
		c.provisioningWorker, err = c.initProvisioningWorker()
		if err != nil {
			c.initErrors["provisioningWorker"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["provisioningWorker"]; exists {
		return nil, storedErr
	}
	return c.provisioningWorker, nil
}

// ProfileServer returns the profile service HTTP server with its routes registered.
func (c *Container) ProfileServer() (*http.Server, error) {
	var err error
	c.profileServerInit.Do(func() {
		c.profileServer, err = c.initProfileServer()
		if err != nil {
			c.initErrors["profileServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["profileServer"]; exists {
		return nil, storedErr
	}
	return c.profileServer, nil
}

// initProfileRepository creates the profile repository instance.
func (c *Container) initProfileRepository() (profileUsecase.ProfileRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for profile repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return profileRepository.NewMySQLProfileRepository(db), nil
	case "postgres":
		return profileRepository.NewPostgreSQLProfileRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initProfileUseCase creates the profile use case with all its dependencies.
func (c *Container) initProfileUseCase() (profileUsecase.UseCase, error) {
	profileRepo, err := c.ProfileRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get profile repository for profile use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for profile use case: %w", err)
	}

	useCase := profileUsecase.NewProfileUseCase(profileRepo, c.Logger())
	return profileUsecase.NewProfileUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initProvisioningWorker creates the provisioning worker with all its dependencies.
func (c *Container) initProvisioningWorker() (*profileWorker.ProvisioningWorker, error) {
	subscriber, err := c.Subscriber()
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriber for provisioning worker: %w", err)
	}

	profileUseCase, err := c.ProfileUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get profile use case for provisioning worker: %w", err)
	}

	return profileWorker.NewProvisioningWorker(subscriber, profileUseCase, c.Logger()), nil
}

// initProfileServer creates the profile service HTTP server with all its routes.
func (c *Container) initProfileServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for profile server: %w", err)
	}

	profileUseCase, err := c.ProfileUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get profile use case for profile server: %w", err)
	}

	authority, err := c.Authority()
	if err != nil {
		return nil, fmt.Errorf("failed to get token authority for profile server: %w", err)
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

	handler := profileHTTP.NewProfileHandler(profileUseCase, logger)

	authenticated := server.Router().Group("/v1")
	authenticated.Use(token.AuthenticationMiddleware(authority, logger))
	authenticated.GET("/profiles", handler.ListHandler)
	authenticated.GET("/profiles/:user_id", handler.GetHandler)
	authenticated.PUT("/profiles/:user_id", handler.UpdateHandler)
	authenticated.PATCH("/profiles/:user_id", handler.PatchHandler)

	return server, nil
}
