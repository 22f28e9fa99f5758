package app

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	chatHTTP "github.com/talkbase/talkbase/internal/chat/http"
	chatRegistry "github.com/talkbase/talkbase/internal/chat/registry"
	chatRepository "github.com/talkbase/talkbase/internal/chat/repository"
	chatUsecase "github.com/talkbase/talkbase/internal/chat/usecase"
	"github.com/talkbase/talkbase/internal/http"
	"github.com/talkbase/talkbase/internal/token"
)

// ChatRepository returns the chat repository instance.
func (c *Container) ChatRepository() (chatUsecase.ChatRepository, error) {
	var err error
	c.chatRepoInit.Do(func() {
		c.chatRepo, err = c.initChatRepository()
		if err != nil {
			c.initErrors["chatRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["chatRepo"]; exists {
		return nil, storedErr
	}
	return c.chatRepo, nil
}

// MessageRepository returns the message repository instance.
func (c *Container) MessageRepository() (chatUsecase.MessageRepository, error) {
	var err error
	c.messageRepoInit.Do(func() {
		c.messageRepo, err = c.initMessageRepository()
		if err != nil {
			c.initErrors["messageRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["messageRepo"]; exists {
		return nil, storedErr
	}
	return c.messageRepo, nil
}

// Registry returns the websocket connection registry.
func (c *Container) Registry() (*chatRegistry.Registry, error) {
	var err error
	c.registryInit.Do(func() {
		c.registry, err = c.initRegistry()
		if err != nil {
			c.initErrors["registry"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["registry"]; exists {
		return nil, storedErr
	}
	return c.registry, nil
}

// ChatUseCase returns the chat use case instance.
func (c *Container) ChatUseCase() (chatUsecase.UseCase, error) {
	var err error
	c.chatUseCaseInit.Do(func() {
		c.chatUseCase, err = c.initChatUseCase()
		if err != nil {
			c.initErrors["chatUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["chatUseCase"]; exists {
		return nil, storedErr
	}
	return c.chatUseCase, nil
}

// ChatServer returns the chat service HTTP server with its routes registered.
func (c *Container) ChatServer() (*http.Server, error) {
	var err error
	c.chatServerInit.Do(func() {
		c.chatServer, err = c.initChatServer()
		if err != nil {
			c.initErrors["chatServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["chatServer"]; exists {
		return nil, storedErr
	}
	return c.chatServer, nil
}

// initChatRepository creates the chat repository instance.
func (c *Container) initChatRepository() (chatUsecase.ChatRepository, error) {
	db, err := c.Mongo()
	if err != nil {
		return nil, fmt.Errorf("failed to get mongodb for chat repository: %w", err)
	}
	return chatRepository.NewMongoChatRepository(db), nil
}

// initMessageRepository creates the message repository instance.
func (c *Container) initMessageRepository() (chatUsecase.MessageRepository, error) {
	db, err := c.Mongo()
	if err != nil {
		return nil, fmt.Errorf("failed to get mongodb for message repository: %w", err)
	}
	return chatRepository.NewMongoMessageRepository(db), nil
}

// initRegistry creates the websocket connection registry.
func (c *Container) initRegistry() (*chatRegistry.Registry, error) {
	wsMetrics, err := c.WebsocketMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get websocket metrics for registry: %w", err)
	}
	return chatRegistry.NewRegistry(c.Logger(), wsMetrics), nil
}

// initChatUseCase creates the chat use case with all its dependencies.
func (c *Container) initChatUseCase() (chatUsecase.UseCase, error) {
	chatRepo, err := c.ChatRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get chat repository for chat use case: %w", err)
	}

	messageRepo, err := c.MessageRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get message repository for chat use case: %w", err)
	}

	registry, err := c.Registry()
	if err != nil {
		return nil, fmt.Errorf("failed to get registry for chat use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for chat use case: %w", err)
	}

	useCase := chatUsecase.NewChatUseCase(chatRepo, messageRepo, registry, c.Logger())
	return chatUsecase.NewChatUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initChatServer creates the chat service HTTP server with all its routes.
// The write timeout is disabled because websocket sessions outlive any
// reasonable fixed deadline.
func (c *Container) initChatServer() (*http.Server, error) {
	logger := c.Logger()

	if _, err := c.Mongo(); err != nil {
		return nil, fmt.Errorf("failed to get mongodb for chat server: %w", err)
	}

	chatUseCase, err := c.ChatUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get chat use case for chat server: %w", err)
	}

	registry, err := c.Registry()
	if err != nil {
		return nil, fmt.Errorf("failed to get registry for chat server: %w", err)
	}

	authority, err := c.Authority()
	if err != nil {
		return nil, fmt.Errorf("failed to get token authority for chat server: %w", err)
	}

	middlewares, err := c.serverMiddleware()
	if err != nil {
		return nil, err
	}

	mongoClient := c.mongoClient
	server := http.NewServer(
		c.config.ServerHost,
		c.config.ServerPort,
		logger,
		http.WithWriteTimeout(0),
		http.WithReadinessCheck("mongodb", func(ctx context.Context) error {
			return mongoClient.Ping(ctx, readpref.Primary())
		}),
		http.WithMiddleware(middlewares...),
	)

	handler := chatHTTP.NewChatHandler(chatUseCase, logger)
	wsHandler := chatHTTP.NewWebsocketHandler(chatUseCase, authority, registry, logger)

	router := server.Router()

	authenticated := router.Group("/v1")
	authenticated.Use(token.AuthenticationMiddleware(authority, logger))
	authenticated.POST("/chats", handler.CreateHandler)
	authenticated.GET("/chats", handler.ListHandler)
	authenticated.GET("/chats/:chat_id", handler.GetHandler)
	authenticated.POST("/chats/:chat_id/messages", handler.SendMessageHandler)
	authenticated.GET("/chats/:chat_id/messages", handler.ListMessagesHandler)

	// Websocket clients authenticate through the token query parameter
	// because browsers cannot set headers on the upgrade request.
	router.GET("/v1/ws/:chat_id", wsHandler.ServeHandler)

	return server, nil
}
