package bootstrap

import (
	"context"
	"log"

	"devmate-be/internal/config"
	"devmate-be/internal/controller"
	"devmate-be/internal/handler"
	"devmate-be/internal/pkg/logger"
	"devmate-be/internal/repository/implementation"
	"devmate-be/internal/repository/unitofwork"
	"devmate-be/internal/service"
	"devmate-be/internal/websocket"

	pktNats "devmate-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController       controller.IAuthController
	ConnectionController controller.IConnectionController
	ChatController       controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// 3. Services
	authService := service.NewAuthService(uowFactory, cfg.Auth.TokenTTL)
	connectionService := service.NewConnectionService(uowFactory, natsPub, cfg.Chat.RosterCacheTTL)
	chatService := service.NewChatService(uowFactory, connectionService)

	publisherService := service.NewPublisherService(cfg.Chat.MessageTopic, pubSub)

	// WebSocket Hub. Chat traffic gets its own log file to keep main logs clean.
	wsLogger := logger.NewIsolatedLogger("logs/chat.log")
	wsHub := websocket.NewHub(rdb, connectionService, publisherService, wsLogger)
	go wsHub.Run()

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Chat.MessageTopic,
		uowFactory,
		wsHub,
		natsPub,
	)

	// 3.5 Notification System Infrastructure
	notifRepo := implementation.NewNotificationRepository(db)
	notifService := service.NewNotificationService(notifRepo, natsSub, wsHub, wsLogger)

	// Start Service (Worker)
	if natsSub != nil {
		go notifService.Start()
	}

	// Handler
	notifHandler := handler.NewNotificationHandler(notifRepo)

	// 4. Controllers
	return &Container{
		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,

		AuthController:       controller.NewAuthController(authService, cfg.Auth.CookieName, cfg.Auth.TokenTTL),
		ConnectionController: controller.NewConnectionController(connectionService),
		ChatController:       controller.NewChatController(chatService, authService, wsHub, wsLogger),

		ConsumerService: consumerService,
	}
}
