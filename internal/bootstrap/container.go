package bootstrap

import (
	"context"
	stdlog "log"
	"os"

	"ai-assistant-be/internal/config"
	"ai-assistant-be/internal/controller"
	"ai-assistant-be/internal/handler"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/repository/implementation"
	"ai-assistant-be/internal/repository/memory"
	"ai-assistant-be/internal/repository/unitofwork"
	"ai-assistant-be/internal/service"
	"ai-assistant-be/internal/websocket"
	"ai-assistant-be/pkg/assistant/fallback"
	"ai-assistant-be/pkg/assistant/router"
	"ai-assistant-be/pkg/llm/factory"
	"ai-assistant-be/pkg/speech"
	"ai-assistant-be/pkg/tools/facts"
	"ai-assistant-be/pkg/tools/search"
	"ai-assistant-be/pkg/tools/stubs"
	"ai-assistant-be/pkg/tools/weather"

	pktNats "ai-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController      controller.IAuthController
	AssistantController controller.IAssistantController

	// Background Services (Exposed for main.go to run)
	SpeechConsumer service.IConsumerService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	toolLog := stdlog.New(os.Stdout, "[tools] ", stdlog.LstdFlags)

	// 2. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		stdlog.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		stdlog.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		stdlog.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		stdlog.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Assistant brain
	// LLM fallback provider
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
		cfg.Keys.HuggingFace,
	)
	if err != nil {
		stdlog.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	stdlog.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	fallbackAdapter := fallback.NewAdapter(llmProvider, toolLog)

	// Tool adapters. Engines without credentials fall back to their
	// deterministic mocks, so the router works out of the box.
	weatherClient := weather.NewClient(toolLog)

	searchClients := map[search.Engine]search.Client{
		search.EngineDuckDuckGo: search.NewDuckDuckGoClient(),
	}
	if cfg.Keys.GoogleSearch != "" && cfg.Keys.GoogleSearchCX != "" {
		searchClients[search.EngineGoogle] = search.NewGoogleClient(cfg.Keys.GoogleSearch, cfg.Keys.GoogleSearchCX)
	}
	searcher := search.NewAdapter(toolLog, searchClients)

	var factEngine facts.Engine
	if cfg.Keys.WolframAlpha != "" {
		factEngine = facts.NewWolframClient(cfg.Keys.WolframAlpha)
	}
	factLookup := facts.NewLookup(factEngine, searcher, toolLog)

	stubAdapters := stubs.New()

	intentRouter := router.New(
		cfg.Auth.CreatorPassword,
		weatherClient,
		searcher,
		factLookup,
		stubAdapters,
		toolLog,
	)

	// In-memory volatile session state
	stateRepo := memory.NewSessionStateRepository()

	// Speak queue
	speechQueue := speech.NewQueue(watermill.NewStdLogger(false, false))
	speechConsumer := service.NewSpeechConsumerService(speechQueue, wsHub, sysLogger)

	// 4. Services
	// A nil *Publisher must stay a nil interface so the assistant skips
	// event publishing when NATS is down.
	var eventPub service.EventPublisher
	if natsPub != nil {
		eventPub = natsPub
	}
	authService := service.NewAuthService(uowFactory, sysLogger, cfg.Auth.JWTSecret, cfg.Auth.TokenLifetime)
	assistantService := service.NewAssistantService(
		uowFactory,
		stateRepo,
		intentRouter,
		fallbackAdapter,
		wsHub,
		speechQueue,
		eventPub,
		sysLogger,
		cfg.Speech.ConfidenceThreshold,
	)

	// 5. Notification System
	notifRepo := implementation.NewNotificationRepository(db)
	notifService := service.NewNotificationService(notifRepo, natsSub, wsHub, wsLogger) // Hub implements NotificationDelivery

	// Start Service (Worker)
	if natsSub != nil {
		go notifService.Start()
	}

	notifHandler := handler.NewNotificationHandler(notifService, natsPub, wsHub, wsLogger)

	return &Container{
		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
		AuthController:      controller.NewAuthController(authService),
		AssistantController: controller.NewAssistantController(assistantService),

		SpeechConsumer: speechConsumer,
	}
}
