package bootstrap

import (
	"context"
	"log"

	"sales-assistant-be/internal/config"
	"sales-assistant-be/internal/controller"
	"sales-assistant-be/internal/dto"
	"sales-assistant-be/internal/handler"
	"sales-assistant-be/internal/pkg/logger"
	"sales-assistant-be/internal/pkg/serverutils"
	"sales-assistant-be/internal/repository/memory"
	redisrepo "sales-assistant-be/internal/repository/redis"
	"sales-assistant-be/internal/repository/unitofwork"
	"sales-assistant-be/internal/service"
	"sales-assistant-be/internal/websocket"
	"sales-assistant-be/pkg/assistant/language"
	"sales-assistant-be/pkg/assistant/pagination"
	"sales-assistant-be/pkg/assistant/reference"
	"sales-assistant-be/pkg/assistant/resolution"
	"sales-assistant-be/pkg/assistant/scoring"
	"sales-assistant-be/pkg/assistant/session"
	"sales-assistant-be/pkg/catalog"
	"sales-assistant-be/pkg/events"
	pktNats "sales-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController    controller.IChatController
	SessionController controller.ISessionController
	OrderController   controller.IOrderController

	// WebSockets; nil when no JWT secret is configured
	ChatWsHandler *handler.ChatWsHandler
	WebSocketHub  *websocket.Hub
	Auth          fiber.Handler

	// Services (Exposed for main.go and the commands)
	AssistantService service.IAssistantService
	ConsumerService  service.IConsumerService
	CatalogSync      service.ICatalogSyncService // nil without a database
	Catalog          *catalog.Adapter
	Scorer           *scoring.Scorer

	Logger logger.ILogger

	closers []func()
}

// NewContainer wires the application. db may be nil; the database-backed
// catalog is then unavailable.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	return NewContainerWithLogger(db, cfg, logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production"))
}

// NewContainerWithLogger is NewContainer with a caller-supplied system
// logger; the CLI uses a file-only one to keep the terminal clean.
func NewContainerWithLogger(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) *Container {
	c := &Container{}

	// 1. Core Facades
	unmatchedLogger := logger.NewIsolatedLogger(cfg.App.UnmatchedLogPath)
	c.Logger = sysLogger
	c.closers = append(c.closers, func() {
		_ = unmatchedLogger.Sync()
		_ = sysLogger.Sync()
	})

	if db != nil {
		c.CatalogSync = service.NewCatalogSyncService(unitofwork.NewRepositoryFactory(db), sysLogger)
	}

	// 2. Catalog
	adapter := catalog.NewAdapter(newRemoteCatalog(cfg), catalog.NewLocal(c.loadLocalProducts(cfg), cfg.Catalog.Currency), sysLogger)

	// 3. Redis (sessions and websocket fan-out)
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		client, err := redisrepo.NewClientFromURL(context.Background(), cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		} else {
			rdb = client
			c.closers = append(c.closers, func() { _ = client.Close() })
		}
	}

	var sessionRepo session.Repository
	if cfg.Session.Backend == "redis" && rdb != nil {
		sessionRepo = redisrepo.NewSessionRepository(rdb, cfg.Session.TTL)
		log.Printf("[INFO] Using session store: REDIS")
	} else {
		if cfg.Session.Backend == "redis" {
			log.Printf("[WARN] Redis unavailable, falling back to in-memory sessions")
		}
		sessionRepo = memory.NewSessionRepository(cfg.Session.TTL)
		log.Printf("[INFO] Using session store: MEMORY")
	}

	// 4. Conversation core
	sessions := session.NewManager(sessionRepo, session.Config{
		TTL:              cfg.Session.TTL,
		SweepInterval:    cfg.Session.SweepInterval,
		SummaryThreshold: cfg.Session.SummaryThreshold,
	}, sysLogger)
	pager := pagination.NewController(sessions, cfg.Session.PageSize)
	scorer := scoring.NewScorer(scoring.Config{
		ExactName:          cfg.Scoring.ExactName,
		NormalizedName:     cfg.Scoring.NormalizedName,
		Containment:        cfg.Scoring.Containment,
		ModelToken:         cfg.Scoring.ModelToken,
		ShortTokenBoundary: cfg.Scoring.ShortTokenBoundary,
		Brand:              cfg.Scoring.Brand,
		WordOverlap:        cfg.Scoring.WordOverlap,
	})
	c.Catalog, c.Scorer = adapter, scorer
	engine := resolution.NewEngine(adapter, scorer, sessions, pager, resolution.Config{
		UniqueScore:  cfg.Scoring.UniqueScore,
		UniqueMargin: cfg.Scoring.UniqueMargin,
		MinScore:     cfg.Scoring.MinScore,
	}, sysLogger)
	resolver := reference.NewResolver(sessions, sysLogger)

	// 5. Event Bus
	publisher, subscribe := c.newEventBus(cfg)

	c.AssistantService = service.NewAssistantService(
		sessions,
		engine,
		pager,
		resolver,
		adapter,
		language.NewKeywordDetector(),
		publisher,
		sysLogger,
	)
	c.ConsumerService = service.NewConsumerService(subscribe, unmatchedLogger, sysLogger)

	// 6. Transport
	if cfg.Auth.JWTSecret != "" {
		c.Auth = serverutils.JwtMiddleware(cfg.Auth.JWTSecret)

		assistantService := c.AssistantService
		wsHub := websocket.NewHub(rdb, func(ctx context.Context, userID string, msg dto.WsChatMessage) (*dto.Outcome, error) {
			return assistantService.Process(ctx, &dto.ProcessRequest{
				UserID:       userID,
				Text:         msg.Text,
				LanguageHint: msg.LanguageHint,
			})
		}, sysLogger)
		go wsHub.Run()

		c.WebSocketHub = wsHub
		c.ChatWsHandler = handler.NewChatWsHandler(wsHub, sysLogger)
	} else {
		log.Printf("[WARN] JWT_SECRET not set: REST routes are open and the websocket channel is disabled")
	}

	c.ChatController = controller.NewChatController(c.AssistantService, c.Auth)
	c.SessionController = controller.NewSessionController(c.AssistantService, c.Auth)
	c.OrderController = controller.NewOrderController(c.AssistantService, c.Auth)

	return c
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func newRemoteCatalog(cfg *config.Config) catalog.Remote {
	if cfg.Catalog.WooCommerceURL == "" {
		log.Printf("[INFO] WOOCOMMERCE_URL not set: answering from the local catalog only")
		return nil
	}
	log.Printf("[INFO] Using remote catalog: %s", cfg.Catalog.WooCommerceURL)
	return catalog.NewWooCommerceClient(catalog.WooCommerceConfig{
		BaseURL:        cfg.Catalog.WooCommerceURL,
		ConsumerKey:    cfg.Catalog.ConsumerKey,
		ConsumerSecret: cfg.Catalog.ConsumerSecret,
		Timeout:        cfg.Catalog.Timeout,
		Currency:       cfg.Catalog.Currency,
	})
}

// loadLocalProducts never fails the boot: a broken fallback catalog only
// means fewer answers.
func (c *Container) loadLocalProducts(cfg *config.Config) []catalog.LocalProduct {
	if cfg.Catalog.LocalSource == "database" {
		if c.CatalogSync == nil {
			log.Printf("[WARN] CATALOG_LOCAL_SOURCE=database but no database is configured")
			return nil
		}
		products, err := c.CatalogSync.LoadActive(context.Background())
		if err != nil {
			log.Printf("[WARN] Failed to load catalog from database: %v", err)
			return nil
		}
		return products
	}

	products, err := catalog.LoadLocalFile(cfg.Catalog.LocalPath)
	if err != nil {
		log.Printf("[WARN] %v", err)
		return nil
	}
	log.Printf("[INFO] Loaded %d local catalog products from %s", len(products), cfg.Catalog.LocalPath)
	return products
}

// newEventBus prefers NATS JetStream and falls back to an in-process
// watermill channel when NATS is not configured or unreachable.
func (c *Container) newEventBus(cfg *config.Config) (events.Publisher, service.Subscription) {
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		}
		natsSub, subErr := pktNats.NewSubscriber(cfg.App.NatsURL)
		if subErr != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", subErr)
		}

		if err == nil && subErr == nil {
			c.closers = append(c.closers, natsPub.Close, natsSub.Close)
			durable := cfg.App.OutcomeConsumer
			return natsPub, func(ctx context.Context, eventType string, h events.Handler) error {
				return natsSub.Subscribe(ctx, eventType, durable, h)
			}
		}
		if natsPub != nil {
			natsPub.Close()
		}
		if natsSub != nil {
			natsSub.Close()
		}
	}

	bus := events.NewChannelBus(watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, func() { _ = bus.Close() })
	log.Printf("[INFO] Using in-process event bus")
	return bus, bus.Subscribe
}
