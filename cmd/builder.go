package cmd

import (
	"context"
	"fmt"
	"net/http"

	"storefront/api"
	apiaccount "storefront/api/account"
	apicart "storefront/api/cart"
	"storefront/api/health"
	apinewsletter "storefront/api/newsletter"
	apiorder "storefront/api/order"
	apiproduct "storefront/api/product"
	accountapp "storefront/application/account"
	cartapp "storefront/application/cart"
	newsletterapp "storefront/application/newsletter"
	orderapp "storefront/application/order"
	productapp "storefront/application/product"
	"storefront/config"
	"storefront/domain/account"
	"storefront/domain/cart"
	"storefront/domain/newsletter"
	"storefront/domain/order"
	"storefront/domain/product"
	"storefront/domain/shared"
	"storefront/infrastructure/auth"
	"storefront/infrastructure/lock/redislock"
	"storefront/infrastructure/mail/smtp"
	"storefront/infrastructure/media/local"
	"storefront/infrastructure/messaging"
	"storefront/infrastructure/metrics"
	"storefront/infrastructure/payment/paystack"
	"storefront/infrastructure/persistence/memory"
	"storefront/infrastructure/persistence/mysql"
	"storefront/infrastructure/persistence/retry"
	"storefront/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// AppBuilder assembles the App from config; With* overrides replace the
// config-selected adapter
type AppBuilder struct {
	cfg      *config.Config
	sessions auth.Store
	gateway  orderapp.PaymentGateway
	mailer   newsletterapp.Mailer
	media    productapp.MediaStore
}

// NewBuilder creates a new AppBuilder
func NewBuilder(cfg *config.Config) *AppBuilder {
	return &AppBuilder{cfg: cfg}
}

func (b *AppBuilder) WithSessionStore(s auth.Store) *AppBuilder {
	b.sessions = s
	return b
}

func (b *AppBuilder) WithGateway(g orderapp.PaymentGateway) *AppBuilder {
	b.gateway = g
	return b
}

func (b *AppBuilder) WithMailer(m newsletterapp.Mailer) *AppBuilder {
	b.mailer = m
	return b
}

func (b *AppBuilder) WithMediaStore(m productapp.MediaStore) *AppBuilder {
	b.media = m
	return b
}

// stores the persistence adapters for one storage backend
type stores struct {
	products    product.Repository
	orders      order.Repository
	carts       cart.Repository
	subscribers newsletter.Repository
	accounts    account.Repository
	uow         shared.UnitOfWorkFactory
	outbox      messaging.Store
	// inProcessOutbox the API process drains the outbox itself
	inProcessOutbox bool
}

// Build connects every configured dependency. On error, whatever was
// already opened is closed again.
func (b *AppBuilder) Build(ctx context.Context) (app *App, err error) {
	cfg := b.cfg
	built := &App{config: cfg}
	defer func() {
		if err != nil {
			built.Close()
		}
	}()
	app = built

	logger.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env))

	checks := map[string]health.Checker{}

	st, err := b.buildStores(ctx, app, checks)
	if err != nil {
		return nil, err
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		if redisClient, err = OpenRedis(ctx, cfg.Redis); err != nil {
			return nil, err
		}
		app.closers = append(app.closers, redisClient.Close)
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	var lock orderapp.SettlementLock = memory.NewSettlementLock()
	if redisClient != nil {
		lock = redislock.New(redisClient, cfg.Redis.LockTTL)
	}

	sessions, err := b.buildSessionStore(redisClient)
	if err != nil {
		return nil, err
	}
	gateway := b.buildGateway()
	mailer, err := b.buildMailer()
	if err != nil {
		return nil, err
	}
	media := b.media
	var mediaRoot string
	if media == nil {
		store, err := local.New(cfg.Media)
		if err != nil {
			return nil, err
		}
		media, mediaRoot = store, store.Root()
	}

	m := metrics.New()

	orderService := orderapp.NewApplicationService(orderapp.Dependencies{
		Orders:   st.orders,
		Products: st.products,
		Carts:    st.carts,
		UoW:      st.uow,
		Gateway:  gateway,
		Lock:     lock,
		Metrics:  m,
	})
	productService := productapp.NewApplicationService(st.products, media, st.uow)
	cartService := cartapp.NewApplicationService(st.carts, st.products)
	accountService := accountapp.NewApplicationService(st.accounts, auth.NewBcryptHasher(cfg.Auth.BcryptCost), sessions, mailer, accountapp.Options{
		SessionTTL:               cfg.Auth.SessionTTL,
		BaseURL:                  cfg.Mail.BaseURL,
		RequireEmailVerification: cfg.Auth.RequireEmailVerification,
		AdminSignupKey:           cfg.Auth.AdminSignupKey,
		LoginFloor:               cfg.Auth.LoginFloor,
	})
	newsletterService := newsletterapp.NewApplicationService(st.subscribers, mailer, newsletterapp.Options{
		BaseURL:    cfg.Mail.BaseURL,
		BatchSize:  cfg.Newsletter.BatchSize,
		BatchDelay: cfg.Newsletter.BatchDelay,
	})

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = m.Handler()
	}

	cookies := apiaccount.CookieOptions{Secure: cfg.IsProduction(), Domain: cfg.Auth.CookieDomain}
	app.router = api.NewRouter(cfg, sessions, api.Controllers{
		Health:     health.NewController(cfg, checks),
		Account:    apiaccount.NewController(accountService, cookies),
		Product:    apiproduct.NewController(productService),
		Cart:       apicart.NewController(cartService),
		Order:      apiorder.NewController(orderService),
		Newsletter: apinewsletter.NewController(newsletterService),
	}, api.Options{Observer: m, MetricsHandler: metricsHandler, MediaRoot: mediaRoot})
	app.router.SetupRoutes()

	app.server = &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app.router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if st.inProcessOutbox && cfg.Worker.Enabled {
		worker, closePublisher, err := NewOutboxWorker(cfg, st.outbox)
		if err != nil {
			return nil, err
		}
		app.worker = worker
		app.closers = append(app.closers, closePublisher)
	}

	return app, nil
}

func (b *AppBuilder) buildStores(ctx context.Context, app *App, checks map[string]health.Checker) (*stores, error) {
	if !b.cfg.UsesMySQL() {
		logger.Info("Using in-memory persistence layer")
		outbox := memory.NewOutboxRepository()
		return &stores{
			products:        memory.NewProductRepository(),
			orders:          memory.NewOrderRepository(),
			carts:           memory.NewCartRepository(),
			subscribers:     memory.NewSubscriberRepository(),
			accounts:        memory.NewAccountRepository(),
			uow:             memory.NewUnitOfWorkFactory(outbox),
			outbox:          outbox,
			inProcessOutbox: true,
		}, nil
	}

	logger.Info("Using MySQL/GORM persistence layer")
	db, err := OpenMySQL(ctx, b.cfg)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, func() error { return CloseMySQL(db) })
	checks["database"] = func(ctx context.Context) error { return mysql.Ping(ctx, db) }

	// the MySQL outbox is drained by cmd/worker
	return &stores{
		products:    mysql.NewProductRepository(db),
		orders:      mysql.NewOrderRepository(db),
		carts:       mysql.NewCartRepository(db),
		subscribers: mysql.NewSubscriberRepository(db),
		accounts:    mysql.NewAccountRepository(db),
		uow:         mysql.NewUnitOfWorkFactory(db, retry.FromAppConfig(b.cfg)),
		outbox:      mysql.NewOutboxRepository(db),
	}, nil
}

func (b *AppBuilder) buildSessionStore(redisClient *redis.Client) (auth.Store, error) {
	if b.sessions != nil {
		return b.sessions, nil
	}
	switch b.cfg.Auth.Store {
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("auth.store=redis requires redis.enabled")
		}
		return auth.NewRedisStore(redisClient, b.cfg.Auth.SessionPrefix), nil
	case "", "memory":
		logger.Warn("Using in-memory session store; sessions are lost on restart")
		return auth.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown auth.store %q", b.cfg.Auth.Store)
	}
}

func (b *AppBuilder) buildGateway() orderapp.PaymentGateway {
	if b.gateway != nil {
		return b.gateway
	}
	pc := b.cfg.Payment
	if pc.Provider != "paystack" || pc.Paystack.SecretKey == "" {
		logger.Warn("No payment gateway configured; orders are created without a payment session",
			zap.String("provider", pc.Provider))
		return nil
	}
	return paystack.NewClient(pc.Paystack, nil)
}

func (b *AppBuilder) buildMailer() (newsletterapp.Mailer, error) {
	if b.mailer != nil {
		return b.mailer, nil
	}
	mailer, err := smtp.New(b.cfg.Mail)
	if err != nil {
		return nil, err
	}
	return mailer, nil
}
