package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"

	"github.com/Lelo88/tienda-golang/internal/auth"
	"github.com/Lelo88/tienda-golang/internal/checkout"
	"github.com/Lelo88/tienda-golang/internal/config"
	"github.com/Lelo88/tienda-golang/internal/db"
	"github.com/Lelo88/tienda-golang/internal/docs"
	"github.com/Lelo88/tienda-golang/internal/events"
	fsstore "github.com/Lelo88/tienda-golang/internal/firestore"
	"github.com/Lelo88/tienda-golang/internal/health"
	"github.com/Lelo88/tienda-golang/internal/httpx"
	"github.com/Lelo88/tienda-golang/internal/logger"
	"github.com/Lelo88/tienda-golang/internal/mail"
	"github.com/Lelo88/tienda-golang/internal/media"
	"github.com/Lelo88/tienda-golang/internal/memstore"
	"github.com/Lelo88/tienda-golang/internal/products"
	"github.com/Lelo88/tienda-golang/internal/secrets"
)

const shutdownTimeout = 10 * time.Second

// requestTimeout acota las rutas que no confirman pedidos.
var requestTimeout = 10 * time.Second

// backend agrupa lo que aporta cada almacén: catálogo, stock y ping.
type backend struct {
	name     string
	products products.Repository
	stock    checkout.Store
	pinger   health.Pinger
	close    func()
}

// eventsConn es la conexión opcional a RabbitMQ.
type eventsConn struct {
	publisher checkout.Publisher
	pinger    health.Pinger
	close     func()
}

// appDeps son las costuras de arranque; los tests las reemplazan.
type appDeps struct {
	loadConfig      func() (config.Config, error)
	resolveSecrets  func(ctx context.Context, cfg *config.Config) error
	newLogger       func(cfg config.Config) *slog.Logger
	openBackend     func(ctx context.Context, cfg config.Config, log *slog.Logger) (backend, error)
	newAuthProvider func(ctx context.Context, cfg config.Config) (auth.Provider, error)
	newMailSender   func(apiKey string) mail.Sender
	connectEvents   func(url string) (eventsConn, error)
	newUploader     func(ctx context.Context, cfg config.Config) (media.UploaderAPI, func(), error)
	serve           func(ctx context.Context, server *http.Server) error
}

var (
	appDepsFn = defaultDeps
	fatalf    = func(args ...any) {
		slog.Error("fatal", "error", fmt.Sprint(args...))
		os.Exit(1)
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, appDepsFn()); err != nil {
		fatalf(err)
	}
}

func defaultDeps() appDeps {
	return appDeps{
		loadConfig:      config.Load,
		resolveSecrets:  resolveSecrets,
		newLogger:       newLogger,
		openBackend:     openBackend,
		newAuthProvider: newFirebaseAuth,
		newMailSender: func(apiKey string) mail.Sender {
			return mail.NewSendGridClient(apiKey)
		},
		connectEvents: connectEvents,
		newUploader:   newUploader,
		serve:         serve,
	}
}

func run(ctx context.Context, deps appDeps) error {
	cfg, err := deps.loadConfig()
	if err != nil {
		return err
	}
	if cfg.HasSecretRefs() {
		if err := deps.resolveSecrets(ctx, &cfg); err != nil {
			return err
		}
	}

	log := deps.newLogger(cfg)

	store, err := deps.openBackend(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", cfg.StoreBackend, err)
	}
	defer store.close()

	issuer, err := auth.NewIssuer([]byte(cfg.SessionSecret), cfg.SessionTTL)
	if err != nil {
		return err
	}

	provider, err := deps.newAuthProvider(ctx, cfg)
	if err != nil {
		return fmt.Errorf("firebase auth: %w", err)
	}

	if cfg.SendGridAPIKey == "" || cfg.MailFrom == "" {
		log.Warn("correo sin configurar: los pedidos van a fallar al enviar la confirmación")
	}
	notifier := mail.NewOrderMailer(deps.newMailSender(cfg.SendGridAPIKey), cfg.MailFrom, cfg.MailFromName, cfg.OrderNotifyTo)

	var publisher checkout.Publisher
	var checks []health.Option
	if cfg.AMQPURL != "" {
		conn, err := deps.connectEvents(cfg.AMQPURL)
		if err != nil {
			// Los eventos son opcionales; el pedido no depende del broker.
			log.Warn("rabbitmq no disponible, sigo sin eventos", "error", err)
		} else {
			defer conn.close()
			publisher = conn.publisher
			checks = append(checks, health.WithCheck("amqp", conn.pinger))
		}
	}

	uploader, closeUploader, err := deps.newUploader(ctx, cfg)
	if err != nil {
		return fmt.Errorf("media: %w", err)
	}
	defer closeUploader()

	router := buildRouter(routerDeps{
		backend:      store,
		authProvider: provider,
		issuer:       issuer,
		notifier:     notifier,
		publisher:    publisher,
		uploader:     uploader,
		checks:       checks,
		cookies:      auth.CookieOptions{Secure: cfg.CookieSecure},
		corsOrigins:  cfg.CORSAllowedOrigins,
		logger:       log,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info("listening", "addr", server.Addr, "backend", store.name)
	return deps.serve(ctx, server)
}

type routerDeps struct {
	backend      backend
	authProvider auth.Provider
	issuer       *auth.Issuer
	notifier     checkout.Notifier
	publisher    checkout.Publisher
	uploader     media.UploaderAPI
	checks       []health.Option
	cookies      auth.CookieOptions
	corsOrigins  []string
	logger       *slog.Logger
}

func buildRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()

	// Middlewares base para trazabilidad y estabilidad.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpx.RequestLogger(deps.logger))
	r.Use(middleware.Recoverer)
	if len(deps.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.corsOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Errores de routing se manejan a nivel router.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, r, http.StatusNotFound, "not_found", "resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	healthHandler := health.New(deps.backend.name, deps.backend.pinger, deps.checks...)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Get("/health", healthHandler.Health)
		r.Get("/ready", healthHandler.Ready)
		docs.RegisterRoutes(r)
	})

	requireSession := auth.RequireSession(deps.issuer)
	r.Route("/api", func(api chi.Router) {
		api.Group(func(api chi.Router) {
			api.Use(middleware.Timeout(requestTimeout))
			products.RegisterRoutes(api, products.NewHandler(products.NewService(deps.backend.products)), requireSession)
			media.RegisterRoutes(api, media.NewHandler(deps.uploader), requireSession)
			auth.RegisterRoutes(api, auth.NewHandler(auth.NewService(deps.authProvider, deps.issuer), deps.cookies))
		})

		// Sin timeout propio: tras el commit el mail tiene que salir con el contexto vivo.
		orders := checkout.NewService(deps.backend.stock, deps.notifier, deps.publisher, deps.logger)
		checkout.RegisterRoutes(api, checkout.NewHandler(orders), requireSession)
	})

	return r
}

// serve corre el servidor hasta que ctx se cancela y luego hace shutdown ordenado.
func serve(ctx context.Context, server *http.Server) error {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

func newLogger(cfg config.Config) *slog.Logger {
	return logger.New(logger.Options{
		Service: "tienda-api",
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
	})
}

func resolveSecrets(ctx context.Context, cfg *config.Config) error {
	resolver, client, err := secrets.NewSecretManagerResolver(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	return cfg.ResolveSecrets(ctx, resolver.Resolve)
}

func openBackend(ctx context.Context, cfg config.Config, log *slog.Logger) (backend, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		store := memstore.New()
		return backend{
			name:     config.BackendMemory,
			products: store,
			stock:    store,
			pinger:   store,
			close:    func() {},
		}, nil

	case config.BackendPostgres:
		if cfg.RunMigrations {
			if err := db.RunMigrations(cfg.DatabaseURL, log); err != nil {
				return backend{}, err
			}
		}
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolOptions{})
		if err != nil {
			return backend{}, err
		}
		return backend{
			name:     config.BackendPostgres,
			products: products.NewPostgresRepository(pool),
			stock:    checkout.NewPostgresStore(pool),
			pinger:   pool,
			close:    pool.Close,
		}, nil

	default:
		client, err := fsstore.NewClient(ctx, cfg.FirebaseProjectID, cfg.CredentialsFile)
		if err != nil {
			return backend{}, err
		}
		return backend{
			name:     config.BackendFirestore,
			products: fsstore.NewProductRepository(client),
			stock:    fsstore.NewStockStore(client),
			pinger:   fsstore.NewPinger(client),
			close:    func() { _ = client.Close() },
		}, nil
	}
}

func newFirebaseAuth(ctx context.Context, cfg config.Config) (auth.Provider, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("app.Auth: %w", err)
	}
	return auth.NewFirebaseProvider(ctx, client, cfg.FirebaseAPIKey)
}

func connectEvents(url string) (eventsConn, error) {
	publisher, conn, err := events.Connect(url)
	if err != nil {
		return eventsConn{}, err
	}
	return eventsConn{
		publisher: publisher,
		pinger:    events.NewConnectionPinger(conn),
		close: func() {
			_ = publisher.Close()
			_ = conn.Close()
		},
	}, nil
}

func newUploader(ctx context.Context, cfg config.Config) (media.UploaderAPI, func(), error) {
	if cfg.GCSBucket == "" {
		return nil, func() {}, nil
	}

	client, err := media.NewGCSClient(ctx, cfg.CredentialsFile)
	if err != nil {
		return nil, nil, err
	}
	store, err := media.NewGCSStore(client, cfg.GCSBucket)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return media.NewUploader(store), func() { _ = client.Close() }, nil
}
