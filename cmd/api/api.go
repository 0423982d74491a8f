package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ridepay/docs" //this is required to generate swagger docs
	"ridepay/internal/auth"
	"ridepay/internal/metrics"
	"ridepay/internal/payments"
	"ridepay/internal/ratelimiter"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type application struct {
	config        config
	logger        *zap.SugaredLogger
	payments      *payments.Relay
	authenticator auth.Authenticator // nil when caller tokens are not required
	rateLimiter   ratelimiter.Limiter
	metrics       *metrics.Metrics
}

type config struct {
	addr        string
	env         string
	apiURL      string
	gateway     gatewayConfig
	relay       relayConfig
	auth        authConfig
	rateLimiter ratelimiter.Config
	otel        otelConfig
}

type gatewayConfig struct {
	baseURL     string
	secretKey   string
	callbackURL string
	returnURL   string
	currency    string
	timeout     time.Duration
}

type relayConfig struct {
	txRefNamespace         string
	placeholderEmailDomain string
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	secret string
	aud    string
	iss    string
}

type basicConfig struct {
	user string
	pass string
}

type otelConfig struct {
	endpoint    string
	serviceName string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	// must outlive the upstream timeout, the relay finishes the gateway call even if the caller is gone
	r.Use(middleware.Timeout(app.config.gateway.timeout + 20*time.Second))

	r.NotFound(app.notFoundHandler)
	r.MethodNotAllowed(app.methodNotAllowedHandler)

	r.Get("/", app.livenessHandler)
	r.Get("/health", app.healthCheckHandler)

	r.Group(func(r chi.Router) {
		r.Use(app.RateLimiterMiddleware)
		if app.authenticator != nil {
			r.Use(app.AuthTokenMiddleware)
		}
		r.Post("/initialize-payment", app.initializePaymentHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(app.BasicAuthMiddleware())
		r.Get("/metrics", app.metrics.Handler().ServeHTTP)
		r.Get("/debug/vars", expvar.Handler().ServeHTTP)
	})

	docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.apiURL)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      otelhttp.NewHandler(mux, "payment-relay"),
		WriteTimeout: app.config.gateway.timeout + 30*time.Second,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Implementing graceful shutdown
	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		// in-flight initializations may still be waiting on the gateway
		ctx, cancel := context.WithTimeout(context.Background(), app.config.gateway.timeout+5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
