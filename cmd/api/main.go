package main

import (
	"context"
	"expvar"
	"log"
	"net/http"
	"os"
	"runtime"

	"ridepay/internal/auth"
	"ridepay/internal/metrics"
	"ridepay/internal/payments"
	"ridepay/internal/ratelimiter"
	"ridepay/internal/tracing"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)

	level := zapcore.InfoLevel

	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), level)

	logger := zap.New(core)

	return logger.Sugar(), nil
}

var version = "1.0.0"

//	@title			Ride Payment Relay
//	@description	Starts gateway checkouts for rides on behalf of the passenger app.

//	@BasePath					/
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description

func main() {
	// .env is a local convenience; deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Logger
	logger, err := NewLogger()
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer logger.Sync()

	// Tracing
	shutdownTracing, err := tracing.InitProvider(context.Background(), cfg.otel.endpoint, cfg.otel.serviceName)
	if err != nil {
		logger.Fatal(err)
	}

	// Payment gateway
	gatewayClient := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	gateway := payments.NewChapaAdapter(payments.ChapaConfig{
		BaseURL:     cfg.gateway.baseURL,
		SecretKey:   cfg.gateway.secretKey,
		CallbackURL: cfg.gateway.callbackURL,
		ReturnURL:   cfg.gateway.returnURL,
		Timeout:     cfg.gateway.timeout,
	}, gatewayClient)

	relay := payments.NewRelay(gateway, payments.RelayConfig{
		Currency:               cfg.gateway.currency,
		TxRefNamespace:         cfg.relay.txRefNamespace,
		PlaceholderEmailDomain: cfg.relay.placeholderEmailDomain,
		Timeout:                cfg.gateway.timeout,
	})

	if cfg.gateway.callbackURL == "" {
		logger.Warn("GATEWAY_CALLBACK_URL is not set, the gateway will not notify settlement")
	}

	// Rate limiter
	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)

	app := &application{
		config:      cfg,
		logger:      logger,
		payments:    relay,
		rateLimiter: rateLimiter,
		metrics:     metrics.New(),
	}

	// Authenticator
	if cfg.auth.token.secret != "" {
		app.authenticator = auth.NewJWTAuthenticator(
			cfg.auth.token.secret,
			cfg.auth.token.aud,
			cfg.auth.token.iss,
		)
	}

	if cfg.rateLimiter.Enabled {
		app.cleanupRateLimiterEvery(rateLimiter, cfg.rateLimiter.TimeFrame)
	}

	//Metrics collected http://localhost:3000/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	err = app.run(mux)

	if terr := shutdownTracing(context.Background()); terr != nil {
		logger.Errorw("tracing shutdown failed", "error", terr)
	}
	if err != nil {
		logger.Fatal(err)
	}
}
