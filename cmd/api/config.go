package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"ridepay/internal/ratelimiter"
)

// loadConfig reads the process environment once at startup. A missing
// gateway secret is fatal here rather than on the first payment.
func loadConfig() (config, error) {
	var errs []error

	secret := strings.TrimSpace(os.Getenv("CHAPA_SECRET_KEY"))
	if secret == "" {
		errs = append(errs, errors.New("CHAPA_SECRET_KEY is required"))
	}

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":" + getString("PORT", "3000")
	}

	timeout, err := getDuration("GATEWAY_TIMEOUT", 10*time.Second)
	if err != nil {
		errs = append(errs, err)
	} else if timeout <= 0 {
		errs = append(errs, fmt.Errorf("GATEWAY_TIMEOUT must be positive, got %s", timeout))
	}

	rateLimiter, err := loadRateLimiterConfig()
	if err != nil {
		errs = append(errs, err)
	}

	cfg := config{
		addr:   addr,
		env:    getString("ENV", "development"),
		apiURL: getString("EXTERNAL_URL", "localhost"+addr),
		gateway: gatewayConfig{
			baseURL:     getString("GATEWAY_BASE_URL", "https://api.chapa.co/v1"),
			secretKey:   secret,
			callbackURL: os.Getenv("GATEWAY_CALLBACK_URL"),
			returnURL:   os.Getenv("GATEWAY_RETURN_URL"),
			currency:    getString("GATEWAY_CURRENCY", "ETB"),
			timeout:     timeout,
		},
		relay: relayConfig{
			txRefNamespace:         getString("TX_REF_NAMESPACE", "RIDE"),
			placeholderEmailDomain: getString("PLACEHOLDER_EMAIL_DOMAIN", "gmail.com"),
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
			token: tokenConfig{
				secret: os.Getenv("AUTH_TOKEN_SECRET"),
				aud:    getString("AUTH_TOKEN_AUD", "ride"),
				iss:    getString("AUTH_TOKEN_ISS", "ride"),
			},
		},
		rateLimiter: rateLimiter,
		otel: otelConfig{
			endpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			serviceName: getString("OTEL_SERVICE_NAME", "ride-payment-relay"),
		},
	}

	if cfg.auth.basic.user != "" && cfg.auth.basic.pass == "" {
		errs = append(errs, errors.New("AUTH_BASIC_PASS is required when AUTH_BASIC_USER is set"))
	}

	if err := errors.Join(errs...); err != nil {
		return config{}, err
	}
	return cfg, nil
}

// loadRateLimiterConfig retrieves rate limiter settings from environment variables
func loadRateLimiterConfig() (ratelimiter.Config, error) {
	requests, err := getInt("RATELIMITER_REQUESTS_COUNT", 20)
	if err != nil {
		return ratelimiter.Config{}, err
	}
	if requests <= 0 {
		return ratelimiter.Config{}, fmt.Errorf("RATELIMITER_REQUESTS_COUNT must be positive, got %d", requests)
	}
	window, err := getDuration("RATELIMITER_WINDOW", time.Minute)
	if err != nil {
		return ratelimiter.Config{}, err
	}
	if window <= 0 {
		return ratelimiter.Config{}, fmt.Errorf("RATELIMITER_WINDOW must be positive, got %s", window)
	}
	enabled, err := getBool("RATE_LIMITER_ENABLED", true)
	if err != nil {
		return ratelimiter.Config{}, err
	}

	return ratelimiter.Config{
		RequestsPerTimeFrame: requests,
		TimeFrame:            window,
		Enabled:              enabled,
	}, nil
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
