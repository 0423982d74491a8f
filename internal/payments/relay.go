package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	defaultPayerName  = "Passenger"
	defaultCurrency   = "ETB"
	defaultEmailHost  = "gmail.com"
	defaultRelayLimit = 10 * time.Second
)

type RelayConfig struct {
	Currency               string
	TxRefNamespace         string
	PlaceholderEmailDomain string
	Timeout                time.Duration
}

// Relay validates a passenger's payment request, turns it into a single
// gateway attempt and forwards it. It keeps no state between calls.
type Relay struct {
	gateway     PaymentGateway
	txRefs      *TxRefGenerator
	currency    string
	emailDomain string
	timeout     time.Duration
	now         func() time.Time
}

func NewRelay(gateway PaymentGateway, cfg RelayConfig) *Relay {
	if cfg.Currency == "" {
		cfg.Currency = defaultCurrency
	}
	if cfg.TxRefNamespace == "" {
		cfg.TxRefNamespace = "RIDE"
	}
	if cfg.PlaceholderEmailDomain == "" {
		cfg.PlaceholderEmailDomain = defaultEmailHost
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRelayLimit
	}

	return &Relay{
		gateway:     gateway,
		txRefs:      NewTxRefGenerator(cfg.TxRefNamespace),
		currency:    cfg.Currency,
		emailDomain: cfg.PlaceholderEmailDomain,
		timeout:     cfg.Timeout,
		now:         time.Now,
	}
}

// InitializePayment runs one initialization attempt.
//
// Errors are always one of *ValidationError, *GatewayRejection or
// *TransportFailure. The returned response carries the generated tx_ref
// whenever the request got past validation, including on failure.
//
// The upstream call is detached from ctx's cancellation so a client hanging
// up cannot leave a half-sent initialization behind; it is still bounded by
// the relay timeout.
func (r *Relay) InitializePayment(ctx context.Context, req PaymentRequest) (PaymentResponse, error) {
	req = trimRequest(req)
	if err := Validate(req); err != nil {
		return PaymentResponse{}, err
	}

	initReq := r.Prepare(req)

	upstreamCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	resp, err := r.gateway.InitiatePayment(upstreamCtx, initReq)
	if err != nil {
		var rejection *GatewayRejection
		var transport *TransportFailure
		if !errors.As(err, &rejection) && !errors.As(err, &transport) {
			err = &TransportFailure{Err: fmt.Errorf("initiate payment: %w", err)}
		}
		return PaymentResponse{TxRef: initReq.TxRef}, err
	}

	resp.TxRef = initReq.TxRef
	return resp, nil
}

// Prepare applies defaults and mints the tx_ref. req must already be valid.
func (r *Relay) Prepare(req PaymentRequest) InitiateRequest {
	first, last := splitName(req.Name)

	email := req.Email
	if email == "" {
		email = fmt.Sprintf("passenger%d@%s", r.now().UnixNano(), r.emailDomain)
	}

	return InitiateRequest{
		TxRef:    r.txRefs.Generate(req.RideID),
		Amount:   req.Amount,
		Currency: r.currency,
		Customer: Customer{
			FirstName: first,
			LastName:  last,
			Email:     email,
			Phone:     req.Phone,
		},
	}
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return defaultPayerName, defaultPayerName
	case 1:
		return parts[0], defaultPayerName
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

func trimRequest(req PaymentRequest) PaymentRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = strings.TrimSpace(req.Email)
	req.RideID = strings.TrimSpace(req.RideID)
	return req
}
