package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	customizationTitle       = "Ride Payment"
	customizationDescription = "Payment for a completed ride"
)

type ChapaConfig struct {
	BaseURL     string
	SecretKey   string
	CallbackURL string
	ReturnURL   string
	Timeout     time.Duration
}

// ChapaAdapter talks to a Chapa-compatible "initialize transaction" endpoint.
type ChapaAdapter struct {
	CallbackURL string
	ReturnURL   string
	client      *resty.Client
}

func NewChapaAdapter(cfg ChapaConfig, httpClient *http.Client) *ChapaAdapter {
	hc := &http.Client{}
	if httpClient != nil {
		copied := *httpClient
		hc = &copied
	}

	client := resty.NewWithClient(hc).
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.SecretKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &ChapaAdapter{
		CallbackURL: cfg.CallbackURL,
		ReturnURL:   cfg.ReturnURL,
		client:      client,
	}
}

type chapaInitializePayload struct {
	Amount        string             `json:"amount"`
	Currency      string             `json:"currency"`
	Email         string             `json:"email"`
	FirstName     string             `json:"first_name"`
	LastName      string             `json:"last_name"`
	PhoneNumber   string             `json:"phone_number,omitempty"`
	TxRef         string             `json:"tx_ref"`
	CallbackURL   string             `json:"callback_url,omitempty"`
	ReturnURL     string             `json:"return_url,omitempty"`
	Customization chapaCustomization `json:"customization"`
}

type chapaCustomization struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type chapaEnvelope struct {
	Status  string          `json:"status"`
	Message json.RawMessage `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *ChapaAdapter) InitiatePayment(ctx context.Context, req InitiateRequest) (PaymentResponse, error) {
	payload := chapaInitializePayload{
		Amount:      strconv.FormatFloat(req.Amount, 'f', -1, 64),
		Currency:    req.Currency,
		Email:       req.Customer.Email,
		FirstName:   req.Customer.FirstName,
		LastName:    req.Customer.LastName,
		PhoneNumber: req.Customer.Phone,
		TxRef:       req.TxRef,
		CallbackURL: c.CallbackURL,
		ReturnURL:   c.ReturnURL,
		Customization: chapaCustomization{
			Title:       customizationTitle,
			Description: customizationDescription,
		},
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post("/transaction/initialize")
	if err != nil {
		return PaymentResponse{}, &TransportFailure{Err: fmt.Errorf("chapa initialize request: %w", err)}
	}

	raw := resp.Body()

	var env chapaEnvelope
	decodeErr := json.Unmarshal(raw, &env)

	switch {
	case resp.IsSuccess():
		if decodeErr != nil {
			return PaymentResponse{}, &TransportFailure{Err: fmt.Errorf("chapa initialize decode: %w body=%s", decodeErr, string(raw))}
		}
		if !strings.EqualFold(env.Status, "success") {
			msg := messageText(env.Message)
			if msg == "" {
				msg = "payment gateway did not confirm the transaction"
			}
			return PaymentResponse{}, &GatewayRejection{StatusCode: resp.StatusCode(), Message: msg}
		}

		data := env.Data
		if len(data) == 0 {
			data = json.RawMessage("null")
		}
		return PaymentResponse{TxRef: req.TxRef, Data: data}, nil

	case resp.StatusCode() >= http.StatusBadRequest:
		if decodeErr == nil {
			if msg := messageText(env.Message); msg != "" {
				return PaymentResponse{}, &GatewayRejection{StatusCode: resp.StatusCode(), Message: msg}
			}
		}
		// An unstructured 5xx is usually a proxy in front of the gateway, not the gateway itself.
		if resp.StatusCode() >= http.StatusInternalServerError {
			return PaymentResponse{}, &TransportFailure{Err: fmt.Errorf("chapa initialize failed: http=%d body=%s", resp.StatusCode(), string(raw))}
		}
		return PaymentResponse{}, &GatewayRejection{StatusCode: resp.StatusCode(), Message: http.StatusText(resp.StatusCode())}

	default:
		return PaymentResponse{}, &TransportFailure{Err: fmt.Errorf("chapa initialize unexpected status: http=%d", resp.StatusCode())}
	}
}

// messageText turns the gateway's message field into one line. Chapa sends
// either a plain string or a map of field name to a list of complaints.
func messageText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err == nil {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, joinValue(fields[k])))
		}
		return strings.Join(parts, "; ")
	}

	if string(raw) == "null" {
		return ""
	}
	return string(raw)
}

func joinValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, joinValue(item))
		}
		return strings.Join(out, ", ")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// IsTimeout reports whether err came from the upstream call running out of time.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
