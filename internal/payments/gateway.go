package payments

import "context"

// PaymentGateway is an upstream processor able to open a checkout for a transaction.
type PaymentGateway interface {
	InitiatePayment(ctx context.Context, req InitiateRequest) (PaymentResponse, error)
}
