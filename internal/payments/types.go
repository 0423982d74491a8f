package payments

import "encoding/json"

// PaymentRequest is what a passenger app sends to start paying for a ride.
type PaymentRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Name   string  `json:"name,omitempty"`
	Phone  string  `json:"phone,omitempty"`
	Email  string  `json:"email,omitempty"`
	RideID string  `json:"rideId" validate:"required,max=64,txrefsafe"`
}

// Customer is the payer as the gateway sees it, after defaults are applied.
type Customer struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// InitiateRequest is one normalized attempt, ready to be forwarded.
type InitiateRequest struct {
	TxRef    string
	Amount   float64
	Currency string
	Customer Customer
}

// PaymentResponse carries the gateway's data object untouched.
type PaymentResponse struct {
	TxRef string
	Data  json.RawMessage
}
