package main

import (
	"errors"
	"net/http"
	"time"

	"ridepay/internal/metrics"
	"ridepay/internal/payments"
)

// initializePaymentHandler godoc
//
//	@Summary		Initialize a ride payment
//	@Description	Validates the request, opens a checkout with the payment gateway and returns the gateway's data object unchanged.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		payments.PaymentRequest	true	"Ride payment"
//	@Success		200		{object}	map[string]any			"Gateway data, typically a checkout_url"
//	@Failure		400		{object}	errorEnvelope			"Invalid request or rejected by the gateway"
//	@Failure		401		{object}	errorEnvelope			"Missing or invalid passenger token"
//	@Failure		429		{object}	errorEnvelope			"Too many requests"
//	@Failure		500		{object}	errorEnvelope			"Gateway unreachable"
//	@Security		ApiKeyAuth
//	@Router			/initialize-payment [post]
func (app *application) initializePaymentHandler(w http.ResponseWriter, r *http.Request) {
	var payload payments.PaymentRequest
	if err := readJSON(w, r, &payload); err != nil {
		app.logger.Warnw("unreadable payment request", "error", err.Error())
		app.metrics.Initialization(metrics.OutcomeValidation, 0)
		app.badRequestResponse(w, r, errors.New("invalid request body"))
		return
	}

	app.logger.Infow("payment initialization requested",
		"rideId", payload.RideID,
		"amount", payload.Amount,
		"hasEmail", payload.Email != "",
		"hasPhone", payload.Phone != "",
		"passenger", getPassengerFromContext(r),
	)

	start := time.Now()
	resp, err := app.payments.InitializePayment(r.Context(), payload)
	elapsed := time.Since(start)

	if err != nil {
		var validationErr *payments.ValidationError
		var rejection *payments.GatewayRejection

		switch {
		case errors.As(err, &validationErr):
			app.metrics.Initialization(metrics.OutcomeValidation, 0)
			app.badRequestResponse(w, r, validationErr)
		case errors.As(err, &rejection):
			app.metrics.Initialization(metrics.OutcomeRejected, elapsed)
			app.logger.Infow("payment initialization failed", "rideId", payload.RideID, "txRef", resp.TxRef, "status", "rejected")
			app.gatewayRejectedResponse(w, r, rejection)
		default:
			app.metrics.Initialization(metrics.OutcomeTransport, elapsed)
			app.logger.Infow("payment initialization failed", "rideId", payload.RideID, "txRef", resp.TxRef, "status", "transport", "timeout", payments.IsTimeout(err))
			app.internalServerError(w, r, err)
		}
		return
	}

	app.metrics.Initialization(metrics.OutcomeSuccess, elapsed)
	app.logger.Infow("payment initialized", "rideId", payload.RideID, "txRef", resp.TxRef, "status", "success", "took", elapsed)

	if err := writeRawJSON(w, http.StatusOK, resp.Data); err != nil {
		app.logger.Errorw("write payment response", "txRef", resp.TxRef, "error", err.Error())
	}
}
