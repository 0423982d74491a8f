package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestInitializePayment(t *testing.T) {
	t.Run("should return the gateway data on success", func(t *testing.T) {
		gw := newFakeGateway(t, respondJSON(http.StatusOK, `{"status":"success","message":"Hosted Link","data":{"checkout_url":"https://pay/x"}}`))
		app := newTestApplication(t, newTestConfig(gw.srv.URL))
		mux := app.mount()

		rr := executeRequest(postPayment(`{"amount":500,"rideId":"R_1","name":"Abebe"}`), mux)

		checkResponseCode(t, http.StatusOK, rr.Code)
		if got := strings.TrimSpace(rr.Body.String()); got != `{"checkout_url":"https://pay/x"}` {
			t.Errorf("body = %s", got)
		}
		if gw.calls() != 1 {
			t.Fatalf("gateway calls = %d, want 1", gw.calls())
		}

		sent := gw.request(0)
		if sent["first_name"] != "Abebe" || sent["last_name"] != "Passenger" {
			t.Errorf("names = %v %v", sent["first_name"], sent["last_name"])
		}
		if sent["currency"] != "ETB" {
			t.Errorf("currency = %v", sent["currency"])
		}
		if ref, _ := sent["tx_ref"].(string); !strings.HasPrefix(ref, "RIDE-R_1-") {
			t.Errorf("tx_ref = %v", sent["tx_ref"])
		}
		if auth := gw.headers[0].Get("Authorization"); auth != "Bearer CHASECK_TEST-secret" {
			t.Errorf("authorization = %q", auth)
		}
	})

	t.Run("should substitute a placeholder email", func(t *testing.T) {
		gw := newFakeGateway(t, respondJSON(http.StatusOK, `{"status":"success","data":{}}`))
		app := newTestApplication(t, newTestConfig(gw.srv.URL))

		rr := executeRequest(postPayment(`{"amount":120,"rideId":"R_9"}`), app.mount())

		checkResponseCode(t, http.StatusOK, rr.Code)
		email, _ := gw.request(0)["email"].(string)
		if email == "" || !strings.Contains(email, "@") {
			t.Errorf("email = %q", email)
		}
	})

	t.Run("should pass the gateway rejection message through", func(t *testing.T) {
		gw := newFakeGateway(t, respondJSON(http.StatusBadRequest, `{"message":"Invalid phone number","status":"failed","data":null}`))
		app := newTestApplication(t, newTestConfig(gw.srv.URL))

		rr := executeRequest(postPayment(`{"amount":500,"rideId":"R_1","phone":"12"}`), app.mount())

		checkResponseCode(t, http.StatusBadRequest, rr.Code)
		env := decodeError(t, rr)
		if env.Status != "failed" || env.Error != "Invalid phone number" {
			t.Errorf("body = %+v", env)
		}
	})

	t.Run("should hide transport errors", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		app := newTestApplication(t, newTestConfig(url))

		rr := executeRequest(postPayment(`{"amount":500,"rideId":"R_1"}`), app.mount())

		checkResponseCode(t, http.StatusInternalServerError, rr.Code)
		env := decodeError(t, rr)
		if env.Status != "failed" || env.Error != "Internal Server Error" {
			t.Errorf("body = %+v", env)
		}
		if strings.Contains(rr.Body.String(), "refused") || strings.Contains(rr.Body.String(), "127.0.0.1") {
			t.Errorf("transport detail leaked: %s", rr.Body.String())
		}
	})

	t.Run("should give up on a slow gateway", func(t *testing.T) {
		release := make(chan struct{})
		gw := newFakeGateway(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		})
		defer close(release)

		cfg := newTestConfig(gw.srv.URL)
		cfg.gateway.timeout = 100 * time.Millisecond
		app := newTestApplication(t, cfg)

		start := time.Now()
		rr := executeRequest(postPayment(`{"amount":500,"rideId":"R_1"}`), app.mount())

		checkResponseCode(t, http.StatusInternalServerError, rr.Code)
		if took := time.Since(start); took > 2*time.Second {
			t.Errorf("request took %v", took)
		}
	})

	t.Run("should give every attempt its own tx_ref", func(t *testing.T) {
		gw := newFakeGateway(t, respondJSON(http.StatusOK, `{"status":"success","data":{}}`))
		app := newTestApplication(t, newTestConfig(gw.srv.URL))
		mux := app.mount()

		executeRequest(postPayment(`{"amount":500,"rideId":"R_1"}`), mux)
		time.Sleep(time.Millisecond)
		executeRequest(postPayment(`{"amount":500,"rideId":"R_1"}`), mux)

		if gw.calls() != 2 {
			t.Fatalf("gateway calls = %d, want 2", gw.calls())
		}
		if gw.request(0)["tx_ref"] == gw.request(1)["tx_ref"] {
			t.Errorf("tx_ref reused: %v", gw.request(0)["tx_ref"])
		}
	})
}

func TestInitializePaymentValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing amount", `{"rideId":"R_1"}`, "amount is required and must be a positive number"},
		{"zero amount", `{"amount":0,"rideId":"R_1"}`, "amount is required and must be a positive number"},
		{"negative amount", `{"amount":-5,"rideId":"R_1"}`, "amount must be a positive number"},
		{"missing ride", `{"amount":500}`, "rideId is required"},
		{"amount as text", `{"amount":"500","rideId":"R_1"}`, "invalid request body"},
		{"not json", `amount=500`, "invalid request body"},
		{"trailing data", `{"amount":500,"rideId":"R_1"} junk`, "invalid request body"},
		{"two objects", `{"amount":500,"rideId":"R_1"}{"amount":1,"rideId":"R_2"}`, "invalid request body"},
		{"empty body", ``, "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newFakeGateway(t, respondJSON(http.StatusOK, `{"status":"success","data":{}}`))
			app := newTestApplication(t, newTestConfig(gw.srv.URL))

			rr := executeRequest(postPayment(tt.body), app.mount())

			checkResponseCode(t, http.StatusBadRequest, rr.Code)
			env := decodeError(t, rr)
			if env.Status != "failed" || env.Error != tt.want {
				t.Errorf("body = %+v, want error %q", env, tt.want)
			}
			if gw.calls() != 0 {
				t.Errorf("gateway called %d times", gw.calls())
			}
		})
	}
}

func TestInitializePaymentValidationIsStateless(t *testing.T) {
	gw := newFakeGateway(t, respondJSON(http.StatusOK, `{"status":"success","data":{}}`))
	app := newTestApplication(t, newTestConfig(gw.srv.URL))
	mux := app.mount()

	first := executeRequest(postPayment(`{"amount":-1,"rideId":"R_1"}`), mux)
	for i := 0; i < 3; i++ {
		rr := executeRequest(postPayment(`{"amount":-1,"rideId":"R_1"}`), mux)
		if rr.Code != first.Code || rr.Body.String() != first.Body.String() {
			t.Fatalf("attempt %d: %d %s != %d %s", i, rr.Code, rr.Body.String(), first.Code, first.Body.String())
		}
	}
}
