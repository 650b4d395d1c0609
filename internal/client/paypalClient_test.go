package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bakerlane-api/internal/config"
	"bakerlane-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaypalCreateSubscription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "client", user)
			assert.Equal(t, "secret", pass)
			_, _ = w.Write([]byte(`{"access_token":"tok"}`))
		case "/v1/billing/subscriptions":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "plan_monthly", body["plan_id"])
			assert.Equal(t, "shop-1", body["custom_id"])

			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{
				"id": "I-SUB1",
				"status": "APPROVAL_PENDING",
				"start_time": "2026-03-01T00:00:00Z",
				"links": [
					{"rel": "self", "href": "https://paypal.example/self"},
					{"rel": "approve", "href": "https://paypal.example/approve"}
				]
			}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewPaypalClient(&config.Paypal{BaseApiURL: srv.URL, ClientID: "client", ClientSecret: "secret"})
	sub, err := c.CreateSubscription(context.Background(), "plan_monthly", "shop-1")
	require.NoError(t, err)

	assert.Equal(t, "paypal", c.Provider())
	assert.Equal(t, "I-SUB1", sub.ExternalID)
	assert.Equal(t, model.SubscriptionCreated, sub.Status)
	assert.Equal(t, "https://paypal.example/approve", sub.ApprovalURL)
	require.NotNil(t, sub.CurrentStart)
	assert.Equal(t, 2026, sub.CurrentStart.Year())
	assert.Nil(t, sub.CurrentEnd)
}

func TestPaypalCreateSubscriptionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/oauth2/token" {
			_, _ = w.Write([]byte(`{"access_token":"tok"}`))
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"name":"UNPROCESSABLE_ENTITY"}`))
	}))
	defer srv.Close()

	c := NewPaypalClient(&config.Paypal{BaseApiURL: srv.URL})
	_, err := c.CreateSubscription(context.Background(), "plan_monthly", "shop-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestPaypalStatusMapping(t *testing.T) {
	assert.Equal(t, model.SubscriptionActive, paypalStatus("ACTIVE"))
	assert.Equal(t, model.SubscriptionPaused, paypalStatus("SUSPENDED"))
	assert.Equal(t, model.SubscriptionCancelled, paypalStatus("CANCELLED"))
	assert.Equal(t, model.SubscriptionCreated, paypalStatus("APPROVAL_PENDING"))
	assert.Equal(t, model.SubscriptionHalted, braintreeStatus("Past Due"))
}
