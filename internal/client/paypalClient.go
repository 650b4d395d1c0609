package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"bakerlane-api/internal/config"
	"bakerlane-api/internal/model"
)

type paypalClientImpl struct {
	httpClient         *http.Client
	baseApiURL         string
	paypalClientID     string
	paypalClientSecret string
	returnURL          string
	cancelURL          string
}

type PaypalLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type paypalBillingInfo struct {
	NextBillingTime string `json:"next_billing_time"`
}

type paypalSubscriptionResult struct {
	ID          string            `json:"id"`
	PlanID      string            `json:"plan_id"`
	Status      string            `json:"status"`
	StartTime   string            `json:"start_time"`
	BillingInfo paypalBillingInfo `json:"billing_info"`
	Links       []PaypalLink      `json:"links"`
}

func NewPaypalClient(paypalCfg *config.Paypal) BillingClient {
	return &paypalClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:         paypalCfg.BaseApiURL,
		paypalClientID:     paypalCfg.ClientID,
		paypalClientSecret: paypalCfg.ClientSecret,
		returnURL:          paypalCfg.ReturnURL,
		cancelURL:          paypalCfg.CancelURL,
	}
}

func (c *paypalClientImpl) Provider() string { return "paypal" }

func (c *paypalClientImpl) getAccessToken(ctx context.Context) (string, error) {
	auth := base64.StdEncoding.EncodeToString(
		[]byte(c.paypalClientID + ":" + c.paypalClientSecret),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+"/v1/oauth2/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("paypal token error %d: %s", resp.StatusCode, string(b))
	}

	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	return res.AccessToken, nil
}

func (c *paypalClientImpl) CreateSubscription(ctx context.Context, planID, shopID string) (*BillingSubscription, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get paypal access token: %w", err)
	}

	payload := map[string]interface{}{
		"plan_id":   planID,
		"custom_id": shopID,
		"quantity":  "1",
		"application_context": map[string]string{
			"return_url": c.returnURL,
			"cancel_url": c.cancelURL,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v1/billing/subscriptions",
		bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paypal create subscription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("paypal error %d: %s", resp.StatusCode, string(b))
	}

	var result paypalSubscriptionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode paypal response: %w", err)
	}

	return &BillingSubscription{
		ExternalID:   result.ID,
		PlanID:       planID,
		Status:       paypalStatus(result.Status),
		ApprovalURL:  _extractApproveURL(result.Links),
		CurrentStart: parsePaypalTime(result.StartTime),
		CurrentEnd:   parsePaypalTime(result.BillingInfo.NextBillingTime),
	}, nil
}

func paypalStatus(status string) model.SubscriptionStatus {
	switch status {
	case "APPROVED":
		return model.SubscriptionAuthenticated
	case "ACTIVE":
		return model.SubscriptionActive
	case "SUSPENDED":
		return model.SubscriptionPaused
	case "CANCELLED":
		return model.SubscriptionCancelled
	case "EXPIRED":
		return model.SubscriptionCompleted
	default: // APPROVAL_PENDING
		return model.SubscriptionCreated
	}
}

func parsePaypalTime(v string) *time.Time {
	if v == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func _extractApproveURL(links []PaypalLink) string {
	for _, link := range links {
		if link.Rel == "approve" {
			return link.Href
		}
	}
	return ""
}
