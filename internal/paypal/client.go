// Package paypal is an HTTP client for the PayPal subscriptions API, scoped
// to the handful of calls the billing manager needs.
package paypal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Sentinel errors for common HTTP error classes.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("subscription not found")
)

// Client is an HTTP client for the PayPal REST API.
type Client struct {
	BaseURL  string
	ClientID string
	Secret   string
	HTTP     *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// SandboxURL and LiveURL are the two PayPal API hosts.
const (
	SandboxURL = "https://api-m.sandbox.paypal.com"
	LiveURL    = "https://api-m.paypal.com"
)

// New creates a new PayPal client. baseURL is SandboxURL or LiveURL.
func New(baseURL, clientID, secret string) *Client {
	return &Client{
		BaseURL:  baseURL,
		ClientID: clientID,
		Secret:   secret,
		HTTP:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Subscription is a normalized provider subscription record.
type Subscription struct {
	ID              string
	Status          string // APPROVAL_PENDING, ACTIVE, SUSPENDED, CANCELLED, EXPIRED
	PlanID          string
	CustomID        string // our user id, set at checkout
	StartTime       time.Time
	NextBillingTime *time.Time
}

// Active reports whether the provider considers the subscription billable.
func (s *Subscription) Active() bool {
	return s.Status == "ACTIVE"
}

// Checkout is the result of creating a subscription: the URL the user must
// visit to approve it, and the provider's id for the pending subscription.
type Checkout struct {
	ApprovalURL    string
	SubscriptionID string
}

// --- Wire types ---

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type subscriptionResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	PlanID      string `json:"plan_id"`
	CustomID    string `json:"custom_id"`
	StartTime   string `json:"start_time"`
	BillingInfo *struct {
		NextBillingTime string `json:"next_billing_time"`
	} `json:"billing_info"`
	Links []link `json:"links"`
}

type link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type createSubscriptionRequest struct {
	PlanID             string             `json:"plan_id"`
	CustomID           string             `json:"custom_id"`
	ApplicationContext applicationContext `json:"application_context"`
}

type applicationContext struct {
	ReturnURL string `json:"return_url"`
	CancelURL string `json:"cancel_url"`
}

// --- API methods ---

// CreateCheckout creates a pending subscription for the plan and returns the
// approval URL the user is redirected to. userID is carried through checkout
// as the subscription's custom id.
func (c *Client) CreateCheckout(planID, userID, returnURL, cancelURL string) (*Checkout, error) {
	body := createSubscriptionRequest{
		PlanID:   planID,
		CustomID: userID,
		ApplicationContext: applicationContext{
			ReturnURL: returnURL,
			CancelURL: cancelURL,
		},
	}

	var resp subscriptionResponse
	if err := c.do("POST", "/v1/billing/subscriptions", body, &resp); err != nil {
		return nil, err
	}

	approval := ""
	for _, l := range resp.Links {
		if l.Rel == "approve" {
			approval = l.Href
			break
		}
	}
	if approval == "" {
		return nil, fmt.Errorf("subscription %s: no approval link in response", resp.ID)
	}
	return &Checkout{ApprovalURL: approval, SubscriptionID: resp.ID}, nil
}

// GetSubscription fetches the authoritative subscription record.
func (c *Client) GetSubscription(id string) (*Subscription, error) {
	var resp subscriptionResponse
	if err := c.do("GET", "/v1/billing/subscriptions/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return normalize(&resp)
}

// CancelSubscription cancels the subscription on the provider side.
func (c *Client) CancelSubscription(id, reason string) error {
	body := map[string]string{"reason": reason}
	return c.do("POST", "/v1/billing/subscriptions/"+url.PathEscape(id)+"/cancel", body, nil)
}

func normalize(resp *subscriptionResponse) (*Subscription, error) {
	sub := &Subscription{
		ID:       resp.ID,
		Status:   resp.Status,
		PlanID:   resp.PlanID,
		CustomID: resp.CustomID,
	}
	if resp.StartTime != "" {
		t, err := time.Parse(time.RFC3339, resp.StartTime)
		if err != nil {
			return nil, fmt.Errorf("parse start_time %q: %w", resp.StartTime, err)
		}
		sub.StartTime = t
	}
	if resp.BillingInfo != nil && resp.BillingInfo.NextBillingTime != "" {
		t, err := time.Parse(time.RFC3339, resp.BillingInfo.NextBillingTime)
		if err != nil {
			return nil, fmt.Errorf("parse next_billing_time %q: %w", resp.BillingInfo.NextBillingTime, err)
		}
		sub.NextBillingTime = &t
	}
	return sub, nil
}

// --- HTTP helpers ---

// apiError is the standard error body from the provider.
type apiError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Name, e.Message)
	}
	return e.Name
}

// token returns a cached OAuth access token, refreshing it when it is within
// a minute of expiry.
func (c *Client) token() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.accessToken, nil
	}

	req, err := http.NewRequest("POST", c.BaseURL+"/v1/oauth2/token",
		strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.SetBasicAuth(c.ClientID, c.Secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", fmt.Errorf("%w: check client credentials", ErrUnauthorized)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token request: HTTP %d: %s", resp.StatusCode, string(body))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

func (c *Client) do(method, path string, body, result any) error {
	token, err := c.token()
	if err != nil {
		return err
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Name != "" {
			switch resp.StatusCode {
			case http.StatusUnauthorized:
				return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Message)
			case http.StatusNotFound:
				return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Message)
			default:
				return &apiErr
			}
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
