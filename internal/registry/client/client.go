// Package client provides the HTTP client for the practice-management
// registry API. All calls carry a bearer token and JSON bodies; responses
// use the registry's {"data": ...} envelope.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"matter_intake_backend/internal/registry/transport"
	"matter_intake_backend/platform/logger"
)

const apiVersion = "v4"

// Custom-field values are only returned when explicitly requested via the
// fields parameter, name included so merge-by-name can match them.
const contactDetailFields = "id,type,name,first_name,last_name,date_of_birth," +
	"primary_email_address,primary_phone_number,addresses," +
	"custom_field_values{id,value,custom_field{id,name}}"

const contactSearchFields = "id,type,name,first_name,last_name,primary_email_address"

// Client is the HTTP client for the registry API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *logger.Logger
}

// New creates a new registry API client.
func New(baseURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		log:        log,
	}
}

// tokenResponse is the token endpoint's success body.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ExchangeToken exchanges a refresh token for a short-lived access token.
// No retry is attempted: a failed exchange aborts the whole operation.
func (c *Client) ExchangeToken(ctx context.Context, clientID, clientSecret, refreshToken string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)
	form.Set("refresh_token", refreshToken)

	reqURL := c.baseURL + "/oauth/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.RegistryError(http.MethodPost, "/oauth/token", resp.StatusCode, string(body))
		return "", fmt.Errorf("token exchange failed: status %d: %s", resp.StatusCode, string(body))
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("token exchange returned empty access token")
	}

	return token.AccessToken, nil
}

// SearchContacts queries contacts by primary email and type. An empty email
// is a permitted query and will typically return no match.
func (c *Client) SearchContacts(ctx context.Context, token, email, contactType string) ([]transport.Contact, error) {
	params := url.Values{}
	params.Set("query", email)
	params.Set("type", contactType)
	params.Set("fields", contactSearchFields)

	var contacts []transport.Contact
	if _, err := c.do(ctx, http.MethodGet, c.apiPath("contacts.json"), params, token, nil, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// GetContact fetches a contact's full detail including its current
// custom-field values.
func (c *Client) GetContact(ctx context.Context, token string, id int64) (*transport.Contact, error) {
	params := url.Values{}
	params.Set("fields", contactDetailFields)

	var contact transport.Contact
	if _, err := c.do(ctx, http.MethodGet, c.apiPath(fmt.Sprintf("contacts/%d.json", id)), params, token, nil, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

// CreateContact inserts a new contact. The raw response body is returned for
// diagnostics alongside the decoded record.
func (c *Client) CreateContact(ctx context.Context, token string, payload transport.ContactPayload) (*transport.Contact, json.RawMessage, error) {
	var contact transport.Contact
	raw, err := c.do(ctx, http.MethodPost, c.apiPath("contacts.json"), nil, token, envelope{Data: payload}, &contact)
	if err != nil {
		return nil, nil, err
	}
	return &contact, raw, nil
}

// UpdateContact partially replaces an existing contact's attributes.
func (c *Client) UpdateContact(ctx context.Context, token string, id int64, payload transport.ContactPayload) (*transport.Contact, json.RawMessage, error) {
	var contact transport.Contact
	raw, err := c.do(ctx, http.MethodPatch, c.apiPath(fmt.Sprintf("contacts/%d.json", id)), nil, token, envelope{Data: payload}, &contact)
	if err != nil {
		return nil, nil, err
	}
	return &contact, raw, nil
}

// ListCustomFields fetches all custom-field definitions. A single page is
// assumed; the schema comfortably fits one.
func (c *Client) ListCustomFields(ctx context.Context, token string) ([]transport.CustomFieldDefinition, error) {
	params := url.Values{}
	params.Set("limit", "200")
	params.Set("fields", "id,name,parent_type")

	var defs []transport.CustomFieldDefinition
	if _, err := c.do(ctx, http.MethodGet, c.apiPath("custom_fields.json"), params, token, nil, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// CreateMatter creates the matter record.
func (c *Client) CreateMatter(ctx context.Context, token string, payload transport.MatterPayload) (*transport.Matter, json.RawMessage, error) {
	var matter transport.Matter
	raw, err := c.do(ctx, http.MethodPost, c.apiPath("matters.json"), nil, token, envelope{Data: payload}, &matter)
	if err != nil {
		return nil, nil, err
	}
	return &matter, raw, nil
}

// envelope wraps outgoing bodies the way the registry expects them.
type envelope struct {
	Data any `json:"data"`
}

func (c *Client) apiPath(endpoint string) string {
	return fmt.Sprintf("/api/%s/%s", apiVersion, endpoint)
}

// do performs one authenticated request and decodes the {"data": ...}
// envelope into out. The raw body is returned for diagnostic logging.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, token string, body, out any) (json.RawMessage, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		c.log.Debug("registry request", "method", method, "endpoint", path, "payload", string(encoded))
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("registry request failed", "method", method, "endpoint", path, "error", err)
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.log.RegistryCall(method, path, resp.StatusCode, float64(time.Since(start).Milliseconds()))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.RegistryError(method, path, resp.StatusCode, string(raw))
		return nil, fmt.Errorf("registry %s %s: status %d: %s", method, path, resp.StatusCode, string(raw))
	}

	if out != nil {
		var wrapped struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("decode response envelope: %w", err)
		}
		if err := json.Unmarshal(wrapped.Data, out); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}

	return raw, nil
}
