package gateway

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

	"tixgate/internal/domain/company"
	"tixgate/internal/domain/event"
	"tixgate/internal/domain/session/model"
	"tixgate/internal/domain/stats"
	"tixgate/internal/domain/ticket"
)

const defaultTimeout = 10 * time.Second

// Logger is the minimal logging surface the gateway needs.
type Logger interface {
	DebugTag(tag, format string, args ...any)
	WarnTag(tag, format string, args ...any)
}

// Config collects the connection parameters for the ticketing backend.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client issues HTTPS calls against the ticketing backend and decodes
// the {code, result, message} envelope into typed outcomes.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	logger    Logger
}

// New builds a gateway client.
func New(cfg Config, logger Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gateway requires a base URL")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: timeout},
		logger:    logger,
	}, nil
}

type loginRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

type loginResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	RoleName     string `json:"roleName"`
	Status       string `json:"status"`
}

// Login authenticates an organizer account. The role allow-list is
// enforced after HTTP success: any role other than ORGANIZER is rejected
// even though the backend accepted the password.
func (c *Client) Login(ctx context.Context, userName, password string) (model.Credential, error) {
	body, err := c.post(ctx, "/auth/login", loginRequest{UserName: userName, Password: password}, "")
	if err != nil {
		return model.Credential{}, err
	}

	var result loginResult
	if err := decodeEnvelope(body, &result); err != nil {
		return model.Credential{}, err
	}

	if result.RoleName != model.RoleOrganizer {
		return model.Credential{}, newError(ServerRejected, "insufficient role", nil)
	}

	return model.Credential{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		Role:         result.RoleName,
		UserName:     userName,
	}, nil
}

type decryptRequest struct {
	QRCode string `json:"qrCode"`
}

// DecryptQR exchanges an opaque QR payload for the decrypted ticket
// record. The cryptography is server-side; this call only carries the
// payload across.
func (c *Client) DecryptQR(ctx context.Context, payload string, cred model.Credential) (ticket.Record, error) {
	if !cred.Valid() {
		return ticket.Record{}, newError(Unauthenticated, "not authenticated", nil)
	}

	body, err := c.post(ctx, "/ticket-purchase/decrypt_qr_code", decryptRequest{QRCode: payload}, cred.AccessToken)
	if err != nil {
		return ticket.Record{}, err
	}

	var record ticket.Record
	if err := decodeEnvelope(body, &record); err != nil {
		return ticket.Record{}, err
	}
	return record, nil
}

// CheckinStats fetches the aggregate check-in counts for one event
// activity. Stateless; every call is a fresh wholesale fetch.
func (c *Client) CheckinStats(ctx context.Context, eventActivityID int64) (stats.CheckinStats, error) {
	body, err := c.get(ctx, fmt.Sprintf("/event/checkin/event-activity/%d", eventActivityID), "")
	if err != nil {
		return stats.CheckinStats{}, err
	}

	var result stats.CheckinStats
	if err := decodeEnvelope(body, &result); err != nil {
		return stats.CheckinStats{}, err
	}
	return result, nil
}

// MyEventActivities lists the organizer's events with their scheduled
// activities. Requires authentication.
func (c *Client) MyEventActivities(ctx context.Context, cred model.Credential) ([]event.Event, error) {
	if !cred.Valid() {
		return nil, newError(Unauthenticated, "not authenticated", nil)
	}

	body, err := c.get(ctx, "/member-activity/my-event-activities", cred.AccessToken)
	if err != nil {
		return nil, err
	}

	var events []event.Event
	if err := decodeEnvelope(body, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Event fetches the full record for one event.
func (c *Client) Event(ctx context.Context, eventID int64) (event.Detail, error) {
	body, err := c.get(ctx, fmt.Sprintf("/event/%d", eventID), "")
	if err != nil {
		return event.Detail{}, err
	}

	var detail event.Detail
	if err := decodeEnvelope(body, &detail); err != nil {
		return event.Detail{}, err
	}
	return detail, nil
}

// Company fetches one organizer company.
func (c *Client) Company(ctx context.Context, companyID int64) (company.Company, error) {
	body, err := c.get(ctx, fmt.Sprintf("/company/%d", companyID), "")
	if err != nil {
		return company.Company{}, err
	}

	var result company.Company
	if err := decodeEnvelope(body, &result); err != nil {
		return company.Company{}, err
	}
	return result, nil
}

// CompaniesByUser lists the companies registered under a user name.
func (c *Client) CompaniesByUser(ctx context.Context, userName string) ([]company.Company, error) {
	body, err := c.get(ctx, "/company/get-companys-by-user-name/"+url.PathEscape(userName), "")
	if err != nil {
		return nil, err
	}

	var companies []company.Company
	if err := decodeEnvelope(body, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, bearer string) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, newError(MalformedResponse, "failed to encode request body", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, newError(NetworkUnavailable, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")
	return c.do(req, bearer)
}

func (c *Client) get(ctx context.Context, path string, bearer string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, newError(NetworkUnavailable, "failed to build request", err)
	}
	req.Header.Set("Accept", "*/*")
	return c.do(req, bearer)
}

// do executes the request and returns the body text. Transport faults of
// any flavour map to NetworkUnavailable; they never escape untyped.
func (c *Client) do(req *http.Request, bearer string) ([]byte, error) {
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.WarnTag("gateway", "%s %s transport failure: %v", req.Method, req.URL.Path, err)
		}
		return nil, newError(NetworkUnavailable, "cannot reach the ticketing backend", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(NetworkUnavailable, "failed to read response body", err)
	}

	if c.logger != nil {
		c.logger.DebugTag("gateway", "%s %s -> %d (%d bytes)", req.Method, req.URL.Path, resp.StatusCode, len(body))
	}
	return body, nil
}
