// Package sheets pulls event rows out of a Google Sheets spreadsheet using a
// read-only service account.
package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	logx "herald/pkg/logx"
)

const (
	tokenEndpoint = "https://oauth2.googleapis.com/token"
	sheetsBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"
	readonlyScope = "https://www.googleapis.com/auth/spreadsheets.readonly"
	jwtGrantType  = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	defaultRange = "A2:E100"
)

type ClientConfig struct {
	SpreadsheetID       string
	ServiceAccountEmail string
	PrivateKeyPath      string
	// Range defaults to "A2:E100"; row 1 holds headers.
	Range string
}

// Client fetches spreadsheet values with a service-account JWT exchanged at
// the OAuth2 token endpoint.
type Client struct {
	cfg  ClientConfig
	http *http.Client
	log  logx.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(cfg ClientConfig, log logx.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("sheets: spreadsheet id is required")
	}
	if strings.TrimSpace(cfg.ServiceAccountEmail) == "" {
		return nil, errors.New("sheets: service account email is required")
	}
	if strings.TrimSpace(cfg.PrivateKeyPath) == "" {
		return nil, errors.New("sheets: private key path is required")
	}
	if strings.TrimSpace(cfg.Range) == "" {
		cfg.Range = defaultRange
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
		log:  log,
	}, nil
}

// Row is one spreadsheet row: (title, speaker?, date & time, location,
// description), 1-based Number for provenance.
type Row struct {
	Title        string
	Speaker      string
	DateTimeText string
	Location     string
	Description  string
	Number       int
}

// Rows fetches the configured range. Rows without a title or date cell are
// skipped.
func (c *Client) Rows(ctx context.Context) ([]Row, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/%s/values/%s",
		sheetsBaseURL, url.PathEscape(c.cfg.SpreadsheetID), url.PathEscape(c.cfg.Range))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheets: values.get: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("sheets: values.get returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Values [][]string `json:"values"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("sheets: decoding values: %w", err)
	}

	var rows []Row
	for i, cells := range payload.Values {
		r := Row{Number: i + 2} // range starts at row 2
		if len(cells) > 0 {
			r.Title = strings.TrimSpace(cells[0])
		}
		if len(cells) > 1 {
			r.Speaker = strings.TrimSpace(cells[1])
		}
		if len(cells) > 2 {
			r.DateTimeText = strings.TrimSpace(cells[2])
		}
		if len(cells) > 3 {
			r.Location = strings.TrimSpace(cells[3])
		}
		if len(cells) > 4 {
			r.Description = strings.TrimSpace(cells[4])
		}
		if r.Title == "" || r.DateTimeText == "" {
			continue
		}
		rows = append(rows, r)
	}
	c.log.Info("spreadsheet fetched",
		logx.Int("rows", len(rows)), logx.String("range", c.cfg.Range))
	return rows, nil
}

func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.accessToken, nil
	}

	assertion, err := c.signAssertion()
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("grant_type", jwtGrantType)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenEndpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("sheets: token exchange: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("sheets: token endpoint returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("sheets: decoding token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("sheets: token endpoint returned no access token")
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

func (c *Client) signAssertion() (string, error) {
	pem, err := os.ReadFile(c.cfg.PrivateKeyPath)
	if err != nil {
		return "", fmt.Errorf("sheets: reading private key: %w", err)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pem)
	if err != nil {
		return "", fmt.Errorf("sheets: parsing private key: %w", err)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   c.cfg.ServiceAccountEmail,
		"scope": readonlyScope,
		"aud":   tokenEndpoint,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
}
