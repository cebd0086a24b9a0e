// Package linkedin imports doctor profile details during onboarding by
// exchanging a LinkedIn OAuth authorization code for the member's profile.
package linkedin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

// Profile is the subset of a LinkedIn member profile used to prefill the
// onboarding form. LinkedIn's OpenID userinfo endpoint only carries names,
// so the remaining fields stay empty for the doctor to complete.
type Profile struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Qualifications string `json:"qualifications,omitempty"`
	Experience     string `json:"experience,omitempty"`
	Bio            string `json:"bio,omitempty"`
}

// ErrMissingCode is returned when the exchange is attempted without a code.
var ErrMissingCode = errors.New("linkedin: authorization code required")

// Client exchanges OAuth authorization codes for profiles.
type Client struct {
	clientID     string
	clientSecret string
	redirectURI  string
	authBaseURL  string
	apiBaseURL   string
	httpClient   *http.Client
	logger       *logging.Logger
	mock         bool
}

// NewClient builds a LinkedIn client. Empty credentials put the client in
// mock mode: exchanges succeed with a canned profile so local dev and demos
// work without a LinkedIn app.
func NewClient(clientID, clientSecret, redirectURI string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		authBaseURL:  "https://www.linkedin.com",
		apiBaseURL:   "https://api.linkedin.com",
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		logger:       logger,
		mock:         clientID == "" || clientSecret == "",
	}
}

// WithBaseURLs overrides the OAuth and API base URLs (for testing).
func (c *Client) WithBaseURLs(authBaseURL, apiBaseURL string) *Client {
	if authBaseURL != "" {
		c.authBaseURL = strings.TrimRight(authBaseURL, "/")
	}
	if apiBaseURL != "" {
		c.apiBaseURL = strings.TrimRight(apiBaseURL, "/")
	}
	return c
}

// WithMockMode forces mock responses regardless of credentials.
func (c *Client) WithMockMode(mock bool) *Client {
	c.mock = mock
	return c
}

// MockMode reports whether exchanges return the canned profile.
func (c *Client) MockMode() bool {
	return c.mock
}

// ExchangeCodeForProfile trades an OAuth authorization code for the member's
// profile in two hops: code -> access token, then token -> userinfo.
func (c *Client) ExchangeCodeForProfile(ctx context.Context, code string) (*Profile, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrMissingCode
	}
	if c.mock {
		c.logger.Info("linkedin mock exchange", "code_present", true)
		return mockProfile(), nil
	}

	token, err := c.exchangeToken(ctx, code)
	if err != nil {
		return nil, err
	}
	return c.fetchProfile(ctx, token)
}

func (c *Client) exchangeToken(ctx context.Context, code string) (string, error) {
	payload := url.Values{}
	payload.Set("grant_type", "authorization_code")
	payload.Set("code", code)
	payload.Set("client_id", c.clientID)
	payload.Set("client_secret", c.clientSecret)
	payload.Set("redirect_uri", c.redirectURI)

	endpoint := c.authBaseURL + "/oauth/v2/accessToken"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(payload.Encode()))
	if err != nil {
		return "", fmt.Errorf("linkedin: token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("linkedin: token exchange: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("linkedin: token exchange status %d: %s", resp.StatusCode, string(body))
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("linkedin: decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", errors.New("linkedin: empty access token")
	}
	return token.AccessToken, nil
}

func (c *Client) fetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+"/v2/userinfo", nil)
	if err != nil {
		return nil, fmt.Errorf("linkedin: profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("linkedin: profile fetch: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("linkedin: profile fetch status %d: %s", resp.StatusCode, string(body))
	}

	var userinfo struct {
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}
	if err := json.Unmarshal(body, &userinfo); err != nil {
		return nil, fmt.Errorf("linkedin: decode userinfo: %w", err)
	}

	return &Profile{
		FirstName: userinfo.GivenName,
		LastName:  userinfo.FamilyName,
	}, nil
}

func mockProfile() *Profile {
	return &Profile{
		FirstName:      "Alexandra",
		LastName:       "Carter",
		Qualifications: "MBBS, MRCOG",
		Experience:     "12 years in obstetrics and gynaecology",
		Bio:            "Consultant gynaecologist with a special interest in endometriosis and fertility.",
	}
}
