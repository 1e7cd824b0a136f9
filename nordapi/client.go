// Package nordapi provides a typed client for the NordVPN public API.
// This file contains the HTTP client for credential lookup, server
// listing, and caller geolocation.
package nordapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"nordgen/common"
)

const (
	defaultBaseURL = "https://api.nordvpn.com/v1"

	// serverListLimit bounds the listing; the directory holds a few
	// thousand entries.
	serverListLimit = 7000
)

var tokenFormat = regexp.MustCompile(`^[a-fA-F0-9]{64}$`)

// ValidTokenFormat reports whether s looks like a NordVPN access token
// (64 hexadecimal characters). Checked before any network call.
func ValidTokenFormat(s string) bool {
	return tokenFormat.MatchString(s)
}

// Client talks to the NordVPN REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client with sane transport defaults.
func New() *Client {
	return &Client{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: common.APITimeout,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
	}
}

// NewWithBaseURL creates a Client against a custom API root.
// Used by tests to point at a local server.
func NewWithBaseURL(baseURL string) *Client {
	c := New()
	c.baseURL = baseURL
	return c
}

type credentialsResponse struct {
	PrivateKey string `json:"nordlynx_private_key"`
}

type insightsResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Credentials exchanges an access token for the account's WireGuard
// private key. A rejected token maps to common.ErrAuthRejected.
func (c *Client) Credentials(ctx context.Context, token string) (string, error) {
	auth := base64.StdEncoding.EncodeToString([]byte("token:" + token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/users/services/credentials", nil)
	if err != nil {
		return "", common.WrapError(common.ErrNetwork, err.Error())
	}
	req.Header.Set("Authorization", "Basic "+auth)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", common.WrapError(common.ErrNetwork, err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", common.ErrAuthRejected
	case resp.StatusCode != http.StatusOK:
		return "", common.WrapError(common.ErrNetwork,
			fmt.Sprintf("credentials endpoint returned %d", resp.StatusCode))
	}

	var creds credentialsResponse
	if err := json.NewDecoder(resp.Body).Decode(&creds); err != nil {
		return "", common.WrapError(common.ErrMalformedResponse, err.Error())
	}

	if creds.PrivateKey == "" {
		return "", common.WrapError(common.ErrAuthRejected,
			"token is not valid for WireGuard configuration")
	}
	return creds.PrivateKey, nil
}

// Servers fetches the raw server listing, pre-filtered to entries
// advertising the wireguard_udp technology.
func (c *Client) Servers(ctx context.Context) ([]ServerRecord, error) {
	url := fmt.Sprintf(
		"%s/servers?limit=%d&filters[servers_technologies][identifier]=wireguard_udp",
		c.baseURL, serverListLimit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, common.WrapError(common.ErrNetwork, err.Error())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, common.WrapError(common.ErrNetwork, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, common.WrapError(common.ErrNetwork,
			fmt.Sprintf("server listing returned %d", resp.StatusCode))
	}

	var servers []ServerRecord
	if err := json.NewDecoder(resp.Body).Decode(&servers); err != nil {
		return nil, common.WrapError(common.ErrMalformedResponse, err.Error())
	}
	return servers, nil
}

// Insights returns the caller's approximate coordinates, derived by the
// API from the public IP of the request.
func (c *Client) Insights(ctx context.Context) (lat, lon float64, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/helpers/ips/insights", nil)
	if err != nil {
		return 0, 0, common.WrapError(common.ErrNetwork, err.Error())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, 0, common.WrapError(common.ErrNetwork, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, common.WrapError(common.ErrNetwork,
			fmt.Sprintf("insights endpoint returned %d", resp.StatusCode))
	}

	var insights insightsResponse
	if err := json.NewDecoder(resp.Body).Decode(&insights); err != nil {
		return 0, 0, common.WrapError(common.ErrMalformedResponse, err.Error())
	}
	return insights.Latitude, insights.Longitude, nil
}
