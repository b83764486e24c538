package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultNominatimEndpoint is the public OpenStreetMap instance.
const DefaultNominatimEndpoint = "https://nominatim.openstreetmap.org"

// Nominatim is a reverse geocoder backed by a Nominatim HTTP API.
type Nominatim struct {
	endpoint  string
	userAgent string
	language  string
	client    *http.Client
}

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// NewNominatim creates a client for endpoint. An empty endpoint uses the
// public instance.
func NewNominatim(endpoint, userAgent, language string) *Nominatim {
	if endpoint == "" {
		endpoint = DefaultNominatimEndpoint
	}
	if userAgent == "" {
		userAgent = "luxtrail"
	}
	return &Nominatim{
		endpoint:  endpoint,
		userAgent: userAgent,
		language:  language,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Reverse returns the display name of the closest address to lat/lon.
func (n *Nominatim) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("zoom", "18")
	if n.language != "" {
		q.Set("accept-language", n.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.endpoint+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build reverse request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("reverse request: unexpected status %s", resp.Status)
	}

	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode reverse response: %w", err)
	}
	if body.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrNoAddress, body.Error)
	}
	if body.DisplayName == "" {
		return "", ErrNoAddress
	}
	return body.DisplayName, nil
}
