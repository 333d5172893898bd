// Package geoapify is a thin client for the Geoapify geocoding and places
// APIs. It exposes exactly the two calls the nearby-search service needs and
// performs a single attempt per call; retry policy belongs to callers.
package geoapify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNoFeatures is returned by Geocode when the API answers successfully but
// carries no usable feature for the query.
var ErrNoFeatures = errors.New("geoapify: no features for query")

const defaultPlacesLimit = 20

type Config struct {
	BaseURL string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.geoapify.com"`
	APIKey  string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"15s"`
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("geoapify base url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid geoapify base url: %w", err)
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("geoapify api key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// GeocodeResult is the first feature of a forward-geocoding response.
type GeocodeResult struct {
	Lat       float64
	Lon       float64
	PlaceID   string
	Formatted string
}

// Geocode resolves free-form address text to a coordinate. A successful
// response with an empty feature list yields ErrNoFeatures.
func (c *Client) Geocode(ctx context.Context, text string) (GeocodeResult, error) {
	params := url.Values{
		"text":   {text},
		"apiKey": {c.apiKey},
	}

	var decoded featureCollection
	if err := c.get(ctx, "/v1/geocode/search", params, &decoded); err != nil {
		return GeocodeResult{}, err
	}

	if len(decoded.Features) == 0 {
		return GeocodeResult{}, fmt.Errorf("%w: %s", ErrNoFeatures, text)
	}

	p := decoded.Features[0].Properties
	return GeocodeResult{
		Lat:       p.Lat,
		Lon:       p.Lon,
		PlaceID:   p.PlaceID,
		Formatted: p.Formatted,
	}, nil
}

// PlacesRequest describes one category search around a resolved location.
type PlacesRequest struct {
	Category string
	PlaceID  string
	Lat      float64
	Lon      float64
	Limit    int
}

// PlaceFeature is one place from a category search, in the API's relevance
// order. Distance and RankConfidence are nil when the API omits them.
type PlaceFeature struct {
	Name           string
	Formatted      string
	Lat            float64
	Lon            float64
	Distance       *float64
	RankConfidence *float64
}

// Places runs a single category search biased toward the given coordinate and
// optionally filtered to the resolved place boundary.
func (c *Client) Places(ctx context.Context, req PlacesRequest) ([]PlaceFeature, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultPlacesLimit
	}

	params := url.Values{
		"categories": {req.Category},
		"bias":       {fmt.Sprintf("proximity:%s,%s", formatCoord(req.Lon), formatCoord(req.Lat))},
		"limit":      {strconv.Itoa(limit)},
		"apiKey":     {c.apiKey},
	}
	if req.PlaceID != "" {
		params.Set("filter", "place:"+req.PlaceID)
	}

	var decoded featureCollection
	if err := c.get(ctx, "/v2/places", params, &decoded); err != nil {
		return nil, err
	}

	places := make([]PlaceFeature, 0, len(decoded.Features))
	for _, f := range decoded.Features {
		places = append(places, PlaceFeature{
			Name:           f.Properties.Name,
			Formatted:      f.Properties.Formatted,
			Lat:            f.Properties.Lat,
			Lon:            f.Properties.Lon,
			Distance:       f.Properties.Distance,
			RankConfidence: f.Properties.RankConfidence,
		})
	}
	return places, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("geoapify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("geoapify status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode geoapify response: %w", err)
	}
	return nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	Properties properties `json:"properties"`
}

type properties struct {
	Name           string   `json:"name"`
	Formatted      string   `json:"formatted"`
	Lat            float64  `json:"lat"`
	Lon            float64  `json:"lon"`
	PlaceID        string   `json:"place_id"`
	Distance       *float64 `json:"distance"`
	RankConfidence *float64 `json:"rank_confidence"`
}
