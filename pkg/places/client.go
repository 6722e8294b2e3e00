// Package places provides a client for the Google Places API (New) Text
// Search endpoint, scoped to the fields the canvass consumes.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://places.googleapis.com/v1"

// fieldMask lists every place field the canvass reads. Requesting a fixed
// mask keeps per-call cost predictable.
const fieldMask = "places.id,places.displayName,places.formattedAddress," +
	"places.location,places.rating,places.userRatingCount," +
	"places.googleMapsUri,places.photos,places.types," +
	"places.businessStatus,places.primaryType," +
	"places.websiteUri,places.nationalPhoneNumber," +
	"places.currentOpeningHours"

// maxResultCount is the Places API page-size ceiling for Text Search.
const maxResultCount = 20

// Client performs Places API operations.
type Client interface {
	// TextSearch runs a Text Search biased to a circle around a coordinate.
	// Failures are returned as *Failure values (see errors.go).
	TextSearch(ctx context.Context, req TextSearchRequest) (*TextSearchResponse, error)

	// PhotoURL builds a media URL from a photo resource name. Returns the
	// empty string for an empty name.
	PhotoURL(name string, maxWidthPx int) string
}

// TextSearchRequest describes one provider call.
type TextSearchRequest struct {
	Query        string
	Lat          float64
	Lng          float64
	RadiusMeters float64
}

// TextSearchResponse is the decoded Text Search payload.
type TextSearchResponse struct {
	Places []Place `json:"places"`
}

// Place is a raw provider record. Only the masked fields are populated.
type Place struct {
	ID              string        `json:"id"`
	DisplayName     LocalizedText `json:"displayName"`
	Address         string        `json:"formattedAddress"`
	Location        LatLng        `json:"location"`
	Rating          float64       `json:"rating"`
	UserRatingCount int           `json:"userRatingCount"`
	GoogleMapsURI   string        `json:"googleMapsUri"`
	WebsiteURI      string        `json:"websiteUri"`
	Phone           string        `json:"nationalPhoneNumber"`
	Photos          []Photo       `json:"photos"`
	Types           []string      `json:"types"`
	PrimaryType     string        `json:"primaryType"`
	BusinessStatus  string        `json:"businessStatus"`
	OpeningHours    OpeningHours  `json:"currentOpeningHours"`
}

// LocalizedText holds a localized display string.
type LocalizedText struct {
	Text string `json:"text"`
}

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Photo references a photo resource.
type Photo struct {
	Name string `json:"name"`
}

// OpeningHours carries the human-readable weekly schedule.
type OpeningHours struct {
	WeekdayDescriptions []string `json:"weekdayDescriptions"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithLocale sets the language and region codes sent with each search.
func WithLocale(language, region string) Option {
	return func(c *httpClient) {
		c.language = language
		c.region = region
	}
}

type httpClient struct {
	apiKey   string
	baseURL  string
	language string
	region   string
	http     *http.Client
}

// NewClient creates a Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		language: "de",
		region:   "CH",
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type textSearchRequest struct {
	TextQuery      string        `json:"textQuery"`
	LocationBias   *locationBias `json:"locationBias,omitempty"`
	MaxResultCount int           `json:"maxResultCount"`
	LanguageCode   string        `json:"languageCode,omitempty"`
	RegionCode     string        `json:"regionCode,omitempty"`
}

type locationBias struct {
	Circle circle `json:"circle"`
}

type circle struct {
	Center LatLng  `json:"center"`
	Radius float64 `json:"radius"`
}

func (c *httpClient) TextSearch(ctx context.Context, req TextSearchRequest) (*TextSearchResponse, error) {
	payload := textSearchRequest{
		TextQuery:      req.Query,
		MaxResultCount: maxResultCount,
		LanguageCode:   c.language,
		RegionCode:     c.region,
	}
	if req.RadiusMeters > 0 {
		payload.LocationBias = &locationBias{
			Circle: circle{
				Center: LatLng{Latitude: req.Lat, Longitude: req.Lng},
				Radius: req.RadiusMeters,
			},
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Failure{Kind: FailureMalformed, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/places:searchText", bytes.NewReader(body))
	if err != nil {
		return nil, &Failure{Kind: FailureTransport, Err: err}
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)
	httpReq.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &Failure{Kind: FailureTransport, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Failure{Kind: FailureTransport, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &Failure{
			Kind:       FailureRateLimited,
			StatusCode: resp.StatusCode,
			Err:        errors.New("rate limited"),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Failure{
			Kind:       FailureTransport,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", truncate(respBody, 200)),
		}
	}

	var result TextSearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &Failure{Kind: FailureMalformed, StatusCode: resp.StatusCode, Err: err}
	}

	return &result, nil
}

func (c *httpClient) PhotoURL(name string, maxWidthPx int) string {
	if name == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/media?maxWidthPx=%d&key=%s", c.baseURL, name, maxWidthPx, c.apiKey)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
