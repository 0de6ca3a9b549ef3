// Package resy is an HTTP client for the Resy reservation API. It requires
// an API key and auth token captured from an authenticated session.
package resy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"stolik/internal/models"
)

const DefaultBaseURL = "https://api.resy.com"

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/138.0.0.0 Safari/537.36"

// GeoHint narrows venue search to an area.
type GeoHint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    int     `json:"radius"`
}

// Client talks to the Resy API.
type Client struct {
	baseURL         string
	apiKey          string
	authToken       string
	paymentMethodID int64
	geo             GeoHint
	httpClient      *http.Client

	redis    *redis.Client
	cacheTTL time.Duration
}

// New constructs a client. paymentMethodID is the Resy payment method used
// when submitting bookings.
func New(apiKey, authToken string, paymentMethodID int64, geo GeoHint) *Client {
	return &Client{
		baseURL:         DefaultBaseURL,
		apiKey:          apiKey,
		authToken:       authToken,
		paymentMethodID: paymentMethodID,
		geo:             geo,
		httpClient:      &http.Client{Timeout: 10 * time.Second},
	}
}

// SetBaseURL overrides the API base URL. Used by tests.
func (c *Client) SetBaseURL(base string) {
	c.baseURL = strings.TrimRight(base, "/")
}

// UseRedisCache configures optional Redis caching for venue search results.
// Slot and booking endpoints are never cached: their tokens are time-sensitive.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

type venueSearchRequest struct {
	Query string   `json:"query"`
	Types []string `json:"types"`
	Geo   GeoHint  `json:"geo"`
}

type venueSearchResponse struct {
	Search struct {
		Hits []struct {
			ObjectID string `json:"objectID"`
		} `json:"hits"`
	} `json:"search"`
}

// SearchVenue looks a venue up by name and returns the first hit's ID, or ""
// when nothing matches.
func (c *Client) SearchVenue(ctx context.Context, name string) (string, error) {
	cacheKey := "venuesearch:" + name
	var res venueSearchResponse
	if c.readCache(ctx, cacheKey, &res) {
		return firstHit(res), nil
	}

	body := venueSearchRequest{Query: name, Types: []string{"venue"}, Geo: c.geo}
	if err := c.doJSON(ctx, http.MethodPost, "/3/venuesearch/search", nil, body, &res); err != nil {
		return "", fmt.Errorf("venue search %q: %w", name, err)
	}
	c.writeCache(ctx, cacheKey, res)
	return firstHit(res), nil
}

func firstHit(res venueSearchResponse) string {
	if len(res.Search.Hits) == 0 {
		return ""
	}
	return res.Search.Hits[0].ObjectID
}

// ActiveReservations returns the caller's upcoming reservations as opaque
// records.
func (c *Client) ActiveReservations(ctx context.Context) ([]json.RawMessage, error) {
	var res struct {
		Reservations []json.RawMessage `json:"reservations"`
	}
	params := url.Values{"type": {"upcoming"}}
	if err := c.doJSON(ctx, http.MethodGet, "/3/user/reservations", params, nil, &res); err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return res.Reservations, nil
}

type findResponse struct {
	Results struct {
		Venues []struct {
			Slots []struct {
				Date struct {
					Start string `json:"start"`
				} `json:"date"`
				Config struct {
					Type  string `json:"type"`
					Token string `json:"token"`
				} `json:"config"`
			} `json:"slots"`
		} `json:"venues"`
	} `json:"results"`
}

// FindSlots fetches the raw slots for a venue on a day (YYYY-MM-DD), in
// platform order. A response without venue data means no availability and
// yields an empty slice, not an error.
func (c *Client) FindSlots(ctx context.Context, venueID string, partySize int, day string) ([]models.Slot, error) {
	params := url.Values{
		"venue_id":   {venueID},
		"party_size": {strconv.Itoa(partySize)},
		"day":        {day},
		// Deprecated but still required by the endpoint.
		"lat":  {"0"},
		"long": {"0"},
	}
	var res findResponse
	if err := c.doJSON(ctx, http.MethodGet, "/4/find", params, nil, &res); err != nil {
		return nil, fmt.Errorf("find slots venue=%s day=%s: %w", venueID, day, err)
	}
	if len(res.Results.Venues) == 0 {
		return nil, nil
	}

	raw := res.Results.Venues[0].Slots
	slots := make([]models.Slot, 0, len(raw))
	for _, s := range raw {
		slots = append(slots, models.Slot{
			Start:       s.Date.Start,
			SeatingType: s.Config.Type,
			Token:       s.Config.Token,
		})
	}
	return slots, nil
}

// BookingToken exchanges a slot's config token for a booking token. The
// config token expires quickly; callers must pass one obtained immediately
// before booking.
func (c *Client) BookingToken(ctx context.Context, configToken, day string, partySize int) (string, error) {
	params := url.Values{
		"config_id":  {configToken},
		"day":        {day},
		"party_size": {strconv.Itoa(partySize)},
	}
	var res struct {
		BookToken struct {
			Value string `json:"value"`
		} `json:"book_token"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/3/details", params, nil, &res); err != nil {
		return "", fmt.Errorf("booking details: %w", err)
	}
	if res.BookToken.Value == "" {
		return "", fmt.Errorf("booking details: response carries no book token")
	}
	return res.BookToken.Value, nil
}

// SubmitBooking books the slot behind bookToken and returns the confirmation
// ID, or "" when the platform rejects the booking.
func (c *Client) SubmitBooking(ctx context.Context, bookToken string) (string, error) {
	payment, err := json.Marshal(struct {
		ID int64 `json:"id"`
	}{ID: c.paymentMethodID})
	if err != nil {
		return "", err
	}

	form := url.Values{
		"book_token":             {bookToken},
		"struct_payment_method":  {string(payment)},
		"venue_marketing_opt_in": {"0"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/3/book", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.addHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("book: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("book: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("book: http %d", resp.StatusCode)
	}

	var res struct {
		ResyToken string `json:"resy_token"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return "", fmt.Errorf("book: %w", err)
	}
	return res.ResyToken, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, params url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = strings.NewReader(string(data))
	}

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.addHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) addHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf(`ResyAPI api_key="%s"`, c.apiKey))
	req.Header.Set("X-Resy-Auth-Token", c.authToken)
	req.Header.Set("X-Resy-Universal-Auth", c.authToken)
	req.Header.Set("X-Origin", "https://resy.com")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Cache-Control", "no-cache")
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), out) == nil
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.cacheTTL).Err()
}
