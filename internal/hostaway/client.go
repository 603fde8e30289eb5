// Package hostaway is the client for the upstream Hostaway Public API. Every
// request goes through the shared rate limiter and a bounded retry loop;
// exhausted retries surface as a failed fetch, never a panic.
package hostaway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"hostsync/internal/config"
	"hostsync/internal/metrics"
	"hostsync/internal/models"
	"hostsync/internal/ratelimit"
	"hostsync/internal/schema"

	"github.com/rs/zerolog"
)

type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	limiter     *ratelimit.Limiter
	retryPolicy RetryPolicy
	maxPageSize int
	logger      zerolog.Logger
}

// ReservationFilters narrows ListReservations. Zero values are omitted from
// the query string. Limit 0 fetches everything.
type ReservationFilters struct {
	Limit                         int
	Offset                        int
	Order                         string
	ChannelID                     int64
	ListingID                     int64
	ArrivalStartDate              string
	ArrivalEndDate                string
	DepartureStartDate            string
	DepartureEndDate              string
	HasUnreadConversationMessages *bool
}

func New(cfg config.HostawayConfig, limiter *ratelimit.Limiter, logger *zerolog.Logger) *Client {
	return &Client{
		baseURL:     cfg.BaseURL,
		accessToken: cfg.AccessToken,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		limiter:     limiter,
		retryPolicy: RetryPolicy{
			MaxRetries:   cfg.MaxRetries,
			InitialDelay: cfg.RetryBackoff,
			Jitter:       cfg.RetryJitter,
		},
		maxPageSize: cfg.MaxPageSize,
		logger:      logger.With().Str("component", "hostaway").Logger(),
	}
}

// GetReservation fetches a single reservation and validates its shape against
// the reservation schema. A nil error means the returned field map is usable.
func (c *Client) GetReservation(ctx context.Context, reservationID int64) (map[string]any, error) {
	endpoint := fmt.Sprintf("%s/reservations/%d", c.baseURL, reservationID)

	var envelope struct {
		Result map[string]any `json:"result"`
	}
	if err := c.getWithRetries(ctx, endpoint, &envelope); err != nil {
		metrics.IncUpstream("get_reservation", "failure")
		return nil, err
	}

	descriptor, _ := schema.ForKind(models.KindReservation)
	if err := descriptor.Validate(envelope.Result); err != nil {
		metrics.IncUpstream("get_reservation", "invalid")
		return nil, fmt.Errorf("invalid reservation fetched from Hostaway API: %w", err)
	}

	metrics.IncUpstream("get_reservation", "success")
	c.logger.Info().Int64("reservation_id", reservationID).Msg("Reservation fetched from Hostaway API")
	return envelope.Result, nil
}

// ListReservations fetches reservations, paginating transparently: when the
// requested size exceeds the upstream page maximum, successive
// offset-advancing requests are concatenated until a short page signals the
// end of data.
func (c *Client) ListReservations(ctx context.Context, filters ReservationFilters) ([]map[string]any, error) {
	var results []map[string]any
	offset := filters.Offset
	remaining := filters.Limit // 0 means unbounded

	for {
		pageSize := c.maxPageSize
		if remaining > 0 && remaining < pageSize {
			pageSize = remaining
		}

		page, err := c.fetchReservationPage(ctx, filters, pageSize, offset)
		if err != nil {
			metrics.IncUpstream("list_reservations", "failure")
			return nil, err
		}

		results = append(results, page...)
		if remaining > 0 {
			remaining -= len(page)
			if remaining <= 0 {
				break
			}
		}

		// A short page means the upstream has no more data.
		if len(page) < pageSize {
			break
		}
		offset += len(page)
	}

	metrics.IncUpstream("list_reservations", "success")
	c.logger.Info().Int("count", len(results)).Msg("Reservations fetched from Hostaway API")
	return results, nil
}

func (c *Client) fetchReservationPage(ctx context.Context, filters ReservationFilters, limit, offset int) ([]map[string]any, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))
	if filters.Order != "" {
		query.Set("order", filters.Order)
	}
	if filters.ChannelID != 0 {
		query.Set("channelId", strconv.FormatInt(filters.ChannelID, 10))
	}
	if filters.ListingID != 0 {
		query.Set("listingId", strconv.FormatInt(filters.ListingID, 10))
	}
	if filters.ArrivalStartDate != "" {
		query.Set("arrivalStartDate", filters.ArrivalStartDate)
	}
	if filters.ArrivalEndDate != "" {
		query.Set("arrivalEndDate", filters.ArrivalEndDate)
	}
	if filters.DepartureStartDate != "" {
		query.Set("departureStartDate", filters.DepartureStartDate)
	}
	if filters.DepartureEndDate != "" {
		query.Set("departureEndDate", filters.DepartureEndDate)
	}
	if filters.HasUnreadConversationMessages != nil {
		query.Set("hasUnreadConversationMessages", strconv.FormatBool(*filters.HasUnreadConversationMessages))
	}

	endpoint := fmt.Sprintf("%s/reservations?%s", c.baseURL, query.Encode())

	var envelope struct {
		Result []map[string]any `json:"result"`
	}
	if err := c.getWithRetries(ctx, endpoint, &envelope); err != nil {
		return nil, err
	}
	return envelope.Result, nil
}

// getWithRetries performs a GET with rate limiting and exponential backoff.
// Each attempt acquires its own permit so retries stay within the rate.
func (c *Client) getWithRetries(ctx context.Context, endpoint string, out any) error {
	var lastErr error
	for attempt := 1; attempt <= c.retryPolicy.MaxRetries; attempt++ {
		if err := c.limiter.WaitContext(ctx); err != nil {
			return err
		}

		lastErr = c.doGet(ctx, endpoint, out)
		if lastErr == nil {
			return nil
		}

		c.logger.Error().
			Err(lastErr).
			Int("attempt", attempt).
			Int("max_retries", c.retryPolicy.MaxRetries).
			Str("endpoint", endpoint).
			Msg("Hostaway API request failed")

		if attempt < c.retryPolicy.MaxRetries {
			metrics.IncUpstream("retry", "scheduled")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryPolicy.NextDelay(attempt)):
			}
		}
	}
	return lastErr
}

func (c *Client) doGet(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Cache-control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
