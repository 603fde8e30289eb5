// Package notify reports pipeline outcomes to a Slack channel. Warn and
// Error post short pointer messages; the full detail goes to the service log.
package notify

import (
	"context"
	"errors"
	"time"

	"hostsync/internal/config"
	"hostsync/internal/metrics"
	"hostsync/internal/ratelimit"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
)

// Notifier is the outbound notification channel used across the pipeline.
type Notifier interface {
	Inform(ctx context.Context, message string)
	Warn(ctx context.Context, message string)
	Error(ctx context.Context, message string)
}

// Slack posts notifications via the Slack Web API, one message per second at
// most, honoring 429 Retry-After responses up to a retry cap.
type Slack struct {
	client     *slack.Client
	channelID  string
	limiter    *ratelimit.Limiter
	maxRetries int
	logger     zerolog.Logger
}

func NewSlack(cfg config.SlackConfig, logger *zerolog.Logger) *Slack {
	s := &Slack{
		channelID:  cfg.ChannelID,
		limiter:    ratelimit.New(cfg.RateLimitRPS),
		maxRetries: cfg.MaxRetries,
		logger:     logger.With().Str("component", "notify").Logger(),
	}

	if cfg.BotToken != "" {
		opts := []slack.Option{}
		if cfg.APIURL != "" {
			opts = append(opts, slack.OptionAPIURL(cfg.APIURL))
		}
		s.client = slack.New(cfg.BotToken, opts...)
	}

	return s
}

// MessageChannel sends text to the given channel, falling back to the
// configured default when channelID is empty.
func (s *Slack) MessageChannel(ctx context.Context, channelID, text string) error {
	if channelID == "" {
		channelID = s.channelID
	}

	if s.client == nil {
		s.logger.Error().Msg("Slack bot token not configured, dropping notification")
		return nil
	}
	if channelID == "" {
		s.logger.Error().Msg("Slack channel not configured, dropping notification")
		return nil
	}

	if err := s.limiter.WaitContext(ctx); err != nil {
		return err
	}

	for attempt := 0; ; attempt++ {
		_, _, err := s.client.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false))
		if err == nil {
			return nil
		}

		var rateLimited *slack.RateLimitedError
		if errors.As(err, &rateLimited) && attempt < s.maxRetries {
			s.logger.Warn().
				Dur("retry_after", rateLimited.RetryAfter).
				Int("attempt", attempt+1).
				Int("max_retries", s.maxRetries).
				Msg("Slack rate limit hit, retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(rateLimited.RetryAfter):
			}
			continue
		}

		return err
	}
}

func (s *Slack) Inform(ctx context.Context, message string) {
	metrics.IncNotification("info")
	s.logger.Info().Msg(message)
	if err := s.MessageChannel(ctx, "", message); err != nil {
		s.logger.Error().Err(err).Msg("Failed to send Slack notification")
	}
}

func (s *Slack) Warn(ctx context.Context, message string) {
	metrics.IncNotification("warning")
	s.logger.Warn().Msg(message)
	if err := s.MessageChannel(ctx, "", "Warning issued, see service logs for details"); err != nil {
		s.logger.Error().Err(err).Msg("Failed to send Slack notification")
	}
}

func (s *Slack) Error(ctx context.Context, message string) {
	metrics.IncNotification("error")
	s.logger.Error().Msg(message)
	if err := s.MessageChannel(ctx, "", "Error issued, see service logs for details"); err != nil {
		s.logger.Error().Err(err).Msg("Failed to send Slack notification")
	}
}
