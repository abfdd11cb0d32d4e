package service

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/foomo/contentserver-pages/service/vo"
)

type ResilienceSettings struct {
	Attempts  uint
	Delay     time.Duration
	MaxDelay  time.Duration
	MaxJitter time.Duration
	// BreakerFailures consecutive failed fetches open the breaker, 0 disables it
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

func DefaultResilienceSettings() ResilienceSettings {
	return ResilienceSettings{
		Attempts:        3,
		Delay:           100 * time.Millisecond,
		MaxDelay:        2 * time.Second,
		MaxJitter:       100 * time.Millisecond,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}

type resilientService struct {
	next     Service
	settings ResilienceSettings
	breaker  *gobreaker.CircuitBreaker
	logger   *zap.Logger
}

// WithResilience retries failed fetches with jittered exponential backoff and
// stops calling the store while it keeps failing. A missing page is a success.
func WithResilience(next Service, settings ResilienceSettings, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.Attempts == 0 {
		settings.Attempts = 1
	}
	r := &resilientService{next: next, settings: settings, logger: logger}
	if settings.BreakerFailures > 0 {
		r.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "content-store",
			Timeout: settings.BreakerTimeout,
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= settings.BreakerFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed",
					zap.String("name", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		})
	}
	return r
}

func (r *resilientService) GetPage(ctx context.Context, slug string) (*vo.PageDocument, error) {
	if r.breaker == nil {
		return r.fetch(ctx, slug)
	}
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.fetch(ctx, slug)
	})
	if err != nil {
		return nil, err
	}
	doc, _ := result.(*vo.PageDocument)
	return doc, nil
}

func (r *resilientService) fetch(ctx context.Context, slug string) (*vo.PageDocument, error) {
	options := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(r.settings.Attempts),
		retry.Delay(r.settings.Delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Warn("retrying page fetch",
				zap.String("slug", slug),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	}
	if r.settings.MaxDelay > 0 {
		options = append(options, retry.MaxDelay(r.settings.MaxDelay))
	}
	// RandomDelay panics on a zero jitter
	if r.settings.MaxJitter > 0 {
		options = append(options,
			retry.MaxJitter(r.settings.MaxJitter),
			retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		)
	} else {
		options = append(options, retry.DelayType(retry.BackOffDelay))
	}

	var doc *vo.PageDocument
	err := retry.Do(func() error {
		var err error
		doc, err = r.next.GetPage(ctx, slug)
		return err
	}, options...)
	if err != nil {
		return nil, err
	}
	return doc, nil
}
