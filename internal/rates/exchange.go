package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iwvelando/mortgage-calculator/internal/cache"
	"github.com/iwvelando/mortgage-calculator/internal/config"
	"github.com/iwvelando/mortgage-calculator/internal/metrics"
	"github.com/iwvelando/mortgage-calculator/internal/tracing"
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/money"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// SupportedCurrencies are the foreign currencies offered next to PLN.
var SupportedCurrencies = []string{"EUR", "USD", "UAH", "GBP"}

// ErrUnavailable is returned when no exchange rate source answered.
var ErrUnavailable = errors.New("exchange rates unavailable")

const exchangeCacheKey = "rates:exchange"

const (
	SourceNBP      = "nbp"
	SourceFallback = "exchangerate.host"
)

// ExchangeRates holds the value of one unit of each currency in PLN.
type ExchangeRates struct {
	Base          string      `json:"base" yaml:"base"`
	Source        string      `json:"source" yaml:"source"`
	EffectiveDate string      `json:"effectiveDate,omitempty" yaml:"effectiveDate,omitempty"`
	FetchedAt     time.Time   `json:"fetchedAt" yaml:"fetchedAt"`
	Rates         money.Rates `json:"rates" yaml:"rates"`
}

// Service answers rate queries.
type Service struct {
	conf    config.RatesConfig
	client  *http.Client
	cache   cache.Cache
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a rates service. A nil cache disables caching; a nil
// client uses one with the configured timeout.
func NewService(conf config.RatesConfig, c cache.Cache, client *http.Client, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		timeout := conf.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	if conf.BaseRateName == "" {
		conf.BaseRateName = constants.DefaultBaseRateName
	}
	return &Service{
		conf:    conf,
		client:  client,
		cache:   c,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// ExchangeRates returns current rates, from the cache when fresh, otherwise
// from NBP table A with exchangerate.host as the fallback.
func (s *Service) ExchangeRates(ctx context.Context) (ExchangeRates, error) {
	ctx, span := tracing.Tracer().Start(ctx, "rates.ExchangeRates")
	defer span.End()

	var result ExchangeRates
	if s.cache != nil {
		ok, err := cache.GetJSON(ctx, s.cache, exchangeCacheKey, &result)
		if err != nil {
			s.logger.Warn("failed to read cached exchange rates",
				zap.String("op", "rates.ExchangeRates"),
				zap.Error(err),
			)
		}
		if ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return result, nil
		}
	}

	result, nbpErr := s.fetchNBP(ctx)
	s.metrics.ObserveUpstream(SourceNBP, nbpErr)
	if nbpErr != nil {
		s.logger.Warn("NBP exchange rates failed, trying fallback",
			zap.String("op", "rates.ExchangeRates"),
			zap.Error(nbpErr),
		)
		var fallbackErr error
		result, fallbackErr = s.fetchFallback(ctx)
		s.metrics.ObserveUpstream(SourceFallback, fallbackErr)
		if fallbackErr != nil {
			err := fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(nbpErr, fallbackErr))
			span.RecordError(err)
			span.SetStatus(codes.Error, "exchange rates unavailable")
			return ExchangeRates{}, err
		}
	}

	span.SetAttributes(attribute.String("rates.source", result.Source))
	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, exchangeCacheKey, result, s.conf.CacheTTL); err != nil {
			s.logger.Warn("failed to cache exchange rates",
				zap.String("op", "rates.ExchangeRates"),
				zap.Error(err),
			)
		}
	}
	return result, nil
}

func (s *Service) get(ctx context.Context, url string, v any) error {
	if url == "" {
		return errors.New("no url configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("GET %s: invalid response: %w", url, err)
	}
	return nil
}

type nbpTable struct {
	EffectiveDate string `json:"effectiveDate"`
	Rates         []struct {
		Code string  `json:"code"`
		Mid  float64 `json:"mid"`
	} `json:"rates"`
}

// fetchNBP reads table A, which quotes PLN per unit of each currency.
func (s *Service) fetchNBP(ctx context.Context) (ExchangeRates, error) {
	var tables []nbpTable
	if err := s.get(ctx, s.conf.ExchangeRatesURL, &tables); err != nil {
		return ExchangeRates{}, err
	}
	if len(tables) == 0 || len(tables[0].Rates) == 0 {
		return ExchangeRates{}, errors.New("invalid response format from NBP API")
	}

	mids := make(map[string]float64, len(tables[0].Rates))
	for _, r := range tables[0].Rates {
		mids[r.Code] = r.Mid
	}
	rates := money.Rates{constants.BaseCurrency: 1}
	for _, code := range SupportedCurrencies {
		if mid, ok := mids[code]; ok && mid > 0 {
			rates[code] = mid
		}
	}
	return ExchangeRates{
		Base:          constants.BaseCurrency,
		Source:        SourceNBP,
		EffectiveDate: tables[0].EffectiveDate,
		FetchedAt:     s.now().UTC(),
		Rates:         rates,
	}, nil
}

type fallbackResponse struct {
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// fetchFallback reads EUR-based rates and re-expresses them in PLN.
func (s *Service) fetchFallback(ctx context.Context) (ExchangeRates, error) {
	var resp fallbackResponse
	if err := s.get(ctx, s.conf.FallbackExchangeRatesURL, &resp); err != nil {
		return ExchangeRates{}, err
	}
	pln, ok := resp.Rates[constants.BaseCurrency]
	if !ok || pln <= 0 {
		return ExchangeRates{}, errors.New("invalid response from fallback API")
	}

	rates := money.Rates{constants.BaseCurrency: 1}
	for _, code := range SupportedCurrencies {
		if quote, ok := resp.Rates[code]; ok && quote > 0 {
			rates[code] = pln / quote
		}
	}
	return ExchangeRates{
		Base:          constants.BaseCurrency,
		Source:        SourceFallback,
		EffectiveDate: resp.Date,
		FetchedAt:     s.now().UTC(),
		Rates:         rates,
	}, nil
}
