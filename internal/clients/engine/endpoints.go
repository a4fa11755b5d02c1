package engine

import (
	"context"
	"net/http"

	"github.com/aristath/scenariodesk/internal/clientdata"
	"github.com/aristath/scenariodesk/internal/domain"
)

// Status is the engine's root endpoint answer.
type Status struct {
	Status string `json:"status"`
	Model  string `json:"model"`
}

// Scenario requests an allocation. Requests pinned to a date are
// deterministic and may be served from cache; "most recent" never is.
func (c *Client) Scenario(ctx context.Context, payload domain.ScenarioPayload) (*domain.AllocationResult, error) {
	cacheable := !payload.Date.IsZero()

	var result domain.AllocationResult
	if cacheable && c.fromCache(clientdata.TableScenario, payload, &result) {
		return &result, nil
	}

	if err := c.post(ctx, EndpointScenario, payload, &result); err != nil {
		return nil, err
	}
	if cacheable {
		c.toCache(clientdata.TableScenario, payload, result)
	}
	return &result, nil
}

// MonteCarlo requests a projection fan. Simulations are random and never
// cached.
func (c *Client) MonteCarlo(ctx context.Context, req domain.ProjectionRequest) (*domain.ProjectionResult, error) {
	var result domain.ProjectionResult
	if err := c.post(ctx, EndpointMonteCarlo, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Backtest requests a historical simulation, using the cache when possible.
func (c *Client) Backtest(ctx context.Context, req domain.BacktestRequest) (*domain.BacktestResult, error) {
	var result domain.BacktestResult
	if c.fromCache(clientdata.TableBacktest, req, &result) {
		return &result, nil
	}

	if err := c.post(ctx, EndpointBacktest, req, &result); err != nil {
		return nil, err
	}

	c.toCache(clientdata.TableBacktest, req, result)
	return &result, nil
}

// Status pings the engine's root endpoint.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var st Status
	if err := c.do(ctx, http.MethodGet, EndpointStatus, nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) fromCache(table string, request, out any) bool {
	if c.cache == nil {
		return false
	}
	key, err := clientdata.Key(request)
	if err != nil {
		c.log.Warn().Err(err).Str("table", table).Msg("Failed to derive cache key")
		return false
	}

	found, err := c.cache.GetIfFresh(table, key, out)
	if err != nil {
		c.log.Warn().Err(err).Str("table", table).Msg("Cache read failed")
		return false
	}
	if c.metrics != nil {
		if found {
			c.metrics.CacheHits.WithLabelValues(table).Inc()
		} else {
			c.metrics.CacheMisses.WithLabelValues(table).Inc()
		}
	}
	if found {
		c.log.Debug().Str("table", table).Msg("Engine cache hit")
	}
	return found
}

func (c *Client) toCache(table string, request, value any) {
	if c.cache == nil {
		return
	}
	key, err := clientdata.Key(request)
	if err != nil {
		c.log.Warn().Err(err).Str("table", table).Msg("Failed to derive cache key")
		return
	}
	if err := c.cache.Store(table, key, value, c.cacheTTL); err != nil {
		c.log.Warn().Err(err).Str("table", table).Msg("Cache write failed")
	}
}
