// Package events carries desk state changes to subscribers such as the
// per-session websocket stream.
package events

import (
	"time"
)

// EventType represents different event types.
type EventType string

const (
	ViewsChanged          EventType = "VIEWS_CHANGED"
	AsOfChanged           EventType = "AS_OF_CHANGED"
	ScenarioStarted       EventType = "SCENARIO_STARTED"
	ScenarioCompleted     EventType = "SCENARIO_COMPLETED"
	ProjectionStarted     EventType = "PROJECTION_STARTED"
	ProjectionCompleted   EventType = "PROJECTION_COMPLETED"
	ProjectionCleared     EventType = "PROJECTION_CLEARED"
	BacktestViewsChanged  EventType = "BACKTEST_VIEWS_CHANGED"
	BacktestPeriodChanged EventType = "BACKTEST_PERIOD_CHANGED"
	BacktestStarted       EventType = "BACKTEST_STARTED"
	BacktestCompleted     EventType = "BACKTEST_COMPLETED"
	StaleResponseDropped  EventType = "STALE_RESPONSE_DROPPED"
	ErrorOccurred         EventType = "ERROR_OCCURRED"
	SessionClosed         EventType = "SESSION_CLOSED"
)

// Event is one state change notification.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Module    string         `json:"module"`
	Data      map[string]any `json:"data,omitempty"`
}
