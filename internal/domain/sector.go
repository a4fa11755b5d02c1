// Package domain holds the core types shared by the desk: sectors, views,
// engine result shapes and the error taxonomy.
package domain

import (
	"fmt"
	"strings"
)

// Ticker identifies one of the sector ETFs the engine allocates across.
type Ticker string

const (
	XLK  Ticker = "XLK"
	XLF  Ticker = "XLF"
	XLE  Ticker = "XLE"
	XLV  Ticker = "XLV"
	XLI  Ticker = "XLI"
	XLC  Ticker = "XLC"
	XLP  Ticker = "XLP"
	XLU  Ticker = "XLU"
	XLY  Ticker = "XLY"
	XLB  Ticker = "XLB"
	XLRE Ticker = "XLRE"
)

// Sector pairs a ticker with its display name.
type Sector struct {
	Ticker Ticker `json:"ticker"`
	Name   string `json:"name"`
}

// sectorOrder is the display order used by pickers and legend tie-breaks.
var sectorOrder = [...]Ticker{XLK, XLF, XLE, XLV, XLI, XLC, XLP, XLU, XLY, XLB, XLRE}

// SectorCount is the size of the sector universe.
const SectorCount = len(sectorOrder)

// Name returns the human-readable sector name, or "" for an unknown ticker.
func (t Ticker) Name() string {
	switch t {
	case XLK:
		return "Technology"
	case XLF:
		return "Financials"
	case XLE:
		return "Energy"
	case XLV:
		return "Healthcare"
	case XLI:
		return "Industrials"
	case XLC:
		return "Communication"
	case XLP:
		return "Staples"
	case XLU:
		return "Utilities"
	case XLY:
		return "Discretionary"
	case XLB:
		return "Materials"
	case XLRE:
		return "Real Estate"
	default:
		return ""
	}
}

// Valid reports whether t belongs to the sector universe.
func (t Ticker) Valid() bool {
	return t.Name() != ""
}

// Index returns the display position of t, or -1 if unknown.
func (t Ticker) Index() int {
	for i, s := range sectorOrder {
		if s == t {
			return i
		}
	}
	return -1
}

// Tickers returns all sector tickers in display order.
func Tickers() []Ticker {
	out := make([]Ticker, len(sectorOrder))
	copy(out, sectorOrder[:])
	return out
}

// Sectors returns all sectors in display order.
func Sectors() []Sector {
	out := make([]Sector, 0, len(sectorOrder))
	for _, t := range sectorOrder {
		out = append(out, Sector{Ticker: t, Name: t.Name()})
	}
	return out
}

// ParseTicker normalizes and validates a ticker symbol.
func ParseTicker(s string) (Ticker, error) {
	t := Ticker(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", NewValidationError(CodeUnknownTicker, fmt.Sprintf("unknown sector ticker %q", s))
	}
	return t, nil
}
