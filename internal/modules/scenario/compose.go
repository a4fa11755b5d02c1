// Package scenario composes engine request payloads and tracks request
// identity so that superseded responses can be discarded.
package scenario

import (
	"fmt"
	"time"

	"github.com/aristath/scenariodesk/internal/domain"
)

// Compose builds the scenario request. A zero asOf means "most recent" and
// is sent as null.
func Compose(views []domain.View, asOf domain.Date) domain.ScenarioPayload {
	return domain.ScenarioPayload{
		Views: domain.CloneViews(views),
		Date:  asOf,
	}
}

// CheckAsOf rejects as-of dates later than today.
func CheckAsOf(asOf domain.Date, now time.Time) error {
	if asOf.IsZero() {
		return nil
	}
	if today := domain.DateOf(now); asOf.After(today) {
		return domain.NewValidationError(domain.CodeFutureDate,
			fmt.Sprintf("as-of date %s is after today (%s)", asOf, today))
	}
	return nil
}
