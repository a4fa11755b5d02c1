package projection

import "github.com/aristath/scenariodesk/internal/domain"

// NewRequest derives the Monte Carlo request from an allocation's expected
// return and volatility. A projection cannot be requested without one.
func NewRequest(allocation *domain.AllocationResult, days int) (domain.ProjectionRequest, error) {
	if allocation == nil {
		return domain.ProjectionRequest{}, domain.ErrNoAllocation
	}
	if days <= 0 {
		days = DefaultDays
	}
	return domain.ProjectionRequest{
		Mu:    allocation.Metrics.ExpectedReturn,
		Sigma: allocation.Metrics.Volatility,
		Days:  days,
	}, nil
}
