package account

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DAYS-LEFT ARITHMETIC
// =============================================================================

// VacationDaysService computes how many vacation days are left on an
// account after subtracting the days bound by leave applications.
type VacationDaysService struct {
	Usage UsageProvider
}

func NewVacationDaysService(usage UsageProvider) *VacationDaysService {
	return &VacationDaysService{Usage: usage}
}

// CalculateTotalLeftVacationDays returns entitlement plus carry-over minus
// the days already bound by waiting or allowed holiday applications within
// the account year. The result never drops below zero and never exceeds
// entitlement plus carry-over.
func (s *VacationDaysService) CalculateTotalLeftVacationDays(ctx context.Context, account *Account) (decimal.Decimal, error) {
	used, err := s.Usage.UsedVacationDays(ctx, account.Person, account.Year())
	if err != nil {
		return decimal.Zero, fmt.Errorf("calculating used vacation days for %s/%d: %w", account.Person, account.Year(), err)
	}

	total := account.VacationDays.Add(account.RemainingVacationDays)
	left := total.Sub(used)
	if left.IsNegative() {
		return decimal.Zero, nil
	}
	if left.GreaterThan(total) {
		return total, nil
	}
	return left, nil
}
