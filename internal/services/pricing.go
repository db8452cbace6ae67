package services

// Pricing computes the monthly subscription charge from tenant headcount.
// Amounts are integer minor currency units (centavos).
type Pricing struct {
	BasePriceCents    int64
	PricePerUserCents int64
}

// CalculatePrice returns the subscription price for the given total user
// count. The first user (the owner) is never charged for, so counts of 0 and
// 1 both price at exactly the base amount.
func (p Pricing) CalculatePrice(totalUsers int) int64 {
	additional := totalUsers - 1
	if additional < 0 {
		additional = 0
	}
	return p.BasePriceCents + int64(additional)*p.PricePerUserCents
}
