package order

import (
	"fmt"
	"math"
)

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func fromCents(cents int64) float64 {
	return float64(cents) / 100
}

// Price fills the unit price of every item from prices and returns the order
// total. Amounts are summed in cents.
func Price(items []Item, prices map[string]float64) (float64, error) {
	var total int64
	for i := range items {
		price, ok := prices[items[i].ArticleID]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrPriceNotFound, items[i].ArticleID)
		}
		cents := toCents(price)
		items[i].UnitPrice = fromCents(cents)
		total += cents * int64(items[i].Quantity)
	}
	return fromCents(total), nil
}
