package analysis

import "fmt"

// Canonical working units are tons for quantity and 万元 for money.
// Conversion happens exactly once, while cells are read for
// aggregation; the aggregated table never mixes units.
const (
	kgToTon       = 0.001
	yuanToWanYuan = 0.0001
	// moneyPerUnitScale converts 万元/吨 back to 元/吨 for the
	// per-unit profit metric.
	moneyPerUnitScale = 10000
)

// unitFactors resolves the confirmed unit tokens to multiplicative
// factors. Unknown tokens are an error: units are an explicit user
// input and never guessed.
func unitFactors(units Units) (quantityFactor, moneyFactor float64, err error) {
	switch units.Quantity {
	case UnitKilogram:
		quantityFactor = kgToTon
	case UnitTon:
		quantityFactor = 1
	default:
		return 0, 0, fmt.Errorf("unknown quantity unit %q", units.Quantity)
	}

	switch units.Amount {
	case UnitYuan:
		moneyFactor = yuanToWanYuan
	case UnitWanYuan:
		moneyFactor = 1
	default:
		return 0, 0, fmt.Errorf("unknown amount unit %q", units.Amount)
	}

	return quantityFactor, moneyFactor, nil
}
