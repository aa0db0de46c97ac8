package core

// Derived-field formulas shared by import, edit, and list. They are pure.

// NominalUnits is the unit count a recovered item is valued at.
const NominalUnits = 10000

// StockDisposition is the disposition whose returned items carry value.
const StockDisposition = "Estoque"

// WeightDelta returns full - empty. The result may be negative.
func WeightDelta(full, empty float64) float64 {
	return full - empty
}

// UnitPrice returns price/capacity. A zero capacity cannot yield a unit
// price, so the capacity column is reported missing.
func UnitPrice(price, capacity float64, capacityLabel string) (float64, error) {
	if capacity == 0 {
		return 0, &FieldMissingError{Label: capacityLabel}
	}
	return Round(price/capacity, 3), nil
}

// AcquisitionTotal sums a base price with its surcharges.
func AcquisitionTotal(base float64, surcharges ...float64) float64 {
	total := base
	for _, s := range surcharges {
		total += s
	}
	return Round(total, 3)
}

// RecoveredValue returns the value recovered by a returned item: unit price
// times NominalUnits when it went back to stock, zero otherwise.
func RecoveredValue(unitPrice float64, disposition string) float64 {
	if disposition != StockDisposition {
		return 0
	}
	return Round(unitPrice*NominalUnits, 3)
}
