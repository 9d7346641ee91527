package balance

import "github.com/shopspring/decimal"

// Galones returns the gallons dispensed between two meter readings.
// A missing end reading means nothing has been sold yet; a smaller end than
// start (e.g. a meter reset) never registers as a negative sale.
func Galones(inicio decimal.Decimal, fin *decimal.Decimal) decimal.Decimal {
	if fin == nil {
		return decimal.Zero
	}
	d := fin.Sub(inicio)
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// GalonesRaw is Galones over raw text entries.
func GalonesRaw(inicio, fin string) decimal.Decimal {
	return Galones(ParseMonto(inicio), ParseOpcional(fin))
}
