package model

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Precio is the list price of one product (soles per gallon or per cylinder).
type Precio struct {
	Producto  string          `gorm:"type:varchar(50);primaryKey"`
	Valor     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	UpdatedAt time.Time
}

// TablaPrecios is the read-only product → unit price lookup.
type TablaPrecios map[string]decimal.Decimal

// Precio returns the unit price of producto, zero when it is not listed.
func (t TablaPrecios) Precio(producto string) decimal.Decimal {
	if p, ok := t[producto]; ok {
		return p
	}
	return decimal.Zero
}

// Tiene reports whether producto has a listed price.
func (t TablaPrecios) Tiene(producto string) bool {
	_, ok := t[producto]
	return ok
}

// Version fingerprints the table contents. Two tables with the same products
// and prices share a version regardless of map order or trailing zeros.
func (t TablaPrecios) Version() string {
	productos := make([]string, 0, len(t))
	for p := range t {
		productos = append(productos, p)
	}
	sort.Strings(productos)

	h := sha256.New()
	for _, p := range productos {
		h.Write([]byte(p + "=" + t[p].String() + "\n"))
	}
	return hex.EncodeToString(h.Sum(nil)[:8])
}
