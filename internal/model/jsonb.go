package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Lista is an ordered collection persisted as a JSONB array.
// A nil Lista is stored as [] so reads never produce NULL.
type Lista[T any] []T

func (l Lista[T]) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]T(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *Lista[T]) Scan(src interface{}) error {
	var items []T
	if err := scanJSON(src, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

// MapaMontos maps a key (e.g. a shift name group) to an amount, stored as JSONB.
type MapaMontos map[string]decimal.Decimal

func (m MapaMontos) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]decimal.Decimal(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *MapaMontos) Scan(src interface{}) error {
	out := map[string]decimal.Decimal{}
	if err := scanJSON(src, &out); err != nil {
		return err
	}
	*m = out
	return nil
}

func scanJSON(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("jsonb: unsupported source type %T", src)
	}
}
