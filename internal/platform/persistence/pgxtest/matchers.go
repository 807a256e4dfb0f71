// Package pgxtest holds pgxmock helpers shared by repository and service tests.
package pgxtest

import (
	"database/sql/driver"
	"fmt"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
)

type decimalArg struct {
	want decimal.Decimal
}

// Decimal matches a query argument numerically equal to s, whatever its scale
func Decimal(s string) pgxmock.Argument {
	return decimalArg{want: decimal.RequireFromString(s)}
}

func (a decimalArg) Match(v any) bool {
	got, ok := toDecimal(v)
	return ok && got.Equal(a.want)
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, true
	case *decimal.Decimal:
		if x == nil {
			return decimal.Decimal{}, false
		}
		return *x, true
	case string:
		d, err := decimal.NewFromString(x)
		return d, err == nil
	case driver.Valuer:
		val, err := x.Value()
		if err != nil {
			return decimal.Decimal{}, false
		}
		d, err := decimal.NewFromString(fmt.Sprint(val))
		return d, err == nil
	}
	return decimal.Decimal{}, false
}
