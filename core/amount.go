package core

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Amount is a fixed-point monetary value with two decimal places, held as an
// integer number of cents. It round-trips through JSON as a decimal string
// ("1500.00") and through SQL as NUMERIC(10,2); no float arithmetic is involved.
type Amount int64

var errInvalidAmount = errors.New("invalid decimal amount")

// ParseAmount parses a decimal string with at most two decimal places.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errInvalidAmount
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, errInvalidAmount
	}
	for len(frac) < 2 {
		frac += "0"
	}

	// the sign was consumed above; both parts must be bare digits
	w, err := strconv.ParseUint(whole, 10, 64)
	if err != nil {
		return 0, errInvalidAmount
	}
	var f uint64
	if frac != "00" {
		if f, err = strconv.ParseUint(frac, 10, 64); err != nil {
			return 0, errInvalidAmount
		}
	}

	cents := int64(w)*100 + int64(f)
	if neg {
		cents = -cents
	}
	return Amount(cents), nil
}

func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(a.String())), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

func (a *Amount) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = 0
		return nil
	case []byte:
		parsed, err := ParseAmount(string(v))
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	case string:
		parsed, err := ParseAmount(v)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	case int64:
		*a = Amount(v * 100)
		return nil
	default:
		return errors.Errorf("cannot scan %T into Amount", src)
	}
}
