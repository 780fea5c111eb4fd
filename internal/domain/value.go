package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is either a number or a text label. Launch results and level
// targets share it because the wire format allows both.
type Value struct {
	Num     float64
	Text    string
	Numeric bool
}

func NumberValue(v float64) Value {
	return Value{Num: v, Numeric: true}
}

func TextValue(s string) Value {
	return Value{Text: s}
}

// Float returns the numeric reading of the value. Text that parses as a
// number counts, since older records stored numeric targets as strings.
// Infinities and NaN never count as numbers.
func (v Value) Float() (float64, bool) {
	f := v.Num
	if !v.Numeric {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func (v Value) String() string {
	if v.Numeric {
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return v.Text
}

func (v Value) IsZero() bool {
	return !v.Numeric && v.Text == ""
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.Numeric {
		return json.Marshal(v.Num)
	}
	return json.Marshal(v.Text)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = TextValue(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("value must be a number or a string: %w", err)
	}
	*v = NumberValue(f)
	return nil
}
