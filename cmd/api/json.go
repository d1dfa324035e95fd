package main

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())

	// A flexNumber is "present" the way a loosely typed client sees it: a
	// non-empty string, or a non-zero number.
	Validate.RegisterCustomTypeFunc(func(field reflect.Value) any {
		n, ok := field.Interface().(flexNumber)
		if !ok || !n.Set {
			return nil
		}
		if n.IsString {
			return n.Raw
		}
		return n.Value
	}, flexNumber{})
}

// flexNumber accepts a JSON number or a numeric string such as "8".
type flexNumber struct {
	Raw      string
	Value    float64
	Set      bool // false when absent or null
	IsString bool
	Numeric  bool // Value holds a finite number
}

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*n = flexNumber{}
		return nil
	}

	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		*n = flexNumber{
			Raw:      str,
			Value:    v,
			Set:      true,
			IsString: true,
			Numeric:  err == nil && !math.IsInf(v, 0) && !math.IsNaN(v),
		}
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("expected a number or numeric string, got %s", s)
	}
	*n = flexNumber{Raw: s, Value: v, Set: true, Numeric: true}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// it parses body into Go struct. Unknown fields are ignored so older clients keep working.
func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1_048_578 //1mb
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	decoder := json.NewDecoder(r.Body)
	return decoder.Decode(data)
}

func writeJSONError(w http.ResponseWriter, status int, message string) error {
	type envelope struct {
		Error string `json:"error"`
	}

	return writeJSON(w, status, &envelope{Error: message})
}
