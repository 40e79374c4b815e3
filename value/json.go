// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package value

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// FromGo converts a Go value, as produced by encoding/json, into a Value.
func FromGo(x any) (Value, error) {
	switch xT := x.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return xT, nil
	case string:
		return Bytes(xT), nil
	case []byte:
		return Bytes(xT), nil
	case bool:
		return Boolean(xT), nil
	case int:
		return Integer(xT), nil
	case int64:
		return Integer(xT), nil
	case float64:
		return Float(xT), nil
	case json.Number:
		if i, err := xT.Int64(); err == nil {
			return Integer(i), nil
		}
		f, err := xT.Float64()
		if err != nil {
			return nil, errors.Errorf("cannot convert number %q: %v", xT.String(), err)
		}
		return Float(f), nil
	case []any:
		arr := make(Array, len(xT))
		for i, el := range xT {
			var err error
			if arr[i], err = FromGo(el); err != nil {
				return nil, err
			}
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(xT))
		for k, el := range xT {
			v, err := FromGo(el)
			if err != nil {
				return nil, err
			}
			obj[k] = v
		}
		return obj, nil
	}
	return nil, errors.Errorf("cannot convert Go type %T to a value", x)
}

// MustFromGo is FromGo but panics on error. Used to declare values in tests and examples.
func MustFromGo(x any) Value {
	v, err := FromGo(x)
	if err != nil {
		panic(err)
	}
	return v
}

// ToGo converts a Value into the Go types used by encoding/json.
func ToGo(v Value) any {
	switch vT := OrNull(v).(type) {
	case Bytes:
		return string(vT)
	case Integer:
		return int64(vT)
	case Float:
		return float64(vT)
	case Boolean:
		return bool(vT)
	case Array:
		r := make([]any, len(vT))
		for i, el := range vT {
			r[i] = ToGo(el)
		}
		return r
	case Object:
		r := make(map[string]any, len(vT))
		for k, el := range vT {
			r[k] = ToGo(el)
		}
		return r
	}
	return nil
}

// ParseJSON parses a JSON document into a Value.
// Integral numbers become Integer, other numbers become Float.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err != nil {
		return nil, errors.Wrap(err, "cannot parse JSON")
	}
	if dec.More() {
		return nil, errors.New("cannot parse JSON: unexpected data after the top-level value")
	}
	return FromGo(x)
}

// MarshalJSON encodes a Value as JSON. Object fields are sorted by name.
// NaN and infinite floats have no JSON encoding and are an error.
func MarshalJSON(v Value) ([]byte, error) {
	if err := checkFinite(v, nil); err != nil {
		return nil, err
	}
	return json.Marshal(ToGo(v))
}

func checkFinite(v Value, path Path) error {
	switch vT := v.(type) {
	case Float:
		if f := float64(vT); math.IsNaN(f) || math.IsInf(f, 0) {
			return errors.Errorf("cannot encode float %s at .%s into JSON", vT.String(), path)
		}
	case Array:
		for i, el := range vT {
			if err := checkFinite(el, append(path, strconv.Itoa(i))); err != nil {
				return err
			}
		}
	case Object:
		for _, k := range vT.Keys() {
			if err := checkFinite(vT[k], append(path, k)); err != nil {
				return err
			}
		}
	}
	return nil
}

