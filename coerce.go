// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package groovyio

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	json "github.com/goccy/go-json"
)

// Coerce converts a decoded raw value (nil, text or a number in some
// concrete numeric representation) into the canonical value for a
// primitive target type. Pointer wrappers coerce to their element kind.
// Unknown targets fail with ErrUnsupportedType: that is a bug in the
// caller's dispatch, never bad input data, so there is no default path.
func Coerce(target *TypeHandle, raw any) (any, error) {
	if target == nil {
		return nil, fmt.Errorf("%w: nil target type", ErrUnsupportedType)
	}
	t := target
	if isWrapper(t) {
		t = t.Elem()
	}
	switch t.rtype {
	case BoolType.rtype:
		return coerceBool(raw)
	case ByteType.rtype:
		return coerceByte(raw)
	case CharType.rtype:
		return coerceChar(raw)
	case ShortType.rtype:
		return coerceIntegral(raw, ShortType, 16, "short")
	case IntType.rtype:
		return coerceIntegral(raw, IntType, 32, "int")
	case LongType.rtype:
		return coerceIntegral(raw, LongType, 64, "long")
	case FloatType.rtype:
		return coerceFloat(raw, FloatType, 32, "float")
	case DoubleType.rtype:
		return coerceFloat(raw, DoubleType, 64, "double")
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, target.Name())
}

// textOf extracts the textual form of a raw value. Decoders hand numbers
// through either as concrete numerics or as json.Number; the latter is
// still text and takes the parse path.
func textOf(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case json.Number:
		return string(v), true
	default:
		return "", false
	}
}

// cleanText strips the surrounding quote run a decoder may have left on a
// value ("5" and ""5"" both reduce to 5) and substitutes the type's zero
// literal when the remainder is empty or whitespace-only. Missing input
// coerces to the documented default rather than failing.
func cleanText(s, zero string) string {
	s = strings.Trim(s, `"`)
	if strings.TrimSpace(s) == "" {
		return zero
	}
	return s
}

func coerceBool(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	}
	if s, ok := textOf(raw); ok {
		s = cleanText(s, "false")
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("%w: cannot parse %q as boolean", ErrFormat, s)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: boolean from %T", ErrUnsupportedType, raw)
}

func coerceByte(raw any) (any, error) {
	if raw == nil {
		return ByteValue(0), nil
	}
	if s, ok := textOf(raw); ok {
		s = cleanText(s, "0")
		n, err := strconv.ParseInt(s, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: cannot parse %q as byte", ErrFormat, s)
		}
		return ByteValue(int8(n)), nil
	}
	if v, ok := convertNumeric(raw, ByteType.rtype); ok {
		// Numeric sources always come back from the pool, never fresh.
		return ByteValue(v.(int8)), nil
	}
	return nil, fmt.Errorf("%w: byte from %T", ErrUnsupportedType, raw)
}

func coerceChar(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return CharValue(0), nil
	case Char:
		// Already a character value: hand it back untouched.
		return v, nil
	}
	if s, ok := textOf(raw); ok {
		s = strings.Trim(s, `"`)
		if strings.TrimSpace(s) == "" {
			return CharValue(0), nil
		}
		r, _ := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError || r > 0xFFFF {
			return nil, fmt.Errorf("%w: cannot represent %q as char", ErrFormat, s)
		}
		return CharValue(Char(r)), nil
	}
	// Any other shape is invalid input for char.
	return nil, fmt.Errorf("%w: char from %T", ErrUnsupportedType, raw)
}

func coerceIntegral(raw any, t *TypeHandle, bits int, name string) (any, error) {
	if raw == nil {
		return reflect.Zero(t.rtype).Interface(), nil
	}
	if s, ok := textOf(raw); ok {
		s = cleanText(s, "0")
		n, err := strconv.ParseInt(s, 10, bits)
		if err != nil {
			return nil, fmt.Errorf("%w: cannot parse %q as %s", ErrFormat, s, name)
		}
		return reflect.ValueOf(n).Convert(t.rtype).Interface(), nil
	}
	if v, ok := convertNumeric(raw, t.rtype); ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s from %T", ErrUnsupportedType, name, raw)
}

func coerceFloat(raw any, t *TypeHandle, bits int, name string) (any, error) {
	if raw == nil {
		return reflect.Zero(t.rtype).Interface(), nil
	}
	if s, ok := textOf(raw); ok {
		s = cleanText(s, "0.0")
		f, err := strconv.ParseFloat(s, bits)
		if err != nil {
			return nil, fmt.Errorf("%w: cannot parse %q as %s", ErrFormat, s, name)
		}
		return reflect.ValueOf(f).Convert(t.rtype).Interface(), nil
	}
	if v, ok := convertNumeric(raw, t.rtype); ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s from %T", ErrUnsupportedType, name, raw)
}

// convertNumeric narrows or widens a concrete numeric raw value into the
// target representation using Go's standard conversion rules (floats
// truncate toward zero, oversized integers wrap).
func convertNumeric(raw any, rt reflect.Type) (any, bool) {
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		if rv.CanConvert(rt) {
			return rv.Convert(rt).Interface(), true
		}
	}
	return nil, false
}
