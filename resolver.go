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
	"strings"
)

// primitiveAliases maps the short lowercase names used in wire-format type
// tags to their canonical handles. Checked before any other resolution.
var primitiveAliases = map[string]*TypeHandle{
	"string":  StringType,
	"boolean": BoolType,
	"char":    CharType,
	"byte":    ByteType,
	"short":   ShortType,
	"int":     IntType,
	"long":    LongType,
	"float":   FloatType,
	"double":  DoubleType,
	"date":    DateType,
	"class":   ClassType,
}

// arrayElemCodes maps the single-letter array element codes to primitive
// element handles. These resolve directly to the canonical type without
// going through name lookup.
var arrayElemCodes = map[byte]*TypeHandle{
	'B': ByteType,
	'S': ShortType,
	'I': IntType,
	'J': LongType,
	'F': FloatType,
	'D': DoubleType,
	'Z': BoolType,
	'C': CharType,
}

// Resolve maps a textual type name to a handle. Lookup order: primitive
// alias table, array encoding, registered named types. An empty name is an
// ErrInvalidName; an unknown name is an ErrTypeNotFound and propagates to
// the caller unmodified, since a silently substituted type would corrupt
// the object graph being built.
func (r *Registry) Resolve(name string) (*TypeHandle, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if h, ok := primitiveAliases[name]; ok {
		return h, nil
	}
	if name[0] == '[' {
		return r.resolveArrayName(name)
	}
	return r.lookupNamed(name)
}

// resolveArrayName decodes the array-type grammar: a leading run of '['
// gives the nesting depth, followed by either a one-letter primitive
// element code or "L<name>;" for object elements. Each encoded level wraps
// the element in one slice dimension.
func (r *Registry) resolveArrayName(name string) (*TypeHandle, error) {
	dims := 0
	for dims < len(name) && name[dims] == '[' {
		dims++
	}
	rest := name[dims:]
	if rest == "" {
		return nil, fmt.Errorf("%w: malformed array type %q", ErrTypeNotFound, name)
	}

	var elem reflect.Type
	switch {
	case len(rest) == 1:
		h, ok := arrayElemCodes[rest[0]]
		if !ok {
			return nil, fmt.Errorf("%w: unknown array element code %q in %q", ErrTypeNotFound, rest, name)
		}
		elem = h.rtype
	case rest[0] == 'L':
		inner := strings.TrimSuffix(rest[1:], ";")
		h, err := r.lookupNamed(inner)
		if err != nil {
			return nil, err
		}
		elem = h.rtype
	default:
		return nil, fmt.Errorf("%w: malformed array type %q", ErrTypeNotFound, name)
	}

	for i := 0; i < dims; i++ {
		elem = reflect.SliceOf(elem)
	}
	return HandleOf(elem), nil
}

// lookupNamed is the registry's analog of the runtime type loader: it only
// knows names that were registered up front.
func (r *Registry) lookupNamed(name string) (*TypeHandle, error) {
	r.mu.RLock()
	h, ok := r.named[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTypeNotFound, name)
	}
	return h, nil
}
