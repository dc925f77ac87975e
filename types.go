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
	"reflect"
	"sync"
	"time"
)

// Char is a single UTF-16 code unit. It is a distinct named type so that
// the "char" primitive keeps its own reflect identity instead of collapsing
// into int32 the way rune does.
type Char uint16

// TypeHandle is a stable, immutable descriptor for a runtime type. Handles
// are interned process-wide: the same reflect.Type always yields the same
// *TypeHandle, so handles can be compared with ==.
type TypeHandle struct {
	rtype reflect.Type

	superOnce   sync.Once
	super       *TypeHandle
	superOffset uintptr
}

// handles interns TypeHandles keyed by reflect.Type. Populated lazily;
// LoadOrStore keeps racing first insertions identity-consistent.
var handles sync.Map // reflect.Type -> *TypeHandle

// HandleOf returns the interned handle for a reflect.Type.
func HandleOf(t reflect.Type) *TypeHandle {
	if t == nil {
		return nil
	}
	if h, ok := handles.Load(t); ok {
		return h.(*TypeHandle)
	}
	h := &TypeHandle{rtype: t}
	actual, _ := handles.LoadOrStore(t, h)
	return actual.(*TypeHandle)
}

// TypeOf returns the handle for a value's dynamic type, or nil for nil.
func TypeOf(v any) *TypeHandle {
	if v == nil {
		return nil
	}
	return HandleOf(reflect.TypeOf(v))
}

// ReflectType returns the underlying reflect.Type.
func (h *TypeHandle) ReflectType() reflect.Type { return h.rtype }

// Name returns the type's qualified display name.
func (h *TypeHandle) Name() string { return h.rtype.String() }

// String implements fmt.Stringer.
func (h *TypeHandle) String() string { return h.Name() }

// Kind returns the underlying reflect.Kind.
func (h *TypeHandle) Kind() reflect.Kind { return h.rtype.Kind() }

// IsInterface reports whether the handle describes an interface type.
func (h *TypeHandle) IsInterface() bool { return h.rtype.Kind() == reflect.Interface }

// IsArray reports whether the handle describes a slice or array type.
func (h *TypeHandle) IsArray() bool {
	k := h.rtype.Kind()
	return k == reflect.Slice || k == reflect.Array
}

// Elem returns the handle for the element type of an array, slice or
// pointer handle, and nil for anything else.
func (h *TypeHandle) Elem() *TypeHandle {
	switch h.rtype.Kind() {
	case reflect.Slice, reflect.Array, reflect.Ptr:
		return HandleOf(h.rtype.Elem())
	default:
		return nil
	}
}

// Supertype returns the handle of the type's ancestor, or nil for a root
// type. A struct's ancestor is its first embedded struct field; embedding
// is the closest Go analog of an inheritance chain and gives the same
// field-promotion and shadowing behavior. Pointer embeddings do not form
// an ancestor link because their fields live behind an indirection.
func (h *TypeHandle) Supertype() *TypeHandle {
	h.superOnce.Do(func() {
		if h.rtype.Kind() != reflect.Struct {
			return
		}
		for i := 0; i < h.rtype.NumField(); i++ {
			f := h.rtype.Field(i)
			if f.Anonymous && f.Type.Kind() == reflect.Struct {
				h.super = HandleOf(f.Type)
				h.superOffset = f.Offset
				return
			}
		}
	})
	return h.super
}

// supertypeOffset returns the byte offset of the ancestor within the
// struct. Only meaningful when Supertype() is non-nil.
func (h *TypeHandle) supertypeOffset() uintptr {
	h.Supertype()
	return h.superOffset
}

// Canonical primitive handles. The serialization layer models values the
// way the wire protocol does: byte is a signed 8-bit integer, int is
// 32-bit, long is 64-bit, char is a UTF-16 code unit.
var (
	BoolType   = HandleOf(reflect.TypeOf(false))
	ByteType   = HandleOf(reflect.TypeOf(int8(0)))
	CharType   = HandleOf(reflect.TypeOf(Char(0)))
	ShortType  = HandleOf(reflect.TypeOf(int16(0)))
	IntType    = HandleOf(reflect.TypeOf(int32(0)))
	LongType   = HandleOf(reflect.TypeOf(int64(0)))
	FloatType  = HandleOf(reflect.TypeOf(float32(0)))
	DoubleType = HandleOf(reflect.TypeOf(float64(0)))
	StringType = HandleOf(reflect.TypeOf(""))
	DateType   = HandleOf(reflect.TypeOf(time.Time{}))
	ClassType  = HandleOf(reflect.TypeOf((*TypeHandle)(nil)))
)

// logicalPrimitives holds the value-like types that a plain kind check
// does not cover. Built once, read-only afterwards.
var logicalPrimitives = map[reflect.Type]struct{}{
	DateType.rtype:                        {},
	ClassType.rtype:                       {},
	reflect.TypeOf(time.Duration(0)):      {},
	reflect.TypeOf((*time.Time)(nil)):     {},
	reflect.TypeOf((*time.Duration)(nil)): {},
}

// IsPrimitive reports whether the handle describes one of the eight
// primitive kinds: boolean, byte, char, short, int, long, float, double.
func IsPrimitive(t *TypeHandle) bool {
	if t == nil {
		return false
	}
	switch t.rtype {
	case BoolType.rtype, ByteType.rtype, CharType.rtype, ShortType.rtype,
		IntType.rtype, LongType.rtype, FloatType.rtype, DoubleType.rtype:
		return true
	default:
		return false
	}
}

// IsLogicalPrimitive reports whether the handle describes a value-like
// type: a primitive, a pointer wrapper of one, a string, any numeric type,
// a date type, or the type-handle type itself. Logical primitives are
// immutable and safe to serialize by value rather than by reference.
func IsLogicalPrimitive(t *TypeHandle) bool {
	if t == nil {
		return false
	}
	if IsPrimitive(t) {
		return true
	}
	if _, ok := logicalPrimitives[t.rtype]; ok {
		return true
	}
	rt := t.rtype
	if rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	switch rt.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// isWrapper reports whether t is the nullable (pointer) form of a
// primitive, the Go counterpart of a boxed value.
func isWrapper(t *TypeHandle) bool {
	return t.rtype.Kind() == reflect.Ptr && IsPrimitive(HandleOf(t.rtype.Elem()))
}
