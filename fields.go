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
	"runtime"
	"strings"
	"unsafe"

	"github.com/spaolacci/murmur3"
	"go.uber.org/zap"
)

// FieldDescriptor describes one instance field reachable from a concrete
// type, including fields declared by embedded ancestors. Immutable once
// built.
type FieldDescriptor struct {
	// Name is the field's declared name (not the display name, which may
	// be qualified on shadowing conflicts).
	Name string
	// Owner is the type that declares the field.
	Owner *TypeHandle
	// Type is the field's declared type.
	Type *TypeHandle
	// Index is the field's index within Owner.
	Index int

	// offset is the cumulative byte offset from the table's root struct,
	// through the embedding chain. Used for unsafe access so unexported
	// fields stay readable and writable.
	offset uintptr
	// path is the field index chain from the root, for the reflect-based
	// fallback on unaddressable values.
	path []int

	exported bool
}

// Exported reports whether the field is exported by its declaring package.
// Unexported fields are still present in the table and accessible through
// Get/Set on addressable instances.
func (d *FieldDescriptor) Exported() bool { return d.exported }

// resolve locates the field's storage within instance. Addressable
// instances go through the unsafe offset so that unexported fields come
// back settable; unaddressable instances fall back to the reflect path,
// which only works for exported fields.
func (d *FieldDescriptor) resolve(instance reflect.Value) (reflect.Value, error) {
	for instance.Kind() == reflect.Ptr {
		if instance.IsNil() {
			return reflect.Value{}, fmt.Errorf("groovyio: nil instance for field %s", d.Name)
		}
		instance = instance.Elem()
	}
	if instance.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("groovyio: field %s: instance is %s, not a struct", d.Name, instance.Kind())
	}
	if instance.CanAddr() {
		p := unsafe.Add(unsafe.Pointer(instance.UnsafeAddr()), d.offset)
		return reflect.NewAt(d.Type.rtype, p).Elem(), nil
	}
	if d.exported {
		return instance.FieldByIndex(d.path), nil
	}
	return reflect.Value{}, fmt.Errorf("groovyio: field %s of %s is not accessible on an unaddressable value", d.Name, d.Owner)
}

// Get reads the field's value from an instance of the table's root type
// (or a pointer to one).
func (d *FieldDescriptor) Get(instance reflect.Value) (reflect.Value, error) {
	return d.resolve(instance)
}

// Set writes v into the field on instance, converting when the types are
// convertible but not identical.
func (d *FieldDescriptor) Set(instance reflect.Value, v reflect.Value) error {
	fv, err := d.resolve(instance)
	if err != nil {
		return err
	}
	if !fv.CanSet() {
		return fmt.Errorf("groovyio: field %s is not settable on an unaddressable value", d.Name)
	}
	switch {
	case v.Type().AssignableTo(d.Type.rtype):
		fv.Set(v)
	case v.Type().ConvertibleTo(d.Type.rtype):
		fv.Set(v.Convert(d.Type.rtype))
	default:
		return fmt.Errorf("groovyio: cannot assign %s to field %s (%s)", v.Type(), d.Name, d.Type)
	}
	return nil
}

// FieldTable is the ordered display-name to descriptor mapping for one
// concrete type's full embedding chain. Display names are plain field
// names unless shadowed, in which case the ancestor's entry is qualified
// as "<AncestorTypeName>.<field>". Immutable once built.
type FieldTable struct {
	root   *TypeHandle
	names  []string
	byName map[string]*FieldDescriptor
	hash   int32
}

// Type returns the handle the table was built for.
func (ft *FieldTable) Type() *TypeHandle { return ft.root }

// Len returns the number of fields in the table.
func (ft *FieldTable) Len() int { return len(ft.names) }

// Names returns the display names in table order (first-seen-wins from the
// most-derived type upward).
func (ft *FieldTable) Names() []string {
	out := make([]string, len(ft.names))
	copy(out, ft.names)
	return out
}

// Get returns the descriptor for a display name.
func (ft *FieldTable) Get(name string) (*FieldDescriptor, bool) {
	d, ok := ft.byName[name]
	return d, ok
}

// At returns the i-th display name and descriptor in table order.
func (ft *FieldTable) At(i int) (string, *FieldDescriptor) {
	name := ft.names[i]
	return name, ft.byName[name]
}

// Hash returns a structural fingerprint of the table: display names,
// declared type names and export flags hashed with murmur3. The engine on
// top uses it to detect schema drift between peers without comparing
// tables field by field.
func (ft *FieldTable) Hash() int32 { return ft.hash }

func (ft *FieldTable) computeHash() int32 {
	var sb strings.Builder
	for _, name := range ft.names {
		d := ft.byName[name]
		sb.WriteString(name)
		sb.WriteString(",")
		sb.WriteString(d.Type.Name())
		sb.WriteString(",")
		if d.exported {
			sb.WriteString("1")
		} else {
			sb.WriteString("0")
		}
		sb.WriteString(";")
	}
	h1, _ := murmur3.Sum128WithSeed([]byte(sb.String()), 47)
	return int32(h1 & 0xFFFFFFFF)
}

// Fields returns the field table for t, building and caching it on first
// use. Pointer handles are unwrapped to their struct type; non-struct
// handles get an empty table. Safe for concurrent callers: a racing first
// population computes an identical table and LoadOrStore keeps one winner.
func (r *Registry) Fields(t *TypeHandle) *FieldTable {
	if t == nil {
		return &FieldTable{byName: map[string]*FieldDescriptor{}}
	}
	rt := t.rtype
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	if cached, ok := r.fieldTables.Load(rt); ok {
		return cached.(*FieldTable)
	}
	ft := buildFieldTable(HandleOf(rt))
	actual, loaded := r.fieldTables.LoadOrStore(rt, ft)
	if !loaded {
		r.log.Debug("field table built",
			zap.Stringer("type", ft.root),
			zap.Int("fields", ft.Len()),
			zap.Int32("hash", ft.Hash()))
	}
	return actual.(*FieldTable)
}

// buildFieldTable walks root and every embedded ancestor up the chain,
// collecting instance fields with shadow-aware naming. First-seen wins:
// a derived field keeps its plain name and a shadowed ancestor field is
// inserted under its qualified name.
func buildFieldTable(root *TypeHandle) *FieldTable {
	ft := &FieldTable{
		root:   root,
		byName: make(map[string]*FieldDescriptor),
	}
	if root.rtype.Kind() != reflect.Struct {
		ft.hash = ft.computeHash()
		return ft
	}

	var base uintptr
	var prefix []int
	for cur := root; cur != nil; {
		for _, d := range declaredFields(cur, base, prefix) {
			display := d.Name
			if _, taken := ft.byName[display]; taken {
				display = cur.rtype.Name() + "." + d.Name
				if _, taken = ft.byName[display]; taken {
					continue
				}
			}
			ft.names = append(ft.names, display)
			ft.byName[display] = d
		}
		sup := cur.Supertype()
		if sup == nil {
			break
		}
		for i := 0; i < cur.rtype.NumField(); i++ {
			f := cur.rtype.Field(i)
			if f.Anonymous && f.Type.Kind() == reflect.Struct {
				prefix = append(prefix, i)
				break
			}
		}
		base += cur.supertypeOffset()
		cur = sup
	}
	ft.hash = ft.computeHash()
	return ft
}

// declaredFields enumerates one type's own instance fields. Excluded:
// blank (_) fields, which exist only as padding/alignment bookkeeping and
// must never leak into serialized output, and the first embedded struct,
// which is the ancestor link rather than data. A panic while inspecting
// one ancestor is swallowed so the rest of the chain still contributes,
// except runtime errors, which always propagate.
func declaredFields(owner *TypeHandle, base uintptr, prefix []int) (out []*FieldDescriptor) {
	defer func() {
		if rec := recover(); rec != nil {
			if rerr, ok := rec.(runtime.Error); ok {
				panic(rerr)
			}
			out = nil
		}
	}()

	rt := owner.rtype
	seenSuper := false
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.Name == "_" {
			continue
		}
		if f.Anonymous && f.Type.Kind() == reflect.Struct && !seenSuper {
			seenSuper = true
			continue
		}
		path := make([]int, len(prefix)+1)
		copy(path, prefix)
		path[len(prefix)] = i
		out = append(out, &FieldDescriptor{
			Name:     f.Name,
			Owner:    owner,
			Type:     HandleOf(f.Type),
			Index:    i,
			offset:   base + f.Offset,
			path:     path,
			exported: f.PkgPath == "",
		})
	}
	return out
}
