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

// Package groovyio provides the type-introspection and value-coercion layer
// used by an object serialization engine: shadow-aware field tables with
// aggressive caching, textual type-name resolution including array
// encodings, inheritance/interface distance ranking for handler selection,
// and primitive coercion backed by interning pools.
//
// The wire-format reader/writer, object graph traversal and reference
// tracking live in the engine on top of this package; everything here is
// synchronous in-memory computation, safe for use from many goroutines.
package groovyio

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// ============================================================================
// Errors
// ============================================================================

// ErrInvalidName indicates an empty type name passed to resolution.
var ErrInvalidName = errors.New("groovyio: invalid type name")

// ErrTypeNotFound indicates a name that does not resolve to any known type.
var ErrTypeNotFound = errors.New("groovyio: type not found")

// ErrFormat indicates a textual value that cannot be parsed as the target
// primitive's literal form.
var ErrFormat = errors.New("groovyio: malformed value")

// ErrUnsupportedType indicates a coercion request for a non-primitive
// target, which is a bug in the caller's type dispatch rather than bad data.
var ErrUnsupportedType = errors.New("groovyio: unsupported coercion type")

// ============================================================================
// Config
// ============================================================================

// Option is a function that configures a Registry.
type Option func(*Registry)

// WithLogger sets the structured logger used for registration and cache
// population diagnostics. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// ============================================================================
// Registry
// ============================================================================

// Registry binds textual type names to handles, knows the universe of
// interfaces used for distance computation, and owns the field-table cache.
// All methods are safe for concurrent use.
type Registry struct {
	log *zap.Logger

	mu         sync.RWMutex
	named      map[string]*TypeHandle
	interfaces []*TypeHandle

	// fieldTables caches FieldTable per struct type. Population is
	// idempotent: a racing recomputation yields an equal table, so
	// LoadOrStore without external locking is enough.
	fieldTables sync.Map // reflect.Type -> *FieldTable

	// distMemo caches interface-distance results per (target, from) pair.
	// Dropped whenever a new interface is registered.
	distMemo sync.Map // distKey -> int
}

type distKey struct {
	target *TypeHandle
	from   *TypeHandle
}

// NewRegistry creates a Registry with the given options.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		log:   zap.NewNop(),
		named: make(map[string]*TypeHandle),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register binds a fully-qualified name to a type so Resolve can load it.
// value may be a reflect.Type or an instance; pointer instances register
// their element type. Re-registering the same type under the same name is
// a no-op; binding the name to a different type is an error.
func (r *Registry) Register(value any, name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name for registration", ErrInvalidName)
	}
	t := typeOfValue(value)
	if t == nil {
		return fmt.Errorf("%w: nil type for name %q", ErrInvalidName, name)
	}
	h := HandleOf(t)

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.named[name]; ok && prev != h {
		return fmt.Errorf("groovyio: name %q already bound to %s", name, prev.Name())
	}
	r.named[name] = h
	r.log.Debug("registered named type",
		zap.String("name", name), zap.Stringer("type", h))
	return nil
}

// RegisterByNamespace registers a type under "<namespace>.<name>".
func (r *Registry) RegisterByNamespace(value any, namespace, name string) error {
	if namespace == "" {
		return r.Register(value, name)
	}
	return r.Register(value, namespace+"."+name)
}

// RegisterInterface adds an interface to the universe the distance
// calculator searches. iface must be a pointer to an interface value,
// e.g. (*io.Reader)(nil). Registration drops the distance memo because
// new edges may shorten existing paths.
func (r *Registry) RegisterInterface(iface any) error {
	t := reflect.TypeOf(iface)
	if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Interface {
		return fmt.Errorf("%w: RegisterInterface needs a pointer to an interface", ErrInvalidName)
	}
	h := HandleOf(t.Elem())

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, known := range r.interfaces {
		if known == h {
			return nil
		}
	}
	r.interfaces = append(r.interfaces, h)
	r.distMemo.Range(func(k, _ any) bool {
		r.distMemo.Delete(k)
		return true
	})
	r.log.Debug("registered interface", zap.Stringer("type", h))
	return nil
}

// knownInterfaces returns a snapshot of the registered interface universe.
func (r *Registry) knownInterfaces() []*TypeHandle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*TypeHandle, len(r.interfaces))
	copy(out, r.interfaces)
	return out
}

// typeOfValue accepts either a reflect.Type or an instance of the type,
// unwrapping one pointer level for instances.
func typeOfValue(value any) reflect.Type {
	if rt, ok := value.(reflect.Type); ok {
		return rt
	}
	t := reflect.TypeOf(value)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// ============================================================================
// Default registry
// ============================================================================

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by the package-level
// functions.
func Default() *Registry { return defaultRegistry }

// Register binds a name to a type in the default registry.
func Register(value any, name string) error {
	return defaultRegistry.Register(value, name)
}

// RegisterInterface adds an interface to the default registry's universe.
func RegisterInterface(iface any) error {
	return defaultRegistry.RegisterInterface(iface)
}

// Resolve resolves a type name through the default registry.
func Resolve(name string) (*TypeHandle, error) {
	return defaultRegistry.Resolve(name)
}

// Fields returns the cached field table for t from the default registry.
func Fields(t *TypeHandle) *FieldTable {
	return defaultRegistry.Fields(t)
}

// Distance computes type distance through the default registry.
func Distance(candidate, concrete *TypeHandle) int {
	return defaultRegistry.Distance(candidate, concrete)
}
