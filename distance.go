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

import "reflect"

// Unrelated is the distance between two types that share no embedding or
// interface relationship. It is a sentinel, never a usable path length.
const Unrelated = -1

// Distance computes the structural distance from concrete up to candidate
// through the embedding chain and the interface lattice: 0 for identical
// types, the number of hops for related types, Unrelated otherwise. The
// engine uses it to rank registered custom handlers: among candidates with
// a non-negative distance, the smallest one is the most specific match.
func (r *Registry) Distance(candidate, concrete *TypeHandle) int {
	if candidate == nil || concrete == nil {
		return Unrelated
	}
	if candidate == concrete {
		return 0
	}
	if candidate.IsInterface() {
		return r.distanceToInterface(candidate, concrete)
	}
	d := 0
	for cur := concrete; cur != nil; cur = cur.Supertype() {
		if cur == candidate {
			return d
		}
		d++
	}
	return Unrelated
}

// distanceToInterface memoizes the recursive search per (target, from)
// pair. The interface lattice is acyclic, so recursion terminates; the
// memo only speeds up repeated handler-selection queries and is dropped
// when the interface universe grows.
func (r *Registry) distanceToInterface(target, from *TypeHandle) int {
	key := distKey{target: target, from: from}
	if v, ok := r.distMemo.Load(key); ok {
		return v.(int)
	}
	d := r.computeInterfaceDistance(target, from)
	r.distMemo.Store(key, d)
	return d
}

// computeInterfaceDistance follows the lattice breadth: a directly
// implemented target is one hop away; otherwise every directly implemented
// interface assignable to target, plus the supertype if assignable, is a
// candidate, and the result is the true minimum over all paths plus one.
// Diamond-shaped lattices are handled by exploring every candidate instead
// of stopping at the first finite path.
func (r *Registry) computeInterfaceDistance(target, from *TypeHandle) int {
	direct := r.declaredInterfaces(from)
	for _, i := range direct {
		if i == target {
			return 1
		}
	}

	var candidates []*TypeHandle
	for _, i := range direct {
		if implementsIface(i.rtype, target.rtype) {
			candidates = append(candidates, i)
		}
	}
	if sup := from.Supertype(); sup != nil && implementsIface(sup.rtype, target.rtype) {
		candidates = append(candidates, sup)
	}

	best := Unrelated
	for _, c := range candidates {
		if d := r.distanceToInterface(target, c); d != Unrelated {
			if best == Unrelated || d+1 < best {
				best = d + 1
			}
		}
	}
	return best
}

// declaredInterfaces computes the interfaces from directly declares. Go
// reflection cannot enumerate interface declarations, so the set is
// derived from the registry's interface universe plus any interfaces
// embedded in the struct itself: every implemented interface that is not
// subsumed by another implemented interface, and (for structs) not already
// reached through the ancestor chain, counts as direct.
func (r *Registry) declaredInterfaces(from *TypeHandle) []*TypeHandle {
	universe := r.knownInterfaces()

	embedded := make(map[*TypeHandle]bool)
	if from.Kind() == reflect.Struct {
		for i := 0; i < from.rtype.NumField(); i++ {
			f := from.rtype.Field(i)
			if f.Anonymous && f.Type.Kind() == reflect.Interface {
				h := HandleOf(f.Type)
				embedded[h] = true
				known := false
				for _, u := range universe {
					if u == h {
						known = true
						break
					}
				}
				if !known {
					universe = append(universe, h)
				}
			}
		}
	}

	var impl []*TypeHandle
	for _, i := range universe {
		if i == from {
			continue
		}
		if !implementsIface(from.rtype, i.rtype) {
			continue
		}
		// Interfaces inherited from the ancestor are reached through the
		// class hop, not counted as direct declarations. Interfaces
		// embedded in the struct itself stay direct regardless.
		if sup := from.Supertype(); sup != nil && !embedded[i] && implementsIface(sup.rtype, i.rtype) {
			continue
		}
		impl = append(impl, i)
	}

	// Minimize: an interface subsumed by another implemented interface is
	// reached transitively, so counting it as direct would shortcut path
	// lengths through diamonds.
	var direct []*TypeHandle
	for _, i := range impl {
		subsumed := false
		for _, j := range impl {
			if i == j {
				continue
			}
			if implementsIface(j.rtype, i.rtype) && !implementsIface(i.rtype, j.rtype) {
				subsumed = true
				break
			}
		}
		if !subsumed {
			direct = append(direct, i)
		}
	}
	return direct
}

// Interfaces returns the interfaces t directly declares, as seen by the
// distance calculator.
func (r *Registry) Interfaces(t *TypeHandle) []*TypeHandle {
	if t == nil {
		return nil
	}
	return r.declaredInterfaces(t)
}

// implementsIface reports whether t's method set (or its pointer form's,
// for non-pointer concrete types) satisfies iface.
func implementsIface(t, iface reflect.Type) bool {
	if iface.Kind() != reflect.Interface {
		return false
	}
	if t == iface {
		return true
	}
	if t.Implements(iface) {
		return true
	}
	if t.Kind() != reflect.Interface && t.Kind() != reflect.Ptr {
		return reflect.PointerTo(t).Implements(iface)
	}
	return false
}
