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
	"testing"

	"github.com/stretchr/testify/require"
)

func ifaceHandle[T any]() *TypeHandle {
	return HandleOf(reflect.TypeOf((*T)(nil)).Elem())
}

// Diamond lattice: counted and labeled both extend valued; node implements
// counted and labeled (and therefore valued on two paths).
type valued interface{ Value() int }

type counted interface {
	valued
	Count() int
}

type labeled interface {
	valued
	Label() string
}

type node struct{}

func (node) Value() int    { return 0 }
func (node) Count() int    { return 0 }
func (node) Label() string { return "" }

// Embedding chain for class-style distance.
type animal struct{ legs int }

type dog struct{ animal }

type puppy struct{ dog }

// barker is implemented by dog's method, so puppy reaches it through the
// ancestor hop.
type barker interface{ Bark() string }

func (dog) Bark() string { return "woof" }

func newDistanceRegistry(t *testing.T) *Registry {
	r := NewRegistry()
	require.NoError(t, r.RegisterInterface((*valued)(nil)))
	require.NoError(t, r.RegisterInterface((*counted)(nil)))
	require.NoError(t, r.RegisterInterface((*labeled)(nil)))
	require.NoError(t, r.RegisterInterface((*barker)(nil)))
	return r
}

func TestDistanceIdentity(t *testing.T) {
	r := newDistanceRegistry(t)
	for _, h := range []*TypeHandle{
		TypeOf(node{}), TypeOf(puppy{}), IntType, ifaceHandle[valued](),
	} {
		require.Equal(t, 0, r.Distance(h, h))
	}
}

func TestDistanceEmbeddingChain(t *testing.T) {
	r := newDistanceRegistry(t)

	require.Equal(t, 1, r.Distance(TypeOf(dog{}), TypeOf(puppy{})))
	require.Equal(t, 2, r.Distance(TypeOf(animal{}), TypeOf(puppy{})))
	require.Equal(t, 1, r.Distance(TypeOf(animal{}), TypeOf(dog{})))

	// Distance is directional: an ancestor is never "close to" a
	// descendant candidate.
	require.Equal(t, Unrelated, r.Distance(TypeOf(puppy{}), TypeOf(dog{})))
}

func TestDistanceUnrelated(t *testing.T) {
	r := newDistanceRegistry(t)
	require.Equal(t, Unrelated, r.Distance(TypeOf(node{}), TypeOf(puppy{})))
	require.Equal(t, Unrelated, r.Distance(ifaceHandle[valued](), TypeOf(animal{})))
	require.Equal(t, Unrelated, r.Distance(nil, TypeOf(animal{})))
	require.Equal(t, Unrelated, r.Distance(TypeOf(animal{}), nil))
}

func TestDistanceInterfaceDiamond(t *testing.T) {
	r := newDistanceRegistry(t)
	valuedH := ifaceHandle[valued]()
	countedH := ifaceHandle[counted]()
	labeledH := ifaceHandle[labeled]()

	// Direct implementations are one hop.
	require.Equal(t, 1, r.Distance(countedH, TypeOf(node{})))
	require.Equal(t, 1, r.Distance(labeledH, TypeOf(node{})))

	// The shared ancestor is reached through either branch; both paths
	// have length 2 and the minimum is taken, not the first path found.
	require.Equal(t, 2, r.Distance(valuedH, TypeOf(node{})))

	// Interface-to-interface edges.
	require.Equal(t, 1, r.Distance(valuedH, countedH))
	require.Equal(t, Unrelated, r.Distance(countedH, labeledH))
}

func TestDistanceThroughAncestor(t *testing.T) {
	r := newDistanceRegistry(t)
	barkerH := ifaceHandle[barker]()

	// dog declares Bark itself; puppy inherits it through the embedding
	// hop, so its distance is one longer.
	require.Equal(t, 1, r.Distance(barkerH, TypeOf(dog{})))
	require.Equal(t, 2, r.Distance(barkerH, TypeOf(puppy{})))
}

func TestDistanceMemoSurvivesRegistration(t *testing.T) {
	r := newDistanceRegistry(t)
	valuedH := ifaceHandle[valued]()

	require.Equal(t, 2, r.Distance(valuedH, TypeOf(node{})))
	// Registering a new interface drops the memo; results stay correct.
	type sized interface{ Size() int }
	require.NoError(t, r.RegisterInterface((*sized)(nil)))
	require.Equal(t, 2, r.Distance(valuedH, TypeOf(node{})))
}

func TestDeclaredInterfacesMinimized(t *testing.T) {
	r := newDistanceRegistry(t)

	direct := r.Interfaces(TypeOf(node{}))
	require.ElementsMatch(t,
		[]*TypeHandle{ifaceHandle[counted](), ifaceHandle[labeled]()},
		direct)
}
