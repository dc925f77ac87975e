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

type point struct {
	X, Y int32
}

func TestResolvePrimitiveAliases(t *testing.T) {
	r := NewRegistry()
	cases := map[string]*TypeHandle{
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
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := r.Resolve(name)
			require.NoError(t, err)
			require.Same(t, want, got)
		})
	}
}

func TestResolvePrimitiveArrays(t *testing.T) {
	r := NewRegistry()

	h, err := r.Resolve("[I")
	require.NoError(t, err)
	require.Equal(t, reflect.TypeOf([]int32(nil)), h.ReflectType())

	h, err = r.Resolve("[[I")
	require.NoError(t, err)
	require.Equal(t, reflect.TypeOf([][]int32(nil)), h.ReflectType())

	for code, elem := range map[string]reflect.Type{
		"[B": reflect.TypeOf([]int8(nil)),
		"[S": reflect.TypeOf([]int16(nil)),
		"[J": reflect.TypeOf([]int64(nil)),
		"[F": reflect.TypeOf([]float32(nil)),
		"[D": reflect.TypeOf([]float64(nil)),
		"[Z": reflect.TypeOf([]bool(nil)),
		"[C": reflect.TypeOf([]Char(nil)),
	} {
		h, err := r.Resolve(code)
		require.NoError(t, err, code)
		require.Equal(t, elem, h.ReflectType(), code)
	}
}

func TestResolveObjectArray(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(point{}, "com.example.Point"))

	h, err := r.Resolve("[Lcom.example.Point;")
	require.NoError(t, err)
	require.Equal(t, reflect.TypeOf([]point(nil)), h.ReflectType())
	require.True(t, h.IsArray())
	require.Same(t, TypeOf(point{}), h.Elem())

	h, err = r.Resolve("[[Lcom.example.Point;")
	require.NoError(t, err)
	require.Equal(t, reflect.TypeOf([][]point(nil)), h.ReflectType())
}

func TestResolveErrors(t *testing.T) {
	r := NewRegistry()

	_, err := r.Resolve("")
	require.ErrorIs(t, err, ErrInvalidName)

	_, err = r.Resolve("com.missing.Widget")
	require.ErrorIs(t, err, ErrTypeNotFound)

	_, err = r.Resolve("[")
	require.ErrorIs(t, err, ErrTypeNotFound)

	_, err = r.Resolve("[X")
	require.ErrorIs(t, err, ErrTypeNotFound)

	_, err = r.Resolve("[Lcom.missing.Widget;")
	require.ErrorIs(t, err, ErrTypeNotFound)
}

func TestRegisterConflict(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(point{}, "com.example.Point"))
	// Same binding again is a no-op.
	require.NoError(t, r.Register(point{}, "com.example.Point"))
	// A pointer instance registers the element type, so this is the
	// same binding too.
	require.NoError(t, r.Register(&point{}, "com.example.Point"))

	type other struct{ Z int }
	require.Error(t, r.Register(other{}, "com.example.Point"))
}

func TestRegisterByNamespace(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterByNamespace(point{}, "com.example", "Point"))

	h, err := r.Resolve("com.example.Point")
	require.NoError(t, err)
	require.Same(t, TypeOf(point{}), h)

	// Empty namespace falls back to the bare name.
	require.NoError(t, r.RegisterByNamespace(point{}, "", "Point"))
	h, err = r.Resolve("Point")
	require.NoError(t, err)
	require.Same(t, TypeOf(point{}), h)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	r := NewRegistry()
	require.ErrorIs(t, r.Register(point{}, ""), ErrInvalidName)
	require.ErrorIs(t, r.Register(nil, "com.example.Nil"), ErrInvalidName)
	require.ErrorIs(t, r.RegisterInterface(point{}), ErrInvalidName)
	require.ErrorIs(t, r.RegisterInterface(nil), ErrInvalidName)
}
