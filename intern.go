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

// Interning pools for small immutable scalar values. Coercion funnels every
// byte result and every low char result through these tables so that hot
// deserialization paths reuse one boxed value per scalar instead of
// allocating a fresh interface payload each time.
//
// Both pools are populated in init and never written again; readers need no
// synchronization after that.

var (
	charCache [128]any // code points 0..127
	byteCache [256]any // indexed by int(b) + 128 for the full signed range
)

func init() {
	for i := range charCache {
		charCache[i] = Char(i)
	}
	for i := range byteCache {
		byteCache[i] = int8(i - 128)
	}
}

// CharValue returns a boxed Char for c, interned for code points at or
// below 127 and freshly boxed above that.
func CharValue(c Char) any {
	if c < Char(len(charCache)) {
		return charCache[c]
	}
	return c
}

// ByteValue returns the interned boxed value for b. Every signed byte fits
// in the pool, so there is no fresh path.
func ByteValue(b int8) any {
	return byteCache[int(b)+128]
}
