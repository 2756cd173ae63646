// Copyright 2026 unimart Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package floats provides dense float32 vector arithmetic for latent factor
// models. Vectors passed to binary operations must have equal length.
package floats

// Dot returns the dot product of a and b.
func Dot(a, b []float32) (ret float32) {
	if len(a) != len(b) {
		panic("floats: vector lengths mismatch")
	}
	for i := range a {
		ret += a[i] * b[i]
	}
	return
}

// Zero fills a with zeros.
func Zero(a []float32) {
	for i := range a {
		a[i] = 0
	}
}

// MatZero fills the matrix x with zeros.
func MatZero(x [][]float32) {
	for i := range x {
		Zero(x[i])
	}
}

// Add adds s to dst element-wise.
func Add(dst, s []float32) {
	if len(dst) != len(s) {
		panic("floats: vector lengths mismatch")
	}
	for i := range dst {
		dst[i] += s[i]
	}
}

// Sub subtracts s from dst element-wise.
func Sub(dst, s []float32) {
	if len(dst) != len(s) {
		panic("floats: vector lengths mismatch")
	}
	for i := range dst {
		dst[i] -= s[i]
	}
}

// AddTo stores a+b into dst.
func AddTo(a, b, dst []float32) {
	if len(a) != len(b) || len(a) != len(dst) {
		panic("floats: vector lengths mismatch")
	}
	for i := range a {
		dst[i] = a[i] + b[i]
	}
}

// SubTo stores a-b into dst.
func SubTo(a, b, dst []float32) {
	if len(a) != len(b) || len(a) != len(dst) {
		panic("floats: vector lengths mismatch")
	}
	for i := range a {
		dst[i] = a[i] - b[i]
	}
}

// MulConst multiplies dst by the constant c.
func MulConst(dst []float32, c float32) {
	for i := range dst {
		dst[i] *= c
	}
}

// MulConstTo stores a*c into dst.
func MulConstTo(a []float32, c float32, dst []float32) {
	if len(a) != len(dst) {
		panic("floats: vector lengths mismatch")
	}
	for i := range a {
		dst[i] = a[i] * c
	}
}

// MulConstAdd adds a*c to dst.
func MulConstAdd(a []float32, c float32, dst []float32) {
	if len(a) != len(dst) {
		panic("floats: vector lengths mismatch")
	}
	for i := range a {
		dst[i] += a[i] * c
	}
}

// AddConst adds the constant c to every element of dst.
func AddConst(dst []float32, c float32) {
	for i := range dst {
		dst[i] += c
	}
}

// Mean returns the arithmetic mean of a, or zero for an empty vector.
func Mean(a []float32) float32 {
	if len(a) == 0 {
		return 0
	}
	var sum float32
	for _, v := range a {
		sum += v
	}
	return sum / float32(len(a))
}
