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

// Package encoding implements the binary layout shared by model and artifact
// serialization. All integers are little-endian.
package encoding

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"io"

	"github.com/juju/errors"
)

// WriteVector writes a float32 vector to the byte stream, length first.
func WriteVector(w io.Writer, v []float32) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(v))); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(binary.Write(w, binary.LittleEndian, v))
}

// ReadVector reads a float32 vector written by WriteVector.
func ReadVector(r io.Reader) ([]float32, error) {
	var length int32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, errors.Trace(err)
	}
	v := make([]float32, length)
	if err := binary.Read(r, binary.LittleEndian, v); err != nil {
		return nil, errors.Trace(err)
	}
	return v, nil
}

// WriteMatrix writes a float32 matrix to the byte stream, row by row.
func WriteMatrix(w io.Writer, m [][]float32) error {
	var cols int32
	if len(m) > 0 {
		cols = int32(len(m[0]))
	}
	if err := binary.Write(w, binary.LittleEndian, int32(len(m))); err != nil {
		return errors.Trace(err)
	}
	if err := binary.Write(w, binary.LittleEndian, cols); err != nil {
		return errors.Trace(err)
	}
	for i := range m {
		if err := binary.Write(w, binary.LittleEndian, m[i]); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// ReadMatrix reads a float32 matrix written by WriteMatrix.
func ReadMatrix(r io.Reader) ([][]float32, error) {
	var rows, cols int32
	if err := binary.Read(r, binary.LittleEndian, &rows); err != nil {
		return nil, errors.Trace(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &cols); err != nil {
		return nil, errors.Trace(err)
	}
	m := make([][]float32, rows)
	for i := range m {
		m[i] = make([]float32, cols)
		if err := binary.Read(r, binary.LittleEndian, m[i]); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return m, nil
}

// WriteBytes writes a length-prefixed byte slice to the byte stream.
func WriteBytes(w io.Writer, s []byte) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(s))); err != nil {
		return errors.Trace(err)
	}
	n, err := w.Write(s)
	if err != nil {
		return errors.Trace(err)
	} else if n != len(s) {
		return errors.New("failed to write bytes")
	}
	return nil
}

// ReadBytes reads a length-prefixed byte slice from the byte stream.
func ReadBytes(r io.Reader) ([]byte, error) {
	var length int32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, errors.Trace(err)
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, errors.Trace(err)
	}
	return data, nil
}

// WriteString writes a length-prefixed string to the byte stream.
func WriteString(w io.Writer, s string) error {
	return WriteBytes(w, []byte(s))
}

// ReadString reads a length-prefixed string from the byte stream.
func ReadString(r io.Reader) (string, error) {
	data, err := ReadBytes(r)
	return string(data), err
}

// WriteGob writes a gob-encoded object to the byte stream.
func WriteGob(w io.Writer, v interface{}) error {
	buffer := bytes.NewBuffer(nil)
	if err := gob.NewEncoder(buffer).Encode(v); err != nil {
		return errors.Trace(err)
	}
	return WriteBytes(w, buffer.Bytes())
}

// ReadGob reads a gob-encoded object from the byte stream.
func ReadGob(r io.Reader, v interface{}) error {
	data, err := ReadBytes(r)
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(gob.NewDecoder(bytes.NewReader(data)).Decode(v))
}
