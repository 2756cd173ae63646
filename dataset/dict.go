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

package dataset

import (
	"io"

	"github.com/juju/errors"

	"github.com/unimart/recsys/base/encoding"
)

// NotIndex marks an id absent from a Dict.
const NotIndex = int32(-1)

// Dict maps sparse marketplace ids (buyer ids, product ids) to dense matrix
// row indices and back. Ids never equal indices.
type Dict struct {
	index map[int64]int32
	ids   []int64
}

// NewDict creates an empty Dict.
func NewDict() *Dict {
	return &Dict{index: make(map[int64]int32)}
}

// Add returns the dense index of id, inserting it if unseen.
func (d *Dict) Add(id int64) int32 {
	if index, ok := d.index[id]; ok {
		return index
	}
	index := int32(len(d.ids))
	d.index[id] = index
	d.ids = append(d.ids, id)
	return index
}

// Index returns the dense index of id, or NotIndex if unseen.
func (d *Dict) Index(id int64) int32 {
	if index, ok := d.index[id]; ok {
		return index
	}
	return NotIndex
}

// ID returns the id at the dense index.
func (d *Dict) ID(index int32) (int64, bool) {
	if index < 0 || index >= int32(len(d.ids)) {
		return 0, false
	}
	return d.ids[index], true
}

// Count returns the number of known ids.
func (d *Dict) Count() int32 {
	return int32(len(d.ids))
}

// Marshal writes the dictionary to a byte stream.
func (d *Dict) Marshal(w io.Writer) error {
	return errors.Trace(encoding.WriteGob(w, d.ids))
}

// Unmarshal reads a dictionary written by Marshal.
func (d *Dict) Unmarshal(r io.Reader) error {
	var ids []int64
	if err := encoding.ReadGob(r, &ids); err != nil {
		return errors.Trace(err)
	}
	d.ids = ids
	d.index = make(map[int64]int32, len(ids))
	for i, id := range ids {
		d.index[id] = int32(i)
	}
	return nil
}
