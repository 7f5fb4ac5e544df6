/*
   Copyright 2018-2019 Banco Bilbao Vizcaya Argentaria, S.A.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package cache implements the byte oriented stores used to memoize
// HashLife results. Every backend maps a fixed size key to a fixed size
// value and may be emptied at once with Reset.
package cache

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	// KeySize is the size of an encoded result key.
	KeySize = 10
	// ValueSize is the size of an encoded result value.
	ValueSize = 24
)

// Family distinguishes the kinds of memoized results.
type Family byte

const (
	// Center results: centered sub-node advanced 2^(level-2) generations.
	Center Family = 'R'
	// Stepped results: centered sub-node advanced 2^j generations, j < level-2.
	Stepped Family = 'S'
	// Full results: whole node advanced 2^level generations.
	Full Family = 'F'
)

// Cache is the interface every result store implements.
type Cache interface {
	Get(key []byte) ([]byte, bool)
	Put(key []byte, value []byte)
	Size() int
	Reset()
}

// Key encodes the memoization key of a node id for the given family.
// Step is only meaningful for the Stepped family.
func Key(f Family, id uint64, step uint8) []byte {
	b := make([]byte, KeySize)
	b[0] = byte(f)
	binary.LittleEndian.PutUint64(b[1:9], id)
	b[9] = step
	return b
}

// Entry is a decoded result: the id of the resulting node and its origin
// relative to the origin of the input node.
type Entry struct {
	ID     uint64
	DX, DY int64
}

// Bytes encodes the entry.
func (e Entry) Bytes() []byte {
	b := make([]byte, ValueSize)
	binary.LittleEndian.PutUint64(b[0:8], e.ID)
	binary.LittleEndian.PutUint64(b[8:16], uint64(e.DX))
	binary.LittleEndian.PutUint64(b[16:24], uint64(e.DY))
	return b
}

// ParseEntry decodes an entry previously encoded with Bytes.
func ParseEntry(b []byte) (Entry, error) {
	if len(b) != ValueSize {
		return Entry{}, errors.Errorf("cache entry has %d bytes, expected %d", len(b), ValueSize)
	}
	return Entry{
		ID: binary.LittleEndian.Uint64(b[0:8]),
		DX: int64(binary.LittleEndian.Uint64(b[8:16])),
		DY: int64(binary.LittleEndian.Uint64(b[16:24])),
	}, nil
}

// Backend names accepted by New.
const (
	SimpleBackend = "simple"
	FastBackend   = "fast"
	FreeBackend   = "free"
)

// New returns the cache implementation named by backend. Size is the
// initial capacity (entries) for the simple backend and the memory budget
// (bytes) for the bounded ones.
func New(backend string, size int) (Cache, error) {
	switch backend {
	case SimpleBackend, "":
		return NewSimpleCache(uint64(size)), nil
	case FastBackend:
		return NewFastCache(int64(size)), nil
	case FreeBackend:
		return NewFreeCache(size), nil
	default:
		return nil, errors.Errorf("unknown cache backend %q (simple|fast|free)", backend)
	}
}
