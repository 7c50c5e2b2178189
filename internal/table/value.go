/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package table

import (
	"fmt"
	"strconv"
	"time"
)

// Kind is the runtime type tag of a single cell value.
type Kind uint8

const (
	KindNull Kind = iota
	KindText
	KindInteger
	KindFloat
	KindBoolean
	KindDate
	// KindRaw marks a cell whose text failed to parse under the column's
	// type. The original bytes are preserved instead of aborting the load.
	KindRaw
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindDate:
		return "date"
	case KindRaw:
		return "raw"
	}
	return "invalid"
}

// TypeTag maps a value kind onto the schema-level type enumeration. Raw
// cells map to unknown.
func (k Kind) TypeTag() TypeTag {
	switch k {
	case KindText:
		return TypeText
	case KindInteger:
		return TypeInteger
	case KindFloat:
		return TypeFloat
	case KindBoolean:
		return TypeBoolean
	case KindDate:
		return TypeDate
	}
	return TypeUnknown
}

// Value is one tagged cell. The zero value is null.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
	t    time.Time
}

func Null() Value             { return Value{kind: KindNull} }
func Text(s string) Value     { return Value{kind: KindText, s: s} }
func Int(i int64) Value       { return Value{kind: KindInteger, i: i} }
func Float(f float64) Value   { return Value{kind: KindFloat, f: f} }
func Bool(b bool) Value       { return Value{kind: KindBoolean, b: b} }
func Date(t time.Time) Value  { return Value{kind: KindDate, t: t} }
func Raw(s string) Value      { return Value{kind: KindRaw, s: s} }

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsNull() bool  { return v.kind == KindNull }

// Text returns the textual payload of a text or raw value.
func (v Value) Text() string { return v.s }

func (v Value) Int64() int64       { return v.i }
func (v Value) Float64() float64   { return v.f }
func (v Value) Bool() bool         { return v.b }
func (v Value) Time() time.Time    { return v.t }

// String renders the value for display. Null renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindText, KindRaw:
		return v.s
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindDate:
		return v.t.Format("2006-01-02 15:04:05")
	}
	return ""
}

// Key returns a stable representation that is equal iff Equal reports true.
// Used for duplicate grouping.
func (v Value) Key() string {
	if v.kind == KindDate {
		// Full precision, zone-normalized: Equal compares instants, so two
		// representations of the same instant must share a key and
		// sub-second differences must not.
		return fmt.Sprintf("%d:%s", v.kind, v.t.UTC().Format(time.RFC3339Nano))
	}
	return fmt.Sprintf("%d:%s", v.kind, v.String())
}

// Equal reports exact equality of kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindText, KindRaw:
		return v.s == o.s
	case KindInteger:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindBoolean:
		return v.b == o.b
	case KindDate:
		return v.t.Equal(o.t)
	}
	return false
}

// Arg converts the value into a driver-friendly argument for parameterized
// queries.
func (v Value) Arg() interface{} {
	switch v.kind {
	case KindNull:
		return nil
	case KindText, KindRaw:
		return v.s
	case KindInteger:
		return v.i
	case KindFloat:
		return v.f
	case KindBoolean:
		return v.b
	case KindDate:
		return v.t
	}
	return nil
}
