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
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		tag    TypeTag
		raw    string
		want   Value
		wantOK bool
	}{
		{"Integer", TypeInteger, "42", Int(42), true},
		{"Integer with spaces", TypeInteger, " 42 ", Int(42), true},
		{"Integer failure keeps raw", TypeInteger, "abc", Raw("abc"), false},
		{"Float", TypeFloat, "3.14", Float(3.14), true},
		{"Float accepts integer text", TypeFloat, "2", Float(2), true},
		{"Boolean yes", TypeBoolean, "yes", Bool(true), true},
		{"Boolean numeric", TypeBoolean, "0", Bool(false), true},
		{"Boolean failure", TypeBoolean, "maybe", Raw("maybe"), false},
		{"Date plain", TypeDate, "2024-03-15", Date(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)), true},
		{"Date with time", TypeDate, "2024-03-15 10:30:00", Date(time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)), true},
		{"Date slash layout", TypeDate, "03/15/2024", Date(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)), true},
		{"Text passes through", TypeText, "42", Text("42"), true},
		{"Unknown keeps raw", TypeUnknown, "whatever", Raw("whatever"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.tag, tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("Parse(%v, %q) ok = %v, want %v", tt.tag, tt.raw, ok, tt.wantOK)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%v, %q) = %v, want %v", tt.tag, tt.raw, got, tt.want)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Kind
	}{
		{"Integer before float", "42", KindInteger},
		{"Float", "3.14", KindFloat},
		{"Boolean word", "true", KindBoolean},
		{"Boolean single letter yes", "y", KindBoolean},
		{"Boolean single letter no", "n", KindBoolean},
		{"Digit stays integer", "1", KindInteger},
		{"Date", "2024-03-15", KindDate},
		{"Fallback text", "hello world", KindText},
		{"Empty is text", "", KindText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.raw).Kind(); got != tt.want {
				t.Errorf("Detect(%q).Kind() = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
