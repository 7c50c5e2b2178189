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
	"strconv"
	"strings"
	"time"
)

// dateLayouts are the recognized textual date formats, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006",
}

// Parse interprets raw text under the given declared type. The second return
// is false when the text does not parse; callers keep the cell as raw in
// that case rather than failing the load.
func Parse(tag TypeTag, raw string) (Value, bool) {
	switch tag {
	case TypeText:
		return Text(raw), true
	case TypeInteger:
		if i, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil {
			return Int(i), true
		}
	case TypeFloat:
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return Float(f), true
		}
	case TypeBoolean:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "t", "yes", "y", "1":
			return Bool(true), true
		case "false", "f", "no", "n", "0":
			return Bool(false), true
		}
	case TypeDate:
		trimmed := strings.TrimSpace(raw)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return Date(t), true
			}
		}
	case TypeUnknown:
		return Raw(raw), true
	}
	return Raw(raw), false
}

// Detect infers the most specific type a raw cell parses under. Integer is
// tried before float so "42" detects as integer; boolean tokens that are
// also digits ("0", "1") detect as integer first, which keeps numeric
// columns from flapping to boolean.
func Detect(raw string) Value {
	trimmed := strings.TrimSpace(raw)
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Float(f)
	}
	// Same token set as Parse's boolean branch, minus the digit tokens the
	// integer attempt above already consumed.
	switch strings.ToLower(trimmed) {
	case "true", "t", "yes", "y":
		return Bool(true)
	case "false", "f", "no", "n":
		return Bool(false)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return Date(t)
		}
	}
	return Text(raw)
}
