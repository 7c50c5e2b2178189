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
package query

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// dialect holds the rendering hooks that differ between SQL dialects:
// identifier quoting, text casts, the string-length function and the
// parameter placeholder format. Adding a dialect here (plus a driver
// handler in sqldb) is the supported extension point.
type dialect struct {
	name        string
	placeholder sq.PlaceholderFormat
	lengthFn    string
	quote       func(string) string
	castText    func(string) string
}

var dialects = map[string]dialect{
	"postgres": {
		name:        "postgres",
		placeholder: sq.Dollar,
		lengthFn:    "LENGTH",
		quote: func(name string) string {
			return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
		},
		castText: func(expr string) string {
			return fmt.Sprintf("CAST(%s AS TEXT)", expr)
		},
	},
	"mysql": {
		name:        "mysql",
		placeholder: sq.Question,
		lengthFn:    "LENGTH",
		quote: func(name string) string {
			return "`" + strings.ReplaceAll(name, "`", "``") + "`"
		},
		castText: func(expr string) string {
			return fmt.Sprintf("CAST(%s AS CHAR)", expr)
		},
	},
	"sqlserver": {
		name:        "sqlserver",
		placeholder: sq.AtP,
		lengthFn:    "LEN",
		quote: func(name string) string {
			return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
		},
		castText: func(expr string) string {
			return fmt.Sprintf("CAST(%s AS NVARCHAR(MAX))", expr)
		},
	},
}

func dialectFor(name string) (dialect, error) {
	d, ok := dialects[name]
	if !ok {
		return dialect{}, fmt.Errorf("unsupported query dialect: %s", name)
	}
	return d, nil
}

// stringLiteral renders a single-quoted SQL string literal.
func stringLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
