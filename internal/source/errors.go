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
package source

import "fmt"

// SourceNotFoundError reports a missing or unreachable source location: a
// directory that does not exist, or a file that is not present in it.
type SourceNotFoundError struct {
	Source Kind
	Path   string
	Err    error
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("%s source not found at %q: %v", e.Source, e.Path, e.Err)
}

func (e *SourceNotFoundError) Unwrap() error { return e.Err }

// ConnectionError reports a database connection that could not be
// established or maintained. Connections are never retried automatically.
type ConnectionError struct {
	Dialect string
	Host    string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot connect to %s database at %q: %v", e.Dialect, e.Host, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// MalformedFileError reports a structural defect in a delimited file, such
// as a missing header row or a row with the wrong column count. Cell-level
// parse failures are not structural and never raise this.
type MalformedFileError struct {
	File string
	Line int
	Err  error
}

func (e *MalformedFileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed file %q at line %d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("malformed file %q: %v", e.File, e.Err)
}

func (e *MalformedFileError) Unwrap() error { return e.Err }

// QueryExecutionError wraps a driver error for a statement the database
// rejected or failed to run.
type QueryExecutionError struct {
	Table string
	Query string
	Err   error
}

func (e *QueryExecutionError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("query against table %q failed: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("query execution failed: %v", e.Err)
}

func (e *QueryExecutionError) Unwrap() error { return e.Err }

// TimeoutError reports an operation that exceeded its caller-specified
// deadline. The adapter guarantees the underlying connection stays usable.
type TimeoutError struct {
	Source    Kind
	Operation string
	Table     string
	Err       error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s %s on table %q timed out: %v", e.Source, e.Operation, e.Table, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }
