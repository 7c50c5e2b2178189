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
package file

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/databridger/databridger/internal/source"
	"github.com/databridger/databridger/internal/table"
)

// columnVote accumulates parse outcomes for one column during sampling.
type columnVote struct {
	counts  map[table.TypeTag]int
	sampled int
	nulls   int
}

func (v *columnVote) observe(tag table.TypeTag) {
	if v.counts == nil {
		v.counts = make(map[table.TypeTag]int)
	}
	v.counts[tag]++
	v.sampled++
}

// winner picks the majority type over the sampled values. Ties break by the
// more general type so a column never flaps between runs: text beats date
// beats float beats integer beats boolean.
func (v *columnVote) winner() table.TypeTag {
	if v.sampled == 0 {
		return table.TypeUnknown
	}
	order := []table.TypeTag{table.TypeText, table.TypeDate, table.TypeFloat, table.TypeInteger, table.TypeBoolean}
	best := table.TypeUnknown
	bestCount := 0
	for _, tag := range order {
		if c := v.counts[tag]; c > bestCount {
			best = tag
			bestCount = c
		}
	}
	// Integer columns with any float among them widen to float; mixing the
	// two is almost always one numeric column.
	if best == table.TypeInteger && v.counts[table.TypeFloat] > 0 {
		return table.TypeFloat
	}
	return best
}

// InferSchema reads a bounded sample of rows and infers each column's type
// by majority vote over the parse outcome of every sampled value. A column
// where nothing parses (all nulls in the sample) comes back unknown.
func (a *Adapter) InferSchema(ctx context.Context, name string) (table.Schema, error) {
	path, err := a.tablePath(name)
	if err != nil {
		return table.Schema{}, err
	}

	cr, closer, err := a.openReader(path)
	if err != nil {
		return table.Schema{}, err
	}
	defer closer.Close()

	header, err := readHeader(cr, path)
	if err != nil {
		return table.Schema{}, err
	}

	votes := make([]columnVote, len(header))
	line := 1
	for sampled := 0; sampled < a.sampleSize; sampled++ {
		if err := a.checkDeadline(ctx, "infer_schema", name); err != nil {
			return table.Schema{}, err
		}

		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return table.Schema{}, &source.MalformedFileError{File: path, Line: line, Err: err}
		}

		for i, raw := range record {
			if a.isNullToken(raw) {
				votes[i].nulls++
				continue
			}
			detected := table.Detect(raw)
			votes[i].observe(detected.Kind().TypeTag())
		}
	}

	cols := make([]table.ColumnSpec, len(header))
	for i, colName := range header {
		cols[i] = table.ColumnSpec{
			Name:     colName,
			Type:     votes[i].winner(),
			Nullable: votes[i].nulls > 0,
		}
	}

	schema, err := table.NewSchema(cols)
	if err != nil {
		return table.Schema{}, &source.MalformedFileError{File: path, Err: err}
	}

	a.logger.Debug("inferred schema", zap.String("table", name), zap.Int("columns", len(cols)))
	return schema, nil
}
