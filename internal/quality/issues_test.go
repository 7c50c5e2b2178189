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
package quality

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerAddAndUpdate(t *testing.T) {
	tr := NewTracker()

	first := tr.Add("mixed types in amount", "orders -> amount")
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 1, first.Version)
	assert.Equal(t, IssueOpen, first.Status)

	updated, err := tr.Update(first.ID, IssueUpdate{PotentialCause: "legacy import", Notes: "seen in batch 7"})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, "legacy import", updated.PotentialCause)
	assert.Equal(t, "mixed types in amount", updated.Description, "empty fields keep previous values")

	// Notes are always overwritten, even by empty updates.
	again, err := tr.Update(first.ID, IssueUpdate{})
	require.NoError(t, err)
	assert.Empty(t, again.Notes)

	assert.Len(t, tr.History(), 3)
	assert.Len(t, tr.Latest(), 1)
	assert.Equal(t, 3, tr.Latest()[0].Version)
}

func TestTrackerUpdateByZeroID(t *testing.T) {
	tr := NewTracker()
	tr.Add("first", "")
	tr.Add("second", "")

	// id 0 targets the last issue touched.
	updated, err := tr.Update(0, IssueUpdate{Notes: "note"})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.ID)
}

func TestTrackerResolve(t *testing.T) {
	tr := NewTracker()
	issue := tr.Add("dupes", "orders")

	resolved, err := tr.Resolve(issue.ID, "deduplicated upstream")
	require.NoError(t, err)
	assert.Equal(t, IssueResolved, resolved.Status)
	assert.Equal(t, "deduplicated upstream", resolved.Resolution)

	// Resolved issues reject further updates.
	_, err = tr.Update(issue.ID, IssueUpdate{Notes: "too late"})
	assert.Error(t, err)
}

func TestTrackerUpdateMissingIssue(t *testing.T) {
	tr := NewTracker()
	_, err := tr.Update(0, IssueUpdate{})
	assert.Error(t, err)

	tr.Add("x", "")
	_, err = tr.Update(99, IssueUpdate{})
	assert.Error(t, err)
}

func TestRecordReport(t *testing.T) {
	report := &Report{
		Table:            "orders",
		MixedTypeColumns: map[string][]string{"amount": {"float", "text"}},
		Missing: map[string]MissingColumn{
			"id":     {},
			"amount": {Count: 3, RowIndices: []int{1, 4, 7}},
		},
		DuplicateGroups: []DuplicateGroup{{Rows: []int{0, 5}}},
	}

	tr := NewTracker()
	tr.RecordReport(report)

	latest := tr.Latest()
	require.Len(t, latest, 3, "one issue per finding; zero-count columns excluded")
	for _, issue := range latest {
		assert.Equal(t, IssueOpen, issue.Status)
	}
}

func TestExportCSV(t *testing.T) {
	tr := NewTracker()
	issue := tr.Add("missing values in signup_date", "customers -> signup_date")
	_, err := tr.Resolve(issue.ID, "backfilled")
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, tr.ExportCSV(&buf))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus two versions")
	assert.Equal(t, issueCSVHeader, records[0])
	assert.Equal(t, "open", records[1][2])
	assert.Equal(t, "resolved", records[2][2])
	assert.Equal(t, "backfilled", records[2][4])
}

func TestRecordReportDeterministicOrder(t *testing.T) {
	report := &Report{
		Table: "t",
		Missing: map[string]MissingColumn{
			"zeta":  {Count: 1},
			"alpha": {Count: 2},
			"mid":   {Count: 3},
		},
	}

	first := NewTracker()
	first.RecordReport(report)
	for i := 0; i < 5; i++ {
		tr := NewTracker()
		tr.RecordReport(report)
		for j, issue := range tr.Latest() {
			assert.Equal(t, first.Latest()[j].Description, issue.Description)
		}
	}
}
