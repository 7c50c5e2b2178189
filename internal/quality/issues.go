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
	"fmt"
	"io"
	"sort"
	"strconv"
)

// IssueStatus is the lifecycle state of a tracked issue.
type IssueStatus string

const (
	IssueOpen     IssueStatus = "open"
	IssueResolved IssueStatus = "resolved"
)

// Issue is one version of a tracked data-quality finding. Updates append a
// new version rather than mutating history.
type Issue struct {
	ID             int
	Version        int
	Status         IssueStatus
	Description    string
	Resolution     string
	PotentialCause string
	RelevantData   string
	Notes          string
}

// IssueUpdate carries the fields of an update. Empty strings keep the
// previous value, except Notes, which is always overwritten.
type IssueUpdate struct {
	Status         IssueStatus
	Description    string
	PotentialCause string
	RelevantData   string
	Resolution     string
	Notes          string
}

// Tracker is a simple versioned log of data-quality issues found during
// exploration and cleaning. It lives in memory; ExportCSV persists it on
// demand.
type Tracker struct {
	history []Issue
	count   int
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Add opens a new issue and returns it.
func (t *Tracker) Add(description, relevantData string) Issue {
	t.count++
	issue := Issue{
		ID:           t.count,
		Version:      1,
		Status:       IssueOpen,
		Description:  description,
		RelevantData: relevantData,
	}
	t.history = append(t.history, issue)
	return issue
}

// latestIndex finds the most recent version of an issue; id 0 means the
// last issue touched.
func (t *Tracker) latestIndex(id int) (int, error) {
	if len(t.history) == 0 {
		return 0, fmt.Errorf("no issues tracked")
	}
	if id == 0 {
		return len(t.history) - 1, nil
	}
	for i := len(t.history) - 1; i >= 0; i-- {
		if t.history[i].ID == id {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no issue with id %d", id)
}

// Update appends a new version of the issue. Updating a resolved issue is
// an error.
func (t *Tracker) Update(id int, upd IssueUpdate) (Issue, error) {
	idx, err := t.latestIndex(id)
	if err != nil {
		return Issue{}, err
	}

	next := t.history[idx]
	if next.Status == IssueResolved {
		return Issue{}, fmt.Errorf("issue %d is already resolved", next.ID)
	}
	next.Version++

	if upd.Status != "" {
		next.Status = upd.Status
	}
	if upd.Description != "" {
		next.Description = upd.Description
	}
	if upd.PotentialCause != "" {
		next.PotentialCause = upd.PotentialCause
	}
	if upd.RelevantData != "" {
		next.RelevantData = upd.RelevantData
	}
	if upd.Resolution != "" {
		next.Resolution = upd.Resolution
	}
	next.Notes = upd.Notes

	t.history = append(t.history, next)
	return next, nil
}

// Resolve marks an issue resolved; id 0 resolves the last issue touched.
func (t *Tracker) Resolve(id int, resolution string) (Issue, error) {
	return t.Update(id, IssueUpdate{Status: IssueResolved, Resolution: resolution})
}

// History returns every issue version in chronological order.
func (t *Tracker) History() []Issue {
	return append([]Issue(nil), t.history...)
}

// Latest returns the most recent version of each issue, ordered by id.
func (t *Tracker) Latest() []Issue {
	byID := make(map[int]Issue, t.count)
	for _, issue := range t.history {
		byID[issue.ID] = issue
	}
	out := make([]Issue, 0, len(byID))
	for id := 1; id <= t.count; id++ {
		if issue, ok := byID[id]; ok {
			out = append(out, issue)
		}
	}
	return out
}

// RecordReport files one open issue per finding of a quality report, in
// column-name order.
func (t *Tracker) RecordReport(r *Report) {
	for _, col := range sortedKeys(r.MixedTypeColumns) {
		t.Add(fmt.Sprintf("mixed types %v in column %q", r.MixedTypeColumns[col], col), r.Table+" -> "+col)
	}
	for _, col := range sortedKeys(r.Missing) {
		if mc := r.Missing[col]; mc.Count > 0 {
			t.Add(fmt.Sprintf("%d missing values in column %q", mc.Count, col), r.Table+" -> "+col)
		}
	}
	if n := len(r.DuplicateGroups); n > 0 {
		t.Add(fmt.Sprintf("%d duplicate row groups", n), r.Table)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var issueCSVHeader = []string{
	"issue_id", "version", "status", "description", "resolution",
	"potential_cause", "relevant_data", "notes",
}

// ExportCSV writes the full issue history as CSV.
func (t *Tracker) ExportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(issueCSVHeader); err != nil {
		return err
	}
	for _, issue := range t.history {
		record := []string{
			strconv.Itoa(issue.ID),
			strconv.Itoa(issue.Version),
			string(issue.Status),
			issue.Description,
			issue.Resolution,
			issue.PotentialCause,
			issue.RelevantData,
			issue.Notes,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
