package export

import (
	"github.com/annolab/imagejudge/internal/domain"
)

// Table is the flattened form of a record collection: one row per record, one
// column per distinct question. Column order and row order are fixed by the
// input, never re-sorted, so flattening an unchanged store twice yields
// identical output.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Flatten builds the export table. Identifying columns (image_name and/or
// image_path, then prompt) come first; question columns are the union of all
// question keys across the records, in first-seen order. A record missing a
// question leaves that cell empty, which tolerates schema drift between
// sessions recorded at different times.
func Flatten(records []domain.AnnotationRecord) *Table {
	var hasName, hasPath bool
	for _, r := range records {
		if r.ImageName != "" {
			hasName = true
		}
		if r.ImagePath != "" {
			hasPath = true
		}
	}
	if !hasName && !hasPath {
		hasName = true
	}

	var identity []string
	if hasName {
		identity = append(identity, "image_name")
	}
	if hasPath {
		identity = append(identity, "image_path")
	}
	identity = append(identity, "prompt")

	var questions []string
	seen := make(map[string]struct{})
	for _, r := range records {
		for _, key := range r.Responses.Keys() {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			questions = append(questions, key)
		}
	}

	t := &Table{
		Columns: append(identity, questions...),
		Rows:    make([][]string, 0, len(records)),
	}

	for _, r := range records {
		row := make([]string, 0, len(t.Columns))
		if hasName {
			row = append(row, r.ImageName)
		}
		if hasPath {
			row = append(row, r.ImagePath)
		}
		row = append(row, r.Prompt)
		for _, q := range questions {
			value, _ := r.Responses.Get(q)
			row = append(row, value)
		}
		t.Rows = append(t.Rows, row)
	}

	return t
}
