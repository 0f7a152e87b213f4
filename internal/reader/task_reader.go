package reader

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/annolab/imagejudge/internal/apperr"
	"github.com/annolab/imagejudge/internal/domain"
)

// TaskListReader parses a declared task list: a JSON array of objects, each
// with string fields "image_path" and "prompt". The whole input is validated
// before any item is presented; a shape violation rejects the list.
type TaskListReader struct {
	reader io.Reader
}

func NewTaskListReader(reader io.Reader) *TaskListReader {
	return &TaskListReader{
		reader: reader,
	}
}

type taskEntry struct {
	ImagePath *string `json:"image_path"`
	Prompt    *string `json:"prompt"`
}

func (tr *TaskListReader) Read() ([]domain.TaskItem, error) {
	data, err := io.ReadAll(tr.reader)
	if err != nil {
		return nil, fmt.Errorf("read task list: %w", err)
	}

	var entries []taskEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, apperr.NewSchemaWrap("task list must be a JSON array of objects", err)
	}

	items := make([]domain.TaskItem, len(entries))
	for i, e := range entries {
		if e.ImagePath == nil || *e.ImagePath == "" {
			return nil, apperr.NewSchema(fmt.Sprintf("task list entry %d is missing %q", i, "image_path"))
		}
		if e.Prompt == nil {
			return nil, apperr.NewSchema(fmt.Sprintf("task list entry %d is missing %q", i, "prompt"))
		}
		items[i] = domain.TaskItem{
			Ref:    domain.ImageRef{Path: *e.ImagePath},
			Prompt: *e.Prompt,
		}
	}

	return items, nil
}
