package tasks

import (
	"io"

	"github.com/annolab/imagejudge/internal/domain"
	"github.com/annolab/imagejudge/internal/reader"
)

// Source normalizes an ordered task list for one session, whatever the input
// mode.
type Source interface {
	Load() ([]domain.TaskItem, error)
}

// DeclaredSource builds the task list from a JSON document of image_path and
// prompt pairs. Validation happens up front; image resolution stays lazy.
type DeclaredSource struct {
	input io.Reader
}

func Declared(input io.Reader) *DeclaredSource {
	return &DeclaredSource{
		input: input,
	}
}

func (s *DeclaredSource) Load() ([]domain.TaskItem, error) {
	return reader.NewTaskListReader(s.input).Read()
}

// AdHocSource makes one task item per uploaded image, in upload order, with
// an empty prompt to be filled in at presentation time.
type AdHocSource struct {
	catalog *Catalog
}

func AdHoc(catalog *Catalog) *AdHocSource {
	return &AdHocSource{
		catalog: catalog,
	}
}

func (s *AdHocSource) Load() ([]domain.TaskItem, error) {
	names := s.catalog.Names()
	items := make([]domain.TaskItem, len(names))
	for i, name := range names {
		items[i] = domain.TaskItem{
			Ref: domain.ImageRef{Name: name},
		}
	}
	return items, nil
}
