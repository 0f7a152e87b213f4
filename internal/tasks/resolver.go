package tasks

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/annolab/imagejudge/internal/apperr"
	"github.com/annolab/imagejudge/internal/domain"
)

// Resolver turns an image reference into bytes. Resolution is lazy: it runs
// when an item is presented, not when the task list is loaded, so a missing
// later image does not block earlier items.
type Resolver interface {
	Resolve(ref domain.ImageRef) ([]byte, error)
}

// CatalogResolver matches a reference's display name against the session's
// upload catalog (declared and ad hoc modes).
type CatalogResolver struct {
	catalog *Catalog
}

func NewCatalogResolver(catalog *Catalog) *CatalogResolver {
	return &CatalogResolver{
		catalog: catalog,
	}
}

func (r *CatalogResolver) Resolve(ref domain.ImageRef) ([]byte, error) {
	name := ref.DisplayName()
	data, ok := r.catalog.Get(name)
	if !ok {
		return nil, &apperr.ResourceNotFoundError{Name: name}
	}
	return data, nil
}

// FileResolver reads a reference's path from the filesystem, relative paths
// against an optional root.
type FileResolver struct {
	root string
}

func NewFileResolver(root string) *FileResolver {
	return &FileResolver{
		root: root,
	}
}

func (r *FileResolver) Resolve(ref domain.ImageRef) ([]byte, error) {
	path := ref.Path
	if r.root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(r.root, path)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &apperr.ResourceNotFoundError{Name: ref.Path}
	}
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", path, err)
	}
	return data, nil
}
