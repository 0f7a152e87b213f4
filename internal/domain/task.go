package domain

import "path/filepath"

// ImageRef identifies the image of a task item. Either Path points at a
// declared or filesystem location, or Name is the display name of an uploaded
// file whose bytes live in the session's catalog.
type ImageRef struct {
	Path string `json:"path,omitempty"`
	Name string `json:"name,omitempty"`
}

// DisplayName is the name shown to the annotator and matched against the
// upload catalog: the upload name when present, otherwise the final path
// component of the declared path.
func (r ImageRef) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return filepath.Base(r.Path)
}

// TaskItem is one (image, prompt) pair to be judged. The task list is ordered
// and immutable once a session starts.
type TaskItem struct {
	Ref    ImageRef
	Prompt string
}
