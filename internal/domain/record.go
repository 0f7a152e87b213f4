package domain

// AnnotationRecord is a finalized set of answers for one task item, the unit
// of persistence. Exactly one of ImageName and ImagePath is set: catalog-backed
// sessions identify the image by its display name, filesystem sessions keep
// the full path. Immutable once created.
type AnnotationRecord struct {
	ImageName string    `json:"image_name,omitempty"`
	ImagePath string    `json:"image_path,omitempty"`
	Prompt    string    `json:"prompt"`
	Responses AnswerSet `json:"responses"`
}

// Identity returns whichever image identifier the record carries.
func (r AnnotationRecord) Identity() string {
	if r.ImageName != "" {
		return r.ImageName
	}
	return r.ImagePath
}
