package reader

import (
	"strings"
	"testing"

	"github.com/annolab/imagejudge/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskListReader_Read(t *testing.T) {
	taskJSON := `[
		{"image_path": "renders/portrait_01.png", "prompt": "a watercolor portrait"},
		{"image_path": "renders/portrait_02.png", "prompt": "an oil painting"}
	]`

	items, err := NewTaskListReader(strings.NewReader(taskJSON)).Read()
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "renders/portrait_01.png", items[0].Ref.Path)
	assert.Equal(t, "a watercolor portrait", items[0].Prompt)
	assert.Equal(t, "portrait_01.png", items[0].Ref.DisplayName())
	assert.Equal(t, "renders/portrait_02.png", items[1].Ref.Path)
}

func TestTaskListReader_AllowsEmptyPrompt(t *testing.T) {
	taskJSON := `[{"image_path": "a.png", "prompt": ""}]`

	items, err := NewTaskListReader(strings.NewReader(taskJSON)).Read()
	require.NoError(t, err)
	assert.Equal(t, "", items[0].Prompt)
}

func TestTaskListReader_RejectsMissingImagePath(t *testing.T) {
	taskJSON := `[{"prompt": "no image here"}]`

	_, err := NewTaskListReader(strings.NewReader(taskJSON)).Read()
	require.Error(t, err)

	var se *apperr.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Message, "entry 0")
	assert.Contains(t, se.Message, "image_path")
}

func TestTaskListReader_RejectsMissingPrompt(t *testing.T) {
	taskJSON := `[
		{"image_path": "a.png", "prompt": "ok"},
		{"image_path": "b.png"}
	]`

	_, err := NewTaskListReader(strings.NewReader(taskJSON)).Read()
	require.Error(t, err)

	var se *apperr.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Message, "entry 1")
	assert.Contains(t, se.Message, "prompt")
}

func TestTaskListReader_RejectsNonArray(t *testing.T) {
	_, err := NewTaskListReader(strings.NewReader(`{"image_path": "a.png"}`)).Read()

	var se *apperr.SchemaError
	require.ErrorAs(t, err, &se)
}

func TestTaskListReader_RejectsMalformedJSON(t *testing.T) {
	_, err := NewTaskListReader(strings.NewReader(`[{]`)).Read()

	var se *apperr.SchemaError
	require.ErrorAs(t, err, &se)
}

func TestTaskListReader_EmptyListIsValidInput(t *testing.T) {
	// The navigator, not the reader, decides that an empty list cannot
	// start a session.
	items, err := NewTaskListReader(strings.NewReader(`[]`)).Read()
	require.NoError(t, err)
	assert.Empty(t, items)
}
