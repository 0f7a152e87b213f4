package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerSet_PreservesInsertionOrder(t *testing.T) {
	var a AnswerSet
	a.Set("q2", "Yes")
	a.Set("q1", "No")
	a.Set("q3", "Unclear")

	assert.Equal(t, []string{"q2", "q1", "q3"}, a.Keys())
}

func TestAnswerSet_SetOverwritesKeepingPosition(t *testing.T) {
	var a AnswerSet
	a.Set("q1", "1")
	a.Set("q2", "2")
	a.Set("q1", "5")

	assert.Equal(t, []string{"q1", "q2"}, a.Keys())
	v, ok := a.Get("q1")
	require.True(t, ok)
	assert.Equal(t, "5", v)
}

func TestAnswerSet_JSONRoundTripKeepsOrder(t *testing.T) {
	var a AnswerSet
	a.Set("Is the composition coherent?", "4")
	a.Set("Are colors natural?", "2")
	a.Set("Any out-of-place objects?", "1")

	data, err := json.Marshal(a)
	require.NoError(t, err)

	var back AnswerSet
	require.NoError(t, json.Unmarshal(data, &back))

	assert.Equal(t, a.Keys(), back.Keys())
	for _, k := range a.Keys() {
		want, _ := a.Get(k)
		got, ok := back.Get(k)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestAnswerSet_MarshalEscapesKeys(t *testing.T) {
	var a AnswerSet
	a.Set(`does it "blend"?`, "Yes")

	data, err := json.Marshal(a)
	require.NoError(t, err)

	var back AnswerSet
	require.NoError(t, json.Unmarshal(data, &back))
	v, ok := back.Get(`does it "blend"?`)
	require.True(t, ok)
	assert.Equal(t, "Yes", v)
}

func TestAnswerSet_UnmarshalRejectsNonObject(t *testing.T) {
	var a AnswerSet
	err := json.Unmarshal([]byte(`["q1","1"]`), &a)
	assert.Error(t, err)
}

func TestAnswerSet_UnmarshalRejectsNonStringValue(t *testing.T) {
	var a AnswerSet
	err := json.Unmarshal([]byte(`{"q1": 3}`), &a)
	assert.Error(t, err)
}

func TestAnswerSet_ZeroValueUsable(t *testing.T) {
	var a AnswerSet
	assert.Equal(t, 0, a.Len())
	_, ok := a.Get("missing")
	assert.False(t, ok)

	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}
