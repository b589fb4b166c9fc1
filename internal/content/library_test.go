package content

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbedded(t *testing.T) {
	lib, err := Load()
	require.NoError(t, err)

	assert.Len(t, lib.Categories, 5)
	assert.Equal(t, "basics", lib.Categories[0].ID)
	assert.Equal(t, 5, lib.Categories[4].UnlockLevel)
	assert.Len(t, lib.EncouragingMessages, 8)
	assert.Len(t, lib.Lessons, 4)
	assert.Len(t, lib.Moods, 6)
	assert.Len(t, lib.FirstAid, 3)
	assert.Len(t, lib.CommonQuestions, 6)

	perCategory := map[string]int{}
	for _, q := range lib.Questions {
		perCategory[q.Category]++
	}
	for _, c := range lib.Categories {
		assert.Positive(t, perCategory[c.ID], "category %s has no questions", c.ID)
	}
}

func TestLookups(t *testing.T) {
	lib, err := Load()
	require.NoError(t, err)

	lesson, ok := lib.Lesson("ginger")
	require.True(t, ok)
	assert.Equal(t, "Fresh Ginger Tea", lesson.Remedy)

	_, ok = lib.Lesson("garlic")
	assert.False(t, ok)

	mood, ok := lib.Mood("anxious")
	require.True(t, ok)
	assert.Equal(t, "Anxious", mood.Label)
}

func TestRegionFilters(t *testing.T) {
	lib, err := Load()
	require.NoError(t, err)

	assert.Len(t, lib.ResourcesFor("User Specified"), 3)
	assert.Len(t, lib.RemediesFor("User Specified"), 3)

	remedies := lib.RemediesFor("Temperate")
	require.Len(t, remedies, 4)
	assert.Equal(t, "Echinacea", remedies[3].Name)
}

func TestLoadFSRejectsBadQuestion(t *testing.T) {
	base, err := Load()
	require.NoError(t, err)
	require.NotNil(t, base)

	responses, err := dataFS.ReadFile("data/responses.yaml")
	require.NoError(t, err)

	fsys := fstest.MapFS{
		"responses.yaml": {Data: responses},
		"quest.yaml": {Data: []byte(`
categories:
  - {id: basics, name: Basics, unlock_level: 1}
questions:
  - {id: "1", category: basics, prompt: "?", options: [a, b], correct_index: 0}
`)},
		"lessons.yaml":   {Data: []byte("lessons: []\n")},
		"location.yaml":  {Data: []byte("resources: []\n")},
		"wellbeing.yaml": {Data: []byte("moods: []\n")},
	}

	_, err = LoadFS(fsys)
	assert.ErrorContains(t, err, "want 4 options")
}
