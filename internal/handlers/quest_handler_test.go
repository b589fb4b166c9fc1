package handlers

import (
	"html"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"carewise/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func currentQuestion(t *testing.T, c *testClient) models.Question {
	t.Helper()
	v := c.visitor()
	v.mu.Lock()
	defer v.mu.Unlock()
	q, ok := v.quest.Current()
	require.True(t, ok, "quest should have an active question")
	return q
}

func TestQuestFlow(t *testing.T) {
	ts := newTestServer(t)
	c := ts.newClient(t)

	rec := c.postForm("/health-quest/start", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	q := currentQuestion(t, c)
	assert.Equal(t, "basics", q.Category)

	rec = c.postForm("/health-quest/answer", url.Values{"answer": {strconv.Itoa(q.CorrectIndex)}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = c.get("/health-quest")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Correct! You earned 10 experience points.")
	assert.Contains(t, body, html.EscapeString(q.Explanation))

	rec = c.postForm("/health-quest/answer", url.Values{"answer": {"0"}})
	assert.Equal(t, http.StatusConflict, rec.Code, "a question is scored once")

	rec = c.postForm("/health-quest/next", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	next := currentQuestion(t, c)
	assert.NotEqual(t, q.ID, next.ID)

	ts.drain(t)
	rows := ts.sink.inserted(models.TableQuizResults)
	require.Len(t, rows, 1)
	result := rows[0].(models.QuizResult)
	assert.Equal(t, c.id, result.UserID)
	assert.Equal(t, 1, result.Score)
	assert.Equal(t, 1, result.TotalQuestions)
}

func TestQuestWrongAnswerStillEarnsXP(t *testing.T) {
	ts := newTestServer(t)
	c := ts.newClient(t)

	require.Equal(t, http.StatusSeeOther, c.postForm("/health-quest/start", nil).Code)
	q := currentQuestion(t, c)
	wrong := (q.CorrectIndex + 1) % len(q.Options)

	require.Equal(t, http.StatusSeeOther, c.postForm("/health-quest/answer", url.Values{"answer": {strconv.Itoa(wrong)}}).Code)

	v := c.visitor()
	v.mu.Lock()
	progress := v.quest.Progress()
	v.mu.Unlock()
	assert.Equal(t, 5, progress.Experience)
	assert.Equal(t, 1, progress.QuestionsAnswered)
	assert.Equal(t, 0, progress.CorrectAnswers)
}

func TestQuestErrors(t *testing.T) {
	ts := newTestServer(t)
	c := ts.newClient(t)

	tests := []struct {
		name   string
		path   string
		values url.Values
		status int
	}{
		{"answer before start", "/health-quest/answer", url.Values{"answer": {"0"}}, http.StatusConflict},
		{"next before start", "/health-quest/next", nil, http.StatusConflict},
		{"non-numeric answer", "/health-quest/answer", url.Values{"answer": {"b"}}, http.StatusBadRequest},
		{"unknown category", "/health-quest/category", url.Values{"category": {"astrology"}}, http.StatusBadRequest},
		{"locked category", "/health-quest/category", url.Values{"category": {"emergency"}}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := c.postForm(tt.path, tt.values)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `role="alert"`)
		})
	}
}

func TestQuestOutOfRangeAnswer(t *testing.T) {
	ts := newTestServer(t)
	c := ts.newClient(t)

	require.Equal(t, http.StatusSeeOther, c.postForm("/health-quest/start", nil).Code)
	rec := c.postForm("/health-quest/answer", url.Values{"answer": {"9"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuestResetClearsProgress(t *testing.T) {
	ts := newTestServer(t)
	c := ts.newClient(t)

	require.Equal(t, http.StatusSeeOther, c.postForm("/health-quest/start", nil).Code)
	q := currentQuestion(t, c)
	require.Equal(t, http.StatusSeeOther, c.postForm("/health-quest/answer", url.Values{"answer": {strconv.Itoa(q.CorrectIndex)}}).Code)

	require.Equal(t, http.StatusSeeOther, c.postForm("/health-quest/reset", nil).Code)

	v := c.visitor()
	v.mu.Lock()
	progress := v.quest.Progress()
	started := v.quest.Started()
	v.mu.Unlock()
	assert.Equal(t, 1, progress.Level)
	assert.Zero(t, progress.Experience)
	assert.False(t, started)

	rec := c.get("/health-quest")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Progress reset")
}
