package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"carewise/internal/models"
	"carewise/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServerRequiresCollaborators(t *testing.T) {
	_, err := NewServer(Options{})
	require.Error(t, err)
}

func TestPagesRender(t *testing.T) {
	ts := newTestServer(t)
	c := ts.newClient(t)

	pages := map[string]string{
		"/":                "CareWise",
		"/ask-ai":          "Ask AI",
		"/medicine":        "Medicine",
		"/health-form":     "Health Assessment",
		"/mental-health":   "Mental Health",
		"/awareness":       "Health Awareness",
		"/location":        "Near Me",
		"/settings":        "Accessibility Settings",
		"/health-quest":    "Health Quest",
		"/sunshine-hero":   "Sunshine Hero",
		"/carechain-vault": "CareChain Vault",
	}
	for path, title := range pages {
		t.Run(path, func(t *testing.T) {
			rec := c.get(path)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), title)
			assert.Contains(t, rec.Body.String(), `id="announcer"`)
		})
	}
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	ts := newTestServer(t)
	c := ts.newClient(t)

	assert.Equal(t, http.StatusNotFound, c.get("/no-such-page").Code)
	assert.Equal(t, http.StatusNotFound, c.get("/awareness/no-such-lesson").Code)
}

func TestVisitorCookieIsIssuedOnce(t *testing.T) {
	ts := newTestServer(t)
	c := ts.newClient(t)

	rec := c.get("/settings")
	require.Equal(t, http.StatusOK, rec.Code)
	for _, cookie := range rec.Result().Cookies() {
		assert.NotEqual(t, security.VisitorCookieName, cookie.Name, "existing visitor should keep their cookie")
	}
	assert.Equal(t, 1, ts.visitors.(interface{ Len() int }).Len())
}

func TestInvalidVisitorCookieStartsNewVisitor(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: security.VisitorCookieName, Value: "forged"})
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var issued bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == security.VisitorCookieName {
			issued = true
			assert.NotEqual(t, "forged", cookie.Value)
		}
	}
	assert.True(t, issued)
}

func TestCSRFProtectRejectsMissingToken(t *testing.T) {
	ts := newTestServer(t)
	c := ts.newClient(t)

	rec := c.postForm("/location", url.Values{
		"location":    {"Leeds"},
		CSRFFormField: {"bogus"},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	other := ts.newClient(t)
	rec = c.postForm("/location", url.Values{
		"location":    {"Leeds"},
		CSRFFormField: {other.csrf},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code, "another visitor's token must not be accepted")
}

func TestRateLimitReturns429(t *testing.T) {
	ts := newTestServer(t, withRateLimit(1))
	c := ts.newClient(t)

	rec := c.postForm("/ask-ai", url.Values{"question": {"How much water should I drink?"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = c.postForm("/ask-ai", url.Values{"question": {"And sleep?"}})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestAnnouncementsSurviveRedirect(t *testing.T) {
	ts := newTestServer(t)
	c := ts.newClient(t)

	rec := c.postForm("/location", url.Values{"location": {"Leeds"}, "region": {"temperate"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/location", rec.Header().Get("Location"))

	rec = c.get("/location")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Showing health resources near Leeds")

	body := decodeJSON[map[string][]string](t, c.get("/api/announcements"))
	assert.Empty(t, body["messages"], "rendered announcements are not repeated")
}

func TestLocationRejectsUnknownRegion(t *testing.T) {
	ts := newTestServer(t)
	c := ts.newClient(t)

	rec := c.postForm("/location", url.Values{"location": {"Leeds"}, "region": {"atlantis"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please choose a region")
}

func TestAskAIRecordsConversation(t *testing.T) {
	ts := newTestServer(t)
	c := ts.newClient(t)

	rec := c.postForm("/ask-ai", url.Values{"question": {"I have a headache"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = c.get("/ask-ai")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "I have a headache")

	ts.drain(t)
	rows := ts.sink.inserted(models.TableConversations)
	require.Len(t, rows, 1)
	conv := rows[0].(models.Conversation)
	assert.Equal(t, c.id, conv.UserID)
	assert.Equal(t, "I have a headache", conv.Question)
	assert.NotEmpty(t, conv.Answer)
}

func TestAskAIRejectsEmptyQuestion(t *testing.T) {
	ts := newTestServer(t)
	c := ts.newClient(t)

	rec := c.postForm("/ask-ai", url.Values{"question": {"   "}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMentalHealthCheckin(t *testing.T) {
	ts := newTestServer(t)
	c := ts.newClient(t)

	rec := c.postForm("/mental-health", url.Values{"mood": {"unknown"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.postForm("/mental-health", url.Values{"mood": {"good"}, "notes": {"slept well"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	ts.drain(t)
	rows := ts.sink.inserted(models.TableMoodCheckins)
	require.Len(t, rows, 1)
	checkin := rows[0].(models.MoodCheckin)
	assert.Equal(t, "good", checkin.Mood)
	assert.Equal(t, "slept well", checkin.Notes)
	assert.NotEmpty(t, checkin.AIResponse)
}

func TestMetricsLabelRequestsByRoute(t *testing.T) {
	ts := newTestServer(t)
	c := ts.newClient(t)

	c.get("/awareness/sunlight")
	c.get("/awareness/ginger")
	c.get("/nowhere")

	assert.Equal(t, uint64(2), requestCount(t, ts, "GET /awareness/{id}", "200"))
	assert.Equal(t, uint64(1), requestCount(t, ts, "unmatched", "404"))

	rec := c.get("/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "carewise_http_request_duration_seconds"))
}

// requestCount returns how many GET requests were observed for route.
func requestCount(t *testing.T, ts *testServer, route, status string) uint64 {
	t.Helper()
	families, err := ts.metrics.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != "carewise_http_request_duration_seconds" {
			continue
		}
		for _, m := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["route"] == route && labels["method"] == "GET" && labels["status"] == status {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func TestHealthzReflectsStartup(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	ts.startup.MarkReady()

	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeJSON[StartupStatus](t, rec)
	assert.True(t, status.Ready)
	assert.Equal(t, 100, status.Progress)
}

func TestStartupProgress(t *testing.T) {
	s := NewStartup("one", "two", "three", "four")

	s.SetCurrentStep("one")
	s.CompleteStep("one")
	s.CompleteStep("missing")

	status := s.Status()
	assert.False(t, status.Ready)
	assert.Equal(t, "one", status.Current)
	assert.Equal(t, 25, status.Progress)
	assert.True(t, status.Steps[0].Completed)
	assert.False(t, status.Steps[1].Completed)

	s.MarkReady()
	assert.True(t, s.IsReady())
	for _, step := range s.Status().Steps {
		assert.True(t, step.Completed)
	}
}
