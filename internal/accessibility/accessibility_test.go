package accessibility

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"carewise/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestCookieRoundTrip(t *testing.T) {
	s := models.AccessibilitySettings{
		Mode:          models.ModeDyslexiaFriendly,
		FontSize:      models.FontExtraLarge,
		HighContrast:  true,
		VoiceEnabled:  false,
		ReducedMotion: true,
		ContrastMode:  models.ContrastMedium,
	}
	enc, err := Encode(s)
	require.NoError(t, err)

	got, err := Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestDecodeMergesOverDefaults(t *testing.T) {
	enc := base64Of(`{"fontSize":"large"}`)
	got, err := Decode(enc)
	require.NoError(t, err)

	want := models.DefaultAccessibilitySettings()
	want.FontSize = models.FontLarge
	assert.Equal(t, want, got)
}

func TestDecodeMalformed(t *testing.T) {
	for _, v := range []string{"%%%", base64Of("{not json"), base64Of(`{"mode":"loud"}`)} {
		got, err := Decode(v)
		assert.ErrorIs(t, err, ErrMalformedSettings)
		assert.Equal(t, models.DefaultAccessibilitySettings(), got)
	}
}

func TestStoreLoad(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store := NewStore(zap.New(core))

	t.Run("no cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		got, saved := store.Load(r)
		assert.False(t, saved)
		assert.Equal(t, models.DefaultAccessibilitySettings(), got)
	})

	t.Run("malformed cookie keeps defaults and logs", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage!"})
		got, saved := store.Load(r)
		assert.False(t, saved)
		assert.Equal(t, models.DefaultAccessibilitySettings(), got)
		assert.Equal(t, 1, logs.FilterMessage("ignoring accessibility cookie").Len())
	})

	t.Run("reduced motion hint overrides saved", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		enc, _ := Encode(models.DefaultAccessibilitySettings())
		r.AddCookie(&http.Cookie{Name: CookieName, Value: enc})
		r.Header.Set(HintReducedMotion, "reduce")
		got, saved := store.Load(r)
		assert.True(t, saved)
		assert.True(t, got.ReducedMotion)
	})

	t.Run("dark scheme only without saved settings", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(HintColorScheme, "dark")
		got, _ := store.Load(r)
		assert.Equal(t, models.ContrastHigh, got.ContrastMode)

		enc, _ := Encode(models.DefaultAccessibilitySettings())
		r.AddCookie(&http.Cookie{Name: CookieName, Value: enc})
		got, _ = store.Load(r)
		assert.Equal(t, models.ContrastLight, got.ContrastMode)
	})
}

func TestStoreSave(t *testing.T) {
	store := NewStore(zap.NewNop())
	r := httptest.NewRequest(http.MethodPost, "/settings", nil)
	w := httptest.NewRecorder()

	s := models.DefaultAccessibilitySettings()
	s.FontSize = models.FontSmall
	require.NoError(t, store.Save(w, r, s))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	got, saved := store.Load(next)
	assert.True(t, saved)
	assert.Equal(t, s, got)
}

func TestPatchApply(t *testing.T) {
	cur := models.DefaultAccessibilitySettings()

	large := models.FontLarge
	off := false
	next, err := Patch{FontSize: &large, VoiceEnabled: &off}.Apply(cur)
	require.NoError(t, err)
	assert.Equal(t, models.FontLarge, next.FontSize)
	assert.False(t, next.VoiceEnabled)
	assert.Equal(t, cur.Mode, next.Mode)

	bad := models.ContrastMode("neon")
	unchanged, err := Patch{ContrastMode: &bad, FontSize: &large}.Apply(cur)
	assert.Error(t, err)
	assert.Equal(t, cur, unchanged)

	assert.True(t, Patch{}.Empty())
}

func TestPatchFromForm(t *testing.T) {
	form := url.Values{
		"mode":          {"cognitive-support"},
		"voiceEnabled":  {"false", "on"},
		"reducedMotion": {"false"},
	}
	p, err := PatchFromForm(form)
	require.NoError(t, err)
	require.NotNil(t, p.Mode)
	assert.Equal(t, models.ModeCognitiveSupport, *p.Mode)
	assert.True(t, *p.VoiceEnabled)
	assert.False(t, *p.ReducedMotion)
	assert.Nil(t, p.FontSize)
	assert.Nil(t, p.HighContrast)

	_, err = PatchFromForm(url.Values{"highContrast": {"maybe"}})
	assert.Error(t, err)
}

func TestPresent(t *testing.T) {
	tests := []struct {
		name     string
		settings func(*models.AccessibilitySettings)
		family   string
		size     string
		classes  string
	}{
		{"defaults", func(*models.AccessibilitySettings) {}, "Inter, sans-serif", "16px", "light-mode"},
		{"dyslexia", func(s *models.AccessibilitySettings) { s.Mode = models.ModeDyslexiaFriendly }, "OpenDyslexic, sans-serif", "16px", "light-mode"},
		{"small", func(s *models.AccessibilitySettings) { s.FontSize = models.FontSmall }, "Inter, sans-serif", "14px", "light-mode"},
		{"legacy high contrast", func(s *models.AccessibilitySettings) { s.HighContrast = true }, "Inter, sans-serif", "16px", "light-mode high-contrast"},
		{"legacy ignored outside light", func(s *models.AccessibilitySettings) {
			s.HighContrast = true
			s.ContrastMode = models.ContrastMedium
		}, "Inter, sans-serif", "16px", "medium-contrast"},
		{"reduced motion", func(s *models.AccessibilitySettings) {
			s.ReducedMotion = true
			s.ContrastMode = models.ContrastHigh
			s.FontSize = models.FontExtraLarge
		}, "Inter, sans-serif", "20px", "high-contrast reduced-motion"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := models.DefaultAccessibilitySettings()
			tt.settings(&s)
			p := Present(s)
			assert.Equal(t, tt.family, p.FontFamily)
			assert.Equal(t, tt.size, p.FontSize)
			assert.Equal(t, tt.classes, p.ClassAttr())
		})
	}
}

func TestAnnouncer(t *testing.T) {
	now := time.Unix(0, 0)
	a := NewAnnouncer(time.Second)
	a.now = func() time.Time { return now }

	a.Announce("Settings saved")
	a.Announce("")
	now = now.Add(500 * time.Millisecond)
	a.Announce("Font size large")

	assert.Equal(t, []string{"Settings saved", "Font size large"}, a.Drain())
	assert.Empty(t, a.Drain(), "rendered messages are removed")

	a.Announce("stale")
	now = now.Add(2 * time.Second)
	assert.Empty(t, a.Drain())
}
