package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"carewise/internal/models"
	"carewise/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validHealthForm() url.Values {
	return url.Values{
		"symptoms": {"Headache and a mild fever"},
		"severity": {"moderate"},
		"duration": {"2 days"},
		"notes":    {"Worse in the evening"},
	}
}

func TestSubmitHealthForm(t *testing.T) {
	ts := newTestServer(t)
	c := ts.newClient(t)
	before := c.visitor().Vault.Balance("CARE-1")

	rec := c.postForm("/health-form", validHealthForm())
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = c.get("/health-form")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Your health guidance is ready")

	v := c.visitor()
	assert.Equal(t, before+5, v.Vault.Balance("CARE-1"))

	v.mu.Lock()
	report := *v.lastReport
	v.mu.Unlock()
	assert.True(t, ts.ledger.VerifyData(report.Record.ID, json.RawMessage(report.Data)),
		"the record data shown on the page verifies against the ledger")

	ts.drain(t)
	rows := ts.sink.inserted(models.TableHealthForms)
	require.Len(t, rows, 1)
	form := rows[0].(models.HealthForm)
	assert.Equal(t, c.id, form.UserID)
	assert.Equal(t, "moderate", form.Severity)
	assert.Equal(t, "2 days", form.Duration)
	assert.NotEmpty(t, form.AIResponse)
}

func TestSubmitHealthFormValidation(t *testing.T) {
	ts := newTestServer(t)
	c := ts.newClient(t)

	tests := []struct {
		name   string
		field  string
		value  string
		expect string
	}{
		{"missing symptoms", "symptoms", "", "symptoms"},
		{"unknown severity", "severity", "catastrophic", "severity"},
		{"missing duration", "duration", "", "duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := validHealthForm()
			values.Set(tt.field, tt.value)

			rec := c.postForm("/health-form", values)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `role="alert"`)
		})
	}

	ts.drain(t)
	assert.Empty(t, ts.sink.inserted(models.TableHealthForms))
}

func TestDownloadReport(t *testing.T) {
	ts := newTestServer(t)
	c := ts.newClient(t)

	rec := c.get("/health-form/report.pdf")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.Equal(t, http.StatusSeeOther, c.postForm("/health-form", validHealthForm()).Code)

	rec = c.get("/health-form/report.pdf")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), service.ReportFilename)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestEmailReportUnavailableWithoutSES(t *testing.T) {
	ts := newTestServer(t)
	c := ts.newClient(t)

	require.Equal(t, http.StatusSeeOther, c.postForm("/health-form", validHealthForm()).Code)

	rec := c.postForm("/health-form/email", url.Values{"email": {"someone@example.com"}})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
