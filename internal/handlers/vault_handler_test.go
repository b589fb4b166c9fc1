package handlers

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"carewise/internal/session"
	"carewise/internal/vault"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRecordAwardsTokens(t *testing.T) {
	ts := newTestServer(t)
	c := ts.newClient(t)
	v := c.visitor()
	before := v.Vault.Balance("CARE-1")

	rec := c.postForm("/carechain-vault/generate", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, before+vault.RecordReward, v.Vault.Balance("CARE-1"))

	records := ts.ledger.Records(c.id)
	require.Len(t, records, 1)

	rec = c.get("/carechain-vault")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), records[0].ID)
	assert.Contains(t, rec.Body.String(), "CARE-1 tokens")
}

func TestVerifyRecord(t *testing.T) {
	ts := newTestServer(t)
	c := ts.newClient(t)

	require.Equal(t, http.StatusSeeOther, c.postForm("/carechain-vault/generate", nil).Code)
	record := ts.ledger.Records(c.id)[0]

	tests := []struct {
		name   string
		values url.Values
		valid  bool
	}{
		{"matching hash", url.Values{"record_id": {record.ID}, "data_hash": {record.DataHash}}, true},
		{"transaction id", url.Values{"record_id": {record.TxID}, "data_hash": {record.DataHash}}, true},
		{"wrong hash", url.Values{"record_id": {record.ID}, "data_hash": {"deadbeef"}}, false},
		{"data that is not JSON", url.Values{"record_id": {record.ID}, "data": {"not json"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := c.postForm("/carechain-vault/verify", tt.values)
			require.Equal(t, http.StatusSeeOther, rec.Code)

			v := c.visitor()
			v.mu.Lock()
			got := *v.verification
			v.mu.Unlock()
			assert.Equal(t, tt.valid, got.Valid)
		})
	}

	rec := c.postForm("/carechain-vault/verify", url.Values{"record_id": {record.ID}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnlockService(t *testing.T) {
	ts := newTestServer(t)
	c := ts.newClient(t)
	v := c.visitor()

	svc := vault.PremiumServices[0]
	before := v.Vault.Balance(svc.Token)

	rec := c.postForm("/carechain-vault/unlock", url.Values{"service": {svc.Name}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, v.Vault.Unlocked(svc.Name))
	assert.Equal(t, before-svc.Cost, v.Vault.Balance(svc.Token))

	rec = c.postForm("/carechain-vault/unlock", url.Values{"service": {"Time Travel"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnlockServiceWithoutTokens(t *testing.T) {
	ts := newTestServer(t)
	c := ts.newClient(t)
	v := c.visitor()

	// WELL-1 starts at 10; the wellness plan costs 15.
	svc := vault.PremiumServices[2]
	rec := c.postForm("/carechain-vault/unlock", url.Values{"service": {svc.Name}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.False(t, v.Vault.Unlocked(svc.Name))

	rec = c.get("/carechain-vault")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "You need 15 WELL-1 tokens")
}

func TestEvictedVisitorLeavesNoLedgerRecords(t *testing.T) {
	store := session.NewMemoryStore[*Visitor](time.Nanosecond, ReleaseVisitor)
	ts := newTestServer(t, func(o *Options) { o.Visitors = store })
	c := ts.newClient(t)

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusSeeOther, c.postForm("/carechain-vault/generate", nil).Code)
	}
	require.Len(t, ts.ledger.Records(c.id), 5)

	require.Eventually(t, func() bool { return store.Sweep() > 0 }, time.Second, time.Millisecond)
	assert.Zero(t, store.Len())
	assert.Empty(t, ts.ledger.Records(c.id))
	assert.Zero(t, ts.ledger.Len())
}

func TestGenerateRecordIsRateLimited(t *testing.T) {
	ts := newTestServer(t, withRateLimit(2))
	c := ts.newClient(t)

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusSeeOther, c.postForm("/carechain-vault/generate", nil).Code)
	}
	rec := c.postForm("/carechain-vault/generate", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Len(t, ts.ledger.Records(c.id), 2)
}
