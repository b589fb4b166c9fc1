package vault

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataHash(t *testing.T) {
	h1, err := DataHash(map[string]any{"a": 1, "b": "x"})
	require.NoError(t, err)
	h2, err := DataHash(map[string]any{"b": "x", "a": 1})
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)

	// sha256 of "{}"
	empty, err := DataHash(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "44136fa355b3678a1146ad16f7e8649e94fb4fc21fe77e8310c060f61caaff8a", empty)

	_, err = DataHash(make(chan int))
	assert.Error(t, err)
}

func TestLedgerStoreAndVerify(t *testing.T) {
	l := NewLedger()
	l.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }

	rec, data, err := l.StoreSymptomReport("v1", "headache", "mild")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^health_record_1700000000000_[0-9a-z]{9}$`), rec.ID)
	assert.Equal(t, TxPrefix+rec.ID, rec.TxID)
	assert.Equal(t, "symptom_tracking", rec.Metadata["category"])

	assert.True(t, l.VerifyData(rec.ID, data))
	assert.True(t, l.VerifyData(rec.TxID, data), "transaction ids resolve to records")
	assert.True(t, l.VerifyHash(rec.TxID, strings.ToUpper(rec.DataHash)))

	tampered := data
	tampered.Severity = "severe"
	assert.False(t, l.VerifyData(rec.ID, tampered))
	assert.False(t, l.VerifyHash("mock_txn_missing", rec.DataHash))
}

func TestLedgerRecordsPerVisitor(t *testing.T) {
	l := NewLedger()
	now := time.Unix(100, 0)
	l.now = func() time.Time { return now }

	first := l.Store("v1", RecordDiagnosis, "h1", nil)
	now = now.Add(time.Second)
	second, err := l.StoreQuizCompletion("v1", "Sunlight", 2, []int{0, 0, 1})
	require.NoError(t, err)
	l.Store("v2", RecordPrescription, "h3", nil)

	recs := l.Records("v1")
	require.Len(t, recs, 2)
	assert.Equal(t, second.ID, recs[0].ID)
	assert.Equal(t, first.ID, recs[1].ID)
	assert.Equal(t, "2", second.Metadata["score"])
}

func TestVaultGenerateRecordAwardsTokens(t *testing.T) {
	l := NewLedger()
	v := New("v1", l)

	assert.Equal(t, 25, v.Balance("CARE-1"))
	assert.Len(t, v.Entries(), 2, "sample records only")

	rec, err := v.GenerateRecord()
	require.NoError(t, err)
	assert.Equal(t, 30, v.Balance("CARE-1"))

	entries := v.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, rec.ID, entries[0].ID)
	assert.Equal(t, "Health Assessment", entries[0].Label)
}

func TestVaultUnlock(t *testing.T) {
	v := New("v1", NewLedger())

	svc, err := v.Unlock("Premium Medicine Info")
	require.NoError(t, err)
	assert.Equal(t, 3, svc.Cost)
	assert.Equal(t, 2, v.Balance("RX-ACCESS"))
	assert.True(t, v.Unlocked("Premium Medicine Info"))

	_, err = v.Unlock("Premium Medicine Info")
	assert.ErrorIs(t, err, ErrInsufficientTokens)
	assert.Equal(t, 2, v.Balance("RX-ACCESS"), "rejected payment leaves balance unchanged")

	_, err = v.Unlock("Personalized Wellness Plan")
	assert.ErrorIs(t, err, ErrInsufficientTokens)

	_, err = v.Unlock("Advanced Health Analysis")
	require.NoError(t, err)
	assert.Equal(t, 15, v.Balance("CARE-1"))

	_, err = v.Unlock("Free Lunch")
	assert.ErrorIs(t, err, ErrUnknownService)
}

func TestLedgerCapsRecordsPerVisitor(t *testing.T) {
	l := NewLedger()
	l.limit = 3

	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, l.Store("v1", RecordContribution, "h", nil).ID)
	}
	l.Store("v2", RecordContribution, "h", nil)

	assert.Len(t, l.Records("v1"), 3)
	assert.Equal(t, 4, l.Len())
	_, ok := l.Lookup(ids[0])
	assert.False(t, ok, "oldest record is dropped")
	_, ok = l.Lookup(ids[4])
	assert.True(t, ok)
}

func TestLedgerForget(t *testing.T) {
	l := NewLedger()
	rec := l.Store("v1", RecordDiagnosis, "h1", nil)
	l.Store("v2", RecordDiagnosis, "h2", nil)

	New("v1", l).Release()

	assert.Empty(t, l.Records("v1"))
	assert.False(t, l.VerifyHash(rec.ID, "h1"))
	assert.Len(t, l.Records("v2"), 1)
	assert.Equal(t, 1, l.Len())

	l.Forget("nobody")
	assert.Equal(t, 1, l.Len())
}
