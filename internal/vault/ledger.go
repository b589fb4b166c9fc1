// Package vault keeps the demo health-token wallet and a tamper-evident
// ledger of record hashes.
package vault

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// TxPrefix marks transaction ids issued by the local ledger.
const TxPrefix = "mock_txn_"

// RecordType classifies a ledger entry.
type RecordType string

const (
	RecordDiagnosis     RecordType = "diagnosis"
	RecordPrescription  RecordType = "prescription"
	RecordSymptomReport RecordType = "symptom_report"
	RecordQuiz          RecordType = "quiz_completion"
	RecordContribution  RecordType = "health_contribution"
)

// Record is one hashed entry on the ledger. Only the hash is kept, never
// the data itself.
type Record struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Type      RecordType        `json:"type"`
	DataHash  string            `json:"dataHash"`
	Timestamp time.Time         `json:"timestamp"`
	TxID      string            `json:"txId"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// DataHash returns the hex SHA-256 of data's JSON encoding.
func DataHash(data any) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("hash data: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// MaxRecordsPerVisitor bounds each visitor's history; the oldest record is
// dropped once it is exceeded.
const MaxRecordsPerVisitor = 50

// Ledger stores record hashes in memory, keyed by record id.
type Ledger struct {
	mu      sync.RWMutex
	records map[string]Record
	byUser  map[string][]string
	limit   int
	now     func() time.Time
	rng     *rand.Rand
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		records: map[string]Record{},
		byUser:  map[string][]string{},
		limit:   MaxRecordsPerVisitor,
		now:     time.Now,
		rng:     rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
	}
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func (l *Ledger) newRecordID(now time.Time) string {
	var suffix strings.Builder
	for range 9 {
		suffix.WriteByte(base36[l.rng.IntN(len(base36))])
	}
	return "health_record_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + suffix.String()
}

// Store appends a record and returns it with its transaction id.
func (l *Ledger) Store(userID string, typ RecordType, dataHash string, metadata map[string]string) Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	id := l.newRecordID(now)
	for _, taken := l.records[id]; taken; _, taken = l.records[id] {
		id = l.newRecordID(now)
	}
	rec := Record{
		ID:        id,
		UserID:    userID,
		Type:      typ,
		DataHash:  dataHash,
		Timestamp: now,
		TxID:      TxPrefix + id,
		Metadata:  metadata,
	}
	l.records[id] = rec

	ids := append(l.byUser[userID], id)
	for len(ids) > l.limit {
		delete(l.records, ids[0])
		ids = ids[1:]
	}
	l.byUser[userID] = ids
	return rec
}

// Forget drops every record held for userID.
func (l *Ledger) Forget(userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range l.byUser[userID] {
		delete(l.records, id)
	}
	delete(l.byUser, userID)
}

// Len returns the number of records held.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// SymptomReport is the data hashed for a symptom report.
type SymptomReport struct {
	Symptoms  string `json:"symptoms"`
	Severity  string `json:"severity"`
	UserID    string `json:"userId"`
	Timestamp int64  `json:"timestamp"`
}

// StoreSymptomReport hashes and stores a symptom report.
func (l *Ledger) StoreSymptomReport(userID, symptoms, severity string) (Record, SymptomReport, error) {
	data := SymptomReport{
		Symptoms:  symptoms,
		Severity:  severity,
		UserID:    userID,
		Timestamp: l.now().UnixMilli(),
	}
	hash, err := DataHash(data)
	if err != nil {
		return Record{}, data, err
	}
	rec := l.Store(userID, RecordSymptomReport, hash, map[string]string{
		"severity": severity,
		"category": "symptom_tracking",
	})
	return rec, data, nil
}

// QuizCompletion is the data hashed for a finished quiz.
type QuizCompletion struct {
	QuizType  string `json:"quizType"`
	Score     int    `json:"score"`
	Answers   []int  `json:"answers"`
	UserID    string `json:"userId"`
	Timestamp int64  `json:"timestamp"`
}

// StoreQuizCompletion hashes and stores a quiz result.
func (l *Ledger) StoreQuizCompletion(userID, quizType string, score int, answers []int) (Record, error) {
	data := QuizCompletion{
		QuizType:  quizType,
		Score:     score,
		Answers:   answers,
		UserID:    userID,
		Timestamp: l.now().UnixMilli(),
	}
	hash, err := DataHash(data)
	if err != nil {
		return Record{}, err
	}
	return l.Store(userID, RecordQuiz, hash, map[string]string{
		"category": quizType,
		"score":    strconv.Itoa(score),
	}), nil
}

// Lookup finds a record by record id or transaction id.
func (l *Ledger) Lookup(id string) (Record, bool) {
	id = strings.TrimPrefix(strings.TrimSpace(id), TxPrefix)
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, ok := l.records[id]
	return rec, ok
}

// VerifyHash reports whether the record exists and carries hash.
func (l *Ledger) VerifyHash(id, hash string) bool {
	rec, ok := l.Lookup(id)
	return ok && strings.EqualFold(rec.DataHash, strings.TrimSpace(hash))
}

// VerifyData reports whether data hashes to the value stored for id.
func (l *Ledger) VerifyData(id string, data any) bool {
	hash, err := DataHash(data)
	if err != nil {
		return false
	}
	return l.VerifyHash(id, hash)
}

// Records returns userID's records, newest first.
func (l *Ledger) Records(userID string) []Record {
	l.mu.RLock()
	out := make([]Record, 0, len(l.byUser[userID]))
	for _, id := range l.byUser[userID] {
		out = append(out, l.records[id])
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID > out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}
