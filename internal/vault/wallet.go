package vault

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrInsufficientTokens = errors.New("insufficient tokens for this service")
	ErrUnknownService     = errors.New("unknown premium service")
)

// RecordReward is the CARE-1 award for each generated health record.
const RecordReward = 5

// Token is a demo health token balance.
type Token struct {
	ID          string
	Name        string
	Symbol      string
	Balance     int
	Description string
	EarnedFrom  string
	Color       string
}

// Wallet is the demo identity wallet shown on the vault page.
type Wallet struct {
	Address   string
	Balance   float64
	Connected bool
}

// Service is a premium service paid for with tokens.
type Service struct {
	Name        string
	Description string
	Cost        int
	Token       string
	Color       string
}

// Entry is a record as listed in the vault, with its display label.
type Entry struct {
	Record
	Label    string
	Verified bool
}

// PremiumServices lists what tokens can unlock.
var PremiumServices = []Service{
	{Name: "Premium Medicine Info", Description: "Access detailed drug interactions and advanced medication guidance", Cost: 3, Token: "RX-ACCESS", Color: "accent"},
	{Name: "Advanced Health Analysis", Description: "AI-powered comprehensive health assessment with personalized recommendations", Cost: 10, Token: "CARE-1", Color: "primary"},
	{Name: "Personalized Wellness Plan", Description: "Custom wellness plan based on your health data and preferences", Cost: 15, Token: "WELL-1", Color: "secondary"},
}

// DemoWallet is the wallet every visitor sees.
var DemoWallet = Wallet{
	Address:   "DEMO7XKZJH4QZQZQZQZQZQZQZQZQZQZQZQZQZQZQZQZQZQZQZQZQZQZQZQZQZQ",
	Balance:   10.5,
	Connected: true,
}

func defaultTokens() []Token {
	return []Token{
		{ID: "care-1", Name: "CareWise Token", Symbol: "CARE-1", Balance: 25, Description: "Earned from submitting health forms and assessments", EarnedFrom: "Health Form Submissions", Color: "primary"},
		{ID: "quiz-1", Name: "Quiz Master Token", Symbol: "QUIZ-1", Balance: 15, Description: "Earned by completing health awareness quizzes", EarnedFrom: "Quiz Completions", Color: "success"},
		{ID: "well-1", Name: "Wellness Token", Symbol: "WELL-1", Balance: 10, Description: "Earned by reading health awareness lessons", EarnedFrom: "Educational Content", Color: "secondary"},
		{ID: "rx-access", Name: "RX Access Token", Symbol: "RX-ACCESS", Balance: 5, Description: "Used to unlock premium medicine information", EarnedFrom: "Premium Access", Color: "accent"},
	}
}

// Vault is one visitor's token balances and unlocked services.
type Vault struct {
	mu       sync.Mutex
	userID   string
	ledger   *Ledger
	tokens   []Token
	unlocked map[string]bool
	demo     []Entry
}

// New returns a vault seeded with the demo balances and sample records.
func New(userID string, ledger *Ledger) *Vault {
	now := ledger.now()
	return &Vault{
		userID:   userID,
		ledger:   ledger,
		tokens:   defaultTokens(),
		unlocked: map[string]bool{},
		demo: []Entry{
			{Record: Record{ID: "1", DataHash: "a1b2c3d4e5f6789012345678901234567890abcdef", Timestamp: now.Add(-24 * time.Hour), TxID: "DEMO_TXN_001"}, Label: "Health Form Submission", Verified: true},
			{Record: Record{ID: "2", DataHash: "f6e5d4c3b2a1098765432109876543210fedcba09", Timestamp: now.Add(-48 * time.Hour), TxID: "DEMO_TXN_002"}, Label: "Quiz Completion", Verified: true},
		},
	}
}

// Release drops this visitor's ledger records.
func (v *Vault) Release() {
	v.ledger.Forget(v.userID)
}

// Tokens returns a copy of the balances.
func (v *Vault) Tokens() []Token {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Token(nil), v.tokens...)
}

// Balance returns the balance of symbol.
func (v *Vault) Balance(symbol string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if t := v.token(symbol); t != nil {
		return t.Balance
	}
	return 0
}

func (v *Vault) token(symbol string) *Token {
	for i := range v.tokens {
		if v.tokens[i].Symbol == symbol {
			return &v.tokens[i]
		}
	}
	return nil
}

// Entries lists ledger records for this visitor followed by the samples.
func (v *Vault) Entries() []Entry {
	var out []Entry
	for _, r := range v.ledger.Records(v.userID) {
		out = append(out, Entry{Record: r, Label: labelFor(r.Type), Verified: true})
	}
	return append(out, v.demo...)
}

func labelFor(t RecordType) string {
	switch t {
	case RecordSymptomReport:
		return "Health Assessment"
	case RecordQuiz:
		return "Quiz Completion"
	case RecordDiagnosis:
		return "Diagnosis"
	case RecordPrescription:
		return "Prescription"
	default:
		return "Health Contribution"
	}
}

// GenerateRecord stores a demo health assessment and awards CARE-1.
func (v *Vault) GenerateRecord() (Record, error) {
	rec, _, err := v.ledger.StoreSymptomReport(v.userID, "Demo health assessment", "mild")
	if err != nil {
		return Record{}, err
	}
	v.Award("CARE-1", RecordReward)
	return rec, nil
}

// Award adds amount to symbol's balance.
func (v *Vault) Award(symbol string, amount int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if t := v.token(symbol); t != nil {
		t.Balance += amount
	}
}

// Unlock pays for a premium service.
func (v *Vault) Unlock(name string) (Service, error) {
	var svc *Service
	for i := range PremiumServices {
		if PremiumServices[i].Name == name {
			svc = &PremiumServices[i]
			break
		}
	}
	if svc == nil {
		return Service{}, fmt.Errorf("%w: %q", ErrUnknownService, name)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	t := v.token(svc.Token)
	if t == nil || t.Balance < svc.Cost {
		return *svc, ErrInsufficientTokens
	}
	t.Balance -= svc.Cost
	v.unlocked[svc.Name] = true
	return *svc, nil
}

// Unlocked reports whether a service has been paid for.
func (v *Vault) Unlocked(name string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.unlocked[name]
}
