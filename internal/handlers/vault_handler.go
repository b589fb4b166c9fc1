package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"carewise/internal/vault"
)

// ServiceView is a premium service as shown to the visitor.
type ServiceView struct {
	vault.Service
	Unlocked   bool
	Affordable bool
}

// VaultViewData backs the CareChain vault page.
type VaultViewData struct {
	Wallet       vault.Wallet
	Tokens       []vault.Token
	Entries      []vault.Entry
	Verification *verification
	Services     []ServiceView
}

// ShowVault displays balances, records and services.
func (s *Server) ShowVault(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	data := VaultViewData{
		Wallet:  vault.DemoWallet,
		Tokens:  v.Vault.Tokens(),
		Entries: v.Vault.Entries(),
	}
	for _, svc := range vault.PremiumServices {
		data.Services = append(data.Services, ServiceView{
			Service:    svc,
			Unlocked:   v.Vault.Unlocked(svc.Name),
			Affordable: v.Vault.Balance(svc.Token) >= svc.Cost,
		})
	}

	v.mu.Lock()
	if v.verification != nil {
		ver := *v.verification
		data.Verification = &ver
	}
	v.mu.Unlock()

	s.renderPage(w, r, "vault", "CareChain Vault", "carechain-vault", data)
}

// GenerateRecord stores a demo record and pays the reward.
func (s *Server) GenerateRecord(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	rec, err := v.Vault.GenerateRecord()
	if err != nil {
		respondWithError(w, s.logger, http.StatusInternalServerError, ErrInternalServerError, "Error generating health record", err)
		return
	}
	v.Announcer.Announce(fmt.Sprintf("Health record %s stored. You earned %d CARE-1 tokens.", rec.ID, vault.RecordReward))
	redirect(w, r, "/carechain-vault")
}

// VerifyRecord checks a record against a hash or the original data.
func (s *Server) VerifyRecord(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	id := strings.TrimSpace(r.FormValue("record_id"))
	hash := strings.TrimSpace(r.FormValue("data_hash"))
	data := strings.TrimSpace(r.FormValue("data"))
	if id == "" || (hash == "" && data == "") {
		respondWithError(w, s.logger, http.StatusBadRequest, "Record ID and a hash or the record data are required", "", nil)
		return
	}

	var valid bool
	switch {
	case hash != "":
		valid = s.ledger.VerifyHash(id, hash)
	case json.Valid([]byte(data)):
		valid = s.ledger.VerifyData(id, json.RawMessage(data))
	}

	v.mu.Lock()
	v.verification = &verification{ID: id, Valid: valid}
	v.mu.Unlock()

	if valid {
		v.Announcer.Announce("Record verified")
	} else {
		v.Announcer.Announce("Record could not be verified")
	}
	redirect(w, r, "/carechain-vault")
}

// UnlockService pays for a premium service with tokens.
func (s *Server) UnlockService(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	svc, err := v.Vault.Unlock(r.FormValue("service"))
	switch {
	case errors.Is(err, vault.ErrUnknownService):
		respondWithError(w, s.logger, http.StatusBadRequest, ErrInvalidFormData, "", nil)
		return
	case errors.Is(err, vault.ErrInsufficientTokens):
		v.Announcer.Announce(fmt.Sprintf("You need %d %s tokens to unlock %s.", svc.Cost, svc.Token, svc.Name))
	case err != nil:
		respondWithError(w, s.logger, http.StatusInternalServerError, ErrInternalServerError, "Error unlocking service", err)
		return
	default:
		v.Announcer.Announce(svc.Name + " unlocked")
	}
	redirect(w, r, "/carechain-vault")
}
