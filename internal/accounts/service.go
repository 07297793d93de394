package accounts

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bettertrack/bettertrack/internal/model"
	"github.com/bettertrack/bettertrack/internal/portfolio"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrAmbiguousAccount = errors.New("account reference is ambiguous")
)

// Service provides lookup and mutation over the accounts of a loaded portfolio.
type Service struct {
	cfg  *portfolio.PortfolioConfig
	byID map[string]int
}

// NewService creates a Service over cfg. Accounts without an id get one.
func NewService(cfg *portfolio.PortfolioConfig) *Service {
	cfg.EnsureIDs()
	s := &Service{cfg: cfg}
	s.reindex()
	return s
}

// Load reads portfolio.json from dir and returns a Service over it.
func Load(dir string) (*Service, error) {
	cfg, err := portfolio.Load(filepath.Join(dir, portfolio.FileName))
	if err != nil {
		return nil, err
	}
	return NewService(cfg), nil
}

// Save writes the portfolio back to dir/portfolio.json.
func (s *Service) Save(dir string) error {
	if err := portfolio.Save(filepath.Join(dir, portfolio.FileName), s.cfg); err != nil {
		return fmt.Errorf("saving accounts: %w", err)
	}
	return nil
}

func (s *Service) reindex() {
	s.byID = make(map[string]int, len(s.cfg.Accounts))
	for i, a := range s.cfg.Accounts {
		s.byID[a.ID] = i
	}
}

// Portfolio returns the underlying document.
func (s *Service) Portfolio() *portfolio.PortfolioConfig {
	return s.cfg
}

// All returns all account entries in stored order.
func (s *Service) All() []portfolio.AccountConfig {
	return s.cfg.Accounts
}

// Get returns an account entry by id.
func (s *Service) Get(id string) (portfolio.AccountConfig, bool) {
	i, ok := s.byID[id]
	if !ok {
		return portfolio.AccountConfig{}, false
	}
	return s.cfg.Accounts[i], true
}

// Exists reports whether an account id exists.
func (s *Service) Exists(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// ByKind returns all entries on the given side of net worth.
func (s *Service) ByKind(kind model.Kind) []portfolio.AccountConfig {
	var result []portfolio.AccountConfig
	for _, a := range s.cfg.Accounts {
		if a.Kind() == kind {
			result = append(result, a)
		}
	}
	return result
}

// Resolve turns ref into an index into All. ref is either the 1-based
// position shown by "accounts list" or an account id, full or a unique prefix.
func (s *Service) Resolve(ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, fmt.Errorf("%w: empty reference", ErrAccountNotFound)
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(s.cfg.Accounts) {
			return 0, fmt.Errorf("%w: no account at position %d", ErrAccountNotFound, n)
		}
		return n - 1, nil
	}
	if i, ok := s.byID[ref]; ok {
		return i, nil
	}

	match := -1
	for i, a := range s.cfg.Accounts {
		if !strings.HasPrefix(a.ID, ref) {
			continue
		}
		if match >= 0 {
			return 0, fmt.Errorf("%w: %q matches more than one id", ErrAmbiguousAccount, ref)
		}
		match = i
	}
	if match < 0 {
		return 0, fmt.Errorf("%w: %q", ErrAccountNotFound, ref)
	}
	return match, nil
}

// Account resolves ref and builds its domain account, with connected banks
// wired up. The whole portfolio is validated first.
func (s *Service) Account(ref string) (int, model.Account, error) {
	i, err := s.Resolve(ref)
	if err != nil {
		return 0, nil, err
	}
	accounts, err := s.cfg.BuildAccounts()
	if err != nil {
		return 0, nil, err
	}
	return i, accounts[i], nil
}

// Add validates and appends a new account entry, assigning it an id.
func (s *Service) Add(acct portfolio.AccountConfig) (portfolio.AccountConfig, error) {
	if acct.ID == "" {
		acct.ID = portfolio.NewAccountID()
	}
	if s.Exists(acct.ID) {
		return portfolio.AccountConfig{}, fmt.Errorf("adding account: id %s already in use", acct.ID)
	}

	s.cfg.Accounts = append(s.cfg.Accounts, acct)
	if err := s.cfg.Validate(); err != nil {
		s.cfg.Accounts = s.cfg.Accounts[:len(s.cfg.Accounts)-1]
		return portfolio.AccountConfig{}, fmt.Errorf("adding account: %w", err)
	}
	s.byID[acct.ID] = len(s.cfg.Accounts) - 1
	return acct, nil
}

// Remove deletes the account ref points to and clears any connected-bank
// references to it.
func (s *Service) Remove(ref string) (portfolio.AccountConfig, error) {
	i, err := s.Resolve(ref)
	if err != nil {
		return portfolio.AccountConfig{}, err
	}
	removed := s.cfg.Accounts[i]
	s.cfg.Accounts = append(s.cfg.Accounts[:i], s.cfg.Accounts[i+1:]...)
	for j := range s.cfg.Accounts {
		if s.cfg.Accounts[j].ConnectedBank == removed.ID {
			s.cfg.Accounts[j].ConnectedBank = ""
		}
	}
	s.reindex()
	return removed, nil
}

// Replace writes a mutated domain account back over the entry at index.
func (s *Service) Replace(index int, acct model.Account) error {
	if index < 0 || index >= len(s.cfg.Accounts) {
		return fmt.Errorf("%w: index %d", ErrAccountNotFound, index)
	}
	prev := s.cfg.Accounts[index]
	next := portfolio.AccountConfigFrom(acct)
	if next.ID == "" {
		next.ID = prev.ID
	}
	if prev.IsAsset == nil {
		implicit := next
		implicit.IsAsset = nil
		if implicit.Kind() == next.Kind() {
			next = implicit
		}
	}
	s.cfg.Accounts[index] = next
	s.reindex()
	return nil
}
