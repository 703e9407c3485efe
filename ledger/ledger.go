package ledger

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/profitx/profitx/internal/id"
	"github.com/profitx/profitx/venue"
)

// AccountWriter persists an account snapshot. Writes happen inside the
// account's critical section and are best effort: a failed write is
// logged, never rolled back, and never surfaced to the caller.
type AccountWriter interface {
	SaveAccount(Account) error
}

// Ledger is the in-memory account registry. The outer lock guards the
// two lookup maps only; every account carries its own mutex, so
// mutations on different accounts never block each other while two
// mutations on the same account always serialize.
type Ledger struct {
	log    logrus.FieldLogger
	writer AccountWriter

	mu      sync.RWMutex
	entries map[string]*entry
	byPhone map[string]string
}

type entry struct {
	mu   sync.Mutex
	acct Account
}

// New builds an empty ledger. writer may be nil for pure in-memory use.
func New(log logrus.FieldLogger, writer AccountWriter) *Ledger {
	return &Ledger{
		log:     log,
		writer:  writer,
		entries: make(map[string]*entry),
		byPhone: make(map[string]string),
	}
}

// Restore installs previously persisted accounts, replacing nothing:
// it is meant to run once at startup before the ledger serves traffic.
func (l *Ledger) Restore(accounts []Account) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, acct := range accounts {
		l.entries[acct.ID] = &entry{acct: acct.clone()}
		l.byPhone[acct.Phone] = acct.ID
	}
}

// Register creates a new account with zero balance.
func (l *Ledger) Register(phone, credential string) (Account, error) {
	if phone == "" || credential == "" {
		return Account{}, fmt.Errorf(
			"phone and credential required: %w", venue.ErrInvalidRequest,
		)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, taken := l.byPhone[phone]; taken {
		return Account{}, fmt.Errorf("phone %q: %w", phone, venue.ErrAlreadyExists)
	}

	now := time.Now()
	acct := Account{
		ID:         id.New(),
		Phone:      phone,
		Credential: credential,
		Positions:  []Position{},
		Trades:     []TradeRecord{},
		CreatedAt:  now,
		LastLogin:  now,
	}

	l.entries[acct.ID] = &entry{acct: acct}
	l.byPhone[phone] = acct.ID

	l.save(acct)

	return acct.redacted(), nil
}

// Authenticate checks the credential verbatim and stamps the login
// time. The returned copy has the credential blanked; raw credentials
// never travel past this boundary.
func (l *Ledger) Authenticate(phone, credential string) (Account, error) {
	l.mu.RLock()
	accountID, ok := l.byPhone[phone]
	var e *entry
	if ok {
		e = l.entries[accountID]
	}
	l.mu.RUnlock()

	if e == nil {
		return Account{}, venue.ErrInvalidCredentials
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.acct.Credential != credential {
		return Account{}, venue.ErrInvalidCredentials
	}

	e.acct.LastLogin = time.Now()
	l.save(e.acct)

	return e.acct.redacted(), nil
}

// Get returns a redacted copy of the account.
func (l *Ledger) Get(accountID string) (Account, error) {
	e, err := l.lookup(accountID)
	if err != nil {
		return Account{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.acct.redacted(), nil
}

// List returns redacted copies of every account, oldest first. Ids
// break ties for accounts created in the same instant, such as a
// restored batch.
func (l *Ledger) List() []Account {
	l.mu.RLock()
	entries := make([]*entry, 0, len(l.entries))
	for _, e := range l.entries {
		entries = append(entries, e)
	}
	l.mu.RUnlock()

	accounts := make([]Account, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		accounts = append(accounts, e.acct.redacted())
		e.mu.Unlock()
	}

	sort.Slice(accounts, func(i, j int) bool {
		if !accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
		}
		return accounts[i].ID < accounts[j].ID
	})

	return accounts
}

// Mutate runs fn inside the account's exclusive critical section. fn
// receives a redacted working copy and may rewrite balance, positions
// and trade history as one unit; the changes commit only if fn returns
// nil, so a failed mutation leaves the account untouched. Two Mutate
// calls on the same account serialize in arrival order; calls on
// different accounts proceed independently.
func (l *Ledger) Mutate(accountID string, fn func(*Account) error) error {
	e, err := l.lookup(accountID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	working := e.acct.redacted()
	if err := fn(&working); err != nil {
		return err
	}

	e.acct.Balance = working.Balance
	e.acct.Positions = working.Positions
	e.acct.Trades = working.Trades

	l.save(e.acct)

	return nil
}

func (l *Ledger) lookup(accountID string) (*entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	e, ok := l.entries[accountID]
	if !ok {
		return nil, fmt.Errorf("account %q: %w", accountID, venue.ErrNotFound)
	}

	return e, nil
}

// save persists the account while its critical section is held, so
// the durable record always matches some committed state.
func (l *Ledger) save(acct Account) {
	if l.writer == nil {
		return
	}

	if err := l.writer.SaveAccount(acct.clone()); err != nil {
		l.log.WithField("account", acct.ID).
			WithError(err).
			Warn("account not persisted")
	}
}
