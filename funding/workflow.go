package funding

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/profitx/profitx/ledger"
	"github.com/profitx/profitx/venue"
)

// RequestWriter persists a request snapshot. Best effort, same policy
// as the ledger's AccountWriter.
type RequestWriter interface {
	SaveRequest(Request) error
}

// Config tunes the workflow.
type Config struct {
	// RevalidateOnApprove re-checks the account balance when a
	// withdrawal is approved. When true (the default wiring), an
	// approval that would overdraw the account fails with
	// InsufficientFunds and the request stays pending for operator
	// retry. When false the original venue's behavior is reproduced:
	// the balance is debited unconditionally and may go negative,
	// because only the request-time check ever ran.
	RevalidateOnApprove bool
}

// Workflow owns every pending, approved and rejected request. The
// workflow mutex serializes transitions, so a request can reach a
// terminal status exactly once; balance effects run inside the target
// account's critical section while the transition lock is held.
type Workflow struct {
	ledger *ledger.Ledger
	log    logrus.FieldLogger
	writer RequestWriter
	config Config

	mu       sync.Mutex
	requests map[string]*Request
}

// NewWorkflow builds a workflow over l. writer may be nil.
func NewWorkflow(
	l *ledger.Ledger,
	log logrus.FieldLogger,
	writer RequestWriter,
	config Config,
) *Workflow {
	return &Workflow{
		ledger:   l,
		log:      log,
		writer:   writer,
		config:   config,
		requests: make(map[string]*Request),
	}
}

// Restore installs previously persisted requests at startup.
func (w *Workflow) Restore(requests []Request) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, req := range requests {
		cp := req
		w.requests[req.ID] = &cp
	}
}

// RequestDeposit opens a pending deposit. No ledger effect until an
// operator approves it.
func (w *Workflow) RequestDeposit(
	accountID string,
	amount float64,
	method string,
) (Request, error) {
	return w.open(Deposit, accountID, amount, method, "", nil)
}

// RequestWithdrawal opens a pending withdrawal. The balance check here
// is advisory: it reflects the balance at request time only, and the
// approval path decides what happens if the balance has since dropped
// (see Config.RevalidateOnApprove).
func (w *Workflow) RequestWithdrawal(
	accountID string,
	amount float64,
	method string,
	details string,
) (Request, error) {
	return w.open(Withdrawal, accountID, amount, method, details,
		func(acct ledger.Account) error {
			if acct.Balance < amount {
				return fmt.Errorf(
					"balance %.2f below requested %.2f: %w",
					acct.Balance, amount, venue.ErrInsufficientFunds,
				)
			}
			return nil
		},
	)
}

func (w *Workflow) open(
	kind Kind,
	accountID string,
	amount float64,
	method string,
	details string,
	check func(ledger.Account) error,
) (Request, error) {
	if amount <= 0 {
		return Request{}, fmt.Errorf("amount must be positive: %w", venue.ErrInvalidRequest)
	}

	acct, err := w.ledger.Get(accountID)
	if err != nil {
		return Request{}, err
	}

	if check != nil {
		if err := check(acct); err != nil {
			return Request{}, err
		}
	}

	req := Request{
		ID:        uuid.NewString(),
		Kind:      kind,
		AccountID: accountID,
		Phone:     acct.Phone,
		Amount:    amount,
		Method:    method,
		Details:   details,
		Status:    Pending,
		CreatedAt: time.Now(),
	}

	// Only the map's copy is shared: a resolve landing right after the
	// insert mutates that copy, never req. Persisting under the lock
	// orders the pending journal write before any resolution's.
	w.mu.Lock()
	cp := req
	w.requests[req.ID] = &cp
	w.save(req)
	w.mu.Unlock()

	w.log.WithFields(logrus.Fields{
		"request": req.ID,
		"kind":    kind,
		"account": accountID,
		"amount":  amount,
	}).Info("funding request opened")

	return req, nil
}

// ApproveDeposit credits the account and marks the request approved,
// as one unit with respect to the target account.
func (w *Workflow) ApproveDeposit(requestID string) error {
	return w.resolve(requestID, Deposit, Approved, func(req *Request) error {
		return w.ledger.Mutate(req.AccountID, func(acct *ledger.Account) error {
			acct.Balance += req.Amount
			return nil
		})
	})
}

// RejectDeposit marks the request rejected. No ledger effect.
func (w *Workflow) RejectDeposit(requestID string) error {
	return w.resolve(requestID, Deposit, Rejected, nil)
}

// ApproveWithdrawal debits the account and marks the request approved.
// Whether the debit is allowed to overdraw the account depends on
// Config.RevalidateOnApprove; on InsufficientFunds the request stays
// pending.
func (w *Workflow) ApproveWithdrawal(requestID string) error {
	return w.resolve(requestID, Withdrawal, Approved, func(req *Request) error {
		return w.ledger.Mutate(req.AccountID, func(acct *ledger.Account) error {
			if w.config.RevalidateOnApprove && acct.Balance < req.Amount {
				return fmt.Errorf(
					"balance %.2f below approved %.2f: %w",
					acct.Balance, req.Amount, venue.ErrInsufficientFunds,
				)
			}

			acct.Balance -= req.Amount
			return nil
		})
	})
}

// RejectWithdrawal marks the request rejected. No ledger effect.
func (w *Workflow) RejectWithdrawal(requestID string) error {
	return w.resolve(requestID, Withdrawal, Rejected, nil)
}

// resolve performs the exactly-once transition to a terminal status,
// applying effect (if any) before the status flips. The workflow lock
// is held throughout, so two operators racing on the same request get
// one success and one InvalidState, and the balance effect can never
// run twice.
func (w *Workflow) resolve(
	requestID string,
	kind Kind,
	terminal Status,
	effect func(*Request) error,
) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	req, ok := w.requests[requestID]
	if !ok || req.Kind != kind {
		return fmt.Errorf("%v request %q: %w", kind, requestID, venue.ErrNotFound)
	}

	if req.Status != Pending {
		return fmt.Errorf(
			"%v request %q is already %v: %w",
			kind, requestID, req.Status, venue.ErrInvalidState,
		)
	}

	if effect != nil {
		if err := effect(req); err != nil {
			return err
		}
	}

	req.Status = terminal
	req.ResolvedAt = time.Now()

	w.save(*req)

	w.log.WithFields(logrus.Fields{
		"request": req.ID,
		"kind":    kind,
		"status":  terminal,
	}).Info("funding request resolved")

	return nil
}

// ListDeposits returns every deposit request, oldest first.
func (w *Workflow) ListDeposits() []Request {
	return w.list(Deposit, false)
}

// ListWithdrawals returns every withdrawal request, oldest first.
func (w *Workflow) ListWithdrawals() []Request {
	return w.list(Withdrawal, false)
}

// ListPendingDeposits returns deposits still awaiting operator action.
func (w *Workflow) ListPendingDeposits() []Request {
	return w.list(Deposit, true)
}

// ListPendingWithdrawals returns withdrawals still awaiting operator
// action.
func (w *Workflow) ListPendingWithdrawals() []Request {
	return w.list(Withdrawal, true)
}

func (w *Workflow) list(kind Kind, pendingOnly bool) []Request {
	w.mu.Lock()
	defer w.mu.Unlock()

	requests := make([]Request, 0)
	for _, req := range w.requests {
		if req.Kind != kind {
			continue
		}
		if pendingOnly && req.Status != Pending {
			continue
		}

		requests = append(requests, *req)
	}

	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt.Before(requests[j].CreatedAt)
	})

	return requests
}

func (w *Workflow) save(req Request) {
	if w.writer == nil {
		return
	}

	if err := w.writer.SaveRequest(req); err != nil {
		w.log.WithField("request", req.ID).
			WithError(err).
			Warn("request not persisted")
	}
}
