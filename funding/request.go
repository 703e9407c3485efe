// Package funding manages operator-gated deposit and withdrawal
// requests as a small state machine over the account ledger.
package funding

import (
	"fmt"
	"time"
)

// Kind distinguishes the two request flavors.
type Kind int

const (
	Deposit Kind = iota
	Withdrawal
)

func (k Kind) String() string {
	switch k {
	case Deposit:
		return "deposit"
	case Withdrawal:
		return "withdrawal"
	}

	return ""
}

// Status of a request. A request transitions from Pending to exactly
// one terminal status, exactly once.
type Status int

const (
	Pending Status = iota
	Approved
	Rejected
)

// ParseStatus converts the persisted representation back to a Status.
func ParseStatus(value string) (Status, error) {
	switch value {
	case "pending":
		return Pending, nil
	case "approved":
		return Approved, nil
	case "rejected":
		return Rejected, nil
	}

	return -1, fmt.Errorf("unknown status: %q", value)
}

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Approved:
		return "approved"
	case Rejected:
		return "rejected"
	}

	return ""
}

// Request is one deposit or withdrawal awaiting operator action.
// ResolvedAt is zero exactly while the request is pending.
type Request struct {
	ID         string
	Kind       Kind
	AccountID  string
	Phone      string
	Amount     float64
	Method     string
	Details    string
	Status     Status
	CreatedAt  time.Time
	ResolvedAt time.Time
}
