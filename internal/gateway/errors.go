package gateway

import "errors"

// Error kinds. Their messages are the user-facing text; the underlying cause
// stays reachable through errors.Is/As.
var (
	ErrInvalidAddressFormat  = errors.New("invalid contract address format, expected 'address.contract-name'")
	ErrTokenInfoFetch        = errors.New("failed to fetch token information from the contract")
	ErrBalanceFetch          = errors.New("failed to fetch token balance")
	ErrContractOwnerFetch    = errors.New("failed to fetch contract owner")
	ErrTransactionRejected   = errors.New("transaction rejected by user")
	ErrTransactionSubmission = errors.New("failed to submit transaction")
)

// Error pairs an error kind with the failure that caused it.
type Error struct {
	Kind  error
	Cause error
}

func (e *Error) Error() string { return e.Kind.Error() }

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func wrap(kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}
