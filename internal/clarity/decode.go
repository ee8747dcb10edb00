package clarity

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrUnexpectedType is returned by the typed getters on a type mismatch.
var ErrUnexpectedType = errors.New("clarity: unexpected value type")

// ResponseError is returned by Unwrap for an (err ...) response.
type ResponseError struct {
	Value Value
}

func (e *ResponseError) Error() string {
	return "contract returned " + ResponseErr{Value: e.Value}.String()
}

// Unwrap strips response and optional wrappers: (ok v) and (some v) yield v,
// none yields nil, (err v) yields a *ResponseError. Any other value is
// returned as is.
func Unwrap(v Value) (Value, error) {
	for {
		switch val := v.(type) {
		case ResponseOk:
			v = val.Value
		case Some:
			v = val.Value
		case ResponseErr:
			return nil, &ResponseError{Value: val.Value}
		case None:
			return nil, nil
		default:
			return v, nil
		}
	}
}

// AsString unwraps v and returns its string contents. Both string types are
// accepted.
func AsString(v Value) (string, error) {
	inner, err := Unwrap(v)
	if err != nil {
		return "", err
	}
	switch s := inner.(type) {
	case StringASCII:
		return string(s), nil
	case StringUTF8:
		return string(s), nil
	}
	return "", mismatch("string", inner)
}

// AsUint unwraps v and returns the unsigned integer it holds.
func AsUint(v Value) (*big.Int, error) {
	inner, err := Unwrap(v)
	if err != nil {
		return nil, err
	}
	if u, ok := inner.(UInt); ok && u.V != nil {
		return new(big.Int).Set(u.V), nil
	}
	return nil, mismatch("uint", inner)
}

// AsPrincipal unwraps v and returns the principal address it holds.
func AsPrincipal(v Value) (string, error) {
	inner, err := Unwrap(v)
	if err != nil {
		return "", err
	}
	switch p := inner.(type) {
	case StandardPrincipal:
		return p.Address(), nil
	case ContractPrincipal:
		return p.Address(), nil
	}
	return "", mismatch("principal", inner)
}

func mismatch(want string, got Value) error {
	if got == nil {
		return fmt.Errorf("%w: want %s, got none", ErrUnexpectedType, want)
	}
	return fmt.Errorf("%w: want %s, got %s", ErrUnexpectedType, want, got.Type())
}
