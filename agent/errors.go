package agent

import "errors"

// ErrInvalidInput marks caller mistakes: non-positive quantities, prices
// or reserves, and malformed offer shapes. Callers match it with
// errors.Is and map it to a 400 at the transport layer. Missing reference
// data is never an error of this kind; it is reported as a normal outcome
// with a zero reserve price.
var ErrInvalidInput = errors.New("invalid input")
