// Package guard distinguishes constructed domain values from zero values.
//
// Aggregates, value objects and commands embed a ConstructorGuard and set it only
// inside their constructor. Their Validate method then rejects zero values that were
// produced by struct literals or by forgetting to check a constructor error.
//
//	var ErrOfferIsNotConstructed = errors.New("Offer must be created via NewOffer constructor")
//
//	type Offer struct {
//	    id    kernel.UUID
//	    guard guard.ConstructorGuard
//	}
//
//	func (o *Offer) Validate() error {
//	    return o.guard.Validate(ErrOfferIsNotConstructed)
//	}
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when the zero value is checked
// and the caller did not supply its own error.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard is an immutable marker. Its zero value means "not constructed".
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard that marks its owner as properly constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil for a constructed guard. For the zero value it returns
// validationError, or ErrDefaultConstructorGuard when validationError is nil.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
