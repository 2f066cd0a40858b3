// Package errors provides the structured error type for the interface
// bus object model.
//
// Two error classes exist:
//
//   - Resolution failures (KindNotResolved) are ordinary returned
//     errors. They mean "the identifier is not reachable from here" and
//     callers branch on them with IsNotResolved.
//   - Contract violations (underflow, host conflict, use after finish)
//     are programming errors. They are raised by panic carrying an
//     *Error value and are never returned or retried.
//
// Errors match with the standard errors.Is when Phase and Kind agree:
//
//	_, err := obj.QueryInterface(id)
//	if buserrors.IsNotResolved(err) {
//	    // fall back
//	}
package errors
