// Package validation contains utilities to help run validators.
package validation

import "github.com/pkg/errors"

// Validator is a function that performs some sort of validation.
// To keep things generic, this function does not accept any arguments.
// In practice, a validator could be a closure.
// Assume we are validating the below struct.
//
//	type A struct { value string }
//
// One could then create a validator for the above struct like this:
//
//	func AValidator(a A) Validator {
//		return func() error {
//			if a.value == "" {
//				return errors.New("invalid value")
//			}
//			return nil
//		}
//	}
type Validator func() error

// Validate runs a list of validators in order, stopping at the first
// failure and wrapping it with baseErrMsg.
func Validate(baseErrMsg string, validators ...Validator) error {
	for _, v := range validators {
		if err := v(); err != nil {
			return errors.Wrap(err, baseErrMsg)
		}
	}
	return nil
}
