// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package internal

// ErrorWithSuggestion pairs a failure with the next step the user should take. The suggestion is printed on its
// own line below the error.
type ErrorWithSuggestion struct {
	Suggestion string
	Err        error
}

func (e *ErrorWithSuggestion) Error() string {
	return e.Err.Error()
}

func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}
