// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package wrappers provides helpers for collecting errors across a series of
// operations.
package wrappers

// Errs keeps the first non-nil error it is given.
type Errs struct {
	Err error
}

func (errs *Errs) Errored() bool {
	return errs.Err != nil
}

// Add records the first non-nil error of errors, unless one is already
// recorded.
func (errs *Errs) Add(errors ...error) {
	if errs.Err != nil {
		return
	}
	for _, err := range errors {
		if err != nil {
			errs.Err = err
			return
		}
	}
}
