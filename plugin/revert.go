// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package plugin

import "errors"

const revertedWithoutReason = "execution reverted"

// RevertError is a module failure with an optional reason.
type RevertError struct {
	reason    string
	hasReason bool
}

// Revert returns a failure carrying reason. An empty reason is still a
// reason.
func Revert(reason string) error {
	return &RevertError{
		reason:    reason,
		hasReason: true,
	}
}

// RevertWithoutReason returns a failure that carries no message.
func RevertWithoutReason() error {
	return &RevertError{}
}

func (e *RevertError) Error() string {
	if !e.hasReason {
		return revertedWithoutReason
	}
	return e.reason
}

// Reason returns the revert message and whether one was provided.
func (e *RevertError) Reason() (string, bool) {
	return e.reason, e.hasReason
}

// RevertReason extracts the reason of the first RevertError in err's chain.
func RevertReason(err error) (string, bool) {
	var revert *RevertError
	if !errors.As(err, &revert) {
		return "", false
	}
	return revert.Reason()
}
