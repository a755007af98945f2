// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package status

import (
	"errors"
	"fmt"
)

// Code is one value of the closed status enumeration. The numeric
// values and source order are part of the wire contract and must not
// be rearranged.
type Code uint8

const (
	// Success is the zero value: the operation completed.
	Success Code = iota

	// Failure is the catch-all for errors that carry no more specific
	// code, including foreign errors crossing the subsystem boundary.
	Failure

	// NotImplemented marks a format feature that was recognized but is
	// not handled (for example the "expand" relocation kind). It is a
	// hard failure, never silently ignored.
	NotImplemented

	// EndOfFunction reports a mismatch between the export count the
	// caller expects to link against and what the module declares.
	EndOfFunction

	// InsufficientBuf reports a buffer too short for the access or
	// structure it was asked to hold.
	InsufficientBuf

	// InvalidAddress reports an offset that falls outside the module
	// image or outside the section it must target.
	InvalidAddress

	// UndefinedBlockType reports an unrecognized format identifier or
	// an unknown section kind.
	UndefinedBlockType

	// InvalidStrength reports a requested digest width outside the
	// supported set (64/128/256/512 bits).
	InvalidStrength

	// InvalidMnemonic belongs to the wallet mnemonic subsystem; the
	// loader never produces it.
	InvalidMnemonic

	// InvalidMnemonicLen belongs to the wallet mnemonic subsystem.
	InvalidMnemonicLen

	// InvalidChecksum belongs to the wallet mnemonic subsystem.
	InvalidChecksum

	// UnableAllocateMem reports an allocation failure. No partial
	// state is retained when it is returned.
	UnableAllocateMem

	// Network belongs to external transport collaborators; the loader
	// never produces it.
	Network
)

// wireNames are the canonical C enumeration spellings, indexed by Code.
var wireNames = [...]string{
	Success:            "E_SUCCESS",
	Failure:            "E_FAILURE",
	NotImplemented:     "E_NOT_IMPLEMENTED",
	EndOfFunction:      "E_END_OF_FUNCTION",
	InsufficientBuf:    "E_INSUFFICIENT_BUF",
	InvalidAddress:     "E_INVALID_ADDRESS",
	UndefinedBlockType: "E_UNDEFINED_BLOCK_TYPE",
	InvalidStrength:    "E_INVALID_STRENGTH",
	InvalidMnemonic:    "E_INVALID_MNEMONIC",
	InvalidMnemonicLen: "E_INVALID_MNEMONIC_LEN",
	InvalidChecksum:    "E_INVALID_CHECKSUM",
	UnableAllocateMem:  "E_UNABLE_ALLOCATE_MEM",
	Network:            "E_NETWORK",
}

// String returns the canonical wire name for the code.
func (c Code) String() string {
	if int(c) < len(wireNames) {
		return wireNames[c]
	}
	return fmt.Sprintf("E_UNKNOWN(%d)", uint8(c))
}

// Error implements the error interface so a bare Code can be used as a
// sentinel with errors.Is. Success is a valid Code but not a meaningful
// error; callers should never return it as one.
func (c Code) Error() string {
	return c.String()
}

// Error is a status code with human-readable detail and an optional
// wrapped cause.
type Error struct {
	Code   Code
	Detail string
	Err    error
}

// Errorf builds an *Error with formatted detail. The format string may
// use %w exactly like fmt.Errorf to attach a cause.
func Errorf(code Code, format string, args ...any) *Error {
	wrapped := fmt.Errorf(format, args...)
	return &Error{
		Code:   code,
		Detail: wrapped.Error(),
		Err:    errors.Unwrap(wrapped),
	}
}

func (e *Error) Error() string {
	return e.Code.String() + ": " + e.Detail
}

// Unwrap exposes the cause chain to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches a bare Code sentinel or another *Error with the same code.
func (e *Error) Is(target error) bool {
	if code, ok := target.(Code); ok {
		return e.Code == code
	}
	if other, ok := target.(*Error); ok {
		return e.Code == other.Code
	}
	return false
}

// CodeOf collapses an error to its status code. A nil error is Success;
// an error with no Code anywhere in its chain is Failure.
func CodeOf(err error) Code {
	if err == nil {
		return Success
	}
	var statusErr *Error
	if errors.As(err, &statusErr) {
		return statusErr.Code
	}
	var code Code
	if errors.As(err, &code) {
		return code
	}
	return Failure
}
