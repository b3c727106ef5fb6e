/*
 * errors.go, part of gosiesta.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package siesta

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies the errors returned by this library, so callers can
// react with errors.Is without parsing messages.
type Kind string

func (k Kind) Error() string { return string(k) }

const (
	ErrMissing      Kind = "required data missing"
	ErrInconsistent Kind = "inconsistent data"
	ErrUnsupported  Kind = "not supported"
	ErrParse        Kind = "unable to parse"
	ErrUnit         Kind = "unit error"
)

// Error is the structured error for all read/write operations in gosiesta.
// It carries the file and label involved and a decoration slice with the
// chain of functions it went through.
type Error struct {
	message  string
	filename string //the file that has problems, or empty string if none.
	label    string //the fdf label involved, if any
	deco     []string
	critical bool
	kind     Kind
}

// NewError returns a critical error of the given kind.
func NewError(kind Kind, message, filename, label string) *Error {
	return &Error{message: message, filename: filename, label: label, critical: true, kind: kind}
}

func (err *Error) Error() string {
	var b strings.Builder
	b.WriteString(err.message)
	if err.label != "" {
		fmt.Fprintf(&b, " (label %s)", err.label)
	}
	if err.filename != "" {
		fmt.Fprintf(&b, " in file %s", err.filename)
	}
	if len(err.deco) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(err.deco, " <- "))
	}
	return b.String()
}

// Decorate adds the string to the decoration slice, unless it is empty, and
// returns the current decoration.
func (err *Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

func (err *Error) FileName() string { return err.filename }

func (err *Error) Label() string { return err.label }

func (err *Error) Critical() bool { return err.critical }

func (err *Error) Kind() Kind { return err.kind }

func (err *Error) Unwrap() error { return err.kind }

// Decorate adds caller to the decoration of err if err is (or wraps) a
// Decorated error. Other errors are wrapped with the caller name. A nil error gives nil.
func Decorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	var e Decorated
	if errors.As(err, &e) {
		e.Decorate(caller)
		return err
	}
	return fmt.Errorf("%s: %w", caller, err)
}

// WrapFile turns a generic error (typically from I/O or strconv) into a
// critical *Error of the given kind associated with filename. *Errors are returned unchanged.
func WrapFile(err error, kind Kind, filename string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{message: err.Error(), filename: filename, critical: true, kind: kind}
}
