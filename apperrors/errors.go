/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package apperrors defines the error taxonomy shared by the validation,
// repository, service and HTTP layers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind string

const (
	KindValidation       Kind = "VALIDATION_ERROR"
	KindNotFound         Kind = "NOT_FOUND"
	KindDuplicateKey     Kind = "DUPLICATE_KEY"
	KindStoreUnavailable Kind = "STORE_UNAVAILABLE"
	KindStore            Kind = "STORE_ERROR"
	KindInternal         Kind = "INTERNAL_ERROR"
)

// Error is a classified application error. Message is safe to return to
// clients; Detail carries diagnostic text from the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality so callers can write errors.Is(err, apperrors.ErrNotFound).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// HTTPStatus maps the error kind to a response status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Sentinels for errors.Is comparisons.
var (
	ErrValidation       = &Error{Kind: KindValidation}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrDuplicateKey     = &Error{Kind: KindDuplicateKey}
	ErrStoreUnavailable = &Error{Kind: KindStoreUnavailable}
	ErrStore            = &Error{Kind: KindStore}
)

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(entity string, id interface{}) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", entity),
		Detail:  fmt.Sprintf("id: %v", id),
	}
}

func DuplicateKey(entity string, id interface{}, err error) *Error {
	return &Error{
		Kind:    KindDuplicateKey,
		Message: fmt.Sprintf("%s %v already exists", entity, id),
		Detail:  causeText(err),
		Err:     err,
	}
}

func StoreUnavailable(op string, err error) *Error {
	return &Error{
		Kind:    KindStoreUnavailable,
		Message: fmt.Sprintf("store unavailable during %s", op),
		Detail:  causeText(err),
		Err:     err,
	}
}

func Store(op string, err error) *Error {
	return &Error{
		Kind:    KindStore,
		Message: fmt.Sprintf("store error during %s", op),
		Detail:  causeText(err),
		Err:     err,
	}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// From returns err as an *Error, wrapping unclassified errors as internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindInternal, Message: "unexpected error", Detail: causeText(err), Err: err}
}

func causeText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
