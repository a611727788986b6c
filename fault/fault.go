// Copyright 2023 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fault defines the error taxonomy shared by the query pipeline, and
// the per-call warning collector. Every error crossing the public command
// boundary carries a machine-readable Kind next to its human message.
package fault

import (
	"fmt"

	"github.com/stockparfait/errors"
)

// Kind is the machine-readable error classification.
type Kind string

// Error kinds guaranteed by the platform.
const (
	KindValidation        = Kind("ValidationError")
	KindProviderNotFound  = Kind("ProviderNotFoundError")
	KindModelNotSupported = Kind("ModelNotSupportedError")
	KindMissingCredential = Kind("MissingCredentialError")
	KindNoViableProvider  = Kind("NoViableProviderError")
	KindFetchNetwork      = Kind("FetchError:network")
	KindFetchAuth         = Kind("FetchError:auth")
	KindFetchQuota        = Kind("FetchError:quota")
	KindFetchEmpty        = Kind("FetchError:empty")
	KindTransform         = Kind("TransformError")
	// KindProvider wraps an unclassified failure raised inside a vendor
	// fetcher.
	KindProvider = Kind("ProviderError")
)

// HTTPStatus maps the kind to the status code used by the REST collaborator:
// 400 for domain errors, 422 for validation errors, 500 for anything else.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return 422
	case KindProviderNotFound, KindModelNotSupported, KindMissingCredential,
		KindNoViableProvider, KindFetchNetwork, KindFetchAuth, KindFetchQuota,
		KindFetchEmpty, KindTransform:
		return 400
	}
	return 500
}

// Error is a classified error with an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

var _ error = &Error{}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Kind) + ": " + e.Message
	}
	return string(e.Kind) + ": " + e.Message + "\n" + e.Cause.Error()
}

// Unwrap supports errors.Is / errors.As chains.
func (e *Error) Unwrap() error { return e.Cause }

// New creates a classified error without a cause.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an existing error, keeping it as the cause. If err is
// already classified, its original kind is preserved and only the message is
// annotated, so the first classification along the call chain wins.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	if err == nil {
		return New(kind, format, args...)
	}
	if e := AsError(err); e != nil {
		return &Error{
			Kind:    e.Kind,
			Message: fmt.Sprintf(format, args...),
			Cause:   err,
		}
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: err}
}

// AsError extracts the classified error from a chain, or nil.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// KindOf returns the kind of a classified error in the chain, or KindProvider
// for an unclassified non-nil error, or "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return Kind("")
	}
	if e := AsError(err); e != nil {
		return e.Kind
	}
	return KindProvider
}

// Detail is the error response shape for the HTTP collaborator.
type Detail struct {
	Kind   Kind   `json:"kind"`
	Detail string `json:"detail"`
}

// ToDetail converts any error to the wire shape.
func ToDetail(err error) Detail {
	if e := AsError(err); e != nil {
		return Detail{Kind: e.Kind, Detail: e.Message}
	}
	return Detail{Kind: KindProvider, Detail: err.Error()}
}
