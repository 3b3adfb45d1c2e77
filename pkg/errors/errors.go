// Package errors defines the failure taxonomy of the sync loop.
//
// Configuration errors are fatal at startup. Everything else is scoped to a
// single pass: identity-source failures abort the pass before any write,
// store failures abort the pass, and write conflicts are retried within the
// pass a bounded number of times. No per-pass error ever terminates the
// process.
package errors

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// Kind buckets a failure for retry decisions.
type Kind int

const (
	// KindTransient covers network, throttling and other retry-next-tick failures.
	KindTransient Kind = iota
	// KindAuth covers credential and permission failures.
	KindAuth
	// KindNotFound covers missing IAM groups or roles.
	KindNotFound
	// KindConflict covers store writes rejected by a concurrent modification.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not-found"
	case KindConflict:
		return "conflict"
	default:
		return "transient"
	}
}

// ConfigError reports invalid startup configuration. Fatal, never per-pass.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Msg)
}

// NewConfigError builds a ConfigError for the given flag or field.
func NewConfigError(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// IdentitySourceError reports a failed AWS identity query. Subject is the IAM
// group or role ARN involved.
type IdentitySourceError struct {
	Subject string
	Kind    Kind
	Err     error
}

func (e *IdentitySourceError) Error() string {
	return fmt.Sprintf("identity source error (%s) for %q: %v", e.Kind, e.Subject, e.Err)
}

func (e *IdentitySourceError) Unwrap() error { return e.Err }

// StoreError reports a failed read or write of the mapping ConfigMap.
type StoreError struct {
	Op   string // "read" or "write"
	Name string // namespace/name of the ConfigMap
	Kind Kind
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s error (%s) for %s: %v", e.Op, e.Kind, e.Name, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ClassifyAWS buckets an AWS SDK error. Unknown errors default to transient
// so the loop keeps retrying on the next tick.
func ClassifyAWS(err error) Kind {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return KindTransient
	}

	switch apiErr.ErrorCode() {
	case "NoSuchEntity", "NoSuchEntityException":
		return KindNotFound
	case "AccessDenied", "AccessDeniedException", "UnauthorizedAccess",
		"InvalidClientTokenId", "ExpiredToken", "ExpiredTokenException":
		return KindAuth
	default:
		return KindTransient
	}
}

// ClassifyStore buckets a Kubernetes API error from the mapping store.
func ClassifyStore(err error) Kind {
	switch {
	case apierrors.IsConflict(err):
		return KindConflict
	case apierrors.IsUnauthorized(err) || apierrors.IsForbidden(err):
		return KindAuth
	case apierrors.IsNotFound(err):
		return KindNotFound
	default:
		return KindTransient
	}
}

// IsConflict reports whether err is a store write rejected by a concurrent
// modification, either as our StoreError or as the raw Kubernetes error.
func IsConflict(err error) bool {
	var storeErr *StoreError
	if errors.As(err, &storeErr) && storeErr.Kind == KindConflict {
		return true
	}
	return apierrors.IsConflict(err)
}
