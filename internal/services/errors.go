package services

import "errors"

var (
	// ErrForbidden means the caller's role is not allowed to perform the action.
	ErrForbidden = errors.New("insufficient role")

	// ErrTenantNotFound means the referenced tenant record does not exist.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrNoSubscription means the tenant has no live billing subscription attached.
	ErrNoSubscription = errors.New("no active subscription found")

	// ErrUnmappedStatus means the payment processor sent a subscription status
	// outside the known five-value set. The tenant is left unchanged.
	ErrUnmappedStatus = errors.New("unmapped stripe subscription status")
)
