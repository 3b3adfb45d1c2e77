// Package awsclient provides read-only access to AWS IAM identities.
//
// This package implements the identity source side of the sync loop: listing
// the users of the configured IAM groups and checking that a configured role
// exists. All queries run with the ambient credentials of the pod, optionally
// behind an assumed role. Nothing here mutates AWS state.
package awsclient

import (
	"context"
)

// UserPrincipal is an IAM user resolved from group membership.
type UserPrincipal struct {
	ARN  string
	Name string
}

// RolePrincipal is an IAM role referenced by configuration.
type RolePrincipal struct {
	ARN string
}

// IdentitySource lists IAM identities for the desired-state builder.
type IdentitySource interface {
	// ListGroupMembers returns the current members of an IAM group.
	ListGroupMembers(ctx context.Context, groupName string) ([]UserPrincipal, error)
	// DescribeRole checks that the role behind the ARN exists and returns it.
	DescribeRole(ctx context.Context, roleArn string) (RolePrincipal, error)
}
