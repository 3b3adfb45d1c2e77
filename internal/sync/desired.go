// Package sync implements the reconciliation engine: it derives the desired
// identity mappings from AWS IAM state, diffs them against the aws-auth
// document, and drives one serialized sync pass per tick.
package sync

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/irenedo/iam-eks-user-mapper/pkg/awsclient"
	"github.com/irenedo/iam-eks-user-mapper/pkg/config"
	"github.com/irenedo/iam-eks-user-mapper/pkg/mapping"
)

// Fixed policy values for the role entries this tool writes. Usernames are
// aws-auth templates expanded by EKS, not by this tool.
const (
	ssoUsernameTemplate       = "{{SessionName}}"
	karpenterUsernameTemplate = "system:node:{{EC2PrivateDNSName}}"
)

var (
	ssoGroups       = []string{"system:masters"}
	karpenterGroups = []string{"system:bootstrappers", "system:nodes"}
)

// Desired is the full set of entries this tool wants present in aws-auth.
type Desired struct {
	Users []mapping.UserMapping
	Roles []mapping.RoleMapping
}

// DesiredStateBuilder turns IAM group membership and role configuration into
// desired mapping entries. Any AWS failure aborts the build: desired state is
// only ever computed from a fully successful fetch.
type DesiredStateBuilder struct {
	AWS awsclient.IdentitySource
	Cfg config.Config
	Log logr.Logger
}

// Build queries AWS and returns the desired entries, every one tagged with
// the ownership marker.
func (b *DesiredStateBuilder) Build(ctx context.Context) (Desired, error) {
	var desired Desired

	if b.Cfg.EnableGroupSync {
		users, err := b.buildUsers(ctx)
		if err != nil {
			return Desired{}, err
		}
		desired.Users = users
	}

	roles, err := b.buildRoles(ctx)
	if err != nil {
		return Desired{}, err
	}
	desired.Roles = roles

	return desired, nil
}

// buildUsers lists every configured IAM group in configuration order. A user
// present in several groups gets one entry with the union of the Kubernetes
// groups, order of first appearance, no duplicates.
func (b *DesiredStateBuilder) buildUsers(ctx context.Context) ([]mapping.UserMapping, error) {
	var users []mapping.UserMapping
	byARN := make(map[string]int)

	for _, groupMapping := range b.Cfg.GroupMappings {
		members, err := b.AWS.ListGroupMembers(ctx, groupMapping.IamGroup)
		if err != nil {
			return nil, err
		}
		b.Log.V(1).Info("listed IAM group members",
			"group", groupMapping.IamGroup, "members", len(members))

		for _, member := range members {
			if idx, ok := byARN[member.ARN]; ok {
				users[idx].Groups = appendGroup(users[idx].Groups, groupMapping.KubernetesGroup)
				continue
			}
			byARN[member.ARN] = len(users)
			users = append(users, mapping.UserMapping{
				UserARN:  member.ARN,
				Username: member.Name,
				Groups:   []string{groupMapping.KubernetesGroup},
				SyncedBy: mapping.SyncedByValue,
			})
		}
	}

	return users, nil
}

// buildRoles produces the fixed-policy role entries for SSO and Karpenter.
// Role ARNs are verified against IAM each pass and written without their IAM
// path, which aws-auth rejects.
func (b *DesiredStateBuilder) buildRoles(ctx context.Context) ([]mapping.RoleMapping, error) {
	var roles []mapping.RoleMapping
	seen := make(map[string]bool)

	add := func(roleArn, username string, groups []string) error {
		role, err := b.AWS.DescribeRole(ctx, roleArn)
		if err != nil {
			return err
		}
		arn := awsclient.SanitizeRoleARN(role.ARN)
		if seen[arn] {
			return nil
		}
		seen[arn] = true
		roles = append(roles, mapping.RoleMapping{
			RoleARN:  arn,
			Username: username,
			Groups:   append([]string(nil), groups...),
			SyncedBy: mapping.SyncedByValue,
		})
		return nil
	}

	if b.Cfg.EnableSSO {
		if err := add(b.Cfg.SSORoleArn, ssoUsernameTemplate, ssoGroups); err != nil {
			return nil, err
		}
	}
	if b.Cfg.EnableKarpenter {
		if err := add(b.Cfg.KarpenterRoleArn, karpenterUsernameTemplate, karpenterGroups); err != nil {
			return nil, err
		}
	}

	return roles, nil
}

func appendGroup(groups []string, group string) []string {
	for _, existing := range groups {
		if existing == group {
			return groups
		}
	}
	return append(groups, group)
}
