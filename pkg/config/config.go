// Package config holds the immutable runtime configuration.
//
// Configuration is parsed once from CLI flags at startup and validated before
// anything talks to AWS or the cluster. Invalid combinations are fatal; the
// sync loop itself never re-reads configuration.
package config

import (
	"strings"
	"time"

	syncerrors "github.com/irenedo/iam-eks-user-mapper/pkg/errors"
)

// MinRefreshInterval is the lowest accepted sync interval; anything faster
// only burns IAM API quota.
const MinRefreshInterval = time.Second

// IamGroupMapping maps one IAM group to one Kubernetes RBAC group.
type IamGroupMapping struct {
	IamGroup        string
	KubernetesGroup string
}

// Config is the validated, immutable runtime configuration.
type Config struct {
	AWSRegion  string
	AWSRoleArn string // assumed before IAM calls when set

	RefreshInterval time.Duration

	EnableGroupSync bool
	GroupMappings   []IamGroupMapping

	EnableSSO  bool
	SSORoleArn string

	EnableKarpenter  bool
	KarpenterRoleArn string
}

// ParseGroupMappings parses the --iam-k8s-groups flag value, a comma-separated
// list of IamGroup->KubernetesGroup pairs.
func ParseGroupMappings(raw string) ([]IamGroupMapping, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var mappings []IamGroupMapping
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		iamGroup, k8sGroup, found := strings.Cut(pair, "->")
		if !found {
			return nil, syncerrors.NewConfigError("iam-k8s-groups", "mapping %q is not of the form IamGroup->KubernetesGroup", pair)
		}
		iamGroup = strings.TrimSpace(iamGroup)
		k8sGroup = strings.TrimSpace(k8sGroup)
		if iamGroup == "" || k8sGroup == "" {
			return nil, syncerrors.NewConfigError("iam-k8s-groups", "mapping %q has an empty side", pair)
		}

		mappings = append(mappings, IamGroupMapping{IamGroup: iamGroup, KubernetesGroup: k8sGroup})
	}

	if len(mappings) == 0 {
		return nil, syncerrors.NewConfigError("iam-k8s-groups", "no usable mapping in %q", raw)
	}
	return mappings, nil
}

// Validate checks flag combinations once at startup.
func (c Config) Validate() error {
	if c.AWSRegion == "" {
		return syncerrors.NewConfigError("aws-region", "region is required")
	}
	if c.RefreshInterval < MinRefreshInterval {
		return syncerrors.NewConfigError("refresh-interval", "interval %s is below the minimum %s", c.RefreshInterval, MinRefreshInterval)
	}
	if c.EnableGroupSync && len(c.GroupMappings) == 0 {
		return syncerrors.NewConfigError("iam-k8s-groups", "group sync is enabled but no IAM to Kubernetes group mapping is configured")
	}
	if c.EnableSSO && c.SSORoleArn == "" {
		return syncerrors.NewConfigError("sso-role-arn", "SSO sync is enabled but no role ARN is configured")
	}
	if c.EnableKarpenter && c.KarpenterRoleArn == "" {
		return syncerrors.NewConfigError("karpenter-role-arn", "Karpenter sync is enabled but no role ARN is configured")
	}
	if !c.EnableGroupSync && !c.EnableSSO && !c.EnableKarpenter {
		return syncerrors.NewConfigError("enable-group-sync", "nothing to sync: group sync, SSO and Karpenter are all disabled")
	}
	return nil
}

// RoleSyncEnabled reports whether any role entries are desired; when false
// the reconciler drops every owned mapRoles entry.
func (c Config) RoleSyncEnabled() bool {
	return c.EnableSSO || c.EnableKarpenter
}
