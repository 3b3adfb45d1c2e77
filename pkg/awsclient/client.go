package awsclient

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/go-logr/logr"

	syncerrors "github.com/irenedo/iam-eks-user-mapper/pkg/errors"
)

// iamAPI is the slice of the IAM client this package uses; it keeps the
// client testable without a live AWS account.
type iamAPI interface {
	iam.GetGroupAPIClient
	GetRole(ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error)
}

// Client implements IdentitySource using the AWS SDK.
type Client struct {
	iam iamAPI
	log logr.Logger
}

// NewClient creates an IAM identity source for the given region. When roleArn
// is set and no static credentials are present in the environment, IAM calls
// run under that assumed role.
func NewClient(ctx context.Context, region, roleArn string, log logr.Logger) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if roleArn != "" && os.Getenv("AWS_ACCESS_KEY_ID") == "" {
		stsClient := sts.NewFromConfig(cfg)
		cfg.Credentials = aws.NewCredentialsCache(stscreds.NewAssumeRoleProvider(stsClient, roleArn))
		log.Info("IAM calls will run under assumed role", "roleArn", roleArn)
	}

	return &Client{
		iam: iam.NewFromConfig(cfg),
		log: log,
	}, nil
}

// ListGroupMembers returns every user of the IAM group, following pagination.
// An empty group is not an error: it means every previously synced member of
// that group must be dropped on this pass.
func (c *Client) ListGroupMembers(ctx context.Context, groupName string) ([]UserPrincipal, error) {
	var users []UserPrincipal

	paginator := iam.NewGetGroupPaginator(c.iam, &iam.GetGroupInput{
		GroupName: aws.String(groupName),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &syncerrors.IdentitySourceError{
				Subject: groupName,
				Kind:    syncerrors.ClassifyAWS(err),
				Err:     err,
			}
		}
		for _, user := range page.Users {
			users = append(users, UserPrincipal{
				ARN:  aws.ToString(user.Arn),
				Name: aws.ToString(user.UserName),
			})
		}
	}

	if len(users) == 0 {
		c.log.Info("IAM group has no members", "group", groupName)
	}
	return users, nil
}

// DescribeRole resolves the role behind roleArn via GetRole.
func (c *Client) DescribeRole(ctx context.Context, roleArn string) (RolePrincipal, error) {
	roleName, err := roleNameFromARN(roleArn)
	if err != nil {
		return RolePrincipal{}, &syncerrors.IdentitySourceError{
			Subject: roleArn,
			Kind:    syncerrors.KindNotFound,
			Err:     err,
		}
	}

	out, err := c.iam.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(roleName)})
	if err != nil {
		return RolePrincipal{}, &syncerrors.IdentitySourceError{
			Subject: roleArn,
			Kind:    syncerrors.ClassifyAWS(err),
			Err:     err,
		}
	}
	return RolePrincipal{ARN: aws.ToString(out.Role.Arn)}, nil
}

// SanitizeRoleARN strips the IAM path from a role ARN. aws-auth rejects role
// ARNs carrying a path, so arn:aws:iam::123:role/path/name must be written as
// arn:aws:iam::123:role/name.
func SanitizeRoleARN(roleArn string) string {
	prefix, rest, found := strings.Cut(roleArn, ":role/")
	if !found {
		return roleArn
	}
	if idx := strings.LastIndex(rest, "/"); idx >= 0 {
		rest = rest[idx+1:]
	}
	return prefix + ":role/" + rest
}

func roleNameFromARN(roleArn string) (string, error) {
	_, rest, found := strings.Cut(roleArn, ":role/")
	if !found || rest == "" {
		return "", fmt.Errorf("%q is not an IAM role ARN", roleArn)
	}
	if idx := strings.LastIndex(rest, "/"); idx >= 0 {
		rest = rest[idx+1:]
	}
	if rest == "" {
		return "", fmt.Errorf("%q is not an IAM role ARN", roleArn)
	}
	return rest, nil
}
