package k8sclient

import (
	"context"

	"github.com/go-logr/logr"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	syncerrors "github.com/irenedo/iam-eks-user-mapper/pkg/errors"
	"github.com/irenedo/iam-eks-user-mapper/pkg/mapping"
)

const (
	// Namespace and name of the aws-auth ConfigMap EKS reads. Refer to
	// https://docs.aws.amazon.com/eks/latest/userguide/add-user-role.html
	AwsAuthNamespace = "kube-system"
	AwsAuthName      = "aws-auth"
)

// ConfigMapStore implements Store against the aws-auth ConfigMap.
type ConfigMapStore struct {
	clientset kubernetes.Interface
	log       logr.Logger
}

// NewConfigMapStore returns a Store backed by the given clientset.
func NewConfigMapStore(clientset kubernetes.Interface, log logr.Logger) *ConfigMapStore {
	return &ConfigMapStore{clientset: clientset, log: log}
}

func (s *ConfigMapStore) Get(ctx context.Context) (*AuthMap, error) {
	cm, err := s.clientset.CoreV1().ConfigMaps(AwsAuthNamespace).Get(ctx, AwsAuthName, metav1.GetOptions{})
	if err != nil {
		return nil, &syncerrors.StoreError{
			Op:   "read",
			Name: AwsAuthNamespace + "/" + AwsAuthName,
			Kind: syncerrors.ClassifyStore(err),
			Err:  err,
		}
	}

	doc, err := mapping.ParseDocument(cm.Data)
	if err != nil {
		return nil, &syncerrors.StoreError{
			Op:   "read",
			Name: AwsAuthNamespace + "/" + AwsAuthName,
			Kind: syncerrors.KindTransient,
			Err:  err,
		}
	}

	return &AuthMap{Document: doc, configMap: cm}, nil
}

func (s *ConfigMapStore) Put(ctx context.Context, authMap *AuthMap) error {
	data, err := authMap.Document.Render()
	if err != nil {
		return &syncerrors.StoreError{
			Op:   "write",
			Name: AwsAuthNamespace + "/" + AwsAuthName,
			Kind: syncerrors.KindTransient,
			Err:  err,
		}
	}

	cm := authMap.configMap.DeepCopy()
	if cm.Data == nil {
		cm.Data = make(map[string]string, len(data))
	}
	for key, value := range data {
		cm.Data[key] = value
	}

	// Update, not Patch: the resourceVersion from Get rides along, so a
	// concurrent edit comes back as a Conflict for the runner to retry on.
	if _, err := s.clientset.CoreV1().ConfigMaps(AwsAuthNamespace).Update(ctx, cm, metav1.UpdateOptions{}); err != nil {
		return &syncerrors.StoreError{
			Op:   "write",
			Name: AwsAuthNamespace + "/" + AwsAuthName,
			Kind: syncerrors.ClassifyStore(err),
			Err:  err,
		}
	}

	s.log.V(1).Info("replaced aws-auth ConfigMap",
		"users", len(authMap.Document.Users), "roles", len(authMap.Document.Roles))
	return nil
}
