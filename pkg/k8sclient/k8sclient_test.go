package k8sclient_test

import (
	"context"
	"errors"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	syncerrors "github.com/irenedo/iam-eks-user-mapper/pkg/errors"
	"github.com/irenedo/iam-eks-user-mapper/pkg/k8sclient"
	"github.com/irenedo/iam-eks-user-mapper/pkg/mapping"
)

func awsAuthConfigMap(data map[string]string) *corev1.ConfigMap {
	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      k8sclient.AwsAuthName,
			Namespace: k8sclient.AwsAuthNamespace,
		},
		Data: data,
	}
}

var _ = Describe("ConfigMapStore", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("Get", func() {
		It("reads and decodes the aws-auth ConfigMap", func() {
			clientset := fake.NewSimpleClientset(awsAuthConfigMap(map[string]string{
				mapping.MapUsersKey: `
- userarn: arn:aws:iam::123456789012:user/alice
  username: alice
  groups:
    - system:masters
  syncedBy: iam-eks-user-mapper
`,
			}))
			store := k8sclient.NewConfigMapStore(clientset, logr.Discard())

			authMap, err := store.Get(ctx)

			Expect(err).ToNot(HaveOccurred())
			Expect(authMap.Document.Users).To(HaveLen(1))
			Expect(authMap.Document.Users[0].Username).To(Equal("alice"))
			Expect(authMap.Document.Roles).To(BeEmpty())
		})

		It("reports a missing ConfigMap as a not-found read error", func() {
			store := k8sclient.NewConfigMapStore(fake.NewSimpleClientset(), logr.Discard())

			_, err := store.Get(ctx)

			var storeErr *syncerrors.StoreError
			Expect(errors.As(err, &storeErr)).To(BeTrue())
			Expect(storeErr.Op).To(Equal("read"))
			Expect(storeErr.Kind).To(Equal(syncerrors.KindNotFound))
		})

		It("reports undecodable data as a read error", func() {
			clientset := fake.NewSimpleClientset(awsAuthConfigMap(map[string]string{
				mapping.MapUsersKey: "{broken",
			}))
			store := k8sclient.NewConfigMapStore(clientset, logr.Discard())

			_, err := store.Get(ctx)

			var storeErr *syncerrors.StoreError
			Expect(errors.As(err, &storeErr)).To(BeTrue())
			Expect(storeErr.Op).To(Equal("read"))
		})
	})

	Describe("Put", func() {
		It("replaces the document while keeping unrelated data keys", func() {
			clientset := fake.NewSimpleClientset(awsAuthConfigMap(map[string]string{
				"unrelated": "kept",
			}))
			store := k8sclient.NewConfigMapStore(clientset, logr.Discard())

			authMap, err := store.Get(ctx)
			Expect(err).ToNot(HaveOccurred())

			authMap.Document.Users = []mapping.UserMapping{
				{
					UserARN:  "arn:aws:iam::123456789012:user/alice",
					Username: "alice",
					Groups:   []string{"system:masters"},
					SyncedBy: mapping.SyncedByValue,
				},
			}
			Expect(store.Put(ctx, authMap)).To(Succeed())

			updated, err := clientset.CoreV1().ConfigMaps(k8sclient.AwsAuthNamespace).Get(ctx, k8sclient.AwsAuthName, metav1.GetOptions{})
			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Data["unrelated"]).To(Equal("kept"))
			Expect(updated.Data[mapping.MapUsersKey]).To(ContainSubstring("arn:aws:iam::123456789012:user/alice"))
			Expect(updated.Data[mapping.MapRolesKey]).ToNot(BeEmpty())

			roundTrip, err := store.Get(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(roundTrip.Document.Users).To(Equal(authMap.Document.Users))
			Expect(roundTrip.Document.Roles).To(BeEmpty())
		})

		It("surfaces a concurrent modification as a conflict write error", func() {
			clientset := fake.NewSimpleClientset(awsAuthConfigMap(nil))
			clientset.PrependReactor("update", "configmaps",
				func(_ k8stesting.Action) (bool, runtime.Object, error) {
					return true, nil, apierrors.NewConflict(
						corev1.Resource("configmaps"), k8sclient.AwsAuthName, errors.New("object was modified"))
				})
			store := k8sclient.NewConfigMapStore(clientset, logr.Discard())

			authMap, err := store.Get(ctx)
			Expect(err).ToNot(HaveOccurred())

			err = store.Put(ctx, authMap)

			var storeErr *syncerrors.StoreError
			Expect(errors.As(err, &storeErr)).To(BeTrue())
			Expect(storeErr.Op).To(Equal("write"))
			Expect(storeErr.Kind).To(Equal(syncerrors.KindConflict))
			Expect(syncerrors.IsConflict(err)).To(BeTrue())
		})
	})
})
