package errors_test

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"

	syncerrors "github.com/irenedo/iam-eks-user-mapper/pkg/errors"
)

var _ = Describe("ClassifyAWS", func() {
	awsError := func(code string) error {
		return &smithy.GenericAPIError{Code: code, Message: "boom"}
	}

	It("classifies missing entities as not-found", func() {
		Expect(syncerrors.ClassifyAWS(awsError("NoSuchEntity"))).To(Equal(syncerrors.KindNotFound))
		Expect(syncerrors.ClassifyAWS(awsError("NoSuchEntityException"))).To(Equal(syncerrors.KindNotFound))
	})

	It("classifies credential and permission failures as auth", func() {
		Expect(syncerrors.ClassifyAWS(awsError("AccessDenied"))).To(Equal(syncerrors.KindAuth))
		Expect(syncerrors.ClassifyAWS(awsError("InvalidClientTokenId"))).To(Equal(syncerrors.KindAuth))
		Expect(syncerrors.ClassifyAWS(awsError("ExpiredToken"))).To(Equal(syncerrors.KindAuth))
	})

	It("classifies throttling and unknown errors as transient", func() {
		Expect(syncerrors.ClassifyAWS(awsError("Throttling"))).To(Equal(syncerrors.KindTransient))
		Expect(syncerrors.ClassifyAWS(errors.New("connection reset"))).To(Equal(syncerrors.KindTransient))
	})

	It("sees through wrapped errors", func() {
		wrapped := fmt.Errorf("listing group: %w", awsError("AccessDenied"))
		Expect(syncerrors.ClassifyAWS(wrapped)).To(Equal(syncerrors.KindAuth))
	})
})

var _ = Describe("ClassifyStore", func() {
	It("classifies optimistic-concurrency rejections as conflict", func() {
		err := apierrors.NewConflict(corev1.Resource("configmaps"), "aws-auth", errors.New("modified"))
		Expect(syncerrors.ClassifyStore(err)).To(Equal(syncerrors.KindConflict))
	})

	It("classifies permission failures as auth", func() {
		err := apierrors.NewForbidden(corev1.Resource("configmaps"), "aws-auth", errors.New("denied"))
		Expect(syncerrors.ClassifyStore(err)).To(Equal(syncerrors.KindAuth))
	})

	It("classifies a missing ConfigMap as not-found", func() {
		err := apierrors.NewNotFound(corev1.Resource("configmaps"), "aws-auth")
		Expect(syncerrors.ClassifyStore(err)).To(Equal(syncerrors.KindNotFound))
	})

	It("defaults to transient", func() {
		Expect(syncerrors.ClassifyStore(errors.New("connection refused"))).To(Equal(syncerrors.KindTransient))
	})
})

var _ = Describe("IsConflict", func() {
	It("matches a conflict StoreError", func() {
		err := &syncerrors.StoreError{Op: "write", Name: "kube-system/aws-auth", Kind: syncerrors.KindConflict, Err: errors.New("modified")}
		Expect(syncerrors.IsConflict(err)).To(BeTrue())
	})

	It("matches a wrapped conflict StoreError", func() {
		inner := &syncerrors.StoreError{Op: "write", Name: "kube-system/aws-auth", Kind: syncerrors.KindConflict, Err: errors.New("modified")}
		Expect(syncerrors.IsConflict(fmt.Errorf("pass failed: %w", inner))).To(BeTrue())
	})

	It("matches a raw Kubernetes conflict", func() {
		err := apierrors.NewConflict(corev1.Resource("configmaps"), "aws-auth", errors.New("modified"))
		Expect(syncerrors.IsConflict(err)).To(BeTrue())
	})

	It("does not match other store errors", func() {
		err := &syncerrors.StoreError{Op: "read", Name: "kube-system/aws-auth", Kind: syncerrors.KindTransient, Err: errors.New("timeout")}
		Expect(syncerrors.IsConflict(err)).To(BeFalse())
	})
})

var _ = Describe("error messages", func() {
	It("names the phase and subject", func() {
		identityErr := &syncerrors.IdentitySourceError{
			Subject: "Admins",
			Kind:    syncerrors.KindAuth,
			Err:     errors.New("denied"),
		}
		Expect(identityErr.Error()).To(ContainSubstring("Admins"))
		Expect(identityErr.Error()).To(ContainSubstring("auth"))

		configErr := syncerrors.NewConfigError("iam-k8s-groups", "mapping %q is malformed", "x")
		Expect(configErr.Error()).To(ContainSubstring("iam-k8s-groups"))
	})
})
