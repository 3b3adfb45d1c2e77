// Package k8sclient reads and writes the aws-auth identity mapping ConfigMap.
//
// The store is deliberately dumb: it reads the live object (never a cache),
// decodes the mapping document, and writes the whole object back carrying the
// resourceVersion it was read with, so a concurrent writer surfaces as a
// Conflict instead of being silently overwritten. Retrying a conflict means
// re-reading and re-running the diff, which is the sync runner's job.
package k8sclient

import (
	"context"

	corev1 "k8s.io/api/core/v1"

	"github.com/irenedo/iam-eks-user-mapper/pkg/mapping"
)

// AuthMap pairs a decoded mapping document with the ConfigMap it came from.
// Put must receive the AuthMap returned by Get within the same pass.
type AuthMap struct {
	Document mapping.Document

	configMap *corev1.ConfigMap
}

// Store is the mapping store used by the sync runner.
type Store interface {
	// Get reads the live aws-auth ConfigMap and decodes its document.
	Get(ctx context.Context) (*AuthMap, error)
	// Put replaces the whole ConfigMap with the AuthMap's document.
	Put(ctx context.Context, authMap *AuthMap) error
}
