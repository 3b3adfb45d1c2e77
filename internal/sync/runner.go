package sync

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/util/retry"

	"github.com/irenedo/iam-eks-user-mapper/pkg/awsclient"
	"github.com/irenedo/iam-eks-user-mapper/pkg/config"
	syncerrors "github.com/irenedo/iam-eks-user-mapper/pkg/errors"
	"github.com/irenedo/iam-eks-user-mapper/pkg/k8sclient"
	"github.com/irenedo/iam-eks-user-mapper/pkg/mapping"
	"github.com/irenedo/iam-eks-user-mapper/pkg/metrics"
)

// Per-phase timeouts. A pass blocks on at most three sequential network
// calls: the IAM fetch, the store read, and conditionally the store write.
const (
	fetchTimeout = 30 * time.Second
	storeTimeout = 15 * time.Second
)

// Runner executes one sync pass per tick. Passes are strictly serialized: a
// new pass never starts before the previous one finished, and no state
// survives from one pass to the next.
type Runner struct {
	Store   k8sclient.Store
	Builder *DesiredStateBuilder
	Cfg     config.Config
	Log     logr.Logger
}

// NewRunner wires a Runner from its collaborators.
func NewRunner(aws awsclient.IdentitySource, store k8sclient.Store, cfg config.Config, log logr.Logger) *Runner {
	return &Runner{
		Store:   store,
		Builder: &DesiredStateBuilder{AWS: aws, Cfg: cfg, Log: log},
		Cfg:     cfg,
		Log:     log,
	}
}

// Start runs the sync loop until the context is cancelled. It implements
// manager.Runnable. A failing pass is logged and retried on the next tick;
// it never stops the loop.
func (r *Runner) Start(ctx context.Context) error {
	r.Log.Info("starting sync loop", "interval", r.Cfg.RefreshInterval)

	wait.NonSlidingUntilWithContext(ctx, func(ctx context.Context) {
		if err := r.SyncOnce(ctx); err != nil {
			r.Log.Error(err, "sync pass failed, will retry on next tick")
		}
	}, r.Cfg.RefreshInterval)

	r.Log.Info("sync loop stopped")
	return nil
}

// NeedLeaderElection keeps replicas from writing aws-auth concurrently.
func (r *Runner) NeedLeaderElection() bool { return true }

// SyncOnce performs one full pass: fetch desired state from AWS, read the
// live document, diff, and write back only when something changed. A failed
// fetch aborts the pass before any write. A write conflict re-reads and
// re-runs the diff within the same pass, a bounded number of times.
func (r *Runner) SyncOnce(ctx context.Context) error {
	metrics.SyncPasses.Inc()

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	desired, err := r.Builder.Build(fetchCtx)
	cancel()
	if err != nil {
		metrics.IncSyncError("fetch")
		return err
	}

	var final mapping.Document
	err = retry.OnError(retry.DefaultRetry, syncerrors.IsConflict, func() error {
		storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
		defer cancel()

		authMap, err := r.Store.Get(storeCtx)
		if err != nil {
			metrics.IncSyncError("read")
			return err
		}

		updated, changed := Reconcile(authMap.Document, desired, r.Cfg.EnableGroupSync, r.Cfg.RoleSyncEnabled())
		if !changed {
			r.Log.V(1).Info("aws-auth already up to date")
			final = authMap.Document
			return nil
		}

		authMap.Document = updated
		if err := r.Store.Put(storeCtx, authMap); err != nil {
			if syncerrors.IsConflict(err) {
				r.Log.Info("aws-auth was modified concurrently, retrying with fresh state")
			} else {
				metrics.IncSyncError("write")
			}
			return err
		}

		r.Log.Info("aws-auth updated",
			"users", len(updated.Users), "roles", len(updated.Roles))
		final = updated
		return nil
	})
	if err != nil {
		if syncerrors.IsConflict(err) {
			metrics.IncSyncError("write")
		}
		return err
	}

	metrics.ObserveSuccess(countOwned(final.Users), countOwned(final.Roles))
	return nil
}

func countOwned[E entry[E]](entries []E) int {
	owned := 0
	for _, e := range entries {
		if e.Ownership() == mapping.Owned {
			owned++
		}
	}
	return owned
}
