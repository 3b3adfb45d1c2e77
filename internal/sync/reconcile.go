package sync

import (
	"github.com/irenedo/iam-eks-user-mapper/pkg/mapping"
)

// entry is what the reconciler needs from a mapping entry: its identity, who
// owns it, and field equality against another entry of the same kind.
type entry[E any] interface {
	ARN() string
	Ownership() mapping.Ownership
	EqualTo(E) bool
}

// Reconcile merges desired state into the current document. Foreign entries
// are preserved untouched in their original relative order; owned entries are
// fully replaced by the desired set; a foreign entry always wins over a
// desired entry with the same ARN. The user and role lists are independent
// namespaces reconciled with the same rule.
//
// The returned bool reports whether the document needs to be written back.
// Reconcile performs no I/O.
func Reconcile(current mapping.Document, desired Desired, groupSyncEnabled, roleSyncEnabled bool) (mapping.Document, bool) {
	users, usersChanged := reconcileList(current.Users, desired.Users, groupSyncEnabled)
	roles, rolesChanged := reconcileList(current.Roles, desired.Roles, roleSyncEnabled)

	return mapping.Document{Users: users, Roles: roles}, usersChanged || rolesChanged
}

func reconcileList[E entry[E]](current, desired []E, enabled bool) ([]E, bool) {
	// A disabled feature desires nothing, which drops every owned entry.
	if !enabled {
		desired = nil
	}

	out := make([]E, 0, len(current)+len(desired))

	// Foreign entries pass through unchanged, first occurrence per ARN.
	// Duplicates left behind by earlier buggy writers are collapsed here.
	foreign := make(map[string]bool, len(current))
	for _, e := range current {
		if e.Ownership() == mapping.Owned {
			continue
		}
		if foreign[e.ARN()] {
			continue
		}
		foreign[e.ARN()] = true
		out = append(out, e)
	}

	// Desired entries follow, in builder order. An ARN held by a foreign
	// entry is never overwritten: the manual entry takes precedence and the
	// desired entry is dropped.
	seen := make(map[string]bool, len(desired))
	for _, d := range desired {
		if foreign[d.ARN()] || seen[d.ARN()] {
			continue
		}
		seen[d.ARN()] = true
		out = append(out, d)
	}

	return out, listChanged(current, out)
}

// listChanged compares the lists as sets keyed by ARN; pure reordering is not
// a change, but any addition, removal, field edit, or duplicate collapse is.
func listChanged[E entry[E]](before, after []E) bool {
	if len(before) != len(after) {
		return true
	}

	index := make(map[string]E, len(before))
	for _, e := range before {
		if _, dup := index[e.ARN()]; dup {
			return true
		}
		index[e.ARN()] = e
	}
	for _, e := range after {
		b, ok := index[e.ARN()]
		if !ok || !b.EqualTo(e) {
			return true
		}
	}
	return false
}
