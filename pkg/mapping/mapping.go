// Package mapping holds the data model for the aws-auth identity mapping
// document stored in the kube-system/aws-auth ConfigMap.
//
// The document is made of two independent lists serialized as YAML under the
// mapUsers and mapRoles data keys. Entries written by this tool carry the
// syncedBy marker so that later passes can tell them apart from entries
// managed by operators or other tools. Foreign entries are never touched.
package mapping

import (
	"fmt"
	"slices"

	"sigs.k8s.io/yaml"
)

const (
	// SyncedByValue marks entries owned by this tool.
	SyncedByValue = "iam-eks-user-mapper"

	// ConfigMap data keys holding the serialized lists.
	MapUsersKey = "mapUsers"
	MapRolesKey = "mapRoles"
)

// Ownership discriminates entries this tool manages from entries it must
// leave alone.
type Ownership int

const (
	Foreign Ownership = iota
	Owned
)

func ownershipOf(syncedBy string) Ownership {
	if syncedBy == SyncedByValue {
		return Owned
	}
	return Foreign
}

// UserMapping is one mapUsers entry.
type UserMapping struct {
	UserARN  string   `json:"userarn"`
	Username string   `json:"username"`
	Groups   []string `json:"groups"`
	SyncedBy string   `json:"syncedBy,omitempty"`
}

func (u UserMapping) ARN() string          { return u.UserARN }
func (u UserMapping) Ownership() Ownership { return ownershipOf(u.SyncedBy) }

// EqualTo compares all persisted fields, groups as an ordered sequence.
func (u UserMapping) EqualTo(other UserMapping) bool {
	return u.UserARN == other.UserARN &&
		u.Username == other.Username &&
		u.SyncedBy == other.SyncedBy &&
		slices.Equal(u.Groups, other.Groups)
}

// RoleMapping is one mapRoles entry. Rolename is not produced by this tool
// but round-trips foreign entries that carry it.
type RoleMapping struct {
	RoleARN  string   `json:"rolearn"`
	Username string   `json:"username,omitempty"`
	Rolename string   `json:"rolename,omitempty"`
	Groups   []string `json:"groups"`
	SyncedBy string   `json:"syncedBy,omitempty"`
}

func (r RoleMapping) ARN() string          { return r.RoleARN }
func (r RoleMapping) Ownership() Ownership { return ownershipOf(r.SyncedBy) }

func (r RoleMapping) EqualTo(other RoleMapping) bool {
	return r.RoleARN == other.RoleARN &&
		r.Username == other.Username &&
		r.Rolename == other.Rolename &&
		r.SyncedBy == other.SyncedBy &&
		slices.Equal(r.Groups, other.Groups)
}

// Document is the whole identity mapping: both lists, always read and written
// as a unit.
type Document struct {
	Users []UserMapping
	Roles []RoleMapping
}

// ParseDocument decodes the mapUsers/mapRoles data keys of the aws-auth
// ConfigMap. Missing or empty keys decode to empty lists.
func ParseDocument(data map[string]string) (Document, error) {
	var doc Document

	if raw := data[MapUsersKey]; raw != "" {
		if err := yaml.Unmarshal([]byte(raw), &doc.Users); err != nil {
			return Document{}, fmt.Errorf("failed to parse %s: %w", MapUsersKey, err)
		}
	}
	if raw := data[MapRolesKey]; raw != "" {
		if err := yaml.Unmarshal([]byte(raw), &doc.Roles); err != nil {
			return Document{}, fmt.Errorf("failed to parse %s: %w", MapRolesKey, err)
		}
	}

	return doc, nil
}

// Render serializes the document back into ConfigMap data values. Empty lists
// render as an empty YAML sequence rather than dropping the key, so a list
// cleared by a sync stays visibly empty.
func (d Document) Render() (map[string]string, error) {
	users, err := yaml.Marshal(emptyAsList(d.Users))
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s: %w", MapUsersKey, err)
	}
	roles, err := yaml.Marshal(emptyAsList(d.Roles))
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s: %w", MapRolesKey, err)
	}

	return map[string]string{
		MapUsersKey: string(users),
		MapRolesKey: string(roles),
	}, nil
}

func emptyAsList[E any](entries []E) []E {
	if entries == nil {
		return []E{}
	}
	return entries
}
