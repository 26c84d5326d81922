package types

import "encoding/json"

// unassignedLabel is only a display label. It never participates in key
// equality, so a tracker account literally named "unassigned" stays distinct.
const unassignedLabel = "unassigned"

// AssigneeKey groups work items by assignee. The zero value is Unassigned.
type AssigneeKey struct {
	id       string
	assigned bool
}

// Assigned returns the key of a work item owned by the tracker account id.
// An empty id yields Unassigned.
func Assigned(id string) AssigneeKey {
	if id == "" {
		return Unassigned()
	}
	return AssigneeKey{id: id, assigned: true}
}

// Unassigned returns the key shared by all work items without an assignee.
func Unassigned() AssigneeKey {
	return AssigneeKey{}
}

// IsAssigned reports whether the key refers to a concrete account.
func (k AssigneeKey) IsAssigned() bool {
	return k.assigned
}

// AccountID returns the tracker account id, or empty for Unassigned.
func (k AssigneeKey) AccountID() string {
	return k.id
}

func (k AssigneeKey) String() string {
	if !k.assigned {
		return unassignedLabel
	}
	return k.id
}

// MarshalJSON renders Unassigned as null and an assigned key as its id.
func (k AssigneeKey) MarshalJSON() ([]byte, error) {
	if !k.assigned {
		return []byte("null"), nil
	}
	return json.Marshal(k.id)
}
