package model

import "time"

// Reference is a row of one of the administrative reference tables.
type Reference struct {
	ID        int64         `json:"id"`
	Kind      ReferenceKind `json:"kind"`
	Code      string        `json:"code"`
	Name      string        `json:"name"`
	IsActive  bool          `json:"is_active"`
	CreatedAt time.Time     `json:"created_at"`
}

// ReferenceKind names a reference table.
type ReferenceKind string

// Reference kinds.
const (
	RefCategory   ReferenceKind = "category"
	RefCompany    ReferenceKind = "company"
	RefContractor ReferenceKind = "contractor"
	RefMachine    ReferenceKind = "machine"
	RefLocation   ReferenceKind = "location"
)

// ReferenceKinds lists every kind.
var ReferenceKinds = []ReferenceKind{RefCategory, RefCompany, RefContractor, RefMachine, RefLocation}

// Valid reports whether k is a known kind.
func (k ReferenceKind) Valid() bool {
	for _, known := range ReferenceKinds {
		if k == known {
			return true
		}
	}
	return false
}
