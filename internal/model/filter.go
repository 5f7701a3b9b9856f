package model

import "strings"

// StatusFilter selects returns by their own active flag.
type StatusFilter string

// Status filters.
const (
	StatusAll      StatusFilter = "all"
	StatusActive   StatusFilter = "active"
	StatusInactive StatusFilter = "inactive"
)

// ParseStatusFilter accepts all, active or inactive; empty means all.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch StatusFilter(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusActive:
		return StatusActive, nil
	case StatusInactive:
		return StatusInactive, nil
	}
	return "", NewValidationError("status", "must be one of all, active, inactive")
}

// LedgerFilter slices the return ledger. The zero value matches everything.
type LedgerFilter struct {
	Status        StatusFilter
	CompanyIDs    []int64
	ContractorIDs []int64
	MachineIDs    []int64
	ItemIDs       []int64
	OperatorName  string
	Search        string
}
