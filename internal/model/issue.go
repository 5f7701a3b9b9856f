package model

import "time"

// Context holds the optional dimensions an issue or return is attached to.
type Context struct {
	CompanyID    *int64 `json:"company_id,omitempty"`
	ContractorID *int64 `json:"contractor_id,omitempty"`
	MachineID    *int64 `json:"machine_id,omitempty"`
	LocationID   *int64 `json:"location_id,omitempty"`
}

// Issue is an outward transaction: one checkout of one item.
type Issue struct {
	ID           int64     `json:"id"`
	IssueNo      string    `json:"issue_no"`
	ItemID       int64     `json:"item_id"`
	IssuedBy     int64     `json:"issued_by"`
	Context      Context   `json:"context"`
	OperatorName string    `json:"operator_name,omitempty"`
	Remarks      string    `json:"remarks,omitempty"`
	IsReturned   bool      `json:"is_returned"`
	CreatedAt    time.Time `json:"created_at"`

	// Joined fields (not always populated).
	ItemName       string  `json:"item_name,omitempty"`
	ItemSerial     *string `json:"item_serial,omitempty"`
	CompanyName    string  `json:"company_name,omitempty"`
	ContractorName string  `json:"contractor_name,omitempty"`
	MachineName    string  `json:"machine_name,omitempty"`
	LocationName   string  `json:"location_name,omitempty"`
}
