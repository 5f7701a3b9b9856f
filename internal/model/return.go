package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Provenance says where a return came from: either it closes an issue, or it
// receives an item directly with no issue to close. Exactly one is set.
type Provenance struct {
	issueID int64
	itemID  int64
}

// FromIssue is the provenance of a return that closes an issue.
func FromIssue(issueID int64) Provenance { return Provenance{issueID: issueID} }

// DirectReceipt is the provenance of a return that receives an item without an issue.
func DirectReceipt(itemID int64) Provenance { return Provenance{itemID: itemID} }

// IssueID returns the closed issue, if any.
func (p Provenance) IssueID() (int64, bool) { return p.issueID, p.issueID != 0 }

// ItemID returns the directly received item, if any.
func (p Provenance) ItemID() (int64, bool) { return p.itemID, p.itemID != 0 }

// Valid reports whether exactly one side is set.
func (p Provenance) Valid() bool { return (p.issueID != 0) != (p.itemID != 0) }

// Columns returns the nullable issue_id/item_id pair for storage.
func (p Provenance) Columns() (issueID, itemID *int64) {
	if id, ok := p.IssueID(); ok {
		issueID = &id
	}
	if id, ok := p.ItemID(); ok {
		itemID = &id
	}
	return issueID, itemID
}

// ProvenanceFromColumns rebuilds the variant from stored columns.
func ProvenanceFromColumns(issueID, itemID *int64) Provenance {
	var p Provenance
	if issueID != nil {
		p.issueID = *issueID
	}
	if itemID != nil {
		p.itemID = *itemID
	}
	return p
}

func (p Provenance) MarshalJSON() ([]byte, error) {
	if id, ok := p.IssueID(); ok {
		return json.Marshal(map[string]any{"kind": "issue", "issue_id": id})
	}
	return json.Marshal(map[string]any{"kind": "direct", "item_id": p.itemID})
}

func (p *Provenance) UnmarshalJSON(data []byte) error {
	var v struct {
		Kind    string `json:"kind"`
		IssueID int64  `json:"issue_id"`
		ItemID  int64  `json:"item_id"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v.Kind {
	case "issue":
		*p = FromIssue(v.IssueID)
	case "direct":
		*p = DirectReceipt(v.ItemID)
	default:
		return fmt.Errorf("unknown provenance kind %q", v.Kind)
	}
	return nil
}

// Return is an inward transaction: an item coming back with a recorded condition.
type Return struct {
	ID         int64      `json:"id"`
	ReturnCode string     `json:"return_code"`
	Provenance Provenance `json:"provenance"`
	Condition  Condition  `json:"condition"`
	ReturnedBy int64      `json:"returned_by"`
	ImagePath  string     `json:"image_path"`
	ReceivedBy string     `json:"received_by,omitempty"`
	Remarks    string     `json:"remarks,omitempty"`
	Context    Context    `json:"context"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`

	// Joined fields (not always populated).
	ItemID         int64   `json:"item_id"`
	ItemName       string  `json:"item_name,omitempty"`
	ItemSerial     *string `json:"item_serial,omitempty"`
	IssueNo        string  `json:"issue_no,omitempty"`
	OperatorName   string  `json:"operator_name,omitempty"`
	CompanyName    string  `json:"company_name,omitempty"`
	ContractorName string  `json:"contractor_name,omitempty"`
	MachineName    string  `json:"machine_name,omitempty"`
}
