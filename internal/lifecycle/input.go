package lifecycle

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/erazemk/orodjarna/internal/model"
)

const (
	maxNameLen    = 200
	maxRemarksLen = 2000
)

// CreateIssueInput holds the parameters for checking an item out.
type CreateIssueInput struct {
	ItemID       int64
	Context      model.Context
	IssuedBy     int64
	OperatorName string
	Remarks      string
}

// Validate checks all fields and collects all errors.
func (i CreateIssueInput) Validate() error {
	var errs []model.FieldError
	if i.ItemID <= 0 {
		errs = append(errs, model.FieldError{Field: "item_id", Message: "required"})
	}
	if i.IssuedBy <= 0 {
		errs = append(errs, model.FieldError{Field: "issued_by", Message: "required"})
	}
	errs = append(errs, validateContext(i.Context)...)
	errs = append(errs, validateText("operator_name", i.OperatorName, maxNameLen)...)
	errs = append(errs, validateText("remarks", i.Remarks, maxRemarksLen)...)
	return asValidationError(errs)
}

// CreateReturnInput holds the parameters for checking an issued item back in.
type CreateReturnInput struct {
	IssueID    int64
	Condition  string
	ReturnedBy int64
	ImagePath  string
	ReceivedBy string
	Remarks    string
}

// Validate checks all fields and collects all errors.
func (i CreateReturnInput) Validate() error {
	var errs []model.FieldError
	if i.IssueID <= 0 {
		errs = append(errs, model.FieldError{Field: "issue_id", Message: "required"})
	}
	if _, ok := model.ParseCondition(i.Condition); !ok {
		errs = append(errs, conditionError())
	}
	errs = append(errs, validateReturn(i.ReturnedBy, i.ImagePath, i.ReceivedBy, i.Remarks)...)
	return asValidationError(errs)
}

// ReceiveMissingInput holds the parameters for receiving a missing item
// without an issue to close.
type ReceiveMissingInput struct {
	ItemID     int64
	Condition  string
	ReturnedBy int64
	ImagePath  string
	ReceivedBy string
	Remarks    string
	Context    model.Context
}

// Validate checks all fields and collects all errors.
func (i ReceiveMissingInput) Validate() error {
	var errs []model.FieldError
	if i.ItemID <= 0 {
		errs = append(errs, model.FieldError{Field: "item_id", Message: "required"})
	}
	switch c, ok := model.ParseCondition(i.Condition); {
	case !ok:
		errs = append(errs, conditionError())
	case c == model.ConditionMissing:
		errs = append(errs, model.FieldError{Field: "condition", Message: "a received item cannot be Missing"})
	}
	errs = append(errs, validateContext(i.Context)...)
	errs = append(errs, validateReturn(i.ReturnedBy, i.ImagePath, i.ReceivedBy, i.Remarks)...)
	return asValidationError(errs)
}

// UpdateRemarksInput holds the corrected free-text fields of a return.
type UpdateRemarksInput struct {
	ReturnID   int64
	ReceivedBy string
	Remarks    string
}

// Validate checks all fields and collects all errors.
func (i UpdateRemarksInput) Validate() error {
	var errs []model.FieldError
	if i.ReturnID <= 0 {
		errs = append(errs, model.FieldError{Field: "return_id", Message: "required"})
	}
	errs = append(errs, validateText("received_by", i.ReceivedBy, maxNameLen)...)
	errs = append(errs, validateText("remarks", i.Remarks, maxRemarksLen)...)
	return asValidationError(errs)
}

func validateReturn(returnedBy int64, imagePath, receivedBy, remarks string) []model.FieldError {
	var errs []model.FieldError
	if returnedBy <= 0 {
		errs = append(errs, model.FieldError{Field: "returned_by", Message: "required"})
	}
	if strings.TrimSpace(imagePath) == "" {
		errs = append(errs, model.FieldError{Field: "image_path", Message: "required"})
	}
	errs = append(errs, validateText("received_by", receivedBy, maxNameLen)...)
	errs = append(errs, validateText("remarks", remarks, maxRemarksLen)...)
	return errs
}

func validateContext(c model.Context) []model.FieldError {
	var errs []model.FieldError
	for _, ref := range []struct {
		field string
		id    *int64
	}{
		{"company_id", c.CompanyID},
		{"contractor_id", c.ContractorID},
		{"machine_id", c.MachineID},
		{"location_id", c.LocationID},
	} {
		if ref.id != nil && *ref.id <= 0 {
			errs = append(errs, model.FieldError{Field: ref.field, Message: "must be positive"})
		}
	}
	return errs
}

func validateText(field, s string, max int) []model.FieldError {
	if utf8.RuneCountInString(s) > max {
		return []model.FieldError{{Field: field, Message: fmt.Sprintf("max %d characters", max)}}
	}
	return nil
}

func conditionError() model.FieldError {
	names := make([]string, len(model.Conditions))
	for i, c := range model.Conditions {
		names[i] = string(c)
	}
	return model.FieldError{Field: "condition", Message: "must be one of " + strings.Join(names, ", ")}
}

func asValidationError(errs []model.FieldError) error {
	if len(errs) > 0 {
		return &model.ValidationError{Errors: errs}
	}
	return nil
}
