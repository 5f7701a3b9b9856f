package model

import "strings"

// Condition is the classification recorded when an item comes back.
type Condition string

// Return conditions.
const (
	ConditionOK                  Condition = "OK"
	ConditionDamaged             Condition = "Damaged"
	ConditionCalibrationRequired Condition = "Calibration Required"
	ConditionMissing             Condition = "Missing"
)

// Conditions lists the accepted vocabulary.
var Conditions = []Condition{
	ConditionOK,
	ConditionDamaged,
	ConditionCalibrationRequired,
	ConditionMissing,
}

// ParseCondition matches s case-insensitively against the vocabulary.
func ParseCondition(s string) (Condition, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Conditions {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

// ReturnEvent is the item event a return with this condition produces.
// Missing is the only terminal-loss condition.
func (c Condition) ReturnEvent() ItemEvent {
	if c == ConditionMissing {
		return EventReturnedMissing
	}
	return EventReturned
}
