// Package codegen produces the sequential human-readable codes used by every
// ledger and reference table, e.g. OUTWARD-001.
package codegen

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Prefixes per entity type.
const (
	PrefixIssue      = "OUTWARD"
	PrefixReturn     = "INWARD"
	PrefixCategory   = "CAT"
	PrefixCompany    = "COMP"
	PrefixContractor = "CONT"
	PrefixMachine    = "MAC"
	PrefixLocation   = "LOC"
)

var codePattern = regexp.MustCompile(`^[A-Z]+-\d{3,}$`)

// Next returns the code following count existing rows. The number is padded
// to three digits and keeps growing past 999.
//
// The count must be read from the store right before the insert; a code that
// collides on insert means another writer got there first.
func Next(prefix string, count int) string {
	return fmt.Sprintf("%s-%03d", prefix, count+1)
}

// Valid reports whether code has the PREFIX-NNN shape.
func Valid(code string) bool {
	return codePattern.MatchString(code)
}

// Parse splits a valid code into its prefix and number.
func Parse(code string) (prefix string, n int, ok bool) {
	if !Valid(code) {
		return "", 0, false
	}
	prefix, digits, _ := strings.Cut(code, "-")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return "", 0, false
	}
	return prefix, n, true
}
