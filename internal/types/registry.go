package types

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
)

// ErrUnrecognizedWireType is returned when a column type code matches none of
// the accepted AOT patterns.
var ErrUnrecognizedWireType = errors.New("format not in AOT")

// CodeInfo contains metadata about a fixed-width wire type code
type CodeInfo struct {
	Kind        Kind   // Semantic kind the code maps to
	Width       int    // Element width in bytes
	Description string // "64-bit integer", "double precision float"
}

// Registry contains the fixed binary-table codes accepted by AOT.
// Variable codes (text and variable-length arrays) are matched by pattern.
var Registry = map[string]CodeInfo{
	// Floating point
	"E": {Kind: KindFloat, Width: 4, Description: "single precision float"},
	"D": {Kind: KindFloat, Width: 8, Description: "double precision float"},

	// Signed integers
	"B": {Kind: KindInteger, Width: 1, Description: "8-bit integer"},
	"I": {Kind: KindInteger, Width: 2, Description: "16-bit integer"},
	"J": {Kind: KindInteger, Width: 4, Description: "32-bit integer"},
	"K": {Kind: KindInteger, Width: 8, Description: "64-bit integer"},
}

var (
	// repeat count (optional) followed by the text marker, e.g. 64A
	stringCode = regexp.MustCompile(`^\d*A$`)
	// variable-length array of float/double with a max length, e.g. QD(1200)
	listCode = regexp.MustCompile(`^[QP][DE]\(\d*\)$`)
)

// Lookup retrieves code info for a fixed-width code
func Lookup(code string) (CodeInfo, bool) {
	info, ok := Registry[code]
	return info, ok
}

// Codes returns the fixed-width codes in sorted order
func Codes() []string {
	codes := make([]string, 0, len(Registry))
	for code := range Registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// MapWireType translates a binary-table column type code to its semantic kind.
//
// Rules are checked in order: float codes, integer codes, fixed-length text,
// variable-length float arrays. Several codes collapse onto one kind, so the
// mapping cannot be inverted.
func MapWireType(code string) (Kind, error) {
	if info, ok := Lookup(code); ok && info.Kind == KindFloat {
		return KindFloat, nil
	}
	if info, ok := Lookup(code); ok && info.Kind == KindInteger {
		return KindInteger, nil
	}
	if stringCode.MatchString(code) {
		return KindString, nil
	}
	if listCode.MatchString(code) {
		return KindList, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnrecognizedWireType, code)
}

// CheckWireType verifies that a decoded column code is compatible with the
// kind a field descriptor expects.
func CheckWireType(code string, want Kind) error {
	got, err := MapWireType(code)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("wire type %q is %s, expected %s", code, got, want)
	}
	return nil
}

// WireType returns the code a writer emits for a column of kind k. width is
// the text length of a string column or the longest array of a list column;
// scalar kinds ignore it.
func WireType(k Kind, width int) (string, error) {
	switch k {
	case KindString:
		return fmt.Sprintf("%dA", max(width, 1)), nil
	case KindInteger:
		return "K", nil
	case KindFloat:
		return "D", nil
	case KindList:
		return fmt.Sprintf("QD(%d)", max(width, 0)), nil
	default:
		return "", fmt.Errorf("no wire type for %s", k)
	}
}
