package domain

import "strings"

// Alignment is the binary verdict of an assessment against the UDL rubric.
// The zero value means no evaluation pass has happened yet.
type Alignment string

const (
	AlignmentAligned    Alignment = "aligned"
	AlignmentNotAligned Alignment = "not_aligned"
)

// ParseAlignment maps a raw verdict to an Alignment.
// Anything that is not recognisably "aligned" yields AlignmentNotAligned, so an
// unparseable answer never certifies compliance.
func ParseAlignment(raw string) Alignment {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = strings.Trim(v, ".!\"'`*")
	switch v {
	case "aligned", "yes", "true", "aligned: yes":
		return AlignmentAligned
	}
	return AlignmentNotAligned
}
