// Package namekit parses free-text physician names into searchable parts.
// Registry APIs want bare first/last names, while users type things like
// "Dr. Jane Doe, MD"; this strips titles and credential suffixes.
package namekit

import "strings"

var titlePrefixes = map[string]struct{}{
	"DR": {}, "DR.": {}, "DOCTOR": {},
}

var credentialSuffixes = map[string]struct{}{
	"MD": {}, "M.D.": {}, "DO": {}, "D.O.": {}, "PHD": {}, "PH.D.": {},
	"MBA": {}, "MS": {}, "FAANS": {}, "FAHA": {}, "FACS": {},
	"JR": {}, "JR.": {}, "SR": {}, "SR.": {}, "II": {}, "III": {}, "IV": {},
}

// Name is a parsed physician name.
type Name struct {
	First string
	Last  string
	Full  string // cleaned full name, titles and credentials removed
}

// Parse splits a free-text name into first and last components, dropping
// leading titles and trailing credentials. A single remaining token is
// treated as a surname since registries index on last name.
func Parse(full string) Name {
	parts := strings.Fields(strings.TrimSpace(full))

	for len(parts) > 0 && isTitle(parts[0]) {
		parts = parts[1:]
	}
	for len(parts) > 0 && isCredential(parts[len(parts)-1]) {
		parts = parts[:len(parts)-1]
	}
	// "Doe, MD" leaves a trailing comma on the surname once MD is stripped.
	if len(parts) > 0 {
		if idx := strings.IndexByte(parts[len(parts)-1], ','); idx != -1 {
			parts[len(parts)-1] = parts[len(parts)-1][:idx]
		}
	}

	switch len(parts) {
	case 0:
		return Name{}
	case 1:
		return Name{Last: parts[0], Full: parts[0]}
	default:
		return Name{
			First: parts[0],
			Last:  parts[len(parts)-1],
			Full:  strings.Join(parts, " "),
		}
	}
}

func isTitle(token string) bool {
	_, ok := titlePrefixes[strings.ToUpper(strings.TrimRight(token, ","))]
	return ok
}

func isCredential(token string) bool {
	_, ok := credentialSuffixes[strings.ToUpper(strings.TrimRight(token, ","))]
	return ok
}
