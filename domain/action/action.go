// Package action provides the billable action kind enumeration.
// Kinds are a stable contract with the surrounding platform and must not
// be renamed without a migration.
package action

// Kind identifies a category of billable operation.
type Kind string

const (
	// Upload is a unit-increment action (one meeting upload).
	Upload Kind = "upload"
	// Audio is a magnitude-increment action measured in minutes;
	// amounts may be fractional.
	Audio Kind = "audio"
	// Contract is a unit-increment action (one drafted contract).
	Contract Kind = "contract"
	// Extension is a pure feature-flag check with no counter.
	Extension Kind = "extension"
)

// Parse validates an action kind at the deserialization boundary.
// Unknown kinds return false; callers fail closed.
// This is a PURE function.
func Parse(s string) (Kind, bool) {
	switch Kind(s) {
	case Upload, Audio, Contract, Extension:
		return Kind(s), true
	}
	return "", false
}

// Counted reports whether a kind has a monthly counter behind it.
// This is a PURE function.
func Counted(k Kind) bool {
	switch k {
	case Upload, Audio, Contract:
		return true
	}
	return false
}

// All returns every known kind.
// This is a PURE function.
func All() []Kind {
	return []Kind{Upload, Audio, Contract, Extension}
}
