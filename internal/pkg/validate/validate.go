// Package validate checks user-supplied identifiers before they reach the Drive API
// or the token store.
package validate

import (
	"fmt"
	"regexp"
)

// driveIDRE uses the same character class the link resolver extracts.
var driveIDRE = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,128}$`)

// DriveID rejects anything that could break out of a quoted Drive query term.
func DriveID(id string) error {
	if !driveIDRE.MatchString(id) {
		return fmt.Errorf("invalid Drive file ID %q — expected letters, digits, hyphens and underscores", id)
	}
	return nil
}

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Email checks that a user_google_email argument looks like an address.
// Token files are keyed by it, so a loose check keeps path characters out.
func Email(email string) error {
	if len(email) > 254 {
		return fmt.Errorf("user_google_email too long (max 254 characters)")
	}
	if !emailRE.MatchString(email) {
		return fmt.Errorf("invalid user_google_email %q", email)
	}
	return nil
}

var productIDRE = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{0,63}$`)

// ProductID checks a catalog product id: lowercase slug, at most 64 characters.
func ProductID(id string) error {
	if !productIDRE.MatchString(id) {
		return fmt.Errorf("invalid product id %q — use a lowercase slug such as \"cf-120\"", id)
	}
	return nil
}
