package domain

import "fmt"

// nationalIDLength is the fixed width of the national identity number
// (YYYYMMDD plus a four-digit serial).
const nationalIDLength = 12

// ValidateNationalID checks the fixed format of a national identity
// number. The number is immutable once registered.
func ValidateNationalID(id string) error {
	if len(id) != nationalIDLength {
		return fmt.Errorf("%w: national id must be %d digits", ErrInvalidInput, nationalIDLength)
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: national id must be numeric", ErrInvalidInput)
		}
	}
	return nil
}
