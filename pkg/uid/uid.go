package uid

import "github.com/google/uuid"

// New returns a random UUID string for request and record IDs.
func New() string {
	return uuid.NewString()
}
