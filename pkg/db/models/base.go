package models

import "github.com/google/uuid"

// ensureID assigns a fresh UUID when the caller did not provide one, so
// inserts behave the same on postgres and on the sqlite test driver.
func ensureID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}
