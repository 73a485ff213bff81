package models

import "github.com/google/uuid"

// Operator is an authenticated caller of the operator endpoints.
type Operator struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
