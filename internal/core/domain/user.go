package domain

import (
	"time"

	"github.com/google/uuid"
)

// User owns zero or more wallets, at most one per currency.
// Deleting a user cascades to their wallets but never to transfer logs.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
