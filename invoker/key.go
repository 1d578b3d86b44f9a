package invoker

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// NewKey returns a fresh correlation key: 128 random bits as 32 lowercase
// hex characters.
func NewKey() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}
