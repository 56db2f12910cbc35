package util

import "github.com/google/uuid"

// NewID returns a random identifier for runs and conversations.
func NewID() string { return uuid.NewString() }
