package uid

import "github.com/google/uuid"

// UUID generates time-ordered (version 7) UUID strings. They serve as
// correlation ids, so ids of later requests sort after earlier ones.
type UUID struct{}

func NewUUID() *UUID {
	return &UUID{}
}

// Generate falls back to a random version 4 id if a v7 id cannot be built.
func (*UUID) Generate() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.New().String()
}
