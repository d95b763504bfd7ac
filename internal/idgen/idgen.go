package idgen

import "github.com/google/uuid"

// Generator hands out opaque identifiers for vote rows.
type Generator interface {
	NextVoteID() string
}

type UUIDGenerator struct{}

func New() UUIDGenerator {
	return UUIDGenerator{}
}

func (UUIDGenerator) NextVoteID() string {
	return uuid.NewString()
}
