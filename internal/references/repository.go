package references

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewTitleRepository creates a repository for entity titles keyed by "kind:id".
func NewTitleRepository(db *bun.DB) repository.Repository[*EntityTitle] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*EntityTitle]{
		NewRecord:          func() *EntityTitle { return &EntityTitle{} },
		GetID:              func(record *EntityTitle) uuid.UUID { return record.ID },
		SetID:              func(record *EntityTitle, id uuid.UUID) { record.ID = id },
		GetIdentifier:      func() string { return "key" },
		GetIdentifierValue: func(record *EntityTitle) string { return record.Key },
	})
}
