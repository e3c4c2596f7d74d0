package references

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// titleNamespace seeds the deterministic record ids derived from title keys.
var titleNamespace = uuid.MustParse("6f1c1d52-3c55-4d0e-9a43-5b7d2f0e8a10")

// EntityTitle is a stored display title for one referenced entity.
type EntityTitle struct {
	bun.BaseModel `bun:"table:entity_titles,alias:et"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Key       string    `bun:"key,notnull,unique" json:"key"`
	Kind      string    `bun:"kind,notnull" json:"kind"`
	EntityID  int       `bun:"entity_id,notnull" json:"entity_id"`
	Title     string    `bun:"title,notnull" json:"title"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// titleID derives a stable record id from a title key so re-seeding the same
// entity never produces a second row.
func titleID(key string) uuid.UUID {
	return uuid.NewSHA1(titleNamespace, []byte(key))
}
