package catalog

import (
	"time"

	"github.com/uptrace/bun"
)

// ContentItem is a row in the host stand-in content table. Real host
// integrations map their own content storage; this table exists so the
// relationship engine is runnable and testable on its own.
type ContentItem struct {
	bun.BaseModel `bun:"table:content_items,alias:ci"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Kind      string    `bun:"kind,notnull" json:"kind"`
	Title     string    `bun:"title" json:"title"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:now()" json:"created_at"`
}

// Actor is a row in the host stand-in actor table.
type Actor struct {
	bun.BaseModel `bun:"table:actors,alias:a"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Name      string    `bun:"name" json:"name"`
	Email     string    `bun:"email" json:"email"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:now()" json:"created_at"`
}
