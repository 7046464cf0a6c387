package relationships

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// Compiled-in schema versions. Bump a version together with its DDL to
// have existing deployments upgrade on next startup.
const (
	itemToItemSchemaVersion  = 1
	itemToActorSchemaVersion = 1
)

const schemaVersionsTable = "contentlink_schema_versions"

var itemToItemDDL = []string{
	`CREATE TABLE IF NOT EXISTS contentlink_item_to_item (
		id1 BIGINT NOT NULL,
		id2 BIGINT NOT NULL,
		name VARCHAR(64) NOT NULL,
		"order" INT NOT NULL DEFAULT 0,
		PRIMARY KEY (id1, id2, name)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_i2i_id2_name ON contentlink_item_to_item (id2, name)`,
}

var itemToActorDDL = []string{
	`CREATE TABLE IF NOT EXISTS contentlink_item_to_actor (
		item_id BIGINT NOT NULL,
		actor_id BIGINT NOT NULL,
		name VARCHAR(64) NOT NULL,
		actor_order INT NOT NULL DEFAULT 0,
		item_order INT NOT NULL DEFAULT 0,
		PRIMARY KEY (item_id, actor_id, name)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_i2a_actor_name ON contentlink_item_to_actor (actor_id, name)`,
	`CREATE INDEX IF NOT EXISTS idx_i2a_item_name ON contentlink_item_to_actor (item_id, name)`,
	`CREATE INDEX IF NOT EXISTS idx_i2a_item_actor_order ON contentlink_item_to_actor (item_id, actor_order)`,
	`CREATE INDEX IF NOT EXISTS idx_i2a_actor_item_order ON contentlink_item_to_actor (actor_id, item_order)`,
}

// UpgradeSchema brings the join tables up to their compiled-in schema
// versions. Each table carries its own stored version; DDL runs only
// when the compiled-in version is newer, so calling this on every
// startup is cheap and idempotent.
func (t *Tables) UpgradeSchema(ctx context.Context) error {
	if _, err := t.db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		table_name VARCHAR(128) PRIMARY KEY,
		version INT NOT NULL
	)`, schemaVersionsTable)); err != nil {
		return fmt.Errorf("create schema versions table: %w", err)
	}

	if err := t.upgradeTable(ctx, TableItemToItem, itemToItemSchemaVersion, itemToItemDDL); err != nil {
		return err
	}
	if err := t.upgradeTable(ctx, TableItemToActor, itemToActorSchemaVersion, itemToActorDDL); err != nil {
		return err
	}
	return nil
}

func (t *Tables) upgradeTable(ctx context.Context, table string, version int, ddl []string) error {
	stored, err := t.storedVersion(ctx, table)
	if err != nil {
		return err
	}
	if stored >= version {
		return nil
	}

	t.log.Info("upgrading join table schema",
		slog.String("table", table),
		slog.Int("from", stored),
		slog.Int("to", version),
	)

	for _, stmt := range ddl {
		if _, err := t.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("upgrade %s: %w", table, err)
		}
	}

	_, err = t.db.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s (table_name, version) VALUES (?, ?)
		ON CONFLICT (table_name) DO UPDATE SET version = EXCLUDED.version`, schemaVersionsTable),
		table, version)
	if err != nil {
		return fmt.Errorf("record schema version for %s: %w", table, err)
	}
	return nil
}

func (t *Tables) storedVersion(ctx context.Context, table string) (int, error) {
	var version int
	err := t.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT version FROM %s WHERE table_name = ?", schemaVersionsTable), table,
	).Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("read schema version for %s: %w", table, err)
	}
	return version, nil
}
