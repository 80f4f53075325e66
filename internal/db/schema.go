package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE SCHEMA IF NOT EXISTS label;

CREATE TABLE IF NOT EXISTS label.games (
	id                      TEXT PRIMARY KEY,
	seed                    BIGINT NOT NULL,
	money                   BIGINT NOT NULL,
	reputation              INTEGER NOT NULL,
	creative_capital        INTEGER NOT NULL,
	focus_slots             INTEGER NOT NULL,
	used_focus_slots        INTEGER NOT NULL DEFAULT 0,
	playlist_access         TEXT NOT NULL,
	press_access            TEXT NOT NULL,
	venue_access            TEXT NOT NULL,
	current_period          INTEGER NOT NULL DEFAULT 0,
	campaign_length         INTEGER NOT NULL,
	campaign_completed      BOOLEAN NOT NULL DEFAULT false,
	unlocked_producer_tiers TEXT[] NOT NULL DEFAULT '{}',
	scheduled_events        JSONB NOT NULL DEFAULT '[]',
	created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at              TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS label.artists (
	id            TEXT PRIMARY KEY,
	game_id       TEXT NOT NULL REFERENCES label.games(id) ON DELETE CASCADE,
	name          TEXT NOT NULL,
	archetype     TEXT NOT NULL DEFAULT '',
	talent        INTEGER NOT NULL,
	work_ethic    INTEGER NOT NULL,
	popularity    INTEGER NOT NULL,
	mood          INTEGER NOT NULL,
	loyalty       INTEGER NOT NULL,
	temperament   INTEGER NOT NULL,
	energy        INTEGER NOT NULL,
	signed        BOOLEAN NOT NULL,
	weekly_cost   BIGINT NOT NULL,
	signed_period INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS label.executives (
	id                 TEXT PRIMARY KEY,
	game_id            TEXT NOT NULL REFERENCES label.games(id) ON DELETE CASCADE,
	role               TEXT NOT NULL,
	mood               INTEGER NOT NULL,
	loyalty            INTEGER NOT NULL,
	last_action_period INTEGER NOT NULL DEFAULT 0,
	UNIQUE (game_id, role)
);

CREATE TABLE IF NOT EXISTS label.projects (
	id              TEXT PRIMARY KEY,
	game_id         TEXT NOT NULL REFERENCES label.games(id) ON DELETE CASCADE,
	artist_id       TEXT NOT NULL REFERENCES label.artists(id),
	title           TEXT NOT NULL,
	type            TEXT NOT NULL,
	stage           SMALLINT NOT NULL,
	song_count      INTEGER NOT NULL,
	songs_created   INTEGER NOT NULL DEFAULT 0,
	total_cost      BIGINT NOT NULL,
	cost_charged    BOOLEAN NOT NULL DEFAULT false,
	producer_tier   TEXT NOT NULL,
	time_investment TEXT NOT NULL,
	start_period    INTEGER NOT NULL,
	metadata        JSONB NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS label.songs (
	id                  TEXT PRIMARY KEY,
	game_id             TEXT NOT NULL REFERENCES label.games(id) ON DELETE CASCADE,
	project_id          TEXT NOT NULL REFERENCES label.projects(id),
	artist_id           TEXT NOT NULL REFERENCES label.artists(id),
	title               TEXT NOT NULL,
	quality             INTEGER NOT NULL,
	is_recorded         BOOLEAN NOT NULL DEFAULT false,
	is_released         BOOLEAN NOT NULL DEFAULT false,
	release_period      INTEGER NOT NULL DEFAULT 0,
	initial_streams     BIGINT NOT NULL DEFAULT 0,
	last_period_streams BIGINT NOT NULL DEFAULT 0,
	last_period_revenue BIGINT NOT NULL DEFAULT 0,
	total_streams       BIGINT NOT NULL DEFAULT 0,
	total_revenue       BIGINT NOT NULL DEFAULT 0,
	created_period      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS label.releases (
	id             TEXT PRIMARY KEY,
	game_id        TEXT NOT NULL REFERENCES label.games(id) ON DELETE CASCADE,
	artist_id      TEXT NOT NULL REFERENCES label.artists(id),
	title          TEXT NOT NULL,
	type           TEXT NOT NULL,
	song_ids       TEXT[] NOT NULL,
	release_period INTEGER NOT NULL,
	marketing      JSONB NOT NULL DEFAULT '{}',
	lead_single    JSONB,
	status         TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_artists_game ON label.artists(game_id);
CREATE INDEX IF NOT EXISTS idx_executives_game ON label.executives(game_id);
CREATE INDEX IF NOT EXISTS idx_projects_game ON label.projects(game_id);
CREATE INDEX IF NOT EXISTS idx_songs_game ON label.songs(game_id);
CREATE INDEX IF NOT EXISTS idx_releases_game ON label.releases(game_id);
`

// Migrate creates the label schema if it does not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
