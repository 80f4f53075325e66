// Package sqlite stores games in a single local SQLite file for offline play.
// Each entity is one row: its id, its game id and a JSON payload.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"labelsim/internal/game"
)

const (
	tableGames      = "games"
	tableArtists    = "artists"
	tableExecutives = "executives"
	tableProjects   = "projects"
	tableSongs      = "songs"
	tableReleases   = "releases"
)

type Store struct {
	conn *sqlx.DB
	mu   sync.Mutex
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		game_id TEXT NOT NULL,
		payload TEXT NOT NULL
	);`
	for _, t := range []string{tableArtists, tableExecutives, tableProjects, tableSongs, tableReleases} {
		schema += fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (
		id TEXT PRIMARY KEY,
		game_id TEXT NOT NULL,
		payload TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_%[1]s_game ON %[1]s(game_id);`, t)
	}
	_, err := s.conn.Exec(schema)
	return err
}

// InTx runs fn in one SQLite transaction. Writers are serialized by the
// single connection; mu keeps callers from queueing on the driver.
func (s *Store) InTx(ctx context.Context, fn func(repo game.Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(&repo{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

type row struct {
	ID      string `db:"id"`
	GameID  string `db:"game_id"`
	Payload string `db:"payload"`
}

type repo struct {
	tx *sqlx.Tx
}

func (r *repo) insert(ctx context.Context, table, id, gameID string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = r.tx.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (id, game_id, payload) VALUES (?, ?, ?)", table),
		id, gameID, string(payload))
	if err != nil {
		return fmt.Errorf("insert %s %s: %w", table, id, err)
	}
	return nil
}

func (r *repo) update(ctx context.Context, table, id string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	res, err := r.tx.ExecContext(ctx, fmt.Sprintf("UPDATE %s SET payload = ? WHERE id = ?", table), string(payload), id)
	if err != nil {
		return fmt.Errorf("update %s %s: %w", table, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", table, id, game.ErrNotFound)
	}
	return nil
}

func list[T any](ctx context.Context, r *repo, table, gameID string) ([]T, error) {
	var rows []row
	if err := r.tx.SelectContext(ctx, &rows,
		fmt.Sprintf("SELECT id, game_id, payload FROM %s WHERE game_id = ? ORDER BY id", table), gameID); err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	out := make([]T, 0, len(rows))
	for _, rw := range rows {
		var v T
		if err := json.Unmarshal([]byte(rw.Payload), &v); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", table, rw.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *repo) CreateGame(ctx context.Context, g game.GameState) error {
	return r.insert(ctx, tableGames, g.ID, g.ID, g)
}

func (r *repo) LoadGame(ctx context.Context, gameID string) (game.GameState, error) {
	var rw row
	err := r.tx.GetContext(ctx, &rw, "SELECT id, game_id, payload FROM games WHERE id = ?", gameID)
	if errors.Is(err, sql.ErrNoRows) {
		return game.GameState{}, game.ErrGameNotFound
	}
	if err != nil {
		return game.GameState{}, err
	}
	var g game.GameState
	if err := json.Unmarshal([]byte(rw.Payload), &g); err != nil {
		return g, fmt.Errorf("decode game %s: %w", gameID, err)
	}
	return g, nil
}

func (r *repo) SaveGame(ctx context.Context, g game.GameState) error {
	err := r.update(ctx, tableGames, g.ID, g)
	if errors.Is(err, game.ErrNotFound) {
		return game.ErrGameNotFound
	}
	return err
}

func (r *repo) CreateArtist(ctx context.Context, a game.Artist) error {
	return r.insert(ctx, tableArtists, a.ID, a.GameID, a)
}

func (r *repo) ListArtists(ctx context.Context, gameID string) ([]game.Artist, error) {
	return list[game.Artist](ctx, r, tableArtists, gameID)
}

func (r *repo) UpdateArtist(ctx context.Context, a game.Artist) error {
	return r.update(ctx, tableArtists, a.ID, a)
}

func (r *repo) CreateExecutive(ctx context.Context, e game.Executive) error {
	return r.insert(ctx, tableExecutives, e.ID, e.GameID, e)
}

func (r *repo) ListExecutives(ctx context.Context, gameID string) ([]game.Executive, error) {
	return list[game.Executive](ctx, r, tableExecutives, gameID)
}

func (r *repo) UpdateExecutive(ctx context.Context, e game.Executive) error {
	return r.update(ctx, tableExecutives, e.ID, e)
}

func (r *repo) CreateProject(ctx context.Context, p game.Project) error {
	return r.insert(ctx, tableProjects, p.ID, p.GameID, p)
}

func (r *repo) ListProjects(ctx context.Context, gameID string) ([]game.Project, error) {
	return list[game.Project](ctx, r, tableProjects, gameID)
}

func (r *repo) UpdateProject(ctx context.Context, p game.Project) error {
	return r.update(ctx, tableProjects, p.ID, p)
}

func (r *repo) CreateSong(ctx context.Context, s game.Song) error {
	return r.insert(ctx, tableSongs, s.ID, s.GameID, s)
}

func (r *repo) ListSongs(ctx context.Context, gameID string) ([]game.Song, error) {
	return list[game.Song](ctx, r, tableSongs, gameID)
}

func (r *repo) UpdateSong(ctx context.Context, s game.Song) error {
	return r.update(ctx, tableSongs, s.ID, s)
}

func (r *repo) CreateRelease(ctx context.Context, rel game.Release) error {
	return r.insert(ctx, tableReleases, rel.ID, rel.GameID, rel)
}

func (r *repo) ListReleases(ctx context.Context, gameID string) ([]game.Release, error) {
	return list[game.Release](ctx, r, tableReleases, gameID)
}

func (r *repo) UpdateRelease(ctx context.Context, rel game.Release) error {
	return r.update(ctx, tableReleases, rel.ID, rel)
}
