package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"labelsim/internal/game"
)

const (
	maxAttempts    = 8
	firstRetry     = 75 * time.Millisecond
	retryDelayCeil = 1200 * time.Millisecond
)

// Store runs each call to InTx as one serializable transaction. The game row
// is locked FOR UPDATE on load, so two advances of the same game queue up
// instead of racing.
type Store struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func New(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, log: logger}
}

func (s *Store) InTx(ctx context.Context, fn func(repo game.Repository) error) error {
	retryDelay := firstRetry
	for attempt := 0; attempt < maxAttempts; attempt++ {
		tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
		if err != nil {
			return err
		}
		err = func() error {
			defer tx.Rollback(ctx)
			if err := fn(&repo{tx: tx}); err != nil {
				return err
			}
			return tx.Commit(ctx)
		}()
		if err == nil {
			return nil
		}
		if !isSerializationError(err) {
			return err
		}
		if attempt == maxAttempts-1 {
			return game.ErrTxConflict
		}
		s.log.Debug("serialization conflict, retrying", "attempt", attempt+1, "delay", retryDelay)
		if err := sleepWithContext(ctx, retryDelay); err != nil {
			return err
		}
		retryDelay = nextDelay(retryDelay)
	}
	return game.ErrTxConflict
}

func nextDelay(d time.Duration) time.Duration {
	if d < retryDelayCeil {
		d *= 2
	}
	return d
}

func isSerializationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type repo struct {
	tx pgx.Tx
}

func mustAffect(tag pgconn.CommandTag, what, id string) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", what, id, game.ErrNotFound)
	}
	return nil
}

func (r *repo) CreateGame(ctx context.Context, g game.GameState) error {
	events, err := json.Marshal(g.ScheduledEvents)
	if err != nil {
		return err
	}
	_, err = r.tx.Exec(ctx, `
		INSERT INTO label.games (
			id, seed, money, reputation, creative_capital, focus_slots, used_focus_slots,
			playlist_access, press_access, venue_access, current_period, campaign_length,
			campaign_completed, unlocked_producer_tiers, scheduled_events
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, g.ID, g.Seed, g.Money, g.Reputation, g.CreativeCapital, g.FocusSlots, g.UsedFocusSlots,
		g.PlaylistAccess, g.PressAccess, g.VenueAccess, g.CurrentPeriod, g.CampaignLength,
		g.CampaignCompleted, tiersOrEmpty(g.UnlockedProducerTiers), events)
	return err
}

func (r *repo) LoadGame(ctx context.Context, gameID string) (game.GameState, error) {
	var g game.GameState
	var events []byte
	err := r.tx.QueryRow(ctx, `
		SELECT id, seed, money, reputation, creative_capital, focus_slots, used_focus_slots,
		       playlist_access, press_access, venue_access, current_period, campaign_length,
		       campaign_completed, unlocked_producer_tiers, scheduled_events
		FROM label.games
		WHERE id = $1
		FOR UPDATE
	`, gameID).Scan(&g.ID, &g.Seed, &g.Money, &g.Reputation, &g.CreativeCapital, &g.FocusSlots, &g.UsedFocusSlots,
		&g.PlaylistAccess, &g.PressAccess, &g.VenueAccess, &g.CurrentPeriod, &g.CampaignLength,
		&g.CampaignCompleted, &g.UnlockedProducerTiers, &events)
	if errors.Is(err, pgx.ErrNoRows) {
		return g, game.ErrGameNotFound
	}
	if err != nil {
		return g, err
	}
	if err := json.Unmarshal(events, &g.ScheduledEvents); err != nil {
		return g, fmt.Errorf("decode scheduled events: %w", err)
	}
	return g, nil
}

func (r *repo) SaveGame(ctx context.Context, g game.GameState) error {
	events, err := json.Marshal(g.ScheduledEvents)
	if err != nil {
		return err
	}
	tag, err := r.tx.Exec(ctx, `
		UPDATE label.games
		SET money = $2, reputation = $3, creative_capital = $4, focus_slots = $5, used_focus_slots = $6,
		    playlist_access = $7, press_access = $8, venue_access = $9, current_period = $10,
		    campaign_length = $11, campaign_completed = $12, unlocked_producer_tiers = $13,
		    scheduled_events = $14, updated_at = now()
		WHERE id = $1
	`, g.ID, g.Money, g.Reputation, g.CreativeCapital, g.FocusSlots, g.UsedFocusSlots,
		g.PlaylistAccess, g.PressAccess, g.VenueAccess, g.CurrentPeriod,
		g.CampaignLength, g.CampaignCompleted, tiersOrEmpty(g.UnlockedProducerTiers), events)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return game.ErrGameNotFound
	}
	return nil
}

func tiersOrEmpty(t []string) []string {
	if t == nil {
		return []string{}
	}
	return t
}

const artistColumns = `id, game_id, name, archetype, talent, work_ethic, popularity, mood, loyalty,
	temperament, energy, signed, weekly_cost, signed_period`

func (r *repo) CreateArtist(ctx context.Context, a game.Artist) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO label.artists (`+artistColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, a.ID, a.GameID, a.Name, a.Archetype, a.Talent, a.WorkEthic, a.Popularity, a.Mood, a.Loyalty,
		a.Temperament, a.Energy, a.Signed, a.WeeklyCost, a.SignedPeriod)
	return err
}

func (r *repo) ListArtists(ctx context.Context, gameID string) ([]game.Artist, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+artistColumns+` FROM label.artists WHERE game_id = $1 ORDER BY id`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []game.Artist
	for rows.Next() {
		var a game.Artist
		if err := rows.Scan(&a.ID, &a.GameID, &a.Name, &a.Archetype, &a.Talent, &a.WorkEthic, &a.Popularity,
			&a.Mood, &a.Loyalty, &a.Temperament, &a.Energy, &a.Signed, &a.WeeklyCost, &a.SignedPeriod); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repo) UpdateArtist(ctx context.Context, a game.Artist) error {
	tag, err := r.tx.Exec(ctx, `
		UPDATE label.artists
		SET name = $2, archetype = $3, talent = $4, work_ethic = $5, popularity = $6, mood = $7,
		    loyalty = $8, temperament = $9, energy = $10, signed = $11, weekly_cost = $12, signed_period = $13
		WHERE id = $1
	`, a.ID, a.Name, a.Archetype, a.Talent, a.WorkEthic, a.Popularity, a.Mood,
		a.Loyalty, a.Temperament, a.Energy, a.Signed, a.WeeklyCost, a.SignedPeriod)
	if err != nil {
		return err
	}
	return mustAffect(tag, "artist", a.ID)
}

func (r *repo) CreateExecutive(ctx context.Context, e game.Executive) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO label.executives (id, game_id, role, mood, loyalty, last_action_period)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ID, e.GameID, e.Role, e.Mood, e.Loyalty, e.LastActionPeriod)
	return err
}

func (r *repo) ListExecutives(ctx context.Context, gameID string) ([]game.Executive, error) {
	rows, err := r.tx.Query(ctx, `
		SELECT id, game_id, role, mood, loyalty, last_action_period
		FROM label.executives
		WHERE game_id = $1
		ORDER BY id
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []game.Executive
	for rows.Next() {
		var e game.Executive
		if err := rows.Scan(&e.ID, &e.GameID, &e.Role, &e.Mood, &e.Loyalty, &e.LastActionPeriod); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *repo) UpdateExecutive(ctx context.Context, e game.Executive) error {
	tag, err := r.tx.Exec(ctx, `
		UPDATE label.executives SET mood = $2, loyalty = $3, last_action_period = $4 WHERE id = $1
	`, e.ID, e.Mood, e.Loyalty, e.LastActionPeriod)
	if err != nil {
		return err
	}
	return mustAffect(tag, "executive", e.ID)
}

const projectColumns = `id, game_id, artist_id, title, type, stage, song_count, songs_created, total_cost,
	cost_charged, producer_tier, time_investment, start_period, metadata`

func (r *repo) CreateProject(ctx context.Context, p game.Project) error {
	md, err := json.Marshal(p.Metadata)
	if err != nil {
		return err
	}
	_, err = r.tx.Exec(ctx, `
		INSERT INTO label.projects (`+projectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, p.ID, p.GameID, p.ArtistID, p.Title, string(p.Type), int16(p.Stage), p.SongCount, p.SongsCreated, p.TotalCost,
		p.CostCharged, p.ProducerTier, p.TimeInvestment, p.StartPeriod, md)
	return err
}

func (r *repo) ListProjects(ctx context.Context, gameID string) ([]game.Project, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+projectColumns+` FROM label.projects WHERE game_id = $1 ORDER BY id`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []game.Project
	for rows.Next() {
		var (
			p     game.Project
			typ   string
			stage int16
			md    []byte
		)
		if err := rows.Scan(&p.ID, &p.GameID, &p.ArtistID, &p.Title, &typ, &stage, &p.SongCount, &p.SongsCreated,
			&p.TotalCost, &p.CostCharged, &p.ProducerTier, &p.TimeInvestment, &p.StartPeriod, &md); err != nil {
			return nil, err
		}
		p.Type = game.ProjectType(typ)
		p.Stage = game.Stage(stage)
		if err := json.Unmarshal(md, &p.Metadata); err != nil {
			return nil, fmt.Errorf("decode project %s metadata: %w", p.ID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repo) UpdateProject(ctx context.Context, p game.Project) error {
	md, err := json.Marshal(p.Metadata)
	if err != nil {
		return err
	}
	tag, err := r.tx.Exec(ctx, `
		UPDATE label.projects
		SET stage = $2, songs_created = $3, cost_charged = $4, metadata = $5
		WHERE id = $1
	`, p.ID, int16(p.Stage), p.SongsCreated, p.CostCharged, md)
	if err != nil {
		return err
	}
	return mustAffect(tag, "project", p.ID)
}

const songColumns = `id, game_id, project_id, artist_id, title, quality, is_recorded, is_released,
	release_period, initial_streams, last_period_streams, last_period_revenue, total_streams,
	total_revenue, created_period`

func (r *repo) CreateSong(ctx context.Context, s game.Song) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO label.songs (`+songColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, s.ID, s.GameID, s.ProjectID, s.ArtistID, s.Title, s.Quality, s.IsRecorded, s.IsReleased,
		s.ReleasePeriod, s.InitialStreams, s.LastPeriodStreams, s.LastPeriodRevenue, s.TotalStreams,
		s.TotalRevenue, s.CreatedPeriod)
	return err
}

func (r *repo) ListSongs(ctx context.Context, gameID string) ([]game.Song, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+songColumns+` FROM label.songs WHERE game_id = $1 ORDER BY id`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []game.Song
	for rows.Next() {
		var s game.Song
		if err := rows.Scan(&s.ID, &s.GameID, &s.ProjectID, &s.ArtistID, &s.Title, &s.Quality, &s.IsRecorded,
			&s.IsReleased, &s.ReleasePeriod, &s.InitialStreams, &s.LastPeriodStreams, &s.LastPeriodRevenue,
			&s.TotalStreams, &s.TotalRevenue, &s.CreatedPeriod); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repo) UpdateSong(ctx context.Context, s game.Song) error {
	tag, err := r.tx.Exec(ctx, `
		UPDATE label.songs
		SET is_recorded = $2, is_released = $3, release_period = $4, initial_streams = $5,
		    last_period_streams = $6, last_period_revenue = $7, total_streams = $8, total_revenue = $9
		WHERE id = $1
	`, s.ID, s.IsRecorded, s.IsReleased, s.ReleasePeriod, s.InitialStreams,
		s.LastPeriodStreams, s.LastPeriodRevenue, s.TotalStreams, s.TotalRevenue)
	if err != nil {
		return err
	}
	return mustAffect(tag, "song", s.ID)
}

const releaseColumns = `id, game_id, artist_id, title, type, song_ids, release_period, marketing, lead_single, status`

func encodeRelease(rel game.Release) (marketing, lead []byte, err error) {
	if rel.Marketing == nil {
		rel.Marketing = map[string]int64{}
	}
	if marketing, err = json.Marshal(rel.Marketing); err != nil {
		return nil, nil, err
	}
	if rel.LeadSingle != nil {
		if lead, err = json.Marshal(rel.LeadSingle); err != nil {
			return nil, nil, err
		}
	}
	return marketing, lead, nil
}

func (r *repo) CreateRelease(ctx context.Context, rel game.Release) error {
	marketing, lead, err := encodeRelease(rel)
	if err != nil {
		return err
	}
	_, err = r.tx.Exec(ctx, `
		INSERT INTO label.releases (`+releaseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, rel.ID, rel.GameID, rel.ArtistID, rel.Title, string(rel.Type), tiersOrEmpty(rel.SongIDs), rel.ReleasePeriod,
		marketing, lead, string(rel.Status))
	return err
}

func (r *repo) ListReleases(ctx context.Context, gameID string) ([]game.Release, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+releaseColumns+` FROM label.releases WHERE game_id = $1 ORDER BY id`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []game.Release
	for rows.Next() {
		var (
			rel             game.Release
			typ, status     string
			marketing, lead []byte
		)
		if err := rows.Scan(&rel.ID, &rel.GameID, &rel.ArtistID, &rel.Title, &typ, &rel.SongIDs, &rel.ReleasePeriod,
			&marketing, &lead, &status); err != nil {
			return nil, err
		}
		rel.Type = game.ReleaseType(typ)
		rel.Status = game.ReleaseStatus(status)
		if err := json.Unmarshal(marketing, &rel.Marketing); err != nil {
			return nil, fmt.Errorf("decode release %s marketing: %w", rel.ID, err)
		}
		if len(lead) > 0 {
			rel.LeadSingle = &game.LeadSingle{}
			if err := json.Unmarshal(lead, rel.LeadSingle); err != nil {
				return nil, fmt.Errorf("decode release %s lead single: %w", rel.ID, err)
			}
		}
		out = append(out, rel)
	}
	return out, rows.Err()
}

func (r *repo) UpdateRelease(ctx context.Context, rel game.Release) error {
	marketing, lead, err := encodeRelease(rel)
	if err != nil {
		return err
	}
	tag, err := r.tx.Exec(ctx, `
		UPDATE label.releases
		SET release_period = $2, marketing = $3, lead_single = $4, status = $5
		WHERE id = $1
	`, rel.ID, rel.ReleasePeriod, marketing, lead, string(rel.Status))
	if err != nil {
		return err
	}
	return mustAffect(tag, "release", rel.ID)
}
