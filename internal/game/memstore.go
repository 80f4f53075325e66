package game

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore keeps every game in process. InTx serializes transactions and
// restores the previous contents when fn fails.
type MemoryStore struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data memData
}

type memData struct {
	games      map[string]GameState
	artists    map[string]Artist
	executives map[string]Executive
	projects   map[string]Project
	songs      map[string]Song
	releases   map[string]Release
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: newMemData()}
}

func newMemData() memData {
	return memData{
		games:      map[string]GameState{},
		artists:    map[string]Artist{},
		executives: map[string]Executive{},
		projects:   map[string]Project{},
		songs:      map[string]Song{},
		releases:   map[string]Release{},
	}
}

func (d memData) clone() memData {
	out := newMemData()
	for k, v := range d.games {
		out.games[k] = cloneGame(v)
	}
	for k, v := range d.artists {
		out.artists[k] = v
	}
	for k, v := range d.executives {
		out.executives[k] = v
	}
	for k, v := range d.projects {
		out.projects[k] = cloneProject(v)
	}
	for k, v := range d.songs {
		out.songs[k] = v
	}
	for k, v := range d.releases {
		out.releases[k] = cloneRelease(v)
	}
	return out
}

func cloneGame(g GameState) GameState {
	g.UnlockedProducerTiers = append([]string(nil), g.UnlockedProducerTiers...)
	g.ScheduledEvents = append([]ScheduledEvent(nil), g.ScheduledEvents...)
	return g
}

func cloneProject(p Project) Project {
	p.Metadata.Cities = append([]TourCity(nil), p.Metadata.Cities...)
	return p
}

func cloneBudget(m map[string]int64) map[string]int64 {
	if m == nil {
		return nil
	}
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneRelease(r Release) Release {
	r.SongIDs = append([]string(nil), r.SongIDs...)
	r.Marketing = cloneBudget(r.Marketing)
	if r.LeadSingle != nil {
		ls := *r.LeadSingle
		ls.Marketing = cloneBudget(ls.Marketing)
		r.LeadSingle = &ls
	}
	return r
}

func (m *MemoryStore) InTx(_ context.Context, fn func(repo Repository) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.RLock()
	saved := m.data.clone()
	m.mu.RUnlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.data = saved
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *MemoryStore) CreateGame(_ context.Context, state GameState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data.games[state.ID]; ok {
		return fmt.Errorf("%w: game %s exists", ErrInvalidInput, state.ID)
	}
	m.data.games[state.ID] = cloneGame(state)
	return nil
}

func (m *MemoryStore) LoadGame(_ context.Context, gameID string) (GameState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.data.games[gameID]
	if !ok {
		return GameState{}, ErrGameNotFound
	}
	return cloneGame(g), nil
}

func (m *MemoryStore) SaveGame(_ context.Context, state GameState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data.games[state.ID]; !ok {
		return ErrGameNotFound
	}
	m.data.games[state.ID] = cloneGame(state)
	return nil
}

func (m *MemoryStore) CreateArtist(_ context.Context, a Artist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.artists[a.ID] = a
	return nil
}

func (m *MemoryStore) ListArtists(_ context.Context, gameID string) ([]Artist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Artist{}
	for _, a := range m.data.artists {
		if a.GameID == gameID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) UpdateArtist(_ context.Context, a Artist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data.artists[a.ID]; !ok {
		return fmt.Errorf("artist %s: %w", a.ID, ErrNotFound)
	}
	m.data.artists[a.ID] = a
	return nil
}

func (m *MemoryStore) CreateExecutive(_ context.Context, e Executive) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.executives[e.ID] = e
	return nil
}

func (m *MemoryStore) ListExecutives(_ context.Context, gameID string) ([]Executive, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Executive{}
	for _, e := range m.data.executives {
		if e.GameID == gameID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) UpdateExecutive(_ context.Context, e Executive) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data.executives[e.ID]; !ok {
		return fmt.Errorf("executive %s: %w", e.ID, ErrNotFound)
	}
	m.data.executives[e.ID] = e
	return nil
}

func (m *MemoryStore) CreateProject(_ context.Context, p Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.projects[p.ID] = cloneProject(p)
	return nil
}

func (m *MemoryStore) ListProjects(_ context.Context, gameID string) ([]Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Project{}
	for _, p := range m.data.projects {
		if p.GameID == gameID {
			out = append(out, cloneProject(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) UpdateProject(_ context.Context, p Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data.projects[p.ID]; !ok {
		return fmt.Errorf("project %s: %w", p.ID, ErrNotFound)
	}
	m.data.projects[p.ID] = cloneProject(p)
	return nil
}

func (m *MemoryStore) CreateSong(_ context.Context, s Song) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.songs[s.ID] = s
	return nil
}

func (m *MemoryStore) ListSongs(_ context.Context, gameID string) ([]Song, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Song{}
	for _, s := range m.data.songs {
		if s.GameID == gameID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) UpdateSong(_ context.Context, s Song) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data.songs[s.ID]; !ok {
		return fmt.Errorf("song %s: %w", s.ID, ErrNotFound)
	}
	m.data.songs[s.ID] = s
	return nil
}

func (m *MemoryStore) CreateRelease(_ context.Context, r Release) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.releases[r.ID] = cloneRelease(r)
	return nil
}

func (m *MemoryStore) ListReleases(_ context.Context, gameID string) ([]Release, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Release{}
	for _, r := range m.data.releases {
		if r.GameID == gameID {
			out = append(out, cloneRelease(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) UpdateRelease(_ context.Context, r Release) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data.releases[r.ID]; !ok {
		return fmt.Errorf("release %s: %w", r.ID, ErrNotFound)
	}
	m.data.releases[r.ID] = cloneRelease(r)
	return nil
}
