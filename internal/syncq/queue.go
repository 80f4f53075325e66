// Package syncq keeps the actions a player has planned for a game's next
// advance. The queue lives on disk so plans survive between CLI runs and
// can be built while the server is unreachable.
package syncq

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"labelsim/internal/game"
)

type Entry struct {
	GameID   string              `json:"game_id"`
	Action   game.ActionEnvelope `json:"action"`
	QueuedAt time.Time           `json:"queued_at"`
}

func queuePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".lbl")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "queue.json"), nil
}

func Load() ([]Entry, error) {
	path, err := queuePath()
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, err
	}
	if len(raw) == 0 {
		return []Entry{}, nil
	}
	var out []Entry
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func Save(entries []Entry) error {
	path, err := queuePath()
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func Push(gameID string, action game.ActionEnvelope) error {
	entries, err := Load()
	if err != nil {
		return err
	}
	entries = append(entries, Entry{GameID: gameID, Action: action, QueuedAt: time.Now().UTC()})
	return Save(entries)
}

// Pending returns the actions queued for gameID in the order they were added.
func Pending(gameID string) ([]game.ActionEnvelope, error) {
	entries, err := Load()
	if err != nil {
		return nil, err
	}
	out := make([]game.ActionEnvelope, 0, len(entries))
	for _, e := range entries {
		if e.GameID == gameID {
			out = append(out, e.Action)
		}
	}
	return out, nil
}

// Clear drops every entry for gameID and reports how many were removed.
func Clear(gameID string) (int, error) {
	entries, err := Load()
	if err != nil {
		return 0, err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.GameID != gameID {
			kept = append(kept, e)
		}
	}
	removed := len(entries) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	return removed, Save(kept)
}
