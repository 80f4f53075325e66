package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"labelsim/internal/content"
	"labelsim/internal/game"
)

func newTestServer(t *testing.T) (*httptest.Server, *Hub) {
	t.Helper()
	pack, err := content.Default()
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := game.NewService(game.NewMemoryStore(), pack, logger)
	hub := NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	srv := httptest.NewServer(New(logger, svc, hub).Handler())
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv, hub
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func createGame(t *testing.T, base string, length int) string {
	t.Helper()
	seed := int64(11)
	var state game.GameState
	if code := doJSON(t, http.MethodPost, base+"/v1/games", game.NewGameInput{Seed: &seed, CampaignLength: length}, &state); code != http.StatusCreated {
		t.Fatalf("create game status %d", code)
	}
	if state.ID == "" || state.Seed != seed {
		t.Fatalf("state = %+v", state)
	}
	return state.ID
}

func TestGameLifecycleOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createGame(t, srv.URL, 3)
	games := srv.URL + "/v1/games/" + id

	var artist game.Artist
	code := doJSON(t, http.MethodPost, games+"/artists", game.SignArtistInput{
		Name: "Mara Vale", Talent: 70, WorkEthic: 60, Popularity: 20, Temperament: 50, WeeklyCost: 600,
	}, &artist)
	if code != http.StatusCreated || artist.ID == "" {
		t.Fatalf("sign artist: %d %+v", code, artist)
	}
	if code := doJSON(t, http.MethodPost, games+"/executives", map[string]string{"role": "cmo"}, nil); code != http.StatusCreated {
		t.Fatalf("hire executive status %d", code)
	}
	if code := doJSON(t, http.MethodPost, games+"/projects", game.StartProjectInput{
		ArtistID: artist.ID, Title: "Paper Moons", Type: "single", SongCount: 1,
	}, nil); code != http.StatusCreated {
		t.Fatalf("start project status %d", code)
	}

	actions := map[string]any{"actions": []game.ActionEnvelope{
		{Type: "role_meeting", TargetID: "cmo", Metadata: map[string]any{"meetingId": "campaign_review", "choiceId": "save"}},
	}}
	var res game.AdvanceResult
	if code := doJSON(t, http.MethodPost, games+"/advance", actions, &res); code != http.StatusOK {
		t.Fatalf("advance status %d", code)
	}
	if res.State.CurrentPeriod != 1 || res.Summary == nil || res.Summary.Period != 1 {
		t.Fatalf("advance result = %+v", res)
	}

	for i := 0; i < 2; i++ {
		if code := doJSON(t, http.MethodPost, games+"/advance", nil, &res); code != http.StatusOK {
			t.Fatalf("advance %d status %d", i+2, code)
		}
	}
	if res.CampaignResults == nil {
		t.Fatalf("expected campaign results after final period")
	}

	var body map[string]string
	if code := doJSON(t, http.MethodPost, games+"/advance", nil, &body); code != http.StatusConflict {
		t.Fatalf("advance after completion: %d %v", code, body)
	}

	var snap game.Snapshot
	if code := doJSON(t, http.MethodGet, games, nil, &snap); code != http.StatusOK {
		t.Fatalf("snapshot status %d", code)
	}
	if !snap.State.CampaignCompleted || len(snap.Artists) != 1 || len(snap.Executives) != 1 || len(snap.Projects) != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestDomainErrorStatus(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createGame(t, srv.URL, 0)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown game", http.MethodGet, "/v1/games/missing", nil, http.StatusNotFound},
		{"unknown action", http.MethodPost, "/v1/games/" + id + "/advance",
			map[string]any{"actions": []game.ActionEnvelope{{Type: "tweet"}}}, http.StatusBadRequest},
		{"bad role", http.MethodPost, "/v1/games/" + id + "/executives", map[string]string{"role": "janitor"}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/v1/games/" + id + "/artists", map[string]any{"nickname": "x"}, http.StatusBadRequest},
		{"unknown project type", http.MethodPost, "/v1/games/" + id + "/projects",
			game.StartProjectInput{ArtistID: "a", Title: "x", Type: "mixtape"}, http.StatusBadRequest},
		{"unknown preview", http.MethodPost, "/v1/preview/horoscope", map[string]any{"seed": 1, "input": map[string]any{}}, http.StatusNotFound},
		{"preview without input", http.MethodPost, "/v1/preview/quality", map[string]any{"seed": 1}, http.StatusBadRequest},
	}
	for _, tc := range tests {
		var body map[string]string
		code := doJSON(t, tc.method, srv.URL+tc.path, tc.body, &body)
		if code != tc.want {
			t.Fatalf("%s: status %d want %d (%v)", tc.name, code, tc.want, body)
		}
		if body["error"] == "" {
			t.Fatalf("%s: missing error message", tc.name)
		}
	}
}

func TestPreviewIsSeeded(t *testing.T) {
	srv, _ := newTestServer(t)
	req := map[string]any{
		"seed": 42,
		"input": game.QualityInput{
			Talent: 70, WorkEthic: 60, Popularity: 30, Mood: 50,
			ProducerTier: "local", TimeInvestment: "standard", BudgetPerSong: 4000, SongCount: 1,
		},
	}
	var first, second game.QualityBreakdown
	if code := doJSON(t, http.MethodPost, srv.URL+"/v1/preview/quality", req, &first); code != http.StatusOK {
		t.Fatalf("quality status %d", code)
	}
	doJSON(t, http.MethodPost, srv.URL+"/v1/preview/quality", req, &second)
	if first != second {
		t.Fatalf("same seed gave %+v and %+v", first, second)
	}

	var cost map[string]int64
	costReq := map[string]any{"seed": 0, "input": map[string]any{
		"type": "single", "producer_tier": "local", "time_investment": "standard", "song_count": 1, "budget_multiplier": 2.0,
	}}
	if code := doJSON(t, http.MethodPost, srv.URL+"/v1/preview/project_cost", costReq, &cost); code != http.StatusOK {
		t.Fatalf("project cost status %d", code)
	}
	if cost["cost"] != 8_000 {
		t.Fatalf("cost = %d", cost["cost"])
	}

	var tour struct {
		Cities  []game.TourCity `json:"cities"`
		Revenue int64           `json:"revenue"`
	}
	tourReq := map[string]any{"seed": 5, "input": game.TourInput{Reputation: 20, Popularity: 40, Cities: 3}}
	if code := doJSON(t, http.MethodPost, srv.URL+"/v1/preview/tour", tourReq, &tour); code != http.StatusOK {
		t.Fatalf("tour status %d", code)
	}
	var sum int64
	for _, c := range tour.Cities {
		sum += c.Revenue
	}
	if len(tour.Cities) != 3 || sum != tour.Revenue {
		t.Fatalf("tour = %+v", tour)
	}
}

func TestFeedStreamsPeriodSummaries(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createGame(t, srv.URL, 1)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/games/" + id + "/feed"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	read := func() FeedMessage {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var msg FeedMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		return msg
	}
	if msg := read(); msg.Type != feedSubscribed || msg.GameID != id {
		t.Fatalf("hello = %+v", msg)
	}

	if code := doJSON(t, http.MethodPost, srv.URL+"/v1/games/"+id+"/advance", nil, nil); code != http.StatusOK {
		t.Fatalf("advance status %d", code)
	}
	if msg := read(); msg.Type != feedPeriod || msg.GameID != id {
		t.Fatalf("period message = %+v", msg)
	}
	if msg := read(); msg.Type != feedCampaignCompleted {
		t.Fatalf("completion message = %+v", msg)
	}
}

func TestFeedRejectsUnknownGame(t *testing.T) {
	srv, _ := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/games/nope/feed"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("response = %+v", resp)
	}
}
