package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/pthm-cable/tidepool/config"
	"github.com/pthm-cable/tidepool/game"
)

func init() {
	config.MustInit("")
}

// fakeEngine serves a fixed view and records submitted commands.
type fakeEngine struct {
	mu        sync.Mutex
	view      *game.View
	submitted []game.Command
	err       error
}

func (f *fakeEngine) View() *game.View { return f.view }

func (f *fakeEngine) Submit(cmd game.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.submitted = append(f.submitted, cmd)
	return nil
}

func testView() *game.View {
	return &game.View{
		Tick:      42,
		Year:      0.5,
		Width:     2,
		Height:    2,
		Creatures: 1,
		Minimum:   1,
		Tiles: []game.TileView{
			{Fertility: 0.1}, {Fertility: 0.2},
			{Fertility: 0.3}, {Fertility: 0.4},
		},
		Bodies: []game.BodyView{
			{Kind: "rock", X: 0.5, Y: 0.5, Energy: 3},
			{ID: 7, Kind: "creature", X: 1.5, Y: 1.5, Energy: 1.5},
		},
		History:     []int{1, 1, 0},
		HistoryBars: []float64{1, 1, 0},
	}
}

func newTestServer(t *testing.T, engine Engine, rps float64, burst int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(NewRouter(RouterConfig{
		Engine:         engine,
		CommandLimiter: NewIPRateLimiter(rps, burst),
		DisableLogging: true,
	}))
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
	}
	return resp.StatusCode
}

func postCommand(t *testing.T, url, body string) int {
	t.Helper()
	resp, err := http.Post(url+"/api/commands", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestWorldBeforeFirstPublish(t *testing.T) {
	ts := newTestServer(t, &fakeEngine{}, 0, 1)
	if code := getJSON(t, ts.URL+"/api/world", nil); code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", code)
	}
}

func TestGetWorld(t *testing.T) {
	ts := newTestServer(t, &fakeEngine{view: testView()}, 0, 1)

	var got map[string]interface{}
	if code := getJSON(t, ts.URL+"/api/world", &got); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if got["tick"] != float64(42) {
		t.Errorf("expected tick 42, got %v", got["tick"])
	}
	if _, ok := got["tiles"]; ok {
		t.Error("world summary should not include tiles")
	}
}

func TestGetTiles(t *testing.T) {
	ts := newTestServer(t, &fakeEngine{view: testView()}, 0, 1)

	tests := []struct {
		name  string
		query string
		code  int
	}{
		{"all", "", http.StatusOK},
		{"single", "?x=1&y=1", http.StatusOK},
		{"out of range", "?x=5&y=0", http.StatusNotFound},
		{"bad coordinate", "?x=a&y=0", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := getJSON(t, ts.URL+"/api/tiles"+tt.query, nil); code != tt.code {
				t.Errorf("expected %d, got %d", tt.code, code)
			}
		})
	}

	var tile game.TileView
	getJSON(t, ts.URL+"/api/tiles?x=1&y=1", &tile)
	if tile.Fertility != 0.4 {
		t.Errorf("expected fertility 0.4, got %f", tile.Fertility)
	}
}

func TestGetBodies(t *testing.T) {
	ts := newTestServer(t, &fakeEngine{view: testView()}, 0, 1)

	var b game.BodyView
	if code := getJSON(t, ts.URL+"/api/bodies/7", &b); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if b.Energy != 1.5 {
		t.Errorf("expected energy 1.5, got %f", b.Energy)
	}

	if code := getJSON(t, ts.URL+"/api/bodies/8", nil); code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
	if code := getJSON(t, ts.URL+"/api/bodies/x", nil); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func TestGetHistory(t *testing.T) {
	ts := newTestServer(t, &fakeEngine{view: testView()}, 0, 1)

	var got struct {
		History []int     `json:"history"`
		Bars    []float64 `json:"bars"`
	}
	getJSON(t, ts.URL+"/api/history", &got)
	if len(got.History) != 3 || len(got.Bars) != 3 {
		t.Errorf("expected 3 history entries, got %d and %d bars", len(got.History), len(got.Bars))
	}
}

func TestPostCommand(t *testing.T) {
	engine := &fakeEngine{view: testView()}
	ts := newTestServer(t, engine, 0, 1)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"accepted", `{"kind":"select","organism_id":7}`, http.StatusAccepted},
		{"unknown kind", `{"kind":"teleport"}`, http.StatusBadRequest},
		{"malformed", `{"kind":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := postCommand(t, ts.URL, tt.body); code != tt.code {
				t.Errorf("expected %d, got %d", tt.code, code)
			}
		})
	}

	if len(engine.submitted) != 1 {
		t.Fatalf("expected 1 submitted command, got %d", len(engine.submitted))
	}
	cmd := engine.submitted[0]
	if cmd.Kind != game.CmdSelect || cmd.OrganismID != 7 {
		t.Errorf("expected select 7, got %v %d", cmd.Kind, cmd.OrganismID)
	}
}

func TestPostCommandQueueFull(t *testing.T) {
	engine := &fakeEngine{view: testView(), err: game.ErrCommandQueueFull}
	ts := newTestServer(t, engine, 0, 1)

	if code := postCommand(t, ts.URL, `{"kind":"eat","amount":1}`); code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", code)
	}
}

func TestPostCommandRateLimited(t *testing.T) {
	ts := newTestServer(t, &fakeEngine{view: testView()}, 0.001, 2)

	codes := make([]int, 3)
	for i := range codes {
		codes[i] = postCommand(t, ts.URL, `{"kind":"rotate","amount":1}`)
	}
	if codes[0] != http.StatusAccepted || codes[1] != http.StatusAccepted {
		t.Errorf("expected burst of 2 accepted, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected 429 after burst, got %d", codes[2])
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{"remote addr", "10.0.0.1:5555", "", "10.0.0.1"},
		{"forwarded", "10.0.0.1:5555", "203.0.113.9, 10.0.0.1", "203.0.113.9"},
		{"no port", "10.0.0.2", "", "10.0.0.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestOriginAllowed(t *testing.T) {
	if !originAllowed("http://a.example", nil) {
		t.Error("empty list should allow any origin")
	}
	if !originAllowed("http://a.example", []string{"*"}) {
		t.Error("wildcard should allow any origin")
	}
	if originAllowed("http://b.example", []string{"http://a.example"}) {
		t.Error("unlisted origin should be rejected")
	}
}
