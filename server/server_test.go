package server

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"cast_check/config"
	"cast_check/registry"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsEvent struct {
	Event string              `json:"event"`
	Data  jsoniter.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	gin.SetMode(gin.TestMode)

	reg, err := registry.Open("../registry/testdata/abilities.csv")
	require.NoError(t, err)

	cfg := config.New()
	cfg.Workers = 2
	cfg.MaxJobs = 1

	s := New(cfg, reg)

	ctx, cancel := context.WithCancel(context.Background())
	go s.queue.Work(ctx, s.runJob)

	g := gin.New()
	s.Route(g)
	ts := httptest.NewServer(g)

	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return s, ts
}

func requestBody(t *testing.T) []byte {
	f, err := os.ReadFile("../fight/testdata/fight.json")
	require.NoError(t, err)

	var buf bytes.Buffer
	buf.WriteString(`{"fights":[`)
	buf.Write(f)
	buf.WriteString(`]}`)
	return buf.Bytes()
}

func get(t *testing.T, url string) string {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return string(b)
}

func TestAbilities(t *testing.T) {
	_, ts := newTestServer(t)

	var resp struct {
		Abilities []registry.Entry `json:"abilities"`
	}
	require.NoError(t, jsoniter.UnmarshalFromString(get(t, ts.URL+"/api/abilities"), &resp))
	require.Len(t, resp.Abilities, 8)
	assert.Equal(t, "Penance", resp.Abilities[0].Name)
}

func TestAnalyze(t *testing.T) {
	_, ts := newTestServer(t)
	body := requestBody(t)

	post := func() *AnalyzeResponse {
		resp, err := http.Post(ts.URL+"/api/analyze", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var r AnalyzeResponse
		require.NoError(t, jsoniter.NewDecoder(resp.Body).Decode(&r))
		return &r
	}

	first := post()
	require.Len(t, first.Reports, 1)
	radiance, ok := first.Reports[0].Result(194509)
	require.True(t, ok)
	assert.Equal(t, 20, radiance.MaxCasts)

	second := post()
	assert.Equal(t, first, second)

	metrics := get(t, ts.URL+"/metrics")
	assert.Contains(t, metrics, "cast_check_cache_hits_total 1")
	assert.Contains(t, metrics, "cast_check_reports_computed_total 1")
	assert.Contains(t, metrics, "cast_check_abilities_scored_total 7")
}

func TestAnalyzeBadRequest(t *testing.T) {
	_, ts := newTestServer(t)

	for _, body := range []string{
		`{`,
		`{"fights":[]}`,
		`{"fights":[null]}`,
		`{"fights":[{"start_time":10,"end_time":5}]}`,
	} {
		resp, err := http.Post(ts.URL+"/api/analyze", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/analysis"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readEvent(t *testing.T, ws *websocket.Conn) wsEvent {
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := ws.ReadMessage()
	require.NoError(t, err)

	var e wsEvent
	require.NoError(t, jsoniter.Unmarshal(msg, &e))
	return e
}

func TestAnalysisWebsocket(t *testing.T) {
	_, ts := newTestServer(t)
	ws := dial(t, ts)

	assert.Equal(t, "ready", readEvent(t, ws).Event)
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, requestBody(t)))

	waiting := readEvent(t, ws)
	assert.Equal(t, "waiting", waiting.Event)
	assert.Equal(t, "0", string(waiting.Data))

	start := readEvent(t, ws)
	assert.Equal(t, "start", start.Event)
	var id string
	require.NoError(t, jsoniter.Unmarshal(start.Data, &id))
	assert.Len(t, id, 36)

	progress := readEvent(t, ws)
	assert.Equal(t, "progress", progress.Event)
	assert.Equal(t, `"1 / 1"`, string(progress.Data))

	complete := readEvent(t, ws)
	assert.Equal(t, "complete", complete.Event)
	var resp AnalyzeResponse
	require.NoError(t, jsoniter.Unmarshal(complete.Data, &resp))
	require.Len(t, resp.Reports, 1)
	assert.Len(t, resp.Reports[0].Results, 7)

	_, _, err := ws.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}

func TestAnalysisWebsocketBadRequest(t *testing.T) {
	_, ts := newTestServer(t)
	ws := dial(t, ts)

	assert.Equal(t, "ready", readEvent(t, ws).Event)
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"fights":[]}`)))

	assert.Equal(t, "error", readEvent(t, ws).Event)
}
