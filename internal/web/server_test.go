package web

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KavishaShah6/portfolio/internal/config"
	"github.com/KavishaShah6/portfolio/internal/content"
	"github.com/KavishaShah6/portfolio/internal/metrics"
	"github.com/KavishaShah6/portfolio/internal/store"
)

type fixture struct {
	server  *Server
	clock   *clockwork.FakeClock
	metrics *metrics.Metrics
	store   *store.Store
	logs    *observer.ObservedLogs
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	resume := filepath.Join(t.TempDir(), "resume.pdf")
	require.NoError(t, os.WriteFile(resume, []byte("%PDF-1.4"), 0o600))
	return config.Config{
		Port:             "0",
		GinMode:          gin.TestMode,
		ResumePath:       resume,
		CORSOrigins:      []string{"*"},
		VisitorRetention: 365 * 24 * time.Hour,
		TrackVisitors:    true,
		ShutdownTimeout:  time.Second,
	}
}

func newFixture(t *testing.T, withStore bool) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog, err := content.Load()
	require.NoError(t, err)
	m, err := metrics.New()
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	f := &fixture{clock: clockwork.NewFakeClockAt(time.Unix(0, 0)), metrics: m, logs: logs}
	if withStore {
		st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = st.Close() })
		f.store = st
	}

	srv, err := New(Options{
		Config:  testConfig(t),
		Logger:  zap.New(core),
		Catalog: catalog,
		Store:   f.store,
		Metrics: m,
		Clock:   f.clock,
	})
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	f.server = srv
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (f *fixture) scrape(t *testing.T) string {
	t.Helper()
	rec := f.get("/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func (f *fixture) blockUntil(t *testing.T, n int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.clock.BlockUntilContext(ctx, n))
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	return f.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func TestIndexRendersEverySection(t *testing.T) {
	f := newFixture(t, false)

	rec := f.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, id := range []string{"home", "about", "projects", "experience", "certifications", "publications", "social-impact"} {
		assert.Contains(t, body, `id="`+id+`"`)
	}
	assert.Contains(t, body, "FIREWALL")
	assert.Contains(t, body, "STANDBY")
	assert.Contains(t, body, `href="#home" class="nav-link active"`)
	assert.Contains(t, f.scrape(t), `portfolio_page_views_total{page="home"} 1`)
}

func TestDisabledActionsRenderWithoutLink(t *testing.T) {
	f := newFixture(t, false)

	body := f.get("/sections/projects").Body.String()
	assert.Contains(t, body, `href="/go/project/os-task-management/demo"`)
	assert.NotContains(t, body, `/go/project/bone-fracture-classification/code`)
	assert.Contains(t, body, `aria-disabled="true"`)
}

func TestSectionFragment(t *testing.T) {
	f := newFixture(t, false)

	rec := f.get("/sections/publications")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="publications"`)
	assert.NotContains(t, rec.Body.String(), `id="projects"`)

	assert.Equal(t, http.StatusNotFound, f.get("/sections/blog").Code)
}

func TestOutboundRedirectsToExactURL(t *testing.T) {
	f := newFixture(t, true)

	rec := f.get("/go/project/os-task-management/demo")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://team-7.onrender.com/", rec.Header().Get("Location"))

	rec = f.get("/go/publication/elliptic-curve-cryptography/doi")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://doi.org/10.1109/PICET60765.2024.10716041", rec.Header().Get("Location"))

	stats, err := f.store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalClicks)
}

func TestOutboundRejectsDisabledAndUnknown(t *testing.T) {
	f := newFixture(t, false)

	for _, path := range []string{
		"/go/project/bone-fracture-classification/code",
		"/go/social-impact/leo-club/certificate",
		"/go/project/nope/code",
		"/go/project/socio/deploy",
		"/go/blog/socio/code",
	} {
		assert.Equal(t, http.StatusNotFound, f.get(path).Code, path)
	}
}

func TestResume(t *testing.T) {
	f := newFixture(t, false)

	rec := f.get("/resume")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Kavisha_Resume.pdf")
	assert.Contains(t, f.get("/").Body.String(), `<a class="button" href="/resume">Download Resume</a>`)

	f.server.cfg.ResumePath = filepath.Join(t.TempDir(), "missing.pdf")
	assert.Equal(t, http.StatusNotFound, f.get("/resume").Code)

	body := f.get("/").Body.String()
	assert.NotContains(t, body, `href="/resume"`)
	assert.Contains(t, body, `<span class="button disabled" aria-disabled="true">Download Resume</span>`)
}

func TestNavFollowsReportedScroll(t *testing.T) {
	f := newFixture(t, false)

	form := url.Values{
		"current":         {"home"},
		"top_home":        {"0"},
		"height_home":     {"800"},
		"top_about":       {"800"},
		"height_about":    {"600"},
		"top_projects":    {"1400"},
		"height_projects": {"1000"},
		"scroll_y":        {"1500"},
	}
	req := httptest.NewRequest(http.MethodPost, "/nav", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="#projects" class="nav-link active"`)
	assert.Contains(t, rec.Body.String(), `<nav id="nav"`)
	assert.Contains(t, f.scrape(t), `portfolio_active_section_changes_total{section="projects"} 1`)
}

func TestNavKeepsPreviousOutsideAllSections(t *testing.T) {
	f := newFixture(t, false)

	form := url.Values{"current": {"about"}, "top_home": {"0"}, "height_home": {"100"}, "scroll_y": {"5000"}}
	req := httptest.NewRequest(http.MethodPost, "/nav", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := f.do(req)
	assert.Contains(t, rec.Body.String(), `href="#about" class="nav-link active"`)
	assert.NotContains(t, f.scrape(t), `portfolio_active_section_changes_total{section="about"}`)
}

func TestLoaderSteps(t *testing.T) {
	f := newFixture(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/loader", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Steps []struct {
			Name       string `json:"name"`
			Status     string `json:"status"`
			DurationMS int64  `json:"duration_ms"`
		} `json:"steps"`
		TotalMS       int64 `json:"total_ms"`
		RevealDelayMS int64 `json:"reveal_delay_ms"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(12800), body.TotalMS)
	assert.Equal(t, int64(500), body.RevealDelayMS)
	require.Len(t, body.Steps, 6)
	assert.Equal(t, "FIREWALL", body.Steps[0].Name)
	assert.Equal(t, "PROCESSING", body.Steps[0].Status)
	assert.Equal(t, "PENDING", body.Steps[1].Status)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestLoaderStreamEmitsEveryStepThenReveal(t *testing.T) {
	f := newFixture(t, false)
	ts := httptest.NewServer(f.server.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	go func() {
		// six steps then the reveal delay, one pending timer at a time
		for i := 0; i < 7; i++ {
			if f.clock.BlockUntilContext(ctx, 1) != nil {
				return
			}
			f.clock.Advance(3 * time.Second)
		}
	}()

	resp, err := http.Get(ts.URL + "/api/loader/stream")
	require.NoError(t, err)
	defer resp.Body.Close()

	var events []string
	var last string
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		line := sc.Text()
		if name, ok := strings.CutPrefix(line, "event:"); ok {
			events = append(events, name)
		}
		if data, ok := strings.CutPrefix(line, "data:"); ok && len(events) > 0 && events[len(events)-1] == "step" {
			last = data
		}
	}
	require.NoError(t, sc.Err())

	require.Len(t, events, 8)
	assert.Equal(t, "reveal", events[7])

	var final loaderView
	require.NoError(t, json.Unmarshal([]byte(last), &final))
	assert.True(t, final.Done)
	assert.Equal(t, 100, final.Progress)
	assert.Equal(t, "VERIFIED", final.Steps[5].Label)
}

func TestTypewriterConfig(t *testing.T) {
	f := newFixture(t, false)

	rec := f.get("/api/typewriter")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body["phrases"], 5)
	assert.EqualValues(t, 100, body["type_interval_ms"])
	assert.EqualValues(t, 50, body["delete_interval_ms"])
	assert.EqualValues(t, 2000, body["pause_ms"])
}

func wsURL(ts *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + path
}

func TestTypewriterSocketCycles(t *testing.T) {
	f := newFixture(t, false)
	ts := httptest.NewServer(f.server.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/ws/typewriter"), nil)
	require.NoError(t, err)
	defer conn.Close()

	for _, want := range []string{"C", "Co", "Com"} {
		f.blockUntil(t, 1)
		f.clock.Advance(100 * time.Millisecond)

		var frame struct {
			Text   string `json:"text"`
			Phrase int    `json:"phrase"`
		}
		require.NoError(t, conn.ReadJSON(&frame))
		assert.Equal(t, want, frame.Text)
		assert.Equal(t, 0, frame.Phrase)
	}
}

func TestTypewriterSocketRevealCloses(t *testing.T) {
	f := newFixture(t, false)
	ts := httptest.NewServer(f.server.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/ws/typewriter?variant=reveal"), nil)
	require.NoError(t, err)
	defer conn.Close()

	headline := f.server.catalog.Profile.Headline
	var last string
	for range []rune(headline) {
		f.blockUntil(t, 1)
		f.clock.Advance(80 * time.Millisecond)

		var frame struct {
			Text string `json:"text"`
		}
		require.NoError(t, conn.ReadJSON(&frame))
		last = frame.Text
	}
	assert.Equal(t, headline, last)

	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}

func TestSceneFrames(t *testing.T) {
	f := newFixture(t, false)

	rec := f.get("/api/scene?t=1.5&frames=3&step=0.5")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Shapes []json.RawMessage `json:"shapes"`
		Frames []struct {
			T      float64           `json:"t"`
			Orbs   []json.RawMessage `json:"orbs"`
			Glyphs []json.RawMessage `json:"glyphs"`
		} `json:"frames"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Shapes, 4)
	require.Len(t, body.Frames, 3)
	assert.Equal(t, []float64{1.5, 2, 2.5}, []float64{body.Frames[0].T, body.Frames[1].T, body.Frames[2].T})
	assert.Len(t, body.Frames[0].Orbs, 8)
	assert.Len(t, body.Frames[0].Glyphs, 8)

	rec = f.get("/api/scene?frames=1000")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Frames, maxSceneFrames)

	for _, q := range []string{"t=soon", "frames=0", "frames=x", "step=-1"} {
		assert.Equal(t, http.StatusBadRequest, f.get("/api/scene?"+q).Code, q)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t, false)

	assert.Equal(t, http.StatusOK, f.get("/healthz").Code)

	f.get("/")
	f.get("/go/project/socio/code")
	body := f.scrape(t)
	assert.Contains(t, body, `portfolio_page_views_total{page="home"} 1`)
	assert.Contains(t, body, `portfolio_outbound_clicks_total{action="code",kind="project"} 1`)
}

func TestPrivacyPage(t *testing.T) {
	f := newFixture(t, false)

	rec := f.get("/privacy")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "DNT: 1")
}

func TestStaticAssets(t *testing.T) {
	f := newFixture(t, false)

	assert.Equal(t, http.StatusOK, f.get("/static/app.js").Code)
	assert.Equal(t, http.StatusOK, f.get("/static/app.css").Code)
}

func TestServeShutsDownWithOpenStreams(t *testing.T) {
	f := newFixture(t, false)
	f.server.cfg.ShutdownTimeout = 500 * time.Millisecond

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	served := make(chan error, 1)
	go func() { served <- f.server.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + addr + "/api/loader/stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	f.blockUntil(t, 1)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws/typewriter", nil)
	require.NoError(t, err)
	defer conn.Close()
	f.blockUntil(t, 2)

	cancel()
	select {
	case err := <-served:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	// both stream loops stopped their timers
	f.blockUntil(t, 0)
}

func TestTypewriterSocketChecksOrigin(t *testing.T) {
	f := newFixture(t, false)
	f.server.cfg.CORSOrigins = []string{"https://kavisha.example"}
	ts := httptest.NewServer(f.server.Handler())
	defer ts.Close()

	header := http.Header{"Origin": {"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "/ws/typewriter"), header)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header = http.Header{"Origin": {"https://kavisha.example"}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/ws/typewriter"), header)
	require.NoError(t, err)
	conn.Close()

	header = http.Header{"Origin": {ts.URL}}
	conn, _, err = websocket.DefaultDialer.Dial(wsURL(ts, "/ws/typewriter"), header)
	require.NoError(t, err)
	conn.Close()
}
