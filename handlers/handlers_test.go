package handlers_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/iterator"

	"silicorex/analysis"
	"silicorex/database"
	"silicorex/datasets"
	"silicorex/forecast"
	"silicorex/handlers"
	"silicorex/models"
	"silicorex/routes"
)

const (
	govUser     = "gov@silicorex.in"
	govPassword = "password"
)

type fakeBackend struct {
	mu      sync.Mutex
	streams [][]string
	// failures[i], when set, ends stream i with that error.
	failures map[int]error
	prompts  []string
}

func (b *fakeBackend) GenerateStream(_ context.Context, prompt string) (analysis.TextStream, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prompts = append(b.prompts, prompt)
	i := len(b.prompts) - 1
	if i >= len(b.streams) {
		return nil, errors.New("unexpected generation call")
	}
	return &fakeStream{fragments: b.streams[i], err: b.failures[i]}, nil
}

type fakeStream struct {
	fragments []string
	err       error
}

func (s *fakeStream) Next() (string, error) {
	if len(s.fragments) > 0 {
		f := s.fragments[0]
		s.fragments = s.fragments[1:]
		return f, nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", iterator.Done
}

var narrative = []string{
	"**Water Security**\n812.34 mm is a Strength.\n",
	"**Industrial Ecosystem**\n45 boilers is a Strength.\n",
	"**Logistics**\n2150 Kms is a Strength.",
}

func writeFixtures(t *testing.T) (datasets.Paths, string) {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	var fab strings.Builder
	fab.WriteString("date,average_selling_price_usd,silicon_wafer_cost_usd,energy_cost_per_kwh_usd,total_daily_labor_cost_usd\n")
	for i := 0; i < 400; i++ {
		fmt.Fprintf(&fab, "day-%d,%.4f,%.2f,0.1,%d\n", i, 10+float64(i)*0.001, 1000+float64(i)*0.01, 1500000+i)
	}

	paths := datasets.Paths{
		Rainfall: write("rain.csv", "District,Month,Avg_rainfall\nMysore,Jan,200.00\nMysore,Feb,400.10\nMYSORE,Mar,212.24\nUdupi,Jan,4000\n"),
		Boilers:  write("boilers.csv", "DISTRICT,NO.OF WORKING BOILERS\nMysore,45\nHassan,70\n"),
		Roads:    write("roads.csv", "District,Total in Kms\nMysore,2150\n"),
	}
	return paths, write("fab.csv", fab.String())
}

type testEnv struct {
	app     *fiber.App
	handler *handlers.Handler
	logins  *database.MemoryLoginStore
}

func newEnv(t *testing.T, backend analysis.Backend) *testEnv {
	t.Helper()
	paths, fab := writeFixtures(t)
	logins := database.NewMemoryLoginStore()
	require.NoError(t, database.SeedGov(context.Background(), logins, govUser, govPassword))

	h := handlers.New(logins, datasets.NewCache(paths, fab), backend,
		forecast.NewModelLoader(filepath.Join(t.TempDir(), "missing.json")), []byte("test-secret"))

	app := fiber.New()
	routes.SetupRoutes(app, h)
	return &testEnv{app: app, handler: h, logins: logins}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) login(t *testing.T, username, password, userType string) string {
	t.Helper()
	resp := e.do(t, "POST", "/api/v1/auth/login", "", models.LoginRequest{Username: username, Password: password, UserType: userType})
	require.Equal(t, 200, resp.StatusCode)
	var out models.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.AccessToken)
	return out.AccessToken
}

func readEvents(t *testing.T, body io.Reader) []models.StreamEvent {
	t.Helper()
	var events []models.StreamEvent
	sc := bufio.NewScanner(body)
	for sc.Scan() {
		var ev models.StreamEvent
		require.NoError(t, json.Unmarshal(sc.Bytes(), &ev))
		events = append(events, ev)
	}
	require.NoError(t, sc.Err())
	return events
}

func TestRegisterAndUserLogin(t *testing.T) {
	env := newEnv(t, nil)

	resp := env.do(t, "POST", "/api/v1/auth/register", "", models.RegisterRequest{Username: " Asha ", Password: "pw"})
	assert.Equal(t, 201, resp.StatusCode)
	resp = env.do(t, "POST", "/api/v1/auth/register", "", models.RegisterRequest{Username: "asha", Password: "pw"})
	assert.Equal(t, 409, resp.StatusCode)

	token := env.login(t, "asha", "pw", "user")
	resp = env.do(t, "GET", "/api/v1/me", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	var me struct {
		Data      models.Session `json:"data"`
		Dashboard string         `json:"dashboard"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	assert.Equal(t, "asha", me.Data.Username)
	assert.Equal(t, "user", me.Dashboard)

	l, err := env.logins.Find(context.Background(), "asha")
	require.NoError(t, err)
	assert.NotNil(t, l.LastLoginAt)

	// Regular users never reach the government tools.
	resp = env.do(t, "GET", "/api/v1/site/districts", token, nil)
	assert.Equal(t, 403, resp.StatusCode)
	resp = env.do(t, "GET", "/api/v1/forecast", token, nil)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newEnv(t, nil)

	cases := []models.LoginRequest{
		{Username: govUser, Password: "wrong", UserType: "gov"},
		{Username: govUser, Password: govPassword, UserType: "user"},
		{Username: "nobody", Password: "x", UserType: "user"},
	}
	for _, c := range cases {
		resp := env.do(t, "POST", "/api/v1/auth/login", "", c)
		assert.Equal(t, 401, resp.StatusCode, "%+v", c)
	}

	resp := env.do(t, "POST", "/api/v1/auth/login", "", models.LoginRequest{Username: govUser, Password: govPassword, UserType: "admin"})
	assert.Equal(t, 400, resp.StatusCode)

	resp = env.do(t, "GET", "/api/v1/me", "", nil)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestGovLoginWithMixedCaseUsername(t *testing.T) {
	env := newEnv(t, nil)
	require.NoError(t, database.SeedGov(context.Background(), env.logins, "Admin@SiliCoreX.in", "pw2"))

	token := env.login(t, "Admin@SiliCoreX.in", "pw2", "gov")
	resp := env.do(t, "GET", "/api/v1/site/districts", token, nil)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestMeRejectsUnknownUserType(t *testing.T) {
	env := newEnv(t, nil)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, models.JwtClaims{
		Username: "someone",
		UserType: "merchant",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	resp := env.do(t, "GET", "/api/v1/me", token, nil)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestLoginLocaleSticks(t *testing.T) {
	env := newEnv(t, nil)
	resp := env.do(t, "POST", "/api/v1/auth/login", "", models.LoginRequest{Username: govUser, Password: govPassword, UserType: "gov", Lang: "kn"})
	require.Equal(t, 200, resp.StatusCode)
	var login models.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	assert.Equal(t, "kn", login.Session.Locale)

	var out struct {
		Data models.DistrictsResponse `json:"data"`
	}
	resp = env.do(t, "GET", "/api/v1/site/districts", login.AccessToken, nil)
	require.Equal(t, 200, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "kn", out.Data.Locale)
	assert.Contains(t, out.Data.Districts, "ಮೈಸೂರು")

	resp = env.do(t, "GET", "/api/v1/site/districts?lang=en", login.AccessToken, nil)
	require.Equal(t, 200, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "en", out.Data.Locale)
}

func TestDistricts(t *testing.T) {
	env := newEnv(t, nil)
	token := env.login(t, govUser, govPassword, "gov")

	var out struct {
		Data models.DistrictsResponse `json:"data"`
	}
	resp := env.do(t, "GET", "/api/v1/site/districts", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, []string{"Mysuru", "Udupi"}, out.Data.Districts)

	resp = env.do(t, "GET", "/api/v1/site/districts?lang=kn", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "kn", out.Data.Locale)
	assert.Contains(t, out.Data.Districts, "ಮೈಸೂರು")
}

func TestAnalyzeStreamsEnglishReport(t *testing.T) {
	backend := &fakeBackend{streams: [][]string{narrative}}
	env := newEnv(t, backend)
	token := env.login(t, govUser, govPassword, "gov")

	resp := env.do(t, "POST", "/api/v1/site/analyze", token, models.AnalyzeRequest{District: "Mysuru"})
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, handlers.MIMEApplicationNDJSON, resp.Header.Get("Content-Type"))

	events := readEvents(t, resp.Body)
	require.Len(t, events, 5)
	for _, ev := range events[:3] {
		assert.Equal(t, models.StreamFragment, ev.Type)
	}
	assert.Equal(t, "\n\n**Final Verdict**\nSuitable", events[3].Text)

	done := events[4]
	assert.Equal(t, models.StreamDone, done.Type)
	require.NotNil(t, done.Report)
	assert.Equal(t, "Suitable", done.Report.Verdict)
	assert.Equal(t, "Mysuru", done.Report.District)
	assert.Equal(t, "Feasibility_Report_Mysuru.html", done.Report.FileName)
	assert.Contains(t, backend.prompts[0], "812.34 mm")
}

func TestAnalyzeKannadaResetsOnce(t *testing.T) {
	backend := &fakeBackend{streams: [][]string{narrative, {"ಮೈಸೂರು ವರದಿ", "\n\n**ಅಂತಿಮ ತೀರ್ಪು**"}}}
	env := newEnv(t, backend)
	token := env.login(t, govUser, govPassword, "gov")

	resp := env.do(t, "POST", "/api/v1/site/analyze", token, models.AnalyzeRequest{District: "ಮೈಸೂರು", Lang: "kn"})
	require.Equal(t, 200, resp.StatusCode)

	events := readEvents(t, resp.Body)
	var kinds []string
	for _, ev := range events {
		kinds = append(kinds, ev.Type)
	}
	assert.Equal(t, []string{"fragment", "fragment", "fragment", "fragment", "reset", "fragment", "fragment", "done"}, kinds)
	assert.Equal(t, "kn", events[len(events)-1].Report.Locale)
	require.Len(t, backend.prompts, 2)
	assert.Contains(t, backend.prompts[1], "formal Kannada")
}

func TestAnalyzeBackendFailure(t *testing.T) {
	backend := &fakeBackend{
		streams:  [][]string{{"partial "}},
		failures: map[int]error{0: errors.New("quota exceeded")},
	}
	env := newEnv(t, backend)
	token := env.login(t, govUser, govPassword, "gov")

	resp := env.do(t, "POST", "/api/v1/site/analyze", token, models.AnalyzeRequest{District: "Mysuru"})
	require.Equal(t, 200, resp.StatusCode)
	events := readEvents(t, resp.Body)
	require.Len(t, events, 2)
	assert.Equal(t, models.StreamError, events[1].Type)
	assert.Equal(t, "An error occurred while communicating with the Gemini API.", events[1].Message)
}

func TestAnalyzeErrors(t *testing.T) {
	env := newEnv(t, nil)
	token := env.login(t, govUser, govPassword, "gov")

	resp := env.do(t, "POST", "/api/v1/site/analyze", token, models.AnalyzeRequest{District: "Mysuru"})
	assert.Equal(t, 503, resp.StatusCode)

	configured := newEnv(t, &fakeBackend{})
	token = configured.login(t, govUser, govPassword, "gov")
	resp = configured.do(t, "POST", "/api/v1/site/analyze", token, models.AnalyzeRequest{District: "Hassan"})
	assert.Equal(t, 404, resp.StatusCode)
	resp = configured.do(t, "POST", "/api/v1/site/analyze", token, models.AnalyzeRequest{})
	assert.Equal(t, 400, resp.StatusCode)
}

func TestReportDownload(t *testing.T) {
	env := newEnv(t, &fakeBackend{streams: [][]string{narrative}})
	token := env.login(t, govUser, govPassword, "gov")

	resp := env.do(t, "POST", "/api/v1/site/report", token, models.AnalyzeRequest{District: "Mysuru"})
	require.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Feasibility_Report_Mysuru.html")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<strong>Final Verdict</strong><br>Suitable")
}

func TestRenderSuppliedText(t *testing.T) {
	env := newEnv(t, nil)
	token := env.login(t, govUser, govPassword, "gov")

	resp := env.do(t, "POST", "/api/v1/site/render", token, models.RenderRequest{District: "Udupi", Text: "**A**\nb"})
	require.Equal(t, 200, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<h2>- Udupi -</h2><br><strong>A</strong><br>b")

	resp = env.do(t, "POST", "/api/v1/site/render", token, models.RenderRequest{District: "Atlantis", Text: "x"})
	assert.Equal(t, 404, resp.StatusCode)
}

func TestForecast(t *testing.T) {
	env := newEnv(t, nil)
	token := env.login(t, govUser, govPassword, "gov")

	resp := env.do(t, "GET", "/api/v1/forecast?years=3&capex=12", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	var out struct {
		Data forecast.Projection `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "trend", out.Data.Strategy)
	assert.Equal(t, []int{1, 2, 3}, out.Data.Years)
	assert.InDelta(t, 2.4, out.Data.Depreciation, 1e-9)
	assert.Equal(t, 50000, out.Data.Assumptions.CapacityWPM)
	require.Len(t, out.Data.Cumulative, 3)
	assert.InDelta(t, out.Data.Cumulative[1]+out.Data.ProfitLoss[2], out.Data.Cumulative[2], 1e-9)

	resp = env.do(t, "GET", "/api/v1/forecast?capex=50", token, nil)
	assert.Equal(t, 400, resp.StatusCode)
	resp = env.do(t, "GET", "/api/v1/forecast?strategy=arima", token, nil)
	assert.Equal(t, 400, resp.StatusCode)

	// Only the model path is disabled when the artifact is missing.
	resp = env.do(t, "GET", "/api/v1/forecast?strategy=model", token, nil)
	assert.Equal(t, 503, resp.StatusCode)
}

func TestForecastExports(t *testing.T) {
	env := newEnv(t, nil)
	token := env.login(t, govUser, govPassword, "gov")

	resp := env.do(t, "GET", "/api/v1/forecast/export.xlsx", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "forecast.xlsx")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("PK")))

	resp = env.do(t, "GET", "/api/v1/forecast/chart.png", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
}

func TestClearCacheAndHealth(t *testing.T) {
	env := newEnv(t, nil)
	token := env.login(t, govUser, govPassword, "gov")

	first, err := env.handler.Pipeline()
	require.NoError(t, err)
	second, err := env.handler.Pipeline()
	require.NoError(t, err)
	assert.Same(t, first, second, "pipeline is reused while the tables are cached")

	resp := env.do(t, "POST", "/api/v1/admin/cache/clear", token, nil)
	assert.Equal(t, 200, resp.StatusCode)

	third, err := env.handler.Pipeline()
	require.NoError(t, err)
	assert.NotSame(t, first, third)

	resp = env.do(t, "GET", "/health", "", nil)
	require.Equal(t, 200, resp.StatusCode)
	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, false, health["generationReady"])
}

func TestDistrictsWhenDataMissing(t *testing.T) {
	logins := database.NewMemoryLoginStore()
	require.NoError(t, database.SeedGov(context.Background(), logins, govUser, govPassword))
	missing := filepath.Join(t.TempDir(), "none.csv")
	h := handlers.New(logins, datasets.NewCache(datasets.Paths{Rainfall: missing, Boilers: missing, Roads: missing}, missing), nil, nil, []byte("s"))
	app := fiber.New()
	routes.SetupRoutes(app, h)
	env := &testEnv{app: app, handler: h, logins: logins}
	token := env.login(t, govUser, govPassword, "gov")

	resp := env.do(t, "GET", "/api/v1/site/districts", token, nil)
	assert.Equal(t, 503, resp.StatusCode)
	resp = env.do(t, "GET", "/api/v1/forecast", token, nil)
	assert.Equal(t, 503, resp.StatusCode)
}
