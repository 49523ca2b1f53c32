package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/crypto/bcrypt"

	"github.com/sidhushesank/ethical-dowry-analyser/internal/auth"
	"github.com/sidhushesank/ethical-dowry-analyser/internal/config"
	"github.com/sidhushesank/ethical-dowry-analyser/internal/core"
)

const sampleCSV = `region,year,case_type,status
Delhi,2020,Physical,Open
Mumbai,2020,Mental,Closed
Delhi,2021,Physical,Open
`

const (
	testUser     = "admin"
	testViewer   = "viewer"
	testPassword = "s3cret-pass"
	testAPIKey   = "test-api-key"
)

// generatedCSV builds n rows cycling through regions, years and statuses.
func generatedCSV(n int) string {
	regions := []string{"Delhi", "Mumbai", "Kolkata", "Chennai"}
	statuses := []string{"Open", "Closed", "Pending", "OPEN", "closed"}
	var b strings.Builder
	b.WriteString("region,year,case_type,status,notes\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%s,%d,Physical,%s,row-%02d\n", regions[i%len(regions)], 2015+i%7, statuses[i%len(statuses)], i)
	}
	return b.String()
}

type testEnv struct {
	srv       *Server
	ts        *httptest.Server
	client    *http.Client
	activity  *core.MemoryActivityLog
	uploadDir string
}

func newTestEnv(t *testing.T, overrides map[string]string) *testEnv {
	t.Helper()
	dir := t.TempDir()
	samplePath := filepath.Join(dir, "sample.csv")
	if err := os.WriteFile(samplePath, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	uploadDir := filepath.Join(dir, "uploads")

	vars := map[string]string{
		"AUTH_USERS":         "configured-elsewhere",
		"DATA_DEFAULT_PATH":  samplePath,
		"DATA_UPLOAD_DIR":    uploadDir,
		"RATE_LIMIT_ENABLED": "false",
		"API_KEYS":           testAPIKey,
		"CHART_WIDTH":        "400",
		"CHART_HEIGHT":       "300",
	}
	for k, v := range overrides {
		vars[k] = v
	}
	cfg, err := config.LoadFrom(func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	})
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	provider, err := auth.NewStaticProvider([]auth.User{
		{Username: testUser, Role: auth.RoleAdmin, Hash: hash},
		{Username: testViewer, Role: auth.RoleUser, Hash: hash},
	})
	if err != nil {
		t.Fatal(err)
	}

	loader := core.NewLoader(int64(cfg.Upload.MaxFileSize))
	limiter := core.NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)
	uploads, err := core.NewUploadStore(uploadDir, int64(cfg.Upload.MaxFileSize), loader, limiter)
	if err != nil {
		t.Fatal(err)
	}

	sessions := scs.New()
	sessions.Cookie.Name = cfg.Session.CookieName
	activity := core.NewMemoryActivityLog(0)

	srv, err := NewServer(Deps{
		Config:   cfg,
		Sessions: sessions,
		Auth:     provider,
		Resolver: core.NewResolver(cfg.Data.UploadDir, cfg.Data.DefaultPath),
		Loader:   loader,
		Uploads:  uploads,
		Activity: activity,
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	t.Cleanup(srv.Close)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testEnv{srv: srv, ts: ts, client: client, activity: activity, uploadDir: uploadDir}
}

type response struct {
	status int
	header http.Header
	body   string
}

func (e *testEnv) do(t *testing.T, req *http.Request) response {
	t.Helper()
	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return response{status: resp.StatusCode, header: resp.Header, body: string(body)}
}

func (e *testEnv) get(t *testing.T, path string) response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.ts.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	return e.do(t, req)
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values) response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, e.ts.URL+path, strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(t, req)
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	e.loginAs(t, testUser)
}

func (e *testEnv) loginAs(t *testing.T, username string) {
	t.Helper()
	resp := e.postForm(t, "/login", url.Values{"username": {username}, "password": {testPassword}})
	if resp.status != http.StatusSeeOther {
		t.Fatalf("login status = %d, want 303; body: %s", resp.status, resp.body)
	}
}

func (e *testEnv) upload(t *testing.T, filename, content string) response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(fw, content)
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, e.ts.URL+"/upload", &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.do(t, req)
}

func (e *testEnv) uploadedFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(e.uploadDir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestRequireLogin_Redirects(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.get(t, "/cases?region=delhi")
	if resp.status != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.status)
	}
	if loc := resp.header.Get("Location"); loc != "/login?next=%2Fcases%3Fregion%3Ddelhi" {
		t.Errorf("Location = %q", loc)
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		next       string
		wantStatus int
		wantLoc    string
	}{
		{"wrong password", "nope", "", http.StatusUnauthorized, ""},
		{"default redirect", testPassword, "", http.StatusSeeOther, "/"},
		{"local next", testPassword, "/cases?region=delhi", http.StatusSeeOther, "/cases?region=delhi"},
		{"external next ignored", testPassword, "https://evil.example/", http.StatusSeeOther, "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			resp := env.postForm(t, "/login", url.Values{
				"username": {testUser},
				"password": {tt.password},
				"next":     {tt.next},
			})
			if resp.status != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.status, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if !strings.Contains(resp.body, "Invalid username or password") {
					t.Errorf("body missing credential error: %s", resp.body)
				}
				return
			}
			if loc := resp.header.Get("Location"); loc != tt.wantLoc {
				t.Errorf("Location = %q, want %q", loc, tt.wantLoc)
			}
		})
	}
}

func TestLogout_EndsSession(t *testing.T) {
	env := newTestEnv(t, nil)
	env.login(t)

	if resp := env.postForm(t, "/logout", nil); resp.status != http.StatusSeeOther {
		t.Fatalf("logout status = %d, want 303", resp.status)
	}
	if resp := env.get(t, "/"); resp.status != http.StatusSeeOther {
		t.Errorf("after logout GET / status = %d, want 303", resp.status)
	}

	entries, _ := env.activity.Recent(context.Background(), 10)
	if len(entries) != 2 || entries[0].Action != core.ActionLogout || entries[1].Action != core.ActionLogin {
		t.Errorf("activity = %+v, want logout then login", entries)
	}
}

func TestStateChangingRoutes_RejectGet(t *testing.T) {
	env := newTestEnv(t, nil)
	env.login(t)
	if resp := env.upload(t, "kept.csv", sampleCSV); resp.status != http.StatusSeeOther {
		t.Fatalf("upload status = %d; body: %s", resp.status, resp.body)
	}

	for _, path := range []string{"/logout", "/reset-data"} {
		if resp := env.get(t, path); resp.status != http.StatusMethodNotAllowed {
			t.Errorf("GET %s status = %d, want 405", path, resp.status)
		}
	}

	resp := env.get(t, "/")
	if resp.status != http.StatusOK {
		t.Fatalf("session ended by GET: status = %d", resp.status)
	}
	if !strings.Contains(resp.body, "kept.csv") {
		t.Error("dataset selection reset by GET")
	}
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t, nil)
	env.login(t)

	resp := env.get(t, "/")
	if resp.status != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.status)
	}
	for _, want := range []string{"Total cases", "Sample Dataset", "data:image/png;base64,", "66% of total"} {
		if !strings.Contains(resp.body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
	if csp := resp.header.Get("Content-Security-Policy"); !strings.Contains(csp, "img-src 'self' data:") {
		t.Errorf("Content-Security-Policy = %q", csp)
	}
	if resp.header.Get("X-Frame-Options") != "DENY" {
		t.Error("missing X-Frame-Options")
	}
}

func TestDashboard_SingleYear(t *testing.T) {
	env := newTestEnv(t, nil)
	env.login(t)
	if resp := env.upload(t, "one-year.csv", "region,year,case_type,status\nDelhi,2020,Physical,Open\nMumbai,2020,Mental,Closed\n"); resp.status != http.StatusSeeOther {
		t.Fatalf("upload status = %d; body: %s", resp.status, resp.body)
	}

	resp := env.get(t, "/")
	if resp.status != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", resp.status, resp.body)
	}
	for _, want := range []string{"one-year.csv", "data:image/png;base64,", "50% of total"} {
		if !strings.Contains(resp.body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestChartPages(t *testing.T) {
	env := newTestEnv(t, nil)
	env.login(t)

	tests := []struct {
		path  string
		wants []string
	}{
		{"/trends", []string{"Cases by year", "Case types", "Physical", "data:image/png;base64,"}},
		{"/hotspots", []string{"Cases by region", "Delhi", "data:image/png;base64,"}},
		{"/hotspots-map", []string{"<svg", "sev-high", "Mumbai"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := env.get(t, tt.path)
			if resp.status != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.status)
			}
			for _, want := range tt.wants {
				if !strings.Contains(resp.body, want) {
					t.Errorf("%s missing %q", tt.path, want)
				}
			}
		})
	}
}

func TestCases(t *testing.T) {
	env := newTestEnv(t, nil)
	env.login(t)
	if resp := env.upload(t, "many.csv", generatedCSV(23)); resp.status != http.StatusSeeOther {
		t.Fatalf("upload status = %d; body: %s", resp.status, resp.body)
	}

	tests := []struct {
		name    string
		query   string
		wants   []string
		rejects []string
	}{
		{
			name:    "first page",
			query:   "",
			wants:   []string{"23 matching cases", "Page 1 of 3", "row-00", "row-09", `href="/cases?page=2"`},
			rejects: []string{"row-10", `rel="prev"`},
		},
		{
			name:  "invalid page falls back to first",
			query: "?page=abc",
			wants: []string{"Page 1 of 3", "row-00"},
		},
		{
			name:    "filters kept in pagination",
			query:   "?status=o&page=2",
			wants:   []string{"18 matching cases", "Page 2 of 2", `href="/cases?page=1&amp;status=o"`},
			rejects: []string{"row-02", `rel="next"`},
		},
		{
			name:  "out of range page is empty",
			query: "?page=9",
			wants: []string{"No cases match", "Page 9 of 3"},
		},
		{
			name:  "dropdowns list all regions while filtered",
			query: "?region=delhi",
			wants: []string{"6 matching cases", `<option value="Chennai">`, `<option value="Delhi" selected>`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.get(t, "/cases"+tt.query)
			if resp.status != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.status)
			}
			for _, want := range tt.wants {
				if !strings.Contains(resp.body, want) {
					t.Errorf("missing %q", want)
				}
			}
			for _, reject := range tt.rejects {
				if strings.Contains(resp.body, reject) {
					t.Errorf("unexpected %q", reject)
				}
			}
		})
	}
}

func TestDownload(t *testing.T) {
	env := newTestEnv(t, nil)
	env.login(t)

	resp := env.get(t, "/cases/download?region=delhi")
	if resp.status != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.status)
	}
	if cd := resp.header.Get("Content-Disposition"); cd != "attachment; filename=dowry_cases_filtered.csv" {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if ct := resp.header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	want := "region,year,case_type,status\nDelhi,2020,Physical,Open\nDelhi,2021,Physical,Open\n"
	if resp.body != want {
		t.Errorf("body = %q, want %q", resp.body, want)
	}
}

func TestUploadAndReset(t *testing.T) {
	env := newTestEnv(t, nil)
	env.login(t)

	resp := env.upload(t, "Kerala Cases.csv", "Region,Year,Case_Type,Status\nKerala,2019,Physical,Closed\n")
	if resp.status != http.StatusSeeOther || resp.header.Get("Location") != "/" {
		t.Fatalf("upload = %d %q; body: %s", resp.status, resp.header.Get("Location"), resp.body)
	}
	if files := env.uploadedFiles(t); len(files) != 1 || !strings.HasSuffix(files[0], "_Kerala_Cases.csv") {
		t.Fatalf("stored files = %v", files)
	}

	resp = env.get(t, "/")
	for _, want := range []string{"Kerala_Cases.csv", "Uploaded Kerala_Cases.csv (1 rows)."} {
		if !strings.Contains(resp.body, want) {
			t.Errorf("dashboard after upload missing %q", want)
		}
	}

	if resp = env.postForm(t, "/reset-data", nil); resp.status != http.StatusSeeOther {
		t.Fatalf("reset status = %d, want 303", resp.status)
	}
	resp = env.get(t, "/")
	for _, want := range []string{"Data reset to default sample dataset.", "Sample Dataset"} {
		if !strings.Contains(resp.body, want) {
			t.Errorf("dashboard after reset missing %q", want)
		}
	}
	// Flash messages are shown once.
	if resp = env.get(t, "/"); strings.Contains(resp.body, "Data reset to default sample dataset.") {
		t.Error("flash shown twice")
	}
}

func TestUpload_Rejected(t *testing.T) {
	tests := []struct {
		name       string
		filename   string
		content    string
		wantStatus int
		wantCode   string
	}{
		{"wrong extension", "notes.txt", sampleCSV, http.StatusBadRequest, "FILE003"},
		{"missing columns", "bad.csv", "region,year\nDelhi,2020\n", http.StatusUnprocessableEntity, "VAL001"},
		{"bad year", "bad.csv", "region,year,case_type,status\nDelhi,twenty,Physical,Open\n", http.StatusUnprocessableEntity, "VAL002"},
		{"empty file", "empty.csv", "", http.StatusUnprocessableEntity, "VAL001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			env.login(t)

			resp := env.upload(t, tt.filename, tt.content)
			if resp.status != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.status, tt.wantStatus)
			}
			if !strings.Contains(resp.body, tt.wantCode) {
				t.Errorf("body missing code %s", tt.wantCode)
			}
			if files := env.uploadedFiles(t); len(files) != 0 {
				t.Errorf("rejected upload left files %v", files)
			}
			if resp := env.get(t, "/"); !strings.Contains(resp.body, "Sample Dataset") {
				t.Error("active dataset changed after rejected upload")
			}
		})
	}
}

func TestUpload_MissingFileField(t *testing.T) {
	env := newTestEnv(t, nil)
	env.login(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("other", "x")
	mw.Close()
	req, _ := http.NewRequest(http.MethodPost, env.ts.URL+"/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp := env.do(t, req)
	if resp.status != http.StatusBadRequest || !strings.Contains(resp.body, "FILE005") {
		t.Errorf("status = %d, want 400 with FILE005", resp.status)
	}
}

func TestMissingUploadedDataset(t *testing.T) {
	env := newTestEnv(t, nil)
	env.login(t)
	env.upload(t, "gone.csv", sampleCSV)

	for _, f := range env.uploadedFiles(t) {
		os.Remove(filepath.Join(env.uploadDir, f))
	}

	resp := env.get(t, "/")
	if resp.status != http.StatusNotFound || !strings.Contains(resp.body, "DATA001") {
		t.Errorf("status = %d, want 404 with DATA001", resp.status)
	}
}

func TestAPISummary(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name       string
		key        string
		wantStatus int
	}{
		{"api key", testAPIKey, http.StatusOK},
		{"wrong key", "nope", http.StatusForbidden},
		{"no credentials", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, env.ts.URL+"/api/summary", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var got SummaryResponse
			if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
				t.Fatal(err)
			}
			want := SummaryResponse{
				Dataset:        "Sample Dataset",
				Total:          3,
				Open:           2,
				Closed:         1,
				RegionsCovered: 2,
				Trend: TrendResponse{
					Years:  []int{2020, 2021},
					Total:  []int{2, 1},
					Open:   []int{1, 1},
					Closed: []int{1, 0},
				},
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("summary mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAPIActivity_InvalidLimit(t *testing.T) {
	env := newTestEnv(t, nil)
	env.login(t)

	resp := env.get(t, "/api/activity?limit=0")
	if resp.status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.status)
	}
	var body ErrorResponse
	if err := json.Unmarshal([]byte(resp.body), &body); err != nil {
		t.Fatalf("body is not JSON: %s", resp.body)
	}
	if body.Code != "VAL004" {
		t.Errorf("code = %q, want VAL004", body.Code)
	}

	resp = env.get(t, "/api/activity?limit=5")
	var entries []core.ActivityEntry
	if err := json.Unmarshal([]byte(resp.body), &entries); err != nil || len(entries) != 1 || entries[0].Action != core.ActionLogin {
		t.Errorf("activity = %s (err %v)", resp.body, err)
	}
}

func TestActivity_AdminOnly(t *testing.T) {
	tests := []struct {
		name         string
		user         string
		wantStatus   int
		wantActivity bool
	}{
		{"admin", testUser, http.StatusOK, true},
		{"user role", testViewer, http.StatusForbidden, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			env.loginAs(t, tt.user)

			resp := env.get(t, "/api/activity")
			if resp.status != tt.wantStatus {
				t.Fatalf("/api/activity status = %d, want %d", resp.status, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusForbidden && !strings.Contains(resp.body, "AUTH004") {
				t.Errorf("body = %s, want AUTH004", resp.body)
			}

			resp = env.get(t, "/upload")
			if resp.status != http.StatusOK {
				t.Fatalf("/upload status = %d, want 200", resp.status)
			}
			if got := strings.Contains(resp.body, "Recent activity"); got != tt.wantActivity {
				t.Errorf("upload page shows activity = %v, want %v", got, tt.wantActivity)
			}
		})
	}
}

func TestHealthAndNotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.get(t, "/healthz")
	if resp.status != http.StatusOK || !strings.Contains(resp.body, `"status":"ok"`) {
		t.Errorf("healthz = %d %s", resp.status, resp.body)
	}

	resp = env.get(t, "/definitely-missing")
	if resp.status != http.StatusNotFound || !strings.Contains(resp.body, "DATA002") {
		t.Errorf("not found = %d, want 404 with DATA002", resp.status)
	}
}

func TestLoginRateLimit(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"RATE_LIMIT_ENABLED": "true",
		"RATE_LIMIT_LOGIN":   "2",
	})

	form := url.Values{"username": {testUser}, "password": {"wrong"}}
	for i := 0; i < 2; i++ {
		if resp := env.postForm(t, "/login", form); resp.status != http.StatusUnauthorized {
			t.Fatalf("attempt %d status = %d, want 401", i+1, resp.status)
		}
	}
	resp := env.postForm(t, "/login", form)
	if resp.status != http.StatusTooManyRequests || !strings.Contains(resp.body, "RATE001") {
		t.Errorf("status = %d, want 429 with RATE001", resp.status)
	}
	if resp.header.Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", resp.header.Get("Retry-After"))
	}
}

func TestRateLimiter_Window(t *testing.T) {
	s := &Server{}
	t.Cleanup(s.Close)
	rl := s.newRateLimiter(2, time.Minute)

	now := time.Unix(1_000_000, 0)
	rl.mu.Lock()
	rl.now = func() time.Time { return now }
	rl.mu.Unlock()

	for i, want := range []bool{true, true, false} {
		if got := rl.allow("1.2.3.4"); got != want {
			t.Errorf("request %d allow = %v, want %v", i+1, got, want)
		}
	}
	if !rl.allow("5.6.7.8") {
		t.Error("other client limited")
	}

	now = now.Add(time.Minute + time.Second)
	if !rl.allow("1.2.3.4") {
		t.Error("limit not reset after window")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&core.NotFoundError{Identifier: "x"}, http.StatusNotFound},
		{fmt.Errorf("load: %w", &core.SchemaError{Missing: []string{"year"}}), http.StatusUnprocessableEntity},
		{&core.InvalidParameterError{Name: "page"}, http.StatusBadRequest},
		{core.ErrNotCSV, http.StatusBadRequest},
		{fmt.Errorf("store: %w", core.ErrFileTooLarge), http.StatusRequestEntityTooLarge},
		{core.ErrTooManyUploads, http.StatusServiceUnavailable},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
