package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"kuenkele/timetrack/internal/client"
	"kuenkele/timetrack/internal/config"
	"kuenkele/timetrack/internal/logger"
	"kuenkele/timetrack/internal/models"
	"kuenkele/timetrack/internal/platform"
)

// fakeServer answers the endpoints the CLI uses for a single user "ada".
func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()

	started := time.Now().Add(-90 * time.Second).UTC()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ended := day.Add(10 * time.Hour)

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ck, err := r.Cookie("session")
			if err != nil || ck.Value != "sess-ada" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized", "message": "no valid session"})
				return
			}
			next(w, r)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("POST /user/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Username, Password string }
		json.NewDecoder(r.Body).Decode(&body)
		if body.Username != "ada" || body.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized", "message": "invalid user/password"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "sess-ada", Path: "/"})
	})
	mux.HandleFunc("POST /user/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "", Path: "/", MaxAge: -1})
	})
	mux.HandleFunc("GET /projects/", authed(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.PaginatedProjects{
			Projects: []*models.Project{
				{ID: 2, Name: "docs", RuntimeInSeconds: 3600},
			},
			ActiveProject: &models.Project{ID: 1, Name: "web", RuntimeInSeconds: 60, StartedAt: &started},
			Page:          1,
			PerPage:       20,
			Total:         2,
			TotalPages:    1,
		})
	}))
	mux.HandleFunc("POST /projects/{name}/start", authed(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.Project{Name: r.PathValue("name"), StartedAt: &started})
	}))
	mux.HandleFunc("GET /activities/", authed(func(w http.ResponseWriter, r *http.Request) {
		start := day.Add(9 * time.Hour)
		if q := r.URL.Query(); q.Get("startDay") != "" {
			if q.Get("endDay") != q.Get("startDay") {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{"error": "Invalid Input", "message": "unexpected endDay " + q.Get("endDay")})
				return
			}
			json.NewEncoder(w).Encode(models.Activities{
				{ID: 7, ProjectName: "web", StartedAt: start, EndedAt: &ended},
			})
			return
		}
		json.NewEncoder(w).Encode(models.DailyActivities{
			Day: r.URL.Query().Get("day"),
			Activities: models.Activities{
				{ID: 7, ProjectName: "web", StartedAt: start, EndedAt: &ended},
			},
			Worktime: 3600,
			Overtime: -25200,
		})
	}))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type testEnv struct {
	configPath string
	tokenFile  string
}

func newTestEnv(t *testing.T, baseURL string) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		configPath: filepath.Join(dir, "config.yaml"),
		tokenFile:  filepath.Join(dir, "credentials.json"),
	}

	yaml := "client:\n" +
		"  base_url: " + baseURL + "\n" +
		"  token_file: " + env.tokenFile + "\n" +
		"work:\n" +
		"  time_zone: UTC\n"
	if err := os.WriteFile(env.configPath, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	return env
}

func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer

	cmd := NewRootCmd()
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))

	err := cmd.Execute()
	return out.String(), err
}

func TestCommandsAgainstServer(t *testing.T) {
	srv := fakeServer(t)
	env := newTestEnv(t, srv.URL)

	if _, err := env.run(t, "", "status"); err == nil || !strings.Contains(err.Error(), "timetrack login") {
		t.Fatalf("status before login error = %v, want login hint", err)
	}

	out, err := env.run(t, "secret\n", "login", "-u", "ada")
	if err != nil {
		t.Fatalf("login error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Logged in as ada") {
		t.Errorf("login output = %q", out)
	}

	data, err := os.ReadFile(env.tokenFile)
	if err != nil {
		t.Fatalf("credentials not stored: %v", err)
	}
	if !strings.Contains(string(data), "sess-ada") {
		t.Errorf("stored credentials = %s", data)
	}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{name: "status", args: []string{"status"}, want: []string{"web", "00:01:"}},
		{name: "list", args: []string{"projects", "list"}, want: []string{"web", "docs", "1h 0m 0s", "page 1 of 1, 2 projects"}},
		{name: "start", args: []string{"projects", "start", "docs"}, want: []string{"docs"}},
		{name: "health", args: []string{"health"}, want: []string{"ok", srv.URL}},
		{name: "daily", args: []string{"activities", "--day", "2024-03-01"}, want: []string{"2024-03-01", "09:00:00", "10:00:00", "Worktime", "-7h 0m 0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := env.run(t, "", tt.args...)
			if err != nil {
				t.Fatalf("%v error = %v\n%s", tt.args, err, out)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("%v output missing %q:\n%s", tt.args, want, out)
				}
			}
		})
	}

	if out, err := env.run(t, "", "logout"); err != nil {
		t.Fatalf("logout error = %v\n%s", err, out)
	}
	if _, err := os.Stat(env.tokenFile); !os.IsNotExist(err) {
		t.Errorf("credentials still present after logout: %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	srv := fakeServer(t)
	env := newTestEnv(t, srv.URL)

	_, err := env.run(t, "", "login", "-u", "ada", "-p", "nope")
	if err == nil || !strings.Contains(err.Error(), "invalid user/password") {
		t.Errorf("login error = %v", err)
	}
	if _, statErr := os.Stat(env.tokenFile); !os.IsNotExist(statErr) {
		t.Error("credentials stored after failed login")
	}
}

func TestActivitiesRangeDefaultsEndToStart(t *testing.T) {
	srv := fakeServer(t)
	env := newTestEnv(t, srv.URL)

	if out, err := env.run(t, "secret\n", "login", "-u", "ada"); err != nil {
		t.Fatalf("login error = %v\n%s", err, out)
	}

	out, err := env.run(t, "", "activities", "--from", "2024-03-01")
	if err != nil {
		t.Fatalf("activities --from error = %v\n%s", err, out)
	}
	for _, want := range []string{"2024-03-01", "09:00:00", "1h 0m 0s"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if _, err := env.run(t, "", "activities", "--to", "2024-03-01"); err == nil {
		t.Error("activities --to without --from error = nil")
	}
}

func TestHealthUnreachable(t *testing.T) {
	srv := fakeServer(t)
	env := newTestEnv(t, srv.URL)
	srv.Close()

	if _, err := env.run(t, "", "health"); err == nil || !strings.Contains(err.Error(), "not healthy") {
		t.Errorf("health error = %v, want not healthy", err)
	}
}

type fakeBrowser struct {
	opened []string
	err    error
}

func (b *fakeBrowser) OpenBrowser(url string) error {
	b.opened = append(b.opened, url)
	return b.err
}

func (b *fakeBrowser) GetSystemInfo() *platform.SystemInfo {
	return &platform.SystemInfo{OS: "test", Arch: "test"}
}

func TestEndProviderSession(t *testing.T) {
	oidcCfg := config.OIDCConfig{ServerURL: "https://sso.example.com", Application: "timetrack", ClientID: "cli"}
	endSession := "https://sso.example.com/application/o/end-session/?"

	tests := []struct {
		name       string
		oidc       config.OIDCConfig
		creds      *client.Credentials
		browserErr error
		wantOpened bool
		wantOutput bool
	}{
		{name: "oidc login", oidc: oidcCfg, creds: &client.Credentials{Session: "s", IDToken: "tok"}, wantOpened: true},
		{name: "browser fails", oidc: oidcCfg, creds: &client.Credentials{IDToken: "tok"}, browserErr: errors.New("no display"), wantOpened: true, wantOutput: true},
		{name: "password login", oidc: oidcCfg, creds: &client.Credentials{Session: "s"}},
		{name: "provider not configured", creds: &client.Credentials{IDToken: "tok"}},
		{name: "no credentials", oidc: oidcCfg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := logger.New("error", "console")
			if err != nil {
				t.Fatal(err)
			}
			browser := &fakeBrowser{err: tt.browserErr}
			var out bytes.Buffer
			a := &app{
				cfg:      &config.Config{Auth: config.AuthConfig{OIDC: tt.oidc}},
				log:      log,
				creds:    tt.creds,
				platform: browser,
				out:      &out,
			}

			a.endProviderSession()

			if opened := len(browser.opened) == 1; opened != tt.wantOpened {
				t.Fatalf("opened = %v, want %v", browser.opened, tt.wantOpened)
			}
			if tt.wantOpened && !strings.HasPrefix(browser.opened[0], endSession) {
				t.Errorf("opened %q, want end-session url", browser.opened[0])
			}
			if got := strings.Contains(out.String(), endSession); got != tt.wantOutput {
				t.Errorf("output = %q, want url printed %v", out.String(), tt.wantOutput)
			}
		})
	}
}

func TestParseTime(t *testing.T) {
	berlin := time.FixedZone("CET", 3600)

	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2024-03-01T09:00:00Z", want: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)},
		{in: "2024-03-01 09:00", want: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)},
		{in: "2024-03-01 09:00:30", want: time.Date(2024, 3, 1, 8, 0, 30, 0, time.UTC)},
		{in: "2024-03-01T09:00", want: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)},
		{in: "09:00", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseTime(tt.in, berlin)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseTime(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !got.Equal(tt.want) {
			t.Errorf("parseTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRenderActiveProject(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	started := now.Add(-2 * time.Minute)

	if got := renderActiveProject(nil, now); !strings.Contains(got, "No project running") {
		t.Errorf("renderActiveProject(nil) = %q", got)
	}

	got := renderActiveProject(&models.Project{Name: "web", RuntimeInSeconds: 60, StartedAt: &started}, now)
	for _, want := range []string{"web", "00:02:00", "3m 0s"} {
		if !strings.Contains(got, want) {
			t.Errorf("renderActiveProject() = %q, missing %q", got, want)
		}
	}
}
