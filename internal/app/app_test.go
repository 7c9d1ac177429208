package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/stringalong/internal/config"
	"github.com/vk/stringalong/internal/plural"
	"github.com/vk/stringalong/internal/registry"
	"github.com/vk/stringalong/internal/rng"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// setupApp creates a new app instance with captured output and debug logs.
func setupApp(t *testing.T, cfg Config, modules ...registry.Module) (*App, *SafeBuffer, *SafeBuffer) {
	t.Helper()
	out, logs := &SafeBuffer{}, &SafeBuffer{}
	cfg.LogLevel = "debug"
	a, err := NewApp(out, logs, &cfg, config.NewLoader(), modules...)
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("STRINGALONG_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return a, out, logs
}

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "grammar paths", cfg: Config{GrammarPaths: []string{"a.txt"}}},
		{name: "job only", cfg: Config{JobPath: "job.hcl"}},
		{name: "nothing", cfg: Config{}, wantErr: "no grammar given"},
		{name: "negative count", cfg: Config{GrammarPaths: []string{"a"}, Count: -1}, wantErr: "count"},
		{name: "negative nesting", cfg: Config{GrammarPaths: []string{"a"}, MaxNesting: -3}, wantErr: "max-nesting"},
		{name: "healthcheck without watch", cfg: Config{GrammarPaths: []string{"a"}, HealthcheckPort: 8080}, wantErr: "watch"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfig(tc.cfg)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestConfig_Apply(t *testing.T) {
	unique := false
	job := &config.Job{
		Grammar:  []string{"job.txt"},
		Generate: config.Generate{Count: 2, Seed: rng.Text("job"), Root: "a", MaxNesting: 10},
	}
	cfg := &Config{Count: 5, Seed: rng.Int(9), Unique: &unique}

	got := cfg.apply(job)
	assert.Equal(t, []string{"job.txt"}, got.Grammar)
	assert.Equal(t, 5, got.Generate.Count)
	assert.Equal(t, rng.Int(9), got.Generate.Seed)
	assert.Equal(t, "a", got.Generate.Root)
	assert.Equal(t, 10, got.Generate.MaxNesting)
	assert.Same(t, &unique, got.Generate.Unique)
	assert.Equal(t, []string{"print"}, got.SinkTypes())

	assert.Equal(t, 2, job.Generate.Count, "the loaded job is not modified")
	assert.Empty(t, job.Sinks)

	got = (&Config{GrammarPaths: []string{"cli.txt"}}).apply(job)
	assert.Equal(t, []string{"cli.txt"}, got.Grammar)
}

func TestRun_PrintsResults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hello.txt", "$main\nhello [world]\n$world\nworld\n$>greeting\n[main]")

	a, out, _ := setupApp(t, Config{GrammarPaths: []string{path}, Count: 3, Seed: rng.Text("x")})
	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, "hello world\nhello world\nhello world\n", out.String())
}

func TestRun_DirectoryOfGrammars(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a_lists.txt", "$noun\nowl")
	writeFile(t, dir, "b_main.sg", "$main\n[a] [noun]")
	writeFile(t, dir, "readme.md", "$main\nignored")

	a, out, _ := setupApp(t, Config{GrammarPaths: []string{dir}, Count: 1})
	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, "an owl\n", out.String())
}

func TestRun_JobFileLayering(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "g.txt", "$name: Cacti\n$main\ncactus[s]")
	job := writeFile(t, dir, "job.hcl", `
grammar = ["g.txt"]

generate {
  count = 2
  seed  = 7
}

plural "cactus" {
  plural = "cacti"
}

sink "print" {
  format = "yaml"
}
`)
	t.Cleanup(plural.Reset)

	a, out, _ := setupApp(t, Config{JobPath: job, Count: 4, Format: "json"})
	require.NoError(t, a.Run(context.Background()))

	var batch registry.Batch
	require.NoError(t, json.Unmarshal([]byte(out.String()), &batch))
	assert.Equal(t, "Cacti", batch.Grammar)
	assert.Equal(t, "7", batch.Seed)
	assert.NotEmpty(t, batch.RunID)
	assert.Equal(t, []string{"cacti", "cacti", "cacti", "cacti"}, batch.Results)
}

func TestRun_WarningsAreLogged(t *testing.T) {
	path := writeFile(t, t.TempDir(), "g.txt", "$main\nhi [#nobody]")

	a, out, logs := setupApp(t, Config{GrammarPaths: []string{path}, Count: 1})
	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, "hi\n", out.String())
	assert.Contains(t, logs.String(), "unknown identifier: #nobody")
	assert.Contains(t, logs.String(), "run_id=")
}

func TestRun_UnknownRoot(t *testing.T) {
	path := writeFile(t, t.TempDir(), "g.txt", "$main\nx")

	a, _, _ := setupApp(t, Config{GrammarPaths: []string{path}, Root: "nope"})
	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no root list found")
}

func TestNewApp_Errors(t *testing.T) {
	dir := t.TempDir()
	unknownSink := writeFile(t, dir, "sink.hcl", "grammar = [\"g.txt\"]\nsink \"kafka\" {}\n")
	noGrammar := writeFile(t, dir, "empty.hcl", "generate {\n  count = 1\n}\n")

	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "unknown sink", cfg: Config{JobPath: unknownSink}, wantErr: "unknown sink type(s): kafka"},
		{name: "no grammar", cfg: Config{JobPath: noGrammar}, wantErr: "no grammar paths configured"},
		{name: "missing job", cfg: Config{JobPath: filepath.Join(dir, "missing.hcl")}, wantErr: "failed to parse job file"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewApp(&bytes.Buffer{}, &bytes.Buffer{}, &tc.cfg, config.NewLoader())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestRun_BadSinkOptions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "g.txt", "$main\nx")
	job := writeFile(t, dir, "job.hcl", "grammar = [\"g.txt\"]\nsink \"print\" {\n  format = \"xml\"\n}\n")

	a, _, _ := setupApp(t, Config{JobPath: job})
	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported print format")
}

func TestRoots(t *testing.T) {
	path := writeFile(t, t.TempDir(), "g.txt", "$>name\nx\n$place\ny\n$main\n[name]")

	a, _, _ := setupApp(t, Config{GrammarPaths: []string{path}})
	roots, err := a.Roots(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "main"}, roots)
}

func TestRun_Watch(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "g.txt", "$main\nfirst")

	a, out, _ := setupApp(t, Config{GrammarPaths: []string{dir}, Count: 1, Watch: true})
	a.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "first") }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("$main\nsecond"), 0o600))
	require.Eventually(t, func() bool { return strings.Contains(out.String(), "second") }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}

func TestRun_WatchReloadsJobFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "g.txt", "$main\nfirst\n$other\nsecond")
	jobPath := writeFile(t, dir, "job.hcl", "grammar = [\"g.txt\"]\ngenerate {\n  root = \"main\"\n}\n")

	a, out, logs := setupApp(t, Config{JobPath: jobPath, Count: 1, Watch: true})
	a.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "first") }, 5*time.Second, 10*time.Millisecond)
	assert.NotContains(t, out.String(), "second")

	// A broken job file is logged and the previous job stays in effect.
	require.NoError(t, os.WriteFile(jobPath, []byte("generate {\n"), 0o600))
	require.Eventually(t, func() bool { return strings.Contains(logs.String(), "Job reload failed") }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(jobPath, []byte("grammar = [\"g.txt\"]\ngenerate {\n  root = \"other\"\n}\n"), 0o600))
	require.Eventually(t, func() bool { return strings.Contains(out.String(), "second") }, 5*time.Second, 10*time.Millisecond)
	assert.Contains(t, logs.String(), "Job file reloaded.")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}

func TestHealthHandler(t *testing.T) {
	path := writeFile(t, t.TempDir(), "g.txt", "$main\nx")
	a, _, _ := setupApp(t, Config{GrammarPaths: []string{path}})

	rec := httptest.NewRecorder()
	a.healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK\n", rec.Body.String())
}

func TestRun_HTTPSink(t *testing.T) {
	received := make(chan registry.Batch, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var b registry.Batch
		if err := json.NewDecoder(r.Body).Decode(&b); err == nil {
			received <- b
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	writeFile(t, dir, "g.txt", "$main\nping")
	job := writeFile(t, dir, "job.hcl", "grammar = [\"g.txt\"]\nsink \"http\" {\n  url = \""+srv.URL+"\"\n}\n")

	a, out, _ := setupApp(t, Config{JobPath: job, Count: 2})
	require.NoError(t, a.Run(context.Background()))
	assert.Empty(t, out.String(), "only the configured sink receives output")

	select {
	case b := <-received:
		assert.Equal(t, []string{"ping", "ping"}, b.Results)
	case <-time.After(5 * time.Second):
		t.Fatal("http sink was not called")
	}
}

func TestCheck(t *testing.T) {
	path := writeFile(t, t.TempDir(), "g.txt", "$orphan\nx\n$main\ny")

	a, _, _ := setupApp(t, Config{GrammarPaths: []string{path}})
	diags, err := a.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "warning: $orphan: list is not reachable from any root", diags[0].String())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("warn", "json", &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "v", rec["k"])

	buf.Reset()
	newLogger("bogus", "text", &buf).Debug("dropped")
	assert.Empty(t, buf.String(), "unknown levels fall back to info")
}
