package cmd

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	storeMu   sync.Mutex
	lastEnv   map[string]any
	configDir string
)

func TestMain(m *testing.M) {
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		storeMu.Lock()
		lastEnv = nil
		_ = sonic.Unmarshal(body, &lastEnv)
		storeMu.Unlock()

		switch r.URL.Path {
		case "/v1/check":
			_, _ = w.Write([]byte(`{"success":true,"data":[{"id":1,"file_name":"a.png"}]}`))
		case "/v1/add":
			_, _ = w.Write([]byte(`{"success":true,"data":{"id":9}}`))
		default:
			_, _ = w.Write([]byte(`{"success":true}`))
		}
	}))

	egress := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("203.0.113.9\n"))
	}))

	dir, err := os.MkdirTemp("", "storeclient-cmd")
	if err != nil {
		panic(err)
	}

	configDir = dir

	cfg := fmt.Sprintf(`store:
  base_url: %s
egress:
  providers:
    - name: test
      url: %s
server:
  reload_config: false
log:
  level: disabled
`, store.URL, egress.URL)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(cfg), 0o600); err != nil {
		panic(err)
	}

	code := m.Run()

	store.Close()
	egress.Close()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--config", configDir}, args...))

	err := rootCmd.Execute()

	return stdout.String(), stderr.String(), err
}

func lastEnvelope() map[string]any {
	storeMu.Lock()
	defer storeMu.Unlock()

	return lastEnv
}

func TestListCommand(t *testing.T) {
	stdout, stderr, err := run(t, "list")
	require.NoError(t, err)

	assert.Contains(t, stderr, "[success] 1 images")
	assert.Contains(t, stdout, `"file_name": "a.png"`)
	assert.Equal(t, "check", lastEnvelope()["operation"])
}

func TestUploadCommand(t *testing.T) {
	file := filepath.Join(t.TempDir(), "scan.png")
	require.NoError(t, os.WriteFile(file, append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...), 0o600))

	_, stderr, err := run(t, "upload", file, "--description", "chest")
	require.NoError(t, err)
	assert.Contains(t, stderr, "image uploaded successfully")

	env := lastEnvelope()
	assert.Equal(t, "image/png", env["file_type"])

	data, _ := env["data"].(map[string]any)
	assert.Equal(t, "chest", data["file_description"])
	assert.Equal(t, "scan.png", data["file_name"])
	assert.Equal(t, "203.0.113.9", data["file_upload_ip"])
}

func TestUpdateCommand(t *testing.T) {
	_, stderr, err := run(t, "update", "1", "--name", "renamed.png")
	require.NoError(t, err)
	assert.Contains(t, stderr, "image updated successfully")

	env := lastEnvelope()
	assert.Equal(t, "update", env["operation"])
	assert.Equal(t, map[string]any{"file_name": "renamed.png"}, env["data"])
}

func TestShowCommand_InvalidID(t *testing.T) {
	_, stderr, err := run(t, "show", "abc")
	require.ErrorIs(t, err, errWorkflowFailed)
	assert.Contains(t, stderr, "[error] invalid image id")
}

func TestProbeCommand(t *testing.T) {
	stdout, stderr, err := run(t, "probe", "--file-type", "image", "--operation", "isdel",
		"--data", `{"file_name":"a.png"}`)
	require.NoError(t, err)
	assert.Contains(t, stderr, "API test succeeded")
	assert.Contains(t, stdout, `"status": 200`)

	where, _ := lastEnvelope()["where_conditions"].([]any)
	require.Len(t, where, 1)
}

func TestKVListCommand(t *testing.T) {
	stdout, _, err := run(t, "kv", "list")
	require.NoError(t, err)
	assert.True(t, strings.Contains(stdout, "memory") && strings.Contains(stdout, "redis"), stdout)
}
