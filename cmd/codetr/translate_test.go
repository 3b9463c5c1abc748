package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oukeidos/codetr/internal/prompt"
	"github.com/oukeidos/codetr/internal/request"
	"github.com/oukeidos/codetr/internal/session"
)

type recordingClipboard struct {
	mu     sync.Mutex
	writes []string
}

func (c *recordingClipboard) Write(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, text)
	return nil
}

type translateEnv struct {
	dir       string
	server    *httptest.Server
	clip      *recordingClipboard
	mu        sync.Mutex
	received  []request.Translation
	configArg string
}

func (e *translateEnv) requests() []request.Translation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]request.Translation(nil), e.received...)
}

// setupTranslate starts an endpoint that answers with chunks (or status, if
// non-zero) and stubs the key lookup and clipboard.
func setupTranslate(t *testing.T, status int, chunks ...string) *translateEnv {
	t.Helper()
	t.Setenv("CODETR_ENDPOINT", "")
	t.Setenv("CODETR_TIMEOUT", "")

	env := &translateEnv{dir: t.TempDir(), clip: &recordingClipboard{}}
	env.configArg = filepath.Join(env.dir, "config.yaml")
	env.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request.Translation
		json.NewDecoder(r.Body).Decode(&req)
		env.mu.Lock()
		env.received = append(env.received, req)
		env.mu.Unlock()
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		w.WriteHeader(http.StatusOK)
		for _, c := range chunks {
			w.Write([]byte(c))
			w.(http.Flusher).Flush()
		}
	}))
	t.Cleanup(env.server.Close)

	_, restoreKeys := withKeyStubs(t, false, "", "sk-test", "")
	prevClip := newClipboard
	newClipboard = func() session.Clipboard { return env.clip }
	t.Cleanup(func() {
		restoreKeys()
		newClipboard = prevClip
	})
	return env
}

func (e *translateEnv) input(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, "input.py")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func (e *translateEnv) args(extra ...string) []string {
	base := []string{"translate", "--config", e.configArg, "--endpoint", e.server.URL, "--from", "python", "--to", "Go"}
	return append(base, extra...)
}

func TestTranslate_StreamsToStdoutAndCopies(t *testing.T) {
	env := setupTranslate(t, 0, "package main\n", "func main() {}\n")
	in := env.input(t, "print(1)")

	out, err := executeCommand(t, env.args(in)...)
	if err != nil {
		t.Fatalf("translate failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "package main\nfunc main() {}\n") {
		t.Fatalf("streamed output missing:\n%s", out)
	}
	if !strings.Contains(out, "Chunks: ") || !strings.Contains(out, session.MessageCopied) {
		t.Fatalf("expected stats and copy message:\n%s", out)
	}

	reqs := env.requests()
	if len(reqs) != 1 {
		t.Fatalf("requests = %d", len(reqs))
	}
	want := request.Translation{SourceLanguage: "Python", TargetLanguage: "Go", SourceText: "print(1)", Model: "gpt-3.5-turbo", Credential: "sk-test"}
	if reqs[0] != want {
		t.Fatalf("request = %+v, want %+v", reqs[0], want)
	}
	if len(env.clip.writes) != 1 || env.clip.writes[0] != "package main\nfunc main() {}\n" {
		t.Fatalf("clipboard writes = %q", env.clip.writes)
	}
}

func TestTranslate_NoCopyAndOutputFile(t *testing.T) {
	env := setupTranslate(t, 0, "fmt.Println(1)")
	in := env.input(t, "print(1)")
	outPath := filepath.Join(env.dir, "main.go")

	if _, err := executeCommand(t, env.args(in, "--no-copy", "--no-stats", "-o", outPath)...); err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil || string(data) != "fmt.Println(1)" {
		t.Fatalf("output file = %q, %v", data, err)
	}
	if len(env.clip.writes) != 0 {
		t.Fatalf("--no-copy still wrote to the clipboard")
	}
}

func TestTranslate_OverwriteNeedsConfirmation(t *testing.T) {
	env := setupTranslate(t, 0, "new")
	in := env.input(t, "print(1)")
	outPath := filepath.Join(env.dir, "main.go")
	os.WriteFile(outPath, []byte("old"), 0600)

	prev := confirmer
	confirmer = func() prompt.Confirmer {
		return prompt.Confirmer{In: strings.NewReader("n\n"), IsInteractive: func() bool { return true }}
	}
	defer func() { confirmer = prev }()

	if _, err := executeCommand(t, env.args(in, "--no-copy", "-o", outPath)...); err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if data, _ := os.ReadFile(outPath); string(data) != "old" {
		t.Fatalf("declined overwrite replaced the file: %q", data)
	}

	if _, err := executeCommand(t, env.args(in, "--no-copy", "-y", "-o", outPath)...); err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if data, _ := os.ReadFile(outPath); string(data) != "new" {
		t.Fatalf("-y did not overwrite: %q", data)
	}
}

func TestTranslate_ReadsStdin(t *testing.T) {
	env := setupTranslate(t, 0, "ok")
	prev := stdin
	stdin = strings.NewReader("console.log(1)")
	defer func() { stdin = prev }()

	if _, err := executeCommand(t, append(env.args("-"), "--from", "javascript", "--no-stats")...); err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if reqs := env.requests(); len(reqs) != 1 || reqs[0].SourceText != "console.log(1)" || reqs[0].SourceLanguage != "JavaScript" {
		t.Fatalf("requests = %+v", reqs)
	}
}

func TestTranslate_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		input string
		extra []string
		want  string
	}{
		{"same language", "print(1)", []string{"--to", "python"}, "Please select different languages."},
		{"empty input", "", nil, "Please enter some code."},
		{"too long", strings.Repeat("x", 6001), nil, "less than 6000 characters. You are currently at 6001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTranslate(t, 0, "unused")
			in := env.input(t, tt.input)

			_, err := executeCommand(t, env.args(append([]string{in}, tt.extra...)...)...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
			if n := len(env.requests()); n != 0 {
				t.Fatalf("rejected input reached the endpoint %d times", n)
			}
		})
	}
}

func TestTranslate_EndpointFailure(t *testing.T) {
	env := setupTranslate(t, http.StatusBadGateway)
	in := env.input(t, "print(1)")

	_, err := executeCommand(t, env.args(in, "--no-stats")...)
	if err == nil || err.Error() != "Something went wrong." {
		t.Fatalf("err = %v, want generic failure", err)
	}
	if len(env.clip.writes) != 0 {
		t.Fatalf("failed run wrote to the clipboard")
	}
}

func TestTranslate_InvalidFlags(t *testing.T) {
	env := setupTranslate(t, 0, "unused")
	in := env.input(t, "print(1)")

	cases := [][]string{
		{in, "--to", "Klingon"},
		{in, "--model", "gpt-2"},
		{in, "--timeout", "soon"},
		{in, "--endpoint", "ftp://example.test"},
	}
	for _, extra := range cases {
		if _, err := executeCommand(t, env.args(extra...)...); err == nil {
			t.Fatalf("expected error for %v", extra)
		}
	}
}

func TestTranslate_TimeoutIsAnError(t *testing.T) {
	env := setupTranslate(t, 0)
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("partial"))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(slow.Close)
	in := env.input(t, "print(1)")

	args := []string{"translate", "--config", env.configArg, "--endpoint", slow.URL,
		"--from", "python", "--to", "Go", "--timeout", "100ms", "--no-stats", in}
	_, err := executeCommand(t, args...)
	if err == nil || !strings.Contains(err.Error(), "timed out after 100ms") {
		t.Fatalf("expected a timeout error, got %v", err)
	}
	if len(env.clip.writes) != 0 {
		t.Fatalf("timed out run wrote to the clipboard: %q", env.clip.writes)
	}
}
