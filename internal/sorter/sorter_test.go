package sorter

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/btraven00/urlsort/internal/logx"
	"github.com/btraven00/urlsort/pkg/domains"
)

func testConfig(input, output string) Config {
	cfg := DefaultConfig()
	cfg.InputDir = input
	cfg.OutputDir = output

	return cfg
}

func writeFiles(t *testing.T, fs afero.Fs, files map[string]string) {
	t.Helper()

	for path, content := range files {
		if err := afero.WriteFile(fs, filepath.FromSlash(path), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
}

func mustRegistry(t *testing.T, names ...string) *domains.Registry {
	t.Helper()

	registry, err := domains.NewRegistry(names)
	if err != nil {
		t.Fatal(err)
	}

	return registry
}

// runSorter runs a full pass and returns the content of every output file by name.
func runSorter(t *testing.T, fs afero.Fs, cfg Config, registry *domains.Registry) map[string]string {
	t.Helper()

	s, err := New(fs, cfg, registry, logx.Discard())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	paths, err := s.Inputs()
	if err != nil {
		t.Fatalf("Inputs failed: %v", err)
	}

	if _, err := s.Run(context.Background(), paths); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	return readOutputs(t, fs, cfg.OutputDir)
}

func readOutputs(t *testing.T, fs afero.Fs, dir string) map[string]string {
	t.Helper()

	outputs := make(map[string]string)

	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		t.Fatalf("failed to list %s: %v", dir, err)
	}
	for _, info := range infos {
		data, err := afero.ReadFile(fs, filepath.Join(dir, info.Name()))
		if err != nil {
			t.Fatal(err)
		}
		outputs[info.Name()] = string(data)
	}

	return outputs
}

func TestSorter_ConcreteScenario(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"in/page.txt": "see https://example.com/a and https://other.org/b\n",
	})

	outputs := runSorter(t, fs, testConfig("in", "out"), mustRegistry(t, "example.com"))

	if got := outputs["example.com.txt"]; got != "https://example.com/a\n" {
		t.Errorf("example.com.txt = %q", got)
	}
	if got := outputs["unknown.txt"]; got != "https://other.org/b\n" {
		t.Errorf("unknown.txt = %q", got)
	}
	if len(outputs) != 2 {
		t.Errorf("unexpected output files: %v", outputs)
	}
}

func TestSorter_WWWHost(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"in/page.txt": "link: www.example.com/path\n",
	})

	outputs := runSorter(t, fs, testConfig("in", "out"), mustRegistry(t, "example.com"))

	if got := outputs["example.com.txt"]; got != "www.example.com/path\n" {
		t.Errorf("example.com.txt = %q", got)
	}
}

func TestSorter_CollapseSubdomains(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"in/page.txt": "https://blog.news.example.co.uk/post\n",
	})

	cfg := testConfig("in", "out")
	cfg.CollapseSubdomains = true

	outputs := runSorter(t, fs, cfg, mustRegistry(t, "example.co.uk", "blog.news.example.co.uk"))

	if got := outputs["example.co.uk.txt"]; got != "https://blog.news.example.co.uk/post\n" {
		t.Errorf("example.co.uk.txt = %q (outputs %v)", got, outputs)
	}
}

func TestSorter_SmallChunksMatchLargeChunks(t *testing.T) {
	content := strings.Repeat("noise https://example.com/a/b?c=d, more www.other.org/x\\/y and http:\\/\\/example.com\\/esc\n", 20) +
		"tail https://example.com/last"

	outputsFor := func(chunkSize int) map[string]string {
		fs := afero.NewMemMapFs()
		writeFiles(t, fs, map[string]string{"in/a.txt": content})

		cfg := testConfig("in", "out")
		cfg.ChunkSize = chunkSize

		return runSorter(t, fs, cfg, mustRegistry(t, "example.com", "other.org"))
	}

	expected := outputsFor(1 << 16)
	if strings.Count(expected["example.com.txt"], "\n") != 41 {
		t.Fatalf("unexpected baseline output: %q", expected["example.com.txt"])
	}

	for _, size := range []int{1, 7, 13, 64, 100} {
		got := outputsFor(size)
		for name, want := range expected {
			if got[name] != want {
				t.Errorf("chunk size %d: %s differs\n got %q\nwant %q", size, name, got[name], want)
			}
		}
	}
}

func TestSorter_Idempotent(t *testing.T) {
	files := map[string]string{
		"in/1.txt":     "https://example.com/one www.example.com/two https://x.org/three\n",
		"in/sub/2.txt": "https://example.com/four",
	}
	registry := mustRegistry(t, "example.com")

	fs := afero.NewMemMapFs()
	writeFiles(t, fs, files)

	first := runSorter(t, fs, testConfig("in", "out"), registry)
	if err := fs.RemoveAll("out"); err != nil {
		t.Fatal(err)
	}
	second := runSorter(t, fs, testConfig("in", "out"), registry)

	if len(first) != len(second) {
		t.Fatalf("file sets differ: %v vs %v", first, second)
	}
	for name, content := range first {
		if second[name] != content {
			t.Errorf("%s differs between runs: %q vs %q", name, content, second[name])
		}
	}
}

func TestSorter_AppendAcrossRuns(t *testing.T) {
	a := "https://example.com/a1 https://x.org/a2\n"
	b := "https://example.com/b1 https://y.org/b2\n"
	registry := mustRegistry(t, "example.com")

	// A then B into the same output directory.
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{"inA/a.txt": a, "inB/b.txt": b})
	runSorter(t, fs, testConfig("inA", "out"), registry)
	separate := runSorter(t, fs, testConfig("inB", "out"), registry)

	// Both files in one directory.
	together := afero.NewMemMapFs()
	writeFiles(t, together, map[string]string{"in/a.txt": a, "in/b.txt": b})
	combined := runSorter(t, together, testConfig("in", "out"), registry)

	names := make([]string, 0, len(combined))
	for name := range combined {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if separate[name] != combined[name] {
			t.Errorf("%s: separate runs %q, combined run %q", name, separate[name], combined[name])
		}
	}
	if got := combined["example.com.txt"]; got != "https://example.com/a1\nhttps://example.com/b1\n" {
		t.Errorf("example.com.txt = %q", got)
	}
}

func TestSorter_Encoding(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"in/latin.txt": "voir https://caf\xe9.example/men\xfc ici\n",
	})

	cfg := testConfig("in", "out")
	cfg.Encoding = "iso-8859-1"

	outputs := runSorter(t, fs, cfg, mustRegistry(t, "café.example"))

	if got := outputs["café.example.txt"]; got != "https://caf\xe9.example/men\xfc\n" {
		t.Errorf("café.example.txt = %q (outputs %v)", got, outputs)
	}
}

func TestSorter_InvalidUTF8Aborts(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"in/1.txt": "https://example.com/ok\n",
		"in/2.txt": "https://example.com/bad \xff\xfe\n",
		"in/3.txt": "https://example.com/never\n",
	})

	s, err := New(fs, testConfig("in", "out"), mustRegistry(t, "example.com"), logx.Discard())
	if err != nil {
		t.Fatal(err)
	}
	paths, _ := s.Inputs()

	summary, err := s.Run(context.Background(), paths)
	if err == nil {
		t.Fatal("expected a decode error")
	}
	if !strings.Contains(err.Error(), "2.txt") {
		t.Errorf("error should name the failing file: %v", err)
	}
	if summary.Files != 1 {
		t.Errorf("Files = %d, want 1", summary.Files)
	}

	outputs := readOutputs(t, fs, "out")
	if got := outputs["example.com.txt"]; got != "https://example.com/ok\n" {
		t.Errorf("example.com.txt = %q, want only the first file's match", got)
	}
}

func TestSorter_CancelledContext(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{"in/1.txt": "https://example.com/a\n"})

	s, err := New(fs, testConfig("in", "out"), mustRegistry(t), logx.Discard())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Run(ctx, []string{"in/1.txt"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want context.Canceled", err)
	}
}

func TestSorter_Summary(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"in/1.txt": "https://example.com/a https://x.org/b\n",
		"in/2.txt": "https://example.com/c\n",
	})

	s, err := New(fs, testConfig("in", "out"), mustRegistry(t, "example.com"), logx.Discard())
	if err != nil {
		t.Fatal(err)
	}
	paths, _ := s.Inputs()

	summary, err := s.Run(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}

	if summary.Files != 2 || summary.Matches != 3 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.Groups["example.com"] != 2 || summary.Groups[domains.Unknown] != 1 {
		t.Errorf("Groups = %v", summary.Groups)
	}
}

func TestSorter_VerboseLog(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"in/page.txt": "https://example.com/a https://Other.org:8080/b\n",
	})

	var buf bytes.Buffer
	s, err := New(fs, testConfig("in", "out"), mustRegistry(t, "example.com"), logx.New(&buf, 1, false))
	if err != nil {
		t.Fatal(err)
	}
	paths, _ := s.Inputs()
	if _, err := s.Run(context.Background(), paths); err != nil {
		t.Fatal(err)
	}

	log := buf.String()
	for _, want := range []string{`msg="scanner ready"`, "chunk_size=4096", `msg="unlisted host"`, "host=other.org"} {
		if !strings.Contains(log, want) {
			t.Errorf("log is missing %q:\n%s", want, log)
		}
	}
	if strings.Contains(log, "host=example.com") {
		t.Errorf("listed hosts should not be reported:\n%s", log)
	}
}

func TestConfig_Validate(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = fs.MkdirAll("in", 0o755)
	_ = afero.WriteFile(fs, "file.txt", []byte("x"), 0o644)

	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{name: "defaults", mutate: func(*Config) {}, valid: true},
		{name: "zero chunk size", mutate: func(c *Config) { c.ChunkSize = 0 }},
		{name: "negative chunk size", mutate: func(c *Config) { c.ChunkSize = -5 }},
		{name: "unknown encoding", mutate: func(c *Config) { c.Encoding = "no-such-charset" }},
		{name: "latin1 encoding", mutate: func(c *Config) { c.Encoding = "latin1" }, valid: true},
		{name: "bad filter type", mutate: func(c *Config) { c.FilterType = "greylist" }},
		{name: "missing input", mutate: func(c *Config) { c.InputDir = "missing" }},
		{name: "input is a file", mutate: func(c *Config) { c.InputDir = "file.txt" }},
		{name: "empty output", mutate: func(c *Config) { c.OutputDir = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig("in", "out")
			tt.mutate(&cfg)

			err := cfg.Validate(fs)
			if tt.valid && err != nil {
				t.Errorf("expected valid config, got %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
