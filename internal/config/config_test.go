package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"abiverify/internal/verify"
)

const sampleManifest = `
[toolchain]
cc = "gcc"
min_version = "9.0.0"
strict_search_paths = true

[suite]
jobs = 4
builtin = ["stat", "timespec", "devnum"]
fail_fast = true

[[struct]]
name = "timespec64"
c_type = "struct timespec"
headers = ["time.h"]
size = 16
  [[struct.field]]
  name = "tv_sec"
  offset = 0
  size = 8
  [[struct.field]]
  name = "tv_nsec"
  offset = 8
  size = 8

[[assert]]
name = "off-t"
headers = ["sys/types.h"]
  [[assert.check]]
  cond = "sizeof(off_t) == 8"
`

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	path := writeManifest(t, root, sampleManifest)
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o750); err != nil {
		t.Fatal(err)
	}

	m, ok, err := Load(nested)
	if err != nil || !ok {
		t.Fatalf("Load = %v, %v", ok, err)
	}
	if m.Path != path || m.Root != root {
		t.Fatalf("manifest at %q (root %q), want %q", m.Path, m.Root, path)
	}
	cfg := m.Config
	if cfg.Toolchain.CC != "gcc" || !cfg.Toolchain.StrictSearchPaths || cfg.Toolchain.MinVersion != "9.0.0" {
		t.Fatalf("toolchain = %+v", cfg.Toolchain)
	}
	if jobs, err := cfg.Jobs(); err != nil || jobs != 4 {
		t.Fatalf("Jobs() = %d, %v", jobs, err)
	}
	if !cfg.Suite.FailFast || strings.Join(cfg.Suite.Builtin, ",") != "stat,timespec,devnum" {
		t.Fatalf("suite = %+v", cfg.Suite)
	}

	cases, err := cfg.Cases()
	if err != nil {
		t.Fatalf("Cases: %v", err)
	}
	if len(cases) != 2 || cases[0].Name() != "timespec64" || cases[1].Name() != "off-t" {
		t.Fatalf("cases = %v", cases)
	}
	sc := cases[0].(verify.StructCase)
	if sc.Layout.Size != 16 || len(sc.Layout.Fields) != 2 || sc.Layout.Fields[1].Offset != 8 {
		t.Fatalf("layout = %+v", sc.Layout)
	}
	if n := len(sc.Assertions()); n != 3 {
		t.Fatalf("timespec64 yields %d assertions, want 3", n)
	}
}

func TestLoadFileErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"syntax", "[toolchain\n", "failed to parse TOML"},
		{"unknown key", "[toolchain]\ncompiler = \"gcc\"\n", "unknown keys: toolchain.compiler"},
		{"negative jobs", "[suite]\njobs = -1\n", "must not be negative"},
		{"struct without size", "[[struct]]\nname = \"x\"\n", "missing size"},
		{"field without offset", "[[struct]]\nname = \"x\"\nsize = 4\n[[struct.field]]\nname = \"a\"\nsize = 4\n", "needs offset and size"},
		{"duplicate case", "[[struct]]\nname = \"x\"\nsize = 1\n[[assert]]\nname = \"x\"\n[[assert.check]]\ncond = \"1\"\n", "declared twice"},
		{"assert without checks", "[[assert]]\nname = \"y\"\n", "no [[assert.check]]"},
		{"struct without name", "[[struct]]\nsize = 1\n", "missing name"},
	}
	for _, tc := range cases {
		path := writeManifest(t, t.TempDir(), tc.body)
		_, err := LoadFile(path)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: LoadFile error = %v, want %q", tc.name, err, tc.want)
		}
	}
}

func TestStructDefaultsAndValidation(t *testing.T) {
	size := int64(4)
	neg := int64(-1)
	s := StructConfig{Name: "pair", Size: &size, Fields: []FieldConfig{{Name: "a", Offset: &neg, Size: &size}}}
	if _, err := s.Struct(); err == nil {
		t.Fatal("negative offset accepted")
	}
	s.Fields = nil
	st, err := s.Struct()
	if err != nil || st.CType != "struct pair" {
		t.Fatalf("Struct() = %+v, %v", st, err)
	}
}
