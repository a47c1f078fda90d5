package golang

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/godepscan/pkg/deps"
	"github.com/matzehuels/godepscan/pkg/errors"
)

func TestLoad(t *testing.T) {
	ctx := context.Background()
	for _, m := range Managers() {
		t.Run(string(m), func(t *testing.T) {
			records, err := Load(ctx, "testdata", m, Config{})
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			if len(records) == 0 {
				t.Fatal("Load returned no records")
			}
			for _, r := range records {
				if r.Manager != string(m) {
					t.Errorf("%s: Manager = %q, want %q", r.Name, r.Manager, m)
				}
			}
		})
	}
}

func TestLoadMissingManifest(t *testing.T) {
	dir := t.TempDir()
	for _, m := range Managers() {
		t.Run(string(m), func(t *testing.T) {
			_, err := Load(context.Background(), dir, m, Config{})

			var missingErr *errors.MissingManifestError
			if !stderrors.As(err, &missingErr) {
				t.Fatalf("err = %v, want *MissingManifestError", err)
			}
			if missingErr.File != m.Manifest() || missingErr.Remediation != m.Remediation() {
				t.Errorf("got %+v", missingErr)
			}
			if !errors.Is(err, errors.ErrCodeManifestNotFound) {
				t.Errorf("code = %q", errors.GetCode(err))
			}
		})
	}
}

func TestLoadDirectoryIsMissing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, filepath.Join(VendorConfName, "placeholder"), "")

	_, err := Load(context.Background(), dir, Vndr, Config{})
	if !errors.Is(err, errors.ErrCodeManifestNotFound) {
		t.Errorf("err = %v, want MANIFEST_NOT_FOUND", err)
	}
}

func TestLoadNestedGodeps(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, filepath.Join("Godeps", GodepsJSONName), `{"Deps": [{"ImportPath": "github.com/a/b", "Rev": "r"}]}`)

	records, err := Load(context.Background(), dir, Godep, Config{})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"github.com/a/b"}; !reflect.DeepEqual(names(records), want) {
		t.Errorf("names = %v, want %v", names(records), want)
	}
}

func TestLoadEnsure(t *testing.T) {
	t.Run("runs for dep", func(t *testing.T) {
		var ranIn string
		cfg := Config{Ensure: EnsureFunc(func(_ context.Context, dir string) error {
			ranIn = dir
			return nil
		})}
		if _, err := Load(context.Background(), "testdata", Dep, cfg); err != nil {
			t.Fatal(err)
		}
		if ranIn != "testdata" {
			t.Errorf("ensure ran in %q, want testdata", ranIn)
		}
	})

	t.Run("skipped for vndr", func(t *testing.T) {
		ran := false
		cfg := Config{Ensure: EnsureFunc(func(context.Context, string) error {
			ran = true
			return nil
		})}
		if _, err := Load(context.Background(), "testdata", Vndr, cfg); err != nil {
			t.Fatal(err)
		}
		if ran {
			t.Error("ensure ran for vndr")
		}
	})

	t.Run("failure is a warning", func(t *testing.T) {
		var rec logRecorder
		cfg := Config{
			Options: deps.Options{Logger: rec.logf},
			Ensure: EnsureFunc(func(context.Context, string) error {
				return stderrors.New("dep: command not found")
			}),
		}
		records, err := Load(context.Background(), "testdata", Dep, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if len(records) == 0 {
			t.Error("no records after failed ensure")
		}
		if len(rec.lines) != 1 || !strings.Contains(rec.lines[0], "Can't run 'dep ensure' command") {
			t.Errorf("log = %q", rec.lines)
		}
	})
}

func TestCollectMissingFile(t *testing.T) {
	dir := t.TempDir()
	for _, m := range Managers() {
		t.Run(string(m), func(t *testing.T) {
			var rec logRecorder
			got := Collect(context.Background(), dir, m, Config{Options: deps.Options{Logger: rec.logf}})

			if got == nil || len(got) != 0 {
				t.Errorf("Collect() = %#v, want empty non-nil slice", got)
			}
			if len(rec.lines) != 1 {
				t.Fatalf("log = %q, want exactly one line", rec.lines)
			}
			want := "Can't find " + m.Manifest() + " file.  Please run '" + m.Remediation() + "' command"
			if rec.lines[0] != want {
				t.Errorf("log = %q, want %q", rec.lines[0], want)
			}
		})
	}
}

func TestCollectInvalidManager(t *testing.T) {
	tests := []struct {
		m    Manager
		want string
	}{
		{"", "No valid dependency manager was defined"},
		{"glide", "glide"},
	}
	for _, tt := range tests {
		var rec logRecorder
		got := Collect(context.Background(), t.TempDir(), tt.m, Config{Options: deps.Options{Logger: rec.logf}})
		if len(got) != 0 {
			t.Errorf("Collect(%q) returned %d records", tt.m, len(got))
		}
		if len(rec.lines) != 1 || !strings.Contains(rec.lines[0], tt.want) {
			t.Errorf("Collect(%q) log = %q, want one line containing %q", tt.m, rec.lines, tt.want)
		}
	}
}

func TestCollectMatchesLoad(t *testing.T) {
	ctx := context.Background()
	for _, m := range Managers() {
		loaded, err := Load(ctx, "testdata", m, Config{})
		if err != nil {
			t.Fatal(err)
		}
		collected := Collect(ctx, "testdata", m, Config{})
		if !reflect.DeepEqual(loaded, collected) {
			t.Errorf("%s: Collect differs from Load", m)
		}
	}
}
