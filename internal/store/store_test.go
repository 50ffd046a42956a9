package store

import (
	"context"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/JonMunkholm/tableview/internal/core"
)

var headers = []string{"id", "region", "amount"}

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), 1<<16)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

func sampleSettings() core.Settings {
	s := core.DefaultSettings(3, 100)
	s.ColumnWidths[2] = 140
	s.ColumnEnabled[0] = false
	s.ColumnOrdering = []int{2, 0, 1}
	s.Filters[1] = core.ColumnFilter{Enabled: true, AllowedValues: map[string]bool{"west": true}}
	s.SortColumn = 2
	s.SortAscending = false
	s.NaturalSort = true
	s.GroupedColumn = 1
	s.GroupCollapsed = map[string]bool{"west": true}
	return s
}

func TestSaveLoad(t *testing.T) {
	s := openTemp(t)
	want := sampleSettings()

	if err := s.Save("upload:orders", headers, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load("upload:orders", headers)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %+v\nwant %+v", got, want)
	}

	doc, err := s.Document("upload:orders")
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	if doc.SavedAt.IsZero() {
		t.Error("SavedAt not set")
	}

	file := filepath.Join(s.BasePath(), "views", hex.EncodeToString([]byte("upload:orders")))
	if _, err := os.Stat(file); err != nil {
		t.Errorf("document file missing: %v", err)
	}
}

func TestSave_Overwrites(t *testing.T) {
	s := openTemp(t)
	first := core.DefaultSettings(3, 100)
	second := sampleSettings()

	_ = s.Save("v", headers, first)
	_ = s.Save("v", headers, second)

	got, err := s.Load("v", headers)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.SortColumn != 2 {
		t.Errorf("SortColumn = %d, want the second save", got.SortColumn)
	}
}

func TestSave_Errors(t *testing.T) {
	s := openTemp(t)

	if err := s.Save("", headers, core.DefaultSettings(3, 100)); err == nil {
		t.Error("Save() accepted an empty name")
	}
	if err := s.Save("v", headers, core.DefaultSettings(2, 100)); !errors.Is(err, core.ErrSchemaMismatch) {
		t.Errorf("Save() error = %v, want ErrSchemaMismatch", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	s := openTemp(t)
	_ = s.Save("v", headers, core.DefaultSettings(3, 100))

	if _, err := s.Load("missing", headers); !errors.Is(err, core.ErrSettingsNotFound) {
		t.Errorf("Load(missing) error = %v, want ErrSettingsNotFound", err)
	}
	if _, err := s.Load("v", []string{"id", "region", "total"}); !errors.Is(err, core.ErrSchemaMismatch) {
		t.Errorf("Load() with renamed column error = %v, want ErrSchemaMismatch", err)
	}
	if _, err := s.Load("v", headers[:2]); !errors.Is(err, core.ErrSchemaMismatch) {
		t.Errorf("Load() with fewer columns error = %v, want ErrSchemaMismatch", err)
	}
}

func TestNamesAndDelete(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	for _, name := range []string{"named:weekly", "a/b", "upload:x-y", "named:daily"} {
		if err := s.Save(name, headers, core.DefaultSettings(3, 100)); err != nil {
			t.Fatalf("Save(%q) error = %v", name, err)
		}
	}

	want := []string{"a/b", "named:daily", "named:weekly", "upload:x-y"}
	if got := s.Names(ctx); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	if err := s.Delete("a/b"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete("a/b"); !errors.Is(err, core.ErrSettingsNotFound) {
		t.Errorf("second Delete() error = %v, want ErrSettingsNotFound", err)
	}
	if got := s.Names(ctx); len(got) != 3 {
		t.Errorf("Names() after delete = %v", got)
	}
}

func TestOpen_ExpandsHome(t *testing.T) {
	s, err := Open("~/.tableview-test", 0)
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if strings.HasPrefix(s.BasePath(), "~") {
		t.Errorf("BasePath() = %q, want expanded", s.BasePath())
	}
}

func TestKeyTransforms(t *testing.T) {
	key := toKey("named:x-y")
	pk := keyToPathTransform(key)
	if !reflect.DeepEqual(pk.Path, []string{"views"}) {
		t.Errorf("Path = %v, want [views]", pk.Path)
	}
	if got := pathToKeyTransform(pk); got != key {
		t.Errorf("pathToKeyTransform() = %q, want %q", got, key)
	}
	if name, ok := fromKey(key); !ok || name != "named:x-y" {
		t.Errorf("fromKey() = %q, %v", name, ok)
	}
	if _, ok := fromKey("other-abc"); ok {
		t.Error("fromKey() accepted a foreign key")
	}
}
