// Package store persists view settings on disk.
//
// Settings are saved as JSON documents in a diskv tree, one file per view
// name. Each document records the header row it was saved against, so that
// settings are only restored onto a table with the same schema.
package store

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/peterbourgon/diskv/v3"

	"github.com/JonMunkholm/tableview/internal/core"
)

// viewsDir is the subdirectory holding view documents.
const viewsDir = "views"

// Document is the stored form of one view's settings.
type Document struct {
	Headers  []string      `json:"headers"`
	Settings core.Settings `json:"settings"`
	SavedAt  time.Time     `json:"saved_at"`
}

// Store saves and restores view settings.
type Store struct {
	d        *diskv.Diskv
	basePath string
}

// Open opens a store rooted at path. A leading ~ expands to the home
// directory. cacheSize bounds the in-memory read cache in bytes.
func Open(path string, cacheSize uint64) (*Store, error) {
	basePath, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("open store %q: %w", path, err)
	}

	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      cacheSize,
		}),
		basePath: basePath,
	}, nil
}

// BasePath returns the expanded root directory.
func (s *Store) BasePath() string { return s.basePath }

// Save writes settings for a view.
func (s *Store) Save(name string, headers []string, settings core.Settings) error {
	if name == "" {
		return fmt.Errorf("save view: empty name")
	}
	if err := settings.Check(len(headers)); err != nil {
		return fmt.Errorf("save view %q: %w", name, err)
	}

	data, err := json.Marshal(Document{
		Headers:  headers,
		Settings: settings,
		SavedAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode view %q: %w", name, err)
	}

	if err := s.d.Write(toKey(name), data); err != nil {
		return fmt.Errorf("write view %q: %w", name, err)
	}
	return nil
}

// Load returns the settings saved for a view. It fails with
// core.ErrSettingsNotFound when nothing is saved and core.ErrSchemaMismatch
// when the saved headers differ from headers.
func (s *Store) Load(name string, headers []string) (core.Settings, error) {
	doc, err := s.Document(name)
	if err != nil {
		return core.Settings{}, err
	}
	if !slices.Equal(doc.Headers, headers) {
		return core.Settings{}, fmt.Errorf("load view %q: %w", name, core.ErrSchemaMismatch)
	}
	if err := doc.Settings.Check(len(headers)); err != nil {
		return core.Settings{}, fmt.Errorf("load view %q: %w", name, err)
	}
	return doc.Settings, nil
}

// Document returns the raw stored document for a view.
func (s *Store) Document(name string) (Document, error) {
	key := toKey(name)
	if !s.d.Has(key) {
		return Document{}, fmt.Errorf("view %q: %w", name, core.ErrSettingsNotFound)
	}

	data, err := s.d.Read(key)
	if err != nil {
		return Document{}, fmt.Errorf("read view %q: %w", name, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode view %q: %w", name, err)
	}
	return doc, nil
}

// Delete removes a saved view.
func (s *Store) Delete(name string) error {
	key := toKey(name)
	if !s.d.Has(key) {
		return fmt.Errorf("view %q: %w", name, core.ErrSettingsNotFound)
	}
	if err := s.d.Erase(key); err != nil {
		return fmt.Errorf("delete view %q: %w", name, err)
	}
	return nil
}

// Names returns the saved view names in sorted order.
func (s *Store) Names(ctx context.Context) []string {
	var names []string
	for key := range s.d.KeysPrefix(viewsDir+"-", ctx.Done()) {
		if name, ok := fromKey(key); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// toKey makes `views-<hex name>`. Hex keeps the separator out of the file name.
func toKey(name string) string {
	return viewsDir + "-" + hex.EncodeToString([]byte(name))
}

func fromKey(key string) (string, bool) {
	encoded, ok := strings.CutPrefix(key, viewsDir+"-")
	if !ok {
		return "", false
	}
	name, err := hex.DecodeString(encoded)
	if err != nil {
		return "", false
	}
	return string(name), true
}

func keyToPathTransform(key string) *diskv.PathKey {
	parts := strings.Split(key, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return strings.Join(pathKey.Path, "-") + "-" + pathKey.FileName
}
