package i18n

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config names the fallback locale and the locales a bundle ships.
type Config struct {
	DefaultLocale string   `json:"default_locale" yaml:"default_locale"`
	Locales       []string `json:"locales" yaml:"locales"`
}

// Bundle is a message file: its locale config plus messages keyed by locale
// then message key.
type Bundle struct {
	Config       Config                       `json:"config" yaml:"config"`
	Translations map[string]map[string]string `json:"translations" yaml:"translations"`
}

//go:embed messages
var builtinMessages embed.FS

// DefaultBundle returns the built-in map messages.
func DefaultBundle() (*Bundle, error) {
	return LoadBundle(builtinMessages, "messages/maps.json")
}

// ReadBundle reads a bundle from disk. The extension picks the decoder:
// .yaml and .yml are YAML, anything else JSON.
func ReadBundle(ctx context.Context, file string) (*Bundle, error) {
	if strings.TrimSpace(file) == "" {
		return nil, fmt.Errorf("i18n: bundle path cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("i18n: read bundle: %w", err)
	}
	return decodeBundle(file, data)
}

// LoadBundle reads name from fsys.
func LoadBundle(fsys fs.FS, name string) (*Bundle, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("i18n: read bundle: %w", err)
	}
	return decodeBundle(name, data)
}

func decodeBundle(name string, data []byte) (*Bundle, error) {
	var bundle Bundle
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&bundle); err != nil {
			return nil, fmt.Errorf("i18n: decode %s: %w", name, err)
		}
	default:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&bundle); err != nil {
			return nil, fmt.Errorf("i18n: decode %s: %w", name, err)
		}
	}
	if bundle.Translations == nil {
		bundle.Translations = map[string]map[string]string{}
	}
	return &bundle, nil
}
