package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cognicore/nlformer/pkg/nlformer/internalerr"
	"github.com/cognicore/nlformer/pkg/nlformer/rules"
	"github.com/cognicore/nlformer/pkg/nlformer/store"
	"github.com/cognicore/nlformer/pkg/nlformer/store/jsonfile"
	"github.com/cognicore/nlformer/pkg/nlformer/store/sqlite"
	"github.com/cognicore/nlformer/pkg/nlformer/store/textfile"
)

// Loader loads all configuration files and the rule set
type Loader struct {
	ConfigPath string
	RulesPath  string
}

// Components holds all loaded configuration components
type Components struct {
	Engine Engine
	Rules  []rules.Rule
}

// Load reads the configuration and rule files
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	comp := &Components{Engine: Default()}

	if l.ConfigPath != "" {
		cfg, err := LoadEngine(l.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		comp.Engine = cfg
	}

	if l.RulesPath != "" {
		st, err := OpenStore(ctx, l.RulesPath)
		if err != nil {
			return nil, fmt.Errorf("open rules: %w", err)
		}
		defer st.Close()

		set, err := st.LoadRules(ctx)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		comp.Rules = set
	}

	return comp, nil
}

// OpenStore picks a rule store from the file extension:
// .json, .db/.sqlite/.sqlite3, or .rules/.txt.
func OpenStore(ctx context.Context, path string) (store.RuleStore, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return jsonfile.Open(path), nil
	case ".db", ".sqlite", ".sqlite3":
		return sqlite.OpenSQLite(ctx, path)
	case ".rules", ".txt":
		return textfile.Open(path), nil
	default:
		return nil, fmt.Errorf("%w: unsupported rule file extension %q", internalerr.ErrInvalidInput, ext)
	}
}
