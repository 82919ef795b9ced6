package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/koskimas/sdkgen/internal/config"
	"github.com/koskimas/sdkgen/internal/gen"
	"github.com/koskimas/sdkgen/internal/schema"
)

const configFile = "sdkgen.yaml"

type Settings struct {
	WorkingDir string
	Verbose    bool
}

// Run executes one generation pass: read the config, resolve and load the
// schema files and emit the bindings into the configured output directory.
func Run(s Settings) error {
	log := newLogger(s)

	cfg, err := config.Read(filepath.Join(s.WorkingDir, configFile))
	if err != nil {
		return err
	}

	schemaFiles, err := resolveSchemaFiles(s, *cfg)
	if err != nil {
		return err
	}
	if len(schemaFiles) == 0 {
		return fmt.Errorf("no schema files matched the configured globs")
	}

	api, err := schema.Load(schemaFiles)
	if err != nil {
		return err
	}

	log.Info().
		Int("schemas", len(schemaFiles)).
		Int("namespaces", len(api.Namespaces)).
		Msg("loaded schemas")

	return gen.GenerateCode(*cfg, s.WorkingDir, api, log)
}

func newLogger(s Settings) zerolog.Logger {
	level := zerolog.InfoLevel
	if s.Verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
}

// resolveSchemaFiles expands the configured schema globs relative to the
// working directory. Matches are deduplicated and returned in a stable order
// so repeated runs emit identical output.
func resolveSchemaFiles(s Settings, cfg config.Config) ([]string, error) {
	seen := make(map[string]bool)
	files := make([]string, 0)

	for _, sc := range cfg.Schemas {
		matches, err := filepath.Glob(filepath.Join(s.WorkingDir, sc.Path))
		if err != nil {
			return nil, fmt.Errorf(`failed to resolve schema files using glob "%s": %w`, sc.Path, err)
		}

		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}
