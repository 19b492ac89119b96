// YAML config loader with CUE validation integration
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"log"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"

	"energest-report/internal/energest"
)

//go:embed schema/analysis.cue
var defaultSchema []byte

// Markers overrides the operation patterns recognised in the full variant.
type Markers struct {
	Tx     string `yaml:"tx"`
	Rx     string `yaml:"rx"`
	Append string `yaml:"append"`
}

// Greptime holds the GreptimeDB export settings. An empty endpoint disables export.
type Greptime struct {
	Endpoint    string `yaml:"endpoint"`
	Database    string `yaml:"database"`
	TablePrefix string `yaml:"table_prefix"`
}

// Output controls local exports.
type Output struct {
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"`
}

// Config is the root analysis configuration.
type Config struct {
	DataDir        string            `yaml:"data_dir"`
	Variant        string            `yaml:"variant"`
	ExecutionTimeS float64           `yaml:"execution_time_s"`
	Labels         map[string]string `yaml:"labels"`
	Markers        Markers           `yaml:"markers"`
	Greptime       Greptime          `yaml:"greptime"`
	Output         Output            `yaml:"output"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg
}

// Load loads a YAML config and validates it against a CUE schema.
// An empty cueSchemaPath validates against the embedded schema.
func Load(configPath, cueSchemaPath string) (*Config, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()

	log.Printf("[Config] loaded %s: variant=%s data_dir=%s", configPath, cfg.Variant, cfg.DataDir)
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ENERGEST_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("GREPTIMEDB_ENDPOINT"); v != "" {
		c.Greptime.Endpoint = v
	}
	if v := os.Getenv("GREPTIMEDB_DATABASE"); v != "" {
		c.Greptime.Database = v
	}
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "datafiles"
	}
	if c.Variant == "" {
		c.Variant = string(energest.VariantFull)
	}
	if c.Greptime.Database == "" {
		c.Greptime.Database = "public"
	}
	if c.Greptime.TablePrefix == "" {
		c.Greptime.TablePrefix = "energest"
	}
}

// NewAnalyzer builds an analyzer from the variant, cutoff and marker settings.
func (c *Config) NewAnalyzer() (*energest.Analyzer, error) {
	variant, err := energest.ParseVariant(c.Variant)
	if err != nil {
		return nil, err
	}
	classifier, err := energest.NewClassifier(energest.Patterns{
		Tx:     c.Markers.Tx,
		Rx:     c.Markers.Rx,
		Append: c.Markers.Append,
	})
	if err != nil {
		return nil, fmt.Errorf("markers: %w", err)
	}
	a := energest.NewAnalyzer(variant)
	a.Cutoff = c.ExecutionTimeS
	a.Classifier = classifier
	return a, nil
}

// ValidateWithCue validates a YAML configuration file using a CUE schema file.
func ValidateWithCue(configFile, cueFile string) error {
	ctx := cuecontext.New()

	yamlBytes, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("cannot read YAML config: %w", err)
	}
	if len(bytes.TrimSpace(yamlBytes)) == 0 {
		return nil
	}

	schemaBytes := defaultSchema
	if cueFile != "" {
		if schemaBytes, err = os.ReadFile(cueFile); err != nil {
			return fmt.Errorf("cannot read CUE schema: %w", err)
		}
	}
	schemaVal := ctx.CompileBytes(schemaBytes, cue.Filename("analysis.cue"))
	if err := schemaVal.Err(); err != nil {
		return fmt.Errorf("cannot compile CUE schema: %w", err)
	}
	def := schemaVal.LookupPath(cue.ParsePath("#Config"))
	if !def.Exists() {
		return fmt.Errorf("CUE schema has no #Config definition")
	}

	file, err := cueyaml.Extract(configFile, yamlBytes)
	if err != nil {
		return fmt.Errorf("cannot parse YAML config: %w", err)
	}
	configVal := ctx.BuildFile(file)

	if err := def.Unify(configVal).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
