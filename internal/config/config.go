// Package config is for app wide settings
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/jinzhu/copier"
	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

var (
	home, _ = homedir.Dir()

	// offtargetDir is the root directory where settings and cached accessions live.
	// OFFTARGET_HOME overrides the default under the user's home directory.
	offtargetDir = dataRoot()

	// configPath is the path to a local/default config file
	configPath = filepath.Join(offtargetDir, "config.yaml")

	// AccessionDir is the default parent of the per-accession cache directories
	AccessionDir = filepath.Join(offtargetDir, "accessions")
)

// DefaultConfig is the config file embedded with offtarget and installed on the first run
//
//go:embed config.yaml
var DefaultConfig []byte

// Config is the Root-level settings struct and is a mix
// of settings available in config.yaml and those
// available from the command line
type Config struct {
	// the config file's version
	Version string `mapstructure:"version"`

	// gaps between consecutive genes must be longer than this to become a noncoding region
	MinimumIntergenicLength int `mapstructure:"minimum-intergenic-region-length"`

	// maximum mismatches tolerated in an off-target alignment
	MismatchThreshold int `mapstructure:"mismatch-threshold"`

	// contact email sent with every Entrez request
	EntrezEmail string `mapstructure:"entrez-email"`

	// optional NCBI API key, raises the request limit
	EntrezAPIKey string `mapstructure:"entrez-api-key"`

	// Entrez request rate ceiling
	EntrezRequestsPerSecond float64 `mapstructure:"entrez-requests-per-second"`

	// bound on a single Entrez fetch
	FetchTimeout time.Duration `mapstructure:"fetch-timeout"`

	// bound on a single bowtie2-build run
	IndexBuildTimeout time.Duration `mapstructure:"index-build-timeout"`

	// bound on a single bowtie2 run
	SearchTimeout time.Duration `mapstructure:"search-timeout"`

	// Prometheus textfile to write after each command
	MetricsTextfile string `mapstructure:"metrics-textfile"`

	// parent directory of the per-accession caches
	DataDir string `mapstructure:"data-dir"`
}

func dataRoot() string {
	if dir := os.Getenv("OFFTARGET_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(home, ".offtarget")
}

// Setup checks that the offtarget data directory exists.
// It creates one and writes the default config file to it otherwise.
func Setup() {
	for _, dir := range []string{offtargetDir, AccessionDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal(err)
		}
	}

	// copy the default config file if it doesn't exist
	_, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		if err = os.WriteFile(configPath, DefaultConfig, 0644); err != nil {
			log.Fatal(err)
		}
	} else if err != nil {
		log.Fatal(err)
	}
}

// New returns a new Config struct populated by settings from
// config.yaml in the data directory, merged with the settings file
// the user points to with the "--config" flag
func New() *Config {
	config, err := load(viper.GetString("config"))
	if err != nil {
		log.Fatal(err)
	}
	return config
}

// load reads the default settings and merges userConfig over them when set.
func load(userConfig string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	if userConfig != "" {
		// decode strictly first so misspelled keys are reported rather than ignored
		if err := checkUserConfig(userConfig); err != nil {
			return nil, err
		}

		v.SetConfigFile(userConfig)
		if err := v.MergeInConfig(); err != nil {
			return nil, err
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to decode settings file %s: %v", v.ConfigFileUsed(), err)
	}
	if config.DataDir == "" {
		config.DataDir = AccessionDir
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func checkUserConfig(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	userData := make(map[string]interface{})
	if err := yaml.NewDecoder(file).Decode(userData); err != nil {
		return fmt.Errorf("failed to parse %s: %v", path, err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &Config{},
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(userData); err != nil {
		return fmt.Errorf("invalid settings in %s: %v", path, err)
	}
	return nil
}

// Validate rejects nonsense values.
func (c *Config) Validate() error {
	switch {
	case c.MinimumIntergenicLength < 0:
		return fmt.Errorf("minimum-intergenic-region-length must be >= 0, got %d", c.MinimumIntergenicLength)
	case c.MismatchThreshold < 0:
		return fmt.Errorf("mismatch-threshold must be >= 0, got %d", c.MismatchThreshold)
	case c.EntrezRequestsPerSecond <= 0:
		return fmt.Errorf("entrez-requests-per-second must be > 0, got %v", c.EntrezRequestsPerSecond)
	case c.FetchTimeout < 0, c.IndexBuildTimeout < 0, c.SearchTimeout < 0:
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

// Clone returns a deep copy, for applying per-command overrides.
func (c *Config) Clone() *Config {
	clone := &Config{}
	if err := copier.CopyWithOption(clone, c, copier.Option{DeepCopy: true}); err != nil {
		// both sides are the same plain struct type
		panic(err)
	}
	return clone
}
