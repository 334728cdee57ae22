package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider. A missing file
// is not an error: the defaults are used instead.
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if errors.Is(err, fs.ErrNotExist) {
		y.config = Default()
		return y.config, nil
	}
	if err != nil {
		return nil, err
	}

	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		CAAML   CAAMLYAML   `yaml:"caaml,omitempty"`
		Archive ArchiveYAML `yaml:"archive,omitempty"`
		Server  ServerYAML  `yaml:"server,omitempty"`
		Debug   bool        `yaml:"debug,omitempty"`
	}

	if err := yaml.Unmarshal(cfgFile, &yamlConfig); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", y.filename, err)
	}

	// Convert to our internal format
	config := &ConfigData{
		CAAML: CAAMLData{
			DefaultVersion:     yamlConfig.CAAML.DefaultVersion,
			Application:        yamlConfig.CAAML.Application,
			ApplicationVersion: yamlConfig.CAAML.ApplicationVersion,
		},
		Archive: ArchiveData{
			Driver: yamlConfig.Archive.Driver,
			DSN:    yamlConfig.Archive.DSN,
		},
		Server: ServerData{
			Cert:          yamlConfig.Server.Cert,
			Key:           yamlConfig.Server.Key,
			Port:          yamlConfig.Server.Port,
			ListenAddr:    yamlConfig.Server.ListenAddr,
			EnableMetrics: yamlConfig.Server.EnableMetrics,
			MaxBodyBytes:  yamlConfig.Server.MaxBodyBytes,
		},
		Debug: yamlConfig.Debug,
	}
	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", y.filename, err)
	}

	y.config = config
	return config, nil
}

func (y *YAMLProvider) loaded() (*ConfigData, error) {
	if y.config == nil {
		return y.LoadConfig()
	}
	return y.config, nil
}

// GetCAAMLConfig returns the CAAML writer defaults
func (y *YAMLProvider) GetCAAMLConfig() (*CAAMLData, error) {
	c, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &c.CAAML, nil
}

// GetArchiveConfig returns the archive database configuration
func (y *YAMLProvider) GetArchiveConfig() (*ArchiveData, error) {
	c, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &c.Archive, nil
}

// GetServerConfig returns the HTTP service configuration
func (y *YAMLProvider) GetServerConfig() (*ServerData, error) {
	c, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &c.Server, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with yaml tags for parsing

type CAAMLYAML struct {
	DefaultVersion     string `yaml:"default-version,omitempty"`
	Application        string `yaml:"application,omitempty"`
	ApplicationVersion string `yaml:"application-version,omitempty"`
}

type ArchiveYAML struct {
	Driver string `yaml:"driver,omitempty"`
	DSN    string `yaml:"dsn,omitempty"`
}

type ServerYAML struct {
	Cert          string `yaml:"cert,omitempty"`
	Key           string `yaml:"key,omitempty"`
	Port          int    `yaml:"port,omitempty"`
	ListenAddr    string `yaml:"listen-addr,omitempty"`
	EnableMetrics bool   `yaml:"enable-metrics,omitempty"`
	MaxBodyBytes  int64  `yaml:"max-body-bytes,omitempty"`
}
