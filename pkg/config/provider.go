package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetCAAMLConfig() (*CAAMLData, error)
	GetArchiveConfig() (*ArchiveData, error)
	GetServerConfig() (*ServerData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	CAAML   CAAMLData   `json:"caaml"`
	Archive ArchiveData `json:"archive"`
	Server  ServerData  `json:"server"`
	Debug   bool        `json:"debug,omitempty"`
}

// CAAMLData holds the defaults used when writing CAAML documents
type CAAMLData struct {
	DefaultVersion     string `json:"default_version,omitempty"`
	Application        string `json:"application,omitempty"`
	ApplicationVersion string `json:"application_version,omitempty"`
}

// ArchiveData selects the database that stores profiles. Driver is
// "sqlite" or "postgres".
type ArchiveData struct {
	Driver string `json:"driver,omitempty"`
	DSN    string `json:"dsn,omitempty"`
}

// ServerData holds the HTTP service settings
type ServerData struct {
	Cert          string `json:"cert,omitempty"`
	Key           string `json:"key,omitempty"`
	Port          int    `json:"port,omitempty"`
	ListenAddr    string `json:"listen_addr,omitempty"`
	EnableMetrics bool   `json:"enable_metrics,omitempty"`
	MaxBodyBytes  int64  `json:"max_body_bytes,omitempty"`
}

// Defaults used for any setting left empty
const (
	DefaultCAAMLVersion  = "6.0.5"
	DefaultArchiveDriver = "sqlite"
	DefaultArchiveDSN    = "snowprofile.db"
	DefaultListenAddr    = "0.0.0.0"
	DefaultPort          = 8080
	DefaultMaxBodyBytes  = 16 << 20
)

// Default returns a configuration with every default applied.
func Default() *ConfigData {
	c := &ConfigData{}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills empty settings with their defaults.
func (c *ConfigData) ApplyDefaults() {
	if c.CAAML.DefaultVersion == "" {
		c.CAAML.DefaultVersion = DefaultCAAMLVersion
	}
	if c.Archive.Driver == "" {
		c.Archive.Driver = DefaultArchiveDriver
	}
	if c.Archive.DSN == "" && c.Archive.Driver == DefaultArchiveDriver {
		c.Archive.DSN = DefaultArchiveDSN
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
}
