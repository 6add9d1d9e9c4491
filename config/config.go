package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var (
	config  *Config
	path    string
	pathSet bool
	once    sync.Once
	mu      sync.Mutex
	v       *viper.Viper
)

// Server HTTP listener settings
type Server struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
}

// Addr returns host:port.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Config represents the configuration implementation.
type Config struct {
	AppName   string
	RunMode   string
	Server    *Server
	Logger    *Logger
	Data      *Data
	Loader    *Loader
	Analytics *Analytics
	Logo      *Logo
	Tracing   *Tracing
	Viper     *viper.Viper
}

func init() {
	flag.StringVar(&path, "conf", "", "e.g: bin ./config.yaml")
	v = newViper()
}

func newViper() *viper.Viper {
	nv := viper.New()
	nv.SetEnvPrefix("unicourse")
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	nv.AutomaticEnv()
	return nv
}

// Init initializes and loads the configuration.
func Init() (cfg *Config, err error) {
	once.Do(func() {
		cfg, err = loadConfiguration()
	})
	if err == nil && cfg == nil {
		cfg = config
	}
	return cfg, err
}

// GetConfig returns the configuration.
func GetConfig() (*Config, error) {
	mu.Lock()
	cur := config
	mu.Unlock()
	if cur != nil {
		return cur, nil
	}
	cfg, err := Init()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}
	return cfg, nil
}

// SetPath overrides the -conf flag, used by the CLI. Once set, the
// standard flag set is left unparsed.
func SetPath(p string) {
	path = p
	pathSet = true
}

func loadConfiguration() (*Config, error) {
	if !pathSet && !flag.Parsed() {
		flag.Parse()
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	mu.Lock()
	config = cfg
	mu.Unlock()
	return cfg, nil
}

// LoadConfig loads the configuration from the file.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		ex, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to get executable path: %w", err)
		}
		v.SetConfigName("config")
		v.AddConfigPath("/etc/unicourse")
		v.AddConfigPath("$HOME/.unicourse")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Dir(ex))
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return FromViper(v), nil
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	appName := getStringOrDefault(v, "app_name", "unicourse")
	runMode := getStringOrDefault(v, "run_mode", "release")
	return &Config{
		AppName: appName,
		RunMode: runMode,
		Server: &Server{
			Host: getStringOrDefault(v, "server.host", "0.0.0.0"),
			Port: getIntOrDefault(v, "server.port", 8080),
		},
		Logger:    getLoggerConfig(v),
		Data:      getDataConfig(v),
		Loader:    getLoaderConfig(v),
		Analytics: getAnalyticsConfig(v),
		Logo:      getLogoConfig(v),
		Tracing:   getTracingConfig(v, appName, runMode),
		Viper:     v,
	}
}

// Reload reloads the configuration from the file.
func Reload() error {
	mu.Lock()
	defer mu.Unlock()

	newConfig, err := LoadConfig(path)
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}

	config = newConfig
	return nil
}

// Watch watches the configuration file and reloads it when it changes.
func Watch(callback func(*Config)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		if err := Reload(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reloading config: %v\n", err)
			return
		}
		mu.Lock()
		cur := config
		mu.Unlock()
		callback(cur)
	})
	v.WatchConfig()
}
