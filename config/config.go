package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/jessevdk/go-flags"
)

const (
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
	defaultKeysDirname    = "keys"
	defaultConfigFileName = "keystored.conf"
)

var (
	//   C:\Users\<username>\AppData\Local\Keystored on Windows
	//   ~/.keystored on Linux
	//   ~/Library/Application Support/Keystored on MacOS
	DefaultKeystoreDir = btcutil.AppDataDir("keystored", false)

	DefaultConfigFile = filepath.Join(DefaultKeystoreDir, defaultConfigFileName)

	defaultKeyDir = filepath.Join(DefaultKeystoreDir, defaultKeysDirname)
)

type Config struct {
	LogLevel     string `long:"loglevel" description:"Logging level for all subsystems" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" choice:"fatal"`
	LogFormat    string `long:"logformat" description:"Log encoder" choice:"console" choice:"json" choice:"logfmt"`
	KeystoreDir  string `long:"workdir" description:"The base directory that contains the keystore's data, configuration file, etc."`
	KeyDirectory string `long:"key-dir" description:"Directory to store keys in"`
}

func DefaultConfig() Config {
	return Config{
		LogLevel:     defaultLogLevel,
		LogFormat:    defaultLogFormat,
		KeystoreDir:  DefaultKeystoreDir,
		KeyDirectory: defaultKeyDir,
	}
}

// DefaultConfigWithHome is the default config rooted at a caller-chosen
// directory instead of the user's app data directory.
func DefaultConfigWithHome(home string) Config {
	return Config{
		LogLevel:     defaultLogLevel,
		LogFormat:    defaultLogFormat,
		KeystoreDir:  home,
		KeyDirectory: filepath.Join(home, defaultKeysDirname),
	}
}

// LoadConfig loads the config file at the given path on top of the
// defaults. A missing file is not an error; the defaults are returned.
func LoadConfig(configFilePath string) (*Config, error) {
	cfg := DefaultConfig()

	configFilePath = cleanAndExpandPath(configFilePath)
	if configFilePath != DefaultConfigFile && !FileExists(configFilePath) {
		return nil, fmt.Errorf("specified config file does not exist in %s", configFilePath)
	}

	fileParser := flags.NewParser(&cfg, flags.Default)
	err := flags.NewIniParser(fileParser).ParseFile(configFilePath)
	if err != nil {
		if _, ok := err.(*flags.IniError); ok {
			return nil, err
		}
		if FileExists(configFilePath) {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (cfg *Config) Validate() error {
	cfg.KeystoreDir = cleanAndExpandPath(cfg.KeystoreDir)
	cfg.KeyDirectory = cleanAndExpandPath(cfg.KeyDirectory)
	if cfg.KeyDirectory == "" {
		return fmt.Errorf("the key directory should not be empty")
	}
	return nil
}

// FileExists reports whether the named file or directory exists.
func FileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}

	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		var homeDir string
		u, err := user.Current()
		if err == nil {
			homeDir = u.HomeDir
		} else {
			homeDir = os.Getenv("HOME")
		}

		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but the variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}
