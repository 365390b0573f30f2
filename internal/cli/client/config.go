package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cloo-solutions/storelens/internal/domain"
)

const (
	envConfigDir   = "STORELENS_CONFIG_DIR"
	configFileName = "config.json"
)

// GlobalConfig is what `storelens auth login` persists.
type GlobalConfig struct {
	APIKey string `json:"api_key"`
	APIURL string `json:"api_url"`
}

// configDirFunc is swapped out by tests.
var configDirFunc = defaultConfigDir

// defaultConfigDir honours STORELENS_CONFIG_DIR, else <user config dir>/storelens.
func defaultConfigDir() (string, error) {
	if dir := os.Getenv(envConfigDir); dir != "" {
		return filepath.Abs(dir)
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "storelens"), nil
}

func GetConfigDir() (string, error) {
	return configDirFunc()
}

func GetConfigPath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// LoadGlobalConfig returns nil, nil when nobody has logged in yet.
func LoadGlobalConfig() (*GlobalConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config GlobalConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	return &config, nil
}

// SaveGlobalConfig replaces config.json atomically. The file holds an API key,
// so it is created 0600 inside a 0700 directory.
func SaveGlobalConfig(config *GlobalConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(configDir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp.Name(), configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DeleteGlobalConfig is a no-op when there is no config file.
func DeleteGlobalConfig() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.Remove(configPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// IsValidAPIKey checks the slk_ + 64 hex format issued by storelensd.
func IsValidAPIKey(key string) bool {
	return domain.IsValidAPIToken(key)
}

// CredentialSource records where a credential was found.
type CredentialSource string

const (
	SourceFlag         CredentialSource = "flag"
	SourceEnv          CredentialSource = "env"
	SourceGlobalConfig CredentialSource = "global_config"
	SourceDefault      CredentialSource = "default"
	SourceNone         CredentialSource = "none"
)

// Credentials are the resolved API key and URL. Each is looked up on its own:
// flag, then environment, then the global config. The URL falls back to
// defaultAPIURL; a missing key leaves KeySource at SourceNone.
type Credentials struct {
	APIKey    string
	APIURL    string
	KeySource CredentialSource
	URLSource CredentialSource
}

func (c Credentials) Authenticated() bool {
	return c.KeySource != SourceNone
}

func ResolveCredentials(flagAPIKey, flagAPIURL string) (Credentials, error) {
	var global GlobalConfig
	if config, err := LoadGlobalConfig(); err != nil {
		return Credentials{}, err
	} else if config != nil {
		global = *config
	}

	creds := Credentials{}
	creds.APIKey, creds.KeySource = firstSet(flagAPIKey, os.Getenv(envAPIKey), global.APIKey)
	creds.APIURL, creds.URLSource = firstSet(flagAPIURL, os.Getenv(envAPIURL), global.APIURL)
	if creds.URLSource == SourceNone {
		creds.APIURL, creds.URLSource = defaultAPIURL, SourceDefault
	}
	return creds, nil
}

func firstSet(flag, env, global string) (string, CredentialSource) {
	switch {
	case flag != "":
		return flag, SourceFlag
	case env != "":
		return env, SourceEnv
	case global != "":
		return global, SourceGlobalConfig
	}
	return "", SourceNone
}
