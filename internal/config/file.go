// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// StructuredFileConfig mirrors [StructuredConfig] for file-based sources.
// Field names follow snake_case in both JSON and YAML.
type StructuredFileConfig struct {
	App      AppFileConfig      `json:"app" yaml:"app"`
	Storage  StorageFileConfig  `json:"storage" yaml:"storage"`
	Server   ServerFileConfig   `json:"server" yaml:"server"`
	Calendar CalendarFileConfig `json:"calendar" yaml:"calendar"`
}

type AppFileConfig struct {
	TokenSignKey  string   `json:"token_sign_key" yaml:"token_sign_key"`
	TokenIssuer   string   `json:"token_issuer" yaml:"token_issuer"`
	TokenDuration Duration `json:"token_duration" yaml:"token_duration"`
	SecureCookies bool     `json:"secure_cookies" yaml:"secure_cookies"`
	Version       string   `json:"version" yaml:"version"`
}

type StorageFileConfig struct {
	DB    DBFileConfig    `json:"db" yaml:"db"`
	Redis RedisFileConfig `json:"redis" yaml:"redis"`
}

type DBFileConfig struct {
	Driver string `json:"driver" yaml:"driver"`
	DSN    string `json:"dsn" yaml:"dsn"`
}

type RedisFileConfig struct {
	Address  string `json:"address" yaml:"address"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

type ServerFileConfig struct {
	HTTPAddress    string   `json:"http_address" yaml:"http_address"`
	GRPCAddress    string   `json:"grpc_address" yaml:"grpc_address"`
	RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout"`
}

type CalendarFileConfig struct {
	ClientID        string   `json:"client_id" yaml:"client_id"`
	ClientSecret    string   `json:"client_secret" yaml:"client_secret"`
	RedirectURL     string   `json:"redirect_url" yaml:"redirect_url"`
	EncryptionKey   string   `json:"encryption_key" yaml:"encryption_key"`
	SettingsURL     string   `json:"settings_url" yaml:"settings_url"`
	ProviderTimeout Duration `json:"provider_timeout" yaml:"provider_timeout"`
	RefreshLockTTL  Duration `json:"refresh_lock_ttl" yaml:"refresh_lock_ttl"`
}

// Duration is a time.Duration that decodes from strings like "1h30m" in
// both JSON and YAML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration should be a string, got %s", string(b))
	}
	return d.set(s)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration should be a string: %w", err)
	}
	return d.set(s)
}

func (d *Duration) set(s string) error {
	if s == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// parseFile reads the config file at path and decodes it by extension:
// .json with encoding/json, .yaml and .yml with yaml.v3.
func parseFile(path string) (*StructuredConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var fileCfg StructuredFileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &fileCfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fileCfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedConfigFile, path)
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return fileCfg.toStructuredConfig(), nil
}

func (f StructuredFileConfig) toStructuredConfig() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			TokenSignKey:  f.App.TokenSignKey,
			TokenIssuer:   f.App.TokenIssuer,
			TokenDuration: f.App.TokenDuration.Duration,
			SecureCookies: f.App.SecureCookies,
			Version:       f.App.Version,
		},
		Storage: Storage{
			DB: DB{
				Driver: f.Storage.DB.Driver,
				DSN:    f.Storage.DB.DSN,
			},
			Redis: Redis{
				Address:  f.Storage.Redis.Address,
				Password: f.Storage.Redis.Password,
				DB:       f.Storage.Redis.DB,
			},
		},
		Server: Server{
			HTTPAddress:    f.Server.HTTPAddress,
			GRPCAddress:    f.Server.GRPCAddress,
			RequestTimeout: f.Server.RequestTimeout.Duration,
		},
		Calendar: Calendar{
			ClientID:        f.Calendar.ClientID,
			ClientSecret:    f.Calendar.ClientSecret,
			RedirectURL:     f.Calendar.RedirectURL,
			EncryptionKey:   f.Calendar.EncryptionKey,
			SettingsURL:     f.Calendar.SettingsURL,
			ProviderTimeout: f.Calendar.ProviderTimeout.Duration,
			RefreshLockTTL:  f.Calendar.RefreshLockTTL.Duration,
		},
	}
}
