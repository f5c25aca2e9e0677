// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

const (
	flagAddress          = "address"
	flagGRPCAddress      = "grpc-address"
	flagDatabaseDSN      = "database-dsn"
	flagDatabaseDriver   = "database-driver"
	flagConfig           = "config"
	flagTokenSignKey     = "token-sign-key"
	flagTokenIssuer      = "token-issuer"
	flagTokenDuration    = "token-duration"
	flagRequestTimeout   = "request-timeout"
	flagSecureCookies    = "secure-cookies"
	flagRedisAddress     = "redis-address"
	flagCalendarClientID = "calendar-client-id"
	flagCalendarRedirect = "calendar-redirect-url"
	flagCalendarSettings = "calendar-settings-url"
	flagProviderTimeout  = "calendar-provider-timeout"
)

// NetAddress holds structured network address data for host and port.
// It implements the pflag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// RegisterFlags declares all configuration flags on fs.
//
// Flags:
//
//	-a/--address                server address in format [host]:[port]
//	--grpc-address              grpc health server address in format [host]:[port]
//	-d/--database-dsn           database DSN
//	--database-driver           pgx or sqlite3
//	-c/--config                 JSON or YAML file path with configs
//	--token-sign-key            session token signing key
//	--token-issuer              session token issuer name
//	--token-duration            session token duration (e.g., "1h", "30m")
//	--request-timeout           request timeout (e.g., "30s", "1m")
//	--secure-cookies            mark cookies Secure
//	--redis-address             redis address for refresh locks
//	--calendar-client-id        OAuth client ID
//	--calendar-redirect-url     OAuth redirect URL
//	--calendar-settings-url     page the OAuth callback redirects to
//	--calendar-provider-timeout timeout of provider token calls
//
// Secrets other than the token sign key (client secret, encryption key) are
// only accepted through the environment or the config file.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.VarP(&NetAddress{}, flagAddress, "a", "Net address host:port")
	fs.Var(&NetAddress{}, flagGRPCAddress, "Net grpc server address host:port")
	fs.StringP(flagDatabaseDSN, "d", "", "Database DSN")
	fs.String(flagDatabaseDriver, "", "Database driver (pgx or sqlite3)")
	fs.StringP(flagConfig, "c", "", "JSON or YAML config file path")
	fs.String(flagTokenSignKey, "", "Token signing key")
	fs.String(flagTokenIssuer, "", "Token issuer")
	fs.Duration(flagTokenDuration, 0, "Token duration (e.g., 1h, 30m)")
	fs.Duration(flagRequestTimeout, 0, "Request timeout (e.g., 30s, 1m)")
	fs.Bool(flagSecureCookies, false, "Mark session and state cookies as Secure")
	fs.String(flagRedisAddress, "", "Redis address host:port for refresh locks")
	fs.String(flagCalendarClientID, "", "Calendar OAuth client ID")
	fs.String(flagCalendarRedirect, "", "Calendar OAuth redirect URL")
	fs.String(flagCalendarSettings, "", "Page the OAuth callback redirects to")
	fs.Duration(flagProviderTimeout, 0, "Calendar provider call timeout (e.g., 10s)")
}

// parseFlags reads the values of the flags declared by [RegisterFlags].
// Flags that were never registered on fs are reported as an error.
func parseFlags(fs *pflag.FlagSet) (*StructuredConfig, error) {
	var errs []error
	str := func(name string) string {
		f := fs.Lookup(name)
		if f == nil {
			errs = append(errs, fmt.Errorf("flag %q is not registered", name))
			return ""
		}
		return f.Value.String()
	}

	tokenDuration, err := fs.GetDuration(flagTokenDuration)
	errs = append(errs, err)
	requestTimeout, err := fs.GetDuration(flagRequestTimeout)
	errs = append(errs, err)
	providerTimeout, err := fs.GetDuration(flagProviderTimeout)
	errs = append(errs, err)
	secureCookies, err := fs.GetBool(flagSecureCookies)
	errs = append(errs, err)

	cfg := &StructuredConfig{
		App: App{
			TokenSignKey:  str(flagTokenSignKey),
			TokenIssuer:   str(flagTokenIssuer),
			TokenDuration: tokenDuration,
			SecureCookies: secureCookies,
		},
		Storage: Storage{
			DB: DB{
				Driver: str(flagDatabaseDriver),
				DSN:    str(flagDatabaseDSN),
			},
			Redis: Redis{
				Address: str(flagRedisAddress),
			},
		},
		Server: Server{
			HTTPAddress:    str(flagAddress),
			GRPCAddress:    str(flagGRPCAddress),
			RequestTimeout: requestTimeout,
		},
		Calendar: Calendar{
			ClientID:        str(flagCalendarClientID),
			RedirectURL:     str(flagCalendarRedirect),
			SettingsURL:     str(flagCalendarSettings),
			ProviderTimeout: providerTimeout,
		},
		FilePath: str(flagConfig),
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("error reading flags: %w", err)
	}

	return cfg, nil
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// An empty host means all interfaces. Otherwise the host must be "localhost"
// or a valid IP address.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1-65535")
	}

	if host != "" && host != "localhost" {
		ip := net.ParseIP(host)
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}

// Type implements pflag.Value.
func (a *NetAddress) Type() string {
	return "host:port"
}
