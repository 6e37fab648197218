package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/99designs/keyring"
	"go.uber.org/zap"
)

// openKeyring is replaced in tests with an in-memory keyring.
var openKeyring = func(service string) (keyring.Keyring, error) {
	return keyring.Open(keyring.Config{
		ServiceName: service,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
		},
		LibSecretCollectionName:  "login",
		PassPrefix:               service,
		WinCredPrefix:            service,
		KeychainTrustApplication: true,
	})
}

// loadSecrets resolves the named secrets. Missing or unreadable entries are
// logged and skipped; pairs referencing them stay unresolved.
func loadSecrets(service string, names []string, logger *zap.Logger) map[string]string {
	resolved := make(map[string]string)
	if len(names) == 0 {
		logger.Debug("No secrets defined, skipping keyring load")
		return resolved
	}

	kr, err := openKeyring(service)
	if err != nil {
		logger.Warn("Failed to open keyring, secrets will not be loaded",
			zap.String("service", service), zap.Error(err))
		return resolved
	}

	for _, name := range names {
		item, err := kr.Get(name)
		switch {
		case err == nil:
			resolved[name] = string(item.Data)
			logger.Debug("Loaded secret", zap.String("name", name))
		case errors.Is(err, keyring.ErrKeyNotFound):
			logger.Warn("Secret not found in keyring, pairs using it stay unresolved",
				zap.String("name", name), zap.String("service", service))
		default:
			logger.Error("Failed to read secret from keyring", zap.String("name", name), zap.Error(err))
		}
	}
	return resolved
}

// AddSecretReference stores value in the keyring under name, records the
// reference in the config file and makes the value resolvable right away.
func (c *Config) AddSecretReference(name, value string) error {
	kr, err := openKeyring(c.keyringService)
	if err != nil {
		return fmt.Errorf("failed to open keyring for service '%s': %w", c.keyringService, err)
	}

	err = kr.Set(keyring.Item{
		Key:         name,
		Data:        []byte(value),
		Label:       fmt.Sprintf("Secret for %s used by %s", name, c.keyringService),
		Description: "Managed by " + c.keyringService,
	})
	if err != nil {
		return fmt.Errorf("failed to store secret '%s' in keyring: %w", name, err)
	}

	if c.Secrets == nil {
		c.Secrets = make(map[string]string)
	}
	c.Secrets[name] = "managed"
	if c.resolvedSecrets == nil {
		c.resolvedSecrets = make(map[string]string)
	}
	c.resolvedSecrets[name] = value
	return c.Save()
}

// RemoveSecretReference deletes the secret from the keyring and the config.
// A secret already missing from the keyring is not an error.
func (c *Config) RemoveSecretReference(name string) error {
	kr, err := openKeyring(c.keyringService)
	if err != nil {
		return fmt.Errorf("failed to open keyring for service '%s': %w", c.keyringService, err)
	}

	if err := kr.Remove(name); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete secret '%s' from keyring: %w", name, err)
	}

	delete(c.Secrets, name)
	delete(c.resolvedSecrets, name)
	return c.Save()
}

// SecretNames returns the logical names of managed secrets, sorted.
func (c *Config) SecretNames() []string {
	names := make([]string, 0, len(c.Secrets))
	for name := range c.Secrets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
