package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TanaroSch/clipboard-anonymizer/internal/replace"
)

func useArrayKeyring(t *testing.T, items ...keyring.Item) *keyring.ArrayKeyring {
	t.Helper()
	kr := keyring.NewArrayKeyring(items)
	orig := openKeyring
	openKeyring = func(string) (keyring.Keyring, error) { return kr, nil }
	t.Cleanup(func() { openKeyring = orig })
	return kr
}

func TestLoad_CreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	_, statErr := os.Stat(path)
	require.NoError(t, statErr)
	assert.Equal(t, replace.Bidirectional, cfg.ReplacementMode())
	assert.Equal(t, DefaultMonitorConfig(), cfg.Monitor)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "pairs.txt"), cfg.PairsPath())
	assert.Equal(t, path, cfg.GetConfigPath())
}

func TestLoad_PartialJSONKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mode":"ltr","monitor":{"debounce_ms":80}}`), 0600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, replace.LeftToRight, cfg.ReplacementMode())
	assert.Equal(t, 80, cfg.Monitor.DebounceMs)
	assert.Equal(t, 30, cfg.Monitor.ActiveIntervalMs)
	assert.Equal(t, 100, cfg.WriteBack.SettleDelayMs)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "mode: right-to-left\npairs_file: /etc/anon/pairs.txt\nwrite_back:\n  settle_delay_ms: 10\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, replace.RightToLeft, cfg.ReplacementMode())
	assert.Equal(t, "/etc/anon/pairs.txt", cfg.PairsPath())
	assert.Equal(t, 10, cfg.WriteBack.SettleDelayMs)
	assert.Equal(t, 200, cfg.WriteBack.PropagateDelayMs)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"mode.json":     `{"mode":"diagonal"}`,
		"interval.json": `{"monitor":{"active_interval_ms":0}}`,
		"windows.json":  `{"monitor":{"active_window_ms":9000,"idle_window_ms":100}}`,
		"broken.json":   `{"mode":`,
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0600))
		_, err := Load(path, nil)
		assert.Error(t, err, name)
	}

	path := filepath.Join(dir, "mode.json")
	_, err := Load(path, nil)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	cfg, err := Load(path, nil)
	require.NoError(t, err)

	cfg.Mode = replace.LeftToRight.String()
	cfg.Monitor.LockedCeiling = 9
	require.NoError(t, cfg.Save())

	again, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, replace.LeftToRight, again.ReplacementMode())
	assert.Equal(t, 9, again.Monitor.LockedCeiling)
}

func TestSecrets(t *testing.T) {
	kr := useArrayKeyring(t, keyring.Item{Key: "client", Data: []byte("ACME Corp")})
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"secrets":{"client":"managed","gone":"managed"}}`), 0600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"client": "ACME Corp"}, cfg.GetResolvedSecrets())
	assert.Equal(t, []string{"client", "gone"}, cfg.SecretNames())

	require.NoError(t, cfg.AddSecretReference("server", "db-01.internal"))
	item, err := kr.Get("server")
	require.NoError(t, err)
	assert.Equal(t, "db-01.internal", string(item.Data))
	assert.Equal(t, "db-01.internal", cfg.GetResolvedSecrets()["server"])

	require.NoError(t, cfg.RemoveSecretReference("client"))
	assert.NotContains(t, cfg.GetResolvedSecrets(), "client")
	require.NoError(t, cfg.RemoveSecretReference("gone"))

	reloaded, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"server"}, reloaded.SecretNames())
	assert.Equal(t, "db-01.internal", reloaded.GetResolvedSecrets()["server"])
}
