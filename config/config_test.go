package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewConfig 默认配置有效
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, 500*time.Millisecond, cfg.Listener.PollInterval.Duration())
	assert.Equal(t, 16<<10, cfg.Listener.MaxMessageSize)
	assert.Equal(t, uint(16), cfg.Island.MaxFailures)
	assert.Equal(t, 1, cfg.Sender.Parallelism)
}

func TestConfig_ValidateCollectsAllSections(t *testing.T) {
	cfg := NewConfig()
	cfg.Island.Port = 70000
	cfg.Listener.PollInterval = 0
	cfg.Sender.Parallelism = 0

	err := cfg.Validate()
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 3)
	assert.Equal(t, "island", verrs[0].Section)
	assert.Equal(t, "listener", verrs[1].Section)
	assert.Equal(t, "sender", verrs[2].Section)
}

func TestIslandConfig_Neighbors(t *testing.T) {
	tests := []struct {
		neighbor string
		wantErr  bool
	}{
		{"127.0.0.1:6001", false},
		{"localhost:6001", false},
		{"[::1]:6001", false},
		{"no-port", true},
		{":6001", true},
		{"host:0", true},
		{"host:abc", true},
		{"host:65536", true},
	}

	for _, tt := range tests {
		t.Run(tt.neighbor, func(t *testing.T) {
			cfg := DefaultIslandConfig()
			cfg.Neighbors = []string{tt.neighbor}
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestSplitHostPort(t *testing.T) {
	host, port, err := SplitHostPort("b-host:6001")
	require.NoError(t, err)
	assert.Equal(t, "b-host", host)
	assert.Equal(t, 6001, port)
}

func TestListenerConfig_Validate(t *testing.T) {
	cfg := DefaultListenerConfig()
	cfg.MaxMessagesPerSecond = 10
	cfg.Burst = 0
	assert.Error(t, cfg.Validate())

	cfg.Burst = 5
	assert.NoError(t, cfg.Validate())

	cfg.MaxMessageSize = 0
	assert.Error(t, cfg.Validate())
}

func TestResolverConfig_Validate(t *testing.T) {
	cfg := DefaultResolverConfig()
	cfg.Server = "8.8.8.8"
	assert.Error(t, cfg.Validate())

	cfg.Server = "8.8.8.8:53"
	assert.NoError(t, cfg.Validate())
}

func TestFromJSON(t *testing.T) {
	data := []byte(`{
		"island": {"port": 6000, "neighbors": ["127.0.0.1:6001"], "max_failures": 3},
		"listener": {"poll_interval": "100ms"},
		"sender": {"dial_timeout": 2000000000}
	}`)

	cfg, err := FromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, 6000, cfg.Island.Port)
	assert.Equal(t, []string{"127.0.0.1:6001"}, cfg.Island.Neighbors)
	assert.Equal(t, uint(3), cfg.Island.MaxFailures)
	assert.Equal(t, 100*time.Millisecond, cfg.Listener.PollInterval.Duration())
	assert.Equal(t, 2*time.Second, cfg.Sender.DialTimeout.Duration())

	// 未出现的字段保留默认值
	assert.Equal(t, 1024, cfg.Island.MaxMailboxLength)
	assert.Equal(t, 5*time.Second, cfg.Sender.WriteTimeout.Duration())
}

func TestFromJSON_BadDuration(t *testing.T) {
	_, err := FromJSON([]byte(`{"listener": {"poll_interval": "soon"}}`))
	assert.Error(t, err)
}

func TestToJSON_RoundTrip(t *testing.T) {
	cfg := NewConfig()
	cfg.Island.Neighbors = []string{"10.0.0.1:7000"}

	data, err := cfg.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"poll_interval": "500ms"`)

	back, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "island.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"island": {"port": 6001}}`), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 6001, cfg.Island.Port)

	require.NoError(t, os.WriteFile(path, []byte(`{"island": {"port": -1}}`), 0o600))
	_, err = LoadFile(path)
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestClone(t *testing.T) {
	cfg := NewConfig()
	cfg.Island.Neighbors = []string{"a:1"}

	dup := cfg.Clone()
	dup.Island.Neighbors[0] = "b:2"
	assert.Equal(t, "a:1", cfg.Island.Neighbors[0])
}
