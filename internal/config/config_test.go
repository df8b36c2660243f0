package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.True(t, c.View.HideButtonDuringFocus)
	assert.Equal(t, "jpg", c.Output.Format)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	c := Default()
	c.View.Width = 640
	c.View.Height = 480
	c.Output.Ratios = []string{"square", "16:9"}
	require.NoError(t, c.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"view":{"width":300,"height":200}}`), 0o644))

	c, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 300, c.View.Width)
	assert.Equal(t, 90, c.Output.Quality)
}

func TestLoadDescribeTimeout(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Duration
	}{
		{"string", `"90s"`, 90 * time.Second},
		{"minutes", `"5m"`, 5 * time.Minute},
		{"nanoseconds", `1000000000`, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			require.NoError(t, os.WriteFile(path, []byte(`{"describe":{"timeout":`+tt.raw+`}}`), 0o644))

			c, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Describe.Timeout.Duration)
		})
	}

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"describe":{"timeout":"soon"}}`), 0o644))
	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestSaveWritesReadableTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, Default().SaveToFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"timeout": "5m0s"`)
}

func TestLoadErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.View.Width = 0 }},
		{"negative button", func(c *Config) { c.View.ButtonSize = -1 }},
		{"bad format", func(c *Config) { c.Output.Format = "gif" }},
		{"bad quality", func(c *Config) { c.Output.Quality = 101 }},
		{"empty dir", func(c *Config) { c.Output.Dir = "" }},
		{"describe without model", func(c *Config) {
			c.Describe.Enabled = true
			c.Describe.Model = ""
		}},
		{"negative timeout", func(c *Config) {
			c.Describe.Enabled = true
			c.Describe.Timeout.Duration = -time.Second
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("CAMERAVIEW_VIEW_WIDTH", "720")
	t.Setenv("CAMERAVIEW_HIDE_BUTTON_DURING_FOCUS", "false")
	t.Setenv("CAMERAVIEW_SOURCES", "a.jpg, b.jpg,")
	t.Setenv("CAMERAVIEW_DESCRIBE_TIMEOUT", "30s")

	c := Default()
	require.NoError(t, c.ApplyEnv(filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, 720, c.View.Width)
	assert.False(t, c.View.HideButtonDuringFocus)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, c.Camera.Sources)
	assert.Equal(t, 30*time.Second, c.Describe.Timeout.Duration)
}

func TestApplyEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("CAMERAVIEW_OUTPUT_FORMAT=webp\n"), 0o644))
	t.Setenv("CAMERAVIEW_OUTPUT_FORMAT", "")
	t.Cleanup(func() { os.Unsetenv("CAMERAVIEW_OUTPUT_FORMAT") })
	os.Unsetenv("CAMERAVIEW_OUTPUT_FORMAT")

	c := Default()
	require.NoError(t, c.ApplyEnv(envFile))
	assert.Equal(t, "webp", c.Output.Format)
}

func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv("CAMERAVIEW_VIEW_HEIGHT", "tall")

	c := Default()
	err := c.ApplyEnv()
	assert.ErrorContains(t, err, "CAMERAVIEW_VIEW_HEIGHT")
	assert.Equal(t, 1080, c.View.Height)
}
