package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alexandre-normand/bestbot/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithDefault(t *testing.T) {
	v := config.NewViperWithDefaults()

	assert.Equal(t, false, v.GetBool(config.DebugKey), "%s should be %t", config.DebugKey, false)
	assert.Equal(t, "Local", v.GetString(config.TimeLocationKey), "%s should be %s", config.TimeLocationKey, "Local")
	assert.Equal(t, 512, v.GetInt(config.UserInfoCacheSizeKey), "%s should be %d", config.UserInfoCacheSizeKey, 512)
	assert.Equal(t, 2000, v.GetInt(config.MaxMessageLengthKey), "%s should be %d", config.MaxMessageLengthKey, 2000)
	assert.Equal(t, "", v.GetString(config.CommandPrefixKey), "%s should be empty", config.CommandPrefixKey)
}

func TestLayeredConfigWithDefaultsAndOverrides(t *testing.T) {
	v := viper.New()
	v.Set(config.MaxMessageLengthKey, 4000)
	v.Set(config.DebugKey, true)

	v = config.LayerConfigWithDefaults(v)

	assert.Equal(t, 4000, v.GetInt(config.MaxMessageLengthKey))
	assert.Equal(t, true, v.GetBool(config.DebugKey))
	assert.Equal(t, 512, v.GetInt(config.UserInfoCacheSizeKey))
}

func TestTokenFromEnvironment(t *testing.T) {
	t.Setenv("BESTBOT_TOKEN", "xoxb-from-env")

	v := config.NewViperWithDefaults()

	assert.Equal(t, "xoxb-from-env", v.GetString(config.TokenKey))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("BESTBOT_DOTENV_CHECK=chickadee\n"), 0600))
	t.Cleanup(func() { os.Unsetenv("BESTBOT_DOTENV_CHECK") })

	err := config.LoadDotEnv(envFile)

	require.NoError(t, err)
	assert.Equal(t, "chickadee", os.Getenv("BESTBOT_DOTENV_CHECK"))
}

func TestLoadDotEnvIgnoresMissingFile(t *testing.T) {
	err := config.LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"))

	assert.NoError(t, err)
}

func TestReadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bestbot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token: xoxb-file\nplugins:\n  msgstats:\n    reportChannelID: C123\n"), 0600))

	v := config.NewViperWithDefaults()
	err := config.ReadConfigFile(v, path)

	require.NoError(t, err)
	assert.Equal(t, "xoxb-file", v.GetString(config.TokenKey))

	pc, err := config.GetPluginConfig(v, "msgstats")
	require.NoError(t, err)
	assert.Equal(t, "C123", pc.GetString("reportChannelID"))
}

func TestReadConfigFileWithEmptyPath(t *testing.T) {
	assert.NoError(t, config.ReadConfigFile(viper.New(), ""))
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name         string
		overrides    map[string]interface{}
		errorMessage string
	}{
		{"valid", map[string]interface{}{config.TokenKey: "xoxb-1"}, ""},
		{"missingToken", map[string]interface{}{}, "Missing [token]"},
		{"zeroMaxLength", map[string]interface{}{config.TokenKey: "xoxb-1", config.MaxMessageLengthKey: 0}, "Invalid [maxMessageLength]"},
		{"negativeCacheSize", map[string]interface{}{config.TokenKey: "xoxb-1", config.UserInfoCacheSizeKey: -1}, "Invalid [userInfoCacheSize]"},
		{"invalidTimeLocation", map[string]interface{}{config.TokenKey: "xoxb-1", config.TimeLocationKey: "invalid"}, "invalid"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("BESTBOT_TOKEN", "")
			v := config.NewViperWithDefaults()
			for key, val := range tc.overrides {
				v.Set(key, val)
			}

			err := config.Validate(v)

			if tc.errorMessage == "" {
				assert.NoError(t, err)
			} else if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tc.errorMessage)
			}
		})
	}
}

func TestGetTimeLocationWithTimezoneId(t *testing.T) {
	v := viper.New()
	v.Set(config.TimeLocationKey, "America/Los_Angeles")

	timeLoc, err := config.GetTimeLocation(v)

	assert.Nil(t, err)
	if assert.NotNil(t, timeLoc) {
		assert.Equal(t, "America/Los_Angeles", timeLoc.String())
	}
}

func TestGetTimeLocationWithInvalidValue(t *testing.T) {
	v := viper.New()
	v.Set(config.TimeLocationKey, "invalid")

	_, err := config.GetTimeLocation(v)

	if assert.NotNil(t, err) {
		assert.Contains(t, err.Error(), "invalid")
	}
}

func TestGetPluginConfig(t *testing.T) {
	v := viper.New()
	v.Set(config.PluginsKey, map[string]interface{}{
		"msgstats": map[string]interface{}{
			"chunkThreshold": 1200,
		},
	})

	pc, err := config.GetPluginConfig(v, "msgstats")

	assert.Nil(t, err)
	if assert.NotNil(t, pc) {
		assert.Equal(t, 1200, pc.GetInt("chunkThreshold"))
	}
}

func TestGetPluginConfigWithMissingConfig(t *testing.T) {
	v := viper.New()

	_, err := config.GetPluginConfig(v, "pluginName")

	if assert.NotNil(t, err) {
		assert.Contains(t, err.Error(), "Missing plugin configuration for plugin [pluginName]")
	}
}

func TestGetPluginConfigOrEmpty(t *testing.T) {
	pc := config.GetPluginConfigOrEmpty(viper.New(), "msgstats")

	if assert.NotNil(t, pc) {
		assert.False(t, pc.IsSet("reportChannelID"))
	}
}

func TestPluginConfigFromEnvironment(t *testing.T) {
	t.Setenv("BESTBOT_PLUGINS_MSGSTATS_REPORTCHANNELID", "C123")

	pc := config.GetPluginConfigOrEmpty(config.NewViperWithDefaults(), "msgstats")

	assert.Equal(t, "C123", pc.GetString("reportChannelID"))
}

func TestPluginConfigEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("BESTBOT_PLUGINS_MSGSTATS_CHUNKTHRESHOLD", "600")

	v := config.NewViperWithDefaults()
	v.Set(config.PluginsKey, map[string]interface{}{
		"msgstats": map[string]interface{}{
			"chunkThreshold": 1200,
			"reportWeekday":  "Friday",
		},
	})

	pc, err := config.GetPluginConfig(v, "msgstats")
	require.NoError(t, err)

	assert.Equal(t, 600, pc.GetInt("chunkThreshold"))
	assert.Equal(t, "Friday", pc.GetString("reportWeekday"))
}
