// Package config provides the configuration keys, defaults and helpers used to set up a bestbot instance.
package config

import (
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Configuration keys
const (
	TokenKey             = "token"             // The slack bot token, string value. Required
	DebugKey             = "debug"             // Debug mode, boolean value. Defaults to false
	TimeLocationKey      = "timeLocation"      // The time.Location used by the scheduler. Defaults to Local
	UserInfoCacheSizeKey = "userInfoCacheSize" // The number of entries kept in the user info cache, int value. 0 disables caching
	CommandPrefixKey     = "commandPrefix"     // Optional prefix (i.e. "!") marking a message as a command without mentioning the bot
	MaxMessageLengthKey  = "maxMessageLength"  // The maximum length (in characters) of a message sent to the platform
	PluginsKey           = "plugins"           // The root of all plugin configurations
)

// EnvPrefix is the prefix of environment variables overriding configuration keys (i.e. BESTBOT_TOKEN)
const EnvPrefix = "bestbot"

const (
	defaultTimeLocation      = "Local"
	defaultUserInfoCacheSize = 512
	defaultMaxMessageLength  = 2000
)

// PluginConfig is the configuration sub-tree of a single plugin
type PluginConfig = viper.Viper

// NewViperWithDefaults creates a new viper instance with all default values set
func NewViperWithDefaults() (v *viper.Viper) {
	v = viper.New()

	return LayerConfigWithDefaults(v)
}

// LayerConfigWithDefaults sets the defaults of all keys not already set on v. It also sets up
// environment variable overrides
func LayerConfigWithDefaults(v *viper.Viper) *viper.Viper {
	v.SetDefault(DebugKey, false)
	v.SetDefault(TimeLocationKey, defaultTimeLocation)
	v.SetDefault(UserInfoCacheSizeKey, defaultUserInfoCacheSize)
	v.SetDefault(CommandPrefixKey, "")
	v.SetDefault(MaxMessageLengthKey, defaultMaxMessageLength)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// LoadDotEnv loads environment variables from the given .env files (or ./.env when none given). Missing
// files are ignored since the token can also come from the environment or the config file
func LoadDotEnv(paths ...string) (err error) {
	err = godotenv.Load(paths...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "failed to load .env file")
	}

	return nil
}

// ReadConfigFile layers the content of the configuration file at path (if not empty) on v
func ReadConfigFile(v *viper.Viper, path string) (err error) {
	if path == "" {
		return nil
	}

	v.SetConfigFile(path)
	if err = v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read configuration file [%s]", path)
	}

	return nil
}

// Validate returns an error if the configuration is missing required values or has invalid ones
func Validate(v *viper.Viper) (err error) {
	if v.GetString(TokenKey) == "" {
		return fmt.Errorf("Missing [%s] configuration key (or %s_TOKEN environment variable)", TokenKey, strings.ToUpper(EnvPrefix))
	}

	if v.GetInt(MaxMessageLengthKey) <= 0 {
		return fmt.Errorf("Invalid [%s] value [%d], must be greater than 0", MaxMessageLengthKey, v.GetInt(MaxMessageLengthKey))
	}

	if v.GetInt(UserInfoCacheSizeKey) < 0 {
		return fmt.Errorf("Invalid [%s] value [%d], must be 0 (disabled) or greater", UserInfoCacheSizeKey, v.GetInt(UserInfoCacheSizeKey))
	}

	if _, err = GetTimeLocation(v); err != nil {
		return err
	}

	return nil
}

// GetTimeLocation returns the time.Location set by the TimeLocationKey
func GetTimeLocation(v *viper.Viper) (timeLoc *time.Location, err error) {
	timeLocationName := v.GetString(TimeLocationKey)
	timeLoc, err = time.LoadLocation(timeLocationName)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to load time location [%s]", timeLocationName)
	}

	return timeLoc, nil
}

// GetPluginConfig returns the viper sub-tree for the plugin configuration. It returns an error
// if the plugin has no configuration. Keys of the sub-tree can be overridden by environment
// variables (i.e. BESTBOT_PLUGINS_MSGSTATS_REPORTCHANNELID)
func GetPluginConfig(v *viper.Viper, name string) (pluginConfig *PluginConfig, err error) {
	pluginConfig = v.Sub(PluginsKey + "." + name)

	if pluginConfig == nil {
		return nil, fmt.Errorf("Missing plugin configuration for plugin [%s]", name)
	}

	return withPluginEnv(pluginConfig, name), nil
}

// GetPluginConfigOrEmpty returns the plugin configuration if present or an empty one otherwise. Useful
// for plugins where all configuration values are optional
func GetPluginConfigOrEmpty(v *viper.Viper, name string) (pluginConfig *PluginConfig) {
	pluginConfig, err := GetPluginConfig(v, name)
	if err != nil {
		return withPluginEnv(viper.New(), name)
	}

	return pluginConfig
}

// withPluginEnv sets up environment variable overrides for the keys of a plugin sub-tree
func withPluginEnv(pluginConfig *PluginConfig, name string) *PluginConfig {
	pluginConfig.SetEnvPrefix(strings.Join([]string{EnvPrefix, PluginsKey, name}, "_"))
	pluginConfig.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	pluginConfig.AutomaticEnv()

	return pluginConfig
}
