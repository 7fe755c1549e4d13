package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"repx/internal/models"
	"repx/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "REPX_LOG_LEVEL")
	viper.BindEnv("identity.name", "REPX_IDENTITY_NAME")
	viper.BindEnv("identity.realm", "REPX_IDENTITY_REALM")
	viper.BindEnv("transport.addr", "REPX_REDIS_ADDR")
	viper.BindEnv("transport.password", "REPX_REDIS_PASSWORD")
	viper.BindEnv("persistence.saveInterval", "REPX_SAVE_INTERVAL")
	viper.BindEnv("cache.enabled", "REPX_CACHE_ENABLED")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "repx"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

// NewLocalIdentity derives the participant handle this node acts as.
func NewLocalIdentity(conf *structures.Config) models.Identity {
	return models.MakeIdentity(conf.Identity.Name, conf.Identity.Realm)
}
