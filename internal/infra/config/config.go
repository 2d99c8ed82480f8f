package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"dealmind/internal/domain"
)

// Config is the effective gateway configuration. Every key has a
// working local default and is independently overridable through the
// DEALMIND_ environment or an optional YAML file.
type Config struct {
	Backend       BackendConfig       `mapstructure:"backend" yaml:"backend"`
	Affiliate     AffiliateConfig     `mapstructure:"affiliate" yaml:"affiliate"`
	Quota         QuotaConfig         `mapstructure:"quota" yaml:"quota"`
	User          UserConfig          `mapstructure:"user" yaml:"user"`
	Observability ObservabilityConfig `mapstructure:"observability" yaml:"observability"`
}

type BackendConfig struct {
	BaseURL        string `mapstructure:"baseURL" yaml:"baseURL"`
	PredictURL     string `mapstructure:"predictURL" yaml:"predictURL"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds" yaml:"timeoutSeconds"`
}

type AffiliateConfig struct {
	Tag string `mapstructure:"tag" yaml:"tag"`
}

type QuotaConfig struct {
	DailyLimit int    `mapstructure:"dailyLimit" yaml:"dailyLimit"`
	PremiumURL string `mapstructure:"premiumURL" yaml:"premiumURL"`
	SweepDays  int    `mapstructure:"sweepDays" yaml:"sweepDays"`
	StorePath  string `mapstructure:"storePath" yaml:"storePath"`
}

type UserConfig struct {
	ID string `mapstructure:"id" yaml:"id"`
}

type ObservabilityConfig struct {
	ListenAddress string `mapstructure:"listenAddress" yaml:"listenAddress"`
}

func newConfigViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix("DEALMIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
	}
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.baseURL", domain.DefaultBackendBaseURL)
	v.SetDefault("backend.predictURL", domain.DefaultPredictURL)
	v.SetDefault("backend.timeoutSeconds", domain.DefaultBackendTimeoutSeconds)
	v.SetDefault("affiliate.tag", domain.DefaultAffiliateTag)
	v.SetDefault("quota.dailyLimit", domain.DefaultDailyCallLimit)
	v.SetDefault("quota.premiumURL", "")
	v.SetDefault("quota.sweepDays", domain.DefaultSweepAfterDays)
	v.SetDefault("quota.storePath", "")
	v.SetDefault("user.id", domain.DefaultUserID)
	v.SetDefault("observability.listenAddress", domain.DefaultObservabilityListenAddress)
}

// Load reads configuration from defaults, the optional file at path
// and the environment, in ascending precedence.
func Load(path string) (Config, error) {
	v := newConfigViper(path)
	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.baseURL is required")
	}
	if c.Backend.TimeoutSeconds <= 0 {
		return fmt.Errorf("backend.timeoutSeconds must be > 0")
	}
	if c.Quota.DailyLimit <= 0 {
		return fmt.Errorf("quota.dailyLimit must be > 0")
	}
	if c.Quota.SweepDays <= 0 {
		return fmt.Errorf("quota.sweepDays must be > 0")
	}
	if c.User.ID == "" {
		return fmt.Errorf("user.id is required")
	}
	return nil
}
