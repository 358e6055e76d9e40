package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Server Server `mapstructure:"server"`
	Dirs   Dirs   `mapstructure:"dirs"`
	Upload Upload `mapstructure:"upload"`
	Auth   Auth   `mapstructure:"auth"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Dirs struct {
	Data       string `mapstructure:"data"`
	Uploads    string `mapstructure:"uploads"`
	Generated  string `mapstructure:"generated"`
	Thumbnails string `mapstructure:"thumbnails"`
}

type Upload struct {
	// MaxBytes caps a whole submission request body.
	MaxBytes int64 `mapstructure:"max_bytes"`
}

type Auth struct {
	// AdminUsername and AdminPassword seed the admin account file on
	// first run; they are ignored once the file exists.
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`
	SessionSecret string `mapstructure:"session_secret"`
	// AccountFile stores the hashed admin credential.
	AccountFile string `mapstructure:"account_file"`
}

// Load reads config.yaml from the working directory (or the explicit
// path) with GALLERY_-prefixed environment overrides. A missing config
// file is fine; defaults cover local use.
func Load(configPath string) (*Config, error) {
	viper.SetConfigType("yaml")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
	}

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "5000")
	viper.SetDefault("dirs.data", "data")
	viper.SetDefault("dirs.uploads", "uploads")
	viper.SetDefault("dirs.generated", "generated")
	viper.SetDefault("dirs.thumbnails", "thumbnails")
	viper.SetDefault("upload.max_bytes", int64(2)<<30) // 2GB
	viper.SetDefault("auth.admin_username", "admin")
	viper.SetDefault("auth.admin_password", "")
	viper.SetDefault("auth.session_secret", "")
	viper.SetDefault("auth.account_file", "data/admin.json")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("GALLERY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "read config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return &cfg, nil
}
