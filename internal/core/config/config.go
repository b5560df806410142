package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
	BasePath        string
	CorsOrigins     []string
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
	LeewaySec         int
}

func (j JWT) TTL() time.Duration    { return time.Duration(j.AccessTokenTTLMin) * time.Minute }
func (j JWT) Leeway() time.Duration { return time.Duration(j.LeewaySec) * time.Second }

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string // postgres | mysql | memory
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Upload struct {
	Dir       string
	MaxSizeMB int
}

func (u Upload) MaxBytes() int64 { return int64(u.MaxSizeMB) << 20 }

type Limits struct {
	RPS               float64
	Burst             int
	MaxInFlight       int
	RequestTimeoutSec int
	MaxBodyMB         int
	LoginMax          int
	LoginWindowSec    int
}

type Auth struct {
	DefaultEmailDomain string
	// 启动时确保存在的管理员；用户名为空则跳过
	AdminUsername string
	AdminPassword string
	AdminEmail    string
}

type Config struct {
	App    App
	Log    Log
	JWT    JWT
	DB     DB
	Redis  Redis `mapstructure:"redis"`
	Upload Upload
	Limits Limits
	Auth   Auth
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "perfume-catalog")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readTimeoutSec", 15)
	v.SetDefault("app.http.writeTimeoutSec", 30)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.http.basePath", "/api")
	v.SetDefault("app.http.corsOrigins", []string{"http://localhost:3000"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.filename", "logs/app.log")
	v.SetDefault("log.file.maxSizeMB", 100)
	v.SetDefault("log.file.maxBackups", 7)
	v.SetDefault("log.file.maxAgeDays", 30)

	v.SetDefault("jwt.issuer", "perfume-catalog")
	v.SetDefault("jwt.accessTokenTTLMin", 1440)
	v.SetDefault("jwt.leewaySec", 60)

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 10)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.autoMigrate", true)
	v.SetDefault("db.logLevel", "warn")

	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.maxSizeMB", 10)

	v.SetDefault("limits.rps", 200)
	v.SetDefault("limits.burst", 400)
	v.SetDefault("limits.maxInFlight", 300)
	v.SetDefault("limits.requestTimeoutSec", 10)
	v.SetDefault("limits.maxBodyMB", 16)
	v.SetDefault("limits.loginMax", 10)
	v.SetDefault("limits.loginWindowSec", 60)

	v.SetDefault("auth.defaultEmailDomain", "perfume.local")
}

// Load 读取 YAML + APP_ 前缀环境变量；配置文件缺失时只用默认值和环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv 只覆盖已知 key，没有默认值的敏感项显式绑定
	for _, k := range []string{"jwt.secret", "db.dsn", "db.username", "db.password", "redis.addr", "redis.password", "auth.adminUsername", "auth.adminPassword", "auth.adminEmail"} {
		_ = v.BindEnv(k)
	}

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("config: jwt.secret is required (APP_JWT_SECRET)")
	}
	switch c.DB.Driver {
	case "postgres", "mysql", "memory":
	default:
		return fmt.Errorf("config: unsupported db.driver %q", c.DB.Driver)
	}
	if c.DB.Driver != "memory" && strings.TrimSpace(c.DB.DSN) == "" {
		return errors.New("config: db.dsn is required")
	}
	if c.JWT.AccessTokenTTLMin <= 0 {
		return errors.New("config: jwt.accessTokenTTLMin must be positive")
	}
	if !strings.HasPrefix(c.App.HTTP.BasePath, "/") {
		return fmt.Errorf("config: app.http.basePath %q must start with /", c.App.HTTP.BasePath)
	}
	return nil
}
