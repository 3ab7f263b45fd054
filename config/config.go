package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host   string `yaml:"host" json:"host"`
	Port   int    `yaml:"port" json:"port"`
	Secret string `yaml:"secret" json:"secret"`
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type RedisConfig struct {
	Enable bool   `yaml:"enable" json:"enable"`
	Addr   string `yaml:"addr" json:"addr"`
	Passwd string `yaml:"passwd" json:"passwd"`
	DB     int    `yaml:"db" json:"db"`
}

type SmtpConfig struct {
	Enable   bool   `yaml:"enable" json:"enable"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	From     string `yaml:"from" json:"from"`
}

type AppConfig struct {
	System   SysConfig   `yaml:"system" json:"system"`
	Web      WebConfig   `yaml:"web" json:"web"`
	Database DBConfig    `yaml:"database" json:"database"`
	Logger   LogConfig   `yaml:"logger" json:"logger"`
	Redis    RedisConfig `yaml:"redis" json:"redis"`
	Smtp     SmtpConfig  `yaml:"smtp" json:"smtp"`
}

func (c *AppConfig) InitDirs() {
	_ = os.MkdirAll(filepath.Join(c.System.Workdir, "logs"), 0o755)
	_ = os.MkdirAll(filepath.Join(c.System.Workdir, "data"), 0o755)
	_ = os.MkdirAll(filepath.Join(c.System.Workdir, "metrics"), 0o755)
}

func setEnvValue(name string, val *string) {
	if v, ok := os.LookupEnv(name); ok {
		*val = v
	}
}

func setEnvIntValue(name string, val *int) {
	if v, ok := os.LookupEnv(name); ok {
		*val = cast.ToInt(v)
	}
}

func setEnvBoolValue(name string, val *bool) {
	if v, ok := os.LookupEnv(name); ok {
		*val = cast.ToBool(v)
	}
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "openmall",
		Location: "Asia/Shanghai",
		Workdir:  "/var/openmall",
		Debug:    true,
	},
	Web: WebConfig{
		Host:   "0.0.0.0",
		Port:   1816,
		Secret: "9b6de5cc-openmall-1816-b4be-6b9e0d4a02e1",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "openmall_v1",
		User:     "postgres",
		Passwd:   "openmall",
		MaxConn:  100,
		IdleConn: 10,
		Debug:    false,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/openmall/openmall.log",
	},
	Redis: RedisConfig{
		Enable: false,
		Addr:   "127.0.0.1:6379",
		DB:     0,
	},
	Smtp: SmtpConfig{
		Enable: false,
		Host:   "smtp.example.com",
		Port:   587,
		From:   "no-reply@openmall.local",
	},
}

// LoadConfig loads the yaml configuration file and applies environment
// variable overrides. A missing file yields the default configuration.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}
	}

	setEnvValue("OPENMALL_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvBoolValue("OPENMALL_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("OPENMALL_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("OPENMALL_WEB_PORT", &cfg.Web.Port)
	setEnvValue("OPENMALL_WEB_SECRET", &cfg.Web.Secret)

	setEnvValue("OPENMALL_DB_TYPE", &cfg.Database.Type)
	setEnvValue("OPENMALL_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("OPENMALL_DB_PORT", &cfg.Database.Port)
	setEnvValue("OPENMALL_DB_NAME", &cfg.Database.Name)
	setEnvValue("OPENMALL_DB_USER", &cfg.Database.User)
	setEnvValue("OPENMALL_DB_PWD", &cfg.Database.Passwd)
	setEnvBoolValue("OPENMALL_DB_DEBUG", &cfg.Database.Debug)

	setEnvValue("OPENMALL_LOGGER_MODE", &cfg.Logger.Mode)

	setEnvBoolValue("OPENMALL_REDIS_ENABLE", &cfg.Redis.Enable)
	setEnvValue("OPENMALL_REDIS_ADDR", &cfg.Redis.Addr)
	setEnvValue("OPENMALL_REDIS_PWD", &cfg.Redis.Passwd)

	setEnvBoolValue("OPENMALL_SMTP_ENABLE", &cfg.Smtp.Enable)
	setEnvValue("OPENMALL_SMTP_HOST", &cfg.Smtp.Host)
	setEnvIntValue("OPENMALL_SMTP_PORT", &cfg.Smtp.Port)
	setEnvValue("OPENMALL_SMTP_USERNAME", &cfg.Smtp.Username)
	setEnvValue("OPENMALL_SMTP_PASSWORD", &cfg.Smtp.Password)
	setEnvValue("OPENMALL_SMTP_FROM", &cfg.Smtp.From)

	return cfg
}
