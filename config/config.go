package config

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var Conf = config{}

type config struct {
	Chain      ChainConfig      `mapstructure:"chain" yaml:"chain"`
	SafeAPI    SafeAPIConfig    `mapstructure:"safe_api" yaml:"safe_api"`
	Signer     SignerConfig     `mapstructure:"signer" yaml:"signer"`
	Oracle     OracleConfig     `mapstructure:"oracle" yaml:"oracle"`
	Model      ModelConfig      `mapstructure:"model" yaml:"model"`
	Guards     GuardsConfig     `mapstructure:"guards" yaml:"guards"`
	Postgresql PostgresqlConfig `mapstructure:"postgresql" yaml:"postgresql"`
	Redis      RedisConfig      `mapstructure:"redis" yaml:"redis"`
	HTTPServer HTTPServerConfig `mapstructure:"httpserver" yaml:"httpserver"`
	Notifier   NotifierConfig   `mapstructure:"notifier" yaml:"notifier"`
	LogPath    string           `mapstructure:"log_path" yaml:"log_path"`
}

type ChainConfig struct {
	Name        string `mapstructure:"name" yaml:"name"`
	ID          int64  `mapstructure:"id" yaml:"id"`
	ProviderURL string `mapstructure:"provider_url" yaml:"provider_url"`
}

type SafeAPIConfig struct {
	BaseURL        string   `mapstructure:"base_url" yaml:"base_url"`
	APIKey         string   `mapstructure:"api_key" yaml:"api_key"`
	Safes          []string `mapstructure:"safes" yaml:"safes"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	HistoryLimit   int      `mapstructure:"history_limit" yaml:"history_limit"`
}

type SignerConfig struct {
	PrivateKey string `mapstructure:"private_key" yaml:"private_key"`
}

type OracleConfig struct {
	BaseURL         string `mapstructure:"base_url" yaml:"base_url"`
	AccessToken     string `mapstructure:"access_token" yaml:"access_token"`
	CooldownSeconds int    `mapstructure:"cooldown_seconds" yaml:"cooldown_seconds"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	CacheTTLMinutes int    `mapstructure:"cache_ttl_minutes" yaml:"cache_ttl_minutes"`
}

type ModelConfig struct {
	Endpoint       string `mapstructure:"endpoint" yaml:"endpoint"`
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`
	Name           string `mapstructure:"name" yaml:"name"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

type GuardsConfig struct {
	Order         []string `mapstructure:"order" yaml:"order"`
	BlacklistPath string   `mapstructure:"blacklist_path" yaml:"blacklist_path"`
}

type PostgresqlConfig struct {
	User         string `mapstructure:"user" yaml:"user"`
	Password     string `mapstructure:"password" yaml:"password"`
	Database     string `mapstructure:"database" yaml:"database"`
	Host         string `mapstructure:"host" yaml:"host"`
	Port         int    `mapstructure:"port" yaml:"port"`
	LogMode      bool   `mapstructure:"log-mode" yaml:"log-mode"`
	MaxIdleConns int    `mapstructure:"max-idle-conns" yaml:"max-idle-conns"`
	MaxOpenConns int    `mapstructure:"max-open-conns" yaml:"max-open-conns"`
}

type RedisConfig struct {
	Addr         string `mapstructure:"addr" yaml:"addr"`
	Password     string `mapstructure:"password" yaml:"password"`
	Database     int    `mapstructure:"database" yaml:"database"`
	MaxIdleConns int    `mapstructure:"max-idle-conns" yaml:"max-idle-conns"`
}

type HTTPServerConfig struct {
	Host           string `mapstructure:"host" yaml:"host"`
	Port           int    `mapstructure:"port" yaml:"port"`
	APIKey         string `mapstructure:"apikey" yaml:"apikey"`
	ClientMaxConns int    `mapstructure:"client-max-conns" yaml:"client-max-conns"`
}

type NotifierConfig struct {
	LarkWebHook  string `mapstructure:"lark_webhook" yaml:"lark_webhook"`
	SlackWebHook string `mapstructure:"slack_webhook" yaml:"slack_webhook"`
}

func SetupConfig(configFile string) {
	if configFile == "" {
		panic(fmt.Errorf("failed to get config file path"))
	}

	viper.SetConfigFile(configFile)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("failed to read configuration file: %v", err))
	}
	// load config info to global Conf variable
	if err := viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("failed to unmarshal configuration file %v", err))
	}

	logrus.Infof("read configuration file successfully")
}
