package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Signer   SignerConfig   `mapstructure:"signer"`
	Parser   ParserConfig   `mapstructure:"parser"`
	Approval ApprovalConfig `mapstructure:"approval"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	Name     string `mapstructure:"name"`
	Version  string `mapstructure:"version"`
	HttpPort string `mapstructure:"http_port"`
}

type SignerConfig struct {
	KeystorePath string `mapstructure:"keystore_path"`
	Password     string `mapstructure:"password"` // 通常通过环境变量 SIGNER_PASSWORD 传入
	Mnemonic     string `mapstructure:"mnemonic"` // 仅用于开发环境，设置后优先于 keystore
	Passphrase   string `mapstructure:"passphrase"`
	MinPathDepth int    `mapstructure:"min_path_depth"`
	MaxPathDepth int    `mapstructure:"max_path_depth"`
}

type ParserConfig struct {
	AllowCallData    bool `mapstructure:"allow_call_data"`
	AllowTyped       bool `mapstructure:"allow_typed"`
	MaxCallDataLen   int  `mapstructure:"max_call_data_len"`
	MaxAccessListLen int  `mapstructure:"max_access_list_len"`
	MaxTxLen         int  `mapstructure:"max_tx_len"`
	MaxMessageLen    int  `mapstructure:"max_message_len"`
}

type ApprovalConfig struct {
	Mode            string `mapstructure:"mode"` // 可选 "auto" / "reject" / "terminal"
	BlindSigning    bool   `mapstructure:"blind_signing"`
	DetailedDisplay bool   `mapstructure:"detailed_display"`
	NetworkID       uint32 `mapstructure:"network_id"`
}

var Global Config

func Init() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// 环境变量: signer.password -> SIGNER_PASSWORD
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Warning: Config file not found, using defaults and environment variables")
		} else {
			log.Fatalf("Fatal error config file: %s \n", err)
		}
	}

	if err := viper.Unmarshal(&Global); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	log.Printf("Configuration loaded successfully. Env: %s", Global.App.Env)
}

// SetDefaults 在全局 viper 实例上注册默认值
func SetDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.name", "Conflux")
	viper.SetDefault("app.version", "1.2.0")
	viper.SetDefault("app.http_port", "9999")

	viper.SetDefault("signer.keystore_path", "signer.json")
	viper.SetDefault("signer.min_path_depth", 1)
	viper.SetDefault("signer.max_path_depth", 10)

	viper.SetDefault("parser.allow_call_data", true)
	viper.SetDefault("parser.allow_typed", true)
	viper.SetDefault("parser.max_call_data_len", 4096)
	viper.SetDefault("parser.max_access_list_len", 2048)
	viper.SetDefault("parser.max_tx_len", 65535)
	viper.SetDefault("parser.max_message_len", 4096)

	viper.SetDefault("approval.mode", "terminal")
	viper.SetDefault("approval.blind_signing", false)
	viper.SetDefault("approval.detailed_display", false)
	viper.SetDefault("approval.network_id", 1029)
}
