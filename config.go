package main

import (
	"github.com/spf13/viper"
)

type Config struct {
	Addr           string
	TLSCert        string
	TLSKey         string
	LogLevel       string
	LogFormat      string
	MaxMessageSize int64
	SendBufferSize int
}

// LoadConfig reads settings from LOBBY_* environment variables.
func LoadConfig() *Config {
	v := viper.New()
	v.SetEnvPrefix("LOBBY")
	v.AutomaticEnv()

	v.SetDefault("addr", ":8080")
	v.SetDefault("tls_cert", "")
	v.SetDefault("tls_key", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("max_message_size", 65536)
	v.SetDefault("send_buffer_size", 256)

	return &Config{
		Addr:           v.GetString("addr"),
		TLSCert:        v.GetString("tls_cert"),
		TLSKey:         v.GetString("tls_key"),
		LogLevel:       v.GetString("log_level"),
		LogFormat:      v.GetString("log_format"),
		MaxMessageSize: v.GetInt64("max_message_size"),
		SendBufferSize: v.GetInt("send_buffer_size"),
	}
}
