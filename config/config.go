package config

import (
	"encoding/json"
	"os"
)

var Config *AppConfig

type AppConfig struct {
	AppVersion string `json:"app_version"`
	LogConfig  `json:",inline"`
	GateConfig `json:",inline"`
}

type LogConfig struct {
	LogPath   string `json:"log_path"`
	LogName   string `json:"log_name"`
	LogLevel  int    `json:"log_level"`
	LogStdOut bool   `json:"log_std_out"`
}

type GateConfig struct {
	GateAddr      string `json:"gate_addr"`       //形如 "tcp://127.0.0.1:2333"
	IdleTimeoutMs uint64 `json:"idle_timeout_ms"` //连接空闲踢下线时长
	Multicore     bool   `json:"multicore"`
}

func LoadConfig(configFile string) error {
	Config = &AppConfig{
		LogConfig: LogConfig{
			LogName:   "evkit",
			LogLevel:  4, // DebugLevel
			LogStdOut: true,
		},
		GateConfig: GateConfig{
			GateAddr:      "tcp://127.0.0.1:2333",
			IdleTimeoutMs: 60_000,
		},
	}
	if len(configFile) == 0 {
		return nil
	}
	data, err := os.ReadFile(configFile)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, Config)
}

func (conf *AppConfig) JsonFormat() string {
	if conf == nil {
		return "{}"
	}
	data, err := json.MarshalIndent(conf, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}
