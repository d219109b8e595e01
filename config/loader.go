package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the global application configuration
var Config AppConfig

// Load reads, validates and applies defaults to the configuration at path.
// An empty path falls back to the default search list.
func Load(path string) error {
	paths := []string{"config.yml", "./config/config.yml"}
	if path != "" {
		paths = []string{path}
	}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return err
	}
	applyDefaults(&cfg)
	Config = cfg
	return nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 16181
	}
	if cfg.Agency.TimeoutMS == 0 {
		cfg.Agency.TimeoutMS = 10000
	}
	if cfg.Weather.TimeoutMS == 0 {
		cfg.Weather.TimeoutMS = 10000
	}
	d := &cfg.Dashboard
	if d.PredictionsIntervalS == 0 {
		d.PredictionsIntervalS = 60
	}
	if d.WeatherIntervalS == 0 {
		d.WeatherIntervalS = 900
	}
	if d.VehiclesIntervalS == 0 {
		d.VehiclesIntervalS = 60
	}
	if d.ClockIntervalS == 0 {
		d.ClockIntervalS = 1
	}
	if len(d.EnabledLines) == 0 {
		d.EnabledLines = append([]string(nil), cfg.Agency.Lines...)
	}
}
