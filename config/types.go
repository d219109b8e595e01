package config

// ServerConfig contains server configuration
type ServerConfig struct {
	Port int `yaml:"port" validate:"gte=0"`
}

// AgencyConfig contains the upstream transit-agency feed configuration
type AgencyConfig struct {
	VehiclePositionsURL string   `yaml:"vehiclePositionsURL" validate:"omitempty,url"`
	StopMonitoringURL   string   `yaml:"stopMonitoringURL" validate:"omitempty,url"`
	LinesURL            string   `yaml:"linesURL" validate:"omitempty,url"`
	PatternURL          string   `yaml:"patternURL" validate:"omitempty,url"`
	Lines               []string `yaml:"lines" validate:"required,min=1"`
	TimeoutMS           int      `yaml:"timeoutMS" validate:"gte=0"`
}

// WeatherConfig contains the weather upstream configuration
type WeatherConfig struct {
	CurrentURL  string `yaml:"currentURL" validate:"omitempty,url"`
	ForecastURL string `yaml:"forecastURL" validate:"omitempty,url"`
	TimeoutMS   int    `yaml:"timeoutMS" validate:"gte=0"`
}

// RoutesConfig locates the precomputed static stop/route dataset
type RoutesConfig struct {
	StaticPath string `yaml:"staticPath" validate:"required"`
}

// DashboardConfig contains stop defaults and polling cadences for the dashboard
type DashboardConfig struct {
	InboundStopID        string   `yaml:"inboundStopID" validate:"required"`
	OutboundStopID       string   `yaml:"outboundStopID" validate:"required"`
	EnabledLines         []string `yaml:"enabledLines"`
	PredictionsIntervalS int      `yaml:"predictionsIntervalS" validate:"gte=0"`
	WeatherIntervalS     int      `yaml:"weatherIntervalS" validate:"gte=0"`
	VehiclesIntervalS    int      `yaml:"vehiclesIntervalS" validate:"gte=0"`
	ClockIntervalS       int      `yaml:"clockIntervalS" validate:"gte=0"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server    ServerConfig    `yaml:"server" validate:"required"`
	Agency    AgencyConfig    `yaml:"agency" validate:"required"`
	Weather   WeatherConfig   `yaml:"weather"`
	Routes    RoutesConfig    `yaml:"routes" validate:"required"`
	Dashboard DashboardConfig `yaml:"dashboard" validate:"required"`
}
