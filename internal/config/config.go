package config

import "github.com/spf13/viper"

type Config struct {
	ServerPort     string `mapstructure:"SERVER_PORT"`
	MetricsPort    string `mapstructure:"METRICS_PORT"`
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	GPSSource      string `mapstructure:"GPS_SOURCE"`
	GPSAddr        string `mapstructure:"GPS_ADDR"`
	MQTTBroker     string `mapstructure:"MQTT_BROKER"`
	MQTTTopic      string `mapstructure:"MQTT_TOPIC"`
	MQTTClientID   string `mapstructure:"MQTT_CLIENT_ID"`
	ProbeTimeoutMS int    `mapstructure:"PROBE_TIMEOUT_MS"`
}

func Load() Config {
	viper.AutomaticEnv()
	viper.SetDefault("SERVER_PORT", ":8080")
	viper.SetDefault("METRICS_PORT", "9100")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("GPS_SOURCE", "nmea")
	viper.SetDefault("GPS_ADDR", "localhost:2947")
	viper.SetDefault("MQTT_BROKER", "tcp://localhost:1883")
	viper.SetDefault("MQTT_TOPIC", "trailmeter/position")
	viper.SetDefault("MQTT_CLIENT_ID", "trailmeter-api")
	viper.SetDefault("PROBE_TIMEOUT_MS", 5000)

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}
