package config

import (
	"github.com/vesla0x1/codegrabber/shared/utils"
)

// parse reads configuration from environment variables
func parse() *Config {
	defaults := DefaultConfig()

	return &Config{
		// Core
		Environment: utils.GetEnv("ENVIRONMENT", defaults.Environment),
		ServiceName: utils.GetEnv("SERVICE_NAME", defaults.ServiceName),
		Version:     utils.GetEnv("SERVICE_VERSION", defaults.Version),
		LogLevel:    utils.GetEnv("LOG_LEVEL", defaults.LogLevel),
		LogFormat:   utils.GetEnv("LOG_FORMAT", defaults.LogFormat),

		// Target; flow flags only come from the command line
		Target: TargetConfig{
			BaseURL: utils.GetEnv("TARGET_URL", ""),
			Cookie:  utils.GetEnv("TARGET_COOKIE", ""),
		},

		// Harvest
		Harvest: HarvestConfig{
			OutputDir:         utils.GetEnv("OUTPUT_DIR", ""),
			Extensions:        utils.GetEnvList("EXTRA_EXTENSIONS", nil),
			Concurrency:       utils.GetEnvInt("RETRIEVE_CONCURRENCY", defaults.Harvest.Concurrency),
			FallbackContainer: utils.GetEnv("FALLBACK_CONTAINER", defaults.Harvest.FallbackContainer),
			PluginContainer:   utils.GetEnv("PLUGIN_CONTAINER", defaults.Harvest.PluginContainer),
			KeepExtensionless: utils.GetEnvBool("KEEP_EXTENSIONLESS", false),
			PayloadSelector:   utils.GetEnv("PAYLOAD_SELECTOR", defaults.Harvest.PayloadSelector),
			PluginSelectID:    utils.GetEnv("PLUGIN_SELECT_ID", defaults.Harvest.PluginSelectID),
		},

		// HTTP Client
		HTTP: HTTPConfig{
			Timeout:    utils.GetEnvDuration("HTTP_TIMEOUT", "120s"),
			MaxRetries: utils.GetEnvInt("HTTP_MAX_RETRIES", defaults.HTTP.MaxRetries),
			UserAgent:  utils.GetEnv("HTTP_USER_AGENT", defaults.HTTP.UserAgent),
		},

		Metrics: MetricsConfig{
			File: utils.GetEnv("METRICS_FILE", ""),
		},

		Export: ExportConfig{
			S3Bucket: utils.GetEnv("S3_BUCKET", ""),
			S3Prefix: utils.GetEnv("S3_PREFIX", ""),
			Region:   utils.GetEnv("AWS_REGION", defaults.Export.Region),
			Endpoint: utils.GetEnv("S3_ENDPOINT", ""),

			AccessKeyID:     utils.GetEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: utils.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		},
	}
}
