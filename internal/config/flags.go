package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. NETDASH_API_URL
const EnvPrefix = "NETDASH"

// replacer maps nested keys such as s3.bucket to NETDASH_S3_BUCKET
var replacer = strings.NewReplacer(".", "_")

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api_url", "http://localhost:8080")
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("refresh_interval", 5*time.Second)
	v.SetDefault("auto_refresh", true)
	v.SetDefault("period", "last-24-hours")
	v.SetDefault("recent_limit", 5)
	v.SetDefault("absolute_range", false)

	v.SetDefault("app_name", "netdash")
	v.SetDefault("export_dir", "exports")
	v.SetDefault("capture_delay", 300*time.Millisecond)

	v.SetDefault("database_path", "netdash.db")
	v.SetDefault("archive_retention", 30*24*time.Hour)
	v.SetDefault("archive_schedule", "@daily")

	v.SetDefault("listen", ":8090")
	v.SetDefault("allowed_origins", []string{})

	v.SetDefault("log_file", "netdash.log")
	v.SetDefault("log_level", "info")

	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.use_ssl", true)
}

// BindFlags registers the persistent command-line flags and binds them to v
func BindFlags(fs *pflag.FlagSet, v *viper.Viper) error {
	fs.String("api-url", "http://localhost:8080", "Monitoring backend base URL")
	fs.String("period", "last-24-hours", "Start period (preset name or custom:YYYY-MM-DD@HH..YYYY-MM-DD@HH)")
	fs.Duration("refresh-interval", 5*time.Second, "Auto-refresh interval")
	fs.Bool("auto-refresh", true, "Refresh on a timer")
	fs.String("db", "netdash.db", "Snapshot archive path")
	fs.String("export-dir", "exports", "Directory for exports and reports")
	fs.String("log-level", "info", "Log level (debug, info, warn, error)")

	for key, flag := range map[string]string{
		"api_url":          "api-url",
		"period":           "period",
		"refresh_interval": "refresh-interval",
		"auto_refresh":     "auto-refresh",
		"database_path":    "db",
		"export_dir":       "export-dir",
		"log_level":        "log-level",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}

// Prepare sets up defaults, the environment and .env for v, and reads
// cfgFile (or netdash.yaml from the home or working directory) if present.
func Prepare(v *viper.Viper, cfgFile string) error {
	godotenv.Load()

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		return v.ReadInConfig()
	}

	v.SetConfigName("netdash")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}
	return nil
}

// Load builds a validated Config from v
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		APIURL:          strings.TrimRight(v.GetString("api_url"), "/"),
		Timeout:         v.GetDuration("timeout"),
		RefreshInterval: v.GetDuration("refresh_interval"),
		AutoRefresh:     v.GetBool("auto_refresh"),
		Period:          v.GetString("period"),
		RecentLimit:     v.GetInt("recent_limit"),
		AbsoluteRange:   v.GetBool("absolute_range"),

		AppName:      v.GetString("app_name"),
		ExportDir:    v.GetString("export_dir"),
		CaptureDelay: v.GetDuration("capture_delay"),

		DatabasePath:     v.GetString("database_path"),
		ArchiveRetention: v.GetDuration("archive_retention"),
		ArchiveSchedule:  v.GetString("archive_schedule"),

		Listen:         v.GetString("listen"),
		AllowedOrigins: splitList(v.GetStringSlice("allowed_origins")),

		LogFile:  v.GetString("log_file"),
		LogLevel: v.GetString("log_level"),
	}
	cfg.S3.Endpoint = v.GetString("s3.endpoint")
	cfg.S3.Bucket = v.GetString("s3.bucket")
	cfg.S3.AccessKey = v.GetString("s3.access_key")
	cfg.S3.SecretKey = v.GetString("s3.secret_key")
	cfg.S3.Region = v.GetString("s3.region")
	cfg.S3.UseSSL = v.GetBool("s3.use_ssl")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitList accepts both YAML lists and comma-separated environment values
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
