package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Minio     MinioConfig
	Worker    WorkerConfig
	Separator SeparatorConfig
}

type ServerConfig struct {
	Port            string
	Env             string
	MaxPayloadBytes int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type MinioConfig struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	QueueBucket  string
	OutputBucket string
}

type WorkerConfig struct {
	Concurrency int
	StagingDir  string // empty means the OS temp dir
}

type SeparatorConfig struct {
	Binary string
	Model  string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("server.port", "5000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.max_payload_bytes", 50*1024*1024)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("minio.endpoint", "localhost:9000")
	viper.SetDefault("minio.access_key", "rootuser")
	viper.SetDefault("minio.secret_key", "rootpass123")
	viper.SetDefault("minio.use_ssl", false)
	viper.SetDefault("minio.queue_bucket", "queue")
	viper.SetDefault("minio.output_bucket", "output")
	viper.SetDefault("worker.concurrency", 1)
	viper.SetDefault("worker.staging_dir", "")
	viper.SetDefault("separator.binary", "python3")
	viper.SetDefault("separator.model", "htdemucs")

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:            viper.GetString("server.port"),
			Env:             viper.GetString("server.env"),
			MaxPayloadBytes: viper.GetInt("server.max_payload_bytes"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Minio: MinioConfig{
			Endpoint:     viper.GetString("minio.endpoint"),
			AccessKey:    viper.GetString("minio.access_key"),
			SecretKey:    viper.GetString("minio.secret_key"),
			UseSSL:       viper.GetBool("minio.use_ssl"),
			QueueBucket:  viper.GetString("minio.queue_bucket"),
			OutputBucket: viper.GetString("minio.output_bucket"),
		},
		Worker: WorkerConfig{
			Concurrency: viper.GetInt("worker.concurrency"),
			StagingDir:  viper.GetString("worker.staging_dir"),
		},
		Separator: SeparatorConfig{
			Binary: viper.GetString("separator.binary"),
			Model:  viper.GetString("separator.model"),
		},
	}

	return cfg, nil
}
