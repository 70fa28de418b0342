package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用程序配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Database DatabaseConfig `mapstructure:"database"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Cleanup  CleanupConfig  `mapstructure:"cleanup"`
	Prompts  PromptsConfig  `mapstructure:"prompts"`
	Export   ExportConfig   `mapstructure:"export"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"` // 服务器主机
	Port int    `mapstructure:"port"` // 服务器端口
}

// StorageConfig 存储配置
type StorageConfig struct {
	Type      string `mapstructure:"type"`     // 存储类型：local 或 minio
	Path      string `mapstructure:"path"`     // 本地存储路径
	Bucket    string `mapstructure:"bucket"`   // MinIO桶名称
	Endpoint  string `mapstructure:"endpoint"` // MinIO端点
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"` // 是否使用SSL
}

// LLMConfig 大语言模型配置
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"`    // 提供商，目前支持openai兼容协议
	Model       string  `mapstructure:"model"`       // 模型名称
	APIKey      string  `mapstructure:"api_key"`     // API密钥
	Endpoint    string  `mapstructure:"endpoint"`    // API端点
	MaxTokens   int     `mapstructure:"max_tokens"`  // 最大生成token数量
	Temperature float32 `mapstructure:"temperature"` // 采样温度
}

// CacheConfig 翻译缓存配置
type CacheConfig struct {
	Enable   bool   `mapstructure:"enable"`   // 是否启用缓存
	Type     string `mapstructure:"type"`     // 缓存类型：memory 或 redis
	Address  string `mapstructure:"address"`  // Redis地址
	Password string `mapstructure:"password"` // Redis密码
	DB       int    `mapstructure:"db"`       // Redis数据库
	TTL      int    `mapstructure:"ttl"`      // 缓存TTL（秒）
}

// QueueConfig 批量翻译任务队列配置
type QueueConfig struct {
	Enable        bool   `mapstructure:"enable"`         // 是否启用任务队列
	Type          string `mapstructure:"type"`           // 队列类型，目前支持redis
	RedisAddr     string `mapstructure:"redis_addr"`     // Redis地址
	RedisPassword string `mapstructure:"redis_password"` // Redis密码
	RedisDB       int    `mapstructure:"redis_db"`       // Redis数据库编号
	Concurrency   int    `mapstructure:"concurrency"`    // 任务处理并发数
	RetryLimit    int    `mapstructure:"retry_limit"`    // 任务最大重试次数
	RetryDelay    int    `mapstructure:"retry_delay"`    // 重试延迟(秒)
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type string `mapstructure:"type"` // 数据库类型，目前支持sqlite
	DSN  string `mapstructure:"dsn"`  // 数据源名称
}

// UploadConfig 文档上传配置
type UploadConfig struct {
	MaxUploadMB int `mapstructure:"max_upload_mb"` // 上传文件大小上限(MB)
}

// CleanupConfig 启动清理配置
type CleanupConfig struct {
	LogsDays int `mapstructure:"logs_days"` // 日志保留天数，0表示不清理
}

// PromptsConfig 提示词配置
type PromptsConfig struct {
	Path string `mapstructure:"path"` // prompts.json路径，留空使用内置默认值
}

// ExportConfig 译文导出配置
type ExportConfig struct {
	FontPath string `mapstructure:"font_path"` // PDF导出用TTF字体路径，CJK文本需要
}

// LogConfig 日志配置
type LogConfig struct {
	Dir string `mapstructure:"dir"` // 日志文件目录，留空仅输出到标准输出
}

// Load 从文件和环境变量加载配置
func Load(configPath string) (*Config, error) {
	var config Config

	// 设置默认配置路径
	if configPath == "" {
		configPath = "config.yaml" // 默认在当前目录寻找config.yaml
	}

	// 初始化viper
	v := viper.New()

	// 设置配置文件路径和类型
	v.SetConfigFile(configPath)

	// 尝试读取配置文件
	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}

		// 找不到配置文件时使用默认值并写出一份
		log.Printf("Warning: Config file not found at %s, using defaults", configPath)
		setDefaults(v)
		dir := filepath.Dir(configPath)
		if err := os.MkdirAll(dir, 0755); err == nil {
			if err := v.WriteConfigAs(configPath); err != nil {
				log.Printf("Warning: Could not write default config to %s: %v", configPath, err)
			}
		}
	} else {
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	// 设置默认值
	setDefaults(v)

	// 支持环境变量覆盖
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 解析配置到结构体
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}

	// 处理配置项中的环境变量引用
	processEnvironmentVariables(&config)

	// 原部署方式的环境变量继续生效
	applyLegacyEnv(&config)

	return &config, nil
}

// processEnvironmentVariables 展开形如${ENV_VAR}的配置值
func processEnvironmentVariables(cfg *Config) {
	cfg.LLM.APIKey = expandEnvRef(cfg.LLM.APIKey)
	cfg.Storage.AccessKey = expandEnvRef(cfg.Storage.AccessKey)
	cfg.Storage.SecretKey = expandEnvRef(cfg.Storage.SecretKey)
}

func expandEnvRef(value string) string {
	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		envVar := value[2 : len(value)-1]
		if envVal := os.Getenv(envVar); envVal != "" {
			return envVal
		}
	}
	return value
}

// applyLegacyEnv 应用简写环境变量
// API_KEY、API_ENDPOINT、MODEL等变量优先于配置文件
func applyLegacyEnv(cfg *Config) {
	if val := strings.TrimSpace(os.Getenv("API_KEY")); val != "" {
		cfg.LLM.APIKey = val
	}
	if val := strings.TrimSpace(os.Getenv("API_ENDPOINT")); val != "" {
		cfg.LLM.Endpoint = val
	}
	if val := strings.TrimSpace(os.Getenv("MODEL")); val != "" {
		cfg.LLM.Model = val
	}
	if val := strings.TrimSpace(os.Getenv("MAX_UPLOAD_MB")); val != "" {
		if mb, err := parsePositiveInt(val); err == nil {
			cfg.Upload.MaxUploadMB = mb
		}
	}
	if val := strings.TrimSpace(os.Getenv("CLEANUP_LOGS_DAYS")); val != "" {
		if days, err := parsePositiveInt(val); err == nil {
			cfg.Cleanup.LogsDays = days
		}
	}
}

func parsePositiveInt(s string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value: %d", n)
	}
	return n, nil
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	// 存储默认配置
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.path", "./uploads")
	v.SetDefault("storage.bucket", "steptranslate")
	v.SetDefault("storage.use_ssl", false)

	// LLM默认配置
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.endpoint", "https://api.openai.com/v1")
	v.SetDefault("llm.temperature", 0.1)

	// 缓存默认配置
	v.SetDefault("cache.enable", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", 3600) // 1小时

	// 队列默认配置
	v.SetDefault("queue.enable", false)
	v.SetDefault("queue.type", "redis")
	v.SetDefault("queue.redis_addr", "localhost:6379")
	v.SetDefault("queue.redis_db", 0)
	v.SetDefault("queue.concurrency", 4)
	v.SetDefault("queue.retry_limit", 3)
	v.SetDefault("queue.retry_delay", 60) // 60秒

	// 数据库默认配置
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "data/steptranslate.db")

	// 上传默认配置
	v.SetDefault("upload.max_upload_mb", 50)

	// 清理默认配置
	v.SetDefault("cleanup.logs_days", 30)

	// 提示词默认配置
	v.SetDefault("prompts.path", "prompts.json")

	// 日志默认配置
	v.SetDefault("log.dir", "logs")
}
