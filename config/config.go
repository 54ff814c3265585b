package config

import (
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	LLM           LLMConfig           `yaml:"llm"`
	Agent         AgentConfig         `yaml:"agent"`
	Translator    TranslatorConfig    `yaml:"translator"`
	TextAnalytics TextAnalyticsConfig `yaml:"text_analytics"`
	Chat          ChatConfig          `yaml:"chat"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release
}

type DatabaseConfig struct {
	Type string `yaml:"type"` // sqlite, mysql
	DSN  string `yaml:"dsn"`
}

type LLMConfig struct {
	APIURL    string `yaml:"api_url"`
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
	// Enabled 默认是否开启 AI 辅助，运行期可通过接口开关
	Enabled bool `yaml:"enabled"`
}

// AgentConfig 问诊对话智能体配置
type AgentConfig struct {
	APIURL string `yaml:"api_url"`
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// TranslatorConfig 翻译服务配置
type TranslatorConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
}

// TextAnalyticsConfig 文本分析服务配置（生成分析报告前的抽取阶段）
// Endpoint 为空时跳过抽取，直接用 LLM 生成报告
type TextAnalyticsConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
}

// ChatConfig 聊天会话配置
type ChatConfig struct {
	UserID string `yaml:"user_id"`
}

var (
	cfg  *Config
	once sync.Once
)

func GetConfig() *Config {
	once.Do(func() {
		cfg = loadConfig()
	})
	return cfg
}

func loadConfig() *Config {
	config := &Config{
		Server: ServerConfig{
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Type: "sqlite",
			DSN:  "./data/app.db",
		},
		LLM: LLMConfig{
			APIURL:    "https://api.openai.com/v1",
			Model:     "gpt-4o",
			MaxTokens: 4096,
		},
		Agent: AgentConfig{
			APIURL: "https://api.openai.com/v1",
			Model:  "gpt-4o",
		},
		Chat: ChatConfig{
			UserID: "demo-user",
		},
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err == nil {
		yaml.Unmarshal(data, config)
	}

	// 环境变量优先级高于配置文件
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.LLM.APIKey = apiKey
		if config.Agent.APIKey == "" {
			config.Agent.APIKey = apiKey
		}
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.LLM.APIURL = baseURL
	}
	if model := os.Getenv("OPENAI_MODEL_NAME"); model != "" {
		config.LLM.Model = model
	}

	// 数据库环境变量
	if dbType := os.Getenv("DB_TYPE"); dbType != "" {
		config.Database.Type = dbType
	}
	if dbDSN := os.Getenv("DB_DSN"); dbDSN != "" {
		config.Database.DSN = dbDSN
	}

	// 外部协作服务环境变量
	if endpoint := os.Getenv("TRANSLATOR_ENDPOINT"); endpoint != "" {
		config.Translator.Endpoint = endpoint
	}
	if key := os.Getenv("TRANSLATOR_API_KEY"); key != "" {
		config.Translator.APIKey = key
	}
	if endpoint := os.Getenv("TEXT_ANALYTICS_ENDPOINT"); endpoint != "" {
		config.TextAnalytics.Endpoint = endpoint
	}
	if key := os.Getenv("TEXT_ANALYTICS_KEY"); key != "" {
		config.TextAnalytics.APIKey = key
	}
	if userID := os.Getenv("CHAT_USER_ID"); userID != "" {
		config.Chat.UserID = userID
	}

	return config
}
