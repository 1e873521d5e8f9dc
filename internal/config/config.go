package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	RAG      RAGConfig      `yaml:"rag"`
	Storage  StorageConfig  `yaml:"storage"`
	EmbedLLM LLMConfig      `yaml:"embed_llm"`
	GenLLM   LLMConfig      `yaml:"gen_llm"`
	Database DatabaseConfig `yaml:"database"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	BodyLimit string `yaml:"body_limit"`
}

type RAGConfig struct {
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	TopK         int    `yaml:"top_k"`
	DataDir      string `yaml:"data_dir"`
}

type StorageConfig struct {
	// Backend selects where embeddings are persisted: "chromem" or "postgres".
	Backend string `yaml:"backend"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

const (
	defaultAddr         = ":8080"
	defaultBodyLimit    = "50M"
	defaultChunkSize    = 1000
	defaultChunkOverlap = 100
	defaultTopK         = 5
	defaultDataDir      = "./data/stores"
	defaultBackend      = "chromem"
	defaultGroqBase     = "https://api.groq.com/openai/v1"
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = defaultAddr
	}
	if c.Server.BodyLimit == "" {
		c.Server.BodyLimit = defaultBodyLimit
	}
	if c.RAG.ChunkSize <= 0 {
		c.RAG.ChunkSize = defaultChunkSize
	}
	if c.RAG.ChunkOverlap <= 0 {
		c.RAG.ChunkOverlap = defaultChunkOverlap
	}
	if c.RAG.TopK <= 0 {
		c.RAG.TopK = defaultTopK
	}
	if c.RAG.DataDir == "" {
		c.RAG.DataDir = defaultDataDir
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaultBackend
	}
	if c.GenLLM.BaseURL == "" {
		c.GenLLM.BaseURL = defaultGroqBase
	}
}

// applyEnv lets deployment secrets override whatever is in the config file,
// so API keys never have to live on disk or travel from a client.
func (c *Config) applyEnv() {
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		c.GenLLM.Key = key
	}
	if key := os.Getenv("EMBED_API_KEY"); key != "" {
		c.EmbedLLM.Key = key
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		c.Database.URL = url
	}
}
