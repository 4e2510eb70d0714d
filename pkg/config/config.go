package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath         = "config.yaml"
	defaultGroqModel          = "llama-3.3-70b-versatile"
	defaultGeminiModel        = "gemini-2.0-flash"
	defaultDeepSeekModel      = "deepseek-chat"
	defaultReplicateModel     = "black-forest-labs/flux-schnell"
	defaultTogetherModel      = "black-forest-labs/FLUX.1-schnell"
	defaultSpeechModel        = "eleven_flash_v2_5"
	defaultAspectRatio        = "9:16"
	defaultQuality            = "standard"
	defaultFrameRate          = 30
	defaultTransitionDuration = 0.5
	defaultParallaxSpeed      = 1.0
	defaultMusicVolume        = 0.15
	defaultBatchSize          = 5
	defaultRunInterval        = 15 * time.Minute
	defaultCheckInterval      = time.Hour
	defaultOutputDir          = "./output"
	defaultPrivacyStatus      = "private"
	defaultTokenPath          = "./youtube_token.json"
)

type Config struct {
	DatabaseURL         string
	GroqAPIKey          string
	GeminiAPIKey        string
	DeepSeekAPIKey      string
	ReplicateAPIToken   string
	TogetherAPIKey      string
	LumaAPIKey          string
	ElevenLabsAPIKey    string
	ComposerURL         string
	GCSBucket           string
	YouTubeClientID     string
	YouTubeClientSecret string
	YouTubeTokenPath    string

	Script  ScriptConfig  `yaml:"script"`
	Media   MediaConfig   `yaml:"media"`
	Speech  SpeechConfig  `yaml:"speech"`
	Render  RenderConfig  `yaml:"render"`
	Worker  WorkerConfig  `yaml:"worker"`
	Storage StorageConfig `yaml:"storage"`
	YouTube YouTubeConfig `yaml:"youtube"`
}

type ScriptConfig struct {
	GroqModel     string `yaml:"groq_model"`
	GeminiModel   string `yaml:"gemini_model"`
	DeepSeekModel string `yaml:"deepseek_model"`
}

type MediaConfig struct {
	ReplicateModel string `yaml:"replicate_model"`
	TogetherModel  string `yaml:"together_model"`
	AspectRatio    string `yaml:"aspect_ratio"`
	Quality        string `yaml:"quality"`
	Enhancement    bool   `yaml:"enhancement"`
}

type SpeechConfig struct {
	Model      string  `yaml:"model"`
	Stability  float64 `yaml:"stability"`
	Similarity float64 `yaml:"similarity"`
}

type RenderConfig struct {
	FrameRate          int     `yaml:"frame_rate"`
	TransitionDuration float64 `yaml:"transition_duration"`
	ParallaxSpeed      float64 `yaml:"parallax_speed"`
	MusicTrack         string  `yaml:"music_track"`
	MusicVolume        float64 `yaml:"music_volume"`
}

type WorkerConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	RunInterval   time.Duration `yaml:"run_interval"`
	CheckInterval time.Duration `yaml:"check_interval"`
}

type StorageConfig struct {
	OutputDir string `yaml:"output_dir"`
	BaseURL   string `yaml:"base_url"`
}

type YouTubeConfig struct {
	PrivacyStatus string `yaml:"privacy_status"`
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		GroqAPIKey:          os.Getenv("GROQ_API_KEY"),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		DeepSeekAPIKey:      os.Getenv("DEEPSEEK_API_KEY"),
		ReplicateAPIToken:   os.Getenv("REPLICATE_API_TOKEN"),
		TogetherAPIKey:      os.Getenv("TOGETHER_API_KEY"),
		LumaAPIKey:          os.Getenv("LUMA_API_KEY"),
		ElevenLabsAPIKey:    os.Getenv("ELEVENLABS_API_KEY"),
		ComposerURL:         os.Getenv("COMPOSER_URL"),
		GCSBucket:           os.Getenv("GCS_BUCKET"),
		YouTubeClientID:     os.Getenv("YOUTUBE_CLIENT_ID"),
		YouTubeClientSecret: os.Getenv("YOUTUBE_CLIENT_SECRET"),
		YouTubeTokenPath:    getEnvOrDefault("YOUTUBE_TOKEN_PATH", defaultTokenPath),
	}

	loadYAMLConfig(cfg)
	applyDefaults(cfg)

	return cfg
}

func loadYAMLConfig(cfg *Config) {
	data, err := os.ReadFile(defaultConfigPath)
	if err != nil {
		slog.Debug("No config.yaml found, using defaults")
		return
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		slog.Error("Failed to parse config.yaml", "error", err)
	}
}

func applyDefaults(cfg *Config) {
	applyScriptDefaults(cfg)
	applyMediaDefaults(cfg)
	applySpeechDefaults(cfg)
	applyRenderDefaults(cfg)
	applyWorkerDefaults(cfg)
	applyStorageDefaults(cfg)
	applyYouTubeDefaults(cfg)
}

func applyScriptDefaults(cfg *Config) {
	if cfg.Script.GroqModel == "" {
		cfg.Script.GroqModel = defaultGroqModel
	}
	if cfg.Script.GeminiModel == "" {
		cfg.Script.GeminiModel = defaultGeminiModel
	}
	if cfg.Script.DeepSeekModel == "" {
		cfg.Script.DeepSeekModel = defaultDeepSeekModel
	}
}

func applyMediaDefaults(cfg *Config) {
	if cfg.Media.ReplicateModel == "" {
		cfg.Media.ReplicateModel = defaultReplicateModel
	}
	if cfg.Media.TogetherModel == "" {
		cfg.Media.TogetherModel = defaultTogetherModel
	}
	if cfg.Media.AspectRatio == "" {
		cfg.Media.AspectRatio = defaultAspectRatio
	}
	if cfg.Media.Quality == "" {
		cfg.Media.Quality = defaultQuality
	}
}

func applySpeechDefaults(cfg *Config) {
	if cfg.Speech.Model == "" {
		cfg.Speech.Model = defaultSpeechModel
	}
}

func applyRenderDefaults(cfg *Config) {
	if cfg.Render.FrameRate == 0 {
		cfg.Render.FrameRate = defaultFrameRate
	}
	if cfg.Render.TransitionDuration == 0 {
		cfg.Render.TransitionDuration = defaultTransitionDuration
	}
	if cfg.Render.ParallaxSpeed == 0 {
		cfg.Render.ParallaxSpeed = defaultParallaxSpeed
	}
	if cfg.Render.MusicVolume == 0 {
		cfg.Render.MusicVolume = defaultMusicVolume
	}
}

func applyWorkerDefaults(cfg *Config) {
	if cfg.Worker.BatchSize == 0 {
		cfg.Worker.BatchSize = defaultBatchSize
	}
	if cfg.Worker.RunInterval == 0 {
		cfg.Worker.RunInterval = defaultRunInterval
	}
	if cfg.Worker.CheckInterval == 0 {
		cfg.Worker.CheckInterval = defaultCheckInterval
	}
}

func applyStorageDefaults(cfg *Config) {
	if cfg.Storage.OutputDir == "" {
		cfg.Storage.OutputDir = defaultOutputDir
	}
}

func applyYouTubeDefaults(cfg *Config) {
	if cfg.YouTube.PrivacyStatus == "" {
		cfg.YouTube.PrivacyStatus = defaultPrivacyStatus
	}
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
