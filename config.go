package agentai

// ModelConfig configures the Mistral-compatible chat, embedding, and vision
// endpoints. The API key is validated by the clients at construction time, not
// here, so that offline commands (and tests) can still decode the struct.
type ModelConfig struct {
	APIKey           string  `env:"MISTRAL_API_KEY"`
	BaseURL          string  `env:"MISTRAL_BASE_URL,default=https://api.mistral.ai/v1"`
	ModelID          string  `env:"MISTRAL_MODEL,default=mistral-small-latest"`
	VisionModelID    string  `env:"MISTRAL_VISION_MODEL,default=pixtral-12b-2409"`
	EmbeddingModelID string  `env:"MISTRAL_EMBEDDING_MODEL,default=mistral-embed"`
	Temperature      float32 `env:"MISTRAL_TEMPERATURE,default=0.2"`
}

type AgentConfig struct {
	MaxToolLoops        int     `env:"MAX_TOOL_LOOPS,default=5"`
	SimilarityThreshold float64 `env:"SIMILARITY_THRESHOLD,default=0.60"`
}

type CatalogConfig struct {
	CatalogPath  string `env:"FOOD_CATALOG_PATH,default=artifacts/food_catalog.csv"`
	SnapshotPath string `env:"FOOD_CATALOG_SNAPSHOT_PATH,default=artifacts/food_catalog_index.json"`
}

// BedrockConfig configures the Converse-backed chat model used by the Lambda
// entrypoint.
type BedrockConfig struct {
	ModelID     string  `env:"BEDROCK_MODEL_ID,default=us.anthropic.claude-3-7-sonnet-20250219-v1:0"`
	MaxTokens   int32   `env:"BEDROCK_MAX_TOKENS,default=1024"`
	Temperature float32 `env:"BEDROCK_TEMPERATURE,default=0.2"`
	TopP        float32 `env:"BEDROCK_TOP_P,default=0.9"`
}

type NutritionConfig struct {
	APIKey  string `env:"FOODDATA_API_KEY"`
	BaseURL string `env:"FOODDATA_BASE_URL,default=https://api.nal.usda.gov/fdc/v1"`
}

// ImpactConfig holds the token-to-CO2 conversion factors for the end-of-session
// usage report. The defaults are deliberately conservative estimates.
type ImpactConfig struct {
	TokenCO2GramsPer1K float64 `env:"TOKEN_CO2_G_PER_1K,default=0.4"`
	CarCO2GramsPerKM   float64 `env:"CAR_CO2_G_PER_KM,default=120"`
}

// DefaultImpactConfig mirrors the env defaults for callers that skip decoding.
func DefaultImpactConfig() ImpactConfig {
	return ImpactConfig{TokenCO2GramsPer1K: 0.4, CarCO2GramsPerKM: 120}
}
