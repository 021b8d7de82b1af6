package suggest

import (
	"fmt"

	"github.com/jredh-dev/reachout/config"
)

// FromConfig builds the configured Generator. It returns nil, nil when no
// API key is set so the gateway starts unconfigured.
func FromConfig(cfg config.SuggestConfig) (Generator, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}
	switch cfg.Provider {
	case "", "gemini":
		return NewGemini(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	case "openai":
		return NewOpenAI(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown suggest provider: %s", cfg.Provider)
	}
}
