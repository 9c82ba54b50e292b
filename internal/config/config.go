package config

const (
	SchemaVersion = 1

	DefaultAPIBase             = "https://api.lighthouse.app"
	DefaultPollIntervalSeconds = 0 // polling off unless asked for

	MinPollIntervalSeconds = 5
	MaxPollIntervalSeconds = 3600
)

// RawConfig mirrors ~/.lighthouse/config.json. Pointer fields distinguish
// "absent" from zero values.
type RawConfig struct {
	SchemaVersion       *int    `json:"schemaVersion,omitempty"`
	APIBase             *string `json:"apiBase,omitempty"`
	Token               *string `json:"token,omitempty"`
	PollIntervalSeconds *int    `json:"pollIntervalSeconds,omitempty"`
	SiteCategory        *string `json:"siteCategory,omitempty"`
}

// ResolvedConfig is the merged view the rest of the program consumes.
type ResolvedConfig struct {
	SchemaVersion       int
	APIBase             string
	Token               string
	PollIntervalSeconds int
	SiteCategory        string
}

func DefaultResolvedConfig() ResolvedConfig {
	return ResolvedConfig{
		SchemaVersion:       SchemaVersion,
		APIBase:             DefaultAPIBase,
		PollIntervalSeconds: DefaultPollIntervalSeconds,
	}
}

// Env carries process-environment overrides. Precedence per key:
// environment > config file > defaults.
type Env struct {
	APIBase string
	Token   string
}

func Resolve(file RawConfig, env Env) ResolvedConfig {
	resolved := DefaultResolvedConfig()

	if file.APIBase != nil && *file.APIBase != "" {
		resolved.APIBase = *file.APIBase
	}
	if env.APIBase != "" {
		resolved.APIBase = env.APIBase
	}

	// Token order mirrors the web client's cookie-then-local-storage
	// fallback: stored config first, environment second.
	if file.Token != nil && *file.Token != "" {
		resolved.Token = *file.Token
	} else if env.Token != "" {
		resolved.Token = env.Token
	}

	if file.PollIntervalSeconds != nil {
		resolved.PollIntervalSeconds = clampPollInterval(*file.PollIntervalSeconds)
	}
	if file.SiteCategory != nil {
		resolved.SiteCategory = *file.SiteCategory
	}
	return resolved
}

func clampPollInterval(v int) int {
	if v <= 0 {
		return 0
	}
	if v < MinPollIntervalSeconds {
		return MinPollIntervalSeconds
	}
	if v > MaxPollIntervalSeconds {
		return MaxPollIntervalSeconds
	}
	return v
}

// Token implements api.TokenSource for a resolved config.
func (c ResolvedConfig) TokenValue() (string, bool) {
	return c.Token, c.Token != ""
}
