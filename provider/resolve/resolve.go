// Package resolve builds provider factories and the provider registry from
// provider-agnostic settings.
package resolve

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/thinkspaces/thinkspaces"
	"github.com/thinkspaces/thinkspaces/provider/echo"
	"github.com/thinkspaces/thinkspaces/provider/gemini"
	"github.com/thinkspaces/thinkspaces/provider/groq"
	"github.com/thinkspaces/thinkspaces/provider/ollama"
	"github.com/thinkspaces/thinkspaces/provider/openai"
)

// Builtins lists the provider names Registry knows how to construct.
var Builtins = []string{"echo", "gemini", "groq", "ollama", "openai"}

// Settings holds provider-agnostic configuration for one provider.
// Zero values mean "use the provider default"; a nil Enabled means enabled.
type Settings struct {
	Enabled *bool         `toml:"enabled"`
	APIKey  string        `toml:"api_key"`
	BaseURL string        `toml:"base_url"`
	Model   string        `toml:"model"`
	Timeout time.Duration `toml:"timeout"`
}

// IsEnabled reports whether the provider should be registered.
func (s Settings) IsEnabled() bool { return s.Enabled == nil || *s.Enabled }

// Factory returns a constructor for the named built-in provider. The
// configured model is used when the caller passes none.
func Factory(name string, s Settings) (thinkspaces.Factory, error) {
	var f thinkspaces.Factory
	switch strings.ToLower(name) {
	case "echo":
		f = echo.Factory
	case "openai":
		f = openaiFactory(s)
	case "groq":
		f = groqFactory(s)
	case "ollama":
		f = ollamaFactory(s)
	case "gemini":
		f = geminiFactory(s)
	default:
		return nil, fmt.Errorf("resolve: unknown provider %q", name)
	}
	if s.Model == "" {
		return f, nil
	}
	return func(model string) (thinkspaces.Provider, error) {
		if model == "" {
			model = s.Model
		}
		return f(model)
	}, nil
}

// Registry registers every enabled built-in provider. Providers disabled in
// settings are skipped and the reason is logged. Hosted providers without
// credentials are still registered: constructing them fails with
// *thinkspaces.ErrConfig, which callers can tell apart from an unknown name.
func Registry(settings map[string]Settings, logger *slog.Logger) (*thinkspaces.Registry, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	for name := range settings {
		if !slices.Contains(Builtins, strings.ToLower(name)) {
			return nil, fmt.Errorf("resolve: unknown provider %q in settings", name)
		}
	}

	reg := thinkspaces.NewRegistry()
	for _, name := range Builtins {
		s := lookup(settings, name)
		if !s.IsEnabled() {
			logger.Info("provider skipped", "provider", name, "reason", "disabled in config")
			continue
		}
		f, err := Factory(name, s)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(name, f); err != nil {
			return nil, err
		}
		if reason := credentialGap(name, s); reason != "" {
			logger.Info("provider registered without credentials", "provider", name, "reason", reason)
		} else {
			logger.Debug("provider registered", "provider", name)
		}
	}
	return reg, nil
}

func lookup(settings map[string]Settings, name string) Settings {
	for k, s := range settings {
		if strings.EqualFold(k, name) {
			return s
		}
	}
	return Settings{}
}

// credentialGap names the missing credential for hosted providers.
func credentialGap(name string, s Settings) string {
	if s.APIKey != "" {
		return ""
	}
	var env string
	switch name {
	case "openai":
		env = openai.EnvAPIKey
	case "groq":
		env = groq.EnvAPIKey
	case "gemini":
		env = gemini.EnvAPIKey
	default:
		return ""
	}
	if os.Getenv(env) != "" {
		return ""
	}
	return env + " is not set"
}

func openaiFactory(s Settings) thinkspaces.Factory {
	var opts []openai.Option
	if s.APIKey != "" {
		opts = append(opts, openai.WithAPIKey(s.APIKey))
	}
	if s.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(s.BaseURL))
	}
	if s.Timeout > 0 {
		opts = append(opts, openai.WithTimeout(s.Timeout))
	}
	return openai.Factory(opts...)
}

func groqFactory(s Settings) thinkspaces.Factory {
	var opts []groq.Option
	if s.APIKey != "" {
		opts = append(opts, groq.WithAPIKey(s.APIKey))
	}
	if s.BaseURL != "" {
		opts = append(opts, groq.WithBaseURL(s.BaseURL))
	}
	if s.Timeout > 0 {
		opts = append(opts, groq.WithTimeout(s.Timeout))
	}
	return groq.Factory(opts...)
}

func ollamaFactory(s Settings) thinkspaces.Factory {
	var opts []ollama.Option
	if s.BaseURL != "" {
		opts = append(opts, ollama.WithBaseURL(s.BaseURL))
	}
	if s.Timeout > 0 {
		opts = append(opts, ollama.WithTimeout(s.Timeout))
	}
	return ollama.Factory(opts...)
}

func geminiFactory(s Settings) thinkspaces.Factory {
	var opts []gemini.Option
	if s.APIKey != "" {
		opts = append(opts, gemini.WithAPIKey(s.APIKey))
	}
	if s.BaseURL != "" {
		opts = append(opts, gemini.WithBaseURL(s.BaseURL))
	}
	if s.Timeout > 0 {
		opts = append(opts, gemini.WithTimeout(s.Timeout))
	}
	return gemini.Factory(opts...)
}
