package resolve

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/thinkspaces/thinkspaces"
)

func boolPtr(b bool) *bool { return &b }

func TestRegistry_Builtins(t *testing.T) {
	reg, err := Registry(nil, nil)
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}
	got := reg.Available()
	if strings.Join(got, ",") != strings.Join(Builtins, ",") {
		t.Errorf("Available() = %v, want %v", got, Builtins)
	}
}

func TestRegistry_DisabledIsSkippedAndLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	reg, err := Registry(map[string]Settings{
		"OpenAI": {Enabled: boolPtr(false)},
	}, logger)
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}
	if _, ok := reg.Get("openai"); ok {
		t.Error("disabled provider should not be registered")
	}
	if !strings.Contains(buf.String(), "provider=openai") || !strings.Contains(buf.String(), "disabled in config") {
		t.Errorf("expected skip log, got %q", buf.String())
	}

	_, err = reg.Create("openai", "")
	var unav *thinkspaces.ErrProviderUnavailable
	if !errors.As(err, &unav) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestRegistry_MissingCredentialsStillRegistered(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	reg, err := Registry(nil, nil)
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}
	_, err = reg.Create("groq", "")
	var cfgErr *thinkspaces.ErrConfig
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ErrConfig at construction, got %v", err)
	}
}

func TestRegistry_UnknownProvider(t *testing.T) {
	if _, err := Registry(map[string]Settings{"mystery": {}}, nil); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestFactory_Unknown(t *testing.T) {
	if _, err := Factory("deepseek", Settings{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestFactory_ConfiguredModel(t *testing.T) {
	f, err := Factory("echo", Settings{Model: "configured"})
	if err != nil {
		t.Fatal(err)
	}
	p, err := f("")
	if err != nil {
		t.Fatal(err)
	}
	resp, _ := p.Generate(context.Background(), thinkspaces.NewCompletionRequest("hi", "", nil, nil))
	if resp.Metadata["model"] != "configured" {
		t.Errorf("expected configured model, got %v", resp.Metadata["model"])
	}

	p, _ = f("explicit")
	resp, _ = p.Generate(context.Background(), thinkspaces.NewCompletionRequest("hi", "", nil, nil))
	if resp.Metadata["model"] != "explicit" {
		t.Errorf("expected explicit model, got %v", resp.Metadata["model"])
	}
}

func TestFactory_OllamaBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"from configured server"}`))
	}))
	defer srv.Close()

	f, err := Factory("ollama", Settings{BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	p, err := f("llama3")
	if err != nil {
		t.Fatal(err)
	}
	resp, err := p.Generate(context.Background(), thinkspaces.NewCompletionRequest("hi", "", nil, nil))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Output != "from configured server" {
		t.Errorf("unexpected output %q", resp.Output)
	}
}

func TestFactory_HostedWithKey(t *testing.T) {
	for _, name := range []string{"openai", "groq", "gemini"} {
		t.Run(name, func(t *testing.T) {
			f, err := Factory(name, Settings{APIKey: "test-key"})
			if err != nil {
				t.Fatal(err)
			}
			p, err := f("")
			if err != nil {
				t.Fatalf("construct %s: %v", name, err)
			}
			if p.Name() != name {
				t.Errorf("Name() = %q, want %q", p.Name(), name)
			}
		})
	}
}
