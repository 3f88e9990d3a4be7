package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func TestProvidersCommandHonorsConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thinkspaces.toml")
	cfg := "[providers.groq]\nenabled = false\n\n[providers.gemini]\nenabled = false\n"
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"providers", "--config", path})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	got := strings.Fields(out.String())
	if strings.Join(got, ",") != "echo,ollama,openai" {
		t.Errorf("providers = %v, want [echo ollama openai]", got)
	}
}

func TestAskRequiresAgentFlag(t *testing.T) {
	var errOut bytes.Buffer
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"ask", "hello"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetErr(nil) })

	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected missing --agent error")
	}
}

func TestRenderTerminalKeepsText(t *testing.T) {
	out := renderTerminal("**Insight** about the plan")
	if !strings.Contains(out, "Insight") || !strings.Contains(out, "plan") {
		t.Errorf("rendered = %q", out)
	}
}

func TestLoadAppAppliesExecutorTimeout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thinkspaces.toml")
	cfg := "[database]\npath = \"" + filepath.ToSlash(filepath.Join(dir, "ts.db")) + "\"\n\n[executor]\ntimeout = \"7s\"\n"
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := &cobra.Command{}
	cmd.Flags().String("config", path, "")
	cmd.SetContext(context.Background())

	a, err := loadApp(cmd)
	if err != nil {
		t.Fatalf("loadApp: %v", err)
	}
	t.Cleanup(func() { _ = a.close(context.Background()) })

	if got := a.executor.Timeout(); got != 7*time.Second {
		t.Errorf("executor timeout = %v, want 7s", got)
	}
}
