package llm

import (
	"os"
	"strings"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "gemini without API key",
			config:  Config{Provider: "gemini"},
			wantErr: true,
			errMsg:  "GEMINI_API_KEY",
		},
		{
			name:   "gemini with API key",
			config: Config{Provider: "gemini", APIKey: "test-key"},
		},
		{
			name:   "empty provider defaults to gemini",
			config: Config{Provider: "", APIKey: "test-key"},
		},
		{
			name:    "vertex without project",
			config:  Config{Provider: "vertex"},
			wantErr: true,
			errMsg:  "VERTEX_PROJECT",
		},
		{
			name:    "vertex without location",
			config:  Config{Provider: "vertex", VertexProject: "my-project"},
			wantErr: true,
			errMsg:  "VERTEX_LOCATION",
		},
		{
			name: "vertex with all fields",
			config: Config{
				Provider:       "vertex",
				VertexProject:  "my-project",
				VertexLocation: "us-central1",
			},
		},
		{
			name:    "ollama without URL",
			config:  Config{Provider: "ollama"},
			wantErr: true,
			errMsg:  "OLLAMA_URL",
		},
		{
			name:   "ollama with URL",
			config: Config{Provider: "ollama", OllamaURL: "http://localhost:11434"},
		},
		{
			name:    "unknown provider",
			config:  Config{Provider: "openrouter"},
			wantErr: true,
			errMsg:  "unknown LLM provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errMsg)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// unsetenv clears key for the duration of the test.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestConfigFromEnv(t *testing.T) {
	for _, k := range []string{"LLM_PROVIDER", "LLM_MODEL", "GEMINI_API_KEY", "OLLAMA_URL", "VERTEX_PROJECT", "VERTEX_LOCATION"} {
		unsetenv(t, k)
	}

	t.Run("default provider is gemini", func(t *testing.T) {
		cfg := ConfigFromEnv()
		if cfg.Provider != ProviderGemini {
			t.Errorf("Provider = %q, want gemini", cfg.Provider)
		}
		if cfg.Model != "gemini-2.0-flash" {
			t.Errorf("Model = %q, want gemini-2.0-flash", cfg.Model)
		}
		if cfg.OllamaURL != "http://localhost:11434" {
			t.Errorf("OllamaURL = %q, want http://localhost:11434", cfg.OllamaURL)
		}
	})

	t.Run("ollama default model", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", "ollama")
		cfg := ConfigFromEnv()
		if cfg.Model != "llama3.2" {
			t.Errorf("Model = %q, want llama3.2", cfg.Model)
		}
	})

	t.Run("custom model", func(t *testing.T) {
		t.Setenv("LLM_MODEL", "gemini-1.5-pro")
		cfg := ConfigFromEnv()
		if cfg.Model != "gemini-1.5-pro" {
			t.Errorf("Model = %q, want gemini-1.5-pro", cfg.Model)
		}
	})

	t.Run("reads all env vars", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", "vertex")
		t.Setenv("GEMINI_API_KEY", "gemini-key")
		t.Setenv("VERTEX_PROJECT", "my-project")
		t.Setenv("VERTEX_LOCATION", "us-east1")
		t.Setenv("OLLAMA_URL", "http://custom:11434")

		cfg := ConfigFromEnv()
		if cfg.APIKey != "gemini-key" {
			t.Errorf("APIKey = %q, want gemini-key", cfg.APIKey)
		}
		if cfg.VertexProject != "my-project" {
			t.Errorf("VertexProject = %q, want my-project", cfg.VertexProject)
		}
		if cfg.VertexLocation != "us-east1" {
			t.Errorf("VertexLocation = %q, want us-east1", cfg.VertexLocation)
		}
		if cfg.OllamaURL != "http://custom:11434" {
			t.Errorf("OllamaURL = %q, want http://custom:11434", cfg.OllamaURL)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})
}

func TestSetupHelp(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{"gemini", "GEMINI_API_KEY"},
		{"vertex", "VERTEX_PROJECT"},
		{"ollama", "ollama serve"},
		{"other", "LLM_PROVIDER"},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			if got := (Config{Provider: tt.provider}).SetupHelp(); !strings.Contains(got, tt.want) {
				t.Errorf("SetupHelp() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}
