package providers

import (
	"testing"
)

func TestRegistry(t *testing.T) {
	t.Run("register and get LLM", func(t *testing.T) {
		r := NewRegistry()
		mock := NewMockClient()

		r.RegisterLLM("test-llm", mock)

		client, err := r.GetLLM("test-llm")
		if err != nil {
			t.Fatalf("GetLLM() error = %v", err)
		}
		if client != mock {
			t.Error("got different client than registered")
		}
		if !r.HasLLM("test-llm") {
			t.Error("HasLLM() = false for registered LLM")
		}
	})

	t.Run("get nonexistent LLM", func(t *testing.T) {
		r := NewRegistry()
		if _, err := r.GetLLM("nonexistent"); err == nil {
			t.Error("expected error for nonexistent LLM")
		}
	})

	t.Run("list is sorted", func(t *testing.T) {
		r := NewRegistry()
		r.RegisterLLM("zeta", NewMockClient())
		r.RegisterLLM("alpha", NewMockClient())

		got := r.ListLLM()
		if len(got) != 2 || got[0] != "alpha" || got[1] != "zeta" {
			t.Fatalf("ListLLM() = %v", got)
		}
	})
}

func TestNewRegistryFromConfig(t *testing.T) {
	r, err := NewRegistryFromConfig(RegistryConfig{
		LLMProviders: map[string]LLMProviderConfig{
			"openai":   {Type: "openai", Model: "gpt-4o", APIKey: "k", Enabled: true},
			"disabled": {Type: "openai", Enabled: false},
		},
	})
	if err != nil {
		t.Fatalf("NewRegistryFromConfig() error = %v", err)
	}

	client, err := r.GetLLM("openai")
	if err != nil {
		t.Fatalf("GetLLM(openai) error = %v", err)
	}
	oc, ok := client.(*OpenAIClient)
	if !ok {
		t.Fatalf("expected *OpenAIClient, got %T", client)
	}
	if oc.Model() != "gpt-4o" {
		t.Fatalf("expected model gpt-4o, got %s", oc.Model())
	}
	if r.HasLLM("disabled") {
		t.Error("disabled provider should be skipped")
	}

	_, err = NewRegistryFromConfig(RegistryConfig{
		LLMProviders: map[string]LLMProviderConfig{
			"bad": {Type: "carrier-pigeon", Enabled: true},
		},
	})
	if err == nil {
		t.Fatal("expected error for unknown provider type")
	}
}
