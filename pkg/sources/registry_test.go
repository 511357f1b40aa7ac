package sources

import (
	"context"
	"errors"
	"sort"
	"testing"
)

type stubTokenSource struct {
	name string
}

func (s *stubTokenSource) Name() string { return s.name }

func (s *stubTokenSource) FetchQuote(ctx context.Context, asset Asset) (Quote, error) {
	return Quote{}, nil
}

type stubForexSource struct {
	name string
}

func (s *stubForexSource) Name() string { return s.name }

func (s *stubForexSource) FetchRates(ctx context.Context, symbols []string) (map[string]float64, error) {
	return nil, nil
}

func TestCreateToken_Unknown(t *testing.T) {
	_, err := CreateToken("does-not-exist", nil)
	if !errors.Is(err, ErrUnknownSource) {
		t.Errorf("Expected ErrUnknownSource, got %v", err)
	}
}

func TestCreateForex_Unknown(t *testing.T) {
	_, err := CreateForex("does-not-exist", nil)
	if !errors.Is(err, ErrUnknownSource) {
		t.Errorf("Expected ErrUnknownSource, got %v", err)
	}
}

func TestRegisterAndCreateToken(t *testing.T) {
	var gotConfig map[string]interface{}
	RegisterToken("registry-test-token", func(config map[string]interface{}) (TokenSource, error) {
		gotConfig = config
		return &stubTokenSource{name: "registry-test-token"}, nil
	})

	source, err := CreateToken("registry-test-token", map[string]interface{}{"api_key": "k"})
	if err != nil {
		t.Fatalf("CreateToken failed: %v", err)
	}
	if source.Name() != "registry-test-token" {
		t.Errorf("Expected name 'registry-test-token', got '%s'", source.Name())
	}
	if gotConfig["api_key"] != "k" {
		t.Error("Expected config to be passed to the factory")
	}
}

func TestRegisterAndCreateForex(t *testing.T) {
	RegisterForex("registry-test-forex", func(config map[string]interface{}) (ForexSource, error) {
		return &stubForexSource{name: "registry-test-forex"}, nil
	})

	source, err := CreateForex("registry-test-forex", nil)
	if err != nil {
		t.Fatalf("CreateForex failed: %v", err)
	}
	if source.Name() != "registry-test-forex" {
		t.Errorf("Expected name 'registry-test-forex', got '%s'", source.Name())
	}
}

func TestListSources_Sorted(t *testing.T) {
	RegisterToken("zz-registry-test", func(config map[string]interface{}) (TokenSource, error) {
		return &stubTokenSource{name: "zz-registry-test"}, nil
	})
	RegisterToken("aa-registry-test", func(config map[string]interface{}) (TokenSource, error) {
		return &stubTokenSource{name: "aa-registry-test"}, nil
	})

	names := ListTokenSources()
	if !sort.StringsAreSorted(names) {
		t.Errorf("Expected sorted names, got %v", names)
	}

	found := 0
	for _, name := range names {
		if name == "zz-registry-test" || name == "aa-registry-test" {
			found++
		}
	}
	if found != 2 {
		t.Errorf("Expected both registered names in %v", names)
	}
}
