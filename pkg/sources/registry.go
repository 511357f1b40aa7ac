package sources

import (
	"fmt"
	"sort"
	"sync"
)

var (
	tokenRegistry = make(map[string]TokenFactory)
	forexRegistry = make(map[string]ForexFactory)
	mu            sync.RWMutex
)

// RegisterToken adds a token source factory to the registry
func RegisterToken(name string, factory TokenFactory) {
	mu.Lock()
	defer mu.Unlock()
	tokenRegistry[name] = factory
}

// RegisterForex adds a forex source factory to the registry
func RegisterForex(name string, factory ForexFactory) {
	mu.Lock()
	defer mu.Unlock()
	forexRegistry[name] = factory
}

// CreateToken creates a new token source instance by name
func CreateToken(name string, config map[string]interface{}) (TokenSource, error) {
	mu.RLock()
	defer mu.RUnlock()

	factory, ok := tokenRegistry[name]
	if !ok {
		return nil, fmt.Errorf("%w: token.%s", ErrUnknownSource, name)
	}

	return factory(config)
}

// CreateForex creates a new forex source instance by name
func CreateForex(name string, config map[string]interface{}) (ForexSource, error) {
	mu.RLock()
	defer mu.RUnlock()

	factory, ok := forexRegistry[name]
	if !ok {
		return nil, fmt.Errorf("%w: forex.%s", ErrUnknownSource, name)
	}

	return factory(config)
}

// ListTokenSources returns all registered token source names, sorted
func ListTokenSources() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(tokenRegistry))
	for name := range tokenRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListForexSources returns all registered forex source names, sorted
func ListForexSources() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(forexRegistry))
	for name := range forexRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
