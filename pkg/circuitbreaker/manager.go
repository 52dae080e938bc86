package circuitbreaker

import (
	"fmt"
	"sync"
)

type ManagerFactory struct {
	managers sync.Map
}

var (
	factory *ManagerFactory
	once    sync.Once
)

type Manager interface {
	GetOrCreateManualCB(key string) (ManualCircuitBreaker, error)
	UpdateCBConfig(Config) error
	GetCBConfig() Config
}

type manager struct {
	cbreakers sync.Map
	cbConfig  *Config
	envPrefix string
}

func GetFactory() *ManagerFactory {
	once.Do(func() {
		factory = &ManagerFactory{
			managers: sync.Map{},
		}
	})
	return factory
}

// GetManager returns the breaker manager for an env prefix, creating it
// with the default config on first use.
func GetManager(envPrefix string) Manager {
	factory := GetFactory()
	m, _ := factory.managers.LoadOrStore(envPrefix, &manager{
		cbreakers: sync.Map{},
		envPrefix: envPrefix,
		cbConfig:  BuildConfig(envPrefix),
	})
	return m.(Manager)
}

func (m *manager) GetOrCreateManualCB(key string) (ManualCircuitBreaker, error) {
	if m.cbConfig == nil {
		return nil, fmt.Errorf("circuit breaker config is nil")
	}

	if cbreaker, ok := m.cbreakers.Load(key); ok {
		if typedBreaker, castOk := cbreaker.(ManualCircuitBreaker); castOk {
			return typedBreaker, nil
		}
	}
	newBreaker := GetManualCircuitBreaker(m.cbConfig)
	actual, _ := m.cbreakers.LoadOrStore(key, newBreaker)
	if typedBreaker, castOk := actual.(ManualCircuitBreaker); castOk {
		return typedBreaker, nil
	}

	return nil, fmt.Errorf("item in sync.Map is not a ManualCircuitBreaker")
}

func (m *manager) GetCBConfig() Config {
	return *m.cbConfig
}

// UpdateCBConfig swaps the config and rebuilds every breaker under it.
func (m *manager) UpdateCBConfig(cbConfig Config) error {
	m.cbConfig = &cbConfig
	m.cbreakers.Range(func(key, value interface{}) bool {
		if _, ok := value.(ManualCircuitBreaker); ok {
			m.cbreakers.Store(key, GetManualCircuitBreaker(&cbConfig))
		}
		return true
	})
	return nil
}
