package config

import (
	"sync"

	"github.com/spf13/viper"
)

var once sync.Once

// InitEnv binds viper to the process environment. Every other package reads
// configuration through viper keys, so this must run before any Init().
func InitEnv() {
	once.Do(func() {
		viper.AutomaticEnv()
	})
}
