package infra

import "sync"

var (
	mut             sync.Mutex
	ConfIdDBTypeMap = make(map[int]DBType)
)

// InitDBConnectors wires every backend declared through the
// STORAGE_*_ACTIVE_CONFIG_IDS env keys. Safe to call more than once.
func InitDBConnectors() {
	mut.Lock()
	defer mut.Unlock()
	if RedisCluster == nil {
		initRedisClusterConns()
	}
	if RedisStandalone == nil {
		initRedisStandaloneConns()
	}
	if Scylla == nil {
		initScyllaClusterConns()
	}
}
