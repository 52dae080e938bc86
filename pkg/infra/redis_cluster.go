package infra

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var (
	RedisCluster *RedisClusterConnectors
)

type RedisClusterConnection struct {
	Client redis.UniversalClient
	Meta   map[string]interface{}
}

func (c *RedisClusterConnection) GetConn() (interface{}, error) {
	if c.Client == nil {
		return nil, errors.New("connection nil")
	}
	return c.Client, nil
}

func (c *RedisClusterConnection) GetMeta() (map[string]interface{}, error) {
	if c.Meta == nil {
		return nil, errors.New("meta nil")
	}
	return c.Meta, nil
}

func (c *RedisClusterConnection) IsLive() bool {
	return c.Client.Ping(context.Background()).Err() == nil
}

type RedisClusterConnectors struct {
	RedisClusterConnections map[int]ConnectionFacade
}

func (s *RedisClusterConnectors) GetConnection(configId int) (ConnectionFacade, error) {
	conn, ok := s.RedisClusterConnections[configId]
	if !ok {
		return nil, errors.New("connection not found")
	}
	return conn, nil
}

func initRedisClusterConns() {
	activeConfIdsStr := viper.GetString(storageRedisClusterPrefix + activeConfIds)
	if activeConfIdsStr == "" {
		return
	}
	activeIds := strings.Split(activeConfIdsStr, ",")
	RedisClusterConnections := make(map[int]ConnectionFacade, len(activeIds))
	for _, configIdStr := range activeIds {
		envPrefix := storageRedisClusterPrefix + configIdStr
		cfg, err := BuildRedisClusterOptionsFromEnv(envPrefix)
		if err != nil {
			log.Error().Err(err).Msg("Error building redis cluster config")
			panic(err)
		}
		configId, err := strconv.Atoi(configIdStr)
		if err != nil {
			log.Error().Err(err).Msg("Error converting configId to int")
			panic(err)
		}
		if _, ok := ConfIdDBTypeMap[configId]; ok {
			log.Error().Msgf("Duplicate config id %d", configId)
			panic("Duplicate config id")
		}
		ConfIdDBTypeMap[configId] = DBTypeRedisCluster
		RedisClusterConnections[configId] = &RedisClusterConnection{
			Client: redis.NewClusterClient(cfg),
			Meta: map[string]interface{}{
				"configId": configId,
				"type":     DBTypeRedisCluster,
			},
		}
	}
	RedisCluster = &RedisClusterConnectors{
		RedisClusterConnections: RedisClusterConnections,
	}
}
