package labels

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/Meesho/BharatMLStack/trainset-builder/internal/config"
)

// Load builds the dictionary from the configured source.
func Load(ctx context.Context, fs afero.Fs, cfg config.Labels) (*Dictionary, error) {
	switch cfg.Source {
	case config.LabelSourceFile:
		return LoadFromFile(fs, cfg.FilePath)
	case config.LabelSourceEtcd:
		return LoadFromEtcd(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown label source %q", cfg.Source)
	}
}

// LoadFromFile reads a dictionary file, one label per line, UTF-8, no
// header.
func LoadFromFile(fs afero.Fs, path string) (*Dictionary, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading label dictionary %s: %w", path, err)
	}
	dict, err := NewDictionary(strings.Split(string(data), "\n"))
	if err != nil {
		return nil, fmt.Errorf("label dictionary %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("labels", dict.Size()).Msg("Label dictionary loaded")
	return dict, nil
}

// LoadFromEtcd fetches the dictionary value held under one key in the
// platform config tree, newline-separated like the file format. One-shot
// read, no watch: the dictionary is immutable for the lifetime of a job.
func LoadFromEtcd(ctx context.Context, cfg config.Labels) (*Dictionary, error) {
	timeout := time.Duration(cfg.EtcdTimeoutMs) * time.Millisecond
	client, err := clientv3.New(clientv3.Config{
		Endpoints:           cfg.EtcdEndpoints,
		Username:            cfg.EtcdUsername,
		Password:            cfg.EtcdPassword,
		DialTimeout:         timeout,
		DialKeepAliveTime:   timeout,
		PermitWithoutStream: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to etcd: %w", err)
	}
	defer client.Close()

	getCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	resp, err := client.Get(getCtx, cfg.EtcdKey)
	if err != nil {
		return nil, fmt.Errorf("reading label dictionary from etcd key %s: %w", cfg.EtcdKey, err)
	}
	if len(resp.Kvs) == 0 {
		return nil, fmt.Errorf("etcd key %s: %w", cfg.EtcdKey, ErrEmptyDictionary)
	}
	dict, err := NewDictionary(strings.Split(string(resp.Kvs[0].Value), "\n"))
	if err != nil {
		return nil, fmt.Errorf("etcd key %s: %w", cfg.EtcdKey, err)
	}
	log.Info().Str("key", cfg.EtcdKey).Int("labels", dict.Size()).Msg("Label dictionary loaded from etcd")
	return dict, nil
}
