package embeddings

import (
	"context"
	"errors"
	"fmt"

	"github.com/gocql/gocql"

	"github.com/Meesho/BharatMLStack/trainset-builder/pkg/ds"
	"github.com/Meesho/BharatMLStack/trainset-builder/pkg/infra"
)

const (
	scyllaExistsQueryTemplate   = "SELECT id FROM %s.%s WHERE id = ?"
	scyllaRetrieveQueryTemplate = "SELECT embedding FROM %s.%s WHERE id = ?"
	scyllaDeleteQueryTemplate   = "DELETE FROM %s.%s WHERE id = ?"
)

// ScyllaStore reads embedding blobs from a Scylla table keyed by item id
// with a single blob column named embedding.
type ScyllaStore struct {
	keySpace   string
	table      string
	session    *gocql.Session
	queryCache *ds.SyncMap[string, string]
}

func NewScyllaStore(connection *infra.ScyllaClusterConnection, table string) (*ScyllaStore, error) {
	meta, err := connection.GetMeta()
	if err != nil {
		return nil, err
	}
	keySpace, ok := meta["keyspace"].(string)
	if !ok || keySpace == "" {
		return nil, fmt.Errorf("scylla connection meta has no keyspace")
	}
	conn, err := connection.GetConn()
	if err != nil {
		return nil, err
	}
	session, ok := conn.(*gocql.Session)
	if !ok {
		return nil, fmt.Errorf("invalid gocql session type")
	}
	return &ScyllaStore{
		keySpace:   keySpace,
		table:      table,
		session:    session,
		queryCache: ds.NewSyncMap[string, string](),
	}, nil
}

func (s *ScyllaStore) query(template, op string) string {
	key := s.keySpace + s.table + op
	query, _ := s.queryCache.Get(key)
	if query == "" {
		query = fmt.Sprintf(template, s.keySpace, s.table)
		s.queryCache.Set(key, query)
	}
	return query
}

func (s *ScyllaStore) Exists(ctx context.Context, id int64) (bool, error) {
	var found int64
	err := s.session.Query(s.query(scyllaExistsQueryTemplate, "exists")).
		Bind(id).
		Consistency(gocql.One).
		WithContext(ctx).
		Scan(&found)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gocql.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("checking embedding %d: %w", id, err)
}

func (s *ScyllaStore) Fetch(ctx context.Context, id int64) ([]byte, error) {
	var blob []byte
	err := s.session.Query(s.query(scyllaRetrieveQueryTemplate, "retrieve")).
		Bind(id).
		Consistency(gocql.One).
		WithContext(ctx).
		Scan(&blob)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, fmt.Errorf("id %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("reading embedding %d: %w", id, err)
	}
	return blob, nil
}

func (s *ScyllaStore) Delete(ctx context.Context, id int64) error {
	err := s.session.Query(s.query(scyllaDeleteQueryTemplate, "delete")).
		Bind(id).
		Consistency(gocql.Quorum).
		WithContext(ctx).
		Exec()
	if err != nil {
		return fmt.Errorf("deleting embedding %d: %w", id, err)
	}
	return nil
}

func (s *ScyllaStore) Type() string {
	return "scylla"
}
