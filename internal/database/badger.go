package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/imyashkale/shutdownmanager/internal/models"
)

const (
	applicationPrefix = "application:"
	serverPrefix      = "server:"
)

// BadgerDB persists applications and servers in an embedded Badger database.
// Values are JSON encoded under prefixed keys.
type BadgerDB struct {
	db *badger.DB
}

// NewBadgerDB opens (or creates) a Badger database at path. An empty path
// opens an in-memory database.
func NewBadgerDB(path string) (*BadgerDB, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(filepath.Clean(path))
	}
	opts.Logger = nil
	opts = opts.WithValueLogFileSize(1 << 24)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", path, err)
	}
	return &BadgerDB{db: db}, nil
}

// Close releases the database
func (b *BadgerDB) Close() error {
	return b.db.Close()
}

// PutApplication creates or replaces an application
func (b *BadgerDB) PutApplication(ctx context.Context, app *models.Application) error {
	return b.put(applicationPrefix+app.Id, toApplicationItem(app))
}

// DeleteApplication removes an application, returning ErrNotFound if absent
func (b *BadgerDB) DeleteApplication(ctx context.Context, id string) error {
	return b.delete(applicationPrefix + id)
}

// GetAllApplications retrieves every stored application
func (b *BadgerDB) GetAllApplications(ctx context.Context) ([]*models.Application, error) {
	apps := make([]*models.Application, 0)
	err := b.scan(applicationPrefix, func(v []byte) error {
		var it applicationItem
		if err := json.Unmarshal(v, &it); err != nil {
			return fmt.Errorf("failed to unmarshal application: %w", err)
		}
		apps = append(apps, it.toDomain())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return apps, nil
}

// PutServer creates or replaces a server
func (b *BadgerDB) PutServer(ctx context.Context, srv *models.Server) error {
	return b.put(serverPrefix+srv.Id, toServerItem(srv))
}

// DeleteServer removes a server, returning ErrNotFound if absent
func (b *BadgerDB) DeleteServer(ctx context.Context, id string) error {
	return b.delete(serverPrefix + id)
}

// GetAllServers retrieves every stored server
func (b *BadgerDB) GetAllServers(ctx context.Context) ([]*models.Server, error) {
	servers := make([]*models.Server, 0)
	err := b.scan(serverPrefix, func(v []byte) error {
		var it serverItem
		if err := json.Unmarshal(v, &it); err != nil {
			return fmt.Errorf("failed to unmarshal server: %w", err)
		}
		servers = append(servers, it.toDomain())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return servers, nil
}

func (b *BadgerDB) put(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

func (b *BadgerDB) delete(key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(key)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Delete([]byte(key))
	})
}

func (b *BadgerDB) scan(prefix string, fn func([]byte) error) error {
	return b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			if err := it.Item().Value(fn); err != nil {
				return err
			}
		}
		return nil
	})
}
