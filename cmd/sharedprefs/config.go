package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/CreativeUnicorns/sharedprefs"
	"github.com/CreativeUnicorns/sharedprefs/cache"
	"github.com/CreativeUnicorns/sharedprefs/encryption"
	"github.com/CreativeUnicorns/sharedprefs/storage"
)

// options are the persistent flags shared by every command.
type options struct {
	backend       string
	dsn           string
	cache         string
	redisAddr     string
	redisPassword string
	redisDB       int
	encrypt       bool
	logLevel      string
}

func (o *options) register(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&o.backend, "backend", "file", "storage backend: memory, file, sqlite or postgres")
	f.StringVar(&o.dsn, "dsn", "", "file path, SQLite path or PostgreSQL connection string for the backend")
	f.StringVar(&o.cache, "cache", "none", "read cache: none, memory or redis")
	f.StringVar(&o.redisAddr, "redis-addr", "localhost:6379", "Redis address when --cache=redis")
	f.StringVar(&o.redisPassword, "redis-password", "", "Redis password")
	f.IntVar(&o.redisDB, "redis-db", 0, "Redis database number")
	f.BoolVar(&o.encrypt, "encrypt", false, "encrypt string values at rest with the key in "+encryption.EnvKeyName)
	f.StringVar(&o.logLevel, "log-level", "info", "log level: debug, info, warn or error")
}

// envOverrides maps environment variables onto flags. A flag given on the
// command line wins over its variable.
var envOverrides = []struct {
	env  string
	flag string
}{
	{"SHAREDPREFS_BACKEND", "backend"},
	{"SHAREDPREFS_DSN", "dsn"},
	{"SHAREDPREFS_CACHE", "cache"},
	{"SHAREDPREFS_REDIS_ADDR", "redis-addr"},
	{"SHAREDPREFS_REDIS_PASSWORD", "redis-password"},
	{"SHAREDPREFS_REDIS_DB", "redis-db"},
	{"SHAREDPREFS_ENCRYPT", "encrypt"},
	{"SHAREDPREFS_LOG_LEVEL", "log-level"},
	{"SHAREDPREFS_LISTEN_ADDR", "listen-addr"},
	{"SHAREDPREFS_SCREENS", "screens"},
}

func applyEnvOverrides(cmd *cobra.Command) error {
	flags := cmd.Flags()
	for _, o := range envOverrides {
		raw := os.Getenv(o.env)
		if raw == "" {
			continue
		}
		if flags.Lookup(o.flag) == nil || flags.Changed(o.flag) {
			continue
		}
		if err := flags.Set(o.flag, raw); err != nil {
			return fmt.Errorf("invalid %s=%q: %w", o.env, raw, err)
		}
	}
	return nil
}

func (o *options) newLogger(w io.Writer) (sharedprefs.Logger, error) {
	level, err := sharedprefs.ParseLogLevel(o.logLevel)
	if err != nil {
		return nil, err
	}
	return sharedprefs.NewLogger(w, level), nil
}

// openStorage opens the configured backend, sealing string values with enc
// when it is non-nil.
func (o *options) openStorage(enc sharedprefs.Encryptor) (sharedprefs.Storage, error) {
	var (
		store sharedprefs.Storage
		err   error
	)
	switch o.backend {
	case "memory":
		store = storage.NewMemoryStorage()
	case "file":
		path := o.dsn
		if path == "" {
			path = storage.DefaultFilePath()
		}
		store, err = storage.NewFileStorage(path)
	case "sqlite":
		path := o.dsn
		if path == "" {
			path = "sharedprefs.db"
		}
		store, err = storage.NewSQLiteStorage(path)
	case "postgres":
		if o.dsn == "" {
			return nil, errors.New("--dsn is required for the postgres backend")
		}
		store, err = storage.NewPostgresStorage(o.dsn)
	default:
		return nil, fmt.Errorf("unknown backend %q", o.backend)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", o.backend, err)
	}

	if enc == nil {
		return store, nil
	}
	return storage.NewEncryptedStorage(store, enc), nil
}

func (o *options) openCache() (sharedprefs.Cache, error) {
	switch o.cache {
	case "none", "":
		return nil, nil
	case "memory":
		return cache.NewMemoryCache(), nil
	case "redis":
		return cache.NewRedisCache(o.redisAddr, o.redisPassword, o.redisDB)
	default:
		return nil, fmt.Errorf("unknown cache %q", o.cache)
	}
}

// newManager wires storage, cache and logger into a Manager. With --encrypt the
// same key seals values in storage and entries in the cache.
func (o *options) newManager(logger sharedprefs.Logger) (*sharedprefs.Manager, error) {
	var enc sharedprefs.Encryptor
	if o.encrypt {
		adapter, err := sharedprefs.NewEncryptionAdapter()
		if err != nil {
			return nil, fmt.Errorf("enabling encryption: %w", err)
		}
		enc = adapter
	}

	store, err := o.openStorage(enc)
	if err != nil {
		return nil, err
	}
	c, err := o.openCache()
	if err != nil {
		store.Close()
		return nil, err
	}

	opts := []sharedprefs.Option{
		sharedprefs.WithStorage(store),
		sharedprefs.WithLogger(logger),
	}
	if c != nil {
		opts = append(opts, sharedprefs.WithCache(c))
		if enc != nil {
			opts = append(opts, sharedprefs.WithCacheEncryptor(enc))
		}
	}
	return sharedprefs.New(opts...)
}
