package config

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type StorageConfig interface {
	GetStorageBackend() string
	GetDatabaseURL() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

// GetStorageBackend returns StorageMemory unless STORAGE selects postgres.
func (Storage) GetStorageBackend() string {
	if GetEnv("STORAGE", StorageMemory) == StoragePostgres {
		return StoragePostgres
	}
	return StorageMemory
}

func (Storage) GetDatabaseURL() string {
	return GetEnv("DATABASE_URL", "")
}
