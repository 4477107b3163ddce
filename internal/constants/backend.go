package constants

// Backend names a key-value storage implementation
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendRedis    Backend = "redis"
	BackendMongo    Backend = "mongo"
	BackendJSON     Backend = "json"
	BackendMemory   Backend = "memory"
)
