package config

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "PGROOM"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "PGROOM_DB_DSN"
	EnvDBHost = "PGROOM_DB_HOST"
	EnvDBUser = "PGROOM_DB_USER"
	EnvDBName = "PGROOM_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
