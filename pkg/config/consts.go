package config

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "SHOPHUB"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SHOPHUB_DB_DSN"
	EnvDBHost = "SHOPHUB_DB_HOST"
	EnvDBUser = "SHOPHUB_DB_USER"
	EnvDBName = "SHOPHUB_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
