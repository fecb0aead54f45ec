package config

// EnvPrefix namespaces every environment variable the app reads.
const EnvPrefix = "MANGOBOX"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "MANGOBOX_DB_DSN"
	EnvDBHost = "MANGOBOX_DB_HOST"
	EnvDBUser = "MANGOBOX_DB_USER"
	EnvDBName = "MANGOBOX_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
