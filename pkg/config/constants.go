package config

const (
	// EnvPrefix scopes every environment variable read by envconfig.
	EnvPrefix = "FLEETFUEL"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "FLEETFUEL_DB_DSN"
	EnvDBHost = "FLEETFUEL_DB_HOST"
	EnvDBUser = "FLEETFUEL_DB_USER"
	EnvDBName = "FLEETFUEL_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
