package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound requests.
const AccessTokenHeaderName = "access_token"

// TokenTypeBearer is reported in token responses.
const TokenTypeBearer = "bearer"

// Environment names recognised by the server configuration.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)
