package config

import (
	"time"

	"github.com/procureflow/procureflow/internal/logger"
)

// Auth holds token issuing settings.
type Auth struct {
	// JWTSecret signs bearer tokens. Must be set.
	JWTSecret string
	// TokenExpiry is the validity horizon of issued tokens.
	// Zero means the 7 day default.
	TokenExpiry time.Duration
}

// Salesforce holds the external case mirror connection settings.
// Leaving ClientID/ClientSecret empty disables the mirror; its routes
// then report the service as unavailable.
type Salesforce struct {
	InstanceURL   string
	Username      string
	Password      string
	SecurityToken string
	ClientID      string
	ClientSecret  string
	APIVersion    string
}

// Config overall data structure.
type Config struct {
	DevMode    bool // enable dev mode for development
	DB         DB
	Log        logger.Log
	Title      string
	Webserver  Webserver
	Auth       Auth
	Salesforce Salesforce
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool   // disable recover middleware
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time for shutdown
	URL            string // base url for the webserver
	CORSOrigins    string // comma separated allowed origins; empty allows all
}
