// internal/config/database.go
package config

import (
	"fmt"
)

// Record store drivers accepted in DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongoDB  = "mongodb"
)

// DSN returns the connection string for the configured driver.
func (d *DatabaseConfig) DSN() string {
	switch d.Driver {
	case DriverSQLite:
		return d.SQLitePath
	case DriverMongoDB:
		return d.MongoURI
	default:
		return fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
		)
	}
}

// IsRelational reports whether the driver is served through GORM.
func (d *DatabaseConfig) IsRelational() bool {
	return d.Driver == DriverPostgres || d.Driver == DriverSQLite
}
