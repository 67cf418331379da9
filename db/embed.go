// Package db provides the embedded SQL schema for the postgres driver.
package db

import _ "embed"

// Schema is a text/template of the DDL. Table and index names are filled in
// from configuration and must already be quoted identifiers.
//
//go:embed migrations/001_schema.sql
var Schema string
