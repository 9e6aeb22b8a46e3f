// Package database handles the MySQL connection used by table-import
// steps. It wraps GORM configuration (DSN construction, pooling, silent
// logging, an upfront ping) so the rest of the application only sees a
// ready *gorm.DB or an error.
package database
