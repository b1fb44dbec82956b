// Package timezone anchors all time handling to the configured hospital
// timezone. Surgery dates and times arrive as local wall-clock strings, so
// parsing and formatting must go through this package rather than the UTC
// defaults of the time package.
//
// The timezone comes from the APP_TIMEZONE environment variable (IANA names,
// e.g. "Asia/Jakarta") and is loaded when the package is imported.
package timezone
