// Package environment parses APP_ENV and carries the result through request contexts.
package environment
