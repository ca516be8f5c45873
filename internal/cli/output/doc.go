// Package output renders sharedstore-cli results as a table, JSON or YAML.
package output
