// Package config loads fcdbd's YAML configuration file and validates
// it fail-closed: a malformed file or an out-of-range field is a
// startup error, never a silently clamped default.
package config
