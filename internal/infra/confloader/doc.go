// Package confloader loads layered configuration with koanf and watches
// configuration files with fsnotify.
//
// Priority (highest to lowest):
//
//  1. Maps loaded with LoadMap (command-line flags)
//  2. Environment variables
//  3. The configuration file
//  4. Values already present in the target struct
//
// Environment variables carry the SHAREDSTORE_ prefix and use a
// double underscore between nesting levels, so single underscores survive in
// key names: SHAREDSTORE_HOST__ALLOWED_ORIGINS maps to host.allowed_origins.
package confloader
