// Package config provides configuration structures and utilities for the
// server and the one-shot lookup command. It defines listen and egress
// settings, worker-pool sizing, catalog caching, and report preferences.
package config
