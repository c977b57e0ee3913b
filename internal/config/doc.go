// Package config manages user-level settings stored at ~/.create-plugin/config.yaml.
// It provides functions to load, read, and write configuration keys such as the
// template download mirror, the transport timeout, and default author details
// offered during metadata collection.
package config
