// Package cli defines the Cobra command tree for the create-plugin CLI. The
// root command scaffolds a project; each other file registers one subcommand
// (templates, validate, config, version). Commands only handle flags, I/O and
// formatting and delegate the work to the internal packages.
package cli
