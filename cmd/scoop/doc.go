// Package main hosts the scoop CLI entrypoint and command graph.
//
// The Cobra-based command tree surfaces the catalog engine to the terminal:
// one-off name matching, bulk order ingestion, human review of unverified
// entities, snapshot export and import, and configuration scaffolding. It
// centralizes configuration resolution, store wiring, and structured logging
// setup so subcommands can focus on user experience instead of plumbing.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
