// Package main hosts the slate CLI entrypoint and command graph.
//
// The Cobra-based command tree surfaces the template and context
// machinery: listing and inspecting templates, building and parsing
// paths, maintaining the entity path cache, and configuration
// scaffolding. It centralizes configuration resolution, template
// loading, and structured logging setup so subcommands can focus on
// user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the
// internal packages first, then surface it through dedicated commands
// or flags here.
package main
