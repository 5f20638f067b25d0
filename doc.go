// Package sofaconv maintains a local cache of SOFA convention definitions
// and compiles each tab-separated source file into a nested JSON record.
//
// SOFA conventions define what data is stored in a SOFA file and how it is
// stored. Upstream, they live as tab-delimited tables in the official
// SOFAtoolbox repository; consumers want them as structured records. This
// module does two things:
//
//  1. Synchronize: enumerate the upstream convention files, download the
//     ones not excluded as generic templates, normalize line endings, and
//     overwrite the cached copy only when the content actually changed.
//
//  2. Compile: deterministically translate every cached source file into a
//     JSON record. Compilation always runs, even when nothing changed, so
//     that output format upgrades propagate without an upstream change.
//
// # Architecture
//
// The compile pipeline is layered leaf-first: a cell parser classifies one
// tab-delimited token into a typed value (string, integer, float, flat or
// nested numeric array, or absent), a row compiler assembles parsed cells
// into a named entry and applies legacy value rewrites, and a document
// compiler builds the full record and normalizes entry order (GLOBAL
// attributes first, bulk Data fields last).
//
// Packages:
//
//   - pkg/convention: the cell/row/document compilers and the Record type
//   - pkg/upstream: HTTP client and page scraping for the remote repository
//   - pkg/config: configuration with YAML loading and env substitution
//   - pkg/errors: structured errors with types, details and stack capture
//   - pkg/logger: zap-based structured logging
//   - internal/updater: the sync-and-compile driver
//   - cmd/sofaconv: the CLI (update, compile, list, version)
//
// # Quick Start
//
// Update the cache and recompile all conventions:
//
//	sofaconv update --path ./conventions --assume-yes
//
// Recompile from the local cache without touching the network:
//
//	sofaconv compile --path ./conventions
package sofaconv
