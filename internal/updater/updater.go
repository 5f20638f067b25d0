// Package updater synchronizes the local convention cache with upstream
// and recompiles every cached source file into its JSON record.
package updater

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/audiolab/sofaconv/pkg/config"
	"github.com/audiolab/sofaconv/pkg/convention"
	"github.com/audiolab/sofaconv/pkg/errors"
	"github.com/audiolab/sofaconv/pkg/logger"
)

// Source enumerates and fetches upstream convention files. It is
// implemented by upstream.Client and by fakes in tests.
type Source interface {
	List(ctx context.Context) ([]string, error)
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// Failure records one convention that could not be compiled
type Failure struct {
	Name string
	Err  error
}

// Report summarizes one updater run
type Report struct {
	// Added lists conventions that did not exist locally before
	Added []string
	// Updated lists conventions whose cached source changed
	Updated []string
	// Compiled lists conventions whose record was written
	Compiled []string
	// Failed lists conventions whose source could not be compiled
	Failed []Failure
}

// Changed reports whether the sync wrote any source file
func (r *Report) Changed() bool {
	return len(r.Added) > 0 || len(r.Updated) > 0
}

// Updater drives the sync-and-compile cycle
type Updater struct {
	cfg    *config.Config
	source Source
	logger *zap.Logger
}

// New creates an updater for the given cache and source
func New(cfg *config.Config, source Source) *Updater {
	return &Updater{
		cfg:    cfg,
		source: source,
		logger: logger.Get(),
	}
}

// Run synchronizes the cache with upstream, then recompiles every local
// source file. Compilation always runs, even when nothing changed, so
// that output format upgrades propagate. Compile failures are isolated
// per document and collected in the report.
func (u *Updater) Run(ctx context.Context) (*Report, error) {
	report, err := u.Sync(ctx)
	if err != nil {
		return nil, err
	}
	if err := u.CompileAll(report); err != nil {
		return nil, err
	}
	return report, nil
}

// Sync fetches every non-excluded upstream convention and overwrites the
// cached source copy when its normalized bytes differ.
func (u *Updater) Sync(ctx context.Context) (*Report, error) {
	if err := u.ensureDirs(); err != nil {
		return nil, err
	}

	names, err := u.source.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for _, name := range names {
		if excluded(name, u.cfg.Upstream.ExcludePrefixes) {
			u.logger.Debug("skipping excluded convention", zap.String("convention", name))
			continue
		}

		data, err := u.source.Fetch(ctx, name)
		if err != nil {
			return nil, err
		}
		data = normalizeUpstream(data)

		local := filepath.Join(u.cfg.SourceDir(), name)
		current, err := os.ReadFile(local) //nolint:gosec // G304: path is rooted in the configured cache
		switch {
		case os.IsNotExist(err):
			if err := u.writeSource(local, data); err != nil {
				return nil, err
			}
			report.Added = append(report.Added, name)
			u.logger.Info("added new convention", zap.String("convention", name))
		case err != nil:
			return nil, errors.Wrapf(err, errors.ErrorTypeFile, "failed to read cached %s", name)
		case !bytes.Equal(normalizeNewlines(current), data):
			if err := u.writeSource(local, data); err != nil {
				return nil, err
			}
			report.Updated = append(report.Updated, name)
			u.logger.Info("updated existing convention", zap.String("convention", name))
		}
	}

	return report, nil
}

// CompileAll compiles every cached source file into its JSON record,
// appending outcomes to the report. A document that fails to compile is
// reported and skipped; the remaining documents are unaffected.
func (u *Updater) CompileAll(report *Report) error {
	sources, err := u.LocalConventions()
	if err != nil {
		return err
	}

	for _, name := range sources {
		if err := u.compile(name); err != nil {
			u.logger.Error("failed to compile convention",
				zap.String("convention", name),
				zap.Error(err))
			report.Failed = append(report.Failed, Failure{Name: name, Err: err})
			continue
		}
		report.Compiled = append(report.Compiled, name)
	}

	return nil
}

// LocalConventions lists the cached source file names, sorted
func (u *Updater) LocalConventions() ([]string, error) {
	pattern := filepath.Join(u.cfg.SourceDir(), "*"+u.cfg.Upstream.Extension)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to list cached conventions")
	}

	names := make([]string, len(matches))
	for i, match := range matches {
		names[i] = filepath.Base(match)
	}
	sort.Strings(names)
	return names, nil
}

// compile translates one cached source file into its persisted record
func (u *Updater) compile(name string) error {
	data, err := os.ReadFile(filepath.Join(u.cfg.SourceDir(), name)) //nolint:gosec
	if err != nil {
		return errors.Wrapf(err, errors.ErrorTypeFile, "failed to read source %s", name)
	}

	base := strings.TrimSuffix(name, u.cfg.Upstream.Extension)
	record, err := convention.Compile(name, data)
	if err != nil {
		return err
	}

	out, err := record.MarshalIndent()
	if err != nil {
		return err
	}

	target := filepath.Join(u.cfg.JSONDir(), base+".json")
	if err := os.WriteFile(target, out, 0o644); err != nil { //nolint:gosec
		return errors.Wrapf(err, errors.ErrorTypeFile, "failed to write record %s", target)
	}
	return nil
}

// ensureDirs bootstraps the cache directory layout
func (u *Updater) ensureDirs() error {
	for _, dir := range []string{u.cfg.SourceDir(), u.cfg.JSONDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, errors.ErrorTypeFile, "failed to create %s", dir)
		}
	}
	return nil
}

// writeSource persists one normalized upstream file to the cache
func (u *Updater) writeSource(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec
		return errors.Wrapf(err, errors.ErrorTypeFile, "failed to write %s", path)
	}
	return nil
}

// excluded reports whether a file name carries one of the excluded
// prefixes (generic, templated conventions not meant for direct use)
func excluded(name string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// normalizeUpstream canonicalizes fetched bytes: trailing tabs before a
// newline are dropped and CRLF collapses to LF.
func normalizeUpstream(data []byte) []byte {
	data = bytes.ReplaceAll(data, []byte("\t\n"), []byte("\n"))
	return normalizeNewlines(data)
}

// normalizeNewlines collapses CRLF to LF
func normalizeNewlines(data []byte) []byte {
	return bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
}
