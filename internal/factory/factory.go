// Package factory implements ParserFactory: the one-parser-per-canonical-
// path cache that lets a !include graph be parsed once per file regardless
// of how many places reference it, while still detecting include cycles.
//
// Caching stores the raw (pre-directive-resolution) parse of a file, since
// that phase depends only on the file's own bytes, not on which directive
// pulled it in. Directive resolution (internal/postproc) runs fresh for
// every splice, against the included file's own macro environment (the one
// built when the file was first parsed and cached). Only the process-wide
// Global/CommandLine layers are shared with the includer; the includer's
// file-local macros and PCD symbols are not visible to the included file.
package factory

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/standardbeagle/edk2meta/internal/debug"
	"github.com/standardbeagle/edk2meta/internal/exprbridge"
	"github.com/standardbeagle/edk2meta/internal/metrics"
	"github.com/standardbeagle/edk2meta/internal/postproc"
	"github.com/standardbeagle/edk2meta/internal/rawparser"
	"github.com/standardbeagle/edk2meta/internal/scope"
	"github.com/standardbeagle/edk2meta/internal/store"
	"github.com/standardbeagle/edk2meta/internal/types"
	"github.com/standardbeagle/edk2meta/pkg/pathutil"
	"golang.org/x/sync/singleflight"
)

// pathKey hashes a canonical path to a fixed-width cache key, so the byPath
// map and the include-cycle set don't carry full path strings as keys once
// a workspace's include tree gets large (some platform DSC trees pull in
// several hundred packages).
func pathKey(canon string) uint64 {
	return xxhash.Sum64String(canon)
}

type rawEntry struct {
	file   types.FileID
	table  *store.Table
	env    *scope.Environment
	macros *scope.Index
}

// Factory is the process-wide ParserFactory. One Factory typically backs
// one workspace (platform + every package it pulls in).
type Factory struct {
	mu       sync.Mutex
	group    singleflight.Group
	byPath   map[uint64]*rawEntry
	nextFile types.FileID

	resolver        *pathutil.Resolver
	global          map[string]string
	cmdline         map[string]string
	bridge          exprbridge.Bridge
	caseInsensitive bool
	counters        *metrics.Counters
}

// New builds a Factory against a workspace resolver and the process-wide
// Global/CommandLine macro layers.
func New(resolver *pathutil.Resolver, global, cmdline map[string]string, caseInsensitive bool) *Factory {
	return &Factory{
		byPath:          map[uint64]*rawEntry{},
		resolver:        resolver,
		global:          global,
		cmdline:         cmdline,
		bridge:          exprbridge.NewDefault(),
		caseInsensitive: caseInsensitive,
		counters:        metrics.New(),
	}
}

// Counters exposes the Factory's running parse-event tallies, for a CLI
// caller to print after Parse returns.
func (f *Factory) Counters() *metrics.Counters {
	return f.counters
}

// ParseResult is a fully resolved, directive-free file: every surviving
// record plus any non-fatal warnings gathered along the way.
type ParseResult struct {
	File     types.FileID
	Records  []store.Record
	Warnings []string
}

// Parse runs the full two-phase pipeline (RawParser then PostProcessor) on
// a top-level file — one with no including directive. Temporary bypasses
// the raw-parse cache: useful for one-off validation passes over a file a
// caller expects to re-read from disk on the next call.
func (f *Factory) Parse(path string, temporary bool) (*ParseResult, error) {
	canon, err := canonicalize(path)
	if err != nil {
		return nil, err
	}

	entry, err := f.rawEntryFor(canon, temporary)
	if err != nil {
		return nil, err
	}

	shared := &resolveCtx{factory: f, active: map[uint64]bool{pathKey(canon): true}}
	fscope := &fileScope{shared: shared, dir: filepath.Dir(canon)}
	pp := postproc.New(entry.file, entry.env, entry.macros, f.bridge, fscope)
	pp.SetCounters(f.counters)
	records, warnings, err := pp.Resolve(entry.table.GetRaw())
	if err != nil {
		return nil, err
	}
	f.counters.AddRecords(len(records))
	return &ParseResult{File: entry.file, Records: records, Warnings: warnings}, nil
}

// Resolve implements postproc.Includer for a caller that wants to pull a
// file in directly (e.g. a test) without first going through Parse.
func (f *Factory) Resolve(path string, fromItem types.RecordID) ([]store.Record, error) {
	shared := &resolveCtx{factory: f, active: map[uint64]bool{}}
	fscope := &fileScope{shared: shared, dir: f.resolver.WorkspaceRoot}
	return fscope.Resolve(path, fromItem)
}

// resolveCtx carries the include-cycle detection state shared across one
// whole top-level Parse call's recursion tree.
type resolveCtx struct {
	mu      sync.Mutex
	factory *Factory
	active  map[uint64]bool
}

// fileScope is a postproc.Includer bound to the directory of one
// particular file in the include tree, so that a relative !include target
// resolves against the file that named it rather than the top-level file.
type fileScope struct {
	shared *resolveCtx
	dir    string
}

func (s *fileScope) Resolve(path string, fromItem types.RecordID) ([]store.Record, error) {
	resolved, ok := s.shared.factory.resolver.ResolveInclude(s.dir, path)
	if !ok {
		resolved = path
	}
	canon, err := canonicalize(resolved)
	if err != nil {
		return nil, err
	}
	key := pathKey(canon)

	s.shared.mu.Lock()
	if s.shared.active[key] {
		s.shared.mu.Unlock()
		return nil, debug.Fatal("include cycle detected: %s is already being parsed", canon)
	}
	s.shared.active[key] = true
	s.shared.mu.Unlock()
	defer func() {
		s.shared.mu.Lock()
		delete(s.shared.active, key)
		s.shared.mu.Unlock()
	}()

	entry, err := s.shared.factory.rawEntryFor(canon, false)
	if err != nil {
		return nil, err
	}
	s.shared.factory.counters.AddIncludeExpanded()

	spliced := make([]store.Record, len(entry.table.GetRaw()))
	for i, r := range entry.table.GetRaw() {
		if r.FromItem == types.InvalidID {
			r.FromItem = fromItem
		}
		spliced[i] = r
	}

	child := &fileScope{shared: s.shared, dir: filepath.Dir(canon)}
	pp := postproc.New(entry.file, entry.env, entry.macros, s.shared.factory.bridge, child)
	pp.SetCounters(s.shared.factory.counters)
	records, _, err := pp.Resolve(spliced)
	return records, err
}

// rawEntryFor returns the cached raw parse of canon, building it (under
// singleflight so concurrent requests for the same path share one parse)
// unless temporary requests a fresh read.
func (f *Factory) rawEntryFor(canon string, temporary bool) (*rawEntry, error) {
	key := pathKey(canon)
	if !temporary {
		f.mu.Lock()
		if e, ok := f.byPath[key]; ok {
			f.mu.Unlock()
			return e, nil
		}
		f.mu.Unlock()
	}

	v, err, _ := f.group.Do(canon, func() (interface{}, error) {
		return f.parseRaw(canon)
	})
	if err != nil {
		return nil, err
	}
	entry := v.(*rawEntry)

	if !temporary {
		f.mu.Lock()
		f.byPath[key] = entry
		f.mu.Unlock()
	}
	return entry, nil
}

func (f *Factory) parseRaw(canon string) (*rawEntry, error) {
	content, err := os.ReadFile(canon)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", canon, err)
	}

	dialect := types.DialectFromExt(filepath.Ext(canon))

	f.mu.Lock()
	f.nextFile++
	file := f.nextFile
	f.mu.Unlock()

	env := scope.NewEnvironment(f.global, f.cmdline)
	p := rawparser.New(dialect, file, canon, env, types.InvalidID, f.caseInsensitive)
	if err := p.Parse(content); err != nil {
		return nil, err
	}
	f.counters.AddFileParsed()

	return &rawEntry{file: file, table: p.Table(), env: env, macros: p.Macros()}, nil
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs, nil
	}
	return resolved, nil
}
