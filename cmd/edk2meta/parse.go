package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/edk2meta/internal/factory"
	"github.com/standardbeagle/edk2meta/internal/idcodec"
	"github.com/standardbeagle/edk2meta/internal/store"
)

var parseCommand = &cli.Command{
	Name:      "parse",
	Usage:     "parse one description file and dump its resolved records as JSON",
	ArgsUsage: "<file>",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "stats",
			Usage: "print parse-event counters to stderr after parsing",
		},
		&cli.BoolFlag{
			Name:  "watch",
			Usage: "re-parse and re-print whenever the file changes",
		},
	},
	Action: parseAction,
}

type recordView struct {
	ID            string `json:"id"`
	Model         string `json:"model"`
	Value1        string `json:"value1,omitempty"`
	Value2        string `json:"value2,omitempty"`
	Value3        string `json:"value3,omitempty"`
	Scope1        string `json:"scope1,omitempty"`
	Scope2        string `json:"scope2,omitempty"`
	Scope3        string `json:"scope3,omitempty"`
	BelongsToItem string `json:"belongsToItem,omitempty"`
	FromItem      string `json:"fromItem,omitempty"`
	StartLine     int    `json:"startLine"`
	EndLine       int    `json:"endLine"`
	Comment       string `json:"comment,omitempty"`
}

func toRecordView(r store.Record) recordView {
	v := recordView{
		ID:        idcodec.EncodeRecordID(r.ID),
		Model:     r.Model.String(),
		Value1:    r.Value1,
		Value2:    r.Value2,
		Value3:    r.Value3,
		Scope1:    r.Scope1,
		Scope2:    r.Scope2,
		Scope3:    r.Scope3,
		StartLine: r.StartLine,
		EndLine:   r.EndLine,
		Comment:   r.Comment,
	}
	if r.BelongsToItem >= 0 {
		v.BelongsToItem = idcodec.EncodeRecordID(r.BelongsToItem)
	}
	if r.FromItem >= 0 {
		v.FromItem = idcodec.EncodeRecordID(r.FromItem)
	}
	return v
}

func parseAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: edk2meta parse [flags] <file>")
	}
	path := c.Args().First()

	cfg, err := loadWorkspace(c)
	if err != nil {
		return err
	}
	f := newFactory(cfg)
	stats := c.Bool("stats")
	watch := c.Bool("watch")

	if err := runParseOnce(f, path, stats, false); err != nil {
		return err
	}
	if !watch {
		return nil
	}
	return watchAndReparse(f, path, stats)
}

// runParseOnce parses path once, dumps its resolved records as JSON to
// stdout, and (if stats is set) prints the factory's running counters to
// stderr afterward. temporary bypasses the raw-parse cache, which a watch
// loop needs or it would keep re-printing the file's first-seen contents.
func runParseOnce(f *factory.Factory, path string, stats bool, temporary bool) error {
	result, err := f.Parse(path, temporary)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	views := make([]recordView, 0, len(result.Records))
	for _, r := range result.Records {
		views = append(views, toRecordView(r))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(views); err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if stats {
		fmt.Fprint(os.Stderr, f.Counters().Snapshot().FormatAsText())
	}
	return nil
}

// watchAndReparse re-parses path whenever the file itself changes,
// reprinting the resolved records — useful while iterating on a platform
// DSC without re-invoking the CLI by hand each time.
func watchAndReparse(f *factory.Factory, path string, stats bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	fmt.Fprintf(os.Stderr, "watching %s for changes (ctrl-c to stop)\n", dir)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fmt.Fprintf(os.Stderr, "--- re-parsing %s ---\n", path)
			if err := runParseOnce(f, path, stats, true); err != nil {
				fmt.Fprintf(os.Stderr, "edk2meta: %v\n", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watcher error: %v\n", err)
		}
	}
}
