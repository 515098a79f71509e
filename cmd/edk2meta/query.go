package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/edk2meta/internal/idcodec"
	"github.com/standardbeagle/edk2meta/internal/store"
	"github.com/standardbeagle/edk2meta/internal/types"
)

var queryCommand = &cli.Command{
	Name:      "query",
	Usage:     "run a (model, arch, module-type, default-store) query against a parsed file, or resolve a single record id",
	ArgsUsage: "<file>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "model",
			Usage: "record model to query for, e.g. PCD, COMPONENT, LIBRARY_CLASS (required unless --id is given)",
		},
		&cli.StringFlag{
			Name:  "arch",
			Usage: "scope1 filter (defaults to the config's DefaultArch[0], then COMMON)",
		},
		&cli.StringFlag{
			Name:  "module-type",
			Usage: "scope2 filter (defaults to COMMON)",
		},
		&cli.StringFlag{
			Name:  "store",
			Usage: "scope3 (default-store) filter (defaults to COMMON)",
		},
		&cli.StringFlag{
			Name:  "id",
			Usage: "resolve a single base-63 record id instead of running a scope query",
		},
	},
	Action: queryAction,
}

func queryAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: edk2meta query [flags] <file>")
	}
	path := c.Args().First()

	cfg, err := loadWorkspace(c)
	if err != nil {
		return err
	}
	f := newFactory(cfg)

	result, err := f.Parse(path, false)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	table := store.FromRecords(result.File, result.Records)

	if encoded := c.String("id"); encoded != "" {
		return queryByID(table, encoded)
	}

	modelName := c.String("model")
	if modelName == "" {
		return fmt.Errorf("--model is required when --id is not given")
	}
	model, ok := modelFromName(modelName)
	if !ok {
		if suggestion := suggestModelName(modelName); suggestion != "" {
			return fmt.Errorf("unrecognized model %q, did you mean %q?", modelName, suggestion)
		}
		return fmt.Errorf("unrecognized model %q", modelName)
	}

	arch := c.String("arch")
	if arch == "" && len(cfg.DefaultArch) > 0 {
		arch = cfg.DefaultArch[0]
	}

	rows := table.Query(store.Query{
		Model:           model,
		Scope1:          arch,
		Scope2:          c.String("module-type"),
		Scope3:          c.String("store"),
		RequireNoParent: true,
	})

	views := make([]recordView, 0, len(rows))
	for _, r := range rows {
		views = append(views, toRecordView(r))
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(views)
}

func queryByID(table *store.Table, encoded string) error {
	lookup := idcodec.NewRecordLookup(store.RecordGetter{Table: table})
	value, err := lookup.DecodeAndGet(encoded)
	if err != nil {
		return fmt.Errorf("resolving id %s: %w", encoded, err)
	}
	r := value.(store.Record)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(toRecordView(r))
}

// modelFromName maps a query flag value like "PCD" or "pcd" back to its
// types.Model, the inverse of Model.String().
func modelFromName(name string) (types.Model, bool) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for m := types.ModelHeader; m <= types.ModelUserExtension; m++ {
		if m.String() == upper {
			return m, true
		}
	}
	return types.ModelUnknown, false
}

// suggestModelName finds the queryable model name closest to an
// unrecognized --model value, using Jaro-Winkler similarity so a typo like
// "COMPONANT" or "pcds" still points the caller at the right flag value.
func suggestModelName(name string) string {
	upper := strings.ToUpper(strings.TrimSpace(name))
	best := ""
	var bestScore float32
	for m := types.ModelHeader; m <= types.ModelUserExtension; m++ {
		score, err := edlib.StringsSimilarity(upper, m.String(), edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = m.String()
		}
	}
	if bestScore < 0.75 {
		return ""
	}
	return best
}
