package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL reads projectRoot/.edk2meta.kdl, if present, into a
// WorkspaceConfig. A missing file is not an error: it returns (nil, nil)
// and Load falls back to environment-only defaults.
func LoadKDL(projectRoot string) (*WorkspaceConfig, error) {
	kdlPath := filepath.Join(projectRoot, ".edk2meta.kdl")

	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read .edk2meta.kdl: %w", err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}

	if cfg.WorkspaceRoot == "" {
		cfg.WorkspaceRoot = projectRoot
	} else if !filepath.IsAbs(cfg.WorkspaceRoot) {
		cfg.WorkspaceRoot = filepath.Clean(filepath.Join(projectRoot, cfg.WorkspaceRoot))
	}

	return cfg, nil
}

func parseKDL(content string) (*WorkspaceConfig, error) {
	cfg := &WorkspaceConfig{}

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse .edk2meta.kdl: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "workspace":
			if s, ok := firstStringArg(n); ok {
				cfg.WorkspaceRoot = s
			}
		case "packages_path":
			cfg.PackagesPath = collectStringArgs(n)
		case "case_insensitive":
			if b, ok := firstBoolArg(n); ok {
				cfg.CaseInsensitive = b
			}
		case "default_arch":
			cfg.DefaultArch = collectStringArgs(n)
		case "default_toolchain":
			cfg.DefaultToolchain = collectStringArgs(n)
		}
	}

	return cfg, nil
}

// Helper functions over the kdl-go document model.
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// collectStringArgs reads a node's string values either from its inline
// arguments (packages_path "A" "B") or, if none, from its children's node
// names (packages_path { A; B; }).
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
