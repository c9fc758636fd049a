package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/ritzau/brandos-canvas/pkg/nodetype"
	"github.com/ritzau/brandos-canvas/pkg/topology"
)

// Format selects how the catalog is written
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a --format value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or yaml)", s)
	}
}

// Filter keeps the renderables of one category; an empty category keeps all
func Filter(types map[string]nodetype.Renderable, category nodetype.Category) map[string]nodetype.Renderable {
	if category == "" {
		return types
	}
	out := make(map[string]nodetype.Renderable)
	for tag, r := range types {
		if r.Category == category {
			out[tag] = r
		}
	}
	return out
}

// WriteCatalog writes the exported catalog in the given format
func WriteCatalog(w io.Writer, types map[string]nodetype.Renderable, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(types)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(types); err != nil {
			return err
		}
		return enc.Close()
	default:
		PrintCatalog(w, types)
		return nil
	}
}

// PrintCatalog prints a colored table of the catalog grouped by category
func PrintCatalog(w io.Writer, types map[string]nodetype.Renderable) {
	// Color definitions
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)
	faint := color.New(color.Faint)

	// Header
	bold.Fprintln(w, "Brand OS Canvas - Node Types")
	bold.Fprintln(w, "============================")

	byCategory := make(map[nodetype.Category][]string)
	for tag, r := range types {
		byCategory[r.Category] = append(byCategory[r.Category], tag)
	}

	for _, cat := range nodetype.Categories {
		tags := byCategory[cat]
		if len(tags) == 0 {
			continue
		}
		sort.Strings(tags)

		fmt.Fprintln(w)
		cyan.Fprintf(w, "%s (%d)\n", strings.ToUpper(string(cat)), len(tags))
		for _, tag := range tags {
			r := types[tag]
			fmt.Fprintf(w, "  %-20s %-22s %3.0fx%-4.0f %2d in %2d out  %d fields",
				tag, r.DisplayTitle, r.MinSize.Width, r.MinSize.Height,
				len(topology.Filter(r.Handles, topology.Input)),
				len(topology.Filter(r.Handles, topology.Output)),
				len(r.Fields))
			if r.AliasOf != "" {
				faint.Fprintf(w, "  alias of %s", r.AliasOf)
			}
			if r.Topology == topology.KindDerived {
				yellow.Fprint(w, "  derived")
			}
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintln(w)
	bold.Fprintf(w, "Summary: %d types\n", len(types))
}

// PrintHandles prints the resolved handles of one type
func PrintHandles(w io.Writer, tag string, handles []topology.HandlePoint) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	blue := color.New(color.FgBlue)

	bold.Fprintf(w, "%s: %d handles\n", tag, len(handles))
	for _, h := range handles {
		dirColor := green
		if h.Direction == topology.Output {
			dirColor = blue
		}
		fmt.Fprintf(w, "  %-16s ", h.ID)
		dirColor.Fprintf(w, "%-6s", h.Direction)
		fmt.Fprintf(w, " %-6s %.4f  %s\n", h.Side, h.Offset, h.Color)
	}
}
