package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/aurseek/pkg/aur"
	"github.com/glorpus-work/aurseek/pkg/config"
	"github.com/glorpus-work/aurseek/pkg/history"
	"github.com/glorpus-work/aurseek/pkg/session"
)

// styles holds the lipgloss styles used for text output.
type styles struct {
	Title     lipgloss.Style
	Name      lipgloss.Style
	Version   lipgloss.Style
	Muted     lipgloss.Style
	Warning   lipgloss.Style
	Highlight lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{Title: plain, Name: plain, Version: plain, Muted: plain, Warning: plain, Highlight: plain}
	}
	return styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1793D1")),
		Name: lipgloss.NewStyle().
			Bold(true),
		Version: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#73F59F")),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")),
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87")).
			Bold(true),
		Highlight: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7B61FF")),
	}
}

// printer renders results in the configured output format.
type printer struct {
	out    io.Writer
	format string
	style  styles
}

func newPrinter(cfg *config.Config) *printer {
	return &printer{
		out:    os.Stdout,
		format: cfg.Settings.OutputFormat,
		style:  newStyles(cfg.Settings.ColorOutput),
	}
}

// structured writes v as JSON or YAML and reports whether it did so. Text
// output is left to the caller.
func (p *printer) structured(v interface{}) (bool, error) {
	switch p.format {
	case "json":
		encoder := json.NewEncoder(p.out)
		encoder.SetIndent("", "  ")
		return true, encoder.Encode(v)
	case "yaml":
		encoder := yaml.NewEncoder(p.out)
		encoder.SetIndent(config.YAMLIndent)
		defer func() { _ = encoder.Close() }()
		return true, encoder.Encode(v)
	default:
		return false, nil
	}
}

func (p *printer) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

func (p *printer) searchResults(query aur.Query, results []aur.PackageSummary) error {
	if ok, err := p.structured(results); ok {
		return err
	}

	if len(results) == 0 {
		p.printf("No packages found matching '%s'\n", query.Text)
		return nil
	}

	tw := tabwriter.NewWriter(p.out, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PACKAGE NAME\tVERSION\tVOTES\tDESCRIPTION")
	for _, pkg := range results {
		description := pkg.Description
		if len(description) > MaxSearchDescriptionLength {
			description = description[:MaxSearchDescriptionLength-3] + "..."
		}
		version := pkg.Version
		if pkg.IsOutOfDate() {
			version += " (out of date)"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", pkg.Name, version, pkg.NumVotes, description)
	}
	_ = tw.Flush()

	p.printf("\n%s\n", p.style.Muted.Render(
		fmt.Sprintf("Found %d package(s) matching '%s' by %s", len(results), query.Text, query.Mode)))
	return nil
}

func (p *printer) detail(detail aur.PackageDetail) error {
	if ok, err := p.structured(detail); ok {
		return err
	}

	p.printf("%s %s\n", p.style.Title.Render(detail.Name), p.style.Version.Render(detail.Version))
	if detail.IsOutOfDate() {
		p.printf("%s\n", p.style.Warning.Render("flagged out of date"))
	}
	if detail.Description != "" {
		p.printf("%s\n", detail.Description)
	}
	p.printf("\n")

	tw := tabwriter.NewWriter(p.out, 0, 0, TabWidth, ' ', 0)
	row := func(label, value string) {
		if value != "" {
			_, _ = fmt.Fprintf(tw, "%s\t%s\n", p.style.Muted.Render(label), value)
		}
	}
	row("Package base", detail.PackageBase)
	row("URL", detail.URL)
	row("Maintainer", detail.Maintainer)
	row("Co-maintainers", strings.Join(detail.CoMaintainers, ", "))
	row("Votes", fmt.Sprintf("%d", detail.NumVotes))
	row("Popularity", fmt.Sprintf("%.2f", detail.Popularity))
	row("License", strings.Join(detail.License, ", "))
	row("Keywords", strings.Join(detail.Keywords, ", "))
	row("Depends", strings.Join(detail.Depends, ", "))
	row("Make depends", strings.Join(detail.MakeDepends, ", "))
	row("Optional", strings.Join(detail.OptDepends, ", "))
	row("Check depends", strings.Join(detail.CheckDepends, ", "))
	row("Provides", strings.Join(detail.Provides, ", "))
	row("Conflicts", strings.Join(detail.Conflicts, ", "))
	row("Replaces", strings.Join(detail.Replaces, ", "))
	if modified := detail.LastModifiedTime(); !modified.IsZero() {
		row("Last modified", modified.Local().Format(TimeLayout))
	}
	return tw.Flush()
}

func (p *printer) historyEntries(entries []history.Entry) error {
	if ok, err := p.structured(entries); ok {
		return err
	}

	if len(entries) == 0 {
		p.printf("History is empty\n")
		return nil
	}

	tw := tabwriter.NewWriter(p.out, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tSELECTED\tPACKAGE NAME\tVERSION")
	for _, entry := range entries {
		p.historyRow(tw, entry)
	}
	return tw.Flush()
}

func (p *printer) historyRow(w io.Writer, entry history.Entry) {
	_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
		entry.ID,
		entry.InsertedAt.Local().Format(TimeLayout),
		entry.Package.Name,
		entry.Package.Version)
}

// followedEntry writes a single entry as it arrives. Structured formats emit
// one JSON object per line so the stream stays parseable.
func (p *printer) followedEntry(entry history.Entry) error {
	switch p.format {
	case "json":
		return json.NewEncoder(p.out).Encode(entry)
	case "yaml":
		if _, err := p.out.Write([]byte("---\n")); err != nil {
			return err
		}
		return yaml.NewEncoder(p.out).Encode(entry)
	default:
		p.printf("%s %s %s\n",
			p.style.Muted.Render(entry.InsertedAt.Local().Format(time.TimeOnly)),
			p.style.Name.Render(entry.Package.Name),
			p.style.Version.Render(entry.Package.Version))
		return nil
	}
}

func (p *printer) updates(updates []session.Update) error {
	if ok, err := p.structured(updates); ok {
		return err
	}

	if len(updates) == 0 {
		p.printf("All packages in history are up to date\n")
		return nil
	}

	tw := tabwriter.NewWriter(p.out, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PACKAGE NAME\tSELECTED\tLATEST")
	for _, update := range updates {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n",
			update.Entry.Package.Name,
			update.Entry.Package.Version,
			p.style.Highlight.Render(update.Latest))
	}
	return tw.Flush()
}
