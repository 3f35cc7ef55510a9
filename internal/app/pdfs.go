package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kobzarvs/qscan/internal/config"
	"github.com/kobzarvs/qscan/internal/storage"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("250"))
	nameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	metaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func (a *App) runList(_ context.Context, cfg config.Config, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	store := outputStore(cfg)
	entries, err := store.ListPDFs()
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(a.out, formatListing(store.Dir, entries))
	return err
}

func formatListing(dir string, entries []storage.Entry) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(dir))
	sb.WriteByte('\n')
	if len(entries) == 0 {
		sb.WriteString(metaStyle.Render("no documents"))
		sb.WriteByte('\n')
		return sb.String()
	}
	width := 0
	for _, e := range entries {
		width = max(width, lipgloss.Width(e.Name))
	}
	col := lipgloss.NewStyle().Width(width + 2)
	for _, e := range entries {
		sb.WriteString(col.Render(nameStyle.Render(e.Name)))
		sb.WriteString(metaStyle.Render(fmt.Sprintf("%8s  %s", humanSize(e.Size), e.ModTime.Format("2006-01-02 15:04"))))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func (a *App) runOpen(_ context.Context, cfg config.Config, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return outputStore(cfg).Open(args[0])
}

func (a *App) runRemove(_ context.Context, cfg config.Config, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	store := outputStore(cfg)
	if err := store.Delete(args[0]); err != nil {
		return err
	}
	if sm, err := a.session(); err == nil {
		if path, perr := store.Path(args[0]); perr == nil {
			sm.Forget(path)
		}
		if err := sm.Stop(); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(a.out, "deleted", args[0])
	return err
}
