package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/chanwatch/internal/state"
)

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	parts := []string{styles.AccentText.Render("chanwatch " + m.title)}

	snap := m.snapshot
	switch {
	case !snap.HasData && snap.LastError == nil:
		parts = append(parts, styles.MutedText.Render("loading..."))
	case snap.HasData:
		parts = append(parts, fmt.Sprintf("%d threads", len(snap.Threads)))
	}
	if !snap.LastUpdated.IsZero() {
		parts = append(parts, styles.FaintText.Render("updated "+snap.LastUpdated.Format("15:04:05")))
	}
	if snap.LastError != nil {
		label := "error"
		if snap.IsOffline() {
			label = "offline"
		}
		parts = append(parts, styles.DangerText.Render(label+": "+snap.LastError.Error()))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, "  "))
}

func (m Model) renderTabs() string {
	styles := m.theme.Styles()
	if len(m.snapshot.Threads) == 0 {
		return styles.Tab.Render("no threads")
	}
	tabs := make([]string, 0, len(m.snapshot.Threads))
	for _, t := range m.snapshot.Threads {
		label := fmt.Sprintf("%d", t.ID)
		if t.Delta > 0 {
			label += fmt.Sprintf(" +%d", t.Delta)
		}
		if t.NotFound {
			label += " ✗"
		}
		if t.ID == m.selectedID {
			tabs = append(tabs, styles.TabFocus.Render(label))
		} else {
			tabs = append(tabs, styles.Tab.Render(label))
		}
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	return lipgloss.NewStyle().MaxWidth(m.width).Render(row)
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	line := m.lastLog
	if line == "" {
		line = " "
	}
	logLine := styles.Footer.Width(m.width).MaxHeight(1).Render(line)
	return logLine + "\n" + m.help.View(m.keys)
}

func (m Model) renderEmpty() string {
	styles := m.theme.Styles()
	if m.snapshot.LastError != nil {
		return styles.DangerText.Render(m.snapshot.LastError.Error())
	}
	return styles.MutedText.Render("Waiting for threads...")
}

func (m Model) renderThread(t state.ThreadSummary) string {
	styles := m.theme.Styles()
	width := max(m.width-2, 20)
	var b strings.Builder

	title := fmt.Sprintf("No.%d", t.ID)
	if t.Subject != "" {
		title += " " + t.Subject
	}
	b.WriteString(styles.AccentText.Render(title))
	for _, badge := range threadBadges(t) {
		b.WriteString(" ")
		b.WriteString(styles.WarningText.Render("[" + badge + "]"))
	}
	b.WriteString("\n")

	meta := fmt.Sprintf("%d replies, %d images", t.Replies, t.Images)
	if t.Page > 0 {
		meta += fmt.Sprintf(", page %d", t.Page)
	}
	b.WriteString(styles.MutedText.Render(meta + "  " + t.URL))
	b.WriteString("\n")
	if t.PollError != "" {
		b.WriteString(styles.DangerText.Render("last poll failed: " + t.PollError))
		b.WriteString("\n")
	}

	divider := styles.Divider.Render(strings.Repeat("─", width))
	body := lipgloss.NewStyle().Width(width).PaddingLeft(2)
	for _, p := range t.Posts {
		b.WriteString(divider)
		b.WriteString("\n")
		b.WriteString(m.renderPostHeader(p, styles))
		b.WriteString("\n")
		for _, name := range p.Files {
			b.WriteString(styles.InfoText.Render("  file: " + name))
			b.WriteString("\n")
		}
		if p.Text != "" {
			text := body.Render(p.Text)
			if p.Deleted {
				text = styles.FaintText.Render(text)
			}
			b.WriteString(text)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderPostHeader(p state.PostView, styles Styles) string {
	parts := []string{styles.AccentText.Render(fmt.Sprintf("No.%d", p.Number))}
	name := p.Name
	if name == "" {
		name = "Anonymous"
	}
	if p.Tripcode != "" {
		name += " " + p.Tripcode
	}
	parts = append(parts, styles.SuccessText.Render(name))
	if p.PosterID != "" {
		parts = append(parts, styles.MutedText.Render("ID:"+p.PosterID))
	}
	if p.Subject != "" && !p.IsOP {
		parts = append(parts, styles.Text.Render(p.Subject))
	}
	if !p.Time.IsZero() {
		parts = append(parts, styles.FaintText.Render(p.Time.Format("2006-01-02 15:04:05")))
	}
	if p.IsOP {
		parts = append(parts, styles.InfoText.Render("OP"))
	}
	if p.Deleted {
		parts = append(parts, styles.DangerText.Render("[deleted]"))
	}
	return strings.Join(parts, " ")
}

func threadBadges(t state.ThreadSummary) []string {
	var badges []string
	if t.Sticky {
		badges = append(badges, "sticky")
	}
	if t.Closed {
		badges = append(badges, "closed")
	}
	if t.Archived {
		badges = append(badges, "archived")
	}
	if t.NotFound {
		badges = append(badges, "404")
	}
	return badges
}
