package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/parcel/internal/parcel"
	"github.com/hay-kot/parcel/internal/styles"
)

var viewTitles = map[parcel.ViewKind]string{
	parcel.ViewSearch:    "Search",
	parcel.ViewInstalled: "Installed",
	parcel.ViewWishlist:  "Wishlist",
	parcel.ViewHistory:   "History",
	parcel.ViewRepo:      "Repository",
}

// View renders the model.
func (m Model) View() string {
	if m.state == stateDetail {
		footer := helpStyle.Render("esc back • ↑/↓ scroll")
		return lipgloss.JoinVertical(lipgloss.Left, m.detail.View(), footer)
	}

	var b strings.Builder

	b.WriteString(styles.BannerStyle.Render(styles.Banner))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.renderPrompt())
	b.WriteString("\n\n")
	b.WriteString(m.renderList())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, len(m.browsers))
	for i, br := range m.browsers {
		title := viewTitles[br.view.Kind]
		if br.view.Repo != "" {
			title = br.view.Repo
		}
		if i == m.active {
			tabs = append(tabs, activeTabStyle.Render(title))
			continue
		}
		tabs = append(tabs, inactiveTabStyle.Render(title))
	}
	return " " + lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderPrompt() string {
	line := m.input.View()
	if m.current().co.InFlight() > 0 {
		line += " " + m.spinner.View()
	}
	return line
}

func (m Model) renderList() string {
	b := m.current()
	h := m.listHeight()

	if len(b.rows) == 0 {
		msg := statusStyle.Render("No packages")
		return msg + strings.Repeat("\n", h-1)
	}

	end := min(b.offset+h, len(b.rows))
	lines := make([]string, 0, h)
	for i := b.offset; i < end; i++ {
		lines = append(lines, m.renderRow(b.rows[i], i == b.cursor))
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(r row, selected bool) string {
	var text string
	switch r.kind {
	case rowHeader:
		return headerStyle.Render(r.title)
	case rowPackage:
		text = packageLine(r.pkg.DisplayName(), r.pkg.ID, r.pkg.Version)
		if !r.badge.Hidden {
			text += "  " + styles.BadgeStyle(r.badge.State).Render(string(r.badge.State))
		}
		if r.wishlisted {
			text += " " + wishlistMark
		}
	case rowProvisional:
		text = packageLine(r.provisional.DisplayName(), r.provisional.ID, r.provisional.Version)
		if r.provisional.Repo != "" {
			text += "  " + styles.MutedStyle.Render(r.provisional.Repo)
		}
	case rowTerm:
		text = termStyle.Render("↺ " + r.term)
	}

	if selected {
		return selectedRowStyle.Render(iconSelected+" ") + text
	}
	return normalStyle.Render(text)
}

func packageLine(name, id, version string) string {
	line := name
	if id != name {
		line += " " + styles.MutedStyle.Render(id)
	}
	if version != "" {
		line += " " + styles.MutedStyle.Render(version)
	}
	return line
}

func (m Model) renderStatus() string {
	switch {
	case m.state == stateConfirm:
		return statusStyle.Render(fmt.Sprintf("%s [y/N]", m.pending.Confirm))
	case m.err != nil:
		return errorStyle.Render(m.err.Error())
	default:
		return statusStyle.Render(m.status)
	}
}

func (m Model) renderHelp() string {
	bindings := m.keys.ShortHelp()
	bindings = append(bindings, m.handler.KeyBindings()...)
	bindings = append(bindings, key.NewBinding(key.WithKeys("i", "p", "h"), key.WithHelp("i/p/h", "toggle sections")))
	return helpStyle.Render(m.help.ShortHelpView(bindings))
}
