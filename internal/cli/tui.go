package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/matzehuels/godepscan/pkg/deps/golang"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// isInteractive reports whether both stdin and stdout are terminals.
var isInteractive = func() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// =============================================================================
// ManagerListModel - Interactive manager selection
// =============================================================================

// managerChoice is one row of the manager picker.
type managerChoice struct {
	Manager golang.Manager
	Path    string
	Present bool
}

// ManagerListModel is the bubbletea model for picking a manager when none
// was given on the command line or in the config.
type ManagerListModel struct {
	Choices  []managerChoice
	Cursor   int
	Selected *golang.Manager
}

// NewManagerListModel lists every manager for root, with the cursor on the
// first one whose manifest exists.
func NewManagerListModel(root string) ManagerListModel {
	m := ManagerListModel{}
	for _, mgr := range golang.Managers() {
		path := golang.ManifestPath(root, mgr)
		_, err := os.Stat(path)
		m.Choices = append(m.Choices, managerChoice{Manager: mgr, Path: path, Present: err == nil})
	}
	for i, c := range m.Choices {
		if c.Present {
			m.Cursor = i
			break
		}
	}
	return m
}

func (m ManagerListModel) Init() tea.Cmd {
	return nil
}

func (m ManagerListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Choices)-1 {
				m.Cursor++
			}
		case "enter":
			mgr := m.Choices[m.Cursor].Manager
			m.Selected = &mgr
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ManagerListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Dependency Manager"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("arrows: navigate  enter: select  q: quit"))
	b.WriteString("\n\n")

	for i, c := range m.Choices {
		cursor := "  "
		if i == m.Cursor {
			cursor = "> "
		}

		status := StyleWarning.Render("!")
		if c.Present {
			status = styleIconSuccess.Render("*")
		}

		line := fmt.Sprintf("%s%s %-6s %-12s", cursor, status, c.Manager, c.Manager.Manifest())

		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case !c.Present:
			b.WriteString(listDimStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(strings.Repeat("-", 40)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s manifest found   %s missing\n",
		styleIconSuccess.Render("*"), StyleWarning.Render("!")))

	return b.String()
}

// pickManager runs the manager picker on w. It returns "" when the user
// quits without choosing.
func pickManager(w io.Writer, root string) (golang.Manager, error) {
	p := tea.NewProgram(NewManagerListModel(root), tea.WithOutput(w))
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	m, ok := final.(ManagerListModel)
	if !ok || m.Selected == nil {
		return "", nil
	}
	return *m.Selected, nil
}
