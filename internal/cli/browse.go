package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/matzehuels/discograph/pkg/hypergraph"
	"github.com/matzehuels/discograph/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listCDUStyle      = lipgloss.NewStyle().Foreground(colorGreen)
)

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		flags       analyzeFlags
		stdinFormat string
	)

	cmd := &cobra.Command{
		Use:   "browse [document]",
		Short: "Walk through a document's units interactively",
		Long: `Walk through a document's units in reading order.

The list shows EDUs and CDUs nested by depth. The panel below it shows the
selected unit's text, its enclosing CDUs, its head (for a CDU) and the
relations attached to it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(cmd, &flags)
			results, err := c.runCorpus(cmd.Context(), args, stdinFormat, opts, flags.noCache, "Analyzing")
			if err != nil {
				return err
			}
			p := tea.NewProgram(NewUnitListModel(results[0]), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	addAnalyzeFlags(cmd, &flags)
	cmd.Flags().StringVar(&stdinFormat, "input-format", "json", "format of a document read from stdin")

	return cmd
}

// =============================================================================
// UnitListModel - Interactive unit browser
// =============================================================================

// UnitListModel is the bubbletea model for browsing a document.
type UnitListModel struct {
	Result *pipeline.Result
	Units  []string
	Cursor int
	Offset int
	Height int
	Width  int
}

// NewUnitListModel lists the units of res in canonical order.
func NewUnitListModel(res *pipeline.Result) UnitListModel {
	return UnitListModel{
		Result: res,
		Units:  res.Analysis.Order,
		Height: 15,
		Width:  80,
	}
}

func (m UnitListModel) Init() tea.Cmd {
	return nil
}

func (m UnitListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Units)-1 {
				m.Cursor++
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = max(len(m.Units)-1, 0)
		}
	case tea.WindowSizeMsg:
		// Half the screen goes to the detail panel.
		m.Height = max(msg.Height/2-4, 5)
		m.Width = max(msg.Width, 40)
	}

	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	return m, nil
}

func (m UnitListModel) View() string {
	var b strings.Builder
	g := m.Result.Graph

	b.WriteString(StyleTitle.Render(docLabel(m.Result.Key)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  g/G first/last  q quit"))
	b.WriteString("\n\n")

	if len(m.Units) == 0 {
		b.WriteString(listDimStyle.Render("  no units"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Units))
	for i := m.Offset; i < end; i++ {
		id := m.Units[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		indent := strings.Repeat("  ", len(g.ContainingCDUChain(id)))
		label := id
		if g.IsCDU(id) {
			label = "[" + id + "]"
		}
		text := unitText(g, id, max(m.Width-len(indent)-len(label)-8, 10))
		line := fmt.Sprintf("%s%s%s  %s", cursor, indent, label, text)

		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case g.IsCDU(id):
			b.WriteString(listCDUStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Units))))
	b.WriteString("\n\n")
	b.WriteString(m.detail(m.Units[m.Cursor]))
	return b.String()
}

// detail renders the panel for the selected unit.
func (m UnitListModel) detail(id string) string {
	g := m.Result.Graph
	var b strings.Builder

	kv := func(key, value string) {
		b.WriteString(lipgloss.NewStyle().Foreground(colorGray).Width(10).Render(key))
		b.WriteString(" ")
		b.WriteString(StyleValue.Render(value))
		b.WriteString("\n")
	}

	kv("unit", id+" ("+kindLabel(g, id)+")")
	if a, err := g.AnnotationOf(id); err == nil && a != nil {
		kv("type", a.AnnoType())
	}
	kv("span", unitSpan(g, id))
	if g.IsCDU(id) {
		if head, ok := m.Result.Analysis.Heads[id]; ok {
			kv("head", head)
		} else {
			kv("head", StyleWarning.Render("none"))
		}
	}
	if chain := g.ContainingCDUChain(id); len(chain) > 0 {
		kv("in", strings.Join(chain, " "+iconArrow+" "))
	}
	for _, rel := range attachedRelations(g, id) {
		kv("relation", rel)
	}

	text := unitText(g, id, 1<<16)
	if text != "" {
		b.WriteString("\n")
		b.WriteString(StyleDim.Render(ansi.Wordwrap(text, m.Width-4, " ")))
		b.WriteString("\n")
	}
	return b.String()
}

// attachedRelations describes every relation with id as an endpoint.
func attachedRelations(g *hypergraph.Graph, id string) []string {
	links, err := g.LinksOf(id)
	if err != nil {
		return nil
	}
	var out []string
	for _, rel := range links {
		if !g.IsRelation(rel) {
			continue
		}
		src, tgt, err := g.Endpoints(rel)
		if err != nil {
			continue
		}
		typ := ""
		if a, err := g.AnnotationOf(rel); err == nil && a != nil {
			typ = a.AnnoType()
		}
		out = append(out, fmt.Sprintf("%s %s %s %s (%s)", src, iconArrow, tgt, typ, rel))
	}
	return out
}
