package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/docsync/docsync/internal/model"
	"github.com/docsync/docsync/internal/sync"
)

// ResolveAction represents the outcome of the conflict resolution screen.
type ResolveAction int

const (
	// ResolveActionNone means no action was taken (user quit).
	ResolveActionNone ResolveAction = iota
	// ResolveActionApply means the user chose resolutions and wants them applied.
	ResolveActionApply
	// ResolveActionCancel means the user cancelled.
	ResolveActionCancel
)

// ConflictItem is one conflicted pair with both document versions and a
// precomputed diff.
type ConflictItem struct {
	Pair      model.SyncPair
	LocalDoc  model.Document
	RemoteDoc model.Document
	Hunks     []sync.DiffHunk
	Summary   sync.ChangeSummary
}

// DiffSummary returns a compact change count for table display.
func (c ConflictItem) DiffSummary() string {
	return fmt.Sprintf("+%d -%d ~%d", c.Summary.Additions, c.Summary.Deletions, c.Summary.Changes)
}

// PairResolution is the strategy chosen for a single pair.
type PairResolution struct {
	PairID    string
	LocalPath string
	Strategy  sync.Strategy
}

// ResolveListResult contains the resolutions chosen in the TUI.
type ResolveListResult struct {
	Action      ResolveAction
	Resolutions []PairResolution
}

// resolutionChoice is the per-row selection; skip drops the pair from the
// applied resolutions.
type resolutionChoice string

const (
	choiceLocal  resolutionChoice = "use local"
	choiceRemote resolutionChoice = "use remote"
	choiceManual resolutionChoice = "manual"
	choiceSkip   resolutionChoice = "skip"
)

type resolvePhase int

const (
	phaseList resolvePhase = iota
	phaseDetail
)

// resolveKeyMap defines the key bindings for conflict resolution.
type resolveKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Local   key.Binding
	Remote  key.Binding
	Manual  key.Binding
	Skip    key.Binding
	Confirm key.Binding
	Back    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultResolveKeyMap() resolveKeyMap {
	return resolveKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "view diff"),
		),
		Local: key.NewBinding(
			key.WithKeys("l", "1"),
			key.WithHelp("l/1", "use local"),
		),
		Remote: key.NewBinding(
			key.WithKeys("r", "2"),
			key.WithHelp("r/2", "use remote"),
		),
		Manual: key.NewBinding(
			key.WithKeys("m", "3"),
			key.WithHelp("m/3", "manual merge"),
		),
		Skip: key.NewBinding(
			key.WithKeys("x", "4"),
			key.WithHelp("x/4", "skip"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "apply resolutions"),
		),
		Back: key.NewBinding(
			key.WithKeys("b", "esc"),
			key.WithHelp("b/esc", "back"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Styles for the conflict resolution TUI.
var resolveStyles = struct {
	Title        lipgloss.Style
	Help         lipgloss.Style
	Status       lipgloss.Style
	Added        lipgloss.Style
	Removed      lipgloss.Style
	Context      lipgloss.Style
	Resolved     lipgloss.Style
	HunkHeader   lipgloss.Style
	Confirm      lipgloss.Style
	SectionTitle lipgloss.Style
}{
	Title:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")).Padding(0, 1),
	Help:         lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	Status:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1),
	Added:        lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	Removed:      lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	Context:      lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	Resolved:     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	HunkHeader:   lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
	Confirm:      lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true).Padding(0, 1),
	SectionTitle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")).Padding(1, 0),
}

// ResolveListModel is the BubbleTea model for conflict resolution.
type ResolveListModel struct {
	items       []ConflictItem
	choices     map[string]resolutionChoice
	table       table.Model
	viewport    viewport.Model
	keys        resolveKeyMap
	result      ResolveListResult
	phase       resolvePhase
	cursor      int
	showHelp    bool
	confirmMode bool
	width       int
	height      int
	quitting    bool
	ready       bool
}

// NewResolveListModel creates a conflict resolution model over the given
// conflicted pairs.
func NewResolveListModel(items []ConflictItem) ResolveListModel {
	columns := []table.Column{
		{Title: "Status", Width: 6},
		{Title: "Local Path", Width: 30},
		{Title: "Remote", Width: 24},
		{Title: "Changes", Width: 14},
		{Title: "Resolution", Width: 12},
	}

	rows := make([]table.Row, len(items))
	for i, item := range items {
		rows[i] = buildResolveRow(item, "")
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ResolveListModel{
		items:   items,
		choices: make(map[string]resolutionChoice),
		table:   t,
		keys:    defaultResolveKeyMap(),
		phase:   phaseList,
	}
}

func buildResolveRow(item ConflictItem, choice resolutionChoice) table.Row {
	status := "○"
	resStr := "-"
	if choice != "" {
		status = "✓"
		resStr = string(choice)
	}

	return table.Row{
		status,
		truncateText(item.Pair.LocalPath, 30),
		truncateText(item.Pair.RemoteURI, 24),
		item.DiffSummary(),
		resStr,
	}
}

// Result returns the accumulated result after the program finishes.
func (m ResolveListModel) Result() ResolveListResult {
	return m.result
}

// Init implements tea.Model.
func (m ResolveListModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ResolveListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.phase {
	case phaseList:
		return m.updateList(msg)
	case phaseDetail:
		return m.updateDetail(msg)
	}
	return m, nil
}

func (m ResolveListModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(msg.Height-10, 5))

	case tea.KeyMsg:
		if m.confirmMode {
			switch msg.String() {
			case "y", "Y":
				m.result = ResolveListResult{
					Action:      ResolveActionApply,
					Resolutions: m.buildResolutions(),
				}
				m.quitting = true
				return m, tea.Quit
			case "n", "N", "esc":
				m.confirmMode = false
				return m, nil
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.Select):
			if len(m.items) > 0 {
				m.cursor = m.table.Cursor()
				m.phase = phaseDetail
				m.ready = false
				return m, nil
			}

		case key.Matches(msg, m.keys.Local):
			m.chooseAt(m.table.Cursor(), choiceLocal)
			return m, nil

		case key.Matches(msg, m.keys.Remote):
			m.chooseAt(m.table.Cursor(), choiceRemote)
			return m, nil

		case key.Matches(msg, m.keys.Manual):
			m.chooseAt(m.table.Cursor(), choiceManual)
			return m, nil

		case key.Matches(msg, m.keys.Skip):
			m.chooseAt(m.table.Cursor(), choiceSkip)
			return m, nil

		case key.Matches(msg, m.keys.Confirm):
			if m.allChosen() {
				m.confirmMode = true
				return m, nil
			}

		case key.Matches(msg, m.keys.Back):
			m.result = ResolveListResult{Action: ResolveActionCancel}
			m.quitting = true
			return m, tea.Quit
		}
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m ResolveListModel) updateDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		viewportHeight := max(msg.Height-10, 5)
		if !m.ready {
			m.viewport = viewport.New(msg.Width-2, viewportHeight)
			m.viewport.SetContent(m.buildDetailContent())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 2
			m.viewport.Height = viewportHeight
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.phase = phaseList
			return m, nil

		case key.Matches(msg, m.keys.Local):
			m.chooseAt(m.cursor, choiceLocal)
			m.viewport.SetContent(m.buildDetailContent())
			return m, nil

		case key.Matches(msg, m.keys.Remote):
			m.chooseAt(m.cursor, choiceRemote)
			m.viewport.SetContent(m.buildDetailContent())
			return m, nil

		case key.Matches(msg, m.keys.Manual):
			m.chooseAt(m.cursor, choiceManual)
			m.viewport.SetContent(m.buildDetailContent())
			return m, nil

		case key.Matches(msg, m.keys.Skip):
			m.chooseAt(m.cursor, choiceSkip)
			m.viewport.SetContent(m.buildDetailContent())
			return m, nil
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *ResolveListModel) chooseAt(idx int, choice resolutionChoice) {
	if idx < 0 || idx >= len(m.items) {
		return
	}

	item := m.items[idx]
	m.choices[item.Pair.ID] = choice

	rows := m.table.Rows()
	if idx < len(rows) {
		rows[idx] = buildResolveRow(item, choice)
		m.table.SetRows(rows)
	}
}

func (m ResolveListModel) allChosen() bool {
	for _, item := range m.items {
		if _, ok := m.choices[item.Pair.ID]; !ok {
			return false
		}
	}
	return len(m.items) > 0
}

func (m ResolveListModel) buildResolutions() []PairResolution {
	var result []PairResolution
	for _, item := range m.items {
		choice, ok := m.choices[item.Pair.ID]
		if !ok || choice == choiceSkip {
			continue
		}

		var strategy sync.Strategy
		switch choice {
		case choiceLocal:
			strategy = sync.UseLocal
		case choiceRemote:
			strategy = sync.UseRemote
		case choiceManual:
			strategy = sync.MergeManual
		}
		result = append(result, PairResolution{
			PairID:    item.Pair.ID,
			LocalPath: item.Pair.LocalPath,
			Strategy:  strategy,
		})
	}
	return result
}

func (m ResolveListModel) buildDetailContent() string {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return "No conflict selected"
	}

	item := m.items[m.cursor]
	var b strings.Builder

	b.WriteString(resolveStyles.SectionTitle.Render("Conflict Details"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Local:  %s\n", item.Pair.LocalPath))
	b.WriteString(fmt.Sprintf("  Remote: %s\n", item.Pair.RemoteURI))
	b.WriteString(fmt.Sprintf("  %s\n", item.DiffSummary()))

	if choice, ok := m.choices[item.Pair.ID]; ok {
		b.WriteString("\n")
		b.WriteString(resolveStyles.Resolved.Render(fmt.Sprintf("  Resolution: %s", choice)))
		b.WriteString("\n")
	}

	if len(item.Hunks) > 0 {
		b.WriteString("\n")
		b.WriteString(resolveStyles.SectionTitle.Render("Changes"))
		b.WriteString("\n")

		for i, hunk := range item.Hunks {
			header := fmt.Sprintf("@@ -%d,%d +%d,%d @@",
				hunk.LocalStart, hunk.LocalCount,
				hunk.RemoteStart, hunk.RemoteCount)
			b.WriteString(resolveStyles.HunkHeader.Render(header))
			b.WriteString("\n")

			for _, line := range hunk.Lines {
				var styled string
				switch line.Type {
				case sync.DiffLineAdded:
					styled = resolveStyles.Added.Render("+" + line.Content)
				case sync.DiffLineRemoved:
					styled = resolveStyles.Removed.Render("-" + line.Content)
				default:
					styled = resolveStyles.Context.Render(" " + line.Content)
				}
				b.WriteString(styled)
				b.WriteString("\n")
			}

			if i < len(item.Hunks)-1 {
				b.WriteString("\n")
			}
		}
	} else {
		b.WriteString("\n")
		b.WriteString(resolveStyles.SectionTitle.Render("Local Content"))
		b.WriteString("\n")
		b.WriteString(resolveStyles.Removed.Render(item.LocalDoc.Content))
		b.WriteString("\n\n")
		b.WriteString(resolveStyles.SectionTitle.Render("Remote Content"))
		b.WriteString("\n")
		b.WriteString(resolveStyles.Added.Render(item.RemoteDoc.Content))
	}

	return b.String()
}

// View implements tea.Model.
func (m ResolveListModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.phase {
	case phaseDetail:
		return m.viewDetail()
	default:
		return m.viewList()
	}
}

func (m ResolveListModel) viewList() string {
	var b strings.Builder

	b.WriteString(resolveStyles.Title.Render("Resolve Conflicts"))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString("No conflicts to resolve.\n")
		return b.String()
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")

	chosen := len(m.choices)
	b.WriteString(resolveStyles.Status.Render(
		fmt.Sprintf("%d/%d chosen", chosen, len(m.items))))
	b.WriteString("\n")

	if m.confirmMode {
		b.WriteString(resolveStyles.Confirm.Render("Apply these resolutions? (y/n)"))
		b.WriteString("\n")
	} else if m.showHelp {
		b.WriteString(m.helpView())
	} else {
		b.WriteString(resolveStyles.Help.Render("l use local · r use remote · m manual · x skip · enter diff · y apply · ? help · q quit"))
		b.WriteString("\n")
	}

	return b.String()
}

func (m ResolveListModel) viewDetail() string {
	var b strings.Builder

	b.WriteString(resolveStyles.Title.Render("Conflict Diff"))
	b.WriteString("\n")

	if m.ready {
		b.WriteString(m.viewport.View())
	} else {
		b.WriteString(m.buildDetailContent())
	}

	b.WriteString("\n")
	b.WriteString(resolveStyles.Help.Render("l use local · r use remote · m manual · x skip · esc back · q quit"))
	b.WriteString("\n")

	return b.String()
}

func (m ResolveListModel) helpView() string {
	bindings := []key.Binding{
		m.keys.Up, m.keys.Down, m.keys.Select,
		m.keys.Local, m.keys.Remote, m.keys.Manual, m.keys.Skip,
		m.keys.Confirm, m.keys.Back, m.keys.Quit,
	}

	var b strings.Builder
	for _, binding := range bindings {
		b.WriteString(resolveStyles.Help.Render(
			fmt.Sprintf("  %-10s %s", binding.Help().Key, binding.Help().Desc)))
		b.WriteString("\n")
	}
	return b.String()
}
