package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/troyzx/cmat/internal/domain"
	"github.com/troyzx/cmat/internal/render"
)

type screen int

const (
	screenHome screen = iota
	screenTargets
	screenRuns
	screenRunView
	screenAnalyzing
)

type menuItem struct {
	title string
	desc  string
}

func (m menuItem) Title() string       { return m.title }
func (m menuItem) Description() string { return m.desc }
func (m menuItem) FilterValue() string { return m.title }

type targetItem struct {
	name string
	path string
}

func (t targetItem) Title() string       { return t.name }
func (t targetItem) Description() string { return t.path }
func (t targetItem) FilterValue() string { return t.name }

type runItem struct {
	run domain.AnalysisRun
}

func (r runItem) Title() string { return r.run.ID }
func (r runItem) Description() string {
	best := "no constraint"
	if b, ok := r.run.Constraints.Best(); ok {
		best = fmt.Sprintf("M < %.3g M_Jup", b.UpperBoundMJup)
	}
	return fmt.Sprintf("%s · %d transits · %s",
		r.run.StartedAt.Format(time.RFC3339), len(r.run.Transits), best)
}
func (r runItem) FilterValue() string { return r.run.ID + " " + r.run.TargetName }

type model struct {
	theme Theme
	deps  Deps

	scr     screen
	menu    list.Model
	targets list.Model
	runs    list.Model

	viewedRun   domain.AnalysisRun
	viewedRunID string
	analyzing   string
	analysisCh  chan analysisDoneMsg

	statusErr error

	workspaceFound bool
	workspaceRoot  string
}

func Run(deps Deps) error {
	m := newModel(deps)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	return l
}

func newModel(deps Deps) model {
	t := DefaultTheme()

	items := []list.Item{
		menuItem{"Targets", "Browse targets and run the timing analysis"},
		menuItem{"Runs", "Browse saved analysis runs"},
		menuItem{"Init Workspace", "Scaffold targets/, data/, results/ here"},
		menuItem{"Quit", "Exit CMAT"},
	}

	menu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	menu.Title = "CMAT"
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(true)
	menu.SetShowHelp(false)

	m := model{
		theme:   t,
		deps:    deps,
		scr:     screenHome,
		menu:    menu,
		targets: newList("Targets"),
		runs:    newList("Runs"),
	}

	wd, err := os.Getwd()
	if err == nil && deps.WorkspaceLocator != nil {
		root, findErr := deps.WorkspaceLocator.FindRoot(wd)
		if findErr == nil {
			m.workspaceFound = true
			m.workspaceRoot = root
		}
	}

	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w, h := msg.Width, msg.Height
		m.menu.SetSize(w-4, h-10)
		m.targets.SetSize(w-4, h-10)
		m.runs.SetSize(w-4, h-10)
		return m, nil

	case initWorkspaceDoneMsg:
		m.statusErr = msg.err
		if msg.err == nil {
			m.workspaceFound = true
			m.workspaceRoot = msg.root
		}
		return m, nil

	case targetsLoadedMsg:
		m.statusErr = msg.err
		items := make([]list.Item, 0, len(msg.refs))
		for _, r := range msg.refs {
			rel, relErr := filepath.Rel(msg.root, r.Path)
			if relErr != nil {
				rel = r.Path
			}
			items = append(items, targetItem{name: r.Name, path: rel})
		}
		m.targets.SetItems(items)
		return m, nil

	case runsLoadedMsg:
		m.statusErr = msg.err
		items := make([]list.Item, 0, len(msg.runs))
		// Newest first.
		for i := len(msg.runs) - 1; i >= 0; i-- {
			items = append(items, runItem{run: msg.runs[i]})
		}
		m.runs.SetItems(items)
		return m, nil

	case analysisDoneMsg:
		m.analysisCh = nil
		m.analyzing = ""
		m.statusErr = msg.err
		if msg.err != nil {
			m.scr = screenTargets
			return m, nil
		}
		m.viewedRun = msg.run
		m.viewedRunID = msg.id
		m.scr = screenRunView
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActiveList(msg)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "q":
		if m.scr == screenHome {
			return m, tea.Quit
		}
		if m.scr != screenAnalyzing {
			m.scr = screenHome
			m.statusErr = nil
		}
		return m, nil

	case "esc", "b":
		switch m.scr {
		case screenRunView:
			m.scr = screenRuns
			return m, cmdLoadRuns(m.workspaceRoot)
		case screenTargets, screenRuns:
			m.scr = screenHome
			m.statusErr = nil
		}
		return m, nil

	case "enter":
		return m.handleEnter()
	}

	return m.updateActiveList(msg)
}

func (m model) handleEnter() (tea.Model, tea.Cmd) {
	switch m.scr {
	case screenHome:
		it, ok := m.menu.SelectedItem().(menuItem)
		if !ok {
			return m, nil
		}
		switch it.title {
		case "Quit":
			return m, tea.Quit
		case "Init Workspace":
			wd, err := os.Getwd()
			if err != nil {
				m.statusErr = err
				return m, nil
			}
			return m, cmdInitWorkspaceHere(m.deps, wd)
		case "Targets":
			if !m.workspaceFound {
				m.statusErr = fmt.Errorf("no workspace found (use Init Workspace)")
				return m, nil
			}
			m.scr = screenTargets
			return m, cmdLoadTargets(m.workspaceRoot)
		case "Runs":
			if !m.workspaceFound {
				m.statusErr = fmt.Errorf("no workspace found (use Init Workspace)")
				return m, nil
			}
			m.scr = screenRuns
			return m, cmdLoadRuns(m.workspaceRoot)
		}
		return m, nil

	case screenTargets:
		it, ok := m.targets.SelectedItem().(targetItem)
		if !ok {
			return m, nil
		}
		m.scr = screenAnalyzing
		m.analyzing = it.name
		ch, cmd := startAnalysisAsync(m.workspaceRoot, filepath.Join(m.workspaceRoot, it.path), m.deps.Logger)
		m.analysisCh = ch
		return m, cmd

	case screenRuns:
		it, ok := m.runs.SelectedItem().(runItem)
		if !ok {
			return m, nil
		}
		m.viewedRun = it.run
		m.viewedRunID = it.run.ID
		m.scr = screenRunView
		return m, nil
	}

	return m, nil
}

func (m model) updateActiveList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.scr {
	case screenHome:
		m.menu, cmd = m.menu.Update(msg)
	case screenTargets:
		m.targets, cmd = m.targets.Update(msg)
	case screenRuns:
		m.runs, cmd = m.runs.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	wrap := lipgloss.NewStyle().Padding(1, 2)
	header := m.theme.Title.Render("CMAT") + "\n" +
		m.theme.Subtitle.Render("Companion mass bounds from transit timing variations") + "\n"

	var workspaceBanner string
	if m.workspaceFound {
		workspaceBanner = m.theme.Help.Render(fmt.Sprintf("Workspace: %s", m.workspaceRoot))
	} else {
		workspaceBanner = m.theme.Card.Render(
			"⚠ No workspace found.\n\nUse Init Workspace to scaffold one here.",
		)
	}

	var status string
	if m.statusErr != nil {
		status = "\n" + m.theme.Error.Render("error: "+m.statusErr.Error())
	}

	switch m.scr {
	case screenHome:
		help := m.theme.Help.Render("↑/↓ navigate • enter open • / search • q quit")
		return wrap.Render(header + "\n" + workspaceBanner + status + "\n\n" + m.theme.Card.Render(m.menu.View()) + "\n" + help)

	case screenTargets:
		help := m.theme.Help.Render("enter analyze • esc/b back • q home")
		return wrap.Render(header + "\n" + workspaceBanner + status + "\n\n" + m.theme.Card.Render(m.targets.View()) + "\n" + help)

	case screenRuns:
		help := m.theme.Help.Render("enter view • esc/b back • q home")
		return wrap.Render(header + "\n" + workspaceBanner + status + "\n\n" + m.theme.Card.Render(m.runs.View()) + "\n" + help)

	case screenAnalyzing:
		card := m.theme.Card.Render(fmt.Sprintf("Analyzing %s …\n\nFitting transits, refitting the ephemeris,\nand constraining the companion mass.", m.analyzing))
		return wrap.Render(header + "\n" + workspaceBanner + "\n\n" + card)

	case screenRunView:
		body := fmt.Sprintf("%s\n\n%s\n%s\n%s",
			m.theme.Title.Render(fmt.Sprintf("%s — %s", m.viewedRun.TargetName, m.viewedRunID)),
			render.TTVPlot(m.viewedRun.TTV),
			render.TransitTable(m.viewedRun.Transits),
			render.ConstraintTable(m.viewedRun.Constraints),
		)
		help := m.theme.Help.Render("esc/b back • q home")
		return wrap.Render(header + "\n" + m.theme.Card.Render(body) + "\n" + help)

	default:
		return wrap.Render(header + "\n" + "unknown state")
	}
}
