package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/marshallshelly/pebble-mysql/pkg/migration"
)

// InitMode represents the current mode of the init UI
type InitMode int

const (
	ModeList InitMode = iota
	ModeConfirm
	ModeExecuting
	ModeComplete
	ModeError
)

// Initializer drops and recreates the tables of the plan.
type Initializer func(ctx context.Context) error

// InitModel is the Bubbletea model for interactive schema initialization
type InitModel struct {
	mode         InitMode
	list         list.Model
	confirmation ConfirmationDialog
	progress     ProgressView
	logs         LogView
	err          error
	width        int
	height       int
	showDDL      bool
	database     string
	plan         *migration.Plan
	run          Initializer
}

// NewInitModel creates a new init UI model
func NewInitModel(database string, plan *migration.Plan, run Initializer) InitModel {
	items := make([]list.Item, len(plan.Tables))
	for i, tp := range plan.Tables {
		items[i] = TableItem{Model: tp.Model, Tables: tp.Tables, Status: StatusPending}
	}

	l := list.New(items, TableItemDelegate{}, 0, 0)
	l.Title = "Schema of " + database
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return InitModel{
		mode:     ModeList,
		list:     l,
		logs:     NewLogView(10),
		database: database,
		plan:     plan,
		run:      run,
	}
}

// Init initializes the model
func (m InitModel) Init() tea.Cmd {
	return tea.EnterAltScreen
}

// Messages
type confirmedMsg struct{}

type cancelledMsg struct{}

type initDoneMsg struct {
	err error
}

func runInitCmd(run Initializer) tea.Cmd {
	return func() tea.Msg {
		return initDoneMsg{err: run(context.Background())}
	}
}

// Update handles messages
func (m InitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case confirmedMsg:
		m.mode = ModeExecuting
		m.progress = ProgressView{
			Current: 0,
			Total:   len(m.plan.Tables),
			Message: fmt.Sprintf("Recreating %d table(s) in %s", len(m.plan.TableNames()), m.database),
		}
		cmd := m.setStatus(StatusRunning)
		return m, tea.Batch(cmd, runInitCmd(m.run))

	case cancelledMsg:
		m.mode = ModeList
		return m, nil

	case initDoneMsg:
		if msg.err != nil {
			m.mode = ModeError
			m.err = msg.err
			m.logs.AddLog(dangerStyle.Render("Failed: " + msg.err.Error()))
			cmd := m.setStatus(StatusFailed)
			return m, cmd
		}

		for _, item := range m.list.Items() {
			m.logs.AddLog(successStyle.Render("✓ Created: " + strings.Join(item.(TableItem).Tables, ", ")))
		}
		cmd := m.setStatus(StatusCreated)
		m.progress.Current = m.progress.Total
		m.mode = ModeComplete
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case ModeList:
			if m.list.FilterState() == list.Filtering {
				break
			}
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit

			case "d":
				m.showDDL = !m.showDDL
				return m, nil

			case "enter", " ":
				m.confirmation = NewConfirmationDialog(
					"Confirm Schema Initialization",
					fmt.Sprintf("This drops and recreates %d table(s) in %s.\nAll of their rows are lost. Continue?",
						len(m.plan.TableNames()), m.database),
				)
				m.confirmation.OnConfirm = func() tea.Cmd {
					return func() tea.Msg { return confirmedMsg{} }
				}
				m.confirmation.OnCancel = func() tea.Cmd {
					return func() tea.Msg { return cancelledMsg{} }
				}
				m.mode = ModeConfirm
				return m, nil
			}

		case ModeConfirm:
			switch msg.String() {
			case "ctrl+c", "q", "esc":
				m.mode = ModeList
				return m, nil
			default:
				return m, m.confirmation.Update(msg)
			}

		case ModeComplete, ModeError:
			switch msg.String() {
			case "ctrl+c", "q", "enter":
				return m, tea.Quit
			}
		}
	}

	// Update list
	if m.mode == ModeList {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	return m, nil
}

// setStatus marks every table item with status.
func (m *InitModel) setStatus(status TableStatus) tea.Cmd {
	items := m.list.Items()
	for i, item := range items {
		ti := item.(TableItem)
		ti.Status = status
		items[i] = ti
	}
	return m.list.SetItems(items)
}

// selectedDDL returns the statements of the highlighted model.
func (m InitModel) selectedDDL() string {
	i := m.list.Index()
	if i < 0 || i >= len(m.plan.Tables) {
		return ""
	}
	return strings.Join(m.plan.Tables[i].Statements, "\n")
}

// View renders the UI
func (m InitModel) View() string {
	switch m.mode {
	case ModeList:
		help := helpStyle.Render(
			FormatKey("↑/↓", "navigate") + " • " +
				FormatKey("d", "toggle DDL") + " • " +
				FormatKey("enter", "initialize") + " • " +
				FormatKey("q", "quit"),
		)
		views := []string{m.list.View()}
		if m.showDDL {
			views = append(views, codeStyle.Render(m.selectedDDL()))
		}
		views = append(views, help)
		return lipgloss.JoinVertical(lipgloss.Left, views...)

	case ModeConfirm:
		return lipgloss.Place(
			m.width,
			m.height,
			lipgloss.Center,
			lipgloss.Center,
			m.confirmation.View(),
		)

	case ModeExecuting:
		return lipgloss.Place(
			m.width,
			m.height,
			lipgloss.Center,
			lipgloss.Center,
			lipgloss.JoinVertical(
				lipgloss.Left,
				m.progress.View(),
				"\n",
				m.logs.View(),
			),
		)

	case ModeComplete:
		msg := titleStyle.Render("Schema Initialized!") + "\n\n" +
			successStyle.Render(fmt.Sprintf("Recreated %d table(s) for %d model(s)", len(m.plan.TableNames()), len(m.plan.Tables))) + "\n" +
			subtitleStyle.Render(m.database) + "\n\n" +
			helpStyle.Render(FormatKey("enter/q", "exit"))

		return lipgloss.Place(
			m.width,
			m.height,
			lipgloss.Center,
			lipgloss.Center,
			boxStyle.Render(msg),
		)

	case ModeError:
		msg := titleStyle.Render("Initialization Failed") + "\n\n" +
			errorStyle.Render(m.err.Error()) + "\n\n" +
			m.logs.View() + "\n\n" +
			helpStyle.Render(FormatKey("enter/q", "exit"))

		return lipgloss.Place(
			m.width,
			m.height,
			lipgloss.Center,
			lipgloss.Center,
			boxStyle.Render(msg),
		)
	}

	return "Unknown mode"
}

// Err returns the initialization error, if any.
func (m InitModel) Err() error { return m.err }

// Done reports whether initialization ran to completion.
func (m InitModel) Done() bool { return m.mode == ModeComplete }

// RunInitUI starts the interactive init UI. It reports whether the schema
// was initialized.
func RunInitUI(database string, plan *migration.Plan, run Initializer) (bool, error) {
	p := tea.NewProgram(NewInitModel(database, plan, run))
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m := final.(InitModel)
	return m.Done(), m.Err()
}
