package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	logger "github.com/sirupsen/logrus"

	"gitbulk/internal/config"
	"gitbulk/internal/domain"
	"gitbulk/internal/logic"
	"gitbulk/internal/logpipe"
	"gitbulk/internal/orchestrator"
	"gitbulk/internal/ui/handlers"
	"gitbulk/internal/ui/input"
	"gitbulk/internal/ui/input/modes"
	inputtypes "gitbulk/internal/ui/input/types"
	uilogic "gitbulk/internal/ui/logic"
	"gitbulk/internal/ui/state"
	"gitbulk/internal/ui/views"
)

const statusTimeout = 3 * time.Second

// Options are the collaborators of the UI model
type Options struct {
	Orchestrator  *orchestrator.Orchestrator
	Config        *config.Config
	ConfigService config.ConfigService
	Log           *logpipe.TextRenderer
	// Clipboard overrides the system clipboard, mainly for tests
	Clipboard func(string) error
}

// Model represents the UI state
type Model struct {
	orch      *orchestrator.Orchestrator
	config    *config.Config
	configSvc config.ConfigService
	logView   *logpipe.TextRenderer
	state     *state.AppState

	width  int
	height int
	rows   []uilogic.Row

	help    help.Model
	spinner spinner.Model

	navigator    *uilogic.Navigator
	renderer     *views.Renderer
	eventHandler *handlers.EventHandler
	inputHandler *input.Handler
	pager        *PagerOps

	ctx       context.Context
	clipboard func(string) error
}

// NewModel creates a new UI model. ctx bounds every command the model dispatches.
func NewModel(ctx context.Context, opts Options) *Model {
	m := &Model{
		orch:         opts.Orchestrator,
		config:       opts.Config,
		configSvc:    opts.ConfigService,
		logView:      opts.Log,
		state:        state.NewAppState(),
		help:         help.New(),
		spinner:      spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		navigator:    uilogic.NewNavigator(),
		renderer:     views.NewRenderer(),
		inputHandler: input.New(modes.DefaultKeyMap()),
		ctx:          ctx,
		clipboard:    opts.Clipboard,
	}
	if m.clipboard == nil {
		m.clipboard = clipboard.WriteAll
	}
	if m.logView == nil {
		m.logView = logpipe.NewTextRenderer(0, nil)
	}

	m.state.Root = m.config.RootDir()
	m.state.ShowLog = m.config.UI.ShowLog
	m.state.Filters = m.config.UI.Filters()
	m.orch.SetFilters(m.state.Filters)

	m.eventHandler = handlers.NewEventHandler(m.state, handlers.Hooks{
		Lookup:       m.orch.Node,
		LoadBranches: m.loadBranches,
		Rebuild:      m.rebuild,
		StartSpinner: func() tea.Cmd { return m.spinner.Tick },
	})
	return m
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.pager = NewPagerOps(p)
}

// Init loads the repositories under the configured base directory
func (m *Model) Init() tea.Cmd {
	return m.load(orchestrator.CommandLoad, m.state.Root)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.updateViewportHeight()
		return m, nil

	case tea.KeyMsg:
		ctx := &input.ModelContext{
			Rows:      m.rows,
			Navigator: m.navigator,
			Root:      m.state.Root,
		}
		actions, cmd := m.inputHandler.HandleKey(msg, ctx)

		cmds := []tea.Cmd{cmd}
		for _, action := range actions {
			cmds = append(cmds, m.processAction(action))
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if !m.state.Processing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if cmd := m.inputHandler.Update(msg); cmd != nil {
		return m, cmd
	}
	return m.handleNonKeyboardMsg(msg)
}

func (m *Model) handleNonKeyboardMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EventMsg:
		return m, m.eventHandler.HandleEvent(msg.Event)

	case logChangedMsg:
		// View reads the renderer directly
		return m, nil

	case commandDoneMsg:
		return m, m.commandDone(msg)

	case branchesMsg:
		if msg.err != nil {
			logger.Warnf("Branches of %s: %v", msg.path, msg.err)
			return m, nil
		}
		m.state.SetBranches(msg.path, msg.branches)
		m.rebuild()
		return m, nil

	case changesMsg:
		if msg.err != nil {
			return m, m.status(describeError(msg.err))
		}
		if len(msg.items) == 0 {
			return m, m.status(fmt.Sprintf("No uncommitted changes in %s", msg.node.Name()))
		}
		return m, m.showPager(RenderChanges(msg.node.Name(), msg.items))

	case pagerMsg:
		if msg.err != nil {
			logger.Warnf("Pager failed: %v", msg.err)
		}
		return m, nil

	case clearStatusMsg:
		m.state.StatusMessage = ""
		return m, nil
	}
	return m, nil
}

func (m *Model) commandDone(msg commandDoneMsg) tea.Cmd {
	switch msg.command {
	case orchestrator.CommandLoad, orchestrator.CommandChangeBaseDir:
		m.state.Loaded = true
	}
	// the finished event may still be queued behind node updates
	if !m.orch.Processing() {
		m.state.Processing = false
		m.state.ProcessingFor = ""
	}
	m.rebuild()

	switch {
	case msg.err == nil:
		return nil
	case errors.Is(msg.err, orchestrator.ErrDiscoveryEmpty):
		return nil
	default:
		return m.status(describeError(msg.err))
	}
}

// processAction executes one input action
func (m *Model) processAction(action inputtypes.Action) tea.Cmd {
	switch a := action.(type) {
	case inputtypes.NavigateAction:
		return m.navigate(a.Direction)

	case inputtypes.ToggleFilterAction:
		f := m.orch.Filters()
		switch a.Filter {
		case "dirty":
			f.Dirty = !f.Dirty
		case "behind":
			f.Behind = !f.Behind
		case "error":
			f.Error = !f.Error
		}
		m.applyFilters(f)

	case inputtypes.ClearFiltersAction:
		m.applyFilters(domain.Filters{})

	case inputtypes.SubmitTextAction:
		if a.Mode == inputtypes.ModeBaseDir {
			return m.changeBaseDir(a.Text)
		}

	case inputtypes.QuitAction:
		return tea.Quit

	case inputtypes.CommandAction:
		return m.runCommand(a.Command)
	}
	return nil
}

// runCommand runs an entry of the command catalogue against the selected row
func (m *Model) runCommand(cmd orchestrator.CommandType) tea.Cmd {
	row, ok := m.selectedRow()
	if !ok && !treeCommand(cmd) {
		return nil
	}
	node := row.Node
	branch := row.Branch.FriendlyName

	switch cmd {
	case orchestrator.CommandCopyPath:
		if err := m.clipboard(node.Path()); err != nil {
			return m.status(fmt.Sprintf("Copy failed: %v", err))
		}
		return m.status(fmt.Sprintf("Copied %s", node.Path()))

	case orchestrator.CommandCheckoutBranch:
		return m.dispatch(cmd, func(ctx context.Context) error {
			return resultErr(m.orch.Checkout(ctx, node, branch, true))
		})
	case orchestrator.CommandResetBranch:
		return m.dispatch(cmd, func(ctx context.Context) error {
			return resultErr(m.orch.ResetBranch(ctx, node, branch, true))
		})
	case orchestrator.CommandDeleteBranch:
		return m.dispatch(cmd, func(ctx context.Context) error {
			return resultErr(m.orch.DeleteBranch(ctx, node, branch, true))
		})

	case orchestrator.CommandStatus:
		return m.dispatch(cmd, func(ctx context.Context) error {
			return resultErr(m.orch.RefreshStatus(ctx, node))
		})
	case orchestrator.CommandFetch:
		return m.dispatch(cmd, func(ctx context.Context) error {
			return resultErr(m.orch.Fetch(ctx, node))
		})
	case orchestrator.CommandPull:
		return m.dispatch(cmd, func(ctx context.Context) error {
			return resultErr(m.orch.Pull(ctx, node))
		})
	case orchestrator.CommandUpdate:
		return m.dispatch(cmd, func(ctx context.Context) error {
			m.orch.Update(ctx, node)
			return nil
		})
	case orchestrator.CommandViewChanges:
		return m.viewChanges(node)
	case orchestrator.CommandToggleExpand:
		if m.state.Toggle(node.Path()) {
			m.rebuild()
			return m.loadBranches(node)
		}
		m.rebuild()

	case orchestrator.CommandStatusAll:
		return m.dispatch(cmd, bulk(m.orch.StatusAll))
	case orchestrator.CommandFetchAll:
		return m.dispatch(cmd, bulk(m.orch.FetchAll))
	case orchestrator.CommandPullAll:
		return m.dispatch(cmd, bulk(m.orch.PullAll))
	case orchestrator.CommandUpdateAll:
		return m.dispatch(cmd, func(ctx context.Context) error {
			_, _, err := m.orch.UpdateAll(ctx)
			return err
		})

	case orchestrator.CommandLoad:
		return m.load(cmd, m.state.Root)
	case orchestrator.CommandExpandAll:
		nodes := m.orch.View()
		m.state.ExpandAll(nodes)
		m.rebuild()
		cmds := make([]tea.Cmd, 0, len(nodes))
		for _, n := range nodes {
			cmds = append(cmds, m.loadBranches(n))
		}
		return tea.Batch(cmds...)
	case orchestrator.CommandCollapseAll:
		m.state.CollapseAll()
		m.rebuild()
	case orchestrator.CommandToggleLog:
		m.state.ShowLog = !m.state.ShowLog
		m.updateViewportHeight()
	case orchestrator.CommandResetLog:
		if err := m.orch.ResetLog(); err != nil {
			return m.status(describeError(err))
		}
	case orchestrator.CommandHelp:
		return m.showPager(RenderHelpContent(m.inputHandler.Keys()))
	}
	return nil
}

// dispatch runs fn as a top-level command off the UI goroutine
func (m *Model) dispatch(cmd orchestrator.CommandType, fn func(ctx context.Context) error) tea.Cmd {
	if m.orch.Processing() {
		return m.status(fmt.Sprintf("Busy: %s", m.state.ProcessingFor))
	}
	return func() tea.Msg {
		return commandDoneMsg{command: cmd, err: m.orch.Dispatch(m.ctx, cmd, fn)}
	}
}

func (m *Model) load(cmd orchestrator.CommandType, root string) tea.Cmd {
	return m.dispatch(cmd, func(ctx context.Context) error {
		_, err := m.orch.Load(ctx, root)
		return err
	})
}

func (m *Model) changeBaseDir(text string) tea.Cmd {
	dir := strings.TrimSpace(text)
	if dir == "" {
		return nil
	}
	dir = (&config.Config{BaseDir: dir}).RootDir()
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return m.status(fmt.Sprintf("Not a directory: %s", dir))
	}

	m.state.Root = dir
	m.saveBaseDir(dir)
	return m.load(orchestrator.CommandChangeBaseDir, dir)
}

func (m *Model) saveBaseDir(dir string) {
	if m.configSvc == nil {
		return
	}
	m.config.BaseDir = dir
	if err := m.configSvc.Save(m.config); err != nil {
		logger.Warnf("Saving base directory: %v", err)
	}
}

func (m *Model) viewChanges(node *domain.RepositoryNode) tea.Cmd {
	if node == nil {
		return nil
	}
	if !node.IsDirty() {
		return m.status(fmt.Sprintf("No uncommitted changes in %s", node.Name()))
	}
	if m.orch.Processing() {
		return m.status(fmt.Sprintf("Busy: %s", m.state.ProcessingFor))
	}
	return func() tea.Msg {
		var items []domain.ChangedItem
		err := m.orch.Dispatch(m.ctx, orchestrator.CommandViewChanges, func(context.Context) error {
			var err error
			items, err = m.orch.Changes(node)
			return err
		})
		return changesMsg{node: node, items: items, err: err}
	}
}

func (m *Model) loadBranches(node *domain.RepositoryNode) tea.Cmd {
	return func() tea.Msg {
		branches, err := logic.ComputeBranches(node)
		return branchesMsg{path: node.Path(), branches: branches, err: err}
	}
}

func (m *Model) showPager(content string) tea.Cmd {
	return func() tea.Msg {
		return pagerMsg{err: m.pager.Show(content)}
	}
}

func (m *Model) navigate(direction string) tea.Cmd {
	switch direction {
	case "up":
		m.navigator.Move(-1)
	case "down":
		m.navigator.Move(1)
	case "pageup":
		m.navigator.PageUp()
	case "pagedown":
		m.navigator.PageDown()
	case "home":
		m.navigator.Home()
	case "end":
		m.navigator.End()
	case "left":
		row, ok := m.selectedRow()
		if !ok {
			return nil
		}
		if row.Kind == uilogic.RowBranch {
			m.navigator.Reselect(m.rows, row.Node.Path())
			return nil
		}
		if m.state.Expanded[row.Node.Path()] {
			m.state.Toggle(row.Node.Path())
			m.rebuild()
		}
	case "right":
		row, ok := m.selectedRow()
		if !ok || row.Kind != uilogic.RowRepository || m.state.Expanded[row.Node.Path()] {
			return nil
		}
		m.state.Toggle(row.Node.Path())
		m.rebuild()
		return m.loadBranches(row.Node)
	}
	return nil
}

func (m *Model) applyFilters(f domain.Filters) {
	m.state.Filters = f
	m.orch.SetFilters(f)
	m.rebuild()
}

// rebuild recomputes the rows from the filtered view, keeping the selection
func (m *Model) rebuild() {
	key := ""
	if row, ok := m.selectedRow(); ok {
		key = row.Key()
	}
	m.rows = uilogic.BuildRows(m.orch.View(), m.state.Expanded, m.state.Branches)
	m.navigator.Reselect(m.rows, key)
}

func (m *Model) selectedRow() (uilogic.Row, bool) {
	i := m.navigator.Selected()
	if i < 0 || i >= len(m.rows) {
		return uilogic.Row{}, false
	}
	return m.rows[i], true
}

func (m *Model) updateViewportHeight() {
	m.navigator.SetHeight(m.height - views.ChromeHeight(m.state.ShowLog))
}

// status shows msg on the status line for a few seconds
func (m *Model) status(msg string) tea.Cmd {
	m.state.StatusMessage = msg
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	vs := views.ViewState{
		Width:          m.width,
		Height:         m.height,
		Rows:           m.rows,
		Expanded:       m.state.Expanded,
		SelectedIndex:  m.navigator.Selected(),
		ViewportOffset: m.navigator.Offset(),
		ViewportHeight: m.navigator.Height(),
		Loaded:         m.state.Loaded,
		Root:           m.state.Root,
		Count:          m.state.Count,
		Filters:        m.state.Filters,
		Processing:     m.state.Processing,
		ProcessingFor:  m.state.ProcessingFor,
		Spinner:        m.spinner.View(),
		StatusMessage:  m.state.StatusMessage,
		ShowLog:        m.state.ShowLog,
		LogLines:       m.logView.Lines(),
		HelpModel:      m.help,
		Keys:           m.inputHandler.Keys(),
	}
	if ti := m.inputHandler.TextInput(); ti != nil {
		vs.InputPrompt = "Change base directory"
		vs.TextInput = ti.View()
	}
	return m.renderer.Render(vs)
}

func treeCommand(cmd orchestrator.CommandType) bool {
	for _, c := range orchestrator.Commands {
		if c.Type == cmd {
			return c.Target&orchestrator.TargetTree != 0
		}
	}
	return false
}

func resultErr(res orchestrator.Result) error {
	if res.Outcome == orchestrator.Failed {
		return res.Err
	}
	return nil
}

func bulk(fn func(context.Context) (orchestrator.BulkResult, error)) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := fn(ctx)
		return err
	}
}

func describeError(err error) string {
	if errors.Is(err, orchestrator.ErrBusy) {
		return "Another command is still running"
	}
	return fmt.Sprintf("Error: %v", err)
}
