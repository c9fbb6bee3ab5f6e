package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/refeel-health/refeel-cli/internal/adapters/driving/tui/components/input"
	"github.com/refeel-health/refeel-cli/internal/adapters/driving/tui/components/list"
	"github.com/refeel-health/refeel-cli/internal/adapters/driving/tui/components/status"
	"github.com/refeel-health/refeel-cli/internal/adapters/driving/tui/keymap"
	"github.com/refeel-health/refeel-cli/internal/adapters/driving/tui/messages"
	"github.com/refeel-health/refeel-cli/internal/adapters/driving/tui/stage"
	"github.com/refeel-health/refeel-cli/internal/adapters/driving/tui/styles"
	"github.com/refeel-health/refeel-cli/internal/core/domain"
	"github.com/refeel-health/refeel-cli/internal/core/picking"
	"github.com/refeel-health/refeel-cli/internal/logger"
)

// panelWidth is the width of the point list shown beside the stage.
const panelWidth = 34

// minPanelTerminal is the narrowest terminal that still shows the panel.
const minPanelTerminal = 80

// mode selects what receives key presses.
type mode int

const (
	modeStage mode = iota
	modeDescribe
	modeConfirm
	modeError
	modeHelp
)

// Options configures a TUI session.
type Options struct {
	// ExamID is the exam opened on start.
	ExamID string

	// Picker tunes gesture classification and fuzzy selection.
	Picker domain.PickerSettings
}

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports *Ports
	opts  Options

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	stages  map[domain.ViewKind]*stage.Stage
	current messages.ViewType

	list *list.PointList
	bar  *status.Bar
	form *input.DescriptionForm

	mode mode

	// editing is the index the description form writes to.
	editing int

	// pending is the lifecycle confirmation on screen, nil for the local
	// quit prompt.
	pending *messages.ConfirmRequested
	prompt  string

	// pickErr holds the error of the last pick callback.
	pickErr error

	exam   domain.Exam
	loaded bool
	models <-chan string

	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has received its first size.
	ready bool

	now func() time.Time
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports, opts Options) (*App, error) {
	if ports == nil {
		return nil, fmt.Errorf("creating app: %w", ErrMissingLifecycle)
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	if opts.ExamID == "" {
		return nil, fmt.Errorf("creating app: %w", ErrMissingExam)
	}
	if opts.Picker == (domain.PickerSettings{}) {
		opts.Picker = domain.DefaultAppSettings().Picker
	}

	s := styles.Default()
	km := keymap.DefaultKeyMap()
	classifier := picking.NewClassifier(opts.Picker.DragThresholdPx, opts.Picker.TapMaxDuration)

	a := &App{
		ports:   ports,
		opts:    opts,
		ctx:     context.Background(),
		styles:  s,
		keymap:  km,
		stages:  make(map[domain.ViewKind]*stage.Stage, 2),
		current: messages.ViewStump,
		list:    list.NewPointList(s),
		bar:     status.NewBar(s, km),
		form:    input.NewDescriptionForm(s),
		now:     time.Now,
	}
	for _, kind := range []domain.ViewKind{domain.ViewStump, domain.ViewLimb} {
		st := stage.New(kind, nil, classifier)
		st.Styles = s
		if kind == domain.ViewStump {
			st.Picker.OnPick = a.onStumpPick
		} else {
			st.Picker.OnPick = a.onLimbPick
		}
		a.stages[kind] = st
	}
	return a, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("refeel - Phantom Limb Mapping"),
		a.loadExam(),
		a.ports.Confirmer.Next(a.ctx),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.MouseMsg:
		return a, a.handleMouse(msg)

	case messages.ExamLoaded:
		if msg.Err != nil {
			a.showError(msg.Err)
			return a, nil
		}
		a.exam = msg.Exam
		a.loaded = true
		a.stages[domain.ViewStump].Picker.SetMesh(msg.Stump)
		a.stages[domain.ViewLimb].Picker.SetMesh(msg.Limb)
		a.refresh()
		return a, a.watchModels()

	case messages.PointSaved:
		if msg.Err != nil {
			a.showError(msg.Err)
		} else {
			a.bar.SetState(status.StateReady)
			a.bar.SetMessage(fmt.Sprintf("saved point %d", msg.Point.Order))
		}
		a.refresh()
		return a, nil

	case messages.AllSaved:
		if msg.Err != nil {
			a.showError(msg.Err)
		} else {
			a.bar.SetState(status.StateReady)
			a.bar.SetMessage(fmt.Sprintf("saved %d points", msg.Count))
		}
		a.refresh()
		return a, nil

	case messages.PointDeleted:
		switch {
		case errors.Is(msg.Err, domain.ErrCancelled):
			a.bar.SetMessage("delete cancelled")
		case msg.Err != nil:
			a.showError(msg.Err)
		case len(msg.Orphaned) > 0:
			a.bar.SetMessage(fmt.Sprintf("point deleted, %d photos left on the store", len(msg.Orphaned)))
		default:
			a.bar.SetMessage("point deleted")
		}
		a.refresh()
		return a, nil

	case messages.ConfirmRequested:
		req := msg
		a.pending = &req
		a.prompt = msg.Prompt
		a.mode = modeConfirm
		return a, nil

	case messages.ModelChanged:
		return a, tea.Batch(a.reloadModel(msg.Name), a.nextModelChange())

	case messages.ModelReloaded:
		if msg.Err != nil {
			logger.Warn("reload %s model: %v", msg.Kind, msg.Err)
			a.bar.SetMessage(fmt.Sprintf("%s model not reloaded", msg.Kind))
			return a, nil
		}
		a.stages[msg.Kind].Picker.SetMesh(msg.Mesh)
		a.bar.SetMessage(fmt.Sprintf("%s model reloaded", msg.Kind))
		return a, nil

	case messages.ErrorOccurred:
		a.showError(msg.Err)
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	if a.mode == modeDescribe {
		var cmd tea.Cmd
		a.form, cmd = a.form.Update(msg)
		return a, cmd
	}
	return a, nil
}

// handleKey dispatches a key press according to the active mode.
//
//nolint:gocyclo // one case per binding
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case modeError:
		if key.Matches(msg, a.keymap.Dismiss) || msg.Type == tea.KeyEnter {
			a.mode = modeStage
			a.err = nil
			a.bar.Clear()
			a.refresh()
		}
		return a, nil

	case modeConfirm:
		switch {
		case key.Matches(msg, a.keymap.Confirm):
			return a, a.answer(true)
		case key.Matches(msg, a.keymap.Deny):
			return a, a.answer(false)
		}
		return a, nil

	case modeHelp:
		if key.Matches(msg, a.keymap.Help) || key.Matches(msg, a.keymap.Dismiss) || key.Matches(msg, a.keymap.Quit) {
			a.mode = modeStage
			a.bar.Clear()
		}
		return a, nil

	case modeDescribe:
		switch msg.Type {
		case tea.KeyEnter:
			a.mode = modeStage
			if _, err := a.ports.Lifecycle.UpdateDescription(a.editing, a.form.Value()); err != nil {
				a.showError(err)
			}
			a.refresh()
			return a, nil
		case tea.KeyEsc:
			a.mode = modeStage
			return a, nil
		}
		var cmd tea.Cmd
		a.form, cmd = a.form.Update(msg)
		return a, cmd

	case modeStage:
	}

	if !a.loaded {
		if key.Matches(msg, a.keymap.Quit) {
			return a, tea.Quit
		}
		return a, nil
	}

	lc := a.ports.Lifecycle
	_, selected, hasSelection := lc.Selected()

	switch {
	case key.Matches(msg, a.keymap.Quit):
		if n := lc.UnsavedCount(); n > 0 {
			a.pending = nil
			a.prompt = fmt.Sprintf("%d unsaved points will be lost. Quit anyway?", n)
			a.mode = modeConfirm
			return a, nil
		}
		return a, tea.Quit

	case key.Matches(msg, a.keymap.Help):
		a.mode = modeHelp
		a.bar.SetState(status.StateHelp)

	case key.Matches(msg, a.keymap.SwitchStage):
		a.SetView(a.otherView())

	case key.Matches(msg, a.keymap.Mapping):
		on := !lc.MappingMode()
		if err := lc.SetMappingMode(on); err != nil {
			a.showError(err)
			return a, nil
		}
		if on {
			a.SetView(messages.ViewLimb)
		}

	case key.Matches(msg, a.keymap.Save):
		if !hasSelection {
			a.bar.SetMessage("select a point to save")
			return a, nil
		}
		a.bar.SetState(status.StateSaving)
		return a, a.commitSelected()

	case key.Matches(msg, a.keymap.SaveAll):
		a.bar.SetState(status.StateSaving)
		return a, a.commitAll()

	case key.Matches(msg, a.keymap.Delete):
		if hasSelection {
			return a, a.deletePoint(selected)
		}

	case key.Matches(msg, a.keymap.Describe):
		if hasSelection {
			p, _ := lc.Points().At(selected)
			a.editing = selected
			a.mode = modeDescribe
			a.form.SetWidth(a.width / 2)
			return a, a.form.Load(p.Description())
		}

	case key.Matches(msg, a.keymap.Unmap):
		if hasSelection {
			if err := lc.UnmapLimb(selected); err != nil {
				a.showError(err)
			}
		}

	case key.Matches(msg, a.keymap.Next):
		if i, ok := a.list.Next(); ok {
			_ = lc.Select(i)
		}

	case key.Matches(msg, a.keymap.Prev):
		if i, ok := a.list.Prev(); ok {
			_ = lc.Select(i)
		}

	case key.Matches(msg, a.keymap.ZoomIn):
		a.stages[a.current.Kind()].Picker.Camera.Zoom(0.8)

	case key.Matches(msg, a.keymap.ZoomOut):
		a.stages[a.current.Kind()].Picker.Camera.Zoom(1.25)

	case key.Matches(msg, a.keymap.Dismiss):
		if lc.MappingMode() {
			_ = lc.SetMappingMode(false)
		} else {
			lc.ClearSelection()
		}
	}

	a.refresh()
	return a, nil
}

// handleMouse routes pointer input to the visible stage.
func (a *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if a.mode != modeStage || !a.loaded {
		return nil
	}
	a.pickErr = nil
	if !a.stages[a.current.Kind()].HandleMouse(msg, a.now()) {
		return nil
	}
	if a.pickErr != nil {
		a.showError(a.pickErr)
	}
	a.refresh()
	return nil
}

// onStumpPick selects a nearby point or places the uncommitted one.
func (a *App) onStumpPick(pos domain.Vec3) {
	lc := a.ports.Lifecycle
	if i, ok := lc.SelectClosestPoint(pos, a.opts.Picker.SelectRadius, domain.ViewStump); ok {
		if p, _ := lc.Points().At(i); p.IsCommitted() {
			a.bar.SetMessage(fmt.Sprintf("selected point %d", i+1))
			return
		}
	}
	p, err := lc.HandleStumpPick(pos)
	if err != nil {
		a.pickErr = err
		return
	}
	a.bar.SetMessage(fmt.Sprintf("point %d placed, m to map it", p.Order))
}

// onLimbPick maps the selected point while mapping, otherwise selects.
func (a *App) onLimbPick(pos domain.Vec3) {
	lc := a.ports.Lifecycle
	if !lc.MappingMode() {
		if i, ok := lc.SelectClosestPoint(pos, a.opts.Picker.SelectRadius, domain.ViewLimb); ok {
			a.bar.SetMessage(fmt.Sprintf("selected point %d", i+1))
		}
		return
	}
	placed, err := lc.HandleLimbPick(pos)
	switch {
	case err != nil:
		a.pickErr = err
	case placed:
		a.bar.SetMessage("point mapped, s to save")
	default:
		a.bar.SetMessage("point already mapped, u to unmap first")
	}
}

// answer resolves the confirmation on screen.
func (a *App) answer(ok bool) tea.Cmd {
	a.mode = modeStage
	req := a.pending
	a.pending = nil
	a.prompt = ""
	if req == nil {
		if ok {
			return tea.Quit
		}
		return nil
	}
	req.Reply <- ok
	return a.ports.Confirmer.Next(a.ctx)
}

// refresh mirrors lifecycle state into the list and status bar.
func (a *App) refresh() {
	lc := a.ports.Lifecycle
	points := lc.Points().Ordered()
	_, selected, ok := lc.Selected()
	if !ok {
		selected = -1
	}
	a.list.SetPoints(points, selected)
	a.bar.SetCounts(len(points), lc.UnsavedCount())
	a.bar.SetSelection(ok)

	switch {
	case a.bar.State() == status.StateError, a.bar.State() == status.StateSaving, a.bar.State() == status.StateHelp:
	case lc.MappingMode():
		a.bar.SetState(status.StateMapping)
	default:
		a.bar.SetState(status.StateReady)
	}
}

func (a *App) showError(err error) {
	a.err = err
	a.mode = modeError
	a.bar.SetState(status.StateError)
	a.bar.SetMessage(err.Error())
	logger.Debug("tui error: %v", err)
}

func (a *App) otherView() messages.ViewType {
	if a.current == messages.ViewStump {
		return messages.ViewLimb
	}
	return messages.ViewStump
}

// loadExam opens the exam and its models.
func (a *App) loadExam() tea.Cmd {
	ctx, id := a.ctx, a.opts.ExamID
	lc, meshes := a.ports.Lifecycle, a.ports.Meshes
	return func() tea.Msg {
		exam, err := lc.LoadExam(ctx, id)
		if err != nil {
			return messages.ExamLoaded{Err: err}
		}
		stump, full, err := meshes.Load(exam)
		if err != nil {
			return messages.ExamLoaded{Err: err}
		}
		return messages.ExamLoaded{Exam: exam, Stump: stump, Limb: full}
	}
}

func (a *App) commitSelected() tea.Cmd {
	ctx, lc := a.ctx, a.ports.Lifecycle
	return func() tea.Msg {
		p, err := lc.CommitSelected(ctx)
		return messages.PointSaved{Point: p, Err: err}
	}
}

func (a *App) commitAll() tea.Cmd {
	ctx, lc := a.ctx, a.ports.Lifecycle
	return func() tea.Msg {
		n, err := lc.CommitAll(ctx)
		return messages.AllSaved{Count: n, Err: err}
	}
}

func (a *App) deletePoint(index int) tea.Cmd {
	ctx, lc := a.ctx, a.ports.Lifecycle
	return func() tea.Msg {
		orphaned, err := lc.DeletePoint(ctx, index)
		return messages.PointDeleted{Orphaned: orphaned, Err: err}
	}
}

// watchModels starts watching the model directory when one is set.
func (a *App) watchModels() tea.Cmd {
	if a.models != nil || a.ports.Meshes.Dir() == "" {
		return nil
	}
	ch, err := a.ports.Meshes.Watch(a.ctx)
	if err != nil {
		logger.Warn("model watch disabled: %v", err)
		return nil
	}
	a.models = ch
	return a.nextModelChange()
}

func (a *App) nextModelChange() tea.Cmd {
	ch := a.models
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		name, ok := <-ch
		if !ok {
			return nil
		}
		return messages.ModelChanged{Name: name}
	}
}

// reloadModel re-reads name for every view of the open exam that uses it.
func (a *App) reloadModel(name string) tea.Cmd {
	if !a.loaded {
		return nil
	}
	stumpFile, fullFile := a.exam.ModelFiles()
	meshes := a.ports.Meshes

	var cmds []tea.Cmd
	for kind, file := range map[domain.ViewKind]string{domain.ViewStump: stumpFile, domain.ViewLimb: fullFile} {
		if file != name {
			continue
		}
		kind, file := kind, file
		cmds = append(cmds, func() tea.Msg {
			mesh, err := meshes.LoadFile(file, kind)
			return messages.ModelReloaded{Kind: kind, Mesh: mesh, Err: err}
		})
	}
	return tea.Batch(cmds...)
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	if !a.loaded && a.err == nil {
		return a.styles.Hint.Render(fmt.Sprintf("Opening exam %s...", a.opts.ExamID))
	}

	bodyHeight := max(a.height-2, 1)
	var body string
	switch a.mode {
	case modeHelp:
		body = a.viewHelp()
	case modeError:
		body = a.overlay(bodyHeight, a.styles.Failure.Render("Error")+"\n\n"+a.err.Error()+"\n\n"+
			a.styles.Hint.Render("enter: dismiss"))
	case modeConfirm:
		body = a.overlay(bodyHeight, a.styles.Prompt.Render(a.prompt)+"\n\n"+
			a.styles.Hint.Render("y: yes | n: no"))
	case modeDescribe:
		title := a.styles.Heading.Render(fmt.Sprintf("Describe point %d", a.editing+1))
		body = a.overlay(bodyHeight, title+"\n\n"+a.form.View()+"\n\n"+
			a.styles.Hint.Render("tab: next field | enter: save | esc: cancel"))
	case modeStage:
		body = a.viewStage()
	}

	return lipgloss.JoinVertical(lipgloss.Left, a.viewHeader(), body, a.bar.View())
}

func (a *App) viewHeader() string {
	title := "ReFeel"
	if a.loaded {
		title = fmt.Sprintf("ReFeel  %s (%s)  %s, %s  [%s]",
			a.exam.PatientName, a.exam.PatientID,
			a.exam.Limb.Description(), a.exam.Location.Description(),
			a.current)
	}
	return a.styles.Banner.Width(a.width).Render(title)
}

func (a *App) viewStage() string {
	st := a.stages[a.current.Kind()]
	canvas := st.Render(a.ports.Lifecycle.Visuals(st.Kind))
	if !a.showPanel() {
		return canvas
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, canvas, " ", a.list.View())
}

func (a *App) viewHelp() string {
	groups := a.keymap.FullHelp()
	cols := make([]string, 0, len(groups))
	for _, g := range groups {
		lines := make([]string, 0, len(g))
		for _, b := range g {
			h := b.Help()
			lines = append(lines, a.styles.Heading.Render(fmt.Sprintf("%-6s", h.Key))+" "+a.styles.Text.Render(h.Desc))
		}
		cols = append(cols, lipgloss.NewStyle().PaddingRight(4).Render(strings.Join(lines, "\n")))
	}
	tips := a.styles.Hint.Render("Tap the stump to place a point, drag to orbit, wheel to zoom.")
	return lipgloss.JoinVertical(lipgloss.Left, "", lipgloss.JoinHorizontal(lipgloss.Top, cols...), "", tips)
}

func (a *App) overlay(height int, content string) string {
	return lipgloss.Place(a.width, height, lipgloss.Center, lipgloss.Center, a.styles.Dialog.Render(content))
}

func (a *App) showPanel() bool {
	return a.width >= minPanelTerminal
}

// SetDimensions lays out the stages for a terminal size.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	cols := width
	if a.showPanel() {
		cols = width - panelWidth - 1
	}
	rows := max(height-2, 1)
	for _, st := range a.stages {
		st.SetBounds(0, 1, cols, rows)
	}
	a.list.SetDimensions(panelWidth, rows)
	a.bar.SetWidth(width)
}

// SetView switches the visible stage.
func (a *App) SetView(v messages.ViewType) {
	if v == messages.ViewHelp {
		return
	}
	a.current = v
}

// CurrentView returns the visible stage.
func (a *App) CurrentView() messages.ViewType {
	return a.current
}

// Stage returns the stage of a view kind.
func (a *App) Stage(kind domain.ViewKind) *stage.Stage {
	return a.stages[kind]
}

// Err returns the error on screen, if any.
func (a *App) Err() error {
	return a.err
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
