// Package tui drives resource views from a terminal with bubbletea.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/JULEEP/admin-frontend/internal/domain/model"
	"github.com/JULEEP/admin-frontend/internal/domain/mutation"
	"github.com/JULEEP/admin-frontend/internal/domain/view"
	"github.com/JULEEP/admin-frontend/internal/service"
)

// commandTimeout bounds a single operator command.
const commandTimeout = 5 * time.Second

// maxColumnWidth caps table column widths.
const maxColumnWidth = 28

// ViewRegistry is the subset of the view registry the terminal console needs.
type ViewRegistry interface {
	Catalog() *model.ResourceCatalog
	Navigate(sess model.Session, resource string) (*view.View, error)
}

var _ ViewRegistry = (*service.ViewRegistry)(nil)

// Options configures New.
type Options struct {
	Registry ViewRegistry  // Required
	Session  model.Session // Required: owner of the mounted views
	Resource string        // Optional: first resource; defaults to the first by name
	Logger   *slog.Logger  // Optional
}

type (
	mountedMsg struct {
		seq      uint64
		resource string
		view     *view.View
		err      error
	}
	snapshotMsg struct {
		sub  int
		snap view.Snapshot
	}
	subscriptionClosedMsg struct{ sub int }
	actionResultMsg       struct {
		action string
		err    error
	}
)

// Model is the bubbletea model of the terminal console.
type Model struct {
	registry ViewRegistry
	sess     model.Session
	logger   *slog.Logger

	resource string
	desc     model.ResourceDescriptor
	view     *view.View
	snap     view.Snapshot
	mounted  bool

	// mountSeq numbers navigations; only the mountedMsg of the latest one is applied.
	mountSeq    uint64
	latestMount *atomic.Uint64
	mountMu     *sync.Mutex
	pending     string

	sub         int
	updates     <-chan view.Snapshot
	unsubscribe func()

	table   table.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap
	styles  styles

	status string
	width  int
}

// New builds the console model for opts.Resource.
func New(opts Options) (Model, error) {
	if opts.Registry == nil {
		return Model{}, errors.New("view registry is required")
	}
	if opts.Session.ID == "" {
		return Model{}, errors.New("session is required")
	}
	catalog := opts.Registry.Catalog()
	resource := opts.Resource
	if resource == "" {
		names := catalog.Names()
		if len(names) == 0 {
			return Model{}, errors.New("resource catalog is empty")
		}
		resource = names[0]
	}
	desc, ok := catalog.Get(resource)
	if !ok {
		return Model{}, fmt.Errorf("unknown resource %q (available: %s)", resource, strings.Join(catalog.Names(), ", "))
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	latest := new(atomic.Uint64)
	latest.Store(1)

	return Model{
		registry:    opts.Registry,
		sess:        opts.Session,
		logger:      logger.With("component", "tui"),
		resource:    resource,
		desc:        desc,
		mountSeq:    1,
		latestMount: latest,
		mountMu:     new(sync.Mutex),
		table: table.New(
			table.WithFocused(true),
			table.WithStyles(tableStyles()),
		),
		spinner: sp,
		help:    help.New(),
		keys:    defaultKeyMap(),
		styles:  defaultStyles(),
	}, nil
}

// Resource returns the name of the resource on screen.
func (m Model) Resource() string { return m.resource }

// Snapshot returns the last snapshot received from the mounted view.
func (m Model) Snapshot() view.Snapshot { return m.snap }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.mount(m.resource, m.mountSeq), m.spinner.Tick)
}

// remount starts a navigation to resource that supersedes any still in flight.
func (m Model) remount(resource string) (Model, tea.Cmd) {
	m.mountSeq++
	m.latestMount.Store(m.mountSeq)
	m.pending = resource
	return m, m.mount(resource, m.mountSeq)
}

// mount navigates the session to resource. The registry unmounts the previous view.
// Navigations run one at a time and a superseded one does not navigate at all, so
// the registry ends on the latest requested resource.
func (m Model) mount(resource string, seq uint64) tea.Cmd {
	registry, sess := m.registry, m.sess
	latest, mu := m.latestMount, m.mountMu
	return func() tea.Msg {
		mu.Lock()
		defer mu.Unlock()
		if latest.Load() != seq {
			return mountedMsg{seq: seq, resource: resource}
		}
		v, err := registry.Navigate(sess, resource)
		return mountedMsg{seq: seq, resource: resource, view: v, err: err}
	}
}

func listen(ch <-chan view.Snapshot, sub int) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return subscriptionClosedMsg{sub: sub}
		}
		return snapshotMsg{sub: sub, snap: snap}
	}
}

// run executes an operator command against the mounted view.
func (m Model) run(action string, fn func(ctx context.Context, v *view.View) (view.Snapshot, error)) tea.Cmd {
	v := m.view
	if v == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		_, err := fn(ctx, v)
		return actionResultMsg{action: action, err: err}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case mountedMsg:
		return m.onMounted(msg)

	case snapshotMsg:
		if msg.sub != m.sub {
			return m, nil
		}
		m.applySnapshot(msg.snap)
		return m, listen(m.updates, m.sub)

	case subscriptionClosedMsg:
		if msg.sub == m.sub {
			m.status = "The view was closed. Press r to reload."
			m.mounted = false
		}
		return m, nil

	case actionResultMsg:
		if msg.err != nil {
			m.status = m.describeError(msg.err)
			m.logger.Debug("command rejected", "action", msg.action, "resource", m.resource, "error", msg.err)
		} else {
			m.status = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) onMounted(msg mountedMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.mountSeq {
		return m, nil
	}
	m.pending = ""
	if msg.err != nil {
		m.status = fmt.Sprintf("Could not open %s: %v", msg.resource, msg.err)
		m.logger.Error("mount failed", "resource", msg.resource, "error", msg.err)
		return m, nil
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.sub++
	m.resource = msg.resource
	m.desc = msg.view.Descriptor()
	m.view = msg.view
	m.mounted = true
	m.status = ""
	m.updates, m.unsubscribe = msg.view.Subscribe()
	m.snap = view.Snapshot{Resource: msg.resource, Phase: view.PhaseLoading}
	m.table.SetRows(nil)
	m.table.SetColumns(columnsFor(m.desc, nil))
	m.table.SetCursor(0)
	return m, listen(m.updates, m.sub)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Next):
		from := m.resource
		if m.pending != "" {
			from = m.pending
		}
		return m.remount(m.registry.Catalog().Next(from))
	case key.Matches(msg, m.keys.Reload):
		if !m.mounted {
			return m.remount(m.resource)
		}
		return m, m.run("reload", func(ctx context.Context, v *view.View) (view.Snapshot, error) {
			return v.Reload(ctx)
		})
	case key.Matches(msg, m.keys.PrevPage), key.Matches(msg, m.keys.NextPage):
		page := m.snap.Page.Index - 1
		if key.Matches(msg, m.keys.NextPage) {
			page = m.snap.Page.Index + 1
		}
		return m, m.run("change_page", func(ctx context.Context, v *view.View) (view.Snapshot, error) {
			return v.ChangePage(ctx, page)
		})
	case key.Matches(msg, m.keys.Toggle):
		id, ok := m.selectedID()
		if !ok {
			return m, nil
		}
		return m, m.run("toggle", func(ctx context.Context, v *view.View) (view.Snapshot, error) {
			return v.Toggle(ctx, id)
		})
	case key.Matches(msg, m.keys.Delete):
		id, ok := m.selectedID()
		if !ok {
			return m, nil
		}
		return m, m.run("request_delete", func(ctx context.Context, v *view.View) (view.Snapshot, error) {
			return v.RequestDelete(ctx, id)
		})
	case key.Matches(msg, m.keys.Confirm):
		return m, m.run("confirm_delete", func(ctx context.Context, v *view.View) (view.Snapshot, error) {
			return v.ConfirmDelete(ctx)
		})
	case key.Matches(msg, m.keys.Cancel):
		return m, m.run("cancel_delete", func(ctx context.Context, v *view.View) (view.Snapshot, error) {
			return v.CancelDelete(ctx)
		})
	case key.Matches(msg, m.keys.Ack):
		return m, m.run("acknowledge_notice", func(ctx context.Context, v *view.View) (view.Snapshot, error) {
			return v.AcknowledgeNotice(ctx)
		})
	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

// selectedID returns the id of the highlighted row.
func (m Model) selectedID() (string, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.snap.Rows) {
		return "", false
	}
	return m.snap.Rows[i].ID, true
}

func (m *Model) applySnapshot(snap view.Snapshot) {
	prevPage := m.snap.Page.Index
	m.snap = snap
	m.table.SetColumns(columnsFor(m.desc, snap.Rows))
	rows := make([]table.Row, 0, len(snap.Rows))
	for _, e := range snap.Rows {
		rows = append(rows, m.rowFor(e))
	}
	m.table.SetRows(rows)
	m.table.SetHeight(max(len(rows), 1) + 1)
	if snap.Page.Index != prevPage || m.table.Cursor() >= len(rows) {
		m.table.SetCursor(0)
	}
}

func (m Model) rowFor(e model.Entity) table.Row {
	cells := model.FormatRow(m.desc, e)
	row := make(table.Row, 0, len(cells)+1)
	for _, c := range cells {
		row = append(row, c.Text)
	}
	row = append(row, m.rowState(e))
	return row
}

// rowState summarizes the per-row flags shown in the last column.
func (m Model) rowState(e model.Entity) string {
	var flags []string
	if m.desc.CanToggle() {
		if e.Bool(m.desc.ToggleField) {
			flags = append(flags, "on")
		} else {
			flags = append(flags, "off")
		}
	}
	for _, f := range m.snap.FailedToggles {
		if f.EntityID == e.ID {
			flags = append(flags, "not saved")
			break
		}
	}
	if m.snap.IsDeleting(e.ID) {
		flags = append(flags, "deleting")
	}
	return strings.Join(flags, ", ")
}

func columnsFor(desc model.ResourceDescriptor, rows []model.Entity) []table.Column {
	cols := make([]table.Column, 0, len(desc.Columns)+1)
	for i, c := range desc.Columns {
		width := lipgloss.Width(c.Label)
		for _, e := range rows {
			cells := model.FormatRow(desc, e)
			if i < len(cells) {
				width = max(width, lipgloss.Width(cells[i].Text))
			}
		}
		cols = append(cols, table.Column{Title: c.Label, Width: min(width, maxColumnWidth)})
	}
	return append(cols, table.Column{Title: "State", Width: 18})
}

func (m Model) singular() string {
	if m.desc.Singular != "" {
		return m.desc.Singular
	}
	return "item"
}

func (m Model) describeError(err error) string {
	switch {
	case errors.Is(err, view.ErrBusy):
		return "Answer the open dialog or wait for the list to load first."
	case errors.Is(err, view.ErrNotToggleable):
		return fmt.Sprintf("%s cannot be toggled.", m.desc.Title)
	case errors.Is(err, view.ErrNotDeletable):
		return fmt.Sprintf("%s cannot be deleted.", m.desc.Title)
	case errors.Is(err, view.ErrNothingPending):
		return "There is no delete waiting for confirmation."
	case errors.Is(err, mutation.ErrEntityNotFound):
		return fmt.Sprintf("This %s is no longer in the list.", m.singular())
	case errors.Is(err, view.ErrUnmounted), errors.Is(err, service.ErrRegistryClosed):
		return "The view was closed. Press r to reload."
	default:
		return err.Error()
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	title := m.desc.Title
	if m.snap.Phase == view.PhaseLoading || !m.snap.Idle() {
		title += " " + m.spinner.View()
	}
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n")

	switch {
	case m.snap.Phase == view.PhaseLoading:
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("Loading %s...", strings.ToLower(m.desc.Title))))
	case m.snap.LoadFailed && len(m.snap.Rows) == 0:
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("%s could not be loaded. Press r to retry.", m.desc.Title)))
	case m.snap.Phase == view.PhaseEmpty:
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("No %s found.", strings.ToLower(m.desc.Title))))
	default:
		b.WriteString(m.table.View())
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render(m.pageSummary()))
	}
	b.WriteString("\n")

	if n := len(m.snap.FailedToggles); n > 0 {
		b.WriteString(m.styles.Warning.Render(fmt.Sprintf("%d change(s) were not saved by the server.", n)))
		b.WriteString("\n")
	}

	if m.snap.Phase == view.PhasePendingConfirmation {
		b.WriteString(m.styles.Dialog.Render(fmt.Sprintf("Are you sure you want to delete this %s?  [y] delete  [n] cancel", m.singular())))
		b.WriteString("\n")
	}
	if n := m.snap.Notice; n != nil {
		style := m.styles.Error
		if n.Kind == view.NoticeSuccess {
			style = m.styles.Success
		}
		b.WriteString(style.Render(n.Message + "  [enter] OK"))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(m.styles.Status.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderTabs() string {
	names := m.registry.Catalog().Names()
	tabs := make([]string, 0, len(names))
	for _, name := range names {
		desc, _ := m.registry.Catalog().Get(name)
		if name == m.resource {
			tabs = append(tabs, m.styles.ActiveTab.Render(desc.Title))
			continue
		}
		tabs = append(tabs, m.styles.Tab.Render(desc.Title))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) pageSummary() string {
	p := m.snap.Page
	return fmt.Sprintf("Showing %d to %d of %d  ·  page %d of %d", p.FirstItem, p.LastItem, p.TotalItems, p.Index, max(p.TotalPages, 1))
}
