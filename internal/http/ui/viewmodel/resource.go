package viewmodel

import (
	"fmt"

	"github.com/JULEEP/admin-frontend/internal/domain/model"
	"github.com/JULEEP/admin-frontend/internal/domain/view"
)

// Column is a table header.
type Column struct {
	Label string
	Kind  model.ColumnKind
}

// Row is one rendered entity.
type Row struct {
	ID    string
	Cells []model.Cell
	// ToggleOn is the current toggle flag when the resource is toggleable.
	ToggleOn bool
	// ToggleFailed marks a toggle the server rejected.
	ToggleFailed bool
	Deleting     bool
}

// Notice is the blocking message shown until acknowledged.
type Notice struct {
	Kind    string
	Message string
	IsError bool
}

// Confirm is the delete confirmation dialog.
type Confirm struct {
	EntityID string
	Message  string
}

// ResourceView is the template model of one mounted resource view.
type ResourceView struct {
	Resource   string
	Title      string
	Singular   string
	BasePath   string
	Columns    []Column
	Rows       []Row
	Loading    bool
	Empty      bool
	LoadFailed bool
	Busy       bool
	CanToggle  bool
	CanDelete  bool
	// HasDetail links each row id to its detail page.
	HasDetail bool
	// ToggleLabel names the toggled flag in action buttons (e.g. "published").
	ToggleLabel string
	Pagination  Pagination
	Notice      *Notice
	Confirm     *Confirm
	Generation  uint64
	// CSRFToken is echoed by the action forms.
	CSRFToken string
}

// NewResourceView maps a view snapshot onto the template model.
func NewResourceView(desc model.ResourceDescriptor, snap view.Snapshot) ResourceView {
	basePath := "/" + desc.Name
	rv := ResourceView{
		Resource:    desc.Name,
		Title:       desc.Title,
		Singular:    singular(desc),
		BasePath:    basePath,
		Loading:     snap.Phase == view.PhaseLoading,
		Empty:       snap.Phase == view.PhaseEmpty,
		LoadFailed:  snap.LoadFailed,
		Busy:        !snap.Idle(),
		CanToggle:   desc.CanToggle(),
		CanDelete:   desc.CanDelete(),
		HasDetail:   desc.HasDetail(),
		ToggleLabel: desc.ToggleField,
		Pagination:  NewPagination(basePath, snap.Page, snap.PageNumbers),
		Generation:  snap.Generation,
	}

	rv.Columns = make([]Column, len(desc.Columns))
	for i, c := range desc.Columns {
		rv.Columns[i] = Column{Label: c.Label, Kind: c.Kind}
	}

	failed := make(map[string]bool, len(snap.FailedToggles))
	for _, f := range snap.FailedToggles {
		if !f.RolledBack {
			failed[f.EntityID] = true
		}
	}

	rv.Rows = make([]Row, 0, len(snap.Rows))
	for _, e := range snap.Rows {
		row := Row{
			ID:       e.ID,
			Cells:    model.FormatRow(desc, e),
			Deleting: snap.IsDeleting(e.ID),
		}
		if rv.CanToggle {
			row.ToggleOn = e.Bool(desc.ToggleField)
			row.ToggleFailed = failed[e.ID]
		}
		rv.Rows = append(rv.Rows, row)
	}

	if snap.Notice != nil {
		rv.Notice = &Notice{
			Kind:    string(snap.Notice.Kind),
			Message: snap.Notice.Message,
			IsError: snap.Notice.Kind == view.NoticeError,
		}
	}
	if snap.Phase == view.PhasePendingConfirmation {
		rv.Confirm = &Confirm{
			EntityID: snap.PendingDelete,
			Message:  fmt.Sprintf("Are you sure you want to delete this %s?", rv.Singular),
		}
	}
	return rv
}

// DetailField is one labelled value on an entity detail page.
type DetailField struct {
	Label string
	Cell  model.Cell
}

// EntityDetail is the template model of one entity's detail page.
type EntityDetail struct {
	Resource string
	Title    string
	Singular string
	BasePath string
	ID       string
	Fields   []DetailField
}

// NewEntityDetail lays out e with the descriptor's columns, in order.
func NewEntityDetail(desc model.ResourceDescriptor, e model.Entity) EntityDetail {
	cells := model.FormatRow(desc, e)
	d := EntityDetail{
		Resource: desc.Name,
		Title:    desc.Title,
		Singular: singular(desc),
		BasePath: "/" + desc.Name,
		ID:       e.ID,
		Fields:   make([]DetailField, len(cells)),
	}
	for i, c := range desc.Columns {
		d.Fields[i] = DetailField{Label: c.Label, Cell: cells[i]}
	}
	return d
}

func singular(desc model.ResourceDescriptor) string {
	if desc.Singular != "" {
		return desc.Singular
	}
	return "item"
}
