package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/JULEEP/admin-frontend/internal/domain/model"
	"github.com/JULEEP/admin-frontend/internal/domain/mutation"
	"github.com/JULEEP/admin-frontend/internal/domain/view"
	apperrors "github.com/JULEEP/admin-frontend/internal/errors"
	"github.com/JULEEP/admin-frontend/internal/http/ui/viewmodel"
	"github.com/JULEEP/admin-frontend/internal/http/validation"
	"github.com/JULEEP/admin-frontend/internal/service"
)

// viewAction runs one operator command against a mounted view.
type viewAction func(ctx context.Context, v *view.View) (view.Snapshot, error)

// actionSpec describes how a resource action is executed and answered.
type actionSpec struct {
	Name string
	Run  viewAction
	// Settle waits for the requests the action issued before responding.
	Settle bool
}

// ResourcePage serves GET /{resource}. A request without a page parameter is a
// navigation and mounts a fresh view; a page parameter moves the mounted view.
func (h *UIHandlers) ResourcePage(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Session required", http.StatusUnauthorized)
		return
	}
	resource := r.PathValue("resource")
	if errs := validatePath(r); len(errs) > 0 {
		h.NotFound(w, r)
		return
	}

	var (
		v   *view.View
		err error
	)
	pageParam := r.URL.Query().Get("page")
	if pageParam == "" {
		v, err = h.Views.Navigate(sess, resource)
	} else {
		v, err = h.Views.Ensure(sess, resource)
	}
	if err != nil {
		h.handleViewError(w, r, err)
		return
	}

	if err = h.settle(r.Context(), v); err != nil {
		h.handleViewError(w, r, err)
		return
	}
	snap := v.Snapshot()
	if page, convErr := strconv.Atoi(pageParam); convErr == nil {
		if snap, err = v.ChangePage(r.Context(), page); err != nil {
			h.handleViewError(w, r, err)
			return
		}
	}

	rv := viewmodel.NewResourceView(v.Descriptor(), snap)
	if WantsPartial(r) && HXTarget(r) == resourceViewTarget {
		h.renderResourceView(w, r, &rv)
		return
	}

	data := h.basePageData(resourceMeta(v.Descriptor()))
	data.Resource = &rv
	h.renderPage(w, r, data)
}

// EntityDetail serves GET /{resource}/{id}: one entity fetched fresh from the
// upstream API and laid out with the resource's columns.
func (h *UIHandlers) EntityDetail(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Session required", http.StatusUnauthorized)
		return
	}
	if errs := validatePath(r); len(errs) > 0 {
		h.NotFound(w, r)
		return
	}

	desc, e, err := h.Views.Fetch(r.Context(), sess, r.PathValue("resource"), r.PathValue("id"))
	if err != nil {
		h.handleViewError(w, r, err)
		return
	}

	detail := viewmodel.NewEntityDetail(desc, e)
	meta := resourceMeta(desc)
	meta.Title = fmt.Sprintf("%s %s - Back Office", desc.Title, e.ID)
	meta.CurrentPage = PageDetail
	data := h.basePageData(meta)
	data.Detail = &detail
	h.renderPage(w, r, data)
}

// ToggleEntity serves POST /{resource}/{id}/toggle.
func (h *UIHandlers) ToggleEntity(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	h.runAction(w, r, actionSpec{
		Name: "toggle",
		Run: func(ctx context.Context, v *view.View) (view.Snapshot, error) {
			return v.Toggle(ctx, id)
		},
	})
}

// RequestDelete serves POST /{resource}/{id}/delete and opens the confirmation dialog.
func (h *UIHandlers) RequestDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	h.runAction(w, r, actionSpec{
		Name: "request_delete",
		Run: func(ctx context.Context, v *view.View) (view.Snapshot, error) {
			return v.RequestDelete(ctx, id)
		},
	})
}

// ConfirmDelete serves POST /{resource}/delete/confirm.
func (h *UIHandlers) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, actionSpec{
		Name:   "confirm_delete",
		Run:    func(ctx context.Context, v *view.View) (view.Snapshot, error) { return v.ConfirmDelete(ctx) },
		Settle: true,
	})
}

// CancelDelete serves POST /{resource}/delete/cancel.
func (h *UIHandlers) CancelDelete(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, actionSpec{
		Name: "cancel_delete",
		Run:  func(ctx context.Context, v *view.View) (view.Snapshot, error) { return v.CancelDelete(ctx) },
	})
}

// AcknowledgeNotice serves POST /{resource}/notice/ack.
func (h *UIHandlers) AcknowledgeNotice(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, actionSpec{
		Name: "acknowledge_notice",
		Run:  func(ctx context.Context, v *view.View) (view.Snapshot, error) { return v.AcknowledgeNotice(ctx) },
	})
}

// ReloadView serves POST /{resource}/reload.
func (h *UIHandlers) ReloadView(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, actionSpec{
		Name:   "reload",
		Run:    func(ctx context.Context, v *view.View) (view.Snapshot, error) { return v.Reload(ctx) },
		Settle: true,
	})
}

// runAction resolves the session's view, runs the action and answers with the
// refreshed resource view fragment (htmx) or a redirect back to the page.
func (h *UIHandlers) runAction(w http.ResponseWriter, r *http.Request, spec actionSpec) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Session required", http.StatusUnauthorized)
		return
	}
	if errs := validatePath(r); len(errs) > 0 {
		if _, badResource := errs["resource"]; badResource {
			h.NotFound(w, r)
			return
		}
		triggerToast(w, errs["id"], "error")
		http.Error(w, errs["id"], http.StatusBadRequest)
		return
	}
	v, err := h.Views.Ensure(sess, r.PathValue("resource"))
	if err != nil {
		h.handleViewError(w, r, err)
		return
	}

	snap, err := spec.Run(r.Context(), v)
	if err != nil {
		msg, isOperatorError := actionErrorMessage(v.Descriptor(), err)
		if !isOperatorError {
			h.handleViewError(w, r, err)
			return
		}
		h.logger().DebugContext(r.Context(), "resource action rejected",
			"action", spec.Name,
			"resource", v.Descriptor().Name,
			"reason", err,
		)
		triggerToast(w, msg, "error")
		snap = v.Snapshot()
	} else if spec.Settle {
		if err = h.settle(r.Context(), v); err != nil {
			h.handleViewError(w, r, err)
			return
		}
		snap = v.Snapshot()
	}

	rv := viewmodel.NewResourceView(v.Descriptor(), snap)
	if !IsHTMX(r) {
		http.Redirect(w, r, viewmodel.PageURL(rv.BasePath, rv.Pagination.Page), http.StatusSeeOther)
		return
	}
	h.renderResourceView(w, r, &rv)
}

// validatePath checks the resource and entity id path values.
func validatePath(r *http.Request) map[string]string {
	fv := validation.New().Validate("resource", r.PathValue("resource"), validation.ResourceName("Resource")...)
	if id := r.PathValue("id"); id != "" {
		fv.Validate("id", id, validation.EntityID("ID")...)
	}
	return fv.Errors()
}

// actionErrorMessage maps errors the operator can act on to a toast message.
func actionErrorMessage(desc model.ResourceDescriptor, err error) (string, bool) {
	singular := desc.Singular
	if singular == "" {
		singular = "item"
	}
	switch {
	case errors.Is(err, view.ErrBusy):
		return "Answer the open dialog or wait for the list to load first.", true
	case errors.Is(err, view.ErrNotToggleable):
		return fmt.Sprintf("%s cannot be toggled.", desc.Title), true
	case errors.Is(err, view.ErrNotDeletable):
		return fmt.Sprintf("%s cannot be deleted.", desc.Title), true
	case errors.Is(err, view.ErrNothingPending):
		return "There is no delete waiting for confirmation.", true
	case errors.Is(err, mutation.ErrEntityNotFound):
		return fmt.Sprintf("This %s is no longer in the list.", singular), true
	default:
		return "", false
	}
}

// renderResourceView writes the swappable resource view fragment.
func (h *UIHandlers) renderResourceView(w http.ResponseWriter, r *http.Request, rv *viewmodel.ResourceView) {
	rv.CSRFToken = GetCSRFToken(r)
	if err := h.T.RenderPartial(w, resourceViewTemplate, rv); err != nil {
		h.logAndRenderTemplateError(w, r, err, "resource view render")
	}
}

// handleViewError answers registry and view failures.
func (h *UIHandlers) handleViewError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case apperrors.IsNotFound(err):
		h.NotFound(w, r)
	case errors.Is(err, service.ErrRegistryClosed), errors.Is(err, view.ErrUnmounted):
		h.renderUnavailable(w, r, "The console is shutting down. Please retry shortly.")
	case errors.Is(err, context.Canceled):
		// Client went away; nothing to answer.
	default:
		h.logger().ErrorContext(r.Context(), "resource view failed",
			"error", err,
			"path", r.URL.Path,
			"method", r.Method,
		)
		h.renderUnavailable(w, r, "The resource could not be loaded. Please try again.")
	}
}

func (h *UIHandlers) renderUnavailable(w http.ResponseWriter, r *http.Request, message string) {
	if IsHTMX(r) {
		triggerToast(w, message, "error")
		http.Error(w, message, http.StatusServiceUnavailable)
		return
	}
	h.renderErrorPage(w, r, http.StatusServiceUnavailable, message)
}

func resourceMeta(desc model.ResourceDescriptor) PageMeta {
	return PageMeta{
		Title:       desc.Title + " - Back Office",
		PageTitle:   desc.Title,
		CurrentPage: PageResource,
		NavActive:   desc.Name,
	}
}
