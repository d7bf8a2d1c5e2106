package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/JULEEP/admin-frontend/internal/domain/model"
	"github.com/JULEEP/admin-frontend/internal/domain/view"
	apperrors "github.com/JULEEP/admin-frontend/internal/errors"
	"github.com/JULEEP/admin-frontend/internal/mocks"
	"github.com/JULEEP/admin-frontend/internal/testutil"
)

type registryHarness struct {
	registry *ViewRegistry
	factory  *mocks.MockResourceClientFactory
	ctrl     *gomock.Controller
	clock    *testutil.TestTimeProvider
}

func newRegistry(t *testing.T) registryHarness {
	t.Helper()
	ctrl := gomock.NewController(t)
	factory := mocks.NewMockResourceClientFactory(ctrl)
	clock := testutil.NewTestTimeProvider(testutil.TestTime())
	r, err := NewViewRegistry(ViewRegistryOptions{
		Catalog: catalog(t),
		Clients: factory,
		Config:  ViewConfig{PageSize: 5},
		Now:     clock.Now,
	})
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return registryHarness{registry: r, factory: factory, ctrl: ctrl, clock: clock}
}

// expectClient makes the factory hand out a client whose List returns items.
func (h registryHarness) expectClient(resource, token string, items []model.Entity) *mocks.MockResourceClient {
	client := mocks.NewMockResourceClient(h.ctrl)
	client.EXPECT().List(gomock.Any()).Return(items, nil)
	h.factory.EXPECT().
		ClientFor(resourceNamed(resource), token).
		Return(client, nil)
	return client
}

// resourceNamed matches a ResourceDescriptor by name.
type resourceNamed string

func (r resourceNamed) Matches(x any) bool {
	d, ok := x.(model.ResourceDescriptor)
	return ok && d.Name == string(r)
}

func (r resourceNamed) String() string { return "descriptor named " + string(r) }

func settle(t *testing.T, v *view.View) view.Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, v.WaitIdle(ctx))
	return v.Snapshot()
}

func TestNewViewRegistry_Validation(t *testing.T) {
	_, err := NewViewRegistry(ViewRegistryOptions{})
	require.Error(t, err)

	_, err = NewViewRegistry(ViewRegistryOptions{Catalog: catalog(t)})
	require.Error(t, err)
}

func TestViewRegistry_NavigateMountsFreshView(t *testing.T) {
	h := newRegistry(t)
	sess := model.Session{ID: "session-a", APIToken: "tok"}

	h.expectClient(model.ResourceProducts, "tok", testutil.Entities("p", 7))
	first, err := h.registry.Navigate(sess, model.ResourceProducts)
	require.NoError(t, err)
	snap := settle(t, first)
	assert.Equal(t, 7, snap.Page.TotalItems)

	h.expectClient(model.ResourceProducts, "tok", testutil.Entities("p", 3))
	second, err := h.registry.Navigate(sess, model.ResourceProducts)
	require.NoError(t, err)
	assert.NotSame(t, first, second)

	<-first.Done()
	assert.True(t, first.Snapshot().Unmounted)
	assert.Equal(t, 3, settle(t, second).Page.TotalItems)
	assert.Equal(t, 1, h.registry.Len())
}

func TestViewRegistry_NavigateUnmountsOtherResource(t *testing.T) {
	h := newRegistry(t)
	sess := model.Session{ID: "session-a"}

	h.expectClient(model.ResourceProducts, "", testutil.Entities("p", 2))
	products, err := h.registry.Navigate(sess, model.ResourceProducts)
	require.NoError(t, err)

	h.expectClient(model.ResourceOrders, "", testutil.Orders("Pending"))
	orders, err := h.registry.Navigate(sess, model.ResourceOrders)
	require.NoError(t, err)

	<-products.Done()
	_, ok := h.registry.Current(sess.ID, model.ResourceProducts)
	assert.False(t, ok)
	cur, ok := h.registry.Current(sess.ID, model.ResourceOrders)
	require.True(t, ok)
	assert.Same(t, orders, cur)
}

func TestViewRegistry_SessionsAreIndependent(t *testing.T) {
	h := newRegistry(t)

	h.expectClient(model.ResourceStaff, "a", testutil.Entities("s", 1))
	h.expectClient(model.ResourceStaff, "b", testutil.Entities("s", 2))

	va, err := h.registry.Navigate(model.Session{ID: "a", APIToken: "a"}, model.ResourceStaff)
	require.NoError(t, err)
	vb, err := h.registry.Navigate(model.Session{ID: "b", APIToken: "b"}, model.ResourceStaff)
	require.NoError(t, err)

	assert.Equal(t, 1, settle(t, va).Page.TotalItems)
	assert.Equal(t, 2, settle(t, vb).Page.TotalItems)
	assert.Len(t, h.registry.Mounted(), 2)

	h.registry.Release("a")
	<-va.Done()
	assert.Equal(t, 1, h.registry.Len())
	h.registry.Release("missing")
}

func TestViewRegistry_EnsureReusesMountedView(t *testing.T) {
	h := newRegistry(t)
	sess := model.Session{ID: "s"}

	h.expectClient(model.ResourceCategories, "", testutil.Entities("c", 1))
	v1, err := h.registry.Ensure(sess, model.ResourceCategories)
	require.NoError(t, err)
	v2, err := h.registry.Ensure(sess, model.ResourceCategories)
	require.NoError(t, err)
	assert.Same(t, v1, v2)
}

func TestViewRegistry_FetchLeavesMountedViewAlone(t *testing.T) {
	h := newRegistry(t)
	sess := model.Session{ID: "s", APIToken: "tok"}

	h.expectClient(model.ResourceProducts, "tok", testutil.Entities("p", 2))
	v, err := h.registry.Navigate(sess, model.ResourceProducts)
	require.NoError(t, err)
	settle(t, v)

	detailClient := mocks.NewMockResourceClient(h.ctrl)
	want, _ := model.NewEntity(model.DefaultIDField, map[string]any{"_id": "p2", "title": "Lamp"})
	detailClient.EXPECT().Get(gomock.Any(), "p2").Return(want, nil)
	h.factory.EXPECT().ClientFor(resourceNamed(model.ResourceProducts), "tok").Return(detailClient, nil)

	desc, got, err := h.registry.Fetch(context.Background(), sess, model.ResourceProducts, "p2")
	require.NoError(t, err)
	assert.Equal(t, model.ResourceProducts, desc.Name)
	assert.Equal(t, "Lamp", got.String("title"))

	current, ok := h.registry.Current("s", model.ResourceProducts)
	require.True(t, ok)
	assert.Same(t, v, current)
}

func TestViewRegistry_FetchErrors(t *testing.T) {
	h := newRegistry(t)
	sess := model.Session{ID: "s"}

	_, _, err := h.registry.Fetch(context.Background(), sess, "coupons", "x")
	assert.True(t, apperrors.IsNotFound(err))

	client := mocks.NewMockResourceClient(h.ctrl)
	client.EXPECT().Get(gomock.Any(), "o9").Return(model.Entity{}, apperrors.NotFound("order not found"))
	h.factory.EXPECT().ClientFor(resourceNamed(model.ResourceOrders), "").Return(client, nil)

	_, _, err = h.registry.Fetch(context.Background(), sess, model.ResourceOrders, "o9")
	assert.True(t, apperrors.IsNotFound(err))
	assert.Zero(t, h.registry.Len())
}

func TestViewRegistry_UnknownResource(t *testing.T) {
	h := newRegistry(t)

	_, err := h.registry.Navigate(model.Session{ID: "s"}, "coupons")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestViewRegistry_ClientFactoryError(t *testing.T) {
	h := newRegistry(t)
	h.factory.EXPECT().ClientFor(gomock.Any(), gomock.Any()).Return(nil, apperrors.Internal("no client"))

	_, err := h.registry.Navigate(model.Session{ID: "s"}, model.ResourceOrders)
	require.Error(t, err)
	assert.Zero(t, h.registry.Len())
}

func TestViewRegistry_ReapIdle(t *testing.T) {
	h := newRegistry(t)

	h.expectClient(model.ResourceProducts, "", testutil.Entities("p", 1))
	stale, err := h.registry.Navigate(model.Session{ID: "stale"}, model.ResourceProducts)
	require.NoError(t, err)
	settle(t, stale)

	h.clock.AddTime(20 * time.Minute)

	h.expectClient(model.ResourceProducts, "", testutil.Entities("p", 1))
	fresh, err := h.registry.Navigate(model.Session{ID: "fresh"}, model.ResourceProducts)
	require.NoError(t, err)
	settle(t, fresh)

	n := h.registry.ReapIdle(context.Background(), 15*time.Minute)
	assert.Equal(t, 1, n)
	<-stale.Done()

	_, ok := h.registry.Current("fresh", model.ResourceProducts)
	assert.True(t, ok)
	_, ok = h.registry.Current("stale", model.ResourceProducts)
	assert.False(t, ok)
}

func TestViewRegistry_CloseRejectsNavigate(t *testing.T) {
	h := newRegistry(t)

	h.expectClient(model.ResourceProducts, "", testutil.Entities("p", 1))
	v, err := h.registry.Navigate(model.Session{ID: "s"}, model.ResourceProducts)
	require.NoError(t, err)

	h.registry.Close()
	<-v.Done()

	client := mocks.NewMockResourceClient(h.ctrl)
	client.EXPECT().List(gomock.Any()).Return(nil, nil).MaxTimes(1)
	h.factory.EXPECT().ClientFor(gomock.Any(), gomock.Any()).Return(client, nil)

	_, err = h.registry.Navigate(model.Session{ID: "s"}, model.ResourceProducts)
	assert.ErrorIs(t, err, ErrRegistryClosed)
}
