package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireRedis(t *testing.T) {
	t.Setenv("TEST_REQUIRE_REDIS", "")
	t.Setenv("TEST_REQUIRE_INFRA", "")
	assert.False(t, requireRedis())

	t.Setenv("TEST_REQUIRE_INFRA", "yes")
	assert.True(t, requireRedis())

	t.Setenv("TEST_REQUIRE_INFRA", "")
	t.Setenv("TEST_REQUIRE_REDIS", "TRUE")
	assert.True(t, requireRedis())
}

func TestTestTimeProvider(t *testing.T) {
	p := NewTestTimeProvider(TestTime())
	p.AddTime(90 * time.Second)
	assert.Equal(t, TestTime().Add(90*time.Second), p.Now())

	p.SetTime(TestTime())
	assert.Equal(t, TestTime(), p.Now())
	assert.Equal(t, TestTime(), FixedTimeFunc(TestTime())())
}

func TestEntityBuilders(t *testing.T) {
	e := NewEntity("p1").Published(true).With("title", "Shirt").Build()
	assert.Equal(t, "p1", e.ID)
	assert.True(t, e.Bool("published"))
	assert.Equal(t, "p1", e.String("_id"))

	items := Entities("e", 3)
	require.Len(t, items, 3)
	assert.Equal(t, "e3", items[2].ID)

	orders := Orders("Pending", "Delivered")
	require.Len(t, orders, 2)
	assert.Equal(t, "Delivered", orders[1].String("status"))
}
