package registry_test

import (
	"fmt"
	"testing"

	"github.com/aretw0/docflows/pkg/domain"
	"github.com/aretw0/docflows/pkg/registry"
	"github.com/aretw0/docflows/pkg/report"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	reg := registry.NewRegistry()
	rep, err := report.New("Report1")
	require.NoError(t, err)

	id := reg.Register(rep)
	_, err = uuid.Parse(id)
	assert.NoError(t, err, "ids are UUIDs")

	got, err := reg.Get(id)
	require.NoError(t, err)
	assert.Same(t, rep, got)

	_, err = reg.Get("missing")
	assert.ErrorIs(t, err, domain.ErrReportNotFound)

	require.NoError(t, reg.Delete(id))
	assert.ErrorIs(t, reg.Delete(id), domain.ErrReportNotFound)
	assert.Empty(t, reg.List())
}

func TestRegistry_ListOrderAndCollisions(t *testing.T) {
	ids := []string{"a", "a", "b", "c"}
	n := 0
	reg := registry.NewRegistry(registry.WithIDGenerator(func() string {
		id := ids[n]
		n++
		return id
	}))

	for i := range 3 {
		rep, err := report.New(fmt.Sprintf("r%d", i))
		require.NoError(t, err)
		reg.Register(rep)
	}

	var got []string
	for _, e := range reg.List() {
		got = append(got, e.ID+"="+e.Report.Title())
	}
	assert.Equal(t, []string{"a=r0", "b=r1", "c=r2"}, got)
}
