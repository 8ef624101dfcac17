package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akulbansal1/carelink/internal/model"
)

func newPatientView(t *testing.T) *View[int64, *model.Patient] {
	t.Helper()
	v := NewView(context.Background(), func(p *model.Patient) int64 { return p.ID })
	t.Cleanup(v.Close)
	return v
}

func TestLoadInstallsSnapshotInOrder(t *testing.T) {
	v := newPatientView(t)

	err := v.Load(func(ctx context.Context) ([]*model.Patient, error) {
		return []*model.Patient{
			{ID: 2, Name: "Sarah Johnson"},
			{ID: 1, Name: "John Smith"},
		}, nil
	})
	require.NoError(t, err)

	snap := v.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, int64(2), snap[0].ID)
	assert.Equal(t, int64(1), snap[1].ID)
	assert.False(t, v.Loading())
}

func TestStaleCompletionIsDiscarded(t *testing.T) {
	v := newPatientView(t)

	// First load begins, then a second supersedes it before the first
	// response arrives.
	_, first := v.Begin()
	_, second := v.Begin()

	installed := v.Complete(second, []*model.Patient{{ID: 10, Name: "Current"}})
	assert.True(t, installed)

	installed = v.Complete(first, []*model.Patient{{ID: 99, Name: "Stale"}})
	assert.False(t, installed)

	snap := v.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, int64(10), snap[0].ID)
}

func TestStaleFailureIsDiscarded(t *testing.T) {
	v := newPatientView(t)

	_, first := v.Begin()
	_, second := v.Begin()

	require.True(t, v.Complete(second, []*model.Patient{{ID: 1}}))
	assert.False(t, v.Fail(first, errors.New("timeout")))
	assert.NoError(t, v.Err())
}

func TestFailureSurfacesAndClearsOnNextLoad(t *testing.T) {
	v := newPatientView(t)

	loadErr := errors.New("upstream down")
	err := v.Load(func(ctx context.Context) ([]*model.Patient, error) {
		return nil, loadErr
	})
	require.ErrorIs(t, err, loadErr)
	assert.ErrorIs(t, v.Err(), loadErr)

	require.NoError(t, v.Load(func(ctx context.Context) ([]*model.Patient, error) {
		return []*model.Patient{{ID: 1}}, nil
	}))
	assert.NoError(t, v.Err())
}

func TestCloseCancelsInFlightLoad(t *testing.T) {
	v := NewView(context.Background(), func(p *model.Patient) int64 { return p.ID })

	ctx, _ := v.Begin()
	v.Close()

	select {
	case <-ctx.Done():
	default:
		t.Fatal("expected load context to be cancelled after Close")
	}
}

func TestPutGetDelete(t *testing.T) {
	v := newPatientView(t)

	v.Put(&model.Patient{ID: 1, Name: "John Smith"})
	v.Put(&model.Patient{ID: 2, Name: "Sarah Johnson"})
	v.Put(&model.Patient{ID: 1, Name: "John Smith Jr"})

	got, ok := v.Get(1)
	require.True(t, ok)
	assert.Equal(t, "John Smith Jr", got.Name)

	snap := v.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, int64(1), snap[0].ID, "upsert keeps original position")

	v.Delete(1)
	_, ok = v.Get(1)
	assert.False(t, ok)
	assert.Len(t, v.Snapshot(), 1)
}
