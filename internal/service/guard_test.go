package service

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/fieldops/field-console/pkg/util/errorutil"
)

func TestInFlightGuard_RejectsDuplicateUntilReleased(t *testing.T) {
	g := NewInFlightGuard()

	release, err := g.Acquire("grant:team:t1:p1")
	require.NoError(t, err)

	_, err = g.Acquire("grant:team:t1:p1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInFlight))

	other, err := g.Acquire("grant:team:t1:p2")
	require.NoError(t, err)
	other()

	release()
	release, err = g.Acquire("grant:team:t1:p1")
	require.NoError(t, err)
	release()
}

func TestInFlightGuard_ConcurrentCallersOneWins(t *testing.T) {
	g := NewInFlightGuard()
	var wins int32
	var done, tried sync.WaitGroup
	start := make(chan struct{})
	hold := make(chan struct{})

	for i := 0; i < 16; i++ {
		done.Add(1)
		tried.Add(1)
		go func() {
			defer done.Done()
			<-start
			release, err := g.Acquire("revoke:team:t1:p1")
			tried.Done()
			if err != nil {
				return
			}
			atomic.AddInt32(&wins, 1)
			<-hold
			release()
		}()
	}
	close(start)
	tried.Wait()
	close(hold)
	done.Wait()
	assert.Equal(t, int32(1), wins)
}

func TestRequestTracker_LastRequestWins(t *testing.T) {
	tr := NewRequestTracker()

	first := tr.Begin("u1:hierarchy")
	second := tr.Begin("u1:hierarchy")
	other := tr.Begin("u2:hierarchy")

	assert.False(t, first.Current())
	assert.True(t, second.Current())
	assert.True(t, apperrors.HasCode(first.Finish(), apperrors.CodeSuperseded))
	assert.NoError(t, second.Finish())
	assert.NoError(t, other.Finish())
	assert.Empty(t, tr.latest)
}
