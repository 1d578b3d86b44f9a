package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollector_IncrementMethods(t *testing.T) {
	c := NewCollector("python", "worker.py")

	c.IncCallStarted()
	c.IncCallSucceeded()
	c.IncCallFailed()
	c.IncCallFailed()
	c.IncCallIndeterminate()
	c.IncResolveFailure()
	c.IncSpawnFailure()
	c.IncSpawnFailure()
	c.IncTransportFailure()
	c.IncExitFailure()
	c.IncProtocolError()
	c.IncProtocolError()
	c.IncProtocolError()
	c.AddLines(5, 2, 3)
	c.AddLines(1, 1, 0)

	s := c.Snapshot()

	assert.Equal(t, int64(1), s.CallsStarted)
	assert.Equal(t, int64(1), s.CallsSucceeded)
	assert.Equal(t, int64(2), s.CallsFailed)
	assert.Equal(t, int64(1), s.CallsIndeterminate)
	assert.Equal(t, int64(1), s.ResolveFailures)
	assert.Equal(t, int64(2), s.SpawnFailures)
	assert.Equal(t, int64(1), s.TransportFailures)
	assert.Equal(t, int64(1), s.ExitFailures)
	assert.Equal(t, int64(3), s.ProtocolErrors)
	assert.Equal(t, int64(6), s.LinesRead)
	assert.Equal(t, int64(3), s.LinesIgnored)
	assert.Equal(t, int64(3), s.EnvelopesMatched)
	assert.Equal(t, "python", s.Language)
	assert.Equal(t, "worker.py", s.File)
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector

	c.IncCallStarted()
	c.IncCallSucceeded()
	c.IncCallFailed()
	c.IncCallIndeterminate()
	c.IncResolveFailure()
	c.IncSpawnFailure()
	c.IncTransportFailure()
	c.IncExitFailure()
	c.IncProtocolError()
	c.AddLines(1, 1, 1)

	assert.Equal(t, Snapshot{}, c.Snapshot())
}

func TestCollector_SnapshotIsolation(t *testing.T) {
	c := NewCollector("go", "worker")
	c.IncCallStarted()

	s := c.Snapshot()
	c.IncCallStarted()

	assert.Equal(t, int64(1), s.CallsStarted, "snapshot must not observe later increments")
	assert.Equal(t, int64(2), c.Snapshot().CallsStarted)
}

func TestCollector_ConcurrentIncrements(t *testing.T) {
	c := NewCollector("c", "worker")

	const goroutines = 10
	const perGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			for range perGoroutine {
				c.IncCallStarted()
				c.AddLines(2, 1, 1)
			}
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	assert.Equal(t, int64(goroutines*perGoroutine), s.CallsStarted)
	assert.Equal(t, int64(2*goroutines*perGoroutine), s.LinesRead)
	assert.Equal(t, int64(goroutines*perGoroutine), s.EnvelopesMatched)
}
