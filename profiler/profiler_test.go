package profiler

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordDuration(t *testing.T) {
	p := New(Options{})
	p.RecordDuration("composite", 10*time.Millisecond)
	p.RecordDuration("composite", 30*time.Millisecond)
	p.RecordDuration("crop", time.Millisecond)

	stages := p.Stages()
	require.Len(t, stages, 2)
	assert.Equal(t, "composite", stages[0].Name)
	assert.Equal(t, int64(2), stages[0].Count)
	assert.Equal(t, 20*time.Millisecond, stages[0].Avg)
	assert.Equal(t, 10*time.Millisecond, stages[0].Min)
	assert.Equal(t, 30*time.Millisecond, stages[0].Max)
	assert.Equal(t, "crop", stages[1].Name)
}

func TestSampleWindow(t *testing.T) {
	p := New(Options{MaxSamples: 2})
	p.RecordDuration("s", time.Second)
	p.RecordDuration("s", 2*time.Millisecond)
	p.RecordDuration("s", 4*time.Millisecond)

	s := p.Stages()[0]
	assert.Equal(t, int64(3), s.Count)
	assert.Equal(t, 3*time.Millisecond, s.Avg)
	assert.Equal(t, time.Second, s.Max)
}

func TestStartOperation(t *testing.T) {
	p := New(Options{})
	done := p.StartOperation("render")
	time.Sleep(time.Millisecond)
	done()

	s := p.Stages()
	require.Len(t, s, 1)
	assert.GreaterOrEqual(t, s[0].Min, time.Millisecond)
}

func TestNilProfiler(t *testing.T) {
	var p *Profiler
	assert.NotPanics(t, func() {
		p.StartOperation("x")()
		p.RecordMetric("y", 1)
		assert.Nil(t, p.Stages())
		assert.NoError(t, p.Report(&bytes.Buffer{}))
	})
}

func TestReport(t *testing.T) {
	p := New(Options{})
	p.RecordDuration("composite", 5*time.Millisecond)
	p.RecordMetric("encoded_bytes", 2048)
	p.RecordMetric("attempts", 3)

	var buf bytes.Buffer
	require.NoError(t, p.Report(&buf))
	out := buf.String()
	assert.Contains(t, out, "composite: avg=5ms")
	assert.Contains(t, out, "encoded_bytes: avg=2.0 kB")
	assert.Contains(t, out, "attempts: avg=3.00")
}

func TestConcurrentRecording(t *testing.T) {
	p := New(Options{})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.StartOperation("stage")()
			p.RecordMetric("n", 1)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(16), p.Stages()[0].Count)
	assert.Equal(t, int64(16), p.Metrics()[0].Count)
}
