package analysis

import (
	"bytes"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonetids/internal/frames"
	"gonetids/internal/models"
)

func newTestEngine() *Engine {
	cfg := DefaultConfig()
	return NewEngine(cfg, NewReportState(cfg.Blacklist, cfg.MaxAlerts), zerolog.Nop(), zerolog.Nop())
}

func job(data []byte) *models.PacketJob {
	return models.NewPacketJob(data, models.Metadata{Timestamp: time.Unix(1700000000, 0)}, false)
}

func httpFrame(t *testing.T, payload []byte) []byte {
	t.Helper()
	b, err := frames.TCP(frames.TCPSegment{
		Src: attackerA, Dst: server, SrcPort: 50000, DstPort: 80,
		PSH: true, ACK: true, Payload: payload,
	})
	require.NoError(t, err)
	return b
}

func TestEngineSYNScenario(t *testing.T) {
	e := newTestEngine()
	dec := NewDecoder()

	synAck, err := frames.TCP(frames.TCPSegment{Src: attackerA, Dst: server, SrcPort: 40000, DstPort: 443, SYN: true, ACK: true})
	require.NoError(t, err)

	require.NoError(t, e.Analyze(dec, job(synFrame(t, attackerA))))
	require.NoError(t, e.Analyze(dec, job(synAck)))
	require.NoError(t, e.Analyze(dec, job(synFrame(t, attackerB))))

	r := e.State().Snapshot()
	assert.Equal(t, 2, r.SYNCount)
	assert.Equal(t, []netip.Addr{attackerA, attackerB}, r.UniqueAttackers)
	assert.Equal(t, int64(3), r.FramesAnalyzed)

	alerts := e.State().RecentAlerts(10)
	require.Len(t, alerts, 2)
	assert.Equal(t, AnomalySYNSource, alerts[0].Type)
	assert.Equal(t, "10.0.0.1", alerts[0].Source)
}

func TestEngineRepeatedSourceCountedOnce(t *testing.T) {
	e := newTestEngine()
	dec := NewDecoder()

	for i := 0; i < 5; i++ {
		require.NoError(t, e.Analyze(dec, job(synFrame(t, attackerA))))
	}

	r := e.State().Snapshot()
	assert.Equal(t, 5, r.SYNCount)
	assert.Len(t, r.UniqueAttackers, 1)
}

func TestEngineARPScenario(t *testing.T) {
	e := newTestEngine()
	dec := NewDecoder()

	require.NoError(t, e.Analyze(dec, job(frames.MustARPReply(nil, attackerA, server))))
	require.NoError(t, e.Analyze(dec, job(httpFrame(t, []byte("x")))))

	r := e.State().Snapshot()
	assert.Equal(t, 1, r.ARPCount)
	assert.Zero(t, r.SYNCount)
}

func TestEngineBlacklistScenario(t *testing.T) {
	e := newTestEngine()
	dec := NewDecoder()

	require.NoError(t, e.Analyze(dec, job(httpFrame(t, []byte("GET http://www.bbc.co.uk/news HTTP/1.1\r\n\r\n")))))

	r := e.State().Snapshot()
	assert.Equal(t, 1, r.Hits("bbc"))
	assert.Equal(t, 0, r.Hits("google"))
	assert.Equal(t, 1, r.TotalViolations())
}

func TestEngineBlacklistBothHosts(t *testing.T) {
	e := newTestEngine()
	dec := NewDecoder()

	payload := append(frames.HTTPGet("www.google.co.uk", "/"), []byte("Referer: http://www.bbc.co.uk/\r\n")...)
	require.NoError(t, e.Analyze(dec, job(httpFrame(t, payload))))

	r := e.State().Snapshot()
	assert.Equal(t, 1, r.Hits("google"))
	assert.Equal(t, 1, r.Hits("bbc"))
	assert.Equal(t, 2, r.TotalViolations())
}

func TestEngineBlacklistIgnoresOtherPortsAndEmptyPayload(t *testing.T) {
	e := newTestEngine()
	dec := NewDecoder()

	other, err := frames.TCP(frames.TCPSegment{
		Src: attackerA, Dst: server, SrcPort: 50000, DstPort: 8080,
		ACK: true, Payload: frames.HTTPGet("www.google.co.uk", "/"),
	})
	require.NoError(t, err)

	require.NoError(t, e.Analyze(dec, job(other)))
	require.NoError(t, e.Analyze(dec, job(httpFrame(t, nil))))

	r := e.State().Snapshot()
	assert.Zero(t, r.TotalViolations())
}

func TestEngineSkipsMalformedFrames(t *testing.T) {
	e := newTestEngine()
	dec := NewDecoder()

	good := synFrame(t, attackerA)
	err := e.Analyze(dec, job(good[:20]))
	require.Error(t, err)
	assert.True(t, IsMalformed(err))

	r := e.State().Snapshot()
	assert.Zero(t, r.SYNCount)
	assert.Equal(t, int64(1), r.MalformedFrames)
	assert.Equal(t, int64(1), r.FramesAnalyzed)
}

func TestEngineVerboseDumpDoesNotChangeResults(t *testing.T) {
	var diag bytes.Buffer
	cfg := DefaultConfig()
	e := NewEngine(cfg, NewReportState(cfg.Blacklist, cfg.MaxAlerts), zerolog.Nop(), zerolog.New(&diag))
	dec := NewDecoder()

	j := models.NewPacketJob(httpFrame(t, frames.HTTPGet("www.google.co.uk", "/")), models.Metadata{}, true)
	require.NoError(t, e.Analyze(dec, j))

	r := e.State().Snapshot()
	assert.Equal(t, 1, r.Hits("google"))

	out := diag.String()
	assert.Contains(t, out, `"tcp_dst_port":80`)
	assert.Contains(t, out, `"tcp_service":"HTTP"`)
	assert.Contains(t, out, `"ip_src":"10.0.0.1"`)
	assert.Contains(t, out, "Blacklisted URL violation detected")
}

func TestEngineConcurrentCounting(t *testing.T) {
	e := newTestEngine()

	const workers = 8
	const perWorker = 250

	arp := frames.MustARPReply(nil, attackerA, server)
	synAck, err := frames.TCP(frames.TCPSegment{Src: attackerB, Dst: server, SrcPort: 1, DstPort: 2, SYN: true, ACK: true})
	require.NoError(t, err)
	google := httpFrame(t, frames.HTTPGet("www.google.co.uk", "/"))

	sources := make([][]byte, 16)
	for i := range sources {
		sources[i] = synFrame(t, netip.AddrFrom4([4]byte{10, 1, 0, byte(i)}))
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			dec := NewDecoder()
			for i := 0; i < perWorker; i++ {
				_ = e.Analyze(dec, job(sources[(w+i)%len(sources)]))
				_ = e.Analyze(dec, job(arp))
				_ = e.Analyze(dec, job(synAck))
				_ = e.Analyze(dec, job(google))
			}
		}(w)
	}
	wg.Wait()

	r := e.State().Final()
	assert.Equal(t, workers*perWorker, r.SYNCount)
	assert.Len(t, r.UniqueAttackers, len(sources))
	assert.LessOrEqual(t, len(r.UniqueAttackers), r.SYNCount)
	assert.Equal(t, workers*perWorker, r.ARPCount)
	assert.Equal(t, workers*perWorker, r.Hits("google"))
	assert.Equal(t, int64(workers*perWorker*4), r.FramesAnalyzed)
}
