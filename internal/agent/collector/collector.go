package collector

import (
	"math"
	"math/rand"
	"runtime"

	"github.com/alisaviation/metricslog/internal/models"
)

const (
	CPU             = "CPU"
	HTTPRequestsRPS = "HTTP requests RPS"
	ServerStatus    = "Server status"
	ResponseTimeMs  = "Response time ms"

	HeapAlloc     = "HeapAlloc"
	NumGC         = "NumGC"
	GCCPUFraction = "GCCPUFraction"
	PollCount     = "PollCount"
)

var Statuses = []string{"OK", "WARNING", "ERROR", "RECOVERING"}

type MemStatsReader interface {
	ReadMemStats(*runtime.MemStats)
}

type RealMemStatsReader struct{}

func (r *RealMemStatsReader) ReadMemStats(ms *runtime.MemStats) {
	runtime.ReadMemStats(ms)
}

type Sample struct {
	Name  string
	Value models.Value
}

// Collector produces one round of demo samples per call: simulated service
// load figures plus a few runtime gauges. It is not safe for concurrent use.
type Collector struct {
	reader    MemStatsReader
	rnd       *rand.Rand
	cores     int
	pollCount int64
}

func NewCollector(seed int64) *Collector {
	return &Collector{
		reader: &RealMemStatsReader{},
		rnd:    rand.New(rand.NewSource(seed)),
		cores:  runtime.NumCPU(),
	}
}

func (c *Collector) CollectMetrics() []Sample {
	var memStats runtime.MemStats
	c.reader.ReadMemStats(&memStats)
	c.pollCount++

	return []Sample{
		{CPU, models.Float(c.cpuLoad())},
		{HTTPRequestsRPS, models.Int(int64(c.rnd.Intn(101)))},
		{ServerStatus, models.Text(Statuses[c.rnd.Intn(len(Statuses))])},
		{ResponseTimeMs, models.Float(0.1 + c.rnd.Float64()*499.9)},
		{HeapAlloc, models.Int(int64(memStats.HeapAlloc))},
		{NumGC, models.Int(int64(memStats.NumGC))},
		{GCCPUFraction, models.Float(memStats.GCCPUFraction)},
		{PollCount, models.Int(c.pollCount)},
	}
}

// cpuLoad simulates a load figure between 0 and the number of cores,
// rounded to two decimals.
func (c *Collector) cpuLoad() float64 {
	return math.Round(c.rnd.Float64()*float64(c.cores)*100) / 100
}
