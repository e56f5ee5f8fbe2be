// Package sample generates randomized demo data. A fixed seed
// reproduces the exact same frames, which keeps demo workspaces and
// tests stable.
package sample

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"gridwatch/internal/dataset"
)

// Default row counts for the generated sets.
const (
	DefaultOrders     = 250
	DefaultLatency    = 400
	DefaultSignupDays = 90
	DefaultSpan       = 30 * 24 * time.Hour
)

// Options controls generation. Zero values fall back to defaults;
// a zero Seed derives one from the clock, so only explicit seeds
// are reproducible.
type Options struct {
	Seed       int64
	Orders     int
	Latency    int
	SignupDays int
	Span       time.Duration
	Now        time.Time
}

func (o Options) withDefaults() Options {
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.Seed == 0 {
		o.Seed = o.Now.Unix()
	}
	if o.Orders <= 0 {
		o.Orders = DefaultOrders
	}
	if o.Latency <= 0 {
		o.Latency = DefaultLatency
	}
	if o.SignupDays <= 0 {
		o.SignupDays = DefaultSignupDays
	}
	if o.Span <= 0 {
		o.Span = DefaultSpan
	}
	return o
}

// Generator produces the demo sets from a single seeded source, so
// the sets are deterministic as a group, not just individually.
type Generator struct {
	rng  *rand.Rand
	opts Options
}

// New returns a generator for the given options.
func New(opts Options) *Generator {
	opts = opts.withDefaults()
	return &Generator{
		rng:  rand.New(rand.NewSource(opts.Seed)),
		opts: opts,
	}
}

// Seed reports the seed in effect after defaulting.
func (g *Generator) Seed() int64 { return g.opts.Seed }

// All generates every demo set in a fixed order. Order matters:
// each set consumes from the shared random stream.
func (g *Generator) All() []*Set {
	return []*Set{g.Orders(), g.Latency(), g.Signups()}
}

var (
	regions  = []string{"east", "west", "north", "south"}
	channels = []string{"web", "mobile", "store", "partner"}
	services = []string{"api", "auth", "billing", "search", "ingest"}
	plans    = []string{"free", "pro", "team", "enterprise"}
)

// Orders generates a purchase ledger: uuid keys, categorical
// region/channel columns, amounts with occasional blanks, and
// timestamps spread across the span.
func (g *Generator) Orders() *Set {
	s := &Set{
		Name:   "orders",
		Header: []string{"id", "region", "channel", "amount", "quantity", "created_at"},
	}
	for i := 0; i < g.opts.Orders; i++ {
		amount := formatAmount(5 + g.rng.Float64()*495)
		// Sprinkle blanks so null handling shows up in the demo.
		if g.rng.Intn(25) == 0 {
			amount = ""
		}
		s.Records = append(s.Records, []string{
			uuid.Must(uuid.NewRandomFromReader(g.rng)).String(),
			pick(g.rng, regions),
			pick(g.rng, channels),
			amount,
			itoa(1 + g.rng.Intn(12)),
			g.stamp().UTC().Format(time.RFC3339),
		})
	}
	return s
}

// Latency generates a per-service latency series. The set has no id
// column on purpose: row keys fall back to ordinals.
func (g *Generator) Latency() *Set {
	base := map[string]float64{
		"api":     42,
		"auth":    18,
		"billing": 95,
		"search":  130,
		"ingest":  60,
	}
	s := &Set{
		Name:   "latency",
		Header: []string{"service", "p50_ms", "p99_ms", "status", "observed_at"},
	}
	for i := 0; i < g.opts.Latency; i++ {
		svc := pick(g.rng, services)
		p50 := base[svc] * (0.8 + g.rng.Float64()*0.4)
		p99 := p50 * (2 + g.rng.Float64()*3)
		s.Records = append(s.Records, []string{
			svc,
			formatAmount(p50),
			formatAmount(p99),
			status(g.rng),
			g.stamp().UTC().Format(time.RFC3339),
		})
	}
	return s
}

// Signups generates one row per day per plan, with a mild upward
// trend so date-ranged queries have something to show.
func (g *Generator) Signups() *Set {
	base := map[string]int{
		"free":       120,
		"pro":        40,
		"team":       12,
		"enterprise": 3,
	}
	s := &Set{
		Name:   "signups",
		Header: []string{"day", "plan", "count"},
	}
	start := g.opts.Now.AddDate(0, 0, -(g.opts.SignupDays - 1))
	for d := 0; d < g.opts.SignupDays; d++ {
		day := start.AddDate(0, 0, d)
		growth := d / 10
		for _, plan := range plans {
			n := base[plan] + growth + g.rng.Intn(base[plan]/2+1)
			s.Records = append(s.Records, []string{
				day.Format("2006-01-02"),
				plan,
				itoa(n),
			})
		}
	}
	return s
}

// stamp returns a random instant within the span ending at Now.
func (g *Generator) stamp() time.Time {
	back := time.Duration(g.rng.Int63n(int64(g.opts.Span)))
	return g.opts.Now.Add(-back)
}

// status weights outcomes so the demo mostly looks healthy.
func status(rng *rand.Rand) string {
	switch n := rng.Intn(50); {
	case n == 0:
		return "error"
	case n < 5:
		return "degraded"
	default:
		return "ok"
	}
}

func pick(rng *rand.Rand, from []string) string {
	return from[rng.Intn(len(from))]
}

// Build materializes every set as a frame.
func Build(opts Options) ([]*dataset.Frame, error) {
	frames := make([]*dataset.Frame, 0, 3)
	for _, s := range New(opts).All() {
		f, err := s.Frame()
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}
