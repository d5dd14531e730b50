package vm

import (
	"sort"
	"time"

	"github.com/atlas-lang/atlas/bytecode"
)

// Profiler accumulates the optional per-run statistics spec.md §4.13
// describes: instruction counts by opcode and by IP, maximum stack and
// frame depths observed, wall-clock execution time via a monotonic clock,
// and a "hotspot" report selecting instruction offsets responsible for at
// least hotspotThreshold of total executed instructions. Attach one to
// VM.Profiler before calling Run to enable it; a nil Profiler (the
// default) costs the dispatch loop nothing beyond the nil check.
type Profiler struct {
	HotspotThreshold float64 // fraction of total instructions, e.g. 0.10 for 10%

	byOpcode      map[bytecode.Opcode]int
	byIP          map[int]int
	maxStackDepth int
	maxFrameDepth int
	total         int

	start    time.Time
	started  bool
	duration time.Duration
}

// NewProfiler returns a Profiler with the default 10% hotspot threshold
// (spec.md §4.13 "A 'hotspot threshold' (e.g., 10% of total)").
func NewProfiler() *Profiler {
	return &Profiler{
		HotspotThreshold: 0.10,
		byOpcode:         map[bytecode.Opcode]int{},
		byIP:             map[int]int{},
	}
}

func (p *Profiler) noteInstruction(op bytecode.Opcode, ip int) {
	if !p.started {
		p.start = time.Now()
		p.started = true
	}
	p.byOpcode[op]++
	p.byIP[ip]++
	p.total++
}

func (p *Profiler) noteStackDepth(depth int) {
	if depth > p.maxStackDepth {
		p.maxStackDepth = depth
	}
}

func (p *Profiler) noteFrameDepth(depth int) {
	if depth > p.maxFrameDepth {
		p.maxFrameDepth = depth
	}
}

// Stop finalizes the elapsed-time measurement. Call after Run returns;
// reading Report before Stop reports zero elapsed time.
func (p *Profiler) Stop() {
	if p.started {
		p.duration = time.Since(p.start)
	}
}

// OpcodeCounts returns the number of times each opcode was dispatched.
func (p *Profiler) OpcodeCounts() map[bytecode.Opcode]int {
	out := make(map[bytecode.Opcode]int, len(p.byOpcode))
	for k, v := range p.byOpcode {
		out[k] = v
	}
	return out
}

// MaxStackDepth/MaxFrameDepth report the deepest the value stack and frame
// stack reached during the run.
func (p *Profiler) MaxStackDepth() int { return p.maxStackDepth }
func (p *Profiler) MaxFrameDepth() int { return p.maxFrameDepth }

// Duration returns the wall-clock time between the first dispatched
// instruction and Stop.
func (p *Profiler) Duration() time.Duration { return p.duration }

// Hotspot is one instruction offset's share of total execution.
type Hotspot struct {
	IP    int
	Count int
	Share float64
}

// Hotspots returns every instruction offset whose share of total executed
// instructions meets or exceeds HotspotThreshold, sorted by descending
// share (spec.md §4.13 "selects reported hotspots").
func (p *Profiler) Hotspots() []Hotspot {
	if p.total == 0 {
		return nil
	}
	var out []Hotspot
	for ip, count := range p.byIP {
		share := float64(count) / float64(p.total)
		if share >= p.HotspotThreshold {
			out = append(out, Hotspot{IP: ip, Count: count, Share: share})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Share != out[j].Share {
			return out[i].Share > out[j].Share
		}
		return out[i].IP < out[j].IP
	})
	return out
}
