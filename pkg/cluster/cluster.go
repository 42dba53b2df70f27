// 16 Mar 2023

// Package cluster groups a stream of candidate motifs into
// accumulators. Each candidate is offered to the accumulators in the
// order they were made. The first one to accept it keeps it, even if a
// later one would have given a better score. If nobody accepts, the
// candidate becomes the seed of a new accumulator at the end of the
// list. Earlier decisions are never revisited.
package cluster

import (
	"fmt"
	"math"
	"sort"

	"github.com/andrew-torda/matrix"
	log "github.com/sirupsen/logrus"

	"github.com/andrew-torda/metamotif/pkg/align"
)

// Accumulator is what the cluster needs from an alignment engine.
type Accumulator interface {
	Align(cand *matrix.FMatrix2d) (align.Outcome, error)
	Support() int
	SeedLen() int
	PFM() *matrix.FMatrix2d
	PWM() *matrix.FMatrix2d
}

// Spawn makes a new accumulator from a seed.
type Spawn func(seed *matrix.FMatrix2d) (Accumulator, error)

// FixedSpawn makes fixed-size accumulators.
func FixedSpawn(minAgreement int) Spawn {
	return func(seed *matrix.FMatrix2d) (Accumulator, error) {
		f, err := align.NewFixed(seed, minAgreement)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}

// VariablePolicy decides when a variable-length accumulator takes a
// candidate. The score needed is
//
//	max(MinAgreement, MinFrac * min(len(candidate), len(seed)))
//
// so short overlaps need proportionally less.
type VariablePolicy struct {
	MinAgreement float32
	MinFrac      float32
	Sim          align.Similarity
}

// DefaultVariablePolicy is dot product, three positions, half the
// shorter motif.
func DefaultVariablePolicy() VariablePolicy {
	return VariablePolicy{MinAgreement: align.DefaultMinAgreement, MinFrac: 0.5, Sim: align.Dot}
}

// MinScore is the score needed for a candidate of length candLen
// against a seed of length seedLen.
func (p VariablePolicy) MinScore(candLen, seedLen int) float32 {
	shorter := candLen
	if seedLen < shorter {
		shorter = seedLen
	}
	return float32(math.Max(float64(p.MinAgreement), float64(p.MinFrac)*float64(shorter)))
}

// variable wraps align.Variable so it decides its own threshold.
type variable struct {
	*align.Variable
	policy VariablePolicy
}

func (v variable) Align(cand *matrix.FMatrix2d) (align.Outcome, error) {
	return v.Variable.Align(cand, v.policy.Sim, v.policy.MinScore(len(cand.Mat), v.SeedLen()))
}

// VariableSpawn makes variable-length accumulators with policy p.
func VariableSpawn(p VariablePolicy) Spawn {
	return func(seed *matrix.FMatrix2d) (Accumulator, error) {
		v, err := align.NewVariable(seed)
		if err != nil {
			return nil, err
		}
		return variable{Variable: v, policy: p}, nil
	}
}

// Cluster is an ordered list of accumulators.
type Cluster struct {
	accs  []Accumulator
	spawn Spawn
}

// New returns an empty cluster. The first candidate added becomes the
// first seed.
func New(spawn Spawn) *Cluster {
	return &Cluster{spawn: spawn}
}

// Add offers cand to each accumulator in turn and returns the index of
// the one which took it. If it was used as a new seed, that is the
// last index.
func (c *Cluster) Add(cand *matrix.FMatrix2d) (int, error) {
	for i, acc := range c.accs {
		out, err := acc.Align(cand)
		if err != nil {
			return -1, fmt.Errorf("accumulator %d: %w", i, err)
		}
		if out.Accepted {
			log.Debugf("candidate to accumulator %d, score %g offset %d", i, out.Score, out.Offset)
			return i, nil
		}
	}
	acc, err := c.spawn(cand)
	if err != nil {
		return -1, fmt.Errorf("new seed: %w", err)
	}
	c.accs = append(c.accs, acc)
	log.Debugf("candidate seeds accumulator %d", len(c.accs)-1)
	return len(c.accs) - 1, nil
}

// Len is the number of accumulators.
func (c *Cluster) Len() int { return len(c.accs) }

// Accumulators returns the accumulators in creation order.
func (c *Cluster) Accumulators() []Accumulator {
	r := make([]Accumulator, len(c.accs))
	copy(r, c.accs)
	return r
}

// Top returns up to max accumulators by decreasing support (ties in
// creation order), stopping at the first with support below minSupport.
// max < 0 means no limit.
func (c *Cluster) Top(minSupport, max int) []Accumulator {
	r := c.Accumulators()
	sort.SliceStable(r, func(i, j int) bool { return r[i].Support() > r[j].Support() })
	n := 0
	for n < len(r) && (max < 0 || n < max) && r[n].Support() >= minSupport {
		n++
	}
	return r[:n]
}
