// Package neural provides the fixed-topology feedforward networks that
// decide when a bird flaps.
package neural

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrShapeMismatch is returned when two networks of different topology are combined.
	ErrShapeMismatch = errors.New("neural: topology mismatch")
	// ErrTopology is returned for unusable layer sizes or weight ranges.
	ErrTopology = errors.New("neural: invalid topology")
)

// Topology is the layer-size structure shared by every network in a run.
type Topology struct {
	Inputs  int
	Hidden  int
	Outputs int
}

// WeightCount returns the total number of weights in both layers.
func (t Topology) WeightCount() int {
	return t.Inputs*t.Hidden + t.Hidden*t.Outputs
}

func (t Topology) valid() bool {
	return t.Inputs > 0 && t.Hidden > 0 && t.Outputs > 0
}

// WeightRange is the interval weights are drawn from, both at creation
// and when a weight is replaced by mutation.
type WeightRange struct {
	Min float64
	Max float64
}

func (r WeightRange) sample(rng *rand.Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// FFNN is a two-layer feedforward network without biases.
// W1 is Inputs×Hidden and W2 is Hidden×Outputs; shapes never change.
type FFNN struct {
	W1 *mat.Dense
	W2 *mat.Dense

	topo    Topology
	weights WeightRange
}

// New creates a network with every weight drawn uniformly from weights.
func New(topo Topology, weights WeightRange, rng *rand.Rand) (*FFNN, error) {
	if !topo.valid() {
		return nil, fmt.Errorf("%w: %+v", ErrTopology, topo)
	}
	if !(weights.Min < weights.Max) {
		return nil, fmt.Errorf("%w: weight range [%v, %v]", ErrTopology, weights.Min, weights.Max)
	}

	nn := &FFNN{
		W1:      mat.NewDense(topo.Inputs, topo.Hidden, nil),
		W2:      mat.NewDense(topo.Hidden, topo.Outputs, nil),
		topo:    topo,
		weights: weights,
	}
	for _, m := range nn.layers() {
		data := m.RawMatrix().Data
		for i := range data {
			data[i] = weights.sample(rng)
		}
	}
	return nn, nil
}

// FromWeights builds a network from explicit row-major weights.
func FromWeights(topo Topology, weights WeightRange, bw BrainWeights) (*FFNN, error) {
	if !topo.valid() {
		return nil, fmt.Errorf("%w: %+v", ErrTopology, topo)
	}
	if !(weights.Min < weights.Max) {
		return nil, fmt.Errorf("%w: weight range [%v, %v]", ErrTopology, weights.Min, weights.Max)
	}
	if len(bw.W1) != topo.Inputs*topo.Hidden || len(bw.W2) != topo.Hidden*topo.Outputs {
		return nil, fmt.Errorf("%w: got %d+%d weights for %+v", ErrShapeMismatch, len(bw.W1), len(bw.W2), topo)
	}
	return &FFNN{
		W1:      mat.NewDense(topo.Inputs, topo.Hidden, append([]float64(nil), bw.W1...)),
		W2:      mat.NewDense(topo.Hidden, topo.Outputs, append([]float64(nil), bw.W2...)),
		topo:    topo,
		weights: weights,
	}, nil
}

// Topology returns the layer sizes.
func (nn *FFNN) Topology() Topology {
	return nn.topo
}

// layers returns both weight matrices in a fixed order.
// Matrices are created by this package with Stride == Cols, so RawMatrix().Data
// covers exactly the weights.
func (nn *FFNN) layers() [2]*mat.Dense {
	return [2]*mat.Dense{nn.W1, nn.W2}
}

// Forward computes σ(W2ᵀ σ(W1ᵀ x)) and returns the largest output.
// Panics with mat.ErrShape if len(inputs) != Inputs.
func (nn *FFNN) Forward(inputs []float64) float64 {
	x := mat.NewVecDense(len(inputs), inputs)

	var hidden mat.VecDense
	hidden.MulVec(nn.W1.T(), x)
	sigmoidInPlace(hidden.RawVector().Data)

	var out mat.VecDense
	out.MulVec(nn.W2.T(), &hidden)
	outputs := out.RawVector().Data
	sigmoidInPlace(outputs)

	return floats.Max(outputs)
}

// Mutate replaces each weight, with probability p, by a fresh sample from
// the initialization range. Returns how many weights were replaced.
func (nn *FFNN) Mutate(rng *rand.Rand, p float64) int {
	replaced := 0
	for _, m := range nn.layers() {
		data := m.RawMatrix().Data
		for i := range data {
			if rng.Float64() < p {
				data[i] = nn.weights.sample(rng)
				replaced++
			}
		}
	}
	return replaced
}

// Crossover builds a child whose every weight is copied from a with
// probability mix, otherwise from b. Parents are not modified.
func Crossover(a, b *FFNN, mix float64, rng *rand.Rand) (*FFNN, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: nil parent", ErrShapeMismatch)
	}
	if a.topo != b.topo {
		return nil, fmt.Errorf("%w: %+v vs %+v", ErrShapeMismatch, a.topo, b.topo)
	}

	child := &FFNN{
		W1:      mat.NewDense(a.topo.Inputs, a.topo.Hidden, nil),
		W2:      mat.NewDense(a.topo.Hidden, a.topo.Outputs, nil),
		topo:    a.topo,
		weights: a.weights,
	}
	pa, pb, pc := a.layers(), b.layers(), child.layers()
	for l := range pc {
		da, db, dc := pa[l].RawMatrix().Data, pb[l].RawMatrix().Data, pc[l].RawMatrix().Data
		for i := range dc {
			if rng.Float64() < mix {
				dc[i] = da[i]
			} else {
				dc[i] = db[i]
			}
		}
	}
	return child, nil
}

// Clone creates a deep copy of the network.
func (nn *FFNN) Clone() *FFNN {
	return &FFNN{
		W1:      mat.DenseCopyOf(nn.W1),
		W2:      mat.DenseCopyOf(nn.W2),
		topo:    nn.topo,
		weights: nn.weights,
	}
}

// Sigmoid is the logistic function used by both layers.
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func sigmoidInPlace(v []float64) {
	for i, x := range v {
		v[i] = Sigmoid(x)
	}
}

// BrainWeights holds flattened row-major copies of the weight matrices.
type BrainWeights struct {
	W1 []float64 `json:"w1"` // [Inputs * Hidden]
	W2 []float64 `json:"w2"` // [Hidden * Outputs]
}

// Weights returns a flattened copy of the network weights.
func (nn *FFNN) Weights() BrainWeights {
	return BrainWeights{
		W1: append([]float64(nil), nn.W1.RawMatrix().Data...),
		W2: append([]float64(nil), nn.W2.RawMatrix().Data...),
	}
}

// All returns every weight of both layers as one slice.
func (bw BrainWeights) All() []float64 {
	all := make([]float64, 0, len(bw.W1)+len(bw.W2))
	all = append(all, bw.W1...)
	return append(all, bw.W2...)
}
