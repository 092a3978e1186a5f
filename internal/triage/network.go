package triage

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// LayerSpec is the serialised form of one network layer. Weight layouts follow
// the Keras convention: kernels are [input][output], LSTM gates are packed as
// input, forget, cell, output.
type LayerSpec struct {
	Type            string      `json:"type"`
	Activation      string      `json:"activation,omitempty"`
	Units           int         `json:"units,omitempty"`
	ReturnSequences bool        `json:"return_sequences,omitempty"`
	Weights         [][]float64 `json:"weights,omitempty"`
	Kernel          [][]float64 `json:"kernel,omitempty"`
	RecurrentKernel [][]float64 `json:"recurrent_kernel,omitempty"`
	Bias            []float64   `json:"bias,omitempty"`
}

// layer transforms a [timesteps x features] activation matrix.
type layer interface {
	forward(x *mat.Dense) *mat.Dense
	outputDim() int
}

// Network is an embedding followed by recurrent and dense layers.
type Network struct {
	embedding *embeddingLayer
	layers    []layer
	outDim    int
}

// NewNetwork validates layer shapes and builds a Network. The first layer must
// be an embedding.
func NewNetwork(specs []LayerSpec) (*Network, error) {
	if len(specs) == 0 || specs[0].Type != "embedding" {
		return nil, fmt.Errorf("network must start with an embedding layer")
	}
	emb, err := newEmbeddingLayer(specs[0])
	if err != nil {
		return nil, fmt.Errorf("layer 0: %w", err)
	}

	n := &Network{embedding: emb}
	dim := emb.dim
	for i, spec := range specs[1:] {
		var l layer
		switch spec.Type {
		case "lstm":
			l, err = newLSTMLayer(spec, dim)
		case "dense":
			l, err = newDenseLayer(spec, dim)
		case "dropout":
			continue
		default:
			err = fmt.Errorf("unsupported layer type %q", spec.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i+1, err)
		}
		n.layers = append(n.layers, l)
		dim = l.outputDim()
	}
	n.outDim = dim
	return n, nil
}

// InputVocabulary is the number of embedding rows.
func (n *Network) InputVocabulary() int {
	return n.embedding.vocab
}

// OutputDim is the width of the final layer.
func (n *Network) OutputDim() int {
	return n.outDim
}

// Forward runs a padded index sequence through the network and returns the
// final timestep's output vector.
func (n *Network) Forward(seq []int) ([]float64, error) {
	x, err := n.embedding.lookup(seq)
	if err != nil {
		return nil, err
	}
	for _, l := range n.layers {
		x = l.forward(x)
	}
	rows, _ := x.Dims()
	out := make([]float64, n.outDim)
	copy(out, x.RawRowView(rows-1))
	return out, nil
}

// -- Embedding --

type embeddingLayer struct {
	weights *mat.Dense
	vocab   int
	dim     int
}

func newEmbeddingLayer(spec LayerSpec) (*embeddingLayer, error) {
	w, err := denseFromRows(spec.Weights)
	if err != nil {
		return nil, fmt.Errorf("embedding weights: %w", err)
	}
	vocab, dim := w.Dims()
	return &embeddingLayer{weights: w, vocab: vocab, dim: dim}, nil
}

func (e *embeddingLayer) lookup(seq []int) (*mat.Dense, error) {
	if len(seq) == 0 {
		return nil, fmt.Errorf("empty input sequence")
	}
	data := make([]float64, 0, len(seq)*e.dim)
	for _, idx := range seq {
		if idx < 0 || idx >= e.vocab {
			return nil, fmt.Errorf("token index %d outside embedding vocabulary %d", idx, e.vocab)
		}
		data = append(data, e.weights.RawRowView(idx)...)
	}
	return mat.NewDense(len(seq), e.dim, data), nil
}

// -- LSTM --

type lstmLayer struct {
	kernel    *mat.Dense // [in x 4u]
	recurrent *mat.Dense // [u x 4u]
	bias      []float64  // [4u]
	units     int
	returnSeq bool
}

func newLSTMLayer(spec LayerSpec, inDim int) (*lstmLayer, error) {
	u := spec.Units
	if u <= 0 {
		return nil, fmt.Errorf("lstm units must be positive")
	}
	k, err := denseFromRows(spec.Kernel)
	if err != nil {
		return nil, fmt.Errorf("lstm kernel: %w", err)
	}
	if r, c := k.Dims(); r != inDim || c != 4*u {
		return nil, fmt.Errorf("lstm kernel is %dx%d, want %dx%d", r, c, inDim, 4*u)
	}
	rk, err := denseFromRows(spec.RecurrentKernel)
	if err != nil {
		return nil, fmt.Errorf("lstm recurrent kernel: %w", err)
	}
	if r, c := rk.Dims(); r != u || c != 4*u {
		return nil, fmt.Errorf("lstm recurrent kernel is %dx%d, want %dx%d", r, c, u, 4*u)
	}
	bias := spec.Bias
	if bias == nil {
		bias = make([]float64, 4*u)
	}
	if len(bias) != 4*u {
		return nil, fmt.Errorf("lstm bias has %d values, want %d", len(bias), 4*u)
	}
	return &lstmLayer{kernel: k, recurrent: rk, bias: bias, units: u, returnSeq: spec.ReturnSequences}, nil
}

func (l *lstmLayer) outputDim() int { return l.units }

func (l *lstmLayer) forward(x *mat.Dense) *mat.Dense {
	steps, in := x.Dims()
	u := l.units

	h := mat.NewDense(1, u, nil)
	c := make([]float64, u)

	var out *mat.Dense
	if l.returnSeq {
		out = mat.NewDense(steps, u, nil)
	}

	var zx, zh mat.Dense
	for t := 0; t < steps; t++ {
		zx.Reset()
		zh.Reset()
		zx.Mul(x.Slice(t, t+1, 0, in), l.kernel)
		zh.Mul(h, l.recurrent)
		z := zx.RawRowView(0)
		rz := zh.RawRowView(0)

		hRow := h.RawRowView(0)
		for j := 0; j < u; j++ {
			ig := sigmoid(z[j] + rz[j] + l.bias[j])
			fg := sigmoid(z[u+j] + rz[u+j] + l.bias[u+j])
			cg := math.Tanh(z[2*u+j] + rz[2*u+j] + l.bias[2*u+j])
			og := sigmoid(z[3*u+j] + rz[3*u+j] + l.bias[3*u+j])
			c[j] = fg*c[j] + ig*cg
			hRow[j] = og * math.Tanh(c[j])
		}
		if out != nil {
			out.SetRow(t, hRow)
		}
	}

	if out != nil {
		return out
	}
	return h
}

// -- Dense --

type denseLayer struct {
	kernel     *mat.Dense
	bias       []float64
	activation string
	units      int
}

func newDenseLayer(spec LayerSpec, inDim int) (*denseLayer, error) {
	k, err := denseFromRows(spec.Kernel)
	if err != nil {
		return nil, fmt.Errorf("dense kernel: %w", err)
	}
	r, cols := k.Dims()
	if r != inDim {
		return nil, fmt.Errorf("dense kernel has %d input rows, want %d", r, inDim)
	}
	bias := spec.Bias
	if bias == nil {
		bias = make([]float64, cols)
	}
	if len(bias) != cols {
		return nil, fmt.Errorf("dense bias has %d values, want %d", len(bias), cols)
	}
	switch spec.Activation {
	case "", "linear", "relu", "sigmoid", "tanh", "softmax":
	default:
		return nil, fmt.Errorf("unsupported activation %q", spec.Activation)
	}
	return &denseLayer{kernel: k, bias: bias, activation: spec.Activation, units: cols}, nil
}

func (d *denseLayer) outputDim() int { return d.units }

func (d *denseLayer) forward(x *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Mul(x, d.kernel)
	rows, _ := out.Dims()
	for i := 0; i < rows; i++ {
		row := out.RawRowView(i)
		for j := range row {
			row[j] += d.bias[j]
		}
		activate(d.activation, row)
	}
	return &out
}

func activate(name string, v []float64) {
	switch name {
	case "relu":
		for i, x := range v {
			if x < 0 {
				v[i] = 0
			}
		}
	case "sigmoid":
		for i, x := range v {
			v[i] = sigmoid(x)
		}
	case "tanh":
		for i, x := range v {
			v[i] = math.Tanh(x)
		}
	case "softmax":
		softmax(v)
	}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func softmax(v []float64) {
	if len(v) == 0 {
		return
	}
	peak := v[0]
	for _, x := range v[1:] {
		if x > peak {
			peak = x
		}
	}
	var sum float64
	for i, x := range v {
		v[i] = math.Exp(x - peak)
		sum += v[i]
	}
	for i := range v {
		v[i] /= sum
	}
}

// argmax returns the index of the largest value; ties go to the lowest index.
func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

func denseFromRows(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("empty matrix")
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(r), cols)
		}
		data = append(data, r...)
	}
	return mat.NewDense(len(rows), cols, data), nil
}
