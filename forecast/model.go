package forecast

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
)

// Layer kinds in a model artifact.
const (
	LayerLSTM  = "lstm"
	LayerDense = "dense"
)

// LayerSpec is one serialized layer. Kernels are stored row-major with
// one row per input unit, and LSTM gates are laid out i, f, c, o.
type LayerSpec struct {
	Type            string      `json:"type"`
	Units           int         `json:"units"`
	Kernel          [][]float64 `json:"kernel"`
	RecurrentKernel [][]float64 `json:"recurrent_kernel,omitempty"`
	Bias            []float64   `json:"bias"`
	ReturnSequences bool        `json:"return_sequences,omitempty"`
}

// ModelSpec is the on-disk form of a trained sequence model.
type ModelSpec struct {
	SequenceLength int         `json:"sequence_length"`
	Features       int         `json:"features"`
	Layers         []LayerSpec `json:"layers"`
}

// Predictor forecasts the next scaled observation from a window.
type Predictor interface {
	SequenceLength() int
	PredictNext(window [][]float64) ([]float64, error)
}

type layer interface {
	// forward consumes a sequence (one row per step) and returns either the
	// full output sequence or a single row holding the last step.
	forward(seq *mat.Dense) *mat.Dense
}

// Model is a stack of LSTM and dense layers evaluated with gonum.
type Model struct {
	seqLen   int
	features int
	layers   []layer
}

// LoadModel reads a JSON model artifact from path.
func LoadModel(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var spec ModelSpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", path, err)
	}
	return NewModel(spec)
}

// NewModel validates spec and builds its layers.
func NewModel(spec ModelSpec) (*Model, error) {
	if spec.SequenceLength <= 0 || spec.Features <= 0 {
		return nil, fmt.Errorf("model: invalid shape %dx%d", spec.SequenceLength, spec.Features)
	}
	if len(spec.Layers) == 0 {
		return nil, fmt.Errorf("model: no layers")
	}
	m := &Model{seqLen: spec.SequenceLength, features: spec.Features}
	inputs := spec.Features
	for i, ls := range spec.Layers {
		var (
			l   layer
			err error
		)
		switch ls.Type {
		case LayerLSTM:
			l, err = newLSTM(ls, inputs)
		case LayerDense:
			l, err = newDense(ls, inputs)
		default:
			err = fmt.Errorf("unknown layer type %q", ls.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("model: layer %d: %w", i, err)
		}
		m.layers = append(m.layers, l)
		inputs = ls.Units
	}
	if inputs != spec.Features {
		return nil, fmt.Errorf("model: output width %d, want %d", inputs, spec.Features)
	}
	return m, nil
}

// SequenceLength is the window size PredictNext expects.
func (m *Model) SequenceLength() int {
	return m.seqLen
}

// PredictNext runs the window through every layer and returns the output
// for the step after it.
func (m *Model) PredictNext(window [][]float64) ([]float64, error) {
	if len(window) != m.seqLen {
		return nil, fmt.Errorf("model: window has %d steps, want %d", len(window), m.seqLen)
	}
	seq := mat.NewDense(m.seqLen, m.features, nil)
	for r, row := range window {
		if len(row) != m.features {
			return nil, fmt.Errorf("model: step %d has %d features, want %d", r, len(row), m.features)
		}
		seq.SetRow(r, row)
	}

	out := seq
	for _, l := range m.layers {
		out = l.forward(out)
	}
	rows, _ := out.Dims()
	return mat.Row(nil, rows-1, out), nil
}

func matrixFrom(rows [][]float64, wantRows, wantCols int, name string) (*mat.Dense, error) {
	if len(rows) != wantRows {
		return nil, fmt.Errorf("%s has %d rows, want %d", name, len(rows), wantRows)
	}
	data := make([]float64, 0, wantRows*wantCols)
	for i, row := range rows {
		if len(row) != wantCols {
			return nil, fmt.Errorf("%s row %d has %d columns, want %d", name, i, len(row), wantCols)
		}
		data = append(data, row...)
	}
	return mat.NewDense(wantRows, wantCols, data), nil
}

type lstm struct {
	units     int
	kernel    *mat.Dense
	recurrent *mat.Dense
	bias      *mat.VecDense
	sequences bool
}

func newLSTM(ls LayerSpec, inputs int) (*lstm, error) {
	if ls.Units <= 0 {
		return nil, fmt.Errorf("lstm units must be positive")
	}
	gates := 4 * ls.Units
	kernel, err := matrixFrom(ls.Kernel, inputs, gates, "kernel")
	if err != nil {
		return nil, err
	}
	recurrent, err := matrixFrom(ls.RecurrentKernel, ls.Units, gates, "recurrent_kernel")
	if err != nil {
		return nil, err
	}
	if len(ls.Bias) != gates {
		return nil, fmt.Errorf("bias has %d values, want %d", len(ls.Bias), gates)
	}
	return &lstm{
		units:     ls.Units,
		kernel:    kernel,
		recurrent: recurrent,
		bias:      mat.NewVecDense(gates, append([]float64(nil), ls.Bias...)),
		sequences: ls.ReturnSequences,
	}, nil
}

func (l *lstm) forward(seq *mat.Dense) *mat.Dense {
	steps, _ := seq.Dims()
	u := l.units
	h := mat.NewVecDense(u, nil)
	c := mat.NewVecDense(u, nil)
	z := mat.NewVecDense(4*u, nil)
	rec := mat.NewVecDense(4*u, nil)

	var out *mat.Dense
	if l.sequences {
		out = mat.NewDense(steps, u, nil)
	}
	for t := 0; t < steps; t++ {
		z.MulVec(l.kernel.T(), seq.RowView(t))
		rec.MulVec(l.recurrent.T(), h)
		z.AddVec(z, rec)
		z.AddVec(z, l.bias)

		for j := 0; j < u; j++ {
			i := sigmoid(z.AtVec(j))
			f := sigmoid(z.AtVec(u + j))
			g := math.Tanh(z.AtVec(2*u + j))
			o := sigmoid(z.AtVec(3*u + j))
			cell := f*c.AtVec(j) + i*g
			c.SetVec(j, cell)
			h.SetVec(j, o*math.Tanh(cell))
		}
		if out != nil {
			out.SetRow(t, h.RawVector().Data)
		}
	}
	if out == nil {
		out = mat.NewDense(1, u, append([]float64(nil), h.RawVector().Data...))
	}
	return out
}

type dense struct {
	kernel *mat.Dense
	bias   *mat.VecDense
}

func newDense(ls LayerSpec, inputs int) (*dense, error) {
	if ls.Units <= 0 {
		return nil, fmt.Errorf("dense units must be positive")
	}
	kernel, err := matrixFrom(ls.Kernel, inputs, ls.Units, "kernel")
	if err != nil {
		return nil, err
	}
	if len(ls.Bias) != ls.Units {
		return nil, fmt.Errorf("bias has %d values, want %d", len(ls.Bias), ls.Units)
	}
	return &dense{kernel: kernel, bias: mat.NewVecDense(ls.Units, append([]float64(nil), ls.Bias...))}, nil
}

// forward applies the layer to the last step of seq.
func (d *dense) forward(seq *mat.Dense) *mat.Dense {
	rows, _ := seq.Dims()
	_, units := d.kernel.Dims()
	y := mat.NewVecDense(units, nil)
	y.MulVec(d.kernel.T(), seq.RowView(rows-1))
	y.AddVec(y, d.bias)
	return mat.NewDense(1, units, y.RawVector().Data)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
