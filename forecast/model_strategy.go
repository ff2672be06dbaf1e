package forecast

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

var log = logrus.WithField("component", "forecast")

// ErrModelUnavailable means the sequence model artifact could not be loaded.
var ErrModelUnavailable = errors.New("forecast model unavailable")

// ModelLoader lazily loads a Predictor once per process. Failed loads are
// not remembered, so a later call retries.
type ModelLoader struct {
	path string
	load func(string) (Predictor, error)

	group singleflight.Group
	mu    sync.RWMutex
	model Predictor
}

// NewModelLoader returns a loader reading the JSON artifact at path.
func NewModelLoader(path string) *ModelLoader {
	return &ModelLoader{
		path: path,
		load: func(p string) (Predictor, error) { return LoadModel(p) },
	}
}

// NewModelLoaderFunc returns a loader backed by a custom load function.
func NewModelLoaderFunc(path string, load func(string) (Predictor, error)) *ModelLoader {
	return &ModelLoader{path: path, load: load}
}

// Get returns the loaded model, loading it on first use.
func (l *ModelLoader) Get() (Predictor, error) {
	l.mu.RLock()
	m := l.model
	l.mu.RUnlock()
	if m != nil {
		return m, nil
	}

	v, err, _ := l.group.Do("model", func() (interface{}, error) {
		l.mu.RLock()
		cached := l.model
		l.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}
		loaded, err := l.load(l.path)
		if err != nil {
			log.WithError(err).WithField("path", l.path).Warn("model load failed")
			return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
		}
		l.mu.Lock()
		l.model = loaded
		l.mu.Unlock()
		log.WithField("path", l.path).Info("model loaded")
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Predictor), nil
}

// Clear drops the loaded model.
func (l *ModelLoader) Clear() {
	l.mu.Lock()
	l.model = nil
	l.mu.Unlock()
}

// ModelStrategy autoregresses the sequence model one day at a time and
// averages each year of predictions.
type ModelStrategy struct {
	Loader *ModelLoader
}

// Name implements Strategy.
func (*ModelStrategy) Name() string { return StrategyModel }

// Project implements Strategy.
func (s *ModelStrategy) Project(ctx context.Context, h *History, years int) (*Series, error) {
	if s.Loader == nil {
		return nil, ErrModelUnavailable
	}
	model, err := s.Loader.Get()
	if err != nil {
		return nil, err
	}
	seqLen := model.SequenceLength()
	if h.Len() < seqLen {
		return nil, fmt.Errorf("%w: need %d observations, have %d", ErrInsufficientHistory, seqLen, h.Len())
	}

	scaler := FitMinMax(h.Rows)
	window := make([][]float64, 0, seqLen)
	for _, row := range h.Tail(seqLen).Rows {
		window = append(window, scaler.Transform(row))
	}

	var out [NumFeatures][]float64
	for f := range out {
		out[f] = make([]float64, years)
	}
	var sums [NumFeatures]float64
	steps := DaysPerYear * years
	for step := 0; step < steps; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := model.PredictNext(window)
		if err != nil {
			return nil, fmt.Errorf("predict step %d: %w", step, err)
		}
		window = append(window[1:], next)

		actual := scaler.Inverse(next)
		for f := 0; f < NumFeatures; f++ {
			sums[f] += actual[f]
		}
		if (step+1)%DaysPerYear == 0 {
			year := step / DaysPerYear
			for f := 0; f < NumFeatures; f++ {
				out[f][year] = sums[f] / DaysPerYear
				sums[f] = 0
			}
		}
	}
	return seriesFromFeatures(out), nil
}
