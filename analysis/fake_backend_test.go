package analysis

import (
	"context"
	"errors"

	"google.golang.org/api/iterator"
)

// scriptedBackend replays one fragment list per GenerateStream call.
type scriptedBackend struct {
	streams [][]string
	// failures[i], when set, is returned by stream i after its fragments.
	failures map[int]error
	openErr  error
	prompts  []string
}

func (b *scriptedBackend) GenerateStream(_ context.Context, prompt string) (TextStream, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	b.prompts = append(b.prompts, prompt)
	i := len(b.prompts) - 1
	if i >= len(b.streams) {
		return nil, errors.New("unexpected generation call")
	}
	return &sliceStream{fragments: b.streams[i], err: b.failures[i]}, nil
}

type sliceStream struct {
	fragments []string
	pos       int
	err       error
}

func (s *sliceStream) Next() (string, error) {
	if s.pos < len(s.fragments) {
		s.pos++
		return s.fragments[s.pos-1], nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", iterator.Done
}

// drain collects every event until the stream ends.
func drain(s *ReportStream) ([]Event, error) {
	var events []Event
	for {
		ev, err := s.Next()
		if errors.Is(err, iterator.Done) {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
}
