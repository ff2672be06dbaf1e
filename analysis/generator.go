package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"

	"silicorex/translations"
)

// Backend produces a streamed completion for a prompt.
type Backend interface {
	GenerateStream(ctx context.Context, prompt string) (TextStream, error)
}

// TextStream yields text fragments. Next returns iterator.Done once the
// completion is exhausted.
type TextStream interface {
	Next() (string, error)
}

// EventKind tags a ReportStream event.
type EventKind int

const (
	// EventFragment carries text to append to the draft.
	EventFragment EventKind = iota + 1
	// EventReset tells the consumer to discard the draft shown so far.
	EventReset
)

func (k EventKind) String() string {
	switch k {
	case EventFragment:
		return "fragment"
	case EventReset:
		return "reset"
	}
	return "unknown"
}

// Event is one item of a ReportStream.
type Event struct {
	Kind EventKind
	Text string
}

// Fragment builds a text event.
func Fragment(text string) Event {
	return Event{Kind: EventFragment, Text: text}
}

// ResetDraft builds the discard event.
func ResetDraft() Event {
	return Event{Kind: EventReset}
}

// Report is a finished feasibility report.
type Report struct {
	ID       string
	District string
	Locale   string
	Text     string
	Verdict  Verdict
}

type stage int

const (
	stageGeneratingPrimary stage = iota
	stageVerdictAppended
	stageTranslating
	stageDone
	stageFailed
)

func (s stage) String() string {
	return [...]string{"generating_primary", "verdict_appended", "translating", "done", "failed"}[s]
}

// ReportStream drives one report: the primary narrative, the verdict block,
// then an optional translation pass. It is pull based; call Next until it
// returns iterator.Done.
//
// A failure at any point ends the stream without a report. Text produced
// before the failure is dropped.
type ReportStream struct {
	ctx      context.Context
	backend  Backend
	prompt   string
	district string
	locale   string
	policy   VerdictPolicy

	stage   stage
	current TextStream
	draft   strings.Builder
	verdict Verdict
	report  *Report
	err     error

	log *logrus.Entry
}

// StreamOption configures a ReportStream.
type StreamOption func(*ReportStream)

// WithVerdictPolicy replaces KeywordVerdict.
func WithVerdictPolicy(p VerdictPolicy) StreamOption {
	return func(s *ReportStream) {
		s.policy = p
	}
}

// NewReportStream prepares a stream. No backend call is made until the
// first Next. A nil backend fails with ErrConfiguration.
func NewReportStream(ctx context.Context, backend Backend, district, prompt, locale string, opts ...StreamOption) *ReportStream {
	s := &ReportStream{
		ctx:      ctx,
		backend:  backend,
		prompt:   prompt,
		district: district,
		locale:   translations.NormalizeLocale(locale),
		policy:   KeywordVerdict,
	}
	for _, opt := range opts {
		opt(s)
	}
	id := uuid.NewString()
	s.log = logrus.WithFields(logrus.Fields{
		"component": "report",
		"report_id": id,
		"district":  district,
		"locale":    s.locale,
	})
	s.report = &Report{ID: id, District: district, Locale: s.locale}
	return s
}

// Next returns the next event.
func (s *ReportStream) Next() (Event, error) {
	for {
		switch s.stage {
		case stageDone:
			return Event{}, iterator.Done
		case stageFailed:
			return Event{}, s.err
		}

		if err := s.ctx.Err(); err != nil {
			return Event{}, s.fail(err)
		}

		switch s.stage {
		case stageGeneratingPrimary:
			if s.current == nil {
				if err := s.open(s.prompt); err != nil {
					return Event{}, err
				}
			}
			text, err := s.current.Next()
			if errors.Is(err, iterator.Done) {
				s.verdict = s.policy(s.draft.String())
				block := VerdictBlock(s.verdict)
				s.draft.WriteString(block)
				s.current = nil
				s.stage = stageVerdictAppended
				s.log.WithField("verdict", s.verdict).Info("narrative complete")
				return Fragment(block), nil
			}
			if err != nil {
				return Event{}, s.fail(err)
			}
			if text == "" {
				continue
			}
			s.draft.WriteString(text)
			return Fragment(text), nil

		case stageVerdictAppended:
			if s.locale == translations.DefaultLocale {
				s.finish()
				continue
			}
			if err := s.open(CompileTranslationPrompt(s.draft.String(), s.locale)); err != nil {
				return Event{}, err
			}
			s.draft.Reset()
			s.stage = stageTranslating
			return ResetDraft(), nil

		case stageTranslating:
			text, err := s.current.Next()
			if errors.Is(err, iterator.Done) {
				s.finish()
				continue
			}
			if err != nil {
				return Event{}, s.fail(err)
			}
			if text == "" {
				continue
			}
			s.draft.WriteString(text)
			return Fragment(text), nil
		}
	}
}

func (s *ReportStream) open(prompt string) error {
	if s.backend == nil {
		return s.fail(ErrConfiguration)
	}
	stream, err := s.backend.GenerateStream(s.ctx, prompt)
	if err != nil {
		return s.fail(err)
	}
	s.current = stream
	return nil
}

func (s *ReportStream) finish() {
	s.report.Text = s.draft.String()
	s.report.Verdict = s.verdict
	s.current = nil
	s.stage = stageDone
	s.log.Info("report complete")
}

func (s *ReportStream) fail(err error) error {
	switch {
	case errors.Is(err, ErrConfiguration), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.err = err
	default:
		s.err = fmt.Errorf("%w: %w", ErrBackend, err)
	}
	s.log.WithError(err).WithField("stage", s.stage).Error("report generation aborted")
	s.stage = stageFailed
	s.current = nil
	s.draft.Reset()
	return s.err
}

// Report returns the finished report. It is only available once Next has
// returned iterator.Done.
func (s *ReportStream) Report() (*Report, error) {
	switch s.stage {
	case stageDone:
		r := *s.report
		return &r, nil
	case stageFailed:
		return nil, s.err
	}
	return nil, errors.New("report stream not exhausted")
}

// Collect drains s and returns its report.
func Collect(s *ReportStream) (*Report, error) {
	for {
		_, err := s.Next()
		if errors.Is(err, iterator.Done) {
			return s.Report()
		}
		if err != nil {
			return nil, err
		}
	}
}
