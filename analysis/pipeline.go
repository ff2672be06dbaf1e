package analysis

import (
	"context"

	"silicorex/datasets"
	"silicorex/translations"
)

// Pipeline wires the loaded datasets to a generation backend.
type Pipeline struct {
	tables   *datasets.DistrictTables
	resolver *Resolver
	backend  Backend
	opts     []StreamOption
}

// NewPipeline builds the resolver for tables. backend may be nil, in which
// case every stream fails with ErrConfiguration.
func NewPipeline(tables *datasets.DistrictTables, backend Backend, opts ...StreamOption) *Pipeline {
	return &Pipeline{
		tables:   tables,
		resolver: NewResolver(tables.Rainfall, translations.DistrictsENtoKN),
		backend:  backend,
		opts:     opts,
	}
}

// Tables returns the datasets the pipeline was built over.
func (p *Pipeline) Tables() *datasets.DistrictTables {
	return p.tables
}

// Resolver exposes the district lookup.
func (p *Pipeline) Resolver() *Resolver {
	return p.resolver
}

// Request is a prepared analysis for one district.
type Request struct {
	District string
	Display  string
	Locale   string
	Metrics  FeasibilityMetrics
	Prompt   string
}

// Prepare resolves displayName and compiles its prompt.
func (p *Pipeline) Prepare(displayName, locale string) (*Request, error) {
	locale = translations.NormalizeLocale(locale)
	district, err := p.resolver.Resolve(displayName, locale)
	if err != nil {
		return nil, err
	}
	metrics := Extract(district, p.tables)
	return &Request{
		District: district,
		Display:  p.resolver.Display(district, locale),
		Locale:   locale,
		Metrics:  metrics,
		Prompt:   CompilePrompt(district, metrics),
	}, nil
}

// Stream starts report generation for a prepared request.
func (p *Pipeline) Stream(ctx context.Context, req *Request) *ReportStream {
	return NewReportStream(ctx, p.backend, req.District, req.Prompt, req.Locale, p.opts...)
}

// Configured reports whether a backend is available.
func (p *Pipeline) Configured() bool {
	return p.backend != nil
}
