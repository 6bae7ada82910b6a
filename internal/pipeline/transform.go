package pipeline

import (
	"context"

	"github.com/couchcryptid/trackota-etl/internal/analysis"
)

// ReportTransformer implements Transformer by running every extraction of a
// folder through the analysis service.
type ReportTransformer struct {
	service *analysis.Service
}

// NewTransformer creates a ReportTransformer over service.
func NewTransformer(service *analysis.Service) *ReportTransformer {
	return &ReportTransformer{service: service}
}

func (t *ReportTransformer) Transform(ctx context.Context, folder string) (analysis.Report, error) {
	return t.service.Report(ctx, folder)
}
