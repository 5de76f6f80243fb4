package ingest

import (
	"context"
	"fmt"

	"github.com/eunbi/vaxsight/internal/clean"
	"github.com/eunbi/vaxsight/internal/dataset"
	"github.com/eunbi/vaxsight/internal/store"
	"github.com/eunbi/vaxsight/pkg/logger"
)

// Pipeline runs one full ingestion: read the local extract, clean it, and
// replace the stored record set. The cleaned set is immutable once
// persisted; downstream consumers only ever derive new collections from it.
type Pipeline struct {
	reader     *Reader
	normalizer *clean.Normalizer
	repo       *store.Repository
	log        *logger.Logger
}

// NewPipeline creates a Pipeline.
func NewPipeline(reader *Reader, normalizer *clean.Normalizer, repo *store.Repository, log *logger.Logger) *Pipeline {
	return &Pipeline{
		reader:     reader,
		normalizer: normalizer,
		repo:       repo,
		log:        log,
	}
}

// Run ingests the extract at csvPath and returns the cleaned records that
// were persisted, with the cleaning report. Schema and write failures
// leave stored data untouched.
func (p *Pipeline) Run(ctx context.Context, csvPath string) ([]dataset.Record, clean.Report, error) {
	raw, err := p.reader.ReadFile(csvPath)
	if err != nil {
		return nil, clean.Report{}, err
	}

	records, report, err := p.normalizer.Clean(raw)
	if err != nil {
		return nil, report, fmt.Errorf("clean extract: %w", err)
	}

	if err := p.repo.ReplaceAll(ctx, records); err != nil {
		return nil, report, fmt.Errorf("persist cleaned records: %w", err)
	}

	p.log.WithFields(map[string]interface{}{
		"raw":    report.Input,
		"stored": report.Output,
	}).Info("ingestion completed")

	return records, report, nil
}
