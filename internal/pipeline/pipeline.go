// Package pipeline runs one tagging build: rules, template, documents,
// extraction, assembly and the workbook write.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/a3tai/tender-ai-tagger/internal/config"
	"github.com/a3tai/tender-ai-tagger/internal/extraction"
	"github.com/a3tai/tender-ai-tagger/internal/pdf"
	"github.com/a3tai/tender-ai-tagger/internal/records"
	"github.com/a3tai/tender-ai-tagger/internal/rules"
	"github.com/a3tai/tender-ai-tagger/internal/workbook"
)

// Options names the inputs and output of a build
type Options struct {
	TemplatePath   string
	PDFPaths       []string
	AmendmentPaths []string
	RulesPath      string
	OutputPath     string
	MetaLabel      string
}

// OptionsFromConfig copies the build inputs out of a loaded configuration
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		TemplatePath:   cfg.TemplatePath,
		PDFPaths:       cfg.PDFPaths,
		AmendmentPaths: cfg.AmendmentPaths,
		RulesPath:      cfg.RulesPath,
		OutputPath:     cfg.OutputPath,
		MetaLabel:      cfg.MetaLabel,
	}
}

// Result summarises a finished build
type Result struct {
	OutputPath    string
	BuildID       string
	Pages         int
	TagRows       int
	BidInfoFields int
	Amendments    int
}

// Pipeline wires the build stages together
type Pipeline struct {
	reader  records.PageReader
	loader  *rules.Loader
	engine  *extraction.Engine
	builder *workbook.Builder
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

// Option customises a Pipeline
type Option func(*Pipeline)

// WithPageReader replaces the PDF reader
func WithPageReader(reader records.PageReader) Option {
	return func(p *Pipeline) { p.reader = reader }
}

// WithClock replaces the clock used for the build stamp
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithBuildID replaces the build identifier generator
func WithBuildID(newID func() string) Option {
	return func(p *Pipeline) { p.newID = newID }
}

// New creates a pipeline reading PDFs up to maxFileSize bytes
func New(logger *zap.Logger, maxFileSize int64, opts ...Option) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pipeline{
		reader:  pdf.NewReader(maxFileSize, logger.Named("pdf")),
		loader:  rules.NewLoader(logger.Named("rules")),
		engine:  extraction.NewEngine(logger.Named("extraction")),
		builder: workbook.NewBuilder(logger.Named("workbook")),
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes a build. Unusable rules, an unreadable template and a failed
// write abort the run; unreadable documents only reduce what is extracted.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	ruleSet, err := p.loader.Load(opts.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	p.logger.Info("Cloning template structure...", zap.String("template", opts.TemplatePath))
	clones, err := p.builder.CloneTemplate(opts.TemplatePath)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Reading main PDFs...", zap.Int("count", len(opts.PDFPaths)))
	pages, err := p.readAll(ctx, opts.PDFPaths)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Running extractors...", zap.Int("extractors", len(ruleSet.Extractors)), zap.Int("pages", len(pages)))
	tagRows := p.engine.ExtractAll(pages, ruleSet.Extractors)

	headerValues := p.engine.HeaderFields(pages, ruleSet.BidInfoMap)
	bidInfo := records.AssembleBidInfo(headerValues, ruleSet.Defaults)

	meta := records.BuildMeta{
		Label:          opts.MetaLabel,
		BuiltAt:        p.now(),
		BuildID:        p.newID(),
		SourceCount:    len(opts.PDFPaths),
		AmendmentCount: len(opts.AmendmentPaths),
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	amendments := records.NewAmendmentProcessor(p.reader, p.engine, p.logger.Named("amendments")).
		Process(opts.AmendmentPaths)

	standard := []workbook.Sheet{
		records.MasterSheet(tagRows),
		bidInfo.Sheet(),
		records.AmendmentSheet(amendments),
		records.MetaSheet(meta),
	}

	p.logger.Info("Writing output", zap.String("out", opts.OutputPath))
	if err := p.builder.Write(opts.OutputPath, clones, standard); err != nil {
		return nil, err
	}

	result := &Result{
		OutputPath:    opts.OutputPath,
		BuildID:       meta.BuildID,
		Pages:         len(pages),
		TagRows:       len(tagRows),
		BidInfoFields: bidInfo.Len(),
		Amendments:    len(amendments),
	}
	p.logger.Info("Done.",
		zap.Int("tag_rows", result.TagRows),
		zap.Int("bid_info_fields", result.BidInfoFields),
		zap.Int("amendments", result.Amendments))

	return result, nil
}

// readAll concatenates the pages of every document in file then page order
func (p *Pipeline) readAll(ctx context.Context, paths []string) ([]pdf.Page, error) {
	var pages []pdf.Page
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		docPages := p.reader.ReadPages(path)
		p.logger.Debug("Read document", zap.String("file", filepath.Base(path)), zap.Int("pages", len(docPages)))
		pages = append(pages, docPages...)
	}
	return pages, nil
}
