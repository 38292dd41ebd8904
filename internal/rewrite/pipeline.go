package rewrite

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/wikiprox/internal/logger"
)

// emptyParagraph is the spacer MediaWiki emits between blocks.
const emptyParagraph = "<p><br />\n</p>"

// Options carries the per-page inputs of a pipeline run.
type Options struct {
	// SourceIDs holds the identifiers of resolved primary sources.
	SourceIDs map[string]struct{}

	// Printed selects the print variant.
	Printed bool

	// StatusMarkers are the classes of div.alert banners to remove.
	StatusMarkers []string

	// LegacyPrefixes are path prefixes removed from link targets,
	// longest first.
	LegacyPrefixes []string
}

// Stage is one named transformation of the document.
// Apply must tolerate a document without the structure it targets.
type Stage struct {
	Name  string
	Apply func(doc *goquery.Document, opts Options)
}

// Pipeline applies stages in order.
type Pipeline struct {
	stages []Stage
}

// NewPipeline creates a pipeline with the given stages.
// Stages are executed in the order provided.
func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{
		stages: stages,
	}
}

// Default returns a pipeline with the standard stage order.
func Default() *Pipeline {
	return NewPipeline(DefaultStages()...)
}

// Add appends a stage to the pipeline.
func (p *Pipeline) Add(stage Stage) {
	p.stages = append(p.stages, stage)
}

// Len returns the number of stages in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.stages)
}

// Names returns the stage names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, 0, len(p.stages))
	for _, s := range p.stages {
		names = append(names, s.Name)
	}
	return names
}

// Run parses body, applies every stage and returns the resulting body HTML.
func (p *Pipeline) Run(body string, opts Options) (string, error) {
	doc, err := Parse(body)
	if err != nil {
		return "", err
	}

	p.Apply(doc, opts)
	return Body(doc)
}

// Apply runs every stage over an already parsed document.
func (p *Pipeline) Apply(doc *goquery.Document, opts Options) {
	for _, stage := range p.stages {
		stage.Apply(doc, opts)
		logger.Debug("Applied rewrite stage %s", stage.Name)
	}
}

// Body serialises the contents of the document body.
func Body(doc *goquery.Document) (string, error) {
	out, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("render body: %w", err)
	}
	return out, nil
}

// Parse builds a document from a page body, dropping empty spacer paragraphs.
func Parse(body string) (*goquery.Document, error) {
	body = strings.ReplaceAll(body, emptyParagraph, "")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse body: %w", err)
	}
	return doc, nil
}
