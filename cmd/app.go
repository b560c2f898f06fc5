package cmd

import (
	"context"

	"github.com/sashabaranov/go-openai"

	"go-patrol/classifier"
	"go-patrol/config"
	"go-patrol/db"
	"go-patrol/gazetteer"
	"go-patrol/layout"
	"go-patrol/layout/pdf"
	"go-patrol/location"
	"go-patrol/logger"
	"go-patrol/metrics"
	"go-patrol/processor"
	"go-patrol/report"
	"go-patrol/summarization"
)

// pipeline holds the stateless pieces shared by every command.
type pipeline struct {
	classifier *classifier.Classifier
	resolver   *location.Resolver
	generator  *report.Generator
}

func newPipeline(cfg *config.Config) pipeline {
	cls := classifier.Default()
	res := location.New(gazetteer.Default())
	return pipeline{
		classifier: cls,
		resolver:   res,
		generator: report.NewGenerator(
			report.WithClassifier(cls),
			report.WithResolver(res),
			report.WithTopN(cfg.Report.TopN),
			report.WithMeasurer(pdf.NewMeasurer(layout.DefaultPageConfig())),
		),
	}
}

// newProcessor connects to Firestore and wires the processor. met may be nil.
func newProcessor(ctx context.Context, cfg *config.Config, pl pipeline, met *metrics.Metrics, log logger.Logger) (*processor.Processor, error) {
	client, err := db.InitFirestore(ctx, cfg.Firebase.Credentials, cfg.Firebase.ProjectID)
	if err != nil {
		return nil, err
	}

	p := &processor.Processor{
		Store:     db.NewIncidentStore(client, log),
		Generator: pl.generator,
		Metrics:   met,
		Log:       log,
	}
	if cfg.OpenAI.Enabled() {
		log.Info("OPENAI_API_KEY loaded, narratives enabled", logger.String("model", cfg.OpenAI.Model))
		p.Narrator = summarization.NewOpenAINarrator(openai.NewClient(cfg.OpenAI.APIKey), cfg.OpenAI.Model, log)
	}
	return p, nil
}
