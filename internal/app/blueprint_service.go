package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"mvp-foundry/internal/format"
	"mvp-foundry/internal/model"
	"mvp-foundry/internal/store"
)

const MaxPromptLength = 4000

var (
	ErrPromptEmpty       = errors.New("prompt is empty")
	ErrPromptTooLong     = errors.New("prompt is too long")
	ErrGeneration        = errors.New("blueprint generation failed")
	ErrBlueprintNotFound = errors.New("blueprint not found")
	ErrArchiveDisabled   = errors.New("blueprint archive is disabled")
)

type Generator interface {
	Generate(ctx context.Context, prompt string) (model.DocumentPayload, error)
}

type DocumentStore interface {
	Create(prompt string, payload model.DocumentPayload) model.Document
	Record(ctx context.Context, doc model.Document) error
	Get(ctx context.Context, id string) (model.Document, error)
	ListHistory(ctx context.Context) []model.HistoryEntry
}

type RecordedPublisher interface {
	PublishRecorded(ctx context.Context, entry model.HistoryEntry) error
}

type ArchiveReader interface {
	ListByBlueprintID(ctx context.Context, blueprintID string) ([]model.BlueprintArchive, error)
}

type BlueprintService struct {
	generator Generator
	store     DocumentStore
	publisher RecordedPublisher
	archive   ArchiveReader
	logger    *slog.Logger
}

type GenerateInput struct {
	Prompt string
}

type GenerateResult struct {
	Document model.Document `json:"document"`
	// Recorded is false when the document could not be persisted; it is
	// still returned so the caller can display it once.
	Recorded bool `json:"recorded"`
}

// NewBlueprintService wires the service. publisher and archive may be nil
// when the broker is not configured.
func NewBlueprintService(
	generator Generator,
	documents DocumentStore,
	publisher RecordedPublisher,
	archive ArchiveReader,
	logger *slog.Logger,
) *BlueprintService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BlueprintService{
		generator: generator,
		store:     documents,
		publisher: publisher,
		archive:   archive,
		logger:    logger,
	}
}

// Generate calls the generation service once, then creates and records the
// document. Nothing is recorded when generation fails.
func (s *BlueprintService) Generate(ctx context.Context, input GenerateInput) (*GenerateResult, error) {
	prompt := strings.TrimSpace(input.Prompt)
	if err := validatePrompt(prompt); err != nil {
		return nil, err
	}

	payload, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("generate blueprint failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	doc := s.store.Create(prompt, payload)
	result := &GenerateResult{Document: doc}
	if err := s.store.Record(ctx, doc); err != nil {
		s.logger.Error("record blueprint failed", "id", doc.ID, "error", err)
		return result, nil
	}
	result.Recorded = true
	s.logger.Info("blueprint recorded", "id", doc.ID, "title", doc.Title)

	if s.publisher != nil {
		if err := s.publisher.PublishRecorded(ctx, doc.Entry()); err != nil {
			s.logger.Warn("publish recorded event failed", "id", doc.ID, "error", err)
		}
	}
	return result, nil
}

func (s *BlueprintService) Get(ctx context.Context, id string) (*model.Document, error) {
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBlueprintNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (s *BlueprintService) History(ctx context.Context) []model.HistoryEntry {
	return s.store.ListHistory(ctx)
}

func (s *BlueprintService) View(ctx context.Context, id string, tab Tab) (*BlueprintView, error) {
	if tab == "" {
		tab = TabBlueprint
	}
	if !tab.Valid() {
		return nil, ErrInvalidInput
	}
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return BuildView(*doc, tab), nil
}

func (s *BlueprintService) Archive(ctx context.Context, id string) ([]model.BlueprintArchive, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidInput
	}
	return s.archive.ListByBlueprintID(ctx, id)
}

// Format parses arbitrary text with the same rules used for stored sections.
func (s *BlueprintService) Format(text string) []format.Block {
	return format.Parse(text)
}

func validatePrompt(prompt string) error {
	if prompt == "" {
		return ErrPromptEmpty
	}
	if err := validation.Validate(prompt, validation.RuneLength(1, MaxPromptLength)); err != nil {
		return ErrPromptTooLong
	}
	return nil
}
