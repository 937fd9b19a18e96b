package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"product-service/internal/event"
	"product-service/internal/mapper"
	"product-service/internal/models"
	"product-service/internal/optimizer"
	"product-service/internal/repository"
	"product-service/utils"
)

const (
	draftKeyPrefix  = "product:draft:"
	draftExpiration = 24 * time.Hour

	jobKeyPrefix  = "product:optimizer-job:"
	jobExpiration = time.Hour
)

// ValidationError carries the full violation list from a rejected product
// so handlers can return every problem at once.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("product validation failed with %d violations", len(e.Violations))
}

type ProductService struct {
	productRepo      *repository.ProductRepository
	validator        *ProductValidationService
	termSheetService *TermSheetService
	publisher        *event.ProductPublisher
}

func NewProductService(
	productRepo *repository.ProductRepository,
	validator *ProductValidationService,
	termSheetService *TermSheetService,
	publisher *event.ProductPublisher,
) *ProductService {
	return &ProductService{
		productRepo:      productRepo,
		validator:        validator,
		termSheetService: termSheetService,
		publisher:        publisher,
	}
}

// CreateFromManualBuilder maps the phase-based form plus its premium
// calculation into a canonical product and persists it. Validation failures
// return a ValidationError listing every violation.
func (s *ProductService) CreateFromManualBuilder(ctx context.Context, form models.ManualBuilderForm, premium models.PremiumResponse) (*models.Product, error) {
	product := mapper.FromManualBuilder(form, premium)
	product.ID = uuid.New()

	if violations := s.validator.ValidateProduct(&product); len(violations) > 0 {
		slog.Warn("Manual builder product rejected",
			"product_name", form.ProductName,
			"violations", len(violations))
		return nil, &ValidationError{Violations: violations}
	}

	for _, warning := range s.validator.CoercionWarnings(form) {
		slog.Warn("Manual builder coercion", "product_name", form.ProductName, "warning", warning)
	}

	if err := s.productRepo.CreateProduct(&product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.afterCreate(ctx, &product, "manual-builder")
	return &product, nil
}

// CreateFromWizard finalizes a wizard session against the optimization
// result the user selected and persists the resulting product.
func (s *ProductService) CreateFromWizard(ctx context.Context, state models.WizardState, periods []models.CoveragePeriod, selected *models.OptimizationResult, status models.ProductStatus) (*models.Product, error) {
	if selected == nil {
		return nil, fmt.Errorf("a selected optimization result is required")
	}
	if !models.IsValidProductStatus(status) {
		return nil, fmt.Errorf("invalid product status: %s", status)
	}

	product := mapper.FromWizard(state, periods, selected, status)
	product.ID = uuid.New()

	if violations := s.validator.ValidateProduct(&product); len(violations) > 0 {
		slog.Warn("Wizard product rejected",
			"product_name", state.Name,
			"violations", len(violations))
		return nil, &ValidationError{Violations: violations}
	}

	if selected.ExceedsPremiumCap(product.Triggers.PremiumCap) {
		slog.Warn("Selected optimization result exceeds premium cap",
			"product_name", state.Name,
			"premium_cost", selected.PremiumCost,
			"premium_cap", product.Triggers.PremiumCap)
	}

	if err := s.productRepo.CreateProduct(&product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.afterCreate(ctx, &product, "insure-smart")
	return &product, nil
}

// afterCreate handles post-persistence side effects. Term-sheet generation
// and event publishing are best effort; their failure never unwinds a
// committed product.
func (s *ProductService) afterCreate(ctx context.Context, product *models.Product, source string) {
	eventType := event.EventProductCreated
	if product.Status == models.ProductLive {
		eventType = event.EventProductFinalized
	}

	if err := s.publisher.PublishProductEvent(ctx, event.ProductEventModel{
		EventType:   eventType,
		ProductID:   product.ID,
		ProductName: product.Name,
		Status:      string(product.Status),
		Source:      source,
		OccurredAt:  time.Now(),
	}); err != nil {
		slog.Error("Failed to publish product event",
			"product_id", product.ID,
			"event_type", eventType,
			"error", err)
	}

	if _, err := s.termSheetService.GenerateTermSheet(ctx, product); err != nil {
		slog.Error("Failed to generate term sheet",
			"product_id", product.ID,
			"error", err)
	}
}

func (s *ProductService) GetProduct(id uuid.UUID) (*models.Product, error) {
	product, err := s.productRepo.GetProductByID(id)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	products, err := s.productRepo.GetAllProducts()
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (s *ProductService) GetProductsByStatus(status models.ProductStatus) ([]models.Product, error) {
	if !models.IsValidProductStatus(status) {
		return nil, fmt.Errorf("invalid product status: %s", status)
	}
	return s.productRepo.GetProductsByStatus(status)
}

// UpdateProductStatus moves a product through its lifecycle (draft to live,
// live to archived). The transition is published as a lifecycle event; a
// publish failure never unwinds the committed update.
func (s *ProductService) UpdateProductStatus(ctx context.Context, id uuid.UUID, status models.ProductStatus) (*models.Product, error) {
	if !models.IsValidProductStatus(status) {
		return nil, fmt.Errorf("invalid product status: %s", status)
	}

	if err := s.productRepo.UpdateProductStatus(id, status); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetProductByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.publisher.PublishProductEvent(ctx, event.ProductEventModel{
		EventType:   event.EventProductStatusChanged,
		ProductID:   product.ID,
		ProductName: product.Name,
		Status:      string(product.Status),
		Source:      "lifecycle",
		OccurredAt:  time.Now(),
	}); err != nil {
		slog.Error("Failed to publish status change event",
			"product_id", product.ID,
			"error", err)
	}
	return product, nil
}

// DeleteProduct removes a product and its term-sheet artifact. The artifact
// cleanup and the deletion event are best effort.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.GetProductByID(id)
	if err != nil {
		return err
	}

	if err := s.productRepo.DeleteProduct(id); err != nil {
		return err
	}

	if err := s.termSheetService.DeleteTermSheet(ctx, id); err != nil {
		slog.Warn("Failed to delete term sheet",
			"product_id", id,
			"error", err)
	}

	if err := s.publisher.PublishProductEvent(ctx, event.ProductEventModel{
		EventType:   event.EventProductDeleted,
		ProductID:   id,
		ProductName: product.Name,
		Status:      string(product.Status),
		Source:      "lifecycle",
		OccurredAt:  time.Now(),
	}); err != nil {
		slog.Error("Failed to publish deletion event",
			"product_id", id,
			"error", err)
	}
	return nil
}

func (s *ProductService) GetTermSheetURL(ctx context.Context, id uuid.UUID) (string, error) {
	product, err := s.productRepo.GetProductByID(id)
	if err != nil {
		return "", err
	}
	return s.termSheetService.GetTermSheetURL(ctx, product, time.Hour)
}

// ============================================================================
// WIZARD DRAFT STORAGE
// ============================================================================
//
// In-progress wizard sessions live in Redis under a caller-supplied session
// key so the product step survives page reloads until finalization.

type WizardDraft struct {
	State   models.WizardState      `json:"state"`
	Periods []models.CoveragePeriod `json:"periods"`
}

func (s *ProductService) SaveWizardDraft(ctx context.Context, sessionID string, draft WizardDraft) error {
	data, err := utils.SerializeModel(draft)
	if err != nil {
		return fmt.Errorf("failed to serialize wizard draft: %w", err)
	}

	if err := s.productRepo.CreateTempProductDraft(ctx, data, draftKeyPrefix+sessionID, draftExpiration); err != nil {
		return fmt.Errorf("failed to store wizard draft: %w", err)
	}
	return nil
}

func (s *ProductService) GetWizardDraft(ctx context.Context, sessionID string) (*WizardDraft, error) {
	data, err := s.productRepo.GetTempProductDraft(ctx, draftKeyPrefix+sessionID)
	if err != nil {
		return nil, fmt.Errorf("wizard draft not found: %w", err)
	}

	var draft WizardDraft
	if err := utils.DeserializeModel(data, &draft); err != nil {
		return nil, fmt.Errorf("failed to deserialize wizard draft: %w", err)
	}
	return &draft, nil
}

func (s *ProductService) DeleteWizardDraft(ctx context.Context, sessionID string) error {
	return s.productRepo.DeleteTempProductDraft(ctx, draftKeyPrefix+sessionID)
}

// ListWizardDraftSessions returns the session IDs of every wizard draft
// currently held in Redis.
func (s *ProductService) ListWizardDraftSessions(ctx context.Context) ([]string, error) {
	keys, err := s.productRepo.FindDraftKeysByPattern(ctx, draftKeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("failed to list wizard drafts: %w", err)
	}
	return sessionIDsFromKeys(keys), nil
}

// sessionIDsFromKeys strips the draft key prefix so callers see the same
// session IDs they saved under.
func sessionIDsFromKeys(keys []string) []string {
	sessions := make([]string, 0, len(keys))
	for _, key := range keys {
		sessions = append(sessions, strings.TrimPrefix(key, draftKeyPrefix))
	}
	return sessions
}

// ============================================================================
// OPTIMIZATION JOB SNAPSHOTS
// ============================================================================
//
// Terminal job outcomes are cached in Redis so status polls keep working
// after a restart drops the in-memory job registry.

func (s *ProductService) CacheJobOutcome(ctx context.Context, outcome optimizer.Outcome) error {
	data, err := utils.SerializeModel(outcome)
	if err != nil {
		return fmt.Errorf("failed to serialize job outcome: %w", err)
	}

	if err := s.productRepo.SaveJobSnapshot(ctx, jobKeyPrefix+outcome.TaskID, data, jobExpiration); err != nil {
		return fmt.Errorf("failed to cache job outcome: %w", err)
	}
	return nil
}

func (s *ProductService) GetCachedJobOutcome(ctx context.Context, taskID string) (*optimizer.Outcome, error) {
	data, err := s.productRepo.GetJobSnapshot(ctx, jobKeyPrefix+taskID)
	if err != nil {
		return nil, fmt.Errorf("job outcome not found: %w", err)
	}

	var outcome optimizer.Outcome
	if err := utils.DeserializeModel(data, &outcome); err != nil {
		return nil, fmt.Errorf("failed to deserialize job outcome: %w", err)
	}
	return &outcome, nil
}
