package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"product-service/internal/mapper"
	"product-service/internal/models"
	"product-service/internal/optimizer"
	"product-service/internal/services"
	"product-service/utils"
)

type ProductHandler struct {
	productService   *services.ProductService
	validator        *services.ProductValidationService
	optimizerManager *optimizer.Manager
}

func NewProductHandler(productService *services.ProductService, validator *services.ProductValidationService, optimizerManager *optimizer.Manager) *ProductHandler {
	return &ProductHandler{
		productService:   productService,
		validator:        validator,
		optimizerManager: optimizerManager,
	}
}

func (ph *ProductHandler) Register(app *fiber.App) {
	gr := app.Group("product/api/v1")

	// Product authoring, retrieval and lifecycle
	productGroup := gr.Group("/products")
	productGroup.Post("/manual", ph.CreateFromManualBuilder)
	productGroup.Post("/insure-smart", ph.CreateFromWizard)
	productGroup.Post("/validate", ph.ValidateProduct)
	productGroup.Get("/", ph.GetAllProducts)
	productGroup.Get("/:id", ph.GetProduct)
	productGroup.Get("/:id/term-sheet", ph.GetTermSheetURL)
	productGroup.Patch("/:id/status", ph.UpdateProductStatus)
	productGroup.Delete("/:id", ph.DeleteProduct)

	// Asynchronous optimization jobs
	optimizeGroup := gr.Group("/optimize")
	optimizeGroup.Post("/", ph.StartOptimization)
	optimizeGroup.Get("/:taskID", ph.GetOptimizationJob)
	optimizeGroup.Delete("/:taskID", ph.CancelOptimization)

	// Wizard session drafts
	draftGroup := gr.Group("/drafts")
	draftGroup.Get("/", ph.ListWizardDrafts)
	draftGroup.Put("/:sessionID", ph.SaveWizardDraft)
	draftGroup.Get("/:sessionID", ph.GetWizardDraft)
	draftGroup.Delete("/:sessionID", ph.DeleteWizardDraft)
}

// ============================================================================
// PRODUCT CREATION
// ============================================================================

// ManualBuilderRequest couples the form state with the premium calculation
// it was quoted against.
type ManualBuilderRequest struct {
	Form    models.ManualBuilderForm `json:"form"`
	Premium models.PremiumResponse   `json:"premium"`
}

func (ph *ProductHandler) CreateFromManualBuilder(c fiber.Ctx) error {
	var req ManualBuilderRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	product, err := ph.productService.CreateFromManualBuilder(c.Context(), req.Form, req.Premium)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(http.StatusUnprocessableEntity).JSON(
				utils.CreateErrorResponseWithDetails("VALIDATION_FAILED", "Product validation failed", validationErr.Violations))
		}
		slog.Error("manual builder product creation failed", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(utils.CreateErrorResponse("CREATION_FAILED", err.Error()))
	}

	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(product))
}

// WizardFinalizeRequest is the wizard's finalization payload: the product
// step, the coverage periods, and the optimization candidate the user chose.
type WizardFinalizeRequest struct {
	Product        models.WizardState         `json:"product"`
	Periods        []models.CoveragePeriod    `json:"periods"`
	SelectedResult *models.OptimizationResult `json:"selectedResult"`
	Status         models.ProductStatus       `json:"status"`
}

func (ph *ProductHandler) CreateFromWizard(c fiber.Ctx) error {
	var req WizardFinalizeRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	if req.Status == "" {
		req.Status = models.ProductDraft
	}

	product, err := ph.productService.CreateFromWizard(c.Context(), req.Product, req.Periods, req.SelectedResult, req.Status)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(http.StatusUnprocessableEntity).JSON(
				utils.CreateErrorResponseWithDetails("VALIDATION_FAILED", "Product validation failed", validationErr.Violations))
		}
		slog.Error("wizard product creation failed", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("CREATION_FAILED", err.Error()))
	}

	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(product))
}

// ValidateProduct runs the completeness gate without persisting anything,
// returning the full violation list.
func (ph *ProductHandler) ValidateProduct(c fiber.Ctx) error {
	var product models.Product
	if err := c.Bind().Body(&product); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	violations := ph.validator.ValidateProduct(&product)
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]any{
		"valid":      len(violations) == 0,
		"violations": violations,
	}))
}

// ============================================================================
// PRODUCT RETRIEVAL
// ============================================================================

func (ph *ProductHandler) GetAllProducts(c fiber.Ctx) error {
	if status := c.Query("status"); status != "" {
		products, err := ph.productService.GetProductsByStatus(models.ProductStatus(status))
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("RETRIEVAL_FAILED", err.Error()))
		}
		return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(products))
	}

	products, err := ph.productService.GetAllProducts()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(utils.CreateErrorResponse("RETRIEVAL_FAILED", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(products))
}

func (ph *ProductHandler) GetProduct(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_PARAMETER", "Invalid product ID"))
	}

	product, err := ph.productService.GetProduct(id)
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(utils.CreateErrorResponse("NOT_FOUND", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(product))
}

func (ph *ProductHandler) GetTermSheetURL(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_PARAMETER", "Invalid product ID"))
	}

	url, err := ph.productService.GetTermSheetURL(c.Context(), id)
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(utils.CreateErrorResponse("NOT_FOUND", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]any{
		"url": url,
	}))
}

// ============================================================================
// PRODUCT LIFECYCLE
// ============================================================================

// StatusUpdateRequest carries the target lifecycle status.
type StatusUpdateRequest struct {
	Status models.ProductStatus `json:"status"`
}

func (ph *ProductHandler) UpdateProductStatus(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_PARAMETER", "Invalid product ID"))
	}

	var req StatusUpdateRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	product, err := ph.productService.UpdateProductStatus(c.Context(), id, req.Status)
	if err != nil {
		if !models.IsValidProductStatus(req.Status) {
			return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_STATUS", err.Error()))
		}
		return c.Status(http.StatusNotFound).JSON(utils.CreateErrorResponse("NOT_FOUND", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(product))
}

func (ph *ProductHandler) DeleteProduct(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_PARAMETER", "Invalid product ID"))
	}

	if err := ph.productService.DeleteProduct(c.Context(), id); err != nil {
		return c.Status(http.StatusNotFound).JSON(utils.CreateErrorResponse("NOT_FOUND", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]any{
		"product_id": id,
		"deleted":    true,
	}))
}

// ============================================================================
// OPTIMIZATION JOBS
// ============================================================================

// OptimizeStartRequest is the wizard's optimization trigger payload.
type OptimizeStartRequest struct {
	Product models.WizardState      `json:"product"`
	Periods []models.CoveragePeriod `json:"periods"`
}

func (ph *ProductHandler) StartOptimization(c fiber.Ctx) error {
	var req OptimizeStartRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	if len(req.Periods) == 0 {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "At least one coverage period is required"))
	}

	request := mapper.BuildOptimizeRequest(req.Product, req.Periods)
	job := ph.optimizerManager.Submit(c.Context(), request)

	snapshot := job.Snapshot()
	if snapshot.State == optimizer.JobFailed {
		return c.Status(http.StatusBadGateway).JSON(utils.CreateErrorResponse("SUBMISSION_FAILED", snapshot.Message))
	}

	return c.Status(http.StatusAccepted).JSON(utils.CreateSuccessResponse(map[string]any{
		"task_id": job.TaskID(),
		"state":   snapshot.State,
	}))
}

func (ph *ProductHandler) GetOptimizationJob(c fiber.Ctx) error {
	taskID := c.Params("taskID")

	var snapshot optimizer.Outcome
	if job, ok := ph.optimizerManager.Get(taskID); ok {
		snapshot = job.Snapshot()
		// Keep terminal outcomes answerable across restarts.
		if snapshot.State.Terminal() {
			if err := ph.productService.CacheJobOutcome(c.Context(), snapshot); err != nil {
				slog.Error("failed to cache job outcome", "task_id", taskID, "error", err)
			}
		}
	} else {
		cached, err := ph.productService.GetCachedJobOutcome(c.Context(), taskID)
		if err != nil {
			return c.Status(http.StatusNotFound).JSON(utils.CreateErrorResponse("NOT_FOUND", "Optimization job not found"))
		}
		snapshot = *cached
	}

	response := map[string]any{"job": snapshot}
	if premiumCap := utils.ParseFloatOrZero(c.Query("premium_cap")); premiumCap > 0 {
		overBudget := []string{}
		for i := range snapshot.Results {
			if snapshot.Results[i].ExceedsPremiumCap(premiumCap) {
				overBudget = append(overBudget, snapshot.Results[i].ID)
			}
		}
		response["budget_warnings"] = overBudget
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(response))
}

func (ph *ProductHandler) CancelOptimization(c fiber.Ctx) error {
	taskID := c.Params("taskID")

	if !ph.optimizerManager.Cancel(taskID) {
		return c.Status(http.StatusNotFound).JSON(utils.CreateErrorResponse("NOT_FOUND", "Optimization job not found"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]any{
		"task_id":   taskID,
		"cancelled": true,
	}))
}

// ============================================================================
// WIZARD DRAFTS
// ============================================================================

func (ph *ProductHandler) ListWizardDrafts(c fiber.Ctx) error {
	sessions, err := ph.productService.ListWizardDraftSessions(c.Context())
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(utils.CreateErrorResponse("RETRIEVAL_FAILED", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]any{
		"sessions": sessions,
	}))
}

func (ph *ProductHandler) SaveWizardDraft(c fiber.Ctx) error {
	sessionID := c.Params("sessionID")
	if sessionID == "" {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_PARAMETER", "Session ID is required"))
	}

	var draft services.WizardDraft
	if err := c.Bind().Body(&draft); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	if err := ph.productService.SaveWizardDraft(c.Context(), sessionID, draft); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(utils.CreateErrorResponse("STORAGE_FAILED", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]any{
		"session_id": sessionID,
	}))
}

func (ph *ProductHandler) GetWizardDraft(c fiber.Ctx) error {
	sessionID := c.Params("sessionID")

	draft, err := ph.productService.GetWizardDraft(c.Context(), sessionID)
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(utils.CreateErrorResponse("NOT_FOUND", "Wizard draft not found"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(draft))
}

func (ph *ProductHandler) DeleteWizardDraft(c fiber.Ctx) error {
	sessionID := c.Params("sessionID")

	if err := ph.productService.DeleteWizardDraft(c.Context(), sessionID); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(utils.CreateErrorResponse("DELETION_FAILED", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]any{
		"session_id": sessionID,
	}))
}
