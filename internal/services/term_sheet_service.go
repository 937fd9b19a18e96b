package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"product-service/internal/database/minio"
	"product-service/internal/models"
)

// TermSheetService renders a finalized product into a term-sheet artifact
// and stores it in object storage. Artifact generation never blocks product
// creation; callers log failures and move on.
type TermSheetService struct {
	minioClient *minio.MinioClient
}

func NewTermSheetService(minioClient *minio.MinioClient) *TermSheetService {
	return &TermSheetService{minioClient: minioClient}
}

// termSheetDocument is the stored artifact shape
type termSheetDocument struct {
	ProductID         string            `json:"product_id"`
	ProductName       string            `json:"product_name"`
	Crop              string            `json:"crop,omitempty"`
	Region            models.Region     `json:"region"`
	Status            string            `json:"status"`
	CoverageStartDate string            `json:"coverage_start_date"`
	CoverageEndDate   string            `json:"coverage_end_date"`
	SumInsured        float64           `json:"sum_insured"`
	PremiumCap        float64           `json:"premium_cap"`
	PremiumRate       float64           `json:"premium_rate"`
	Periods           []termSheetPeriod `json:"periods"`
	GeneratedAt       time.Time         `json:"generated_at"`
}

type termSheetPeriod struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Peril     string `json:"peril"`
}

// GenerateTermSheet builds the term-sheet JSON for a product and uploads it
// to the term-sheets bucket. Returns the stored object name.
func (s *TermSheetService) GenerateTermSheet(ctx context.Context, product *models.Product) (string, error) {
	if product == nil {
		return "", fmt.Errorf("product is required")
	}

	dataType := models.DataTypePrecipitation
	if len(product.DataType) > 0 {
		dataType = product.DataType[0]
	}

	doc := termSheetDocument{
		ProductID:         product.ID.String(),
		ProductName:       product.Name,
		Region:            product.Region,
		Status:            string(product.Status),
		CoverageStartDate: product.CoverageStartDate,
		CoverageEndDate:   product.CoverageEndDate,
		SumInsured:        product.Triggers.SumInsured,
		PremiumCap:        product.Triggers.PremiumCap,
		PremiumRate:       product.Terms.PremiumRate,
		GeneratedAt:       time.Now(),
	}
	if product.Crop != nil {
		doc.Crop = *product.Crop
	}
	for _, period := range product.Triggers.CoveragePeriods {
		doc.Periods = append(doc.Periods, termSheetPeriod{
			StartDate: period.StartDate,
			EndDate:   period.EndDate,
			Peril:     period.PerilType.HumanLabel(dataType),
		})
	}

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal term sheet: %w", err)
	}

	objectName := fmt.Sprintf("term-sheet-%s.json", product.ID)
	if err := s.minioClient.UploadBytes(ctx, minio.Storage.TermSheets, objectName, body, "application/json"); err != nil {
		return "", fmt.Errorf("failed to upload term sheet: %w", err)
	}

	slog.Info("Term sheet generated",
		"product_id", product.ID,
		"object_name", objectName)
	return objectName, nil
}

// DeleteTermSheet removes a product's term-sheet artifact. Deleting a
// nonexistent object is not an error in MinIO, so this is safe for products
// that never had one generated.
func (s *TermSheetService) DeleteTermSheet(ctx context.Context, productID uuid.UUID) error {
	objectName := fmt.Sprintf("term-sheet-%s.json", productID)
	return s.minioClient.DeleteFile(ctx, minio.Storage.TermSheets, objectName)
}

// GetTermSheetURL returns a presigned download URL for a product's term sheet.
func (s *TermSheetService) GetTermSheetURL(ctx context.Context, product *models.Product, expiry time.Duration) (string, error) {
	objectName := fmt.Sprintf("term-sheet-%s.json", product.ID)

	exists, err := s.minioClient.FileExists(ctx, minio.Storage.TermSheets, objectName)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("term sheet not found")
	}

	return s.minioClient.GetPresignedURL(ctx, minio.Storage.TermSheets, objectName, expiry)
}
