package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/medscan/internal/client/api"
	"github.com/dmitrijs2005/medscan/internal/client/models"
	"github.com/dmitrijs2005/medscan/internal/common"
	"github.com/dmitrijs2005/medscan/internal/logging"
	"github.com/dmitrijs2005/medscan/internal/validate"
)

// MedicineService looks medicines up by name or by a photo of the box.
type MedicineService struct {
	client api.Client
	logger logging.Logger
}

func NewMedicineService(client api.Client, logger logging.Logger) *MedicineService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &MedicineService{client: client, logger: logger.With("component", "medicine")}
}

func (s *MedicineService) Lookup(ctx context.Context, name string) (models.MedicineRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.MedicineRecord{}, validate.FieldError(validate.FieldName, "Please enter a medicine name.")
	}

	rec, err := s.client.LookupMedicine(ctx, name)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Info(ctx, "medicine not found", "name", name)
		}
		return models.MedicineRecord{}, err
	}
	return rec, nil
}

// Scan submits an image for text recognition.
func (s *MedicineService) Scan(ctx context.Context, image []byte) (models.MedicineRecord, error) {
	if len(image) == 0 {
		return models.MedicineRecord{}, validate.FieldError(validate.FieldImage, "Please select an image.")
	}

	rec, err := s.client.SubmitOCR(ctx, image)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Info(ctx, "no medicine recognised", "bytes", len(image))
		}
		return models.MedicineRecord{}, err
	}
	return rec, nil
}
