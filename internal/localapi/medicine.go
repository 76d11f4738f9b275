package localapi

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/dmitrijs2005/medscan/internal/client/models"
	"github.com/dmitrijs2005/medscan/internal/common"
	"github.com/dmitrijs2005/medscan/internal/validate"
)

//go:embed catalog.json
var catalogJSON []byte

// ocrMatch is the record every non-empty scan resolves to.
const ocrMatch = "Panadol"

// Catalog is a read-only set of medicine records looked up by name,
// ignoring case.
type Catalog struct {
	byName map[string]models.MedicineRecord
}

func NewCatalog(records []models.MedicineRecord) *Catalog {
	c := &Catalog{byName: make(map[string]models.MedicineRecord, len(records))}
	for _, r := range records {
		c.byName[foldName(r.Name)] = r
	}
	return c
}

// ParseCatalog reads a JSON array of records.
func ParseCatalog(data []byte) (*Catalog, error) {
	var records []models.MedicineRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return NewCatalog(records), nil
}

// DefaultCatalog is the catalog bundled with the binary.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(catalogJSON)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Find(name string) (models.MedicineRecord, bool) {
	r, ok := c.byName[foldName(name)]
	return r, ok
}

func (c *Catalog) Len() int {
	return len(c.byName)
}

func foldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

func (b *Backend) LookupMedicine(ctx context.Context, name string) (models.MedicineRecord, error) {
	if strings.TrimSpace(name) == "" {
		return models.MedicineRecord{}, validate.FieldError(validate.FieldName, "Please enter a medicine name.")
	}
	rec, ok := b.catalog.Find(name)
	if !ok {
		return models.MedicineRecord{}, fmt.Errorf("medicine %q: %w", strings.TrimSpace(name), common.ErrNotFound)
	}
	return rec, nil
}

// SubmitOCR stands in for text recognition: any non-empty image is read as
// the Panadol box.
func (b *Backend) SubmitOCR(ctx context.Context, image []byte) (models.MedicineRecord, error) {
	if len(image) == 0 {
		return models.MedicineRecord{}, fmt.Errorf("no text recognised: %w", common.ErrNotFound)
	}
	rec, ok := b.catalog.Find(ocrMatch)
	if !ok {
		return models.MedicineRecord{}, fmt.Errorf("no text recognised: %w", common.ErrNotFound)
	}
	return rec, nil
}

func historyKey(userID string) string {
	return prefixHistory + userID
}

// SaveHistory appends rec to the account's list unless a record with the
// same name is already there.
func (b *Backend) SaveHistory(ctx context.Context, userID string, rec models.MedicineRecord) (bool, error) {
	if userID == "" {
		return false, common.ErrUnauthorized
	}
	if rec.Name == "" {
		return false, validate.FieldError(validate.FieldName, "Please enter a medicine name.")
	}

	history, err := b.History(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, h := range history {
		if h.Name == rec.Name {
			return false, nil
		}
	}

	history = append(history, rec)
	if err := putJSON(ctx, b.store, historyKey(userID), history); err != nil {
		return false, err
	}
	return true, nil
}

// History returns the records saved for userID, oldest first.
func (b *Backend) History(ctx context.Context, userID string) ([]models.MedicineRecord, error) {
	history := []models.MedicineRecord{}
	if _, err := b.getJSON(ctx, historyKey(userID), &history); err != nil {
		return nil, err
	}
	return history, nil
}
