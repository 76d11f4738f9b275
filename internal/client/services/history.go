package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/dmitrijs2005/medscan/internal/client/models"
	"github.com/dmitrijs2005/medscan/internal/common"
	"github.com/dmitrijs2005/medscan/internal/validate"
)

func (m *SessionManager) readHistory(ctx context.Context, email string) ([]models.HistoryEntry, error) {
	raw, err := m.store.Get(ctx, historyKey(email))
	if err != nil {
		return nil, storageErr("read history", err)
	}
	list := []models.HistoryEntry{}
	if raw == nil {
		return list, nil
	}
	if err := json.Unmarshal(raw, &list); err != nil {
		m.logger.Warn(ctx, "cached history unreadable, treating as empty", "error", err)
		return []models.HistoryEntry{}, nil
	}
	if list == nil {
		list = []models.HistoryEntry{}
	}
	return list, nil
}

// SaveHistory records rec for the signed-in user. A medicine whose name is
// already in the list is not sent again and (false, nil) is returned. One the
// backend already held is cached too, but reported as not added.
func (m *SessionManager) SaveHistory(ctx context.Context, rec models.MedicineRecord) (bool, error) {
	user := m.currentUser()
	if user == nil {
		return false, common.ErrSignUpRequired
	}
	if strings.TrimSpace(rec.Name) == "" {
		return false, validate.FieldError(validate.FieldName, "Please enter a medicine name.")
	}

	list, err := m.readHistory(ctx, user.Email)
	if err != nil {
		return false, err
	}
	for _, e := range list {
		if e.Name == rec.Name {
			return false, nil
		}
	}

	remoteAdded, err := m.client.SaveHistory(ctx, user.ID, rec)
	if err != nil {
		return false, err
	}
	if !remoteAdded {
		m.logger.Debug(ctx, "backend already had medicine, caching locally", "medicine", rec.Name)
	}

	list = append(list, models.NewHistoryEntry(rec))
	data, err := json.Marshal(list)
	if err != nil {
		return false, err
	}
	if err := m.store.Set(ctx, historyKey(user.Email), data); err != nil {
		return false, storageErr("save history", err)
	}
	return remoteAdded, nil
}

// LoadHistory returns the cached history, oldest first.
func (m *SessionManager) LoadHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	user := m.currentUser()
	if user == nil {
		return nil, common.ErrSignedOut
	}
	return m.readHistory(ctx, user.Email)
}
