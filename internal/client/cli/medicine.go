package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/medscan/internal/client/models"
	"github.com/dmitrijs2005/medscan/internal/common"
	"github.com/dmitrijs2005/medscan/internal/filex"
)

// Search looks name up. Without an argument the name is prompted for.
func (a *App) Search(ctx context.Context, name string) error {
	if name == "" {
		var err error
		if name, err = getSimpleText(a.reader, "Medicine name", a.out); err != nil {
			return err
		}
	}

	rec, err := a.medicine.Lookup(ctx, name)
	if err != nil {
		return err
	}
	a.showRecord(rec)
	return nil
}

// Scan reads the image at path and submits it for recognition.
func (a *App) Scan(ctx context.Context, path string) error {
	image, err := filex.ReadImage(path)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrValidation, err)
	}

	rec, err := a.medicine.Scan(ctx, image)
	if err != nil {
		return err
	}
	a.showRecord(rec)
	return nil
}

func (a *App) showRecord(rec models.MedicineRecord) {
	a.setLastRecord(rec)
	printlnFn(formatRecord(rec))
	if a.isLoggedIn() {
		printlnFn("Type 'save' to add it to your history.")
	}
}

func formatRecord(rec models.MedicineRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", rec.Name)
	rows := []struct{ label, value string }{
		{"Company", rec.Company},
		{"Formula", rec.Formula},
		{"Instructions", rec.Instructions},
		{"Side effects", rec.SideEffects},
		{"Manufacturing", rec.ManufacturingDetails},
	}
	for _, r := range rows {
		if r.value != "" {
			fmt.Fprintf(&b, "  %-14s %s\n", r.label+":", r.value)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Save adds the last shown medicine to the history.
func (a *App) Save(ctx context.Context) error {
	rec := a.lastRecord()
	if rec == nil {
		printlnFn("Nothing to save yet. Use 'search' or 'scan' first.")
		return nil
	}

	added, err := a.session.SaveHistory(ctx, *rec)
	if err != nil {
		return err
	}
	if added {
		printlnFn(fmt.Sprintf("%s saved to history.", rec.Name))
	} else {
		printlnFn(fmt.Sprintf("%s is already in your history.", rec.Name))
	}
	return nil
}

func (a *App) History(ctx context.Context) error {
	list, err := a.session.LoadHistory(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		printlnFn("No saved medicines yet.")
		return nil
	}
	for i, e := range list {
		printlnFn(fmt.Sprintf("%d. %s  %s", i+1, e.Name, e.Details))
	}
	return nil
}

// Profile shows the signed-in profile, or edits it when edit is set. Empty
// answers keep the current values.
func (a *App) Profile(ctx context.Context, edit bool) error {
	st := a.session.State()
	if !st.SignedIn || st.User == nil {
		return common.ErrSignUpRequired
	}
	u := *st.User

	if edit {
		var err error
		if u.FirstName, err = getTextWithDefault(a.reader, "First name", u.FirstName, a.out); err != nil {
			return err
		}
		if u.LastName, err = getTextWithDefault(a.reader, "Last name", u.LastName, a.out); err != nil {
			return err
		}
		if u.Email, err = getTextWithDefault(a.reader, "Email", u.Email, a.out); err != nil {
			return err
		}
		if u, err = a.session.UpdateProfile(ctx, u.FirstName, u.LastName, u.Email); err != nil {
			return err
		}
		printlnFn("Profile updated.")
	}

	printlnFn(fmt.Sprintf("Name:  %s\nEmail: %s", u.FullName(), u.Email))
	return nil
}

// Status prints the session, connectivity and the cache keys on disk.
func (a *App) Status(ctx context.Context) error {
	st := a.session.State()
	if st.SignedIn && st.User != nil {
		printlnFn(fmt.Sprintf("Signed in as %s <%s>", st.User.FullName(), st.User.Email))
	} else {
		printlnFn("Signed out")
	}
	if mode := a.getMode(); mode != "" {
		printlnFn(fmt.Sprintf("Backend: %s (%s)", a.config.Backend, mode))
	}

	keys, err := a.session.OfflineKeys(ctx)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Cached keys: %s", strings.Join(keys, ", ")))
	return nil
}
