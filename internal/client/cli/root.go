package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/medscan/internal/client/models"
)

// OnboardingMessages are shown once, on the first start without a session.
var OnboardingMessages = []string{
	"Search medicine by typing its name",
	"Scan medicine text and get details",
	"Save medicine details and also see medicine history",
}

func (a *App) getStatus() string {
	s := ""
	if st := a.session.State(); st.SignedIn && st.User != nil {
		s = st.User.Email + " "
	}
	if mode := a.getMode(); mode != "" {
		s = s + string(mode)
	}
	if s != "" {
		s = fmt.Sprintf(" (%s)", s)
	}
	return s
}

// start restores the session and shows onboarding when due.
func (a *App) start(ctx context.Context) {
	st := a.session.Initialize(ctx)

	if st.Route == models.RouteOnboarding {
		for i, msg := range OnboardingMessages {
			printlnFn(fmt.Sprintf("  %d. %s", i+1, msg))
		}
		if err := a.session.MarkOnboardingSeen(ctx); err != nil {
			a.logger.Warn(ctx, "failed to remember onboarding", "error", err)
		}
		printlnFn("Type 'signup' to create an account or 'login' if you already have one.")
		return
	}

	if st.SignedIn && st.User != nil {
		printlnFn(fmt.Sprintf("Welcome back, %s.", st.User.FullName()))
	}
}

// Root runs the interactive session and blocks until the user exits.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to MedScan CLI (type 'help' for commands)")

	a.start(ctx)

	runREPL(ctx, a, a.getStatus, a.reader)
}
