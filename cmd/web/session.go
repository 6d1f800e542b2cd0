package main

import "context"

const lawyerNameSessionKey = "lawyerName"

// lawyerName returns the display name of the lawyer attached to the session.
// Sessions without a name fall back to a generic actor label so audit
// entries always carry one.
func (app *application) lawyerName(ctx context.Context) string {
	if name := app.sessionManager.GetString(ctx, lawyerNameSessionKey); name != "" {
		return name
	}
	return "Lawyer"
}
