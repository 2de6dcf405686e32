package email

import (
	"context"
	"fmt"
	"strings"
)

// Sender delivers account notifications. Implementations are fire-and-forget
// from the caller's point of view: auth flows log failures and move on.
type Sender interface {
	SendWelcome(ctx context.Context, to, name string) error
}

// Feature bullets shown in the welcome mail.
var welcomeFeatures = []string{
	"Manage your profile and preferences",
	"Invite team members and set roles",
	"Access dashboards and reports",
	"Upload files and collaborate securely",
}

func welcomeSubject(product string) string {
	return "Welcome to " + product
}

func welcomeBody(product, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "Welcome to %s! We're excited to have you on board.\n\n", product)
	b.WriteString("Here are some things you can do right away:\n")
	for _, f := range welcomeFeatures {
		fmt.Fprintf(&b, " - %s\n", f)
	}
	fmt.Fprintf(&b, "\nIf you have any questions, just reply to this email.\n\nCheers,\nThe %s Team", product)
	return b.String()
}
