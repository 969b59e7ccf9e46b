package pipelineimpl

import (
	"fmt"
	"strings"

	"github.com/w3wave/social-digest/internal/domain"
	"github.com/w3wave/social-digest/pkg/formatter"
)

func (p *PipelineImpl) notify(result domain.RunResult) {
	if p.Telegram == nil {
		return
	}
	p.Telegram.SendMessageToUser(FormatResult(result))
}

// FormatResult renders a run outcome for the operator chat.
func FormatResult(r domain.RunResult) string {
	icon := "✅"
	switch r.Status {
	case domain.RunEmpty:
		icon = "ℹ️"
	case domain.RunError:
		icon = "❌"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s Digest %s: %s\n", icon, r.Date, r.Status)
	if r.Message != "" {
		b.WriteString(formatter.Truncate(formatter.SingleLine(r.Message), 500))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Accounts: %d (%d failed)\n", r.Ingest.Accounts, r.Ingest.FailedAccounts)
	fmt.Fprintf(&b, "Fetched: %s, new: %s, duplicates: %s, rejected: %s\n",
		formatter.FormatNumber(r.Ingest.Fetched),
		formatter.FormatNumber(r.Ingest.Inserted),
		formatter.FormatNumber(r.Ingest.Duplicates),
		formatter.FormatNumber(r.Ingest.Rejected),
	)
	fmt.Fprintf(&b, "Selected: %d", r.Selected)
	return b.String()
}
