package notify

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"merry/internal/domain/event"
)

func kes(d decimal.Decimal) string { return "KES " + d.StringFixed(2) }

func day(t time.Time) string { return t.Format("Mon 2 Jan 2006") }

// render returns the in-app notification for e, or false when e produces none.
func render(e event.Event) (Message, bool) {
	m := Message{Type: string(e.Type), Data: map[string]any{}}
	if e.CycleID != "" {
		m.Data["cycle_id"] = e.CycleID
	}
	if e.Period > 0 {
		m.Data["period"] = e.Period
	}
	if e.RefID != "" {
		m.Data["ref_id"] = e.RefID
	}
	if !e.Amount.IsZero() {
		m.Data["amount"] = e.Amount.StringFixed(2)
	}

	switch e.Type {
	case event.CycleStarted:
		m.Title, m.Body = "Cycle started", "Your savings cycle has started. Period 1 contributions are now open."
	case event.CyclePeriodAdvanced:
		m.Title, m.Body = fmt.Sprintf("Period %d is open", e.Period), fmt.Sprintf("Contributions for period %d are now due.", e.Period)
	case event.CycleEnded:
		m.Title, m.Body = "Cycle completed", "The cycle has completed. Thank you for contributing."
	case event.CyclePaused:
		m.Title, m.Body = "Cycle paused", "An admin has paused the cycle."
	case event.CycleResumed:
		m.Title, m.Body = "Cycle resumed", "The cycle is active again."
	case event.CycleCancelled:
		m.Title, m.Body = "Cycle cancelled", "An admin has cancelled the cycle."
	case event.ContributionsDue:
		m.Title, m.Body = "Contribution due", fmt.Sprintf("Your contribution of %s for period %d is due.", kes(e.Amount), e.Period)
	case event.ContributionConfirmed:
		m.Title, m.Body = "Contribution confirmed", fmt.Sprintf("Your payment of %s has been confirmed.", kes(e.Amount))
	case event.PayoutScheduled:
		m.Title, m.Body = "Your turn is coming", fmt.Sprintf("You will receive the payout of %s for period %d.", kes(e.Amount), e.Period)
	case event.PayoutPaid, event.PayoutConfirmed:
		m.Title, m.Body = "Payout sent", fmt.Sprintf("Your payout of %s has been sent.", kes(e.Amount))
	case event.LoanRequested:
		m.Title, m.Body = "Loan requested", fmt.Sprintf("Your loan request for %s is waiting for your guarantors.", kes(e.Amount))
	case event.GuaranteeRequested:
		m.Title, m.Body = "Guarantee requested", fmt.Sprintf("A member has asked you to guarantee a loan of %s.", kes(e.Amount))
	case event.LoanApproved:
		m.Title, m.Body = "Loan approved", fmt.Sprintf("Your loan of %s has been approved.", kes(e.Amount))
	case event.LoanDisbursed:
		m.Title, m.Body = "Loan disbursed", fmt.Sprintf("%s has been credited to your savings wallet.", kes(e.Amount))
	case event.LoanRepaid:
		m.Title, m.Body = "Loan repaid", "Your loan is fully repaid."
	case event.LoanCancelled:
		m.Title, m.Body = "Loan cancelled", "Your loan request was cancelled."
	default:
		return Message{}, false
	}
	return m, true
}

// reminderText is the WhatsApp message for one due contribution.
func reminderText(name string, d event.Due) string {
	if name == "" {
		name = "member"
	}
	if d.Late {
		return fmt.Sprintf("Habari %s, your chama contribution of %s was due on %s and is still outstanding. Please pay as soon as you can.",
			name, kes(d.Amount), day(d.DueDate))
	}
	return fmt.Sprintf("Habari %s, your chama contribution of %s is due on %s.", name, kes(d.Amount), day(d.DueDate))
}
