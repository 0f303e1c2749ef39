package notification

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/enesxunal/markaworld-g-sub000/internal/domain"
)

type messageTemplate struct {
	subject *template.Template
	body    *template.Template
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string { return t.Format("02.01.2006") },
}

var templates = map[domain.EventKind]messageTemplate{
	domain.EventPlanCreated: mustTemplate(
		"Your installment plan is active",
		`Dear {{.CustomerName}},

Your purchase has been converted into {{.InstallmentCount}} installments totalling {{.Total.StringFixed 2}}.
Your first installment of {{.Amount.StringFixed 2}} is due on {{date .DueDate}}.
`),
	domain.EventApprovalRequested: mustTemplate(
		"Please confirm your installment plan",
		`Dear {{.CustomerName}},

Please confirm your plan of {{.InstallmentCount}} installments totalling {{.Total.StringFixed 2}}
with the following approval code:

{{.ApprovalToken}}
`),
	domain.EventPaymentReceived: mustTemplate(
		"Payment received",
		`Dear {{.CustomerName}},

We received your payment of {{.Amount.StringFixed 2}} for installment {{.InstallmentNumber}} on {{date .PaidDate}}.
Remaining unpaid amount on this plan: {{.UnpaidTotal.StringFixed 2}}.
`),
	domain.EventOverdue: mustTemplate(
		"Installment overdue",
		`Dear {{.CustomerName}},

Installment {{.InstallmentNumber}} of {{.Amount.StringFixed 2}} was due on {{date .DueDate}} and is now overdue.
Late payment interest will be charged. Please pay as soon as possible.
`),
	domain.EventReminder: mustTemplate(
		"Upcoming installment",
		`Dear {{.CustomerName}},

This is a reminder that installment {{.InstallmentNumber}} of {{.Amount.StringFixed 2}} is due on {{date .DueDate}}.
`),
}

func mustTemplate(subject, body string) messageTemplate {
	return messageTemplate{
		subject: template.Must(template.New("subject").Funcs(funcs).Parse(subject)),
		body:    template.Must(template.New("body").Funcs(funcs).Parse(body)),
	}
}

// Render produces the subject and body of the message for an event.
func Render(event domain.Event) (subject, body string, err error) {
	tmpl, ok := templates[event.Kind]
	if !ok {
		return "", "", fmt.Errorf("no template for event kind %q", event.Kind)
	}

	var buf bytes.Buffer
	if err := tmpl.subject.Execute(&buf, event); err != nil {
		return "", "", fmt.Errorf("render subject: %w", err)
	}
	subject = buf.String()

	buf.Reset()
	if err := tmpl.body.Execute(&buf, event); err != nil {
		return "", "", fmt.Errorf("render body: %w", err)
	}
	return subject, buf.String(), nil
}
