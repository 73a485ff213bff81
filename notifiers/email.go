package notifiers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"sort"

	"github.com/kova98/userlens.api/data"
	"github.com/kova98/userlens.api/models"
	"github.com/kova98/userlens.api/text"
)

const (
	maxDigestItems  = 20
	maxDigestDetail = 200
)

//go:embed templates/alert_digest.html
var emailTemplates embed.FS

var alertTemplates = template.Must(template.New("emails").ParseFS(emailTemplates, "templates/*.html"))

type Mailer struct {
	smtpHost string
	smtpPort string
	from     string
	password string
}

func NewMailer(smtpHost, smtpPort, from, password string) *Mailer {
	return &Mailer{
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		from:     from,
		password: password,
	}
}

// AlertDigestEmail summarises failed analyses for an operator. events must not be empty.
func (h *Mailer) AlertDigestEmail(email string, events []data.AnalysisEvent) (models.Email, error) {
	if len(events) == 0 {
		return models.Email{}, fmt.Errorf("no events to report")
	}

	type digestItem struct {
		Time     string
		Outcome  string
		Username string
		Detail   string
	}
	type outcomeCount struct {
		Outcome string
		Count   int
	}

	counts := make(map[string]int)
	items := make([]digestItem, 0, min(len(events), maxDigestItems))
	for _, e := range events {
		counts[e.Outcome]++
		if len(items) >= maxDigestItems {
			continue
		}
		items = append(items, digestItem{
			Time:     e.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			Outcome:  e.Outcome,
			Username: e.Username,
			Detail:   text.Truncate(e.Detail, maxDigestDetail),
		})
	}

	byOutcome := make([]outcomeCount, 0, len(counts))
	for outcome, n := range counts {
		byOutcome = append(byOutcome, outcomeCount{outcome, n})
	}
	sort.Slice(byOutcome, func(i, j int) bool { return byOutcome[i].Outcome < byOutcome[j].Outcome })

	var buf bytes.Buffer
	tmplData := struct {
		Items     []digestItem
		Counts    []outcomeCount
		Total     int
		Remaining int
	}{
		Items:     items,
		Counts:    byOutcome,
		Total:     len(events),
		Remaining: len(events) - len(items),
	}
	if err := alertTemplates.ExecuteTemplate(&buf, "alert_digest.html", tmplData); err != nil {
		return models.Email{}, fmt.Errorf("render alert digest template: %w", err)
	}

	return models.Email{
		To:      email,
		Subject: fmt.Sprintf("userlens: %d failed analyses", len(events)),
		Body:    buf.String(),
	}, nil
}

func (h *Mailer) Send(mail models.Email) error {
	auth := smtp.PlainAuth("", h.from, h.password, h.smtpHost)
	addr := fmt.Sprintf("%s:%s", h.smtpHost, h.smtpPort)
	err := smtp.SendMail(addr, auth, h.from, []string{mail.To}, h.message(mail))
	if err != nil {
		slog.Error("Failed to send email", "error", err)
		return err
	}

	slog.Info("email sent", "recipient", mail.To, "subject", mail.Subject)
	return nil
}

func (h *Mailer) message(mail models.Email) []byte {
	return []byte(fmt.Sprintf(`From: userlens <%s>
To: %s
Subject: %s
MIME-Version: 1.0
Content-Type: text/html; charset=UTF-8

%s`, h.from, mail.To, mail.Subject, mail.Body))
}
