package notify

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"strings"
	"time"

	"github.com/sunghyun2815/music-news-automation/internal/news"
)

// EmailChannel sends the digest as an HTML email over SMTP.
type EmailChannel struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
	now      func() time.Time
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailChannel(host string, port int, username, password, from string, to []string) *EmailChannel {
	return &EmailChannel{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
		To:       to,
		now:      time.Now,
		send:     smtp.SendMail,
	}
}

func (e *EmailChannel) Name() string { return "email" }

func (e *EmailChannel) Send(ctx context.Context, articles []news.SummarizedArticle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subject := digestTitle(e.now())
	body := e.formatHTML(articles)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", e.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(e.To, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", e.Host, e.Port)
	auth := smtp.PlainAuth("", e.Username, e.Password, e.Host)
	if err := e.send(addr, auth, e.From, e.To, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (e *EmailChannel) formatHTML(articles []news.SummarizedArticle) string {
	var b strings.Builder
	b.WriteString("<html><body style=\"font-family: Arial, sans-serif; max-width: 720px; margin: 0 auto;\">\n")
	fmt.Fprintf(&b, "<h1 style=\"color: #1a1a2e;\">%s</h1>\n", html.EscapeString(digestTitle(e.now())))
	fmt.Fprintf(&b, "<p>%d stories today</p>\n", len(articles))

	grouped := groupByCategory(articles)
	for _, cat := range news.Categories {
		group := grouped[cat]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&b, "<h2 style=\"border-bottom: 2px solid #e94560;\">%s %s</h2>\n", categoryEmojis[cat], cat)
		for _, a := range group {
			b.WriteString("<div style=\"margin-bottom: 16px;\">\n")
			fmt.Fprintf(&b, "<a href=\"%s\" style=\"font-size: 16px; font-weight: bold; color: #16213e;\">%s</a><br>\n",
				html.EscapeString(a.Link), html.EscapeString(a.Title))
			fmt.Fprintf(&b, "<span>%s</span><br>\n", html.EscapeString(a.Summary))
			fmt.Fprintf(&b, "<small style=\"color: #666;\">%s · %s · %s</small>\n",
				html.EscapeString(a.Source),
				a.Published.Format("Jan 2, 2006"),
				html.EscapeString(formatTags(a.Tags)))
			b.WriteString("</div>\n")
		}
	}
	b.WriteString("</body></html>\n")
	return b.String()
}
