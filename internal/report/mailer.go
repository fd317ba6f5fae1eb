package report

import (
	"bytes"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wonny/vigil/pkg/config"
)

// Mailer delivers the daily dashboard over SMTP with the markdown file
// attached and the summary as the plain-text body.
type Mailer struct {
	cfg config.SMTPConfig
	log zerolog.Logger
}

// NewMailer creates a mailer from the SMTP section of the app config.
func NewMailer(cfg config.SMTPConfig, log zerolog.Logger) *Mailer {
	return &Mailer{
		cfg: cfg,
		log: log.With().Str("component", "report.mailer").Logger(),
	}
}

// SendDashboard reads the rendered dashboard file and sends it to the
// configured recipients.
func (m *Mailer) SendDashboard(dashboardPath, summaryText string) error {
	if m.cfg.Server == "" {
		return fmt.Errorf("smtp server not configured")
	}

	dashboard, err := os.ReadFile(dashboardPath)
	if err != nil {
		return fmt.Errorf("read dashboard: %w", err)
	}

	body := strings.Join([]string{
		"Daily NASDAQ scanner report is ready.",
		"",
		"Summary:",
		strings.TrimSpace(summaryText),
	}, "\n")

	msg, err := buildMessage(m.cfg, body, filepath.Base(dashboardPath), dashboard)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%s", m.cfg.Server, m.cfg.Port)
	recipients := splitRecipients(m.cfg.To)

	if err := m.send(addr, recipients, msg); err != nil {
		return fmt.Errorf("send dashboard email: %w", err)
	}

	m.log.Info().
		Str("smtp", addr).
		Int("recipients", len(recipients)).
		Str("attachment", filepath.Base(dashboardPath)).
		Msg("dashboard email sent")
	return nil
}

func (m *Mailer) send(addr string, recipients []string, msg []byte) error {
	conn, err := net.DialTimeout("tcp", addr, m.cfg.Timeout)
	if err != nil {
		return err
	}

	client, err := smtp.NewClient(conn, m.cfg.Server)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if m.cfg.UseTLS {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Server}); err != nil {
			return err
		}
	}

	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Server)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return err
	}
	for _, recipient := range recipients {
		if err := client.Rcpt(recipient); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func buildMessage(cfg config.SMTPConfig, body, attachmentName string, attachment []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", cfg.From)
	fmt.Fprintf(&buf, "To: %s\r\n", cfg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", cfg.Subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n", writer.Boundary())
	buf.WriteString("\r\n")

	textPart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, fmt.Errorf("build email body: %w", err)
	}
	if _, err := textPart.Write([]byte(body)); err != nil {
		return nil, fmt.Errorf("build email body: %w", err)
	}

	filePart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/markdown; charset=utf-8"},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", attachmentName)},
	})
	if err != nil {
		return nil, fmt.Errorf("build email attachment: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(attachment)
	if _, err := filePart.Write([]byte(encoded)); err != nil {
		return nil, fmt.Errorf("build email attachment: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize email message: %w", err)
	}
	return buf.Bytes(), nil
}

func splitRecipients(to string) []string {
	parts := strings.Split(to, ",")
	recipients := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			recipients = append(recipients, trimmed)
		}
	}
	return recipients
}
