package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

// SMTPTransport delivers messages over plain-auth SMTP with STARTTLS
// negotiated by the server (port 587 pattern).
type SMTPTransport struct{}

func NewSMTP() *SMTPTransport {
	return &SMTPTransport{}
}

func (t *SMTPTransport) Send(ctx context.Context, creds Credentials, msg Message) error {
	_ = ctx
	if len(msg.To) == 0 {
		return fmt.Errorf("%w: no recipients", ErrSend)
	}

	body, err := buildMIME(creds.Email, msg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSend, err)
	}

	recipients := make([]string, 0, len(msg.To)+len(msg.CC)+len(msg.BCC))
	recipients = append(recipients, msg.To...)
	recipients = append(recipients, msg.CC...)
	recipients = append(recipients, msg.BCC...)

	auth := smtp.PlainAuth("", creds.Email, creds.Password, creds.Host)
	addr := fmt.Sprintf("%s:%d", creds.Host, creds.Port)

	if err := smtp.SendMail(addr, auth, creds.Email, recipients, body); err != nil {
		return fmt.Errorf("%w: %v", ErrSend, err)
	}
	return nil
}

func buildMIME(from string, msg Message) ([]byte, error) {
	var buf bytes.Buffer

	fromAddr := from
	if msg.FromName != "" {
		fromAddr = (&mail.Address{Name: msg.FromName, Address: from}).String()
	}

	fmt.Fprintf(&buf, "From: %s\r\n", fromAddr)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(msg.To, ", "))
	if len(msg.CC) > 0 {
		fmt.Fprintf(&buf, "Cc: %s\r\n", strings.Join(msg.CC, ", "))
	}
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")

	writer := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", writer.Boundary())

	if err := writeBodyParts(writer, msg); err != nil {
		return nil, err
	}
	for _, path := range msg.Attachments {
		if err := writeAttachment(writer, path); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeBodyParts(writer *multipart.Writer, msg Message) error {
	var alt bytes.Buffer
	altWriter := multipart.NewWriter(&alt)

	if msg.PlainText != "" {
		part, err := altWriter.CreatePart(textproto.MIMEHeader{
			"Content-Type": {`text/plain; charset="UTF-8"`},
		})
		if err != nil {
			return err
		}
		if _, err := part.Write([]byte(msg.PlainText)); err != nil {
			return err
		}
	}
	if msg.HTMLText != "" {
		part, err := altWriter.CreatePart(textproto.MIMEHeader{
			"Content-Type": {`text/html; charset="UTF-8"`},
		})
		if err != nil {
			return err
		}
		if _, err := part.Write([]byte(msg.HTMLText)); err != nil {
			return err
		}
	}
	if err := altWriter.Close(); err != nil {
		return err
	}

	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {fmt.Sprintf("multipart/alternative; boundary=%q", altWriter.Boundary())},
	})
	if err != nil {
		return err
	}
	_, err = part.Write(alt.Bytes())
	return err
}

func writeAttachment(writer *multipart.Writer, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	name := filepath.Base(path)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"application/octet-stream"},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", name)},
	})
	if err != nil {
		return err
	}
	return writeBase64Wrapped(part, raw)
}

// writeBase64Wrapped encodes and folds the payload at 76 columns. SMTP caps
// lines at 998 octets and strict servers reject longer ones outright.
func writeBase64Wrapped(w io.Writer, raw []byte) error {
	enc := base64.StdEncoding.EncodeToString(raw)
	for len(enc) > 0 {
		n := 76
		if len(enc) < n {
			n = len(enc)
		}
		if _, err := io.WriteString(w, enc[:n]); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\r\n"); err != nil {
			return err
		}
		enc = enc[n:]
	}
	return nil
}
