package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

const InvoiceAttachmentName = "Invoice.pdf"

func OrderInvoice(to, customerName string, invoicePDF []byte) Message {
	return Message{
		To:      to,
		Subject: "Your KalamKart Order Invoice",
		Text: fmt.Sprintf("Dear %s,\n\nThanks for your order! Please find the invoice attached.\n\nRegards,\nKalamKart",
			customerName),
		AttachmentName: InvoiceAttachmentName,
		Attachment:     invoicePDF,
	}
}

func PaymentConfirmed(to, customerName string, invoicePDF []byte) Message {
	return Message{
		To:      to,
		Subject: "Updated Invoice - Payment Confirmed",
		Text: fmt.Sprintf("Dear %s,\n\nYour payment has been confirmed. Please find the updated invoice attached.\n\nThank you,\nKalamKart",
			customerName),
		AttachmentName: InvoiceAttachmentName,
		Attachment:     invoicePDF,
	}
}

var otpTemplate = template.Must(template.New("otp").Parse(`
<h3>Hello</h3>
<p>Your One-Time Password (OTP) is:</p>
<div style="font-size: 24px; font-weight: bold; background: #f4f4f4; padding: 10px; display: inline-block;">{{.Code}}</div>
<p>This code is valid for {{.Minutes}} minutes.</p>
<p>If you did not request this, please ignore.</p>
<br/>
<p>Team KalamKart</p>
`))

var resetTemplate = template.Must(template.New("reset").Parse(`
<h3>Hello</h3>
<p>You requested to reset your KalamKart password.</p>
<p>Click the button below to reset it:</p>
<a href="{{.Link}}" style="padding: 10px 20px; background-color: #4CAF50; color: white; text-decoration: none; border-radius: 5px;">Reset Password</a>
<p>This link will expire in {{.Minutes}} minutes.</p>
<p>If you didn't request this, you can safely ignore it.</p>
<br/>
<p>Team KalamKart</p>
`))

func OTPCode(to, code string, minutes int) (Message, error) {
	var buf bytes.Buffer
	data := struct {
		Code    string
		Minutes int
	}{code, minutes}

	if err := otpTemplate.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render otp email: %w", err)
	}

	return Message{
		To:      to,
		Subject: "Your KalamKart OTP Code",
		HTML:    buf.String(),
	}, nil
}

func PasswordReset(to, link string, minutes int) (Message, error) {
	var buf bytes.Buffer
	data := struct {
		Link    string
		Minutes int
	}{link, minutes}

	if err := resetTemplate.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render reset email: %w", err)
	}

	return Message{
		To:      to,
		Subject: "Password Reset Request",
		HTML:    buf.String(),
	}, nil
}
