package utils

import (
	"bytes"
	"fmt"
	"log"

	"github.com/wneessen/go-mail"

	"grocery_back_end/internal/config"
	"grocery_back_end/internal/models"
)

// SendMail envoie un e-mail HTML, avec pièce jointe PDF optionnelle.
func SendMail(to, subject, htmlBody string, pdfAttachment []byte, pdfName string) error {
	s := config.App

	msg := mail.NewMsg()
	if err := msg.From(s.MailFrom); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if pdfAttachment != nil {
		msg.AttachReader(pdfName, bytes.NewReader(pdfAttachment))
	}

	client, err := mail.NewClient(s.SMTPHost,
		mail.WithPort(s.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(s.SMTPUser),
		mail.WithPassword(s.SMTPPass),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSend(msg)
}

// SendOrderStatusEmail prévient le client du nouveau statut de sa commande.
func SendOrderStatusEmail(to string, orderID int64, status string) error {
	subject := fmt.Sprintf("Votre commande n°%d — %s", orderID, status)
	return SendMail(to, subject, OrderStatusHTML(orderID, status), nil, "")
}

// OrderStatusHTML génère le corps de l'e-mail de changement de statut.
func OrderStatusHTML(orderID int64, status string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2>Mise à jour de votre commande</h2>
	<p>Votre commande <strong>n°%d</strong> est passée au statut :</p>
	<p style="font-size: 18px;"><strong>%s</strong></p>
	<p>Merci pour votre confiance.</p>
	<p>%s</p>
</body>
</html>`, orderID, status, config.App.CompanyName)
}

// InvoiceHTML génère la facture HTML d'une commande : en-tête, lignes
// produits, totaux et QR de paiement SEPA.
func InvoiceHTML(order *models.OrderView, reference, qrBase64 string) string {
	itemsHTML := ""
	for _, p := range order.Products {
		name := "Produit supprimé"
		if p.Name != nil {
			name = *p.Name
		}
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td>%s</td>
				<td>%d</td>
				<td>%.2f€</td>
				<td>%.2f€</td>
			</tr>`, name, p.Quantity, p.Price, p.Price*float64(p.Quantity))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; color: #333; margin: 40px;">
	<h1>%s</h1>
	<h2>Facture %s — Commande n°%d</h2>
	<table width="100%%" border="1" cellspacing="0" cellpadding="6">
		<tr><th>Produit</th><th>Quantité</th><th>Prix unitaire</th><th>Total</th></tr>
		%s
	</table>
	<p>Sous-total : %.2f€</p>
	<p>TVA : %.2f€</p>
	<p>Livraison : %.2f€</p>
	<h3>Total : %.2f€</h3>
	<p>Payable par virement — scannez le QR :</p>
	<img src="%s" alt="QR SEPA" width="200" height="200">
</body>
</html>`, config.App.CompanyName, reference, order.ID, itemsHTML,
		order.SubTotal, order.TaxAmount, order.DeliveryFee, order.Total, qrBase64)
}
