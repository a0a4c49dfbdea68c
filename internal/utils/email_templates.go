package utils

import (
	"bytes"
	"fmt"
	"html/template"

	"atelier_back_end/internal/models"
)

const layoutHead = `<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>{{.Title}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f5f5f5;">
	<div style="max-width: 600px; margin: 40px auto; background-color: #ffffff; padding: 30px; border-radius: 12px;">
`

const layoutFoot = `
		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe Atelier</strong>
		</p>
	</div>
</body>
</html>`

var orderConfirmationTmpl = template.Must(template.New("order").Funcs(template.FuncMap{
	"money": money,
	"line":  func(it models.OrderItem) string { return money(it.Price * float64(it.Quantity)) },
}).Parse(layoutHead + `
		<h2 style="color: #333;">Merci pour votre commande !</h2>
		<p>Bonjour {{.Name}},</p>
		<p>Votre commande <strong>{{.Order.ID}}</strong> a bien été enregistrée. Elle est en attente de préparation.</p>

		<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Produit</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Quantité</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Prix unitaire</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>
				{{range .Order.Items}}
				<tr>
					<td style="padding: 10px; border: 1px solid #ddd;">
						{{.Name}}
						{{with .Customization}}<br><small style="color: #777;">{{if .Color}}Couleur : {{.Color}} {{end}}{{if .Size}}Taille : {{.Size}} {{end}}{{if .Text}}Texte : « {{.Text}} »{{end}}</small>{{end}}
					</td>
					<td style="padding: 10px; border: 1px solid #ddd;">{{.Quantity}}</td>
					<td style="padding: 10px; border: 1px solid #ddd;">{{money .Price}}</td>
					<td style="padding: 10px; border: 1px solid #ddd;">{{line .}}</td>
				</tr>
				{{end}}
			</tbody>
			<tfoot>
				<tr><td colspan="3" style="padding: 6px 10px; text-align: right;">Sous-total :</td><td style="padding: 6px 10px;">{{money .Order.Subtotal}}</td></tr>
				<tr><td colspan="3" style="padding: 6px 10px; text-align: right;">Livraison :</td><td style="padding: 6px 10px;">{{if eq .Order.Shipping 0.0}}Offerte{{else}}{{money .Order.Shipping}}{{end}}</td></tr>
				<tr><td colspan="3" style="padding: 6px 10px; text-align: right; font-weight: bold;">Total :</td><td style="padding: 6px 10px; font-weight: bold;">{{money .Order.Total}}</td></tr>
			</tfoot>
		</table>

		{{with .Order.ShippingAddress}}
		<h3 style="color: #333;">Adresse de livraison</h3>
		<p style="color: #555;">{{.Name}}<br>{{.Street}}<br>{{.ZipCode}} {{.City}}, {{.State}}<br>{{.Country}}</p>
		{{end}}
		<p style="color: #555;">Le QR code joint permet de retrouver votre commande en boutique.</p>
` + layoutFoot))

var orderStatusTmpl = template.Must(template.New("status").Parse(layoutHead + `
		<h2 style="color: #333;">{{.Headline}}</h2>
		<p>Bonjour,</p>
		<p>{{.Message}}</p>
		<p style="color: #555;">Référence de commande : <strong>{{.Order.ID}}</strong></p>
` + layoutFoot))

var contactTmpl = template.Must(template.New("contact").Parse(layoutHead + `
		<h2 style="color: #333;">Nouveau message de contact</h2>
		<p><strong>De :</strong> {{.Name}} &lt;{{.Email}}&gt;</p>
		{{if .Subject}}<p><strong>Sujet :</strong> {{.Subject}}</p>{{end}}
		<div style="padding: 15px; background-color: #f8f9fa; border-radius: 8px; white-space: pre-wrap;">{{.Message}}</div>
		<p style="color: #999; font-size: 12px;">Reçu le {{.CreatedAt.Format "02/01/2006 15:04"}}</p>
` + layoutFoot))

func money(v float64) string {
	return fmt.Sprintf("%.2f€", v)
}

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendu template %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// OrderConfirmationHTML génère le corps du mail de confirmation de commande.
func OrderConfirmationHTML(order models.Order, customerName string) (string, error) {
	return render(orderConfirmationTmpl, map[string]interface{}{
		"Title": "Confirmation de commande",
		"Name":  customerName,
		"Order": order,
	})
}

func OrderStatusSubject(status models.OrderStatus) string {
	switch status {
	case models.OrderProcessing:
		return "🧵 Votre commande est en préparation - Atelier"
	case models.OrderShipped:
		return "📦 Votre commande a été expédiée - Atelier"
	case models.OrderDelivered:
		return "🎉 Votre commande a été livrée - Atelier"
	default:
		return "📋 Mise à jour de votre commande - Atelier"
	}
}

func orderStatusMessage(status models.OrderStatus) (string, string) {
	switch status {
	case models.OrderProcessing:
		return "Commande en préparation", "Nos artisans préparent votre commande et ses personnalisations."
	case models.OrderShipped:
		return "Commande expédiée", "Votre colis est en route. Il devrait arriver sous quelques jours."
	case models.OrderDelivered:
		return "Commande livrée", "Votre commande a été livrée. Merci de votre confiance !"
	default:
		return "Commande enregistrée", "Votre commande est en attente de traitement."
	}
}

func OrderStatusHTML(order models.Order) (string, error) {
	headline, message := orderStatusMessage(order.Status)
	return render(orderStatusTmpl, map[string]interface{}{
		"Title":    "Mise à jour de commande",
		"Headline": headline,
		"Message":  message,
		"Order":    order,
	})
}

func ContactNotificationHTML(m models.ContactMessage) (string, error) {
	return render(contactTmpl, struct {
		Title string
		models.ContactMessage
	}{"Nouveau message de contact", m})
}
