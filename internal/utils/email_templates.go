package utils

import (
	"fmt"
	"log"

	"velours_back_end/internal/models"
)

// SendOrderConfirmationEmail envoie la confirmation de commande avec la
// facture PDF en pièce jointe (best-effort : un échec de génération du PDF
// n'empêche pas l'envoi de la confirmation).
func SendOrderConfirmationEmail(order models.Order) error {
	subject := "✅ Confirmation de votre commande - Velours"
	html := generateOrderConfirmationHTML(order)

	pdf, err := GenerateInvoicePDF(order)
	if err != nil {
		log.Printf("⚠️ Facture PDF indisponible pour %s: %v", order.ID, err)
		pdf = nil
	}

	return SendEmail(order.Shipping.Email, subject, html, pdf)
}

// SendOrderStatusEmail envoie un email de notification de changement de statut
func SendOrderStatusEmail(order models.Order, newStatus string) error {
	subject := getStatusEmailSubject(newStatus)
	html := generateStatusEmailHTML(order, newStatus)

	if err := SendEmail(order.Shipping.Email, subject, html, nil); err != nil {
		log.Printf("❌ Erreur envoi email statut: %v", err)
		return err
	}

	log.Printf("📧 Email de statut envoyé: %s → %s", newStatus, order.Shipping.Email)
	return nil
}

// SendCartReminderEmail relance un client dont le panier dort depuis
// plusieurs jours.
func SendCartReminderEmail(email string, itemCount int, total float64) error {
	subject := "🛍️ Votre panier vous attend - Velours"

	html := fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Votre panier vous attend</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Votre panier vous attend 🛒</h2>
		<p>Bonjour,</p>
		<p>Vous avez laissé <strong>%d article(s)</strong> dans votre panier, pour un total de <strong>%.2f€</strong>.</p>
		<p>Ils sont toujours réservés pour vous — mais le stock peut partir vite !</p>
		<p style="text-align: center; margin: 30px 0;">
			<a href="https://velours-boutique.fr/cart" style="display: inline-block; padding: 14px 32px; background-color: #1a1a1a; color: #ffffff; text-decoration: none; border-radius: 8px; font-weight: 600;">
				Finaliser ma commande
			</a>
		</p>
		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe Velours</strong>
		</p>
	</div>
</body>
</html>`, itemCount, total)

	return SendEmail(email, subject, html, nil)
}

func getStatusEmailSubject(status string) string {
	switch status {
	case "paid":
		return "✅ Paiement confirmé - Velours"
	case "shipped":
		return "📦 Votre commande a été expédiée - Velours"
	case "delivered":
		return "🎉 Votre commande a été livrée - Velours"
	case "cancelled":
		return "❌ Commande annulée - Velours"
	default:
		return "📋 Mise à jour de votre commande - Velours"
	}
}

func generateOrderConfirmationHTML(order models.Order) string {
	itemsHTML := ""
	for _, item := range order.Items {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td>%s</td>
				<td>%s / %s</td>
				<td>%d</td>
				<td>%.2f€</td>
				<td>%.2f€</td>
			</tr>`, item.Name, item.Size, item.Color, item.Quantity, item.Price, item.Price*float64(item.Quantity))
	}

	discountRow := ""
	if order.Discount > 0 {
		discountRow = fmt.Sprintf(`
				<tr>
					<td colspan="4" style="padding: 10px; text-align: right;">Remise (%s):</td>
					<td style="padding: 10px; color: #10b981;">-%.2f€</td>
				</tr>`, order.CouponCode, order.Discount)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Confirmation de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Confirmation de votre commande</h2>
		<p>Bonjour %s,</p>
		<p>Votre commande a été confirmée avec succès. La livraison est offerte !</p>

		<h3>Détails de la commande</h3>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Produit</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Taille / Couleur</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Quantité</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Prix unitaire</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
			<tfoot>
				%s
				<tr>
					<td colspan="4" style="padding: 10px; text-align: right;">TVA (9%%):</td>
					<td style="padding: 10px;">%.2f€</td>
				</tr>
				<tr>
					<td colspan="4" style="padding: 10px; text-align: right; font-weight: bold;">Total:</td>
					<td style="padding: 10px; font-weight: bold;">%.2f€</td>
				</tr>
			</tfoot>
		</table>

		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe Velours</strong>
		</p>
	</div>
</body>
</html>`, order.Shipping.Name, itemsHTML, discountRow, order.TaxAmount, order.Total)
}

func generateStatusEmailHTML(order models.Order, status string) string {
	statusMessage := getStatusMessage(status)

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Mise à jour de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Mise à jour de votre commande</h2>
		<p>Bonjour %s,</p>
		<p>%s</p>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0; background-color: #f8f9fa; border-radius: 8px;">
			<tr>
				<td style="padding: 10px;"><strong>Numéro de commande:</strong></td>
				<td style="padding: 10px; text-align: right;">#%s</td>
			</tr>
			<tr>
				<td style="padding: 10px;"><strong>Montant total:</strong></td>
				<td style="padding: 10px; text-align: right;">%.2f€</td>
			</tr>
			<tr>
				<td style="padding: 10px;"><strong>Statut:</strong></td>
				<td style="padding: 10px; text-align: right;">%s</td>
			</tr>
		</table>
		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe Velours</strong>
		</p>
	</div>
</body>
</html>`, order.Shipping.Name, statusMessage, order.ID, order.Total, status)
}

func getStatusMessage(status string) string {
	switch status {
	case "paid":
		return "Nous avons bien reçu votre paiement. Votre commande est en cours de préparation."
	case "shipped":
		return "Bonne nouvelle : votre commande est en route !"
	case "delivered":
		return "Votre commande a été livrée. Nous espérons qu'elle vous plaira !"
	case "cancelled":
		return "Votre commande a été annulée. Si vous n'êtes pas à l'origine de cette annulation, contactez-nous."
	default:
		return "Le statut de votre commande a été mis à jour."
	}
}
