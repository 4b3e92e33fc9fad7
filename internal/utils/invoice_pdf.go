package utils

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"time"

	"velours_back_end/internal/models"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/skip2/go-qrcode"
)

// GenerateSepaQR génère un QR SEPA (EPC) en base64 prêt à mettre dans <img src="...">
func GenerateSepaQR(iban, bic, name, ref string, amount float64) (string, error) {
	// format EPC basique
	sepa := fmt.Sprintf(`BCD
001
1
SCT
%s
%s
%s
EUR%.2f
%s`, bic, name, iban, amount, ref)

	png, err := qrcode.Encode(sepa, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// GenerateInvoicePDF génère la facture PDF d'une commande : la page facture
// du front est rendue côté serveur puis imprimée en PDF.
func GenerateInvoicePDF(order models.Order) ([]byte, error) {
	iban := os.Getenv("COMPANY_IBAN")
	if iban == "" {
		iban = "FR7612345678901234567890123"
	}
	bic := os.Getenv("COMPANY_BIC")
	if bic == "" {
		bic = "BNPAFRPP"
	}
	companyName := os.Getenv("COMPANY_NAME")
	if companyName == "" {
		companyName = "Velours SAS"
	}
	ref := fmt.Sprintf("FACT-%s", order.ID)

	qrBase64, err := GenerateSepaQR(iban, bic, companyName, ref, order.Total)
	if err != nil {
		return nil, fmt.Errorf("erreur génération QR: %v", err)
	}

	return renderInvoicePDF(getFrontendInvoiceBaseURL(), order.ID.String(), qrBase64)
}

// renderInvoicePDF charge la page facture du front et l'imprime en PDF
func renderInvoicePDF(frontendURL, invoiceID, qrBase64 string) ([]byte, error) {
	q := url.Values{}
	q.Set("id", invoiceID)
	q.Set("qr", qrBase64)

	fullURL := fmt.Sprintf("%s?%s", frontendURL, q.Encode())

	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	// timeout pour éviter de bloquer
	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var pdfBuf []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate(fullURL),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}

	return pdfBuf, nil
}

// getFrontendInvoiceBaseURL récupère l'URL du front depuis l'env
func getFrontendInvoiceBaseURL() string {
	if u := os.Getenv("FRONTEND_INVOICE_URL"); u != "" {
		return u
	}
	return "http://localhost:3000/invoice"
}
