package utils

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/skip2/go-qrcode"
)

// GenerateSepaQR encode un virement SEPA (format EPC) en QR, rendu en data
// URL base64 prêt pour un <img src="...">.
func GenerateSepaQR(iban, bic, name, reference string, amount float64) (string, error) {
	epc := fmt.Sprintf("BCD\n001\n1\nSCT\n%s\n%s\n%s\nEUR%.2f\n%s", bic, name, iban, amount, reference)

	png, err := qrcode.Encode(epc, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// RenderInvoicePDF imprime une facture HTML en PDF via un Chrome headless.
// Le HTML passe en data URL, aucun frontend n'est sollicité.
func RenderInvoicePDF(html string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	dataURL := "data:text/html;charset=utf-8," + url.PathEscape(html)

	var pdfBuf []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate(dataURL),
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
