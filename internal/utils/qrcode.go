package utils

import (
	"fmt"

	"atelier_back_end/internal/models"

	"github.com/skip2/go-qrcode"
)

const QRSize = 256

// OrderReference est le texte encodé dans le QR code d'une commande.
func OrderReference(order models.Order) string {
	return fmt.Sprintf("ATELIER\nCMD:%s\nTOTAL:EUR%.2f\nDATE:%s",
		order.ID, order.Total, order.CreatedAt.Format("2006-01-02"))
}

// OrderQRCode retourne le QR code PNG de la commande.
func OrderQRCode(order models.Order) ([]byte, error) {
	png, err := qrcode.Encode(OrderReference(order), qrcode.Medium, QRSize)
	if err != nil {
		return nil, fmt.Errorf("génération QR: %w", err)
	}
	return png, nil
}
