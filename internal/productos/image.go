package productos

import (
	"fmt"
	"strings"

	pkgerrors "github.com/agronegocio/agromercado-backend/pkg/errors"
	"github.com/gabriel-vasile/mimetype"
)

var allowedImageMIMEs = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
}

// ImageUpload is the raw image handed to the publish workflow.
type ImageUpload struct {
	Data     []byte
	Filename string
}

// validateImage sniffs the actual content type from the bytes (the declared
// header is not trusted) and enforces the size cap. Returns the detected
// content type and the extension to use for the object key.
func validateImage(image ImageUpload, maxBytes int64) (contentType, ext string, err error) {
	if len(image.Data) == 0 {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "la imagen está vacía")
	}
	if int64(len(image.Data)) > maxBytes {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("la imagen supera el máximo de %d bytes", maxBytes))
	}

	detected := mimetype.Detect(image.Data)
	for _, allowed := range allowedImageMIMEs {
		if detected.Is(allowed) {
			return allowed, strings.TrimPrefix(detected.Extension(), "."), nil
		}
	}
	return "", "", pkgerrors.New(pkgerrors.CodeValidation,
		fmt.Sprintf("tipo de imagen no permitido: %s", detected.String()))
}
