package api

import (
	"mime/multipart"

	"go-shop/internal/apperr"
	"go-shop/internal/media"
)

// optionalImage checks an uploaded file when one was sent. Its validation
// failures are merged into v so they are reported with the other fields.
func optionalImage(v *apperr.ValidationError, field string, fh *multipart.FileHeader, maxBytes int64) (*media.Image, error) {
	if fh == nil {
		return nil, nil
	}
	img, err := media.ReadImage(field, fh, maxBytes)
	if fe, ok := apperr.AsValidation(err); ok {
		for _, msg := range fe.Fields[field] {
			v.Add(field, msg)
		}
		return nil, nil
	}
	return img, err
}
