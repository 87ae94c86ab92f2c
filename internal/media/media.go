// Package media stores uploaded images on the external media host and
// hands back their public URLs.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"go-shop/internal/apperr"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
)

// ErrUnavailable is returned by the Disabled uploader.
var ErrUnavailable = errors.New("media host not configured")

var allowed = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// Image is an upload that already passed type and size checks.
type Image struct {
	Name        string
	ContentType string
	Ext         string
	Data        []byte
}

type Uploader interface {
	Upload(ctx context.Context, img *Image) (string, error)
	Delete(ctx context.Context, url string) error
}

// ReadImage loads fh and checks it is a jpeg or png no larger than maxBytes.
// Failures are reported as a validation error on field.
func ReadImage(field string, fh *multipart.FileHeader, maxBytes int64) (*Image, error) {
	if fh.Size > maxBytes {
		return nil, apperr.Invalid(field, tooLarge(field, maxBytes))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, apperr.Invalid(field, tooLarge(field, maxBytes))
	}

	mt := mimetype.Detect(data)
	ext, ok := allowed[mt.String()]
	if !ok {
		return nil, apperr.Invalid(field, fmt.Sprintf("The %s must be a file of type: jpg, jpeg, png.", field))
	}
	return &Image{Name: fh.Filename, ContentType: mt.String(), Ext: ext, Data: data}, nil
}

func tooLarge(field string, maxBytes int64) string {
	return fmt.Sprintf("The %s must not be greater than %d kilobytes.", field, maxBytes/1024)
}

func (img *Image) reader() io.Reader {
	return bytes.NewReader(img.Data)
}

// Host runs uploads against an Uploader with a per-call timeout.
type Host struct {
	up      Uploader
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewHost(up Uploader, timeout time.Duration, log logrus.FieldLogger) *Host {
	return &Host{up: up, timeout: timeout, log: log}
}

// Store uploads img. Any failure is reported as apperr.ErrMediaUpload.
func (h *Host) Store(ctx context.Context, img *Image) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	url, err := h.up.Upload(ctx, img)
	if err != nil {
		h.log.WithError(err).WithField("file", img.Name).Error("[Media] upload failed")
		return "", fmt.Errorf("%w: %v", apperr.ErrMediaUpload, err)
	}
	return url, nil
}

// Discard deletes an object whose owning row was never written. Errors
// are only logged.
func (h *Host) Discard(ctx context.Context, url string) {
	if url == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
	defer cancel()
	if err := h.up.Delete(ctx, url); err != nil {
		h.log.WithError(err).WithField("url", url).Warn("[Media] failed to remove orphaned upload")
		return
	}
	h.log.WithField("url", url).Info("[Media] removed orphaned upload")
}

// Attach uploads img when present, then calls persist with its URL (nil
// without an image). A failed persist removes the uploaded object again.
func (h *Host) Attach(ctx context.Context, img *Image, persist func(url *string) error) error {
	var url *string
	if img != nil {
		u, err := h.Store(ctx, img)
		if err != nil {
			return err
		}
		url = &u
	}
	if err := persist(url); err != nil {
		if url != nil {
			h.Discard(ctx, *url)
		}
		return err
	}
	return nil
}

// Disabled is used when no bucket is configured.
type Disabled struct{}

func (Disabled) Upload(context.Context, *Image) (string, error) { return "", ErrUnavailable }
func (Disabled) Delete(context.Context, string) error           { return ErrUnavailable }

// Ping runs up's HealthCheck under timeout. Uploaders without one always pass.
func Ping(ctx context.Context, up Uploader, timeout time.Duration) error {
	hc, ok := up.(interface{ HealthCheck(context.Context) error })
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return hc.HealthCheck(ctx)
}
