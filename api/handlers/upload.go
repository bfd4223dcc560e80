package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/linesmerrill/radio-santana-api/api"
	"github.com/linesmerrill/radio-santana-api/config"
	"github.com/linesmerrill/radio-santana-api/models"
)

const (
	maxUploadSize = 10 << 20
	uploadRoot    = "radio-santana"
)

var uploadFolders = map[string]bool{"shows": true, "news": true}

// ImageUploader stores an image and returns its public URL
type ImageUploader interface {
	UploadImage(ctx context.Context, file io.Reader, folder string) (string, error)
}

// CloudinaryUploader converts uploads to WebP on Cloudinary
type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryUploader builds an uploader from a cloudinary:// URL
func NewCloudinaryUploader(url string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, err
	}
	return &CloudinaryUploader{cld: cld}, nil
}

// UploadImage uploads file into folder, stored as WebP
func (c *CloudinaryUploader) UploadImage(ctx context.Context, file io.Reader, folder string) (string, error) {
	resp, err := c.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder: folder,
		Format: "webp",
	})
	if err != nil {
		return "", err
	}
	if resp.Error.Message != "" {
		return "", errors.New(resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// Upload receives images for shows and news
type Upload struct {
	Uploader ImageUploader
}

// UploadImageHandler stores the "image" form file and returns its URL
func (u Upload) UploadImageHandler(w http.ResponseWriter, r *http.Request) {
	if u.Uploader == nil {
		config.ErrorStatus("La subida de imágenes no está configurada.", http.StatusServiceUnavailable, w, nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		config.ErrorStatus("La imagen supera el tamaño permitido.", http.StatusRequestEntityTooLarge, w, err)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, &models.ValidationError{Field: "image", Message: "Selecciona una imagen."})
		return
	}
	defer file.Close()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		writeError(w, &models.ValidationError{Field: "image", Message: "El archivo debe ser una imagen."})
		return
	}

	folder := uploadRoot
	if sub := r.FormValue("folder"); uploadFolders[sub] {
		folder += "/" + sub
	}

	url, err := u.Uploader.UploadImage(r.Context(), file, folder)
	if err != nil {
		config.ErrorStatus("No se pudo subir la imagen.", http.StatusBadGateway, w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, map[string]string{"url": url})
}
