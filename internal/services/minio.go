package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"velours_back_end/internal/database"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// UploadProductImage envoie une image produit vers MinIO et retourne son URL
// publique. Le nom de fichier est rendu unique pour éviter les collisions.
func UploadProductImage(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	bucket := os.Getenv("MINIO_BUCKET")
	objectName := fmt.Sprintf("products/%s%s", uuid.NewString(), filepath.Ext(file.Filename))

	_, err = database.MinIO.PutObject(ctx, bucket, objectName, f, file.Size,
		minio.PutObjectOptions{ContentType: file.Header.Get("Content-Type")})
	if err != nil {
		return "", err
	}

	scheme := "http"
	if os.Getenv("MINIO_USE_SSL") == "true" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, os.Getenv("MINIO_ENDPOINT"), bucket, objectName), nil
}

// RemoveProductImage supprime une image du bucket (best-effort)
func RemoveProductImage(ctx context.Context, objectName string) error {
	if database.MinIO == nil {
		return fmt.Errorf("MinIO non initialisé")
	}
	return database.MinIO.RemoveObject(ctx, os.Getenv("MINIO_BUCKET"), objectName,
		minio.RemoveObjectOptions{})
}

// PresignedImageURL génère une URL signée temporaire pour un objet privé
func PresignedImageURL(ctx context.Context, objectName string) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	u, err := database.MinIO.PresignedGetObject(ctx, os.Getenv("MINIO_BUCKET"), objectName,
		15*time.Minute, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
