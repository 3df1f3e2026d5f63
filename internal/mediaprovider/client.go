// Package mediaprovider реализует клиента внешнего S3-совместимого
// хранилища медиафайлов: загрузку локального файла с выдачей публичной
// ссылки и удаление объекта по ссылке.
package mediaprovider

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/account-service/internal/config"
)

var (
	// ErrInvalidURL возвращается, когда ссылка не указывает на объект этого хранилища.
	ErrInvalidURL = errors.New("url does not belong to media storage")
	// ErrDeleteFailed возвращается при ошибке удаления объекта на стороне хранилища.
	ErrDeleteFailed = errors.New("media storage delete failed")
)

// Client — клиент хранилища медиафайлов. Настройки передаются при
// создании, глобального состояния пакет не хранит.
type Client struct {
	s3            *s3.Client
	bucket        string
	publicBaseURL string
}

// New создает клиента хранилища по переданной конфигурации.
func New(ctx context.Context, cfg config.MediaStorage) (*Client, error) {
	const op = "mediaprovider.New"

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return &Client{
		s3:            client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

func storageKey(ext string) string {
	d := time.Now()
	return fmt.Sprintf("media/%d/%02d/%v%s", d.Year(), int(d.Month()), uuid.New(), ext)
}

// Upload загружает локальный файл в хранилище и возвращает публичную
// ссылку на него. Content type определяется по расширению файла.
func (c *Client) Upload(ctx context.Context, localPath string) (string, error) {
	const op = "mediaprovider.Upload"

	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = file.Close()
	}()

	ext := filepath.Ext(localPath)
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := storageKey(ext)

	_, err = c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return c.publicBaseURL + "/" + key, nil
}

// KeyFromURL извлекает ключ объекта из публичной ссылки.
func (c *Client) KeyFromURL(url string) (string, error) {
	const op = "mediaprovider.KeyFromURL"
	prefix := c.publicBaseURL + "/"
	if url == "" || !strings.HasPrefix(url, prefix) {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidURL)
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidURL)
	}
	return key, nil
}

// DeleteByURL удаляет объект хранилища по его публичной ссылке.
func (c *Client) DeleteByURL(ctx context.Context, url string) error {
	const op = "mediaprovider.DeleteByURL"

	key, err := c.KeyFromURL(url)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrDeleteFailed, err)
	}
	return nil
}
