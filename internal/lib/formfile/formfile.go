// Package formfile сохраняет файлы из multipart-форм во временный каталог.
//
// Обработчики принимают файлы от клиента, складывают их на локальный диск
// и передают путь бизнес-логике; после обработки временный файл удаляется.
package formfile

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// SaveTemp сохраняет файл из multipart-заголовка во временный каталог
// и возвращает путь к нему. Расширение исходного файла сохраняется,
// чтобы по нему можно было определить content type при загрузке
// во внешнее хранилище.
func SaveTemp(fh *multipart.FileHeader) (string, error) {
	const op = "formfile.SaveTemp"

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = src.Close()
	}()

	dst, err := os.CreateTemp("", "upload-*"+filepath.Ext(fh.Filename))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return dst.Name(), nil
}

// Remove удаляет временный файл, игнорируя пустой путь.
func Remove(path string) {
	if path == "" {
		return
	}
	_ = os.Remove(path)
}
