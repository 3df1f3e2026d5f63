// Package storage реализует хранилище пользователей на основе PostgreSQL.
// Предоставляет создание записи, поиск по идентификаторам и узкие методы
// изменения отдельных колонок: refresh-токена, пароля и ссылок на медиа.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/account-service/internal/models"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с пользователями.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// CreateUser сохраняет нового пользователя в базу данных и возвращает его UID.
// При нарушении уникальности username или email возвращает ErrUserExists.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (username, email, full_name, password_hash, avatar_url, cover_image_url)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Username, user.Email, user.FullName, user.PasswordHash,
		user.AvatarURL, user.CoverImageURL).Scan(&newUID); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// FindUserByIdentity возвращает пользователя по username или email (логическое ИЛИ).
// Используется и для проверки уникальности при регистрации, и для входа.
func (s *Storage) FindUserByIdentity(ctx context.Context, username, email string) (*models.User, error) {
	const op = "storage.FindUserByIdentity"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, username, email, full_name, password_hash,
			      avatar_url, cover_image_url, refresh_token, created_at
			  FROM users
			  WHERE username = $1 OR email = $2`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, username, email), op)
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, uid string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, username, email, full_name, password_hash,
			      avatar_url, cover_image_url, refresh_token, created_at
			  FROM users
			  WHERE uid = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, uid), op)
}

func (s *Storage) scanUser(row *sql.Row, op string) (*models.User, error) {
	u := &models.User{}
	var refreshToken sql.NullString
	if err := row.Scan(&u.UID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash,
		&u.AvatarURL, &u.CoverImageURL, &refreshToken, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if refreshToken.Valid {
		u.RefreshToken = &refreshToken.String
	}
	return u, nil
}

// UpdateRefreshToken безусловно устанавливает или сбрасывает (token == nil)
// хранимый refresh-токен пользователя. Остальные колонки не затрагиваются.
func (s *Storage) UpdateRefreshToken(ctx context.Context, uid string, token *string) error {
	const op = "storage.UpdateRefreshToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET refresh_token = $1
			  WHERE uid = $2`
	result, err := s.DB.ExecContext(ctx, query, token, uid)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// RotateRefreshToken заменяет хранимый refresh-токен по принципу
// compare-and-swap: запись проходит только если текущее значение
// совпадает с previous. Иначе возвращается ErrTokenConflict —
// конкурентный refresh успел провести ротацию первым.
func (s *Storage) RotateRefreshToken(ctx context.Context, uid, previous, next string) error {
	const op = "storage.RotateRefreshToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET refresh_token = $1
			  WHERE uid = $2 AND refresh_token = $3`
	result, err := s.DB.ExecContext(ctx, query, next, uid, previous)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrTokenConflict)
	}
	return nil
}

// UpdatePassword сохраняет новый хэш пароля пользователя.
func (s *Storage) UpdatePassword(ctx context.Context, uid, passwordHash string) error {
	const op = "storage.UpdatePassword"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET password_hash = $1
			  WHERE uid = $2`
	result, err := s.DB.ExecContext(ctx, query, passwordHash, uid)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// UpdateAvatarURL сохраняет новую ссылку на аватар пользователя.
func (s *Storage) UpdateAvatarURL(ctx context.Context, uid, url string) error {
	return s.updateMediaURL(ctx, "storage.UpdateAvatarURL", "avatar_url", uid, url)
}

// UpdateCoverImageURL сохраняет новую ссылку на обложку профиля.
func (s *Storage) UpdateCoverImageURL(ctx context.Context, uid, url string) error {
	return s.updateMediaURL(ctx, "storage.UpdateCoverImageURL", "cover_image_url", uid, url)
}

func (s *Storage) updateMediaURL(ctx context.Context, op, column, uid, url string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := fmt.Sprintf(`UPDATE users SET %s = $1 WHERE uid = $2`, column)
	result, err := s.DB.ExecContext(ctx, query, url, uid)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}
