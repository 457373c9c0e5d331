// Package user содержит доменную модель пользователя системы EduScrum Awards.
// Вместо иерархии подклассов (студент/преподаватель/администратор) используется
// единая сущность с тегом роли - это ядро бизнес-логики без внешних зависимостей,
// кроме хеширования пароля.
package user

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eduscrum/awards/internal/domain/shared"

	"golang.org/x/crypto/bcrypt"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Role определяет роль пользователя в системе.
type Role string

const (
	// RoleStudent - студент: участвует в командах, получает призы и очки.
	RoleStudent Role = "STUDENT"
	// RoleProfessor - преподаватель: ведёт дисциплины, вручает призы.
	RoleProfessor Role = "PROFESSOR"
	// RoleAdmin - администратор платформы.
	RoleAdmin Role = "ADMIN"
)

// IsValid проверяет, что роль корректна.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleProfessor, RoleAdmin:
		return true
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: USER
// ══════════════════════════════════════════════════════════════════════════════

// User - центральная сущность системы. Для студентов поле TotalPoints
// хранит кешированную сумму очков по леджеру достижений; инвариант:
// TotalPoints == сумма значений призов всех достижений студента.
// Поле изменяется только аккумулятором очков и никогда не уменьшается
// в штатной работе (операции отзыва приза не существует).
type User struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// Name - отображаемое имя.
	Name string

	// Email - адрес электронной почты (уникальный).
	Email string

	// PasswordHash - bcrypt-хеш пароля. Механика аутентификации живёт
	// во внешнем слое, но хеш хранится вместе с сущностью.
	PasswordHash string

	// Role - роль пользователя.
	Role Role

	// TotalPoints - текущая сумма очков (только для студентов).
	TotalPoints shared.Points

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidName - невалидное имя пользователя.
	ErrInvalidName = errors.New("invalid name: must be 1-100 chars")

	// ErrInvalidEmail - невалидный email.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrInvalidRole - невалидная роль.
	ErrInvalidRole = errors.New("invalid user role")

	// ErrInvalidPassword - слишком короткий пароль.
	ErrInvalidPassword = errors.New("invalid password: must be at least 8 chars")

	// ErrNegativePoints - очки не могут быть отрицательными.
	ErrNegativePoints = errors.New("points cannot be negative")

	// ErrNotAStudent - операция применима только к студентам.
	ErrNotAStudent = errors.New("user is not a student")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewUserParams содержит параметры для создания нового пользователя.
type NewUserParams struct {
	ID       string
	Name     string
	Email    string
	Password string
	Role     Role
}

// NewUser создаёт нового пользователя с валидацией всех полей.
// Студенты начинают с нулём очков.
func NewUser(params NewUserParams) (*User, error) {
	if params.ID == "" {
		return nil, errors.New("user id is required")
	}

	name := strings.TrimSpace(params.Name)
	if len(name) == 0 || len(name) > 100 {
		return nil, ErrInvalidName
	}

	email := strings.ToLower(strings.TrimSpace(params.Email))
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}

	if !params.Role.IsValid() {
		return nil, ErrInvalidRole
	}

	now := time.Now().UTC()

	u := &User{
		ID:          params.ID,
		Name:        name,
		Email:       email,
		Role:        params.Role,
		TotalPoints: 0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if params.Password != "" {
		if err := u.SetPassword(params.Password); err != nil {
			return nil, err
		}
	}

	return u, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (Business Logic)
// ══════════════════════════════════════════════════════════════════════════════

// IsStudent возвращает true, если пользователь является студентом.
func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// AddPoints прибавляет очки к текущей сумме студента.
// Вызывается только аккумулятором очков в рамках транзакции вручения приза.
func (u *User) AddPoints(delta shared.Points) error {
	if !u.IsStudent() {
		return ErrNotAStudent
	}
	if delta < 0 {
		return ErrNegativePoints
	}

	u.TotalPoints = u.TotalPoints.Add(delta)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// SetTotalPoints устанавливает сумму очков напрямую.
// Используется только инструментом пересчёта по леджеру.
func (u *User) SetTotalPoints(total shared.Points) error {
	if !u.IsStudent() {
		return ErrNotAStudent
	}
	if total < 0 {
		return ErrNegativePoints
	}

	u.TotalPoints = total
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// SetPassword хеширует и сохраняет пароль.
func (u *User) SetPassword(password string) error {
	if len(password) < 8 {
		return ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// CheckPassword сверяет пароль с сохранённым хешем.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// String возвращает строковое представление пользователя для логирования.
func (u *User) String() string {
	return fmt.Sprintf("User{ID: %s, Email: %s, Role: %s, Points: %d}", u.ID, u.Email, u.Role, u.TotalPoints)
}

// Clone создаёт копию пользователя.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}
