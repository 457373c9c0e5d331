// Package prize содержит доменную модель приза - каталога наград,
// определяемых в рамках дисциплины. Приз либо вручается преподавателем
// вручную, либо создаётся и вручается автоматическим движком наград.
package prize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eduscrum/awards/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Kind определяет способ вручения приза.
type Kind string

const (
	// KindManual - приз вручается преподавателем вручную.
	KindManual Kind = "MANUAL"
	// KindAutomatic - приз создаётся и вручается движком наград.
	KindAutomatic Kind = "AUTOMATIC"
)

// IsValid проверяет, что вид приза корректен.
func (k Kind) IsValid() bool {
	switch k {
	case KindManual, KindAutomatic:
		return true
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: PRIZE
// ══════════════════════════════════════════════════════════════════════════════

// Prize - определение награды. После того как на приз ссылается хотя бы
// одно достижение, семантика его стоимости считается неизменной: леджер
// хранит факт вручения, а не снимок стоимости, и задним числом суммы
// не пересчитываются.
type Prize struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// SubjectID - дисциплина, которой принадлежит приз.
	SubjectID string

	// Name - название приза.
	Name string

	// Description - описание.
	Description string

	// Value - стоимость приза в очках (неотрицательная).
	Value shared.Points

	// Kind - способ вручения.
	Kind Kind

	// CreatedAt - время создания записи.
	CreatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidName - невалидное название приза.
	ErrInvalidName = errors.New("invalid prize name: must be 1-100 chars")

	// ErrInvalidKind - невалидный вид приза.
	ErrInvalidKind = errors.New("invalid prize kind")

	// ErrNegativeValue - стоимость приза не может быть отрицательной.
	ErrNegativeValue = errors.New("prize value cannot be negative")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewPrizeParams содержит параметры для создания нового приза.
type NewPrizeParams struct {
	ID          string
	SubjectID   string
	Name        string
	Description string
	Value       shared.Points
	Kind        Kind
}

// NewPrize создаёт новый приз с валидацией всех полей.
func NewPrize(params NewPrizeParams) (*Prize, error) {
	if params.ID == "" {
		return nil, errors.New("prize id is required")
	}
	if params.SubjectID == "" {
		return nil, errors.New("subject id is required")
	}

	name := strings.TrimSpace(params.Name)
	if len(name) == 0 || len(name) > 100 {
		return nil, ErrInvalidName
	}

	if !params.Value.IsValid() {
		return nil, ErrNegativeValue
	}

	if !params.Kind.IsValid() {
		return nil, ErrInvalidKind
	}

	return &Prize{
		ID:          params.ID,
		SubjectID:   params.SubjectID,
		Name:        name,
		Description: strings.TrimSpace(params.Description),
		Value:       params.Value,
		Kind:        params.Kind,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// IsAutomatic возвращает true для автоматических призов.
func (p *Prize) IsAutomatic() bool {
	return p.Kind == KindAutomatic
}

// Matches проверяет совпадение по ключу идемпотентного поиска
// автоматического приза: название и стоимость в рамках дисциплины.
func (p *Prize) Matches(name string, value shared.Points) bool {
	return p.Name == name && p.Value == value
}

// String возвращает строковое представление приза для логирования.
func (p *Prize) String() string {
	return fmt.Sprintf("Prize{ID: %s, Name: %q, Value: %d, Kind: %s}", p.ID, p.Name, p.Value, p.Kind)
}
