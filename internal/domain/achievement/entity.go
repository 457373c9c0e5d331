// Package achievement содержит доменную модель достижения - неизменяемой
// записи о том, что конкретный студент получил конкретный приз в конкретный
// момент времени. Коллекция достижений (леджер) пополняется только в конец
// и является единственным источником истины для сумм очков.
package achievement

import (
	"errors"
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: ACHIEVEMENT
// ══════════════════════════════════════════════════════════════════════════════

// Achievement - запись леджера. После создания не изменяется и не удаляется:
// операций update/delete у леджера нет. Для автоматических наград действует
// правило "не более одного вручения на (студент, приз, календарный день)";
// ручные вручения не ограничены - дедупликация лежит на вызывающем движке,
// а не на леджере.
type Achievement struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// StudentID - студент, получивший приз. Достижения принадлежат студенту
	// эксклюзивно: у одного студента много достижений.
	StudentID string

	// PrizeID - вручённый приз. Ссылка разделяемая: на один приз может
	// ссылаться много достижений.
	PrizeID string

	// GrantedAt - момент вручения.
	GrantedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrMissingStudent - не указан студент.
	ErrMissingStudent = errors.New("achievement: student id is required")

	// ErrMissingPrize - не указан приз.
	ErrMissingPrize = errors.New("achievement: prize id is required")
)

// New создаёт новое достижение. Нулевое время вручения заменяется текущим.
func New(id, studentID, prizeID string, grantedAt time.Time) (*Achievement, error) {
	if id == "" {
		return nil, errors.New("achievement: id is required")
	}
	if studentID == "" {
		return nil, ErrMissingStudent
	}
	if prizeID == "" {
		return nil, ErrMissingPrize
	}

	if grantedAt.IsZero() {
		grantedAt = time.Now().UTC()
	}

	return &Achievement{
		ID:        id,
		StudentID: studentID,
		PrizeID:   prizeID,
		GrantedAt: grantedAt,
	}, nil
}

// String возвращает строковое представление достижения для логирования.
func (a *Achievement) String() string {
	return fmt.Sprintf("Achievement{ID: %s, Student: %s, Prize: %s, At: %s}",
		a.ID, a.StudentID, a.PrizeID, a.GrantedAt.Format(time.RFC3339))
}
