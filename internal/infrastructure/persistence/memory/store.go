// Package memory provides in-memory implementations of the domain
// repositories. The store backs unit tests and local development; it keeps
// the same semantics as the PostgreSQL implementations, including the
// atomic ledger append.
package memory

import (
	"sync"

	"github.com/eduscrum/awards/internal/domain/achievement"
	"github.com/eduscrum/awards/internal/domain/course"
	"github.com/eduscrum/awards/internal/domain/prize"
	"github.com/eduscrum/awards/internal/domain/project"
	"github.com/eduscrum/awards/internal/domain/team"
	"github.com/eduscrum/awards/internal/domain/user"
)

// Store holds all aggregates behind a single mutex. One lock for
// everything keeps cross-aggregate operations (ledger append + points
// accumulator) trivially atomic, which is exactly what the achievement
// repository contract requires.
type Store struct {
	mu sync.RWMutex

	users        map[string]*user.User
	prizes       map[string]*prize.Prize
	achievements map[string]*achievement.Achievement
	teams        map[string]*team.Team
	memberships  map[string]*team.Membership
	courses      map[string]*course.Course
	subjects     map[string]*course.Subject
	enrollments  map[string]*course.Enrollment
	projects     map[string]*project.Project
	sprints      map[string]*project.Sprint

	// Insertion order per collection. Maps do not preserve order and the
	// repository contracts promise creation-ordered listings.
	prizeOrder       []string
	achievementOrder []string
	teamOrder        []string
	membershipOrder  []string
	enrollmentOrder  []string
	sprintOrder      []string
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:        make(map[string]*user.User),
		prizes:       make(map[string]*prize.Prize),
		achievements: make(map[string]*achievement.Achievement),
		teams:        make(map[string]*team.Team),
		memberships:  make(map[string]*team.Membership),
		courses:      make(map[string]*course.Course),
		subjects:     make(map[string]*course.Subject),
		enrollments:  make(map[string]*course.Enrollment),
		projects:     make(map[string]*project.Project),
		sprints:      make(map[string]*project.Sprint),
	}
}

// Users returns the user repository backed by this store.
func (s *Store) Users() user.Repository { return &userRepo{store: s} }

// Prizes returns the prize repository backed by this store.
func (s *Store) Prizes() prize.Repository { return &prizeRepo{store: s} }

// Achievements returns the achievement ledger backed by this store.
func (s *Store) Achievements() achievement.Repository { return &achievementRepo{store: s} }

// Teams returns the team repository backed by this store.
func (s *Store) Teams() team.Repository { return &teamRepo{store: s} }

// Courses returns the course repository backed by this store.
func (s *Store) Courses() course.Repository { return &courseRepo{store: s} }

// Projects returns the project repository backed by this store.
func (s *Store) Projects() project.Repository { return &projectRepo{store: s} }
