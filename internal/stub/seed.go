package stub

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusworks/examport/internal/model"
)

// Fixture credentials for local development.
const (
	SeedAdminEmail    = "admin@examport.dev"
	SeedAdminPassword = "admin12345"
	SeedStudentPass   = "student123"
)

// SeedStudentMatrics are the matric numbers of the fixture students.
var SeedStudentMatrics = []string{"EPT/2021/001", "EPT/2021/002", "EPT/2021/003"}

var seedStudentNames = []string{"Adaeze Okafor", "Tunde Balogun", "Chiamaka Eze"}

// Seed loads the fixture data set: one admin, three students, one takeable
// MCQ exam and one open-ended exam with a recorded submission so the
// grading/report flow has data from the first run.
func (s *Store) Seed(bcryptCost int) error {
	adminHash, err := bcrypt.GenerateFromPassword([]byte(SeedAdminPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	studentHash, err := bcrypt.GenerateFromPassword([]byte(SeedStudentPass), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash student password: %w", err)
	}

	s.mu.Lock()
	s.admins[SeedAdminEmail] = &adminRecord{email: SeedAdminEmail, passwordHash: string(adminHash)}

	createdAt := now()
	for i, matric := range SeedStudentMatrics {
		s.students[matric] = &studentRecord{
			Student: model.Student{
				ID:        uuid.New().String(),
				MatricNo:  matric,
				FullName:  seedStudentNames[i],
				CreatedAt: createdAt,
				UpdatedAt: createdAt,
				Version:   1,
			},
			passwordHash: string(studentHash),
		}
	}
	s.mu.Unlock()

	s.CreateExam("Introduction to Programming", "CSC101", 30, 5, model.ExamTypeMCQ, "seed.csv")
	oe := s.CreateExam("Software Engineering", "CSC302", 45, 3, model.ExamTypeOE, "seed.csv")

	// One recorded submission so the ungraded listing is non-empty out of
	// the box.
	s.mu.Lock()
	rec := s.exams[oe.ExamID]
	first := s.students[SeedStudentMatrics[0]]
	answers := make(map[string]string)
	for _, q := range rec.questions {
		answers[q.id] = "A seeded open-ended answer."
	}
	rec.responses[first.ID] = answers
	s.mu.Unlock()

	return nil
}
