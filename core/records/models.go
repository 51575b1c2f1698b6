package records

import (
	"math"
)

// Statuses and exam types
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusGraduated = "graduated"

	LectureScheduled = "scheduled"
	LectureCompleted = "completed"
	LectureCancelled = "cancelled"

	ExamMidterm    = "midterm"
	ExamFinal      = "final"
	ExamAssignment = "assignment"
	ExamQuiz       = "quiz"
)

type Student struct {
	ID             string `json:"id" form:"-"`
	StudentID      string `json:"studentId" form:"studentId" validate:"notblank"`
	FirstName      string `json:"firstName" form:"firstName" validate:"notblank"`
	LastName       string `json:"lastName" form:"lastName" validate:"notblank"`
	Email          string `json:"email" form:"email" validate:"required,email"`
	Phone          string `json:"phone" form:"phone"`
	DateOfBirth    string `json:"dateOfBirth" form:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Address        string `json:"address" form:"address"`
	EnrollmentDate string `json:"enrollmentDate" form:"enrollmentDate" validate:"omitempty,datetime=2006-01-02"`
	Status         string `json:"status" form:"status" validate:"required,oneof=active inactive graduated"`
}

func (s Student) RecordID() string { return s.ID }

func (s Student) WithRecordID(id string) Student {
	s.ID = id
	return s
}

func (s Student) FullName() string { return s.FirstName + " " + s.LastName }

type Staff struct {
	ID         string `json:"id" form:"-"`
	StaffID    string `json:"staffId" form:"staffId" validate:"notblank"`
	FirstName  string `json:"firstName" form:"firstName" validate:"notblank"`
	LastName   string `json:"lastName" form:"lastName"`
	Email      string `json:"email" form:"email" validate:"required,email"`
	Phone      string `json:"phone" form:"phone"`
	Department string `json:"department" form:"department" validate:"notblank"`
	Position   string `json:"position" form:"position" validate:"notblank"`
	HireDate   string `json:"hireDate" form:"hireDate" validate:"omitempty,datetime=2006-01-02"`
	Role       string `json:"role" form:"role" validate:"required,oneof=admin lecturer student"`
	Status     string `json:"status" form:"status" validate:"required,oneof=active inactive"`
}

func (s Staff) RecordID() string { return s.ID }

func (s Staff) WithRecordID(id string) Staff {
	s.ID = id
	return s
}

type Lecturer struct {
	ID         string   `json:"id" form:"-"`
	Name       string   `json:"name" form:"name" validate:"notblank"`
	Email      string   `json:"email" form:"email" validate:"required,email"`
	Department string   `json:"department" form:"department" validate:"notblank"`
	Courses    []string `json:"courses" form:"courses"`
	Status     string   `json:"status" form:"status" validate:"required,oneof=active inactive"`
}

func (l Lecturer) RecordID() string { return l.ID }

func (l Lecturer) WithRecordID(id string) Lecturer {
	l.ID = id
	return l
}

type Lecture struct {
	ID           string `json:"id" form:"-"`
	SubjectID    string `json:"subjectId" form:"subjectId" validate:"notblank"`
	SubjectName  string `json:"subjectName" form:"subjectName" validate:"notblank"`
	LecturerID   string `json:"lecturerId" form:"lecturerId"`
	LecturerName string `json:"lecturerName" form:"lecturerName" validate:"notblank"`
	Title        string `json:"title" form:"title" validate:"notblank"`
	Description  string `json:"description" form:"description"`
	Date         string `json:"date" form:"date" validate:"required,datetime=2006-01-02"`
	StartTime    string `json:"startTime" form:"startTime" validate:"required,datetime=15:04"`
	EndTime      string `json:"endTime" form:"endTime" validate:"required,datetime=15:04"`
	Room         string `json:"room" form:"room" validate:"notblank"`
	Status       string `json:"status" form:"status" validate:"required,oneof=scheduled completed cancelled"`
}

func (l Lecture) RecordID() string { return l.ID }

func (l Lecture) WithRecordID(id string) Lecture {
	l.ID = id
	return l
}

// StartsAt is the sortable "date start-time" key of the lecture.
func (l Lecture) StartsAt() string { return l.Date + "T" + l.StartTime }

type Subject struct {
	ID           string `json:"id" form:"-"`
	Code         string `json:"code" form:"code" validate:"notblank"`
	Name         string `json:"name" form:"name" validate:"notblank"`
	Description  string `json:"description" form:"description"`
	Credits      int    `json:"credits" form:"credits" validate:"min=0"`
	Department   string `json:"department" form:"department" validate:"notblank"`
	Semester     int    `json:"semester" form:"semester" validate:"min=1"`
	LecturerID   string `json:"lecturerId" form:"lecturerId"`
	LecturerName string `json:"lecturerName" form:"lecturerName"`
	Status       string `json:"status" form:"status" validate:"required,oneof=active inactive"`
}

func (s Subject) RecordID() string { return s.ID }

func (s Subject) WithRecordID(id string) Subject {
	s.ID = id
	return s
}

type Mark struct {
	ID          string `json:"id" form:"-"`
	StudentID   string `json:"studentId" form:"studentId" validate:"notblank"`
	StudentName string `json:"studentName" form:"studentName" validate:"notblank"`
	SubjectID   string `json:"subjectId" form:"subjectId" validate:"notblank"`
	SubjectName string `json:"subjectName" form:"subjectName" validate:"notblank"`
	ExamType    string `json:"examType" form:"examType" validate:"required,oneof=midterm final assignment quiz"`
	Marks       int    `json:"marks" form:"marks" validate:"min=0,ltefield=TotalMarks"`
	TotalMarks  int    `json:"totalMarks" form:"totalMarks" validate:"min=1"`
	Percentage  int    `json:"percentage" form:"-"`
	Grade       string `json:"grade" form:"-"`
	Date        string `json:"date" form:"date" validate:"required,datetime=2006-01-02"`
	LecturerID  string `json:"lecturerId" form:"lecturerId"`
	Remarks     string `json:"remarks,omitempty" form:"remarks"`
}

func (m Mark) RecordID() string { return m.ID }

func (m Mark) WithRecordID(id string) Mark {
	m.ID = id
	return m
}

// Grade scale, highest first.
var gradeScale = []struct {
	min   int
	grade string
}{
	{90, "A+"}, {85, "A"}, {80, "B+"}, {75, "B"}, {70, "C+"}, {65, "C"}, {60, "D"},
}

// GradeFor converts a percentage to a letter grade.
func GradeFor(percentage int) string {
	for _, g := range gradeScale {
		if percentage >= g.min {
			return g.grade
		}
	}
	return "F"
}

// Score derives the rounded percentage and the grade from the raw marks.
func (m *Mark) Score() {
	if m.TotalMarks <= 0 {
		m.Percentage = 0
	} else {
		m.Percentage = int(math.Round(float64(m.Marks) / float64(m.TotalMarks) * 100))
	}
	m.Grade = GradeFor(m.Percentage)
}
