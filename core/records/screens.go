package records

import (
	"strconv"
	"strings"
	"time"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/session"
)

// NowFunc is the clock of the date filters and the dashboards.
var NowFunc = time.Now // mockable

const dateLayout = "2006-01-02"

var (
	adminOnly = []session.Role{session.RoleAdmin}
	staffOnly = []session.Role{session.RoleAdmin, session.RoleLecturer}

	statusOptions = []Option{
		{Value: StatusActive, Label: "Active"},
		{Value: StatusInactive, Label: "Inactive"},
	}
	roleOptions = []Option{
		{Value: string(session.RoleAdmin), Label: "Admin"},
		{Value: string(session.RoleLecturer), Label: "Lecturer"},
		{Value: string(session.RoleStudent), Label: "Student"},
	}
)

func equals(value string) func(string) bool {
	return func(s string) bool { return s == value }
}

func StudentsScreen() *Screen[Student] {
	return &Screen[Student]{
		Name:     "Students",
		Singular: "Student",
		Subtitle: "Manage student information and enrollment",
		Route:    "/students",
		Icon:     "users",
		Search: []func(Student) string{
			func(s Student) string { return s.FirstName },
			func(s Student) string { return s.LastName },
			func(s Student) string { return s.StudentID },
			func(s Student) string { return s.Email },
		},
		Filters: []Filter[Student]{
			{
				Param: "status",
				Label: "Status",
				Options: []Option{
					{Value: StatusActive, Label: "Active"},
					{Value: StatusInactive, Label: "Inactive"},
					{Value: StatusGraduated, Label: "Graduated"},
				},
				Match: func(s Student, v string) bool { return s.Status == v },
			},
		},
		Columns: []Column[Student]{
			{Label: "Student ID", Value: func(s Student) string { return s.StudentID }},
			{Label: "Name", Value: Student.FullName},
			{Label: "Email", Value: func(s Student) string { return s.Email }},
			{Label: "Phone", Value: func(s Student) string { return s.Phone }},
			{Label: "Enrolled", Value: func(s Student) string { return s.EnrollmentDate }},
			{Label: "Status", Value: func(s Student) string { return s.Status }},
		},
		Fields: []Field{
			{Name: "studentId", Label: "Student ID", Type: FieldText},
			{Name: "firstName", Label: "First Name", Type: FieldText},
			{Name: "lastName", Label: "Last Name", Type: FieldText},
			{Name: "email", Label: "Email", Type: FieldEmail},
			{Name: "phone", Label: "Phone", Type: FieldText},
			{Name: "dateOfBirth", Label: "Date of Birth", Type: FieldDate},
			{Name: "address", Label: "Address", Type: FieldTextarea},
			{Name: "enrollmentDate", Label: "Enrollment Date", Type: FieldDate},
			{Name: "status", Label: "Status", Type: FieldSelect, Options: []Option{
				{Value: StatusActive, Label: "Active"},
				{Value: StatusInactive, Label: "Inactive"},
				{Value: StatusGraduated, Label: "Graduated"},
			}},
		},
		Editors: adminOnly,
		Prepare: func(s *Student) {
			s.StudentID = core.CleanString(s.StudentID)
			s.FirstName = core.CleanString(s.FirstName)
			s.LastName = core.CleanString(s.LastName)
			s.Email = core.CleanString(s.Email, true /* lower */)
			if s.Status == "" {
				s.Status = StatusActive
			}
		},
	}
}

func StaffScreen() *Screen[Staff] {
	return &Screen[Staff]{
		Name:     "Staff",
		Singular: "Staff Member",
		Subtitle: "Manage staff members and their roles",
		Route:    "/staff",
		Icon:     "user-check",
		Search: []func(Staff) string{
			func(s Staff) string { return s.FirstName },
			func(s Staff) string { return s.LastName },
			func(s Staff) string { return s.StaffID },
			func(s Staff) string { return s.Email },
			func(s Staff) string { return s.Position },
		},
		Filters: []Filter[Staff]{
			{
				Param:       "department",
				Label:       "Department",
				OptionsFrom: func(items []Staff) []string { return distinct(items, func(s Staff) string { return s.Department }) },
				Match:       func(s Staff, v string) bool { return s.Department == v },
			},
			{
				Param:   "role",
				Label:   "Role",
				Options: roleOptions,
				Match:   func(s Staff, v string) bool { return s.Role == v },
			},
		},
		Columns: []Column[Staff]{
			{Label: "Staff ID", Value: func(s Staff) string { return s.StaffID }},
			{Label: "Name", Value: func(s Staff) string { return strings.TrimSpace(s.FirstName + " " + s.LastName) }},
			{Label: "Email", Value: func(s Staff) string { return s.Email }},
			{Label: "Department", Value: func(s Staff) string { return s.Department }},
			{Label: "Position", Value: func(s Staff) string { return s.Position }},
			{Label: "Role", Value: func(s Staff) string { return s.Role }},
			{Label: "Status", Value: func(s Staff) string { return s.Status }},
		},
		Fields: []Field{
			{Name: "staffId", Label: "Staff ID", Type: FieldText},
			{Name: "firstName", Label: "First Name", Type: FieldText},
			{Name: "lastName", Label: "Last Name", Type: FieldText},
			{Name: "email", Label: "Email", Type: FieldEmail},
			{Name: "phone", Label: "Phone", Type: FieldText},
			{Name: "department", Label: "Department", Type: FieldText},
			{Name: "position", Label: "Position", Type: FieldText},
			{Name: "hireDate", Label: "Hire Date", Type: FieldDate},
			{Name: "role", Label: "Role", Type: FieldSelect, Options: roleOptions},
			{Name: "status", Label: "Status", Type: FieldSelect, Options: statusOptions},
		},
		Editors: adminOnly,
		Prepare: func(s *Staff) {
			s.StaffID = core.CleanString(s.StaffID)
			s.FirstName = core.CleanString(s.FirstName)
			s.LastName = core.CleanString(s.LastName)
			s.Email = core.CleanString(s.Email, true /* lower */)
			s.Department = core.CleanString(s.Department)
			s.Position = core.CleanString(s.Position)
			s.Role = string(session.NormalizeRole(s.Role))
			if s.Status == "" {
				s.Status = StatusActive
			}
		},
	}
}

func LecturersScreen() *Screen[Lecturer] {
	return &Screen[Lecturer]{
		Name:     "Lecturers",
		Singular: "Lecturer",
		Subtitle: "Manage lecturers and the courses they teach",
		Route:    "/lecturers",
		Icon:     "user",
		Search: []func(Lecturer) string{
			func(l Lecturer) string { return l.Name },
			func(l Lecturer) string { return l.Email },
			func(l Lecturer) string { return l.Department },
		},
		Filters: []Filter[Lecturer]{
			{
				Param:   "status",
				Label:   "Status",
				Options: statusOptions,
				Match:   func(l Lecturer, v string) bool { return l.Status == v },
			},
			{
				Param:       "department",
				Label:       "Department",
				OptionsFrom: func(items []Lecturer) []string { return distinct(items, func(l Lecturer) string { return l.Department }) },
				Match:       func(l Lecturer, v string) bool { return l.Department == v },
			},
		},
		Columns: []Column[Lecturer]{
			{Label: "Name", Value: func(l Lecturer) string { return l.Name }},
			{Label: "Email", Value: func(l Lecturer) string { return l.Email }},
			{Label: "Department", Value: func(l Lecturer) string { return l.Department }},
			{Label: "Courses", Value: func(l Lecturer) string { return strings.Join(l.Courses, ", ") }},
			{Label: "Status", Value: func(l Lecturer) string { return l.Status }},
		},
		Fields: []Field{
			{Name: "name", Label: "Name", Type: FieldText},
			{Name: "email", Label: "Email", Type: FieldEmail},
			{Name: "department", Label: "Department", Type: FieldText},
			{Name: "courses", Label: "Courses (comma separated)", Type: FieldText},
			{Name: "status", Label: "Status", Type: FieldSelect, Options: statusOptions},
		},
		Editors: adminOnly,
		Prepare: func(l *Lecturer) {
			l.Name = core.CleanString(l.Name)
			l.Email = core.CleanString(l.Email, true /* lower */)
			l.Department = core.CleanString(l.Department)
			l.Courses = splitList(l.Courses)
			if l.Status == "" {
				l.Status = StatusActive
			}
		},
	}
}

func LecturesScreen() *Screen[Lecture] {
	return &Screen[Lecture]{
		Name:     "Lectures",
		Singular: "Lecture",
		Subtitle: "Manage lecture schedules and sessions",
		Route:    "/lectures",
		Icon:     "calendar",
		Search: []func(Lecture) string{
			func(l Lecture) string { return l.Title },
			func(l Lecture) string { return l.SubjectName },
			func(l Lecture) string { return l.LecturerName },
			func(l Lecture) string { return l.Room },
		},
		Filters: []Filter[Lecture]{
			{
				Param: "status",
				Label: "Status",
				Options: []Option{
					{Value: LectureScheduled, Label: "Scheduled"},
					{Value: LectureCompleted, Label: "Completed"},
					{Value: LectureCancelled, Label: "Cancelled"},
				},
				Match: func(l Lecture, v string) bool { return l.Status == v },
			},
			{
				Param: "date",
				Label: "Date",
				Options: []Option{
					{Value: "today", Label: "Today"},
					{Value: "this_week", Label: "This Week"},
					{Value: "this_month", Label: "This Month"},
				},
				Match: func(l Lecture, v string) bool { return InDateWindow(l.Date, v, NowFunc()) },
			},
		},
		Less: func(a, b Lecture) bool { return a.StartsAt() < b.StartsAt() },
		Columns: []Column[Lecture]{
			{Label: "Title", Value: func(l Lecture) string { return l.Title }},
			{Label: "Subject", Value: func(l Lecture) string { return l.SubjectName }},
			{Label: "Lecturer", Value: func(l Lecture) string { return l.LecturerName }},
			{Label: "Date", Value: func(l Lecture) string { return l.Date }},
			{Label: "Time", Value: func(l Lecture) string { return l.StartTime + " - " + l.EndTime }},
			{Label: "Room", Value: func(l Lecture) string { return l.Room }},
			{Label: "Status", Value: func(l Lecture) string { return l.Status }},
		},
		Fields: []Field{
			{Name: "title", Label: "Title", Type: FieldText},
			{Name: "subjectId", Label: "Subject ID", Type: FieldText},
			{Name: "subjectName", Label: "Subject", Type: FieldText},
			{Name: "lecturerId", Label: "Lecturer ID", Type: FieldText},
			{Name: "lecturerName", Label: "Lecturer", Type: FieldText},
			{Name: "description", Label: "Description", Type: FieldTextarea},
			{Name: "date", Label: "Date", Type: FieldDate},
			{Name: "startTime", Label: "Start Time", Type: FieldTime},
			{Name: "endTime", Label: "End Time", Type: FieldTime},
			{Name: "room", Label: "Room", Type: FieldText},
			{Name: "status", Label: "Status", Type: FieldSelect, Options: []Option{
				{Value: LectureScheduled, Label: "Scheduled"},
				{Value: LectureCompleted, Label: "Completed"},
				{Value: LectureCancelled, Label: "Cancelled"},
			}},
		},
		Editors: staffOnly,
		Prepare: func(l *Lecture) {
			l.Title = core.CleanString(l.Title)
			l.SubjectName = core.CleanString(l.SubjectName)
			l.LecturerName = core.CleanString(l.LecturerName)
			l.Room = core.CleanString(l.Room)
			if l.Status == "" {
				l.Status = LectureScheduled
			}
		},
	}
}

// InDateWindow reports whether `date` (YYYY-MM-DD) is within the window around `now`:
// "today", "this_week" (Sunday to Saturday) or "this_month". Other windows match everything.
func InDateWindow(date, window string, now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var from, to time.Time
	switch window {
	case "today":
		from, to = today, today
	case "this_week":
		from = today.AddDate(0, 0, -int(today.Weekday()))
		to = from.AddDate(0, 0, 6)
	case "this_month":
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		to = from.AddDate(0, 1, -1)
	default:
		return true
	}
	return date >= from.Format(dateLayout) && date <= to.Format(dateLayout)
}

func SubjectsScreen() *Screen[Subject] {
	return &Screen[Subject]{
		Name:     "Subjects",
		Singular: "Subject",
		Subtitle: "Manage subjects and course information",
		Route:    "/subjects",
		Icon:     "book-marked",
		Search: []func(Subject) string{
			func(s Subject) string { return s.Name },
			func(s Subject) string { return s.Code },
			func(s Subject) string { return s.LecturerName },
			func(s Subject) string { return s.Department },
		},
		Filters: []Filter[Subject]{
			{
				Param:       "department",
				Label:       "Department",
				OptionsFrom: func(items []Subject) []string { return distinct(items, func(s Subject) string { return s.Department }) },
				Match:       func(s Subject, v string) bool { return s.Department == v },
			},
			{
				Param:   "status",
				Label:   "Status",
				Options: statusOptions,
				Match:   func(s Subject, v string) bool { return s.Status == v },
			},
		},
		Columns: []Column[Subject]{
			{Label: "Code", Value: func(s Subject) string { return s.Code }},
			{Label: "Name", Value: func(s Subject) string { return s.Name }},
			{Label: "Department", Value: func(s Subject) string { return s.Department }},
			{Label: "Credits", Value: func(s Subject) string { return strconv.Itoa(s.Credits) }},
			{Label: "Semester", Value: func(s Subject) string { return strconv.Itoa(s.Semester) }},
			{Label: "Lecturer", Value: func(s Subject) string { return s.LecturerName }},
			{Label: "Status", Value: func(s Subject) string { return s.Status }},
		},
		Fields: []Field{
			{Name: "code", Label: "Code", Type: FieldText},
			{Name: "name", Label: "Name", Type: FieldText},
			{Name: "description", Label: "Description", Type: FieldTextarea},
			{Name: "credits", Label: "Credits", Type: FieldNumber},
			{Name: "department", Label: "Department", Type: FieldText},
			{Name: "semester", Label: "Semester", Type: FieldNumber},
			{Name: "lecturerId", Label: "Lecturer ID", Type: FieldText},
			{Name: "lecturerName", Label: "Lecturer", Type: FieldText},
			{Name: "status", Label: "Status", Type: FieldSelect, Options: statusOptions},
		},
		Editors: staffOnly,
		Prepare: func(s *Subject) {
			s.Code = strings.ToUpper(core.CleanString(s.Code))
			s.Name = core.CleanString(s.Name)
			s.Department = core.CleanString(s.Department)
			s.LecturerName = core.CleanString(s.LecturerName)
			if s.Status == "" {
				s.Status = StatusActive
			}
		},
	}
}

func MarksScreen() *Screen[Mark] {
	examOptions := []Option{
		{Value: ExamMidterm, Label: "Midterm"},
		{Value: ExamFinal, Label: "Final"},
		{Value: ExamAssignment, Label: "Assignment"},
		{Value: ExamQuiz, Label: "Quiz"},
	}
	gradeOptions := make([]Option, 0, len(gradeScale)+1)
	for _, g := range gradeScale {
		gradeOptions = append(gradeOptions, Option{Value: g.grade, Label: g.grade})
	}
	gradeOptions = append(gradeOptions, Option{Value: "F", Label: "F"})

	return &Screen[Mark]{
		Name:     "Marks",
		Singular: "Mark",
		Subtitle: "Manage student marks and grades",
		Route:    "/marks",
		Icon:     "graduation-cap",
		Search: []func(Mark) string{
			func(m Mark) string { return m.StudentName },
			func(m Mark) string { return m.SubjectName },
			func(m Mark) string { return m.Grade },
		},
		Filters: []Filter[Mark]{
			{Param: "examType", Label: "Exam Type", Options: examOptions, Match: func(m Mark, v string) bool { return m.ExamType == v }},
			{Param: "grade", Label: "Grade", Options: gradeOptions, Match: func(m Mark, v string) bool { return m.Grade == v }},
		},
		Scope: MarksOf,
		Columns: []Column[Mark]{
			{Label: "Student", Value: func(m Mark) string { return m.StudentName }},
			{Label: "Subject", Value: func(m Mark) string { return m.SubjectName }},
			{Label: "Exam", Value: func(m Mark) string { return m.ExamType }},
			{Label: "Score", Value: func(m Mark) string {
				return strconv.Itoa(m.Marks) + "/" + strconv.Itoa(m.TotalMarks) + " (" + strconv.Itoa(m.Percentage) + "%)"
			}},
			{Label: "Grade", Value: func(m Mark) string { return m.Grade }},
			{Label: "Date", Value: func(m Mark) string { return m.Date }},
		},
		Fields: []Field{
			{Name: "studentId", Label: "Student ID", Type: FieldText},
			{Name: "studentName", Label: "Student", Type: FieldText},
			{Name: "subjectId", Label: "Subject ID", Type: FieldText},
			{Name: "subjectName", Label: "Subject", Type: FieldText},
			{Name: "examType", Label: "Exam Type", Type: FieldSelect, Options: examOptions},
			{Name: "marks", Label: "Marks", Type: FieldNumber},
			{Name: "totalMarks", Label: "Total Marks", Type: FieldNumber},
			{Name: "date", Label: "Date", Type: FieldDate},
			{Name: "lecturerId", Label: "Lecturer ID", Type: FieldText},
			{Name: "remarks", Label: "Remarks", Type: FieldTextarea},
		},
		Editors: staffOnly,
		Prepare: func(m *Mark) {
			m.StudentName = core.CleanString(m.StudentName)
			m.SubjectName = core.CleanString(m.SubjectName)
			if m.Date == "" {
				m.Date = NowFunc().Format(dateLayout)
			}
			m.Score()
		},
	}
}

// MarksOf keeps, for a student, the marks whose student name contains their full name.
// Other roles see every mark.
func MarksOf(marks []Mark, ident session.Identity) []Mark {
	if ident.Role != session.RoleStudent {
		return marks
	}
	fullName := ident.FirstName + " " + ident.LastName
	out := make([]Mark, 0, len(marks))
	for _, m := range marks {
		if strings.Contains(m.StudentName, fullName) {
			out = append(out, m)
		}
	}
	return out
}

// MarksSummary is the statistics strip of the marks screen.
type MarksSummary struct {
	Count   int
	Average int // rounded mean percentage
	Highest int
}

func SummarizeMarks(marks []Mark) MarksSummary {
	if len(marks) == 0 {
		return MarksSummary{}
	}
	var sum int
	summary := MarksSummary{Count: len(marks)}
	for _, m := range marks {
		sum += m.Percentage
		if m.Percentage > summary.Highest {
			summary.Highest = m.Percentage
		}
	}
	summary.Average = roundDiv(sum, len(marks))
	return summary
}

func roundDiv(sum, n int) int {
	return int(float64(sum)/float64(n) + 0.5)
}
