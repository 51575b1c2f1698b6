package records

import (
	"sort"
	"strings"

	"github.com/trezcool/masomo-portal/core/session"
)

const recentMarksLimit = 5

// Greeting returns the salutation for the hour of day (0-23).
func Greeting(hour int) string {
	switch {
	case hour < 12:
		return "Good morning"
	case hour < 17:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

type SubjectShare struct {
	Subject  string
	Students int
}

type AdminStats struct {
	TotalStudents    int
	ActiveStudents   int
	TotalStaff       int
	TotalSubjects    int
	TotalLectures    int
	UpcomingLectures int
	ActiveLecturers  int
	MarksUploaded    int
	AverageRecent    int
	Distribution     []SubjectShare
	RecentMarks      []Mark
}

// Dataset is everything the dashboards are computed from.
type Dataset struct {
	Students  []Student
	Staff     []Staff
	Lecturers []Lecturer
	Lectures  []Lecture
	Subjects  []Subject
	Marks     []Mark
}

func AdminDashboard(data Dataset) AdminStats {
	stats := AdminStats{
		TotalStudents: len(data.Students),
		TotalStaff:    len(data.Staff),
		TotalSubjects: len(data.Subjects),
		TotalLectures: len(data.Lectures),
		MarksUploaded: len(data.Marks),
	}
	for _, s := range data.Students {
		if s.Status == StatusActive {
			stats.ActiveStudents++
		}
	}
	for _, l := range data.Lecturers {
		if l.Status == StatusActive {
			stats.ActiveLecturers++
		}
	}
	stats.UpcomingLectures = len(UpcomingLectures(data.Lectures))
	stats.RecentMarks = RecentMarks(data.Marks, recentMarksLimit)
	stats.AverageRecent = SummarizeMarks(stats.RecentMarks).Average
	stats.Distribution = SubjectDistribution(data.Marks)
	return stats
}

// UpcomingLectures returns the scheduled lectures from today on, earliest first.
func UpcomingLectures(lectures []Lecture) []Lecture {
	today := NowFunc().Format(dateLayout)
	out := make([]Lecture, 0, len(lectures))
	for _, l := range lectures {
		if l.Status == LectureScheduled && l.Date >= today {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartsAt() < out[j].StartsAt() })
	return out
}

// RecentMarks returns at most `limit` marks, latest date first.
func RecentMarks(marks []Mark, limit int) []Mark {
	out := append([]Mark(nil), marks...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SubjectDistribution counts the distinct students with marks in each subject.
func SubjectDistribution(marks []Mark) []SubjectShare {
	students := make(map[string]map[string]bool)
	for _, m := range marks {
		if students[m.SubjectName] == nil {
			students[m.SubjectName] = make(map[string]bool)
		}
		students[m.SubjectName][m.StudentID] = true
	}

	shares := make([]SubjectShare, 0, len(students))
	for subject, ids := range students {
		shares = append(shares, SubjectShare{Subject: subject, Students: len(ids)})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Students != shares[j].Students {
			return shares[i].Students > shares[j].Students
		}
		return shares[i].Subject < shares[j].Subject
	})
	return shares
}

type LecturerStats struct {
	Lectures []Lecture // upcoming first
	Subjects []Subject
	Marks    []Mark
	Grades   GradeBands
}

// GradeBands counts marks per band of the grade scale.
type GradeBands struct {
	A      int
	B      int
	C      int
	BelowC int
}

func BandsOf(marks []Mark) GradeBands {
	var bands GradeBands
	for _, m := range marks {
		switch strings.TrimRight(m.Grade, "+") {
		case "A":
			bands.A++
		case "B":
			bands.B++
		case "C":
			bands.C++
		default:
			bands.BelowC++
		}
	}
	return bands
}

func LecturerDashboard(data Dataset, ident session.Identity) LecturerStats {
	name := ident.FullName()
	teaches := func(lecturerName string) bool {
		return name != "" && strings.Contains(lecturerName, name)
	}

	var stats LecturerStats
	var upcoming, past []Lecture
	today := NowFunc().Format(dateLayout)
	for _, l := range data.Lectures {
		if !teaches(l.LecturerName) {
			continue
		}
		if l.Date >= today {
			upcoming = append(upcoming, l)
		} else {
			past = append(past, l)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].StartsAt() < upcoming[j].StartsAt() })
	sort.SliceStable(past, func(i, j int) bool { return past[i].StartsAt() > past[j].StartsAt() })
	stats.Lectures = append(upcoming, past...)

	subjectIDs := make(map[string]bool)
	for _, s := range data.Subjects {
		if teaches(s.LecturerName) {
			stats.Subjects = append(stats.Subjects, s)
			subjectIDs[s.ID] = true
			subjectIDs[s.Code] = true
		}
	}
	for _, m := range data.Marks {
		if subjectIDs[m.SubjectID] {
			stats.Marks = append(stats.Marks, m)
		}
	}
	stats.Grades = BandsOf(stats.Marks)
	return stats
}

type StudentStats struct {
	Marks            []Mark
	Summary          MarksSummary
	AverageGrade     string
	UpcomingLectures []Lecture
}

func StudentDashboard(data Dataset, ident session.Identity) StudentStats {
	marks := RecentMarks(MarksOf(data.Marks, ident), len(data.Marks))
	summary := SummarizeMarks(marks)
	stats := StudentStats{
		Marks:            marks,
		Summary:          summary,
		UpcomingLectures: UpcomingLectures(data.Lectures),
	}
	if summary.Count > 0 {
		stats.AverageGrade = GradeFor(summary.Average)
	}
	return stats
}
