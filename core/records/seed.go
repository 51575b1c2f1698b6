package records

import "github.com/trezcool/masomo-portal/core/session"

// Seed returns the demo records served by the development API.
// Every call returns fresh slices.
func Seed() Dataset {
	marks := []Mark{
		{
			ID: "1", StudentID: "STU001", StudentName: "Ednah Moraa", SubjectID: "SUB001", SubjectName: "Calculus I",
			ExamType: ExamMidterm, Marks: 85, TotalMarks: 100, Date: "2024-01-15", LecturerID: "LEC001",
			Remarks: "Excellent understanding of concepts",
		},
		{
			ID: "2", StudentID: "STU002", StudentName: "Jane Smith", SubjectID: "SUB002", SubjectName: "General Physics",
			ExamType: ExamFinal, Marks: 78, TotalMarks: 100, Date: "2024-01-20", LecturerID: "LEC002",
			Remarks: "Good performance, room for improvement",
		},
		{
			ID: "3", StudentID: "STU003", StudentName: "Mike Johnson", SubjectID: "SUB003", SubjectName: "General Chemistry",
			ExamType: ExamAssignment, Marks: 92, TotalMarks: 100, Date: "2024-01-18", LecturerID: "LEC003",
			Remarks: "Outstanding work",
		},
	}
	for i := range marks {
		marks[i].Score()
	}

	return Dataset{
		Students: []Student{
			{
				ID: "1", StudentID: "STU001", FirstName: "John", LastName: "Doe", Email: "john.doe@student.com",
				Phone: "+1234567890", DateOfBirth: "2000-05-15", Address: "123 Main St, City, State",
				EnrollmentDate: "2023-09-01", Status: StatusActive,
			},
			{
				ID: "2", StudentID: "STU002", FirstName: "Jane", LastName: "Smith", Email: "jane.smith@student.com",
				Phone: "+1234567891", DateOfBirth: "1999-12-20", Address: "456 Oak Ave, City, State",
				EnrollmentDate: "2023-09-01", Status: StatusActive,
			},
			{
				ID: "3", StudentID: "STU003", FirstName: "Mike", LastName: "Johnson", Email: "mike.johnson@student.com",
				Phone: "+1234567892", DateOfBirth: "2001-03-10", Address: "789 Pine Rd, City, State",
				EnrollmentDate: "2023-09-01", Status: StatusInactive,
			},
		},
		Staff: []Staff{
			{
				ID: "1", StaffID: "STF001", FirstName: "Ednah", Email: "ednahmoraa@school.com", Phone: "+25474567890",
				Department: "Computer Science", Position: "Professor", HireDate: "2020-01-15",
				Role: string(session.RoleLecturer), Status: StatusActive,
			},
			{
				ID: "2", StaffID: "STF002", FirstName: "Cynthia", Email: "cynthia@school.com", Phone: "+25474567891",
				Department: "Physics", Position: "Associate Professor", HireDate: "2019-08-20",
				Role: string(session.RoleLecturer), Status: StatusActive,
			},
			{
				ID: "3", StaffID: "STF003", FirstName: "Michael", Email: "michael@school.com", Phone: "+25474567892",
				Department: "Administration", Position: "Academic Coordinator", HireDate: "2021-03-10",
				Role: string(session.RoleAdmin), Status: StatusActive,
			},
		},
		Lecturers: []Lecturer{
			{
				ID: "LEC001", Name: "Dr. Elena Moreau", Email: "elena.moreau@university.edu", Department: "Computer Science",
				Courses: []string{"Data Structures", "Algorithms", "Software Engineering"}, Status: StatusActive,
			},
			{
				ID: "LEC002", Name: "Dr. Sarah", Email: "sarah@university.edu", Department: "Mathematics",
				Courses: []string{"Calculus I", "Linear Algebra"}, Status: StatusActive,
			},
			{
				ID: "LEC003", Name: "Dr. Michael", Email: "michael.chen@university.edu", Department: "Physics",
				Courses: []string{"Quantum Mechanics", "Thermodynamics"}, Status: StatusInactive,
			},
		},
		Lectures: []Lecture{
			{
				ID: "1", SubjectID: "SUB001", SubjectName: "Calculus I", LecturerID: "LEC001", LecturerName: "Dr. Edna Moraa",
				Title: "Introduction to Derivatives", Description: "Basic concepts of derivatives and their applications",
				Date: "2024-01-15", StartTime: "09:00", EndTime: "10:30", Room: "Room 101", Status: LectureScheduled,
			},
			{
				ID: "2", SubjectID: "SUB002", SubjectName: "Digital electronics", LecturerID: "LEC002", LecturerName: "Prof. Sarah Johnson",
				Title:       "Logic Gates and Circuits",
				Description: "Understanding basic logic gates and their applications in digital circuits",
				Date:        "2024-01-15", StartTime: "14:00", EndTime: "15:30", Room: "Room 205", Status: LectureCompleted,
			},
			{
				ID: "3", SubjectID: "SUB003", SubjectName: "Software Engineering", LecturerID: "LEC003", LecturerName: "Dr. Michael Brown",
				Title:       "SRS and Design Principles",
				Description: "Types of Software Requirements Specifications and design principles",
				Date:        "2024-01-16", StartTime: "11:00", EndTime: "12:30", Room: "Lab 301", Status: LectureCancelled,
			},
		},
		Subjects: []Subject{
			{
				ID: "SUB001", Code: "MATH101", Name: "Calculus I", Description: "Introduction to differential and integral calculus",
				Credits: 3, Department: "Mathematics", Semester: 1, LecturerID: "LEC001", LecturerName: "Dr. John Smith",
				Status: StatusActive,
			},
			{
				ID: "SUB002", Code: "PHYS201", Name: "General Physics", Description: "Fundamentals of mechanics, waves, and thermodynamics",
				Credits: 4, Department: "Physics", Semester: 2, LecturerID: "LEC002", LecturerName: "Prof. Sarah Johnson",
				Status: StatusActive,
			},
			{
				ID: "SUB003", Code: "CHEM101", Name: "General Chemistry", Description: "Basic principles of chemistry and chemical reactions",
				Credits: 3, Department: "Chemistry", Semester: 1, LecturerID: "LEC003", LecturerName: "Dr. Michael Brown",
				Status: StatusInactive,
			},
		},
		Marks: marks,
	}
}
