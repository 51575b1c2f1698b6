package user

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/session"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrStudentIDExists    = errors.New("a user with this student id already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// DemoPassword is the password of the demo accounts.
const DemoPassword = "password"

type (
	Repository interface {
		// CheckUniqueness returns ErrEmailExists or ErrStudentIDExists when taken.
		CheckUniqueness(email, studentID string) error
		CreateUser(usr User) (User, error)
		QueryAllUsers() ([]User, error)
		GetUserByID(id string) (User, error)
		GetUserByEmail(email string) (User, error)
		SetLastLogin(id string, at time.Time) (User, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) checkUniqueness(email, studentID string) error {
	if err := svc.repo.CheckUniqueness(email, studentID); err != nil {
		var field string
		switch err {
		case ErrEmailExists:
			field = "email"
		case ErrStudentIDExists:
			field = "studentId"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

// Register validates and creates a new account.
func (svc *Service) Register(nu NewUser) (User, error) {
	nu.Clean()
	if err := svc.validate.Struct(nu); err != nil {
		return User{}, err
	}
	if err := svc.checkUniqueness(nu.Email, nu.StudentID); err != nil {
		return User{}, err
	}
	return svc.create(nu)
}

func (svc *Service) create(nu NewUser) (User, error) {
	usr := User{
		Email:     nu.Email,
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		Role:      nu.Role,
		StudentID: nu.StudentID,
		CreatedAt: NowFunc().UTC(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(usr)
}

// Authenticate checks the credentials and records the login.
// Unknown emails and wrong passwords both give ErrInvalidCredentials.
func (svc *Service) Authenticate(email, pwd string) (User, error) {
	usr, err := svc.GetByEmail(email)
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return svc.repo.SetLastLogin(usr.ID, NowFunc().UTC())
}

func (svc *Service) QueryAll() ([]User, error) {
	return svc.repo.QueryAllUsers()
}

func (svc *Service) GetByID(id string) (User, error) {
	return svc.repo.GetUserByID(id)
}

func (svc *Service) GetByEmail(email string) (User, error) {
	return svc.repo.GetUserByEmail(core.CleanString(email, true /* lower */))
}

// DemoAccounts are the accounts the development API starts with, one per role.
// Their names match the seeded records.
func DemoAccounts() []NewUser {
	return []NewUser{
		{FirstName: "Jane", LastName: "Doe", Email: "admin@school.com", Role: string(session.RoleAdmin)},
		{FirstName: "Sarah", LastName: "Johnson", Email: "lecturer@school.com", Role: string(session.RoleLecturer)},
		{FirstName: "Jane", LastName: "Smith", Email: "student@school.com", Role: string(session.RoleStudent), StudentID: "STU002"},
	}
}

// SeedDemoAccounts creates the missing demo accounts, bypassing the password policy.
func (svc *Service) SeedDemoAccounts() error {
	for _, nu := range DemoAccounts() {
		if _, err := svc.GetByEmail(nu.Email); err == nil {
			continue
		} else if err != ErrNotFound {
			return err
		}
		nu.Password = DemoPassword
		if _, err := svc.create(nu); err != nil {
			return err
		}
	}
	return nil
}
