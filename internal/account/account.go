// Package account registers campus users, checks their credentials and
// issues the session tokens the HTTP layer authenticates with.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"campusvoice/backend/internal/apperr"
	"campusvoice/backend/internal/config"
	"campusvoice/backend/internal/models"
	"campusvoice/backend/internal/storage"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	ErrInactive           = fmt.Errorf("%w: account is inactive", apperr.ErrUnauthorized)
)

// Duplicate registrations fail with a *apperr.ValidationError wrapping one
// of these.
var (
	ErrEnrollmentTaken = errors.New("enrollment number already registered")
	ErrCollegeIDTaken  = errors.New("college id already registered")
	ErrUsernameTaken   = errors.New("username already registered")
)

var takenMessages = map[error]string{
	ErrEnrollmentTaken: "Enrollment number already registered.",
	ErrCollegeIDTaken:  "College ID already registered.",
	ErrUsernameTaken:   "Username already registered.",
}

type Service struct {
	Storage    storage.Storage
	secret     []byte
	ttl        time.Duration
	bcryptCost int
	validate   *validator.Validate
	now        func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithBcryptCost lowers the hashing cost, for tests.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

func NewService(s storage.Storage, cfg config.Auth, opts ...Option) *Service {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	svc := &Service{
		Storage:    s,
		secret:     []byte(cfg.JWTSecret),
		ttl:        cfg.TokenTTL,
		bcryptCost: bcrypt.DefaultCost,
		validate:   v,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *Service) check(in any) error {
	if err := s.validate.Struct(in); err != nil {
		return apperr.FromValidator(err)
	}
	return nil
}

func (s *Service) hash(password string) ([]byte, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return h, nil
}

func (s *Service) ensureFree(ctx context.Context, username, field string, taken error) error {
	exists, err := s.Storage.UsernameExists(ctx, username)
	if err != nil {
		return err
	}
	if exists {
		return apperr.NewValidationError(taken, apperr.FieldError{Field: field, Error: takenMessages[taken]})
	}
	return nil
}

type StudentRegistration struct {
	EnrollmentNumber string `json:"enrollment_number" form:"enrollment_number" validate:"required,max=50"`
	Password         string `json:"password" form:"password" validate:"required,min=8,max=72"`
	FirstName        string `json:"first_name" form:"first_name" validate:"required,max=150"`
	LastName         string `json:"last_name" form:"last_name" validate:"max=150"`
	Phone            string `json:"phone" form:"phone" validate:"omitempty,numeric,max=15"`
	Stream           string `json:"stream" form:"stream" validate:"required,oneof=BCA BTECH MTECH MSCIT MBA BBA MCA"`
}

// RegisterStudent creates a STUDENT whose username is the enrollment number
// and whose department is the stream.
func (s *Service) RegisterStudent(ctx context.Context, in StudentRegistration) (*models.User, error) {
	in.EnrollmentNumber = strings.TrimSpace(in.EnrollmentNumber)
	in.Stream = strings.ToUpper(strings.TrimSpace(in.Stream))
	if err := s.check(in); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, in.EnrollmentNumber, "enrollment_number", ErrEnrollmentTaken); err != nil {
		return nil, err
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:         in.EnrollmentNumber,
		PasswordHash:     hash,
		FirstName:        strings.TrimSpace(in.FirstName),
		LastName:         strings.TrimSpace(in.LastName),
		Phone:            in.Phone,
		Role:             models.RoleStudent,
		Department:       in.Stream,
		IsActive:         true,
		EnrollmentNumber: in.EnrollmentNumber,
		Stream:           models.Stream(in.Stream),
		Credits:          config.InitialCredits,
	}
	if err := s.Storage.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "student registered", "user_id", user.ID, "stream", user.Stream)
	return user, nil
}

type StaffRegistration struct {
	CollegeID         string   `json:"college_id" form:"college_id" validate:"required,max=100"`
	Password          string   `json:"password" form:"password" validate:"required,min=8,max=72"`
	FirstName         string   `json:"first_name" form:"first_name" validate:"required,max=150"`
	LastName          string   `json:"last_name" form:"last_name" validate:"max=150"`
	Phone             string   `json:"phone" form:"phone" validate:"omitempty,numeric,max=15"`
	Email             string   `json:"email" form:"email" validate:"omitempty,email,max=254"`
	Role              string   `json:"role" form:"role" validate:"omitempty,oneof=FACULTY HOD STAFF"`
	Department        string   `json:"department" form:"department" validate:"max=20"`
	WorkingAt         string   `json:"working_at" form:"working_at" validate:"max=30"`
	FacultyDepartment string   `json:"faculty_department" form:"faculty_department" validate:"max=20"`
	FacultyStreams    []string `json:"faculty_streams" form:"faculty_streams" validate:"dive,oneof=BCA BTECH MTECH MSCIT MBA BBA MCA"`
	StaffDescription  string   `json:"staff_description" form:"staff_description"`
	InfraBuilding     string   `json:"infra_building" form:"infra_building" validate:"max=20"`
	HODDepartment     string   `json:"hod_department" form:"hod_department" validate:"max=20"`
}

// RegisterStaff creates a FACULTY, HOD or STAFF account keyed by college id.
// Administrators are only created from the admin CLI.
func (s *Service) RegisterStaff(ctx context.Context, in StaffRegistration) (*models.User, error) {
	in.CollegeID = strings.TrimSpace(in.CollegeID)
	in.Role = strings.ToUpper(strings.TrimSpace(in.Role))
	if in.Role == "" {
		in.Role = string(models.RoleFaculty)
	}
	if err := s.check(in); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, in.CollegeID, "college_id", ErrCollegeIDTaken); err != nil {
		return nil, err
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	dept := strings.TrimSpace(in.Department)
	if dept == "" {
		dept = strings.TrimSpace(in.FacultyDepartment)
	}
	if dept == "" {
		dept = strings.TrimSpace(in.HODDepartment)
	}
	user := &models.User{
		Username:          in.CollegeID,
		PasswordHash:      hash,
		FirstName:         strings.TrimSpace(in.FirstName),
		LastName:          strings.TrimSpace(in.LastName),
		Email:             in.Email,
		Phone:             in.Phone,
		Role:              models.Role(in.Role),
		Department:        dept,
		IsActive:          true,
		CollegeID:         in.CollegeID,
		WorkingAt:         in.WorkingAt,
		FacultyDepartment: in.FacultyDepartment,
		FacultyStreams:    in.FacultyStreams,
		StaffDescription:  in.StaffDescription,
		InfraBuilding:     in.InfraBuilding,
		HODDepartment:     in.HODDepartment,
	}
	if err := s.Storage.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "staff registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// CreateUser creates an account with any role, including ADMIN.
func (s *Service) CreateUser(ctx context.Context, username, password string, role models.Role, department string) (*models.User, error) {
	username = strings.TrimSpace(username)
	var fields []apperr.FieldError
	if username == "" {
		fields = append(fields, apperr.FieldError{Field: "username", Error: "required"})
	}
	if len(password) < 8 {
		fields = append(fields, apperr.FieldError{Field: "password", Error: "must be at least 8 characters"})
	}
	if _, ok := models.ParseRole(string(role)); !ok {
		fields = append(fields, apperr.FieldError{Field: "role", Error: "is invalid"})
	}
	if len(fields) > 0 {
		return nil, apperr.NewValidationError(errors.New("invalid user"), fields...)
	}
	if err := s.ensureFree(ctx, username, "username", ErrUsernameTaken); err != nil {
		return nil, err
	}
	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Department:   department,
		IsActive:     true,
	}
	if role == models.RoleStudent {
		user.Credits = config.InitialCredits
		user.EnrollmentNumber = username
	} else {
		user.CollegeID = username
	}
	if err := s.Storage.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetRole changes a user's role and, when department is non-nil, department.
func (s *Service) SetRole(ctx context.Context, username string, role models.Role, department *string) (*models.User, error) {
	if _, ok := models.ParseRole(string(role)); !ok {
		return nil, apperr.NewValidationError(fmt.Errorf("unknown role %q", role),
			apperr.FieldError{Field: "role", Error: "is invalid"})
	}
	user, err := s.Storage.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if department != nil {
		user.Department = strings.TrimSpace(*department)
	}
	if err := s.Storage.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "user role changed", "user_id", user.ID, "role", role, "department", user.Department)
	return user, nil
}

// Lookup returns the user with the given username.
func (s *Service) Lookup(ctx context.Context, username string) (*models.User, error) {
	return s.Storage.GetUserByUsername(ctx, strings.TrimSpace(username))
}
