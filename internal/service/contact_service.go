package service

import (
	"regexp"
	"strings"

	"github.com/lingualog/internal/db"
	"github.com/lingualog/internal/errs"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ContactService persists course enquiry and registration submissions.
type ContactService struct {
	db *gorm.DB
}

// ContactInput represents fields accepted from the contact form.
type ContactInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	CourseInterest string `json:"courseInterest"`
	Message        string `json:"message"`
}

// ContactListResult aggregates paginated submissions.
type ContactListResult struct {
	Submissions []db.ContactSubmission
	Total       int64
	TotalPages  int
	Page        int
	PerPage     int
}

// NewContactService creates a ContactService instance.
func NewContactService(gdb *gorm.DB) *ContactService {
	return &ContactService{db: gdb}
}

// Submit validates and stores one submission.
func (s *ContactService) Submit(input ContactInput) (*db.ContactSubmission, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errs.ValidationField("name", "Name is required")
	}
	email := strings.TrimSpace(input.Email)
	if !emailPattern.MatchString(email) {
		return nil, errs.ValidationField("email", "A valid email address is required")
	}

	submission := db.ContactSubmission{
		Name:           strings.TrimSpace(input.Name),
		Email:          email,
		Phone:          strings.TrimSpace(input.Phone),
		CourseInterest: strings.TrimSpace(input.CourseInterest),
		Message:        strings.TrimSpace(input.Message),
	}
	if err := s.db.Create(&submission).Error; err != nil {
		return nil, errs.Unknown("could not store submission", err)
	}
	return &submission, nil
}

// List returns submissions newest first, paginated.
func (s *ContactService) List(page, perPage int) (*ContactListResult, error) {
	result := &ContactListResult{Page: page, PerPage: perPage}
	if result.Page <= 0 {
		result.Page = 1
	}
	if result.PerPage <= 0 {
		result.PerPage = 20
	}

	if err := s.db.Model(&db.ContactSubmission{}).Count(&result.Total).Error; err != nil {
		return nil, errs.Unknown("could not count submissions", err)
	}

	offset := (result.Page - 1) * result.PerPage
	if err := s.db.Order("created_at desc").
		Limit(result.PerPage).
		Offset(offset).
		Find(&result.Submissions).Error; err != nil {
		return nil, errs.Unknown("could not list submissions", err)
	}

	if result.Total == 0 {
		result.TotalPages = 1
	} else {
		result.TotalPages = int((result.Total + int64(result.PerPage) - 1) / int64(result.PerPage))
	}
	return result, nil
}
