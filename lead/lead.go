// Package lead captures information requests about a course.
package lead

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ncobase/unicourse/logging/logger"
	"github.com/ncobase/unicourse/nanoid"
	"github.com/ncobase/unicourse/validator"
)

// StatusNew is the status of a freshly captured lead.
const StatusNew = "new"

// Payload is the submitted form.
type Payload struct {
	CourseID   string `json:"courseId" bson:"courseId" validate:"max=64"`
	CourseName string `json:"courseName" bson:"courseName" validate:"max=200"`
	FullName   string `json:"fullName" bson:"fullName" validate:"required,min=2,max=120"`
	Email      string `json:"email" bson:"email" validate:"required,email,max=200"`
	Phone      string `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,min=8,max=32"`
	Message    string `json:"message,omitempty" bson:"message,omitempty" validate:"max=2000"`
	Consent    bool   `json:"consent" bson:"consent" validate:"required"`
	Source     string `json:"source,omitempty" bson:"source,omitempty" validate:"max=64"`
}

// Normalize trims every text field.
func (p Payload) Normalize() Payload {
	p.CourseID = strings.TrimSpace(p.CourseID)
	p.CourseName = strings.TrimSpace(p.CourseName)
	p.FullName = strings.TrimSpace(p.FullName)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Phone = strings.TrimSpace(p.Phone)
	p.Message = strings.TrimSpace(p.Message)
	p.Source = strings.TrimSpace(p.Source)
	return p
}

// Lead is a stored request.
type Lead struct {
	Payload   `bson:",inline"`
	Ref       string    `json:"ref" bson:"ref"`
	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Store persists leads.
type Store interface {
	Insert(ctx context.Context, l *Lead) error
}

// ValidationError lists invalid fields by JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	return fmt.Sprintf("invalid lead: %s", strings.Join(names, ", "))
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Service validates and stores leads.
type Service struct {
	store Store
	lang  string
	now   func() time.Time
	log   *logger.Logger
}

// NewService creates a service. lang selects the validation message
// language.
func NewService(store Store, lang string, l *logger.Logger) *Service {
	if l == nil {
		l = logger.StdLogger()
	}
	return &Service{store: store, lang: lang, now: time.Now, log: l}
}

// Validate normalizes p and checks it.
func (s *Service) Validate(p Payload) (Payload, error) {
	p = p.Normalize()
	if errs := validator.ValidateStruct(&p, s.lang); len(errs) > 0 {
		return p, &ValidationError{Fields: errs}
	}
	return p, nil
}

// Submit validates p and stores it as a new lead.
func (s *Service) Submit(ctx context.Context, p Payload) (*Lead, error) {
	p, err := s.Validate(p)
	if err != nil {
		return nil, err
	}

	l := &Lead{
		Payload:   p,
		Ref:       nanoid.Ref(),
		Status:    StatusNew,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Insert(ctx, l); err != nil {
		s.log.Errorf(ctx, "store lead %s: %v", l.Ref, err)
		return nil, fmt.Errorf("store lead: %w", err)
	}
	s.log.Infof(ctx, "lead %s captured for course %q", l.Ref, l.CourseID)
	return l, nil
}
