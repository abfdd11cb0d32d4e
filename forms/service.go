package forms

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	CreateForm(ctx context.Context, form Form) error
	GetForm(ctx context.Context, id string) (Form, error)
	ListForms(ctx context.Context) ([]Form, error)
	UpdateForm(ctx context.Context, form Form) error
	DeleteForm(ctx context.Context, id string) error

	CreateSubmission(ctx context.Context, submission Submission) error
	GetSubmission(ctx context.Context, id string) (Submission, error)
	ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]Submission, error)
	DeleteSubmission(ctx context.Context, id string) error
}

type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.New().String() },
	}
}

func (s *Service) Create(ctx context.Context, form Form) (Form, error) {
	if err := form.Validate(); err != nil {
		return Form{}, err
	}
	if form.ID == "" {
		form.ID = s.newID()
	}
	form.CreatedAt = s.now()
	form.UpdatedAt = form.CreatedAt
	if err := s.repo.CreateForm(ctx, form); err != nil {
		return Form{}, fmt.Errorf("create form: %w", err)
	}
	s.logger.Info("form created", zap.String("id", form.ID), zap.String("name", form.Name))
	return form, nil
}

func (s *Service) Get(ctx context.Context, id string) (Form, error) {
	return s.repo.GetForm(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Form, error) {
	return s.repo.ListForms(ctx)
}

// Update replaces the definition and keeps the creation time.
func (s *Service) Update(ctx context.Context, form Form) (Form, error) {
	existing, err := s.repo.GetForm(ctx, form.ID)
	if err != nil {
		return Form{}, err
	}
	if err := form.Validate(); err != nil {
		return Form{}, err
	}
	form.CreatedAt = existing.CreatedAt
	form.UpdatedAt = s.now()
	if err := s.repo.UpdateForm(ctx, form); err != nil {
		return Form{}, fmt.Errorf("update form %q: %w", form.ID, err)
	}
	return form, nil
}

// Delete removes the form with its submissions.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteForm(ctx, id); err != nil {
		return err
	}
	s.logger.Info("form deleted", zap.String("id", id))
	return nil
}

// Submit validates answers against the form and stores the submission.
func (s *Service) Submit(ctx context.Context, submission Submission) (Submission, error) {
	form, err := s.repo.GetForm(ctx, submission.FormID)
	if err != nil {
		return Submission{}, err
	}
	if err := submission.validate(form); err != nil {
		return Submission{}, err
	}
	if submission.ID == "" {
		submission.ID = s.newID()
	}
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = s.now()
	}
	if err := s.repo.CreateSubmission(ctx, submission); err != nil {
		return Submission{}, fmt.Errorf("create submission: %w", err)
	}
	return submission, nil
}

func (s *Service) Submission(ctx context.Context, id string) (Submission, error) {
	return s.repo.GetSubmission(ctx, id)
}

func (s *Service) Submissions(ctx context.Context, filter SubmissionFilter) ([]Submission, error) {
	filter, err := filter.Normalize()
	if err != nil {
		return nil, err
	}
	return s.repo.ListSubmissions(ctx, filter)
}

func (s *Service) DeleteSubmission(ctx context.Context, id string) error {
	return s.repo.DeleteSubmission(ctx, id)
}
