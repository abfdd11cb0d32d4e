package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/foomo/contentserver-pages/forms"
)

// FormStore is the forms.Repository backed by the store.
type FormStore struct {
	s *Store
}

func (s *Store) FormStore() *FormStore {
	return &FormStore{s: s}
}

var _ forms.Repository = (*FormStore)(nil)

func (f *FormStore) CreateForm(ctx context.Context, form forms.Form) error {
	questions, err := json.Marshal(form.Questions)
	if err != nil {
		return fmt.Errorf("marshaling questions: %w", err)
	}
	_, err = f.s.db.ExecContext(ctx, `
		INSERT INTO forms (id, name, title, description, type, questions, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, form.ID, form.Name, form.Title, form.Description, form.Type, string(questions),
		formatTime(form.CreatedAt), formatTime(form.UpdatedAt))
	if err != nil {
		return fmt.Errorf("inserting form: %w", err)
	}
	return nil
}

const formColumns = `id, name, title, description, type, questions, created_at, updated_at`

func scanForm(row interface{ Scan(...any) error }) (forms.Form, error) {
	var (
		form                 forms.Form
		questions            string
		createdAt, updatedAt string
	)
	if err := row.Scan(&form.ID, &form.Name, &form.Title, &form.Description, &form.Type,
		&questions, &createdAt, &updatedAt); err != nil {
		return forms.Form{}, err
	}
	if err := json.Unmarshal([]byte(questions), &form.Questions); err != nil {
		return forms.Form{}, fmt.Errorf("unmarshaling questions: %w", err)
	}
	var err error
	if form.CreatedAt, err = parseTime(createdAt); err != nil {
		return forms.Form{}, err
	}
	if form.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return forms.Form{}, err
	}
	return form, nil
}

func (f *FormStore) GetForm(ctx context.Context, id string) (forms.Form, error) {
	row := f.s.db.QueryRowContext(ctx, `SELECT `+formColumns+` FROM forms WHERE id = ?`, id)
	form, err := scanForm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return forms.Form{}, fmt.Errorf("form %q: %w", id, forms.ErrNotFound)
	} else if err != nil {
		return forms.Form{}, fmt.Errorf("scanning form: %w", err)
	}
	return form, nil
}

func (f *FormStore) ListForms(ctx context.Context) ([]forms.Form, error) {
	rows, err := f.s.db.QueryContext(ctx, `SELECT `+formColumns+` FROM forms ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("querying forms: %w", err)
	}
	defer rows.Close()

	result := []forms.Form{}
	for rows.Next() {
		form, err := scanForm(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning form: %w", err)
		}
		result = append(result, form)
	}
	return result, rows.Err()
}

func (f *FormStore) UpdateForm(ctx context.Context, form forms.Form) error {
	questions, err := json.Marshal(form.Questions)
	if err != nil {
		return fmt.Errorf("marshaling questions: %w", err)
	}
	res, err := f.s.db.ExecContext(ctx, `
		UPDATE forms SET name = ?, title = ?, description = ?, type = ?, questions = ?, updated_at = ?
		WHERE id = ?
	`, form.Name, form.Title, form.Description, form.Type, string(questions), formatTime(form.UpdatedAt), form.ID)
	if err != nil {
		return fmt.Errorf("updating form: %w", err)
	}
	return expectRow(res, "form", form.ID, forms.ErrNotFound)
}

func (f *FormStore) DeleteForm(ctx context.Context, id string) error {
	res, err := f.s.db.ExecContext(ctx, `DELETE FROM forms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting form: %w", err)
	}
	return expectRow(res, "form", id, forms.ErrNotFound)
}

func (f *FormStore) CreateSubmission(ctx context.Context, submission forms.Submission) error {
	answers, err := json.Marshal(submission.Answers)
	if err != nil {
		return fmt.Errorf("marshaling answers: %w", err)
	}
	_, err = f.s.db.ExecContext(ctx, `
		INSERT INTO submissions (id, form_id, name, email, answers, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, submission.ID, submission.FormID, submission.Name, submission.Email, string(answers),
		formatTime(submission.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting submission: %w", err)
	}
	return nil
}

const submissionColumns = `id, form_id, name, email, answers, created_at`

func scanSubmission(row interface{ Scan(...any) error }) (forms.Submission, error) {
	var (
		submission forms.Submission
		answers    string
		createdAt  string
	)
	if err := row.Scan(&submission.ID, &submission.FormID, &submission.Name, &submission.Email,
		&answers, &createdAt); err != nil {
		return forms.Submission{}, err
	}
	if err := json.Unmarshal([]byte(answers), &submission.Answers); err != nil {
		return forms.Submission{}, fmt.Errorf("unmarshaling answers: %w", err)
	}
	var err error
	if submission.CreatedAt, err = parseTime(createdAt); err != nil {
		return forms.Submission{}, err
	}
	return submission, nil
}

func (f *FormStore) GetSubmission(ctx context.Context, id string) (forms.Submission, error) {
	row := f.s.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id)
	submission, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return forms.Submission{}, fmt.Errorf("submission %q: %w", id, forms.ErrNotFound)
	} else if err != nil {
		return forms.Submission{}, fmt.Errorf("scanning submission: %w", err)
	}
	return submission, nil
}

// ListSubmissions returns the newest submissions first.
func (f *FormStore) ListSubmissions(ctx context.Context, filter forms.SubmissionFilter) ([]forms.Submission, error) {
	var (
		where []string
		args  []any
	)
	if filter.FormID != "" {
		where = append(where, "form_id = ?")
		args = append(args, filter.FormID)
	}
	if filter.Query != "" {
		where = append(where, `(lower(name) LIKE ? ESCAPE '\' OR lower(email) LIKE ? ESCAPE '\')`)
		args = append(args, likePattern(filter.Query), likePattern(filter.Query))
	}
	if !filter.From.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, formatTime(filter.From))
	}
	if !filter.To.IsZero() {
		where = append(where, "created_at < ?")
		args = append(args, formatTime(filter.To))
	}

	query := `SELECT ` + submissionColumns + ` FROM submissions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := f.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying submissions: %w", err)
	}
	defer rows.Close()

	result := []forms.Submission{}
	for rows.Next() {
		submission, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning submission: %w", err)
		}
		result = append(result, submission)
	}
	return result, rows.Err()
}

func (f *FormStore) DeleteSubmission(ctx context.Context, id string) error {
	res, err := f.s.db.ExecContext(ctx, `DELETE FROM submissions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting submission: %w", err)
	}
	return expectRow(res, "submission", id, forms.ErrNotFound)
}

func expectRow(res sql.Result, what, id string, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", what, id, notFound)
	}
	return nil
}
