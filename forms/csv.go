package forms

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/foomo/contentserver-pages/csvexport"
)

// WriteSubmissionsCSV writes one row per submission. Answer columns follow the
// fixed columns, sorted by question id across all submissions.
func WriteSubmissionsCSV(w io.Writer, submissions []Submission) error {
	keys := map[string]struct{}{}
	for _, submission := range submissions {
		for key := range submission.Answers {
			keys[key] = struct{}{}
		}
	}
	answerKeys := make([]string, 0, len(keys))
	for key := range keys {
		answerKeys = append(answerKeys, key)
	}
	sort.Strings(answerKeys)

	writer := csvexport.NewWriter(w)
	header := append([]string{"id", "form_id", "name", "email", "created_at"}, answerKeys...)
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, submission := range submissions {
		row := []string{
			submission.ID,
			submission.FormID,
			submission.Name,
			submission.Email,
			submission.CreatedAt.UTC().Format(time.RFC3339),
		}
		for _, key := range answerKeys {
			row = append(row, submission.Answers[key])
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return writer.Flush()
}

// ExportSubmissions writes every submission matching filter as CSV. The store
// is read MaxLimit rows at a time; a positive filter.Limit caps the total.
func (s *Service) ExportSubmissions(ctx context.Context, filter SubmissionFilter, w io.Writer) error {
	total := filter.Limit
	filter.Limit = MaxLimit
	filter, err := filter.Normalize()
	if err != nil {
		return err
	}

	var submissions []Submission
	for {
		if total > 0 && total-len(submissions) < filter.Limit {
			filter.Limit = total - len(submissions)
		}
		page, err := s.repo.ListSubmissions(ctx, filter)
		if err != nil {
			return fmt.Errorf("export submissions: %w", err)
		}
		submissions = append(submissions, page...)
		if len(page) < filter.Limit || len(submissions) == total {
			break
		}
		filter.Offset += len(page)
	}
	return WriteSubmissionsCSV(w, submissions)
}
