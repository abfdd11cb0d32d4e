package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/foomo/contentserver-pages/freelancers"
)

// FreelancerStore is the freelancers.Repository backed by the store.
type FreelancerStore struct {
	s *Store
}

func (s *Store) FreelancerStore() *FreelancerStore {
	return &FreelancerStore{s: s}
}

var _ freelancers.Repository = (*FreelancerStore)(nil)

func (f *FreelancerStore) CreateFreelancer(ctx context.Context, freelancer freelancers.Freelancer) error {
	techStack := freelancer.TechStack
	if techStack == nil {
		techStack = []string{}
	}
	stack, err := json.Marshal(techStack)
	if err != nil {
		return fmt.Errorf("marshaling tech stack: %w", err)
	}
	_, err = f.s.db.ExecContext(ctx, `
		INSERT INTO freelancers (id, name, email, category, subcategory, tech_stack, rate, country, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, freelancer.ID, freelancer.Name, freelancer.Email, freelancer.Category, freelancer.Subcategory,
		string(stack), freelancer.Rate, freelancer.Country, formatTime(freelancer.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting freelancer: %w", err)
	}
	return nil
}

// SearchFreelancers orders by name. Tech stack entries are matched against the
// stored json array and must all be present.
func (f *FreelancerStore) SearchFreelancers(ctx context.Context, filter freelancers.Filter) ([]freelancers.Freelancer, error) {
	var (
		where []string
		args  []any
	)
	if filter.Query != "" {
		where = append(where, `(lower(name) LIKE ? ESCAPE '\' OR lower(email) LIKE ? ESCAPE '\')`)
		args = append(args, likePattern(filter.Query), likePattern(filter.Query))
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Subcategory != "" {
		where = append(where, "subcategory = ?")
		args = append(args, filter.Subcategory)
	}
	for _, tech := range filter.TechStack {
		where = append(where, "EXISTS (SELECT 1 FROM json_each(freelancers.tech_stack) WHERE json_each.value = ?)")
		args = append(args, tech)
	}

	query := `SELECT id, name, email, category, subcategory, tech_stack, rate, country, created_at FROM freelancers`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name, id LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := f.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying freelancers: %w", err)
	}
	defer rows.Close()

	result := []freelancers.Freelancer{}
	for rows.Next() {
		var (
			freelancer freelancers.Freelancer
			stack      string
			createdAt  string
		)
		if err := rows.Scan(&freelancer.ID, &freelancer.Name, &freelancer.Email, &freelancer.Category,
			&freelancer.Subcategory, &stack, &freelancer.Rate, &freelancer.Country, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning freelancer: %w", err)
		}
		if err := json.Unmarshal([]byte(stack), &freelancer.TechStack); err != nil {
			return nil, fmt.Errorf("unmarshaling tech stack: %w", err)
		}
		if freelancer.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		result = append(result, freelancer)
	}
	return result, rows.Err()
}
