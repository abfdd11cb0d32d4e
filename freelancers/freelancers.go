// Package freelancers keeps the freelancer directory behind the admin api.
package freelancers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/foomo/contentserver-pages/csvexport"
)

var (
	ErrNotFound = errors.New("freelancer not found")
	ErrInvalid  = errors.New("invalid freelancer")
)

type Freelancer struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Email       string    `json:"email" yaml:"email"`
	Category    string    `json:"category" yaml:"category"`
	Subcategory string    `json:"subcategory" yaml:"subcategory"`
	TechStack   []string  `json:"techStack" yaml:"techStack"`
	Rate        int       `json:"rate" yaml:"rate"` // hourly, in euro
	Country     string    `json:"country" yaml:"country"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
}

// Filter selects freelancers. Every tech stack entry must match.
type Filter struct {
	Query       string
	Category    string
	Subcategory string
	TechStack   []string
	Limit       int
	Offset      int
}

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

type Repository interface {
	CreateFreelancer(ctx context.Context, freelancer Freelancer) error
	SearchFreelancers(ctx context.Context, filter Filter) ([]Freelancer, error)
}

type Service struct {
	repo     Repository
	taxonomy *Taxonomy
	now      func() time.Time
}

func NewService(repo Repository, taxonomy *Taxonomy) *Service {
	if taxonomy == nil {
		taxonomy = DefaultTaxonomy()
	}
	return &Service{repo: repo, taxonomy: taxonomy, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) Taxonomy() *Taxonomy {
	return s.taxonomy
}

// Create classifies a freelancer within the taxonomy and stores it.
func (s *Service) Create(ctx context.Context, freelancer Freelancer) (Freelancer, error) {
	if strings.TrimSpace(freelancer.Name) == "" || strings.TrimSpace(freelancer.Email) == "" {
		return Freelancer{}, fmt.Errorf("%w: name and email are required", ErrInvalid)
	}
	if freelancer.Rate < 0 {
		return Freelancer{}, fmt.Errorf("%w: rate must not be negative", ErrInvalid)
	}
	classification := Filter{Category: freelancer.Category, Subcategory: freelancer.Subcategory, TechStack: freelancer.TechStack}
	if err := s.taxonomy.Validate(classification); err != nil {
		return Freelancer{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if freelancer.ID == "" {
		freelancer.ID = uuid.New().String()
	}
	if freelancer.CreatedAt.IsZero() {
		freelancer.CreatedAt = s.now()
	}
	if err := s.repo.CreateFreelancer(ctx, freelancer); err != nil {
		return Freelancer{}, fmt.Errorf("create freelancer: %w", err)
	}
	return freelancer, nil
}

func (s *Service) Search(ctx context.Context, filter Filter) ([]Freelancer, error) {
	if err := s.taxonomy.Validate(filter); err != nil {
		return nil, err
	}
	if filter.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", ErrInvalidFilter)
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = DefaultLimit
	case filter.Limit > MaxLimit:
		filter.Limit = MaxLimit
	}
	filter.Query = strings.TrimSpace(filter.Query)
	return s.repo.SearchFreelancers(ctx, filter)
}

var csvHeader = []string{"id", "name", "email", "category", "subcategory", "tech_stack", "rate", "country", "created_at"}

func csvRecord(f Freelancer) []string {
	return []string{
		f.ID,
		f.Name,
		f.Email,
		f.Category,
		f.Subcategory,
		strings.Join(f.TechStack, "|"),
		strconv.Itoa(f.Rate),
		f.Country,
		f.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// WriteCSV exports freelancers, the tech stack joined with "|".
func WriteCSV(w io.Writer, freelancers []Freelancer) error {
	writer := csvexport.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, f := range freelancers {
		if err := writer.Write(csvRecord(f)); err != nil {
			return err
		}
	}
	return writer.Flush()
}

// Export streams every freelancer matching filter as CSV, one page of
// MaxLimit rows at a time. A positive filter.Limit caps the total.
func (s *Service) Export(ctx context.Context, filter Filter, w io.Writer) error {
	if err := s.taxonomy.Validate(filter); err != nil {
		return err
	}
	if filter.Offset < 0 {
		return fmt.Errorf("%w: offset must not be negative", ErrInvalidFilter)
	}
	filter.Query = strings.TrimSpace(filter.Query)
	total := filter.Limit
	filter.Limit = MaxLimit

	writer := csvexport.NewWriter(w)
	written := 0
	for {
		if total > 0 && total-written < filter.Limit {
			filter.Limit = total - written
		}
		page, err := s.repo.SearchFreelancers(ctx, filter)
		if err != nil {
			return fmt.Errorf("export freelancers: %w", err)
		}
		if written == 0 {
			if err := writer.Write(csvHeader); err != nil {
				return err
			}
		}
		for _, f := range page {
			if err := writer.Write(csvRecord(f)); err != nil {
				return err
			}
		}
		written += len(page)
		if len(page) < filter.Limit || written == total {
			break
		}
		filter.Offset += len(page)
	}
	return writer.Flush()
}
