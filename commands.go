package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/foomo/contentserver-pages/forms"
	"github.com/foomo/contentserver-pages/freelancers"
	"github.com/foomo/contentserver-pages/render"
	"github.com/foomo/contentserver-pages/store/sqlite"
)

var inspectRoute string

var inspectCmd = &cobra.Command{
	Use:   "inspect <slug>",
	Short: "Fetch a page document and dump it with its render sequence",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(settings, logger)
		if err != nil {
			return err
		}
		r, err := a.route(inspectRoute)
		if err != nil {
			return err
		}
		doc, err := a.service.GetPage(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if doc == nil {
			fmt.Fprintf(out, "no page for slug %q\n", args[0])
			return nil
		}
		spew.Fdump(out, doc)

		fmt.Fprintln(out, "render sequence:")
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, block := range a.assembler.Assemble(doc, render.Options{Exclude: r.Exclude}) {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", block.Role, block.Key, block.Kind)
		}
		return w.Flush()
	},
}

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the section kinds and the page query derived from them",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(settings, logger)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, kind := range a.registry.Kinds() {
			fmt.Fprintf(out, "%s\t%s\n", kind, a.registry.Describe(kind))
		}
		fmt.Fprintf(out, "\n%s\n", a.projection.PageQuery())
		return nil
	},
}

// seedFile is the fixture format loaded by the seed command.
type seedFile struct {
	Forms       []forms.Form             `yaml:"forms"`
	Submissions []forms.Submission       `yaml:"submissions"`
	Freelancers []freelancers.Freelancer `yaml:"freelancers"`
}

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Load forms, submissions and freelancers from a yaml fixture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if settings.DBPath == "" {
			return fmt.Errorf("PAGES_DB_PATH is required for seeding")
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read seed file: %w", err)
		}
		var fixture seedFile
		if err := yaml.Unmarshal(data, &fixture); err != nil {
			return fmt.Errorf("failed to parse seed file: %w", err)
		}

		store, err := sqlite.Open(settings.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		taxonomy, err := freelancers.LoadTaxonomy(settings.TaxonomyFile)
		if err != nil {
			return err
		}
		return seed(cmd.Context(), fixture,
			forms.NewService(store.FormStore(), logger.Named("forms")),
			freelancers.NewService(store.FreelancerStore(), taxonomy),
		)
	},
}

func seed(ctx context.Context, fixture seedFile, formService *forms.Service, freelancerService *freelancers.Service) error {
	for _, form := range fixture.Forms {
		if _, err := formService.Create(ctx, form); err != nil {
			return fmt.Errorf("seed form %q: %w", form.Name, err)
		}
	}
	for _, submission := range fixture.Submissions {
		if _, err := formService.Submit(ctx, submission); err != nil {
			return fmt.Errorf("seed submission for %q: %w", submission.Email, err)
		}
	}
	for _, freelancer := range fixture.Freelancers {
		if _, err := freelancerService.Create(ctx, freelancer); err != nil {
			return fmt.Errorf("seed freelancer %q: %w", freelancer.Name, err)
		}
	}
	logger.Info("seeded",
		zap.Int("forms", len(fixture.Forms)),
		zap.Int("submissions", len(fixture.Submissions)),
		zap.Int("freelancers", len(fixture.Freelancers)),
	)
	return nil
}

func init() {
	inspectCmd.Flags().StringVar(&inspectRoute, "route", "landing", "Route whose exclusions apply to the render sequence")
}
