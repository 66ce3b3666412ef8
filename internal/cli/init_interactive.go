package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/imyousuf/nuktatestify/internal/config"
)

// Test kinds offered in the interactive form.
const (
	kindAuth        = "auth"
	kindValidation  = "validation"
	kindError       = "error"
	kindIntegration = "integration"
	kindPerformance = "performance"
)

// runInteractiveInit lets the user adjust cfg in a form. It reports false
// when the user cancelled.
func runInteractiveInit(cmd *cobra.Command, cfg *config.Config) (bool, error) {
	out := cmd.OutOrStdout()

	var (
		threshold = strconv.Itoa(cfg.CoverageThreshold)
		kinds     = enabledKinds(cfg.Tests)
		confirm   bool
	)

	extOptions := make([]huh.Option[string], len(config.TestFileExts))
	for i, ext := range config.TestFileExts {
		extOptions[i] = huh.NewOption(ext, ext)
	}
	frameworkOptions := make([]huh.Option[string], len(config.TestFrameworks))
	for i, fw := range config.TestFrameworks {
		frameworkOptions[i] = huh.NewOption(fw, fw)
	}
	databaseOptions := make([]huh.Option[string], len(config.DatabaseTypes))
	for i, db := range config.DatabaseTypes {
		databaseOptions[i] = huh.NewOption(db, db)
	}

	selected := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		selected[k] = true
	}
	kindOptions := []huh.Option[string]{
		huh.NewOption("Authentication", kindAuth).Selected(selected[kindAuth]),
		huh.NewOption("Input validation", kindValidation).Selected(selected[kindValidation]),
		huh.NewOption("Error handling", kindError).Selected(selected[kindError]),
		huh.NewOption("CRUD integration", kindIntegration).Selected(selected[kindIntegration]),
		huh.NewOption("Performance", kindPerformance).Selected(selected[kindPerformance]),
	}

	notEmpty := func(field string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s cannot be empty", field)
			}
			return nil
		}
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Source directory").
				Value(&cfg.Src).
				Validate(notEmpty("source directory")),
			huh.NewInput().
				Title("Output directory").
				Value(&cfg.Out).
				Validate(notEmpty("output directory")),
			huh.NewSelect[string]().
				Title("Test file extension").
				Options(extOptions...).
				Value(&cfg.Ext),
			huh.NewConfirm().
				Title("One test file per source file?").
				Value(&cfg.Modular).
				Affirmative("Yes").
				Negative("No"),
		).Title("Layout"),

		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Test scenarios").
				Description("A basic test is always generated").
				Options(kindOptions...).
				Value(&kinds),
			huh.NewConfirm().
				Title("Include mocked request/response objects?").
				Value(&cfg.Mock).
				Affirmative("Yes").
				Negative("No"),
		).Title("Scenarios"),

		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Test framework").
				Options(frameworkOptions...).
				Value(&cfg.TestFramework),
			huh.NewSelect[string]().
				Title("Database").
				Options(databaseOptions...).
				Value(&cfg.Database.Type),
			huh.NewConfirm().
				Title("Use an in-memory database?").
				Value(&cfg.Database.Mock).
				Affirmative("Yes").
				Negative("No"),
			huh.NewInput().
				Title("Coverage threshold").
				Value(&threshold).
				Validate(validateThreshold),
		).Title("Environment"),

		huh.NewGroup(
			huh.NewNote().
				Title("Summary").
				DescriptionFunc(func() string {
					return fmt.Sprintf(
						"Source:      %s\n"+
							"Output:      %s (%s)\n"+
							"Scenarios:   %s\n"+
							"Framework:   %s\n"+
							"Database:    %s",
						cfg.Src, cfg.Out, cfg.Ext,
						strings.Join(kinds, ", "),
						cfg.TestFramework, cfg.Database.Type,
					)
				}, &kinds),
			huh.NewConfirm().
				Title("Write config?").
				Value(&confirm).
				Affirmative("Write").
				Negative("Cancel"),
		).Title("Confirm"),
	).WithTheme(huh.ThemeCharm())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintln(out, "Cancelled.")
			return false, nil
		}
		return false, fmt.Errorf("interactive init: %w", err)
	}
	if !confirm {
		fmt.Fprintln(out, "Cancelled.")
		return false, nil
	}

	cfg.Tests = testsFromKinds(kinds)
	cfg.CoverageThreshold, _ = strconv.Atoi(strings.TrimSpace(threshold))
	return true, nil
}

func validateThreshold(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 100 {
		return fmt.Errorf("coverage threshold must be a number between 0 and 100")
	}
	return nil
}

func enabledKinds(t config.TestsConfig) []string {
	var kinds []string
	for _, k := range []struct {
		name string
		on   bool
	}{
		{kindAuth, t.Auth},
		{kindValidation, t.Validation},
		{kindError, t.Error},
		{kindIntegration, t.Integration},
		{kindPerformance, t.Performance},
	} {
		if k.on {
			kinds = append(kinds, k.name)
		}
	}
	return kinds
}

func testsFromKinds(kinds []string) config.TestsConfig {
	var t config.TestsConfig
	for _, k := range kinds {
		switch k {
		case kindAuth:
			t.Auth = true
		case kindValidation:
			t.Validation = true
		case kindError:
			t.Error = true
		case kindIntegration:
			t.Integration = true
		case kindPerformance:
			t.Performance = true
		}
	}
	return t
}
