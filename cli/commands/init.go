package commands

import (
	"fmt"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/sequel-go/cli/internal/config"
	"github.com/satishbabariya/sequel-go/cli/internal/ui"
	"github.com/satishbabariya/sequel-go/internal/adapters/sqlite"
)

const starterSchema = `// Models map to tables. Run "sequel migrate apply" after every change.
model User {
  id         Integer   @id @autoincrement
  name       Text?     @default("Unknown name")
  email      Text      @unique
  age        Integer
  created_at Timestamp @default(now())

  @@map("users")
}
`

const envExample = `# Overrides the database setting of .sequel.yaml
DATABASE_URL="sqlite://app.db"
`

type initAnswers struct {
	Database string `survey:"database"`
	Driver   string `survey:"driver"`
	Package  string `survey:"package"`
}

// askInit prompts for the project settings. Tests replace it.
var askInit = func(defaults initAnswers) (initAnswers, error) {
	qs := []*survey.Question{
		{
			Name:     "database",
			Prompt:   &survey.Input{Message: "Database file:", Default: defaults.Database},
			Validate: survey.Required,
		},
		{
			Name: "driver",
			Prompt: &survey.Select{
				Message: "SQLite driver:",
				Options: []string{sqlite.DriverMattn, sqlite.DriverModernc},
				Default: defaults.Driver,
				Description: func(value string, index int) string {
					if value == sqlite.DriverModernc {
						return "pure Go, no cgo"
					}
					return "cgo"
				},
			},
		},
		{
			Name:     "package",
			Prompt:   &survey.Input{Message: "Package for generated models:", Default: defaults.Package},
			Validate: survey.Required,
		},
	}

	answers := defaults
	if err := survey.Ask(qs, &answers); err != nil {
		return initAnswers{}, err
	}
	return answers, nil
}

func newInitCommand(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a config file and a starter schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			answers := initAnswers{
				Database: config.Defaults["database"].(string),
				Driver:   config.Defaults["driver"].(string),
				Package:  config.Defaults["package"].(string),
			}
			if !yes {
				var err error
				if answers, err = askInit(answers); err != nil {
					return err
				}
			}
			return initProject(dir, answers)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "accept the defaults without prompting")
	return cmd
}

func initProject(dir string, answers initAnswers) error {
	ui.PrintHeader("sequel init", "Setting up "+dir)

	if err := config.AppFs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	cfgPath := filepath.Join(dir, config.FileName+".yaml")
	if exists, _ := afero.Exists(config.AppFs, cfgPath); exists {
		ui.PrintWarning("%s already exists, skipping", cfgPath)
	} else {
		err := config.Save(&config.Config{
			SchemaPath: config.Defaults["schema_path"].(string),
			OutputPath: "./" + answers.Package,
			Package:    answers.Package,
			Database:   answers.Database,
			Driver:     answers.Driver,
		}, cfgPath)
		if err != nil {
			return err
		}
		ui.PrintSuccess("Created %s", cfgPath)
	}

	files := []struct {
		name    string
		content string
	}{
		{config.Defaults["schema_path"].(string), starterSchema},
		{".env.example", envExample},
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if exists, _ := afero.Exists(config.AppFs, path); exists {
			ui.PrintWarning("%s already exists, skipping", path)
			continue
		}
		if err := afero.WriteFile(config.AppFs, path, []byte(f.content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		ui.PrintSuccess("Created %s", path)
	}

	ui.PrintSection("Next steps")
	ui.PrintList([]string{
		"Edit schema.sequel to declare your models",
		"sequel migrate plan to review the changes",
		"sequel migrate apply to create the tables",
		"sequel generate to write the Go record types",
	})
	return nil
}
