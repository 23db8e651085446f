// predict - one-shot property price prediction from the command line
//
// Usage:
//
//	predict --floor-area 85 --rooms 4 --property-type Detached
//	predict --file house.yaml --epc C --json
//	predict fields
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"houseprice/internal/config"
	"houseprice/internal/form"
	"houseprice/internal/model"
	"houseprice/internal/service"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorReset = "\033[0m"
)

// fieldFlags maps each record field to its command line flag
var fieldFlags = []struct {
	flag  string
	key   string
	usage string
}{
	{"postcode", model.KeyPostcode, "Postcode of the property"},
	{"property-type", model.KeyPropertyType, "Property type (Detached, Semi-Detached, Terraced, Flat, Other)"},
	{"tenure", model.KeyDuration, "Tenure (Freehold, Leasehold)"},
	{"floor-area", model.KeyTotalFloorArea, "Total floor area in square metres"},
	{"energy-efficiency", model.KeyEnergyEfficiency, "Current energy efficiency score (0-100)"},
	{"rooms", model.KeyHabitableRooms, "Number of habitable rooms"},
	{"age-band", model.KeyConstructionAgeBand, "Construction age band (e.g. 1967-1975, before 1900)"},
	{"built-form", model.KeyBuiltForm, "Built form (Detached, Semi-Detached, Mid-Terrace, ...)"},
	{"year", model.KeyYear, "Year of the transaction"},
	{"new-build", model.KeyOldNew, "New build (Y or N)"},
	{"epc", model.KeyEnergyRating, "EPC rating (A-G)"},
}

// errPredictionFailed is returned after a settled prediction error has been printed
var errPredictionFailed = errors.New("prediction failed")

func main() {
	if err := newApp().Run(os.Args); err != nil {
		if !errors.Is(err, errPredictionFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "predict",
		Usage:   "Predict a property price with the remote prediction service",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Flags:   predictFlags(),
		Action:  runPredict,
		Commands: []*cli.Command{
			fieldsCommand(),
		},
	}
}

func predictFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "api-url",
			Value:   config.DefaultPredictionAPIURL,
			Usage:   "Base URL of the prediction service",
			EnvVars: []string{"PREDICTION_API_URL", "API_URL"},
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "Request timeout (0 waits for the transport)",
			EnvVars: []string{"PREDICTION_TIMEOUT"},
		},
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "YAML or JSON file of field values, applied before flags",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print the settled form as JSON",
		},
	}
	for _, ff := range fieldFlags {
		flags = append(flags, &cli.StringFlag{
			Name:  ff.flag,
			Usage: ff.usage,
		})
	}
	return flags
}

func runPredict(c *cli.Context) error {
	predictionConfig, err := config.NewPredictionConfig(c.String("api-url"), c.Duration("timeout"))
	if err != nil {
		return err
	}
	f := form.New(service.NewPredictionClient(predictionConfig))

	if path := c.String("file"); path != "" {
		values, err := form.LoadValuesFile(path)
		if err != nil {
			return err
		}
		if err := f.ApplyValues(values); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	for _, ff := range fieldFlags {
		if !c.IsSet(ff.flag) {
			continue
		}
		if err := f.UpdateField(ff.key, c.String(ff.flag)); err != nil {
			return fmt.Errorf("--%s: %w", ff.flag, err)
		}
	}

	view, err := f.Submit(context.Background())
	if err != nil {
		return err
	}

	out := c.App.Writer
	if c.Bool("json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(view); err != nil {
			return err
		}
	} else {
		printView(out, view)
	}

	if view.Error != "" {
		return errPredictionFailed
	}
	return nil
}

func printView(w io.Writer, view form.View) {
	color := isTerminal(w)
	paint := func(code, s string) string {
		if !color {
			return s
		}
		return code + s + colorReset
	}

	if view.Error != "" {
		fmt.Fprintln(w, paint(colorRed, "Error: "+view.Error))
		return
	}
	fmt.Fprintf(w, "Predicted Price: %s\n", paint(colorGreen, view.PriceText))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func fieldsCommand() *cli.Command {
	return &cli.Command{
		Name:  "fields",
		Usage: "List the form fields and their accepted values",
		Action: func(c *cli.Context) error {
			for _, field := range model.Fields {
				line := fmt.Sprintf("%-26s %-18s %s", field.Key, field.Name, field.Kind)
				if field.Optional {
					line += " (optional)"
				}
				fmt.Fprintln(c.App.Writer, line)

				if len(field.Choices) > 0 {
					values := make([]string, 0, len(field.Choices))
					for _, choice := range field.Choices {
						values = append(values, choice.Value)
					}
					fmt.Fprintf(c.App.Writer, "    %s\n", strings.Join(values, " | "))
				}
			}
			return nil
		},
	}
}
