// cmd/tools/bike-finder/main.go
//
// bike-finder runs the recommendation pipeline offline: questionnaire
// answers in, matching bikes from a CSV catalog out.
//
//	bike-finder -answers answers.json -catalog bikes.csv
//	echo '["Beginner", ...]' | bike-finder -catalog bikes.csv
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"bike-recommender/internal/catalog"
	"bike-recommender/internal/common/validation"
	"bike-recommender/internal/matching"
	"bike-recommender/internal/models"
)

type options struct {
	answersPath string
	catalogPath string
	minYear     int
	unparsable  string
	limit       int
	format      string
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "bike-finder: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("bike-finder", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.answersPath, "answers", "-", "questionnaire answers JSON file, - for stdin")
	fs.StringVar(&opts.catalogPath, "catalog", os.Getenv("CATALOG_CSV_PATH"), "catalog CSV file")
	fs.IntVar(&opts.minYear, "min-year", catalog.DefaultMinYear, "drop bikes built before this year, 0 keeps all")
	fs.StringVar(&opts.unparsable, "unparsable", string(matching.UnparsableReject), "catalog cells without numbers: reject or pass")
	fs.IntVar(&opts.limit, "limit", 0, "show at most this many bikes, 0 shows all")
	fs.StringVar(&opts.format, "format", "table", "output format: table, cards or json")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: bike-finder -catalog bikes.csv [-answers answers.json] [flags]\n\n")
		fs.PrintDefaults()
		fmt.Fprintf(fs.Output(), "\nCategories: %s\n", strings.Join(matching.Categories(), ", "))
		fmt.Fprintf(fs.Output(), "Regions:    %s\n", strings.Join(regionNames(), ", "))
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.catalogPath == "" {
		return nil, errors.New("-catalog is required")
	}
	return opts, nil
}

func regionNames() []string {
	regions := models.Regions()
	names := make([]string, len(regions))
	for i, r := range regions {
		names[i] = string(r)
	}
	return names
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	opts, err := parseFlags(args, stdout)
	if err != nil {
		return err
	}

	policy, err := matching.ParseUnparsablePolicy(opts.unparsable)
	if err != nil {
		return err
	}

	raw, err := readAnswers(opts.answersPath, stdin)
	if err != nil {
		return err
	}

	result, err := validation.ValidateAnswers(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidAnswerShape, err)
	}
	if !result.Valid {
		return fmt.Errorf("%w: %s", models.ErrInvalidAnswerShape, result.Summary())
	}

	var q models.Questionnaire
	if err := q.UnmarshalJSON(raw); err != nil {
		return err
	}

	snap, err := catalog.NewCSVSource(opts.catalogPath, opts.minYear).Load(context.Background())
	if err != nil {
		return err
	}

	criteria := matching.BuildCriteria(q)
	matches := matching.NewFilter(criteria, policy).Apply(snap.Records)

	total := len(matches)
	if opts.limit > 0 && total > opts.limit {
		matches = matches[:opts.limit]
	}

	return render(stdout, opts.format, criteria, snap, matches, total)
}

func readAnswers(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
