// Command cipw computes CIPW norms of an XLSX or CSV file of analyses.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"Petronorm/internal/calc/cipw"
	"Petronorm/internal/calc/importer"
	"Petronorm/internal/calc/report"
	"Petronorm/internal/chem"
	"Petronorm/internal/config"
	"Petronorm/internal/repo"
)

var errUsage = errors.New("usage")

type cliFlags struct {
	in, sheet, out, cfg string
	db, user, name     string
	workers            int
	opts               cipw.Options
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, error) {
	fs := flag.NewFlagSet("cipw", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &cliFlags{}
	def := cipw.DefaultOptions()

	fs.StringVar(&f.in, "in", "", "input file (.xlsx, .xlsm, .csv, .txt)")
	fs.StringVar(&f.sheet, "sheet", "", "worksheet name, first sheet when empty")
	fs.StringVar(&f.out, "out", "", "output file (.xlsx, .csv, .pdf, .json); text table on stdout when empty")
	fs.StringVar(&f.cfg, "config", "", "TOML file with a [norm] table of default options")
	fs.StringVar(&f.db, "db", "", "SQLite file to save the run into")
	fs.StringVar(&f.user, "user", "", "login that owns the saved run")
	fs.StringVar(&f.name, "name", "", "name of the saved run, input file name when empty")
	fs.IntVar(&f.workers, "workers", 0, "rows computed concurrently, GOMAXPROCS when 0")
	skip := fs.Int("skip", def.SkipCols, "leading identification columns")
	normalize := fs.Bool("normalize", def.NormalizeEntry, "rescale each analysis to 100 wt%")
	minor := fs.Bool("minor", def.MinorIncluded, "include minor and trace components")
	round := fs.Int("round", def.ToRound, "decimal places of the output")
	cancrinite := fs.Float64("cancrinite", def.CO2Cancrinite, "share of CO2 allocated to cancrinite")
	calcite := fs.Float64("calcite", def.CO2Calcite, "share of CO2 allocated to calcite")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if f.in == "" {
		fs.Usage()
		return nil, fmt.Errorf("%w: -in is required", errUsage)
	}
	if f.db != "" && f.user == "" {
		return nil, fmt.Errorf("%w: -db needs -user", errUsage)
	}

	f.opts = def
	if f.cfg != "" {
		var err error
		if f.opts, err = config.LoadNorm(f.cfg, def); err != nil {
			return nil, err
		}
	}
	// Flags given on the command line win over the config file.
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "skip":
			f.opts.SkipCols = *skip
		case "normalize":
			f.opts.NormalizeEntry = *normalize
		case "minor":
			f.opts.MinorIncluded = *minor
		case "round":
			f.opts.ToRound = *round
		case "cancrinite":
			f.opts.CO2Cancrinite = *cancrinite
		case "calcite":
			f.opts.CO2Calcite = *calcite
		}
	})
	return f, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	f, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	table, err := importer.ReadFile(f.in, f.sheet)
	if err != nil {
		return err
	}
	engine, err := cipw.NewEngine(chem.NewReference(),
		cipw.WithWorkers(f.workers),
		cipw.WithLogger(log.New(stderr, "", 0)),
	)
	if err != nil {
		return err
	}
	res, err := engine.Compute(ctx, table, f.opts)
	if err != nil {
		return err
	}

	if f.db != "" {
		id, err := save(ctx, f, res)
		if err != nil {
			return err
		}
		fmt.Fprintf(stderr, "saved run %s\n", id)
	}
	return write(f.out, res, stdout)
}

func save(ctx context.Context, f *cliFlags, res *cipw.Result) (string, error) {
	store, err := repo.OpenSQLite(ctx, f.db)
	if err != nil {
		return "", err
	}
	defer store.Close()

	userID, _, err := store.GetBylogin(ctx, f.user)
	if err != nil {
		return "", err
	}
	if userID == 0 {
		return "", fmt.Errorf("unknown user %q", f.user)
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return "", err
	}
	name := f.name
	if name == "" {
		name = filepath.Base(f.in)
	}
	return store.SaveRun(ctx, userID, name, len(res.Samples), payload)
}

var writers = map[string]func(io.Writer, *cipw.Result, string) error{
	".xlsx": func(w io.Writer, res *cipw.Result, _ string) error { return report.WriteXLSX(w, res) },
	".csv":  func(w io.Writer, res *cipw.Result, _ string) error { return report.WriteCSV(w, &res.Partitions) },
	".pdf": func(w io.Writer, res *cipw.Result, out string) error {
		return report.WritePDF(w, res, report.Meta{Title: "CIPW Norm: " + filepath.Base(out)})
	},
	".json": func(w io.Writer, res *cipw.Result, _ string) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func write(out string, res *cipw.Result, stdout io.Writer) error {
	if out == "" {
		return writeText(stdout, res)
	}
	fn, ok := writers[strings.ToLower(filepath.Ext(out))]
	if !ok {
		return fmt.Errorf("%w: unsupported output %q", errUsage, out)
	}
	file, err := os.Create(out)
	if err != nil {
		return err
	}
	err = fn(file, res, out)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}

func writeText(w io.Writer, res *cipw.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fr := &res.Partitions
	fmt.Fprint(tw, "sample\t")
	for _, c := range fr.Columns {
		fmt.Fprintf(tw, "%s\t", c)
	}
	fmt.Fprintln(tw)
	for i, vals := range fr.Values {
		label := strconv.Itoa(fr.Index[i])
		if fr.IDs != nil && len(fr.IDs[i]) > 0 {
			label = strings.Join(fr.IDs[i], " ")
		}
		fmt.Fprintf(tw, "%s\t", label)
		for _, v := range vals {
			fmt.Fprintf(tw, "%s\t", strconv.FormatFloat(v, 'f', res.Options.ToRound, 64))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}
}
