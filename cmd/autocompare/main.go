// Command autocompare prints the differences between two versions of a
// sample Consumer document
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/qri-io/autocompare"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type options struct {
	config  string
	color   bool
	stats   bool
	dump    bool
	verbose bool
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "autocompare [command]",
		Short:         "Field-level differences between two Consumer documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVar(&opts.color, "color", false, "colorize output")
	rootCmd.PersistentFlags().BoolVar(&opts.stats, "stats", false, "print a summary line after the differences")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log comparer builds")

	diffCmd := &cobra.Command{
		Use:   "diff OLD.yaml NEW.yaml",
		Short: "Compare two Consumer YAML documents",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(out, opts, args[0], args[1])
		},
	}
	diffCmd.Flags().StringVar(&opts.config, "config", "", "YAML file with comparison rules")
	diffCmd.Flags().BoolVar(&opts.dump, "dump", false, "dump both decoded documents before comparing")

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Change a built-in consumer and print what changed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(out, opts)
		},
	}

	rootCmd.AddCommand(diffCmd, demoCmd)
	return rootCmd
}

func runDiff(out io.Writer, opts *options, oldPath, newPath string) error {
	e := autocompare.New()
	if opts.config != "" {
		f, err := os.Open(opts.config)
		if err != nil {
			return fmt.Errorf("opening config: %w", err)
		}
		defer f.Close()
		cfg, err := autocompare.LoadConfig(f)
		if err != nil {
			return err
		}
		if err := e.ApplyConfig(cfg, Consumer{}, Address{}, Account{}, Order{}); err != nil {
			return err
		}
	}

	prev, err := readConsumer(oldPath)
	if err != nil {
		return err
	}
	next, err := readConsumer(newPath)
	if err != nil {
		return err
	}
	if opts.dump {
		spew.Fdump(out, prev, next)
	}

	diffs, err := autocompare.Compare(e, prev, next)
	if err != nil {
		return err
	}
	return report(out, opts, diffs)
}

func runDemo(out io.Writer, opts *options) error {
	e := autocompare.New()

	consumer := loadConsumer()
	prev, err := autocompare.Snapshot(consumer)
	if err != nil {
		return err
	}

	consumer.Age = 3
	consumer.LastName = "Shah"
	consumer.Address.City = "Belmont"
	consumer.Orders = append(consumer.Orders, &Order{Item: "paper", Total: 2})

	diffs, err := autocompare.Compare(e, prev, consumer)
	if err != nil {
		return err
	}
	return report(out, opts, diffs)
}

func readConsumer(path string) (*Consumer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := &Consumer{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return c, nil
}

func report(out io.Writer, opts *options, diffs []*autocompare.Difference) error {
	if err := autocompare.FormatPretty(out, diffs, opts.color); err != nil {
		return err
	}
	if opts.stats {
		stats := autocompare.CalcStats(diffs)
		if opts.color {
			fmt.Fprint(out, autocompare.FormatPrettyStatsColor(&stats))
		} else {
			fmt.Fprint(out, autocompare.FormatPrettyStats(&stats))
		}
	}
	return nil
}
