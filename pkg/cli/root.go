// 3 Apr 2023

// Package cli is the command line for metamotif. Each subcommand is a
// thin layer over one of the driver packages.
package cli

import (
	"fmt"
	"runtime"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/andrew-torda/metamotif/pkg/config"
)

const version = "0.2.0"

// app carries the settings from flag parsing to the commands.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
}

// bind ties flags to viper keys. keys[i] is for flag names[i].
func bind(v *viper.Viper, fs *pflag.FlagSet, keys, names []string) {
	for i, k := range keys {
		if err := v.BindPFlag(k, fs.Lookup(names[i])); err != nil {
			panic(fmt.Sprintf("binding %s to %s: %v", names[i], k, err))
		}
	}
}

// NewRoot returns the whole command tree with its own settings, so it
// can be run more than once.
func NewRoot() *cobra.Command {
	a := &app{v: viper.New()}
	config.SetDefaults(a.v)

	root := &cobra.Command{
		Use:   "metamotif",
		Short: "Find motifs in sequences from per-position importance scores",
		Long: `metamotif finds short regions in sequences where a model's importance
scores are significantly high, then groups the regions into motifs.

  metamotif randseq    make test data with a planted motif
  metamotif search     sequences + scores -> regions (k-mers)
  metamotif align      regions -> motifs as weight matrices
  metamotif transfac   regions -> counts of identical k-mers as TRANSFAC`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file, yaml, toml or json")
	pf.BoolP("verbose", "v", false, "debugging output")
	pf.BoolP("quiet", "q", false, "only warnings, no progress bars")
	pf.String("alphabet", "ACGT", "symbols, in the order of the matrix columns")
	pf.IntP("workers", "j", runtime.NumCPU(), "number of sequences searched at once")
	bind(a.v, pf,
		[]string{"verbose", "quiet", "alphabet", "workers"},
		[]string{"verbose", "quiet", "alphabet", "workers"})

	root.AddCommand(a.searchCmd(), a.alignCmd(), a.transfacCmd(), a.randseqCmd())
	return root
}

// setup reads the config file and sets the log level.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("config file: %w", err)
		}
	}
	cfg, err := config.New(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	log.SetOutput(cmd.ErrOrStderr())
	switch {
	case cfg.Verbose:
		log.SetLevel(log.DebugLevel)
	case cfg.Quiet:
		log.SetLevel(log.WarnLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
	if a.cfgFile != "" {
		log.Debugf("settings from %s", a.cfgFile)
	}
	return nil
}
