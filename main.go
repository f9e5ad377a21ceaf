package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/heathj/scriptrun/config"
	"github.com/heathj/scriptrun/page"
	"github.com/heathj/scriptrun/script"
)

var (
	configPath string
	profile    string
	logLevel   string
	noScript   bool
	textOnly   bool
)

var rootCmd = &cobra.Command{
	Use:           "scriptrun",
	Short:         "Load HTML documents and run their scripts",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run <file.html>",
	Short: "Load a document, run its scripts and print the resulting tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocument,
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the built-in execution profiles",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range script.ProfileNames() {
			p, _ := script.ProfileByName(name)
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s legacy_timing=%t version=%d skip_pseudo_url_at_version=%d\n",
				p.Name, p.UsesLegacyTiming, p.Version, p.SkipsPseudoURLAtVersion)
		}
	},
}

func init() {
	runCmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML settings file")
	runCmd.Flags().StringVarP(&profile, "profile", "p", "", "execution profile, overriding the settings file")
	runCmd.Flags().StringVar(&logLevel, "log-level", "", "log level, overriding the settings file")
	runCmd.Flags().BoolVar(&noScript, "no-js", false, "disable scripting")
	runCmd.Flags().BoolVar(&textOnly, "text", false, "print the visible text instead of the tree")

	rootCmd.AddCommand(runCmd, profilesCmd)
}

func resolveConfig() (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return cfg, err
		}
	}
	if profile != "" {
		if err := cfg.SetProfile(profile); err != nil {
			return cfg, err
		}
	}
	if logLevel != "" {
		if err := cfg.SetLogLevel(logLevel); err != nil {
			return cfg, err
		}
	}
	if noScript {
		cfg.JavaScriptEnabled = false
	}
	return cfg, nil
}

func runDocument(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	log := logrus.NewEntry(cfg.Logger())

	path, err := filepath.Abs(args[0])
	if err != nil {
		return errors.Wrap(err, "resolve path")
	}
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open document")
	}
	defer f.Close()

	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	p, err := page.Load(f, u.String(), cfg, log.WithField("document", u.String()))
	if err != nil {
		return err
	}

	if textOnly {
		fmt.Fprintln(cmd.OutOrStdout(), p.Document.AsText())
	} else {
		fmt.Fprint(cmd.OutOrStdout(), p.Document.AsXML())
	}
	if n := len(p.HookErrors) + len(p.Loader.Failures); n > 0 {
		return errors.Errorf("%d script(s) failed", n)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Fatal("scriptrun failed")
	}
}
