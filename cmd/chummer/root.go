// Root command for the chummer CLI.
package main

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/chummer/internal/paths"
	"github.com/mesh-intelligence/chummer/pkg/chummer"
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	verbose   bool
}

// app is the state resolved once per invocation by the root command.
type app struct {
	flags     rootFlags
	configDir string
	cfg       *viper.Viper
	logger    *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:     "chummer",
		Short:   "Chummer settings migration and character loading",
		Version: chummer.Version,
		Long: `Chummer keeps the global settings file, migrates settings out of the
legacy store on first run, and loads .chum5 character documents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// version needs neither config nor logging.
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory holding the legacy store (default: platform data dir)")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newSettingsCmd(a))
	root.AddCommand(newLoadCmd(a))
	root.AddCommand(newLegacyCmd(a))
	return root
}

// setup resolves the config directory, reads config.yaml and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError("resolve config dir: %w", err)
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return sysError("%w", err)
	}

	level := slog.LevelInfo
	if s := strings.TrimSpace(cfg.GetString(cfgKeyLogLevel)); s != "" {
		if err := level.UnmarshalText([]byte(s)); err != nil {
			return userError("config %s: %w", cfgKeyLogLevel, err)
		}
	}
	if a.flags.verbose {
		level = slog.LevelDebug
	}

	a.configDir = configDir
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// environment locates the settings file and legacy store for this run.
func (a *app) environment() (chummer.Environment, error) {
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.cfg.GetString(cfgKeyDataDir))
	if err != nil {
		return chummer.Environment{}, sysError("resolve data dir: %w", err)
	}
	env := chummer.Environment{
		SettingsPath: paths.ResolveFile(a.configDir, a.cfg.GetString(cfgKeySettingsFile), chummer.SettingsFileName),
		DataDir:      dataDir,
		Logger:       a.logger,
	}
	if p := a.cfg.GetString(cfgKeyLegacyStore); p != "" {
		env.LegacyPath = paths.ResolveFile(dataDir, p, "")
	}
	return env, nil
}

// bootstrap returns the current settings and their store, migrating from
// the legacy store when no settings file exists yet.
func (a *app) bootstrap() (chummer.Environment, *chummer.SettingsStore, error) {
	env, err := a.environment()
	if err != nil {
		return env, nil, err
	}
	if _, _, err := chummer.BootstrapSettings(env); err != nil {
		return env, nil, sysError("settings: %w", err)
	}
	return env, chummer.NewSettingsStore(env), nil
}
