// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"os"

	"github.com/datawire/dlib/dgroup"
	"github.com/datawire/dlib/dlog"
	"github.com/datawire/ocibuild/pkg/cliutil"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cachecoh/cachecoh/lib/simlog"
)

var commands []*cobra.Command

func main() {
	verbosity := simlog.LogLevelFlag{Level: dlog.LogLevelInfo}

	argparser := &cobra.Command{
		Use:   "cachecoh {[flags]|SUBCOMMAND}",
		Short: "Simulate a multi-core set-associative cache with MESI coherence",

		Args: cliutil.WrapPositionalArgs(cliutil.OnlySubcommands),
		RunE: cliutil.RunSubcommands,

		SilenceErrors: true, // main() handles this after .ExecuteContext() returns
		SilenceUsage:  true, // our FlagErrorFunc handles it

		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	argparser.SetFlagErrorFunc(cliutil.FlagErrorFunc)
	argparser.SetHelpTemplate(cliutil.HelpTemplate)
	argparser.PersistentFlags().Var(&verbosity, "verbosity", "set the verbosity")

	for _, cmd := range commands {
		cmd := cmd
		innerRunE := cmd.RunE
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			logger := logrus.New()
			logger.SetLevel(dlogLevelToLogrus(verbosity.Level))
			ctx = dlog.WithLogger(ctx, dlog.WrapLogrus(logger))

			grp := dgroup.NewGroup(ctx, dgroup.GroupConfig{
				EnableSignalHandling: true,
			})
			grp.Go("main", func(ctx context.Context) error {
				cmd.SetContext(ctx)
				return innerRunE(cmd, args)
			})
			return grp.Wait()
		}
		argparser.AddCommand(cmd)
	}

	if err := argparser.ExecuteContext(context.Background()); err != nil {
		simlog.Fprintf(os.Stderr, "%v: error: %v\n", argparser.CommandPath(), err)
		os.Exit(1)
	}
}

func dlogLevelToLogrus(lvl dlog.LogLevel) logrus.Level {
	switch lvl {
	case dlog.LogLevelError:
		return logrus.ErrorLevel
	case dlog.LogLevelWarn:
		return logrus.WarnLevel
	case dlog.LogLevelInfo:
		return logrus.InfoLevel
	case dlog.LogLevelDebug:
		return logrus.DebugLevel
	case dlog.LogLevelTrace:
		return logrus.TraceLevel
	default:
		return logrus.InfoLevel
	}
}
