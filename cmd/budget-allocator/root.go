/*
Copyright 2026 The budget-allocator Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/paliers/budget-allocator/internal/collector"
	"github.com/paliers/budget-allocator/internal/engines/allocator"
	"github.com/paliers/budget-allocator/internal/logging"
	"github.com/paliers/budget-allocator/internal/metrics"
	"github.com/paliers/budget-allocator/internal/optimizer"
	"github.com/paliers/budget-allocator/internal/tracing"
	"github.com/paliers/budget-allocator/internal/utils/catclass"
	"github.com/paliers/budget-allocator/pkg/config"
)

// app holds the components shared by the subcommands of one invocation.
type app struct {
	out    io.Writer
	errOut io.Writer
	viper  *viper.Viper

	cfg       *config.Config
	logger    logr.Logger
	emitter   *metrics.MetricsEmitter
	optimizer *optimizer.Optimizer
	shutdown  tracing.ShutdownFunc
}

// run executes the command line args and returns the process exit code.
func run(ctx context.Context, args []string, out, errOut io.Writer) int {
	a := &app{out: out, errOut: errOut, viper: viper.New(), logger: logr.Discard()}
	root := a.newRootCommand()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if closeErr := a.close(ctx); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	if err != nil {
		fmt.Fprintln(errOut, "Error:", err)
		return 1
	}
	return 0
}

func (a *app) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "budget-allocator",
		Short: "Split an event budget across spending categories",
		Long: `budget-allocator splits a fixed budget across spending categories.

The budget selects a price tier of the price table. Essential categories are
funded at exactly their tier price, the others within a band below it, and
whatever is left goes to "Other".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	config.AddFlags(root.PersistentFlags())

	root.AddCommand(
		a.newAllocateCommand(),
		a.newPlanCommand(),
		a.newTiersCommand(),
	)
	return root
}

// setup loads the configuration and builds the optimizer. Only the global
// flags are bound to configuration keys.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.viper, cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		return err
	}
	a.logger = logger.WithName("budget-allocator")
	cmd.SetContext(logging.IntoContext(cmd.Context(), a.logger))

	if cfg.Trace {
		shutdown, err := tracing.Setup(a.errOut, cfg.LogDev)
		if err != nil {
			return err
		}
		a.shutdown = shutdown
	}

	policies, err := cfg.CategoryPolicies(a.logger)
	if err != nil {
		return fmt.Errorf("loading category policies: %w", err)
	}
	classifier := catclass.DiscoverClassConfig(a.logger, policies)

	strategy, err := allocator.ParseStrategy(cfg.Strategy)
	if err != nil {
		return err
	}
	alloc, err := allocator.NewAllocator(strategy, cfg.AllocatorConfig())
	if err != nil {
		return err
	}

	a.emitter = metrics.NewMetricsEmitter()
	a.optimizer, err = optimizer.NewOptimizer(alloc, classifier, a.emitter)
	if err != nil {
		return err
	}

	a.logger.V(logging.DEBUG).Info("Configuration loaded",
		"strategy", strategy,
		"timeLimit", cfg.TimeLimit,
		"maxNodes", cfg.MaxNodes,
		"essentialTypes", classifier.EssentialTypes)
	return nil
}

// close writes the metrics textfile and flushes pending spans.
func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.cfg != nil && a.cfg.MetricsTextfile != "" && a.emitter != nil {
		if err := a.emitter.WriteTextfile(a.cfg.MetricsTextfile); err != nil {
			errs = append(errs, fmt.Errorf("writing metrics textfile: %w", err))
		}
	}
	if a.shutdown != nil {
		if err := a.shutdown(context.WithoutCancel(ctx)); err != nil {
			errs = append(errs, fmt.Errorf("flushing traces: %w", err))
		}
	}
	return errors.Join(errs...)
}

// sourceOptions returns the table reading options of the configuration.
func (a *app) sourceOptions() collector.SourceOptions {
	return collector.SourceOptions{
		Separator: a.cfg.SeparatorRune(),
		Encoding:  a.cfg.Table.Encoding,
	}
}
