/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The HAPI Table Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package cmd implements the hapitable command line.
package cmd

import (
	"os"
	"path"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hapi-server/hapitable/core/config"
	"github.com/hapi-server/hapitable/core/logging"
)

// app carries what the root command loads for its subcommands.
type app struct {
	configFile string
	settings   *config.Config
	log        *logrus.Logger
}

// NewRootCommand returns the command tree with all subcommands added.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   path.Base(os.Args[0]),
		Short: "HAPI catalog table renderer",
		Long: `Serve and render tables of HAPI servers, datasets and parameters.

Settings are read from an optional YAML file given with --config and from
HAPITABLE_ environment variables, e.g. HAPITABLE_TITLE_LENGTH=40.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "set path of configuration file")
	root.PersistentFlags().String("log-level", config.DefaultLogLevel, "set log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", config.DefaultLogFormat, "set log format (text, json, json-pretty)")

	root.AddCommand(newServeCommand(a), newRenderCommand(a), newBinsCommand())
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	v, err := config.NewViper(a.configFile)
	if err != nil {
		return err
	}
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return err
	}
	settings, err := config.Load(v)
	if err != nil {
		return err
	}
	log, err := logging.Configure(cmd.ErrOrStderr(), settings.Log.Level, settings.Log.Format)
	if err != nil {
		return err
	}
	a.settings = settings
	a.log = log
	return nil
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
