/*
Copyright 2025 Pitchline Authors.

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
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pitchline/pitchline"
	"github.com/pitchline/pitchline/config"
	"github.com/pitchline/pitchline/database"
	"github.com/pitchline/pitchline/internal/notification"
)

// Pitchline represents the CLI application, encapsulating the root Cobra command.
type Pitchline struct {
	cmd *cobra.Command
}

// pitchlineInstance holds the runtime Pitchline engine and its configuration,
// shared by every subcommand.
type pitchlineInstance struct {
	pitchline *pitchline.Pitchline
	cnf       *config.Configuration
}

// recoverPanic handles any panics during program execution and logs the error.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and initializes the Pitchline engine before
// any command runs.
func preRun(app *pitchlineInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("pitchline.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newPitchline, err := setupPitchline(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.pitchline = newPitchline
		app.cnf = cnf

		return nil
	}
}

// setupPitchline creates a new Pitchline engine wired to the configured
// data source.
func setupPitchline(cfg *config.Configuration) (*pitchline.Pitchline, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newPitchline, err := pitchline.NewPitchline(db)
	if err != nil {
		return nil, fmt.Errorf("error creating pitchline: %v", err)
	}
	return newPitchline, nil
}

// NewCLI creates the command-line interface for the Pitchline application.
func NewCLI() *Pitchline {
	var configFile string
	b := &pitchlineInstance{}

	var rootCmd = &cobra.Command{
		Use:   "pitchline",
		Short: "Outreach pitch lifecycle engine",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./pitchline.json", "Configuration file for pitchline")

	rootCmd.PersistentPreRunE = preRun(b)

	rootCmd.AddCommand(serverCommands(b))
	rootCmd.AddCommand(workerCommands(b))
	rootCmd.AddCommand(migrateCommands(b))

	return &Pitchline{cmd: rootCmd}
}

// executeCLI runs the root command, handling any errors that occur during execution.
func (w Pitchline) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
