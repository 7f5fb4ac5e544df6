/*
   Copyright 2018-2019 Banco Bilbao Vizcaya Argentaria, S.A.

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


package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/octago/sflags/gen/gpflag"
	"github.com/spf13/cobra"

	"github.com/bbva/hashlife/hashlife"
)

var steadyCmd *cobra.Command = &cobra.Command{
	Use:   "steady",
	Short: "Runs a pattern until it repeats itself",
	Long: `Advances a pattern in fixed strides until it dies, settles into a
still life, oscillates or moves as a spaceship, and reports what it found.`,
}

var steadyCtx context.Context = configSteady()

func init() {
	// runSteady reads steadyCtx, which is built from steadyCmd
	steadyCmd.RunE = runSteady
	Root.AddCommand(steadyCmd)
}

func configSteady() context.Context {
	ctx := &runContext{engine: hashlife.DefaultConfig()}

	err := gpflag.ParseTo(ctx.engine, steadyCmd.Flags())
	if err != nil {
		panic(fmt.Sprintf("Unable to parse engine config: %v", err))
	}

	f := steadyCmd.Flags()
	f.StringVar(&ctx.logLevel, "log", "error", "Choose between log levels: silent, error, info and debug")
	f.StringVarP(&ctx.input, "input", "i", "", "JSON file with the live cells, stdin if empty")
	f.Int64P("step", "s", 1, "Generations advanced between comparisons")
	f.Int("max-steps", 1000, "Steps tried before giving up")

	return context.WithValue(Ctx, k("steady.context"), ctx)
}

func runSteady(cmd *cobra.Command, args []string) error {
	ctx := steadyCtx.Value(k("steady.context")).(*runContext)
	step, err := cmd.Flags().GetInt64("step")
	if err != nil {
		return err
	}
	maxSteps, err := cmd.Flags().GetInt("max-steps")
	if err != nil {
		return err
	}

	in, err := openInput(ctx.input, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer in.Close()

	return steady(Ctx, ctx, in, cmd.OutOrStdout(), step, maxSteps)
}

func steady(ctx context.Context, rc *runContext, in io.Reader, out io.Writer, step int64, maxSteps int) error {
	engine, err := hashlife.NewEngine(rc.engine, newLogger("steady", rc.logLevel))
	if err != nil {
		return err
	}

	cells, err := readCells(in)
	if err != nil {
		return err
	}

	res, err := engine.RunUntilSteady(ctx, cells, step, maxSteps)
	if err != nil {
		return err
	}

	return writeJSON(out, res)
}
