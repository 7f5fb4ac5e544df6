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
	"github.com/bbva/hashlife/protocol"
)

var advanceCmd *cobra.Command = &cobra.Command{
	Use:   "advance",
	Short: "Advances a pattern a number of generations",
	Long: `Reads a JSON array of live cells from --input (or stdin) and prints
the pattern after the requested number of generations.`,
}

var advanceCtx context.Context = configAdvance()

func init() {
	// runAdvance reads advanceCtx, which is built from advanceCmd
	advanceCmd.RunE = runAdvance
	Root.AddCommand(advanceCmd)
}

func configAdvance() context.Context {
	ctx := &runContext{engine: hashlife.DefaultConfig()}

	err := gpflag.ParseTo(ctx.engine, advanceCmd.Flags())
	if err != nil {
		panic(fmt.Sprintf("Unable to parse engine config: %v", err))
	}

	f := advanceCmd.Flags()
	f.StringVar(&ctx.logLevel, "log", "error", "Choose between log levels: silent, error, info and debug")
	f.StringVarP(&ctx.input, "input", "i", "", "JSON file with the live cells, stdin if empty")
	f.Int64P("generations", "g", 1, "Number of generations to advance")

	return context.WithValue(Ctx, k("advance.context"), ctx)
}

func runAdvance(cmd *cobra.Command, args []string) error {
	ctx := advanceCtx.Value(k("advance.context")).(*runContext)
	n, err := cmd.Flags().GetInt64("generations")
	if err != nil {
		return err
	}

	in, err := openInput(ctx.input, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer in.Close()

	return advance(Ctx, ctx, in, cmd.OutOrStdout(), n)
}

func advance(ctx context.Context, rc *runContext, in io.Reader, out io.Writer, n int64) error {
	engine, err := hashlife.NewEngine(rc.engine, newLogger("advance", rc.logLevel))
	if err != nil {
		return err
	}

	cells, err := readCells(in)
	if err != nil {
		return err
	}

	res, err := engine.Advance(ctx, cells, n)
	if err != nil {
		return err
	}

	return writeJSON(out, protocol.NewResult("", res))
}
