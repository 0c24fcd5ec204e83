// Command refreshsim runs a standalone simulation that times one per-bank
// refresh on every bank of a DRAM rank and records the cycles into a SQLite
// database.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/refreshsim/refresh"
	"github.com/sarchlab/refreshsim/refresh/trace"
	"github.com/sarchlab/refreshsim/sim"
	"github.com/sarchlab/refreshsim/simulation"
)

var rootCmd = &cobra.Command{
	Use:   "refreshsim",
	Short: "Simulate per-bank DRAM refresh timing",
	Long: `refreshsim creates one refresh cycle counter per bank, arms all of
them with the configured tRFCpb, and runs the simulation until every bank
reports completion.`,
	Run: run,
}

var (
	numBanks   uint64
	tRFCpb     uint64
	outputFile string
	verbose    bool
)

func init() {
	rootCmd.Flags().Uint64Var(&numBanks, "banks", 4,
		"number of banks to refresh")
	rootCmd.Flags().Uint64Var(&tRFCpb, "trfcpb", 1950,
		"per-bank refresh cycle time in command clock cycles")
	rootCmd.Flags().StringVar(&outputFile, "output", "",
		"name of the output database file")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false,
		"log counter activity to stderr")
}

func run(_ *cobra.Command, _ []string) {
	s := simulation.MakeBuilder().
		WithOutputFileName(outputFile).
		Build()
	engine := s.GetEngine()

	dbTracer := trace.NewDBTracer(s.GetDataRecorder(), engine)

	builder := refresh.MakeBuilder().
		WithEngine(engine).
		WithAdditionalHooks(dbTracer)

	if verbose {
		logger := log.New(os.Stderr, "", 0)
		builder = builder.WithAdditionalHooks(
			trace.NewLogTracer(logger, engine))
		engine.AcceptHook(sim.NewEventLogger(logger))
	}

	comps := make([]*refresh.Comp, numBanks)
	for bank := uint64(0); bank < numBanks; bank++ {
		comp := builder.Build(fmt.Sprintf("Bank%02d", bank))
		s.RegisterComponent(comp)
		comps[bank] = comp
	}

	for bank, comp := range comps {
		comp.Arm(tRFCpb, uint64(bank))
	}

	err := engine.Run()
	if err != nil {
		log.Panic(err)
	}

	for _, comp := range comps {
		if comp.Busy() {
			log.Panicf("%s did not finish refreshing", comp.Name())
		}
	}

	fmt.Printf("All %d banks refreshed at %.10f seconds\n",
		numBanks, engine.CurrentTime())

	s.Terminate()
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		log.Println(err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
