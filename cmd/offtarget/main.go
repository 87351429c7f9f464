package main

import (
	"context"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/Lattice-Automation/offtarget/internal/cmd"
	"github.com/Lattice-Automation/offtarget/internal/config"
	"github.com/Lattice-Automation/offtarget/internal/offtarget"
)

func main() {
	checkDependencies()
	config.Setup()

	// interrupting a long index build or search kills the bowtie2 process too
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.RootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func checkDependencies() {
	if _, err := exec.LookPath(offtarget.BowtieExecutable()); err != nil {
		log.Fatal(`No bowtie2 found. Is Bowtie 2 installed (or BOWTIE2_HOME set)? https://bowtie-bio.sourceforge.net/bowtie2`)
	}

	if _, err := exec.LookPath(offtarget.BowtieBuildExecutable()); err != nil {
		log.Fatal(`No bowtie2-build found. Is Bowtie 2 installed (or BOWTIE2_HOME set)? https://bowtie-bio.sourceforge.net/bowtie2`)
	}
}
