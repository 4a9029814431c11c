// Copyright 2025 Certen Protocol
//
// scenariorunner drives a YAML scenario file through the ledger step by
// step, logging each outcome, and reports a content fingerprint of the
// resulting ledger on success.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/certen/scenario-ledger/pkg/authz"
	"github.com/certen/scenario-ledger/pkg/crash"
	"github.com/certen/scenario-ledger/pkg/digest"
	"github.com/certen/scenario-ledger/pkg/ledger"
	"github.com/certen/scenario-ledger/pkg/metrics"
	"github.com/certen/scenario-ledger/pkg/scenariofile"
	"github.com/certen/scenario-ledger/pkg/txtree"
)

func main() {
	var (
		scenarioPath = flag.String("scenario", "", "path to a scenario YAML file (required)")
		startTime    = flag.String("start-time", "2000-01-01T00:00:00Z", "ledger's initial current-time, RFC3339")
		printFP      = flag.Bool("fingerprint", true, "print the final ledger's fingerprint on success")
		dumpMetrics  = flag.Bool("dump-metrics", false, "dump the metrics registry to stdout on exit")
	)
	flag.Parse()

	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if *scenarioPath == "" {
		log.Fatal("scenariorunner: -scenario is required")
	}

	runID := uuid.New()
	log.Printf("scenariorunner: run %s loading %s", runID, *scenarioPath)

	registry := prometheus.NewRegistry()
	metrics.MustRegister(registry)

	ctx, cancel := context.WithCancel(context.Background())
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Printf("scenariorunner: run %s received shutdown signal", runID)
		cancel()
	}()
	defer signal.Stop(quit)

	t0, err := time.Parse(time.RFC3339, *startTime)
	if err != nil {
		log.Fatalf("scenariorunner: bad -start-time: %v", err)
	}

	scn, err := scenariofile.Load(*scenarioPath)
	if err != nil {
		log.Fatalf("scenariorunner: %v", err)
	}

	l, runErr := run(ctx, scn, t0)

	if *dumpMetrics {
		dumpRegistry(registry)
	}

	if runErr != nil {
		log.Fatalf("scenariorunner: %v", runErr)
	}

	log.Printf("scenariorunner: run %s completed %d step(s)", runID, len(scn.Steps))
	if *printFP {
		fp, err := digest.Fingerprint(l)
		if err != nil {
			log.Fatalf("scenariorunner: fingerprint: %v", err)
		}
		fmt.Println(fp)
	}
}

// run drives scn's steps against a fresh ledger. It recovers the
// crash.LedgerCrash panic any invariant violation in the library raises
// (spec §7.2); any other recovered value, such as the panic
// scenariofile's Build raises for a node spec with no variant set, is
// re-panicked.
func run(ctx context.Context, scn *scenariofile.Scenario, t0 time.Time) (l *ledger.Ledger, err error) {
	defer func() {
		if r := recover(); r != nil {
			lc, ok := r.(crash.LedgerCrash)
			if !ok {
				panic(r)
			}
			err = fmt.Errorf("ledger-crash(%s)", lc.Reason)
		}
	}()

	l = ledger.Initial(t0)
	for i, step := range scn.Steps {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("run cancelled before step %d: %w", i, ctx.Err())
		}
		l, err = runStep(l, step, i)
		if err != nil {
			return nil, fmt.Errorf("step %d failed: %w", i, err)
		}
	}
	return l, nil
}

func runStep(l *ledger.Ledger, step scenariofile.Step, index int) (*ledger.Ledger, error) {
	switch {
	case step.Commit != nil:
		cs := step.Commit
		effectiveAt := l.CurrentTime
		if cs.EffectiveAt != nil {
			effectiveAt = *cs.EffectiveAt
		}
		mode := authz.DontAuthorize()
		if len(cs.Authorize) > 0 {
			mode = authz.Authorize(partySet(cs.Authorize))
		}
		result, err := ledger.CommitTransaction(l, txtree.Party(cs.Committer), effectiveAt, nil, cs.Build(), mode)
		if err != nil {
			return nil, fmt.Errorf("commit by %s: %w", cs.Committer, err)
		}
		log.Printf("scenariorunner: step %d committed as step-id %s", index, result.StepID)
		return result.Ledger, nil

	case step.PassTime != nil:
		log.Printf("scenariorunner: step %d advances clock by %dus", index, step.PassTime.DeltaMicros)
		return ledger.PassTime(l, step.PassTime.DeltaMicros), nil

	case step.AssertMustFail != nil:
		log.Printf("scenariorunner: step %d asserts %s's submission must fail", index, step.AssertMustFail.Actor)
		return ledger.InsertAssertMustFail(l, txtree.Party(step.AssertMustFail.Actor), nil), nil

	default:
		return nil, fmt.Errorf("step %d has no variant set", index)
	}
}

// dumpRegistry writes every collected metric family to stdout in the
// Prometheus text exposition format, the same way a batch job logs a
// final summary rather than serving /metrics (spec §4.6: no scrape
// endpoint is started by the library or the CLI).
func dumpRegistry(gatherer prometheus.Gatherer) {
	mfs, err := gatherer.Gather()
	if err != nil {
		log.Printf("scenariorunner: gathering metrics: %v", err)
		return
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(os.Stdout, mf); err != nil {
			log.Printf("scenariorunner: formatting metric %s: %v", mf.GetName(), err)
		}
	}
}

func partySet(names []string) txtree.PartySet {
	parties := make([]txtree.Party, len(names))
	for i, n := range names {
		parties[i] = txtree.Party(n)
	}
	return txtree.NewPartySet(parties...)
}
