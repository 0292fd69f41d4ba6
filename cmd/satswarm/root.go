package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/xDarkicex/satswarm/core"
	satconfig "github.com/xDarkicex/satswarm/internal/config"
	"github.com/xDarkicex/satswarm/mesh"
	"github.com/xDarkicex/satswarm/oracle"
	"github.com/xDarkicex/satswarm/sim"
)

// reportLine is one §6 "one line per benchmark file" record, also the
// shape of the optional --report JSON summary (SPEC_FULL.md supplement).
type reportLine struct {
	File          string `json:"file"`
	Verdict       string `json:"verdict"`
	SimCycles     int    `json:"sim_cycles"`
	BusyCycles    int    `json:"busy_cycles"`
	IdleCycles    int    `json:"idle_cycles"`
	OracleVerdict string `json:"oracle_verdict"`
	Agreement     string `json:"agreement"`
}

func newRootCmd() *cobra.Command {
	var (
		numNodes      int
		topologyFlag  string
		testPath      string
		nodeBandwidth int
		numVars       int
		cycleCap      int
		oracleBinary  string
		configPath    string
		reportPath    string
		verbose       bool
		metricsAddr   string
	)

	cmd := &cobra.Command{
		Use:   "satswarm",
		Short: "Cycle-accurate simulator for the SatSwarm distributed-DPLL accelerator",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(verbose)

			sweep := satconfig.Sweep{
				NumNodes: numNodes, Topology: topologyFlag, TestPath: testPath,
				NodeBandwidth: nodeBandwidth, NumVars: numVars,
			}
			if configPath != "" {
				f, err := satconfig.Load(configPath)
				if err != nil {
					return err
				}
				explicit := satconfig.Sweep{}
				for name, set := range map[string]func(){
					"num_nodes":      func() { explicit.NumNodes = numNodes },
					"topology":       func() { explicit.Topology = topologyFlag },
					"test_path":      func() { explicit.TestPath = testPath },
					"node_bandwidth": func() { explicit.NodeBandwidth = nodeBandwidth },
					"num_vars":       func() { explicit.NumVars = numVars },
				} {
					if cmd.Flags().Changed(name) {
						set()
					}
				}
				sweep = satconfig.Merge(satconfig.Merge(sweep, f.Default), explicit)
			}

			kind, err := mesh.ParseKind(sweep.Topology)
			if err != nil {
				return err
			}

			files, err := discoverBenchmarks(sweep.TestPath, sweep.NumVars)
			if err != nil {
				return errors.Wrap(err, "satswarm: discovering benchmark files")
			}

			metrics := sim.NewMetrics()
			if metricsAddr != "" {
				srv, _, err := startMetricsServer(metricsAddr, metrics.Registry, log)
				if err != nil {
					return errors.Wrap(err, "satswarm: starting metrics server")
				}
				defer srv.Close()
			}

			var oc *oracle.Oracle
			if oracleBinary != "" {
				oc = oracle.New(oracleBinary, nil, log)
			}

			var lines []reportLine
			disagreements, failures := 0, 0
			for _, path := range files {
				line, err := runOne(cmd.Context(), path, kind, sweep, cycleCap, oc, log, metrics)
				if err != nil {
					var inv *core.InvariantError
					if errors.As(err, &inv) {
						return errors.Wrapf(err, "satswarm: internal invariant violation in %s", path)
					}
					log.Error().Err(err).Str("file", path).Msg("skipping malformed benchmark")
					failures++
					continue
				}
				if line.Agreement == "DISAGREE" {
					disagreements++
					metrics.Disagreements.Inc()
				}
				lines = append(lines, line)
				fmt.Printf("%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
					line.File, line.Verdict, line.SimCycles, line.BusyCycles, line.IdleCycles,
					line.OracleVerdict, line.Agreement)
			}

			if reportPath != "" {
				if err := writeReport(reportPath, lines); err != nil {
					return errors.Wrap(err, "satswarm: writing report")
				}
			}

			if disagreements > 0 || failures > 0 {
				return fmt.Errorf("satswarm: %d benchmark file(s) disagreed with the oracle, %d could not be loaded or simulated",
					disagreements, failures)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&numNodes, "num_nodes", 100, "total mesh nodes")
	cmd.Flags().StringVar(&topologyFlag, "topology", "grid", "grid | torus | dense")
	cmd.Flags().StringVar(&testPath, "test_path", "tests", "directory containing DIMACS .cnf files")
	cmd.Flags().IntVar(&nodeBandwidth, "node_bandwidth", 100, "messages consumed/emitted per cycle per node")
	cmd.Flags().IntVar(&numVars, "num_vars", 50, "benchmark subdirectory / filter")
	cmd.Flags().IntVar(&cycleCap, "cycle_cap", 1_000_000, "global tick ceiling before verdict UNKNOWN")
	cmd.Flags().StringVar(&oracleBinary, "oracle_bin", "", "path to the reference SAT solver binary; empty disables cross-checking")
	cmd.Flags().StringVar(&configPath, "config", "", "optional YAML sweep-config file")
	cmd.Flags().StringVar(&reportPath, "report", "", "optional path to write a JSON summary report")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable debug-level logging")
	cmd.Flags().StringVar(&metricsAddr, "metrics_addr", "", "optional host:port to serve Prometheus /metrics on while the sweep runs; empty disables it")

	return cmd
}

// startMetricsServer binds addr and serves reg's families on /metrics,
// answering review feedback that a constructed-but-never-read *Metrics is a
// decorative dependency: this is the real consumer, following the
// http.Handle("/metrics", promhttp.Handler()) pattern the vsa tfd-sim
// harness uses. The bind happens synchronously so callers (and tests) know
// the listener is live before Serve starts in its own goroutine; it returns
// the actual address, which differs from addr when addr's port is "0".
func startMetricsServer(addr string, reg *prometheus.Registry, log zerolog.Logger) (*http.Server, string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux}
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("serving /metrics")
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	return srv, ln.Addr().String(), nil
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()
}

func runOne(ctx context.Context, path string, kind mesh.Kind, sweep satconfig.Sweep, cycleCap int,
	oc *oracle.Oracle, log zerolog.Logger, metrics *sim.Metrics) (reportLine, error) {

	f, err := loadCNF(path)
	if err != nil {
		return reportLine{}, err
	}

	s, err := sim.New(f, kind, sweep.NumNodes, sweep.NodeBandwidth, cycleCap, log)
	if err != nil {
		return reportLine{}, err
	}
	res, err := s.Run()
	if err != nil {
		return reportLine{}, err
	}
	metrics.Observe(res)

	oracleVerdict := oracle.VerdictUnknown
	if oc != nil {
		oracleVerdict = oc.Run(ctx, path)
	}
	agreement := oracle.Agreement(string(res.Outcome), oracleVerdict)

	return reportLine{
		File: path, Verdict: string(res.Outcome), SimCycles: res.Cycles,
		BusyCycles: res.BusyCycles, IdleCycles: res.IdleCycles,
		OracleVerdict: oracleVerdict.String(), Agreement: agreement,
	}, nil
}

// discoverBenchmarks walks testPath for .cnf files, applying the
// SPEC_FULL.md --num_vars filtering supplement: a file is included when
// numVars is zero (no filter), or its path contains a "uf<numVars>"
// segment, or its DIMACS header's V matches numVars.
func discoverBenchmarks(testPath string, numVars int) ([]string, error) {
	var out []string
	err := filepath.Walk(testPath, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(p, ".cnf") {
			return nil
		}
		if numVars == 0 || matchesNumVars(p, numVars) {
			out = append(out, p)
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

func matchesNumVars(path string, numVars int) bool {
	want := "uf" + strconv.Itoa(numVars)
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if seg == want {
			return true
		}
	}
	v, ok := headerVarCount(path)
	return ok && v == numVars
}

func headerVarCount(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "p cnf") {
			fields := strings.Fields(line)
			if len(fields) == 4 {
				if v, err := strconv.Atoi(fields[2]); err == nil {
					return v, true
				}
			}
		}
	}
	return 0, false
}

func writeReport(path string, lines []reportLine) error {
	data, err := json.MarshalIndent(lines, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
