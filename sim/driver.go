// Package sim implements the global tick loop of spec.md §4.E: the
// double-buffered, read-all-then-write-all discrete-event driver that
// couples the node state machines (node), the clause store (formula), and
// the interconnect (mesh) into one cycle-accurate run.
package sim

import (
	"github.com/rs/zerolog"

	"github.com/xDarkicex/satswarm/formula"
	"github.com/xDarkicex/satswarm/mesh"
	"github.com/xDarkicex/satswarm/message"
	"github.com/xDarkicex/satswarm/node"
)

// Outcome is the simulator's terminal verdict (spec.md §4.E step 5).
type Outcome string

const (
	SAT     Outcome = "SAT"
	UNSAT   Outcome = "UNSAT"
	Unknown Outcome = "UNKNOWN"
)

// Result is one completed run's report-line contents (spec.md §6).
type Result struct {
	Outcome    Outcome
	Witness    formula.Assignment
	Cycles     int
	BusyCycles int
	IdleCycles int
}

// Simulator owns one run: a fixed node array over a shared formula and
// clause store, wired through a topology.
type Simulator struct {
	nodes    []*node.Node
	topo     *mesh.Topology
	store    *formula.Store
	f        *formula.Formula
	cycleCap int
	log      zerolog.Logger

	cycle    int
	inflight map[int][]message.Message // delivery cycle -> messages
	liveBusy []bool
}

// New builds a Simulator with numNodes identical nodes over topology kind,
// each with the given per-cycle message bandwidth.
func New(f *formula.Formula, kind mesh.Kind, numNodes, bandwidth, cycleCap int, log zerolog.Logger) (*Simulator, error) {
	topo, err := mesh.New(kind, numNodes)
	if err != nil {
		return nil, err
	}
	store := formula.NewStore(f)
	nodes := make([]*node.Node, numNodes)
	for i := range nodes {
		nodes[i] = node.New(i, bandwidth, f, store)
	}
	s := &Simulator{
		nodes:    nodes,
		topo:     topo,
		store:    store,
		f:        f,
		cycleCap: cycleCap,
		log:      log,
		inflight: make(map[int][]message.Message),
	}
	for _, nd := range nodes {
		nd.SetNeighborPicker(s.pickerFor())
	}
	return s, nil
}

// pickerFor wires each node's FORK-target arbitration to s.liveBusy, the
// one deliberate departure from pure start-of-cycle simultaneity in this
// driver: liveBusy starts as each node's Busy() at the start of the cycle
// and is live-updated as FORK targets are committed within the same cycle,
// in ascending node-id processing order. Without this, two nodes adjacent
// to the same idle neighbor could both target it for FORK in one tick.
// Node-id order is fixed, so this stays fully deterministic.
func (s *Simulator) pickerFor() node.NeighborPicker {
	return func(nodeID int) (int, bool) {
		for _, nb := range s.topo.Neighbors(nodeID) {
			if !s.liveBusy[nb] {
				return nb, true
			}
		}
		return 0, false
	}
}

// Run advances cycles until a global verdict is reached or cycleCap is hit.
func (s *Simulator) Run() (Result, error) {
	s.liveBusy = make([]bool, len(s.nodes))
	if err := s.nodes[0].StartRoot(); err != nil {
		return Result{}, err
	}
	s.liveBusy[0] = true

	busyTotal, idleTotal := 0, 0
	for s.cycle < s.cycleCap {
		s.store.Tick()

		arrivals := s.inflight[s.cycle]
		delete(s.inflight, s.cycle)
		perNode := make(map[int][]message.Message, len(arrivals))
		for _, m := range arrivals {
			perNode[m.Dest] = append(perNode[m.Dest], m)
		}

		for i, nd := range s.nodes {
			s.liveBusy[i] = nd.Busy()
		}

		var verdict *node.Verdict
		for id, nd := range s.nodes {
			res, err := nd.Step(perNode[id])
			if err != nil {
				return Result{}, err
			}
			if res.Busy {
				busyTotal++
			} else {
				idleTotal++
			}
			for _, m := range res.Outbox {
				if m.Kind == message.Fork {
					s.liveBusy[m.Dest] = true
				}
				s.inflight[s.cycle+1] = append(s.inflight[s.cycle+1], m)
			}
			if res.Verdict != nil {
				verdict = res.Verdict
			}
		}
		s.cycle++

		// Every node steps exactly once this cycle before the driver acts
		// on a verdict, so busy_cycles + idle_cycles stays exactly
		// simulated_cycles * num_nodes (spec.md §8) even on the
		// terminating cycle.
		if verdict != nil {
			outcome := UNSAT
			if verdict.Satisfiable {
				outcome = SAT
			}
			return Result{
				Outcome:    outcome,
				Witness:    verdict.Witness,
				Cycles:     s.cycle,
				BusyCycles: busyTotal,
				IdleCycles: idleTotal,
			}, nil
		}
	}
	s.log.Warn().Int("cycle_cap", s.cycleCap).Msg("simulation cap exceeded")
	return Result{Outcome: Unknown, Cycles: s.cycle, BusyCycles: busyTotal, IdleCycles: idleTotal}, nil
}
