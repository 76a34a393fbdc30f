package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/MrT-Stephens/STP-Network-Simulation/internal/config"
	"github.com/MrT-Stephens/STP-Network-Simulation/internal/logger"
	"github.com/MrT-Stephens/STP-Network-Simulation/internal/record"
	"github.com/MrT-Stephens/STP-Network-Simulation/internal/render"
	"github.com/MrT-Stephens/STP-Network-Simulation/internal/stp"
	"github.com/MrT-Stephens/STP-Network-Simulation/internal/topology"
)

const defaultConvergeBound = 100

// session is the state of one CLI invocation or shell: the loaded topology,
// its driver and the optional recorder.
type session struct {
	cfg config.Config
	out io.Writer

	spec     *topology.Spec
	driver   *stp.Driver
	recorder *record.SQLiteRecorder
}

func newSession(cfg config.Config, out io.Writer) *session {
	return &session{cfg: cfg, out: out}
}

func (s *session) network() (*stp.Network, error) {
	if s.driver == nil {
		return nil, fmt.Errorf("no topology loaded, use 'load topology [filename]' first")
	}
	return s.driver.Network(), nil
}

// load replaces the current topology and boots it
func (s *session) load(path string) error {
	if path == "" {
		path = s.cfg.Topology
	}

	logger.LogInfo("Loading topology: %s...", path)
	fmt.Fprintf(s.out, "Loading topology: %s...\n", path)
	spec, nw, err := topology.Load(path)
	if err != nil {
		logger.LogError("Error loading topology: %v", err)
		return err
	}

	if err := s.closeRecorder(); err != nil {
		logger.LogWarn("Recorder: %v", err)
	}

	opts := []stp.Option{
		stp.WithSchedule(s.cfg.Schedule),
		stp.WithHook(stp.NewLogHook()),
	}
	if s.cfg.RecordDB != "" {
		rec := record.NewSQLiteRecorder(s.cfg.RecordDB)
		if err := rec.Init(spec.Name, s.cfg.Schedule); err != nil {
			return fmt.Errorf("failed to open recorder: %w", err)
		}
		s.recorder = rec
		opts = append(opts, stp.WithHook(rec))
	}

	s.spec = spec
	s.driver = stp.NewDriver(nw, opts...)
	s.driver.Boot()

	fmt.Fprintf(s.out, "Successfully loaded topology: %s (%d bridges, %d links)\n",
		spec.Name, nw.Len(), len(nw.Links()))
	return nil
}

// boot returns every bridge of the loaded topology to its initial state
func (s *session) boot() error {
	nw, err := s.network()
	if err != nil {
		return err
	}
	s.driver.Boot()
	fmt.Fprintf(s.out, "Booted %d bridges (round %d)\n", nw.Len(), s.driver.Round())
	return s.flush()
}

func (s *session) run(steps int) error {
	if _, err := s.network(); err != nil {
		return err
	}
	r := s.driver.Run(steps)
	s.printReport(r)
	return s.flush()
}

func (s *session) converge(bound int) error {
	if _, err := s.network(); err != nil {
		return err
	}
	r := s.driver.Converge(bound)
	s.printReport(r)
	return s.flush()
}

func (s *session) printReport(r stp.Report) {
	state := "not converged"
	if r.Converged {
		state = "converged"
	}
	fmt.Fprintf(s.out, "Ran %d rounds (round %d, %d changed): %s\n", r.Rounds, r.Round, r.Changed, state)
}

func (s *session) showTopology() error {
	nw, err := s.network()
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Displaying topology: %s (round %d, %s schedule)\n",
		s.spec.Name, s.driver.Round(), s.driver.Schedule())
	snap := nw.Snapshot()
	if err := render.WriteSummary(s.out, snap); err != nil {
		return err
	}
	return render.WriteSnapshot(s.out, snap)
}

func (s *session) showBridge(label string) error {
	nw, err := s.network()
	if err != nil {
		return err
	}
	b, ok := nw.Snapshot().Bridge(label)
	if !ok {
		return fmt.Errorf("bridge '%s' not found in topology", label)
	}
	return render.WriteBridge(s.out, b)
}

func (s *session) showBPDU(label, port string) error {
	nw, err := s.network()
	if err != nil {
		return err
	}
	br, ok := nw.BridgeByLabel(label)
	if !ok {
		return fmt.Errorf("bridge '%s' not found in topology", label)
	}
	n, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return fmt.Errorf("invalid port number %q", port)
	}
	h, ok := nw.PortByNumber(br, uint16(n))
	if !ok {
		return fmt.Errorf("bridge '%s' has no port %d", label, n)
	}

	adv, _ := nw.AdvertisedBPDU(br, h)
	fmt.Fprintf(s.out, "Bridge %s port %d advertises %s\n", label, n, adv)
	if l, ok := nw.Port(h).Learned(); ok {
		fmt.Fprintf(s.out, "Link holds %s\n", l)
	}

	frame, err := adv.MarshalBinary()
	if err != nil {
		return err
	}
	return render.DumpFrame(s.out, frame)
}

func (s *session) exportDOT(path string) error {
	nw, err := s.network()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := render.WriteDOT(f, s.spec.Name, nw); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Wrote %s\n", path)
	return nil
}

func (s *session) flush() error {
	if s.recorder == nil {
		return nil
	}
	return s.recorder.Flush()
}

func (s *session) closeRecorder() error {
	if s.recorder == nil {
		return nil
	}
	err := s.recorder.Close()
	s.recorder = nil
	return err
}

// cleanup operations before exit
func (s *session) cleanup() {
	if err := s.closeRecorder(); err != nil {
		logger.LogError("Recorder: %v", err)
	}
}
