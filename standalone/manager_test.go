package standalone

import (
	"strings"
	"testing"

	"gohome/core"
	"gohome/standalone/config"
	"gohome/standalone/gcode"
	"gohome/standalone/planner"
	"gohome/standalone/sim"
)

func newSimManager(t *testing.T, distance int32) (*Manager, *sim.Machine) {
	t.Helper()
	cfg := config.DefaultCartesianConfig()
	cfg.Homing.LeavePulses = config.Uint32(3)
	mgr, err := NewManagerWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewManagerWithConfig failed: %v", err)
	}

	m := sim.New(config.HomingSettings(cfg), distance)
	hw := Hardware{Machine: m.HomingMachine(), Ticker: planner.VirtualTicker{}}
	if err := mgr.Initialize(hw); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return mgr, m
}

func feed(mgr *Manager, input string) string {
	for i := 0; i < len(input); i++ {
		mgr.ProcessByte(input[i])
	}
	return string(mgr.GetOutput())
}

func TestManagerHomeSession(t *testing.T) {
	mgr, m := newSimManager(t, 12)
	m.Position = core.Position{1, 2, 3}

	if err := mgr.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if banner := string(mgr.GetOutput()); !strings.HasPrefix(banner, "gohome cartesian") {
		t.Errorf("Unexpected banner %q", banner)
	}

	out := feed(mgr, "G4 P5\r\n$H\nM114\n")
	want := "ok\nok\nX:0.000 Y:0.000 Z:0.000 Count X:0 Y:0 Z:0\nok\n"
	if out != want {
		t.Errorf("Expected %q, got %q", want, out)
	}
	for _, a := range core.Axes {
		if m.Axes[a].Pos != 1+3 {
			t.Errorf("Axis %s: expected to rest 4 steps off the switch, at %d", a, m.Axes[a].Pos)
		}
	}
}

func TestManagerAlarm(t *testing.T) {
	mgr, m := newSimManager(t, 5)
	m.Axes[core.AxisX].NoSwitch = true

	out := feed(mgr, "G28\n")
	if !strings.HasPrefix(out, "ALARM:home x: approach:") {
		t.Fatalf("Expected alarm, got %q", out)
	}
	if mgr.State() != gcode.StateAlarm {
		t.Errorf("Expected Alarm state, got %s", mgr.State())
	}

	out = feed(mgr, "M17\n?")
	want := "error:" + gcode.ErrAlarmLock.Error() + "\n<Alarm|MPos:0.000,0.000,0.000>\n"
	if out != want {
		t.Errorf("Expected %q, got %q", want, out)
	}

	if out := feed(mgr, "$X\n"); out != "ok\n" {
		t.Errorf("Expected ok for $X, got %q", out)
	}
}

func TestManagerInputErrors(t *testing.T) {
	mgr, _ := newSimManager(t, 1)

	if out := feed(mgr, "G\n"); out != "error:"+gcode.ErrBadNumber.Error()+"\n" {
		t.Errorf("Unexpected response %q", out)
	}
	if out := feed(mgr, "G0 X1\n"); out != "error:"+gcode.ErrUnsupported.Error()+"\n" {
		t.Errorf("Unexpected response %q", out)
	}
	if out := feed(mgr, "\n  \n"); out != "" {
		t.Errorf("Blank lines should be ignored, got %q", out)
	}
	if out := feed(mgr, strings.Repeat("G", MaxLineLength+1)+"\nG4\n"); out != "error:line too long\nok\n" {
		t.Errorf("Unexpected overflow response %q", out)
	}
}

func TestManagerNotInitialized(t *testing.T) {
	mgr, err := NewManagerWithConfig(config.DefaultCartesianConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := mgr.ProcessLine("G28"); err != errNotInitialized {
		t.Errorf("Expected errNotInitialized, got %v", err)
	}
	if err := mgr.Start(); err != errNotInitialized {
		t.Errorf("Expected errNotInitialized, got %v", err)
	}
}
