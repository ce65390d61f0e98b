package navigator

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	test.That(t, cfg.Validate(), test.ShouldBeNil)

	bad := DefaultConfig()
	bad.Vehicle.Width = 0
	test.That(t, bad.Validate(), test.ShouldNotBeNil)

	bad = DefaultConfig()
	bad.Planner.TargetSpeed = bad.Planner.MaxSpeed + 1
	test.That(t, bad.Validate(), test.ShouldNotBeNil)

	bad = DefaultConfig()
	bad.Buffer.MinSize = bad.Buffer.MaxSize + 1
	test.That(t, bad.Validate(), test.ShouldNotBeNil)

	bad = DefaultConfig()
	bad.Buffer.MaxSeparation = bad.Buffer.MinSeparation
	test.That(t, bad.Validate(), test.ShouldNotBeNil)

	bad = DefaultConfig()
	bad.StaleAfterSec = 0
	test.That(t, bad.Validate(), test.ShouldNotBeNil)
}

func TestReadConfig(t *testing.T) {
	t.Setenv("CRUISE_SPEED", "8")
	path := filepath.Join(t.TempDir(), "planner.json")
	raw := []byte(`{
		"vehicle": {"width": 1.8, "wheelbase": 2.5},
		"planner": {"target_speed": ${CRUISE_SPEED}},
		"stale_after_sec": 0.4
	}`)
	test.That(t, os.WriteFile(path, raw, 0o600), test.ShouldBeNil)

	cfg, err := ReadConfig(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Vehicle.Width, test.ShouldEqual, 1.8)
	test.That(t, cfg.Planner.TargetSpeed, test.ShouldEqual, 8)
	test.That(t, cfg.StaleAfterSec, test.ShouldEqual, 0.4)
	// unspecified sections keep their defaults
	test.That(t, cfg.Buffer.MaxSize, test.ShouldEqual, DefaultConfig().Buffer.MaxSize)
}

func TestReadConfigErrors(t *testing.T) {
	_, err := ReadConfig(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)

	path := filepath.Join(t.TempDir(), "bad.json")
	test.That(t, os.WriteFile(path, []byte(`{"vehicle": {"width": -1}}`), 0o600), test.ShouldBeNil)
	_, err = ReadConfig(path)
	test.That(t, err, test.ShouldNotBeNil)
}
