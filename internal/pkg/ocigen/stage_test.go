package ocigen

import (
	"errors"
	"testing"

	"github.com/opencontainers/runtime-spec/specs-go"
)

type recordingStage struct {
	name string
	log  *[]string
	err  error
}

func (s recordingStage) Name() string { return s.name }

func (s recordingStage) Generate(spec *specs.Spec) error {
	*s.log = append(*s.log, s.name)
	return s.err
}

func TestRunOrdersStagesLexicographicallyRegardlessOfInputOrder(t *testing.T) {
	var log []string
	stages := []Stage{
		recordingStage{name: "90-legacy", log: &log},
		recordingStage{name: "00-id-mapping", log: &log},
		recordingStage{name: "25-host-env", log: &log},
		recordingStage{name: "10-basics", log: &log},
		recordingStage{name: "05-initialize", log: &log},
	}

	if err := Run(stages, &specs.Spec{}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := []string{"00-id-mapping", "05-initialize", "10-basics", "25-host-env", "90-legacy"}
	if len(log) != len(want) {
		t.Fatalf("got %d stages run, want %d", len(log), len(want))
	}
	for i, name := range want {
		if log[i] != name {
			t.Errorf("position %d: got %q, want %q", i, log[i], name)
		}
	}
}

func TestRunStopsAtFirstFailingStage(t *testing.T) {
	var log []string
	boom := errors.New("boom")
	stages := []Stage{
		recordingStage{name: "00-a", log: &log},
		recordingStage{name: "10-b", log: &log, err: boom},
		recordingStage{name: "20-c", log: &log},
	}

	err := Run(stages, &specs.Spec{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, boom) {
		t.Errorf("error does not wrap the stage's error: %v", err)
	}
	if len(log) != 2 {
		t.Fatalf("expected exactly 2 stages to have run, got %d: %v", len(log), log)
	}
}

func TestBuiltinStagesCoverAllExpectedNames(t *testing.T) {
	want := map[string]bool{
		"00-id-mapping": true, "05-initialize": true, "10-basics": true,
		"20-devices": true, "25-host-env": true, "25-host-rootfs": true,
		"25-host-statics": true, "30-user-home": true, "40-host-ipc": true,
		"90-legacy": true,
	}

	got := map[string]bool{}
	for _, s := range BuiltinStages() {
		got[s.Name()] = true
	}

	for name := range want {
		if !got[name] {
			t.Errorf("missing builtin stage %q", name)
		}
	}
	for name := range got {
		if !want[name] {
			t.Errorf("unexpected builtin stage %q", name)
		}
	}
}
