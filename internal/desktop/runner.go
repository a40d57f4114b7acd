package desktop

import (
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// execRunner executes commands with os/exec.
type execRunner struct{}

func (execRunner) Run(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (execRunner) Output(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

func (execRunner) Start(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}
