package ocigen

import (
	"os"
	"strings"

	"github.com/opencontainers/runtime-spec/specs-go"
)

// appendMount appends a mount entry to spec.Mounts, copying options so
// callers can't alias a shared backing array across mounts.
func appendMount(spec *specs.Spec, source, destination, mtype string, options []string) {
	spec.Mounts = append(spec.Mounts, specs.Mount{
		Source:      source,
		Destination: destination,
		Type:        mtype,
		Options:     append([]string(nil), options...),
	})
}

func appendRBindMount(spec *specs.Spec, source, destination string) {
	appendMount(spec, source, destination, "bind", []string{"rbind"})
}

// bindIfExist adds an rbind mount for source (destination defaults to
// source when empty) iff source exists on the host; a missing source is
// silently skipped.
func bindIfExist(spec *specs.Spec, source, destination string) {
	if _, err := os.Stat(source); err != nil {
		return
	}
	if destination == "" {
		destination = source
	}
	appendRBindMount(spec, source, destination)
}

// bindIfExistRO is bindIfExist but read-only.
func bindIfExistRO(spec *specs.Spec, source, destination string) {
	if _, err := os.Stat(source); err != nil {
		return
	}
	if destination == "" {
		destination = source
	}
	appendMount(spec, source, destination, "bind", []string{"ro", "rbind"})
}

func envExists(env []string, key string) bool {
	prefix := key + "="
	for _, e := range env {
		if strings.HasPrefix(e, prefix) {
			return true
		}
	}
	return false
}

// setEnvOnce appends key=value to spec.Process.Env, failing if key is
// already present — the HOME-projection exclusivity invariant (spec §3).
func setEnvOnce(spec *specs.Spec, key, value string) error {
	if spec.Process == nil {
		spec.Process = &specs.Process{}
	}
	if envExists(spec.Process.Env, key) {
		return &envAlreadySetError{key: key}
	}
	spec.Process.Env = append(spec.Process.Env, key+"="+value)
	return nil
}

type envAlreadySetError struct{ key string }

func (e *envAlreadySetError) Error() string { return ErrEnvAlreadySet.Error() + ": " + e.key }

func (e *envAlreadySetError) Unwrap() error { return ErrEnvAlreadySet }

// mountRequiredDir binds a host directory into the container, creating the
// host side first if it doesn't exist yet. Any stat/create error other
// than "doesn't exist yet, now created" is fatal for the calling stage.
func mountRequiredDir(spec *specs.Spec, host, container string) error {
	if _, err := os.Stat(host); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if err := os.MkdirAll(host, 0o755); err != nil {
			return err
		}
	}
	appendRBindMount(spec, host, container)
	return nil
}

// mountOptionalDir binds host into the container iff host exists; a
// missing host directory is a silent no-op.
func mountOptionalDir(spec *specs.Spec, host, container string) {
	if _, err := os.Stat(host); err != nil {
		return
	}
	appendRBindMount(spec, host, container)
}
