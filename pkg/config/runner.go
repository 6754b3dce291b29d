package config

import (
	"fmt"
	"os"

	"embacle-hq/embacle/pkg/providers"
	"embacle-hq/embacle/pkg/runner"
)

// RunnerConfigFor builds the subprocess configuration for a provider
// kind by combining the shared runner section with the kind's provider
// section. The method value satisfies providerfactory.ConfigFunc, so a
// loaded Config can back a provider registry directly.
//
// Binary resolution order: the kind's *_BINARY environment variable,
// then the `binary` field of the provider section, then PATH lookup.
// Container settings follow the same rule: CLI_LLM_CONTAINER_* beats
// the container section.
func (c *Config) RunnerConfigFor(kind providers.Kind) (*runner.Config, error) {
	section := c.Providers.Section(kind)
	if section == nil {
		return nil, providers.NewConfigError("provider",
			fmt.Sprintf("no configuration section for provider kind %q", kind.String()))
	}

	binary, err := c.resolveBinary(kind, section)
	if err != nil {
		return nil, err
	}

	rc := runner.NewConfig(binary)
	rc.Timeout = c.Runner.Timeout
	rc.MaxOutputBytes = c.Runner.MaxOutputBytes
	if section.Model != "" {
		rc.WithModel(section.Model)
	}
	if len(section.ExtraArgs) > 0 {
		rc.ExtraArgs = append([]string(nil), section.ExtraArgs...)
	}
	if len(c.Runner.AllowedEnvKeys) > 0 {
		rc.AllowedEnvKeys = append([]string(nil), c.Runner.AllowedEnvKeys...)
	}
	if c.Runner.WorkingDirectory != "" {
		wd := c.Runner.WorkingDirectory
		rc.WorkingDirectory = &wd
	}

	container, err := c.containerConfig()
	if err != nil {
		return nil, err
	}
	rc.Container = container

	return rc, nil
}

// resolveBinary picks the executable for a kind. The environment
// override is handled by runner.ResolveBinary; a config-file binary is
// only consulted when the environment variable is unset.
func (c *Config) resolveBinary(kind providers.Kind, section *ProviderConfig) (string, error) {
	if os.Getenv(kind.EnvOverride()) == "" && section.Binary != "" {
		if _, err := os.Stat(section.Binary); err != nil {
			return "", providers.NewConfigError(
				fmt.Sprintf("providers.%s.binary", kind.String()),
				fmt.Sprintf("configured binary %q does not exist", section.Binary))
		}
		return section.Binary, nil
	}
	return runner.ResolveBinary(kind)
}

// containerConfig maps the container section onto the runner's
// container settings. Returns nil when container execution is off.
func (c *Config) containerConfig() (*runner.ContainerConfig, error) {
	if os.Getenv(runner.EnvContainerImage) != "" {
		return runner.ContainerConfigFromEnv()
	}
	if !c.Container.Enabled {
		return nil, nil
	}

	cc := &runner.ContainerConfig{
		Image:       c.Container.Image,
		MemoryLimit: c.Container.Memory,
		PidsLimit:   c.Container.PidsLimit,
		NetworkMode: runner.NetworkMode(c.Container.Network),
	}
	for _, m := range c.Container.Mounts {
		cc.ExtraMounts = append(cc.ExtraMounts, runner.Mount{
			Source:   m.Source,
			Target:   m.Target,
			ReadOnly: m.ReadOnly,
		})
	}
	return cc, nil
}
