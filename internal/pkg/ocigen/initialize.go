package ocigen

import "github.com/opencontainers/runtime-spec/specs-go"

// baseNamespaces is the minimal namespace set every linglong container
// uses, regardless of request flags.
var baseNamespaces = []specs.LinuxNamespaceType{
	specs.PIDNamespace,
	specs.MountNamespace,
	specs.UTSNamespace,
	specs.UserNamespace,
}

const defaultLDSOCache = "LINGLONG_LD_SO_CACHE=/run/linglong/cache/ld.so.cache"

// seedInitConfig stamps the minimal starting skeleton every version-guarded
// stage requires to be present before it runs — mirroring builtins.h's
// initConfig, which the original generator map starts from rather than an
// empty config. Run calls this before any stage sees spec, since
// 00-id-mapping sorts ahead of 05-initialize and would otherwise reject a
// fresh config for carrying no ociVersion yet.
func seedInitConfig(spec *specs.Spec) {
	if spec.Version == "" {
		spec.Version = ociVersion
	}
}

// Initialize is stage 05-initialize: supplies the base config skeleton
// (namespaces, default env, cwd, args, hostname). It runs after
// 00-id-mapping in pipeline order and is additive with respect to
// spec.Linux so it never disturbs the uid/gid mappings that stage wrote —
// it only ensures the base namespace set is present.
type Initialize struct{}

func (Initialize) Name() string { return "05-initialize" }

func (Initialize) Generate(spec *specs.Spec) error {
	seedInitConfig(spec)
	spec.Hostname = "linglong"

	if spec.Annotations == nil {
		spec.Annotations = map[string]string{}
	}
	if _, ok := spec.Annotations[annotationAppID]; !ok {
		spec.Annotations[annotationAppID] = ""
	}

	if spec.Root == nil {
		spec.Root = &specs.Root{Path: ""}
	}

	g := NewGenerator(spec)
	for _, t := range baseNamespaces {
		g.AddOrReplaceLinuxNamespace(t, "")
	}

	if spec.Mounts == nil {
		spec.Mounts = []specs.Mount{}
	}

	if spec.Process == nil {
		spec.Process = &specs.Process{
			Env:  []string{defaultLDSOCache},
			Cwd:  "/",
			Args: []string{"bash"},
		}
	}

	return nil
}
