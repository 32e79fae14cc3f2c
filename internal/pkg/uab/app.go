package uab

import (
	"fmt"
	"os"

	"github.com/OpenAtom-Linyaps/linglong/internal/pkg/sylog"
)

// Run is the whole-program orchestration described in spec.md §2.A /
// §4.1.7–§4.1.10: parse argv, load metadata, then dispatch on the exclusive
// option (or mount+run when none was given). It always terminates the
// process itself (directly for --print-meta/--help, via cleanAndExit on
// every mount/run path) rather than returning.
func Run(argv []string) {
	installSignalHandlers()

	args, err := ParseArgs(argv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if args.Help {
		fmt.Print(Usage())
		os.Exit(0)
	}

	selfBin, err := os.Executable()
	if err != nil {
		sylog.Errorf("determine self binary path: %v", err)
		os.Exit(1)
	}

	meta, bundleRng, err := LoadMetadata(selfBin)
	if err != nil {
		sylog.Errorf("%v", err)
		os.Exit(1)
	}

	if args.PrintMeta {
		out, err := meta.PrettyJSON()
		if err != nil {
			sylog.Errorf("render metadata: %v", err)
			os.Exit(1)
		}
		os.Stdout.Write(out)
		os.Stdout.WriteString("\n")
		os.Exit(0)
	}

	if err := verifyDigest(selfBin, bundleRng, meta.Digest); err != nil {
		sylog.Errorf("%v", err)
		cleanAndExit(-1)
	}

	appLayer, err := meta.AppLayer()
	if err != nil {
		sylog.Errorf("%v", err)
		cleanAndExit(-1)
	}

	mountPoint, err := createMountPoint(meta.UUID)
	if err != nil {
		sylog.Errorf("%v", err)
		cleanAndExit(-1)
	}

	if err := mountSelfBundle(selfBin, bundleRng, mountPoint); err != nil {
		sylog.Errorf("%v", err)
		cleanAndExit(-1)
	}

	if args.ExtractPath != "" {
		err := extractBundle(mountPoint, args.ExtractPath)
		if err != nil {
			sylog.Errorf("%v", err)
			cleanAndExit(-1)
		}
		cleanAndExit(0)
	}

	if cliBin, ok := detectLinglong(); ok {
		if err := importSelf(cliBin, selfBin, appLayer); err != nil {
			sylog.Errorf("%v", err)
			cleanAndExit(-1)
		}
		// runAppLinglong replaces the process image on success; it only
		// returns on exec failure, which is the one case cleanup still runs.
		if err := runAppLinglong(cliBin, appLayer); err != nil {
			sylog.Errorf("%v", err)
			cleanAndExit(-1)
		}
		return
	}

	runAppLoader(mountPoint, args.LoaderArgs)
}
