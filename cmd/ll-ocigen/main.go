// Command ll-ocigen runs the OCI runtime-config generator pipeline against
// a bundle's config.json, and offers an inspect subcommand for reading a
// UAB's embedded metadata without mounting it.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/opencontainers/runtime-spec/specs-go"
	"github.com/spf13/cobra"

	"github.com/OpenAtom-Linyaps/linglong/internal/pkg/ocigen"
	"github.com/OpenAtom-Linyaps/linglong/internal/pkg/sylog"
	"github.com/OpenAtom-Linyaps/linglong/internal/pkg/uab"
	"github.com/OpenAtom-Linyaps/linglong/pkg/cmdline"
)

const envPrefix = "LINGLONG_"

var (
	configPath string
	appID      string
	bundleDir  string
	onlyApp    bool
)

// -c|--config
var configFlag = cmdline.Flag{
	ID:           "configFlag",
	Value:        &configPath,
	DefaultValue: "config.json",
	Name:         "config",
	ShortHand:    "c",
	Usage:        "path to the OCI runtime config to transform in place",
	EnvKeys:      []string{"CONFIG"},
}

// -a|--app-id
var appIDFlag = cmdline.Flag{
	ID:           "appIDFlag",
	Value:        &appID,
	DefaultValue: "",
	Name:         "app-id",
	ShortHand:    "a",
	Usage:        "application ID to annotate the generated config with",
	Required:     true,
	EnvKeys:      []string{"APP_ID"},
}

// -b|--bundle-dir
var bundleDirFlag = cmdline.Flag{
	ID:           "bundleDirFlag",
	Value:        &bundleDir,
	DefaultValue: "",
	Name:         "bundle-dir",
	ShortHand:    "b",
	Usage:        "OCI bundle directory backing the container being prepared",
	Required:     true,
	EnvKeys:      []string{"BUNDLE_DIR"},
}

// --only-app
var onlyAppFlag = cmdline.Flag{
	ID:           "onlyAppFlag",
	Value:        &onlyApp,
	DefaultValue: false,
	Name:         "only-app",
	Usage:        "skip device/legacy host-compatibility stages not needed outside a full desktop session",
	EnvKeys:      []string{"ONLY_APP"},
}

var rootCmd = &cobra.Command{
	Use:   "ll-ocigen",
	Short: "Generate an OCI runtime config for a Linyaps application bundle",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate()
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <uab-path>",
	Short: "Print the metadata embedded in a Universal Application Bundle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(args[0])
	},
}

func main() {
	cmdManager := cmdline.NewCommandManager(rootCmd)
	cmdManager.RegisterFlagForCmd(&configFlag, rootCmd)
	cmdManager.RegisterFlagForCmd(&appIDFlag, rootCmd)
	cmdManager.RegisterFlagForCmd(&bundleDirFlag, rootCmd)
	cmdManager.RegisterFlagForCmd(&onlyAppFlag, rootCmd)
	cmdManager.RegisterCmd(inspectCmd)

	if err := cmdManager.UpdateCmdFlagFromEnv(rootCmd, envPrefix); err != nil {
		sylog.Fatalf("%v", err)
	}

	if err := rootCmd.Execute(); err != nil {
		sylog.Fatalf("%v", err)
	}
}

func runGenerate() error {
	raw, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", configPath, err)
	}

	var spec specs.Spec
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &spec); err != nil {
			return fmt.Errorf("parse %s: %w", configPath, err)
		}
	}

	if spec.Annotations == nil {
		spec.Annotations = map[string]string{}
	}
	spec.Annotations["org.deepin.linglong.appID"] = appID
	spec.Annotations["org.deepin.linglong.bundleDir"] = bundleDir
	if onlyApp {
		spec.Annotations["org.deepin.linglong.onlyApp"] = "true"
	}

	if err := ocigen.Run(ocigen.BuiltinStages(), &spec); err != nil {
		return fmt.Errorf("generate config: %w", err)
	}

	out, err := json.MarshalIndent(&spec, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", configPath, err)
	}

	sylog.Infof("wrote %s", configPath)
	return nil
}

func runInspect(uabPath string) error {
	meta, _, err := uab.LoadMetadata(uabPath)
	if err != nil {
		return fmt.Errorf("load metadata from %s: %w", uabPath, err)
	}

	out, err := meta.PrettyJSON()
	if err != nil {
		return fmt.Errorf("render metadata: %w", err)
	}

	fmt.Println(string(out))
	return nil
}
