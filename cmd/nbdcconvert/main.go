package main

// nbdcconvert drives the full ABCD-to-ReproSchema conversion: fetch
// the NBDC data repository if needed, extract the requested release's
// data dictionary to CSV, point the conversion config at the release,
// and run the reproschema converter and validator on the result.
// Temporary artifacts are removed on completion unless --keep-data is
// given.

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	nbdc "github.com/ReproNim/ABCD-ReproSchema"
)

const (
	study       = "abcd"
	dataRepoURL = "https://github.com/nbdc-datahub/NBDCtoolsData.git"
	dataRepoDir = "NBDCtoolsData"
	archiveName = "lst_dds.gob"
	dataDir     = "data"
	outputDir   = "ABCD"
)

var (
	release    string
	configPath string
	noValidate bool
	keepData   bool
)

var rootCmd = &cobra.Command{
	Use:          "nbdcconvert",
	Short:        "Convert an ABCD release to ReproSchema format",
	Long:         "nbdcconvert extracts a release's data dictionary from the NBDC archive and converts it to the ReproSchema assessment format.",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&release, "release", "", "release version, e.g. 6.0")
	rootCmd.Flags().StringVar(&configPath, "config", "abcd_nbdc2rs.yaml", "path to the conversion config YAML")
	rootCmd.Flags().BoolVar(&noValidate, "no-validate", false, "skip validation after conversion")
	rootCmd.Flags().BoolVar(&keepData, "keep-data", false, "keep cloned data and extracted CSV after conversion")
	if err := rootCmd.MarkFlagRequired("release"); err != nil {
		panic(err)
	}
}

// findArchive locates the archive in the cloned repository or in a
// sibling development checkout, cloning the data repository when
// neither exists.  The second return value reports whether this run
// performed the clone.
func findArchive() (string, bool, error) {

	cloned := filepath.Join(dataRepoDir, dataDir, archiveName)
	if _, err := os.Stat(cloned); err == nil {
		return cloned, false, nil
	}

	sibling := filepath.Join("..", dataRepoDir, dataDir, archiveName)
	if _, err := os.Stat(sibling); err == nil {
		return sibling, false, nil
	}

	log.Printf("cloning %s", dataRepoURL)
	cmd := exec.Command("git", "clone", "--depth", "1", dataRepoURL)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", false, fmt.Errorf("cloning data repository: %v", err)
	}

	return cloned, true, nil
}

// setSourceVersion rewrites the source_version field of the
// conversion config in place.
func setSourceVersion(path, version string) error {

	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var config map[string]interface{}
	if err := yaml.Unmarshal(b, &config); err != nil {
		return fmt.Errorf("parsing %s: %v", path, err)
	}
	config["source_version"] = version

	out, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0666); err != nil {
		return err
	}

	log.Printf("set source_version to %s", version)
	return nil
}

func runTool(name string, args ...string) error {

	log.Printf("running: %s %v", name, args)
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}

func run(cmd *cobra.Command, args []string) error {

	if err := os.MkdirAll(dataDir, 0777); err != nil {
		return err
	}

	archive, cloned, err := findArchive()
	if err != nil {
		return err
	}

	csvPath := filepath.Join(dataDir, fmt.Sprintf("%s_%s.csv", study, release))

	defer func() {
		if keepData {
			return
		}
		if cloned {
			log.Printf("removing %s", dataRepoDir)
			os.RemoveAll(dataRepoDir)
		}
		if _, err := os.Stat(csvPath); err == nil {
			log.Printf("removing temporary CSV %s", csvPath)
			os.Remove(csvPath)
		}
	}()

	if err := nbdc.ExtractRelease(archive, study, release, csvPath); err != nil {
		return err
	}

	if err := setSourceVersion(configPath, release); err != nil {
		return err
	}

	if err := runTool("reproschema", "nbdc2reproschema", csvPath, configPath); err != nil {
		return fmt.Errorf("conversion failed: %v", err)
	}

	if !noValidate {
		if err := runTool("reproschema", "validate", outputDir); err != nil {
			return fmt.Errorf("validation failed: %v", err)
		}
	}

	log.Printf("done")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
