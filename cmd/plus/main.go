// Package main provides the plus CLI entry point: a thin cobra front end
// over pkg/client, opening the process-wide store once and dispatching
// one subcommand per client operation.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/orneryd/plus/pkg/client"
	"github.com/orneryd/plus/pkg/config"
	"github.com/orneryd/plus/pkg/model"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "plus",
		Short: "plus - a typed, directed multigraph store for data-lineage graphs",
		Long: `plus is a persistent, typed, directed multigraph database for
data-lineage and provenance graphs: PLUSObject/PLUSActor/PLUSEdge
entities under a privilege-lattice access-control model, with lineage-DAG
traversal and post-processing.`,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("plus v%s (%s)\n", version, commit)
		},
	})

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Bootstrap a new store's built-in privilege lattice and, optionally, an admin actor",
		RunE:  runInit,
	}
	initCmd.Flags().String("actor", "", "name of an admin actor to create")
	initCmd.Flags().String("password", "", "password for the admin actor (required with --actor)")
	rootCmd.AddCommand(initCmd)

	loginCmd := &cobra.Command{
		Use:   "login <name>",
		Short: "Authenticate an actor by name and password",
		Args:  cobra.ExactArgs(1),
		RunE:  runLogin,
	}
	loginCmd.Flags().String("password", "", "actor password")
	rootCmd.AddCommand(loginCmd)

	reportCmd := &cobra.Command{
		Use:   "report <file.json>",
		Short: "Report a provenance collection (actors/objects/edges/NPEs) read from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE:  runReport,
	}
	reportCmd.Flags().String("as", "", "name of the reporting actor")
	rootCmd.AddCommand(reportCmd)

	graphCmd := &cobra.Command{
		Use:   "graph <oid>",
		Short: "Traverse and post-process the lineage DAG rooted at oid",
		Args:  cobra.ExactArgs(1),
		RunE:  runGraph,
	}
	graphCmd.Flags().String("as", "", "name of the viewing actor")
	graphCmd.Flags().Int("depth", 0, "max traversal depth (0 = unbounded)")
	graphCmd.Flags().Int("n", 10, "max nodes collected")
	graphCmd.Flags().Bool("backward", false, "traverse incoming edges instead of outgoing")
	rootCmd.AddCommand(graphCmd)

	searchCmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search PLUSObjects by name/metadata substring",
		Args:  cobra.ExactArgs(1),
		RunE:  runSearch,
	}
	searchCmd.Flags().String("as", "", "name of the viewing actor")
	searchCmd.Flags().Int("max", 20, "max results")
	rootCmd.AddCommand(searchCmd)

	dominatesCmd := &cobra.Command{
		Use:   "dominates <a> <b>",
		Short: "Report whether privilege class a dominates class b",
		Args:  cobra.ExactArgs(2),
		RunE:  runDominates,
	}
	rootCmd.AddCommand(dominatesCmd)

	taintCmd := &cobra.Command{
		Use:   "taint <oid> <description>",
		Short: "Mark oid as tainted",
		Args:  cobra.ExactArgs(2),
		RunE:  runTaint,
	}
	taintCmd.Flags().String("as", "", "name of the tainting actor")
	rootCmd.AddCommand(taintCmd)

	err := rootCmd.Execute()
	if closeErr := client.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openClient loads process configuration and opens the process-wide
// store (pkg/client.Open), which is guarded by a mutex and idempotent
// across the several openClient calls a cobra command tree can make
// (e.g. root persistent hooks plus the chosen subcommand). The store
// stays open for the life of the process; main closes it once after
// rootCmd.Execute returns, and an os/signal hook inside pkg/client
// closes it on SIGINT/SIGTERM too.
func openClient() (*client.Client, error) {
	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return client.Open(cfg)
}

// resolveViewer looks up an actor by name for read-path operations that
// only need its privileges, not proof of identity — logging in is a
// separate command. An empty name resolves to nil, meaning "no viewer";
// a nil viewer holds no privilege classes, so it sees in full only
// objects without privilege classes, and of the rest only what each
// surrogate policy exposes to a viewer that does not dominate them.
func resolveViewer(c *client.Client, name string) (*model.Actor, error) {
	if name == "" {
		return nil, nil
	}
	return c.ActorByName(name)
}

func runInit(cmd *cobra.Command, args []string) error {
	c, err := openClient()
	if err != nil {
		return err
	}
	fmt.Println("store bootstrapped with the built-in privilege lattice")

	actorName, _ := cmd.Flags().GetString("actor")
	if actorName == "" {
		return nil
	}
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		return fmt.Errorf("--password is required with --actor")
	}
	actor, err := c.CreateActor(actorName, password, []model.PrivilegeClass{{Name: model.PrivilegeAdmin}})
	if err != nil {
		return err
	}
	fmt.Printf("created admin actor %s (%s)\n", actor.Name, actor.AID)
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		return fmt.Errorf("--password is required")
	}
	c, err := openClient()
	if err != nil {
		return err
	}

	actor, err := c.Authenticate(args[0], password)
	if err != nil {
		return err
	}
	fmt.Printf("authenticated as %s (%s)\n", actor.Name, actor.AID)
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	var collection model.ProvenanceCollection
	if err := json.Unmarshal(data, &collection); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	c, err := openClient()
	if err != nil {
		return err
	}

	asName, _ := cmd.Flags().GetString("as")
	actor, err := resolveViewer(c, asName)
	if err != nil {
		return err
	}

	n, err := c.Report(actor, &collection)
	if err != nil {
		return err
	}
	fmt.Printf("stored %d elements\n", n)
	return nil
}

func runGraph(cmd *cobra.Command, args []string) error {
	c, err := openClient()
	if err != nil {
		return err
	}

	asName, _ := cmd.Flags().GetString("as")
	actor, err := resolveViewer(c, asName)
	if err != nil {
		return err
	}

	depth, _ := cmd.Flags().GetInt("depth")
	n, _ := cmd.Flags().GetInt("n")
	backward, _ := cmd.Flags().GetBool("backward")

	settings := model.DefaultTraversalSettings()
	settings.MaxDepth = depth
	settings.N = n
	if backward {
		settings.Forward = false
		settings.Backward = true
	}

	dag, err := c.GetGraph(context.Background(), actor, args[0], settings)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(graphView{
		Focus:       dag.Focus,
		Nodes:       dag.Nodes(),
		Edges:       dag.Edges(),
		Tags:        dag.Tags,
		Fingerprint: dag.Fingerprint,
	})
}

// graphView is the CLI's JSON rendering of a LineageDAG: the DAG itself
// keeps its node/edge slices unexported to force callers through its
// accessor methods, so the CLI flattens it into a plain struct rather
// than json-encoding the DAG directly.
type graphView struct {
	Focus       string                    `json:"focus"`
	Nodes       []*model.PLUSObject       `json:"nodes"`
	Edges       []*model.PLUSEdge         `json:"edges"`
	Tags        map[string]map[string]any `json:"tags,omitempty"`
	Fingerprint model.Fingerprint         `json:"fingerprint"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	c, err := openClient()
	if err != nil {
		return err
	}

	asName, _ := cmd.Flags().GetString("as")
	actor, err := resolveViewer(c, asName)
	if err != nil {
		return err
	}
	max, _ := cmd.Flags().GetInt("max")

	results, err := c.Search(actor, args[0], max)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, obj := range results {
		fmt.Printf("%s\t%s\t%s\n", obj.OID, obj.Kind.String(), obj.Name)
	}
	return nil
}

func runDominates(cmd *cobra.Command, args []string) error {
	c, err := openClient()
	if err != nil {
		return err
	}

	ok, err := c.Dominates(strings.ToUpper(args[0]), strings.ToUpper(args[1]))
	if err != nil {
		return err
	}
	fmt.Println(ok)
	return nil
}

func runTaint(cmd *cobra.Command, args []string) error {
	c, err := openClient()
	if err != nil {
		return err
	}

	asName, _ := cmd.Flags().GetString("as")
	actor, err := resolveViewer(c, asName)
	if err != nil {
		return err
	}

	taint, err := c.Taint(actor, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("created taint %s on %s\n", taint.OID, args[0])
	return nil
}
