package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/function61/gokit/dynversion"
	"github.com/function61/gokit/envvar"
	"github.com/function61/gokit/logex"
	"github.com/function61/gokit/ossignal"
	"github.com/function61/quaypruner/pkg/prune"
	"github.com/function61/quaypruner/pkg/quayclient"
	"github.com/satori/go.uuid"
	"github.com/spf13/cobra"
)

func main() {
	rootLogger := logex.StandardLogger()

	namespace := ""
	dryRun := false

	app := &cobra.Command{
		Use:     os.Args[0],
		Short:   "Prunes orphaned SBOM/attestation/signature/source tags from Quay repositories",
		Version: dynversion.Version,
		Args:    cobra.NoArgs,
		Run: func(_ *cobra.Command, args []string) {
			exitWithErrorIfErr(runPrune(
				ossignal.InterruptOrTerminateBackgroundCtx(rootLogger),
				namespace,
				dryRun,
				rootLogger,
			))
		},
	}
	app.Flags().StringVarP(&namespace, "namespace", "", namespace, "Quay namespace (organization) whose repositories to prune")
	app.Flags().BoolVarP(&dryRun, "dry-run", "", dryRun, "Only log which tags would be removed")
	app.MarkFlagRequired("namespace")

	app.AddCommand(orphansEntrypoint(rootLogger))

	if err := app.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runPrune(ctx context.Context, namespace string, dryRun bool, logger *log.Logger) error {
	quay, err := mkClient()
	if err != nil {
		return err
	}

	// scheduled batch job => run id makes interleaved log archives greppable
	logex.Levels(logger).Info.Printf(
		"starting prune run %s for namespace %s (dry run: %v)",
		uuid.NewV4().String(),
		namespace,
		dryRun)

	return prune.NewPruner(quay, dryRun, logger).Run(ctx, namespace)
}

func mkClient() (*quayclient.Client, error) {
	quayToken, err := getQuayToken()
	if err != nil {
		return nil, err
	}

	return quayclient.New(quayclient.AccessToken(quayToken))
}

func getQuayToken() (string, error) {
	return envvar.Required("QUAY_TOKEN")
}

func exitWithErrorIfErr(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
