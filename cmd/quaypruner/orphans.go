package main

import (
	"context"
	"fmt"
	"log"

	"github.com/function61/gokit/ossignal"
	"github.com/function61/quaypruner/pkg/prune"
	"github.com/scylladb/termtables"
	"github.com/spf13/cobra"
)

func orphansEntrypoint(logger *log.Logger) *cobra.Command {
	namespace := ""

	cmd := &cobra.Command{
		Use:   "orphans",
		Short: "List orphaned derived-artifact tags without removing anything",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, args []string) {
			exitWithErrorIfErr(listOrphans(
				ossignal.InterruptOrTerminateBackgroundCtx(logger),
				namespace,
			))
		},
	}

	cmd.Flags().StringVarP(&namespace, "namespace", "", namespace, "Quay namespace (organization) to inspect")
	cmd.MarkFlagRequired("namespace")

	return cmd
}

func listOrphans(ctx context.Context, namespace string) error {
	quay, err := mkClient()
	if err != nil {
		return err
	}

	orphansTbl := termtables.CreateTable()
	orphansTbl.AddHeaders("Repository", "Tag", "Parent digest")

	pager := quay.Repositories(namespace)

	for {
		repos, err := pager.Next(ctx)
		if err != nil {
			return err
		}
		if repos == nil {
			break
		}

		for _, repo := range repos {
			tags, err := quay.ListTags(ctx, repo.Namespace, repo.Name)
			if err != nil {
				return err
			}

			for _, orphan := range prune.FindOrphanTags(tags) {
				orphansTbl.AddRow(
					repo.Namespace+"/"+repo.Name,
					orphan.Name,
					prune.ParentDigest(orphan.Name))
			}
		}
	}

	fmt.Println(orphansTbl.Render())

	return nil
}
