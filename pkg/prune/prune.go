package prune

import (
	"context"
	"log"

	"github.com/function61/gokit/logex"
	"github.com/function61/quaypruner/pkg/quayclient"
)

type Pruner struct {
	client *quayclient.Client
	dryRun bool
	logl   *logex.Leveled
}

func NewPruner(client *quayclient.Client, dryRun bool, logger *log.Logger) *Pruner {
	return &Pruner{
		client: client,
		dryRun: dryRun,
		logl:   logex.Levels(logger),
	}
}

// Run walks every repository in the namespace and removes its orphaned
// derived-artifact tags. The first API failure aborts the whole run - the job
// is idempotent, so recovery is to simply run it again.
func (p *Pruner) Run(ctx context.Context, namespace string) error {
	pager := p.client.Repositories(namespace)

	processedRepos := 0 // only for log correlation

	for {
		repos, err := pager.Next(ctx)
		if err != nil {
			return err
		}
		if repos == nil { // listing exhausted
			return nil
		}

		for _, repo := range repos {
			p.logl.Info.Printf(
				"processing repository %d: %s/%s",
				processedRepos,
				repo.Namespace,
				repo.Name)
			processedRepos++

			if err := p.processRepository(ctx, repo); err != nil {
				return err
			}
		}
	}
}

func (p *Pruner) processRepository(ctx context.Context, repo quayclient.Repository) error {
	tags, err := p.client.ListTags(ctx, repo.Namespace, repo.Name)
	if err != nil {
		return err
	}

	if len(tags) == 0 {
		p.logl.Debug.Printf("%s/%s has no active tags", repo.Namespace, repo.Name)
		return nil
	}

	for _, orphan := range FindOrphanTags(tags) {
		if p.dryRun {
			p.logl.Info.Printf(
				"tag %s from %s/%s would be removed",
				orphan.Name,
				repo.Namespace,
				repo.Name)
			continue
		}

		p.logl.Info.Printf(
			"removing tag %s from %s/%s",
			orphan.Name,
			repo.Namespace,
			repo.Name)

		if err := p.client.DeleteTag(ctx, repo.Namespace, repo.Name, orphan.Name); err != nil {
			return err
		}
	}

	return nil
}
