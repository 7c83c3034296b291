package quayclient

import (
	"context"
	"fmt"
	"net/url"
)

// RepositoryPager is a finite, non-restartable sequence of repository batches.
// Each Next() issues exactly one API call.
type RepositoryPager struct {
	client    *Client
	namespace string
	cursor    string // next_page token from the previous response
	done      bool
}

func (c *Client) Repositories(namespace string) *RepositoryPager {
	return &RepositoryPager{client: c, namespace: namespace}
}

// Next returns the next batch of repositories, or (nil, nil) once the listing
// is exhausted (response carried no cursor or an empty batch).
func (p *RepositoryPager) Next(ctx context.Context) ([]Repository, error) {
	if p.done {
		return nil, nil
	}

	query := url.Values{}
	query.Set("namespace", p.namespace)
	if p.cursor != "" {
		query.Set("next_page", p.cursor)
	}

	endpoint := fmt.Sprintf("%s/repository?%s", p.client.baseUrl, query.Encode())

	repoPage := struct {
		Repositories []Repository `json:"repositories"`
		NextPage     string       `json:"next_page"`
	}{}

	resp, err := ezhttpGetJson(ctx, p.client, endpoint, &repoPage)
	if err != nil {
		p.done = true
		return nil, translateError(resp, err)
	}

	if len(repoPage.Repositories) == 0 {
		p.done = true
		return nil, nil
	}

	if repoPage.NextPage != "" {
		p.cursor = repoPage.NextPage
	} else {
		p.done = true
	}

	return repoPage.Repositories, nil
}
