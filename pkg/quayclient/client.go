// Quay API mini client - repository enumeration, tag listing and tag deletion
package quayclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/function61/gokit/ezhttp"
)

const (
	DefaultBaseUrl = "https://quay.io/api/v1"
)

type Repository struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
}

type Tag struct {
	Name           string `json:"name"`
	ManifestDigest string `json:"manifest_digest"` // format "sha256:<hex>"
}

// non-2xx response from the Quay API
type ApiError struct {
	StatusCode int
	Status     string // e.g. "500 Internal Server Error"
}

func (e *ApiError) Error() string {
	return "Quay API error: " + e.Status
}

type Client struct {
	baseUrl     string
	accessToken string
}

type accessTokenObtainer func() (string, error)

func New(tokenFn accessTokenObtainer) (*Client, error) {
	return NewWithBaseUrl(tokenFn, DefaultBaseUrl)
}

func NewWithBaseUrl(tokenFn accessTokenObtainer, baseUrl string) (*Client, error) {
	accessToken, err := tokenFn()
	if err != nil {
		return nil, err
	}

	return &Client{baseUrl, accessToken}, nil
}

// ListTags returns all active tags of one repository, deduplicated by name,
// walking Quay's page-numbered pagination until has_additional turns false.
func (c *Client) ListTags(ctx context.Context, namespace string, name string) ([]Tag, error) {
	allTags := []Tag{}
	seen := map[string]bool{}

	nextPage := 0 // zero = let the server pick the first page

	for {
		query := url.Values{}
		query.Set("limit", "100")
		query.Set("onlyActiveTags", "true")
		if nextPage > 0 {
			query.Set("page", strconv.Itoa(nextPage))
		}

		endpoint := fmt.Sprintf(
			"%s/repository/%s/%s/tag/?%s",
			c.baseUrl,
			namespace,
			name,
			query.Encode())

		tagPage := struct {
			Tags          []Tag `json:"tags"`
			Page          int   `json:"page"`
			HasAdditional bool  `json:"has_additional"`
		}{}

		resp, err := ezhttpGetJson(ctx, c, endpoint, &tagPage)
		if err != nil {
			return nil, translateError(resp, err)
		}

		for _, tag := range tagPage.Tags {
			if seen[tag.Name] {
				continue
			}
			seen[tag.Name] = true

			allTags = append(allTags, tag)
		}

		if len(tagPage.Tags) == 0 || !tagPage.HasAdditional {
			break
		}

		nextPage = tagPage.Page + 1
	}

	return allTags, nil
}

// DeleteTag removes one tag. 404 is not an error: the tag already being gone
// is exactly the end state we wanted (re-runs stay idempotent).
func (c *Client) DeleteTag(ctx context.Context, namespace string, name string, tag string) error {
	endpoint := fmt.Sprintf(
		"%s/repository/%s/%s/tag/%s",
		c.baseUrl,
		namespace,
		name,
		tag)

	resp, err := ezhttp.Del(
		ctx,
		endpoint,
		ezhttp.Header("Authorization", "Bearer "+c.accessToken),
		ezhttp.TolerateNon2xxResponse,
	)
	if err != nil {
		return err // transport-level failure
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return &ApiError{resp.StatusCode, resp.Status}
	}
}

func AccessToken(tok string) accessTokenObtainer {
	return func() (string, error) {
		return tok, nil
	}
}

func ezhttpGetJson(ctx context.Context, c *Client, endpoint string, out interface{}) (*http.Response, error) {
	return ezhttp.Get(
		ctx,
		endpoint,
		ezhttp.Header("Authorization", "Bearer "+c.accessToken),
		ezhttp.RespondsJson(out, true),
	)
}

// keeps transport and JSON decode errors as-is, but turns HTTP status
// failures into *ApiError so callers can tell the cases apart
func translateError(resp *http.Response, err error) error {
	if resp != nil && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return &ApiError{resp.StatusCode, resp.Status}
	}

	return err
}
