// Finds and removes orphaned derived-artifact tags (SBOM, attestation,
// signature and source tags named after their parent manifest's digest).
package prune

import (
	"regexp"

	"github.com/function61/quaypruner/pkg/quayclient"
)

// Quay digests are always lowercase hex, so uppercase variants are
// (intentionally) never matched and such tags are left alone
var derivedArtifactTagRe = regexp.MustCompile(`^sha256-([0-9a-f]+)(\.sbom|\.att|\.src|\.sig)$`)

// ParentDigest gives the parent manifest digest ("sha256:<hex>") encoded in a
// derived-artifact tag's name, or "" if the name doesn't follow the convention.
func ParentDigest(tagName string) string {
	match := derivedArtifactTagRe.FindStringSubmatch(tagName)
	if match == nil {
		return ""
	}

	return "sha256:" + match[1]
}

// FindOrphanTags returns the derived-artifact tags whose parent manifest is no
// longer pointed to by any active tag in the same repository. Input order is
// preserved. Pure function - deleting the returned tags is the caller's job.
func FindOrphanTags(tags []quayclient.Tag) []quayclient.Tag {
	activeDigests := map[string]bool{}
	for _, tag := range tags {
		activeDigests[tag.ManifestDigest] = true
	}

	orphans := []quayclient.Tag{}

	for _, tag := range tags {
		parentDigest := ParentDigest(tag.Name)
		if parentDigest == "" { // not a derived-artifact tag
			continue
		}

		if !activeDigests[parentDigest] {
			orphans = append(orphans, tag)
		}
	}

	return orphans
}
