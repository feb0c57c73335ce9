package gallery

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/genai"
	"k8s.io/klog/v2"
)

var tagPrompt = "generate 1-5 comma-separated one-word tags for this photo. " +
	"Tags should be present-tense singular words a photographer would organize " +
	"albums with: landscape, beach, forest, urban, family, bird, sunrise. " +
	"Use bw for black and white photos. If you know the place, city, or " +
	"country the photo was taken in, add it as a tag. Do not combine multiple " +
	"words and do not use plural words."

// SuggestTags asks the model for tags describing one image file.
func SuggestTags(ctx context.Context, client *genai.Client, model, imagePath string) ([]string, error) {
	bs, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(bs, "image/jpeg"),
		genai.NewPartFromText(tagPrompt),
	}
	resp, err := client.Models.GenerateContent(ctx, model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, nil)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	tags := []string{}
	for _, t := range strings.Split(resp.Text(), ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags, nil
}

// MergeOverrideTags unions suggested tags into an album directory's
// override file, creating it when missing. Existing override values are
// never removed or replaced.
func MergeOverrideTags(dir string, tags []string, dryRun bool) error {
	ov := readOverrides(dir)
	if ov == nil {
		ov = &Overrides{}
	}

	seen := map[string]bool{}
	for _, t := range ov.Tags {
		seen[strings.ToLower(t)] = true
	}
	added := 0
	for _, t := range tags {
		if !seen[strings.ToLower(t)] {
			seen[strings.ToLower(t)] = true
			ov.Tags = append(ov.Tags, t)
			added++
		}
	}
	if added == 0 {
		klog.V(1).Infof("no new tags for %s", dir)
		return nil
	}

	path := filepath.Join(dir, OverrideFile)
	if dryRun {
		klog.Infof("would add %d tags to %s: %v", added, path, tags)
		return nil
	}

	bs, err := json.MarshalIndent(ov, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(path, append(bs, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	klog.Infof("added %d tags to %s", added, path)
	return nil
}
